package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(&ClientInputError{Reason: "document type is required"}))
	assert.True(t, IsClientError(&ClassificationError{Err: errors.New("empty payload")}))
	assert.True(t, IsClientError(&InvalidCredentialsError{}))

	assert.False(t, IsClientError(&StorageError{Op: "put", Key: "a/b/c/d.pdf", Err: errors.New("boom")}))
	assert.False(t, IsClientError(errors.New("plain")))
	assert.False(t, IsClientError(nil))
}

func TestIsClientErrorSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("upload failed: %w", &InvalidCredentialsError{Err: errors.New("wrong password")})
	assert.True(t, IsClientError(err))
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &StorageError{Op: "commit", Key: "a/b/c/d.pdf", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "commit")
}
