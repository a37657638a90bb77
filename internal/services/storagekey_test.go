package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseworks/submissionflow/internal/models"
)

func TestBuildStorageKey(t *testing.T) {
	key := BuildStorageKey("acme", "sub-42", models.DocumentTypeInvoice, "f1e2d3", "pdf")
	assert.Equal(t, "acme/sub-42/INVOICE/f1e2d3.pdf", key)
}

func TestNewFileIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewFileID()
		_, dup := seen[id]
		require.False(t, dup, "file id %q generated twice", id)
		seen[id] = struct{}{}
	}
}

func TestParseStorageKeyRoundTrip(t *testing.T) {
	key := BuildStorageKey("acme", "sub-42", models.DocumentTypeReceipt, NewFileID(), "png")

	tenantID, submissionID, docType, ok := ParseStorageKey(key)
	require.True(t, ok)
	assert.Equal(t, "acme", tenantID)
	assert.Equal(t, "sub-42", submissionID)
	assert.Equal(t, models.DocumentTypeReceipt, docType)
}

func TestParseStorageKeyRejectsMalformedKeys(t *testing.T) {
	for _, key := range []string{
		"",
		"acme/sub-42/INVOICE",
		"acme/sub-42/INVOICE/a/b.pdf",
		"acme/sub-42/NOT_A_TYPE/f.pdf",
		"/sub-42/INVOICE/f.pdf",
	} {
		t.Run(fmt.Sprintf("key=%q", key), func(t *testing.T) {
			_, _, _, ok := ParseStorageKey(key)
			assert.False(t, ok)
		})
	}
}
