package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileKey(t *testing.T) {
	key := ProfileKey("acme", "sub-42")
	assert.Equal(t, "acme#sub-42", key.Partition)
	assert.Equal(t, "PROFILE", key.Sort)
	assert.Equal(t, "acme#sub-42|PROFILE", key.DocID())
}

func TestDocumentKey(t *testing.T) {
	key := DocumentKey("acme", "sub-42", DocumentTypeInvoice)
	assert.Equal(t, "acme#sub-42|DOC#INVOICE", key.DocID())
}

func TestFileKeyPadsIndex(t *testing.T) {
	key := FileKey("acme", "sub-42", DocumentTypeContract, 3)
	assert.Equal(t, "acme#sub-42|FILE#CONTRACT#00003", key.DocID())

	// Fixed-width indices keep lexicographic and numeric order aligned.
	earlier := FileKey("acme", "sub-42", DocumentTypeContract, 9).DocID()
	later := FileKey("acme", "sub-42", DocumentTypeContract, 10).DocID()
	assert.Less(t, earlier, later)
}

func TestFileSortPrefixMatchesFileKeys(t *testing.T) {
	prefix := FileSortPrefix(DocumentTypeReceipt)
	key := FileKey("acme", "sub-42", DocumentTypeReceipt, 0)
	assert.Contains(t, key.Sort, prefix)
}

func TestParseDocumentType(t *testing.T) {
	docType, ok := ParseDocumentType("INVOICE")
	assert.True(t, ok)
	assert.Equal(t, DocumentTypeInvoice, docType)

	_, ok = ParseDocumentType("invoice")
	assert.False(t, ok)

	_, ok = ParseDocumentType("")
	assert.False(t, ok)
}
