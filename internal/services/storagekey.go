package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caseworks/submissionflow/internal/models"
)

// NewFileID returns a random identifier for a stored object. User-supplied
// file names never reach the key space.
func NewFileID() string {
	return uuid.NewString()
}

// BuildStorageKey maps the record coordinates and a generated file id onto
// the hierarchical object key tenant/submission/documentType/fileID.ext.
func BuildStorageKey(tenantID, submissionID string, docType models.DocumentType, fileID, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s.%s", tenantID, submissionID, docType, fileID, ext)
}

// ParseStorageKey recovers the record coordinates from an object key. The
// boolean reports whether the key follows the hierarchical scheme.
func ParseStorageKey(key string) (tenantID, submissionID string, docType models.DocumentType, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] == "" || parts[1] == "" || parts[3] == "" {
		return "", "", "", false
	}
	docType, ok = models.ParseDocumentType(parts[2])
	if !ok {
		return "", "", "", false
	}
	return parts[0], parts[1], docType, true
}
