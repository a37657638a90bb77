package services

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/caseworks/submissionflow/internal/models"
)

// ContentTypePDF is the detected MIME type that routes an upload through the
// structure inspector.
const ContentTypePDF = "application/pdf"

// DetectContentType sniffs the payload and returns its true MIME type plus a
// file-extension suggestion without a leading dot. Whatever content type the
// client declared is ignored; classification is based on the bytes alone.
func DetectContentType(payload []byte) (string, string, error) {
	if len(payload) == 0 {
		return "", "", &models.ClassificationError{Err: errors.New("empty payload")}
	}

	detected := mimetype.Detect(payload)
	ext := strings.TrimPrefix(detected.Extension(), ".")
	if ext == "" {
		ext = "bin"
	}
	return detected.String(), ext, nil
}

// IsPDF reports whether a detected content type is the page-oriented PDF
// format.
func IsPDF(contentType string) bool {
	return contentType == ContentTypePDF
}
