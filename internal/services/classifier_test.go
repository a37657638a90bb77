package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseworks/submissionflow/internal/models"
)

var (
	pdfPayload = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
	pngPayload = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
)

func TestDetectContentTypePDF(t *testing.T) {
	contentType, ext, err := DetectContentType(pdfPayload)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "pdf", ext)
	assert.True(t, IsPDF(contentType))
}

func TestDetectContentTypePNG(t *testing.T) {
	contentType, ext, err := DetectContentType(pngPayload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, "png", ext)
	assert.False(t, IsPDF(contentType))
}

func TestDetectContentTypeEmptyPayload(t *testing.T) {
	_, _, err := DetectContentType(nil)
	require.Error(t, err)

	var classificationErr *models.ClassificationError
	assert.ErrorAs(t, err, &classificationErr)
}
