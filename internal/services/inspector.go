package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/caseworks/submissionflow/internal/models"
)

// StructureInspector extracts the page count of a page-oriented document.
type StructureInspector interface {
	PageCount(payload []byte, password string) (int, error)
}

// PDFInspector counts pages with pdfcpu. The document is parsed from an
// in-memory reader, so there is no handle left open on any exit path.
type PDFInspector struct{}

// PageCount opens the PDF, decrypting it with the given password when the
// document is protected, and returns its page count. A missing or wrong
// password yields models.InvalidCredentialsError.
func (PDFInspector) PageCount(payload []byte, password string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	count, err := api.PageCount(bytes.NewReader(payload), conf)
	if err != nil {
		// pdfcpu reports missing and wrong passwords through error
		// text only; it exports no sentinel for either case.
		if strings.Contains(strings.ToLower(err.Error()), "password") {
			return 0, &models.InvalidCredentialsError{Err: err}
		}
		return 0, fmt.Errorf("failed to read page count: %w", err)
	}
	if count < 1 {
		return 0, fmt.Errorf("document reports page count %d", count)
	}
	return count, nil
}
