package models

// These structs define the payloads exchanged with the HTTP layer that sits
// in front of the ingestion pipeline.

// UploadRequest is one uploaded file plus the identifiers the HTTP layer has
// already resolved. Payload holds the raw file bytes; DeclaredContentType is
// kept only for logging and is never trusted for validation.
type UploadRequest struct {
	TenantID            string
	SubmissionID        string
	DocumentType        string
	DisplayName         string
	RelativePath        string
	Password            string
	DeclaredContentType string
	Payload             []byte
	// AllowedTypes is the set of document types the (externally
	// authenticated) caller may upload into.
	AllowedTypes []DocumentType
}

// UploadResponse acknowledges one accepted file.
type UploadResponse struct {
	StorageKey   string       `json:"storageKey"`
	DocumentType DocumentType `json:"documentType"`
	Index        int64        `json:"index"`
	ContentType  string       `json:"contentType"`
	PageCount    int          `json:"pageCount"`
	// FirstOfType reports whether this upload created the document
	// record for its type.
	FirstOfType bool `json:"firstOfType"`
}

// ReconcileReport is the outcome of one reconciliation sweep over a
// submission's stored objects.
type ReconcileReport struct {
	TenantID     string   `json:"tenantId"`
	SubmissionID string   `json:"submissionId"`
	ScannedKeys  int      `json:"scannedKeys"`
	OrphanKeys   []string `json:"orphanKeys"`
}
