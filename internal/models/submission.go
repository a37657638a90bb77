package models

import "time"

// DocumentType is the enumerated category under which uploaded files are
// grouped inside a submission.
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "INVOICE"
	DocumentTypeContract   DocumentType = "CONTRACT"
	DocumentTypeReceipt    DocumentType = "RECEIPT"
	DocumentTypeStatement  DocumentType = "STATEMENT"
	DocumentTypeSupporting DocumentType = "SUPPORTING"
)

// ParseDocumentType maps a raw request value onto a known document type.
// The boolean reports whether the value is recognized.
func ParseDocumentType(raw string) (DocumentType, bool) {
	switch DocumentType(raw) {
	case DocumentTypeInvoice, DocumentTypeContract, DocumentTypeReceipt,
		DocumentTypeStatement, DocumentTypeSupporting:
		return DocumentType(raw), true
	}
	return "", false
}

// Record kinds stored in the aggregation collection. Every record carries its
// kind so prefix listings map onto equality queries.
const (
	KindProfile  = "PROFILE"
	KindDocument = "DOCUMENT"
	KindFile     = "FILE"
)

// SubmissionProfile is the per-(tenant, submission) aggregate record. Its
// counters only ever grow; every successful upload increments totalDocuments
// by one and totalPages by the upload's detected page count.
type SubmissionProfile struct {
	Kind           string    `firestore:"kind"`
	TenantID       string    `firestore:"tenantId"`
	SubmissionID   string    `firestore:"submissionId"`
	TotalPages     int64     `firestore:"totalPages"`
	TotalDocuments int64     `firestore:"totalDocuments"`
	CreatedAt      time.Time `firestore:"createdAt,omitempty"`
}

// SubmissionDocument exists for a (tenant, submission, type) exactly while at
// least one file of that type exists. FileCount doubles as the next file
// index: it is read and advanced in the same transaction that writes the
// file record.
type SubmissionDocument struct {
	Kind         string       `firestore:"kind"`
	TenantID     string       `firestore:"tenantId"`
	SubmissionID string       `firestore:"submissionId"`
	DocumentType DocumentType `firestore:"documentType"`
	FileCount    int64        `firestore:"fileCount"`
	CreatedAt    time.Time    `firestore:"createdAt,omitempty"`
	UpdatedAt    time.Time    `firestore:"updatedAt,omitempty"`
}

// SubmissionFile is the per-upload record. It is written exactly once and
// never mutated afterwards.
type SubmissionFile struct {
	Kind         string       `firestore:"kind"`
	TenantID     string       `firestore:"tenantId"`
	SubmissionID string       `firestore:"submissionId"`
	DocumentType DocumentType `firestore:"documentType"`
	// Index is the zero-based position of this file within its
	// document-type group.
	Index        int64     `firestore:"index"`
	TypePrefix   string    `firestore:"typePrefix"`
	StorageKey   string    `firestore:"storageKey"`
	RelativePath string    `firestore:"relativePath,omitempty"`
	DisplayName  string    `firestore:"displayName,omitempty"`
	ContentType  string    `firestore:"contentType"`
	PageCount    int       `firestore:"pageCount"`
	FileHash     string    `firestore:"fileHash,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
}
