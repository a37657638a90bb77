package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/caseworks/submissionflow/internal/gcp"
	"github.com/caseworks/submissionflow/internal/models"
)

// ObjectStore is the durable blob side of the pipeline.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// AggregationStore is the record side of the pipeline. CommitFile must apply
// its writes atomically: index assignment, file record, profile counters, and
// the document record all land or none do.
type AggregationStore interface {
	GetProfile(ctx context.Context, tenantID, submissionID string) (*models.SubmissionProfile, error)
	ListFiles(ctx context.Context, tenantID, submissionID string, docType models.DocumentType) ([]models.SubmissionFile, error)
	CommitFile(ctx context.Context, file models.SubmissionFile, profilePages int64) (index int64, createdDoc bool, err error)
}

// IngestorConfig holds configuration for the ingestion service.
type IngestorConfig struct {
	ProjectID      string
	UploadBucket   string
	CollectionName string
}

// IngestorFunction accepts one uploaded file per call: it validates the
// request, classifies the payload, extracts the page count for page-oriented
// formats, stores the bytes, and commits the aggregation records.
type IngestorFunction struct {
	objects   ObjectStore
	records   AggregationStore
	inspector StructureInspector
	config    IngestorConfig
}

// NewIngestor creates an IngestorFunction wired to GCS and Firestore.
func NewIngestor(ctx context.Context) (*IngestorFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := IngestorConfig{
		ProjectID:      projectID,
		UploadBucket:   gcp.GetEnv("UPLOAD_BUCKET", ""),
		CollectionName: gcp.GetEnv("FIRESTORE_COLLECTION", "submissions"),
	}
	if config.UploadBucket == "" {
		return nil, fmt.Errorf("UPLOAD_BUCKET environment variable must be set")
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	f := &IngestorFunction{
		objects:   gcp.NewObjectStore(storageClient, config.UploadBucket),
		records:   gcp.NewAggregationStore(firestoreClient, config.CollectionName),
		inspector: PDFInspector{},
		config:    config,
	}
	slog.Info("Ingestor initialized.", "uploadBucket", config.UploadBucket, "collection", config.CollectionName)
	return f, nil
}

// Process runs the full acceptance sequence for one uploaded file. Validation
// failures abort before any durable write; the object upload happens before
// any aggregation write, so a mid-sequence fault can leave an orphaned object
// but never a record without its bytes.
func (f *IngestorFunction) Process(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	logCtx := slog.With(
		"tenantId", req.TenantID,
		"submissionId", req.SubmissionID,
		"documentType", req.DocumentType,
	)
	logCtx.Info("Processing upload.", "displayName", req.DisplayName, "declaredContentType", req.DeclaredContentType)

	// --- 1. Preconditions: no durable writes before these pass ---
	docType, err := f.validate(ctx, req)
	if err != nil {
		logCtx.Warn("Upload rejected during validation.", "error", err)
		return nil, err
	}

	// --- 2. Classification: trust the bytes, not the caller ---
	contentType, ext, err := DetectContentType(req.Payload)
	if err != nil {
		logCtx.Warn("Classification failed.", "error", err)
		return nil, err
	}
	logCtx = logCtx.With("contentType", contentType)

	// --- 3. Storage key from a fresh random id ---
	key := BuildStorageKey(req.TenantID, req.SubmissionID, docType, NewFileID(), ext)

	// --- 4. Structure inspection for page-oriented formats ---
	// The record's page count defaults to 1; only detected page counts
	// feed the profile's totalPages counter.
	pageCount := 1
	profilePages := int64(0)
	if IsPDF(contentType) {
		pages, err := f.inspector.PageCount(req.Payload, req.Password)
		if err != nil {
			logCtx.Warn("Structure inspection failed.", "error", err)
			return nil, err
		}
		pageCount = pages
		profilePages = int64(pages)
	}

	// --- 5. Object upload, before any aggregation write ---
	if err := f.objects.Put(ctx, key, bytes.NewReader(req.Payload)); err != nil {
		logCtx.Error("Object upload failed.", "storageKey", key, "error", err)
		return nil, &models.StorageError{Op: "put", Key: key, Err: err}
	}

	// --- 6. Aggregation commit: file record, profile counters, document record ---
	file := models.SubmissionFile{
		TenantID:     req.TenantID,
		SubmissionID: req.SubmissionID,
		DocumentType: docType,
		StorageKey:   key,
		RelativePath: req.RelativePath,
		DisplayName:  req.DisplayName,
		ContentType:  contentType,
		PageCount:    pageCount,
		FileHash:     hashPayload(req.Payload),
	}
	index, createdDoc, err := f.records.CommitFile(ctx, file, profilePages)
	if err != nil {
		// The blob is durable but unaggregated; flag it for the
		// reconciliation sweep.
		logCtx.Error("Object stored but aggregation commit failed; file is unaggregated.",
			"storageKey", key, "error", err)
		return nil, &models.StorageError{Op: "commit", Key: key, Err: err}
	}

	logCtx.Info("Upload accepted.",
		"storageKey", key,
		"index", index,
		"firstOfType", createdDoc,
		"pageCount", pageCount,
	)
	return &models.UploadResponse{
		StorageKey:   key,
		DocumentType: docType,
		Index:        index,
		ContentType:  contentType,
		PageCount:    pageCount,
		FirstOfType:  createdDoc,
	}, nil
}

// validate runs the precondition checks: the submission profile must exist,
// the document type must be recognized and permitted for this caller, and the
// payload must be non-empty.
func (f *IngestorFunction) validate(ctx context.Context, req *models.UploadRequest) (models.DocumentType, error) {
	if req.TenantID == "" || req.SubmissionID == "" {
		return "", &models.ClientInputError{Reason: "tenant and submission identifiers are required"}
	}

	if _, err := f.records.GetProfile(ctx, req.TenantID, req.SubmissionID); err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			return "", &models.ClientInputError{Reason: "unknown submission", Err: err}
		}
		return "", &models.StorageError{Op: "getProfile", Key: req.TenantID + "#" + req.SubmissionID, Err: err}
	}

	if req.DocumentType == "" {
		return "", &models.ClientInputError{Reason: "document type is required"}
	}
	docType, ok := models.ParseDocumentType(req.DocumentType)
	if !ok {
		return "", &models.ClientInputError{Reason: fmt.Sprintf("unrecognized document type %q", req.DocumentType)}
	}
	if !typeAllowed(docType, req.AllowedTypes) {
		return "", &models.ClientInputError{Reason: fmt.Sprintf("document type %s is not permitted for this caller", docType)}
	}

	if len(req.Payload) == 0 {
		return "", &models.ClientInputError{Reason: "file payload is empty"}
	}
	return docType, nil
}

// typeAllowed treats an empty allow-list as unrestricted; the list is
// populated by the authentication layer in front of the pipeline.
func typeAllowed(docType models.DocumentType, allowed []models.DocumentType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, t := range allowed {
		if t == docType {
			return true
		}
	}
	return false
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
