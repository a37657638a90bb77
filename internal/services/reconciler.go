package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"

	"github.com/caseworks/submissionflow/internal/gcp"
	"github.com/caseworks/submissionflow/internal/models"
)

// GCSEvent is the finalize-event payload delivered when an object lands in
// the upload bucket.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ReconcilerConfig holds configuration for the reconciliation service.
type ReconcilerConfig struct {
	ProjectID      string
	UploadBucket   string
	CollectionName string
}

// ReconcilerFunction finds stored objects that have no file record — the
// residue of an upload that failed between the object write and the
// aggregation commit. It only reports; repair is an operator decision.
type ReconcilerFunction struct {
	objects ObjectStore
	records AggregationStore
	config  ReconcilerConfig

	// Bounded re-check schedule for single-object verification; the
	// aggregation commit may still be in flight when the finalize event
	// arrives.
	checkAttempts int
	checkBackoff  time.Duration
}

// NewReconciler creates a ReconcilerFunction wired to GCS and Firestore.
func NewReconciler(ctx context.Context) (*ReconcilerFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := ReconcilerConfig{
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

	return &ReconcilerFunction{
		objects:       gcp.NewObjectStore(storageClient, config.UploadBucket),
		records:       gcp.NewAggregationStore(firestoreClient, config.CollectionName),
		config:        config,
		checkAttempts: 5,
		checkBackoff:  2 * time.Second,
	}, nil
}

// Sweep scans every stored object of one submission and reports the keys
// with no corresponding file record. Document-type groups are checked
// concurrently.
func (f *ReconcilerFunction) Sweep(ctx context.Context, tenantID, submissionID string) (*models.ReconcileReport, error) {
	logCtx := slog.With("tenantId", tenantID, "submissionId", submissionID)

	prefix := fmt.Sprintf("%s/%s/", tenantID, submissionID)
	keys, err := f.objects.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored objects: %w", err)
	}

	var mu sync.Mutex
	var orphans []string

	groups := make(map[models.DocumentType][]string)
	for _, key := range keys {
		_, _, docType, ok := ParseStorageKey(key)
		if !ok {
			// Mis-keyed objects cannot belong to any record.
			orphans = append(orphans, key)
			continue
		}
		groups[docType] = append(groups[docType], key)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for docType, groupKeys := range groups {
		eg.Go(func() error {
			files, err := f.records.ListFiles(gctx, tenantID, submissionID, docType)
			if err != nil {
				return fmt.Errorf("document type %s: %w", docType, err)
			}
			known := make(map[string]struct{}, len(files))
			for _, file := range files {
				known[file.StorageKey] = struct{}{}
			}
			for _, key := range groupKeys {
				if _, ok := known[key]; !ok {
					mu.Lock()
					orphans = append(orphans, key)
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(orphans)
	for _, key := range orphans {
		logCtx.Warn("Stored object has no file record (uploaded, unaggregated).", "storageKey", key)
	}
	logCtx.Info("Reconciliation sweep complete.", "scannedKeys", len(keys), "orphanKeys", len(orphans))

	return &models.ReconcileReport{
		TenantID:     tenantID,
		SubmissionID: submissionID,
		ScannedKeys:  len(keys),
		OrphanKeys:   orphans,
	}, nil
}

// CheckObject verifies that a finalized object has a file record, re-checking
// on a doubling backoff because the event usually races the aggregation
// commit. It returns true once the record is found; after the last attempt
// the object is flagged as unaggregated and false is returned without error.
func (f *ReconcilerFunction) CheckObject(ctx context.Context, key string) (bool, error) {
	logCtx := slog.With("storageKey", key)

	tenantID, submissionID, docType, ok := ParseStorageKey(key)
	if !ok {
		logCtx.Warn("Object key does not follow the storage scheme; cannot match a record.")
		return false, nil
	}

	backoff := f.checkBackoff
	for attempt := 1; attempt <= f.checkAttempts; attempt++ {
		files, err := f.records.ListFiles(ctx, tenantID, submissionID, docType)
		if err != nil {
			return false, fmt.Errorf("failed to list file records: %w", err)
		}
		for _, file := range files {
			if file.StorageKey == key {
				return true, nil
			}
		}

		if attempt == f.checkAttempts {
			break
		}
		logCtx.Info("No file record yet, will re-check.", "attempt", attempt, "backoff", backoff.String())
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	logCtx.Error("Stored object has no file record (uploaded, unaggregated).",
		"tenantId", tenantID, "submissionId", submissionID, "documentType", docType)
	return false, nil
}
