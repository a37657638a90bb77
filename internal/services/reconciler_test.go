package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseworks/submissionflow/internal/models"
)

func newTestReconciler(objects *fakeObjectStore, records *fakeAggregationStore) *ReconcilerFunction {
	return &ReconcilerFunction{
		objects:       objects,
		records:       records,
		config:        ReconcilerConfig{UploadBucket: "uploads", CollectionName: "submissions"},
		checkAttempts: 2,
		checkBackoff:  time.Millisecond,
	}
}

// seedUpload stores an object and, unless orphaned, its file record.
func seedUpload(t *testing.T, objects *fakeObjectStore, records *fakeAggregationStore, docType models.DocumentType, orphaned bool) string {
	t.Helper()

	key := BuildStorageKey("acme", "sub-42", docType, NewFileID(), "pdf")
	require.NoError(t, objects.Put(context.Background(), key, bytes.NewReader(pdfPayload)))

	if !orphaned {
		_, _, err := records.CommitFile(context.Background(), models.SubmissionFile{
			TenantID:     "acme",
			SubmissionID: "sub-42",
			DocumentType: docType,
			StorageKey:   key,
			ContentType:  "application/pdf",
			PageCount:    1,
		}, 1)
		require.NoError(t, err)
	}
	return key
}

func TestSweepReportsUnaggregatedObjects(t *testing.T) {
	objects := newFakeObjectStore()
	records := newFakeAggregationStore()
	reconciler := newTestReconciler(objects, records)

	seedUpload(t, objects, records, models.DocumentTypeInvoice, false)
	orphan := seedUpload(t, objects, records, models.DocumentTypeInvoice, true)
	misKeyed := "acme/sub-42/stray.bin"
	require.NoError(t, objects.Put(context.Background(), misKeyed, bytes.NewReader(pngPayload)))

	report, err := reconciler.Sweep(context.Background(), "acme", "sub-42")
	require.NoError(t, err)

	assert.Equal(t, 3, report.ScannedKeys)
	assert.ElementsMatch(t, []string{orphan, misKeyed}, report.OrphanKeys)
}

func TestSweepCleanSubmission(t *testing.T) {
	objects := newFakeObjectStore()
	records := newFakeAggregationStore()
	reconciler := newTestReconciler(objects, records)

	seedUpload(t, objects, records, models.DocumentTypeInvoice, false)
	seedUpload(t, objects, records, models.DocumentTypeContract, false)

	report, err := reconciler.Sweep(context.Background(), "acme", "sub-42")
	require.NoError(t, err)

	assert.Equal(t, 2, report.ScannedKeys)
	assert.Empty(t, report.OrphanKeys)
}

func TestSweepScopesToSubmissionPrefix(t *testing.T) {
	objects := newFakeObjectStore()
	records := newFakeAggregationStore()
	reconciler := newTestReconciler(objects, records)

	otherKey := BuildStorageKey("acme", "sub-99", models.DocumentTypeInvoice, NewFileID(), "pdf")
	require.NoError(t, objects.Put(context.Background(), otherKey, bytes.NewReader(pdfPayload)))

	report, err := reconciler.Sweep(context.Background(), "acme", "sub-42")
	require.NoError(t, err)

	assert.Zero(t, report.ScannedKeys)
	assert.Empty(t, report.OrphanKeys)
}

func TestCheckObjectFindsRecord(t *testing.T) {
	objects := newFakeObjectStore()
	records := newFakeAggregationStore()
	reconciler := newTestReconciler(objects, records)

	key := seedUpload(t, objects, records, models.DocumentTypeInvoice, false)

	found, err := reconciler.CheckObject(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCheckObjectFlagsOrphanAfterRechecks(t *testing.T) {
	objects := newFakeObjectStore()
	records := newFakeAggregationStore()
	reconciler := newTestReconciler(objects, records)

	key := seedUpload(t, objects, records, models.DocumentTypeInvoice, true)

	found, err := reconciler.CheckObject(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCheckObjectIgnoresForeignKeys(t *testing.T) {
	reconciler := newTestReconciler(newFakeObjectStore(), newFakeAggregationStore())

	found, err := reconciler.CheckObject(context.Background(), "unrelated/object.txt")
	require.NoError(t, err)
	assert.False(t, found)
}
