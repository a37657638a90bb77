package gcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/caseworks/submissionflow/internal/models"
)

// NewFirestoreClient creates a Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

// AggregationStore holds the profile, document, and file records of every
// submission in a single Firestore collection, addressed by composite key.
type AggregationStore struct {
	client     *firestore.Client
	collection string
}

// NewAggregationStore wraps a Firestore client around the given collection.
func NewAggregationStore(client *firestore.Client, collection string) *AggregationStore {
	return &AggregationStore{client: client, collection: collection}
}

func (s *AggregationStore) docRef(key models.CompositeKey) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(key.DocID())
}

// GetProfile reads the profile record of a submission. Returns
// models.ErrProfileNotFound when the submission has never been registered.
func (s *AggregationStore) GetProfile(ctx context.Context, tenantID, submissionID string) (*models.SubmissionProfile, error) {
	snap, err := s.docRef(models.ProfileKey(tenantID, submissionID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read submission profile: %w", err)
	}

	var profile models.SubmissionProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode submission profile: %w", err)
	}
	return &profile, nil
}

// CreateProfile registers a new submission profile with zeroed counters. It
// is create-only and belongs to the submission-creation flow, not to the
// upload pipeline itself.
func (s *AggregationStore) CreateProfile(ctx context.Context, tenantID, submissionID string) (*models.SubmissionProfile, error) {
	profile := models.SubmissionProfile{
		Kind:         models.KindProfile,
		TenantID:     tenantID,
		SubmissionID: submissionID,
		CreatedAt:    time.Now(),
	}
	if _, err := s.docRef(models.ProfileKey(tenantID, submissionID)).Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create submission profile: %w", err)
	}
	return &profile, nil
}

// ListFiles returns every file record of a document type, ordered by index.
func (s *AggregationStore) ListFiles(ctx context.Context, tenantID, submissionID string, docType models.DocumentType) ([]models.SubmissionFile, error) {
	docs, err := s.client.Collection(s.collection).
		Where("kind", "==", models.KindFile).
		Where("tenantId", "==", tenantID).
		Where("submissionId", "==", submissionID).
		Where("documentType", "==", string(docType)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}

	files := make([]models.SubmissionFile, 0, len(docs))
	for _, doc := range docs {
		var file models.SubmissionFile
		if err := doc.DataTo(&file); err != nil {
			return nil, fmt.Errorf("failed to decode file record %s: %w", doc.Ref.ID, err)
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Index < files[j].Index })
	return files, nil
}

// CommitFile performs the aggregation writes of one accepted upload in a
// single transaction: it reads the document record to assign the next file
// index and to decide create-vs-update, creates the file record, and
// additively merges the profile counters. Firestore retries the transaction
// on contention, so concurrent uploads of the same document type serialize
// and indices stay gapless.
//
// profilePages is the amount added to the profile's totalPages counter; it is
// the inspector's detected page count for page-oriented files and zero
// otherwise. The returned bool reports whether this upload created the
// document record, i.e. was the first file of its type.
func (s *AggregationStore) CommitFile(ctx context.Context, file models.SubmissionFile, profilePages int64) (int64, bool, error) {
	docKey := models.DocumentKey(file.TenantID, file.SubmissionID, file.DocumentType)
	profileKey := models.ProfileKey(file.TenantID, file.SubmissionID)

	var index int64
	var createdDoc bool

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(s.docRef(docKey))
		exists := true
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return fmt.Errorf("failed to read document record: %w", err)
			}
			exists = false
		}

		index = 0
		if exists {
			var doc models.SubmissionDocument
			if err := snap.DataTo(&doc); err != nil {
				return fmt.Errorf("failed to decode document record: %w", err)
			}
			index = doc.FileCount
		}
		createdDoc = !exists
		now := time.Now()

		record := file
		record.Kind = models.KindFile
		record.Index = index
		record.TypePrefix = models.FileSortPrefix(file.DocumentType)
		record.CreatedAt = now

		fileKey := models.FileKey(file.TenantID, file.SubmissionID, file.DocumentType, index)
		if err := tx.Create(s.docRef(fileKey), record); err != nil {
			return fmt.Errorf("failed to create file record: %w", err)
		}

		// Additive merge; also materializes the profile if the
		// submission-creation flow has not written it yet.
		profileUpdate := map[string]interface{}{
			"kind":           models.KindProfile,
			"tenantId":       file.TenantID,
			"submissionId":   file.SubmissionID,
			"totalPages":     firestore.Increment(profilePages),
			"totalDocuments": firestore.Increment(1),
		}
		if err := tx.Set(s.docRef(profileKey), profileUpdate, firestore.MergeAll); err != nil {
			return fmt.Errorf("failed to update profile counters: %w", err)
		}

		if exists {
			return tx.Update(s.docRef(docKey), []firestore.Update{
				{Path: "fileCount", Value: firestore.Increment(1)},
				{Path: "updatedAt", Value: now},
			})
		}
		return tx.Create(s.docRef(docKey), models.SubmissionDocument{
			Kind:         models.KindDocument,
			TenantID:     file.TenantID,
			SubmissionID: file.SubmissionID,
			DocumentType: file.DocumentType,
			FileCount:    1,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	if err != nil {
		return 0, false, err
	}
	return index, createdDoc, nil
}
