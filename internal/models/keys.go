package models

import "fmt"

// CompositeKey addresses one record in the aggregation store. Partition
// groups every record of a submission; Sort discriminates the profile, a
// document type, or an individual file.
type CompositeKey struct {
	Partition string
	Sort      string
}

// DocID flattens the key into a single Firestore document ID. The partition
// and sort separators never appear in tenant or submission identifiers.
func (k CompositeKey) DocID() string {
	return k.Partition + "|" + k.Sort
}

func partitionKey(tenantID, submissionID string) string {
	return fmt.Sprintf("%s#%s", tenantID, submissionID)
}

// ProfileKey addresses the SubmissionProfile record of a submission.
func ProfileKey(tenantID, submissionID string) CompositeKey {
	return CompositeKey{
		Partition: partitionKey(tenantID, submissionID),
		Sort:      KindProfile,
	}
}

// DocumentKey addresses the SubmissionDocument record of a document type.
func DocumentKey(tenantID, submissionID string, docType DocumentType) CompositeKey {
	return CompositeKey{
		Partition: partitionKey(tenantID, submissionID),
		Sort:      fmt.Sprintf("DOC#%s", docType),
	}
}

// FileSortPrefix is the sort-key prefix shared by every file record of a
// document type. It is stored on the file record as its type-prefix tag.
func FileSortPrefix(docType DocumentType) string {
	return fmt.Sprintf("FILE#%s#", docType)
}

// FileKey addresses the file record at a zero-based index within its
// document-type group. The index is fixed-width so sort order matches
// numeric order.
func FileKey(tenantID, submissionID string, docType DocumentType, index int64) CompositeKey {
	return CompositeKey{
		Partition: partitionKey(tenantID, submissionID),
		Sort:      fmt.Sprintf("%s%05d", FileSortPrefix(docType), index),
	}
}
