package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"docsign-backend-go/internal/models"
)

// firestoreSignatureRepository implements the SignatureRepository interface using Firestore.
// Signatures are created through DocumentRepository.AttachSignature.
type firestoreSignatureRepository struct {
	client *firestore.Client
}

// NewFirestoreSignatureRepository creates a new instance of firestoreSignatureRepository.
func NewFirestoreSignatureRepository(client *firestore.Client) SignatureRepository {
	return &firestoreSignatureRepository{client: client}
}

func (r *firestoreSignatureRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.Signature, error) {
	iter := r.client.Collection(signaturesCollection).
		Where("documentId", "==", documentID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var sigs []*models.Signature
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate signatures for document '%s': %w", documentID, err)
		}
		var sig models.Signature
		if err := docSnap.DataTo(&sig); err != nil {
			return nil, fmt.Errorf("failed to decode signature data for ID '%s': %w", docSnap.Ref.ID, err)
		}
		sig.ID = docSnap.Ref.ID
		sigs = append(sigs, &sig)
	}
	return sigs, nil
}
