package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"docsign-backend-go/internal/models"
)

const (
	documentsCollection  = "documents"
	signaturesCollection = "signatures"
)

// firestoreDocumentRepository implements the DocumentRepository interface using Firestore.
type firestoreDocumentRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreDocumentRepository creates a new instance of firestoreDocumentRepository.
func NewFirestoreDocumentRepository(client *firestore.Client, logger *zap.Logger) DocumentRepository {
	return &firestoreDocumentRepository{client: client, logger: logger}
}

// Create adds a new document record with an auto-generated ID and sets doc.ID.
func (r *firestoreDocumentRepository) Create(ctx context.Context, doc *models.Document) (string, error) {
	docRef := r.client.Collection(documentsCollection).NewDoc()
	doc.ID = docRef.ID
	syncCollaboratorIDs(doc)

	if _, err := docRef.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a document record by its ID.
func (r *firestoreDocumentRepository) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	if documentID == "" {
		return nil, errors.New("documentID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(documentsCollection).Doc(documentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("document with ID '%s' not found: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document with ID '%s': %w", documentID, err)
	}
	return decodeDocument(docSnap)
}

// Query returns documents matching filter ordered by creation time, newest first.
func (r *firestoreDocumentRepository) Query(ctx context.Context, filter DocumentFilter) ([]*models.Document, error) {
	query := r.client.Collection(documentsCollection).Query
	if filter.OwnerID != "" {
		query = query.Where("ownerId", "==", filter.OwnerID)
	}
	if filter.SignerUserID != "" {
		query = query.Where("signerUserId", "==", filter.SignerUserID)
	}
	if filter.SignerEmail != "" {
		query = query.Where("signerEmail", "==", filter.SignerEmail)
	}
	if filter.CollaboratorID != "" {
		query = query.Where("collaboratorIds", "array-contains", filter.CollaboratorID)
	}
	if len(filter.Statuses) == 1 {
		query = query.Where("status", "==", filter.Statuses[0])
	} else if len(filter.Statuses) > 1 {
		query = query.Where("status", "in", filter.Statuses)
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []*models.Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate documents: %w", err)
		}
		doc, err := decodeDocument(snap)
		if err != nil {
			r.logger.Warn("Skipping undecodable document", zap.String("documentID", snap.Ref.ID), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Mutate runs fn inside a Firestore transaction. Firestore retries the transaction
// when a concurrent writer touches the same document, so fn may run more than once.
func (r *firestoreDocumentRepository) Mutate(ctx context.Context, documentID string, fn func(doc *models.Document) error) (*models.Document, error) {
	docRef := r.client.Collection(documentsCollection).Doc(documentID)

	var updated *models.Document
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := getInTransaction(tx, docRef)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		syncCollaboratorIDs(doc)
		updated = doc
		return tx.Set(docRef, doc)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AttachSignature creates the signature record and rewrites the document in one transaction.
func (r *firestoreDocumentRepository) AttachSignature(ctx context.Context, documentID string, sig *models.Signature, fn func(doc *models.Document) error) (*models.Document, error) {
	docRef := r.client.Collection(documentsCollection).Doc(documentID)

	var updated *models.Document
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := getInTransaction(tx, docRef)
		if err != nil {
			return err
		}

		sigRef := r.client.Collection(signaturesCollection).NewDoc()
		sig.ID = sigRef.ID
		sig.DocumentID = documentID

		if err := fn(doc); err != nil {
			return err
		}
		if err := tx.Create(sigRef, sig); err != nil {
			return fmt.Errorf("failed to create signature: %w", err)
		}
		syncCollaboratorIDs(doc)
		updated = doc
		return tx.Set(docRef, doc)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a document record. It does not touch the stored file or signatures.
func (r *firestoreDocumentRepository) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return errors.New("documentID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(documentsCollection).Doc(documentID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("document with ID '%s' not found for deletion: %w", documentID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete document with ID '%s': %w", documentID, err)
	}
	return nil
}

func getInTransaction(tx *firestore.Transaction, docRef *firestore.DocumentRef) (*models.Document, error) {
	docSnap, err := tx.Get(docRef)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("document with ID '%s' not found: %w", docRef.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document with ID '%s': %w", docRef.ID, err)
	}
	return decodeDocument(docSnap)
}

func decodeDocument(docSnap *firestore.DocumentSnapshot) (*models.Document, error) {
	var doc models.Document
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document data for ID '%s': %w", docSnap.Ref.ID, err)
	}
	doc.ID = docSnap.Ref.ID
	return &doc, nil
}

// syncCollaboratorIDs rebuilds the array-contains index field from Collaborators.
func syncCollaboratorIDs(doc *models.Document) {
	ids := make([]string, 0, len(doc.Collaborators))
	for _, collab := range doc.Collaborators {
		ids = append(ids, collab.UserID)
	}
	doc.CollaboratorIDs = ids
}
