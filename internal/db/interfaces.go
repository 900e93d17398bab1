package db

import (
	"context"

	"docsign-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// GetByEmail looks up an account by its lowercased email address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// DocumentFilter selects documents by the secondary indexes the store maintains.
// Zero-valued fields are ignored; all set fields must match.
type DocumentFilter struct {
	OwnerID        string
	SignerUserID   string
	SignerEmail    string // Lowercased
	CollaboratorID string
	Statuses       []string
	Limit          int
}

// DocumentRepository defines the interface for document data storage operations.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) (string, error) // Returns new document ID
	GetByID(ctx context.Context, documentID string) (*models.Document, error)
	// Query returns matching documents, newest first.
	Query(ctx context.Context, filter DocumentFilter) ([]*models.Document, error)
	// Mutate loads the document, applies fn and writes the result atomically.
	// An error from fn aborts the write and is returned unchanged.
	Mutate(ctx context.Context, documentID string, fn func(doc *models.Document) error) (*models.Document, error)
	// AttachSignature creates sig and applies fn to the document in one atomic write.
	// sig.ID is assigned before fn is called.
	AttachSignature(ctx context.Context, documentID string, sig *models.Signature, fn func(doc *models.Document) error) (*models.Document, error)
	Delete(ctx context.Context, documentID string) error
}

// SignatureRepository defines the interface for signature data storage operations.
type SignatureRepository interface {
	// ListByDocument returns a document's signatures, newest first.
	ListByDocument(ctx context.Context, documentID string) ([]*models.Signature, error)
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
