package core

import (
	"context"
	"io"

	"docsign-backend-go/internal/models"
)

// Directory resolves an email address to a registered account. It never creates accounts.
type Directory interface {
	// Resolve returns ErrUserNotFound when no account has the email.
	Resolve(ctx context.Context, email string) (*models.User, error)
}

// UserService defines the interface for user-related operations.
type UserService interface {
	Directory
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one from the token claims.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// DocumentService defines document upload, lookup, metadata and deletion.
type DocumentService interface {
	CreateDocument(ctx context.Context, ownerID string, in models.CreateDocumentInput) (*models.Document, error)
	GetDocument(ctx context.Context, documentID, callerID string) (*models.DocumentView, error)
	GetRole(ctx context.Context, documentID, callerID string) (Role, error)
	// ListDocuments returns documents the caller owns, collaborates on or is assigned to sign.
	ListDocuments(ctx context.Context, callerID string) ([]*models.Document, error)
	// ListSharedDocuments is ListDocuments without owned documents, annotated with the caller's role.
	ListSharedDocuments(ctx context.Context, callerID string) ([]*models.DocumentView, error)
	UpdateDocument(ctx context.Context, documentID, callerID string, req models.UpdateDocumentRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, documentID, callerID string) error
	// OpenDocumentFile returns the stored binary. The caller must close the reader.
	OpenDocumentFile(ctx context.Context, documentID, callerID string) (*models.Document, io.ReadCloser, error)
}

// SharingService defines collaborator management.
type SharingService interface {
	AddCollaborator(ctx context.Context, documentID, callerID, email, permission string) (*models.Document, error)
	ShareDocument(ctx context.Context, documentID, callerID string, req models.ShareDocumentRequest) (*models.ShareResult, error)
	UpdateCollaboratorPermission(ctx context.Context, documentID, callerID, targetUserID, permission string) (*models.Document, error)
	RemoveCollaborator(ctx context.Context, documentID, callerID, targetUserID string) (*models.Document, error)
}

// SigningService defines signature capture and the signer's queue.
type SigningService interface {
	AddSignature(ctx context.Context, callerID string, req models.AddSignatureRequest, meta models.CaptureMetadata) (*models.Signature, error)
	ListSignatures(ctx context.Context, documentID, callerID string) ([]*models.Signature, error)
	ListDocumentsForSigning(ctx context.Context, callerID string) ([]models.SigningQueueItem, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// SignatureSealer protects signature payloads at rest.
type SignatureSealer interface {
	Seal(plainText string) (string, error)
	Open(sealed string) (string, error)
}
