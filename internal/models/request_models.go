package models

import "io"

// CreateDocumentInput carries an upload into DocumentService.CreateDocument.
type CreateDocumentInput struct {
	Title        string
	Description  string
	SignerName   string
	SignerEmail  string
	OriginalName string
	MimeType     string
	Content      io.Reader
}

// UpdateDocumentRequest represents the request body for updating a document.
// Pointers distinguish "not provided" from empty values.
type UpdateDocumentRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// AddCollaboratorRequest represents the request body for adding one collaborator.
type AddCollaboratorRequest struct {
	Email      string `json:"email" binding:"required"`
	Permission string `json:"permission,omitempty"` // Defaults to "view"
}

// ShareDocumentRequest represents the request body for sharing with several recipients.
type ShareDocumentRequest struct {
	Emails     []string `json:"emails" binding:"required"`
	Permission string   `json:"permission,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// UpdateCollaboratorRequest changes an existing collaborator's permission.
type UpdateCollaboratorRequest struct {
	Permission string `json:"permission" binding:"required"`
}

// AddSignatureRequest represents the request body for signing a document.
type AddSignatureRequest struct {
	DocumentID    string            `json:"documentId" binding:"required"`
	SignatureData string            `json:"signatureData" binding:"required"`
	Position      SignaturePosition `json:"position"`
}

// ShareEntry identifies a recipient in a share result bucket.
type ShareEntry struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// ShareResult buckets the outcome of a bulk share per recipient.
type ShareResult struct {
	Added    []ShareEntry `json:"added"`
	Existing []ShareEntry `json:"existing"`
	NotFound []string     `json:"notFound"`
}
