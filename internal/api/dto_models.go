package api

import "docsign-backend-go/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// DocumentResponse wraps a document returned from a mutation.
type DocumentResponse struct {
	Message  string           `json:"message"`
	Document *models.Document `json:"document"`
}

// ShareDocumentResponse reports the per-recipient outcome of a bulk share.
type ShareDocumentResponse struct {
	Message string `json:"message"`
	*models.ShareResult
}

// SignatureResponse is returned after a signature is attached.
type SignatureResponse struct {
	Message   string            `json:"message"`
	Signature *models.Signature `json:"signature"`
}

// RoleResponse reports the caller's role on one document.
type RoleResponse struct {
	DocumentID string `json:"documentId"`
	Role       string `json:"role"`
}
