package models

import "time"

// Document lifecycle statuses as stored in Firestore.
const (
	StatusDraft            = "draft"
	StatusPending          = "pending"
	StatusPendingSignature = "pending_signature"
	StatusSigned           = "signed"
	StatusCompleted        = "completed"

	// Legacy literals written by older clients. They are read but never written.
	StatusReview   = "review"
	StatusUploaded = "uploaded"
)

// Collaborator permission levels.
const (
	PermissionView = "view"
	PermissionSign = "sign"
	PermissionEdit = "edit"
)

// Collaborator is a non-owner account granted explicit access to a document.
type Collaborator struct {
	UserID     string    `json:"userId" firestore:"userId"`
	Permission string    `json:"permission" firestore:"permission"`
	AddedAt    time.Time `json:"addedAt" firestore:"addedAt"`
}

// Document represents an uploaded PDF and its signing workflow state.
type Document struct {
	ID           string `json:"id" firestore:"-"` // Document ID, auto-generated
	Title        string `json:"title" firestore:"title"`
	Description  string `json:"description" firestore:"description"`
	Filename     string `json:"filename" firestore:"filename"`         // Storage key of the uploaded binary
	OriginalName string `json:"originalName" firestore:"originalName"` // Filename as uploaded by the client
	FilePath     string `json:"filePath" firestore:"filePath"`
	FileSize     int64  `json:"fileSize" firestore:"fileSize"`
	MimeType     string `json:"mimeType" firestore:"mimeType"`

	OwnerID string `json:"ownerId" firestore:"ownerId"`

	SignerName   string `json:"signerName,omitempty" firestore:"signerName,omitempty"`
	SignerEmail  string `json:"signerEmail,omitempty" firestore:"signerEmail,omitempty"`
	SignerUserID string `json:"signerUserId,omitempty" firestore:"signerUserId,omitempty"`

	Collaborators []Collaborator `json:"collaborators" firestore:"collaborators"`
	// CollaboratorIDs mirrors Collaborators so Firestore can answer array-contains queries.
	CollaboratorIDs []string `json:"-" firestore:"collaboratorIds"`

	Status       string   `json:"status" firestore:"status"`
	SignatureIDs []string `json:"signatures" firestore:"signatures"`
	SignedBy     []string `json:"signedBy,omitempty" firestore:"signedBy,omitempty"`

	SentAt    *time.Time `json:"sentAt,omitempty" firestore:"sentAt,omitempty"`
	SignedAt  *time.Time `json:"signedAt,omitempty" firestore:"signedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

// FindCollaborator returns the collaborator entry for userID, if any.
func (d *Document) FindCollaborator(userID string) (Collaborator, bool) {
	for _, collab := range d.Collaborators {
		if collab.UserID == userID {
			return collab, true
		}
	}
	return Collaborator{}, false
}

// HasSigned reports whether userID has attached at least one signature.
func (d *Document) HasSigned(userID string) bool {
	for _, id := range d.SignedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// DocumentView is a document annotated with the caller's role.
type DocumentView struct {
	*Document
	UserRole string `json:"userRole,omitempty"`
}

// SigningQueueItem is the signer-facing projection of a document awaiting a signature.
// Status is the presentation status, not the stored literal.
type SigningQueueItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Filename    string     `json:"filename"`
	SenderName  string     `json:"senderName"`
	SenderEmail string     `json:"senderEmail"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
}
