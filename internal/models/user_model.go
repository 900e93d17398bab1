package models

import "time"

// User represents a registered account.
type User struct {
	ID          string    `json:"id" firestore:"-"` // Auth UID, used as the document ID
	Email       string    `json:"email" firestore:"email"` // Stored lowercased for directory lookups
	DisplayName string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}
