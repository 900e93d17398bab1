package models

import "time"

// SignaturePosition locates a signature overlay on a page.
type SignaturePosition struct {
	X      float64 `json:"x" firestore:"x"`
	Y      float64 `json:"y" firestore:"y"`
	Page   int     `json:"page" firestore:"page"`
	Width  float64 `json:"width" firestore:"width"`
	Height float64 `json:"height" firestore:"height"`
}

// Signature is an immutable signing record attached to a document.
// Only IsValid may change after creation.
type Signature struct {
	ID            string            `json:"id" firestore:"-"`
	DocumentID    string            `json:"documentId" firestore:"documentId"`
	SignerID      string            `json:"signerId" firestore:"signerId"`
	SignatureData string            `json:"signatureData" firestore:"signatureData"` // Base64 image; sealed at rest when a key is configured
	Sealed        bool              `json:"-" firestore:"sealed"`
	Position      SignaturePosition `json:"position" firestore:"position"`
	IPAddress     string            `json:"ipAddress,omitempty" firestore:"ipAddress,omitempty"`
	UserAgent     string            `json:"userAgent,omitempty" firestore:"userAgent,omitempty"`
	IsValid       bool              `json:"isValid" firestore:"isValid"`
	CreatedAt     time.Time         `json:"createdAt" firestore:"createdAt"`
}

// CaptureMetadata describes the client a signature was captured from.
type CaptureMetadata struct {
	IPAddress string
	UserAgent string
}
