package core

import (
	"errors"
	"testing"

	"docsign-backend-go/internal/models"
)

func TestPresentStatus(t *testing.T) {
	tests := map[string]string{
		models.StatusPending:          "pending",
		models.StatusPendingSignature: "pending",
		models.StatusReview:           "pending",
		models.StatusUploaded:         "pending",
		models.StatusDraft:            "draft",
		models.StatusSigned:           "signed",
		models.StatusCompleted:        "completed",
	}
	for stored, want := range tests {
		if got := PresentStatus(stored); got != want {
			t.Errorf("PresentStatus(%q) = %q, want %q", stored, got, want)
		}
	}
}

func TestValidateStatusTransition(t *testing.T) {
	tests := []struct {
		from, to string
		wantErr  error
	}{
		{models.StatusDraft, models.StatusPendingSignature, nil},
		{models.StatusDraft, models.StatusCompleted, nil},
		{models.StatusPendingSignature, models.StatusPending, nil},
		{models.StatusReview, models.StatusSigned, nil},
		{models.StatusSigned, models.StatusCompleted, nil},
		{models.StatusSigned, models.StatusSigned, nil},
		{models.StatusSigned, models.StatusDraft, ErrInvalidStatusTransition},
		{models.StatusSigned, models.StatusPending, ErrInvalidStatusTransition},
		{models.StatusCompleted, models.StatusPendingSignature, ErrInvalidStatusTransition},
		{models.StatusCompleted, models.StatusSigned, ErrInvalidStatusTransition},
		{models.StatusPendingSignature, models.StatusDraft, ErrInvalidStatusTransition},
		{models.StatusDraft, models.StatusReview, ErrValidationFailed},
		{models.StatusDraft, "archived", ErrValidationFailed},
	}
	for _, tt := range tests {
		err := ValidateStatusTransition(tt.from, tt.to)
		if tt.wantErr == nil && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tt.from, tt.to, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%s -> %s: error = %v, want %v", tt.from, tt.to, err, tt.wantErr)
		}
	}
}

func TestInitialStatus(t *testing.T) {
	if InitialStatus(true) != models.StatusPendingSignature {
		t.Error("with signer should be pending_signature")
	}
	if InitialStatus(false) != models.StatusDraft {
		t.Error("without signer should be draft")
	}
}
