package core

import (
	"fmt"

	"docsign-backend-go/internal/models"
)

// PresentedPending is the single status signers see for every "awaiting signature" literal.
const PresentedPending = models.StatusPending

var statusRank = map[string]int{
	models.StatusDraft:            0,
	models.StatusPending:          1,
	models.StatusPendingSignature: 1,
	models.StatusReview:           1,
	models.StatusUploaded:         1,
	models.StatusSigned:           2,
	models.StatusCompleted:        3,
}

var writableStatuses = map[string]bool{
	models.StatusDraft:            true,
	models.StatusPending:          true,
	models.StatusPendingSignature: true,
	models.StatusSigned:           true,
	models.StatusCompleted:        true,
}

// IsAwaitingSignature reports whether status is one of the pending synonyms.
func IsAwaitingSignature(status string) bool {
	return statusRank[status] == 1
}

// PresentStatus maps stored literals to the status reported in signer-facing listings.
func PresentStatus(status string) string {
	if IsAwaitingSignature(status) {
		return PresentedPending
	}
	return status
}

// ValidateStatusTransition allows an owner to set any canonical status that does
// not move the document backwards. Unknown stored literals are treated as draft.
func ValidateStatusTransition(from, to string) error {
	if !writableStatuses[to] {
		return fmt.Errorf("%w: unknown status '%s'", ErrValidationFailed, to)
	}
	if statusRank[to] < statusRank[from] {
		return fmt.Errorf("%w: '%s' -> '%s'", ErrInvalidStatusTransition, from, to)
	}
	return nil
}

// InitialStatus is pending_signature when a signer is attached, draft otherwise.
func InitialStatus(hasSigner bool) string {
	if hasSigner {
		return models.StatusPendingSignature
	}
	return models.StatusDraft
}
