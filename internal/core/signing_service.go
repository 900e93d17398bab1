package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"docsign-backend-go/internal/db"
	"docsign-backend-go/internal/events"
	"docsign-backend-go/internal/models"
)

// signingService implements the SigningService interface.
type signingService struct {
	docRepo db.DocumentRepository
	sigRepo db.SignatureRepository
	users   UserService
	sealer  SignatureSealer // nil stores payloads as received
	audit   AuditService
	events  *eventEmitter
	logger  *zap.Logger
	now     func() time.Time
}

// NewSigningService creates a new SigningService instance.
func NewSigningService(
	docRepo db.DocumentRepository,
	sigRepo db.SignatureRepository,
	users UserService,
	sealer SignatureSealer,
	audit AuditService,
	publisher events.Publisher,
	logger *zap.Logger,
) SigningService {
	now := func() time.Time { return time.Now().UTC() }
	return &signingService{
		docRepo: docRepo,
		sigRepo: sigRepo,
		users:   users,
		sealer:  sealer,
		audit:   audit,
		events:  newEventEmitter(publisher, users, logger, now),
		logger:  logger,
		now:     now,
	}
}

func validatePosition(p *models.SignaturePosition) error {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Page < 0 || p.X < 0 || p.Y < 0 || p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("%w: signature position must not be negative", ErrValidationFailed)
	}
	return nil
}

// AddSignature records a signature and moves the document to signed. The
// signature and the document update are written in one transaction.
func (s *signingService) AddSignature(ctx context.Context, callerID string, req models.AddSignatureRequest, meta models.CaptureMetadata) (*models.Signature, error) {
	if strings.TrimSpace(req.DocumentID) == "" {
		return nil, fmt.Errorf("%w: documentId is required", ErrValidationFailed)
	}
	if strings.TrimSpace(req.SignatureData) == "" {
		return nil, fmt.Errorf("%w: signatureData is required", ErrValidationFailed)
	}
	position := req.Position
	if err := validatePosition(&position); err != nil {
		return nil, err
	}

	stored := req.SignatureData
	sealed := false
	if s.sealer != nil {
		var err error
		stored, err = s.sealer.Seal(req.SignatureData)
		if err != nil {
			return nil, fmt.Errorf("failed to seal signature payload: %w", err)
		}
		sealed = true
	}

	now := s.now()
	sig := &models.Signature{
		DocumentID:    req.DocumentID,
		SignerID:      callerID,
		SignatureData: stored,
		Sealed:        sealed,
		Position:      position,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		IsValid:       true,
		CreatedAt:     now,
	}

	var previousStatus string
	updated, err := s.docRepo.AttachSignature(ctx, req.DocumentID, sig, func(doc *models.Document) error {
		if !CanSign(ResolveRole(doc, callerID)) {
			return ErrForbidden
		}
		previousStatus = doc.Status
		doc.SignatureIDs = append(doc.SignatureIDs, sig.ID)
		if !doc.HasSigned(callerID) {
			doc.SignedBy = append(doc.SignedBy, callerID)
		}
		doc.Status = models.StatusSigned
		if doc.SignedAt == nil {
			signedAt := now
			doc.SignedAt = &signedAt
		}
		doc.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err, req.DocumentID)
	}

	recordAudit(ctx, s.audit, s.logger, callerID, ActionDocumentSign, req.DocumentID, map[string]interface{}{
		"signatureId":    sig.ID,
		"previousStatus": previousStatus,
	})
	if callerID != updated.OwnerID {
		if owner, err := s.users.GetByID(ctx, updated.OwnerID); err == nil && owner.Email != "" {
			s.events.emit(ctx, events.Event{
				Type:          events.TypeDocumentSigned,
				DocumentID:    updated.ID,
				DocumentTitle: updated.Title,
				ActorID:       callerID,
				Recipients:    []string{owner.Email},
			})
		}
	}

	sig.SignatureData = req.SignatureData
	return sig, nil
}

// ListSignatures returns the document's signatures with payloads opened.
func (s *signingService) ListSignatures(ctx context.Context, documentID, callerID string) ([]*models.Signature, error) {
	doc, err := loadDocument(ctx, s.docRepo, documentID)
	if err != nil {
		return nil, err
	}
	if !HasAccess(ResolveRole(doc, callerID)) {
		return nil, ErrForbidden
	}

	sigs, err := s.sigRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures for document '%s': %w", documentID, err)
	}
	for _, sig := range sigs {
		if !sig.Sealed {
			continue
		}
		if s.sealer == nil {
			s.logger.Warn("Sealed signature without a configured key", zap.String("signatureID", sig.ID))
			sig.SignatureData = ""
			continue
		}
		plain, err := s.sealer.Open(sig.SignatureData)
		if err != nil {
			s.logger.Error("Failed to open sealed signature", zap.String("signatureID", sig.ID), zap.Error(err))
			sig.SignatureData = ""
			continue
		}
		sig.SignatureData = plain
	}
	return sigs, nil
}

// ListDocumentsForSigning returns documents the caller can sign as designated
// signer or sign/edit collaborator. Owned, already signed, draft and completed
// documents are left out. Statuses are reported through PresentStatus.
func (s *signingService) ListDocumentsForSigning(ctx context.Context, callerID string) ([]models.SigningQueueItem, error) {
	docs, err := queryUnion(ctx, s.docRepo,
		db.DocumentFilter{SignerUserID: callerID},
		db.DocumentFilter{CollaboratorID: callerID},
	)
	if err != nil {
		return nil, err
	}

	senders := make(map[string]*models.User)
	items := make([]models.SigningQueueItem, 0, len(docs))
	for _, doc := range docs {
		switch ResolveRole(doc, callerID) {
		case RoleSigner, RoleSign, RoleEdit:
		default:
			continue
		}
		if doc.HasSigned(callerID) {
			continue
		}
		if doc.Status == models.StatusDraft || doc.Status == models.StatusCompleted {
			continue
		}

		sender, ok := senders[doc.OwnerID]
		if !ok {
			sender, err = s.users.GetByID(ctx, doc.OwnerID)
			if err != nil {
				s.logger.Warn("Could not load document sender", zap.String("ownerID", doc.OwnerID), zap.Error(err))
				sender = nil
			}
			senders[doc.OwnerID] = sender
		}

		item := models.SigningQueueItem{
			ID:        doc.ID,
			Title:     doc.Title,
			Filename:  doc.OriginalName,
			Status:    PresentStatus(doc.Status),
			CreatedAt: doc.CreatedAt,
			SentAt:    doc.SentAt,
		}
		if sender != nil {
			item.SenderName = sender.DisplayName
			item.SenderEmail = sender.Email
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return queueTime(items[i]).After(queueTime(items[j]))
	})
	return items, nil
}

func queueTime(item models.SigningQueueItem) time.Time {
	if item.SentAt != nil {
		return *item.SentAt
	}
	return item.CreatedAt
}
