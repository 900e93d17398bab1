package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"docsign-backend-go/internal/db"
	"docsign-backend-go/internal/events"
	"docsign-backend-go/internal/models"
	"docsign-backend-go/internal/storage"
)

// documentService implements the DocumentService interface.
type documentService struct {
	docRepo   db.DocumentRepository
	directory Directory
	files     storage.FileStore
	audit     AuditService
	events    *eventEmitter
	logger    *zap.Logger
	now       func() time.Time
}

// NewDocumentService creates a new DocumentService instance.
func NewDocumentService(
	docRepo db.DocumentRepository,
	users UserService,
	directory Directory,
	files storage.FileStore,
	audit AuditService,
	publisher events.Publisher,
	logger *zap.Logger,
) DocumentService {
	now := func() time.Time { return time.Now().UTC() }
	return &documentService{
		docRepo:   docRepo,
		directory: directory,
		files:     files,
		audit:     audit,
		events:    newEventEmitter(publisher, users, logger, now),
		logger:    logger,
		now:       now,
	}
}

// CreateDocument stores the upload and creates its record. The signer, when given,
// must resolve to a registered account before anything is written.
func (s *documentService) CreateDocument(ctx context.Context, ownerID string, in models.CreateDocumentInput) (*models.Document, error) {
	if in.Content == nil || strings.TrimSpace(in.OriginalName) == "" {
		return nil, fmt.Errorf("%w: a file is required", ErrValidationFailed)
	}

	var signer *models.User
	var signerEmail string
	if strings.TrimSpace(in.SignerEmail) != "" {
		email, err := normalizeEmail(in.SignerEmail)
		if err != nil {
			return nil, err
		}
		signer, err = s.directory.Resolve(ctx, email)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, fmt.Errorf("%w: '%s'", ErrSignerNotRegistered, email)
			}
			return nil, fmt.Errorf("failed to resolve signer: %w", err)
		}
		signerEmail = email
	}

	stored, err := s.files.Save(ctx, in.OriginalName, in.MimeType, in.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	now := s.now()
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.OriginalName
	}
	doc := &models.Document{
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		Filename:        stored.Key,
		OriginalName:    in.OriginalName,
		FilePath:        stored.Path,
		FileSize:        stored.Size,
		MimeType:        in.MimeType,
		OwnerID:         ownerID,
		Collaborators:   []models.Collaborator{},
		CollaboratorIDs: []string{},
		SignatureIDs:    []string{},
		Status:          InitialStatus(signer != nil),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if signer != nil {
		doc.SignerEmail = signerEmail
		doc.SignerUserID = signer.ID
		doc.SignerName = strings.TrimSpace(in.SignerName)
		if doc.SignerName == "" {
			doc.SignerName = signer.DisplayName
		}
		sentAt := now
		doc.SentAt = &sentAt
	}

	documentID, err := s.docRepo.Create(ctx, doc)
	if err != nil {
		if delErr := s.files.Delete(ctx, stored.Key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned upload", zap.String("key", stored.Key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create document in repository: %w", err)
	}
	doc.ID = documentID

	recordAudit(ctx, s.audit, s.logger, ownerID, ActionDocumentCreate, documentID, map[string]interface{}{
		"title":  doc.Title,
		"status": doc.Status,
	})
	if signer != nil {
		s.events.emit(ctx, events.Event{
			Type:          events.TypeDocumentAssigned,
			DocumentID:    documentID,
			DocumentTitle: doc.Title,
			ActorID:       ownerID,
			Recipients:    []string{signerEmail},
		})
	}
	return doc, nil
}

// GetDocument returns the document annotated with the caller's role.
func (s *documentService) GetDocument(ctx context.Context, documentID, callerID string) (*models.DocumentView, error) {
	doc, err := loadDocument(ctx, s.docRepo, documentID)
	if err != nil {
		return nil, err
	}
	role := ResolveRole(doc, callerID)
	if !HasAccess(role) {
		return nil, ErrForbidden
	}
	return &models.DocumentView{Document: doc, UserRole: string(role)}, nil
}

// GetRole reports the caller's role. RoleNone is a result, not an error.
func (s *documentService) GetRole(ctx context.Context, documentID, callerID string) (Role, error) {
	doc, err := loadDocument(ctx, s.docRepo, documentID)
	if err != nil {
		return RoleNone, err
	}
	return ResolveRole(doc, callerID), nil
}

func (s *documentService) ListDocuments(ctx context.Context, callerID string) ([]*models.Document, error) {
	return queryUnion(ctx, s.docRepo, participantFilters(callerID)...)
}

func (s *documentService) ListSharedDocuments(ctx context.Context, callerID string) ([]*models.DocumentView, error) {
	docs, err := queryUnion(ctx, s.docRepo,
		db.DocumentFilter{CollaboratorID: callerID},
		db.DocumentFilter{SignerUserID: callerID},
	)
	if err != nil {
		return nil, err
	}
	views := make([]*models.DocumentView, 0, len(docs))
	for _, doc := range docs {
		role := ResolveRole(doc, callerID)
		if role == RoleOwner || !HasAccess(role) {
			continue
		}
		views = append(views, &models.DocumentView{Document: doc, UserRole: string(role)})
	}
	return views, nil
}

// UpdateDocument changes title, description and, for the owner, status.
func (s *documentService) UpdateDocument(ctx context.Context, documentID, callerID string, req models.UpdateDocumentRequest) (*models.Document, error) {
	if req.Title == nil && req.Description == nil && req.Status == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidationFailed)
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidationFailed)
	}

	var previousStatus string
	updated, err := s.docRepo.Mutate(ctx, documentID, func(doc *models.Document) error {
		role := ResolveRole(doc, callerID)
		if !CanMutateMetadata(role) {
			return ErrForbidden
		}
		previousStatus = doc.Status
		if req.Status != nil && *req.Status != doc.Status {
			if !CanChangeStatus(role) {
				return ErrForbidden
			}
			if err := ValidateStatusTransition(doc.Status, *req.Status); err != nil {
				return err
			}
			doc.Status = *req.Status
			if IsAwaitingSignature(doc.Status) && doc.SentAt == nil {
				sentAt := s.now()
				doc.SentAt = &sentAt
			}
		}
		if req.Title != nil {
			doc.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			doc.Description = strings.TrimSpace(*req.Description)
		}
		doc.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err, documentID)
	}

	details := map[string]interface{}{}
	if req.Title != nil {
		details["title"] = updated.Title
	}
	if req.Status != nil && previousStatus != updated.Status {
		details["status"] = map[string]string{"from": previousStatus, "to": updated.Status}
	}
	recordAudit(ctx, s.audit, s.logger, callerID, ActionDocumentUpdate, documentID, details)
	return updated, nil
}

// DeleteDocument removes the record, then its stored file. A file that is
// already gone does not fail the deletion.
func (s *documentService) DeleteDocument(ctx context.Context, documentID, callerID string) error {
	doc, err := loadDocument(ctx, s.docRepo, documentID)
	if err != nil {
		return err
	}
	if !CanDelete(ResolveRole(doc, callerID)) {
		return ErrForbidden
	}

	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		return mapStoreError(err, documentID)
	}

	if doc.Filename != "" {
		if err := s.files.Delete(ctx, doc.Filename); err != nil {
			if errors.Is(err, storage.ErrFileNotFound) {
				s.logger.Info("Stored file already missing on delete", zap.String("documentID", documentID), zap.String("key", doc.Filename))
			} else {
				s.logger.Warn("Failed to delete stored file", zap.String("documentID", documentID), zap.String("key", doc.Filename), zap.Error(err))
			}
		}
	}

	recordAudit(ctx, s.audit, s.logger, callerID, ActionDocumentDelete, documentID, map[string]interface{}{
		"title": doc.Title,
	})
	return nil
}

func (s *documentService) OpenDocumentFile(ctx context.Context, documentID, callerID string) (*models.Document, io.ReadCloser, error) {
	doc, err := loadDocument(ctx, s.docRepo, documentID)
	if err != nil {
		return nil, nil, err
	}
	if !HasAccess(ResolveRole(doc, callerID)) {
		return nil, nil, ErrForbidden
	}
	rc, err := s.files.Open(ctx, doc.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, nil, fmt.Errorf("%w: document '%s'", ErrDocumentFileMissing, documentID)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return doc, rc, nil
}
