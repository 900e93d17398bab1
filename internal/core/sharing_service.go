package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"docsign-backend-go/internal/db"
	"docsign-backend-go/internal/events"
	"docsign-backend-go/internal/models"
)

// errNoChanges aborts a transaction that would not modify the document.
var errNoChanges = errors.New("no changes")

// sharingService implements the SharingService interface.
type sharingService struct {
	docRepo   db.DocumentRepository
	directory Directory
	audit     AuditService
	events    *eventEmitter
	logger    *zap.Logger
	now       func() time.Time
}

// NewSharingService creates a new SharingService instance.
func NewSharingService(
	docRepo db.DocumentRepository,
	users UserService,
	directory Directory,
	audit AuditService,
	publisher events.Publisher,
	logger *zap.Logger,
) SharingService {
	now := func() time.Time { return time.Now().UTC() }
	return &sharingService{
		docRepo:   docRepo,
		directory: directory,
		audit:     audit,
		events:    newEventEmitter(publisher, users, logger, now),
		logger:    logger,
		now:       now,
	}
}

// AddCollaborator grants one registered account access to the document.
func (s *sharingService) AddCollaborator(ctx context.Context, documentID, callerID, email, permission string) (*models.Document, error) {
	doc, err := loadDocument(ctx, s.docRepo, documentID)
	if err != nil {
		return nil, err
	}
	if !CanManageSharing(ResolveRole(doc, callerID)) {
		return nil, ErrForbidden
	}
	permission, err = normalizePermission(permission)
	if err != nil {
		return nil, err
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	target, err := s.directory.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	if target.ID == doc.OwnerID {
		return nil, ErrSelfCollaboration
	}
	if _, exists := doc.FindCollaborator(target.ID); exists {
		return nil, ErrAlreadyCollaborator
	}

	updated, err := s.docRepo.Mutate(ctx, documentID, func(doc *models.Document) error {
		if !CanManageSharing(ResolveRole(doc, callerID)) {
			return ErrForbidden
		}
		if _, exists := doc.FindCollaborator(target.ID); exists {
			return ErrAlreadyCollaborator
		}
		doc.Collaborators = append(doc.Collaborators, models.Collaborator{
			UserID:     target.ID,
			Permission: permission,
			AddedAt:    s.now(),
		})
		doc.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err, documentID)
	}

	recordAudit(ctx, s.audit, s.logger, callerID, ActionDocumentShare, documentID, map[string]interface{}{
		"targetUserId": target.ID,
		"permission":   permission,
	})
	s.events.emit(ctx, events.Event{
		Type:          events.TypeDocumentShared,
		DocumentID:    documentID,
		DocumentTitle: updated.Title,
		ActorID:       callerID,
		Recipients:    []string{email},
		Permission:    permission,
	})
	return updated, nil
}

type shareCandidate struct {
	user  *models.User
	entry models.ShareEntry
}

// ShareDocument processes recipients one by one. Unknown or malformed addresses go
// to NotFound, current collaborators to Existing, and the owner is skipped. The
// document is written only when at least one recipient was added.
func (s *sharingService) ShareDocument(ctx context.Context, documentID, callerID string, req models.ShareDocumentRequest) (*models.ShareResult, error) {
	if len(req.Emails) == 0 {
		return nil, fmt.Errorf("%w: at least one email is required", ErrValidationFailed)
	}
	doc, err := loadDocument(ctx, s.docRepo, documentID)
	if err != nil {
		return nil, err
	}
	if !CanManageSharing(ResolveRole(doc, callerID)) {
		return nil, ErrForbidden
	}
	permission, err := normalizePermission(req.Permission)
	if err != nil {
		return nil, err
	}

	result := &models.ShareResult{
		Added:    []models.ShareEntry{},
		Existing: []models.ShareEntry{},
		NotFound: []string{},
	}
	var candidates []shareCandidate
	queued := make(map[string]bool)

	for _, raw := range req.Emails {
		email, err := normalizeEmail(raw)
		if err != nil {
			result.NotFound = append(result.NotFound, strings.TrimSpace(raw))
			continue
		}
		user, err := s.directory.Resolve(ctx, email)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				result.NotFound = append(result.NotFound, email)
				continue
			}
			return nil, err
		}
		if user.ID == doc.OwnerID {
			continue
		}
		entry := models.ShareEntry{Email: email, Name: user.DisplayName}
		if _, exists := doc.FindCollaborator(user.ID); exists || queued[user.ID] {
			result.Existing = append(result.Existing, entry)
			continue
		}
		queued[user.ID] = true
		candidates = append(candidates, shareCandidate{user: user, entry: entry})
	}

	if len(candidates) == 0 {
		return result, nil
	}

	// The transaction body may run more than once; buckets are rebuilt each time.
	var added, raced []models.ShareEntry
	updated, err := s.docRepo.Mutate(ctx, documentID, func(doc *models.Document) error {
		if !CanManageSharing(ResolveRole(doc, callerID)) {
			return ErrForbidden
		}
		added, raced = nil, nil
		now := s.now()
		for _, c := range candidates {
			if _, exists := doc.FindCollaborator(c.user.ID); exists {
				raced = append(raced, c.entry)
				continue
			}
			doc.Collaborators = append(doc.Collaborators, models.Collaborator{
				UserID:     c.user.ID,
				Permission: permission,
				AddedAt:    now,
			})
			added = append(added, c.entry)
		}
		if len(added) == 0 {
			return errNoChanges
		}
		doc.UpdatedAt = now
		return nil
	})
	result.Existing = append(result.Existing, raced...)
	if err != nil {
		if errors.Is(err, errNoChanges) {
			return result, nil
		}
		return nil, mapStoreError(err, documentID)
	}
	result.Added = append(result.Added, added...)

	recipients := make([]string, 0, len(added))
	for _, entry := range added {
		recipients = append(recipients, entry.Email)
	}
	recordAudit(ctx, s.audit, s.logger, callerID, ActionDocumentShare, documentID, map[string]interface{}{
		"added":      recipients,
		"permission": permission,
	})
	s.events.emit(ctx, events.Event{
		Type:          events.TypeDocumentShared,
		DocumentID:    documentID,
		DocumentTitle: updated.Title,
		ActorID:       callerID,
		Recipients:    recipients,
		Permission:    permission,
		Message:       strings.TrimSpace(req.Message),
	})
	return result, nil
}

func (s *sharingService) UpdateCollaboratorPermission(ctx context.Context, documentID, callerID, targetUserID, permission string) (*models.Document, error) {
	if permission == "" {
		return nil, fmt.Errorf("%w: permission is required", ErrInvalidPermission)
	}
	permission, err := normalizePermission(permission)
	if err != nil {
		return nil, err
	}

	updated, err := s.docRepo.Mutate(ctx, documentID, func(doc *models.Document) error {
		if !CanManageSharing(ResolveRole(doc, callerID)) {
			return ErrForbidden
		}
		for i := range doc.Collaborators {
			if doc.Collaborators[i].UserID == targetUserID {
				doc.Collaborators[i].Permission = permission
				doc.UpdatedAt = s.now()
				return nil
			}
		}
		return ErrNotCollaborator
	})
	if err != nil {
		return nil, mapStoreError(err, documentID)
	}

	recordAudit(ctx, s.audit, s.logger, callerID, ActionDocumentCollaboratorUpdate, documentID, map[string]interface{}{
		"targetUserId": targetUserID,
		"permission":   permission,
	})
	return updated, nil
}

func (s *sharingService) RemoveCollaborator(ctx context.Context, documentID, callerID, targetUserID string) (*models.Document, error) {
	updated, err := s.docRepo.Mutate(ctx, documentID, func(doc *models.Document) error {
		if !CanManageSharing(ResolveRole(doc, callerID)) {
			return ErrForbidden
		}
		for i := range doc.Collaborators {
			if doc.Collaborators[i].UserID == targetUserID {
				doc.Collaborators = append(doc.Collaborators[:i:i], doc.Collaborators[i+1:]...)
				doc.UpdatedAt = s.now()
				return nil
			}
		}
		return ErrNotCollaborator
	})
	if err != nil {
		return nil, mapStoreError(err, documentID)
	}

	recordAudit(ctx, s.audit, s.logger, callerID, ActionDocumentCollaboratorRemove, documentID, map[string]interface{}{
		"targetUserId": targetUserID,
	})
	return updated, nil
}
