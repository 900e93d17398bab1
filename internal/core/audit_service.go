package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docsign-backend-go/internal/db"
	"docsign-backend-go/internal/models"
)

// Audit actions.
const (
	ActionDocumentCreate             = "DOCUMENT_CREATE"
	ActionDocumentUpdate             = "DOCUMENT_UPDATE"
	ActionDocumentDelete             = "DOCUMENT_DELETE"
	ActionDocumentShare              = "DOCUMENT_SHARE"
	ActionDocumentCollaboratorUpdate = "DOCUMENT_COLLABORATOR_UPDATE"
	ActionDocumentCollaboratorRemove = "DOCUMENT_COLLABORATOR_REMOVE"
	ActionDocumentSign               = "DOCUMENT_SIGN"

	targetTypeDocument = "DOCUMENT"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{
		auditRepo: auditRepo,
	}
}

// CreateAuditLog creates a new audit log entry.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return fmt.Errorf("AuditRepository not initialized in AuditService")
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// recordAudit writes an audit entry for a document action. Failures are logged only.
func recordAudit(ctx context.Context, audit AuditService, logger *zap.Logger, userID, action, documentID string, details map[string]interface{}) {
	if audit == nil {
		return
	}
	entry := models.AuditLog{
		UserID:     userID,
		Action:     action,
		TargetType: targetTypeDocument,
		TargetID:   documentID,
		Details:    details,
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.String("documentID", documentID),
			zap.Error(err))
	}
}
