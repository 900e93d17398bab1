package core

import "errors"

// Errors returned by the document services. Callers match them with errors.Is.
var (
	ErrValidationFailed        = errors.New("validation failed")
	ErrDocumentNotFound        = errors.New("document not found")
	ErrForbidden               = errors.New("user does not have permission for this action on the document")
	ErrSignerNotRegistered     = errors.New("signer email is not registered")
	ErrUserNotFound            = errors.New("user not found")
	ErrAlreadyCollaborator     = errors.New("user is already a collaborator on this document")
	ErrSelfCollaboration       = errors.New("cannot add the document owner as a collaborator")
	ErrNotCollaborator         = errors.New("user is not a collaborator on this document")
	ErrInvalidPermission       = errors.New("invalid permission level")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStorageFailure          = errors.New("file storage failure")
	ErrDocumentFileMissing     = errors.New("document file not found")
)
