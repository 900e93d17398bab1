package core

import "docsign-backend-go/internal/models"

// Role is a caller's relationship to one document.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleSigner Role = "signer"
	RoleView   Role = models.PermissionView
	RoleSign   Role = models.PermissionSign
	RoleEdit   Role = models.PermissionEdit
	RoleNone   Role = ""
)

// ResolveRole returns the first matching role in order owner, signer,
// collaborator permission. It must be evaluated against a freshly loaded record.
func ResolveRole(doc *models.Document, callerID string) Role {
	if doc == nil || callerID == "" {
		return RoleNone
	}
	if doc.OwnerID == callerID {
		return RoleOwner
	}
	if doc.SignerUserID != "" && doc.SignerUserID == callerID {
		return RoleSigner
	}
	if collab, ok := doc.FindCollaborator(callerID); ok {
		switch collab.Permission {
		case models.PermissionView, models.PermissionSign, models.PermissionEdit:
			return Role(collab.Permission)
		}
	}
	return RoleNone
}

func HasAccess(r Role) bool { return r != RoleNone }

// CanMutateMetadata covers title and description.
func CanMutateMetadata(r Role) bool { return r == RoleOwner || r == RoleEdit }

func CanChangeStatus(r Role) bool { return r == RoleOwner }

func CanSign(r Role) bool {
	switch r {
	case RoleOwner, RoleEdit, RoleSign, RoleSigner:
		return true
	}
	return false
}

// CanManageSharing covers adding, updating and removing collaborators.
func CanManageSharing(r Role) bool { return r == RoleOwner }

// CanDelete is owner only.
func CanDelete(r Role) bool { return r == RoleOwner }
