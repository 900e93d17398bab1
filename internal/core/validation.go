package core

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"docsign-backend-go/internal/models"
)

var validate = validator.New()

// normalizeEmail trims and lowercases email and checks its format.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: invalid email '%s'", ErrValidationFailed, email)
	}
	return email, nil
}

// normalizePermission applies the default and rejects unknown levels.
func normalizePermission(permission string) (string, error) {
	if permission == "" {
		return models.PermissionView, nil
	}
	permission = strings.ToLower(strings.TrimSpace(permission))
	if err := validate.Var(permission, "oneof=view sign edit"); err != nil {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidPermission, permission)
	}
	return permission, nil
}
