// Package storage keeps the uploaded document binaries.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrFileNotFound is returned when a stored object does not exist.
var ErrFileNotFound = errors.New("stored file not found")

// StoredFile describes a file written by a FileStore.
type StoredFile struct {
	Key  string // Generated object name, used as Document.Filename
	Path string // Backend-specific location, used as Document.FilePath
	Size int64
}

// FileStore persists document binaries.
type FileStore interface {
	Save(ctx context.Context, originalName, contentType string, r io.Reader) (*StoredFile, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a collision-free object name that keeps the original extension.
func NewKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.NewString() + ext
}

// DetectContentType sniffs the first bytes of r.
func DetectContentType(r io.Reader) (string, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	return mt.String(), nil
}

// IsPDF reports whether the sniffed content type is a PDF.
func IsPDF(contentType string) bool {
	return mimetype.EqualsAny(contentType, "application/pdf", "application/x-pdf")
}
