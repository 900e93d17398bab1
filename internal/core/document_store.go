package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"docsign-backend-go/internal/db"
	"docsign-backend-go/internal/models"
)

// loadDocument fetches a fresh copy of the document, mapping store misses to ErrDocumentNotFound.
func loadDocument(ctx context.Context, repo db.DocumentRepository, documentID string) (*models.Document, error) {
	doc, err := repo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: id '%s'", ErrDocumentNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to get document '%s': %w", documentID, err)
	}
	return doc, nil
}

// mapStoreError translates store misses and leaves service errors untouched.
func mapStoreError(err error, documentID string) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: id '%s'", ErrDocumentNotFound, documentID)
	}
	return err
}

// queryUnion runs each filter and merges the results, newest first, without duplicates.
func queryUnion(ctx context.Context, repo db.DocumentRepository, filters ...db.DocumentFilter) ([]*models.Document, error) {
	seen := make(map[string]bool)
	var out []*models.Document
	for _, filter := range filters {
		docs, err := repo.Query(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to query documents: %w", err)
		}
		for _, doc := range docs {
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			out = append(out, doc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// participantFilters selects every document the caller may have a role on.
func participantFilters(callerID string) []db.DocumentFilter {
	return []db.DocumentFilter{
		{OwnerID: callerID},
		{CollaboratorID: callerID},
		{SignerUserID: callerID},
	}
}
