package store

import (
	"context"

	"github.com/idilsaglam/issuetracker/internal/model"
)

// Store reads and replaces the issue list attached to a product.
// UpdateIssues always writes the whole list; there is no partial update.
type Store interface {
	Issues(ctx context.Context, productID string) ([]model.Issue, error)
	UpdateIssues(ctx context.Context, productID string, issues []model.Issue) error
}
