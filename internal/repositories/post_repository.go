package repositories

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

// PostRepository defines the interface for post data access.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, opts query.Options) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}
