package repositories

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	List(ctx context.Context, opts query.Options) ([]models.Comment, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	UpdateContent(ctx context.Context, comment *models.Comment) error
	// ToggleLike flips userID's like on the comment in a single transaction
	// and returns the stored result and whether the user now likes it.
	ToggleLike(ctx context.Context, id, userID string) (*models.Comment, bool, error)
	Delete(ctx context.Context, id string) error
}
