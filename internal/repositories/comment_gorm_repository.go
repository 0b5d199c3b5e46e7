package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/internal/apperror"
	"inkwell/internal/models"
	"inkwell/internal/query"
)

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

var _ CommentRepository = (*GORMCommentRepository)(nil)

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{
		db: db,
	}
}

// Create creates a new comment with no likes.
func (r *GORMCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.Likes == nil {
		comment.Likes = pq.StringArray{}
	}
	comment.NumberOfLikes = len(comment.Likes)
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID retrieves a single comment by its ID.
func (r *GORMCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("failed to get comment by ID %s: %w", id, err)
	}
	return &comment, nil
}

// List returns one page of comments matching opts.
func (r *GORMCommentRepository) List(ctx context.Context, opts query.Options) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, opts.Limit)
	if err := r.db.WithContext(ctx).Scopes(opts.Page(query.Comments)).Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Count returns the number of comments in the table.
func (r *GORMCommentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return n, nil
}

// CountCreatedSince returns the number of comments created at or after since.
func (r *GORMCommentRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("created_at >= ?", since).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent comments: %w", err)
	}
	return n, nil
}

// UpdateContent replaces the comment text and touches updated_at.
func (r *GORMCommentRepository) UpdateContent(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"content":    comment.Content,
			"updated_at": comment.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("comment", comment.ID)
	}
	return nil
}

// ToggleLike reads the comment under a row lock, flips the like and writes
// likes and number_of_likes together. The write is guarded on the row version
// that was read so a concurrent writer cannot be overwritten silently.
func (r *GORMCommentRepository) ToggleLike(ctx context.Context, id, userID string) (*models.Comment, bool, error) {
	var (
		comment models.Comment
		liked   bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&comment, "id = ?", id).Error; err != nil {
			return err
		}
		if comment.Likes == nil {
			comment.Likes = pq.StringArray{}
		}

		previous := comment.Version
		liked = comment.ToggleLike(userID)
		comment.Version = previous + 1
		comment.UpdatedAt = time.Now()

		res := tx.Model(&models.Comment{}).
			Where("id = ? AND version = ?", id, previous).
			Updates(map[string]interface{}{
				"likes":           comment.Likes,
				"number_of_likes": comment.NumberOfLikes,
				"version":         comment.Version,
				"updated_at":      comment.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errConcurrentUpdate
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, apperror.NotFound("comment", id)
		case errors.Is(err, errConcurrentUpdate):
			return nil, false, &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "Comment was modified concurrently, please retry",
			}
		default:
			return nil, false, fmt.Errorf("failed to toggle like on comment %s: %w", id, err)
		}
	}
	return &comment, liked, nil
}

// Delete deletes a comment by its ID.
func (r *GORMCommentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
