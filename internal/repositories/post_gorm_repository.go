package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inkwell/internal/apperror"
	"inkwell/internal/models"
	"inkwell/internal/query"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

var _ PostRepository = (*GORMPostRepository)(nil)

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// Create creates a new post in the database.
func (r *GORMPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isDuplicate(err) {
			return apperror.Conflict("post", r.conflictField(ctx, post))
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post by its ID from the database.
func (r *GORMPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

// List returns one page of posts matching opts.
func (r *GORMPostRepository) List(ctx context.Context, opts query.Options) ([]models.Post, error) {
	posts := make([]models.Post, 0, opts.Limit)
	if err := r.db.WithContext(ctx).Scopes(opts.Page(query.Posts)).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Count returns the number of posts in the table, ignoring any filter.
func (r *GORMPostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

// CountCreatedSince returns the number of posts created at or after since.
func (r *GORMPostRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("created_at >= ?", since).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent posts: %w", err)
	}
	return n, nil
}

// Update writes the editable post fields and touches updated_at.
func (r *GORMPostRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Select("title", "content", "category", "image", "updated_at").
		Updates(post)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return apperror.Conflict("post", r.conflictField(ctx, post))
		}
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}
	return nil
}

// Delete deletes a post by its ID from the database.
func (r *GORMPostRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

func (r *GORMPostRepository) conflictField(ctx context.Context, post *models.Post) string {
	var n int64
	r.db.WithContext(ctx).Model(&models.Post{}).
		Where("title = ? AND id <> ?", post.Title, post.ID).
		Count(&n)
	if n > 0 {
		return "title"
	}
	return "slug"
}
