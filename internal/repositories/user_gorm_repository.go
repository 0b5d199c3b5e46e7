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

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*GORMUserRepository)(nil)

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return apperror.Conflict("user", r.conflictField(ctx, user))
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundMessage("User not found")
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// List returns one page of users.
func (r *GORMUserRepository) List(ctx context.Context, opts query.Options) ([]models.User, error) {
	users := make([]models.User, 0, opts.Limit)
	if err := r.db.WithContext(ctx).Scopes(opts.Page(query.Users)).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Count returns the number of users in the table.
func (r *GORMUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// CountCreatedSince returns the number of users created at or after since.
func (r *GORMUserRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("created_at >= ?", since).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent users: %w", err)
	}
	return n, nil
}

// Update writes the mutable user fields and touches updated_at.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Select("username", "email", "password", "profile_picture", "updated_at").
		Updates(user)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return apperror.Conflict("user", r.conflictField(ctx, user))
		}
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

// Delete deletes a user by their ID. Posts and comments written by the user
// are left in place.
func (r *GORMUserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// conflictField works out which unique column a failed write collided on.
func (r *GORMUserRepository) conflictField(ctx context.Context, user *models.User) string {
	var n int64
	r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", user.Username, user.ID).
		Count(&n)
	if n > 0 {
		return "username"
	}
	return "email"
}
