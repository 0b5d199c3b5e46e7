package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"inkwell/internal/apperror"
	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/query"
	"inkwell/internal/repositories"
)

// UserService handles business logic for user accounts.
type UserService struct {
	users     repositories.UserRepository
	passwords Passwords
	events    EventPublisher
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(users repositories.UserRepository, passwords Passwords, events EventPublisher, log logrus.FieldLogger) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		events:    events,
		log:       log.WithField("service", "users"),
		now:       time.Now,
	}
}

// CreateUserInput carries the fields accepted when creating a user.
type CreateUserInput struct {
	Username       string
	Email          string
	Password       string
	ProfilePicture string
	IsAdmin        bool
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Username       *string
	Email          *string
	Password       *string
	ProfilePicture *string
}

// Create registers a new user. IsAdmin is only honoured when the caller is
// an admin.
func (s *UserService) Create(ctx context.Context, actor policy.Principal, in CreateUserInput) (*models.User, error) {
	if blank(in.Username) || blank(in.Email) || blank(in.Password) {
		return nil, apperror.ValidationFailed("", "Username, email and password are required")
	}

	hashed, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       hashed,
		ProfilePicture: in.ProfilePicture,
		IsAdmin:        in.IsAdmin && actor.IsAdmin,
	}
	if user.ProfilePicture == "" {
		user.ProfilePicture = models.DefaultProfilePicture
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user created")
	publish(s.log, s.events, EventUserCreated, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
	})
	return user, nil
}

// GetByID returns a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns a page of users. Admin only.
func (s *UserService) List(ctx context.Context, actor policy.Principal, opts query.Options) (*ListResult[models.User], error) {
	if err := policy.Check(actor, policy.UserList, policy.Resource{}); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, opts.Normalize())
	if err != nil {
		return nil, err
	}
	return withCounts(ctx, users, s.users, s.now())
}

// Update applies a partial update to the caller's own account.
func (s *UserService) Update(ctx context.Context, actor policy.Principal, id string, in UpdateUserInput) (*models.User, error) {
	if err := policy.Check(actor, policy.UserUpdate, policy.Resource{OwnerID: id}); err != nil {
		return nil, err
	}

	// An empty password or username leaves the stored value unchanged.
	if in.Password != nil && *in.Password == "" {
		in.Password = nil
	}
	if in.Username != nil && *in.Username == "" {
		in.Username = nil
	}

	var hashed string
	if in.Password != nil {
		if err := ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		h, err := s.passwords.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		hashed = h
	}
	if in.Username != nil {
		if err := ValidateUsername(*in.Username); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = *in.ProfilePicture
	}
	if hashed != "" {
		user.Password = hashed
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user. Content the user wrote is kept.
func (s *UserService) Delete(ctx context.Context, actor policy.Principal, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(actor, policy.UserDelete, policy.Resource{OwnerID: user.ID}); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "by": actor.ID}).Info("user deleted")
	publish(s.log, s.events, EventUserDeleted, map[string]interface{}{
		"id": id,
		"by": actor.ID,
	})
	return nil
}
