package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/internal/apperror"
	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/query"
	"inkwell/internal/services"
)

var admin = policy.Principal{ID: "admin1", IsAdmin: true}

func TestPostService_Create(t *testing.T) {
	ctx := context.Background()
	posts := new(MockPostRepository)
	users := new(MockUserRepository)
	events := new(MockPublisher)
	svc := services.NewPostService(posts, users, events, quietLogger())

	users.On("GetByID", ctx, admin.ID).Return(&models.User{ID: admin.ID, IsAdmin: true}, nil).Once()
	posts.On("Create", ctx, mock.AnythingOfType("*models.Post")).Return(nil).Once()
	events.On("Publish", services.EventPostCreated, mock.Anything).Return(nil).Once()

	post, err := svc.Create(ctx, admin, services.CreatePostInput{Title: "Hello World", Content: "body"})
	require.NoError(t, err)

	assert.Equal(t, "helloworld", post.Slug)
	assert.Equal(t, admin.ID, post.UserID)
	assert.Equal(t, models.DefaultPostImage, post.Image)
	assert.Equal(t, models.DefaultCategory, post.Category)
	posts.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestPostService_Create_KeepsGivenSlug(t *testing.T) {
	ctx := context.Background()
	posts := new(MockPostRepository)
	users := new(MockUserRepository)
	svc := services.NewPostService(posts, users, nil, quietLogger())

	users.On("GetByID", ctx, admin.ID).Return(&models.User{ID: admin.ID}, nil).Once()
	posts.On("Create", ctx, mock.Anything).Return(nil).Once()

	post, err := svc.Create(ctx, admin, services.CreatePostInput{Title: "T", Content: "C", Slug: "custom", Category: "go"})
	require.NoError(t, err)
	assert.Equal(t, "custom", post.Slug)
	assert.Equal(t, "go", post.Category)
}

func TestPostService_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin", func(t *testing.T) {
		posts := new(MockPostRepository)
		svc := services.NewPostService(posts, new(MockUserRepository), nil, quietLogger())

		_, err := svc.Create(ctx, policy.Principal{ID: "u1"}, services.CreatePostInput{Title: "T", Content: "C"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing content", func(t *testing.T) {
		posts := new(MockPostRepository)
		svc := services.NewPostService(posts, new(MockUserRepository), nil, quietLogger())

		_, err := svc.Create(ctx, admin, services.CreatePostInput{Title: "T"})
		assert.ErrorIs(t, err, apperror.ErrValidation)
		posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate title", func(t *testing.T) {
		posts := new(MockPostRepository)
		users := new(MockUserRepository)
		svc := services.NewPostService(posts, users, nil, quietLogger())
		users.On("GetByID", ctx, admin.ID).Return(&models.User{ID: admin.ID}, nil).Once()
		posts.On("Create", ctx, mock.Anything).Return(apperror.Conflict("post", "title")).Once()

		_, err := svc.Create(ctx, admin, services.CreatePostInput{Title: "T", Content: "C"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func TestPostService_Update_Policy(t *testing.T) {
	ctx := context.Background()
	post := func() *models.Post {
		return &models.Post{ID: "p1", UserID: admin.ID, Title: "Old", Content: "old body", Category: "go"}
	}

	tests := []struct {
		name  string
		actor policy.Principal
		want  error
	}{
		{"admin author", admin, nil},
		{"other admin", policy.Principal{ID: "admin2", IsAdmin: true}, apperror.ErrForbidden},
		{"non-admin author", policy.Principal{ID: admin.ID}, apperror.ErrForbidden},
		{"anonymous", policy.Principal{}, apperror.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(MockPostRepository)
			svc := services.NewPostService(posts, new(MockUserRepository), nil, quietLogger())
			posts.On("GetByID", ctx, "p1").Return(post(), nil).Once()
			posts.On("Update", ctx, mock.Anything).Return(nil).Maybe()

			updated, err := svc.Update(ctx, tt.actor, "p1", services.UpdatePostInput{Title: strPtr("New")})
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "New", updated.Title)
			assert.Equal(t, "old body", updated.Content, "absent fields keep their value")
			assert.Equal(t, "go", updated.Category)
		})
	}
}

func TestPostService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		posts := new(MockPostRepository)
		svc := services.NewPostService(posts, new(MockUserRepository), nil, quietLogger())
		posts.On("GetByID", ctx, "nope").Return(nil, apperror.NotFound("post", "nope")).Once()

		err := svc.Delete(ctx, admin, "nope")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("author admin", func(t *testing.T) {
		posts := new(MockPostRepository)
		events := new(MockPublisher)
		svc := services.NewPostService(posts, new(MockUserRepository), events, quietLogger())
		posts.On("GetByID", ctx, "p1").Return(&models.Post{ID: "p1", UserID: admin.ID}, nil).Once()
		posts.On("Delete", ctx, "p1").Return(nil).Once()
		events.On("Publish", services.EventPostDeleted, mock.Anything).Return(nil).Once()

		assert.NoError(t, svc.Delete(ctx, admin, "p1"))
		posts.AssertExpectations(t)
		events.AssertExpectations(t)
	})
}

func TestPostService_List(t *testing.T) {
	ctx := context.Background()
	posts := new(MockPostRepository)
	svc := services.NewPostService(posts, new(MockUserRepository), nil, quietLogger())

	opts := query.Options{Limit: 2, Direction: query.Asc, SearchTerm: "go"}
	posts.On("List", ctx, opts).Return([]models.Post{{ID: "p1"}}, nil).Once()
	posts.On("Count", ctx).Return(int64(7), nil).Once()
	posts.On("CountCreatedSince", ctx, mock.AnythingOfType("time.Time")).Return(int64(2), nil).Once()

	res, err := svc.List(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.EqualValues(t, 7, res.TotalCount)
	assert.EqualValues(t, 2, res.LastMonthCount)
	posts.AssertExpectations(t)
}
