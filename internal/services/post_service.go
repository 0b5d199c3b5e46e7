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

// PostService handles business logic for blog posts.
type PostService struct {
	posts  repositories.PostRepository
	users  repositories.UserRepository
	events EventPublisher
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewPostService creates a new PostService. events may be nil.
func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, events EventPublisher, log logrus.FieldLogger) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		events: events,
		log:    log.WithField("service", "posts"),
		now:    time.Now,
	}
}

// CreatePostInput carries the fields accepted when creating a post.
type CreatePostInput struct {
	Title    string
	Content  string
	Image    string
	Category string
	Slug     string
}

// UpdatePostInput is a partial update; nil fields are left unchanged.
type UpdatePostInput struct {
	Title    *string
	Content  *string
	Image    *string
	Category *string
}

// Create publishes a new post authored by actor.
func (s *PostService) Create(ctx context.Context, actor policy.Principal, in CreatePostInput) (*models.Post, error) {
	if err := policy.Check(actor, policy.PostCreate, policy.Resource{}); err != nil {
		return nil, err
	}
	if blank(in.Title) || blank(in.Content) {
		return nil, apperror.ValidationFailed("", "Please provide all required fields")
	}
	if _, err := s.users.GetByID(ctx, actor.ID); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   actor.ID,
		Title:    in.Title,
		Content:  in.Content,
		Image:    in.Image,
		Category: in.Category,
		Slug:     in.Slug,
	}
	if post.Slug == "" {
		post.Slug = Slugify(in.Title)
	}
	if post.Image == "" {
		post.Image = models.DefaultPostImage
	}
	if post.Category == "" {
		post.Category = models.DefaultCategory
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "slug": post.Slug}).Info("post created")
	publish(s.log, s.events, EventPostCreated, map[string]interface{}{
		"id":     post.ID,
		"userId": post.UserID,
		"slug":   post.Slug,
	})
	return post, nil
}

// GetByID returns a post by id.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// List returns a page of posts. Posts are public.
func (s *PostService) List(ctx context.Context, opts query.Options) (*ListResult[models.Post], error) {
	posts, err := s.posts.List(ctx, opts.Normalize())
	if err != nil {
		return nil, err
	}
	return withCounts(ctx, posts, s.posts, s.now())
}

// Update applies a partial update to a post.
func (s *PostService) Update(ctx context.Context, actor policy.Principal, id string, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.PostUpdate, policy.Resource{OwnerID: post.UserID}); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if blank(*in.Title) {
			return nil, apperror.ValidationFailed("title", "Title cannot be empty")
		}
		post.Title = *in.Title
	}
	if in.Content != nil {
		if blank(*in.Content) {
			return nil, apperror.ValidationFailed("content", "Content cannot be empty")
		}
		post.Content = *in.Content
	}
	if in.Category != nil {
		post.Category = *in.Category
	}
	if in.Image != nil {
		post.Image = *in.Image
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Its comments are kept.
func (s *PostService) Delete(ctx context.Context, actor policy.Principal, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(actor, policy.PostDelete, policy.Resource{OwnerID: post.UserID}); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"post_id": id, "by": actor.ID}).Info("post deleted")
	publish(s.log, s.events, EventPostDeleted, map[string]interface{}{
		"id": id,
		"by": actor.ID,
	})
	return nil
}
