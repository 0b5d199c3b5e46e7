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

// CommentService handles business logic for comments and likes.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
	events   EventPublisher
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewCommentService creates a new CommentService. events may be nil.
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, users repositories.UserRepository, events EventPublisher, log logrus.FieldLogger) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		users:    users,
		events:   events,
		log:      log.WithField("service", "comments"),
		now:      time.Now,
	}
}

// CreateCommentInput carries the fields accepted when creating a comment.
// UserID is only read for anonymous callers.
type CreateCommentInput struct {
	Content string
	PostID  string
	UserID  string
}

// Create adds a comment to a post. An authenticated caller always comments
// as themselves.
func (s *CommentService) Create(ctx context.Context, actor policy.Principal, in CreateCommentInput) (*models.Comment, error) {
	if !actor.Anonymous() {
		in.UserID = actor.ID
	}
	if blank(in.Content) || blank(in.PostID) || blank(in.UserID) {
		return nil, apperror.ValidationFailed("", "Content, postId and userId are required")
	}
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		PostID:  in.PostID,
		UserID:  in.UserID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"comment_id": comment.ID, "post_id": comment.PostID}).Info("comment created")
	publish(s.log, s.events, EventCommentCreated, map[string]interface{}{
		"id":     comment.ID,
		"postId": comment.PostID,
		"userId": comment.UserID,
	})
	return comment, nil
}

// GetByID returns a comment by id.
func (s *CommentService) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

// List returns a page of all comments. Admin only.
func (s *CommentService) List(ctx context.Context, actor policy.Principal, opts query.Options) (*ListResult[models.Comment], error) {
	if err := policy.Check(actor, policy.CommentList, policy.Resource{}); err != nil {
		return nil, err
	}
	return s.list(ctx, opts)
}

// ListForPost returns a page of the comments on one post, newest first
// unless opts asks otherwise.
func (s *CommentService) ListForPost(ctx context.Context, postID string, opts query.Options) (*ListResult[models.Comment], error) {
	opts.Filters = query.Filters{PostID: postID}
	return s.list(ctx, opts)
}

func (s *CommentService) list(ctx context.Context, opts query.Options) (*ListResult[models.Comment], error) {
	comments, err := s.comments.List(ctx, opts.Normalize())
	if err != nil {
		return nil, err
	}
	return withCounts(ctx, comments, s.comments, s.now())
}

// Edit replaces the text of the caller's own comment.
func (s *CommentService) Edit(ctx context.Context, actor policy.Principal, id, content string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.CommentEdit, policy.Resource{OwnerID: comment.UserID}); err != nil {
		return nil, err
	}
	if blank(content) {
		return nil, apperror.ValidationFailed("content", "Content is required")
	}

	comment.Content = content
	if err := s.comments.UpdateContent(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ToggleLike likes the comment for the caller, or removes the like if they
// already gave one.
func (s *CommentService) ToggleLike(ctx context.Context, actor policy.Principal, id string) (*models.Comment, error) {
	if actor.Anonymous() {
		return nil, apperror.Unauthenticated("You must be signed in to like a comment")
	}

	comment, liked, err := s.comments.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	publish(s.log, s.events, EventCommentLiked, map[string]interface{}{
		"id":            comment.ID,
		"userId":        actor.ID,
		"liked":         liked,
		"numberOfLikes": comment.NumberOfLikes,
	})
	return comment, nil
}

// Delete removes the caller's own comment.
func (s *CommentService) Delete(ctx context.Context, actor policy.Principal, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(actor, policy.CommentDelete, policy.Resource{OwnerID: comment.UserID}); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"comment_id": id, "by": actor.ID}).Info("comment deleted")
	return nil
}
