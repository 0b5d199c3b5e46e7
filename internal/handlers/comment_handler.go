package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/middleware"
	"inkwell/internal/query"
	"inkwell/internal/services"
)

// CommentHandler handles HTTP requests for comments.
type CommentHandler struct {
	service  *services.CommentService
	validate *validator.Validate
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the comment routes, including the per-post
// listing under /posts/:id/comments.
func (h *CommentHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	router.Get("/posts/:id/comments", h.HandleListPostComments)

	commentRoutes := router.Group("/comments")
	commentRoutes.Get("/", guards.Required, h.HandleListComments)
	commentRoutes.Post("/", guards.Optional, h.HandleCreateComment)
	commentRoutes.Get("/:id", h.HandleGetComment)
	commentRoutes.Put("/:id/like", guards.Required, h.HandleLikeComment)
	commentRoutes.Put("/:id", guards.Required, h.HandleEditComment)
	commentRoutes.Delete("/:id", guards.Required, h.HandleDeleteComment)
}

type createCommentRequest struct {
	Content string `json:"content"`
	PostID  string `json:"postId"`
	UserID  string `json:"userId"`
}

type editCommentRequest struct {
	Content string `json:"content"`
}

// HandleListComments returns a page of all comments. Admin only.
func (h *CommentHandler) HandleListComments(c *fiber.Ctx) error {
	opts, err := query.Parse(query.Comments, c.Queries())
	if err != nil {
		return err
	}

	res, err := h.service.List(c.UserContext(), middleware.Principal(c), opts)
	if err != nil {
		return err
	}
	return c.JSON(toList(res, newCommentResponse))
}

// HandleListPostComments returns the comments on one post.
func (h *CommentHandler) HandleListPostComments(c *fiber.Ctx) error {
	opts, err := query.Parse(query.Comments, c.Queries())
	if err != nil {
		return err
	}

	res, err := h.service.ListForPost(c.UserContext(), c.Params("id"), opts)
	if err != nil {
		return err
	}
	return c.JSON(toList(res, newCommentResponse))
}

// HandleCreateComment adds a comment to a post.
func (h *CommentHandler) HandleCreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	comment, err := h.service.Create(c.UserContext(), middleware.Principal(c), services.CreateCommentInput{
		Content: req.Content,
		PostID:  req.PostID,
		UserID:  req.UserID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newCommentResponse(comment))
}

// HandleGetComment returns a single comment.
func (h *CommentHandler) HandleGetComment(c *fiber.Ctx) error {
	comment, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newCommentResponse(comment))
}

// HandleEditComment replaces the text of a comment.
func (h *CommentHandler) HandleEditComment(c *fiber.Ctx) error {
	var req editCommentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	comment, err := h.service.Edit(c.UserContext(), middleware.Principal(c), c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(newCommentResponse(comment))
}

// HandleLikeComment toggles the caller's like on a comment.
func (h *CommentHandler) HandleLikeComment(c *fiber.Ctx) error {
	comment, err := h.service.ToggleLike(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newCommentResponse(comment))
}

// HandleDeleteComment deletes a comment.
func (h *CommentHandler) HandleDeleteComment(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.Principal(c), c.Params("id")); err != nil {
		return err
	}
	return message(c, "Comment has been deleted")
}
