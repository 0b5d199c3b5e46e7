package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/middleware"
	"inkwell/internal/query"
	"inkwell/internal/services"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service  *services.PostService
	validate *validator.Validate
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the post routes with the Fiber app.
func (h *PostHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	postRoutes := router.Group("/posts")
	postRoutes.Get("/", h.HandleListPosts)
	postRoutes.Post("/", guards.Required, h.HandleCreatePost)
	postRoutes.Get("/:id", h.HandleGetPost)
	postRoutes.Put("/:id", guards.Required, h.HandleUpdatePost)
	postRoutes.Delete("/:id", guards.Required, h.HandleDeletePost)
}

type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Image    string `json:"image" validate:"omitempty,url"`
	Category string `json:"category"`
	Slug     string `json:"slug"`
}

type updatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Image    *string `json:"image" validate:"omitempty,url"`
	Category *string `json:"category"`
}

// HandleListPosts returns a page of posts matching the query string.
func (h *PostHandler) HandleListPosts(c *fiber.Ctx) error {
	opts, err := query.Parse(query.Posts, c.Queries())
	if err != nil {
		return err
	}

	res, err := h.service.List(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(toList(res, newPostResponse))
}

// HandleCreatePost creates a post authored by the caller.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	post, err := h.service.Create(c.UserContext(), middleware.Principal(c), services.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Image:    req.Image,
		Category: req.Category,
		Slug:     req.Slug,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newPostResponse(post))
}

// HandleGetPost returns a single post.
func (h *PostHandler) HandleGetPost(c *fiber.Ctx) error {
	post, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newPostResponse(post))
}

// HandleUpdatePost applies a partial update to a post.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	var req updatePostRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	post, err := h.service.Update(c.UserContext(), middleware.Principal(c), c.Params("id"), services.UpdatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Image:    req.Image,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(newPostResponse(post))
}

// HandleDeletePost deletes a post.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.Principal(c), c.Params("id")); err != nil {
		return err
	}
	return message(c, "Post has been deleted")
}
