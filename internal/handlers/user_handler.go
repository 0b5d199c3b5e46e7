package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/middleware"
	"inkwell/internal/query"
	"inkwell/internal/services"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", guards.Required, h.HandleListUsers)
	userRoutes.Post("/", guards.Optional, h.HandleCreateUser)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Put("/:id", guards.Required, h.HandleUpdateUser)
	userRoutes.Delete("/:id", guards.Required, h.HandleDeleteUser)
}

type createUserRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email" validate:"omitempty,email"`
	Password       string `json:"password"`
	ProfilePicture string `json:"profilePicture" validate:"omitempty,url"`
	IsAdmin        bool   `json:"isAdmin"`
}

type updateUserRequest struct {
	Username       *string `json:"username"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Password       *string `json:"password"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
}

// HandleListUsers returns a page of users. Admin only.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	opts, err := query.Parse(query.Users, c.Queries())
	if err != nil {
		return err
	}

	res, err := h.service.List(c.UserContext(), middleware.Principal(c), opts)
	if err != nil {
		return err
	}
	return c.JSON(toList(res, newUserResponse))
}

// HandleCreateUser creates a user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.service.Create(c.UserContext(), middleware.Principal(c), services.CreateUserInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
		IsAdmin:        req.IsAdmin,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newUserResponse(user))
}

// HandleGetUser returns a single user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(user))
}

// HandleUpdateUser applies a partial update to the caller's account.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.service.Update(c.UserContext(), middleware.Principal(c), c.Params("id"), services.UpdateUserInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(user))
}

// HandleDeleteUser deletes a user.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.Principal(c), c.Params("id")); err != nil {
		return err
	}
	return message(c, "User has been deleted")
}
