package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService  *services.AuthService
	validate     *validator.Validate
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		validate:     validator.New(),
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignUp)
	authRoutes.Post("/signin", h.HandleSignIn)
	authRoutes.Post("/google", h.HandleGoogle)
	authRoutes.Post("/signout", h.HandleSignOut)
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

// SignInRequest represents the request body for sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	PhotoURL string `json:"googlePhotoUrl" validate:"omitempty,url"`
}

// HandleSignUp handles new user registration.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	if _, err := h.authService.SignUp(c.UserContext(), services.SignUpInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Signup successful"})
}

// HandleSignIn checks credentials and sets the session cookie.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, token, err := h.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.startSession(c, user, token)
}

// HandleGoogle signs in, or signs up, a user from a Google profile.
func (h *AuthHandler) HandleGoogle(c *fiber.Ctx) error {
	var req googleRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Google(c.UserContext(), services.GoogleInput{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return h.startSession(c, user, token)
}

// HandleSignOut clears the session cookie.
func (h *AuthHandler) HandleSignOut(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return message(c, "User has been signed out")
}

func (h *AuthHandler) startSession(c *fiber.Ctx, user *models.User, token string) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Expires:  time.Now().Add(h.authService.TokenTTL()),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(newUserResponse(user))
}
