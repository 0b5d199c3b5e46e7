package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"inkwell/internal/apperror"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

// Guards are the auth middlewares routes are registered behind.
type Guards struct {
	Required fiber.Handler
	Optional fiber.Handler
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as
// {"error": message}. Store failures are logged and hidden from the client.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		message := err.Error()

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}

		if status >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("request failed")
			message = "Internal Server Error"
		}

		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}

// bind parses the JSON body into out and runs its validate tags.
func bind(c *fiber.Ctx, validate *validator.Validate, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.ValidationFailed("", "Invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			e := validationErrors[0]
			return apperror.ValidationFailed(e.Field(), fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
		return apperror.ValidationFailed("", err.Error())
	}
	return nil
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"message": msg})
}

type listResponse[T any] struct {
	Items          []T   `json:"items"`
	TotalCount     int64 `json:"totalCount"`
	LastMonthCount int64 `json:"lastMonthCount"`
}

func toList[M, T any](res *services.ListResult[M], convert func(*M) T) listResponse[T] {
	items := make([]T, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, convert(&res.Items[i]))
	}
	return listResponse[T]{
		Items:          items,
		TotalCount:     res.TotalCount,
		LastMonthCount: res.LastMonthCount,
	}
}

// userResponse is the public shape of a user; the password never leaves the
// service layer.
type userResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture"`
	IsAdmin        bool      `json:"isAdmin"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		IsAdmin:        u.IsAdmin,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

type postResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newPostResponse(p *models.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Title:     p.Title,
		Content:   p.Content,
		Image:     p.Image,
		Category:  p.Category,
		Slug:      p.Slug,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type commentResponse struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	PostID        string    `json:"postId"`
	UserID        string    `json:"userId"`
	Likes         []string  `json:"likes"`
	NumberOfLikes int       `json:"numberOfLikes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newCommentResponse(c *models.Comment) commentResponse {
	likes := []string(c.Likes)
	if likes == nil {
		likes = []string{}
	}
	return commentResponse{
		ID:            c.ID,
		Content:       c.Content,
		PostID:        c.PostID,
		UserID:        c.UserID,
		Likes:         likes,
		NumberOfLikes: c.NumberOfLikes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
