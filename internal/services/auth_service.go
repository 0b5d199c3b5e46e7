package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"

	"inkwell/internal/apperror"
	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/repositories"
)

const generatedPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	users     repositories.UserRepository
	accounts  *UserService
	passwords Passwords
	jwtSecret []byte
	tokenTTL  time.Duration
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewAuthService creates a new AuthService. Accounts are created through
// accounts so sign-ups go through the same defaults and events as POST /users.
func NewAuthService(users repositories.UserRepository, accounts *UserService, passwords Passwords, jwtSecret string, tokenTTL time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:     users,
		accounts:  accounts,
		passwords: passwords,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log.WithField("service", "auth"),
		now:       time.Now,
	}
}

// SignUpInput is the body of a sign-up request.
type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// GoogleInput is the profile returned by the Google sign-in popup.
type GoogleInput struct {
	Email    string
	Name     string
	PhotoURL string
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// SignUp registers a regular, non-admin user.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	if blank(in.Username) || blank(in.Email) || blank(in.Password) {
		return nil, apperror.ValidationFailed("", "All fields are required")
	}
	return s.accounts.Create(ctx, policy.Principal{}, CreateUserInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
}

// SignIn checks the credentials and returns the user with a fresh token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	if blank(email) || blank(password) {
		return nil, "", apperror.ValidationFailed("", "All fields are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if !s.passwords.Matches(user.Password, password) {
		s.log.WithField("user_id", user.ID).Info("sign-in rejected: wrong password")
		return nil, "", apperror.ValidationFailed("password", "Invalid password")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Google signs in the user owning in.Email, provisioning an account on first
// use.
func (s *AuthService) Google(ctx context.Context, in GoogleInput) (*models.User, string, error) {
	if blank(in.Email) || blank(in.Name) {
		return nil, "", apperror.ValidationFailed("", "Email and name are required")
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound):
		user, err = s.provision(ctx, in)
		if err != nil {
			return nil, "", err
		}
	default:
		return nil, "", err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) provision(ctx context.Context, in GoogleInput) (*models.User, error) {
	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return nil, fmt.Errorf("failed to generate username: %w", err)
	}
	password, err := randomPassword(16)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.ReplaceAll(in.Name, " ", "")) + fmt.Sprintf("%04d", suffix.Int64())
	return s.accounts.Create(ctx, policy.Principal{}, CreateUserInput{
		Username:       username,
		Email:          in.Email,
		Password:       password,
		ProfilePicture: in.PhotoURL,
	})
}

// GenerateToken signs a token carrying the user's id and admin flag.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":      user.ID,
		"isAdmin": user.IsAdmin,
		"exp":     s.now().Add(s.tokenTTL).Unix(),
		"iat":     s.now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token and returns the principal
// it identifies.
func (s *AuthService) ValidateToken(tokenString string) (policy.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return policy.Principal{}, apperror.Unauthenticated("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return policy.Principal{}, apperror.Unauthenticated("Invalid or expired token")
	}

	id, _ := claims["id"].(string)
	if id == "" {
		return policy.Principal{}, apperror.Unauthenticated("Invalid or expired token")
	}
	isAdmin, _ := claims["isAdmin"].(bool)

	return policy.Principal{ID: id, IsAdmin: isAdmin}, nil
}

func randomPassword(n int) (string, error) {
	max := big.NewInt(int64(len(generatedPasswordAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		b[i] = generatedPasswordAlphabet[idx.Int64()]
	}
	return string(b), nil
}
