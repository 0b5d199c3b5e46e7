package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"inkwell/internal/apperror"
	"inkwell/internal/policy"
)

// AccessTokenCookie is the HttpOnly cookie that carries the session token.
const AccessTokenCookie = "access_token"

const principalKey = "principal"

// TokenValidator resolves a token to the principal it was issued for.
type TokenValidator interface {
	ValidateToken(token string) (policy.Principal, error)
}

// AuthRequired is a Fiber middleware that rejects requests without a valid
// token.
func AuthRequired(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := tokenFrom(c)
		if raw == "" {
			return apperror.Unauthenticated("Unauthorized")
		}

		principal, err := tokens.ValidateToken(raw)
		if err != nil {
			return err
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// AuthOptional resolves the caller when a valid token is present and
// otherwise lets the request through as anonymous.
func AuthOptional(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := tokenFrom(c); raw != "" {
			if principal, err := tokens.ValidateToken(raw); err == nil {
				c.Locals(principalKey, principal)
			}
		}
		return c.Next()
	}
}

// Principal returns the caller resolved by the auth middleware, or the
// anonymous principal.
func Principal(c *fiber.Ctx) policy.Principal {
	if p, ok := c.Locals(principalKey).(policy.Principal); ok {
		return p
	}
	return policy.Principal{}
}

// tokenFrom reads the token from the session cookie, falling back to an
// "Authorization: Bearer <token>" header.
func tokenFrom(c *fiber.Ctx) string {
	if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
