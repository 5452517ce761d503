package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rail-complaints/internal/domain"
	apperrors "github.com/spec-kit/rail-complaints/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles. It
// assumes the authentication gate already ran.
func RequireRole(allowed ...domain.AccountRole) fiber.Handler {
	allowedSet := make(map[domain.AccountRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
