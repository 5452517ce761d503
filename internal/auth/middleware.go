package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/repository"
	apperrors "github.com/spec-kit/rail-complaints/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller as attached to the request
// context by the authentication gate.
type Principal struct {
	AccountID string
	Email     string
	Role      domain.AccountRole
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	accounts repository.AccountRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, accounts repository.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts}
}

// Handle enforces authentication for protected routes. The account is
// re-loaded on every request so a deactivated account is rejected even while
// its token is still unexpired.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.resolve(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// OptionalHandle performs the same verification as Handle but lets the
// request proceed anonymously when no usable credential is present.
func (m *AuthMiddleware) OptionalHandle(c *fiber.Ctx) error {
	if principal, err := m.resolve(c); err == nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseAccessToken(parts[1])
	if err != nil {
		if err == ErrTokenExpired {
			return nil, apperrors.NewUnauthorized("token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	account, err := m.accounts.GetByID(c.Context(), claims.AccountID)
	if err != nil {
		return nil, apperrors.NewUnauthorized("account not found")
	}
	if !account.IsActive {
		return nil, apperrors.NewUnauthorized("account deactivated")
	}

	return &Principal{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
	}, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
