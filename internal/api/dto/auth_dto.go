package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/rail-complaints/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required credentials are present.
func (r LoginRequest) Validate() map[string]any {
	details := map[string]any{}
	if strings.TrimSpace(r.Email) == "" {
		details["email"] = "email is required"
	}
	if r.Password == "" {
		details["password"] = "password is required"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// RefreshRequest payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate checks the refresh token is present.
func (r RefreshRequest) Validate() map[string]any {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return map[string]any{"refreshToken": "refreshToken is required"}
	}
	return nil
}

// AccountResponse is the outward account shape. The password digest is never
// serialized.
type AccountResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Phone     *string            `json:"phone,omitempty"`
	Role      domain.AccountRole `json:"role"`
	IsActive  bool               `json:"isActive"`
	LastLogin *time.Time         `json:"lastLogin,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// TokenPairResponse carries the issued credentials.
type TokenPairResponse struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// LoginResponse bundles account summary and token pair.
type LoginResponse struct {
	Account AccountResponse   `json:"account"`
	Tokens  TokenPairResponse `json:"tokens"`
}
