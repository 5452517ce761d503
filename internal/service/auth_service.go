package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/rail-complaints/internal/auth"
	"github.com/spec-kit/rail-complaints/internal/config"
	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/events"
	"github.com/spec-kit/rail-complaints/internal/repository"
	apperrors "github.com/spec-kit/rail-complaints/pkg/util"
)

// AuthService coordinates login, token refresh and profile flows.
type AuthService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	Dispatcher  events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts: deps.AccountRepo,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.AccessTokenSecret,
			cfg.Auth.RefreshTokenSecret,
			time.Duration(cfg.Auth.AccessTokenTTLMinutes)*time.Minute,
			time.Duration(cfg.Auth.RefreshTokenTTLHours)*time.Hour,
		),
		dispatcher: deps.Dispatcher,
	}
}

// Login authenticates an account and issues a token pair. Missing accounts,
// inactive accounts and digest mismatches all produce the same unauthorized
// message so callers cannot enumerate emails.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, *auth.TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !account.IsActive {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	now := time.Now()
	if err := s.accounts.RecordLogin(ctx, account.ID, now); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	account.LastLogin = &now

	pair, err := s.tokenMgr.GeneratePair(account)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publishSessionEvent(ctx, events.EventAccountLoggedIn, account)
	return account, pair, nil
}

// Refresh validates a refresh token and rotates the pair. The account is
// re-loaded so a deleted or deactivated account cannot keep refreshing;
// there is no revocation list beyond that check.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokenMgr.ParseRefreshToken(refreshToken)
	if err != nil {
		if err == auth.ErrTokenExpired {
			return nil, apperrors.NewUnauthorized("refresh token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		return nil, apperrors.NewUnauthorized("account not found")
	}
	if !account.IsActive {
		return nil, apperrors.NewUnauthorized("account deactivated")
	}

	pair, err := s.tokenMgr.GeneratePair(account)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return pair, nil
}

// Profile returns the account behind an authenticated principal.
func (s *AuthService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperrors.NewNotFound("account", nil)
	}
	return account, nil
}

// Logout has no server-side effect beyond the audit event; tokens stay
// valid until they expire.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return nil
	}
	s.publishSessionEvent(ctx, events.EventAccountLoggedOut, &domain.Account{
		ID:    principal.AccountID,
		Email: principal.Email,
		Role:  principal.Role,
	})
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publishSessionEvent(ctx context.Context, eventType events.EventType, account *domain.Account) {
	if s.dispatcher == nil {
		return
	}
	actorID := account.ID
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   &actorID,
		Timestamp: time.Now(),
		Payload: events.AccountSessionPayload{
			Email: account.Email,
			Role:  account.Role,
		},
	})
}
