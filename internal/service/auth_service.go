package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/mailer"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/repository"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/auth"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/config"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

var (
	ErrValidation      = fmt.Errorf("validation failed")
	ErrAccountNotFound = fmt.Errorf("account not found")
	ErrInvalidToken    = fmt.Errorf("invalid or expired token")
	ErrRateLimited     = fmt.Errorf("too many magic link requests")
)

type AuthService interface {
	// SendMagicLink issues a short-lived login token for an existing
	// account and mails it. A mail failure surfaces to the caller; this
	// is a synchronous user-facing action.
	SendMagicLink(ctx context.Context, req *domain.SendMagicLinkRequest) error
	// VerifyToken exchanges any valid bearer token for a fresh 7-day
	// session token plus the account summary.
	VerifyToken(ctx context.Context, req *domain.VerifyTokenRequest) (*domain.VerifyTokenResponse, error)
}

type authService struct {
	accountRepo   repository.AccountRepository
	rateLimitRepo repository.RateLimitRepository
	mailer        mailer.Service
	config        *config.Config
}

func NewAuthService(
	accountRepo repository.AccountRepository,
	rateLimitRepo repository.RateLimitRepository,
	mailer mailer.Service,
	config *config.Config,
) AuthService {
	return &authService{
		accountRepo:   accountRepo,
		rateLimitRepo: rateLimitRepo,
		mailer:        mailer,
		config:        config,
	}
}

func (s *authService) SendMagicLink(ctx context.Context, req *domain.SendMagicLinkRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	allowed, err := s.rateLimitRepo.CheckRateLimit(ctx, "magic_link:"+req.Email, 5, 15*time.Minute)
	if err != nil {
		logger.ErrorContext(ctx, "Rate limit check failed", "error", err)
	} else if !allowed {
		return ErrRateLimited
	}

	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}

	token, err := auth.NewMagicLinkToken(account.ID, account.Email, s.config.Auth.JWTSecret, s.config.Auth.MagicLinkTTL)
	if err != nil {
		return fmt.Errorf("failed to issue magic link token: %w", err)
	}

	magicLink := fmt.Sprintf("%s/auth?token=%s", s.config.App.ClientURL, token)
	if err := s.mailer.SendMagicLink(account.Email, magicLink); err != nil {
		return fmt.Errorf("failed to send magic link email: %w", err)
	}

	logger.InfoContext(ctx, "Magic link sent", "account_id", account.ID)
	return nil
}

func (s *authService) VerifyToken(ctx context.Context, req *domain.VerifyTokenRequest) (*domain.VerifyTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	claims, err := auth.Parse(req.Token, s.config.Auth.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := s.accountRepo.FindByID(ctx, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	products, err := s.accountRepo.ListProducts(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	sessionToken, err := auth.NewSessionToken(account.ID, account.Email, s.config.Auth.JWTSecret, s.config.Auth.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &domain.VerifyTokenResponse{
		Token: sessionToken,
		Account: &domain.AccountInfo{
			ID:       account.ID,
			Email:    account.Email,
			Products: products,
		},
	}, nil
}
