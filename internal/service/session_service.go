package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/repository"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

var ErrSessionNotFound = fmt.Errorf("session not found")

// SessionService fronts the credential vault for WhatsApp session blobs.
type SessionService interface {
	Save(ctx context.Context, req *domain.SaveSessionRequest) error
	Exists(ctx context.Context, req *domain.SessionLookupRequest) (bool, error)
	// Verify reports whether a persisted credential exists for the key.
	// This is deliberately a presence check only; the blob's internal
	// validity is the messaging client's concern.
	Verify(ctx context.Context, req *domain.SessionLookupRequest) (bool, error)
	Delete(ctx context.Context, accountID int64, sessionName string) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	accountRepo repository.AccountRepository
}

func NewSessionService(sessionRepo repository.SessionRepository, accountRepo repository.AccountRepository) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		accountRepo: accountRepo,
	}
}

func (s *sessionService) Save(ctx context.Context, req *domain.SaveSessionRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	account, err := s.accountRepo.FindByID(ctx, req.AccountID)
	if err != nil {
		return fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if err := s.sessionRepo.Save(ctx, req.AccountID, req.SessionName, req.Blob); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	logger.InfoContext(ctx, "Session credential saved", "account_id", req.AccountID, "session_name", req.SessionName)
	return nil
}

func (s *sessionService) Exists(ctx context.Context, req *domain.SessionLookupRequest) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.sessionRepo.Exists(ctx, req.AccountID, req.SessionName)
}

func (s *sessionService) Verify(ctx context.Context, req *domain.SessionLookupRequest) (bool, error) {
	return s.Exists(ctx, req)
}

func (s *sessionService) Delete(ctx context.Context, accountID int64, sessionName string) error {
	if accountID == 0 || sessionName == "" {
		return fmt.Errorf("%w: accountId and sessionName are required", ErrValidation)
	}
	if err := s.sessionRepo.Delete(ctx, accountID, sessionName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
