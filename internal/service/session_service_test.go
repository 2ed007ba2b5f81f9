package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/service"
)

type sessionKey struct {
	accountID   int64
	sessionName string
}

type mockSessionRepo struct {
	mu    sync.Mutex
	blobs map[sessionKey]json.RawMessage
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{blobs: make(map[sessionKey]json.RawMessage)}
}

func (m *mockSessionRepo) Save(_ context.Context, accountID int64, sessionName string, blob json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[sessionKey{accountID, sessionName}] = blob
	return nil
}

func (m *mockSessionRepo) Exists(_ context.Context, accountID int64, sessionName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[sessionKey{accountID, sessionName}]
	return ok, nil
}

func (m *mockSessionRepo) Delete(_ context.Context, accountID int64, sessionName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey{accountID, sessionName}
	if _, ok := m.blobs[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.blobs, key)
	return nil
}

func newSessionFixture(t *testing.T) (service.SessionService, *mockSessionRepo, int64) {
	t.Helper()
	accounts := newMockAccountRepo()
	sessions := newMockSessionRepo()
	svc := service.NewSessionService(sessions, accounts)

	account, err := accounts.ResolveByEmail(context.Background(), "buyer@example.com")
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return svc, sessions, account.ID
}

func TestSaveSessionThenExists(t *testing.T) {
	svc, _, accountID := newSessionFixture(t)
	ctx := context.Background()

	err := svc.Save(ctx, &domain.SaveSessionRequest{
		AccountID:   accountID,
		SessionName: "primary",
		Blob:        json.RawMessage(`{"WABrowserId":"abc"}`),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	exists, err := svc.Exists(ctx, &domain.SessionLookupRequest{AccountID: accountID, SessionName: "primary"})
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("expected saved session to exist")
	}

	exists, err = svc.Exists(ctx, &domain.SessionLookupRequest{AccountID: accountID, SessionName: "other"})
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("expected unknown session name to be absent")
	}
}

func TestSaveSessionSupersedesPrior(t *testing.T) {
	svc, sessions, accountID := newSessionFixture(t)
	ctx := context.Background()

	for _, blob := range []string{`{"rev":1}`, `{"rev":2}`} {
		err := svc.Save(ctx, &domain.SaveSessionRequest{
			AccountID:   accountID,
			SessionName: "primary",
			Blob:        json.RawMessage(blob),
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	stored := sessions.blobs[sessionKey{accountID, "primary"}]
	if string(stored) != `{"rev":2}` {
		t.Errorf("expected latest blob to win, got %s", stored)
	}
}

func TestSaveSessionUnknownAccount(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	err := svc.Save(context.Background(), &domain.SaveSessionRequest{
		AccountID:   9999,
		SessionName: "primary",
		Blob:        json.RawMessage(`{}`),
	})
	if err != service.ErrAccountNotFound {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestVerifyIsPresenceCheck(t *testing.T) {
	svc, _, accountID := newSessionFixture(t)
	ctx := context.Background()

	// Any stored blob verifies, even one the messaging client would
	// consider stale.
	err := svc.Save(ctx, &domain.SaveSessionRequest{
		AccountID:   accountID,
		SessionName: "primary",
		Blob:        json.RawMessage(`{"expired":true}`),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	ok, err := svc.Verify(ctx, &domain.SessionLookupRequest{AccountID: accountID, SessionName: "primary"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("expected Verify to report presence")
	}
}

func TestDeleteSession(t *testing.T) {
	svc, _, accountID := newSessionFixture(t)
	ctx := context.Background()

	err := svc.Save(ctx, &domain.SaveSessionRequest{
		AccountID:   accountID,
		SessionName: "primary",
		Blob:        json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := svc.Delete(ctx, accountID, "primary"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, _ := svc.Exists(ctx, &domain.SessionLookupRequest{AccountID: accountID, SessionName: "primary"})
	if exists {
		t.Error("expected session to be gone after delete")
	}

	if err := svc.Delete(ctx, accountID, "primary"); err != service.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}
