package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SessionCredential is an opaque WhatsApp session blob persisted so a
// messaging login can be resumed without re-scanning a QR code. At most
// one credential exists per (account, session name); a later save
// supersedes the prior blob.
type SessionCredential struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	SessionName string          `json:"session_name"`
	Blob        json.RawMessage `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type SaveSessionRequest struct {
	AccountID   int64           `json:"accountId"`
	SessionName string          `json:"sessionName"`
	Blob        json.RawMessage `json:"sessionData"`
}

func (r *SaveSessionRequest) Validate() error {
	if r.AccountID == 0 {
		return fmt.Errorf("accountId is required")
	}
	if r.SessionName == "" {
		return fmt.Errorf("sessionName is required")
	}
	if len(r.Blob) == 0 {
		return fmt.Errorf("sessionData is required")
	}
	return nil
}

type SessionLookupRequest struct {
	AccountID   int64  `json:"accountId"`
	SessionName string `json:"sessionName"`
}

func (r *SessionLookupRequest) Validate() error {
	if r.AccountID == 0 {
		return fmt.Errorf("accountId is required")
	}
	if r.SessionName == "" {
		return fmt.Errorf("sessionName is required")
	}
	return nil
}
