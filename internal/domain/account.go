package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Account struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Purchase is one entry in an account's entitlement ledger. The
// (account_id, transaction_id) pair is unique so redelivered provider
// events cannot append the same entitlement twice.
type Purchase struct {
	ID            int64      `json:"id"`
	AccountID     int64      `json:"account_id"`
	ProductID     string     `json:"product_id"`
	TransactionID string     `json:"transaction_id"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AccountInfo is the account summary returned to authenticated clients.
type AccountInfo struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Products []string `json:"products"`
}

type SendMagicLinkRequest struct {
	Email string `json:"email"`
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

type VerifyTokenResponse struct {
	Token   string       `json:"token"`
	Account *AccountInfo `json:"user"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (r *SendMagicLinkRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *SendMagicLinkRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func (r *VerifyTokenRequest) Validate() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}
