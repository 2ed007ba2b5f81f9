package domain

import (
	"fmt"
	"strings"
	"time"
)

type Bucket struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	OwnerID      *int64    `json:"owner_id,omitempty"`
	ContactCount int       `json:"contactCount"`
	CreatedAt    time.Time `json:"created_at"`
}

// Contact is one deduplicated row in a bucket. The WhatsApp id is the
// dedup key: at most one row per (bucket, whatsapp_id).
type Contact struct {
	ID          int64     `json:"id"`
	BucketID    int64     `json:"bucket_id"`
	WhatsappID  string    `json:"whatsappId"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	GroupID     string    `json:"groupId"`
	GroupName   string    `json:"groupName"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateBucketRequest struct {
	Name string `json:"name"`
}

func (r *CreateBucketRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateBucketRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ContactCandidate is one incoming contact in an export batch, as scraped
// from a group chat.
type ContactCandidate struct {
	WhatsappID  string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	GroupID     string `json:"groupId"`
	GroupName   string `json:"groupName"`
}

type ExportRequest struct {
	BucketID int64              `json:"bucketId"`
	Contacts []ContactCandidate `json:"contacts"`
}

func (r *ExportRequest) Validate() error {
	if r.BucketID == 0 {
		return fmt.Errorf("bucketId is required")
	}
	return nil
}

// ExportResult reports the outcome of one export batch. Skipped counts
// contacts that already existed in the bucket; their mutable fields were
// still refreshed in place. Rejected lists candidates dropped before the
// batch was applied (blank WhatsApp id).
type ExportResult struct {
	Added    int                `json:"addedContacts"`
	Skipped  int                `json:"skippedContacts"`
	Rejected []ContactCandidate `json:"rejectedContacts,omitempty"`
}
