package domain

import (
	"fmt"
	"strings"
	"time"
)

type MessageTemplate struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageTemplateRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (r *MessageTemplateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

func (r *MessageTemplateRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
