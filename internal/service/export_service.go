package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/repository"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/events"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

var ErrBucketNotFound = fmt.Errorf("bucket not found")

type ExportService interface {
	// ExportBatch merges a scraped contact batch into a bucket.
	// Candidates without a WhatsApp id are rejected individually and
	// reported back; the rest are applied as one atomic batch with
	// last-write-wins on contacts already present.
	ExportBatch(ctx context.Context, req *domain.ExportRequest) (*domain.ExportResult, error)
}

type exportService struct {
	bucketRepo  repository.BucketRepository
	contactRepo repository.ContactRepository
	eventBus    events.Publisher
}

func NewExportService(
	bucketRepo repository.BucketRepository,
	contactRepo repository.ContactRepository,
	eventBus events.Publisher,
) ExportService {
	return &exportService{
		bucketRepo:  bucketRepo,
		contactRepo: contactRepo,
		eventBus:    eventBus,
	}
}

func (s *exportService) ExportBatch(ctx context.Context, req *domain.ExportRequest) (*domain.ExportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	bucket, err := s.bucketRepo.GetByID(ctx, req.BucketID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up bucket: %w", err)
	}
	if bucket == nil {
		return nil, ErrBucketNotFound
	}

	var valid []domain.ContactCandidate
	var rejected []domain.ContactCandidate
	for _, c := range req.Contacts {
		if strings.TrimSpace(c.WhatsappID) == "" {
			rejected = append(rejected, c)
			continue
		}
		valid = append(valid, c)
	}

	added, skipped, err := s.contactRepo.ExportBatch(ctx, req.BucketID, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to export contacts: %w", err)
	}

	if added > 0 || skipped > 0 {
		if err := s.eventBus.Publish(ctx, events.ContactsExported, events.ContactsExportedEvent{
			BucketID:   req.BucketID,
			Added:      added,
			Skipped:    skipped,
			ExportedAt: time.Now(),
		}); err != nil {
			logger.WarnContext(ctx, "Failed to publish export event", "error", err)
		}
	}

	if len(rejected) > 0 {
		logger.WarnContext(ctx, "Rejected contacts with blank WhatsApp id", "count", len(rejected), "bucket_id", req.BucketID)
	}

	return &domain.ExportResult{
		Added:    added,
		Skipped:  skipped,
		Rejected: rejected,
	}, nil
}
