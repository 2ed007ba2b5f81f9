package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/service"
)

type mockBucketRepo struct {
	mu      sync.Mutex
	nextID  int64
	buckets map[int64]*domain.Bucket
}

func newMockBucketRepo() *mockBucketRepo {
	return &mockBucketRepo{nextID: 1, buckets: make(map[int64]*domain.Bucket)}
}

func (m *mockBucketRepo) Create(_ context.Context, name string, ownerID *int64) (*domain.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &domain.Bucket{ID: m.nextID, Name: name, OwnerID: ownerID, CreatedAt: time.Now()}
	m.nextID++
	m.buckets[b.ID] = b
	return b, nil
}

func (m *mockBucketRepo) GetByID(_ context.Context, id int64) (*domain.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buckets[id], nil
}

func (m *mockBucketRepo) List(_ context.Context) ([]domain.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Bucket
	for _, b := range m.buckets {
		out = append(out, *b)
	}
	return out, nil
}

type mockContactRepo struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]map[string]*domain.Contact // bucketID -> whatsappID -> contact
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{nextID: 1, contacts: make(map[int64]map[string]*domain.Contact)}
}

func (m *mockContactRepo) ExportBatch(_ context.Context, bucketID int64, candidates []domain.ContactCandidate) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.contacts[bucketID] == nil {
		m.contacts[bucketID] = make(map[string]*domain.Contact)
	}

	var added, skipped int
	for _, c := range candidates {
		if existing, ok := m.contacts[bucketID][c.WhatsappID]; ok {
			existing.Name = c.Name
			existing.PhoneNumber = c.PhoneNumber
			existing.GroupID = c.GroupID
			existing.GroupName = c.GroupName
			skipped++
			continue
		}
		m.contacts[bucketID][c.WhatsappID] = &domain.Contact{
			ID: m.nextID, BucketID: bucketID, WhatsappID: c.WhatsappID,
			Name: c.Name, PhoneNumber: c.PhoneNumber,
			GroupID: c.GroupID, GroupName: c.GroupName,
		}
		m.nextID++
		added++
	}
	return added, skipped, nil
}

func (m *mockContactRepo) ListByBucket(_ context.Context, bucketID int64) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Contact
	for _, c := range m.contacts[bucketID] {
		out = append(out, *c)
	}
	return out, nil
}

func newExportFixture(t *testing.T) (service.ExportService, *mockBucketRepo, *mockContactRepo, int64) {
	t.Helper()
	buckets := newMockBucketRepo()
	contacts := newMockContactRepo()
	svc := service.NewExportService(buckets, contacts, newBusRecorder())

	bucket, err := buckets.Create(context.Background(), "My Leads", nil)
	if err != nil {
		t.Fatalf("create bucket: %v", err)
	}
	return svc, buckets, contacts, bucket.ID
}

func TestExportBatchCountsAddedAndSkipped(t *testing.T) {
	svc, _, _, bucketID := newExportFixture(t)
	ctx := context.Background()

	batch := &domain.ExportRequest{
		BucketID: bucketID,
		Contacts: []domain.ContactCandidate{
			{WhatsappID: "111@c.us", Name: "Alice", PhoneNumber: "+1111"},
			{WhatsappID: "222@c.us", Name: "Bob", PhoneNumber: "+2222"},
		},
	}

	result, err := svc.ExportBatch(ctx, batch)
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if result.Added != 2 || result.Skipped != 0 {
		t.Errorf("expected added=2 skipped=0, got added=%d skipped=%d", result.Added, result.Skipped)
	}

	// Re-exporting the same batch inserts nothing new.
	result, err = svc.ExportBatch(ctx, batch)
	if err != nil {
		t.Fatalf("ExportBatch (repeat): %v", err)
	}
	if result.Added != 0 || result.Skipped != 2 {
		t.Errorf("expected added=0 skipped=2, got added=%d skipped=%d", result.Added, result.Skipped)
	}
}

func TestExportOverwritesExistingContactFields(t *testing.T) {
	svc, _, contacts, bucketID := newExportFixture(t)
	ctx := context.Background()

	first := &domain.ExportRequest{
		BucketID: bucketID,
		Contacts: []domain.ContactCandidate{{WhatsappID: "111@c.us", Name: "Alice"}},
	}
	if _, err := svc.ExportBatch(ctx, first); err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}

	// Same contact, new name: last write wins.
	second := &domain.ExportRequest{
		BucketID: bucketID,
		Contacts: []domain.ContactCandidate{{WhatsappID: "111@c.us", Name: "Alicia"}},
	}
	result, err := svc.ExportBatch(ctx, second)
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if result.Added != 0 || result.Skipped != 1 {
		t.Errorf("expected added=0 skipped=1, got added=%d skipped=%d", result.Added, result.Skipped)
	}

	stored, _ := contacts.ListByBucket(ctx, bucketID)
	if len(stored) != 1 {
		t.Fatalf("expected one stored contact, got %d", len(stored))
	}
	if stored[0].Name != "Alicia" {
		t.Errorf("expected overwritten name Alicia, got %s", stored[0].Name)
	}
}

func TestExportRejectsBlankWhatsappID(t *testing.T) {
	svc, _, contacts, bucketID := newExportFixture(t)
	ctx := context.Background()

	result, err := svc.ExportBatch(ctx, &domain.ExportRequest{
		BucketID: bucketID,
		Contacts: []domain.ContactCandidate{
			{WhatsappID: "", Name: "Ghost"},
			{WhatsappID: "  ", Name: "Blank"},
			{WhatsappID: "333@c.us", Name: "Carol"},
		},
	})
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if result.Added != 1 {
		t.Errorf("expected added=1, got %d", result.Added)
	}
	if len(result.Rejected) != 2 {
		t.Errorf("expected 2 rejected candidates, got %d", len(result.Rejected))
	}

	stored, _ := contacts.ListByBucket(ctx, bucketID)
	if len(stored) != 1 {
		t.Errorf("expected one stored contact, got %d", len(stored))
	}
}

func TestExportEmptyBatchIsZeroEffectSuccess(t *testing.T) {
	svc, _, _, bucketID := newExportFixture(t)

	result, err := svc.ExportBatch(context.Background(), &domain.ExportRequest{BucketID: bucketID})
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if result.Added != 0 || result.Skipped != 0 || len(result.Rejected) != 0 {
		t.Errorf("expected zero-effect result, got %+v", result)
	}
}

func TestExportUnknownBucketFails(t *testing.T) {
	svc, _, _, _ := newExportFixture(t)

	_, err := svc.ExportBatch(context.Background(), &domain.ExportRequest{
		BucketID: 9999,
		Contacts: []domain.ContactCandidate{{WhatsappID: "111@c.us"}},
	})
	if err != service.ErrBucketNotFound {
		t.Errorf("expected ErrBucketNotFound, got %v", err)
	}
}
