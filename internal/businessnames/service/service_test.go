package service

import (
	"context"
	"sync"
	"testing"

	"tradequote_backend/internal/businessnames/repository"
	"tradequote_backend/internal/businessnames/transport"
	"tradequote_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// fakeRepo mimics the repository's transactional default handling: any write
// that sets the flag clears it everywhere else first. The mutex stands in
// for the row locks that serialize concurrent default writers in Postgres.
type fakeRepo struct {
	mu         sync.Mutex
	records    map[uuid.UUID]*repository.BusinessName
	referenced map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records:    make(map[uuid.UUID]*repository.BusinessName),
		referenced: make(map[uuid.UUID]bool),
	}
}

func (f *fakeRepo) clearDefaults(except uuid.UUID) {
	for id, b := range f.records {
		if id != except {
			b.IsDefault = false
		}
	}
}

func (f *fakeRepo) Create(_ context.Context, b *repository.BusinessName) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.IsDefault {
		f.clearDefaults(b.ID)
	}
	clone := *b
	f.records[b.ID] = &clone
	return nil
}

func (f *fakeRepo) Update(_ context.Context, b *repository.BusinessName) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[b.ID]; !ok {
		return apperr.NotFound("business name not found")
	}
	if b.IsDefault {
		f.clearDefaults(b.ID)
	}
	clone := *b
	f.records[b.ID] = &clone
	return nil
}

func (f *fakeRepo) SetDefault(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.records[id]
	if !ok {
		return apperr.NotFound("business name not found")
	}
	f.clearDefaults(id)
	b.IsDefault = true
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.records[id]
	if !ok {
		return false, apperr.NotFound("business name not found")
	}
	if f.referenced[id] {
		b.IsActive = false
		b.IsDefault = false
		return true, nil
	}
	delete(f.records, id)
	return false, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*repository.BusinessName, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.records[id]
	if !ok {
		return nil, apperr.NotFound("business name not found")
	}
	clone := *b
	return &clone, nil
}

func (f *fakeRepo) List(_ context.Context) ([]repository.BusinessName, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []repository.BusinessName
	for _, b := range f.records {
		items = append(items, *b)
	}
	return items, nil
}

func (f *fakeRepo) defaultCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.records {
		if b.IsDefault {
			n++
		}
	}
	return n
}

func TestCreate_RejectsBlankName(t *testing.T) {
	svc := New(newFakeRepo())

	_, err := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: "   "})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_SecondDefaultDisplacesFirst(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	first, err := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: "Patel Electricals", IsDefault: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: "Patel Hardware", IsDefault: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.defaultCount() != 1 {
		t.Fatalf("expected exactly one default, got %d", repo.defaultCount())
	}
	if !repo.records[second.ID].IsDefault {
		t.Fatal("expected the newest default to hold the flag")
	}
	if repo.records[first.ID].IsDefault {
		t.Fatal("expected the older default to lose the flag")
	}
}

func TestSetDefault_FlipsSoleDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	a, _ := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: "A", IsDefault: true})
	b, _ := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: "B"})

	resp, err := svc.SetDefault(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsDefault {
		t.Fatal("expected target to become default")
	}
	if repo.records[a.ID].IsDefault {
		t.Fatal("expected previous default to be cleared")
	}
	if repo.defaultCount() != 1 {
		t.Fatalf("expected exactly one default, got %d", repo.defaultCount())
	}
}

func TestSetDefault_UnknownIDIsNotFound(t *testing.T) {
	svc := New(newFakeRepo())

	_, err := svc.SetDefault(context.Background(), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDelete_UnreferencedIsHardDeleted(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	created, _ := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: "Patel Electricals"})

	resp, err := svc.Delete(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "deleted" {
		t.Fatalf("expected status deleted, got %q", resp.Status)
	}
	if _, ok := repo.records[created.ID]; ok {
		t.Fatal("expected record to be gone")
	}
}

func TestDelete_ReferencedIsDeactivatedAndLosesDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	created, _ := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: "Patel Electricals", IsDefault: true})
	repo.referenced[created.ID] = true

	resp, err := svc.Delete(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "deactivated" {
		t.Fatalf("expected status deactivated, got %q", resp.Status)
	}

	b := repo.records[created.ID]
	if b == nil {
		t.Fatal("expected record to survive deactivation")
	}
	if b.IsActive {
		t.Fatal("expected record to be inactive")
	}
	if b.IsDefault {
		t.Fatal("deactivated record must not remain the default")
	}
}

func TestSetDefault_ConcurrentCallersLeaveOneDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	ids := make([]uuid.UUID, 10)
	for i := range ids {
		created, err := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: string(rune('A' + i))})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids[i] = created.ID
	}

	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := svc.SetDefault(context.Background(), id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := repo.defaultCount(); got != 1 {
		t.Fatalf("expected exactly one default after concurrent writers, got %d", got)
	}
}

func TestUpdate_SettingDefaultFalseLeavesZeroDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	created, _ := svc.Create(context.Background(), transport.CreateBusinessNameRequest{Name: "Patel Electricals", IsDefault: true})

	isDefault := false
	_, err := svc.Update(context.Background(), created.ID, transport.UpdateBusinessNameRequest{IsDefault: &isDefault})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.defaultCount() != 0 {
		t.Fatalf("expected zero defaults, got %d", repo.defaultCount())
	}
}
