package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

var numberPattern = regexp.MustCompile(`^QUO-\d{8}-\d{3}$`)

func TestNewCandidate_Format(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		candidate := newCandidate(now)
		if !numberPattern.MatchString(candidate) {
			t.Fatalf("candidate %q does not match QUO-YYYYMMDD-NNN", candidate)
		}
		if candidate[:12] != "QUO-20260824" {
			t.Fatalf("expected date segment 20260824, got %q", candidate)
		}
	}
}

func TestAllocateNumber_FirstCandidateFree(t *testing.T) {
	calls := 0
	number, _, err := allocateNumber(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 existence check, got %d", calls)
	}
	if !numberPattern.MatchString(number) {
		t.Fatalf("allocated number %q does not match QUO-YYYYMMDD-NNN", number)
	}
}

func TestAllocateNumber_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	number, _, err := allocateNumber(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return calls < 4, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 existence checks, got %d", calls)
	}
	if number == "" {
		t.Fatal("expected a non-empty number")
	}
}

func TestAllocateNumber_ExhaustsAfterTenAttempts(t *testing.T) {
	calls := 0
	_, _, err := allocateNumber(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	if !errors.Is(err, ErrNumberSpaceExhausted) {
		t.Fatalf("expected ErrNumberSpaceExhausted, got %v", err)
	}
	if calls != maxNumberAttempts {
		t.Fatalf("expected exactly %d attempts, got %d", maxNumberAttempts, calls)
	}
}

func TestAllocateNumber_PropagatesCheckError(t *testing.T) {
	boom := fmt.Errorf("connection reset")
	_, _, err := allocateNumber(context.Background(), func(context.Context, string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped check error, got %v", err)
	}
}

// Fifty concurrent allocations against a shared reservation set must all
// succeed with distinct numbers, mirroring serialized transactions each
// seeing the numbers committed before it.
func TestAllocateNumber_ConcurrentAllocationsAreUnique(t *testing.T) {
	var mu sync.Mutex
	taken := make(map[string]bool)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			mu.Lock()
			defer mu.Unlock()
			number, _, err := allocateNumber(context.Background(), func(_ context.Context, candidate string) (bool, error) {
				return taken[candidate], nil
			})
			if err != nil {
				return err
			}
			if taken[number] {
				return fmt.Errorf("number %s allocated twice", number)
			}
			taken[number] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent allocation failed: %v", err)
	}
	if len(taken) != 50 {
		t.Fatalf("expected 50 distinct numbers, got %d", len(taken))
	}
}
