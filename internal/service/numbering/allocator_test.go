package numbering

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"
)

// memorySequences is an in-memory SequenceRepository.
type memorySequences struct {
	mu     sync.Mutex
	counts map[string]int
	codes  map[string]string
	err    error
}

func newMemorySequences() *memorySequences {
	return &memorySequences{counts: map[string]int{}, codes: map[string]string{}}
}

func key(userID string, year int) string { return fmt.Sprintf("%s/%d", userID, year) }

func (m *memorySequences) Increment(ctx context.Context, userID string, year int, userCode string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	k := key(userID, year)
	m.counts[k]++
	m.codes[k] = userCode
	return m.counts[k], nil
}

func (m *memorySequences) Current(ctx context.Context, userID string, year int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[key(userID, year)], nil
}

var numberPattern = regexp.MustCompile(`^TR-FP-\d{8}-\d{4}-[A-Z]{3}$`)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestUserCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single word", in: "madonna", want: "MAD"},
		{name: "single short word padded", in: "Al", want: "ALX"},
		{name: "single letter padded", in: "q", want: "QXX"},
		{name: "two words", in: "Juan Dela", want: "JDE"},
		{name: "two words short last", in: "Maria O", want: "MOX"},
		{name: "three words", in: "Juan Dela Cruz", want: "JDC"},
		{name: "four words uses first three", in: "Ana Maria de Leon", want: "AMD"},
		{name: "extra whitespace", in: "   Ana    Reyes  ", want: "ARE"},
		{name: "empty", in: "", want: "USR"},
		{name: "blank", in: "   ", want: "USR"},
		{name: "non-letters dropped", in: "J. R. R. Tolkien", want: "JRR"},
		{name: "digits only word dropped", in: "Room 101", want: "ROO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserCode(tt.in)
			if got != tt.want {
				t.Errorf("UserCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len(got) != 3 {
				t.Errorf("UserCode(%q) length = %d, want 3", tt.in, len(got))
			}
		})
	}
}

func TestFormat(t *testing.T) {
	day := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	got := Format(day, 12, "JDC")
	if got != "TR-FP-20240307-0012-JDC" {
		t.Errorf("Format() = %q", got)
	}
	if !numberPattern.MatchString(got) {
		t.Errorf("Format() = %q does not match the number pattern", got)
	}
}

func TestNextNumber_SequentialWithoutGaps(t *testing.T) {
	repo := newMemorySequences()
	day := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	alloc := NewAllocator(repo, testLogger(), WithClock(fixedClock(day)))

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		got, err := alloc.NextNumber(ctx, "user-1", "Juan Dela Cruz")
		if err != nil {
			t.Fatalf("NextNumber() error = %v", err)
		}
		want := fmt.Sprintf("TR-FP-20250115-%04d-JDC", i)
		if got != want {
			t.Errorf("call %d: NextNumber() = %q, want %q", i, got, want)
		}
	}

	seq, err := alloc.CurrentSequence(ctx, "user-1")
	if err != nil {
		t.Fatalf("CurrentSequence() error = %v", err)
	}
	if seq != 3 {
		t.Errorf("CurrentSequence() = %d, want 3", seq)
	}
}

func TestNextNumber_CountersArePerUserAndYear(t *testing.T) {
	repo := newMemorySequences()
	now := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	alloc := NewAllocator(repo, testLogger(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	a1, _ := alloc.NextNumber(ctx, "a", "Alpha")
	b1, _ := alloc.NextNumber(ctx, "b", "Bravo")
	now = now.Add(2 * time.Hour) // 2025
	a2, _ := alloc.NextNumber(ctx, "a", "Alpha")

	if a1 != "TR-FP-20241231-0001-ALP" {
		t.Errorf("a1 = %q", a1)
	}
	if b1 != "TR-FP-20241231-0001-BRA" {
		t.Errorf("b1 = %q", b1)
	}
	if a2 != "TR-FP-20250101-0001-ALP" {
		t.Errorf("a2 = %q, new year restarts at 1", a2)
	}
}

func TestNumberOrFallback(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		alloc := NewAllocator(newMemorySequences(), testLogger(), WithClock(fixedClock(day)))
		got := alloc.NumberOrFallback(ctx, "", "")
		if got != "TR-FP-20240601-0000-USR" {
			t.Errorf("NumberOrFallback() = %q", got)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		repo := newMemorySequences()
		repo.err = errors.New("connection refused")
		alloc := NewAllocator(repo, testLogger(), WithClock(fixedClock(day)))

		got := alloc.NumberOrFallback(ctx, "user-1", "Juan")
		if got != "TR-FP-20240601-0000-ERR" {
			t.Errorf("NumberOrFallback() = %q", got)
		}
		if !numberPattern.MatchString(got) {
			t.Errorf("fallback %q does not match the number pattern", got)
		}
	})

	t.Run("success", func(t *testing.T) {
		alloc := NewAllocator(newMemorySequences(), testLogger(), WithClock(fixedClock(day)))
		got := alloc.NumberOrFallback(ctx, "user-1", "Juan")
		if got != "TR-FP-20240601-0001-JUA" {
			t.Errorf("NumberOrFallback() = %q", got)
		}
	})
}

func TestNextNumber_StoreErrorIsReturned(t *testing.T) {
	repo := newMemorySequences()
	repo.err = errors.New("boom")
	alloc := NewAllocator(repo, testLogger())

	if _, err := alloc.NextNumber(context.Background(), "u", "Name"); err == nil {
		t.Fatal("NextNumber() expected error")
	}
}
