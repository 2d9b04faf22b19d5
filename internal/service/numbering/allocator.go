// Package numbering issues per-user, per-year transmittal numbers of the form
// TR-FP-<YYYYMMDD>-<NNNN>-<CODE>.
package numbering

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"transmittal/internal/domain/repositories"
	"transmittal/internal/domain/services"
)

const (
	numberPrefix = "TR-FP"

	// AnonymousCode marks numbers issued without a signed-in user.
	AnonymousCode = "USR"
	// ErrorCode marks numbers issued while the sequence store was unavailable.
	ErrorCode = "ERR"
)

// Allocator implements services.NumberAllocator on top of a SequenceRepository.
type Allocator struct {
	repo   repositories.SequenceRepository
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

// NewAllocator creates a number allocator.
func NewAllocator(repo repositories.SequenceRepository, logger *slog.Logger, opts ...Option) services.NumberAllocator {
	a := &Allocator{repo: repo, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NextNumber increments the caller's counter and formats the result.
func (a *Allocator) NextNumber(ctx context.Context, userID, displayName string) (string, error) {
	now := a.now().UTC()
	code := UserCode(displayName)

	seq, err := a.repo.Increment(ctx, userID, now.Year(), code)
	if err != nil {
		return "", fmt.Errorf("increment sequence: %w", err)
	}

	number := Format(now, seq, code)
	a.logger.Info("transmittal number issued",
		"user_id", userID,
		"year", now.Year(),
		"sequence", seq,
		"number", number,
	)
	return number, nil
}

// NumberOrFallback returns a number without ever failing.
func (a *Allocator) NumberOrFallback(ctx context.Context, userID, displayName string) string {
	if userID == "" {
		return Format(a.now().UTC(), 0, AnonymousCode)
	}

	number, err := a.NextNumber(ctx, userID, displayName)
	if err != nil {
		a.logger.Error("sequence store unavailable, issuing fallback number",
			"user_id", userID,
			"error", err,
		)
		return Format(a.now().UTC(), 0, ErrorCode)
	}
	return number
}

// CurrentSequence returns the caller's counter for the current year.
func (a *Allocator) CurrentSequence(ctx context.Context, userID string) (int, error) {
	seq, err := a.repo.Current(ctx, userID, a.now().UTC().Year())
	if err != nil {
		return 0, fmt.Errorf("current sequence: %w", err)
	}
	return seq, nil
}

// Format renders a transmittal number for the given day, sequence and user code.
func Format(day time.Time, sequence int, userCode string) string {
	return fmt.Sprintf("%s-%s-%04d-%s", numberPrefix, day.Format("20060102"), sequence, userCode)
}

// UserCode derives the three-letter code embedded in every number:
//   - one word: its first three letters
//   - two words: first letter of the first, first two of the second
//   - three or more: first letter of each of the first three
//
// Only ASCII letters count; short results are padded with X.
func UserCode(displayName string) string {
	var words []string
	for _, field := range strings.Fields(displayName) {
		if w := asciiLetters(field); w != "" {
			words = append(words, w)
		}
	}

	var code string
	switch len(words) {
	case 0:
		return AnonymousCode
	case 1:
		code = prefix(words[0], 3)
	case 2:
		code = prefix(words[0], 1) + prefix(words[1], 2)
	default:
		code = prefix(words[0], 1) + prefix(words[1], 1) + prefix(words[2], 1)
	}

	code = strings.ToUpper(code)
	for len(code) < 3 {
		code += "X"
	}
	return code
}

func asciiLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
