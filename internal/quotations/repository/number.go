package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"tradequote_backend/platform/apperr"
)

// maxNumberAttempts bounds the random-suffix retry loop. With 1000 suffixes
// per day the loop only exhausts when the day's number space is nearly full.
const maxNumberAttempts = 10

// ErrNumberSpaceExhausted is returned when no free quotation number could be
// found within the attempt budget.
var ErrNumberSpaceExhausted = apperr.Internal("quotation number space exhausted, no free number found")

// existsFunc reports whether a candidate quotation number is already taken.
// The store binds it to the surrounding transaction so allocation and insert
// see the same snapshot.
type existsFunc func(ctx context.Context, number string) (bool, error)

// newCandidate generates a candidate number in the form QUO-YYYYMMDD-NNN
// with a random three-digit suffix.
func newCandidate(now time.Time) string {
	return fmt.Sprintf("QUO-%s-%03d", now.Format("20060102"), rand.IntN(1000))
}

// allocateNumber draws random candidates until one is free, giving up after
// maxNumberAttempts. The unique index on quotation_number remains the final
// arbiter against races between concurrent transactions. The last candidate
// tried is returned alongside the error for diagnostics.
func allocateNumber(ctx context.Context, exists existsFunc) (number string, lastCandidate string, err error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		candidate := newCandidate(time.Now())
		lastCandidate = candidate
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", candidate, fmt.Errorf("check quotation number %s: %w", candidate, err)
		}
		if !taken {
			return candidate, candidate, nil
		}
	}
	return "", lastCandidate, ErrNumberSpaceExhausted
}
