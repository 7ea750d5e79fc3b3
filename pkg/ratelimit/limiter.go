package ratelimit

import (
	"strconv"
	"time"

	"tootarchive/pkg/logger"
	"tootarchive/pkg/mastodon"
	"tootarchive/pkg/store"
)

// Limiter defines the interface for pre-request pacing
type Limiter interface {
	// Wait blocks for as long as the current pacing policy demands
	Wait()
}

// HeaderLimiter paces requests from the most recent rate-limit snapshot
// the API client stored. The remaining request budget is spread evenly
// across the remaining window:
//
//	wait = (reset - now) / remaining
//
// The pacing is advisory. It trusts the locally observed snapshot and
// skips waiting entirely when the snapshot is absent, exhausted, or
// unparsable.
type HeaderLimiter struct {
	store  *store.Store
	logger logger.Logger

	// Injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewHeaderLimiter creates a limiter backed by the record store
func NewHeaderLimiter(st *store.Store, log logger.Logger) *HeaderLimiter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &HeaderLimiter{
		store:  st,
		logger: log,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Wait suspends the caller until the next request fits the pacing budget
func (l *HeaderLimiter) Wait() {
	var snapshot mastodon.RateLimit
	found, err := l.store.Get(mastodon.RateLimitKey, &snapshot)
	if err != nil || !found {
		l.logger.Debug("no rate limit snapshot, not waiting")
		return
	}

	remaining, err := strconv.Atoi(snapshot.Remaining)
	if err != nil || remaining <= 0 {
		l.logger.DebugWithFields("unusable rate limit remaining, not waiting", map[string]interface{}{
			"remaining": snapshot.Remaining,
		})
		return
	}

	reset, ok := parseReset(snapshot.Reset)
	if !ok {
		l.logger.DebugWithFields("unparsable rate limit reset, not waiting", map[string]interface{}{
			"reset": snapshot.Reset,
		})
		return
	}

	wait := reset.Sub(l.now()) / time.Duration(remaining)
	if wait <= 0 {
		return
	}

	logger.LogRateLimitWait(wait, remaining, reset)
	l.sleep(wait)
}

// parseReset parses the reset header value, which Mastodon delivers as an
// RFC 3339 timestamp. Epoch seconds are accepted as a fallback.
func parseReset(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(secs), 0), true
	}
	return time.Time{}, false
}
