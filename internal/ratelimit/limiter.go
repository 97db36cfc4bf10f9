package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

const keyPrefix = "rate_limit:"

// Policy is one quota: Limit calls per Window for a scope.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Limiter is an advisory fixed-window gate on the state store. The window
// starts at the first increment and closes Window later; a burst straddling
// the boundary can therefore pass up to 2x Limit calls in total. That is the
// accepted cost of a single atomic INCR per check, not a bug to fix with
// sliding-window bookkeeping.
type Limiter struct {
	store core.StateStore
}

func New(store core.StateStore) *Limiter {
	return &Limiter{store: store}
}

// Allow counts this call against the scope's window and reports whether it
// is within the policy. A denial is terminal for the call; the counter has
// already moved and is never rolled back.
func (l *Limiter) Allow(ctx context.Context, scope string, policy Policy) (bool, error) {
	count, err := l.store.IncrWithTTL(ctx, keyPrefix+scope, policy.Window)
	if err != nil {
		return false, fmt.Errorf("rate limit check %q: %w", scope, err)
	}

	allowed := count <= int64(policy.Limit)
	if !allowed {
		log.FromCtx(ctx).Warn().
			Str("scope", scope).
			Int64("count", count).
			Int("limit", policy.Limit).
			Msg("rate limit exceeded")
	}
	return allowed, nil
}

// DesignScope keys design-type actions per issuing admin.
func DesignScope(adminID string) string {
	return "design:" + adminID
}

// ClarifyScope keys clarification actions per doctor-survey pair.
func ClarifyScope(doctorID, surveyID string) string {
	return fmt.Sprintf("clarify:%s:%s", doctorID, surveyID)
}
