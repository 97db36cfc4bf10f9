// Package retry runs an operation with exponential backoff and jitter.
package retry

import (
	"context"
	"math/rand"
	"time"
)

type Operation = func() error

// Config controls the exponential backoff between attempts. The zero value is
// not usable; start from NewDefaultConfig and override per call site (the task
// worker tunes MaxRetries and InitialDelay per task kind).
type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		BackoffFactor: 2.0,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      30 * time.Second,
		Jitter:        100 * time.Millisecond,
	}
}

type Retrier struct {
	config *Config
}

func NewRetrier(config *Config) *Retrier {
	return &Retrier{config: config}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

// Do runs op until it succeeds, the attempt budget is spent, or ctx is done.
// The first attempt happens immediately; MaxRetries more follow, each after a
// jittered pause that grows by BackoffFactor up to MaxDelay. The last
// operation error is returned when retries are exhausted.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	cfg := r.config
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	base := cfg.InitialDelay

	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if attempt >= cfg.MaxRetries {
			return err
		}

		jitter := time.Duration(rnd.Float64() * float64(cfg.Jitter))
		pause := base + jitter
		if pause > cfg.MaxDelay {
			pause = cfg.MaxDelay + jitter
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}

		base = time.Duration(float64(base) * cfg.BackoffFactor)
		if base > cfg.MaxDelay {
			base = cfg.MaxDelay
		}
	}
}
