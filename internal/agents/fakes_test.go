package agents

import (
	"context"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// fakeCompleter records every request and replays canned results in order,
// repeating the last one when calls outnumber results.
type fakeCompleter struct {
	results  []*core.CompletionResult
	err      error
	requests []core.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req core.CompletionRequest) (*core.CompletionResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	i := len(f.requests) - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	if i < 0 {
		return &core.CompletionResult{}, nil
	}
	return f.results[i], nil
}

func toolResult(args string, tokens int) *core.CompletionResult {
	return &core.CompletionResult{ToolArgs: []byte(args), TokensUsed: tokens}
}

func textResult(text string, tokens int) *core.CompletionResult {
	return &core.CompletionResult{Text: text, TokensUsed: tokens}
}

// memStore is an in-memory StateStore with per-method error injection. TTLs
// are recorded, not enforced.
type memStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	counts map[string]int64

	getErr  error
	setErr  error
	incrErr error
}

func newMemStore() *memStore {
	return &memStore{
		data:   map[string][]byte{},
		ttls:   map[string]time.Duration{},
		counts: map[string]int64{},
	}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	data, ok := s.data[key]
	return data, ok, nil
}

func (s *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memStore) IncrWithTTL(_ context.Context, key string, ttlIfNew time.Duration) (int64, error) {
	if s.incrErr != nil {
		return 0, s.incrErr
	}
	if _, ok := s.counts[key]; !ok {
		s.ttls[key] = ttlIfNew
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	delete(s.counts, key)
	return nil
}

// fakeSink records audit entries.
type fakeSink struct {
	entries []core.InteractionLog
	err     error
}

func (f *fakeSink) Append(_ context.Context, entry core.InteractionLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

// fakeRetriever records queries and replays canned matches.
type fakeRetriever struct {
	matches []core.Match
	err     error
	queries []string
	topKs   []int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, topK int) ([]core.Match, error) {
	f.queries = append(f.queries, query)
	f.topKs = append(f.topKs, topK)
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}
