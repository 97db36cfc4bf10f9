package core

import (
	"context"
	"encoding/json"
	"time"
)

// ToolSpec describes a forced structured-output tool for a completion call.
// Schema is a JSON Schema object in the provider-neutral (OpenAI parameters)
// shape; adapters translate it to their own wire format.
type ToolSpec struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// CompletionRequest pins the provider call parameters so downstream parsing
// cannot silently accept a malformed answer: either Tool forces a structured
// tool call, or JSONOnly demands a bare JSON object in the text.
type CompletionRequest struct {
	System      string
	User        string
	Tool        *ToolSpec
	JSONOnly    bool
	Temperature float64
	MaxTokens   int
}

type CompletionResult struct {
	// Text is the assistant text for JSONOnly/freeform requests.
	Text string
	// ToolArgs holds the arguments of the forced tool call, when Tool was set.
	ToolArgs   json.RawMessage
	TokensUsed int
}

// Completer is the generation provider port. Implementations fail with
// ErrProviderUnavailable (transport/HTTP trouble) or ErrMalformedResponse
// (a reply that cannot be mapped), both wrapped with detail.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// Embedder turns text into vectors for the retrieval index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Match is one retrieval hit, ordered by score descending.
type Match struct {
	Title    string
	Content  string
	Category string
	Score    float32
}

// Retriever is the semantic-search port supplying contextual reference text.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Match, error)
}

// StateStore is the shared key-value store with per-key expiry. IncrWithTTL
// must be atomic and attach ttlIfNew only on the increment that creates the
// key; it is the single concurrency-sensitive primitive in the system.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrWithTTL(ctx context.Context, key string, ttlIfNew time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}

// AuditSink persists interaction log entries. Callers are free to drop the
// returned error after logging it; audit durability never gates a response.
type AuditSink interface {
	Append(ctx context.Context, entry InteractionLog) error
}

// TaskQueue schedules background work with at-least-once delivery. Handlers
// must be idempotent.
type TaskQueue interface {
	Enqueue(ctx context.Context, task string, payload any) error
	EnqueueIn(ctx context.Context, task string, payload any, delay time.Duration) error
}
