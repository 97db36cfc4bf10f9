package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

func TestEmbedBatch_ReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"data": [
				{"index": 1, "embedding": [0.2, 0.2]},
				{"index": 0, "embedding": [0.1, 0.1]}
			]
		}`))
	}))
	defer srv.Close()

	e := &OpenAIEmbedder{baseProvider: newBaseProvider(srv.URL, "test-key", "text-embedding-3-small")}

	vectors, err := e.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.2 {
		t.Errorf("vectors out of order: %v", vectors)
	}
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"index": 0, "embedding": [0.5]}]}`))
	}))
	defer srv.Close()

	e := &OpenAIEmbedder{baseProvider: newBaseProvider(srv.URL, "test-key", "text-embedding-3-small")}

	_, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, core.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	e := &OpenAIEmbedder{baseProvider: newBaseProvider("http://unused", "k", "m")}
	vectors, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil, got %v", vectors)
	}
}
