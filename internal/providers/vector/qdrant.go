package vector

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// Doc is one point to index. ID must be a UUID string; payloads carry the
// displayable fields the search side reads back.
type Doc struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Qdrant wraps the gRPC client with the three operations the knowledge
// layer needs. Collection names are passed per call so the guidelines and
// templates indexes share one connection.
type Qdrant struct {
	client *qdrant.Client
}

func NewQdrant(cfg *config.QdrantConfig) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &Qdrant{client: client}, nil
}

// EnsureCollection creates the collection when missing. vectorSize must
// match the embedding model's dimensionality.
func (q *Qdrant) EnsureCollection(ctx context.Context, name string, vectorSize uint64) error {
	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	log.FromCtx(ctx).Info().
		Str("collection", name).
		Uint64("vector_size", vectorSize).
		Msg("creating vector collection")

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	return nil
}

// Upsert writes docs by ID, replacing existing points. Reindexing the same
// corpus is therefore idempotent.
func (q *Qdrant) Upsert(ctx context.Context, collection string, docs []Doc) error {
	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, d := range docs {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(d.ID),
			Vectors: qdrant.NewVectors(d.Vector...),
			Payload: qdrant.NewValueMap(d.Payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(points), collection, err)
	}
	return nil
}

// Search returns the topK nearest points ordered by score descending.
func (q *Qdrant) Search(ctx context.Context, collection string, vector []float32, topK int) ([]core.Match, error) {
	limit := uint64(topK)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	matches := make([]core.Match, 0, len(points))
	for _, p := range points {
		m := core.Match{Score: p.Score}
		if p.Payload != nil {
			m.Title = p.Payload["title"].GetStringValue()
			m.Content = p.Payload["content"].GetStringValue()
			m.Category = p.Payload["category"].GetStringValue()
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (q *Qdrant) Close() error {
	return q.client.Close()
}
