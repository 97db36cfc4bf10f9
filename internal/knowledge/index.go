package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/providers/vector"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// store is the slice of the vector client this package uses.
type store interface {
	EnsureCollection(ctx context.Context, name string, vectorSize uint64) error
	Upsert(ctx context.Context, collection string, docs []vector.Doc) error
	Search(ctx context.Context, collection string, vec []float32, topK int) ([]core.Match, error)
}

// Index owns the two vector collections: the seeded guideline corpus the
// design agent retrieves from, and high-performing past surveys kept as
// templates.
type Index struct {
	store      store
	embedder   core.Embedder
	guidelines string
	templates  string
}

var _ core.Retriever = (*Index)(nil)

func NewIndex(s store, embedder core.Embedder, cfg *config.QdrantConfig) *Index {
	return &Index{
		store:      s,
		embedder:   embedder,
		guidelines: cfg.GuidelinesCollection,
		templates:  cfg.TemplatesCollection,
	}
}

// Seed embeds the guideline corpus and upserts it. Point IDs derive from the
// guideline IDs, so repeat runs overwrite in place.
func (i *Index) Seed(ctx context.Context) error {
	log.FromCtx(ctx).Info().
		Int("count", len(SurveyGuidelines)).
		Msg("seeding guideline knowledge base")

	texts := make([]string, 0, len(SurveyGuidelines))
	for _, g := range SurveyGuidelines {
		texts = append(texts, g.Title+". "+g.Content)
	}

	embeddings, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed guidelines: %w", err)
	}

	size := uint64(len(embeddings[0]))
	if err := i.store.EnsureCollection(ctx, i.guidelines, size); err != nil {
		return err
	}
	if err := i.store.EnsureCollection(ctx, i.templates, size); err != nil {
		return err
	}

	docs := make([]vector.Doc, 0, len(SurveyGuidelines))
	for idx, g := range SurveyGuidelines {
		docs = append(docs, vector.Doc{
			ID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte(g.ID)).String(),
			Vector: embeddings[idx],
			Payload: map[string]any{
				"title":    g.Title,
				"content":  g.Content,
				"category": g.Category,
			},
		})
	}

	if err := i.store.Upsert(ctx, i.guidelines, docs); err != nil {
		return err
	}

	log.FromCtx(ctx).Info().Int("count", len(docs)).Msg("knowledge base seeded")
	return nil
}

// Retrieve embeds the query and searches the guideline collection.
func (i *Index) Retrieve(ctx context.Context, query string, topK int) ([]core.Match, error) {
	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return i.store.Search(ctx, i.guidelines, vec, topK)
}

// IndexTemplate stores a finished survey as design inspiration. Surveys
// that kept under 40% of respondents are skipped.
func (i *Index) IndexTemplate(ctx context.Context, survey core.Survey, completionRate float64) error {
	if completionRate < 40 {
		return nil
	}

	parts := make([]string, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		parts = append(parts, q.Text)
	}
	text := survey.Title + ". " + survey.Description + ". " + strings.Join(parts, " ")

	vec, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed template: %w", err)
	}
	if err := i.store.EnsureCollection(ctx, i.templates, uint64(len(vec))); err != nil {
		return err
	}

	specialty := "all"
	if s, ok := survey.TargetingRules["specialty"].(string); ok && s != "" {
		specialty = s
	}

	doc := vector.Doc{
		ID:     survey.ID,
		Vector: vec,
		Payload: map[string]any{
			"title":           survey.Title,
			"question_count":  len(survey.Questions),
			"completion_rate": completionRate,
			"specialty":       specialty,
		},
	}
	if err := i.store.Upsert(ctx, i.templates, []vector.Doc{doc}); err != nil {
		return err
	}

	log.FromCtx(ctx).Info().
		Str("survey_id", survey.ID).
		Float64("completion_rate", completionRate).
		Msg("survey indexed as template")
	return nil
}
