package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/providers/vector"
)

type fakeStore struct {
	collections map[string]uint64
	upserts     map[string][]vector.Doc
	matches     []core.Match
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string]uint64),
		upserts:     make(map[string][]vector.Doc),
	}
}

func (f *fakeStore) EnsureCollection(_ context.Context, name string, vectorSize uint64) error {
	f.collections[name] = vectorSize
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, collection string, docs []vector.Doc) error {
	f.upserts[collection] = append(f.upserts[collection], docs...)
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ string, _ []float32, _ int) ([]core.Match, error) {
	return f.matches, nil
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func testConfig() *config.QdrantConfig {
	return &config.QdrantConfig{
		GuidelinesCollection: "survey-guidelines",
		TemplatesCollection:  "survey-templates",
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	idx := NewIndex(store, &fakeEmbedder{}, testConfig())

	if err := idx.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if store.collections["survey-guidelines"] != 3 {
		t.Errorf("guidelines collection size = %d, want 3", store.collections["survey-guidelines"])
	}
	if _, ok := store.collections["survey-templates"]; !ok {
		t.Error("templates collection not ensured")
	}

	docs := store.upserts["survey-guidelines"]
	if len(docs) != len(SurveyGuidelines) {
		t.Fatalf("upserted %d docs, want %d", len(docs), len(SurveyGuidelines))
	}
	if docs[0].Payload["title"] != "Avoiding Leading Questions" {
		t.Errorf("first doc title = %v", docs[0].Payload["title"])
	}
	if docs[0].Payload["category"] != "bias" {
		t.Errorf("first doc category = %v", docs[0].Payload["category"])
	}

	// Re-seeding must address the same point IDs.
	firstID := docs[0].ID
	if err := idx.Seed(ctx); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if store.upserts["survey-guidelines"][len(SurveyGuidelines)].ID != firstID {
		t.Error("re-seed produced a different point ID for the same guideline")
	}
}

func TestRetrieve(t *testing.T) {
	store := newFakeStore()
	store.matches = []core.Match{{Title: "Optimal Survey Length for Doctors", Category: "length"}}
	idx := NewIndex(store, &fakeEmbedder{}, testConfig())

	matches, err := idx.Retrieve(context.Background(), "how long should my survey be", 4)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(matches) != 1 || matches[0].Title != "Optimal Survey Length for Doctors" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestIndexTemplate(t *testing.T) {
	ctx := context.Background()
	survey := core.Survey{
		ID:          "0191d4b2-1111-7aaa-bbbb-cccccccccccc",
		Title:       "Telemedicine Adoption",
		Description: "Quarterly pulse",
		Questions: []core.Question{
			{ID: "q1", Text: "How often do you use telemedicine?"},
			{ID: "q2", Text: "What blocks wider adoption?"},
		},
		TargetingRules: map[string]any{"specialty": "cardiology"},
	}

	t.Run("below threshold is skipped", func(t *testing.T) {
		store := newFakeStore()
		idx := NewIndex(store, &fakeEmbedder{}, testConfig())

		if err := idx.IndexTemplate(ctx, survey, 39.9); err != nil {
			t.Fatalf("IndexTemplate: %v", err)
		}
		if len(store.upserts["survey-templates"]) != 0 {
			t.Errorf("expected no upserts, got %d", len(store.upserts["survey-templates"]))
		}
	})

	t.Run("indexed at threshold", func(t *testing.T) {
		store := newFakeStore()
		idx := NewIndex(store, &fakeEmbedder{}, testConfig())

		if err := idx.IndexTemplate(ctx, survey, 40); err != nil {
			t.Fatalf("IndexTemplate: %v", err)
		}

		docs := store.upserts["survey-templates"]
		if len(docs) != 1 {
			t.Fatalf("expected 1 upsert, got %d", len(docs))
		}
		if docs[0].ID != survey.ID {
			t.Errorf("doc ID = %s, want survey ID", docs[0].ID)
		}
		if docs[0].Payload["question_count"] != 2 {
			t.Errorf("question_count = %v", docs[0].Payload["question_count"])
		}
		if docs[0].Payload["specialty"] != "cardiology" {
			t.Errorf("specialty = %v", docs[0].Payload["specialty"])
		}
	})

	t.Run("specialty defaults to all", func(t *testing.T) {
		store := newFakeStore()
		idx := NewIndex(store, &fakeEmbedder{}, testConfig())

		noTarget := survey
		noTarget.TargetingRules = nil
		if err := idx.IndexTemplate(ctx, noTarget, 80); err != nil {
			t.Fatalf("IndexTemplate: %v", err)
		}
		if got := store.upserts["survey-templates"][0].Payload["specialty"]; got != "all" {
			t.Errorf("specialty = %v, want all", got)
		}
	})
}

func TestFormatGuidelines(t *testing.T) {
	matches := []core.Match{
		{Title: "Avoiding Leading Questions", Content: "Rephrase to be neutral.", Category: "bias"},
		{Title: "Question Order Effects", Content: "Easy questions first.", Category: "flow"},
	}

	got := FormatGuidelines(matches)
	want := "[BIAS] Avoiding Leading Questions\nRephrase to be neutral.\n\n[FLOW] Question Order Effects\nEasy questions first."
	if got != want {
		t.Errorf("FormatGuidelines = %q, want %q", got, want)
	}
}

func TestFormatGuidelines_Fallbacks(t *testing.T) {
	if got := FormatGuidelines(nil); got != NoGuidelinesFallback {
		t.Errorf("empty matches = %q", got)
	}

	got := FormatGuidelines([]core.Match{{Title: "Untagged", Content: "Body."}})
	if !strings.HasPrefix(got, "[GENERAL] ") {
		t.Errorf("missing category should render as GENERAL, got %q", got)
	}
}
