package sqlite

import (
	"context"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

func TestAuditAppendAndList(t *testing.T) {
	db := testDB(t)
	repo := NewAuditRepo(db)
	ctx := context.Background()

	entries := []core.InteractionLog{
		{
			AgentType:      core.AgentDesign,
			UserID:         "admin-1",
			InputContext:   map[string]any{"action": "quality_check", "survey_title": "EHR Satisfaction"},
			OutputResponse: map[string]any{"overall_quality_score": 7.5},
			TokensUsed:     321,
			LatencyMS:      840,
		},
		{
			AgentType:    core.AgentAttempt,
			UserID:       "doc-1",
			InputContext: map[string]any{"action": "clarify_question", "question_id": "q2"},
			LatencyMS:    120,
		},
		{
			AgentType: core.AgentDesign,
			InputContext: map[string]any{
				"action": "generate_variants",
			},
			TokensUsed: 900,
		},
	}
	for _, e := range entries {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Failed to append audit entry: %v", err)
		}
	}

	all, err := repo.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("Failed to list audit entries: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	// Newest first.
	if all[0].AgentType != core.AgentDesign || all[0].TokensUsed != 900 {
		t.Errorf("unexpected newest entry: %+v", all[0])
	}
	if all[0].UserID != "" {
		t.Errorf("expected empty user for anonymous entry, got %q", all[0].UserID)
	}
	if all[2].InputContext["survey_title"] != "EHR Satisfaction" {
		t.Errorf("input context mismatch: %+v", all[2].InputContext)
	}
	if all[2].OutputResponse["overall_quality_score"] != 7.5 {
		t.Errorf("output response mismatch: %+v", all[2].OutputResponse)
	}
	if all[2].CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	design, err := repo.List(ctx, core.AgentDesign, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(design) != 2 {
		t.Errorf("got %d design entries, want 2", len(design))
	}

	limited, err := repo.List(ctx, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d entries", len(limited))
	}
}
