package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

func TestInsightSaveAndLatest(t *testing.T) {
	db := testDB(t)
	repo := NewInsightRepo(db)
	ctx := context.Background()
	survey := seedSurvey(t, db, "admin-1")

	first := core.InsightResult{
		ExecutiveSummary: "Doctors find the EHR slow.",
		CompletionRate:   40.0,
		Themes: []core.Theme{
			{Title: "Slow charting", Description: "Too many clicks per note", PrevalencePct: 62.5, Sentiment: "negative"},
		},
		ActionItems: []core.ActionItem{
			{Priority: "high", Description: "Audit the charting workflow", OwnerSuggestion: "IT Director"},
		},
		SentimentBreakdown: core.SentimentBreakdown{Positive: 0.2, Negative: 0.6, Neutral: 0.2},
		SegmentInsights: []core.SegmentInsight{
			{Segment: "Cardiology", Insight: "Most frustrated with order entry"},
		},
	}
	stored, err := repo.Save(ctx, survey.ID, first)
	if err != nil {
		t.Fatalf("Failed to save insight: %v", err)
	}
	if stored.ID == 0 {
		t.Error("expected a row ID")
	}
	if stored.GeneratedAt.IsZero() {
		t.Error("expected generated_at to be set")
	}

	second := first
	second.ExecutiveSummary = "Follow-up run after more responses."
	second.CompletionRate = 55.0
	if _, err := repo.Save(ctx, survey.ID, second); err != nil {
		t.Fatal(err)
	}

	latest, err := repo.Latest(ctx, survey.ID)
	if err != nil {
		t.Fatalf("Failed to load latest insight: %v", err)
	}
	if latest.Result.ExecutiveSummary != second.ExecutiveSummary {
		t.Errorf("latest summary = %q, want the second run", latest.Result.ExecutiveSummary)
	}
	if latest.Result.CompletionRate != 55.0 {
		t.Errorf("completion rate = %v, want 55", latest.Result.CompletionRate)
	}
	if len(latest.Result.Themes) != 1 || latest.Result.Themes[0].Title != "Slow charting" {
		t.Errorf("themes mismatch: %+v", latest.Result.Themes)
	}
	if len(latest.Result.ActionItems) != 1 || latest.Result.ActionItems[0].Priority != "high" {
		t.Errorf("action items mismatch: %+v", latest.Result.ActionItems)
	}
	if latest.Result.SentimentBreakdown.Negative != 0.6 {
		t.Errorf("sentiment mismatch: %+v", latest.Result.SentimentBreakdown)
	}
	if len(latest.Result.SegmentInsights) != 1 || latest.Result.SegmentInsights[0].Segment != "Cardiology" {
		t.Errorf("segment insights mismatch: %+v", latest.Result.SegmentInsights)
	}
}

func TestInsightLatest_NotFound(t *testing.T) {
	db := testDB(t)
	survey := seedSurvey(t, db, "admin-1")

	_, err := NewInsightRepo(db).Latest(context.Background(), survey.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
