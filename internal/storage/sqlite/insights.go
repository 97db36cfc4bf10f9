package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

type InsightRepo struct {
	db *sql.DB
}

func NewInsightRepo(db *sql.DB) *InsightRepo {
	return &InsightRepo{db: db}
}

// Save appends a generation run for a survey. Earlier rows are kept so a
// re-run never destroys history; Latest picks the newest.
func (r *InsightRepo) Save(ctx context.Context, surveyID string, result core.InsightResult) (*core.StoredInsight, error) {
	themesJSON, err := jsonText(result.Themes, "[]")
	if err != nil {
		return nil, err
	}
	actionsJSON, err := jsonText(result.ActionItems, "[]")
	if err != nil {
		return nil, err
	}
	sentimentJSON, err := jsonText(result.SentimentBreakdown, "{}")
	if err != nil {
		return nil, err
	}
	segmentsJSON, err := jsonText(result.SegmentInsights, "[]")
	if err != nil {
		return nil, err
	}

	generatedAt := time.Now().UTC()
	query := `INSERT INTO survey_insights
		(survey_id, executive_summary, themes, action_items, sentiment_breakdown, segment_insights, completion_rate, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		surveyID, result.ExecutiveSummary, themesJSON, actionsJSON, sentimentJSON, segmentsJSON,
		result.CompletionRate, generatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert insight: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &core.StoredInsight{ID: id, SurveyID: surveyID, Result: result, GeneratedAt: generatedAt}, nil
}

// Latest returns the most recent insight for a survey, or ErrNotFound when
// none has been generated yet.
func (r *InsightRepo) Latest(ctx context.Context, surveyID string) (*core.StoredInsight, error) {
	query := `SELECT id, survey_id, executive_summary, themes, action_items, sentiment_breakdown,
		segment_insights, completion_rate, generated_at
		FROM survey_insights WHERE survey_id = ? ORDER BY generated_at DESC, id DESC LIMIT 1`

	var (
		ins          core.StoredInsight
		themesStr    sql.NullString
		actionsStr   sql.NullString
		sentimentStr sql.NullString
		segmentsStr  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, surveyID).Scan(
		&ins.ID, &ins.SurveyID, &ins.Result.ExecutiveSummary, &themesStr, &actionsStr,
		&sentimentStr, &segmentsStr, &ins.Result.CompletionRate, &ins.GeneratedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load insight: %w", err)
	}

	if err := scanJSON(themesStr, &ins.Result.Themes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal themes: %w", err)
	}
	if err := scanJSON(actionsStr, &ins.Result.ActionItems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action items: %w", err)
	}
	if err := scanJSON(sentimentStr, &ins.Result.SentimentBreakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sentiment breakdown: %w", err)
	}
	if err := scanJSON(segmentsStr, &ins.Result.SegmentInsights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal segment insights: %w", err)
	}
	return &ins, nil
}
