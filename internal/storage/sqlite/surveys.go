package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

const surveyColumns = `id, admin_id, title, description, questions, targeting_rules,
	estimated_time_seconds, quality_score, predicted_completion_rate, version, status,
	created_at, launched_at, closed_at`

type SurveyRepo struct {
	db *sql.DB
}

func NewSurveyRepo(db *sql.DB) *SurveyRepo {
	return &SurveyRepo{db: db}
}

// Create inserts a new draft. The ID is generated when empty, and status and
// version are forced regardless of what the caller set.
func (r *SurveyRepo) Create(ctx context.Context, s *core.Survey) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Status = core.SurveyDraft
	s.Version = 1
	s.CreatedAt = time.Now().UTC()

	questionsJSON, err := jsonText(s.Questions, "[]")
	if err != nil {
		return err
	}
	targetingJSON, err := nullJSONText(s.TargetingRules)
	if err != nil {
		return err
	}

	query := `INSERT INTO surveys
		(id, admin_id, title, description, questions, targeting_rules, estimated_time_seconds, version, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.AdminID, s.Title, s.Description, questionsJSON, targetingJSON,
		s.EstimatedTimeSeconds, s.Version, s.Status, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert survey: %w", err)
	}
	return nil
}

func (r *SurveyRepo) Get(ctx context.Context, id string) (*core.Survey, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = ?`, id)
	s, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}
	return s, nil
}

// ListByAdmin returns the admin's surveys, newest first. An empty status
// means no status filter.
func (r *SurveyRepo) ListByAdmin(ctx context.Context, adminID string, status core.SurveyStatus) ([]core.Survey, error) {
	query := `SELECT ` + surveyColumns + ` FROM surveys WHERE admin_id = ?`
	args := []any{adminID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query surveys: %w", err)
	}
	defer rows.Close()

	var surveys []core.Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, *s)
	}
	return surveys, rows.Err()
}

// Update rewrites the mutable fields of a draft and bumps its version. The
// status guard lives in the statement so concurrent launches cannot slip an
// edit into an active survey.
func (r *SurveyRepo) Update(ctx context.Context, s *core.Survey) error {
	questionsJSON, err := jsonText(s.Questions, "[]")
	if err != nil {
		return err
	}
	targetingJSON, err := nullJSONText(s.TargetingRules)
	if err != nil {
		return err
	}

	query := `UPDATE surveys
		SET title = ?, description = ?, questions = ?, targeting_rules = ?,
			estimated_time_seconds = ?, version = version + 1
		WHERE id = ? AND status = 'draft'`
	res, err := r.db.ExecContext(ctx, query,
		s.Title, s.Description, questionsJSON, targetingJSON, s.EstimatedTimeSeconds, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update survey: %w", err)
	}
	return r.checkMutated(ctx, res, s.ID)
}

// SetQuality persists design agent scores onto a survey the admin owns.
// A missing or foreign survey is not an error; the caller still has the
// check result.
func (r *SurveyRepo) SetQuality(ctx context.Context, id, adminID string, score, predictedRate float64, estimatedSeconds int) error {
	query := `UPDATE surveys
		SET quality_score = ?, predicted_completion_rate = ?, estimated_time_seconds = ?
		WHERE id = ? AND admin_id = ?`
	_, err := r.db.ExecContext(ctx, query, score, predictedRate, estimatedSeconds, id, adminID)
	if err != nil {
		return fmt.Errorf("failed to store quality score: %w", err)
	}
	return nil
}

func (r *SurveyRepo) Launch(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE surveys SET status = 'active', launched_at = ? WHERE id = ? AND status = 'draft'`,
		at, id)
	if err != nil {
		return fmt.Errorf("failed to launch survey: %w", err)
	}
	return r.checkMutated(ctx, res, id)
}

func (r *SurveyRepo) Close(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE surveys SET status = 'closed', closed_at = ? WHERE id = ? AND status = 'active'`,
		at, id)
	if err != nil {
		return fmt.Errorf("failed to close survey: %w", err)
	}
	return r.checkMutated(ctx, res, id)
}

func (r *SurveyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM surveys WHERE id = ? AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	return r.checkMutated(ctx, res, id)
}

// ListExpired returns active surveys launched before the cutoff.
func (r *SurveyRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]core.Survey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE status = 'active' AND launched_at < ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired surveys: %w", err)
	}
	defer rows.Close()

	var surveys []core.Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, *s)
	}
	return surveys, rows.Err()
}

// checkMutated distinguishes a missing survey from one in the wrong state
// after a guarded UPDATE or DELETE touched no rows.
func (r *SurveyRepo) checkMutated(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM surveys WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check survey state: %w", err)
	}
	return core.ErrSurveyNotEditable
}

func scanSurvey(row interface{ Scan(dest ...any) error }) (*core.Survey, error) {
	var (
		s             core.Survey
		description   sql.NullString
		questionsStr  sql.NullString
		targetingStr  sql.NullString
		qualityScore  sql.NullFloat64
		predictedRate sql.NullFloat64
		launchedAt    sql.NullTime
		closedAt      sql.NullTime
	)
	err := row.Scan(&s.ID, &s.AdminID, &s.Title, &description, &questionsStr, &targetingStr,
		&s.EstimatedTimeSeconds, &qualityScore, &predictedRate, &s.Version, &s.Status,
		&s.CreatedAt, &launchedAt, &closedAt)
	if err != nil {
		return nil, err
	}

	s.Description = description.String
	if err := scanJSON(questionsStr, &s.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := scanJSON(targetingStr, &s.TargetingRules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal targeting rules: %w", err)
	}
	if qualityScore.Valid {
		s.QualityScore = &qualityScore.Float64
	}
	if predictedRate.Valid {
		s.PredictedCompletionRate = &predictedRate.Float64
	}
	if launchedAt.Valid {
		t := launchedAt.Time
		s.LaunchedAt = &t
	}
	if closedAt.Valid {
		t := closedAt.Time
		s.ClosedAt = &t
	}
	return &s, nil
}
