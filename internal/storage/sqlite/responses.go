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

const responseColumns = `id, survey_id, doctor_id, answers, is_complete, device_type,
	time_spent_seconds, doctor_specialty, started_at, completed_at`

type ResponseRepo struct {
	db *sql.DB
}

func NewResponseRepo(db *sql.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// Upsert stores a doctor's answers for a survey. A resubmission by the same
// doctor replaces the answers and flags wholesale; started_at is kept from
// the first save and completed_at is set once and never cleared. The caller's
// resp is filled in with the stored ID and timestamps.
func (r *ResponseRepo) Upsert(ctx context.Context, resp *core.Response) error {
	answersJSON, err := jsonText(resp.Answers, "{}")
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		existingID  string
		startedAt   time.Time
		completedAt sql.NullTime
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, started_at, completed_at FROM responses WHERE survey_id = ? AND doctor_id = ?`,
		resp.SurveyID, resp.DoctorID).Scan(&existingID, &startedAt, &completedAt)

	now := time.Now().UTC()
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if resp.ID == "" {
			resp.ID = uuid.NewString()
		}
		resp.StartedAt = now
		if resp.IsComplete {
			resp.CompletedAt = &now
		}
		query := `INSERT INTO responses
			(id, survey_id, doctor_id, answers, is_complete, device_type, time_spent_seconds, doctor_specialty, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err = tx.ExecContext(ctx, query,
			resp.ID, resp.SurveyID, resp.DoctorID, answersJSON, resp.IsComplete,
			resp.DeviceType, resp.TimeSpentSeconds, resp.DoctorSpecialty,
			resp.StartedAt, nullTime(resp.CompletedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert response: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up response: %w", err)
	default:
		resp.ID = existingID
		resp.StartedAt = startedAt
		if completedAt.Valid {
			t := completedAt.Time
			resp.CompletedAt = &t
		} else if resp.IsComplete {
			resp.CompletedAt = &now
		}
		query := `UPDATE responses
			SET answers = ?, is_complete = ?, device_type = ?, time_spent_seconds = ?,
				doctor_specialty = ?, completed_at = ?
			WHERE id = ?`
		_, err = tx.ExecContext(ctx, query,
			answersJSON, resp.IsComplete, resp.DeviceType, resp.TimeSpentSeconds,
			resp.DoctorSpecialty, nullTime(resp.CompletedAt), resp.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update response: %w", err)
		}
	}

	return tx.Commit()
}

func (r *ResponseRepo) Get(ctx context.Context, id string) (*core.Response, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM responses WHERE id = ?`, id)
	resp, err := scanResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	return resp, nil
}

// GetByDoctor returns the doctor's response for a survey, or ErrNotFound.
func (r *ResponseRepo) GetByDoctor(ctx context.Context, surveyID, doctorID string) (*core.Response, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE survey_id = ? AND doctor_id = ?`,
		surveyID, doctorID)
	resp, err := scanResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	return resp, nil
}

func (r *ResponseRepo) ListBySurvey(ctx context.Context, surveyID string, completeOnly bool) ([]core.Response, error) {
	query := `SELECT ` + responseColumns + ` FROM responses WHERE survey_id = ?`
	if completeOnly {
		query += ` AND is_complete = 1`
	}
	query += ` ORDER BY started_at`

	rows, err := r.db.QueryContext(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var responses []core.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, *resp)
	}
	return responses, rows.Err()
}

func scanResponse(row interface{ Scan(dest ...any) error }) (*core.Response, error) {
	var (
		resp        core.Response
		answersStr  sql.NullString
		deviceType  sql.NullString
		specialty   sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(&resp.ID, &resp.SurveyID, &resp.DoctorID, &answersStr, &resp.IsComplete,
		&deviceType, &resp.TimeSpentSeconds, &specialty, &resp.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	resp.DeviceType = deviceType.String
	resp.DoctorSpecialty = specialty.String
	if err := scanJSON(answersStr, &resp.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		resp.CompletedAt = &t
	}
	return &resp, nil
}
