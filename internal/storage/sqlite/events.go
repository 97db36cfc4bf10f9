package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Append(ctx context.Context, ev *core.SurveyEvent) error {
	metadataJSON, err := nullJSONText(ev.Metadata)
	if err != nil {
		return err
	}
	ev.CreatedAt = time.Now().UTC()

	query := `INSERT INTO survey_events (survey_id, doctor_id, event_type, question_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		ev.SurveyID, nullString(ev.DoctorID), ev.EventType, nullString(ev.QuestionID),
		metadataJSON, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	ev.ID, err = res.LastInsertId()
	return err
}

// HasEvent reports whether an event of this type was already recorded for
// the doctor on this survey. Reminder delivery keys off it to stay
// idempotent under task redelivery.
func (r *EventRepo) HasEvent(ctx context.Context, surveyID, doctorID, eventType string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM survey_events WHERE survey_id = ? AND doctor_id = ? AND event_type = ? LIMIT 1`,
		surveyID, doctorID, eventType).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check event: %w", err)
	}
	return true, nil
}

func (r *EventRepo) ListBySurvey(ctx context.Context, surveyID string, limit int) ([]core.SurveyEvent, error) {
	query := `SELECT id, survey_id, doctor_id, event_type, question_id, metadata, created_at
		FROM survey_events WHERE survey_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, surveyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []core.SurveyEvent
	for rows.Next() {
		var (
			ev          core.SurveyEvent
			doctorID    sql.NullString
			questionID  sql.NullString
			metadataStr sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.SurveyID, &doctorID, &ev.EventType, &questionID, &metadataStr, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.DoctorID = doctorID.String
		ev.QuestionID = questionID.String
		if err := scanJSON(metadataStr, &ev.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event metadata: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
