package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// AuditRepo is the durable core.AuditSink. Entries are append-only; nothing
// in the application updates or deletes them.
type AuditRepo struct {
	db *sql.DB
}

var _ core.AuditSink = (*AuditRepo)(nil)

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, entry core.InteractionLog) error {
	inputJSON, err := nullJSONText(entry.InputContext)
	if err != nil {
		return err
	}
	outputJSON, err := nullJSONText(entry.OutputResponse)
	if err != nil {
		return err
	}

	query := `INSERT INTO agent_interaction_logs
		(agent_type, user_id, input_context, output_response, tokens_used, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		entry.AgentType, nullString(entry.UserID), inputJSON, outputJSON,
		entry.TokensUsed, entry.LatencyMS, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert interaction log: %w", err)
	}
	return nil
}

// List returns recent entries, newest first. An empty agentType means all
// agents.
func (r *AuditRepo) List(ctx context.Context, agentType string, limit int) ([]core.InteractionLog, error) {
	query := `SELECT id, agent_type, user_id, input_context, output_response, tokens_used, latency_ms, created_at
		FROM agent_interaction_logs`
	args := []any{}
	if agentType != "" {
		query += ` WHERE agent_type = ?`
		args = append(args, agentType)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction logs: %w", err)
	}
	defer rows.Close()

	var entries []core.InteractionLog
	for rows.Next() {
		var (
			entry     core.InteractionLog
			userID    sql.NullString
			inputStr  sql.NullString
			outputStr sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.AgentType, &userID, &inputStr, &outputStr,
			&entry.TokensUsed, &entry.LatencyMS, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction log: %w", err)
		}
		entry.UserID = userID.String
		if err := scanJSON(inputStr, &entry.InputContext); err != nil {
			return nil, fmt.Errorf("failed to unmarshal input context: %w", err)
		}
		if err := scanJSON(outputStr, &entry.OutputResponse); err != nil {
			return nil, fmt.Errorf("failed to unmarshal output response: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
