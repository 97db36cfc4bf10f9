package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// testDB opens a migrated database in a throwaway directory. Tests share the
// process-global goose state, so none of them may run in parallel.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedSurvey(t *testing.T, db *sql.DB, adminID string) *core.Survey {
	t.Helper()
	s := &core.Survey{
		AdminID: adminID,
		Title:   "EHR Satisfaction",
		Questions: []core.Question{
			{ID: "q1", Text: "How satisfied are you with your EHR?", Type: core.QuestionLikert, Required: true},
			{ID: "q2", Text: "What would you change about it?", Type: core.QuestionText},
		},
	}
	if err := NewSurveyRepo(db).Create(context.Background(), s); err != nil {
		t.Fatalf("Failed to seed survey: %v", err)
	}
	return s
}

func TestMigrations(t *testing.T) {
	db := testDB(t)

	tables := []string{"surveys", "responses", "survey_insights", "survey_events", "agent_interaction_logs"}
	for _, table := range tables {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}
}
