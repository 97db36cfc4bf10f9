package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// jsonText encodes v for a NOT NULL TEXT column. A nil map or slice becomes
// the given empty literal so the column stays parseable.
func jsonText(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	s := string(b)
	if s == "null" {
		return empty, nil
	}
	return s, nil
}

// nullJSONText encodes v for a nullable TEXT column; nil becomes SQL NULL.
func nullJSONText(v any) (sql.NullString, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	s := string(b)
	if s == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: s, Valid: true}, nil
}

// scanJSON decodes a JSON TEXT column into dst, tolerating NULL and the
// literal "null" left by older writers.
func scanJSON(s sql.NullString, dst any) error {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), dst)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
