package core

import "time"

const (
	AppName      = "Survey Copilot"
	AppUserAgent = "survey-copilot/0.1"
	AppVersion   = "0.1.0"
)

// Agent kinds as recorded in the interaction log.
const (
	AgentDesign  = "design"
	AgentAttempt = "attempt"
	AgentInsight = "insight"
)

// Event types recorded on the survey activity trail.
const (
	EventSurveyCompleted        = "survey_completed"
	EventSurveyPartialSave      = "survey_partial_save"
	EventClarificationRequested = "clarification_requested"
	EventReminderSent           = "reminder_sent"
)

type QuestionType string

const (
	QuestionMCQ     QuestionType = "mcq"
	QuestionLikert  QuestionType = "likert"
	QuestionText    QuestionType = "text"
	QuestionBoolean QuestionType = "boolean"
	QuestionRanking QuestionType = "ranking"
)

type SurveyStatus string

const (
	SurveyDraft  SurveyStatus = "draft"
	SurveyActive SurveyStatus = "active"
	SurveyClosed SurveyStatus = "closed"
)

type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Required bool         `json:"required"`
	Hint     string       `json:"hint,omitempty"`
}

type Survey struct {
	ID                      string         `json:"id"`
	AdminID                 string         `json:"admin_id"`
	Title                   string         `json:"title"`
	Description             string         `json:"description,omitempty"`
	Questions               []Question     `json:"questions"`
	TargetingRules          map[string]any `json:"targeting_rules,omitempty"`
	EstimatedTimeSeconds    int            `json:"estimated_time_seconds,omitempty"`
	QualityScore            *float64       `json:"quality_score,omitempty"`
	PredictedCompletionRate *float64       `json:"predicted_completion_rate,omitempty"`
	Status                  SurveyStatus   `json:"status"`
	Version                 int            `json:"version"`
	CreatedAt               time.Time      `json:"created_at"`
	LaunchedAt              *time.Time     `json:"launched_at,omitempty"`
	ClosedAt                *time.Time     `json:"closed_at,omitempty"`
}

// Response holds a doctor's answers for one survey. Answers maps question ID
// to the submitted value (string, number, bool or list depending on the
// question type). DoctorSpecialty is denormalized for segment analysis and
// may be empty.
type Response struct {
	ID               string         `json:"id"`
	SurveyID         string         `json:"survey_id"`
	DoctorID         string         `json:"doctor_id"`
	Answers          map[string]any `json:"answers"`
	IsComplete       bool           `json:"is_complete"`
	DeviceType       string         `json:"device_type,omitempty"`
	TimeSpentSeconds int            `json:"time_spent_seconds,omitempty"`
	DoctorSpecialty  string         `json:"doctor_specialty,omitempty"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

// SessionState is the resumable in-progress survey kept in the state store.
// Saves merge the answers map; unrelated fields are preserved.
type SessionState struct {
	SurveyID  string         `json:"survey_id"`
	Answers   map[string]any `json:"answers"`
	LastSaved int64          `json:"last_saved"`
}

// DoctorContext is optional caller metadata passed to clarification calls.
type DoctorContext struct {
	Specialty       string `json:"specialty,omitempty"`
	YearsExperience int    `json:"years_experience,omitempty"`
}

// Violation describes one policy finding from input validation.
type Violation struct {
	QuestionID     string `json:"question_id"`
	QuestionText   string `json:"question_text"`
	Violation      string `json:"violation"`
	Recommendation string `json:"recommendation"`
}

// InteractionLog is the append-only audit record written once per
// orchestrated agent call.
type InteractionLog struct {
	ID             int64          `json:"id"`
	AgentType      string         `json:"agent_type"`
	UserID         string         `json:"user_id,omitempty"`
	InputContext   map[string]any `json:"input_context"`
	OutputResponse map[string]any `json:"output_response"`
	TokensUsed     int            `json:"tokens_used,omitempty"`
	LatencyMS      int            `json:"latency_ms"`
	CreatedAt      time.Time      `json:"created_at"`
}

type SurveyEvent struct {
	ID         int64          `json:"id"`
	SurveyID   string         `json:"survey_id"`
	DoctorID   string         `json:"doctor_id,omitempty"`
	EventType  string         `json:"event_type"`
	QuestionID string         `json:"question_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// StoredInsight is a persisted InsightResult for a closed survey.
type StoredInsight struct {
	ID          int64         `json:"id"`
	SurveyID    string        `json:"survey_id"`
	Result      InsightResult `json:"result"`
	GeneratedAt time.Time     `json:"generated_at"`
}
