package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/state"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

const (
	avgSecondsPerQuestion = 18.0

	clarificationTTL = 24 * time.Hour
	sessionTTL       = 7 * 24 * time.Hour
)

const attemptSystemPrompt = `You are a helpful assistant inside a survey app for busy doctors.
Your role is to help doctors UNDERSTAND survey questions — not to answer questions for them.

CRITICAL RULES:
1. NEVER change the meaning of the original question
2. NEVER provide medical advice, diagnosis, or clinical recommendations
3. NEVER tell the doctor what answer to choose
4. Keep clarifications SHORT (2-3 sentences max)
5. Use simple, plain English — no jargon
6. If the question mentions a specific term (NPS, Likert, etc.), define it briefly
7. Provide 1-2 anonymized example responses to guide format, never content

FORBIDDEN RESPONSES:
- "Based on your symptoms..." (medical advice)
- "You should select option X because..." (influencing answer)
- "This question is poorly worded..." (criticizing the survey)

GOOD RESPONSE PATTERN:
Question: "What is your NPS for the current EHR workflow?"
Clarification: "This asks how likely you are to recommend the current EHR workflow to a colleague,
on a scale of 0 (not at all) to 10 (extremely likely). Focus on your overall experience,
not any single feature."
Examples: ["I'd give it a 7 because it handles scheduling well", "I'd rate it 4 due to frequent slowdowns"]
`

const clarificationSchema = `{
	"type": "object",
	"properties": {
		"clarification": {
			"type": "string",
			"description": "Clear explanation of what the question is asking (2-3 sentences max)"
		},
		"examples": {
			"type": "array",
			"items": {"type": "string"},
			"description": "1-2 anonymized example responses to help the doctor understand"
		},
		"did_change_meaning": {
			"type": "boolean",
			"description": "Safety flag – MUST always be false. Clarification must not change question intent."
		}
	},
	"required": ["clarification", "did_change_meaning"]
}`

// AttemptAgent is the doctor-facing agent: it explains confusing questions
// without changing their meaning, tracks progress, writes completion
// summaries, and keeps resumable session state.
type AttemptAgent struct {
	completer core.Completer
	store     core.StateStore
}

func NewAttemptAgent(completer core.Completer, store core.StateStore) *AttemptAgent {
	return &AttemptAgent{completer: completer, store: store}
}

type clarificationPayload struct {
	Clarification    string   `json:"clarification"`
	Examples         []string `json:"examples"`
	DidChangeMeaning bool     `json:"did_change_meaning"`
}

// Clarify explains what a question is asking in plain English. Identical
// question texts share one cached answer for a day, so popular surveys cost
// one provider call per confusing question rather than one per doctor.
func (a *AttemptAgent) Clarify(ctx context.Context, sessionID string, question core.Question, doctorCtx *core.DoctorContext) (*core.ClarificationResult, int, error) {
	cacheKey := state.ClarificationKey(question.Text)

	if data, ok, err := a.store.Get(ctx, cacheKey); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("clarification cache read failed")
	} else if ok {
		var cached core.ClarificationResult
		if err := json.Unmarshal(data, &cached); err == nil {
			log.FromCtx(ctx).Info().Str("question_id", question.ID).Msg("clarification cache hit")
			return &cached, 0, nil
		}
	}

	specialty, experience := "General", "unknown"
	if doctorCtx != nil {
		if doctorCtx.Specialty != "" {
			specialty = doctorCtx.Specialty
		}
		if doctorCtx.YearsExperience > 0 {
			experience = strconv.Itoa(doctorCtx.YearsExperience)
		}
	}

	questionJSON, err := json.MarshalIndent(question, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal question: %w", err)
	}

	user := fmt.Sprintf(`A doctor needs help understanding this survey question.

Doctor context: %s specialty, %s years experience

Question to clarify:
%s

Provide a clarification using the clarification_result function.
Remember: explain the question, do NOT suggest an answer.`, specialty, experience, questionJSON)

	res, err := a.completer.Complete(ctx, core.CompletionRequest{
		System:      attemptSystemPrompt,
		User:        user,
		Temperature: 0.3,
		Tool: &core.ToolSpec{
			Name:        "clarification_result",
			Description: "Returns a plain-English clarification for a survey question",
			Schema:      json.RawMessage(clarificationSchema),
		},
	})
	if err != nil {
		return nil, 0, err
	}

	var payload clarificationPayload
	if err := json.Unmarshal(res.ToolArgs, &payload); err != nil {
		return nil, 0, fmt.Errorf("%w: clarification payload: %v", core.ErrMalformedResponse, err)
	}
	if payload.DidChangeMeaning {
		log.FromCtx(ctx).Warn().
			Str("question_id", question.ID).
			Msg("provider reported a meaning change, pinning flag to false")
	}

	result := &core.ClarificationResult{
		QuestionID:       question.ID,
		Clarification:    payload.Clarification,
		Examples:         payload.Examples,
		DidChangeMeaning: false,
	}

	if data, err := json.Marshal(result); err == nil {
		if err := a.store.SetWithTTL(ctx, cacheKey, data, clarificationTTL); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("clarification cache write failed")
		}
	}

	log.FromCtx(ctx).Info().
		Str("session_id", sessionID).
		Str("question_id", question.ID).
		Msg("question clarified")
	return result, res.TokensUsed, nil
}

// Progress computes completion state and a tiered motivational message.
// Callers validate total >= 1 and 0 <= answered <= total.
func (a *AttemptAgent) Progress(total, answered int) *core.ProgressMessage {
	remaining := total - answered
	percent := math.Round(float64(answered)/float64(total)*1000) / 10

	var message string
	switch {
	case percent == 0:
		message = fmt.Sprintf("This survey takes about %d min. Let's go!", int(float64(total)*avgSecondsPerQuestion/60))
	case percent < 33:
		message = "Great start! Keep going."
	case percent < 66:
		message = fmt.Sprintf("Halfway there — only %d questions left!", remaining)
	case percent < 90:
		message = "Almost done! Your input makes a difference."
	default:
		plural := ""
		if remaining > 1 {
			plural = "s"
		}
		message = fmt.Sprintf("Just %d more question%s!", remaining, plural)
	}

	return &core.ProgressMessage{
		QuestionsTotal:            total,
		QuestionsAnswered:         answered,
		EstimatedSecondsRemaining: int(float64(remaining) * avgSecondsPerQuestion),
		MotivationalMessage:       message,
		PercentComplete:           percent,
	}
}

// CompletionSummary writes a short personalized thank-you after a doctor
// finishes a survey.
func (a *AttemptAgent) CompletionSummary(ctx context.Context, responses []map[string]any, surveyTitle string, totalResponses int) (*core.CompletionSummary, int, error) {
	responsesJSON, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal responses: %w", err)
	}

	user := fmt.Sprintf(`A doctor just completed a survey. Generate a brief, warm thank-you message.

Survey: %s
Total responses from all doctors so far: %d
This doctor's responses:
%s

Return JSON with:
{
  "thank_you_message": "Warm 1-sentence thank you personalized to the survey topic",
  "aggregate_insight": "1 sentence about what collective responses are showing (make it feel impactful)",
  "next_steps": "1 sentence on what happens with this data"
}

Rules:
- No medical advice
- Keep it under 3 sentences total
- Make the doctor feel their input mattered`, surveyTitle, totalResponses, responsesJSON)

	res, err := a.completer.Complete(ctx, core.CompletionRequest{
		System:      attemptSystemPrompt,
		User:        user,
		JSONOnly:    true,
		Temperature: 0.6,
	})
	if err != nil {
		return nil, 0, err
	}

	var summary core.CompletionSummary
	if err := json.Unmarshal([]byte(stripFences(res.Text)), &summary); err != nil {
		return nil, 0, fmt.Errorf("%w: completion summary payload: %v", core.ErrMalformedResponse, err)
	}
	return &summary, res.TokensUsed, nil
}

// SaveProgress merges answers into the session, adding new keys and
// overwriting existing ones, then refreshes the week-long expiry.
func (a *AttemptAgent) SaveProgress(ctx context.Context, sessionID, surveyID string, answers map[string]any) error {
	key := state.SessionKey(sessionID)

	session := core.SessionState{Answers: map[string]any{}}
	if data, ok, err := a.store.Get(ctx, key); err != nil {
		return fmt.Errorf("load session: %w", err)
	} else if ok {
		if err := json.Unmarshal(data, &session); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("discarding corrupt session state")
			session = core.SessionState{Answers: map[string]any{}}
		}
		if session.Answers == nil {
			session.Answers = map[string]any{}
		}
	}

	session.SurveyID = surveyID
	for k, v := range answers {
		session.Answers[k] = v
	}
	session.LastSaved = time.Now().Unix()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := a.store.SetWithTTL(ctx, key, data, sessionTTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	log.FromCtx(ctx).Info().
		Str("session_id", sessionID).
		Int("answers_count", len(session.Answers)).
		Msg("partial progress saved")
	return nil
}

// RestoreSession loads a doctor's in-progress answers. found is false when
// the session never existed or already expired.
func (a *AttemptAgent) RestoreSession(ctx context.Context, sessionID string) (*core.SessionState, bool, error) {
	data, ok, err := a.store.Get(ctx, state.SessionKey(sessionID))
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var session core.SessionState
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, fmt.Errorf("decode session: %w", err)
	}

	log.FromCtx(ctx).Info().
		Str("session_id", sessionID).
		Int("answers_count", len(session.Answers)).
		Msg("session restored")
	return &session, true, nil
}
