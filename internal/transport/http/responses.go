package http

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/tasks"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

const reminderDelay = 24 * time.Hour

type answerItem struct {
	QuestionID string `json:"question_id"`
	Value      any    `json:"value"`
}

type responseSubmitRequest struct {
	SurveyID         string       `json:"survey_id"`
	Answers          []answerItem `json:"answers"`
	IsComplete       bool         `json:"is_complete"`
	DeviceType       string       `json:"device_type"`
	TimeSpentSeconds int          `json:"time_spent_seconds"`
	// DoctorSpecialty feeds segment analysis; the platform keeps no doctor
	// profile of its own.
	DoctorSpecialty string `json:"doctor_specialty"`
}

// responseView is the doctor-facing shape: submission status only, never the
// stored answers.
type responseView struct {
	ID          string     `json:"id"`
	SurveyID    string     `json:"survey_id"`
	IsComplete  bool       `json:"is_complete"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func newResponseView(resp *core.Response) responseView {
	return responseView{
		ID:          resp.ID,
		SurveyID:    resp.SurveyID,
		IsComplete:  resp.IsComplete,
		StartedAt:   resp.StartedAt,
		CompletedAt: resp.CompletedAt,
	}
}

// submitResponse takes partial or final answers. Open text is redacted
// before it is stored, the save lands on the activity trail, and a partial
// save schedules the single completion reminder.
func (h *Handler) submitResponse(w http.ResponseWriter, r *http.Request) {
	var req responseSubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	doctor := doctorID(ctx)

	survey, err := h.surveys.Get(ctx, req.SurveyID)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Survey not found")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if survey.Status != core.SurveyActive {
		writeError(w, http.StatusConflict, "Survey is not accepting responses")
		return
	}

	answers := make(map[string]any, len(req.Answers))
	for _, a := range req.Answers {
		value := a.Value
		if s, ok := value.(string); ok {
			value = h.moderator.Redact(ctx, s)
		}
		answers[a.QuestionID] = value
	}

	resp := &core.Response{
		SurveyID:         req.SurveyID,
		DoctorID:         doctor,
		Answers:          answers,
		IsComplete:       req.IsComplete,
		DeviceType:       req.DeviceType,
		TimeSpentSeconds: req.TimeSpentSeconds,
		DoctorSpecialty:  req.DoctorSpecialty,
	}
	if err := h.responses.Upsert(ctx, resp); err != nil {
		writeDomainError(w, r, err)
		return
	}

	eventType := core.EventSurveyPartialSave
	if req.IsComplete {
		eventType = core.EventSurveyCompleted
	}
	err = h.events.Append(ctx, &core.SurveyEvent{
		SurveyID:  req.SurveyID,
		DoctorID:  doctor,
		EventType: eventType,
		Metadata:  map[string]any{"is_complete": req.IsComplete, "answers_count": len(answers)},
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger := log.FromCtx(ctx).With().
		Str("survey_id", req.SurveyID).
		Bool("is_complete", req.IsComplete).
		Logger()

	if !req.IsComplete {
		// The response is already saved; a broker hiccup costs the nudge,
		// not the answers.
		err := h.queue.EnqueueIn(ctx, tasks.TaskCompletionReminder,
			tasks.ReminderPayload{SurveyID: req.SurveyID, DoctorID: doctor}, reminderDelay)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to schedule completion reminder")
		}
	}

	logger.Info().Msg("response submitted")
	writeJSON(w, http.StatusCreated, newResponseView(resp))
}

func (h *Handler) getResponse(w http.ResponseWriter, r *http.Request) {
	resp, err := h.responses.Get(r.Context(), chi.URLParam(r, "responseID"))
	if errors.Is(err, core.ErrNotFound) || (err == nil && resp.DoctorID != doctorID(r.Context())) {
		writeError(w, http.StatusNotFound, "Response not found")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResponseView(resp))
}

// listSurveyResponses is the admin's view over a survey's submissions. The
// counts describe the returned set, so complete_only=true reports a 100%
// completion rate by construction.
func (h *Handler) listSurveyResponses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	survey, err := h.surveys.Get(ctx, chi.URLParam(r, "surveyID"))
	if errors.Is(err, core.ErrNotFound) || (err == nil && survey.AdminID != adminID(ctx)) {
		writeError(w, http.StatusNotFound, "Survey not found")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	completeOnly := r.URL.Query().Get("complete_only") == "true"
	rows, err := h.responses.ListBySurvey(ctx, survey.ID, completeOnly)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	complete := 0
	views := make([]map[string]any, 0, len(rows))
	for i := range rows {
		if rows[i].IsComplete {
			complete++
		}
		views = append(views, map[string]any{
			"id":                 rows[i].ID,
			"is_complete":        rows[i].IsComplete,
			"started_at":         rows[i].StartedAt,
			"completed_at":       rows[i].CompletedAt,
			"time_spent_seconds": rows[i].TimeSpentSeconds,
			"device_type":        rows[i].DeviceType,
		})
	}

	rate := 0.0
	if len(rows) > 0 {
		rate = math.Round(float64(complete)/float64(len(rows))*1000) / 10
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"survey_id":       survey.ID,
		"total":           len(rows),
		"complete":        complete,
		"completion_rate": rate,
		"responses":       views,
	})
}
