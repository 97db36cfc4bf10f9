package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/tasks"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// estimateSecondsPerQuestion is the rough answering pace used for the time
// estimate until a quality check replaces it.
const estimateSecondsPerQuestion = 18

// surveyView is the admin-facing shape of a survey. Ownership and closing
// timestamps stay internal.
type surveyView struct {
	ID                      string            `json:"id"`
	Title                   string            `json:"title"`
	Description             string            `json:"description"`
	Questions               []core.Question   `json:"questions"`
	TargetingRules          map[string]any    `json:"targeting_rules"`
	EstimatedTimeSeconds    int               `json:"estimated_time_seconds"`
	QualityScore            *float64          `json:"quality_score"`
	PredictedCompletionRate *float64          `json:"predicted_completion_rate"`
	Status                  core.SurveyStatus `json:"status"`
	Version                 int               `json:"version"`
	CreatedAt               time.Time         `json:"created_at"`
	LaunchedAt              *time.Time        `json:"launched_at"`
}

func newSurveyView(s *core.Survey) surveyView {
	return surveyView{
		ID:                      s.ID,
		Title:                   s.Title,
		Description:             s.Description,
		Questions:               s.Questions,
		TargetingRules:          s.TargetingRules,
		EstimatedTimeSeconds:    s.EstimatedTimeSeconds,
		QualityScore:            s.QualityScore,
		PredictedCompletionRate: s.PredictedCompletionRate,
		Status:                  s.Status,
		Version:                 s.Version,
		CreatedAt:               s.CreatedAt,
		LaunchedAt:              s.LaunchedAt,
	}
}

type surveyCreateRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Questions      []core.Question `json:"questions"`
	TargetingRules map[string]any  `json:"targeting_rules"`
}

func (h *Handler) createSurvey(w http.ResponseWriter, r *http.Request) {
	var req surveyCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || len(req.Questions) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "title and questions are required")
		return
	}

	ctx := r.Context()
	questions := h.sanitizeQuestions(req.Questions)
	if violations := h.moderator.ValidateQuestions(ctx, questions); len(violations) > 0 {
		writeDomainError(w, r, core.NewValidationError(violations))
		return
	}

	survey := &core.Survey{
		AdminID:              adminID(ctx),
		Title:                h.sanitizer.Sanitize(req.Title),
		Description:          h.sanitizer.Sanitize(req.Description),
		Questions:            questions,
		TargetingRules:       req.TargetingRules,
		EstimatedTimeSeconds: len(questions) * estimateSecondsPerQuestion,
	}
	if err := h.surveys.Create(ctx, survey); err != nil {
		writeDomainError(w, r, err)
		return
	}

	log.FromCtx(ctx).Info().Str("survey_id", survey.ID).Msg("survey created")
	writeJSON(w, http.StatusCreated, newSurveyView(survey))
}

func (h *Handler) listSurveys(w http.ResponseWriter, r *http.Request) {
	status := core.SurveyStatus(r.URL.Query().Get("status"))

	surveys, err := h.surveys.ListByAdmin(r.Context(), adminID(r.Context()), status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]surveyView, 0, len(surveys))
	for i := range surveys {
		views = append(views, newSurveyView(&surveys[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getSurvey(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadAdminSurvey(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSurveyView(survey))
}

type surveyUpdateRequest struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	Questions      []core.Question `json:"questions"`
	TargetingRules map[string]any  `json:"targeting_rules"`
}

func (h *Handler) updateSurvey(w http.ResponseWriter, r *http.Request) {
	var req surveyUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	survey, ok := h.loadAdminSurvey(w, r)
	if !ok {
		return
	}
	if survey.Status != core.SurveyDraft {
		writeError(w, http.StatusConflict, "Only draft surveys can be edited")
		return
	}

	ctx := r.Context()
	if req.Title != nil {
		survey.Title = h.sanitizer.Sanitize(*req.Title)
	}
	if req.Description != nil {
		survey.Description = h.sanitizer.Sanitize(*req.Description)
	}
	if req.Questions != nil {
		questions := h.sanitizeQuestions(req.Questions)
		if violations := h.moderator.ValidateQuestions(ctx, questions); len(violations) > 0 {
			writeDomainError(w, r, core.NewValidationError(violations))
			return
		}
		survey.Questions = questions
		survey.EstimatedTimeSeconds = len(questions) * estimateSecondsPerQuestion
	}
	if req.TargetingRules != nil {
		survey.TargetingRules = req.TargetingRules
	}

	if err := h.surveys.Update(ctx, survey); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.respondWithSurvey(w, r, survey.ID)
}

func (h *Handler) launchSurvey(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadAdminSurvey(w, r)
	if !ok {
		return
	}
	if survey.Status != core.SurveyDraft {
		writeError(w, http.StatusConflict, "Only draft surveys can be launched")
		return
	}
	if survey.QualityScore == nil || *survey.QualityScore == 0 {
		writeError(w, http.StatusUnprocessableEntity, "Run AI quality check before launching (/agents/quality-check)")
		return
	}

	ctx := r.Context()
	if err := h.surveys.Launch(ctx, survey.ID, time.Now().UTC()); err != nil {
		writeDomainError(w, r, err)
		return
	}

	log.FromCtx(ctx).Info().Str("survey_id", survey.ID).Msg("survey launched")
	h.respondWithSurvey(w, r, survey.ID)
}

func (h *Handler) closeSurvey(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadAdminSurvey(w, r)
	if !ok {
		return
	}
	if survey.Status != core.SurveyActive {
		writeError(w, http.StatusConflict, "Survey is not active")
		return
	}

	ctx := r.Context()
	if err := h.surveys.Close(ctx, survey.ID, time.Now().UTC()); err != nil {
		writeDomainError(w, r, err)
		return
	}

	err := h.queue.Enqueue(ctx, tasks.TaskGenerateInsights, tasks.InsightsPayload{SurveyID: survey.ID})
	if err != nil {
		// The hourly sweep will not retry a survey that is already closed;
		// the manual trigger endpoint remains the fallback.
		log.FromCtx(ctx).Error().Err(err).Str("survey_id", survey.ID).
			Msg("failed to enqueue insights for closed survey")
	} else {
		log.FromCtx(ctx).Info().Str("survey_id", survey.ID).Msg("survey closed, insights queued")
	}

	h.respondWithSurvey(w, r, survey.ID)
}

func (h *Handler) deleteSurvey(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadAdminSurvey(w, r)
	if !ok {
		return
	}
	if survey.Status != core.SurveyDraft {
		writeError(w, http.StatusConflict, "Only draft surveys can be deleted")
		return
	}

	if err := h.surveys.Delete(r.Context(), survey.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadAdminSurvey resolves the path survey and enforces ownership. A foreign
// survey is a 403, an unknown one a 404.
func (h *Handler) loadAdminSurvey(w http.ResponseWriter, r *http.Request) (*core.Survey, bool) {
	survey, err := h.surveys.Get(r.Context(), chi.URLParam(r, "surveyID"))
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Survey not found")
		return nil, false
	}
	if err != nil {
		writeDomainError(w, r, err)
		return nil, false
	}
	if survey.AdminID != adminID(r.Context()) {
		writeError(w, http.StatusForbidden, "Not your survey")
		return nil, false
	}
	return survey, true
}

// respondWithSurvey re-reads the row so the view reflects what the guarded
// update actually wrote, version bump included.
func (h *Handler) respondWithSurvey(w http.ResponseWriter, r *http.Request, id string) {
	survey, err := h.surveys.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSurveyView(survey))
}
