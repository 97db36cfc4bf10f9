package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

type qualityCheckRequest struct {
	SurveyTitle string          `json:"survey_title"`
	Questions   []core.Question `json:"questions"`
	Specialty   string          `json:"specialty,omitempty"`
	// SurveyID, when set, persists the scores back onto the admin's survey.
	SurveyID string `json:"survey_id,omitempty"`
}

func (h *Handler) qualityCheck(w http.ResponseWriter, r *http.Request) {
	var req qualityCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SurveyTitle == "" || len(req.Questions) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "survey_title and questions are required")
		return
	}

	ctx := r.Context()
	admin := adminID(ctx)

	result, err := h.orch.QualityCheck(ctx, admin, req.SurveyTitle, req.Questions, req.Specialty)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if req.SurveyID != "" {
		err := h.surveys.SetQuality(ctx, req.SurveyID, admin,
			result.OverallQualityScore, result.EstimatedCompletionRate, result.EstimatedTimeSeconds)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("survey_id", req.SurveyID).
				Msg("failed to persist quality scores")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) improveQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question *core.Question `json:"question"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Question == nil {
		writeError(w, http.StatusUnprocessableEntity, "question is required")
		return
	}

	improved, err := h.orch.ImproveQuestion(r.Context(), adminID(r.Context()), *req.Question)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"improved_question": improved})
}

func (h *Handler) generateVariants(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string          `json:"title"`
		Questions   []core.Question `json:"questions"`
		NumVariants int             `json:"num_variants"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || len(req.Questions) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "title and questions are required")
		return
	}
	if req.NumVariants <= 0 {
		req.NumVariants = 2
	}

	result, err := h.orch.GenerateVariants(r.Context(), adminID(r.Context()), req.Title, req.Questions, req.NumVariants)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) suggestQuestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SurveyGoal string `json:"survey_goal"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SurveyGoal == "" {
		writeError(w, http.StatusUnprocessableEntity, "survey_goal is required")
		return
	}

	suggestions, err := h.orch.SuggestQuestions(r.Context(), adminID(r.Context()), req.SurveyGoal)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggested_questions": suggestions})
}

type clarifyRequest struct {
	SessionID     string              `json:"session_id"`
	SurveyID      string              `json:"survey_id"`
	QuestionID    string              `json:"question_id"`
	DoctorContext *core.DoctorContext `json:"doctor_context,omitempty"`
}

// clarify resolves the question from the live survey, records the request on
// the activity trail, then hands off to the orchestrator. A clarification
// against a closed or unknown survey is indistinguishable to the caller.
func (h *Handler) clarify(w http.ResponseWriter, r *http.Request) {
	var req clarifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	doctor := doctorID(ctx)

	survey, err := h.surveys.Get(ctx, req.SurveyID)
	if errors.Is(err, core.ErrNotFound) || (err == nil && survey.Status != core.SurveyActive) {
		writeError(w, http.StatusNotFound, "Survey not found or not active")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var question *core.Question
	for i := range survey.Questions {
		if survey.Questions[i].ID == req.QuestionID {
			question = &survey.Questions[i]
			break
		}
	}
	if question == nil {
		writeError(w, http.StatusNotFound, "Question not found in survey")
		return
	}

	err = h.events.Append(ctx, &core.SurveyEvent{
		SurveyID:   req.SurveyID,
		DoctorID:   doctor,
		EventType:  core.EventClarificationRequested,
		QuestionID: req.QuestionID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.orch.Clarify(ctx, doctor, req.SurveyID, req.SessionID, *question, req.DoctorContext)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	total, errTotal := strconv.Atoi(q.Get("questions_total"))
	answered, errAnswered := strconv.Atoi(q.Get("questions_answered"))
	if q.Get("session_id") == "" || errTotal != nil || errAnswered != nil {
		writeError(w, http.StatusUnprocessableEntity, "session_id, questions_total and questions_answered are required")
		return
	}

	writeJSON(w, http.StatusOK, h.orch.Progress(total, answered))
}

func (h *Handler) completionSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Responses      []map[string]any `json:"responses"`
		SurveyTitle    string           `json:"survey_title"`
		TotalResponses int              `json:"total_responses"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TotalResponses <= 0 {
		req.TotalResponses = 1
	}

	result, err := h.orch.CompletionSummary(r.Context(), doctorID(r.Context()), req.Responses, req.SurveyTitle, req.TotalResponses)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) saveProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string         `json:"session_id"`
		SurveyID  string         `json:"survey_id"`
		Answers   map[string]any `json:"answers"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" || req.SurveyID == "" {
		writeError(w, http.StatusUnprocessableEntity, "session_id and survey_id required")
		return
	}

	if err := h.orch.SaveProgress(r.Context(), req.SessionID, req.SurveyID, req.Answers); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) restoreSession(w http.ResponseWriter, r *http.Request) {
	session, found, err := h.orch.RestoreSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"found": true, "session": session})
}
