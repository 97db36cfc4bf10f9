package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/tasks"
)

// getInsights returns the latest report for a survey. A closed survey with
// no report yet is pending, not missing; the worker may still be on it.
func (h *Handler) getInsights(w http.ResponseWriter, r *http.Request) {
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

	stored, err := h.insights.Latest(ctx, survey.ID)
	if errors.Is(err, core.ErrNotFound) {
		if survey.Status == core.SurveyClosed {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":  "pending",
				"message": "Insights are being generated. Check back in a few minutes.",
			})
			return
		}
		writeError(w, http.StatusNotFound, "No insights yet — survey may still be active")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"survey_id":           survey.ID,
		"survey_title":        survey.Title,
		"generated_at":        stored.GeneratedAt,
		"completion_rate":     stored.Result.CompletionRate,
		"executive_summary":   stored.Result.ExecutiveSummary,
		"themes":              stored.Result.Themes,
		"action_items":        stored.Result.ActionItems,
		"sentiment_breakdown": stored.Result.SentimentBreakdown,
	})
}

func (h *Handler) triggerInsights(w http.ResponseWriter, r *http.Request) {
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

	err = h.queue.Enqueue(ctx, tasks.TaskGenerateInsights, tasks.InsightsPayload{SurveyID: survey.ID})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":    "queued",
		"survey_id": survey.ID,
	})
}
