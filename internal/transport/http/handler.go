package http

import (
	"net/http"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/agents"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/safety"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/storage/sqlite"
)

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	orch      *agents.Orchestrator
	moderator *safety.Moderator
	surveys   *sqlite.SurveyRepo
	responses *sqlite.ResponseRepo
	insights  *sqlite.InsightRepo
	events    *sqlite.EventRepo
	queue     core.TaskQueue
	sanitizer *bluemonday.Policy
}

func NewHandler(
	orch *agents.Orchestrator,
	moderator *safety.Moderator,
	surveys *sqlite.SurveyRepo,
	responses *sqlite.ResponseRepo,
	insights *sqlite.InsightRepo,
	events *sqlite.EventRepo,
	queue core.TaskQueue,
) *Handler {
	return &Handler{
		orch:      orch,
		moderator: moderator,
		surveys:   surveys,
		responses: responses,
		insights:  insights,
		events:    events,
		queue:     queue,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": core.AppVersion,
	})
}

// sanitizeQuestions strips markup from every text field a survey author
// controls. Runs before PHI validation so detectors see the plain text.
func (h *Handler) sanitizeQuestions(questions []core.Question) []core.Question {
	out := make([]core.Question, len(questions))
	for i, q := range questions {
		q.Text = h.sanitizer.Sanitize(q.Text)
		q.Hint = h.sanitizer.Sanitize(q.Hint)
		for j, opt := range q.Options {
			q.Options[j] = h.sanitizer.Sanitize(opt)
		}
		out[i] = q
	}
	return out
}
