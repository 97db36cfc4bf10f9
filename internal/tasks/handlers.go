package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/agents"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/knowledge"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/storage/sqlite"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/retry"
)

// Task names. Close-expired runs on the beat; the rest are enqueued by the
// HTTP layer and by each other.
const (
	TaskGenerateInsights   = "insights.generate"
	TaskCompletionReminder = "reminder.completion"
	TaskCloseExpired       = "surveys.close_expired"
)

// surveyMaxAge is how long a survey may stay active before the sweep closes
// it.
const surveyMaxAge = 30 * 24 * time.Hour

type InsightsPayload struct {
	SurveyID string `json:"survey_id"`
}

type ReminderPayload struct {
	SurveyID string `json:"survey_id"`
	DoctorID string `json:"doctor_id"`
}

// Handlers carries the dependencies of the background tasks.
type Handlers struct {
	surveys   *sqlite.SurveyRepo
	responses *sqlite.ResponseRepo
	insights  *sqlite.InsightRepo
	events    *sqlite.EventRepo
	orch      *agents.Orchestrator
	index     *knowledge.Index
	queue     core.TaskQueue
}

func NewHandlers(
	surveys *sqlite.SurveyRepo,
	responses *sqlite.ResponseRepo,
	insights *sqlite.InsightRepo,
	events *sqlite.EventRepo,
	orch *agents.Orchestrator,
	index *knowledge.Index,
	queue core.TaskQueue,
) *Handlers {
	return &Handlers{
		surveys:   surveys,
		responses: responses,
		insights:  insights,
		events:    events,
		orch:      orch,
		index:     index,
		queue:     queue,
	}
}

// Register binds every task to the worker with its retry policy. Insight
// generation retries up to three times a minute apart; the reminder gets one
// attempt, a missed nudge is not worth redelivering hours later.
func (h *Handlers) Register(w *Worker) {
	insightsRetry := &retry.Config{
		MaxRetries:    3,
		BackoffFactor: 1,
		InitialDelay:  time.Minute,
		MaxDelay:      time.Minute,
		Jitter:        5 * time.Second,
	}
	w.Register(TaskGenerateInsights, h.GenerateInsights, insightsRetry)
	w.Register(TaskCompletionReminder, h.CompletionReminder, nil)
	w.RegisterPeriodic(TaskCloseExpired, h.CloseExpired)
}

// GenerateInsights runs the insight agent over a survey's completed
// responses and persists the result. The completion rate counts every
// response, complete or not.
func (h *Handlers) GenerateInsights(ctx context.Context, payload json.RawMessage) error {
	var p InsightsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to decode insights payload: %w", err)
	}
	logger := log.FromCtx(ctx)

	survey, err := h.surveys.Get(ctx, p.SurveyID)
	if errors.Is(err, core.ErrNotFound) {
		// Nothing to retry against.
		logger.Error().Str("survey_id", p.SurveyID).Msg("insights requested for missing survey")
		return nil
	}
	if err != nil {
		return err
	}

	all, err := h.responses.ListBySurvey(ctx, p.SurveyID, false)
	if err != nil {
		return err
	}
	var completed []core.Response
	for _, r := range all {
		if r.IsComplete {
			completed = append(completed, r)
		}
	}
	completionRate := 0.0
	if len(all) > 0 {
		completionRate = float64(len(completed)) / float64(len(all)) * 100
	}

	result, err := h.orch.InsightAnalysis(ctx, survey.AdminID, *survey, completed, completionRate)
	if err != nil {
		return err
	}
	if _, err := h.insights.Save(ctx, p.SurveyID, *result); err != nil {
		return err
	}

	// Surveys that held their audience feed the template collection. An
	// indexing failure never fails the saved insight.
	if err := h.index.IndexTemplate(ctx, *survey, completionRate); err != nil {
		logger.Warn().Err(err).Str("survey_id", p.SurveyID).Msg("failed to index survey template")
	}

	logger.Info().
		Str("survey_id", p.SurveyID).
		Int("themes", len(result.Themes)).
		Float64("completion_rate", completionRate).
		Msg("insights generated")
	return nil
}

// CompletionReminder nudges a doctor who started a survey but did not
// finish. It skips silently when the response was completed in the meantime,
// when the survey is no longer active, and when a reminder already went out;
// the recorded event is the idempotency guard under redelivery.
func (h *Handlers) CompletionReminder(ctx context.Context, payload json.RawMessage) error {
	var p ReminderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to decode reminder payload: %w", err)
	}
	logger := log.FromCtx(ctx).With().
		Str("survey_id", p.SurveyID).
		Str("doctor_id", p.DoctorID).
		Logger()

	resp, err := h.responses.GetByDoctor(ctx, p.SurveyID, p.DoctorID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return err
	}
	if resp != nil && resp.IsComplete {
		logger.Info().Msg("reminder skipped: already complete")
		return nil
	}

	survey, err := h.surveys.Get(ctx, p.SurveyID)
	if errors.Is(err, core.ErrNotFound) {
		logger.Info().Msg("reminder skipped: survey gone")
		return nil
	}
	if err != nil {
		return err
	}
	if survey.Status != core.SurveyActive {
		logger.Info().Msg("reminder skipped: survey not active")
		return nil
	}

	sent, err := h.events.HasEvent(ctx, p.SurveyID, p.DoctorID, core.EventReminderSent)
	if err != nil {
		return err
	}
	if sent {
		logger.Info().Msg("reminder skipped: already sent")
		return nil
	}

	err = h.events.Append(ctx, &core.SurveyEvent{
		SurveyID:  p.SurveyID,
		DoctorID:  p.DoctorID,
		EventType: core.EventReminderSent,
		Metadata:  map[string]any{"channel": "push"},
	})
	if err != nil {
		return err
	}

	// Delivery itself goes through the push gateway; here the event record
	// is the send.
	logger.Info().Msg("completion reminder sent")
	return nil
}

// CloseExpired closes active surveys past their shelf life and queues
// insight generation for each. Close is a guarded update, so overlapping
// sweeps close a survey exactly once.
func (h *Handlers) CloseExpired(ctx context.Context, _ json.RawMessage) error {
	logger := log.FromCtx(ctx)
	cutoff := time.Now().UTC().Add(-surveyMaxAge)

	expired, err := h.surveys.ListExpired(ctx, cutoff)
	if err != nil {
		return err
	}

	closed := 0
	for _, s := range expired {
		if err := h.surveys.Close(ctx, s.ID, time.Now().UTC()); err != nil {
			logger.Warn().Err(err).Str("survey_id", s.ID).Msg("failed to close expired survey")
			continue
		}
		if err := h.queue.Enqueue(ctx, TaskGenerateInsights, InsightsPayload{SurveyID: s.ID}); err != nil {
			logger.Error().Err(err).Str("survey_id", s.ID).Msg("failed to enqueue insights for closed survey")
			continue
		}
		closed++
	}

	if closed > 0 {
		logger.Info().Int("count", closed).Msg("expired surveys closed")
	}
	return nil
}
