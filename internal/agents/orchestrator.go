package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/ratelimit"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/safety"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

const auditTimeout = 5 * time.Second

// Orchestrator is the single entry point for agent work. Every call is
// quota-checked where a policy applies, moderated where the output reaches
// a respondent, and audited on success. Callers never reach the agents
// directly.
type Orchestrator struct {
	design    *DesignAgent
	attempt   *AttemptAgent
	insight   *InsightAgent
	limiter   *ratelimit.Limiter
	moderator *safety.Moderator
	sink      core.AuditSink

	designPolicy  ratelimit.Policy
	clarifyPolicy ratelimit.Policy
}

func NewOrchestrator(
	design *DesignAgent,
	attempt *AttemptAgent,
	insight *InsightAgent,
	limiter *ratelimit.Limiter,
	moderator *safety.Moderator,
	sink core.AuditSink,
	cfg *config.RateLimitConfig,
) *Orchestrator {
	return &Orchestrator{
		design:        design,
		attempt:       attempt,
		insight:       insight,
		limiter:       limiter,
		moderator:     moderator,
		sink:          sink,
		designPolicy:  ratelimit.Policy{Limit: cfg.SuggestionsPerHour, Window: time.Hour},
		clarifyPolicy: ratelimit.Policy{Limit: cfg.ClarificationsPerSurvey, Window: 24 * time.Hour},
	}
}

// QualityCheck gates on the admin's hourly design quota, runs the design
// agent and audits the full result.
func (o *Orchestrator) QualityCheck(ctx context.Context, adminID, title string, questions []core.Question, specialty string) (*core.QualityCheckResult, error) {
	allowed, err := o.limiter.Allow(ctx, ratelimit.DesignScope(adminID), o.designPolicy)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: try again in an hour", core.ErrQuotaExceeded)
	}

	started := time.Now()
	result, tokens, err := o.design.QualityCheck(ctx, title, questions, specialty)
	if err != nil {
		return nil, err
	}

	o.audit(ctx, core.InteractionLog{
		AgentType:      core.AgentDesign,
		UserID:         adminID,
		InputContext:   map[string]any{"action": "quality_check", "title": title},
		OutputResponse: toMap(result),
		TokensUsed:     tokens,
		LatencyMS:      latencyMS(started),
	})
	return result, nil
}

// ImproveQuestion rewrites a single question. Not quota-gated; the survey
// editor calls it interactively and the cost is one small completion.
func (o *Orchestrator) ImproveQuestion(ctx context.Context, adminID string, question core.Question) (*core.Question, error) {
	started := time.Now()
	improved, tokens, err := o.design.ImproveQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	o.audit(ctx, core.InteractionLog{
		AgentType:      core.AgentDesign,
		UserID:         adminID,
		InputContext:   map[string]any{"action": "improve_question", "question_id": question.ID},
		OutputResponse: toMap(improved),
		TokensUsed:     tokens,
		LatencyMS:      latencyMS(started),
	})
	return improved, nil
}

// GenerateVariants produces A/B variants of a draft survey.
func (o *Orchestrator) GenerateVariants(ctx context.Context, adminID, title string, questions []core.Question, numVariants int) (*core.VariantsResult, error) {
	started := time.Now()
	result, tokens, err := o.design.GenerateVariants(ctx, title, questions, numVariants)
	if err != nil {
		return nil, err
	}

	o.audit(ctx, core.InteractionLog{
		AgentType:      core.AgentDesign,
		UserID:         adminID,
		InputContext:   map[string]any{"action": "generate_variants", "title": title},
		OutputResponse: map[string]any{"variants_count": len(result.Variants)},
		TokensUsed:     tokens,
		LatencyMS:      latencyMS(started),
	})
	return result, nil
}

// SuggestQuestions drafts a starter question set for a stated survey goal.
func (o *Orchestrator) SuggestQuestions(ctx context.Context, adminID, surveyGoal string) ([]core.SuggestedQuestion, error) {
	started := time.Now()
	suggestions, tokens, err := o.design.SuggestQuestions(ctx, surveyGoal)
	if err != nil {
		return nil, err
	}

	o.audit(ctx, core.InteractionLog{
		AgentType:      core.AgentDesign,
		UserID:         adminID,
		InputContext:   map[string]any{"action": "suggest_questions", "goal": surveyGoal},
		OutputResponse: map[string]any{"suggestions_count": len(suggestions)},
		TokensUsed:     tokens,
		LatencyMS:      latencyMS(started),
	})
	return suggestions, nil
}

// Clarify gates on the per-doctor per-survey quota, then moderates the
// generated clarification before it reaches the respondent. The audit
// records only the length of the (possibly substituted) text.
func (o *Orchestrator) Clarify(ctx context.Context, doctorID, surveyID, sessionID string, question core.Question, doctorCtx *core.DoctorContext) (*core.ClarificationResult, error) {
	allowed, err := o.limiter.Allow(ctx, ratelimit.ClarifyScope(doctorID, surveyID), o.clarifyPolicy)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: clarification limit reached for this survey", core.ErrQuotaExceeded)
	}

	started := time.Now()
	result, tokens, err := o.attempt.Clarify(ctx, sessionID, question, doctorCtx)
	if err != nil {
		return nil, err
	}

	_, result.Clarification = o.moderator.ModerateOutput(ctx, result.Clarification)

	o.audit(ctx, core.InteractionLog{
		AgentType: core.AgentAttempt,
		UserID:    doctorID,
		InputContext: map[string]any{
			"action":      "clarify_question",
			"question_id": question.ID,
			"survey_id":   surveyID,
		},
		OutputResponse: map[string]any{"clarification_length": len(result.Clarification)},
		TokensUsed:     tokens,
		LatencyMS:      latencyMS(started),
	})
	return result, nil
}

// Progress is deterministic and free, so it is neither gated nor audited.
func (o *Orchestrator) Progress(total, answered int) *core.ProgressMessage {
	return o.attempt.Progress(total, answered)
}

// CompletionSummary thanks the respondent after their final answer.
func (o *Orchestrator) CompletionSummary(ctx context.Context, doctorID string, responses []map[string]any, surveyTitle string, totalResponses int) (*core.CompletionSummary, error) {
	started := time.Now()
	result, tokens, err := o.attempt.CompletionSummary(ctx, responses, surveyTitle, totalResponses)
	if err != nil {
		return nil, err
	}

	o.audit(ctx, core.InteractionLog{
		AgentType:      core.AgentAttempt,
		UserID:         doctorID,
		InputContext:   map[string]any{"action": "completion_summary", "responses_count": len(responses)},
		OutputResponse: toMap(result),
		TokensUsed:     tokens,
		LatencyMS:      latencyMS(started),
	})
	return result, nil
}

// InsightAnalysis runs the post-close analysis. The empty-response path is
// audited like any other run; it just costs zero tokens.
func (o *Orchestrator) InsightAnalysis(ctx context.Context, adminID string, survey core.Survey, responses []core.Response, completionRate float64) (*core.InsightResult, error) {
	started := time.Now()
	result, tokens, err := o.insight.Analyze(ctx, survey, responses, completionRate)
	if err != nil {
		return nil, err
	}

	o.audit(ctx, core.InteractionLog{
		AgentType: core.AgentInsight,
		UserID:    adminID,
		InputContext: map[string]any{
			"action":    "analyze",
			"survey_id": survey.ID,
			"responses": len(responses),
		},
		OutputResponse: map[string]any{
			"themes":       len(result.Themes),
			"action_items": len(result.ActionItems),
		},
		TokensUsed: tokens,
		LatencyMS:  latencyMS(started),
	})
	return result, nil
}

// SaveProgress and RestoreSession touch only the session store; they carry
// no provider cost and are not audited.

func (o *Orchestrator) SaveProgress(ctx context.Context, sessionID, surveyID string, answers map[string]any) error {
	return o.attempt.SaveProgress(ctx, sessionID, surveyID, answers)
}

func (o *Orchestrator) RestoreSession(ctx context.Context, sessionID string) (*core.SessionState, bool, error) {
	return o.attempt.RestoreSession(ctx, sessionID)
}

// audit appends one interaction record. Failures are logged and dropped;
// the agent call has already succeeded and audit is not allowed to undo it.
// The record is written even if the caller's context has been cancelled.
func (o *Orchestrator) audit(ctx context.Context, entry core.InteractionLog) {
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := o.sink.Append(auditCtx, entry); err != nil {
		log.FromCtx(ctx).Error().
			Err(err).
			Str("agent_type", entry.AgentType).
			Msg("audit append failed")
	}
}

// toMap round-trips a result struct through JSON so the audit record stores
// it with its wire field names.
func toMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"marshal_error": err.Error()}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"marshal_error": err.Error()}
	}
	return m
}

func latencyMS(started time.Time) int {
	return int(time.Since(started).Milliseconds())
}
