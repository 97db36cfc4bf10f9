package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

const (
	// Only answers longer than this count as open-ended text worth analyzing.
	openAnswerMinChars = 10

	openSampleLimit       = 200
	openSampleTokenBudget = 8000
)

const insightSystemPrompt = `You are a healthcare survey analyst helping organizations
understand feedback from doctors and improve their operations.

RESPONSIBILITIES:
1. Extract 3-5 major themes from open-ended responses using semantic clustering
2. Assess sentiment per theme and overall
3. Calculate prevalence of each theme (% of responses mentioning it)
4. Generate prioritized, actionable recommendations
5. Identify differences between doctor segments (specialties, experience levels)
6. Write an executive summary that non-technical leaders can act on

ANALYSIS STANDARDS:
- Themes must be grounded in actual responses — no speculation
- Representative quotes must be paraphrased (never include identifiable info)
- Action items must be specific, measurable, and assigned to a realistic owner
- Segment insights only if sample size per segment ≥ 10 responses

SAFETY RULES:
- No medical advice or clinical recommendations
- No identification of individual respondents
- No reference to patient data
- Flag if responses suggest a compliance or safety concern (without diagnosing)
`

const insightSchema = `{
	"type": "object",
	"properties": {
		"executive_summary": {
			"type": "string",
			"description": "3-5 sentence summary of key findings, suitable for leadership"
		},
		"completion_rate": {
			"type": "number",
			"description": "% of recipients who completed the survey"
		},
		"themes": {
			"type": "array",
			"description": "3-5 major themes extracted from open-ended responses",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"description": {"type": "string"},
					"prevalence_pct": {"type": "number"},
					"sentiment": {
						"type": "string",
						"enum": ["positive", "negative", "neutral", "mixed"]
					},
					"representative_quotes": {
						"type": "array",
						"items": {"type": "string"}
					}
				},
				"required": ["title", "description", "prevalence_pct", "sentiment"]
			}
		},
		"action_items": {
			"type": "array",
			"description": "Prioritized recommendations based on findings",
			"items": {
				"type": "object",
				"properties": {
					"priority": {"type": "string", "enum": ["high", "medium", "low"]},
					"description": {"type": "string"},
					"owner_suggestion": {"type": "string"}
				},
				"required": ["priority", "description", "owner_suggestion"]
			}
		},
		"sentiment_breakdown": {
			"type": "object",
			"properties": {
				"positive": {"type": "number"},
				"negative": {"type": "number"},
				"neutral": {"type": "number"}
			}
		},
		"segment_insights": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"segment": {"type": "string"},
					"insight": {"type": "string"}
				}
			}
		}
	},
	"required": ["executive_summary", "completion_rate", "themes", "action_items", "sentiment_breakdown", "segment_insights"]
}`

// InsightAgent runs post-survey analysis: theme extraction, sentiment,
// segment differences and an executive summary. It is invoked from the
// background worker after a survey closes.
type InsightAgent struct {
	completer core.Completer
}

func NewInsightAgent(completer core.Completer) *InsightAgent {
	return &InsightAgent{completer: completer}
}

// Analyze produces the full insight report. The quantitative aggregation is
// computed locally; only open-ended text and the pre-aggregated numbers go
// to the provider. completionRate always overrides whatever the provider
// echoes back.
func (ia *InsightAgent) Analyze(ctx context.Context, survey core.Survey, responses []core.Response, completionRate float64) (*core.InsightResult, int, error) {
	if len(responses) == 0 {
		return emptyInsightResult(completionRate), 0, nil
	}

	open := sampleOpenResponses(extractOpenResponses(responses))
	quant := summarizeQuantitative(survey.Questions, responses)
	segments := segmentCounts(responses)

	quantJSON, err := json.MarshalIndent(quant, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal quantitative summary: %w", err)
	}
	openJSON, err := json.MarshalIndent(open, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal open responses: %w", err)
	}
	segmentsJSON, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal segments: %w", err)
	}

	description := survey.Description
	if description == "" {
		description = "Collect doctor feedback"
	}

	user := fmt.Sprintf(`Analyze these survey results and generate comprehensive insights.

Survey: %s
Survey Goal: %s
Total Respondents: %d
Completion Rate: %.1f%%

Quantitative Summary:
%s

Open-Ended Responses (sample of up to %d):
%s

Segment Distribution:
%s

Generate full insights using the insight_result tool.
Focus on actionable findings. Paraphrase quotes — never include identifiable info.`,
		survey.Title, description, len(responses), completionRate,
		quantJSON, openSampleLimit, openJSON, segmentsJSON)

	res, err := ia.completer.Complete(ctx, core.CompletionRequest{
		System:    insightSystemPrompt,
		User:      user,
		MaxTokens: 4096,
		Tool: &core.ToolSpec{
			Name:        "insight_result",
			Description: "Returns structured analysis of survey responses",
			Schema:      json.RawMessage(insightSchema),
		},
	})
	if err != nil {
		return nil, 0, err
	}

	var result core.InsightResult
	if err := json.Unmarshal(res.ToolArgs, &result); err != nil {
		return nil, 0, fmt.Errorf("%w: insight payload: %v", core.ErrMalformedResponse, err)
	}

	// The provider's arithmetic is not trusted.
	result.CompletionRate = completionRate

	log.FromCtx(ctx).Info().
		Str("survey_id", survey.ID).
		Int("responses_count", len(responses)).
		Int("themes_found", len(result.Themes)).
		Msg("insight analysis complete")
	return &result, res.TokensUsed, nil
}

// extractOpenResponses flattens text answers across all responses. Answers
// map question ID to value; only string values longer than the minimum
// qualify.
func extractOpenResponses(responses []core.Response) []string {
	var texts []string
	for _, r := range responses {
		for _, v := range r.Answers {
			if s, ok := v.(string); ok && len(s) > openAnswerMinChars {
				texts = append(texts, s)
			}
		}
	}
	return texts
}

// sampleOpenResponses caps the prompt cost: at most openSampleLimit answers,
// trimmed further so the cumulative sample stays inside the token budget.
func sampleOpenResponses(texts []string) []string {
	if len(texts) > openSampleLimit {
		texts = texts[:openSampleLimit]
	}

	budget := openSampleTokenBudget
	for i, t := range texts {
		n := countTokens(t)
		if n > budget {
			return texts[:i]
		}
		budget -= n
	}
	return texts
}

type questionSummary struct {
	Type         string         `json:"type"`
	Question     string         `json:"question"`
	Mean         float64        `json:"mean,omitempty"`
	Distribution map[string]int `json:"distribution,omitempty"`
	N            int            `json:"n"`
}

// summarizeQuantitative computes means for likert questions and value
// distributions for mcq/boolean questions. Questions nobody answered are
// omitted.
func summarizeQuantitative(questions []core.Question, responses []core.Response) map[string]questionSummary {
	summary := make(map[string]questionSummary)

	for _, q := range questions {
		switch q.Type {
		case core.QuestionLikert:
			var sum float64
			n := 0
			for _, r := range responses {
				v, ok := r.Answers[q.ID]
				if !ok || v == nil {
					continue
				}
				if f, numeric := toFloat(v); numeric {
					sum += f
					n++
				}
			}
			if n > 0 {
				summary[q.ID] = questionSummary{
					Type:     "likert",
					Question: q.Text,
					Mean:     math.Round(sum/float64(n)*100) / 100,
					N:        n,
				}
			}

		case core.QuestionMCQ, core.QuestionBoolean:
			counts := make(map[string]int)
			n := 0
			for _, r := range responses {
				v, ok := r.Answers[q.ID]
				if !ok || v == nil {
					continue
				}
				counts[fmt.Sprintf("%v", v)]++
				n++
			}
			if n > 0 {
				summary[q.ID] = questionSummary{
					Type:         string(q.Type),
					Question:     q.Text,
					Distribution: counts,
					N:            n,
				}
			}
		}
	}
	return summary
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func segmentCounts(responses []core.Response) map[string]int {
	segments := make(map[string]int)
	for _, r := range responses {
		specialty := r.DoctorSpecialty
		if specialty == "" {
			specialty = "Unknown"
		}
		segments[specialty]++
	}
	return segments
}

func emptyInsightResult(completionRate float64) *core.InsightResult {
	return &core.InsightResult{
		ExecutiveSummary: "No responses were received for this survey.",
		CompletionRate:   completionRate,
		Themes:           []core.Theme{},
		ActionItems: []core.ActionItem{{
			Priority:        "high",
			Description:     "Investigate why no responses were received — check targeting and send timing.",
			OwnerSuggestion: "Survey Administrator",
		}},
		SentimentBreakdown: core.SentimentBreakdown{Positive: 0, Negative: 0, Neutral: 1},
		SegmentInsights:    []core.SegmentInsight{},
	}
}

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

func countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}
