package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/knowledge"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

const guidelineTopK = 4

const designSystemPrompt = `You are an expert survey methodologist helping healthcare platform
admins create high-quality surveys for busy doctors.

CORE RESPONSIBILITIES:
1. Detect bias: leading questions, loaded terms, false dichotomies, double-barreled questions
2. Improve clarity: reduce jargon, simplify phrasing, ensure each question has one clear purpose
3. Optimize length: ideal survey = 5-10 questions, max 3 minutes to complete
4. Recommend question types: Likert for attitudes, MCQ for discrete choices, open-text sparingly
5. Suggest answer options: complete, mutually exclusive, balanced (no loaded order)

BIAS EXAMPLES:
BAD: "How much do you love our new EHR?" → Assumes positive sentiment (leading)
GOOD: "How satisfied are you with the new EHR?" [1-5 Likert]

BAD: "Don't you think staffing is the main issue?" → Double negative, leads to agreement
GOOD: "What is the most significant staffing challenge?" [open / MCQ]

BAD: "Do you prefer video or phone?" → False dichotomy, ignores context
GOOD: "Which consultation format do you use most?" + "Depends on situation" option

MANDATORY RULES:
- NEVER suggest collecting PHI (names, DOB, SSN, MRN, diagnosis, medications)
- Keep surveys under 10 questions for busy doctors
- Suggested completion time MUST be ≤ 3 minutes (180 seconds)
`

const qualityCheckSchema = `{
	"type": "object",
	"properties": {
		"overall_quality_score": {
			"type": "number",
			"description": "Survey quality 0-10"
		},
		"estimated_completion_rate": {
			"type": "number",
			"description": "Predicted % of doctors who will complete"
		},
		"estimated_time_seconds": {
			"type": "integer",
			"description": "Estimated time to complete in seconds"
		},
		"bias_flags": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"question_id": {"type": "string"},
					"bias_type": {
						"type": "string",
						"enum": ["leading_question", "loaded_term", "false_dichotomy", "double_barreled", "ambiguous", "jargon_heavy"]
					},
					"severity": {"type": "string", "enum": ["low", "medium", "high"]},
					"original_text": {"type": "string"},
					"suggestion": {"type": "string"},
					"explanation": {"type": "string"}
				},
				"required": ["question_id", "bias_type", "severity", "original_text", "suggestion", "explanation"]
			}
		},
		"clarity_issues": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"question_id": {"type": "string"},
					"issue": {"type": "string"},
					"suggestion": {"type": "string"}
				}
			}
		},
		"length_recommendation": {"type": "string"},
		"audience_suggestion": {"type": "string"}
	},
	"required": ["overall_quality_score", "estimated_completion_rate", "estimated_time_seconds", "bias_flags", "clarity_issues", "length_recommendation"]
}`

const variantsSchema = `{
	"type": "object",
	"properties": {
		"variants": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"variant_label": {"type": "string"},
					"questions": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"id": {"type": "string"},
								"text": {"type": "string"},
								"type": {
									"type": "string",
									"enum": ["mcq", "likert", "text", "boolean", "ranking"]
								},
								"options": {"type": "array", "items": {"type": "string"}},
								"required": {"type": "boolean"}
							},
							"required": ["id", "text", "type", "required"]
						}
					},
					"hypothesis": {"type": "string"},
					"predicted_completion_rate": {"type": "number"},
					"key_differences": {"type": "array", "items": {"type": "string"}}
				},
				"required": ["variant_label", "questions", "hypothesis", "predicted_completion_rate", "key_differences"]
			}
		}
	},
	"required": ["variants"]
}`

// DesignAgent is the admin-facing agent: bias detection, clarity checks,
// variant generation and question suggestions. Quality checks inject
// retrieved platform guidelines into the prompt.
type DesignAgent struct {
	completer core.Completer
	retriever core.Retriever
}

func NewDesignAgent(completer core.Completer, retriever core.Retriever) *DesignAgent {
	return &DesignAgent{completer: completer, retriever: retriever}
}

// QualityCheck analyzes a question set for bias, clarity and length. The
// int return is the provider token count for the audit record.
func (d *DesignAgent) QualityCheck(ctx context.Context, title string, questions []core.Question, specialty string) (*core.QualityCheckResult, int, error) {
	guidelines := d.guidelines(ctx, title)

	if specialty == "" {
		specialty = "All specialties"
	}
	questionsJSON, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal questions: %w", err)
	}

	user := fmt.Sprintf(`Analyze this survey for quality, bias, and clarity.

Survey Title: %s
Target Specialty: %s
Questions:
%s

Relevant Platform Guidelines:
%s

Run a comprehensive quality check using the quality_check_result tool.`, title, specialty, questionsJSON, guidelines)

	res, err := d.completer.Complete(ctx, core.CompletionRequest{
		System:    designSystemPrompt,
		User:      user,
		MaxTokens: 4096,
		Tool: &core.ToolSpec{
			Name:        "quality_check_result",
			Description: "Returns quality analysis of a survey",
			Schema:      json.RawMessage(qualityCheckSchema),
		},
	})
	if err != nil {
		return nil, 0, err
	}

	var result core.QualityCheckResult
	if err := json.Unmarshal(res.ToolArgs, &result); err != nil {
		return nil, 0, fmt.Errorf("%w: quality check payload: %v", core.ErrMalformedResponse, err)
	}

	log.FromCtx(ctx).Info().
		Str("survey_title", title).
		Float64("score", result.OverallQualityScore).
		Int("bias_count", len(result.BiasFlags)).
		Msg("quality check complete")
	return &result, res.TokensUsed, nil
}

// ImproveQuestion rewrites a single question for clarity and neutrality,
// adding a hint the doctor can reveal.
func (d *DesignAgent) ImproveQuestion(ctx context.Context, question core.Question) (*core.Question, int, error) {
	questionJSON, err := json.MarshalIndent(question, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal question: %w", err)
	}

	user := fmt.Sprintf(`Improve this survey question for clarity, neutrality, and mobile-friendliness.

Original question:
%s

Improvements to apply:
- Remove bias or leading language
- Simplify wording (reading level ≤ grade 8)
- If MCQ: ensure options are complete, mutually exclusive, balanced
- Add a brief 'hint' field (1 sentence) the doctor can reveal if confused

Respond with ONLY a JSON object (no markdown fences).`, questionJSON)

	res, err := d.completer.Complete(ctx, core.CompletionRequest{
		System:    designSystemPrompt,
		User:      user,
		JSONOnly:  true,
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, 0, err
	}

	var improved core.Question
	if err := json.Unmarshal([]byte(stripFences(res.Text)), &improved); err != nil {
		return nil, 0, fmt.Errorf("%w: improved question payload: %v", core.ErrMalformedResponse, err)
	}

	log.FromCtx(ctx).Info().Str("question_id", question.ID).Msg("question improved")
	return &improved, res.TokensUsed, nil
}

// GenerateVariants produces A/B variants of a survey, each with a hypothesis
// and predicted completion rate.
func (d *DesignAgent) GenerateVariants(ctx context.Context, title string, questions []core.Question, numVariants int) (*core.VariantsResult, int, error) {
	questionsJSON, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal questions: %w", err)
	}

	user := fmt.Sprintf(`Create %d A/B test variants of this survey.

Survey: %s
Original Questions:
%s

Variant strategy:
- Variant A: Keep original order, polish wording
- Variant B: Reorder to most engaging questions first, trim to shortest viable set
- Each variant must have its own hypothesis and predicted completion rate

Use the generate_variants_result tool.`, numVariants, title, questionsJSON)

	res, err := d.completer.Complete(ctx, core.CompletionRequest{
		System:    designSystemPrompt,
		User:      user,
		MaxTokens: 4096,
		Tool: &core.ToolSpec{
			Name:        "generate_variants_result",
			Description: "Returns A/B survey variants",
			Schema:      json.RawMessage(variantsSchema),
		},
	})
	if err != nil {
		return nil, 0, err
	}

	var result core.VariantsResult
	if err := json.Unmarshal(res.ToolArgs, &result); err != nil {
		return nil, 0, fmt.Errorf("%w: variants payload: %v", core.ErrMalformedResponse, err)
	}

	log.FromCtx(ctx).Info().
		Str("survey_title", title).
		Int("num_variants", numVariants).
		Msg("variants generated")
	return &result, res.TokensUsed, nil
}

// SuggestQuestions drafts a question structure for a stated survey goal.
func (d *DesignAgent) SuggestQuestions(ctx context.Context, surveyGoal string) ([]core.SuggestedQuestion, int, error) {
	user := fmt.Sprintf(`A healthcare admin wants to run a survey with this goal:
"%s"

Suggest 5-8 questions with ideal question types, options (if MCQ/Likert), and a brief rationale.
Return ONLY a JSON object in this exact format (no markdown fences):
{"questions": [{"text": "...", "type": "...", "options": [...], "rationale": "..."}]}`, surveyGoal)

	res, err := d.completer.Complete(ctx, core.CompletionRequest{
		System:    designSystemPrompt,
		User:      user,
		JSONOnly:  true,
		MaxTokens: 2048,
	})
	if err != nil {
		return nil, 0, err
	}

	var payload struct {
		Questions []core.SuggestedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripFences(res.Text)), &payload); err != nil {
		return nil, 0, fmt.Errorf("%w: suggested questions payload: %v", core.ErrMalformedResponse, err)
	}
	return payload.Questions, res.TokensUsed, nil
}

// guidelines retrieves the best-practice context for a prompt. Retrieval
// trouble degrades to the generic fallback; a design call never fails on
// the index being down.
func (d *DesignAgent) guidelines(ctx context.Context, topic string) string {
	matches, err := d.retriever.Retrieve(ctx, topic, guidelineTopK)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("guideline retrieval failed, using fallback")
		return knowledge.NoGuidelinesFallback
	}
	return knowledge.FormatGuidelines(matches)
}
