package core

// Typed results for each agent action. Providers return these through forced
// tool calls or JSON-object responses; mapping fails loudly when required
// fields are missing rather than accepting partial data.

type BiasFlag struct {
	QuestionID   string `json:"question_id"`
	BiasType     string `json:"bias_type"` // leading_question | loaded_term | false_dichotomy | double_barreled | ambiguous | jargon_heavy
	Severity     string `json:"severity"`  // low | medium | high
	OriginalText string `json:"original_text"`
	Suggestion   string `json:"suggestion"`
	Explanation  string `json:"explanation"`
}

type ClarityIssue struct {
	QuestionID string `json:"question_id"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

type QualityCheckResult struct {
	OverallQualityScore     float64        `json:"overall_quality_score"`
	EstimatedCompletionRate float64        `json:"estimated_completion_rate"`
	EstimatedTimeSeconds    int            `json:"estimated_time_seconds"`
	BiasFlags               []BiasFlag     `json:"bias_flags"`
	ClarityIssues           []ClarityIssue `json:"clarity_issues"`
	LengthRecommendation    string         `json:"length_recommendation"`
	AudienceSuggestion      string         `json:"audience_suggestion,omitempty"`
}

type SurveyVariant struct {
	VariantLabel            string     `json:"variant_label"`
	Questions               []Question `json:"questions"`
	Hypothesis              string     `json:"hypothesis"`
	PredictedCompletionRate float64    `json:"predicted_completion_rate"`
	KeyDifferences          []string   `json:"key_differences"`
}

type VariantsResult struct {
	Variants []SurveyVariant `json:"variants"`
}

type SuggestedQuestion struct {
	Text      string   `json:"text"`
	Type      string   `json:"type"`
	Options   []string `json:"options,omitempty"`
	Rationale string   `json:"rationale"`
}

type ClarificationResult struct {
	QuestionID    string   `json:"question_id"`
	Clarification string   `json:"clarification"`
	Examples      []string `json:"examples,omitempty"`
	// DidChangeMeaning is pinned to false by the attempt agent regardless of
	// what the provider reports.
	DidChangeMeaning bool `json:"did_change_meaning"`
}

type ProgressMessage struct {
	QuestionsTotal            int     `json:"questions_total"`
	QuestionsAnswered         int     `json:"questions_answered"`
	EstimatedSecondsRemaining int     `json:"estimated_seconds_remaining"`
	MotivationalMessage       string  `json:"motivational_message"`
	PercentComplete           float64 `json:"percent_complete"`
}

type CompletionSummary struct {
	ThankYouMessage  string `json:"thank_you_message"`
	AggregateInsight string `json:"aggregate_insight"`
	NextSteps        string `json:"next_steps"`
}

type Theme struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	PrevalencePct        float64  `json:"prevalence_pct"`
	Sentiment            string   `json:"sentiment"` // positive | negative | neutral | mixed
	RepresentativeQuotes []string `json:"representative_quotes,omitempty"`
}

type ActionItem struct {
	Priority        string `json:"priority"` // high | medium | low
	Description     string `json:"description"`
	OwnerSuggestion string `json:"owner_suggestion"`
}

type SegmentInsight struct {
	Segment string `json:"segment"`
	Insight string `json:"insight"`
}

type SentimentBreakdown struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

type InsightResult struct {
	ExecutiveSummary   string             `json:"executive_summary"`
	CompletionRate     float64            `json:"completion_rate"`
	Themes             []Theme            `json:"themes"`
	ActionItems        []ActionItem       `json:"action_items"`
	SentimentBreakdown SentimentBreakdown `json:"sentiment_breakdown"`
	SegmentInsights    []SegmentInsight   `json:"segment_insights"`
}
