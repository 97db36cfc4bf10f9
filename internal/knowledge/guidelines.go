package knowledge

import (
	"fmt"
	"strings"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// NoGuidelinesFallback is returned when retrieval produces nothing, so
// prompts always carry a guidance section.
const NoGuidelinesFallback = "No specific guidelines found — apply general best practices."

// Guideline is one indexed best-practice entry.
type Guideline struct {
	ID       string
	Title    string
	Content  string
	Category string
}

// SurveyGuidelines is the static best-practice corpus seeded into the
// vector index at startup. In production these would come from a document
// store.
var SurveyGuidelines = []Guideline{
	{
		ID:    "guide-001",
		Title: "Avoiding Leading Questions",
		Content: "A leading question suggests a desired answer. Rephrase to be neutral. " +
			"BAD: 'How much do you enjoy our platform?' " +
			"GOOD: 'How would you rate your experience with the platform?'",
		Category: "bias",
	},
	{
		ID:    "guide-002",
		Title: "Double-Barreled Questions",
		Content: "Never ask about two things in one question. " +
			"BAD: 'Are you satisfied with the speed and accuracy of the EHR?' " +
			"GOOD: Split into two separate questions.",
		Category: "clarity",
	},
	{
		ID:    "guide-003",
		Title: "Optimal Survey Length for Doctors",
		Content: "Doctors have limited time. Target 5-8 questions, under 3 minutes. " +
			"Completion rates drop 50% past 10 questions. " +
			"Use skip logic to hide irrelevant questions.",
		Category: "length",
	},
	{
		ID:    "guide-004",
		Title: "Likert Scale Best Practices",
		Content: "Use odd-numbered scales (5 or 7 points) with labeled endpoints. " +
			"Always include a midpoint. " +
			"Example: 1=Very Dissatisfied, 3=Neutral, 5=Very Satisfied.",
		Category: "question_types",
	},
	{
		ID:    "guide-005",
		Title: "Multiple Choice Option Design",
		Content: "MCQ options must be mutually exclusive and collectively exhaustive. " +
			"Include 'Other (please specify)' when options might not cover all cases. " +
			"Avoid ordered lists that could bias toward first or last items.",
		Category: "question_types",
	},
	{
		ID:    "guide-006",
		Title: "HIPAA Compliance in Surveys",
		Content: "Never collect PHI: names, dates of birth, SSNs, MRNs, diagnosis codes, " +
			"treatment details, or any patient-identifiable information. " +
			"Anonymize all responses at rest. Retain for maximum 2 years.",
		Category: "compliance",
	},
	{
		ID:    "guide-007",
		Title: "Mobile-First Survey Design",
		Content: "Over 60% of doctors complete surveys on mobile. " +
			"Use single-column layouts. Limit open-text questions (voice input helps). " +
			"Show progress bar. Enable auto-save every 10 seconds.",
		Category: "ux",
	},
	{
		ID:    "guide-008",
		Title: "Avoiding Loaded Language",
		Content: "Loaded terms carry implicit assumptions. " +
			"BAD: 'When did you stop struggling with documentation?' (assumes struggle) " +
			"GOOD: 'How would you describe your documentation experience?'",
		Category: "bias",
	},
	{
		ID:    "guide-009",
		Title: "Question Order Effects",
		Content: "Place engaging, easy questions first to build momentum. " +
			"Sensitive or open-ended questions should come later. " +
			"Never place demographic questions first — they cause early drop-off.",
		Category: "flow",
	},
	{
		ID:    "guide-010",
		Title: "Telemedicine Survey Best Practices",
		Content: "When surveying about telemedicine, ask separately about: " +
			"technology (video quality, ease of use), clinical impact (patient outcomes), " +
			"and workflow integration. Avoid conflating these dimensions.",
		Category: "domain",
	},
	{
		ID:    "guide-011",
		Title: "EHR Feedback Survey Design",
		Content: "EHR surveys should separate: usability (navigation, speed), " +
			"clinical workflow integration, documentation burden, and interoperability. " +
			"Use Likert scales for ratings, open-text for specific pain points.",
		Category: "domain",
	},
	{
		ID:    "guide-012",
		Title: "Survey Fatigue Prevention",
		Content: "Send no more than 1 survey per week per doctor. " +
			"Rotate survey recipients across segments. " +
			"Always communicate: why this survey, how long it takes, how data is used.",
		Category: "engagement",
	},
}

// FormatGuidelines renders retrieval matches as the prompt section agents
// inject verbatim.
func FormatGuidelines(matches []core.Match) string {
	if len(matches) == 0 {
		return NoGuidelinesFallback
	}

	sections := make([]string, 0, len(matches))
	for _, m := range matches {
		category := m.Category
		if category == "" {
			category = "general"
		}
		sections = append(sections, fmt.Sprintf("[%s] %s\n%s", strings.ToUpper(category), m.Title, m.Content))
	}
	return strings.Join(sections, "\n\n")
}
