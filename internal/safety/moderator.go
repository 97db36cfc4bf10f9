package safety

import (
	"context"
	"regexp"
	"strings"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// Fallback texts substituted wholesale when generated output trips a filter.
const (
	AdviceFallback = "I can help clarify what this survey question is asking, " +
		"but I'm not able to provide medical guidance. " +
		"For clinical questions, please consult appropriate resources."

	DisclosureFallback = "I was unable to generate a safe response. Please contact support."

	ViolationRecommendation = "Remove or rephrase this question to avoid collecting protected health information."
)

type phiPattern struct {
	label string
	re    *regexp.Regexp
}

// Structured-identifier detectors. Labels end up in violation records as
// phi_pattern:<label>.
var phiPatterns = []phiPattern{
	{"SSN", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"MRN", regexp.MustCompile(`(?i)\bMRN\b|\bmedical record number\b`)},
	{"DOB", regexp.MustCompile(`(?i)\bdate of birth\b|\bDOB\b|\bbirthdate\b`)},
	{"DIAGNOSIS_CODE", regexp.MustCompile(`(?i)\bICD-\d+\b|\bdiagnosis code\b`)},
	{"NPI", regexp.MustCompile(`(?i)\bNPI\b|\bnational provider\b`)},
	{"DEA", regexp.MustCompile(`(?i)\bDEA number\b`)},
}

// Directive or diagnostic phrasing that generated text must never carry.
var medicalAdvicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\byou (?:should|must|need to) (?:take|start|stop|see a|visit)\b`),
	regexp.MustCompile(`(?i)\bthis (?:sounds|looks|seems) like\b.{0,30}\b(?:condition|diagnosis|disease|disorder)\b`),
	regexp.MustCompile(`(?i)\byou (?:have|might have|could have|may have)\b.{0,30}\b(?:condition|disease|disorder|syndrome)\b`),
	regexp.MustCompile(`(?i)\bI (?:recommend|suggest|advise)\b.{0,30}\b(?:medication|treatment|therapy|doctor|specialist)\b`),
	regexp.MustCompile(`(?i)\bsymptoms suggest\b`),
	regexp.MustCompile(`(?i)\bconsult a (?:doctor|physician|specialist) (?:immediately|urgently|right away)\b`),
}

// Field names that indicate a question is trying to collect a protected
// identifier. Matched as case-insensitive substrings.
var phiCollectionKeywords = []string{
	"full name", "first name", "last name", "email address", "phone number",
	"home address", "zip code", "date of birth", "social security",
	"medical record", "patient id", "patient name", "npi number",
	"license number", "dea number", "diagnosis", "medication list",
	"prescription", "treatment plan",
}

var (
	ssnRedactRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	phoneRedactRe = regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	emailRedactRe = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
)

// Moderator screens inbound survey content and outbound generated text.
// It holds no state; every method is a pure function of its input and the
// package pattern tables, safe for concurrent use.
type Moderator struct{}

func NewModerator() *Moderator {
	return &Moderator{}
}

// CheckQuestion reports whether a single question text is safe to ask, and
// the violation tag when it is not.
func (m *Moderator) CheckQuestion(text string) (bool, string) {
	lower := strings.ToLower(text)

	for _, keyword := range phiCollectionKeywords {
		if strings.Contains(lower, keyword) {
			return false, "phi_keyword:" + keyword
		}
	}

	for _, p := range phiPatterns {
		if p.re.MatchString(text) {
			return false, "phi_pattern:" + p.label
		}
	}

	return true, ""
}

// ValidateQuestions runs CheckQuestion over a survey's questions and returns
// one violation per flagged question. An empty result means the set passed.
// Advisory-blocking: callers reject the create/update when non-empty; the
// content is never auto-fixed.
func (m *Moderator) ValidateQuestions(ctx context.Context, questions []core.Question) []core.Violation {
	var violations []core.Violation
	for _, q := range questions {
		safe, violation := m.CheckQuestion(q.Text)
		if safe {
			continue
		}

		log.FromCtx(ctx).Warn().
			Str("question_id", q.ID).
			Str("violation", violation).
			Msg("phi collection detected in question")

		violations = append(violations, core.Violation{
			QuestionID:     q.ID,
			QuestionText:   truncate(q.Text, 100),
			Violation:      violation,
			Recommendation: ViolationRecommendation,
		})
	}
	return violations
}

// ModerateOutput scans generated text and returns (true, text) when clean.
// On a match the text is replaced wholesale with the fixed fallback for the
// violation class; the surrounding call still succeeds with the substitute.
func (m *Moderator) ModerateOutput(ctx context.Context, output string) (bool, string) {
	for _, re := range medicalAdvicePatterns {
		if re.MatchString(output) {
			log.FromCtx(ctx).Warn().
				Str("output_preview", truncate(output, 100)).
				Msg("medical advice blocked in agent output")
			return false, AdviceFallback
		}
	}

	for _, p := range phiPatterns {
		if p.re.MatchString(output) {
			log.FromCtx(ctx).Warn().
				Str("pattern_type", p.label).
				Msg("phi detected in agent output")
			return false, DisclosureFallback
		}
	}

	return true, output
}

// Redact substitutes structured identifiers, phone numbers and email
// addresses in user-submitted text with placeholder tokens, leaving all
// other text untouched. Never blocks; identity on clean input.
func (m *Moderator) Redact(ctx context.Context, text string) string {
	redacted := ssnRedactRe.ReplaceAllString(text, "[REDACTED-SSN]")
	redacted = phoneRedactRe.ReplaceAllString(redacted, "[REDACTED-PHONE]")
	redacted = emailRedactRe.ReplaceAllString(redacted, "[REDACTED-EMAIL]")

	if redacted != text {
		log.FromCtx(ctx).Warn().
			Int("original_length", len(text)).
			Int("redacted_length", len(redacted)).
			Msg("phi redacted from response text")
	}
	return redacted
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
