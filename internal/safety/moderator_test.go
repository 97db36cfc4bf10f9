package safety

import (
	"context"
	"strings"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

func TestCheckQuestion(t *testing.T) {
	m := NewModerator()

	tests := []struct {
		name          string
		text          string
		wantSafe      bool
		wantViolation string
	}{
		{
			name:          "keyword date of birth",
			text:          "What is the patient's date of birth?",
			wantSafe:      false,
			wantViolation: "phi_keyword:date of birth",
		},
		{
			name:          "ssn pattern",
			text:          "Enter the ID in the form 123-45-6789 to continue",
			wantSafe:      false,
			wantViolation: "phi_pattern:SSN",
		},
		{
			name:          "diagnosis keyword",
			text:          "Which diagnosis applies to this patient?",
			wantSafe:      false,
			wantViolation: "phi_keyword:diagnosis",
		},
		{
			name:     "clean question passes",
			text:     "How satisfied are you with the scheduling workflow?",
			wantSafe: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, violation := m.CheckQuestion(tt.text)
			if safe != tt.wantSafe {
				t.Errorf("safe = %v, want %v", safe, tt.wantSafe)
			}
			if violation != tt.wantViolation {
				t.Errorf("violation = %q, want %q", violation, tt.wantViolation)
			}
		})
	}
}

func TestValidateQuestions(t *testing.T) {
	ctx := context.Background()
	m := NewModerator()

	longText := "Please provide your national provider identifier " + strings.Repeat("x", 100)
	questions := []core.Question{
		{ID: "q1", Text: "How would you rate the new workflow?", Type: core.QuestionLikert},
		{ID: "q2", Text: "What is your full name?", Type: core.QuestionText},
		{ID: "q3", Text: longText, Type: core.QuestionText},
	}

	violations := m.ValidateQuestions(ctx, questions)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %d: %+v", len(violations), violations)
	}

	if violations[0].QuestionID != "q2" {
		t.Errorf("expected q2 first, got %s", violations[0].QuestionID)
	}
	if violations[0].Violation != "phi_keyword:full name" {
		t.Errorf("unexpected violation tag %q", violations[0].Violation)
	}
	if violations[0].Recommendation != ViolationRecommendation {
		t.Errorf("unexpected recommendation %q", violations[0].Recommendation)
	}

	if len(violations[1].QuestionText) != 100 {
		t.Errorf("expected preview truncated to 100 chars, got %d", len(violations[1].QuestionText))
	}
}

func TestValidateQuestions_CleanSet(t *testing.T) {
	ctx := context.Background()
	m := NewModerator()

	questions := []core.Question{
		{ID: "q1", Text: "How satisfied are you with the EHR?", Type: core.QuestionLikert},
		{ID: "q2", Text: "What is your biggest workflow pain point?", Type: core.QuestionText},
	}

	if violations := m.ValidateQuestions(ctx, questions); len(violations) != 0 {
		t.Errorf("expected no violations, got %+v", violations)
	}
}

func TestModerateOutput(t *testing.T) {
	ctx := context.Background()
	m := NewModerator()

	tests := []struct {
		name     string
		output   string
		wantSafe bool
		wantText string
	}{
		{
			name:     "directive advice blocked",
			output:   "Based on this, you should take the medication twice daily.",
			wantSafe: false,
			wantText: AdviceFallback,
		},
		{
			name:     "diagnostic assertion blocked",
			output:   "This sounds like a serious heart condition to me.",
			wantSafe: false,
			wantText: AdviceFallback,
		},
		{
			name:     "urgent care advice blocked",
			output:   "Please consult a doctor immediately about this.",
			wantSafe: false,
			wantText: AdviceFallback,
		},
		{
			name:     "identifier disclosure blocked",
			output:   "The example record uses MRN 84211 as its identifier.",
			wantSafe: false,
			wantText: DisclosureFallback,
		},
		{
			name:     "clean clarification passes through",
			output:   "This question asks how likely you are to recommend the workflow to a colleague.",
			wantSafe: true,
			wantText: "This question asks how likely you are to recommend the workflow to a colleague.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, text := m.ModerateOutput(ctx, tt.output)
			if safe != tt.wantSafe {
				t.Errorf("safe = %v, want %v", safe, tt.wantSafe)
			}
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	ctx := context.Background()
	m := NewModerator()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "phone and email",
			in:   "call me at 555-123-4567 or x@y.com",
			want: "call me at [REDACTED-PHONE] or [REDACTED-EMAIL]",
		},
		{
			name: "ssn",
			in:   "patient ssn 123-45-6789 noted",
			want: "patient ssn [REDACTED-SSN] noted",
		},
		{
			name: "no matches is identity",
			in:   "Documentation is still a nightmare after telemedicine visits.",
			want: "Documentation is still a nightmare after telemedicine visits.",
		},
		{
			name: "empty string",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Redact(ctx, tt.in); got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
