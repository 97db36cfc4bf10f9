package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

type qualityMsg *core.QualityCheckResult

// qualityStep runs the design agent's quality check over the sample survey
// and renders the score, the bias flags and the fix suggestions.
type qualityStep struct {
	spinner spinner.Model
	result  *core.QualityCheckResult
}

func newQualityStep() Step {
	return &qualityStep{spinner: newSpinner()}
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = warnStyle
	return s
}

func (s *qualityStep) Init(state *DemoState) tea.Cmd {
	run := func() tea.Msg {
		result, err := state.Orch.QualityCheck(state.Ctx, state.AdminID,
			sampleSurvey.Title, sampleSurvey.Questions, "Mixed specialties")
		if err != nil {
			return errMsg(err)
		}
		return qualityMsg(result)
	}
	return tea.Batch(s.spinner.Tick, run)
}

func (s *qualityStep) Update(msg tea.Msg, state *DemoState, width int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case qualityMsg:
		s.result = msg
		state.Quality = msg
		return s, nil
	case tea.KeyMsg:
		if s.result != nil && msg.String() == "enter" {
			return nil, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *qualityStep) View(state *DemoState) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Design agent: quality check") + "\n\n")
	b.WriteString(dimStyle.Render("Input survey (with deliberate bias issues):") + "\n")
	for i, q := range sampleSurvey.Questions {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, q.Text))
	}
	b.WriteString("\n")

	if s.result == nil {
		b.WriteString(s.spinner.View() + " Running quality check...\n")
		return b.String()
	}

	r := s.result
	b.WriteString(labelStyle.Render("Quality score: ") +
		scoreStyle(r.OverallQualityScore).Render(fmt.Sprintf("%.1f/10", r.OverallQualityScore)) + "\n")
	b.WriteString(labelStyle.Render("Predicted completion: ") +
		fmt.Sprintf("%.0f%%\n", r.EstimatedCompletionRate))
	b.WriteString(labelStyle.Render("Estimated time: ") +
		fmt.Sprintf("%ds\n\n", r.EstimatedTimeSeconds))

	if len(r.BiasFlags) > 0 {
		b.WriteString(labelStyle.Render("Bias flags:") + "\n")
		for _, flag := range r.BiasFlags {
			b.WriteString(fmt.Sprintf("  %s %s (%s)\n",
				severityStyle(flag.Severity).Render("["+strings.ToUpper(flag.Severity)+"]"),
				strings.ReplaceAll(flag.BiasType, "_", " "), flag.QuestionID))
			b.WriteString(dimStyle.Render("    was: "+flag.OriginalText) + "\n")
			b.WriteString(goodStyle.Render("    fix: "+flag.Suggestion) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("Length: ") + r.LengthRecommendation + "\n")
	if r.AudienceSuggestion != "" {
		b.WriteString(labelStyle.Render("Audience: ") + r.AudienceSuggestion + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("press enter to generate A/B variants") + "\n")
	return b.String()
}

type variantsMsg *core.VariantsResult

type variantsStep struct {
	spinner spinner.Model
	result  *core.VariantsResult
}

func newVariantsStep() Step {
	return &variantsStep{spinner: newSpinner()}
}

func (s *variantsStep) Init(state *DemoState) tea.Cmd {
	run := func() tea.Msg {
		result, err := state.Orch.GenerateVariants(state.Ctx, state.AdminID,
			sampleSurvey.Title, sampleSurvey.Questions, 2)
		if err != nil {
			return errMsg(err)
		}
		return variantsMsg(result)
	}
	return tea.Batch(s.spinner.Tick, run)
}

func (s *variantsStep) Update(msg tea.Msg, state *DemoState, width int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case variantsMsg:
		s.result = msg
		return s, nil
	case tea.KeyMsg:
		if s.result != nil && msg.String() == "enter" {
			return nil, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *variantsStep) View(state *DemoState) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Design agent: A/B variants") + "\n\n")

	if s.result == nil {
		b.WriteString(s.spinner.View() + " Generating variants...\n")
		return b.String()
	}

	for _, v := range s.result.Variants {
		var p strings.Builder
		p.WriteString(labelStyle.Render(fmt.Sprintf("Variant %s", v.VariantLabel)) +
			dimStyle.Render(fmt.Sprintf("  predicted %.0f%%", v.PredictedCompletionRate)) + "\n")
		p.WriteString("Hypothesis: " + v.Hypothesis + "\n")
		for _, d := range v.KeyDifferences {
			p.WriteString(dimStyle.Render("  * "+d) + "\n")
		}
		for i, q := range v.Questions {
			p.WriteString(fmt.Sprintf("  %d. %s\n", i+1, q.Text))
		}
		b.WriteString(panelStyle.Render(strings.TrimRight(p.String(), "\n")) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("press enter to continue") + "\n")
	return b.String()
}
