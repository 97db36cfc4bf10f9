package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// progressStep shows the deterministic progress tiers a respondent sees as
// they move through the survey. No provider call happens here.
type progressStep struct{}

func newProgressStep() Step {
	return &progressStep{}
}

func (s *progressStep) Init(state *DemoState) tea.Cmd { return nil }

func (s *progressStep) Update(msg tea.Msg, state *DemoState, width int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		return nil, nil
	}
	return s, nil
}

func (s *progressStep) View(state *DemoState) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Attempt agent: progress tracking") + "\n\n")
	b.WriteString(dimStyle.Render("A doctor works through the five questions:") + "\n\n")

	total := len(sampleSurvey.Questions)
	for _, answered := range []int{0, 2, 4, 5} {
		p := state.Orch.Progress(total, answered)
		filled := int(p.PercentComplete / 10)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
		b.WriteString(fmt.Sprintf("  [%s] %3.0f%% | %3ds left | %s\n",
			bar, p.PercentComplete, p.EstimatedSecondsRemaining, p.MotivationalMessage))
	}

	b.WriteString("\n" + dimStyle.Render("press enter to continue") + "\n")
	return b.String()
}

type clarifyMsg *core.ClarificationResult

// clarifyStep asks for help on the NPS question, the one most likely to
// confuse a respondent who has never heard the acronym.
type clarifyStep struct {
	spinner spinner.Model
	result  *core.ClarificationResult
}

func newClarifyStep() Step {
	return &clarifyStep{spinner: newSpinner()}
}

func (s *clarifyStep) Init(state *DemoState) tea.Cmd {
	run := func() tea.Msg {
		question := sampleSurvey.Questions[4]
		doctorCtx := sampleDoctorContext
		result, err := state.Orch.Clarify(state.Ctx, state.DoctorID,
			sampleSurvey.ID, "demo-session-001", question, &doctorCtx)
		if err != nil {
			return errMsg(err)
		}
		return clarifyMsg(result)
	}
	return tea.Batch(s.spinner.Tick, run)
}

func (s *clarifyStep) Update(msg tea.Msg, state *DemoState, width int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case clarifyMsg:
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

func (s *clarifyStep) View(state *DemoState) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Attempt agent: question clarification") + "\n\n")
	b.WriteString(dimStyle.Render("Doctor sees: ") + sampleSurvey.Questions[4].Text + "\n")
	b.WriteString(dimStyle.Render("Doctor clicks \"Need help?\"...") + "\n\n")

	if s.result == nil {
		b.WriteString(s.spinner.View() + " Fetching clarification...\n")
		return b.String()
	}

	var p strings.Builder
	p.WriteString(s.result.Clarification)
	if len(s.result.Examples) > 0 {
		p.WriteString("\n\n" + labelStyle.Render("Examples:"))
		for _, e := range s.result.Examples {
			p.WriteString("\n  * " + e)
		}
	}
	b.WriteString(panelStyle.Render(p.String()) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("meaning preserved (did_change_meaning=%v)", s.result.DidChangeMeaning)) + "\n")
	b.WriteString("\n" + dimStyle.Render("press enter to continue") + "\n")
	return b.String()
}

type summaryMsg *core.CompletionSummary

type summaryStep struct {
	spinner spinner.Model
	result  *core.CompletionSummary
}

func newSummaryStep() Step {
	return &summaryStep{spinner: newSpinner()}
}

func (s *summaryStep) Init(state *DemoState) tea.Cmd {
	run := func() tea.Msg {
		answers := make([]map[string]any, 0, len(sampleResponses[0].Answers))
		for id, value := range sampleResponses[0].Answers {
			answers = append(answers, map[string]any{"question_id": id, "answer": value})
		}
		result, err := state.Orch.CompletionSummary(state.Ctx, state.DoctorID,
			answers, sampleSurvey.Title, 247)
		if err != nil {
			return errMsg(err)
		}
		return summaryMsg(result)
	}
	return tea.Batch(s.spinner.Tick, run)
}

func (s *summaryStep) Update(msg tea.Msg, state *DemoState, width int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryMsg:
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

func (s *summaryStep) View(state *DemoState) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Attempt agent: completion summary") + "\n\n")
	b.WriteString(dimStyle.Render("Doctor submits the final answer...") + "\n\n")

	if s.result == nil {
		b.WriteString(s.spinner.View() + " Generating completion summary...\n")
		return b.String()
	}

	var p strings.Builder
	p.WriteString(s.result.ThankYouMessage + "\n\n")
	p.WriteString(labelStyle.Render("Community insight: ") + s.result.AggregateInsight + "\n")
	p.WriteString(labelStyle.Render("What happens next: ") + s.result.NextSteps)
	b.WriteString(panelStyle.Render(p.String()) + "\n")
	b.WriteString("\n" + dimStyle.Render("press enter to continue") + "\n")
	return b.String()
}
