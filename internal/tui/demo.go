package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/agents"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// Step is one stage of the walkthrough. Update returns nil when the step is
// finished and the model should advance.
type Step interface {
	Init(state *DemoState) tea.Cmd
	Update(msg tea.Msg, state *DemoState, width int) (Step, tea.Cmd)
	View(state *DemoState) string
}

// DemoState carries the orchestrator and the outputs steps hand to each
// other. Later steps reuse earlier results (the insight step analyzes at the
// completion rate the quality check predicted).
type DemoState struct {
	Ctx  context.Context
	Orch *agents.Orchestrator

	AdminID  string
	DoctorID string

	Quality *core.QualityCheckResult
}

type errMsg error

func demoSteps() []Step {
	return []Step{
		newQualityStep(),
		newVariantsStep(),
		newProgressStep(),
		newClarifyStep(),
		newSummaryStep(),
		newInsightStep(),
	}
}

type model struct {
	steps       []Step
	currentStep int
	state       *DemoState
	quitting    bool
	err         error
	width       int
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 {
		return m.steps[0].Init(m.state)
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case errMsg:
		m.err = msg
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.err != nil {
		return m, nil
	}
	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	next, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width)
	if next == nil {
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			return m, tea.Quit
		}
		return m, m.steps[m.currentStep].Init(m.state)
	}
	m.steps[m.currentStep] = next
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Demo cancelled.\n"
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) +
			"\n\n" + dimStyle.Render("(press ctrl+c to quit)") + "\n"
	}
	if m.currentStep >= len(m.steps) {
		return goodStyle.Render("Demo complete!") + " Start the API with 'copilot serve'.\n"
	}

	header := TitleStyle.Render(fmt.Sprintf("Survey Copilot demo (%d/%d)", m.currentStep+1, len(m.steps)))
	return header + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunDemo walks every agent end to end against the sample telemedicine
// survey. It talks to the orchestrator directly, so no HTTP server or task
// worker needs to be running.
func RunDemo(ctx context.Context, orch *agents.Orchestrator) error {
	m := model{
		steps: demoSteps(),
		state: &DemoState{
			Ctx:      ctx,
			Orch:     orch,
			AdminID:  "demo-admin",
			DoctorID: "demo-doc-001",
		},
	}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.quitting {
		return fmt.Errorf("demo interrupted")
	}
	return nil
}
