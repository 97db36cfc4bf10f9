package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

type insightMsg *core.InsightResult

type insightStep struct {
	spinner spinner.Model
	result  *core.InsightResult
	rate    float64
}

func newInsightStep() Step {
	return &insightStep{spinner: newSpinner()}
}

func (s *insightStep) Init(state *DemoState) tea.Cmd {
	s.rate = 68.4
	if state.Quality != nil {
		s.rate = state.Quality.EstimatedCompletionRate
	}
	run := func() tea.Msg {
		result, err := state.Orch.InsightAnalysis(state.Ctx, state.AdminID,
			sampleSurvey, sampleResponses, s.rate)
		if err != nil {
			return errMsg(err)
		}
		return insightMsg(result)
	}
	return tea.Batch(s.spinner.Tick, run)
}

func (s *insightStep) Update(msg tea.Msg, state *DemoState, width int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case insightMsg:
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

func (s *insightStep) View(state *DemoState) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Insight agent: response analysis") + "\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Analyzing %d responses at a %.1f%% completion rate...",
		len(sampleResponses), s.rate)) + "\n\n")

	if s.result == nil {
		b.WriteString(s.spinner.View() + " Mining themes and action items...\n")
		return b.String()
	}

	b.WriteString(panelStyle.Render(s.result.ExecutiveSummary) + "\n\n")

	sb := s.result.SentimentBreakdown
	b.WriteString(labelStyle.Render("Sentiment: ") +
		goodStyle.Render(fmt.Sprintf("%.0f%% positive", sb.Positive*100)) + dimStyle.Render(" / ") +
		badStyle.Render(fmt.Sprintf("%.0f%% negative", sb.Negative*100)) + dimStyle.Render(" / ") +
		fmt.Sprintf("%.0f%% neutral", sb.Neutral*100) + "\n\n")

	if len(s.result.Themes) > 0 {
		b.WriteString(labelStyle.Render("Themes") + "\n")
		for _, theme := range s.result.Themes {
			var p strings.Builder
			p.WriteString(fmt.Sprintf("%s (%.0f%%, %s)\n", theme.Title, theme.PrevalencePct, theme.Sentiment))
			p.WriteString(dimStyle.Render(theme.Description))
			for _, quote := range theme.RepresentativeQuotes {
				p.WriteString("\n" + dimStyle.Render("  \""+quote+"\""))
			}
			b.WriteString(panelStyle.Render(p.String()) + "\n")
		}
		b.WriteString("\n")
	}

	if len(s.result.ActionItems) > 0 {
		b.WriteString(labelStyle.Render("Action items") + "\n")
		for _, item := range s.result.ActionItems {
			tag := severityStyle(item.Priority).Render("[" + strings.ToUpper(item.Priority) + "]")
			b.WriteString(fmt.Sprintf("  %s %s", tag, item.Description))
			if item.OwnerSuggestion != "" {
				b.WriteString(dimStyle.Render(" (owner: " + item.OwnerSuggestion + ")"))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("press enter to finish") + "\n")
	return b.String()
}
