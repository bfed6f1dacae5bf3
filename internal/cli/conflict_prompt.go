package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/topfiveapp/topfive/internal/lifecycle"
)

var (
	promptTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205")).
				MarginBottom(1)
	promptCursorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))
	promptSubtleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// conflictChoice identifies one entry in the conflict chooser.
type conflictChoice struct {
	label    string
	urgent   bool
	cancel   bool
	victimID string
}

// conflictModel is the bubbletea model for the capacity-conflict chooser.
type conflictModel struct {
	candidateText string
	choices       []conflictChoice
	cursor        int
	chosen        bool
	aborted       bool
}

func newConflictModel(conflict *lifecycle.Conflict) conflictModel {
	choices := []conflictChoice{
		{label: "Move it to Urgent instead", urgent: true},
	}
	for _, holder := range conflict.SlotHolders {
		choices = append(choices, conflictChoice{
			label:    fmt.Sprintf("Replace: %s", truncate(holder.Text, 50)),
			victimID: holder.ID,
		})
	}
	choices = append(choices, conflictChoice{label: "Cancel", cancel: true})

	return conflictModel{
		candidateText: truncate(conflict.Candidate.Text, 50),
		choices:       choices,
	}
}

func (m conflictModel) Init() tea.Cmd {
	return nil
}

func (m conflictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = true
		return m, tea.Quit
	case "ctrl+c", "esc", "q":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m conflictModel) View() string {
	s := promptTitleStyle.Render(fmt.Sprintf("All 5 Top 5 slots are taken — what about %q?", m.candidateText)) + "\n"
	for i, choice := range m.choices {
		cursor := "  "
		label := choice.label
		if i == m.cursor {
			cursor = promptCursorStyle.Render("> ")
			label = promptCursorStyle.Render(label)
		}
		s += cursor + label + "\n"
	}
	s += "\n" + promptSubtleStyle.Render("↑/↓ to move, enter to choose, esc to cancel") + "\n"
	return s
}

// resolveConflictPrompt runs the interactive chooser and applies the
// selected resolution.
func resolveConflictPrompt(ctx context.Context, session *lifecycle.Session, conflict *lifecycle.Conflict) (string, error) {
	p := tea.NewProgram(newConflictModel(conflict))
	final, err := p.Run()
	if err != nil {
		cancelErr := session.CancelConflict()
		if cancelErr != nil {
			return "", cancelErr
		}
		return "", err
	}

	m := final.(conflictModel)
	if m.aborted || !m.chosen {
		return "", session.CancelConflict()
	}

	choice := m.choices[m.cursor]
	switch {
	case choice.urgent:
		return session.ResolveMoveToUrgent(ctx)
	case choice.cancel:
		return "", session.CancelConflict()
	default:
		return session.ResolveReplace(ctx, choice.victimID)
	}
}
