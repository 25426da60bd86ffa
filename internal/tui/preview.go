// Package tui renders the outcome of a reminder pass for humans
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/hellausefulsoftware/backport-reminder/internal/workflow"
)

var headers = []string{"PR", "Title", "Decision", "Age", "Last reminder", "Action"}

// KeyMap defines keybindings
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show reminder"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func rowsFor(summary *workflow.Summary) [][]string {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		d := o.Decision

		age := "-"
		if !d.LabeledAt.IsZero() {
			age = strconv.Itoa(d.AgeDays)
		}
		last := "-"
		if !d.LastReminderAt.IsZero() {
			last = d.LastReminderAt.Format(time.DateTime)
		}
		action := "-"
		switch {
		case o.Posted:
			action = "posted"
		case d.Due:
			action = "would post"
		}

		rows = append(rows, []string{
			fmt.Sprintf("#%d", o.Candidate.Number),
			o.Candidate.Title,
			d.Label(),
			age,
			last,
			action,
		})
	}
	return rows
}

func totals(summary *workflow.Summary) string {
	line := fmt.Sprintf("%d candidates, %d reminded, %d skipped",
		len(summary.Outcomes), summary.Reminded, summary.Skipped)
	if summary.DryRun {
		line += " (dry run)"
	}
	return line
}

// RenderReport renders the summary as a static table.
func RenderReport(summary *workflow.Summary) string {
	theme := NewTheme()
	rows := rowsFor(summary)

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.BorderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == ltable.HeaderRow {
				return base.Bold(true)
			}
			if col == 2 && row >= 0 && row < len(summary.Outcomes) {
				if summary.Outcomes[row].Decision.Due {
					return base.Inherit(theme.Due)
				}
				return base.Inherit(theme.Skipped)
			}
			return base
		})

	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("Backport reminders"),
		t.String(),
		theme.Faint.Render(totals(summary)),
	)
}

// PreviewModel is the interactive bubbletea model for browsing a summary
type PreviewModel struct {
	summary  *workflow.Summary
	theme    *ColorblindFriendlyTheme
	keyMap   KeyMap
	help     help.Model
	table    table.Model
	showBody bool
	showHelp bool
}

// NewPreviewModel creates a model over summary.
func NewPreviewModel(summary *workflow.Summary) *PreviewModel {
	theme := NewTheme()

	columns := []table.Column{
		{Title: headers[0], Width: 6},
		{Title: headers[1], Width: 40},
		{Title: headers[2], Width: 24},
		{Title: headers[3], Width: 5},
		{Title: headers[4], Width: 19},
		{Title: headers[5], Width: 10},
	}
	var rows []table.Row
	for _, r := range rowsFor(summary) {
		rows = append(rows, table.Row(r))
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)
	t.SetStyles(theme.TableStyles())

	helpModel := help.New()
	helpModel.Styles.ShortKey = theme.Bold
	helpModel.Styles.ShortSeparator = theme.Faint

	return &PreviewModel{
		summary: summary,
		theme:   theme,
		keyMap:  DefaultKeyMap(),
		help:    helpModel,
		table:   t,
	}
}

// Init initializes the model
func (m *PreviewModel) Init() tea.Cmd {
	return nil
}

// Update handles UI updates
func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keyMap.Select):
			m.showBody = !m.showBody
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-10, 3))
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the outcome under the cursor.
func (m *PreviewModel) Selected() (workflow.Outcome, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.summary.Outcomes) {
		return workflow.Outcome{}, false
	}
	return m.summary.Outcomes[i], true
}

// View renders the UI
func (m *PreviewModel) View() string {
	parts := []string{
		m.theme.Title.Render("Backport reminders"),
		m.table.View(),
		m.theme.Faint.Render(totals(m.summary)),
	}

	if m.showBody {
		if o, ok := m.Selected(); ok {
			body := o.Body
			if body == "" {
				body = "No reminder for " + o.Decision.Label()
			}
			parts = append(parts, "", m.theme.Subtitle.Render(fmt.Sprintf("#%d", o.Candidate.Number)), strings.TrimRight(body, "\n"))
		}
	}

	if m.showHelp {
		parts = append(parts, "", m.help.ShortHelpView([]key.Binding{
			m.keyMap.Up, m.keyMap.Down, m.keyMap.Select, m.keyMap.Help, m.keyMap.Quit,
		}))
	} else {
		parts = append(parts, m.theme.Faint.Render("? for help • q to quit"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RunPreview runs the interactive preview
func RunPreview(summary *workflow.Summary) error {
	p := tea.NewProgram(NewPreviewModel(summary), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
