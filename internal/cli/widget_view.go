package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"calorie-counter/internal/cli/formatter"
	"calorie-counter/internal/models"
	"calorie-counter/internal/widget"
)

type widgetKeyMap struct {
	Submit  key.Binding
	Up      key.Binding
	Down    key.Binding
	Remove  key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

var widgetKeys = widgetKeyMap{
	Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "look up")),
	Up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "select")),
	Down:    key.NewBinding(key.WithKeys("down")),
	Remove:  key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "remove")),
	Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// lookupDoneMsg carries a finished lookup back into the update loop.
type lookupDoneMsg struct {
	records []models.FoodRecord
	err     error
}

type logRow struct {
	date  string
	index int
	entry models.FoodEntry
}

type widgetModel struct {
	ctx      context.Context
	ctrl     *widget.Controller
	input    textinput.Model
	spinner  spinner.Model
	cursor   int
	quitting bool
}

func newWidgetModel(ctx context.Context, ctrl *widget.Controller) widgetModel {
	ti := textinput.New()
	ti.Placeholder = "Enter a food item (e.g. 1 apple)"
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StyleBlue

	return widgetModel{
		ctx:     ctx,
		ctrl:    ctrl,
		input:   ti,
		spinner: sp,
	}
}

func (m widgetModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m widgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, widgetKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, widgetKeys.Submit):
			return m.submit()
		case key.Matches(msg, widgetKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, widgetKeys.Down):
			if m.cursor < len(m.rows())-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, widgetKeys.Remove):
			return m.remove()
		case key.Matches(msg, widgetKeys.Dismiss):
			_ = m.ctrl.Dismiss()
			return m, nil
		}

	case lookupDoneMsg:
		_ = m.ctrl.Complete(m.ctx, msg.records, msg.err)
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Status() != widget.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m widgetModel) submit() (tea.Model, tea.Cmd) {
	query := m.input.Value()
	if err := m.ctrl.Begin(query); err != nil {
		// Busy or blank: the controller state already says so.
		return m, nil
	}
	m.input.SetValue("")
	return m, tea.Batch(m.spinner.Tick, lookupCmd(m.ctx, m.ctrl, query))
}

func lookupCmd(ctx context.Context, ctrl *widget.Controller, query string) tea.Cmd {
	return func() tea.Msg {
		records, err := ctrl.Lookup(ctx, query)
		return lookupDoneMsg{records: records, err: err}
	}
}

func (m widgetModel) remove() (tea.Model, tea.Cmd) {
	rows := m.rows()
	if len(rows) == 0 {
		return m, nil
	}
	r := rows[m.cursor]
	_ = m.ctrl.Remove(m.ctx, r.date, r.index)
	m.clampCursor()
	return m, nil
}

// rows flattens the log in display order.
func (m widgetModel) rows() []logRow {
	var rows []logRow
	for _, day := range m.ctrl.State().Days {
		for i, e := range day.Entries {
			rows = append(rows, logRow{date: day.Date, index: i, entry: e})
		}
	}
	return rows
}

func (m *widgetModel) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m widgetModel) View() string {
	if m.quitting {
		return ""
	}

	st := m.ctrl.State()
	var b strings.Builder

	b.WriteString(formatter.Header("Calorie Counter"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch st.Status {
	case widget.StatusLoading:
		fmt.Fprintf(&b, "%s Looking up %q...\n\n", m.spinner.View(), st.Query)
	case widget.StatusError:
		b.WriteString(formatter.Error(st.Error))
		b.WriteString("\n\n")
	case widget.StatusSuccess:
		b.WriteString(formatter.StyleGreen.Render(fmt.Sprintf("Logged %d item(s).", len(st.Results))))
		b.WriteString("\n\n")
	}

	if len(st.Days) == 0 {
		b.WriteString(formatter.Dim("No food logged yet."))
		b.WriteString("\n")
	}

	row := 0
	for _, day := range st.Days {
		b.WriteString(formatter.Bold(day.Date))
		b.WriteString("\n")
		for _, e := range day.Entries {
			marker := "  "
			if row == m.cursor {
				marker = formatter.StyleBlue.Render("▸ ")
			}
			fmt.Fprintf(&b, "%sFood: %s  %s\n", marker, e.Name,
				formatter.Dim(models.FormatCalories(e.Calories)+" kcal"))
			row++
		}
		b.WriteString(formatter.FormatTotal(day.TotalCalories))
		b.WriteString("\n\n")
	}

	b.WriteString(formatter.Dim(helpLine()))
	b.WriteString("\n")
	return b.String()
}

func helpLine() string {
	bindings := []key.Binding{
		widgetKeys.Submit,
		widgetKeys.Up,
		widgetKeys.Remove,
		widgetKeys.Dismiss,
		widgetKeys.Quit,
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func newWidgetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "widget",
		Aliases: []string{"tui"},
		Short:   "Open the interactive calorie widget",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWidget(cmd, app)
		},
	}
}

func runWidget(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if err := app.open(ctx); err != nil {
		return err
	}

	run := app.RunProgram
	if run == nil {
		run = runProgram
	}
	return run(newWidgetModel(ctx, app.widget), cmd.InOrStdin(), cmd.OutOrStdout())
}

func runProgram(m tea.Model, in io.Reader, out io.Writer) error {
	_, err := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen()).Run()
	return err
}
