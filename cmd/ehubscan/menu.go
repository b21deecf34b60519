package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Menu styling
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	resultStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

// menuItem is one selectable action.
type menuItem struct {
	label string
	run   func(a *app) (string, error)
}

func menuItems() []menuItem {
	return []menuItem{
		{label: "Run course discovery", run: runDiscovery},
		{label: "List stored sessions", run: listSessions},
		{label: "Show signed-in user", run: showUser},
		{label: "Re-authenticate (fresh login)", run: reauthenticate},
		{label: "Clear my stored session", run: clearSession},
	}
}

// actionDoneMsg carries the result of a menu action back into the model.
type actionDoneMsg struct {
	output string
	err    error
}

// menuModel is the Bubble Tea model for the interactive menu.
type menuModel struct {
	app     *app
	items   []menuItem
	cursor  int
	spinner spinner.Model

	busy       bool
	busyLabel  string
	lastOutput string
	lastErr    error
	quitting   bool
}

func newMenuModel(a *app) menuModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return menuModel{
		app:     a,
		items:   menuItems(),
		spinner: s,
	}
}

func (m menuModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			// Actions drive a real browser; nothing to interrupt safely.
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			item := m.items[m.cursor]
			m.busy = true
			m.busyLabel = item.label
			m.lastOutput = ""
			m.lastErr = nil
			return m, runAction(m.app, item)
		}

	case actionDoneMsg:
		m.busy = false
		m.busyLabel = ""
		m.lastOutput = msg.output
		m.lastErr = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m menuModel) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ehubscan — ALX eHub course discovery"))
	b.WriteString("\n")

	for i, item := range m.items {
		cursor := "  "
		label := item.label
		if i == m.cursor {
			cursor = "> "
			label = selectedStyle.Render(label)
		}
		b.WriteString(cursor + label + "\n")
	}

	b.WriteString(dimStyle.Render("\n↑/↓ move · enter select · q quit\n"))

	if m.busy {
		b.WriteString(fmt.Sprintf("\n%s %s...\n", m.spinner.View(), m.busyLabel))
	}
	if m.lastErr != nil {
		b.WriteString(resultStyle.Render(errorStyle.Render("Error: " + m.lastErr.Error())))
		b.WriteString("\n")
	} else if m.lastOutput != "" {
		b.WriteString(resultStyle.Render(m.lastOutput))
		b.WriteString("\n")
	}
	return b.String()
}

// runAction executes a menu action off the UI loop and reports back.
func runAction(a *app, item menuItem) tea.Cmd {
	return func() tea.Msg {
		output, err := item.run(a)
		return actionDoneMsg{output: output, err: err}
	}
}

func runDiscovery(a *app) (string, error) {
	result := a.authenticator.EnsureLoggedIn()
	if !result.OK() {
		return "", fmt.Errorf("authentication failed: %s", result.Message)
	}

	list, err := a.finder.Discover(a.explore)
	if err != nil {
		return "", err
	}
	if err := a.saveReport(list); err != nil {
		return "", err
	}
	return summarize(list) + "\nReport written to " + a.output, nil
}

func listSessions(a *app) (string, error) {
	return strings.Join(sessionLines(a.store), "\n"), nil
}

func showUser(a *app) (string, error) {
	result := a.authenticator.EnsureLoggedIn()
	if !result.OK() {
		return "", fmt.Errorf("authentication failed: %s", result.Message)
	}

	info := a.authenticator.UserInfo()
	if len(info) == 0 {
		return "Signed in, but no profile details were found on the dashboard.", nil
	}
	var b strings.Builder
	for _, key := range []string{"name", "points", "profile_image"} {
		if value, ok := info[key]; ok {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func reauthenticate(a *app) (string, error) {
	a.authenticator.Logout()
	result := a.authenticator.EnsureLoggedIn()
	if !result.OK() {
		return "", fmt.Errorf("authentication failed: %s", result.Message)
	}
	return fmt.Sprintf("Signed in as %s (%s)", result.Identity, result.Status), nil
}

func clearSession(a *app) (string, error) {
	if a.store.Invalidate(a.authenticator.Identity()) {
		return "Stored session cleared.", nil
	}
	return "No stored session to clear.", nil
}

// runMenu drives the interactive menu until the user quits or the
// context is cancelled.
func runMenu(ctx context.Context, a *app) error {
	program := tea.NewProgram(newMenuModel(a))

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("menu error: %w", err)
	}
	return nil
}
