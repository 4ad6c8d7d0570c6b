// Package tui is the terminal front-end: two drug name fields, a spinner while
// the labels are fetched, and a scrollable report with the same excerpts and
// messages as the web page.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/giygas/druglabel-checker/interactions"
	"github.com/giygas/druglabel-checker/interfaces"
	"github.com/giygas/druglabel-checker/render"
)

// MissingNamesWarning is shown when a check is submitted without both names.
const MissingNamesWarning = "Please enter both drug names before checking interactions."

const (
	defaultWidth  = 80
	defaultHeight = 24
	// title and help lines around the viewport
	chromeHeight = 6
)

// Checker runs an interaction check for a pair of drugs.
type Checker interface {
	Check(ctx context.Context, drugA, drugB string) (interactions.Report, error)
}

type state int

const (
	stateInput state = iota
	stateLoading
	stateResult
)

type checkDoneMsg struct {
	report interactions.Report
	err    error
}

// Model is the bubbletea model of the checker.
type Model struct {
	ctx       context.Context
	checker   Checker
	validator interfaces.NameValidator

	inputs  [2]textinput.Model
	focus   int
	spinner spinner.Model
	results viewport.Model

	state   state
	warning string
	content string
	drugA   string
	drugB   string

	width  int
	height int
}

// NewModel creates the model. ctx bounds every check started from the UI.
func NewModel(ctx context.Context, checker Checker, validator interfaces.NameValidator) *Model {
	m := &Model{
		ctx:       ctx,
		checker:   checker,
		validator: validator,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(labelStyle)),
		results:   viewport.New(defaultWidth, defaultHeight-chromeHeight),
		width:     defaultWidth,
		height:    defaultHeight,
	}

	placeholders := [2]string{"e.g., warfarin", "e.g., trimethoprim-sulfamethoxazole"}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 100
		in.Width = 40
		m.inputs[i] = in
	}
	m.inputs[0].Focus()

	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state {
		case stateInput:
			return m.updateInput(msg)
		case stateResult:
			return m.updateResult(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case checkDoneMsg:
		m.showResult(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down", "shift+tab", "up":
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, nil
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "n":
		m.reset()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.results.Width = width
	m.results.Height = max(height-chromeHeight, 1)
	if m.state == stateResult {
		m.results.SetContent(m.wrap(m.content))
	}
}

// submit validates both names and starts the check.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	a := strings.TrimSpace(m.inputs[0].Value())
	b := strings.TrimSpace(m.inputs[1].Value())
	if a == "" || b == "" {
		m.warning = MissingNamesWarning
		return m, nil
	}

	var err error
	if a, err = m.validator.ValidateDrugName(a); err != nil {
		m.warning = err.Error()
		return m, nil
	}
	if b, err = m.validator.ValidateDrugName(b); err != nil {
		m.warning = err.Error()
		return m, nil
	}

	m.warning = ""
	m.drugA, m.drugB = a, b
	m.state = stateLoading
	return m, tea.Batch(m.spinner.Tick, m.runCheck(a, b))
}

func (m *Model) runCheck(a, b string) tea.Cmd {
	return func() tea.Msg {
		report, err := m.checker.Check(m.ctx, a, b)
		return checkDoneMsg{report: report, err: err}
	}
}

func (m *Model) showResult(msg checkDoneMsg) {
	m.state = stateResult
	if msg.err != nil {
		m.content = errorStyle.Render(render.LookupFailed) + "\n\n" + msg.err.Error()
	} else {
		m.content = reportText(msg.report)
	}
	m.results.SetContent(m.wrap(m.content))
	m.results.GotoTop()
}

func (m *Model) reset() {
	m.state = stateInput
	m.content = ""
	m.warning = ""
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.setFocus(0)
}

func (m *Model) wrap(s string) string {
	return lipgloss.NewStyle().Width(max(m.width-2, 20)).Render(s)
}

// reportText lays out the excerpts of both drugs followed by the cross-mention
// result, like the web page does.
func reportText(report interactions.Report) string {
	var b strings.Builder
	for _, drug := range []interactions.DrugLabel{report.DrugA, report.DrugB} {
		b.WriteString(drugStyle.Render(drug.Name))
		b.WriteString("\n")
		if drug.Sections.IsEmpty() {
			b.WriteString(warningStyle.Render(render.NoLabelWeb))
			b.WriteString("\n\n")
			continue
		}
		for _, e := range render.Excerpts(drug.Sections, render.WebLimit) {
			b.WriteString(sectionStyle.Render(e.Title))
			b.WriteString("\n")
			b.WriteString(e.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(render.TruncationNotice))
	b.WriteString("\n\n")

	if len(report.Notes) > 0 {
		b.WriteString(warningStyle.Render(render.SignalsFound))
		b.WriteString("\n")
		b.WriteString(render.SignalsFoundHint)
		b.WriteString("\n")
		for _, note := range report.Notes {
			fmt.Fprintf(&b, " - %s\n", note)
		}
	} else {
		b.WriteString(successStyle.Render(render.NoSignals))
		b.WriteString("\n")
		b.WriteString(render.NoSignalsHint)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(render.NextStep)
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(render.Disclaimer))
	return b.String()
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(render.Banner))
	b.WriteString("\n")

	switch m.state {
	case stateInput:
		b.WriteString(labelStyle.Render("First drug name"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Second drug name"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")
		if m.warning != "" {
			b.WriteString("\n")
			b.WriteString(warningStyle.Render(m.warning))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("tab: switch field • enter: check interactions • esc: quit"))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render(render.Disclaimer))

	case stateLoading:
		fmt.Fprintf(&b, "%s Fetching FDA labels for %s and %s...", m.spinner.View(), m.drugA, m.drugB)

	case stateResult:
		b.WriteString(m.results.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓: scroll • n: new check • q: quit"))
	}

	return b.String()
}
