// Package wizard implements the interactive `verctl init` flow that edits
// the option defaults before they are written to .verctl.yaml.
package wizard

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/verctl/internal/application"
)

type (
	wizardState int

	initWizardModel struct {
		state     wizardState
		tagPrefix string
		envPrefix string
		format    int
		strip     int
		cursor    int
		confirmed bool
		aborted   bool
	}
)

const (
	stateIntro wizardState = iota
	stateEdit
	stateConfirm
)

const (
	rowTagPrefix = iota
	rowEnvPrefix
	rowFormat
	rowStrip
	rowCount
)

var formats = []string{"json", "env", "csv", "text"}

var cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true)

// Run drives the wizard and returns the (possibly edited) defaults plus
// whether the user confirmed writing them.
func Run(defaults application.Defaults, stdout io.Writer, stdin io.Reader) (application.Defaults, bool, error) {
	return runInitWizard(defaults, stdout, stdin)
}

func runInitWizard(defaults application.Defaults, stdout io.Writer, stdin io.Reader) (application.Defaults, bool, error) {
	model := newInitWizardModel(defaults)
	program := tea.NewProgram(model, tea.WithInput(stdin), tea.WithOutput(stdout))
	res, err := program.Run()
	if err != nil {
		return defaults, false, err
	}
	finalModel, ok := res.(*initWizardModel)
	if !ok {
		return defaults, false, fmt.Errorf("unexpected wizard state")
	}
	if finalModel.aborted || !finalModel.confirmed {
		return defaults, false, nil
	}
	return finalModel.toDefaults(), true, nil
}

func newInitWizardModel(defaults application.Defaults) *initWizardModel {
	format := 0
	for i, f := range formats {
		if f == defaults.Format {
			format = i
		}
	}
	envPrefix := defaults.EnvPrefix
	if envPrefix == "" {
		envPrefix = "VERSION_"
	}
	return &initWizardModel{
		state:     stateIntro,
		tagPrefix: defaults.TagPrefix,
		envPrefix: envPrefix,
		format:    format,
		strip:     defaults.StripBranchComponents,
	}
}

func (m *initWizardModel) Init() tea.Cmd {
	return nil
}

func (m *initWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	case "enter":
		switch m.state {
		case stateIntro:
			m.state = stateEdit
		case stateEdit:
			m.state = stateConfirm
		case stateConfirm:
			m.confirmed = true
			return m, tea.Quit
		}
		return m, nil
	case "esc":
		if m.state == stateConfirm {
			m.state = stateEdit
		}
		return m, nil
	}

	switch m.state {
	case stateIntro, stateConfirm:
		if keyMsg.String() == "q" {
			m.aborted = true
			return m, tea.Quit
		}
	case stateEdit:
		m.updateEdit(keyMsg)
	}
	return m, nil
}

func (m *initWizardModel) updateEdit(msg tea.KeyMsg) {
	switch msg.String() {
	case "up":
		m.moveCursor(-1)
	case "down", "tab":
		m.moveCursor(1)
	case "left":
		m.adjustSelection(-1)
	case "right":
		m.adjustSelection(1)
	case "backspace":
		switch m.cursor {
		case rowTagPrefix:
			m.tagPrefix = trimLast(m.tagPrefix)
		case rowEnvPrefix:
			m.envPrefix = trimLast(m.envPrefix)
		}
	default:
		if msg.Type != tea.KeyRunes {
			return
		}
		switch m.cursor {
		case rowTagPrefix:
			m.tagPrefix += string(msg.Runes)
		case rowEnvPrefix:
			m.envPrefix += string(msg.Runes)
		}
	}
}

func (m *initWizardModel) View() string {
	switch m.state {
	case stateIntro:
		return m.viewIntro()
	case stateEdit:
		return m.viewEdit()
	case stateConfirm:
		return m.viewConfirm()
	default:
		return ""
	}
}

func (m *initWizardModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor > rowCount-1 {
		m.cursor = rowCount - 1
	}
}

func (m *initWizardModel) adjustSelection(delta int) {
	switch m.cursor {
	case rowFormat:
		m.format = (m.format + delta + len(formats)) % len(formats)
	case rowStrip:
		m.strip += delta
		if m.strip < 0 {
			m.strip = 0
		}
	}
}

func (m *initWizardModel) viewIntro() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nverctl init wizard\n\n")
	fmt.Fprintf(&b, "The wizard records defaults for tag matching and output so the\nresolve commands need fewer flags.\n\n")
	fmt.Fprintf(&b, "Press Enter to continue, or Ctrl+C to cancel.\n")
	return b.String()
}

func (m *initWizardModel) viewEdit() string {
	rows := []struct {
		label string
		value string
	}{
		{"tag prefix", m.tagPrefix},
		{"env prefix", m.envPrefix},
		{"format (←/→)", formats[m.format]},
		{"strip branch components (←/→)", fmt.Sprintf("%d", m.strip)},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\nReview and adjust defaults\n\n")
	fmt.Fprintf(&b, "Use ↑/↓ to move, type to edit text fields.\n\n")
	for idx, row := range rows {
		prefix := "  "
		label := row.label
		if m.cursor == idx {
			prefix = cursorStyle.Render("> ")
			label = cursorStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s%s: %s\n", prefix, label, row.value)
	}
	fmt.Fprintf(&b, "\nEnter to continue, Ctrl+C to cancel.\n")
	return b.String()
}

func (m *initWizardModel) viewConfirm() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nReady to write configuration\n\n")
	fmt.Fprintf(&b, "  tag_prefix: %s\n", m.tagPrefix)
	fmt.Fprintf(&b, "  env_prefix: %s\n", m.envPrefix)
	fmt.Fprintf(&b, "  format: %s\n", formats[m.format])
	fmt.Fprintf(&b, "  strip_branch_components: %d\n", m.strip)
	fmt.Fprintf(&b, "\nPress Enter to save, Esc to go back, q to cancel.\n")
	return b.String()
}

func (m *initWizardModel) toDefaults() application.Defaults {
	return application.Defaults{
		TagPrefix:             m.tagPrefix,
		EnvPrefix:             m.envPrefix,
		Format:                formats[m.format],
		StripBranchComponents: m.strip,
	}
}

func trimLast(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}
