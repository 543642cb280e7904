package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-patch/patch"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	defectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB347"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFile modelState = iota
	stateViewReport
)

type inspectorModel struct {
	err      error
	root     string
	files    []string
	filter   textinput.Model
	selected int
	state    modelState

	path   string
	report *patch.Report
	result string
}

type candidatesMsg struct {
	err   error
	files []string
}

type reportMsg struct {
	err    error
	path   string
	report *patch.Report
}

type patchResultMsg struct {
	err     error
	patched bool
}

func newInspectorModel(root string) *inspectorModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	return &inspectorModel{
		root:   root,
		filter: ti,
		state:  stateSelectFile,
	}
}

func (m *inspectorModel) Init() tea.Cmd {
	return m.loadCandidates
}

func (m *inspectorModel) loadCandidates() tea.Msg {
	files, err := patch.Candidates(m.root)
	if err != nil {
		return candidatesMsg{err: err}
	}
	if len(files) == 0 {
		return candidatesMsg{err: fmt.Errorf("no %s files under %s", patch.CandidateSuffix, m.root)}
	}
	return candidatesMsg{files: files}
}

func (m *inspectorModel) loadReport(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return reportMsg{err: err}
		}
		rep, err := patch.Inspect(data)
		if err != nil {
			return reportMsg{err: err}
		}
		return reportMsg{path: path, report: rep}
	}
}

func (m *inspectorModel) applyPatch() tea.Msg {
	patched, err := patch.File(m.path)
	return patchResultMsg{patched: patched, err: err}
}

// visible returns the candidate files matching the current filter.
func (m *inspectorModel) visible() []string {
	q := strings.ToLower(m.filter.Value())
	if q == "" {
		return m.files
	}
	var out []string
	for _, f := range m.files {
		if strings.Contains(strings.ToLower(f), q) {
			out = append(out, f)
		}
	}
	return out
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			// In the file list "q" belongs to the filter input.
			if m.state == stateViewReport {
				m.state = stateSelectFile
				m.report = nil
				m.result = ""
				m.err = nil
				return m, nil
			}

		case "up", "ctrl+p":
			if m.state == stateSelectFile && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.state == stateSelectFile && m.selected < len(m.visible())-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			if m.state == stateSelectFile {
				files := m.visible()
				if m.selected < len(files) {
					return m, m.loadReport(files[m.selected])
				}
			}
			return m, nil

		case "p":
			if m.state == stateViewReport && m.report != nil && m.report.NeedsPatch() {
				return m, m.applyPatch
			}

		case "esc":
			if m.state == stateViewReport {
				m.state = stateSelectFile
				m.report = nil
				m.result = ""
				m.err = nil
				return m, nil
			}
			return m, tea.Quit
		}

	case candidatesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.files = msg.files

	case reportMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.path = msg.path
		m.report = msg.report
		m.state = stateViewReport
		m.result = ""

	case patchResultMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.patched {
			m.result = "patched"
		} else {
			m.result = "no changes needed"
		}
		// Re-read so the view reflects the rewritten bytes.
		return m, m.loadReport(m.path)
	}

	if m.state == stateSelectFile {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.selected >= len(m.visible()) {
			m.selected = 0
		}
		return m, cmd
	}

	return m, nil
}

func (m *inspectorModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			helpStyle.Render("ctrl+c quit")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmpatch"))
	b.WriteString(" ")
	b.WriteString(m.root)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFile:
		if len(m.files) == 0 {
			b.WriteString("Scanning for modules...")
			return b.String()
		}
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, f := range m.visible() {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f))
			} else {
				b.WriteString("  " + fileStyle.Render(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter inspect • esc quit"))

	case stateViewReport:
		m.viewReport(&b)
	}

	return b.String()
}

func (m *inspectorModel) viewReport(b *strings.Builder) {
	rep := m.report
	b.WriteString(fileStyle.Render(m.path))
	b.WriteString("\n\n")

	b.WriteString("Sections:\n")
	for _, s := range rep.Sections {
		fmt.Fprintf(b, "  %-10s id=%-2d off=%-8d %d bytes\n",
			sectionStyle.Render(s.Name), s.ID, s.Offset, s.Size)
	}

	if len(rep.Tables) > 0 {
		b.WriteString("\nTables:\n")
		for i, t := range rep.Tables {
			line := fmt.Sprintf("  #%d elem=0x%02x initial=%d", i, t.ElemType, t.Initial)
			if t.Max != nil {
				line += fmt.Sprintf(" max=%d", *t.Max)
			} else {
				line += " max=none"
			}
			if t.NeedsWiden {
				line += fmt.Sprintf("  → widen max to %d", t.NewMax)
				b.WriteString(defectStyle.Render(line))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	}

	if len(rep.Exports) > 0 {
		b.WriteString("\nExports:\n")
		for _, e := range rep.Exports {
			line := fmt.Sprintf("  %s kind=%d index=%d", e.Name, e.Kind, e.Index)
			switch {
			case e.Retarget != nil && e.Fits:
				line += fmt.Sprintf("  → retarget to %d", *e.Retarget)
				b.WriteString(defectStyle.Render(line))
			case e.Retarget != nil:
				line += fmt.Sprintf("  → wants %d (does not fit in place)", *e.Retarget)
				b.WriteString(errorStyle.Render(line))
			default:
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.result != "":
		b.WriteString(okStyle.Render(m.result))
	case rep.NeedsPatch():
		b.WriteString(defectStyle.Render("module needs patching"))
	default:
		b.WriteString(okStyle.Render("module is healthy"))
	}
	b.WriteString("\n\n")
	if rep.NeedsPatch() {
		b.WriteString(helpStyle.Render("p patch • esc back • ctrl+c quit"))
	} else {
		b.WriteString(helpStyle.Render("esc back • ctrl+c quit"))
	}
}

func runInteractive(root string) error {
	p := tea.NewProgram(newInspectorModel(root), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
