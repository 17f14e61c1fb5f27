package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-componentize/componentize"
	"github.com/wippyai/wasm-componentize/errors"
	"github.com/wippyai/wasm-componentize/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)

	droppedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type view int

const (
	viewSections view = iota
	viewImports
	viewExports
)

var viewTitles = []string{"Sections", "Renamed imports", "World exports"}

type interactiveModel struct {
	err      error
	plan     *componentize.Plan
	tables   []table.Model
	filename string
	opts     options
	active   view
}

type planMsg struct {
	err    error
	plan   *componentize.Plan
	tables []table.Model
}

func runInteractive(o options) error {
	m := &interactiveModel{filename: o.in, opts: o}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		return err
	}
	// The plan error is shown in the TUI; repeat it for the exit status.
	return m.err
}

func (m *interactiveModel) Init() tea.Cmd {
	o := m.opts
	return func() tea.Msg {
		return loadPlan(o)
	}
}

func loadPlan(o options) tea.Msg {
	input, err := os.ReadFile(o.in)
	if err != nil {
		return planMsg{err: errors.Load("read input "+o.in, err)}
	}
	eng, err := newEngine(o)
	if err != nil {
		return planMsg{err: err}
	}
	var plan *componentize.Plan
	if o.command {
		plan, err = eng.PlanCommand(input)
	} else {
		plan, err = eng.Plan(input)
	}
	if err != nil {
		return planMsg{err: err}
	}
	tables, err := planTables(plan)
	if err != nil {
		return planMsg{err: err}
	}
	return planMsg{plan: plan, tables: tables}
}

func planTables(p *componentize.Plan) ([]table.Model, error) {
	secRows, err := sectionRows(p.Input)
	if err != nil {
		return nil, err
	}
	tables := []table.Model{
		newTable([]table.Column{
			{Title: "ID", Width: 4},
			{Title: "Section", Width: 16},
			{Title: "Name", Width: 30},
			{Title: "Offset", Width: 10},
			{Title: "Size", Width: 10},
		}, secRows),
		newTable([]table.Column{
			{Title: "Module", Width: 28},
			{Title: "Name", Width: 30},
			{Title: "Kind", Width: 8},
			{Title: "New name", Width: 30},
		}, renameRows(p.Renamed)),
		newTable([]table.Column{
			{Title: "Export", Width: 40},
			{Title: "Kind", Width: 10},
			{Title: "Status", Width: 10},
		}, exportRows(p)),
	}
	return tables, nil
}

func newTable(cols []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))
	t.SetStyles(s)
	return t
}

func sectionRows(data []byte) ([]table.Row, error) {
	h, err := wasm.ReadHeader(data)
	if err != nil {
		return nil, err
	}
	var rows []table.Row
	for sec, err := range wasm.Sections(data) {
		if err != nil {
			return nil, err
		}
		custom := ""
		if name, ok, err := sec.CustomName(data); err != nil {
			return nil, err
		} else if ok {
			custom = name
		}
		rows = append(rows, table.Row{
			strconv.Itoa(int(sec.ID)),
			wasm.SectionName(h.Encoding, sec.ID),
			custom,
			fmt.Sprintf("0x%x", sec.Start),
			strconv.Itoa(sec.Size()),
		})
	}
	return rows, nil
}

func renameRows(renamed []componentize.Rename) []table.Row {
	rows := make([]table.Row, 0, len(renamed))
	for _, r := range renamed {
		rows = append(rows, table.Row{r.FromModule, r.FromName, wasm.KindName(r.Kind), r.ToName})
	}
	return rows
}

func exportRows(p *componentize.Plan) []table.Row {
	rows := make([]table.Row, 0, len(p.Kept)+len(p.Dropped))
	for _, e := range p.Kept {
		rows = append(rows, table.Row{e.Name, e.Kind.String(), "kept"})
	}
	for _, name := range p.Dropped {
		rows = append(rows, table.Row{name, "instance", "dropped"})
	}
	return rows
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "right", "l":
			if len(m.tables) > 0 {
				m.active = (m.active + 1) % view(len(m.tables))
			}
			return m, nil
		case "shift+tab", "left", "h":
			if len(m.tables) > 0 {
				m.active = (m.active + view(len(m.tables)) - 1) % view(len(m.tables))
			}
			return m, nil
		}
	case planMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.plan = msg.plan
		m.tables = msg.tables
		return m, nil
	}

	if len(m.tables) > 0 {
		var cmd tea.Cmd
		m.tables[m.active], cmd = m.tables[m.active].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.plan == nil {
		return "Planning..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Componentize"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label + ": "))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	field("path", m.plan.State.String())
	if m.plan.State != componentize.StateAlreadyComponent && m.plan.State != componentize.StateCommand {
		d := m.plan.Detection
		version := d.Version
		if version == "" {
			version = "-"
		}
		field("generation", fmt.Sprintf("%s (%s, %s)", d.Generation, version, d.Source))
	}
	if m.plan.Namespace != "" {
		field("namespace", m.plan.Namespace)
	}
	if m.plan.World != "" {
		field("world", m.plan.World)
	}
	if len(m.plan.Dropped) > 0 {
		b.WriteString(labelStyle.Render("dropped: "))
		b.WriteString(droppedStyle.Render(strings.Join(m.plan.Dropped, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, title := range viewTitles {
		if view(i) == m.active {
			b.WriteString(activeTabStyle.Render(title))
		} else {
			b.WriteString(tabStyle.Render(title))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.tables[m.active].View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓ scroll • tab switch view • q quit"))
	return b.String()
}
