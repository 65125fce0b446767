package main

import (
	"fmt"

	"doctemplates/cmd/templc/macro"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse compiled templates interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := load(flagFiles, nil)
		if err != nil {
			return err
		}
		reload := func() (*workspace, error) { return load(flagFiles, nil) }
		p := tea.NewProgram(newBrowseModel(ws, reload), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

type browseFocus int

const (
	focusTable browseFocus = iota
	focusDetail
)

var (
	styleBase = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	styleFocused = styleBase.
			BorderForeground(lipgloss.Color("99"))

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	styleErr = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Padding(0, 1)
)

// browseChrome is the number of lines used by the title, borders and help.
const browseChrome = 6

type browseModel struct {
	table    table.Model
	detail   viewport.Model
	ws       *workspace
	selected macro.Identifier
	focus    browseFocus
	reload   func() (*workspace, error)
	errMsg   string
}

func newBrowseModel(ws *workspace, reload func() (*workspace, error)) browseModel {
	columns := []table.Column{
		{Title: summaryColumns[0], Width: 24},
		{Title: summaryColumns[1], Width: 6},
		{Title: summaryColumns[2], Width: 5},
		{Title: summaryColumns[3], Width: 4},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(toRows(summarize(ws.table))),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("99"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := browseModel{
		table:  t,
		detail: viewport.New(60, 16),
		ws:     ws,
		focus:  focusTable,
		reload: reload,
	}
	m.syncDetail()
	return m
}

func toRows(rows []templateSummary) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row(r.cells())
	}
	return out
}

// syncDetail points the detail pane at the template under the table cursor.
func (m *browseModel) syncDetail() {
	names := m.ws.table.Names()
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(names) {
		m.selected = ""
		m.detail.SetContent("")
		return
	}
	m.selected = names[idx]
	m.detail.SetContent(renderDetail(m.ws.table[m.selected], m.ws.source(m.selected)))
	m.detail.GotoTop()
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := msg.Height - browseChrome
		if h < 3 {
			h = 3
		}
		m.table.SetHeight(h)
		m.detail.Height = h
		if w := msg.Width - lipgloss.Width(m.table.View()) - 4; w > 10 {
			m.detail.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.focus == focusTable {
				m.focus = focusDetail
				m.table.Blur()
			} else {
				m.focus = focusTable
				m.table.Focus()
			}
			return m, nil
		case "r":
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == focusDetail {
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	before := m.table.Cursor()
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before {
		m.syncDetail()
	}
	return m, cmd
}

// refresh recompiles the template files. On failure the previous table stays
// on screen and the error is shown below it.
func (m *browseModel) refresh() {
	if m.reload == nil {
		return
	}
	ws, err := m.reload()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.ws = ws
	m.table.SetRows(toRows(summarize(ws.table)))
	if m.table.Cursor() >= len(ws.table) {
		m.table.SetCursor(0)
	}
	m.syncDetail()
}

func (m browseModel) View() string {
	title := styleTitle.Render(fmt.Sprintf("%s  %d templates", appName, len(m.ws.table)))

	tableStyle, detailStyle := styleFocused, styleBase
	if m.focus == focusDetail {
		tableStyle, detailStyle = styleBase, styleFocused
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		tableStyle.Render(m.table.View()),
		detailStyle.Render(m.detail.View()),
	)

	help := styleHelp.Render("↑/↓  navigate    tab  switch pane    r  recompile    q  quit")
	if m.errMsg != "" {
		return title + "\n" + panes + "\n" + styleErr.Render(m.errMsg) + "\n" + help
	}
	return title + "\n" + panes + "\n" + help
}
