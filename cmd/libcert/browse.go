package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/libcert/pkg/liberty"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <library file>",
		Short: "Browse the extracted tables interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.parseOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := tea.NewProgram(newBrowseModel(args[0], res),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(2)

	detailBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1).
			MarginLeft(2)

	axisStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	filterStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type browseKeyMap struct {
	Filter key.Binding
	Open   key.Binding
	Back   key.Binding
	Up     key.Binding
	Down   key.Binding
	Quit   key.Binding
}

var browseKeys = browseKeyMap{
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show values"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Open, k.Back, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.Filter, k.Quit},
	}
}

type browseModel struct {
	name      string
	model     *liberty.LibraryModel
	stats     liberty.Stats
	refs      []liberty.TableRef // every leaf, flatten order
	visible   []liberty.TableRef // leaves matching the filter
	table     table.Model
	filter    textinput.Model
	help      help.Model
	keys      browseKeyMap
	detail    *liberty.TableRef
	width     int
	height    int
	filtering bool
}

func newBrowseModel(name string, res *liberty.Result) browseModel {
	ti := textinput.New()
	ti.Placeholder = "cell, pin or table type"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "filter: "

	columns := []table.Column{
		{Title: "Cell", Width: 14},
		{Title: "Pin", Width: 6},
		{Title: "Related", Width: 8},
		{Title: "Timing", Width: 16},
		{Title: "When", Width: 14},
		{Title: "Sense", Width: 15},
		{Title: "Table", Width: 26},
		{Title: "Sigma", Width: 6},
		{Title: "Shape", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := browseModel{
		name:   name,
		model:  res.Model,
		stats:  res.Stats,
		table:  t,
		filter: ti,
		help:   help.New(),
		keys:   browseKeys,
	}
	for ref := range res.Model.Flatten() {
		m.refs = append(m.refs, ref)
	}
	m.applyFilter()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if h := msg.Height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.Type {
			case tea.KeyEnter, tea.KeyEsc:
				m.filtering = false
				m.filter.Blur()
				m.table.Focus()
				return m, nil
			}
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.detail = nil
			return m, nil

		case key.Matches(msg, m.keys.Filter):
			m.detail = nil
			m.filtering = true
			m.table.Blur()
			return m, m.filter.Focus()

		case key.Matches(msg, m.keys.Open):
			if i := m.table.Cursor(); i >= 0 && i < len(m.visible) {
				ref := m.visible[i]
				m.detail = &ref
			}
			return m, nil
		}
	}

	if m.detail == nil {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// applyFilter keeps the leaves whose key fields contain the filter text.
func (m *browseModel) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = nil
	rows := make([]table.Row, 0, len(m.refs))
	for _, ref := range m.refs {
		if needle != "" && !matchesRef(ref, needle) {
			continue
		}
		entry, _ := m.model.Table(ref.TableKey)
		m.visible = append(m.visible, ref)
		rows = append(rows, table.Row{
			ref.Cell, ref.Pin, ref.RelatedPin, ref.TimingType, ref.When, ref.Sense, ref.TableType, ref.Sigma,
			fmt.Sprintf("%dx%d", entry.Rows(), entry.Cols()),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func matchesRef(ref liberty.TableRef, needle string) bool {
	for _, field := range []string{ref.Cell, ref.Pin, ref.RelatedPin, ref.TimingType, ref.When, ref.TableType, ref.Sigma} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (m browseModel) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("libcert - " + m.name))
	s.WriteString("\n")
	s.WriteString(statsStyle.Render(fmt.Sprintf("%d cells  %d tables  %d leaves  %d skipped  %d duplicates",
		len(m.model.Cells()), m.model.Len(), len(m.refs), m.stats.Skipped(), m.stats.Duplicates)))
	s.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		s.WriteString(filterStyle.Render(m.filter.View()))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if m.detail != nil {
		s.WriteString(m.renderDetail(*m.detail))
	} else {
		s.WriteString(m.table.View())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

// renderDetail draws the value grid of one leaf with index_1 down the left
// and index_2 across the top.
func (m browseModel) renderDetail(ref liberty.TableRef) string {
	entry, ok := m.model.Table(ref.TableKey)
	if !ok {
		return ""
	}
	values, _ := entry.Values(ref.Sigma)
	index1, index2 := entry.Index1(), entry.Index2()

	width := 8
	for _, v := range append(append([]string{}, index1...), index2...) {
		width = max(width, len(v))
	}
	for _, v := range values {
		width = max(width, len(formatValue(v)))
	}
	cell := func(s string) string { return fmt.Sprintf("%*s", width, s) }

	var b strings.Builder
	fmt.Fprintf(&b, "%s / %s <- %s  %s  %s\n", ref.Cell, ref.Pin, ref.RelatedPin, ref.TimingType, ref.TableType)
	fmt.Fprintf(&b, "when %s  sense %s  sigma %s\n\n", ref.When, ref.Sense, ref.Sigma)

	b.WriteString(cell(""))
	for _, v := range index2 {
		b.WriteString(" " + axisStyle.Render(cell(v)))
	}
	for i, row := range index1 {
		b.WriteString("\n" + axisStyle.Render(cell(row)))
		for j := range index2 {
			v, _ := entry.Value(i, j, ref.Sigma)
			b.WriteString(" " + cell(formatValue(v)))
		}
	}
	return detailBoxStyle.Render(b.String())
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
