package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/leafstorm/railgen/pkg/network"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle       = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
)

// browseCommand opens the interactive browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "browse DATA",
		Short:             "Browse lines and stations interactively",
		Args:              requireData(1),
		ValidArgsFunction: completeData(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.load(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewBrowseModel(l.net), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// BrowseModel - Interactive network browser
// =============================================================================

type browseTab int

const (
	tabLines browseTab = iota
	tabStations
)

// BrowseModel is the bubbletea model of the browser: a list of lines or
// stations on the left and the selected entry's stops or services on the
// right. Tab switches lists.
type BrowseModel struct {
	Network  *network.Network
	Lines    []*network.Line
	Stations []*network.Station
	Tab      browseTab
	Cursor   int
	Offset   int
	Height   int
}

// NewBrowseModel creates a browser positioned on the first line.
func NewBrowseModel(net *network.Network) BrowseModel {
	return BrowseModel{
		Network:  net,
		Lines:    slices.Collect(net.Lines()),
		Stations: slices.Collect(net.Stations()),
		Height:   15,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) count() int {
	if m.Tab == tabStations {
		return len(m.Stations)
	}
	return len(m.Lines)
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.Tab = 1 - m.Tab
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.count()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(m.count()-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Network.Name()))
	b.WriteString("  ")
	for tab, label := range []string{"Lines", "Stations"} {
		style := listDimStyle
		if browseTab(tab) == m.Tab {
			style = tabActiveStyle
		}
		b.WriteString(style.Render(label) + " ")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab switch  q quit"))
	b.WriteString("\n\n")

	var list, detail string
	if m.Tab == tabStations {
		list, detail = m.stationList(), m.stationDetail()
	} else {
		list, detail = m.lineList(), m.lineDetail()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, m.count()), m.count())))

	return b.String()
}

func (m BrowseModel) window() (int, int) {
	return m.Offset, min(m.Offset+m.Height, m.count())
}

func (m BrowseModel) cursorMark(i int) string {
	if i == m.Cursor {
		return "▸"
	}
	return " "
}

func (m BrowseModel) listTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case m.Offset+row == m.Cursor:
				return listSelectedStyle
			}
			return listNormalStyle
		}).
		Render()
}

// =============================================================================
// Lines
// =============================================================================

func (m BrowseModel) lineList() string {
	start, end := m.window()
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		ln := m.Lines[i]
		label, err := ln.TypeLabel()
		if err != nil {
			label = ln.Type().String()
		}
		rows = append(rows, []string{m.cursorMark(i), strconv.Itoa(ln.Number()), ln.Name(), label})
	}
	return m.listTable([]string{"", "No", "Line", "Type"}, rows)
}

func (m BrowseModel) lineDetail() string {
	if len(m.Lines) == 0 {
		return listDimStyle.Render("no lines")
	}
	ln := m.Lines[m.Cursor]

	var b strings.Builder
	color, err := ln.Color()
	if err != nil {
		color = "#888888"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(ln.String()))
	b.WriteString("\n")
	down, _ := ln.DownDirection()
	up, _ := ln.UpDirection()
	flow, _ := ln.FlowLabel()
	level, _ := ln.LevelLabel()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↓ %s  ↑ %s  %s, %s", down, up, flow, level)))
	b.WriteString("\n")
	if notes := ln.Notes(); notes != "" {
		b.WriteString(listDimStyle.Render(notes))
		b.WriteString("\n")
	}

	var rows [][]string
	for st, landing := range ln.Stops() {
		name := st.Name()
		if st.IsWaypoint() {
			name = listDimStyle.Render("(waypoint)")
		}
		rows = append(rows, []string{name, st.Coords(), landing})
	}
	b.WriteString(table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Stop", "Coords", "Landing").
		Rows(rows...).
		Render())
	return b.String()
}

// =============================================================================
// Stations
// =============================================================================

func (m BrowseModel) stationList() string {
	start, end := m.window()
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		st := m.Stations[i]
		rows = append(rows, []string{m.cursorMark(i), st.Name(), st.Coords()})
	}
	return m.listTable([]string{"", "Station", "Coords"}, rows)
}

func (m BrowseModel) stationDetail() string {
	if len(m.Stations) == 0 {
		return listDimStyle.Render("no stations")
	}
	st := m.Stations[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleHighlight.Bold(true).Render(st.Name()))
	b.WriteString("\n")
	if notes := st.Notes(); notes != "" {
		b.WriteString(listDimStyle.Render(notes))
		b.WriteString("\n")
	}

	var rows [][]string
	for ln, landing := range st.Lines() {
		rows = append(rows, []string{ln.String(), landing})
	}
	b.WriteString(table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Line", "Landing").
		Rows(rows...).
		Render())
	return b.String()
}
