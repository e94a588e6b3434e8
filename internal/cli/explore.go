package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/passrank/pkg/analysis"
	"github.com/matzehuels/passrank/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command, an interactive browser over the
// retained levels of one analysis.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [csv]",
		Short: "Browse the ranking level by level in the terminal",
		Long: `Explore runs the analysis and opens an interactive view of every retained level.

Keys: ←/→ change level, ↑/↓ move, g/G jump to top/bottom, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			res, err := c.analyze(cmd.Context(), inputArg(args), cfg)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewLevelModel(res), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// LevelModel - Interactive level browser
// =============================================================================

// LevelModel is the bubbletea model for browsing retained levels.
type LevelModel struct {
	Result *analysis.Result
	Levels []int
	Index  int // position in Levels
	Cursor int // row within the current level
	Offset int // first visible row
	Height int // visible rows

	entries []analysis.Entry
}

// NewLevelModel creates a level browser positioned on the final level.
func NewLevelModel(res *analysis.Result) LevelModel {
	m := LevelModel{
		Result: res,
		Levels: res.Propagation.Levels(),
		Height: 15,
	}
	m.Index = len(m.Levels) - 1
	m.load()
	return m
}

// Level returns the level currently shown.
func (m LevelModel) Level() int {
	return m.Levels[m.Index]
}

// Selected returns the entity under the cursor.
func (m LevelModel) Selected() analysis.Entry {
	return m.entries[m.Cursor]
}

// load fetches the entries of the current level.
func (m *LevelModel) load() {
	entries, err := m.Result.Level(m.Level())
	if err != nil {
		entries = nil
	}
	m.entries = entries
}

// switchLevel moves to another level and keeps the same entity selected.
func (m *LevelModel) switchLevel(index int) {
	if index < 0 || index >= len(m.Levels) || index == m.Index {
		return
	}
	id := -1
	if len(m.entries) > 0 {
		id = m.Selected().ID
	}
	m.Index = index
	m.load()
	for i, e := range m.entries {
		if e.ID == id {
			m.moveTo(i)
			return
		}
	}
	m.moveTo(0)
}

// moveTo places the cursor on row i and scrolls it into view.
func (m *LevelModel) moveTo(i int) {
	if len(m.entries) == 0 {
		m.Cursor, m.Offset = 0, 0
		return
	}
	m.Cursor = max(0, min(i, len(m.entries)-1))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m LevelModel) Init() tea.Cmd {
	return nil
}

func (m LevelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.switchLevel(m.Index - 1)
		case "right", "l":
			m.switchLevel(m.Index + 1)
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case "pgup":
			m.moveTo(m.Cursor - m.Height)
		case "pgdown":
			m.moveTo(m.Cursor + m.Height)
		case "g", "home":
			m.moveTo(0)
		case "G", "end":
			m.moveTo(len(m.entries) - 1)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 9
		if m.Height < 5 {
			m.Height = 5
		}
		m.moveTo(m.Cursor)
	}
	return m, nil
}

func (m LevelModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Level %d", m.Level())
	if m.Level() == m.Result.Propagation.ConvergedAt {
		title += " (converged)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(m.levelBar())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ level  ↑/↓ navigate  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(listDimStyle.Render("no entities"))
		return b.String()
	}

	prev := m.previousRanks()
	end := min(m.Offset+m.Height, len(m.entries))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		change := ""
		if prev != nil {
			change = deltaCell(prev[e.ID] - e.Rank)
		}
		rows = append(rows, []string{cursor, strconv.Itoa(e.Rank), e.Entity, render.FormatScore(e.Score), change})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Country", "Score", "Change").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			base := listNormalStyle
			if m.Offset+row == m.Cursor {
				base = listSelectedStyle
			}
			if col == 1 || col >= 3 {
				base = base.Align(lipgloss.Right)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.trendLine())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.entries))))

	return b.String()
}

// levelBar lists the retained levels with the current one highlighted.
func (m LevelModel) levelBar() string {
	parts := make([]string, len(m.Levels))
	for i, l := range m.Levels {
		s := strconv.Itoa(l)
		if i == m.Index {
			parts[i] = StyleHighlight.Render("[" + s + "]")
		} else {
			parts[i] = listDimStyle.Render(s)
		}
	}
	return strings.Join(parts, " ")
}

// previousRanks returns the ranks at the retained level before the current
// one, or nil on the first level.
func (m LevelModel) previousRanks() []int {
	if m.Index == 0 {
		return nil
	}
	return m.Result.Propagation.Snapshots[m.Index-1].Ranks
}

// trendLine shows the selected entity's rank across every retained level.
func (m LevelModel) trendLine() string {
	e := m.Selected()
	ranks, err := m.Result.Trend(e.Entity)
	if err != nil {
		return ""
	}
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = strconv.Itoa(r)
	}
	return "  " + StyleValue.Render(e.Entity) + " " + StyleNumber.Render(strings.Join(parts, " → "))
}
