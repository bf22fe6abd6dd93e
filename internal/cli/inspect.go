package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/state"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
)

// newInspectCmd creates the inspect command for browsing edge geometry.
//
// By default it opens an interactive list of edges with their group
// membership, lateral offsets, and computed geometry. With --plain it prints
// the same data as a static table, suitable for piping.
func newInspectCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [scene]",
		Short: "Browse edge groups and geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a static table instead of the interactive view")

	return cmd
}

// =============================================================================
// Edge Rows
// =============================================================================

// edgeRow is one edge's inspection summary.
type edgeRow struct {
	ID        string
	Endpoints string  // "source → target"
	Siblings  int     // parallel edges between the same node pair
	Offset    float64 // lateral offset within the group
	Kind      string  // straight, curved, summarized, or stale
	Length    float64 // computed display length
	Detail    string  // geometry detail for the selected row
}

// buildEdgeRows resolves every edge of the scene through the engine.
func buildEdgeRows(sc *scene.Scene, eng *state.Engine) []edgeRow {
	rows := make([]edgeRow, 0, len(sc.Edges))
	for _, e := range sc.Edges {
		row := edgeRow{
			ID:        e.ID,
			Endpoints: fmt.Sprintf("%s → %s", e.Source, e.Target),
		}
		if g, ok := eng.Group(e.ID); ok {
			row.Siblings = g.Size()
			row.Offset = g.PointInGroup(e.ID)
			if g.Summarized {
				row.Kind = "summarized"
			}
		}
		es, ok := eng.EdgeState(e.ID)
		if !ok {
			row.Kind = "stale"
			rows = append(rows, row)
			continue
		}
		row.Length = es.Position.Length()
		if row.Kind == "" {
			if es.Curve != nil {
				row.Kind = "curved"
			} else {
				row.Kind = "straight"
			}
		}
		row.Detail = edgeDetail(es)
		rows = append(rows, row)
	}
	return rows
}

// edgeDetail formats the computed geometry of one edge.
func edgeDetail(es *state.EdgeState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "position (%.1f, %.1f) → (%.1f, %.1f)",
		es.Position.Source.X, es.Position.Source.Y,
		es.Position.Target.X, es.Position.Target.Y)
	if es.Curve != nil {
		fmt.Fprintf(&b, "  arc center (%.1f, %.1f) sweep %.3f rad",
			es.Curve.Center.X, es.Curve.Center.Y, es.Curve.Theta)
	}
	if es.SourceMarker != "" || es.TargetMarker != "" {
		fmt.Fprintf(&b, "  markers [%s %s]", es.SourceMarker, es.TargetMarker)
	}
	return b.String()
}

// =============================================================================
// EdgeListModel - Interactive edge browsing
// =============================================================================

// EdgeListModel is the bubbletea model for the inspect view.
type EdgeListModel struct {
	Title  string
	Rows   []edgeRow
	Cursor int
	Height int
	Offset int
}

// NewEdgeListModel creates an edge list model over the given rows.
func NewEdgeListModel(title string, rows []edgeRow) EdgeListModel {
	return EdgeListModel{
		Title:  title,
		Rows:   rows,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m EdgeListModel) Init() tea.Cmd {
	return nil
}

func (m EdgeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m EdgeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edges: " + m.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		line := fmt.Sprintf("%-10s %-16s %-11s ×%d  offset %+.1f  len %.1f",
			r.ID, r.Endpoints, r.Kind, r.Siblings, r.Offset, r.Length)
		b.WriteString(cursor + style.Render(line))
		b.WriteString("\n")
	}

	if len(m.Rows) > 0 && m.Cursor < len(m.Rows) {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(m.Rows[m.Cursor].Detail))
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// Plain Output
// =============================================================================

// renderEdgeTable renders rows as a static bordered table.
func renderEdgeTable(rows []edgeRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "EDGE", "KIND", "SIBLINGS", "OFFSET", "LENGTH")
	for _, r := range rows {
		t.Row(r.ID, r.Endpoints, r.Kind,
			fmt.Sprintf("%d", r.Siblings),
			fmt.Sprintf("%+.1f", r.Offset),
			fmt.Sprintf("%.1f", r.Length))
	}
	return t.Render()
}

// runInspect loads the scene, resolves geometry, and shows the edge list.
func runInspect(ctx context.Context, input string, plain bool) error {
	logger := loggerFromContext(ctx)

	sc, err := scene.ReadSceneFile(input)
	if err != nil {
		return err
	}
	eng, err := state.FromScene(sc)
	if err != nil {
		return err
	}
	rows := buildEdgeRows(sc, eng)
	logger.Debugf("Resolved %d edges in %d groups", len(rows), len(eng.Groups()))

	if plain {
		fmt.Println(renderEdgeTable(rows))
		return nil
	}

	model := NewEdgeListModel(input, rows)
	_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
	return err
}
