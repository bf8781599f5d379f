package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/railcdl/pkg/cdl"
	"github.com/matzehuels/railcdl/pkg/report"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ZoneBrowserModel - Interactive zone and signal browser
// =============================================================================

// ZoneBrowserModel is the bubbletea model for browsing the zones of a
// report. The upper table lists zones; the lower pane shows the signals
// protecting the zone under the cursor and the path each one walked.
type ZoneBrowserModel struct {
	Report *report.Report
	Cursor int
	Height int
	Offset int

	// Expanded shows walked paths in the signal pane.
	Expanded bool

	signals map[string][]cdl.Signal
}

// NewZoneBrowserModel creates a browser over rep.
func NewZoneBrowserModel(rep *report.Report) ZoneBrowserModel {
	bySignal := make(map[string][]cdl.Signal, len(rep.Zones))
	for _, s := range rep.Signals {
		bySignal[s.ProtectsZone] = append(bySignal[s.ProtectsZone], s)
	}
	return ZoneBrowserModel{
		Report:  rep,
		Height:  10,
		signals: bySignal,
	}
}

func (m ZoneBrowserModel) Init() tea.Cmd {
	return nil
}

func (m ZoneBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Report.Zones)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the signal pane.
		m.Height = msg.Height/2 - 4
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m ZoneBrowserModel) View() string {
	var b strings.Builder
	rep := m.Report

	b.WriteString(StyleTitle.Render(rep.Station))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  threshold %.0fm · %s branch policy", rep.Threshold, rep.Branch)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ paths  q quit"))
	b.WriteString("\n\n")

	if len(rep.Zones) == 0 {
		b.WriteString(listNormalStyle.Render("No CDL zones in this station."))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(rep.Zones))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		z := rep.Zones[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		status := "✓"
		if !z.Full {
			status = "!"
		}
		rows = append(rows, []string{
			cursor,
			z.ID,
			fmt.Sprintf("%d/%d", z.Coverage.Signals, z.Coverage.Approaches),
			status,
			strings.Join(z.Approaches, ", "),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Zone", "Coverage", "", "Approaches").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(rep.Zones) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			if !rep.Zones[idx].Full {
				return base.Foreground(colorYellow)
			}
			if idx == m.Cursor {
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(rep.Zones))))
	b.WriteString("\n\n")
	b.WriteString(m.signalPane())

	return b.String()
}

// signalPane lists the signals protecting the selected zone.
func (m ZoneBrowserModel) signalPane() string {
	var b strings.Builder
	zone := m.Report.Zones[m.Cursor]
	b.WriteString(listSelectedStyle.Render("Signals protecting " + zone.ID))
	b.WriteString("\n")

	for _, s := range m.signals[zone.ID] {
		line := fmt.Sprintf("  %-32s at %-16s %6.0fm", s.ID, s.PlacedAt, s.DistanceToZone)
		if s.Partial() {
			b.WriteString(StyleWarning.Render(line + fmt.Sprintf("  (%.0fm short)", s.Shortfall())))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
		if m.Expanded {
			b.WriteString(listDimStyle.Render("    " + strings.Join(s.Path, " ← ")))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "browse [station]",
		Short: "Explore zones and signals interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.execute(cmd.Context(), args[0], flags, fmt.Sprintf("Analyzing %s...", args[0]))
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewZoneBrowserModel(result.Report), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
