package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/halvard/kinocut/internal/canvas"
	"github.com/halvard/kinocut/internal/timeunit"
)

// timelineCols is the width of the glyph area in terminal columns.
func (m *Model) timelineCols() int {
	cols := m.width - laneLabelCols - 1
	if cols < 10 {
		cols = 10
	}
	return cols
}

// visibleLanes is how many lane rows fit the terminal, leaving room for
// the header, ruler, scrollbar, and status lines.
func (m *Model) visibleLanes() int {
	lanes := m.height - 5
	if lanes < 1 {
		lanes = 1
	}
	return lanes
}

// col maps a content-space x position into a terminal column.
func (m *Model) col(x float64) int {
	return int((x - m.scroller.X()) / cellPx)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderRuler())
	b.WriteByte('\n')
	b.WriteString(m.renderLanes())
	b.WriteString(m.renderScrollbar())
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderHeader() string {
	name := m.path
	if name == "" {
		name = "untitled"
	}
	left := styleTitle.Render(" kinocut ") + styleMuted.Render(name)
	right := styleDim.Render(fmt.Sprintf("%dx%d @ %gfps ", m.settings.Width, m.settings.Height, m.settings.FPS))
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

// renderRuler draws second marks across the glyph area and the playhead
// marker on top of them.
func (m *Model) renderRuler() string {
	cols := m.timelineCols()
	row := make([]rune, cols)
	for i := range row {
		row[i] = '─'
	}

	// One label per second of content, at the column its time maps to.
	secPx := m.cfg.Timeline.PxPerSecond * m.surface.Zoom()
	if secPx >= 2*cellPx {
		first := int(m.scroller.X() / secPx)
		for s := first; ; s++ {
			c := m.col(float64(s) * secPx)
			if c >= cols {
				break
			}
			if c < 0 {
				continue
			}
			label := []rune(fmt.Sprintf("|%ds", s))
			for j, r := range label {
				if c+j < cols {
					row[c+j] = r
				}
			}
		}
	}

	headCol := m.col(m.conv.MicrosToPixels(m.coord.Playhead(), m.surface.Zoom(), 1))
	if headCol >= 0 && headCol < cols {
		row[headCol] = '▼'
	}

	return strings.Repeat(" ", laneLabelCols) + "┊" + styleDim.Render(string(row))
}

// renderLanes draws one terminal row per track: the name gutter, then
// the track's glyphs placed by their content-space rectangles.
func (m *Model) renderLanes() string {
	var b strings.Builder
	tracks := m.coord.Store().Snapshot().Tracks()
	glyphs := m.surface.Glyphs()
	metrics := m.cfg.LaneMetrics()

	firstLane := int(m.scroller.Y() / metrics.LaneHeight)
	if firstLane < 0 {
		firstLane = 0
	}
	lastLane := firstLane + m.visibleLanes()

	for lane, t := range tracks {
		if lane < firstLane || lane >= lastLane {
			continue
		}
		name := t.Name
		if name == "" {
			name = string(t.Type)
		}
		if t.Muted {
			name = "m " + name
		}
		b.WriteString(styleLaneName.Render(fmt.Sprintf("%2d %s", lane+1, name)))
		b.WriteString("┊")
		b.WriteString(m.renderLane(lane, glyphs))
		b.WriteByte('\n')
	}
	if len(tracks) == 0 {
		b.WriteString(styleDim.Render(" empty timeline — load a project or add clips via the engine"))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderLane composes one lane row out of its glyph spans.
func (m *Model) renderLane(lane int, glyphs []canvas.Glyph) string {
	cols := m.timelineCols()
	var b strings.Builder
	pos := 0
	for _, g := range glyphs {
		if g.LaneIndex != lane {
			continue
		}
		start := m.col(g.Rect.X)
		end := m.col(g.Rect.Right())
		if end <= 0 || start >= cols {
			continue
		}
		if start < 0 {
			start = 0
		}
		if end > cols {
			end = cols
		}
		if end <= start {
			end = start + 1
		}
		if start > pos {
			b.WriteString(styleLane.Render(strings.Repeat("·", start-pos)))
		}
		b.WriteString(m.renderGlyph(g, end-start))
		pos = end
	}
	if pos < cols {
		b.WriteString(styleLane.Render(strings.Repeat("·", cols-pos)))
	}
	return b.String()
}

// renderGlyph paints one clip span using its paint-table entry. The
// cursor clip renders reversed on top of its fill.
func (m *Model) renderGlyph(g canvas.Glyph, cells int) string {
	spec := canvas.PaintFor(g.Type)

	clip, _ := m.coord.Store().Snapshot().Clip(g.ClipID)
	label := spec.Badge
	if spec.Label != nil {
		label = spec.Badge + " " + spec.Label(clip)
	}
	if len(label) > cells {
		label = label[:cells]
	}
	text := label + strings.Repeat(" ", cells-len(label))

	style := fillStyle(spec.FillToken)
	if g.Selected || g.ClipID == m.cursor {
		style = style.Reverse(true).Bold(true)
	}
	return style.Render(text)
}

// renderScrollbar draws the horizontal thumb under the lane stack.
func (m *Model) renderScrollbar() string {
	cols := m.timelineCols()
	thumb := m.scroller.HThumb()
	view := m.scroller.ViewportWidth()
	if view <= 0 {
		return strings.Repeat(" ", laneLabelCols+1) + styleLane.Render(strings.Repeat("─", cols))
	}

	scale := float64(cols) / view
	start := int(thumb.Offset * scale)
	length := int(thumb.Len * scale)
	if length < 1 {
		length = 1
	}
	if start+length > cols {
		start = cols - length
	}
	if start < 0 {
		start = 0
	}

	row := strings.Repeat("─", start) +
		styleMuted.Render(strings.Repeat("━", length)) +
		strings.Repeat("─", cols-start-length)
	return strings.Repeat(" ", laneLabelCols) + "┊" + styleLane.Render(row)
}

func (m *Model) renderStatus() string {
	snap := m.coord.Store().Snapshot()
	head := timeunit.Timecode(m.coord.Playhead())
	total := timeunit.Timecode(m.coord.MaxDuration())

	parts := []string{
		statusIcon(m.coord.IsPlaying()),
		styleTitle.Render(head) + styleDim.Render("/"+total),
		styleMuted.Render(fmt.Sprintf("%.2fx", m.surface.Zoom())),
		styleDim.Render(fmt.Sprintf("%d tracks, %d clips", snap.NumTracks(), snap.NumClips())),
	}
	if sel := snap.Selection(); len(sel) > 0 {
		parts = append(parts, styleAccent.Render(fmt.Sprintf("%d selected", len(sel))))
	}
	if m.status != "" {
		parts = append(parts, styleError.Render(m.status))
	} else {
		parts = append(parts, styleDim.Render("space:play  s:split  d:dup  x:del  [/]:trim  ?:help"))
	}
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(strings.Join(parts, "  "))
}

func (m *Model) renderHelp() string {
	help := `
  kinocut — keys
  ══════════════

  Transport
    space        play / pause
    ←/→          seek one second
    g / G        seek to start / end

  Cursor
    tab / s-tab  next / previous clip
    j / k        clip on lane below / above

  Editing
    s-←/s-→      nudge clip (snaps to neighbor edges)
    [ / ]        trim in / out point
    J / K        move clip to lane below / above
    n            move clip to a new lane
    s            split at playhead
    d            duplicate onto a new lane
    x            delete selection

  View
    + / -        zoom in / out
    < / >        scroll
    ? / esc      close help
    q            quit
`
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styleHelpBox.Render(help))
}
