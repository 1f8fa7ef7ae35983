// Package tui is the terminal timeline editor: lanes of clip glyphs,
// a transport line, and editing keys that drive the session coordinator.
//
// The canvas does the real work. Keys synthesize the same pointer
// gestures a mouse would produce, so nudges and trims run through the
// full gesture machine — snapping, clamping, intent commit — and land in
// the coordinator exactly like any other surface event. The model never
// writes the store; it reads snapshots and enqueues.
package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/halvard/kinocut/internal/canvas"
	"github.com/halvard/kinocut/internal/config"
	"github.com/halvard/kinocut/internal/coordinator"
	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/snap"
	"github.com/halvard/kinocut/internal/timeunit"
	"github.com/halvard/kinocut/internal/viewport"
)

// Content-space pixels covered by one terminal column and one lane row.
const cellPx = 10.0

// laneLabelCols is the width of the track-name gutter.
const laneLabelCols = 14

// seekStepUs is the plain arrow-key seek distance.
const seekStepUs = int64(timeunit.MicrosPerSecond)

// Transport advances headless playback. The in-memory engine implements
// it; a real compositor owns its own clock and leaves it nil.
type Transport interface {
	Tick(deltaUs int64)
}

// Options wires the editor to an existing session.
type Options struct {
	Coordinator *coordinator.Coordinator
	Transport   Transport // optional; nil when the engine self-advances
	Config      *config.Config
	Settings    project.Settings
	ProjectPath string
	Logger      *slog.Logger
}

// Model is the bubbletea model for the timeline editor.
type Model struct {
	coord     *coordinator.Coordinator
	transport Transport
	cfg       *config.Config
	settings  project.Settings
	path      string
	log       *slog.Logger

	surface  *canvas.Surface
	scroller *viewport.Scroller
	autos    *viewport.AutoScroller
	conv     timeunit.Converter

	keys    keyMap
	refresh time.Duration

	width  int
	height int

	rev      int64  // last store revision folded into the surface
	cursor   string // clip id the editing keys act on
	status   string // transient one-line notice
	showHelp bool
	quitting bool
}

type tickMsg time.Time

// New builds the editor model over a running session. The surface
// commits through the coordinator's sink, so every key-driven gesture
// takes the same path a pointer drag would.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	conv := timeunit.New(cfg.Timeline.PxPerSecond)
	resolver := snap.New(cfg.Timeline.SnapTolerancePx)
	guide := snap.NewGuideThrottle(0, nil)
	surface := canvas.NewSurface(conv, cfg.LaneMetrics(), resolver, guide, log, opts.Coordinator.SurfaceSink())

	m := &Model{
		coord:     opts.Coordinator,
		transport: opts.Transport,
		cfg:       cfg,
		settings:  opts.Settings,
		path:      opts.ProjectPath,
		log:       log,
		surface:   surface,
		scroller:  viewport.NewScroller(cfg.ViewportOptions()),
		autos:     viewport.NewAutoScroller(0, 0),
		conv:      conv,
		keys:      defaultKeyMap(),
		refresh:   time.Duration(cfg.TUI.RefreshMs) * time.Millisecond,
		rev:       -1,
	}
	m.syncFromStore()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroller.SetViewport(float64(m.timelineCols())*cellPx, m.cfg.LaneMetrics().StackHeight(m.visibleLanes()))
		return m, nil

	case tickMsg:
		m.frame()
		return m, m.tick()
	}
	return m, nil
}

// frame is one cooperative step of the session loop: advance headless
// playback, drain queued events onto the store, refresh the glyphs, and
// run the playback-follow auto-scroll tick.
func (m *Model) frame() {
	if m.transport != nil {
		m.transport.Tick(m.refresh.Microseconds())
	}
	m.coord.Drain()
	m.syncFromStore()

	if m.coord.IsPlaying() {
		if !m.autos.Active() {
			m.autos.Start()
		}
		headX := m.conv.MicrosToPixels(m.coord.Playhead(), m.surface.Zoom(), 1)
		m.autos.Tick(headX-m.scroller.X(), m.scroller)
	} else if m.autos.Active() {
		m.autos.Stop()
	}
}

// syncFromStore relayouts the surface when the store moved and keeps the
// scroll bounds and the cursor in step with it.
func (m *Model) syncFromStore() {
	store := m.coord.Store()
	if rev := store.Rev(); rev != m.rev {
		m.rev = rev
		snapState := store.Snapshot()
		m.surface.SetSnapshot(snapState)
		m.scroller.SetRects(canvas.Rects(m.surface.Glyphs()),
			m.cfg.LaneMetrics().StackHeight(m.surface.LaneCount()))

		if _, ok := snapState.Clip(m.cursor); !ok {
			m.cursor = ""
			if sel := snapState.Selection(); len(sel) > 0 {
				m.cursor = sel[0]
			}
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.autos.Stop()
		m.surface.CancelGesture()
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.PlayPause):
		if m.coord.IsPlaying() {
			m.report("pause", m.coord.Pause())
		} else {
			m.report("play", m.coord.Play())
		}

	case key.Matches(msg, m.keys.SeekBack):
		m.report("seek", m.coord.Seek(m.coord.Playhead()-seekStepUs))
	case key.Matches(msg, m.keys.SeekFwd):
		m.report("seek", m.coord.Seek(m.coord.Playhead()+seekStepUs))
	case key.Matches(msg, m.keys.SeekHome):
		m.report("seek", m.coord.Seek(0))
		m.scroller.ScrollTo(m.scroller.X()-m.scroller.ContentWidth(), m.scroller.Y())
	case key.Matches(msg, m.keys.SeekEnd):
		m.report("seek", m.coord.Seek(m.coord.MaxDuration()))

	case key.Matches(msg, m.keys.NextClip):
		m.cycleCursor(1)
	case key.Matches(msg, m.keys.PrevClip):
		m.cycleCursor(-1)
	case key.Matches(msg, m.keys.LaneUp):
		m.cursorToLane(-1)
	case key.Matches(msg, m.keys.LaneDown):
		m.cursorToLane(1)

	case key.Matches(msg, m.keys.NudgeLeft):
		m.dragCursor(-cellPx, 0)
	case key.Matches(msg, m.keys.NudgeRight):
		m.dragCursor(cellPx, 0)
	case key.Matches(msg, m.keys.TrimLeft):
		m.trimCursor(canvas.ZoneLeftHandle)
	case key.Matches(msg, m.keys.TrimRight):
		m.trimCursor(canvas.ZoneRightHandle)
	case key.Matches(msg, m.keys.MoveUp):
		m.dragCursorToLane(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.dragCursorToLane(1)
	case key.Matches(msg, m.keys.NewLane):
		m.dragCursorToGutter()

	case key.Matches(msg, m.keys.Split):
		if m.cursor != "" {
			_, err := m.coord.SplitClip(m.cursor, m.coord.Playhead())
			m.report("split", err)
		}
	case key.Matches(msg, m.keys.Duplicate):
		if m.cursor != "" {
			_, err := m.coord.DuplicateClip(m.cursor)
			m.report("duplicate", err)
		}
	case key.Matches(msg, m.keys.Delete):
		m.surface.DeleteSelection()

	case key.Matches(msg, m.keys.ZoomIn):
		m.setZoom(m.surface.Zoom() * 1.25)
	case key.Matches(msg, m.keys.ZoomOut):
		m.setZoom(m.surface.Zoom() / 1.25)
	case key.Matches(msg, m.keys.ScrollLeft):
		m.scroller.ScrollBy(-float64(m.timelineCols())*cellPx/2, 0)
	case key.Matches(msg, m.keys.ScrollRight):
		m.scroller.ScrollBy(float64(m.timelineCols())*cellPx/2, 0)
	}

	m.coord.Drain()
	m.syncFromStore()
	return m, nil
}

// report keeps a failed operation visible without interrupting the
// session; reference misses and clamps never surface as errors.
func (m *Model) report(op string, err error) {
	if err != nil {
		m.status = op + ": " + err.Error()
		m.log.Debug("edit rejected", "op", op, "error", err)
	}
}

func (m *Model) setZoom(z float64) {
	if z < m.cfg.Timeline.MinZoom {
		z = m.cfg.Timeline.MinZoom
	}
	if z > m.cfg.Timeline.MaxZoom {
		z = m.cfg.Timeline.MaxZoom
	}
	m.surface.SetZoom(z)
	m.scroller.SetRects(canvas.Rects(m.surface.Glyphs()),
		m.cfg.LaneMetrics().StackHeight(m.surface.LaneCount()))
}

// cursorGlyph finds the glyph of the cursor clip.
func (m *Model) cursorGlyph() (canvas.Glyph, bool) {
	for _, g := range m.surface.Glyphs() {
		if g.ClipID == m.cursor {
			return g, true
		}
	}
	return canvas.Glyph{}, false
}

// cycleCursor walks the glyph list in lane-then-time order and selects
// the next clip through the coordinator, so the engine sees it too.
func (m *Model) cycleCursor(dir int) {
	glyphs := m.surface.Glyphs()
	if len(glyphs) == 0 {
		return
	}
	idx := 0
	for i, g := range glyphs {
		if g.ClipID == m.cursor {
			idx = (i + dir + len(glyphs)) % len(glyphs)
			break
		}
	}
	m.cursor = glyphs[idx].ClipID
	m.coord.SelectClips([]string{m.cursor})
	m.scroller.EnsureVisible(glyphs[idx].Rect.X)
}

// cursorToLane selects the clip nearest the cursor's start on an
// adjacent lane.
func (m *Model) cursorToLane(dir int) {
	cur, ok := m.cursorGlyph()
	if !ok {
		m.cycleCursor(1)
		return
	}
	target := cur.LaneIndex + dir
	var best canvas.Glyph
	found := false
	for _, g := range m.surface.Glyphs() {
		if g.LaneIndex != target {
			continue
		}
		if !found || abs(g.Rect.X-cur.Rect.X) < abs(best.Rect.X-cur.Rect.X) {
			best, found = g, true
		}
	}
	if found {
		m.cursor = best.ClipID
		m.coord.SelectClips([]string{m.cursor})
	}
}

// dragCursor synthesizes a body drag on the cursor clip: down at the
// glyph center, one move to the target, release. Snapping and clamping
// apply exactly as for a pointer drag.
func (m *Model) dragCursor(dx, dy float64) {
	g, ok := m.cursorGlyph()
	if !ok {
		return
	}
	cx := g.Rect.X + g.Rect.W/2
	cy := g.Rect.Y + g.Rect.H/2
	m.surface.PointerDown(cx, cy, false)
	m.surface.PointerMove(cx+dx, cy+dy)
	m.surface.PointerUp(cx+dx, cy+dy)
}

// trimCursor synthesizes an edge-handle drag one column outward or
// inward: the left handle moves the in point later, the right handle
// moves the out point later, both clamped by the gesture machine.
func (m *Model) trimCursor(zone canvas.Zone) {
	g, ok := m.cursorGlyph()
	if !ok {
		return
	}
	cy := g.Rect.Y + g.Rect.H/2
	var x float64
	switch zone {
	case canvas.ZoneLeftHandle:
		x = g.Rect.X + 1
	case canvas.ZoneRightHandle:
		x = g.Rect.Right() - 1
	default:
		return
	}
	m.surface.PointerDown(x, cy, false)
	m.surface.PointerMove(x+cellPx, cy)
	m.surface.PointerUp(x+cellPx, cy)
}

// dragCursorToLane drops the cursor clip onto an adjacent lane.
func (m *Model) dragCursorToLane(dir int) {
	g, ok := m.cursorGlyph()
	if !ok {
		return
	}
	target := g.LaneIndex + dir
	if target < 0 || target >= m.surface.LaneCount() {
		return
	}
	metrics := m.cfg.LaneMetrics()
	cx := g.Rect.X + g.Rect.W/2
	cy := g.Rect.Y + g.Rect.H/2
	ty := metrics.LaneTop(target) + metrics.LaneHeight/2
	m.surface.PointerDown(cx, cy, false)
	m.surface.PointerMove(cx+DragEngagePx, ty)
	m.surface.PointerMove(cx, ty)
	m.surface.PointerUp(cx, ty)
}

// dragCursorToGutter drops the cursor clip onto the lane separator below
// it, which asks the coordinator for a fresh track at that index.
func (m *Model) dragCursorToGutter() {
	g, ok := m.cursorGlyph()
	if !ok {
		return
	}
	metrics := m.cfg.LaneMetrics()
	cx := g.Rect.X + g.Rect.W/2
	cy := g.Rect.Y + g.Rect.H/2
	ty := metrics.LaneTop(g.LaneIndex + 1)
	m.surface.PointerDown(cx, cy, false)
	m.surface.PointerMove(cx+DragEngagePx, ty)
	m.surface.PointerMove(cx, ty)
	m.surface.PointerUp(cx, ty)
}

// DragEngagePx is how far a synthesized gesture overshoots before
// settling, enough to pass the machine's engage threshold.
const DragEngagePx = canvas.DragThresholdPx + 1

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
