package media

import (
	"sync"

	"github.com/halvard/kinocut/internal/timeline"
)

// Gate wraps an engine that is not ready at construction time, the usual
// state while media subsystems initialize. Every operation against a
// closed gate fails with ErrUnavailable and is dropped — never queued —
// matching the no-retry contract. Opening the gate fires the registered
// ready hooks so callers can re-issue what they dropped.
type Gate struct {
	mu      sync.Mutex
	inner   Engine
	ready   bool
	onReady []func()
}

var _ Engine = (*Gate)(nil)

// NewGate wraps inner in a closed gate.
func NewGate(inner Engine) *Gate {
	return &Gate{inner: inner}
}

// Ready reports whether operations pass through.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Open marks the engine ready and fires ready hooks. Opening an open
// gate does nothing.
func (g *Gate) Open() {
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		return
	}
	g.ready = true
	hooks := g.onReady
	g.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// OnReady registers a hook invoked when the gate opens. A hook added to
// an already-open gate runs immediately.
func (g *Gate) OnReady(fn func()) {
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		fn()
		return
	}
	g.onReady = append(g.onReady, fn)
	g.mu.Unlock()
}

func (g *Gate) guard() error {
	if !g.Ready() {
		return ErrUnavailable
	}
	return nil
}

func (g *Gate) AddClip(c timeline.Clip, trackID string) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.AddClip(c, trackID)
}

func (g *Gate) UpdateClip(id string, p timeline.Patch) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.UpdateClip(id, p)
}

func (g *Gate) RemoveClip(id string) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.RemoveClip(id)
}

func (g *Gate) SetTracks(tracks []timeline.Track) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.SetTracks(tracks)
}

func (g *Gate) SelectClips(ids []string) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.SelectClips(ids)
}

func (g *Gate) SplitSelected(at int64) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.SplitSelected(at)
}

func (g *Gate) DuplicateSelected() error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.DuplicateSelected()
}

func (g *Gate) Seek(us int64) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.Seek(us)
}

func (g *Gate) Play() error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.Play()
}

func (g *Gate) Pause() error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.inner.Pause()
}

// CurrentTime reads through even when closed; a missing engine has no
// playhead, so zero is the honest answer either way.
func (g *Gate) CurrentTime() int64 {
	if !g.Ready() {
		return 0
	}
	return g.inner.CurrentTime()
}

func (g *Gate) MaxDuration() int64 {
	if !g.Ready() {
		return 0
	}
	return g.inner.MaxDuration()
}

// Subscribe registers on the wrapped engine; events flow only once the
// inner engine emits them.
func (g *Gate) Subscribe(fn func(Event)) {
	g.inner.Subscribe(fn)
}
