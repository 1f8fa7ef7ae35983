package coordinator

import (
	"fmt"

	"github.com/halvard/kinocut/internal/canvas"
	"github.com/halvard/kinocut/internal/media"
)

// ApplyRecord folds one journaled event back into the session,
// bypassing the queue and the journal: records are already ordered and
// already durable.
//
// Replay sessions should run against a closed engine gate. Surface
// records still try to forward and are dropped, while the recorded
// engine echoes rebuild the store on their own — including echoes of
// operations the original session forwarded.
func (c *Coordinator) ApplyRecord(rec Record) error {
	switch rec.Source {
	case SourceEngine.String():
		ev, err := media.DecodeEvent(rec.Name, rec.Payload)
		if err != nil {
			return fmt.Errorf("replay seq %d: %w", rec.Seq, err)
		}
		return c.applyEngine(ev)

	case SourceSurface.String():
		ev, err := canvas.DecodeEvent(rec.Name, rec.Payload)
		if err != nil {
			return fmt.Errorf("replay seq %d: %w", rec.Seq, err)
		}
		return c.applySurface(rec.Seq, ev)

	default:
		return fmt.Errorf("replay seq %d: unknown source %q", rec.Seq, rec.Source)
	}
}
