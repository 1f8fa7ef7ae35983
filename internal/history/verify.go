package history

import (
	"context"
	"fmt"

	"github.com/halvard/kinocut/internal/coordinator"
	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/timeline"
)

// StateHash is the hash replay verification compares. It covers the
// timeline content only: no event ever changes composition settings, so
// they are normalized to defaults and a journal stays self-contained.
// CloseSession callers must stamp sessions with the same hash.
func StateHash(st *timeline.State) (string, error) {
	return project.DocumentHash(project.FromState(st, project.DefaultSettings))
}

// VerifyResult reports one session's replay verification.
type VerifyResult struct {
	SessionID int64  `json:"session_id"`
	Events    int    `json:"events"`
	Complete  bool   `json:"complete"`                // closed with a recorded final hash
	Expected  string `json:"expected_hash,omitempty"` // journaled final hash
	Replayed  string `json:"replayed_hash,omitempty"`
	Verified  bool   `json:"verified"`
	Error     string `json:"error,omitempty"` // fold failure or divergence detail
}

// VerifySession folds one session's journal into a fresh session over a
// closed engine gate and compares the resulting content hash with the
// journaled final hash. Sessions that were never closed fold without a
// comparison; Verified then only means the journal applies cleanly.
//
// Only journal access problems return an error. Fold failures and hash
// divergence are results, not errors.
func (j *Journal) VerifySession(ctx context.Context, id int64) (VerifyResult, error) {
	info, err := j.GetSession(ctx, id)
	if err != nil {
		return VerifyResult{}, err
	}
	records, err := j.ReadEvents(ctx, id)
	if err != nil {
		return VerifyResult{}, err
	}

	res := VerifyResult{
		SessionID: id,
		Events:    len(records),
		Complete:  info.ClosedAt != "" && info.FinalHash != "",
		Expected:  info.FinalHash,
	}

	store := timeline.NewStore()
	coord := coordinator.New(store, media.NewGate(media.NewMemEngine(ident.Sequence("replay"))))
	for _, rec := range records {
		if err := coord.ApplyRecord(rec); err != nil {
			res.Error = err.Error()
			return res, nil
		}
	}

	hash, err := StateHash(store.Snapshot())
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}
	res.Replayed = hash

	if !res.Complete {
		res.Verified = true
		return res, nil
	}
	res.Verified = hash == res.Expected
	if !res.Verified {
		res.Error = fmt.Sprintf("replayed hash %s does not match journaled final hash %s", hash, res.Expected)
	}
	return res, nil
}
