package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halvard/kinocut/internal/history"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal string
	Session int64 // 0 = verify every session
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions    []history.VerifyResult `json:"sessions"`
	Total       int                    `json:"total"`
	AllVerified bool                   `json:"all_verified"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Fold journaled editing sessions through a fresh engine-less session
and verify each one reproduces the content hash it closed with.

Sessions that were never closed are folded without a hash comparison;
they verify as long as every record applies cleanly.

Exit codes:
  0 - All sessions verified
  1 - A session diverged or failed to fold
  2 - Command error (journal not found, etc.)

Examples:
  kinocut replay --journal ./kinocut.db
  kinocut replay --journal ./kinocut.db --session 3
  kinocut replay --journal ./kinocut.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the session journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().Int64Var(&opts.Session, "session", 0, "verify a single session id")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := history.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ids, err := sessionIDs(ctx, j, opts.Session)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("session %d not found", opts.Session), err)
		}
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	if len(ids) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{Sessions: []history.VerifyResult{}, AllVerified: true})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in journal.")
		return nil
	}

	result := ReplayResult{
		Sessions:    make([]history.VerifyResult, 0, len(ids)),
		Total:       len(ids),
		AllVerified: true,
	}

	for _, id := range ids {
		res, err := j.VerifySession(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to verify session %d", id), err)
		}
		result.Sessions = append(result.Sessions, res)
		if !res.Verified {
			result.AllVerified = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// sessionIDs resolves the --session flag: one id when given, otherwise
// every session in the journal.
func sessionIDs(ctx context.Context, j *history.Journal, session int64) ([]int64, error) {
	if session != 0 {
		if _, err := j.GetSession(ctx, session); err != nil {
			return nil, err
		}
		return []int64{session}, nil
	}

	infos, err := j.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(infos))
	for _, si := range infos {
		ids = append(ids, si.ID)
	}
	return ids, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}

	if result.AllVerified {
		if err := formatter.Success(result); err != nil {
			return err
		}
		return nil
	}

	failed := countFailed(result)
	if err := formatter.Error(ErrCodeDiverged, fmt.Sprintf("%d session(s) failed verification", failed), result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d session(s) failed verification", failed))
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	for _, s := range result.Sessions {
		if s.Verified {
			note := ""
			if !s.Complete {
				note = " (open session, fold only)"
			}
			fmt.Fprintf(w, "✓ session %d: %d event(s)%s\n", s.SessionID, s.Events, note)
			if verbose && s.Replayed != "" {
				fmt.Fprintf(w, "  hash %s\n", s.Replayed)
			}
			continue
		}
		fmt.Fprintf(w, "✗ session %d: %d event(s)\n", s.SessionID, s.Events)
		if s.Error != "" {
			fmt.Fprintf(w, "  %s\n", s.Error)
		}
	}

	fmt.Fprintln(w)
	failed := countFailed(result)
	fmt.Fprintf(w, "Replay Summary: %d verified, %d failed, %d total\n", result.Total-failed, failed, result.Total)

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d session(s) failed verification", failed))
	}
	fmt.Fprintln(w, "✓ All sessions verified")
	return nil
}

func countFailed(result ReplayResult) int {
	failed := 0
	for _, s := range result.Sessions {
		if !s.Verified {
			failed++
		}
	}
	return failed
}
