package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/halvard/kinocut/internal/history"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Journal string
}

// SessionRow is one journaled session in the sessions output.
type SessionRow struct {
	ID           int64  `json:"id"`
	OpenedAt     string `json:"opened_at"`
	ClosedAt     string `json:"closed_at,omitempty"`
	ProjectPath  string `json:"project_path,omitempty"`
	DocumentHash string `json:"document_hash,omitempty"`
	FinalHash    string `json:"final_hash,omitempty"`
	Events       int64  `json:"events"`
}

// SessionsResult holds the sessions listing.
type SessionsResult struct {
	Sessions []SessionRow `json:"sessions"`
	Total    int          `json:"total"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List journaled editing sessions",
		Long: `List every editing session recorded in a journal, oldest first.

Exit codes:
  0 - Success
  2 - Command error (journal not found, etc.)

Examples:
  kinocut sessions --journal ./kinocut.db
  kinocut sessions --journal ./kinocut.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the session journal (required)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runSessions(opts *SessionsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := history.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	infos, err := j.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	result := SessionsResult{
		Sessions: make([]SessionRow, 0, len(infos)),
		Total:    len(infos),
	}
	for _, si := range infos {
		result.Sessions = append(result.Sessions, SessionRow{
			ID:           si.ID,
			OpenedAt:     si.OpenedAt,
			ClosedAt:     si.ClosedAt,
			ProjectPath:  si.ProjectPath,
			DocumentHash: si.DocumentHash,
			FinalHash:    si.FinalHash,
			Events:       si.EventCount,
		})
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return formatter.Success(result)
	}
	return outputSessionsText(cmd, result, opts.Verbose)
}

// outputSessionsText renders the listing for humans.
func outputSessionsText(cmd *cobra.Command, result SessionsResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if result.Total == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}

	for _, s := range result.Sessions {
		status := "open"
		if s.ClosedAt != "" {
			status = "closed"
		}
		fmt.Fprintf(w, "session %d: %s event(s), opened %s, %s", s.ID, humanize.Comma(s.Events), relativeTime(s.OpenedAt), status)
		if s.ProjectPath != "" {
			fmt.Fprintf(w, ", project %s", s.ProjectPath)
		}
		fmt.Fprintln(w)

		if verbose && s.FinalHash != "" {
			fmt.Fprintf(w, "  final hash %s\n", s.FinalHash)
		}
	}

	fmt.Fprintf(w, "\n%d session(s)\n", result.Total)
	return nil
}

// relativeTime renders a journal timestamp as "3 hours ago", falling
// back to the raw stamp when it doesn't parse.
func relativeTime(stamp string) string {
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return stamp
	}
	return humanize.Time(t)
}
