package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/halvard/kinocut/internal/config"
	"github.com/halvard/kinocut/internal/coordinator"
	"github.com/halvard/kinocut/internal/history"
	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/timeline"
	"github.com/halvard/kinocut/internal/tui"
)

// UIOptions holds flags for the ui command.
type UIOptions struct {
	*RootOptions
	Config  string // config file override
	Journal string // journal path; empty disables session recording
}

// NewUICommand creates the ui command.
func NewUICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UIOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ui [project.json]",
		Short: "Open the timeline editor",
		Long: `Open the interactive timeline editor. Without a project argument the
editor starts on a blank timeline.

With --journal, every session event is recorded to a SQLite journal
that 'kinocut replay' can verify later.

While the editor owns the terminal, logs go to the file named in the
config (log.file) or nowhere.

Examples:
  kinocut ui
  kinocut ui project.json
  kinocut ui project.json --journal ./kinocut.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "config file (default: search standard locations)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the session to this journal")

	return cmd
}

func runUI(opts *UIOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadUIConfig(opts.Config)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger, closeLog, err := uiLogger(cfg, opts.Verbose)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer closeLog()

	var st *timeline.State
	settings := project.DefaultSettings
	projectPath := ""
	docHash := ""
	if len(args) == 1 {
		projectPath = args[0]

		data, readErrs := ReadDocumentFile(projectPath)
		if len(readErrs) > 0 {
			var loadErr *LoadError
			if errors.As(readErrs[0], &loadErr) {
				_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
				return NewExitError(ExitCommandError, loadErr.Message)
			}
			_ = formatter.Error(ErrCodeGeneric, readErrs[0].Error(), nil)
			return NewExitError(ExitCommandError, readErrs[0].Error())
		}

		loaded, doc, decodeErrs := DecodeDocument(data)
		if len(decodeErrs) > 0 {
			return outputLoadErrors(formatter, decodeErrs)
		}
		st = loaded
		settings = doc.Settings
		if docHash, err = project.DocumentHash(doc); err != nil {
			return WrapExitError(ExitCommandError, "failed to hash document", err)
		}
	}

	store := timeline.NewStore()
	engine := media.NewMemEngine(ident.UUID())
	copts := []coordinator.Option{coordinator.WithLogger(logger)}

	var j *history.Journal
	var sess *history.Session
	if opts.Journal != "" {
		j, err = history.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()

		sess, err = j.BeginSession(cmd.Context(), projectPath, docHash)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to begin session", err)
		}
		copts = append(copts, coordinator.WithRecorder(sess))
	}

	coord := coordinator.New(store, engine, copts...)
	if st != nil {
		if err := coord.LoadState(st); err != nil {
			return WrapExitError(ExitCommandError, "failed to load document into session", err)
		}
	}
	coord.Drain()

	model := tui.New(tui.Options{
		Coordinator: coord,
		Transport:   engine,
		Config:      cfg,
		Settings:    settings,
		ProjectPath: projectPath,
		Logger:      logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return WrapExitError(ExitCommandError, "editor failed", err)
	}
	coord.Drain()

	if sess != nil {
		if err := closeSession(j, sess, store); err != nil {
			logger.Error("failed to close session", "error", err)
			return WrapExitError(ExitCommandError, "failed to close session", err)
		}
		formatter.VerboseLog("session %d journaled to %s", sess.ID(), opts.Journal)
	}
	return nil
}

// loadUIConfig loads the editor config from an explicit path or the
// standard search locations.
func loadUIConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// uiLogger builds the session logger. While the editor owns the
// terminal nothing may write to it, so logs go to the configured file
// or nowhere.
func uiLogger(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	level := parseLogLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}

	if cfg.Log.File == "" {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})), func() {}, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// closeSession stamps the journal with the session's closing content
// hash, the value replay verification recomputes.
func closeSession(j *history.Journal, sess *history.Session, store *timeline.Store) error {
	hash, err := history.StateHash(store.Snapshot())
	if err != nil {
		return fmt.Errorf("hash final state: %w", err)
	}
	return j.CloseSession(context.Background(), sess.ID(), hash)
}
