package cli

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/timeline"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Width   int
	Height  int
	FPS     float64
	BGColor string
	Force   bool
	NoInput bool
}

// InitResult holds the init summary for JSON output.
type InitResult struct {
	Path     string           `json:"path"`
	Settings project.Settings `json:"settings"`
	Tracks   int              `json:"tracks"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a starter project document",
		Long: `Create a starter project document: an empty timeline with one video
and one audio track.

When run on a terminal, composition settings are asked interactively
(prefilled from the flags); otherwise the flags are used as-is.

Exit codes:
  0 - Success
  2 - Command error (file exists, bad settings, write failure)

Examples:
  kinocut init
  kinocut init cuts/intro.json --width 1280 --height 720 --fps 24
  kinocut init --no-input --force`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "project.json"
			if len(args) == 1 {
				path = args[0]
			}
			return runInit(opts, path, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Width, "width", project.DefaultSettings.Width, "composition width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", project.DefaultSettings.Height, "composition height in pixels")
	cmd.Flags().Float64Var(&opts.FPS, "fps", project.DefaultSettings.FPS, "composition frame rate")
	cmd.Flags().StringVar(&opts.BGColor, "bg", project.DefaultSettings.BGColor, "background color (#rrggbb)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&opts.NoInput, "no-input", false, "never prompt, use flag values")

	return cmd
}

func runInit(opts *InitOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		msg := fmt.Sprintf("%s already exists (use --force to overwrite)", path)
		_ = formatter.Error(ErrCodeExists, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	settings := project.Settings{
		Width:   opts.Width,
		Height:  opts.Height,
		FPS:     opts.FPS,
		BGColor: opts.BGColor,
	}

	if promptable(opts) {
		var err error
		settings, err = promptSettings(settings)
		if err != nil {
			return WrapExitError(ExitCommandError, "init cancelled", err)
		}
	}

	doc := starterDocument(settings)
	encoded, err := project.Encode(doc)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "init failed", err)
	}

	// Self-check: never write a document validate would reject.
	if verrs := project.ValidateDocument(encoded); len(verrs) > 0 {
		msg := fmt.Sprintf("invalid settings: %s", verrs[0].Message)
		_ = formatter.Error(verrs[0].Code, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	if err := os.WriteFile(path, encoded, 0644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write project file", err)
	}

	if opts.Format == "json" {
		return formatter.Success(InitResult{
			Path:     path,
			Settings: settings,
			Tracks:   len(doc.Tracks),
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Created %s (%dx%d @ %g fps)\n", path, settings.Width, settings.Height, settings.FPS)
	return nil
}

// promptable reports whether init may ask questions: an interactive
// terminal on both ends, human-readable output, and prompting not
// explicitly disabled.
func promptable(opts *InitOptions) bool {
	if opts.NoInput || opts.Format == "json" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// promptSettings asks for composition settings, prefilled from the
// flag values.
func promptSettings(s project.Settings) (project.Settings, error) {
	width := strconv.Itoa(s.Width)
	height := strconv.Itoa(s.Height)
	fps := strconv.FormatFloat(s.FPS, 'f', -1, 64)
	bg := s.BGColor

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Width (px)").Value(&width).Validate(validatePositiveInt),
			huh.NewInput().Title("Height (px)").Value(&height).Validate(validatePositiveInt),
			huh.NewInput().Title("Frame rate (fps)").Value(&fps).Validate(validatePositiveNumber),
			huh.NewInput().Title("Background color").Value(&bg).Validate(validateHexColor),
		),
	)
	if err := form.Run(); err != nil {
		return project.Settings{}, err
	}

	s.Width, _ = strconv.Atoi(width)
	s.Height, _ = strconv.Atoi(height)
	s.FPS, _ = strconv.ParseFloat(fps, 64)
	s.BGColor = bg
	return s, nil
}

// starterDocument is an empty timeline with one lane per core media
// type, ready for the editor to drop clips into.
func starterDocument(s project.Settings) *project.Document {
	return &project.Document{
		Clips: []timeline.Clip{},
		Tracks: []timeline.Track{
			{ID: "video-1", Name: "Video 1", Type: timeline.TrackVideo, ClipIDs: []string{}},
			{ID: "audio-1", Name: "Audio 1", Type: timeline.TrackAudio, ClipIDs: []string{}},
		},
		Settings: s,
	}
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

func validatePositiveNumber(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func validateHexColor(s string) error {
	if !hexColorRe.MatchString(s) {
		return fmt.Errorf("enter a color like #1a1a1a")
	}
	return nil
}
