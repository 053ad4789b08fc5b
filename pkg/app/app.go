package app

import (
	"fmt"
	"io"
	"os"

	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/config"
)

// App holds all shared mutable state for the CLI. It is created once per
// invocation and threaded into every command package.
type App struct {
	// I/O
	OutWriter    io.Writer
	ErrWriter    io.Writer
	InReader     io.Reader
	ColorableOut io.Writer

	Log zerolog.Logger

	// Config state
	Cfg     *config.Config
	CfgFile string

	Verbose bool

	// JSON output formatter
	JSONFmt *prettyjson.Formatter

	// Root command reference (for completion generation)
	Root *cobra.Command
}

// New creates an App with sane defaults.
func New() *App {
	jsonfmt := prettyjson.NewFormatter()
	jsonfmt.Indent = 2

	return &App{
		OutWriter:    os.Stdout,
		ErrWriter:    os.Stderr,
		InReader:     os.Stdin,
		ColorableOut: colorable.NewColorableStdout(),
		JSONFmt:      jsonfmt,
	}
}

// InitConfig reads the user config file and sets up logging. Called by
// PersistentPreRunE on the root command.
func (a *App) InitConfig() error {
	level := zerolog.InfoLevel
	if a.Verbose {
		level = zerolog.DebugLevel
	}
	a.Log = zerolog.New(zerolog.ConsoleWriter{Out: a.ErrWriter}).
		Level(level).
		With().Timestamp().Logger()

	path := a.CfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.Cfg = cfg

	return nil
}
