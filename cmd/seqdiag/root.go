package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rendis/seqdiag/internal/document"
	"github.com/rendis/seqdiag/internal/logging"
	"github.com/spf13/cobra"
)

// app carries what every command needs once the root has parsed its flags.
type app struct {
	cfg    Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logger *slog.Logger
	closer io.Closer
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, cfg Config) *app {
	return &app{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr, logger: logging.Discard()}
}

// renderer builds a document.Renderer from the resolved configuration.
func (a *app) renderer() (*document.Renderer, error) {
	return document.NewRenderer(document.Options{Engine: a.cfg.Engine, Logger: a.logger})
}

func newRootCmd(a *app) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "seqdiag",
		Short:         "seqdiag renders Mermaid sequence diagrams from declarative documents",
		Long:          `seqdiag compiles JSON, YAML, TOML or HCL sequence documents into Mermaid sequenceDiagram text, validates them, and serves the same operations over MCP and HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				a.cfg.LogLevel = "debug"
			}
			logger, closer, err := logging.New(logging.Options{
				Level:   a.cfg.LogLevel,
				Stderr:  a.stderr,
				File:    a.cfg.LogFile,
				Journal: a.cfg.LogJournal,
				Pretty:  a.cfg.LogPretty,
			})
			if err != nil {
				return err
			}
			a.logger, a.closer = logger, closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate(fmt.Sprintf("seqdiag %s\n", version))

	flags := root.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&a.cfg.LogFile, "log-file", a.cfg.LogFile, "append JSON logs to this file")
	flags.BoolVar(&a.cfg.LogJournal, "log-journal", a.cfg.LogJournal, "also log to the systemd journal")
	flags.BoolVar(&a.cfg.LogPretty, "log-pretty", a.cfg.LogPretty, "colored terminal logs instead of logfmt")
	flags.StringVar(&a.cfg.Engine, "engine", a.cfg.Engine, "interpolation engine (expr, jq)")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newColorsCmd(a))
	root.AddCommand(newSchemaCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newVersionCmd(a))

	return root
}
