package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/nusig/internal/app"
	"github.com/vk/nusig/internal/config"
	"github.com/vk/nusig/internal/ctxlog"
	"github.com/vk/nusig/internal/dsl"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

func failure(err error) *ExitError {
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

// Streams are the standard streams of a command.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type rootOptions struct {
	logLevel  string
	logFormat string
}

// Execute runs the command line args. Every returned error is an *ExitError:
// usage problems carry ExitUsage, everything else ExitFailure.
func Execute(ctx context.Context, args []string, streams Streams, loader config.Loader) error {
	root := NewRootCommand(streams, loader)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Cobra reports unknown commands and bad arguments as plain errors.
	return usageError("%v", err)
}

// NewRootCommand builds the nusig command tree.
func NewRootCommand(streams Streams, loader config.Loader) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "nusig",
		Short: "Generate Go signature constructors from a compact signature DSL",
		Long: `nusig turns signature literals written in //nusig:make directives into Go
code that builds the described signature.Signature value at compile time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			logger := app.NewLogger(opts.logLevel, opts.logFormat, streams.Err)
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(
		newGenerateCommand(opts, loader),
		newMakeCommand(),
		newInspectCommand(),
		newFmtCommand(),
	)
	return root
}

func (o *rootOptions) validate() error {
	o.logFormat = strings.ToLower(o.logFormat)
	if o.logFormat != "text" && o.logFormat != "json" {
		return usageError("invalid log-format: must be 'text' or 'json'")
	}
	o.logLevel = strings.ToLower(o.logLevel)
	switch o.logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	return nil
}

// reportParseError prints the source snippet of a rejected signature.
func reportParseError(w io.Writer, err error) {
	var perr *dsl.ParseError
	if errors.As(err, &perr) {
		_ = perr.WriteDiagnostics(w, 0, false)
	}
}
