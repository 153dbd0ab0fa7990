package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/pilecap/internal/envinfo"
	"github.com/roach88/pilecap/internal/resolver"
)

// Installer installs packages under a constraints file.
type Installer interface {
	Install(ctx context.Context, constraintsFile string, args []string) error
}

// RootOptions holds global flags for all commands, plus the external
// collaborators. A nil collaborator is built from the project's settings.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Env       envinfo.Describer
	Resolver  resolver.Resolver
	Installer Installer
	Logger    zerolog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pilecap CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, which
// lets callers inject collaborators.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pilecap",
		Short: "pilecap - incremental, reproducible constraints files",
		Long: `Maintain a private constraints file pinning every transitive dependency
of a Python project, anchored to the organization's shared constraints.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Parse global flags ahead of the subcommand name; install does
		// no flag parsing of its own.
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewInstallCommand(opts))
	cmd.AddCommand(NewPlumbingCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
