package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pilecap/internal/resolver"
)

// NewInstallCommand creates the install command.
//
// Flag parsing is disabled so that every argument, including ones that
// look like flags ("-e ."), reaches pip untouched.
func NewInstallCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [pip-args...]",
		Short: "Install package(s) using pip",
		Long: `Install package(s) using pip with the private constraints file of the
current environment as PIP_CONSTRAINT.

Passes any arguments to pip. If none are given, all pinned packages will be
installed.`,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runInstall(opts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}

	cwd, err := os.Getwd()
	if err != nil {
		return formatter.Fail(err)
	}
	p, err := loadProject(cmd.Context(), opts, cwd)
	if err != nil {
		return formatter.Fail(err)
	}

	installer := opts.Installer
	if installer == nil {
		installer = resolver.PipInstall{
			Command: p.Settings.Pip,
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
			Logger:  opts.Logger,
		}
	}

	constraints := p.privateConstraints()
	opts.Logger.Debug().Str("constraints", constraints).Strs("args", args).Msg("installing")
	if err := installer.Install(cmd.Context(), constraints, args); err != nil {
		return formatter.Fail(err)
	}
	return nil
}
