package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pilecap/internal/gather"
	"github.com/roach88/pilecap/internal/lockfile"
	"github.com/roach88/pilecap/internal/pins"
	"github.com/roach88/pilecap/internal/reconcile"
	"github.com/roach88/pilecap/internal/resolver"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	OutputFile string // update this file instead of the default
	ProjectDir string
	Debug      bool
}

// CompileSummary is the JSON payload of a successful compile.
type CompileSummary struct {
	Output   string            `json:"output"`
	Packages int               `json:"packages"`
	Anchors  map[string]string `json:"anchors"`
	Digest   string            `json:"digest"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile constraints file",
		Long: `Compile the private constraints file for the current environment.

Packages that were pinned by the previous private constraints file and are
now pinned by the shared constraints file are anchored to the shared version.
Everything else is left for pip-compile to resolve.

Runs are only as reproducible as the package index pip-compile resolves
against.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OutputFile, "output-file", "", "update this constraints file instead of the default")
	cmd.Flags().StringVar(&opts.ProjectDir, "project-dir", ".", "project root containing pyproject.toml")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "keep the working directory in the current directory")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
	ctx := cmd.Context()

	p, err := loadProject(ctx, opts.RootOptions, opts.ProjectDir)
	if err != nil {
		return formatter.Fail(err)
	}

	dst := opts.OutputFile
	if dst == "" {
		dst = p.privateConstraints()
	}

	previous, err := lockfile.ReadLines(dst)
	if err != nil {
		return formatter.Fail(err)
	}
	shared, err := lockfile.ReadLines(p.Settings.SharedConstraintsPath(p.Root))
	if err != nil {
		return formatter.Fail(err)
	}
	reqs, err := gather.Requirements(p.Root)
	if err != nil {
		return formatter.Fail(err)
	}

	res := opts.Resolver
	if res == nil {
		res = resolver.PipCompile{
			Command: p.Settings.PipCompile,
			Args:    p.Settings.ResolverArgs,
			Stderr:  cmd.ErrOrStderr(),
			Logger:  opts.Logger,
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return formatter.Fail(err)
	}
	cfg := reconcile.Config{
		Debug:    opts.Debug || p.Settings.Debug,
		DebugDir: cwd,
	}

	result, err := reconcile.New(res, opts.Logger).Compile(ctx, cfg, reconcile.Inputs{
		PreviousPrivate: previous,
		Shared:          shared,
		Requirements:    reqs,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	text := lockfile.Compose(lockfile.Header(p.Markers, opts.OutputFile), result.Text)
	if err := lockfile.Write(dst, text); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, ErrCodeWriteFailed, err)
	}

	packages := 0
	if f, err := pins.Parse(strings.Split(result.Text, "\n")); err == nil {
		packages = len(f.Lines)
	}
	opts.Logger.Debug().Str("digest", result.Digest).Msg("compiled")

	if formatter.Format == "json" {
		return formatter.Success(CompileSummary{
			Output:   dst,
			Packages: packages,
			Anchors:  result.Anchors,
			Digest:   result.Digest,
		})
	}
	return formatter.Success(formatCompileSummary(dst, packages, len(result.Anchors)))
}

func formatCompileSummary(dst string, packages, anchors int) string {
	return fmt.Sprintf("✓ Wrote %s (%d package(s), %d anchored to shared constraints)", dst, packages, anchors)
}
