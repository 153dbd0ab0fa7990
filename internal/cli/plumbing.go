package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pilecap/internal/gather"
	"github.com/roach88/pilecap/internal/pins"
)

// NewPlumbingCommand creates the plumbing command with its low level
// subcommands.
func NewPlumbingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plumbing",
		Short: "Access to low level functions",
	}

	cmd.AddCommand(newRequirementsCommand(rootOpts,
		"build-requirements",
		"Print all immediate dependencies for building the package",
		gather.BuildRequirements,
	))
	cmd.AddCommand(newRequirementsCommand(rootOpts,
		"run-requirements",
		"Print all immediate dependencies for running the package",
		gather.RunRequirements,
	))

	return cmd
}

func newRequirementsCommand(opts *RootOptions, use, short string, gatherFn func(root string) ([]pins.Requirement, error)) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <project_root>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
			}
			reqs, err := gatherFn(args[0])
			if err != nil {
				return formatter.Fail(err)
			}
			lines := sortedRequirements(reqs)
			if formatter.Format == "json" {
				return formatter.Success(lines)
			}
			if len(lines) == 0 {
				return nil
			}
			return formatter.Success(strings.Join(lines, "\n"))
		},
	}
}

// sortedRequirements returns the unique specifiers in reqs, sorted.
func sortedRequirements(reqs []pins.Requirement) []string {
	seen := make(map[string]bool, len(reqs))
	lines := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if !seen[r.Raw] {
			seen[r.Raw] = true
			lines = append(lines, r.Raw)
		}
	}
	sort.Strings(lines)
	return lines
}
