package resolver

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// ConstraintEnv is the environment variable pip reads a constraints file from.
const ConstraintEnv = "PIP_CONSTRAINT"

// PipInstall installs packages with pip under a constraints file.
type PipInstall struct {
	Command string   // executable, "pip" if empty
	Env     []string // base environment, os.Environ() if nil
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  zerolog.Logger
}

// CommandLine returns the argv and environment used to install. With no
// args every pinned package in constraintsFile is installed.
func (p PipInstall) CommandLine(constraintsFile string, args []string) (argv, env []string) {
	command := p.Command
	if command == "" {
		command = "pip"
	}
	if len(args) == 0 {
		args = []string{"-r", constraintsFile}
	}
	argv = append([]string{command, "install"}, args...)

	base := p.Env
	if base == nil {
		base = os.Environ()
	}
	env = append(append([]string{}, base...), ConstraintEnv+"="+constraintsFile)
	return argv, env
}

// Install runs pip install. Failures are returned unchanged.
func (p PipInstall) Install(ctx context.Context, constraintsFile string, args []string) error {
	argv, env := p.CommandLine(constraintsFile, args)
	p.Logger.Debug().Strs("argv", argv).Str("constraints", constraintsFile).Msg("running installer")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdout = p.Stdout
	return run(cmd, p.Stderr)
}
