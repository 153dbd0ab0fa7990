package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Request describes one resolution. All paths are absolute files inside
// the reconciliation working directory.
type Request struct {
	Requirements []string // primary inputs, "-r" sources in the output
	Constraints  []string // pin sources, "-c" sources in the output
	Output       string   // file the resolver writes its result to
}

// Resolver turns requirement and constraint files into a fully pinned,
// annotated constraints text.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (string, error)
}

// PipCompile resolves with pip-tools' pip-compile.
type PipCompile struct {
	Command string   // executable, "pip-compile" if empty
	Args    []string // extra arguments appended after pilecap's own
	Stderr  io.Writer
	Logger  zerolog.Logger
}

// CommandLine returns the argv used for req.
func (p PipCompile) CommandLine(req Request) []string {
	command := p.Command
	if command == "" {
		command = "pip-compile"
	}
	argv := []string{
		command,
		"--quiet",
		"--no-header",
		"--allow-unsafe",
		"--output-file", req.Output,
	}
	for _, c := range req.Constraints {
		argv = append(argv, "--constraint", c)
	}
	argv = append(argv, p.Args...)
	return append(argv, req.Requirements...)
}

// Resolve runs pip-compile and returns the contents of the output file.
func (p PipCompile) Resolve(ctx context.Context, req Request) (string, error) {
	if len(req.Requirements) == 0 {
		return "", errors.New("resolve: no requirement files")
	}
	argv := p.CommandLine(req)
	p.Logger.Debug().Strs("argv", argv).Msg("running resolver")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = filepath.Dir(req.Output)
	if err := run(cmd, p.Stderr); err != nil {
		return "", err
	}

	out, err := os.ReadFile(req.Output)
	if err != nil {
		return "", fmt.Errorf("reading resolver output: %w", err)
	}
	return string(out), nil
}

// run executes cmd, streaming its stderr to w (if set) while keeping a
// copy on the returned *exec.ExitError.
func run(cmd *exec.Cmd, w io.Writer) error {
	var stderr bytes.Buffer
	if w != nil {
		cmd.Stderr = io.MultiWriter(&stderr, w)
	} else {
		cmd.Stderr = &stderr
	}
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitErr.Stderr = stderr.Bytes()
	}
	return err
}

// Func adapts a function to the Resolver interface.
type Func func(ctx context.Context, req Request) (string, error)

// Resolve calls f.
func (f Func) Resolve(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
