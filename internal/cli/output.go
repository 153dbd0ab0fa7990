package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/roach88/pilecap/internal/gather"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0 // Successful execution
	ExitFailure = 1 // Any failure, including failures of external tools
)

// Error codes reported in command output.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeNoProject         = "E002" // No pyproject.toml
	ErrCodeNotIntrospectable = "E003" // Requirements cannot be read
	ErrCodeSettings          = "E004" // Invalid [tool.pilecap]
	ErrCodeToolFailed        = "E005" // pip-compile, pip or python failed
	ErrCodeWriteFailed       = "E006" // Constraints file write error
)

// ExitError carries the exit code for an error that has already been
// reported to the user.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Reported reports whether err was already printed by a command.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Destination for text-mode errors (defaults to Writer)
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.errWriter(), "Error [%s]: %s\n", code, message)
	return nil
}

// Fail reports err and returns it wrapped with ExitFailure. The original
// error stays reachable through errors.Is/As.
func (f *OutputFormatter) Fail(err error) error {
	code, details := classify(err)
	_ = f.Error(code, err.Error(), details)
	return WrapExitError(ExitFailure, code, err)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// classify maps an error to an output code. Tool failures carry the tool's
// own stderr as details.
func classify(err error) (string, any) {
	var exitErr *exec.ExitError
	var execErr *exec.Error
	switch {
	case errors.Is(err, gather.ErrNoProject):
		return ErrCodeNoProject, nil
	case errors.Is(err, gather.ErrNotIntrospectable):
		return ErrCodeNotIntrospectable, nil
	case errors.Is(err, gather.ErrInvalidSettings):
		return ErrCodeSettings, nil
	case errors.As(err, &exitErr):
		if len(exitErr.Stderr) > 0 {
			return ErrCodeToolFailed, string(exitErr.Stderr)
		}
		return ErrCodeToolFailed, nil
	case errors.As(err, &execErr):
		return ErrCodeToolFailed, nil
	default:
		return ErrCodeGeneric, nil
	}
}
