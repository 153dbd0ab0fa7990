// Package resolver runs the external tools pilecap delegates to:
// pip-compile for dependency resolution and pip for installation.
//
// Errors from these tools are returned as-is. A failed run yields the
// *exec.ExitError of the subprocess with Stderr filled in, so callers can
// show the tool's own diagnostics; nothing here retries.
package resolver
