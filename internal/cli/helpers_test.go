package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pilecap/internal/envinfo"
)

var testEnv = envinfo.Static{
	"implementation_name": "cpython",
	"platform_machine":    "x86_64",
	"python_version":      "3.11",
	"sys_platform":        "linux",
}

// writeFiles creates files (relative path to content) under a new
// temporary directory and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// execute runs the root command with args and captures both streams.
func execute(t *testing.T, opts *RootOptions, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommandWithOptions(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// privateFile returns the only private constraints file under root.
func privateFile(t *testing.T, root string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(root, "constraints", "*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}
