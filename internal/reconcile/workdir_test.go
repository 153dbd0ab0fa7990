package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pilecap/internal/resolver"
	"github.com/roach88/pilecap/internal/testutil"
)

func TestWorkDirRemovedAfterUse(t *testing.T) {
	var seen string
	err := WithWorkDir(Config{}, zerolog.Nop(), func(dir string) error {
		seen = dir
		assert.True(t, filepath.IsAbs(dir))
		return os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0o644)
	})
	require.NoError(t, err)

	_, err = os.Stat(seen)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWorkDirRemovedOnError(t *testing.T) {
	var seen string
	boom := errors.New("boom")
	err := WithWorkDir(Config{}, zerolog.Nop(), func(dir string) error {
		seen = dir
		return boom
	})
	assert.Equal(t, boom, err)

	_, statErr := os.Stat(seen)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestWorkDirDebugRetained(t *testing.T) {
	base := t.TempDir()
	var seen string
	err := WithWorkDir(Config{Debug: true, DebugDir: base}, zerolog.Nop(), func(dir string) error {
		seen = dir
		return nil
	})
	require.NoError(t, err)

	info, err := os.Stat(seen)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, strings.HasPrefix(filepath.Base(seen), "tmp_"))

	resolvedBase, err := filepath.EvalSymlinks(base)
	require.NoError(t, err)
	assert.Equal(t, resolvedBase, filepath.Dir(seen))
}

func TestWorkDirDebugTimestamp(t *testing.T) {
	base := t.TempDir()
	clock := testutil.NewFixedClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	cfg := Config{Debug: true, DebugDir: base, Now: clock.Now}

	var first, second string
	require.NoError(t, WithWorkDir(cfg, zerolog.Nop(), func(dir string) error {
		first = dir
		return nil
	}))
	require.NoError(t, WithWorkDir(cfg, zerolog.Nop(), func(dir string) error {
		second = dir
		return nil
	}))

	assert.True(t, strings.HasPrefix(filepath.Base(first), "tmp_20240102_030405_"))
	assert.True(t, strings.HasPrefix(filepath.Base(second), "tmp_20240102_030405_"))
	assert.NotEqual(t, first, second)
}

func TestCompileDebugKeepsInputs(t *testing.T) {
	base := t.TempDir()
	var workDir string
	res := resolver.Func(func(_ context.Context, req resolver.Request) (string, error) {
		workDir = filepath.Dir(req.Output)
		return "attrs==21.4.0\n", nil
	})

	_, err := New(res, zerolog.Nop()).Compile(context.Background(), Config{Debug: true, DebugDir: base}, Inputs{
		Requirements: requirements(t, map[string][]string{"run": {"attrs"}}),
	})
	require.NoError(t, err)

	for _, name := range []string{"run.r.txt", "anchor.c.txt", "shared.c.txt"} {
		_, err := os.Stat(filepath.Join(workDir, name))
		assert.NoError(t, err, name)
	}
}
