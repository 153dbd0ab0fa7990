package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config controls one reconciliation pipeline.
type Config struct {
	// Debug keeps the working directory after the run.
	Debug bool
	// DebugDir is where retained working directories are created.
	// The current directory if empty.
	DebugDir string
	// Now names retained working directories. time.Now if nil.
	Now func() time.Time
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// WithWorkDir creates a fresh working directory, calls fn with its absolute,
// symlink-free path and removes it afterwards. With cfg.Debug the directory
// is created under cfg.DebugDir with a timestamped name and kept.
func WithWorkDir(cfg Config, logger zerolog.Logger, fn func(workDir string) error) error {
	if cfg.Debug {
		base := cfg.DebugDir
		if base == "" {
			base = "."
		}
		dir, err := os.MkdirTemp(base, cfg.now().Format("tmp_20060102_150405_"))
		if err != nil {
			return fmt.Errorf("creating working directory: %w", err)
		}
		dir, err = canonicalDir(dir)
		if err != nil {
			return err
		}
		logger.Info().Str("dir", dir).Msg("keeping working directory")
		return fn(dir)
	}

	dir, err := os.MkdirTemp("", "pilecap-")
	if err != nil {
		return fmt.Errorf("creating working directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			logger.Warn().Err(rmErr).Str("dir", dir).Msg("removing working directory")
		}
	}()

	resolved, err := canonicalDir(dir)
	if err != nil {
		return err
	}
	return fn(resolved)
}

// canonicalDir resolves dir to the form the resolver will print, e.g.
// /private/var/... rather than /var/... on macOS.
func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return resolved, nil
}
