package gather

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	root := writeProject(t, staticProject)
	cfg, err := LoadSettings(root)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), cfg)
	assert.Equal(t, filepath.Join(root, "constraints.txt"), cfg.SharedConstraintsPath(root))
}

func TestLoadSettingsOverrides(t *testing.T) {
	root := writeProject(t, staticProject+`
[tool.pilecap]
shared-constraints = "/etc/org/constraints.txt"
pip-compile = "/opt/bin/pip-compile"
resolver-args = ["--generate-hashes"]
debug = true
`)
	cfg, err := LoadSettings(root)
	require.NoError(t, err)

	assert.Equal(t, "/etc/org/constraints.txt", cfg.SharedConstraintsPath(root))
	assert.Equal(t, "/opt/bin/pip-compile", cfg.PipCompile)
	assert.Equal(t, []string{"--generate-hashes"}, cfg.ResolverArgs)
	assert.True(t, cfg.Debug)

	// Undefined keys keep their defaults
	assert.Equal(t, "python3", cfg.Python)
	assert.Equal(t, "pip", cfg.Pip)
}

func TestLoadSettingsRejectsUnknownKey(t *testing.T) {
	root := writeProject(t, staticProject+"\n[tool.pilecap]\nshared = \"x.txt\"\n")
	_, err := LoadSettings(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestLoadSettingsRejectsWrongType(t *testing.T) {
	root := writeProject(t, staticProject+"\n[tool.pilecap]\ndebug = \"yes\"\n")
	_, err := LoadSettings(root)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestLoadSettingsRejectsEmptyPath(t *testing.T) {
	root := writeProject(t, staticProject+"\n[tool.pilecap]\nshared-constraints = \"\"\n")
	_, err := LoadSettings(root)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}
