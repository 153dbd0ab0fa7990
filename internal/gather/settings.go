package gather

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed settings.cue
var settingsSchema string

// Settings are the per-project options read from [tool.pilecap].
type Settings struct {
	// SharedConstraints is the shared constraints file, relative to the
	// project root unless absolute.
	SharedConstraints string
	Python            string
	PipCompile        string
	Pip               string
	// ResolverArgs are passed to pip-compile after pilecap's own flags.
	ResolverArgs []string
	Debug        bool
}

// DefaultSettings returns the settings used when pyproject.toml has no
// [tool.pilecap] table.
func DefaultSettings() Settings {
	return Settings{
		SharedConstraints: "constraints.txt",
		Python:            "python3",
		PipCompile:        "pip-compile",
		Pip:               "pip",
	}
}

// SharedConstraintsPath resolves the shared constraints file for root.
func (s Settings) SharedConstraintsPath(root string) string {
	if filepath.IsAbs(s.SharedConstraints) {
		return s.SharedConstraints
	}
	return filepath.Join(root, s.SharedConstraints)
}

type fileSettings struct {
	SharedConstraints string   `json:"shared-constraints"`
	Python            string   `json:"python"`
	PipCompile        string   `json:"pip-compile"`
	Pip               string   `json:"pip"`
	ResolverArgs      []string `json:"resolver-args"`
	Debug             bool     `json:"debug"`
}

// LoadSettings reads [tool.pilecap] from the project in root and applies
// every defined key on top of DefaultSettings.
func LoadSettings(root string) (Settings, error) {
	cfg := DefaultSettings()

	p, meta, err := loadPyProject(root)
	if err != nil {
		return Settings{}, err
	}
	if p.Tool.Pilecap == nil {
		return cfg, nil
	}

	var raw fileSettings
	if err := decodeSettings(p.Tool.Pilecap, &raw); err != nil {
		return Settings{}, err
	}

	defined := func(key string) bool {
		return meta.IsDefined("tool", "pilecap", key)
	}
	if defined("shared-constraints") {
		cfg.SharedConstraints = strings.TrimSpace(raw.SharedConstraints)
	}
	if defined("python") {
		cfg.Python = strings.TrimSpace(raw.Python)
	}
	if defined("pip-compile") {
		cfg.PipCompile = strings.TrimSpace(raw.PipCompile)
	}
	if defined("pip") {
		cfg.Pip = strings.TrimSpace(raw.Pip)
	}
	if defined("resolver-args") {
		cfg.ResolverArgs = raw.ResolverArgs
	}
	if defined("debug") {
		cfg.Debug = raw.Debug
	}
	return cfg, nil
}

// decodeSettings validates the raw TOML table against the embedded CUE
// schema and decodes it into out.
func decodeSettings(table map[string]any, out *fileSettings) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(settingsSchema, cue.Filename("settings.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling settings schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))

	value := def.Unify(ctx.Encode(table))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, formatCUEError(err))
	}
	if err := value.Decode(out); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, formatCUEError(err))
	}
	return nil
}

func formatCUEError(err error) string {
	var msgs []string
	for _, e := range errors.Errors(err) {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}
