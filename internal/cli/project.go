package cli

import (
	"context"
	"fmt"

	"github.com/roach88/pilecap/internal/envinfo"
	"github.com/roach88/pilecap/internal/gather"
	"github.com/roach88/pilecap/internal/lockfile"
)

// project bundles what every command learns about the project it runs in.
type project struct {
	Root        string
	Settings    gather.Settings
	Markers     envinfo.Markers
	Fingerprint string
}

// loadProject locates the project in dir, reads its settings and describes
// the environment.
func loadProject(ctx context.Context, opts *RootOptions, dir string) (*project, error) {
	root, err := gather.ProjectRoot(dir)
	if err != nil {
		return nil, err
	}
	settings, err := gather.LoadSettings(root)
	if err != nil {
		return nil, err
	}

	describer := opts.Env
	if describer == nil {
		describer = envinfo.Interpreter{Python: settings.Python}
	}
	markers, err := describer.Markers(ctx)
	if err != nil {
		return nil, err
	}
	fingerprint, err := markers.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("describing environment: %w", err)
	}

	opts.Logger.Debug().
		Str("root", root).
		Str("fingerprint", fingerprint).
		Msg("loaded project")

	return &project{
		Root:        root,
		Settings:    settings,
		Markers:     markers,
		Fingerprint: fingerprint,
	}, nil
}

// privateConstraints is the default private constraints file of p.
func (p *project) privateConstraints() string {
	return lockfile.DefaultPath(p.Root, p.Fingerprint)
}
