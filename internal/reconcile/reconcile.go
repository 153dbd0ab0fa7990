package reconcile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/roach88/pilecap/internal/annotate"
	"github.com/roach88/pilecap/internal/pins"
	"github.com/roach88/pilecap/internal/resolver"
)

// OutputName is the file the resolver writes inside the working directory.
const OutputName = "resolved.txt"

// Inputs are the snapshots one reconciliation works from.
type Inputs struct {
	PreviousPrivate []string // lines of the previous private constraints file, nil on first run
	Shared          []string // lines of the shared constraints file, nil if absent
	Requirements    pins.RequirementSet
}

// Result is the outcome of one reconciliation.
type Result struct {
	Text    string      // normalized resolver output, without header
	Anchors pins.PinMap // pins forced onto the resolver
	Digest  string      // digest of the resolver inputs
}

// Reconciler drives the resolver.
type Reconciler struct {
	Resolver resolver.Resolver
	Logger   zerolog.Logger
}

// New returns a Reconciler using res.
func New(res resolver.Resolver, logger zerolog.Logger) *Reconciler {
	return &Reconciler{Resolver: res, Logger: logger}
}

// Compile runs one reconciliation in a scoped working directory.
func (r *Reconciler) Compile(ctx context.Context, cfg Config, in Inputs) (*Result, error) {
	var result *Result
	err := WithWorkDir(cfg, r.Logger, func(workDir string) error {
		var err error
		result, err = r.reconcile(ctx, workDir, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reconcile computes the body of the new private constraints file using
// workDir, which must exist and be empty. workDir may be relative or go
// through symlinks. Resolver errors are returned unchanged.
func (r *Reconciler) Reconcile(ctx context.Context, workDir string, previousPrivate, shared []string, reqs pins.RequirementSet) (string, error) {
	workDir, err := canonicalDir(workDir)
	if err != nil {
		return "", err
	}
	result, err := r.reconcile(ctx, workDir, Inputs{
		PreviousPrivate: previousPrivate,
		Shared:          shared,
		Requirements:    reqs,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (r *Reconciler) reconcile(ctx context.Context, workDir string, in Inputs) (*Result, error) {
	private, err := pins.Parse(in.PreviousPrivate)
	if err != nil {
		return nil, fmt.Errorf("previous private constraints: %w", err)
	}
	shared, err := pins.Parse(in.Shared)
	if err != nil {
		return nil, fmt.Errorf("shared constraints: %w", err)
	}

	anchors := pins.IntersectFiles(private, shared)
	for _, name := range anchors.Names() {
		if old, ok := private.Lookup(name); ok && old.Version != anchors[name] {
			r.Logger.Info().
				Str("package", name).
				Str("from", old.Version).
				Str("to", anchors[name]).
				Msg("re-anchoring to shared constraint")
		}
	}

	files, err := planInputs(in.Requirements, anchors, in.Shared)
	if err != nil {
		return nil, err
	}
	requirements, constraints, err := writeInputs(workDir, files)
	if err != nil {
		return nil, err
	}
	digest := inputsDigest(files)
	r.Logger.Debug().
		Str("digest", digest).
		Int("anchors", len(anchors)).
		Int("shared", len(shared.Lines)).
		Int("previous", len(private.Lines)).
		Msg("resolver inputs written")

	raw, err := r.Resolver.Resolve(ctx, resolver.Request{
		Requirements: requirements,
		Constraints:  constraints,
		Output:       filepath.Join(workDir, OutputName),
	})
	if err != nil {
		return nil, err
	}

	text := annotate.Normalize(workDir, raw)
	if annotate.Leaks(workDir, text) {
		r.Logger.Warn().Str("dir", workDir).Msg("resolver output still references the working directory")
	}

	return &Result{Text: text, Anchors: anchors, Digest: digest}, nil
}
