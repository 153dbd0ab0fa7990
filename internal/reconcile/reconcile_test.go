package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pilecap/internal/annotate"
	"github.com/roach88/pilecap/internal/lockfile"
	"github.com/roach88/pilecap/internal/pins"
	"github.com/roach88/pilecap/internal/resolver"
	"github.com/roach88/pilecap/internal/testutil"
)

func requirements(t *testing.T, groups map[string][]string) pins.RequirementSet {
	t.Helper()
	set := pins.RequirementSet{}
	for group, raws := range groups {
		for _, raw := range raws {
			r, err := pins.ParseRequirement(raw)
			require.NoError(t, err)
			set.Add(group, r)
		}
	}
	return set
}

func TestScenarios(t *testing.T) {
	scenarios, err := testutil.LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			reqs, err := sc.RequirementSet()
			require.NoError(t, err)

			var workDir, anchorFile string
			index := sc.Resolver()
			res := resolver.Func(func(ctx context.Context, req resolver.Request) (string, error) {
				workDir = filepath.Dir(req.Output)
				data, err := os.ReadFile(filepath.Join(workDir, annotate.FileName(LabelAnchor, pins.SourceConstraint)))
				require.NoError(t, err)
				anchorFile = string(data)
				return index.Resolve(ctx, req)
			})

			result, err := New(res, zerolog.Nop()).Compile(context.Background(), Config{}, Inputs{
				PreviousPrivate: testutil.Lines(sc.PreviousPrivate),
				Shared:          testutil.Lines(sc.Shared),
				Requirements:    reqs,
			})
			require.NoError(t, err)

			// Anchor correctness: the resolver saw exactly the shared versions
			expected := pins.PinMap(sc.ExpectAnchors)
			if len(expected) == 0 {
				assert.Empty(t, result.Anchors)
				assert.Empty(t, anchorFile)
			} else {
				assert.Equal(t, expected, result.Anchors)
				assert.Equal(t, strings.Join(expected.Lines(), "\n")+"\n", anchorFile)
			}

			out, err := pins.Parse(testutil.Lines(result.Text))
			require.NoError(t, err)
			for name, version := range sc.ExpectPins {
				line, ok := out.Lookup(name)
				require.True(t, ok, name)
				assert.Equal(t, version, line.Version, name)
			}

			// No-leak
			assert.NotContains(t, result.Text, workDir)
			assert.Len(t, result.Digest, 64)

			testutil.AssertGolden(t, sc.Name, result.Text)
		})
	}
}

func TestAnchorCorrectness(t *testing.T) {
	fake := &testutil.FakeResolver{Output: "setuptools==62.3.2\n    # via -c {{workdir}}/anchor.c.txt\n"}
	r := New(fake, zerolog.Nop())

	text, err := r.Reconcile(context.Background(), t.TempDir(),
		[]string{"setuptools==60.0.0"},
		[]string{"setuptools==62.3.2"},
		requirements(t, map[string][]string{"build": {"setuptools"}}))
	require.NoError(t, err)

	call := fake.LastCall()
	assert.Equal(t, "setuptools==62.3.2\n", call.Files["anchor.c.txt"])
	assert.NotContains(t, call.Files["anchor.c.txt"], "60.0.0")
	assert.Equal(t, "setuptools==62.3.2\n    # via -c anchor\n", text)
}

func TestReconcileWritesSortedInputs(t *testing.T) {
	fake := &testutil.FakeResolver{Output: ""}
	workDir := t.TempDir()

	_, err := New(fake, zerolog.Nop()).Reconcile(context.Background(), workDir,
		[]string{"wheel==0.36.0", "pip==21.0", "six==1.15.0"},
		[]string{"# shared", "wheel==0.37.1", "pip==22.1.1"},
		requirements(t, map[string][]string{
			"run":   {"fire (>=0.4)", "attrs", "attrs"},
			"build": {"wheel", "setuptools>=40.8.0"},
		}))
	require.NoError(t, err)

	call := fake.LastCall()
	assert.Equal(t, []string{
		filepath.Join(workDir, "build.r.txt"),
		filepath.Join(workDir, "run.r.txt"),
	}, call.Request.Requirements)
	assert.Equal(t, []string{
		filepath.Join(workDir, "anchor.c.txt"),
		filepath.Join(workDir, "shared.c.txt"),
	}, call.Request.Constraints)
	assert.Equal(t, filepath.Join(workDir, OutputName), call.Request.Output)

	assert.Equal(t, "setuptools>=40.8.0\nwheel\n", call.Files["build.r.txt"])
	assert.Equal(t, "attrs\nfire (>=0.4)\n", call.Files["run.r.txt"])
	assert.Equal(t, "pip==22.1.1\nwheel==0.37.1\n", call.Files["anchor.c.txt"])
	assert.Equal(t, "# shared\nwheel==0.37.1\npip==22.1.1\n", call.Files["shared.c.txt"])
}

func TestReconcileNormalizesOutput(t *testing.T) {
	fake := &testutil.FakeResolver{Output: `pip==22.1.1
    # via
    #   -c {{workdir}}/shared.c.txt
    #   -r {{workdir}}/run.r.txt
    #   pip-tools
setuptools==62.3.2
    # via
    #   -r {{workdir}}/dev.foo.r.txt
    #   astroid
`}
	workDir := t.TempDir()
	text, err := New(fake, zerolog.Nop()).Reconcile(context.Background(), workDir, nil, nil,
		requirements(t, map[string][]string{"run": {"pip-tools"}, "dev.foo": {"astroid"}}))
	require.NoError(t, err)

	assert.NotContains(t, text, workDir)
	assert.Equal(t, `pip==22.1.1
    # via
    #   -c shared
    #   -r run
    #   pip-tools
setuptools==62.3.2
    # via
    #   -r dev.foo
    #   astroid
`, text)
}

func TestIdempotence(t *testing.T) {
	sc, err := testutil.LoadScenario(filepath.Join("testdata", "scenarios", "anchor_shared_wins.yaml"))
	require.NoError(t, err)
	reqs, err := sc.RequirementSet()
	require.NoError(t, err)

	r := New(sc.Resolver(), zerolog.Nop())
	header := lockfile.Header(map[string]string{"sys_platform": "linux"}, "")
	compile := func(previous []string) string {
		result, err := r.Compile(context.Background(), Config{}, Inputs{
			PreviousPrivate: previous,
			Shared:          testutil.Lines(sc.Shared),
			Requirements:    reqs,
		})
		require.NoError(t, err)
		return lockfile.Compose(header, result.Text)
	}

	first := compile(testutil.Lines(sc.PreviousPrivate))
	second := compile(testutil.Lines(first))
	third := compile(testutil.Lines(second))

	// The first recompile adds "-c anchor" to anchored pins. From then on
	// a file fed back as the previous private constraints reproduces itself.
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, third)

	anchored := third
	assert.Equal(t, anchored, compile(testutil.Lines(anchored)))
	assert.Contains(t, anchored, "-c anchor")

	f, err := pins.Parse(testutil.Lines(second))
	require.NoError(t, err)
	wheel, ok := f.Lookup("wheel")
	require.True(t, ok)
	assert.Equal(t, "0.37.1", wheel.Version)
}

// realPathResolver reports input files by their absolute, symlink-free
// path, as pip-compile does.
func realPathResolver(t *testing.T) resolver.Func {
	return func(_ context.Context, req resolver.Request) (string, error) {
		abs, err := filepath.Abs(filepath.Dir(req.Output))
		require.NoError(t, err)
		dir, err := filepath.EvalSymlinks(abs)
		require.NoError(t, err)
		return "attrs==21.4.0\n    # via -r " + filepath.Join(dir, "run.r.txt") + "\n", nil
	}
}

func TestReconcileSymlinkedWorkDir(t *testing.T) {
	real := filepath.Join(t.TempDir(), "real")
	require.NoError(t, os.Mkdir(real, 0o755))
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(real, link))

	text, err := New(realPathResolver(t), zerolog.Nop()).Reconcile(context.Background(), link, nil, nil,
		requirements(t, map[string][]string{"run": {"attrs"}}))
	require.NoError(t, err)

	resolvedReal, err := filepath.EvalSymlinks(real)
	require.NoError(t, err)
	assert.NotContains(t, text, resolvedReal)
	assert.Equal(t, "attrs==21.4.0\n    # via -r run\n", text)
}

func TestReconcileRelativeWorkDir(t *testing.T) {
	base := t.TempDir()
	chdir(t, base)
	require.NoError(t, os.Mkdir("wd", 0o755))

	text, err := New(realPathResolver(t), zerolog.Nop()).Reconcile(context.Background(), "wd", nil, nil,
		requirements(t, map[string][]string{"run": {"attrs"}}))
	require.NoError(t, err)
	assert.Equal(t, "attrs==21.4.0\n    # via -r run\n", text)
}

func TestEmptyInputBootstrap(t *testing.T) {
	fake := &testutil.FakeResolver{Output: "attrs==21.4.0\n    # via -r {{workdir}}/run.r.txt\n"}
	result, err := New(fake, zerolog.Nop()).Compile(context.Background(), Config{}, Inputs{
		Requirements: requirements(t, map[string][]string{"run": {"attrs"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, "attrs==21.4.0\n    # via -r run\n", result.Text)
	assert.Empty(t, result.Anchors)

	call := fake.LastCall()
	assert.Equal(t, "", call.Files["anchor.c.txt"])
	assert.Equal(t, "", call.Files["shared.c.txt"])
}

func TestResolverErrorIsPropagatedUnchanged(t *testing.T) {
	resolveErr := errors.New("Could not find a version that satisfies the requirement nope")
	fake := &testutil.FakeResolver{Err: resolveErr}

	_, err := New(fake, zerolog.Nop()).Compile(context.Background(), Config{}, Inputs{
		Requirements: requirements(t, map[string][]string{"run": {"nope"}}),
	})
	assert.Equal(t, resolveErr, err)
	assert.Len(t, fake.Calls(), 1)
}

func TestInvalidPreviousPrivate(t *testing.T) {
	fake := &testutil.FakeResolver{}
	_, err := New(fake, zerolog.Nop()).Reconcile(context.Background(), t.TempDir(),
		[]string{"setuptools>=60"}, nil,
		requirements(t, map[string][]string{"run": {"attrs"}}))
	require.Error(t, err)
	assert.ErrorIs(t, err, pins.ErrNotPinned)
	assert.Contains(t, err.Error(), "previous private constraints")
	assert.Empty(t, fake.Calls())
}

func TestDuplicateSharedPin(t *testing.T) {
	_, err := New(&testutil.FakeResolver{}, zerolog.Nop()).Reconcile(context.Background(), t.TempDir(),
		nil, []string{"pip==22.1.1", "pip==22.1.2"},
		requirements(t, map[string][]string{"run": {"attrs"}}))
	assert.ErrorIs(t, err, pins.ErrDuplicatePackage)
}

func TestLabelCollision(t *testing.T) {
	fake := &testutil.FakeResolver{}
	_, err := New(fake, zerolog.Nop()).Reconcile(context.Background(), t.TempDir(), nil, nil,
		requirements(t, map[string][]string{"shared": {"attrs"}}))
	assert.ErrorIs(t, err, ErrLabelCollision)
	assert.Empty(t, fake.Calls())
}

func TestInvalidLabel(t *testing.T) {
	for _, label := range []string{"../escape", "a/b", "trailing.", ".hidden", "with space"} {
		t.Run(label, func(t *testing.T) {
			_, err := New(&testutil.FakeResolver{}, zerolog.Nop()).Reconcile(context.Background(), t.TempDir(), nil, nil,
				requirements(t, map[string][]string{label: {"attrs"}}))
			assert.ErrorIs(t, err, ErrInvalidLabel)
		})
	}
}

func TestNoRequirements(t *testing.T) {
	_, err := New(&testutil.FakeResolver{}, zerolog.Nop()).Compile(context.Background(), Config{}, Inputs{})
	assert.ErrorIs(t, err, ErrNoRequirements)
}
