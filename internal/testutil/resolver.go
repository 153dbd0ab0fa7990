package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/roach88/pilecap/internal/resolver"
)

// WorkDirPlaceholder in canned resolver output is replaced by the working
// directory of the request.
const WorkDirPlaceholder = "{{workdir}}"

// Call records one resolver invocation.
type Call struct {
	Request resolver.Request
	// Files maps input base names to their contents at call time. The
	// working directory is usually gone by the time a test inspects it.
	Files map[string]string
}

// FakeResolver returns canned output and records every call.
//
// Thread-safety: FakeResolver is safe for concurrent use via internal mutex.
type FakeResolver struct {
	Output string
	Err    error

	mu    sync.Mutex
	calls []Call
}

// Resolve records req and returns Output with the placeholder expanded,
// or Err if set.
func (f *FakeResolver) Resolve(_ context.Context, req resolver.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Request: req, Files: snapshot(req)})
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	return strings.ReplaceAll(f.Output, WorkDirPlaceholder, filepath.Dir(req.Output)), nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeResolver) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// LastCall returns the most recent call. Panics if there was none.
func (f *FakeResolver) LastCall() Call {
	calls := f.Calls()
	if len(calls) == 0 {
		panic("FakeResolver: no calls recorded")
	}
	return calls[len(calls)-1]
}

func snapshot(req resolver.Request) map[string]string {
	files := map[string]string{}
	for _, path := range append(append([]string{}, req.Requirements...), req.Constraints...) {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		files[filepath.Base(path)] = string(data)
	}
	return files
}
