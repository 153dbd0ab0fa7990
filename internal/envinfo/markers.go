package envinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/google/uuid"
)

// Markers maps PEP 508 marker names to their values.
type Markers map[string]string

// fingerprintKeys are the markers that decide whether two environments can
// share a lock file. Kernel release and build strings are left out on purpose.
var fingerprintKeys = []string{
	"implementation_name",
	"platform_machine",
	"python_version",
	"sys_platform",
}

// fingerprintNamespace scopes fingerprints to pilecap (UUIDv5 namespace).
var fingerprintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/pilecap/environment/v1"))

// Fingerprint returns a stable identifier for the environment.
// Markers outside fingerprintKeys do not affect the result.
func (m Markers) Fingerprint() (string, error) {
	subset := make(Markers, len(fingerprintKeys))
	for _, k := range fingerprintKeys {
		v, ok := m[k]
		if !ok {
			return "", fmt.Errorf("fingerprint: missing marker %q", k)
		}
		subset[k] = v
	}
	canonical, err := MarshalCanonical(subset)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return uuid.NewSHA1(fingerprintNamespace, canonical).String(), nil
}

// Describer reports the markers of an environment.
type Describer interface {
	Markers(ctx context.Context) (Markers, error)
}

// markerScript mirrors packaging.markers.default_environment() using only
// the standard library, so it works before anything is installed.
const markerScript = `
import json, os, platform, sys

def fmt(info):
    version = "{0.major}.{0.minor}.{0.micro}".format(info)
    if info.releaselevel != "final":
        version += info.releaselevel[0] + str(info.serial)
    return version

print(json.dumps({
    "implementation_name": sys.implementation.name,
    "implementation_version": fmt(sys.implementation.version),
    "os_name": os.name,
    "platform_machine": platform.machine(),
    "platform_python_implementation": platform.python_implementation(),
    "platform_release": platform.release(),
    "platform_system": platform.system(),
    "platform_version": platform.version(),
    "python_full_version": platform.python_version(),
    "python_version": ".".join(platform.python_version_tuple()[:2]),
    "sys_platform": sys.platform,
}))
`

// Interpreter asks a Python interpreter for its markers.
type Interpreter struct {
	Python string // executable name or path, "python3" if empty
}

// Markers runs the interpreter and decodes its report. Failures to start
// or run the interpreter are returned unchanged.
func (p Interpreter) Markers(ctx context.Context) (Markers, error) {
	python := p.Python
	if python == "" {
		python = "python3"
	}
	out, err := exec.CommandContext(ctx, python, "-c", markerScript).Output()
	if err != nil {
		return nil, err
	}
	var m Markers
	if err := json.Unmarshal(out, &m); err != nil {
		return nil, fmt.Errorf("decoding markers from %s: %w", python, err)
	}
	return m, nil
}

// Static is a Describer with fixed markers.
type Static Markers

// Markers returns a copy of the fixed markers.
func (s Static) Markers(context.Context) (Markers, error) {
	m := make(Markers, len(s))
	for k, v := range s {
		m[k] = v
	}
	return m, nil
}
