package gather

import "errors"

var (
	// ErrNoProject is returned when a directory has no pyproject.toml.
	ErrNoProject = errors.New("no pyproject.toml found")

	// ErrNotIntrospectable is returned when run requirements cannot be
	// determined without executing the build backend.
	ErrNotIntrospectable = errors.New("project metadata cannot be introspected")

	// ErrInvalidSettings is returned when [tool.pilecap] does not match the schema.
	ErrInvalidSettings = errors.New("invalid [tool.pilecap] settings")
)
