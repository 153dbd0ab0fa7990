// Package gather reads a project's declared requirements and pilecap
// settings from its pyproject.toml.
//
// Build requirements come from [build-system].requires. Run requirements
// come from the project's core metadata: the static [project] table when
// dependencies are declared there, otherwise a PKG-INFO file generated by
// the build backend. Extras markers are stripped so that every optional
// dependency is pinned too.
package gather
