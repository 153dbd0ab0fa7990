package pins

import "errors"

var (
	// ErrEmptyRequirement is returned when a requirement has no package name.
	ErrEmptyRequirement = errors.New("requirement has no package name")

	// ErrNotPinned is returned when a constraint line is not of the form name==version.
	ErrNotPinned = errors.New("constraint is not pinned with ==")

	// ErrDuplicatePackage is returned when a constraint file pins a package twice.
	ErrDuplicatePackage = errors.New("package pinned more than once")
)
