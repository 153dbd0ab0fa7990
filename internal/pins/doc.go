// Package pins provides the data model shared by every pilecap package.
//
// This package contains requirement and constraint types plus the pure
// functions that operate on them. All other internal packages import pins;
// pins imports nothing internal.
//
// Key constraints:
//   - A constraint File never holds two lines for the same package.
//   - Package names are compared in PEP 503 canonical form but rendered
//     with the spelling of the file that supplied them.
//   - Every ordered rendering (Names, Lines) is lexicographic so that
//     generated files are byte-stable across runs.
package pins
