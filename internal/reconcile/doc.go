// Package reconcile computes a new private constraints file from the
// project's requirements, the shared constraints and the previous private
// constraints.
//
// One reconciliation is a sequential pipeline:
//
//	anchor -> write resolver inputs -> resolve -> normalize
//
// # Anchors
//
// A package that appears in both the previous private file and the shared
// file is anchored to the shared version. Shared policy always wins over a
// stale private pin. Packages that are only private are left free for the
// resolver to update; packages that are only shared still constrain the
// resolver through the shared constraints file, which is passed through
// as a separate source.
//
// # Working directory
//
// Resolver inputs live in a scratch directory owned by one reconciliation.
// Each input is named <label>.c.txt (constraints) or <label>.r.txt
// (requirements) so that the paths the resolver prints in "via" comments
// map back to labels such as "shared" or "run". The directory is removed
// afterwards unless Config.Debug is set.
//
// # Determinism
//
// Every input file is written in lexicographic order, so for a
// deterministic resolver the output is a pure function of the inputs.
// Errors from the resolver are returned unchanged.
package reconcile
