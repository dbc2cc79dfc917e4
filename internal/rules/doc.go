// Package rules defines lexical rules and validates them before compilation.
//
// A Rule pairs a Go regexp pattern with an Action. Rules are checked in
// declaration order: the pattern must parse, the action must be set, the
// pattern may not open a capturing group, and it may not be able to match
// the empty string. The first violation is reported as a typed error carrying
// the rule index (and, for capture violations, the offset within the pattern).
//
// Every error returned by Validate satisfies errors.Is(err, ErrInvalidRule).
package rules
