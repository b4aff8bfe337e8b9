package deplist

import (
	"fmt"
	"strings"

	"github.com/matzehuels/deplist/pkg/errors"
)

// ErrListInUse is returned when options are replaced on a list that holds
// entries.
var ErrListInUse = errors.New(errors.ErrCodeListInUse, "cannot change options of a list in use, clear it first")

// AllMaskedError reports that no visible package matches a constraint.
type AllMaskedError struct {
	Query string
}

func (e *AllMaskedError) Error() string {
	return fmt.Sprintf("%s: all versions of '%s' are masked", errors.ErrCodeAllMasked, e.Query)
}

// ErrorCode implements [errors.Coder].
func (e *AllMaskedError) ErrorCode() errors.Code { return errors.ErrCodeAllMasked }

// UseRequirementsNotMetError reports that visible packages match a
// constraint only when its flag requirements are ignored.
type UseRequirementsNotMetError struct {
	Query string
}

func (e *UseRequirementsNotMetError) Error() string {
	return fmt.Sprintf("%s: use requirements for '%s' are not met", errors.ErrCodeUseRequirementsNotMet, e.Query)
}

// ErrorCode implements [errors.Coder].
func (e *UseRequirementsNotMetError) ErrorCode() errors.Code {
	return errors.ErrCodeUseRequirementsNotMet
}

// CircularDependencyError reports a constraint that leads back to an entry
// still being built.
type CircularDependencyError struct {
	Constraint string
	// Entry is the entry reached again.
	Entry string
	// Path lists the entries being built, outermost first.
	Path []string
}

func (e *CircularDependencyError) Error() string {
	msg := fmt.Sprintf("%s: circular dependency on '%s' (matched by '%s')",
		errors.ErrCodeCircularDependency, e.Entry, e.Constraint)
	if len(e.Path) > 0 {
		msg += ": " + strings.Join(append(e.Path, e.Entry), " -> ")
	}
	return msg
}

// ErrorCode implements [errors.Coder].
func (e *CircularDependencyError) ErrorCode() errors.Code { return errors.ErrCodeCircularDependency }

// BlockError reports a block that cannot be accumulated.
type BlockError struct {
	Blocked string
	// By is the package that is blocked, if any.
	By string
}

func (e *BlockError) Error() string {
	if e.By == "" {
		return fmt.Sprintf("%s: block on '%s'", errors.ErrCodeBlockConflict, e.Blocked)
	}
	return fmt.Sprintf("%s: block on '%s' matches '%s'", errors.ErrCodeBlockConflict, e.Blocked, e.By)
}

// ErrorCode implements [errors.Coder].
func (e *BlockError) ErrorCode() errors.Code { return errors.ErrCodeBlockConflict }

// DowngradeNotAllowedError reports a selection that would downgrade an
// installed package.
type DowngradeNotAllowedError struct {
	To   string
	From string
}

func (e *DowngradeNotAllowedError) Error() string {
	return fmt.Sprintf("%s: downgrade to '%s' from '%s' not allowed", errors.ErrCodeDowngradeNotAllowed, e.To, e.From)
}

// ErrorCode implements [errors.Coder].
func (e *DowngradeNotAllowedError) ErrorCode() errors.Code { return errors.ErrCodeDowngradeNotAllowed }

// NoDestinationError reports a package no destination accepts.
type NoDestinationError struct {
	Package string
}

func (e *NoDestinationError) Error() string {
	return fmt.Sprintf("%s: no suitable destination for '%s'", errors.ErrCodeNoDestination, e.Package)
}

// ErrorCode implements [errors.Coder].
func (e *NoDestinationError) ErrorCode() errors.Code { return errors.ErrCodeNoDestination }

// SlotConflictError reports a second package for an occupied slot.
type SlotConflictError struct {
	Package  string
	Existing string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%s: '%s' conflicts with '%s' in the same slot", errors.ErrCodeSlotConflict, e.Package, e.Existing)
}

// ErrorCode implements [errors.Coder].
func (e *SlotConflictError) ErrorCode() errors.Code { return errors.ErrCodeSlotConflict }

// isResolutionError reports whether err is a resolution failure that an
// any-of group may try around. Context cancellation and universe failures
// are not.
func isResolutionError(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeAllMasked,
		errors.ErrCodeUseRequirementsNotMet,
		errors.ErrCodeCircularDependency,
		errors.ErrCodeBlockConflict,
		errors.ErrCodeDowngradeNotAllowed,
		errors.ErrCodeNoDestination,
		errors.ErrCodeSlotConflict:
		return true
	}
	return false
}
