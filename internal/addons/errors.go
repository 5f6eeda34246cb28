package addons

import (
	"errors"
	"fmt"
)

// ErrDependencyCycle is returned by Deploy when addon dependencies form a cycle.
var ErrDependencyCycle = errors.New("addon dependency cycle")

// PreconditionError reports an invalid combination of addon options.
// It is raised before any values are computed.
type PreconditionError struct {
	Addon  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("addon %s: precondition failed: %s", e.Addon, e.Reason)
}

// DependencyKind tells what kind of collaborator is missing.
type DependencyKind string

// Dependency kinds.
const (
	DependencyAddon    DependencyKind = "addon"
	DependencyResource DependencyKind = "resource"
)

// MissingDependencyError reports that a collaborator an enabled feature needs
// was not found in the cluster registries. It is a configuration error and is
// never retried.
type MissingDependencyError struct {
	Addon      string
	Dependency string
	Kind       DependencyKind
}

func (e *MissingDependencyError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = DependencyAddon
	}
	return fmt.Sprintf("addon %s: missing %s dependency %q", e.Addon, kind, e.Dependency)
}

// IsPrecondition reports whether err is or wraps a PreconditionError.
func IsPrecondition(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

// IsMissingDependency reports whether err is or wraps a MissingDependencyError.
func IsMissingDependency(err error) bool {
	var target *MissingDependencyError
	return errors.As(err, &target)
}
