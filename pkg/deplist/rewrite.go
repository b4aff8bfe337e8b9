package deplist

import (
	"github.com/matzehuels/deplist/pkg/spec"
	"github.com/matzehuels/deplist/pkg/version"
)

// rewriteRanges collapses any-of children that differ only in one version
// requirement into a single constraint accepting any of the versions, so
// the best visible version is picked rather than the first listed one.
//
// The rewrite applies only when every child is a plain constraint on the
// same package with at most one version requirement. A child without a
// requirement makes the result unversioned.
func rewriteRanges(children []spec.Node) []spec.Node {
	if len(children) < 2 {
		return children
	}
	var (
		name        spec.QualifiedName
		versions    []version.Requirement
		unversioned bool
	)
	for i, n := range children {
		c, ok := n.(*spec.PackageConstraint)
		if !ok || c.Slot != "" || c.Repository != "" || len(c.Use) > 0 || len(c.Versions) > 1 {
			return children
		}
		if i == 0 {
			name = c.Name
		} else if c.Name != name {
			return children
		}
		if len(c.Versions) == 0 {
			unversioned = true
			continue
		}
		versions = append(versions, c.Versions[0])
	}
	merged := &spec.PackageConstraint{Name: name, VersionMode: spec.VersionsOr, Versions: versions}
	if unversioned {
		merged.Versions = nil
		merged.VersionMode = spec.VersionsAnd
	}
	return []spec.Node{merged}
}
