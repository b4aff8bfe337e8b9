package repository

import "github.com/matzehuels/deplist/pkg/spec"

// Match reports whether p satisfies every part of c.
func Match(c *spec.PackageConstraint, p *Package) bool {
	return MatchIgnoringUse(c, p) && matchUse(c, p)
}

// MatchIgnoringUse is [Match] without the flag requirements.
func MatchIgnoringUse(c *spec.PackageConstraint, p *Package) bool {
	if c.Name != p.ID.Name {
		return false
	}
	if c.Slot != "" && c.Slot != p.Slot() {
		return false
	}
	if c.Repository != "" && c.Repository != p.ID.Repository {
		return false
	}
	return c.MatchesVersion(p.ID.Version)
}

func matchUse(c *spec.PackageConstraint, p *Package) bool {
	for _, u := range c.Use {
		if p.UseEnabled(u.Flag) != u.Enabled {
			return false
		}
	}
	return true
}
