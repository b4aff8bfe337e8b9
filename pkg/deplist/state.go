package deplist

import (
	"slices"

	"github.com/matzehuels/deplist/pkg/repository"
	"github.com/matzehuels/deplist/pkg/spec"
)

// state is the ordered entry list with its name index and generation
// counter. Every add runs as a transaction: on failure, entries and tags
// newer than the transaction's starting generation are removed.
type state struct {
	entries    []*Entry
	byName     map[spec.QualifiedName][]*Entry
	generation int
}

func newState() *state {
	return &state{byName: make(map[spec.QualifiedName][]*Entry)}
}

// begin starts a transaction and returns its starting generation.
func (s *state) begin() int {
	start := s.generation
	s.generation++
	return start
}

// rollback removes everything added after start.
func (s *state) rollback(start int) {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.generation > start {
			continue
		}
		e.Tags = slices.DeleteFunc(e.Tags, func(t Tag) bool { return t.generation > start })
		kept = append(kept, e)
	}
	clear(s.entries[len(kept):])
	s.entries = kept

	for name, list := range s.byName {
		list = slices.DeleteFunc(list, func(e *Entry) bool { return e.generation > start })
		if len(list) == 0 {
			delete(s.byName, name)
		} else {
			s.byName[name] = list
		}
	}
}

// insert places e before the entry before, or at the end when before is nil
// or no longer in the list.
func (s *state) insert(e *Entry, before *Entry) {
	e.generation = s.generation
	for i := range e.Tags {
		e.Tags[i].generation = s.generation
	}
	i := len(s.entries)
	if before != nil {
		if j := slices.Index(s.entries, before); j >= 0 {
			i = j
		}
	}
	s.entries = slices.Insert(s.entries, i, e)
	name := e.Package.ID.Name
	s.byName[name] = append(s.byName[name], e)
}

// prepend places e at the start of the list.
func (s *state) prepend(e *Entry) {
	var first *Entry
	if len(s.entries) > 0 {
		first = s.entries[0]
	}
	s.insert(e, first)
}

// tag adds t to e in the current generation.
func (s *state) tag(e *Entry, t Tag) {
	t.generation = s.generation
	e.addTag(t)
}

// after returns the entry following e, or nil when e is last.
func (s *state) after(e *Entry) *Entry {
	i := slices.Index(s.entries, e)
	if i < 0 || i+1 >= len(s.entries) {
		return nil
	}
	return s.entries[i+1]
}

// named returns the entries for name in insertion order.
func (s *state) named(name spec.QualifiedName) []*Entry {
	return s.byName[name]
}

// find returns the first entry of one of kinds matching c.
func (s *state) find(c *spec.PackageConstraint, kinds ...Kind) *Entry {
	for _, e := range s.byName[c.Name] {
		if slices.Contains(kinds, e.Kind) && repository.Match(c, e.Package) {
			return e
		}
	}
	return nil
}

// occupant returns the entry installing into the slot of p, if any.
func (s *state) occupant(p *repository.Package) *Entry {
	for _, e := range s.byName[p.ID.Name] {
		if e.Kind.installs() && e.Slot() == p.Slot() {
			return e
		}
	}
	return nil
}

func (s *state) reset() {
	s.entries = nil
	s.byName = make(map[spec.QualifiedName][]*Entry)
	s.generation = 0
}
