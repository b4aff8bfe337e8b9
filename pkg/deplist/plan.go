package deplist

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/deplist/pkg/dag"
)

// Plan is an exportable snapshot of a resolved list.
type Plan struct {
	ID        string            `json:"id" yaml:"id"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
	Targets   []string          `json:"targets" yaml:"targets"`
	Options   map[string]string `json:"options" yaml:"options"`
	Entries   []PlanEntry       `json:"entries" yaml:"entries"`
	HasErrors bool              `json:"has_errors" yaml:"has_errors"`
}

// PlanEntry is one entry of a [Plan].
type PlanEntry struct {
	Package     string    `json:"package" yaml:"package"`
	Kind        string    `json:"kind" yaml:"kind"`
	Destination string    `json:"destination,omitempty" yaml:"destination,omitempty"`
	Tags        []PlanTag `json:"tags,omitempty" yaml:"tags,omitempty"`
	Associated  string    `json:"associated,omitempty" yaml:"associated,omitempty"`
}

// PlanTag is an exported [Tag].
type PlanTag struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Plan snapshots the list. targets are recorded as given.
func (d *DepList) Plan(targets ...string) *Plan {
	p := &Plan{
		ID:        uuid.NewString(),
		CreatedAt: d.now().UTC(),
		Targets:   targets,
		Options:   d.opts.Map(),
		Entries:   make([]PlanEntry, 0, len(d.state.entries)),
		HasErrors: d.HasErrors(),
	}
	for _, e := range d.state.entries {
		pe := PlanEntry{
			Package:     e.String(),
			Kind:        e.Kind.String(),
			Destination: e.Destination,
		}
		for _, t := range e.Tags {
			pe.Tags = append(pe.Tags, PlanTag{Kind: t.Kind.String(), Name: t.Name})
		}
		if e.Associated != nil {
			pe.Associated = e.Associated.String()
		}
		p.Entries = append(p.Entries, pe)
	}
	return p
}

// Count returns the number of entries of kind.
func (p *Plan) Count(kind Kind) int {
	n := 0
	for _, e := range p.Entries {
		if e.Kind == kind.String() {
			n++
		}
	}
	return n
}

// Graph builds the dependency graph of the plan. Edges run from an entry to
// the entries it depends on, as recorded by dependency tags, and from an
// entry to the entries it caused.
//
// Plans resolved with circular dependencies discarded can contain cycles.
func (p *Plan) Graph() (*dag.DAG, error) {
	g := dag.New(dag.Metadata{"plan": p.ID})
	// An error entry shares its package with the entry installing it. The
	// installing entry keeps the bare package as its ID so that dependency
	// tags, which name packages, link to it.
	installing := make(map[string]bool)
	for _, e := range p.Entries {
		if k, ok := ParseKind(e.Kind); ok && !k.IsError() {
			installing[e.Package] = true
		}
	}
	ids := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		id := e.Package
		k, _ := ParseKind(e.Kind)
		if _, dup := g.Node(id); dup || (k.IsError() && installing[e.Package]) {
			id += " (" + e.Kind + ")"
		}
		ids[i] = id
		meta := dag.Metadata{"kind": e.Kind, "position": i, "package": e.Package}
		if e.Destination != "" {
			meta["destination"] = e.Destination
		}
		if err := g.AddNode(dag.Node{ID: id, Meta: meta}); err != nil {
			return nil, err
		}
	}

	seen := make(map[[2]string]bool)
	link := func(from, to, reason string) error {
		if from == to || seen[[2]string{from, to}] {
			return nil
		}
		if _, ok := g.Node(from); !ok {
			return nil
		}
		seen[[2]string{from, to}] = true
		return g.AddEdge(dag.Edge{From: from, To: to, Meta: dag.Metadata{"reason": reason}})
	}
	for i, e := range p.Entries {
		for _, t := range e.Tags {
			if t.Kind != TagDependency.String() {
				continue
			}
			if err := link(t.Name, ids[i], "dependency"); err != nil {
				return nil, err
			}
		}
		if e.Associated != "" {
			if err := link(e.Associated, ids[i], e.Kind); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
