// Package archive keeps resolved plans for later inspection.
//
// Every plan carries a UUID (see deplist.Plan.ID). An [Archive] stores plans
// under that ID and lists them newest first. Two stores exist: [FileArchive]
// writes one JSON file per plan and [MongoArchive] keeps plans in a MongoDB
// collection shared by server instances.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
)

// Archive stores plans by ID.
type Archive interface {
	Save(ctx context.Context, p *deplist.Plan) error
	// Get returns the plan with the given ID, or an error with code
	// NOT_FOUND.
	Get(ctx context.Context, id string) (*deplist.Plan, error)
	// List returns up to limit summaries, newest first. A limit of zero
	// means no limit.
	List(ctx context.Context, limit int) ([]Summary, error)
	Close(ctx context.Context) error
}

// Summary describes an archived plan without its entries.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Targets   []string  `json:"targets" bson:"targets"`
	Entries   int       `json:"entries" bson:"entries"`
	HasErrors bool      `json:"has_errors" bson:"has_errors"`
}

// Summarize returns the summary of p.
func Summarize(p *deplist.Plan) Summary {
	return Summary{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Targets:   p.Targets,
		Entries:   len(p.Entries),
		HasErrors: p.HasErrors,
	}
}

// Open returns a Mongo archive when uri is set, a file archive when dir is
// set, and nil otherwise.
func Open(ctx context.Context, uri, database, dir string) (Archive, error) {
	switch {
	case uri != "":
		return NewMongoArchive(ctx, uri, database)
	case dir != "":
		return NewFileArchive(dir)
	}
	return nil, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "plan id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
}
