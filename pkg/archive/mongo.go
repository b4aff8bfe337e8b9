package archive

import (
	"bytes"
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
	planio "github.com/matzehuels/deplist/pkg/io"
)

// Collection is the MongoDB collection holding plans.
const Collection = "plans"

// MongoArchive stores plans in MongoDB. Each document carries the summary
// fields for listing and the JSON encoding of the full plan.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type planDoc struct {
	Summary `bson:",inline"`
	Plan    []byte `bson:"plan"`
}

// NewMongoArchive connects to uri and uses the plans collection of
// database.
func NewMongoArchive(ctx context.Context, uri, database string) (*MongoArchive, error) {
	if database == "" {
		database = "deplist"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoArchive{
		client: client,
		coll:   client.Database(database).Collection(Collection),
	}, nil
}

func (a *MongoArchive) Save(ctx context.Context, p *deplist.Plan) error {
	doc, err := encodeDoc(p)
	if err != nil {
		return err
	}
	_, err = a.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (a *MongoArchive) Get(ctx context.Context, id string) (*deplist.Plan, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var doc planDoc
	err := a.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return decodeDoc(doc)
}

func (a *MongoArchive) List(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"plan": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := a.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Summary
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

func encodeDoc(p *deplist.Plan) (planDoc, error) {
	if err := validateID(p.ID); err != nil {
		return planDoc{}, err
	}
	var buf bytes.Buffer
	if err := planio.WritePlan(p, &buf, planio.FormatJSON); err != nil {
		return planDoc{}, err
	}
	return planDoc{Summary: Summarize(p), Plan: buf.Bytes()}, nil
}

func decodeDoc(doc planDoc) (*deplist.Plan, error) {
	return planio.ReadPlan(bytes.NewReader(doc.Plan), planio.FormatJSON)
}

var _ Archive = (*MongoArchive)(nil)
