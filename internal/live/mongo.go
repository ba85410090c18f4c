package live

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/watch"
)

// MongoRegister stores the live slot as the sole document of a collection.
// Fallback backing when Redis is not configured.
type MongoRegister struct {
	col    *mongo.Collection
	events watch.Publisher
}

func NewMongoRegister(col *mongo.Collection, events watch.Publisher) *MongoRegister {
	return &MongoRegister{col: col, events: events}
}

func (r *MongoRegister) notify() {
	if r.events != nil {
		r.events.Publish()
	}
}

func (r *MongoRegister) Set(ctx context.Context, rec *testimony.LiveTestimony) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{}, rec, opts); err != nil {
		return err
	}
	r.notify()
	return nil
}

func (r *MongoRegister) Get(ctx context.Context) (*testimony.LiveTestimony, error) {
	var rec testimony.LiveTestimony
	if err := r.col.FindOne(ctx, bson.M{}).Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *MongoRegister) Clear(ctx context.Context) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	r.notify()
	return nil
}
