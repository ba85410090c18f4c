package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/watch"
	"github.com/harvestchapel/testimony-live/pkg/logger"
)

// MongoRepo is the MongoDB-backed testimony repository. Records carry an
// opaque string "id" field (compatible with ids minted by earlier deployments)
// rather than ObjectIDs.
type MongoRepo struct {
	col    *mongo.Collection
	events watch.Publisher
}

func NewMongoRepo(col *mongo.Collection, events watch.Publisher) *MongoRepo {
	// id lookups back every mutation; keep them indexed and unique
	idx := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(context.Background(), idx); err != nil {
		logger.Warnf("testimonies: could not ensure id index: %v", err)
	}
	return &MongoRepo{col: col, events: events}
}

func (m *MongoRepo) notify() {
	if m.events != nil {
		m.events.Publish()
	}
}

func (m *MongoRepo) Create(ctx context.Context, t *testimony.Testimony) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, err := m.col.InsertOne(ctx, t); err != nil {
		return "", err
	}
	m.notify()
	return t.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*testimony.Testimony, error) {
	var t testimony.Testimony
	if err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (m *MongoRepo) ListByDateService(ctx context.Context, date, service string, status *testimony.Status) ([]testimony.Testimony, error) {
	filter := bson.M{"date": date, "service": service}
	if status != nil {
		filter["status"] = *status
	}
	return m.list(ctx, filter, 1)
}

func (m *MongoRepo) ListByDate(ctx context.Context, date string) ([]testimony.Testimony, error) {
	return m.list(ctx, bson.M{"date": date}, 1)
}

func (m *MongoRepo) ListAll(ctx context.Context) ([]testimony.Testimony, error) {
	// newest first for the admin table
	return m.list(ctx, bson.M{}, -1)
}

// list runs a filtered scan sorted by createdAt. Records that fail to decode
// are skipped rather than failing the whole query.
func (m *MongoRepo) list(ctx context.Context, filter bson.M, sortDir int) ([]testimony.Testimony, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: sortDir}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []testimony.Testimony{}
	for cur.Next(ctx) {
		var t testimony.Testimony
		if err := cur.Decode(&t); err != nil {
			logger.Warnf("testimonies: skipping malformed record: %v", err)
			continue
		}
		out = append(out, t)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) SetStatus(ctx context.Context, id string, status testimony.Status) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	m.notify()
	return nil
}

func (m *MongoRepo) Update(ctx context.Context, id string, upd Update) error {
	set := bson.M{}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.Service != nil {
		set["service"] = *upd.Service
	}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.WhatDidYouDo != nil {
		set["whatDidYouDo"] = *upd.WhatDidYouDo
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if len(set) == 0 {
		// nothing to write, but the id must still exist
		if err := m.col.FindOne(ctx, bson.M{"id": id}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotFound
			}
			return err
		}
		return nil
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	m.notify()
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	m.notify()
	return nil
}

// MongoServiceRepo is the MongoDB-backed service-slot repository.
type MongoServiceRepo struct {
	col    *mongo.Collection
	events watch.Publisher
}

func NewMongoServiceRepo(col *mongo.Collection, events watch.Publisher) *MongoServiceRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(context.Background(), idx); err != nil {
		logger.Warnf("services: could not ensure id index: %v", err)
	}
	return &MongoServiceRepo{col: col, events: events}
}

func (m *MongoServiceRepo) notify() {
	if m.events != nil {
		m.events.Publish()
	}
}

func (m *MongoServiceRepo) List(ctx context.Context) ([]testimony.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []testimony.Service{}
	for cur.Next(ctx) {
		var s testimony.Service
		if err := cur.Decode(&s); err != nil {
			logger.Warnf("services: skipping malformed record: %v", err)
			continue
		}
		out = append(out, s)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoServiceRepo) Add(ctx context.Context, s *testimony.Service) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if _, err := m.col.InsertOne(ctx, s); err != nil {
		return "", err
	}
	m.notify()
	return s.ID, nil
}

func (m *MongoServiceRepo) Update(ctx context.Context, id string, upd ServiceUpdate) error {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Key != nil {
		set["key"] = *upd.Key
	}
	if upd.Order != nil {
		set["order"] = *upd.Order
	}
	if len(set) == 0 {
		return nil
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	m.notify()
	return nil
}

func (m *MongoServiceRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	m.notify()
	return nil
}
