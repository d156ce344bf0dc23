package snapshotstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

// mongoSnapshot is the stored document. The context is kept as JSON text so
// it decodes with the same json tags as every other backend.
type mongoSnapshot struct {
	SnapshotID string    `bson:"_id"`
	MachineID  string    `bson:"machine_id"`
	StateID    string    `bson:"state_id"`
	Context    string    `bson:"context"`
	Seq        int64     `bson:"seq"`
	SavedAt    time.Time `bson:"saved_at"`
}

// MongoStore keeps one document per snapshot, keyed by snapshot id.
type MongoStore[C any] struct {
	coll *mongo.Collection
	seq  *sequence
}

func NewMongoStore[C any](coll *mongo.Collection) *MongoStore[C] {
	return &MongoStore[C]{
		coll: coll,
		seq:  &sequence{now: func() int64 { return time.Now().UnixNano() }},
	}
}

// EnsureIndexes creates the index used by Latest.
func (s *MongoStore[C]) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "machine_id", Value: 1}, {Key: "seq", Value: -1}},
	})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *MongoStore[C]) Save(ctx context.Context, snap statemachine.Snapshot[C]) error {
	if err := validate(snap); err != nil {
		return err
	}
	data, err := encodeContext(snap.Context)
	if err != nil {
		return err
	}

	doc := mongoSnapshot{
		SnapshotID: snap.SnapshotID,
		MachineID:  snap.MachineID,
		StateID:    snap.StateID,
		Context:    string(data),
		Seq:        s.seq.next(),
		SavedAt:    time.Now().UTC(),
	}
	_, err = s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: snap.SnapshotID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *MongoStore[C]) Get(ctx context.Context, snapshotID string) (statemachine.Snapshot[C], error) {
	return s.findOne(s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: snapshotID}}))
}

func (s *MongoStore[C]) Latest(ctx context.Context, machineID string) (statemachine.Snapshot[C], error) {
	return s.findOne(s.coll.FindOne(ctx,
		bson.D{{Key: "machine_id", Value: machineID}},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}),
	))
}

func (s *MongoStore[C]) Delete(ctx context.Context, snapshotID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: snapshotID}})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore[C]) findOne(res *mongo.SingleResult) (statemachine.Snapshot[C], error) {
	var doc mongoSnapshot
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return statemachine.Snapshot[C]{}, ErrNotFound
		}
		return statemachine.Snapshot[C]{}, errors.Join(ErrStorage, err)
	}

	c, err := decodeContext[C]([]byte(doc.Context))
	if err != nil {
		return statemachine.Snapshot[C]{}, err
	}
	return statemachine.Snapshot[C]{
		SnapshotID: doc.SnapshotID,
		MachineID:  doc.MachineID,
		StateID:    doc.StateID,
		Context:    c,
	}, nil
}
