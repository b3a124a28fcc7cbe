package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"noticeboard-engine/internal/domain"
)

// Store is the shared listing collection. It is the sole source of
// truth; everything the engine holds in memory is a disposable snapshot
// of it.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// record is the wire shape of a listing document. The _id stays a
// driver type here and is exposed as an opaque hex string on
// domain.Listing.
type record struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Summary           string             `bson:"summary"`
	ApplicationPeriod string             `bson:"applicationPeriod"`
	TrainingPeriod    string             `bson:"trainingPeriod"`
	Target            string             `bson:"target"`
	CreatedAt         time.Time          `bson:"createdAt"`
}

func (r record) toDomain() domain.Listing {
	return domain.Listing{
		ID:                r.ID.Hex(),
		Summary:           r.Summary,
		ApplicationPeriod: r.ApplicationPeriod,
		TrainingPeriod:    r.TrainingPeriod,
		Target:            r.Target,
		CreatedAt:         r.CreatedAt,
	}
}

func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("store connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Database(database).RunCommand(pingCtx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store ping: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// List returns the full listing set, newest first.
func (s *Store) List(ctx context.Context) ([]domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store list: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Listing
	for cur.Next(ctx) {
		var r record
		if err := cur.Decode(&r); err != nil {
			return nil, fmt.Errorf("store decode: %w", err)
		}
		out = append(out, r.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("store cursor: %w", err)
	}
	return out, nil
}

// Fields is the extracted metadata to persist; id and createdAt are
// assigned here at insert time.
type Fields struct {
	Summary           string
	ApplicationPeriod string
	TrainingPeriod    string
	Target            string
}

func (s *Store) Create(ctx context.Context, f Fields) (domain.Listing, error) {
	r := record{
		Summary:           f.Summary,
		ApplicationPeriod: f.ApplicationPeriod,
		TrainingPeriod:    f.TrainingPeriod,
		Target:            f.Target,
		CreatedAt:         time.Now().UTC(),
	}
	res, err := s.coll.InsertOne(ctx, r)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("store create: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.Listing{}, fmt.Errorf("store create: unexpected id type %T", res.InsertedID)
	}
	r.ID = id
	return r.toDomain(), nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("store delete: bad id %q: %w", id, err)
	}
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return fmt.Errorf("store delete: %w", err)
	}
	return nil
}
