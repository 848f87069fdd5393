package store

import (
	"cmp"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/leafstorm/railgen/pkg/cache"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/snapshot"
)

// Defaults for [MongoConfig].
const (
	DefaultDatabase   = "railgen"
	DefaultCollection = "snapshots"
)

// MongoConfig locates the snapshot collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Backoff    cache.Backoff
}

// Mongo is a Store backed by a MongoDB collection. Transient network errors
// are retried with the configured backoff.
type Mongo struct {
	client  *mongo.Client
	coll    *mongo.Collection
	backoff cache.Backoff
}

// OpenMongo connects, pings the primary and ensures the listing index.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidConfig, "mongo uri is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidConfig, err, "mongo uri")
	}
	m := &Mongo{
		client:  client,
		coll:    client.Database(cmp.Or(cfg.Database, DefaultDatabase)).Collection(cmp.Or(cfg.Collection, DefaultCollection)),
		backoff: cfg.Backoff,
	}
	if m.backoff.Attempts == 0 {
		m.backoff = cache.DefaultBackoff
	}

	err = m.retry(ctx, func() error { return client.Ping(ctx, readpref.Primary()) })
	if err == nil {
		_, err = m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "name", Value: 1}, {Key: "created_at", Value: -1}},
		})
	}
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, storageErr(err, "connect to mongo")
	}
	return m, nil
}

func (m *Mongo) Publish(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	err := m.retry(ctx, func() error {
		_, err := m.coll.InsertOne(ctx, snap)
		return err
	})
	if mongo.IsDuplicateKeyError(err) {
		return rgerrors.New(rgerrors.ErrCodeDuplicateKey, "snapshot %s already published", snap.ID)
	}
	if err != nil {
		return storageErr(err, "publish snapshot %s", snap.ID)
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	err := m.retry(ctx, func() error {
		return m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storageErr(err, "get snapshot %s", id)
	}
	return &s, nil
}

func (m *Mongo) Latest(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	list, err := m.List(ctx, name, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, rgerrors.New(rgerrors.ErrCodeNotFound, "no snapshots of %q", name)
	}
	return list[0], nil
}

func (m *Mongo) List(ctx context.Context, name string, limit int) ([]*snapshot.Snapshot, error) {
	filter := bson.M{}
	if name != "" {
		filter["name"] = name
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	var out []*snapshot.Snapshot
	err := m.retry(ctx, func() error {
		cur, err := m.coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		out = nil
		return cur.All(ctx, &out)
	})
	if err != nil {
		return nil, storageErr(err, "list snapshots")
	}
	return out, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// retry marks network failures and timeouts as retryable.
func (m *Mongo) retry(ctx context.Context, fn func() error) error {
	return m.backoff.Retry(ctx, func() error {
		err := fn()
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return cache.Retryable(err)
		}
		return err
	})
}

func storageErr(err error, format string, args ...any) error {
	return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, format, args...)
}

var _ Store = (*Mongo)(nil)
