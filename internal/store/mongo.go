package store

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sells-group/lead-api/internal/config"
)

// collection is the slice of *mongo.Collection the store depends on.
// Narrowed to an interface so resolver and scan logic can be exercised
// against an in-memory fake.
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
}

// Mongo is the MongoDB-backed Store.
type Mongo struct {
	client *mongo.Client
	col    collection
}

// Open connects to MongoDB, verifies the connection with a ping, and
// returns a store scoped to the configured collection. A connection
// failure here is fatal to startup: the service must not serve traffic
// without a store.
func Open(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, eris.Wrap(err, "store: connect")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, eris.Wrap(err, "store: ping")
	}

	m := &Mongo{
		client: client,
		col:    client.Database(cfg.Database).Collection(cfg.Collection),
	}

	total, err := m.Count(ctx)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	zap.L().Info("connected to document store",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
		zap.Int64("documents", total),
	)
	m.logSampleShape(ctx)

	return m, nil
}

// logSampleShape logs the stored types of one document's key fields.
// The collection mixes string and integer sessionIds; seeing the shape
// at startup makes lookup misses much easier to diagnose.
func (m *Mongo) logSampleShape(ctx context.Context) {
	log := zap.L()
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	var sample bson.M
	if err := m.col.FindOne(ctx, bson.M{}).Decode(&sample); err != nil {
		return
	}
	log.Debug("sample document shape",
		zap.String("sessionId", fmt.Sprintf("%T", sample["sessionId"])),
		zap.String("leadAnalysed", fmt.Sprintf("%T", sample["leadAnalysed"])),
		zap.String("output", fmt.Sprintf("%T", sample["output"])),
	)
}

// Ping verifies connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return eris.Wrap(err, "store: ping")
	}
	return nil
}

// Count returns the total number of documents in the collection.
func (m *Mongo) Count(ctx context.Context) (int64, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, eris.Wrap(err, "store: count documents")
	}
	return n, nil
}

// Scan returns up to q.Limit documents matching q.
func (m *Mongo) Scan(ctx context.Context, q ScanQuery) ([]bson.M, error) {
	filter := bson.M{}
	if q.SessionDigits != "" {
		filter["sessionId"] = bson.M{"$regex": q.SessionDigits}
	}

	opts := options.Find().SetLimit(q.Limit)
	if q.SortField != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		opts = opts.SetSort(bson.D{{Key: q.SortField, Value: dir}})
	}

	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, eris.Wrap(err, "store: scan")
	}
	defer cur.Close(ctx)

	docs := make([]bson.M, 0, q.Limit)
	for cur.Next(ctx) {
		var d bson.M
		if err := cur.Decode(&d); err != nil {
			return nil, eris.Wrap(err, "store: decode document")
		}
		docs = append(docs, d)
	}
	if err := cur.Err(); err != nil {
		return nil, eris.Wrap(err, "store: scan cursor")
	}
	return docs, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return eris.Wrap(err, "store: disconnect")
	}
	return nil
}
