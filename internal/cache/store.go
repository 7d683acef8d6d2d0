package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// storeTimeout bounds every persistence call so a slow database can never
// stall a request; the in-memory cache is authoritative.
const storeTimeout = 3 * time.Second

// Store mirrors cache entries and lookup history to MongoDB so research
// data survives restarts. Every method is best-effort from the cache's
// point of view: errors are returned for logging but never fail a request.
type Store struct {
	client  *mongo.Client
	entries *mongo.Collection
	history *mongo.Collection
}

// PersistedEntry is a cache entry as stored in MongoDB.
type PersistedEntry struct {
	Record    models.RawSignalRecord `bson:"record"`
	ExpiresAt time.Time              `bson:"expires_at"`
}

// NewStore connects to MongoDB and prepares the cache collections.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	log.Info().Str("db", dbName).Msg("Connected to MongoDB")

	store := &Store{
		client:  client,
		entries: db.Collection("cache"),
		history: db.Collection("history"),
	}

	if err := store.createIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create some indexes")
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) createIndexes(ctx context.Context) error {
	entryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "record.keyword", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	}
	if _, err := s.entries.Indexes().CreateMany(ctx, entryIndexes); err != nil {
		return err
	}

	historyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "looked_up_at", Value: -1}}},
	}
	_, err := s.history.Indexes().CreateMany(ctx, historyIndexes)
	return err
}

// PutEntry upserts a cache entry by keyword.
func (s *Store) PutEntry(ctx context.Context, rec *models.RawSignalRecord, expiresAt time.Time) error {
	filter := bson.M{"record.keyword": rec.Keyword}
	update := bson.M{"$set": PersistedEntry{Record: *rec, ExpiresAt: expiresAt}}
	opts := options.Update().SetUpsert(true)

	_, err := s.entries.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadEntries returns all persisted cache entries.
func (s *Store) LoadEntries(ctx context.Context) ([]PersistedEntry, error) {
	cursor, err := s.entries.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var persisted []PersistedEntry
	if err := cursor.All(ctx, &persisted); err != nil {
		return nil, err
	}
	return persisted, nil
}

// DeleteEntry removes one keyword's entry.
func (s *Store) DeleteEntry(ctx context.Context, keyword string) error {
	_, err := s.entries.DeleteOne(ctx, bson.M{"record.keyword": keyword})
	return err
}

// ClearAll wipes both cache entries and history.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.entries.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	_, err := s.history.DeleteMany(ctx, bson.M{})
	return err
}

// AppendHistory inserts one lookup record.
func (s *Store) AppendHistory(ctx context.Context, e models.HistoryEntry) error {
	_, err := s.history.InsertOne(ctx, e)
	return err
}

// LoadHistory returns up to limit lookups, oldest first, so the in-memory
// log keeps its append order after a warm start.
func (s *Store) LoadHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "looked_up_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.history.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var newest []models.HistoryEntry
	if err := cursor.All(ctx, &newest); err != nil {
		return nil, err
	}

	// Reverse to oldest-first.
	out := make([]models.HistoryEntry, len(newest))
	for i, e := range newest {
		out[len(newest)-1-i] = e
	}
	return out, nil
}
