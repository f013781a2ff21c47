package mongo

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
)

const collectionRosters = "rosters"

// rosterDoc is the persisted shape of a snapshot: one document per user,
// both collections keyed by entity id.
type rosterDoc struct {
	UserID    string                         `bson:"_id"`
	Clients   map[string]domain.Client       `bson:"clients"`
	History   map[string]domain.HistoryEntry `bson:"history"`
	UpdatedAt time.Time                      `bson:"updated_at"`
}

// SnapshotRepository stores each user's roster as a single document and
// overwrites it wholesale on every save. There is no concurrency token: of
// two racing writers the later one wins.
type SnapshotRepository struct {
	col *mongo.Collection
}

func NewSnapshotRepository(db *mongo.Database) *SnapshotRepository {
	return &SnapshotRepository{col: db.Collection(collectionRosters)}
}

// Load returns the user's snapshot with clients in custom order and history
// newest-first. A user without a stored document gets an empty snapshot.
func (r *SnapshotRepository) Load(ctx context.Context, userID string) (*domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc rosterDoc
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.Snapshot{}, nil
		}
		return nil, err
	}

	snap := &domain.Snapshot{
		Clients: make([]domain.Client, 0, len(doc.Clients)),
		History: make([]domain.HistoryEntry, 0, len(doc.History)),
	}
	for _, c := range doc.Clients {
		snap.Clients = append(snap.Clients, c)
	}
	for _, h := range doc.History {
		snap.History = append(snap.History, h)
	}

	// Map iteration order is random; rebuild the canonical in-memory order.
	sort.SliceStable(snap.Clients, func(i, j int) bool {
		return snap.Clients[i].Position < snap.Clients[j].Position
	})
	sort.SliceStable(snap.History, func(i, j int) bool {
		return snap.History[i].Timestamp.After(snap.History[j].Timestamp)
	})
	return snap, nil
}

// Save replaces the stored document with the given snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, userID string, snap *domain.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := rosterDoc{
		UserID:    userID,
		Clients:   make(map[string]domain.Client, len(snap.Clients)),
		History:   make(map[string]domain.HistoryEntry, len(snap.History)),
		UpdatedAt: time.Now().UTC(),
	}
	for _, c := range snap.Clients {
		doc.Clients[c.ID] = c
	}
	for _, h := range snap.History {
		doc.History[h.ID] = h
	}

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": userID}, doc, options.Replace().SetUpsert(true))
	return err
}
