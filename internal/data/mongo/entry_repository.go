package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopbook-ledger/internal/civildate"
	"github.com/shopbook-ledger/internal/domain/entry"
	"github.com/shopbook-ledger/internal/domain/shared"
)

const (
	// EntryCollectionName is the name of the ledger entries collection in MongoDB
	EntryCollectionName = "entries"
)

// EntryRepository implements the entry.Repository interface for MongoDB
type EntryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewEntryRepository creates a new MongoDB entry repository
func NewEntryRepository(logger *slog.Logger, db *mongo.Database) entry.Repository {
	return &EntryRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new ledger entry.
func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	collection := r.db.Collection(EntryCollectionName)

	_, err := collection.InsertOne(ctx, e)
	if err != nil {
		r.logger.Error("Failed to create ledger entry",
			"entry_id", e.ID.String(),
			"party_id", e.PartyID.String(),
			"error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger entry regardless of its deletion state.
// Returns ErrEntryNotFound if no entry exists (or it has been purged).
func (r *EntryRepository) GetByID(ctx context.Context, user shared.UserContext, entryID uuid.UUID) (*entry.Entry, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"_id": entryID, "user_id": user.UserID}
	var e entry.Entry
	err := collection.FindOne(ctx, filter).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entry.ErrEntryNotFound{EntryID: entryID}
		}
		r.logger.Error("Failed to get ledger entry",
			"entry_id", entryID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &e, nil
}

// ListByParty retrieves a page of active entries for a party, newest first.
// Entries sort by date with creation time as tie-break.
func (r *EntryRepository) ListByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID, limit, offset int) ([]*entry.Entry, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"party_id": partyID, "user_id": user.UserID, "is_deleted": false}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return r.find(ctx, collection, filter, opts, "party_id", partyID.String())
}

// CountByParty counts the active entries for a party
func (r *EntryRepository) CountByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (int64, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"party_id": partyID, "user_id": user.UserID, "is_deleted": false}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count ledger entries",
			"party_id", partyID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

// ListAllByParty retrieves every active entry for a party in ascending date
// order. Feeds reconciliation, bad-debt aging, and range export.
func (r *EntryRepository) ListAllByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) ([]*entry.Entry, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"party_id": partyID, "user_id": user.UserID, "is_deleted": false}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})

	return r.find(ctx, collection, filter, opts, "party_id", partyID.String())
}

// ListByDateRange retrieves every active entry for the user dated within
// [from, to] inclusive, ascending by date. Dates are stored as YYYY-MM-DD
// strings, so the range filter compares lexicographically.
func (r *EntryRepository) ListByDateRange(ctx context.Context, user shared.UserContext, from, to civildate.Date) ([]*entry.Entry, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{
		"user_id":    user.UserID,
		"is_deleted": false,
		"date":       bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})

	return r.find(ctx, collection, filter, opts, "user_id", user.UserID.String())
}

// Update rewrites the editable fields of an entry. The entry's kind and
// owner never change here.
func (r *EntryRepository) Update(ctx context.Context, e *entry.Entry) error {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"_id": e.ID, "user_id": e.UserID}
	update := bson.M{
		"$set": bson.M{
			"amount":     e.Amount,
			"date":       e.Date,
			"line_items": e.LineItems,
			"profit":     e.Profit,
			"updated_at": e.UpdatedAt,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update ledger entry",
			"entry_id", e.ID.String(),
			"error", err)
		return fmt.Errorf("failed to update ledger entry: %w", err)
	}

	if result.MatchedCount == 0 {
		return entry.ErrEntryNotFound{EntryID: e.ID}
	}

	return nil
}

// MarkDeleted flips an active entry into the recycle bin, stamping deleted_at.
func (r *EntryRepository) MarkDeleted(ctx context.Context, user shared.UserContext, entryID uuid.UUID, deletedAt time.Time) error {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"_id": entryID, "user_id": user.UserID, "is_deleted": false}
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": deletedAt,
			"updated_at": deletedAt,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to soft-delete ledger entry",
			"entry_id", entryID.String(),
			"error", err)
		return fmt.Errorf("failed to soft-delete ledger entry: %w", err)
	}

	if result.MatchedCount == 0 {
		return entry.ErrEntryNotFound{EntryID: entryID}
	}

	return nil
}

// MarkRestored returns a deleted entry to the active ledger, clearing deleted_at.
func (r *EntryRepository) MarkRestored(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"_id": entryID, "user_id": user.UserID, "is_deleted": true}
	update := bson.M{
		"$set":   bson.M{"is_deleted": false, "updated_at": time.Now()},
		"$unset": bson.M{"deleted_at": ""},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to restore ledger entry",
			"entry_id", entryID.String(),
			"error", err)
		return fmt.Errorf("failed to restore ledger entry: %w", err)
	}

	if result.MatchedCount == 0 {
		return entry.ErrEntryNotFound{EntryID: entryID}
	}

	return nil
}

// Purge physically removes an entry. Irreversible.
func (r *EntryRepository) Purge(ctx context.Context, user shared.UserContext, entryID uuid.UUID) error {
	collection := r.db.Collection(EntryCollectionName)

	result, err := collection.DeleteOne(ctx, bson.M{"_id": entryID, "user_id": user.UserID})
	if err != nil {
		r.logger.Error("Failed to purge ledger entry",
			"entry_id", entryID.String(),
			"error", err)
		return fmt.Errorf("failed to purge ledger entry: %w", err)
	}

	if result.DeletedCount == 0 {
		return entry.ErrEntryNotFound{EntryID: entryID}
	}

	return nil
}

// PurgeByParty physically removes every entry of a party, deleted or not.
// Runs before the parent party rows are removed so no orphans survive.
func (r *EntryRepository) PurgeByParty(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	collection := r.db.Collection(EntryCollectionName)

	_, err := collection.DeleteMany(ctx, bson.M{"party_id": partyID, "user_id": user.UserID})
	if err != nil {
		r.logger.Error("Failed to purge ledger entries for party",
			"party_id", partyID.String(),
			"error", err)
		return fmt.Errorf("failed to purge ledger entries for party: %w", err)
	}

	return nil
}

// ListDeleted retrieves every entry currently in the recycle bin, most
// recently deleted first.
func (r *EntryRepository) ListDeleted(ctx context.Context, user shared.UserContext) ([]*entry.Entry, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"user_id": user.UserID, "is_deleted": true}
	opts := options.Find().SetSort(bson.M{"deleted_at": -1})

	return r.find(ctx, collection, filter, opts, "user_id", user.UserID.String())
}

// ListDeletedBefore retrieves recycle-bin entries whose deletion is older
// than the cutoff. These are the sweep's purge candidates.
func (r *EntryRepository) ListDeletedBefore(ctx context.Context, user shared.UserContext, cutoff time.Time) ([]*entry.Entry, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{
		"user_id":    user.UserID,
		"is_deleted": true,
		"deleted_at": bson.M{"$lt": cutoff},
	}

	return r.find(ctx, collection, filter, nil, "user_id", user.UserID.String())
}

// find runs a query and decodes the cursor, logging failures with the given
// identifying attribute.
func (r *EntryRepository) find(ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptions, logKey, logVal string) ([]*entry.Entry, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = collection.Find(ctx, filter, opts)
	} else {
		cursor, err = collection.Find(ctx, filter)
	}
	if err != nil {
		r.logger.Error("Failed to query ledger entries", logKey, logVal, "error", err)
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*entry.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode ledger entries", logKey, logVal, "error", err)
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	return entries, nil
}
