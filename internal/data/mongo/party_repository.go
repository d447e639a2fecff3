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
	"github.com/shopbook-ledger/internal/domain/party"
	"github.com/shopbook-ledger/internal/domain/shared"
)

const (
	// PartyCollectionName is the root copy of every party record.
	PartyCollectionName = "parties"
	// UserPartyCollectionName is the user-scoped copy. Reads serve from the
	// user-scoped copy, and every mutation must land on both.
	UserPartyCollectionName = "user_parties"
)

// PartyRepository implements the party.Repository interface for MongoDB.
// All mutating methods write the root and user-scoped copies inside whatever
// transaction the caller's context carries; call sites are expected to wrap
// balance-affecting operations in a persistence.TxnRunner.
type PartyRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPartyRepository creates a new MongoDB party repository
func NewPartyRepository(logger *slog.Logger, db *mongo.Database) party.Repository {
	return &PartyRepository{
		db:     db,
		logger: logger,
	}
}

// copies returns both physical collections holding party records.
func (r *PartyRepository) copies() []*mongo.Collection {
	return []*mongo.Collection{
		r.db.Collection(PartyCollectionName),
		r.db.Collection(UserPartyCollectionName),
	}
}

// Create inserts the party into both physical copies.
func (r *PartyRepository) Create(ctx context.Context, p *party.Party) error {
	for _, collection := range r.copies() {
		if _, err := collection.InsertOne(ctx, p); err != nil {
			r.logger.Error("Failed to create party",
				"party_id", p.ID.String(),
				"collection", collection.Name(),
				"error", err)
			return fmt.Errorf("failed to create party: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a party from the user-scoped copy regardless of its
// deletion state. Returns ErrPartyNotFound if no record exists.
func (r *PartyRepository) GetByID(ctx context.Context, user shared.UserContext, partyID uuid.UUID) (*party.Party, error) {
	collection := r.db.Collection(UserPartyCollectionName)

	filter := bson.M{"_id": partyID, "user_id": user.UserID}
	var p party.Party
	err := collection.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, party.ErrPartyNotFound{PartyID: partyID}
		}
		r.logger.Error("Failed to get party",
			"party_id", partyID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	return &p, nil
}

// GetByPhone retrieves an active party of a kind by phone number. Returns
// nil when no party matches, enabling duplicate checks on create.
func (r *PartyRepository) GetByPhone(ctx context.Context, user shared.UserContext, kind party.Kind, phone string) (*party.Party, error) {
	if phone == "" {
		return nil, errors.New("phone cannot be empty")
	}

	collection := r.db.Collection(UserPartyCollectionName)

	filter := bson.M{"user_id": user.UserID, "kind": kind, "phone": phone, "is_deleted": false}
	var p party.Party
	err := collection.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No party registered with this phone
		}
		r.logger.Error("Failed to get party by phone",
			"phone", phone,
			"error", err)
		return nil, fmt.Errorf("failed to get party by phone: %w", err)
	}

	return &p, nil
}

// List retrieves a page of active parties of a kind, sorted by name.
func (r *PartyRepository) List(ctx context.Context, user shared.UserContext, kind party.Kind, limit, offset int) ([]*party.Party, error) {
	collection := r.db.Collection(UserPartyCollectionName)

	filter := bson.M{"user_id": user.UserID, "kind": kind, "is_deleted": false}
	opts := options.Find().
		SetSort(bson.M{"name": 1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return r.find(ctx, collection, filter, opts)
}

// Count counts the active parties of a kind
func (r *PartyRepository) Count(ctx context.Context, user shared.UserContext, kind party.Kind) (int64, error) {
	collection := r.db.Collection(UserPartyCollectionName)

	filter := bson.M{"user_id": user.UserID, "kind": kind, "is_deleted": false}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count parties",
			"kind", string(kind),
			"error", err)
		return 0, fmt.Errorf("failed to count parties: %w", err)
	}

	return count, nil
}

// ListAll retrieves every active party of a kind without pagination, for the
// batch reconciliation walk.
func (r *PartyRepository) ListAll(ctx context.Context, user shared.UserContext, kind party.Kind) ([]*party.Party, error) {
	collection := r.db.Collection(UserPartyCollectionName)

	filter := bson.M{"user_id": user.UserID, "kind": kind, "is_deleted": false}
	opts := options.Find().SetSort(bson.M{"name": 1})

	return r.find(ctx, collection, filter, opts)
}

// ApplyDelta increments the aggregate fields on both copies using `$inc`, so
// concurrent deltas from separate sessions merge additively instead of
// overwriting each other. A non-empty activity date also advances
// last_activity_date.
func (r *PartyRepository) ApplyDelta(ctx context.Context, user shared.UserContext, partyID uuid.UUID, d entry.Delta, activity civildate.Date) error {
	set := bson.M{"updated_at": time.Now()}
	if activity != "" {
		set["last_activity_date"] = activity
	}
	update := bson.M{
		"$inc": bson.M{
			"total_balance": d.Balance,
			"total_debit":   d.Debit,
			"total_credit":  d.Credit,
		},
		"$set": set,
	}

	return r.updateBoth(ctx, user, partyID, bson.M{}, update, "apply balance delta")
}

// OverwriteTotals sets the aggregate fields absolutely on both copies. Used
// only by reconciliation; unlike ApplyDelta this write is not commutative
// and can lose a racing live increment.
func (r *PartyRepository) OverwriteTotals(ctx context.Context, user shared.UserContext, partyID uuid.UUID, t entry.Totals) error {
	update := bson.M{
		"$set": bson.M{
			"total_balance": t.Balance,
			"total_debit":   t.Debit,
			"total_credit":  t.Credit,
			"updated_at":    time.Now(),
		},
	}

	return r.updateBoth(ctx, user, partyID, bson.M{}, update, "overwrite totals")
}

// MarkDeleted moves the party into the recycle bin on both copies.
func (r *PartyRepository) MarkDeleted(ctx context.Context, user shared.UserContext, partyID uuid.UUID, deletedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": deletedAt,
			"updated_at": deletedAt,
		},
	}

	return r.updateBoth(ctx, user, partyID, bson.M{"is_deleted": false}, update, "soft-delete")
}

// MarkRestored returns a deleted party to the active set on both copies.
func (r *PartyRepository) MarkRestored(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	update := bson.M{
		"$set":   bson.M{"is_deleted": false, "updated_at": time.Now()},
		"$unset": bson.M{"deleted_at": ""},
	}

	return r.updateBoth(ctx, user, partyID, bson.M{"is_deleted": true}, update, "restore")
}

// Purge physically removes both copies of the party record. The caller must
// have purged the party's entries first.
func (r *PartyRepository) Purge(ctx context.Context, user shared.UserContext, partyID uuid.UUID) error {
	found := false
	for _, collection := range r.copies() {
		result, err := collection.DeleteOne(ctx, bson.M{"_id": partyID, "user_id": user.UserID})
		if err != nil {
			r.logger.Error("Failed to purge party",
				"party_id", partyID.String(),
				"collection", collection.Name(),
				"error", err)
			return fmt.Errorf("failed to purge party: %w", err)
		}
		if result.DeletedCount > 0 {
			found = true
		}
	}

	if !found {
		return party.ErrPartyNotFound{PartyID: partyID}
	}

	return nil
}

// ListDeleted retrieves every party currently in the recycle bin, most
// recently deleted first.
func (r *PartyRepository) ListDeleted(ctx context.Context, user shared.UserContext) ([]*party.Party, error) {
	collection := r.db.Collection(UserPartyCollectionName)

	filter := bson.M{"user_id": user.UserID, "is_deleted": true}
	opts := options.Find().SetSort(bson.M{"deleted_at": -1})

	return r.find(ctx, collection, filter, opts)
}

// ListDeletedBefore retrieves recycle-bin parties deleted before the cutoff.
func (r *PartyRepository) ListDeletedBefore(ctx context.Context, user shared.UserContext, cutoff time.Time) ([]*party.Party, error) {
	collection := r.db.Collection(UserPartyCollectionName)

	filter := bson.M{
		"user_id":    user.UserID,
		"is_deleted": true,
		"deleted_at": bson.M{"$lt": cutoff},
	}

	return r.find(ctx, collection, filter, nil)
}

// updateBoth applies the same update to the root and user-scoped copies.
// ErrPartyNotFound is reported off the user-scoped copy; a root copy that
// silently missed is logged as drift between the two copies.
func (r *PartyRepository) updateBoth(ctx context.Context, user shared.UserContext, partyID uuid.UUID, extraFilter bson.M, update bson.M, op string) error {
	filter := bson.M{"_id": partyID, "user_id": user.UserID}
	for k, v := range extraFilter {
		filter[k] = v
	}

	matchedUser := false
	for _, collection := range r.copies() {
		result, err := collection.UpdateOne(ctx, filter, update)
		if err != nil {
			r.logger.Error("Failed to "+op+" on party",
				"party_id", partyID.String(),
				"collection", collection.Name(),
				"error", err)
			return fmt.Errorf("failed to %s on party: %w", op, err)
		}
		switch collection.Name() {
		case UserPartyCollectionName:
			matchedUser = result.MatchedCount > 0
		case PartyCollectionName:
			if result.MatchedCount == 0 {
				r.logger.Warn("Root party copy missing during "+op,
					"party_id", partyID.String())
			}
		}
	}

	if !matchedUser {
		return party.ErrPartyNotFound{PartyID: partyID}
	}

	return nil
}

// find runs a query against a party collection and decodes the cursor.
func (r *PartyRepository) find(ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]*party.Party, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = collection.Find(ctx, filter, opts)
	} else {
		cursor, err = collection.Find(ctx, filter)
	}
	if err != nil {
		r.logger.Error("Failed to query parties", "error", err)
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	defer cursor.Close(ctx)

	var parties []*party.Party
	if err := cursor.All(ctx, &parties); err != nil {
		r.logger.Error("Failed to decode parties", "error", err)
		return nil, fmt.Errorf("failed to decode parties: %w", err)
	}

	return parties, nil
}
