package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TxnRunner executes a function inside a single atomic multi-document
// transaction. Repository calls made with the callback's context join the
// transaction, so an entry write, the aggregate increments on both party
// copies, and any inventory adjustment commit or abort together. Balance
// correctness depends on this: a partially applied batch is the one failure
// mode the design must never make observable.
type TxnRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxnRunner implements TxnRunner over a driver session.
type MongoTxnRunner struct {
	client *mongo.Client
}

// NewTxnRunner creates a transaction runner bound to the database's client.
func NewTxnRunner(db *MongoDB) *MongoTxnRunner {
	return &MongoTxnRunner{client: db.client}
}

// WithinTransaction runs fn inside a majority-read/majority-write
// transaction. The driver retries transient transaction errors internally;
// callers retry the whole logical operation on failure, never individual
// sub-writes.
func (r *MongoTxnRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, txnOptions)
	if err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	return nil
}
