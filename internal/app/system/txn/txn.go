// internal/app/system/txn/txn.go

// Package txn wraps multi-document writes in a Mongo session transaction.
// Cascading operations (course deletion, question deletion, code
// redemption) either commit every write or none of them.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction runs fn inside a session-scoped transaction: the session
// is started, fn's writes are committed together, and any error aborts the
// whole transaction before being returned. The session is always ended,
// whatever the outcome.
//
// Standalone Mongo deployments (local dev, some CI) do not support
// transactions at all. When the server reports that, fn is re-run outside a
// transaction rather than failing the request.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = session.AbortTransaction(sc)
			return err
		}
		return session.CommitTransaction(sc)
	})

	if err != nil && IsNotSupported(err) {
		return fn(mongo.NewSessionContext(ctx, session))
	}
	return err
}

// IsNotSupported reports whether err indicates the deployment cannot run
// transactions (standalone server, no replica set).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if ce, ok := err.(mongo.CommandError); ok {
		cmdErr = ce
	}
	switch cmdErr.Code {
	case 20, 51, 263:
		return true
	}

	msg := strings.ToLower(err.Error())
	pairs := [][2]string{
		{"transaction", "replica set"},
		{"transaction", "session"},
		{"transaction", "illegal operation"},
		{"session", "not supported"},
	}
	for _, p := range pairs {
		if strings.Contains(msg, p[0]) && strings.Contains(msg, p[1]) {
			return true
		}
	}
	return false
}
