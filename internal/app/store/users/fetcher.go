package userstore

import (
	"context"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher loads fresh identity data when an access token is refreshed.
// Students, instructors, and admins live in separate collections, so the
// lookup tries each in turn.
type Fetcher struct {
	colls []*mongo.Collection
}

// NewFetcher creates an identity fetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		colls: []*mongo.Collection{
			db.Collection("users"),
			db.Collection("instructors"),
			db.Collection("admins"),
		},
	}
}

// Fetch retrieves an account by ID for auth.IdentityFetcher. It returns
// mongo.ErrNoDocuments when no collection holds the account, which the
// middleware treats as a revoked identity.
func (f *Fetcher) Fetch(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	proj := options.FindOne().SetProjection(bson.M{
		"_id":   1,
		"email": 1,
		"role":  1,
	})

	var doc struct {
		ID    primitive.ObjectID `bson:"_id"`
		Email string             `bson:"email"`
		Role  string             `bson:"role"`
	}
	for _, c := range f.colls {
		err := c.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &auth.SessionUser{
			ID:    doc.ID.Hex(),
			Email: doc.Email,
			Role:  doc.Role,
		}, nil
	}
	return nil, mongo.ErrNoDocuments
}
