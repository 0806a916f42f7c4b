package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	apperr "github.com/phillip/clubify-go/apperr"
)

// Connect opens a client and fails fast when the deployment is unreachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// New wires the MongoDB-backed accessors for db.
func New(db *mongo.Database) *Store {
	registrations := db.Collection(RegistrationsCollection)
	return &Store{
		Users:         &UserStore{col: db.Collection(UsersCollection)},
		Clubs:         &ClubStore{col: db.Collection(ClubsCollection)},
		Events:        &EventStore{col: db.Collection(EventsCollection), registrations: registrations},
		Memberships:   &MembershipStore{col: db.Collection(MembershipsCollection)},
		Registrations: &RegistrationStore{col: registrations},
		Payments:      &PaymentStore{col: db.Collection(PaymentsCollection)},
		Health:        dbPinger{db: db},
	}
}

type dbPinger struct{ db *mongo.Database }

func (p dbPinger) Ping(ctx context.Context) error {
	if err := p.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return apperr.Wrap(apperr.ErrUnavailable, "database unavailable", err)
	}
	return nil
}

// EnsureIndexes creates the unique indexes the uniqueness invariants rely on.
// Safe to run repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		ClubsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "managerEmail", Value: 1}}},
		},
		MembershipsCollection: {
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "clubId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_user_club")},
			{Keys: bson.D{{Key: "clubId", Value: 1}}},
		},
		EventsCollection: {
			{Keys: bson.D{{Key: "clubId", Value: 1}, {Key: "eventDate", Value: 1}}},
		},
		RegistrationsCollection: {
			{
				Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "userEmail", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_active_registration").
					SetPartialFilterExpression(bson.M{"status": "registered"}),
			},
			{Keys: bson.D{{Key: "userEmail", Value: 1}}},
			{Keys: bson.D{{Key: "clubId", Value: 1}, {Key: "registeredAt", Value: -1}}},
		},
		PaymentsCollection: {
			{
				Keys:    bson.D{{Key: "stripePaymentIntentId", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_intent"),
			},
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "clubId", Value: 1}}},
		},
	}

	for name, idx := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// classify turns driver errors into apperr kinds.
func classify(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound(notFound)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.ErrConflict, conflict, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.ErrUnavailable, "database unavailable", err)
	}
	return err
}

func updateResult(res *mongo.UpdateResult, err error, notFound string) error {
	if err != nil {
		return classify(err, notFound, notFound)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func deleteResult(res *mongo.DeleteResult, err error, notFound string) error {
	if err != nil {
		return classify(err, notFound, notFound)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

// firstOf projects field of the first joined document, or nothing when the join is empty.
func firstOf(field string) bson.M {
	return bson.M{"$arrayElemAt": bson.A{field, 0}}
}

func lookup(from, local, foreign, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         from,
		"localField":   local,
		"foreignField": foreign,
		"as":           as,
	}}}
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, err error) ([]T, error) {
	if err != nil {
		return nil, classify(err, "", "")
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, classify(err, "", "")
	}
	return out, nil
}
