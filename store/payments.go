package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/phillip/clubify-go/models"
)

type PaymentStore struct {
	col *mongo.Collection
}

func (s *PaymentStore) Insert(ctx context.Context, p *models.Payment) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, p)
	return classify(err, "payment not found", "payment for this intent already exists")
}

func (s *PaymentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var p models.Payment
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, classify(err, "payment not found", "")
	}
	return &p, nil
}

func (s *PaymentStore) FindByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.col.FindOne(ctx, bson.M{"stripePaymentIntentId": intentID}).Decode(&p); err != nil {
		return nil, classify(err, "payment not found", "")
	}
	return &p, nil
}

var paymentFields = bson.M{
	"_id":                   1,
	"userEmail":             1,
	"amount":                1,
	"currency":              1,
	"type":                  1,
	"clubId":                1,
	"eventId":               1,
	"stripePaymentIntentId": 1,
	"status":                1,
	"createdAt":             1,
	"updatedAt":             1,
}

// paymentViews joins club, event and user display names onto the matched payments.
func (s *PaymentStore) paymentViews(ctx context.Context, match bson.M) ([]models.PaymentView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		lookup(ClubsCollection, "clubId", "_id", "club"),
		lookup(EventsCollection, "eventId", "_id", "event"),
		lookup(UsersCollection, "userEmail", "email", "user"),
		{{Key: "$project", Value: withFields(paymentFields, bson.M{
			"clubName":  firstOf("$club.clubName"),
			"eventName": firstOf("$event.title"),
			"userName":  firstOf("$user.name"),
		})}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	return decodeAll[models.PaymentView](ctx, cur, err)
}

func (s *PaymentStore) ListAll(ctx context.Context) ([]models.PaymentView, error) {
	return s.paymentViews(ctx, bson.M{})
}

func (s *PaymentStore) ListByUser(ctx context.Context, email string) ([]models.PaymentView, error) {
	return s.paymentViews(ctx, bson.M{"userEmail": email})
}

func (s *PaymentStore) ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.PaymentView, error) {
	return s.paymentViews(ctx, bson.M{"clubId": clubID})
}

func (s *PaymentStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	return updateResult(res, err, "payment not found")
}

func (s *PaymentStore) SetStatusByIntent(ctx context.Context, intentID, status string) (bool, error) {
	res, err := s.col.UpdateOne(ctx, bson.M{"stripePaymentIntentId": intentID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	if err != nil {
		return false, classify(err, "payment not found", "")
	}
	return res.MatchedCount > 0, nil
}
