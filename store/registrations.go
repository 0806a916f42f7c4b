package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/phillip/clubify-go/models"
)

type RegistrationStore struct {
	col *mongo.Collection
}

func (s *RegistrationStore) Insert(ctx context.Context, r *models.EventRegistration) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, r)
	return classify(err, "registration not found", "User already registered for this event")
}

func (s *RegistrationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.EventRegistration, error) {
	var r models.EventRegistration
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, classify(err, "registration not found", "")
	}
	return &r, nil
}

func (s *RegistrationStore) FindActive(ctx context.Context, eventID primitive.ObjectID, email string) (*models.EventRegistration, error) {
	var r models.EventRegistration
	err := s.col.FindOne(ctx, bson.M{
		"eventId":   eventID,
		"userEmail": email,
		"status":    models.RegistrationRegistered,
	}).Decode(&r)
	if err != nil {
		return nil, classify(err, "registration not found", "")
	}
	return &r, nil
}

func (s *RegistrationStore) CountRegistered(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"eventId": eventID, "status": models.RegistrationRegistered})
	if err != nil {
		return 0, classify(err, "", "")
	}
	return n, nil
}

var registrationFields = bson.M{
	"_id":          1,
	"eventId":      1,
	"userEmail":    1,
	"clubId":       1,
	"status":       1,
	"paymentId":    1,
	"registeredAt": 1,
}

func (s *RegistrationStore) ListByUser(ctx context.Context, email string) ([]models.RegistrationView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userEmail": email}}},
		lookup(EventsCollection, "eventId", "_id", "event"),
		lookup(ClubsCollection, "clubId", "_id", "club"),
		{{Key: "$project", Value: withFields(registrationFields, bson.M{
			"eventName":     firstOf("$event.title"),
			"eventDate":     firstOf("$event.eventDate"),
			"eventLocation": firstOf("$event.location"),
			"clubName":      firstOf("$club.clubName"),
		})}},
		{{Key: "$sort", Value: bson.D{{Key: "eventDate", Value: 1}}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	return decodeAll[models.RegistrationView](ctx, cur, err)
}

func (s *RegistrationStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.RegistrationView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"eventId": eventID}}},
		lookup(UsersCollection, "userEmail", "email", "user"),
		{{Key: "$project", Value: withFields(registrationFields, bson.M{
			"userName":  firstOf("$user.name"),
			"userPhoto": firstOf("$user.photoURL"),
		})}},
		{{Key: "$sort", Value: bson.D{{Key: "registeredAt", Value: 1}}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	return decodeAll[models.RegistrationView](ctx, cur, err)
}

func (s *RegistrationStore) ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.RegistrationView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"clubId": clubID}}},
		lookup(EventsCollection, "eventId", "_id", "event"),
		lookup(UsersCollection, "userEmail", "email", "user"),
		{{Key: "$project", Value: withFields(registrationFields, bson.M{
			"eventName": firstOf("$event.title"),
			"userName":  firstOf("$user.name"),
			"userPhoto": firstOf("$user.photoURL"),
		})}},
		{{Key: "$sort", Value: bson.D{{Key: "registeredAt", Value: -1}}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	return decodeAll[models.RegistrationView](ctx, cur, err)
}

func (s *RegistrationStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	if err != nil {
		return classify(err, "registration not found", "User already registered for this event")
	}
	if res.MatchedCount == 0 {
		return updateResult(res, nil, "registration not found")
	}
	return nil
}

func (s *RegistrationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return deleteResult(res, err, "registration not found")
}
