package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/phillip/clubify-go/models"
)

type MembershipStore struct {
	col *mongo.Collection
}

func (s *MembershipStore) Insert(ctx context.Context, m *models.Membership) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, m)
	return classify(err, "membership not found", "Membership already exists for this user and club")
}

func (s *MembershipStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, classify(err, "membership not found", "")
	}
	return &m, nil
}

func (s *MembershipStore) FindByUserAndClub(ctx context.Context, email string, clubID primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	err := s.col.FindOne(ctx, bson.M{"userEmail": email, "clubId": clubID}).Decode(&m)
	if err != nil {
		return nil, classify(err, "membership not found", "")
	}
	return &m, nil
}

var membershipFields = bson.M{
	"_id":       1,
	"userEmail": 1,
	"clubId":    1,
	"status":    1,
	"paymentId": 1,
	"joinedAt":  1,
	"expiresAt": 1,
}

func withFields(base bson.M, extra bson.M) bson.M {
	out := bson.M{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (s *MembershipStore) ListByUser(ctx context.Context, email string) ([]models.MembershipView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userEmail": email}}},
		lookup(ClubsCollection, "clubId", "_id", "club"),
		{{Key: "$project", Value: withFields(membershipFields, bson.M{
			"clubName":      firstOf("$club.clubName"),
			"description":   firstOf("$club.description"),
			"category":      firstOf("$club.category"),
			"location":      firstOf("$club.location"),
			"membershipFee": firstOf("$club.membershipFee"),
		})}},
		{{Key: "$sort", Value: bson.D{{Key: "joinedAt", Value: -1}}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	return decodeAll[models.MembershipView](ctx, cur, err)
}

func (s *MembershipStore) ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.MembershipView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"clubId": clubID}}},
		lookup(UsersCollection, "userEmail", "email", "user"),
		{{Key: "$project", Value: withFields(membershipFields, bson.M{
			"userName":  firstOf("$user.name"),
			"userPhoto": firstOf("$user.photoURL"),
		})}},
		{{Key: "$sort", Value: bson.D{{Key: "joinedAt", Value: -1}}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	return decodeAll[models.MembershipView](ctx, cur, err)
}

func (s *MembershipStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, expiresAt *time.Time) error {
	set := bson.M{"status": status, "updatedAt": time.Now()}
	if expiresAt != nil {
		set["expiresAt"] = *expiresAt
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return updateResult(res, err, "membership not found")
}

func (s *MembershipStore) Activate(ctx context.Context, id, paymentID primitive.ObjectID) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    models.MembershipActive,
		"paymentId": paymentID,
		"expiresAt": nil,
		"updatedAt": time.Now(),
	}})
	return updateResult(res, err, "membership not found")
}

func (s *MembershipStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return deleteResult(res, err, "membership not found")
}
