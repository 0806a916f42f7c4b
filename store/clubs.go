package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/clubify-go/models"
)

type ClubStore struct {
	col *mongo.Collection
}

func (s *ClubStore) Insert(ctx context.Context, c *models.Club) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, c)
	return classify(err, "club not found", "club already exists")
}

func (s *ClubStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Club, error) {
	var c models.Club
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, classify(err, "club not found", "")
	}
	return &c, nil
}

func (s *ClubStore) List(ctx context.Context, q models.ClubQuery) ([]models.Club, error) {
	cur, err := s.col.Find(ctx, clubFilter(q), options.Find().SetSort(clubSort(q.Sort)))
	return decodeAll[models.Club](ctx, cur, err)
}

func clubFilter(q models.ClubQuery) bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Search != "" {
		filter["clubName"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.ManagerEmail != "" {
		filter["managerEmail"] = q.ManagerEmail
	}
	return filter
}

func clubSort(key string) bson.D {
	switch key {
	case models.ClubSortOldest:
		return bson.D{{Key: "createdAt", Value: 1}}
	case models.ClubSortHighestFee:
		return bson.D{{Key: "membershipFee", Value: -1}, {Key: "createdAt", Value: -1}}
	case models.ClubSortLowestFee:
		return bson.D{{Key: "membershipFee", Value: 1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func (s *ClubStore) Update(ctx context.Context, id primitive.ObjectID, p models.ClubPatch) error {
	update := bson.M{"updatedAt": time.Now()}
	if p.ClubName != nil {
		update["clubName"] = *p.ClubName
	}
	if p.Description != nil {
		update["description"] = *p.Description
	}
	if p.Category != nil {
		update["category"] = *p.Category
	}
	if p.Location != nil {
		update["location"] = *p.Location
	}
	if p.BannerImage != nil {
		update["bannerImage"] = *p.BannerImage
	}
	if p.MembershipFee != nil {
		update["membershipFee"] = *p.MembershipFee
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return updateResult(res, err, "club not found")
}

func (s *ClubStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	return updateResult(res, err, "club not found")
}

func (s *ClubStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return deleteResult(res, err, "club not found")
}
