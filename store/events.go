package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/clubify-go/models"
)

type EventStore struct {
	col           *mongo.Collection
	registrations *mongo.Collection
}

func (s *EventStore) Insert(ctx context.Context, e *models.Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, e)
	return classify(err, "event not found", "event already exists")
}

func (s *EventStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, classify(err, "event not found", "")
	}
	return &e, nil
}

func eventFilter(q models.EventQuery) bson.M {
	filter := bson.M{}
	if q.ClubID != nil {
		filter["clubId"] = *q.ClubID
	}
	if q.Search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}
	return filter
}

func eventSort(q models.EventQuery) bson.D {
	order := 1
	if q.Desc {
		order = -1
	}
	key := q.SortBy
	if !models.ValidEventSort(key) {
		key = models.EventSortEventDate
	}
	// _id breaks ties so pages never overlap.
	return bson.D{{Key: key, Value: order}, {Key: "_id", Value: order}}
}

func (s *EventStore) List(ctx context.Context, q models.EventQuery) (*models.EventPage, error) {
	if q.Page < 1 || q.Limit < 1 {
		return nil, fmt.Errorf("invalid page %d / limit %d", q.Page, q.Limit)
	}
	filter := eventFilter(q)

	opts := options.Find().
		SetSort(eventSort(q)).
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)

	cur, err := s.col.Find(ctx, filter, opts)
	events, err := decodeAll[models.Event](ctx, cur, err)
	if err != nil {
		return nil, err
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, classify(err, "", "")
	}

	return &models.EventPage{
		Events:      events,
		Total:       total,
		TotalPages:  models.TotalPages(total, q.Limit),
		CurrentPage: q.Page,
		Limit:       q.Limit,
	}, nil
}

func (s *EventStore) ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.Event, error) {
	cur, err := s.col.Find(ctx, bson.M{"clubId": clubID},
		options.Find().SetSort(bson.D{{Key: "eventDate", Value: 1}}))
	return decodeAll[models.Event](ctx, cur, err)
}

func (s *EventStore) Update(ctx context.Context, id primitive.ObjectID, p models.EventPatch) error {
	update := bson.M{"updatedAt": time.Now()}
	if p.Title != nil {
		update["title"] = *p.Title
	}
	if p.Description != nil {
		update["description"] = *p.Description
	}
	if p.EventDate != nil {
		update["eventDate"] = *p.EventDate
	}
	if p.Location != nil {
		update["location"] = *p.Location
	}
	if p.IsPaid != nil {
		update["isPaid"] = *p.IsPaid
	}
	if p.EventFee != nil {
		update["eventFee"] = *p.EventFee
	}
	if p.MaxAttendees != nil {
		update["maxAttendees"] = *p.MaxAttendees
	}
	if p.ImageURL != nil {
		update["imageUrl"] = *p.ImageURL
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return updateResult(res, err, "event not found")
}

func (s *EventStore) ReserveSeat(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "$or": bson.A{
		bson.M{"maxAttendees": nil},
		bson.M{"$expr": bson.M{"$lt": bson.A{bson.M{"$ifNull": bson.A{"$seatsTaken", 0}}, "$maxAttendees"}}},
	}}
	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"seatsTaken": 1}})
	if err != nil {
		return classify(err, "event not found", "")
	}
	if res.MatchedCount == 1 {
		return nil
	}
	// Nothing matched: either the event is gone or it is full.
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return errEventFull
}

func (s *EventStore) ReleaseSeat(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "seatsTaken": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"seatsTaken": -1}})
	return classify(err, "", "")
}

func (s *EventStore) SetSeatsTaken(ctx context.Context, id primitive.ObjectID, n int64) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"seatsTaken": n}})
	return updateResult(res, err, "event not found")
}

// Delete runs both writes in one transaction. Standalone servers have no
// transactions, so there it falls back to two plain writes.
func (s *EventStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var removed int64
	err := s.col.Database().Client().UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := sc.WithTransaction(sc, func(tx mongo.SessionContext) (interface{}, error) {
			n, err := s.deleteWithRegistrations(tx, id)
			removed = n
			return nil, err
		})
		return err
	})
	if transactionsUnsupported(err) {
		return s.deleteWithRegistrations(ctx, id)
	}
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *EventStore) deleteWithRegistrations(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err := deleteResult(res, err, "event not found"); err != nil {
		return 0, err
	}

	regs, err := s.registrations.DeleteMany(ctx, bson.M{"eventId": id})
	if err != nil {
		return 0, fmt.Errorf("delete registrations of event %s: %w", id.Hex(), classify(err, "", ""))
	}
	return regs.DeletedCount, nil
}

// transactionsUnsupported matches IllegalOperation, which a standalone
// mongod returns for any transaction.
func transactionsUnsupported(err error) bool {
	var ce mongo.CommandError
	return errors.As(err, &ce) && ce.Code == 20
}
