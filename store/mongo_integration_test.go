package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

// testDB connects to CLUBIFY_TEST_MONGO_URI and returns a throwaway database.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("CLUBIFY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CLUBIFY_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := Connect(ctx, uri)
	require.NoError(t, err)

	db := client.Database("clubify_test_" + primitive.NewObjectID().Hex())
	require.NoError(t, EnsureIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoUniqueness(t *testing.T) {
	db := testDB(t)
	s := New(db)
	ctx := context.Background()

	require.NoError(t, s.Users.Insert(ctx, &models.User{Email: "a@x.io", Role: models.RoleMember, IsActive: true}))
	assert.ErrorIs(t, s.Users.Insert(ctx, &models.User{Email: "a@x.io"}), apperr.ErrConflict)

	club := primitive.NewObjectID()
	require.NoError(t, s.Memberships.Insert(ctx, &models.Membership{UserEmail: "a@x.io", ClubID: club, Status: models.MembershipActive}))
	assert.ErrorIs(t, s.Memberships.Insert(ctx, &models.Membership{UserEmail: "a@x.io", ClubID: club}), apperr.ErrConflict)

	event := primitive.NewObjectID()
	first := &models.EventRegistration{EventID: event, UserEmail: "a@x.io", Status: models.RegistrationRegistered}
	require.NoError(t, s.Registrations.Insert(ctx, first))
	assert.ErrorIs(t, s.Registrations.Insert(ctx, &models.EventRegistration{
		EventID: event, UserEmail: "a@x.io", Status: models.RegistrationRegistered,
	}), apperr.ErrConflict)

	require.NoError(t, s.Registrations.UpdateStatus(ctx, first.ID, models.RegistrationCancelled))
	require.NoError(t, s.Registrations.Insert(ctx, &models.EventRegistration{
		EventID: event, UserEmail: "a@x.io", Status: models.RegistrationRegistered,
	}))
}

func TestMongoEventsPageAndCascade(t *testing.T) {
	db := testDB(t)
	s := New(db)
	ctx := context.Background()

	club := primitive.NewObjectID()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var first *models.Event
	for i := 0; i < 12; i++ {
		e := &models.Event{ClubID: club, Title: "Meetup", EventDate: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.Events.Insert(ctx, e))
		if first == nil {
			first = e
		}
	}

	page, err := s.Events.List(ctx, models.EventQuery{Page: 2, Limit: 5, SortBy: models.EventSortEventDate})
	require.NoError(t, err)
	assert.Len(t, page.Events, 5)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, int64(3), page.TotalPages)

	for _, email := range []string{"a@x.io", "b@x.io"} {
		require.NoError(t, s.Registrations.Insert(ctx, &models.EventRegistration{
			EventID: first.ID, ClubID: club, UserEmail: email, Status: models.RegistrationRegistered,
		}))
	}
	removed, err := s.Events.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	left, err := s.Registrations.ListByEvent(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = s.Events.Delete(ctx, first.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMongoSeatReservation(t *testing.T) {
	db := testDB(t)
	s := New(db)
	ctx := context.Background()

	seats := 2
	limited := &models.Event{ClubID: primitive.NewObjectID(), Title: "Talk", MaxAttendees: &seats}
	open := &models.Event{ClubID: limited.ClubID, Title: "Open day"}
	require.NoError(t, s.Events.Insert(ctx, limited))
	require.NoError(t, s.Events.Insert(ctx, open))

	require.NoError(t, s.Events.ReserveSeat(ctx, limited.ID))
	require.NoError(t, s.Events.ReserveSeat(ctx, limited.ID))
	assert.ErrorIs(t, s.Events.ReserveSeat(ctx, limited.ID), apperr.ErrCapacityExceeded)
	assert.ErrorIs(t, s.Events.ReserveSeat(ctx, primitive.NewObjectID()), apperr.ErrNotFound)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Events.ReserveSeat(ctx, open.ID))
	}

	require.NoError(t, s.Events.ReleaseSeat(ctx, limited.ID))
	require.NoError(t, s.Events.ReserveSeat(ctx, limited.ID))

	require.NoError(t, s.Events.SetSeatsTaken(ctx, limited.ID, 0))
	require.NoError(t, s.Events.ReleaseSeat(ctx, limited.ID))
	got, err := s.Events.FindByID(ctx, limited.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.SeatsTaken)
}

func TestMongoJoinViews(t *testing.T) {
	db := testDB(t)
	s := New(db)
	ctx := context.Background()

	require.NoError(t, s.Users.Insert(ctx, &models.User{Email: "a@x.io", Name: "Ada"}))
	club := &models.Club{ClubName: "Chess", Status: models.ClubApproved, MembershipFee: 15}
	require.NoError(t, s.Clubs.Insert(ctx, club))
	require.NoError(t, s.Memberships.Insert(ctx, &models.Membership{UserEmail: "a@x.io", ClubID: club.ID, JoinedAt: time.Now()}))

	mine, err := s.Memberships.ListByUser(ctx, "a@x.io")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Chess", mine[0].ClubName)
	assert.Equal(t, 15.0, mine[0].MembershipFee)

	members, err := s.Memberships.ListByClub(ctx, club.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ada", members[0].UserName)

	require.NoError(t, s.Payments.Insert(ctx, &models.Payment{
		UserEmail: "a@x.io", Amount: 15, Type: models.PaymentTypeMembership,
		ClubID: &club.ID, StripePaymentIntentID: "pi_join", Status: models.PaymentPending, CreatedAt: time.Now(),
	}))
	views, err := s.Payments.ListByUser(ctx, "a@x.io")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Chess", views[0].ClubName)
	assert.Equal(t, "Ada", views[0].UserName)
}
