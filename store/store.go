// Package store is the persistence layer: one accessor per collection plus
// the fixed joins used by the listing endpoints.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/clubify-go/models"
)

// Collection names.
const (
	UsersCollection         = "users"
	ClubsCollection         = "clubs"
	MembershipsCollection   = "memberships"
	EventsCollection        = "events"
	RegistrationsCollection = "eventRegistrations"
	PaymentsCollection      = "payments"
)

type Users interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// List returns all users, or only those with role when role is non-empty.
	List(ctx context.Context, role string) ([]models.User, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
}

type Clubs interface {
	Insert(ctx context.Context, c *models.Club) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Club, error)
	List(ctx context.Context, q models.ClubQuery) ([]models.Club, error)
	Update(ctx context.Context, id primitive.ObjectID, p models.ClubPatch) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Events interface {
	Insert(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	List(ctx context.Context, q models.EventQuery) (*models.EventPage, error)
	ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, p models.EventPatch) error
	// ReserveSeat takes one seat, failing with ErrCapacityExceeded when the
	// event is full. The check and the increment are a single write.
	ReserveSeat(ctx context.Context, id primitive.ObjectID) error
	// ReleaseSeat gives a seat back. It never goes below zero.
	ReleaseSeat(ctx context.Context, id primitive.ObjectID) error
	SetSeatsTaken(ctx context.Context, id primitive.ObjectID, n int64) error
	// Delete removes the event and all of its registrations. It reports how
	// many registrations went with it.
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type Memberships interface {
	Insert(ctx context.Context, m *models.Membership) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Membership, error)
	FindByUserAndClub(ctx context.Context, email string, clubID primitive.ObjectID) (*models.Membership, error)
	ListByUser(ctx context.Context, email string) ([]models.MembershipView, error)
	ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.MembershipView, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, expiresAt *time.Time) error
	// Activate makes the row active again on a settled payment and clears its end date.
	Activate(ctx context.Context, id primitive.ObjectID, paymentID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Registrations interface {
	Insert(ctx context.Context, r *models.EventRegistration) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.EventRegistration, error)
	// FindActive returns the registered (not cancelled) row for the pair.
	FindActive(ctx context.Context, eventID primitive.ObjectID, email string) (*models.EventRegistration, error)
	CountRegistered(ctx context.Context, eventID primitive.ObjectID) (int64, error)
	ListByUser(ctx context.Context, email string) ([]models.RegistrationView, error)
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.RegistrationView, error)
	ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.RegistrationView, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Payments interface {
	Insert(ctx context.Context, p *models.Payment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	FindByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	ListAll(ctx context.Context) ([]models.PaymentView, error)
	ListByUser(ctx context.Context, email string) ([]models.PaymentView, error)
	ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.PaymentView, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	// SetStatusByIntent updates the row holding intentID and reports whether one matched.
	SetStatusByIntent(ctx context.Context, intentID, status string) (bool, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles the per-collection accessors. It is built once at startup
// and handed to every handler.
type Store struct {
	Users         Users
	Clubs         Clubs
	Events        Events
	Memberships   Memberships
	Registrations Registrations
	Payments      Payments
	Health        Pinger
}
