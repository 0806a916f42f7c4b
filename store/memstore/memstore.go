// Package memstore is an in-process implementation of the store interfaces.
// It enforces the same uniqueness rules as the MongoDB indexes and produces the
// same join views, and backs local development (STORE_DRIVER=memory) and tests.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
	store "github.com/phillip/clubify-go/store"
)

type db struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	clubs         map[primitive.ObjectID]models.Club
	events        map[primitive.ObjectID]models.Event
	memberships   map[primitive.ObjectID]models.Membership
	registrations map[primitive.ObjectID]models.EventRegistration
	payments      map[primitive.ObjectID]models.Payment
}

// New returns an empty store.
func New() *store.Store {
	d := &db{
		users:         map[primitive.ObjectID]models.User{},
		clubs:         map[primitive.ObjectID]models.Club{},
		events:        map[primitive.ObjectID]models.Event{},
		memberships:   map[primitive.ObjectID]models.Membership{},
		registrations: map[primitive.ObjectID]models.EventRegistration{},
		payments:      map[primitive.ObjectID]models.Payment{},
	}
	return &store.Store{
		Users:         &userStore{d},
		Clubs:         &clubStore{d},
		Events:        &eventStore{d},
		Memberships:   &membershipStore{d},
		Registrations: &registrationStore{d},
		Payments:      &paymentStore{d},
		Health:        pinger{},
	}
}

type pinger struct{}

func (pinger) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.ErrUnavailable, "database unavailable", err)
	}
	return nil
}

func idLess(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ---------------- USERS ----------------

type userStore struct{ d *db }

func (s *userStore) Insert(_ context.Context, u *models.User) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, existing := range s.d.users {
		if existing.Email == u.Email {
			return apperr.Conflict("user with this email already exists")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.d.users[u.ID] = *u
	return nil
}

func (s *userStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	u, ok := s.d.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (s *userStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	u, ok := s.d.userByEmail(email)
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (d *db) userByEmail(email string) (models.User, bool) {
	for _, u := range d.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *userStore) List(_ context.Context, role string) ([]models.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.User{}
	for _, u := range s.d.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *userStore) UpdateRole(_ context.Context, id primitive.ObjectID, role string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	u, ok := s.d.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	s.d.users[id] = u
	return nil
}

func (s *userStore) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	u, ok := s.d.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	s.d.users[id] = u
	return nil
}

// ---------------- CLUBS ----------------

type clubStore struct{ d *db }

func (s *clubStore) Insert(_ context.Context, c *models.Club) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, ok := s.d.clubs[c.ID]; ok {
		return apperr.Conflict("club already exists")
	}
	s.d.clubs[c.ID] = *c
	return nil
}

func (s *clubStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Club, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	c, ok := s.d.clubs[id]
	if !ok {
		return nil, apperr.NotFound("club not found")
	}
	return &c, nil
}

func (s *clubStore) List(_ context.Context, q models.ClubQuery) ([]models.Club, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.Club{}
	for _, c := range s.d.clubs {
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		if q.Search != "" && !containsFold(c.ClubName, q.Search) {
			continue
		}
		if q.Category != "" && c.Category != q.Category {
			continue
		}
		if q.ManagerEmail != "" && c.ManagerEmail != q.ManagerEmail {
			continue
		}
		out = append(out, c)
	}

	newest := func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) }
	var less func(i, j int) bool
	switch q.Sort {
	case models.ClubSortOldest:
		less = func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) }
	case models.ClubSortHighestFee:
		less = func(i, j int) bool {
			if out[i].MembershipFee != out[j].MembershipFee {
				return out[i].MembershipFee > out[j].MembershipFee
			}
			return newest(i, j)
		}
	case models.ClubSortLowestFee:
		less = func(i, j int) bool {
			if out[i].MembershipFee != out[j].MembershipFee {
				return out[i].MembershipFee < out[j].MembershipFee
			}
			return newest(i, j)
		}
	default:
		less = newest
	}
	sort.SliceStable(out, less)
	return out, nil
}

func (s *clubStore) Update(_ context.Context, id primitive.ObjectID, p models.ClubPatch) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	c, ok := s.d.clubs[id]
	if !ok {
		return apperr.NotFound("club not found")
	}
	if p.ClubName != nil {
		c.ClubName = *p.ClubName
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.BannerImage != nil {
		c.BannerImage = *p.BannerImage
	}
	if p.MembershipFee != nil {
		c.MembershipFee = *p.MembershipFee
	}
	c.UpdatedAt = time.Now()
	s.d.clubs[id] = c
	return nil
}

func (s *clubStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	c, ok := s.d.clubs[id]
	if !ok {
		return apperr.NotFound("club not found")
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	s.d.clubs[id] = c
	return nil
}

func (s *clubStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.clubs[id]; !ok {
		return apperr.NotFound("club not found")
	}
	delete(s.d.clubs, id)
	return nil
}
