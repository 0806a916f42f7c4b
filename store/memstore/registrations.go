package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

type registrationStore struct{ d *db }

// activeConflict mirrors the partial unique index on (eventId, userEmail)
// over registered rows. skip excludes the row being updated.
func (d *db) activeConflict(eventID primitive.ObjectID, email string, skip primitive.ObjectID) bool {
	for id, r := range d.registrations {
		if id != skip && r.EventID == eventID && r.UserEmail == email && r.Status == models.RegistrationRegistered {
			return true
		}
	}
	return false
}

func (s *registrationStore) Insert(_ context.Context, r *models.EventRegistration) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if r.Status == models.RegistrationRegistered && s.d.activeConflict(r.EventID, r.UserEmail, primitive.NilObjectID) {
		return apperr.Conflict("User already registered for this event")
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.d.registrations[r.ID] = *r
	return nil
}

func (s *registrationStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.EventRegistration, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	r, ok := s.d.registrations[id]
	if !ok {
		return nil, apperr.NotFound("registration not found")
	}
	return &r, nil
}

func (s *registrationStore) FindActive(_ context.Context, eventID primitive.ObjectID, email string) (*models.EventRegistration, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, r := range s.d.registrations {
		if r.EventID == eventID && r.UserEmail == email && r.Status == models.RegistrationRegistered {
			return &r, nil
		}
	}
	return nil, apperr.NotFound("registration not found")
}

func (s *registrationStore) CountRegistered(_ context.Context, eventID primitive.ObjectID) (int64, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var n int64
	for _, r := range s.d.registrations {
		if r.EventID == eventID && r.Status == models.RegistrationRegistered {
			n++
		}
	}
	return n, nil
}

func registrationView(r models.EventRegistration) models.RegistrationView {
	return models.RegistrationView{
		ID:           r.ID,
		EventID:      r.EventID,
		UserEmail:    r.UserEmail,
		ClubID:       r.ClubID,
		Status:       r.Status,
		PaymentID:    r.PaymentID,
		RegisteredAt: r.RegisteredAt,
	}
}

func (d *db) withUser(v *models.RegistrationView) {
	if u, ok := d.userByEmail(v.UserEmail); ok {
		v.UserName = u.Name
		v.UserPhoto = u.PhotoURL
	}
}

func (s *registrationStore) ListByUser(_ context.Context, email string) ([]models.RegistrationView, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.RegistrationView{}
	for _, r := range s.d.registrations {
		if r.UserEmail != email {
			continue
		}
		v := registrationView(r)
		if e, ok := s.d.events[r.EventID]; ok {
			date := e.EventDate
			v.EventName = e.Title
			v.EventDate = &date
			v.EventLocation = e.Location
		}
		if c, ok := s.d.clubs[r.ClubID]; ok {
			v.ClubName = c.ClubName
		}
		out = append(out, v)
	}
	// Missing event dates sort first, as they do in the aggregation.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].EventDate, out[j].EventDate
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})
	return out, nil
}

func (s *registrationStore) ListByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.RegistrationView, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.RegistrationView{}
	for _, r := range s.d.registrations {
		if r.EventID != eventID {
			continue
		}
		v := registrationView(r)
		s.d.withUser(&v)
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (s *registrationStore) ListByClub(_ context.Context, clubID primitive.ObjectID) ([]models.RegistrationView, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.RegistrationView{}
	for _, r := range s.d.registrations {
		if r.ClubID != clubID {
			continue
		}
		v := registrationView(r)
		if e, ok := s.d.events[r.EventID]; ok {
			v.EventName = e.Title
		}
		s.d.withUser(&v)
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out, nil
}

func (s *registrationStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	r, ok := s.d.registrations[id]
	if !ok {
		return apperr.NotFound("registration not found")
	}
	if status == models.RegistrationRegistered && s.d.activeConflict(r.EventID, r.UserEmail, id) {
		return apperr.Conflict("User already registered for this event")
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	s.d.registrations[id] = r
	return nil
}

func (s *registrationStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.registrations[id]; !ok {
		return apperr.NotFound("registration not found")
	}
	delete(s.d.registrations, id)
	return nil
}
