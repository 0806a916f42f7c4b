package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

type membershipStore struct{ d *db }

func (s *membershipStore) Insert(_ context.Context, m *models.Membership) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, existing := range s.d.memberships {
		if existing.UserEmail == m.UserEmail && existing.ClubID == m.ClubID {
			return apperr.Conflict("Membership already exists for this user and club")
		}
	}
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	s.d.memberships[m.ID] = *m
	return nil
}

func (s *membershipStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Membership, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	m, ok := s.d.memberships[id]
	if !ok {
		return nil, apperr.NotFound("membership not found")
	}
	return &m, nil
}

func (s *membershipStore) FindByUserAndClub(_ context.Context, email string, clubID primitive.ObjectID) (*models.Membership, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, m := range s.d.memberships {
		if m.UserEmail == email && m.ClubID == clubID {
			return &m, nil
		}
	}
	return nil, apperr.NotFound("membership not found")
}

func membershipView(m models.Membership) models.MembershipView {
	return models.MembershipView{
		ID:        m.ID,
		UserEmail: m.UserEmail,
		ClubID:    m.ClubID,
		Status:    m.Status,
		PaymentID: m.PaymentID,
		JoinedAt:  m.JoinedAt,
		ExpiresAt: m.ExpiresAt,
	}
}

func sortByJoinedDesc(out []models.MembershipView) {
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.After(out[j].JoinedAt) })
}

func (s *membershipStore) ListByUser(_ context.Context, email string) ([]models.MembershipView, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.MembershipView{}
	for _, m := range s.d.memberships {
		if m.UserEmail != email {
			continue
		}
		v := membershipView(m)
		if c, ok := s.d.clubs[m.ClubID]; ok {
			v.ClubName = c.ClubName
			v.Description = c.Description
			v.Category = c.Category
			v.Location = c.Location
			v.MembershipFee = c.MembershipFee
		}
		out = append(out, v)
	}
	sortByJoinedDesc(out)
	return out, nil
}

func (s *membershipStore) ListByClub(_ context.Context, clubID primitive.ObjectID) ([]models.MembershipView, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.MembershipView{}
	for _, m := range s.d.memberships {
		if m.ClubID != clubID {
			continue
		}
		v := membershipView(m)
		if u, ok := s.d.userByEmail(m.UserEmail); ok {
			v.UserName = u.Name
			v.UserPhoto = u.PhotoURL
		}
		out = append(out, v)
	}
	sortByJoinedDesc(out)
	return out, nil
}

func (s *membershipStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string, expiresAt *time.Time) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	m, ok := s.d.memberships[id]
	if !ok {
		return apperr.NotFound("membership not found")
	}
	m.Status = status
	if expiresAt != nil {
		at := *expiresAt
		m.ExpiresAt = &at
	}
	m.UpdatedAt = time.Now()
	s.d.memberships[id] = m
	return nil
}

func (s *membershipStore) Activate(_ context.Context, id, paymentID primitive.ObjectID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	m, ok := s.d.memberships[id]
	if !ok {
		return apperr.NotFound("membership not found")
	}
	m.Status = models.MembershipActive
	m.PaymentID = &paymentID
	m.ExpiresAt = nil
	m.UpdatedAt = time.Now()
	s.d.memberships[id] = m
	return nil
}

func (s *membershipStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.memberships[id]; !ok {
		return apperr.NotFound("membership not found")
	}
	delete(s.d.memberships, id)
	return nil
}
