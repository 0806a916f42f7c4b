package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

type paymentStore struct{ d *db }

func (s *paymentStore) Insert(_ context.Context, p *models.Payment) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if p.StripePaymentIntentID != "" {
		for _, existing := range s.d.payments {
			if existing.StripePaymentIntentID == p.StripePaymentIntentID {
				return apperr.Conflict("payment for this intent already exists")
			}
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.d.payments[p.ID] = *p
	return nil
}

func (s *paymentStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	p, ok := s.d.payments[id]
	if !ok {
		return nil, apperr.NotFound("payment not found")
	}
	return &p, nil
}

func (s *paymentStore) FindByIntentID(_ context.Context, intentID string) (*models.Payment, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	if id, ok := s.d.paymentByIntent(intentID); ok {
		p := s.d.payments[id]
		return &p, nil
	}
	return nil, apperr.NotFound("payment not found")
}

func (d *db) paymentByIntent(intentID string) (primitive.ObjectID, bool) {
	if intentID == "" {
		return primitive.NilObjectID, false
	}
	for id, p := range d.payments {
		if p.StripePaymentIntentID == intentID {
			return id, true
		}
	}
	return primitive.NilObjectID, false
}

func (s *paymentStore) views(match func(models.Payment) bool) []models.PaymentView {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.PaymentView{}
	for _, p := range s.d.payments {
		if !match(p) {
			continue
		}
		v := models.PaymentView{
			ID:                    p.ID,
			UserEmail:             p.UserEmail,
			Amount:                p.Amount,
			Currency:              p.Currency,
			Type:                  p.Type,
			ClubID:                p.ClubID,
			EventID:               p.EventID,
			StripePaymentIntentID: p.StripePaymentIntentID,
			Status:                p.Status,
			CreatedAt:             p.CreatedAt,
			UpdatedAt:             p.UpdatedAt,
		}
		if p.ClubID != nil {
			if c, ok := s.d.clubs[*p.ClubID]; ok {
				v.ClubName = c.ClubName
			}
		}
		if p.EventID != nil {
			if e, ok := s.d.events[*p.EventID]; ok {
				v.EventName = e.Title
			}
		}
		if u, ok := s.d.userByEmail(p.UserEmail); ok {
			v.UserName = u.Name
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *paymentStore) ListAll(_ context.Context) ([]models.PaymentView, error) {
	return s.views(func(models.Payment) bool { return true }), nil
}

func (s *paymentStore) ListByUser(_ context.Context, email string) ([]models.PaymentView, error) {
	return s.views(func(p models.Payment) bool { return p.UserEmail == email }), nil
}

func (s *paymentStore) ListByClub(_ context.Context, clubID primitive.ObjectID) ([]models.PaymentView, error) {
	return s.views(func(p models.Payment) bool { return p.ClubID != nil && *p.ClubID == clubID }), nil
}

func (s *paymentStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	p, ok := s.d.payments[id]
	if !ok {
		return apperr.NotFound("payment not found")
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	s.d.payments[id] = p
	return nil
}

func (s *paymentStore) SetStatusByIntent(_ context.Context, intentID, status string) (bool, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	id, ok := s.d.paymentByIntent(intentID)
	if !ok {
		return false, nil
	}
	p := s.d.payments[id]
	p.Status = status
	p.UpdatedAt = time.Now()
	s.d.payments[id] = p
	return true, nil
}
