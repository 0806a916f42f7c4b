package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

type eventStore struct{ d *db }

func (s *eventStore) Insert(_ context.Context, e *models.Event) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if _, ok := s.d.events[e.ID]; ok {
		return apperr.Conflict("event already exists")
	}
	s.d.events[e.ID] = *e
	return nil
}

func (s *eventStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	e, ok := s.d.events[id]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	return &e, nil
}

// compareEvents orders a before b by key, returning <0, 0 or >0.
func compareEvents(a, b models.Event, key string) int {
	switch key {
	case models.EventSortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case models.EventSortEventFee:
		switch {
		case a.EventFee < b.EventFee:
			return -1
		case a.EventFee > b.EventFee:
			return 1
		}
		return 0
	default:
		return a.EventDate.Compare(b.EventDate)
	}
}

func (s *eventStore) List(_ context.Context, q models.EventQuery) (*models.EventPage, error) {
	if q.Page < 1 || q.Limit < 1 {
		return nil, fmt.Errorf("invalid page %d / limit %d", q.Page, q.Limit)
	}

	s.d.mu.RLock()
	matched := []models.Event{}
	for _, e := range s.d.events {
		if q.ClubID != nil && e.ClubID != *q.ClubID {
			continue
		}
		if q.Search != "" && !containsFold(e.Title, q.Search) {
			continue
		}
		matched = append(matched, e)
	}
	s.d.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		c := compareEvents(matched[i], matched[j], q.SortBy)
		if c == 0 {
			if q.Desc {
				return idLess(matched[j].ID, matched[i].ID)
			}
			return idLess(matched[i].ID, matched[j].ID)
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	page := []models.Event{}
	if start < total {
		end := start + q.Limit
		if end > total {
			end = total
		}
		page = append(page, matched[start:end]...)
	}

	return &models.EventPage{
		Events:      page,
		Total:       total,
		TotalPages:  models.TotalPages(total, q.Limit),
		CurrentPage: q.Page,
		Limit:       q.Limit,
	}, nil
}

func (s *eventStore) ListByClub(_ context.Context, clubID primitive.ObjectID) ([]models.Event, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	out := []models.Event{}
	for _, e := range s.d.events {
		if e.ClubID == clubID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out, nil
}

func (s *eventStore) Update(_ context.Context, id primitive.ObjectID, p models.EventPatch) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	e, ok := s.d.events[id]
	if !ok {
		return apperr.NotFound("event not found")
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.IsPaid != nil {
		e.IsPaid = *p.IsPaid
	}
	if p.EventFee != nil {
		e.EventFee = *p.EventFee
	}
	if p.MaxAttendees != nil {
		n := *p.MaxAttendees
		e.MaxAttendees = &n
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	e.UpdatedAt = time.Now()
	s.d.events[id] = e
	return nil
}

func (s *eventStore) ReserveSeat(_ context.Context, id primitive.ObjectID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	e, ok := s.d.events[id]
	if !ok {
		return apperr.NotFound("event not found")
	}
	if e.Full() {
		return apperr.CapacityExceeded("Event is full")
	}
	e.SeatsTaken++
	s.d.events[id] = e
	return nil
}

func (s *eventStore) ReleaseSeat(_ context.Context, id primitive.ObjectID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if e, ok := s.d.events[id]; ok && e.SeatsTaken > 0 {
		e.SeatsTaken--
		s.d.events[id] = e
	}
	return nil
}

func (s *eventStore) SetSeatsTaken(_ context.Context, id primitive.ObjectID, n int64) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	e, ok := s.d.events[id]
	if !ok {
		return apperr.NotFound("event not found")
	}
	e.SeatsTaken = n
	s.d.events[id] = e
	return nil
}

func (s *eventStore) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.events[id]; !ok {
		return 0, apperr.NotFound("event not found")
	}
	delete(s.d.events, id)

	var removed int64
	for rid, r := range s.d.registrations {
		if r.EventID == id {
			delete(s.d.registrations, rid)
			removed++
		}
	}
	return removed, nil
}
