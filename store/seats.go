package store

import (
	"context"
	"fmt"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

var errEventFull = apperr.CapacityExceeded("Event is full")

// AddRegistration inserts r. A registered row holds one of the event's seats
// for as long as it stays registered.
func (s *Store) AddRegistration(ctx context.Context, r *models.EventRegistration) error {
	if r.Status != models.RegistrationRegistered {
		return s.Registrations.Insert(ctx, r)
	}
	if err := s.Events.ReserveSeat(ctx, r.EventID); err != nil {
		return err
	}
	if err := s.Registrations.Insert(ctx, r); err != nil {
		return s.giveBack(ctx, r, err)
	}
	return nil
}

// SetRegistrationStatus moves r to status, taking or returning its seat.
func (s *Store) SetRegistrationStatus(ctx context.Context, r *models.EventRegistration, status string) error {
	held := r.Status == models.RegistrationRegistered
	wants := status == models.RegistrationRegistered

	if wants && !held {
		if err := s.Events.ReserveSeat(ctx, r.EventID); err != nil {
			return err
		}
		if err := s.Registrations.UpdateStatus(ctx, r.ID, status); err != nil {
			return s.giveBack(ctx, r, err)
		}
		return nil
	}

	if err := s.Registrations.UpdateStatus(ctx, r.ID, status); err != nil {
		return err
	}
	if held && !wants {
		return s.Events.ReleaseSeat(ctx, r.EventID)
	}
	return nil
}

// RemoveRegistration deletes r and frees its seat.
func (s *Store) RemoveRegistration(ctx context.Context, r *models.EventRegistration) error {
	if err := s.Registrations.Delete(ctx, r.ID); err != nil {
		return err
	}
	if r.Status == models.RegistrationRegistered {
		return s.Events.ReleaseSeat(ctx, r.EventID)
	}
	return nil
}

func (s *Store) giveBack(ctx context.Context, r *models.EventRegistration, cause error) error {
	if err := s.Events.ReleaseSeat(ctx, r.EventID); err != nil {
		return fmt.Errorf("%w (seat on event %s not released: %v)", cause, r.EventID.Hex(), err)
	}
	return cause
}

// SyncSeats recounts the registered rows of every event and stores the result
// as its seat counter. It reports how many events were visited.
func (s *Store) SyncSeats(ctx context.Context) (int, error) {
	const batch = 100
	visited := 0
	for page := int64(1); ; page++ {
		res, err := s.Events.List(ctx, models.EventQuery{Page: page, Limit: batch, SortBy: models.EventSortCreatedAt})
		if err != nil {
			return visited, err
		}
		for _, e := range res.Events {
			n, err := s.Registrations.CountRegistered(ctx, e.ID)
			if err != nil {
				return visited, err
			}
			if n != e.SeatsTaken {
				if err := s.Events.SetSeatsTaken(ctx, e.ID, n); err != nil {
					return visited, err
				}
			}
			visited++
		}
		if page >= res.TotalPages {
			return visited, nil
		}
	}
}
