package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClubID       primitive.ObjectID `bson:"clubId" json:"clubId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	EventDate    time.Time          `bson:"eventDate" json:"eventDate"`
	Location     string             `bson:"location" json:"location"`
	IsPaid       bool               `bson:"isPaid" json:"isPaid"`
	EventFee     float64            `bson:"eventFee" json:"eventFee"`
	MaxAttendees *int               `bson:"maxAttendees" json:"maxAttendees"` // nil = unlimited
	SeatsTaken   int64              `bson:"seatsTaken" json:"seatsTaken"`
	ImageURL     string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Full reports whether every seat of a limited event is taken.
func (e *Event) Full() bool {
	return e.MaxAttendees != nil && e.SeatsTaken >= int64(*e.MaxAttendees)
}

type EventPatch struct {
	Title        *string
	Description  *string
	EventDate    *time.Time
	Location     *string
	IsPaid       *bool
	EventFee     *float64
	MaxAttendees *int
	ImageURL     *string
}

func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.EventDate == nil && p.Location == nil &&
		p.IsPaid == nil && p.EventFee == nil && p.MaxAttendees == nil && p.ImageURL == nil
}

// Event sort keys.
const (
	EventSortCreatedAt = "createdAt"
	EventSortEventDate = "eventDate"
	EventSortEventFee  = "eventFee"
)

func ValidEventSort(key string) bool {
	return key == EventSortCreatedAt || key == EventSortEventDate || key == EventSortEventFee
}

type EventQuery struct {
	Page   int64
	Limit  int64
	SortBy string
	Desc   bool
	ClubID *primitive.ObjectID
	Search string
}

type EventPage struct {
	Events      []Event `json:"events"`
	Total       int64   `json:"total"`
	TotalPages  int64   `json:"totalPages"`
	CurrentPage int64   `json:"currentPage"`
	Limit       int64   `json:"limit"`
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
