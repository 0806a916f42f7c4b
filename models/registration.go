package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RegistrationRegistered = "registered"
	RegistrationCancelled  = "cancelled"
)

func ValidRegistrationStatus(s string) bool {
	return s == RegistrationRegistered || s == RegistrationCancelled
}

// EventRegistration keeps the clubId copied from the event at insert time.
type EventRegistration struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID      primitive.ObjectID  `bson:"eventId" json:"eventId"`
	UserEmail    string              `bson:"userEmail" json:"userEmail"`
	ClubID       primitive.ObjectID  `bson:"clubId" json:"clubId"`
	Status       string              `bson:"status" json:"status"`
	PaymentID    *primitive.ObjectID `bson:"paymentId" json:"paymentId"`
	RegisteredAt time.Time           `bson:"registeredAt" json:"registeredAt"`
	UpdatedAt    time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type RegistrationView struct {
	ID           primitive.ObjectID  `bson:"_id" json:"id"`
	EventID      primitive.ObjectID  `bson:"eventId" json:"eventId"`
	UserEmail    string              `bson:"userEmail" json:"userEmail"`
	ClubID       primitive.ObjectID  `bson:"clubId" json:"clubId"`
	Status       string              `bson:"status" json:"status"`
	PaymentID    *primitive.ObjectID `bson:"paymentId" json:"paymentId"`
	RegisteredAt time.Time           `bson:"registeredAt" json:"registeredAt"`

	EventName     string     `bson:"eventName,omitempty" json:"eventName,omitempty"`
	EventDate     *time.Time `bson:"eventDate,omitempty" json:"eventDate,omitempty"`
	EventLocation string     `bson:"eventLocation,omitempty" json:"eventLocation,omitempty"`
	ClubName      string     `bson:"clubName,omitempty" json:"clubName,omitempty"`
	UserName      string     `bson:"userName,omitempty" json:"userName,omitempty"`
	UserPhoto     string     `bson:"userPhoto,omitempty" json:"userPhoto,omitempty"`
}
