package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentTypeMembership = "membership"
	PaymentTypeEvent      = "event"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

func ValidPaymentType(t string) bool {
	return t == PaymentTypeMembership || t == PaymentTypeEvent
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Payment struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserEmail             string              `bson:"userEmail" json:"userEmail"`
	Amount                float64             `bson:"amount" json:"amount"`
	Currency              string              `bson:"currency,omitempty" json:"currency,omitempty"`
	Type                  string              `bson:"type" json:"type"`
	ClubID                *primitive.ObjectID `bson:"clubId" json:"clubId"`
	EventID               *primitive.ObjectID `bson:"eventId" json:"eventId"`
	StripePaymentIntentID string              `bson:"stripePaymentIntentId,omitempty" json:"stripePaymentIntentId,omitempty"`
	Status                string              `bson:"status" json:"status"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PaymentView is a payment with the display names of its club, event and payer.
type PaymentView struct {
	ID                    primitive.ObjectID  `bson:"_id" json:"id"`
	UserEmail             string              `bson:"userEmail" json:"userEmail"`
	UserName              string              `bson:"userName,omitempty" json:"userName,omitempty"`
	Amount                float64             `bson:"amount" json:"amount"`
	Currency              string              `bson:"currency,omitempty" json:"currency,omitempty"`
	Type                  string              `bson:"type" json:"type"`
	ClubID                *primitive.ObjectID `bson:"clubId" json:"clubId"`
	ClubName              string              `bson:"clubName,omitempty" json:"clubName,omitempty"`
	EventID               *primitive.ObjectID `bson:"eventId" json:"eventId"`
	EventName             string              `bson:"eventName,omitempty" json:"eventName,omitempty"`
	StripePaymentIntentID string              `bson:"stripePaymentIntentId,omitempty" json:"stripePaymentIntentId,omitempty"`
	Status                string              `bson:"status" json:"status"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
}
