package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MembershipActive         = "active"
	MembershipExpired        = "expired"
	MembershipPendingPayment = "pendingPayment"
	MembershipCancelled      = "cancelled"
)

func ValidMembershipStatus(s string) bool {
	switch s {
	case MembershipActive, MembershipExpired, MembershipPendingPayment, MembershipCancelled:
		return true
	}
	return false
}

type Membership struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserEmail string              `bson:"userEmail" json:"userEmail"`
	ClubID    primitive.ObjectID  `bson:"clubId" json:"clubId"`
	Status    string              `bson:"status" json:"status"`
	PaymentID *primitive.ObjectID `bson:"paymentId" json:"paymentId"`
	JoinedAt  time.Time           `bson:"joinedAt" json:"joinedAt"`
	ExpiresAt *time.Time          `bson:"expiresAt" json:"expiresAt"`
	UpdatedAt time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// MembershipView is a membership joined with its club (by-user listing) or
// its user (by-club listing). Fields of the other side stay empty.
type MembershipView struct {
	ID        primitive.ObjectID  `bson:"_id" json:"id"`
	UserEmail string              `bson:"userEmail" json:"userEmail"`
	ClubID    primitive.ObjectID  `bson:"clubId" json:"clubId"`
	Status    string              `bson:"status" json:"status"`
	PaymentID *primitive.ObjectID `bson:"paymentId" json:"paymentId"`
	JoinedAt  time.Time           `bson:"joinedAt" json:"joinedAt"`
	ExpiresAt *time.Time          `bson:"expiresAt" json:"expiresAt"`

	ClubName      string  `bson:"clubName,omitempty" json:"clubName,omitempty"`
	Description   string  `bson:"description,omitempty" json:"description,omitempty"`
	Category      string  `bson:"category,omitempty" json:"category,omitempty"`
	Location      string  `bson:"location,omitempty" json:"location,omitempty"`
	MembershipFee float64 `bson:"membershipFee,omitempty" json:"membershipFee,omitempty"`

	UserName  string `bson:"userName,omitempty" json:"userName,omitempty"`
	UserPhoto string `bson:"userPhoto,omitempty" json:"userPhoto,omitempty"`
}
