package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ClubPending  = "pending"
	ClubApproved = "approved"
	ClubRejected = "rejected"
)

func ValidClubStatus(s string) bool {
	return s == ClubPending || s == ClubApproved || s == ClubRejected
}

type Club struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClubName      string             `bson:"clubName" json:"clubName"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"`
	Location      string             `bson:"location" json:"location"`
	BannerImage   string             `bson:"bannerImage" json:"bannerImage"`
	MembershipFee float64            `bson:"membershipFee" json:"membershipFee"`
	Status        string             `bson:"status" json:"status"` // pending, approved, rejected
	ManagerEmail  string             `bson:"managerEmail" json:"managerEmail"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ClubPatch is the set of fields a manager may change. Status and
// managerEmail are deliberately absent.
type ClubPatch struct {
	ClubName      *string
	Description   *string
	Category      *string
	Location      *string
	BannerImage   *string
	MembershipFee *float64
}

func (p ClubPatch) Empty() bool {
	return p.ClubName == nil && p.Description == nil && p.Category == nil &&
		p.Location == nil && p.BannerImage == nil && p.MembershipFee == nil
}

// Club list orderings.
const (
	ClubSortNewest     = "newest"
	ClubSortOldest     = "oldest"
	ClubSortHighestFee = "highestFee"
	ClubSortLowestFee  = "lowestFee"
)

type ClubQuery struct {
	Status       string
	Search       string
	Category     string
	ManagerEmail string
	Sort         string
}
