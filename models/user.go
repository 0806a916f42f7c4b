package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles, ordered by capability.
const (
	RoleMember      = "member"
	RoleClubManager = "clubManager"
	RoleAdmin       = "admin"
)

var roleRank = map[string]int{
	RoleMember:      1,
	RoleClubManager: 2,
	RoleAdmin:       3,
}

// ValidRole reports whether role is one of member, clubManager, admin.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast reports whether role satisfies the required level.
// Unknown roles never satisfy anything.
func RoleAtLeast(role, required string) bool {
	have, ok := roleRank[role]
	if !ok {
		return false
	}
	return have >= roleRank[required]
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	PhotoURL  string             `bson:"photoURL" json:"photoURL"`
	Role      string             `bson:"role" json:"role"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// NormalizeEmail trims and lower-cases an address so lookups and unique
// indexes agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
