package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role, required string
		want           bool
	}{
		{RoleMember, RoleMember, true},
		{RoleMember, RoleClubManager, false},
		{RoleMember, RoleAdmin, false},
		{RoleClubManager, RoleMember, true},
		{RoleClubManager, RoleClubManager, true},
		{RoleClubManager, RoleAdmin, false},
		{RoleAdmin, RoleMember, true},
		{RoleAdmin, RoleClubManager, true},
		{RoleAdmin, RoleAdmin, true},
		{"superuser", RoleMember, false},
		{"", RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.required, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleAtLeast(tt.role, tt.required))
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(3), TotalPages(12, 5))
	assert.Equal(t, int64(2), TotalPages(10, 5))
	assert.Equal(t, int64(0), TotalPages(0, 10))
	assert.Equal(t, int64(1), TotalPages(1, 100))
	assert.Equal(t, int64(0), TotalPages(5, 0))
}

func TestStatusEnums(t *testing.T) {
	assert.True(t, ValidClubStatus(ClubApproved))
	assert.False(t, ValidClubStatus("banned"))
	assert.True(t, ValidMembershipStatus(MembershipPendingPayment))
	assert.False(t, ValidMembershipStatus("paused"))
	assert.True(t, ValidRegistrationStatus(RegistrationCancelled))
	assert.False(t, ValidRegistrationStatus("waitlisted"))
	assert.True(t, ValidPaymentStatus(PaymentRefunded))
	assert.False(t, ValidPaymentType("donation"))
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, ClubPatch{}.Empty())
	name := "Chess"
	assert.False(t, ClubPatch{ClubName: &name}.Empty())
	assert.True(t, EventPatch{}.Empty())
	limit := 3
	assert.False(t, EventPatch{MaxAttendees: &limit}.Empty())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@x.io", NormalizeEmail("  Ada@X.io "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
