package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperr "github.com/phillip/clubify-go/apperr"
	middleware "github.com/phillip/clubify-go/middleware"
	models "github.com/phillip/clubify-go/models"
)

// ---------------- CREATE ----------------

// CreateMembership joins a user to a club. The row starts active when the
// club is free or a payment is attached, pendingPayment otherwise.
func CreateMembership(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			UserEmail string `json:"userEmail" binding:"omitempty,email"`
			ClubID    string `json:"clubId" binding:"required,objectid"`
			PaymentID string `json:"paymentId" binding:"omitempty,objectid"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}

		email, err := subjectEmail(c, input.UserEmail)
		if err != nil {
			d.respondError(c, err)
			return
		}
		clubID, _ := optionalObjectID(input.ClubID, "clubId")
		paymentID, _ := optionalObjectID(input.PaymentID, "paymentId")

		ctx, cancel := d.ctx(c)
		defer cancel()

		club, err := d.Store.Clubs.FindByID(ctx, *clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if club.Status != models.ClubApproved && !middleware.CallerAtLeast(c, models.RoleClubManager) {
			d.respondError(c, apperr.Validation("Club is not open for membership"))
			return
		}

		status := models.MembershipPendingPayment
		if club.MembershipFee <= 0 || paymentID != nil {
			status = models.MembershipActive
		}

		now := time.Now()
		membership := models.Membership{
			UserEmail: email,
			ClubID:    club.ID,
			Status:    status,
			PaymentID: paymentID,
			JoinedAt:  now,
			UpdatedAt: now,
		}
		if err := d.Store.Memberships.Insert(ctx, &membership); err != nil {
			if apperr.Status(err) == http.StatusConflict {
				err = apperr.Conflict("User is already a member of this club")
			}
			d.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":      "Membership created successfully",
			"membershipId": membership.ID.Hex(),
			"status":       status,
		})
	}
}

// ---------------- LIST ----------------
func ListMembershipsByUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := models.NormalizeEmail(c.Param("email"))
		if !canSeeUser(c, email) {
			d.respondError(c, apperr.Forbidden("You can only view your own memberships"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		memberships, err := d.Store.Memberships.ListByUser(ctx, email)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, memberships)
	}
}

func ListMembershipsByClub(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		memberships, err := d.Store.Memberships.ListByClub(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, memberships)
	}
}

// ---------------- UPDATE ----------------

// UpdateMembershipStatus is limited to the club's manager and admins.
func UpdateMembershipStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		membershipID, err := objectIDParam(c, "membershipId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}
		if !models.ValidMembershipStatus(input.Status) {
			d.respondError(c, apperr.Validation("Invalid status. Must be active, expired, pendingPayment, or cancelled"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		membership, err := d.Store.Memberships.FindByID(ctx, membershipID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if err := d.requireClubManager(ctx, c, membership.ClubID); err != nil {
			d.respondError(c, err)
			return
		}

		// Ending a membership stamps when it ended, once.
		expiresAt := membership.ExpiresAt
		if expiresAt == nil && (input.Status == models.MembershipExpired || input.Status == models.MembershipCancelled) {
			now := time.Now()
			expiresAt = &now
		}

		if err := d.Store.Memberships.UpdateStatus(ctx, membershipID, input.Status, expiresAt); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Membership status updated successfully"})
	}
}

// ---------------- DELETE ----------------
func DeleteMembership(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		membershipID, err := objectIDParam(c, "membershipId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		membership, err := d.Store.Memberships.FindByID(ctx, membershipID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if err := d.requireClubManager(ctx, c, membership.ClubID); err != nil {
			d.respondError(c, err)
			return
		}

		if err := d.Store.Memberships.Delete(ctx, membershipID); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Membership deleted successfully"})
	}
}
