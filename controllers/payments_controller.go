package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

// ---------------- CREATE ----------------

// CreatePayment records a payment by hand. A membership payment names a club
// and no event; an event payment names an event and no club.
func CreatePayment(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			UserEmail             string  `json:"userEmail" binding:"required,email"`
			Amount                float64 `json:"amount" binding:"required,gt=0"`
			Currency              string  `json:"currency"`
			Type                  string  `json:"type" binding:"required,oneof=membership event"`
			ClubID                string  `json:"clubId" binding:"omitempty,objectid"`
			EventID               string  `json:"eventId" binding:"omitempty,objectid"`
			StripePaymentIntentID string  `json:"stripePaymentIntentId"`
			Status                string  `json:"status"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}

		status := input.Status
		if status == "" {
			status = models.PaymentPending
		}
		if !models.ValidPaymentStatus(status) {
			d.respondError(c, apperr.Validation("Invalid status. Must be pending, completed, failed, or refunded"))
			return
		}

		clubID, _ := optionalObjectID(input.ClubID, "clubId")
		eventID, _ := optionalObjectID(input.EventID, "eventId")
		if err := checkPaymentTarget(input.Type, clubID, eventID); err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		// --- Referenced club or event must exist ---
		if clubID != nil {
			if _, err := d.Store.Clubs.FindByID(ctx, *clubID); err != nil {
				d.respondError(c, err)
				return
			}
		}
		if eventID != nil {
			if _, err := d.Store.Events.FindByID(ctx, *eventID); err != nil {
				d.respondError(c, err)
				return
			}
		}

		now := time.Now()
		payment := models.Payment{
			UserEmail:             models.NormalizeEmail(input.UserEmail),
			Amount:                input.Amount,
			Currency:              input.Currency,
			Type:                  input.Type,
			ClubID:                clubID,
			EventID:               eventID,
			StripePaymentIntentID: input.StripePaymentIntentID,
			Status:                status,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := d.Store.Payments.Insert(ctx, &payment); err != nil {
			d.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Payment recorded successfully", "paymentId": payment.ID.Hex()})
	}
}

func checkPaymentTarget(kind string, clubID, eventID *primitive.ObjectID) error {
	switch kind {
	case models.PaymentTypeMembership:
		if clubID == nil || eventID != nil {
			return apperr.Validation("membership payments need a clubId and no eventId")
		}
	case models.PaymentTypeEvent:
		if eventID == nil || clubID != nil {
			return apperr.Validation("event payments need an eventId and no clubId")
		}
	default:
		return apperr.Validation("type must be membership or event")
	}
	return nil
}

// ---------------- LIST ----------------
func ListPayments(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.ctx(c)
		defer cancel()

		list, err := d.Store.Payments.ListAll(ctx)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func ListPaymentsByUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := models.NormalizeEmail(c.Param("email"))
		if !canSeeUser(c, email) {
			d.respondError(c, apperr.Forbidden("You can only view your own payments"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		list, err := d.Store.Payments.ListByUser(ctx, email)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func ListPaymentsByClub(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		list, err := d.Store.Payments.ListByClub(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ---------------- UPDATE ----------------
func UpdatePaymentStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, err := objectIDParam(c, "paymentId")
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
		if !models.ValidPaymentStatus(input.Status) {
			d.respondError(c, apperr.Validation("Invalid status. Must be pending, completed, failed, or refunded"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		if err := d.Store.Payments.UpdateStatus(ctx, paymentID, input.Status); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated successfully"})
	}
}
