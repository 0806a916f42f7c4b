package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/phillip/clubify-go/apperr"
	payments "github.com/phillip/clubify-go/payments"
)

// Stripe sends small JSON bodies; anything near this size is not a real delivery.
const maxWebhookBytes = 1 << 20

// ---------------- INTENTS ----------------
func CreateEventPaymentIntent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			EventID   string  `json:"eventId" binding:"required,objectid"`
			UserEmail string  `json:"userEmail" binding:"omitempty,email"`
			Amount    float64 `json:"amount" binding:"required,gt=0"`
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
		eventID, _ := optionalObjectID(input.EventID, "eventId")

		ctx, cancel := d.ctx(c)
		defer cancel()

		res, err := d.Payments.CreateEventIntent(ctx, payments.EventIntentInput{
			EventID:   *eventID,
			UserEmail: email,
			Amount:    input.Amount,
		})
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func CreateMembershipPaymentIntent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ClubID    string  `json:"clubId" binding:"required,objectid"`
			UserEmail string  `json:"userEmail" binding:"omitempty,email"`
			Amount    float64 `json:"amount" binding:"required,gt=0"`
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

		ctx, cancel := d.ctx(c)
		defer cancel()

		res, err := d.Payments.CreateMembershipIntent(ctx, payments.MembershipIntentInput{
			ClubID:    *clubID,
			UserEmail: email,
			Amount:    input.Amount,
		})
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func GetPaymentIntent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.ctx(c)
		defer cancel()

		intent, err := d.Payments.GetIntent(ctx, c.Param("paymentIntentId"))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, intent)
	}
}

// ---------------- WEBHOOK ----------------

// StripeWebhook verifies the delivery against the raw body. Once the
// signature holds the processor always gets 200; reconciliation failures are
// logged by the orchestrator.
func StripeWebhook(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
		if err != nil {
			d.respondError(c, apperr.Wrap(apperr.ErrValidation, "unable to read request body", err))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		if _, err := d.Payments.HandleWebhook(ctx, payload, c.GetHeader("Stripe-Signature")); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
