package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperr "github.com/phillip/clubify-go/apperr"
	middleware "github.com/phillip/clubify-go/middleware"
	models "github.com/phillip/clubify-go/models"
)

var errAlreadyRegistered = apperr.Conflict("User is already registered for this event")

// ---------------- CREATE ----------------

// RegisterForEvent checks, in order: the event exists, the user holds no
// active registration, and a seat is left. The seat is reserved atomically on
// the event document, so concurrent requests cannot overbook.
func RegisterForEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			EventID   string `json:"eventId" binding:"required,objectid"`
			UserEmail string `json:"userEmail" binding:"omitempty,email"`
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
		eventID, _ := optionalObjectID(input.EventID, "eventId")
		paymentID, _ := optionalObjectID(input.PaymentID, "paymentId")

		ctx, cancel := d.ctx(c)
		defer cancel()

		event, err := d.Store.Events.FindByID(ctx, *eventID)
		if err != nil {
			d.respondError(c, err)
			return
		}

		if _, err := d.Store.Registrations.FindActive(ctx, event.ID, email); err == nil {
			d.respondError(c, errAlreadyRegistered)
			return
		} else if !errors.Is(err, apperr.ErrNotFound) {
			d.respondError(c, err)
			return
		}

		now := time.Now()
		reg := models.EventRegistration{
			EventID:      event.ID,
			UserEmail:    email,
			ClubID:       event.ClubID,
			Status:       models.RegistrationRegistered,
			PaymentID:    paymentID,
			RegisteredAt: now,
			UpdatedAt:    now,
		}
		// Taking the seat and inserting the row fail together.
		if err := d.Store.AddRegistration(ctx, &reg); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				err = errAlreadyRegistered
			}
			d.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Registered for event successfully", "registrationId": reg.ID.Hex()})
	}
}

// ---------------- LIST ----------------
func ListRegistrationsByUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := models.NormalizeEmail(c.Param("email"))
		if !canSeeUser(c, email) {
			d.respondError(c, apperr.Forbidden("You can only view your own registrations"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		regs, err := d.Store.Registrations.ListByUser(ctx, email)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, regs)
	}
}

func ListRegistrationsByEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := objectIDParam(c, "eventId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		regs, err := d.Store.Registrations.ListByEvent(ctx, eventID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, regs)
	}
}

func ListRegistrationsByClub(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		regs, err := d.Store.Registrations.ListByClub(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, regs)
	}
}

// ---------------- UPDATE ----------------

// UpdateRegistrationStatus lets members cancel their own registration.
// The club's manager may also re-activate one, subject to uniqueness and
// capacity.
func UpdateRegistrationStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		regID, err := objectIDParam(c, "registrationId")
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
		if !models.ValidRegistrationStatus(input.Status) {
			d.respondError(c, apperr.Validation("Invalid status. Must be registered or cancelled"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		reg, err := d.Store.Registrations.FindByID(ctx, regID)
		if err != nil {
			d.respondError(c, err)
			return
		}

		own := reg.UserEmail == middleware.CallerEmail(c)
		if !middleware.CallerAtLeast(c, models.RoleClubManager) {
			if !own {
				d.respondError(c, apperr.Forbidden("You can only change your own registration"))
				return
			}
			if input.Status != models.RegistrationCancelled {
				d.respondError(c, apperr.Forbidden("Members can only cancel a registration"))
				return
			}
		} else if !own || input.Status != models.RegistrationCancelled {
			if err := d.requireClubManager(ctx, c, reg.ClubID); err != nil {
				d.respondError(c, err)
				return
			}
		}

		if input.Status == models.RegistrationRegistered && reg.Status != models.RegistrationRegistered {
			if _, err := d.Store.Registrations.FindActive(ctx, reg.EventID, reg.UserEmail); err == nil {
				d.respondError(c, errAlreadyRegistered)
				return
			} else if !errors.Is(err, apperr.ErrNotFound) {
				d.respondError(c, err)
				return
			}
		}

		if err := d.Store.SetRegistrationStatus(ctx, reg, input.Status); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				err = errAlreadyRegistered
			}
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Registration status updated successfully"})
	}
}

// ---------------- DELETE ----------------
func DeleteRegistration(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		regID, err := objectIDParam(c, "registrationId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		reg, err := d.Store.Registrations.FindByID(ctx, regID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if err := d.requireClubManager(ctx, c, reg.ClubID); err != nil {
			d.respondError(c, err)
			return
		}

		if err := d.Store.RemoveRegistration(ctx, reg); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Registration deleted successfully"})
	}
}
