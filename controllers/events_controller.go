package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
	utils "github.com/phillip/clubify-go/utils"
)

const maxPageLimit = 100

// ---------------- CREATE ----------------
func CreateEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ClubID       string   `json:"clubId" binding:"required,objectid"`
			Title        string   `json:"title" binding:"required"`
			Description  string   `json:"description"`
			EventDate    string   `json:"eventDate"`
			Date         string   `json:"date"`
			Location     string   `json:"location"`
			IsPaid       *bool    `json:"isPaid"`
			EventFee     *float64 `json:"eventFee" binding:"omitempty,gte=0"`
			MaxAttendees *int     `json:"maxAttendees" binding:"omitempty,min=1"`
			ImageURL     string   `json:"imageUrl" binding:"omitempty,url"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}

		// --- Parse event date, defaulting to now ---
		eventDate := time.Now()
		raw := input.EventDate
		if raw == "" {
			raw = input.Date
		}
		if raw != "" {
			parsed, err := utils.ParseDate(raw)
			if err != nil {
				d.respondError(c, apperr.Validation("invalid eventDate format, use RFC3339 or YYYY-MM-DD"))
				return
			}
			eventDate = parsed
		}

		isPaid := input.IsPaid != nil && *input.IsPaid
		fee := 0.0
		if input.EventFee != nil {
			fee = *input.EventFee
		}
		if isPaid && fee <= 0 {
			d.respondError(c, apperr.Validation("paid events need an eventFee greater than 0"))
			return
		}

		clubID, _ := optionalObjectID(input.ClubID, "clubId")

		ctx, cancel := d.ctx(c)
		defer cancel()

		club, err := d.Store.Clubs.FindByID(ctx, *clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if !canManageClub(c, club) {
			d.respondError(c, errNotClubOwner)
			return
		}

		now := time.Now()
		event := models.Event{
			ClubID:       club.ID,
			Title:        input.Title,
			Description:  input.Description,
			EventDate:    eventDate,
			Location:     input.Location,
			IsPaid:       isPaid,
			EventFee:     fee,
			MaxAttendees: input.MaxAttendees,
			ImageURL:     input.ImageURL,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := d.Store.Events.Insert(ctx, &event); err != nil {
			d.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "eventId": event.ID.Hex()})
	}
}

// ---------------- LIST ----------------

// ListEvents pages through events: ?page, ?limit, ?sortBy, ?sortOrder, ?clubId, ?search.
func ListEvents(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := positiveQuery(c, "page", 1)
		if err != nil {
			d.respondError(c, err)
			return
		}
		limit, err := positiveQuery(c, "limit", 10)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}

		q := models.EventQuery{
			Page:   page,
			Limit:  limit,
			SortBy: c.DefaultQuery("sortBy", models.EventSortEventDate),
			Search: c.Query("search"),
		}
		if !models.ValidEventSort(q.SortBy) {
			d.respondError(c, apperr.Validation("sortBy must be one of createdAt, eventDate, eventFee"))
			return
		}
		switch c.DefaultQuery("sortOrder", "asc") {
		case "asc":
		case "desc":
			q.Desc = true
		default:
			d.respondError(c, apperr.Validation("sortOrder must be asc or desc"))
			return
		}
		if q.ClubID, err = optionalObjectID(c.Query("clubId"), "clubId"); err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		result, err := d.Store.Events.List(ctx, q)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func ListEventsByClub(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		events, err := d.Store.Events.ListByClub(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// ---------------- GET ----------------
func GetEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := objectIDParam(c, "eventId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		event, err := d.Store.Events.FindByID(ctx, eventID)
		if err != nil {
			d.respondError(c, err)
			return
		}

		if notModified(c, event.ID, event.UpdatedAt) {
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

// ---------------- UPDATE ----------------

// UpdateEvent applies a partial update. The owning club cannot change.
func UpdateEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := objectIDParam(c, "eventId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		var input struct {
			Title        *string  `json:"title" binding:"omitempty,min=1"`
			Description  *string  `json:"description"`
			EventDate    *string  `json:"eventDate"`
			Location     *string  `json:"location"`
			IsPaid       *bool    `json:"isPaid"`
			EventFee     *float64 `json:"eventFee" binding:"omitempty,gte=0"`
			MaxAttendees *int     `json:"maxAttendees" binding:"omitempty,min=1"`
			ImageURL     *string  `json:"imageUrl" binding:"omitempty,url"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}

		patch := models.EventPatch{
			Title:        input.Title,
			Description:  input.Description,
			Location:     input.Location,
			IsPaid:       input.IsPaid,
			EventFee:     input.EventFee,
			MaxAttendees: input.MaxAttendees,
			ImageURL:     input.ImageURL,
		}
		if input.EventDate != nil {
			parsed, err := utils.ParseDate(*input.EventDate)
			if err != nil {
				d.respondError(c, apperr.Validation("invalid eventDate format, use RFC3339 or YYYY-MM-DD"))
				return
			}
			patch.EventDate = &parsed
		}
		if patch.Empty() {
			d.respondError(c, errNoFields)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		event, club, err := d.eventWithClub(c, eventID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if !canManageClub(c, club) {
			d.respondError(c, errNotClubOwner)
			return
		}

		// --- Paid events must keep a positive fee ---
		isPaid, fee := event.IsPaid, event.EventFee
		if patch.IsPaid != nil {
			isPaid = *patch.IsPaid
		}
		if patch.EventFee != nil {
			fee = *patch.EventFee
		}
		if isPaid && fee <= 0 {
			d.respondError(c, apperr.Validation("paid events need an eventFee greater than 0"))
			return
		}

		if err := d.Store.Events.Update(ctx, eventID, patch); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully"})
	}
}

func UploadEventImage(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := objectIDParam(c, "eventId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		event, club, err := d.eventWithClub(c, eventID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if !canManageClub(c, club) {
			d.respondError(c, errNotClubOwner)
			return
		}

		url, err := d.uploadImage(c, utils.FolderEventImages)
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		if err := d.Store.Events.Update(ctx, eventID, models.EventPatch{ImageURL: &url}); err != nil {
			d.respondError(c, err)
			return
		}
		d.dropImage(c, event.ImageURL)

		c.JSON(http.StatusOK, gin.H{"message": "Event image updated successfully", "imageUrl": url})
	}
}

// ---------------- DELETE ----------------

// DeleteEvent removes the event together with all of its registrations.
func DeleteEvent(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := objectIDParam(c, "eventId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		event, club, err := d.eventWithClub(c, eventID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if !canManageClub(c, club) {
			d.respondError(c, errNotClubOwner)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		removed, err := d.Store.Events.Delete(ctx, eventID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		d.Log.Info("event deleted",
			zap.String("event_id", eventID.Hex()),
			zap.Int64("registrations_removed", removed),
		)
		d.dropImage(c, event.ImageURL)

		c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully", "registrationsRemoved": removed})
	}
}

// eventWithClub loads an event and its club. A missing club yields an empty
// one so only admins pass the ownership check.
func (d *Deps) eventWithClub(c *gin.Context, eventID primitive.ObjectID) (*models.Event, *models.Club, error) {
	ctx, cancel := d.ctx(c)
	defer cancel()

	event, err := d.Store.Events.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	club, err := d.clubOf(ctx, event.ClubID)
	if err != nil {
		return nil, nil, err
	}
	return event, club, nil
}
