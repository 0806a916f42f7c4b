package controllers

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperr "github.com/phillip/clubify-go/apperr"
	middleware "github.com/phillip/clubify-go/middleware"
	models "github.com/phillip/clubify-go/models"
	utils "github.com/phillip/clubify-go/utils"
)

// ---------------- CREATE ----------------
func CreateClub(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager := middleware.CallerEmail(c)
		if manager == "" {
			d.respondError(c, errUnknownCaller)
			return
		}

		var input struct {
			ClubName      string   `json:"clubName" binding:"required"`
			Description   string   `json:"description"`
			Category      string   `json:"category"`
			Location      string   `json:"location"`
			BannerImage   string   `json:"bannerImage" binding:"omitempty,url"`
			MembershipFee *float64 `json:"membershipFee" binding:"omitempty,gte=0"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}

		now := time.Now()
		club := models.Club{
			ClubName:     input.ClubName,
			Description:  input.Description,
			Category:     input.Category,
			Location:     input.Location,
			BannerImage:  input.BannerImage,
			Status:       models.ClubPending,
			ManagerEmail: manager,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if input.MembershipFee != nil {
			club.MembershipFee = *input.MembershipFee
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		if err := d.Store.Clubs.Insert(ctx, &club); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Club created successfully", "clubId": club.ID.Hex()})
	}
}

// ---------------- LIST ----------------

func validClubSort(s string) bool {
	switch s {
	case "", models.ClubSortNewest, models.ClubSortOldest, models.ClubSortHighestFee, models.ClubSortLowestFee:
		return true
	}
	return false
}

// ListClubs shows approved clubs. Admins passing ?admin=true see every club,
// optionally narrowed by ?status.
func ListClubs(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := models.ClubQuery{
			Status:   models.ClubApproved,
			Search:   c.Query("search"),
			Category: c.Query("category"),
			Sort:     c.Query("sortBy"),
		}
		if !validClubSort(q.Sort) {
			d.respondError(c, apperr.Validation("sortBy must be one of newest, oldest, highestFee, lowestFee"))
			return
		}
		if c.Query("admin") == "true" && middleware.CallerAtLeast(c, models.RoleAdmin) {
			q.Status = c.Query("status")
			if q.Status != "" && !models.ValidClubStatus(q.Status) {
				d.respondError(c, apperr.Validation("Invalid status"))
				return
			}
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		clubs, err := d.Store.Clubs.List(ctx, q)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, clubs)
	}
}

func ListClubsByStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Param("status")
		if !models.ValidClubStatus(status) {
			d.respondError(c, apperr.Validation("Invalid status"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		clubs, err := d.Store.Clubs.List(ctx, models.ClubQuery{Status: status})
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, clubs)
	}
}

func ListClubsByManager(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := models.NormalizeEmail(c.Param("email"))
		if email != middleware.CallerEmail(c) && !middleware.CallerAtLeast(c, models.RoleAdmin) {
			d.respondError(c, apperr.Forbidden("Managers can only list their own clubs"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		clubs, err := d.Store.Clubs.List(ctx, models.ClubQuery{ManagerEmail: email})
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, clubs)
	}
}

// ---------------- GET ----------------

// GetClub hides clubs that are not approved from everyone but admins and their manager.
func GetClub(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		club, err := d.Store.Clubs.FindByID(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if club.Status != models.ClubApproved && !canManageClub(c, club) {
			d.respondError(c, apperr.NotFound("club not found"))
			return
		}

		if notModified(c, club.ID, club.UpdatedAt) {
			return
		}
		c.JSON(http.StatusOK, club)
	}
}

// ---------------- UPDATE ----------------

// UpdateClub accepts only descriptive fields; status and managerEmail are
// rejected as unknown.
func UpdateClub(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		var input struct {
			ClubName      *string  `json:"clubName" binding:"omitempty,min=1"`
			Description   *string  `json:"description"`
			Category      *string  `json:"category"`
			Location      *string  `json:"location"`
			BannerImage   *string  `json:"bannerImage" binding:"omitempty,url"`
			MembershipFee *float64 `json:"membershipFee" binding:"omitempty,gte=0"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}
		patch := models.ClubPatch{
			ClubName:      input.ClubName,
			Description:   input.Description,
			Category:      input.Category,
			Location:      input.Location,
			BannerImage:   input.BannerImage,
			MembershipFee: input.MembershipFee,
		}
		if patch.Empty() {
			d.respondError(c, errNoFields)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		club, err := d.Store.Clubs.FindByID(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if !canManageClub(c, club) {
			d.respondError(c, errNotClubOwner)
			return
		}

		if err := d.Store.Clubs.Update(ctx, clubID, patch); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Club updated successfully"})
	}
}

func UpdateClubStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
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
		if !models.ValidClubStatus(input.Status) {
			d.respondError(c, apperr.Validation("Invalid status. Must be pending, approved, or rejected"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		club, err := d.Store.Clubs.FindByID(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if err := d.Store.Clubs.UpdateStatus(ctx, clubID, input.Status); err != nil {
			d.respondError(c, err)
			return
		}

		if club.Status != input.Status && club.ManagerEmail != "" {
			subject := fmt.Sprintf("Your club %q is now %s", club.ClubName, input.Status)
			body := fmt.Sprintf("<p>Hello,</p><p>The status of <strong>%s</strong> changed to <strong>%s</strong>.</p>",
				html.EscapeString(club.ClubName), input.Status)
			if err := d.Mailer.Send(ctx, club.ManagerEmail, subject, body); err != nil {
				d.Log.Warn("club status email failed",
					zap.String("club_id", clubID.Hex()),
					zap.String("to", club.ManagerEmail),
					zap.Error(err),
				)
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "Club status updated successfully"})
	}
}

// UploadClubBanner replaces the banner with the multipart "image" file.
func UploadClubBanner(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		club, err := d.Store.Clubs.FindByID(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if !canManageClub(c, club) {
			d.respondError(c, errNotClubOwner)
			return
		}

		url, err := d.uploadImage(c, utils.FolderClubBanners)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if err := d.Store.Clubs.Update(ctx, clubID, models.ClubPatch{BannerImage: &url}); err != nil {
			d.respondError(c, err)
			return
		}
		d.dropImage(c, club.BannerImage)

		c.JSON(http.StatusOK, gin.H{"message": "Club banner updated successfully", "bannerImage": url})
	}
}

// ---------------- DELETE ----------------
func DeleteClub(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		clubID, err := objectIDParam(c, "clubId")
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		club, err := d.Store.Clubs.FindByID(ctx, clubID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if err := d.Store.Clubs.Delete(ctx, clubID); err != nil {
			d.respondError(c, err)
			return
		}
		d.dropImage(c, club.BannerImage)

		c.JSON(http.StatusOK, gin.H{"message": "Club deleted successfully"})
	}
}
