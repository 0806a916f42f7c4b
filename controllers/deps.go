// Package controllers holds the HTTP handlers, each built from a shared Deps value.
package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apperr "github.com/phillip/clubify-go/apperr"
	middleware "github.com/phillip/clubify-go/middleware"
	models "github.com/phillip/clubify-go/models"
	payments "github.com/phillip/clubify-go/payments"
	store "github.com/phillip/clubify-go/store"
	utils "github.com/phillip/clubify-go/utils"
)

type Deps struct {
	Store    *store.Store
	Payments *payments.Orchestrator
	Images   utils.ImageStore
	Mailer   utils.Mailer
	Log      *zap.Logger
	Timeout  time.Duration
}

// ctx bounds store and processor calls made on behalf of one request.
func (d *Deps) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// canManageClub reports whether the caller is an admin or the club's manager.
func canManageClub(c *gin.Context, club *models.Club) bool {
	if middleware.CallerAtLeast(c, models.RoleAdmin) {
		return true
	}
	email := middleware.CallerEmail(c)
	return email != "" && email == club.ManagerEmail
}

// clubOf loads a club for an ownership check. A club that no longer exists
// yields an unowned placeholder, which only admins pass.
func (d *Deps) clubOf(ctx context.Context, clubID primitive.ObjectID) (*models.Club, error) {
	club, err := d.Store.Clubs.FindByID(ctx, clubID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.Club{ID: clubID}, nil
	}
	return club, err
}

// requireClubManager fails unless the caller manages clubID or is an admin.
func (d *Deps) requireClubManager(ctx context.Context, c *gin.Context, clubID primitive.ObjectID) error {
	club, err := d.clubOf(ctx, clubID)
	if err != nil {
		return err
	}
	if !canManageClub(c, club) {
		return errNotClubOwner
	}
	return nil
}

// canSeeUser reports whether the caller may read data belonging to email.
func canSeeUser(c *gin.Context, email string) bool {
	return middleware.CallerEmail(c) == email || middleware.CallerAtLeast(c, models.RoleClubManager)
}

// subjectEmail resolves the user an action is for: the caller by default,
// anyone else only for managers and admins.
func subjectEmail(c *gin.Context, requested string) (string, error) {
	caller := middleware.CallerEmail(c)
	requested = models.NormalizeEmail(requested)
	if requested == "" || requested == caller {
		if caller == "" {
			return "", errUnknownCaller
		}
		return caller, nil
	}
	if !middleware.CallerAtLeast(c, models.RoleClubManager) {
		return "", errActOnOthers
	}
	return requested, nil
}
