package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperr "github.com/phillip/clubify-go/apperr"
	middleware "github.com/phillip/clubify-go/middleware"
)

var (
	errUnknownCaller = apperr.Unauthenticated("Caller email is unknown")
	errActOnOthers   = apperr.Forbidden("Only managers can act on behalf of other users")
	errNotClubOwner  = apperr.Forbidden("Only the club manager or an admin can do this")
	errNoFields      = apperr.Validation("no fields to update")
)

// respondError writes the {error} body for err. Server-side failures are
// logged with their cause; client errors are not.
func (d *Deps) respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		d.Log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.CtxRequestID)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}
