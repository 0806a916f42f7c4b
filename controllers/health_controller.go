package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/phillip/clubify-go/apperr"
)

func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Clubify server is running"})
	}
}

// Healthz pings the store and answers 503 when it is unreachable.
func Healthz(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.ctx(c)
		defer cancel()

		if err := d.Store.Health.Ping(ctx); err != nil {
			d.respondError(c, apperr.Wrap(apperr.ErrUnavailable, "store unreachable", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
