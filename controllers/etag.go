package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	utils "github.com/phillip/clubify-go/utils"
)

// notModified sets ETag and Last-Modified, and answers 304 when the client
// already holds this version.
func notModified(c *gin.Context, id primitive.ObjectID, updatedAt time.Time) bool {
	etag := utils.GenerateETag(id, updatedAt)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	c.Header("ETag", etag)
	if !updatedAt.IsZero() {
		c.Header("Last-Modified", updatedAt.UTC().Format(http.TimeFormat))
	}
	return false
}
