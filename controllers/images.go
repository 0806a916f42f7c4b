package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperr "github.com/phillip/clubify-go/apperr"
)

const maxImageBytes = 5 << 20

// uploadImage stores the multipart "image" file and returns its URL.
func (d *Deps) uploadImage(c *gin.Context, folder string) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", apperr.Validation("image file is required")
		}
		return "", apperr.Wrap(apperr.ErrValidation, "invalid form data", err)
	}
	if fileHeader.Size > maxImageBytes {
		return "", apperr.Validation("image must be 5MB or smaller")
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", apperr.Validation("file must be an image")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", apperr.Wrap(apperr.ErrValidation, "failed to open file", err)
	}
	defer file.Close()

	ctx, cancel := d.ctx(c)
	defer cancel()

	url, err := d.Images.Upload(ctx, file, folder)
	if err != nil {
		return "", err
	}
	return url, nil
}

// dropImage deletes a replaced or orphaned image. Failures are only logged.
func (d *Deps) dropImage(c *gin.Context, url string) {
	if url == "" {
		return
	}
	ctx, cancel := d.ctx(c)
	defer cancel()
	if err := d.Images.Delete(ctx, url); err != nil {
		d.Log.Warn("image cleanup failed", zap.String("url", url), zap.Error(err))
	}
}
