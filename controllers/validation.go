package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperr "github.com/phillip/clubify-go/apperr"
)

var registerOnce sync.Once

// RegisterValidators configures gin's binding: unknown JSON fields are
// rejected, error messages use JSON field names, and the objectid tag checks
// for a 24-char hex id.
func RegisterValidators() {
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
}

// bindJSON decodes the body into dst and converts failures to Validation errors.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Wrap(apperr.ErrValidation, describeBindError(err), err)
	}
	return nil
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "email":
			return fe.Field() + " must be a valid email"
		case "objectid":
			return fe.Field() + " must be a valid id"
		case "url":
			return fe.Field() + " must be a valid URL"
		case "gt":
			return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
		case "gte", "min":
			return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		}
		return fe.Field() + " is invalid"
	}

	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		return "unknown field " + strings.TrimPrefix(msg, "json: unknown field ")
	}
	if msg == "EOF" {
		return "request body is required"
	}
	return "invalid request body"
}

// objectIDParam parses a path parameter holding an id.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid " + name)
	}
	return oid, nil
}

// optionalObjectID parses an id that may be empty.
func optionalObjectID(raw, field string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperr.Validation("invalid " + field)
	}
	return &oid, nil
}

// positiveQuery reads an integer query parameter that must be at least 1.
func positiveQuery(c *gin.Context, name string, def int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, apperr.Validation(name + " must be a positive integer")
	}
	return n, nil
}
