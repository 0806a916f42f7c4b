package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
)

// ---------------- CREATE ----------------

// CreateUser is idempotent on email: a second call answers 200 with the existing id.
func CreateUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Name     string `json:"name"`
			PhotoURL string `json:"photoURL"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		email := models.NormalizeEmail(input.Email)
		existing, err := d.Store.Users.FindByEmail(ctx, email)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"message": "User already exists", "userId": existing.ID.Hex()})
			return
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			d.respondError(c, err)
			return
		}

		now := time.Now()
		user := models.User{
			Email:     email,
			Name:      input.Name,
			PhotoURL:  input.PhotoURL,
			Role:      models.RoleMember,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := d.Store.Users.Insert(ctx, &user); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				// Lost a race with a concurrent create.
				if existing, findErr := d.Store.Users.FindByEmail(ctx, email); findErr == nil {
					c.JSON(http.StatusOK, gin.H{"message": "User already exists", "userId": existing.ID.Hex()})
					return
				}
			}
			d.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "userId": user.ID.Hex()})
	}
}

// ---------------- GET ----------------

func GetUserByEmail(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.ctx(c)
		defer cancel()

		user, err := d.Store.Users.FindByEmail(ctx, models.NormalizeEmail(c.Param("user")))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// ---------------- LIST ----------------

func ListUsers(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Query("role")
		if role != "" && !models.ValidRole(role) {
			d.respondError(c, apperr.Validation("Invalid role"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		users, err := d.Store.Users.List(ctx, role)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func ListUsersByRole(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Param("role")
		if !models.ValidRole(role) {
			d.respondError(c, apperr.Validation("Invalid role"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		users, err := d.Store.Users.List(ctx, role)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// ---------------- UPDATE ----------------

func UpdateUserRole(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := objectIDParam(c, "user")
		if err != nil {
			d.respondError(c, err)
			return
		}

		var input struct {
			NewRole string `json:"newRole"`
			Role    string `json:"role"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}
		role := input.NewRole
		if role == "" {
			role = input.Role
		}
		if !models.ValidRole(role) {
			d.respondError(c, apperr.Validation("Invalid role"))
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		if err := d.Store.Users.UpdateRole(ctx, userID, role); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully"})
	}
}

func SetUserActive(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := objectIDParam(c, "user")
		if err != nil {
			d.respondError(c, err)
			return
		}

		var input struct {
			IsActive *bool `json:"isActive" binding:"required"`
		}
		if err := bindJSON(c, &input); err != nil {
			d.respondError(c, err)
			return
		}

		ctx, cancel := d.ctx(c)
		defer cancel()

		if err := d.Store.Users.SetActive(ctx, userID, *input.IsActive); err != nil {
			d.respondError(c, err)
			return
		}

		msg := "User deactivated successfully"
		if *input.IsActive {
			msg = "User activated successfully"
		}
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}
