package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/phillip/clubify-go/models"
)

func TestRoleAdmission(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		email  string
		path   string
		status int
	}{
		{"anonymous on admin route", "", "/users", http.StatusUnauthorized},
		{"unregistered caller", "stranger@clubify.test", "/users", http.StatusForbidden},
		{"member below admin", memberEmail, "/users", http.StatusForbidden},
		{"manager below admin", managerEmail, "/users", http.StatusForbidden},
		{"admin at admin", adminEmail, "/users", http.StatusOK},
		{"member below manager", memberEmail, "/memberships/club/000000000000000000000001", http.StatusForbidden},
		{"manager at manager", managerEmail, "/memberships/club/000000000000000000000001", http.StatusOK},
		{"admin above manager", adminEmail, "/memberships/club/000000000000000000000001", http.StatusOK},
		{"member at member", memberEmail, "/memberships/user/" + memberEmail, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, tt.path, tt.email, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestDeactivatedUserIsRefused(t *testing.T) {
	ts := newTestServer(t)
	member, err := ts.store.Users.FindByEmail(context.Background(), memberEmail)
	require.NoError(t, err)

	w := ts.do(t, http.MethodPatch, "/users/"+member.ID.Hex()+"/active", adminEmail, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/memberships/user/"+memberEmail, memberEmail, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateUserIsIdempotent(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/users", "", map[string]any{"email": "New@Clubify.test", "name": "New"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode(t, w)["userId"]

	w = ts.do(t, http.MethodPost, "/users", "", map[string]any{"email": "new@clubify.test", "name": "Other"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "User already exists", body["message"])
	assert.Equal(t, first, body["userId"])

	users, err := ts.store.Users.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, users, 6)

	u, err := ts.store.Users.FindByEmail(context.Background(), "new@clubify.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, u.Role)
	assert.True(t, u.IsActive)
}

func TestCreateUserValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/users", "", map[string]any{"email": "x@clubify.test", "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "unknown field")

	w = ts.do(t, http.MethodPost, "/users", "", map[string]any{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email must be a valid email", decode(t, w)["error"])

	w = ts.do(t, http.MethodPost, "/users", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserByEmail(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/users/"+memberEmail, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, memberEmail, decode(t, w)["email"])

	w = ts.do(t, http.MethodGet, "/users/nobody@clubify.test", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateUserRole(t *testing.T) {
	ts := newTestServer(t)
	member, err := ts.store.Users.FindByEmail(context.Background(), memberEmail)
	require.NoError(t, err)
	path := "/users/" + member.ID.Hex() + "/role"

	w := ts.do(t, http.MethodPatch, path, adminEmail, map[string]any{"newRole": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, "/users/000000000000000000000001/role", adminEmail, map[string]any{"newRole": models.RoleAdmin})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPatch, path, adminEmail, map[string]any{"newRole": models.RoleClubManager})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/users/role/"+models.RoleClubManager, adminEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 3)

	w = ts.do(t, http.MethodGet, "/users/role/owner", adminEmail, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
