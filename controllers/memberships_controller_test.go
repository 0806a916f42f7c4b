package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/clubify-go/models"
)

func TestMembershipDuplicateIsConflict(t *testing.T) {
	ts := newTestServer(t)
	club := ts.seedClub(t, models.ClubApproved, 0)
	body := map[string]any{"clubId": club.ID.Hex()}

	w := ts.do(t, http.MethodPost, "/memberships", memberEmail, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.MembershipActive, decode(t, w)["status"])

	w = ts.do(t, http.MethodPost, "/memberships", memberEmail, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// A manager enrolling the same user hits the same pair.
	w = ts.do(t, http.MethodPost, "/memberships", managerEmail, map[string]any{"clubId": club.ID.Hex(), "userEmail": "MEMBER@clubify.test"})
	assert.Equal(t, http.StatusConflict, w.Code)

	list, err := ts.store.Memberships.ListByClub(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateMembershipRules(t *testing.T) {
	ts := newTestServer(t)
	paid := ts.seedClub(t, models.ClubApproved, 30)
	pending := ts.seedClub(t, models.ClubPending, 0)

	w := ts.do(t, http.MethodPost, "/memberships", memberEmail, map[string]any{"clubId": paid.ID.Hex()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.MembershipPendingPayment, decode(t, w)["status"])

	w = ts.do(t, http.MethodPost, "/memberships", member2Email, map[string]any{
		"clubId": paid.ID.Hex(), "paymentId": primitive.NewObjectID().Hex(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.MembershipActive, decode(t, w)["status"])

	w = ts.do(t, http.MethodPost, "/memberships", memberEmail, map[string]any{"clubId": pending.ID.Hex()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/memberships", memberEmail, map[string]any{"clubId": paid.ID.Hex(), "userEmail": member2Email})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/memberships", memberEmail, map[string]any{"clubId": primitive.NewObjectID().Hex()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/memberships", "", map[string]any{"clubId": paid.ID.Hex()})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMembershipListsAndStatus(t *testing.T) {
	ts := newTestServer(t)
	club := ts.seedClub(t, models.ClubApproved, 0)

	w := ts.do(t, http.MethodPost, "/memberships", memberEmail, map[string]any{"clubId": club.ID.Hex()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["membershipId"].(string)

	w = ts.do(t, http.MethodGet, "/memberships/user/"+memberEmail, memberEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decodeList(t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, "Chess Club", mine[0]["clubName"])

	w = ts.do(t, http.MethodGet, "/memberships/user/"+memberEmail, member2Email, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, http.MethodGet, "/memberships/user/"+memberEmail, managerEmail, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	path := "/memberships/" + id + "/status"
	w = ts.do(t, http.MethodPatch, path, memberEmail, map[string]any{"status": models.MembershipCancelled})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, http.MethodPatch, path, otherManager, map[string]any{"status": models.MembershipCancelled})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, http.MethodDelete, "/memberships/"+id, otherManager, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, http.MethodPatch, path, managerEmail, map[string]any{"status": "frozen"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodPatch, path, managerEmail, map[string]any{"status": models.MembershipExpired})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	oid, _ := primitive.ObjectIDFromHex(id)
	m, err := ts.store.Memberships.FindByID(context.Background(), oid)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipExpired, m.Status)
	require.NotNil(t, m.ExpiresAt)
	stamped := *m.ExpiresAt

	// The first end date sticks.
	w = ts.do(t, http.MethodPatch, path, managerEmail, map[string]any{"status": models.MembershipCancelled})
	require.Equal(t, http.StatusOK, w.Code)
	m, err = ts.store.Memberships.FindByID(context.Background(), oid)
	require.NoError(t, err)
	assert.True(t, stamped.Equal(*m.ExpiresAt))

	w = ts.do(t, http.MethodDelete, "/memberships/"+id, managerEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodDelete, "/memberships/"+id, managerEmail, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
