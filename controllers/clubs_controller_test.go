package controllers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/phillip/clubify-go/models"
)

func TestCreateClubStartsPending(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/clubs", memberEmail, map[string]any{"clubName": "Runners"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/clubs", managerEmail, map[string]any{"clubName": "Runners", "membershipFee": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["clubId"].(string)

	w = ts.do(t, http.MethodGet, "/clubs/"+id, managerEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	club := decode(t, w)
	assert.Equal(t, models.ClubPending, club["status"])
	assert.Equal(t, managerEmail, club["managerEmail"])

	w = ts.do(t, http.MethodPost, "/clubs", managerEmail, map[string]any{"clubName": "Runners", "status": "approved"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/clubs", managerEmail, map[string]any{"clubName": "Runners", "membershipFee": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClubStatusTransitions(t *testing.T) {
	ts := newTestServer(t)
	club := ts.seedClub(t, models.ClubPending, 0)
	path := "/clubs/" + club.ID.Hex() + "/status"

	for _, email := range []string{memberEmail, managerEmail} {
		w := ts.do(t, http.MethodPatch, path, email, map[string]any{"status": models.ClubApproved})
		assert.Equal(t, http.StatusForbidden, w.Code, email)
	}

	w := ts.do(t, http.MethodPatch, path, adminEmail, map[string]any{"status": "banned"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := ts.store.Clubs.FindByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClubPending, got.Status)
	assert.Empty(t, ts.mailer.sent)

	w = ts.do(t, http.MethodPatch, path, adminEmail, map[string]any{"status": models.ClubApproved})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err = ts.store.Clubs.FindByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClubApproved, got.Status)
	require.Len(t, ts.mailer.sent, 1)
	assert.Equal(t, managerEmail, ts.mailer.sent[0].to)

	w = ts.do(t, http.MethodPatch, "/clubs/000000000000000000000001/status", adminEmail, map[string]any{"status": models.ClubRejected})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateClub(t *testing.T) {
	ts := newTestServer(t)
	club := ts.seedClub(t, models.ClubApproved, 0)
	path := "/clubs/" + club.ID.Hex()

	w := ts.do(t, http.MethodPatch, path, managerEmail, map[string]any{"managerEmail": otherManager})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, path, managerEmail, map[string]any{"status": models.ClubRejected})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, path, managerEmail, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no fields to update", decode(t, w)["error"])

	w = ts.do(t, http.MethodPatch, path, otherManager, map[string]any{"clubName": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPatch, path, managerEmail, map[string]any{"clubName": "Chess & Go"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPatch, path, adminEmail, map[string]any{"membershipFee": 15})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := ts.store.Clubs.FindByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chess & Go", got.ClubName)
	assert.Equal(t, 15.0, got.MembershipFee)
	assert.Equal(t, managerEmail, got.ManagerEmail)
	assert.Equal(t, models.ClubApproved, got.Status)
}

func TestGetClubVisibilityAndETag(t *testing.T) {
	ts := newTestServer(t)
	pending := ts.seedClub(t, models.ClubPending, 0)
	approved := ts.seedClub(t, models.ClubApproved, 0)

	w := ts.do(t, http.MethodGet, "/clubs/"+pending.ID.Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodGet, "/clubs/"+pending.ID.Hex(), otherManager, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodGet, "/clubs/"+pending.ID.Hex(), managerEmail, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/clubs/"+approved.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/clubs/"+approved.ID.Hex(), nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	ts.r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	w = ts.do(t, http.MethodGet, "/clubs/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListClubs(t *testing.T) {
	ts := newTestServer(t)
	ts.seedClub(t, models.ClubPending, 0)
	ts.seedClub(t, models.ClubApproved, 5)
	ts.seedClub(t, models.ClubApproved, 20)

	w := ts.do(t, http.MethodGet, "/clubs?sortBy=highestFee", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 2)
	assert.Equal(t, 20.0, list[0]["membershipFee"])

	// ?admin=true only widens the listing for admins.
	w = ts.do(t, http.MethodGet, "/clubs?admin=true", memberEmail, nil)
	assert.Len(t, decodeList(t, w), 2)
	w = ts.do(t, http.MethodGet, "/clubs?admin=true", adminEmail, nil)
	assert.Len(t, decodeList(t, w), 3)
	w = ts.do(t, http.MethodGet, "/clubs?admin=true&status=pending", adminEmail, nil)
	assert.Len(t, decodeList(t, w), 1)

	w = ts.do(t, http.MethodGet, "/clubs?sortBy=popular", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/clubs/status/pending", adminEmail, nil)
	assert.Len(t, decodeList(t, w), 1)

	w = ts.do(t, http.MethodGet, "/clubs/manager/"+managerEmail, managerEmail, nil)
	assert.Len(t, decodeList(t, w), 3)
	w = ts.do(t, http.MethodGet, "/clubs/manager/"+managerEmail, otherManager, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func multipartImage(t *testing.T, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="banner.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadClubBanner(t *testing.T) {
	ts := newTestServer(t)
	club := ts.seedClub(t, models.ClubApproved, 0)
	path := "/clubs/" + club.ID.Hex() + "/banner"

	upload := func(email, contentType string) *httptest.ResponseRecorder {
		body, ct := multipartImage(t, contentType)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set("X-User-Email", email)
		w := httptest.NewRecorder()
		ts.r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, upload(otherManager, "image/png").Code)
	assert.Equal(t, http.StatusBadRequest, upload(managerEmail, "application/pdf").Code)

	w := upload(managerEmail, "image/png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode(t, w)["bannerImage"].(string)

	w = upload(managerEmail, "image/png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := ts.store.Clubs.FindByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, decode(t, w)["bannerImage"], got.BannerImage)
	assert.Equal(t, []string{first}, ts.images.deleted)

	w = ts.do(t, http.MethodPost, path, managerEmail, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteClubAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	club := ts.seedClub(t, models.ClubApproved, 0)

	w := ts.do(t, http.MethodDelete, "/clubs/"+club.ID.Hex(), managerEmail, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodDelete, "/clubs/"+club.ID.Hex(), adminEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/clubs/"+club.ID.Hex(), adminEmail, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
