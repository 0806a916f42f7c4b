package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperr "github.com/phillip/clubify-go/apperr"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg", "events/abc123", false},
		{"https://res.cloudinary.com/demo/image/upload/clubs/banner.png", "clubs/banner", false},
		{"https://res.cloudinary.com/demo/image/upload/v99/solo.webp", "solo", false},
		{"https://example.com/not/cloudinary.jpg", "", true},
		{"https://res.cloudinary.com/demo/image/upload/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := extractPublicID(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-05-01T18:30:00Z", time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)},
		{"2026-05-01", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-05-01 18:30", time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)},
		{"2026-05-01T18:30", time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), tt.in)
	}

	_, err := ParseDate("next friday")
	assert.Error(t, err)
}

func TestGenerateETag(t *testing.T) {
	id := primitive.NewObjectID()
	now := time.Now()
	a := GenerateETag(id, now)
	assert.Equal(t, a, GenerateETag(id, now))
	assert.NotEqual(t, a, GenerateETag(id, now.Add(time.Second)))
	assert.Regexp(t, `^W/"[0-9a-f]{16}"$`, a)
}

func TestZeptoMailerSend(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Zoho-enczapikey k", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewZeptoMailer(srv.URL, "Zoho-enczapikey k", "noreply@clubify.io", "Clubify")
	require.NoError(t, m.Send(context.Background(), "ada@x.io", "Approved", "<p>hi</p>"))
	assert.Equal(t, "noreply@clubify.io", got.From.Address)
	require.Len(t, got.To, 1)
	assert.Equal(t, "ada@x.io", got.To[0].Email.Address)
	assert.Equal(t, "<p>hi</p>", got.HtmlBody)
}

func TestZeptoMailerRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewZeptoMailer(srv.URL, "bad", "noreply@clubify.io", "")
	assert.Error(t, m.Send(context.Background(), "ada@x.io", "s", "b"))
}

func TestDisabledImages(t *testing.T) {
	_, err := DisabledImages{}.Upload(context.Background(), nil, FolderEventImages)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	assert.NoError(t, DisabledImages{}.Delete(context.Background(), "x"))
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("production", "warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1))

	_, err = NewLogger("development", "loud")
	assert.Error(t, err)
}
