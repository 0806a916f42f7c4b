package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	controllers "github.com/phillip/clubify-go/controllers"
	middleware "github.com/phillip/clubify-go/middleware"
	models "github.com/phillip/clubify-go/models"
	payments "github.com/phillip/clubify-go/payments"
	routes "github.com/phillip/clubify-go/routes"
	store "github.com/phillip/clubify-go/store"
	memstore "github.com/phillip/clubify-go/store/memstore"
)

const (
	adminEmail   = "admin@clubify.test"
	managerEmail = "manager@clubify.test"
	otherManager = "other-manager@clubify.test"
	memberEmail  = "member@clubify.test"
	member2Email = "member2@clubify.test"

	webhookSecret = "whsec_controllers"
)

type fakeImages struct {
	mu      sync.Mutex
	uploads int
	deleted []string
}

func (f *fakeImages) Upload(_ context.Context, r io.Reader, folder string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/v1/%s/img%d.png", folder, f.uploads), nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type sentMail struct{ to, subject string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}

type fakeGateway struct{ n int }

func (g *fakeGateway) CreateIntent(_ context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	g.n++
	id := fmt.Sprintf("pi_test_%d", g.n)
	return &payments.Intent{ID: id, ClientSecret: id + "_secret", Amount: req.Amount, Currency: req.Currency, Metadata: req.Metadata}, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*payments.Intent, error) {
	return &payments.Intent{ID: id, Status: "succeeded"}, nil
}

type testServer struct {
	r       *gin.Engine
	store   *store.Store
	images  *fakeImages
	mailer  *fakeMailer
	gateway *fakeGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memstore.New()
	ts := &testServer{store: s, images: &fakeImages{}, mailer: &fakeMailer{}, gateway: &fakeGateway{}}

	for email, role := range map[string]string{
		adminEmail:   models.RoleAdmin,
		managerEmail: models.RoleClubManager,
		otherManager: models.RoleClubManager,
		memberEmail:  models.RoleMember,
		member2Email: models.RoleMember,
	} {
		require.NoError(t, s.Users.Insert(context.Background(), &models.User{
			Email: email, Role: role, IsActive: true, CreatedAt: time.Now(),
		}))
	}

	log := zap.NewNop()
	deps := &controllers.Deps{
		Store: s,
		Payments: &payments.Orchestrator{
			Gateway:       ts.gateway,
			Store:         s,
			WebhookSecret: webhookSecret,
			Log:           log,
		},
		Images:  ts.images,
		Mailer:  ts.mailer,
		Log:     log,
		Timeout: 5 * time.Second,
	}
	guard := &middleware.Guard{Verifier: middleware.TrustedHeaderVerifier{}, Users: s.Users, Log: log}

	r := gin.New()
	r.Use(middleware.RequestID())
	routes.SetupRoutes(r, deps, guard, middleware.NewMetrics())
	ts.r = r
	return ts
}

// do sends body as JSON on behalf of email; an empty email sends no identity.
func (ts *testServer) do(t *testing.T, method, path, email string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if email != "" {
		req.Header.Set("X-User-Email", email)
	}
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// seedClub inserts a club managed by managerEmail directly into the store.
func (ts *testServer) seedClub(t *testing.T, status string, fee float64) *models.Club {
	t.Helper()
	now := time.Now()
	club := &models.Club{
		ClubName:      "Chess Club",
		Category:      "games",
		Status:        status,
		MembershipFee: fee,
		ManagerEmail:  managerEmail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, ts.store.Clubs.Insert(context.Background(), club))
	return club
}

func (ts *testServer) seedEvent(t *testing.T, clubID string, maxAttendees *int) string {
	t.Helper()
	body := map[string]any{"clubId": clubID, "title": "Open night", "eventDate": "2026-12-01"}
	if maxAttendees != nil {
		body["maxAttendees"] = *maxAttendees
	}
	w := ts.do(t, http.MethodPost, "/events", managerEmail, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["eventId"].(string)
}

func intPtr(n int) *int { return &n }
