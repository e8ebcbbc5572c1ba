package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/craftwork/handwerk/api"
	dbfs "github.com/craftwork/handwerk/db"
	"github.com/craftwork/handwerk/internal/config"
	dbpkg "github.com/craftwork/handwerk/internal/db"
	"github.com/craftwork/handwerk/internal/notify"
	sqlite "github.com/craftwork/handwerk/internal/repository/sqlite"
	"github.com/craftwork/handwerk/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "testsecret"

// setupServer wires the full stack: migrated sqlite database, notification
// worker pool and the router, served over httptest.
func setupServer(t *testing.T) (*httptest.Server, *sqlite.SQLiteRepo) {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		JWTSecret:     testSecret,
		TokenDuration: time.Hour,
		WorkerCount:   1,
	}

	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := sqlite.New(d)
	fanout := notify.NewFanout(repo, repo, repo)
	pool := notify.NewWorkerPool(notify.NewRepository(d), fanout.Handlers(), nil, cfg.WorkerCount)
	pool.Start(ctx)
	t.Cleanup(pool.Stop)

	router := api.SetupRoutes(cfg, "test", "now", d, notify.NewEmitter(pool), api.NewMetrics())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, repo
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, b
}

func (c *client) must(method, path string, body any, wantStatus int) []byte {
	c.t.Helper()
	status, b := c.do(method, path, body)
	if status != wantStatus {
		c.t.Fatalf("%s %s: expected %d, got %d (%s)", method, path, wantStatus, status, b)
	}
	return b
}

func signup(t *testing.T, base, email, role string) *client {
	t.Helper()
	c := &client{t: t, base: base}
	body := c.must(http.MethodPost, "/v1/auth/signup", map[string]string{"email": email, "password": "s3cret99", "role": role}, http.StatusCreated)
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
		t.Fatalf("signup %s: no token in %s", email, body)
	}
	c.token = resp.Token
	return c
}

// accountID extracts the account_id claim from the client's token.
func (c *client) accountID() int64 {
	c.t.Helper()
	token, _, err := jwt.NewParser().ParseUnverified(c.token, jwt.MapClaims{})
	if err != nil {
		c.t.Fatalf("parse token: %v", err)
	}
	id, _ := token.Claims.(jwt.MapClaims)["account_id"].(float64)
	return int64(id)
}

func TestMarketplaceFlow(t *testing.T) {
	srv, _ := setupServer(t)

	craftsman := signup(t, srv.URL, "craft@example.com", "CRAFTSMAN")
	custA := signup(t, srv.URL, "a@example.com", "CUSTOMER")
	custB := signup(t, srv.URL, "b@example.com", "CUSTOMER")
	craftID := craftsman.accountID()

	// profile roundtrip
	craftsman.must(http.MethodPut, "/v1/profile", map[string]string{"company_name": "Craft GmbH", "trade": "Plumbing", "service_area_zip": "10115,10117"}, http.StatusOK)
	var profile models.CraftsmanProfile
	if err := json.Unmarshal(craftsman.must(http.MethodGet, "/v1/profile", nil, http.StatusOK), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Trade != "Plumbing" || profile.IsVerified {
		t.Fatalf("unexpected profile: %#v", profile)
	}

	var me models.Account
	if err := json.Unmarshal(craftsman.must(http.MethodGet, "/v1/users/me", nil, http.StatusOK), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != craftID || me.Role != models.RoleCraftsman {
		t.Fatalf("unexpected me: %#v", me)
	}

	// offers: only craftsmen may create, body is schema validated
	custA.must(http.MethodPost, "/v1/offers", map[string]string{"title": "x", "trade": "y", "zip_code": "z"}, http.StatusForbidden)
	craftsman.must(http.MethodPost, "/v1/offers", map[string]string{"trade": "Plumbing"}, http.StatusBadRequest)

	var offer models.Offer
	body := craftsman.must(http.MethodPost, "/v1/offers", map[string]string{"title": "Bathroom renovation", "trade": "Plumbing", "zip_code": "10115"}, http.StatusCreated)
	if err := json.Unmarshal(body, &offer); err != nil {
		t.Fatalf("decode offer: %v", err)
	}
	if offer.Status != models.OfferOpen || offer.CraftsmanID != craftID {
		t.Fatalf("unexpected offer: %#v", offer)
	}
	offerPath := fmt.Sprintf("/v1/offers/%d", offer.ID)

	// customers see the open marketplace
	var listing []models.Offer
	if err := json.Unmarshal(custA.must(http.MethodGet, "/v1/offers", nil, http.StatusOK), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing) != 1 {
		t.Fatalf("expected 1 open offer, got %d", len(listing))
	}

	// matches for the offer include the craftsman's own profile
	var matches []models.CraftsmanProfile
	if err := json.Unmarshal(craftsman.must(http.MethodGet, offerPath+"/matches", nil, http.StatusOK), &matches); err != nil {
		t.Fatalf("decode matches: %v", err)
	}
	if len(matches) != 1 || matches[0].AccountID != craftID {
		t.Fatalf("unexpected matches: %#v", matches)
	}
	custA.must(http.MethodGet, offerPath+"/matches", nil, http.StatusForbidden)

	// inquiries
	craftsman.must(http.MethodPost, "/v1/inquiries", map[string]any{"offer_id": offer.ID}, http.StatusForbidden)
	var inqA, inqB models.Inquiry
	if err := json.Unmarshal(custA.must(http.MethodPost, "/v1/inquiries", map[string]any{"offer_id": offer.ID, "cover_letter": "pick me"}, http.StatusCreated), &inqA); err != nil {
		t.Fatalf("decode inquiry: %v", err)
	}
	if inqA.Status != models.InquirySubmitted {
		t.Fatalf("unexpected inquiry: %#v", inqA)
	}
	custA.must(http.MethodPost, "/v1/inquiries", map[string]any{"offer_id": offer.ID}, http.StatusConflict)
	if err := json.Unmarshal(custB.must(http.MethodPost, "/v1/inquiries", map[string]any{"offer_id": offer.ID}, http.StatusCreated), &inqB); err != nil {
		t.Fatalf("decode inquiry: %v", err)
	}

	var incoming []models.Inquiry
	if err := json.Unmarshal(craftsman.must(http.MethodGet, offerPath+"/inquiries", nil, http.StatusOK), &incoming); err != nil {
		t.Fatalf("decode inquiries: %v", err)
	}
	if len(incoming) != 2 {
		t.Fatalf("expected 2 inquiries, got %d", len(incoming))
	}
	custA.must(http.MethodGet, offerPath+"/inquiries", nil, http.StatusForbidden)

	// acceptance workflow
	custA.must(http.MethodPost, fmt.Sprintf("/v1/inquiries/%d/accept", inqA.ID), nil, http.StatusForbidden)
	var accepted models.Inquiry
	if err := json.Unmarshal(craftsman.must(http.MethodPost, fmt.Sprintf("/v1/inquiries/%d/accept", inqA.ID), nil, http.StatusOK), &accepted); err != nil {
		t.Fatalf("decode accepted: %v", err)
	}
	if accepted.Status != models.InquiryAccepted {
		t.Fatalf("expected ACCEPTED, got %s", accepted.Status)
	}
	craftsman.must(http.MethodPost, fmt.Sprintf("/v1/inquiries/%d/accept", inqB.ID), nil, http.StatusUnprocessableEntity)

	// the rejected customer sees their inquiry flipped
	var mine []models.Inquiry
	if err := json.Unmarshal(custB.must(http.MethodGet, "/v1/inquiries", nil, http.StatusOK), &mine); err != nil {
		t.Fatalf("decode inquiries: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != models.InquiryRejected {
		t.Fatalf("expected rejected inquiry, got %#v", mine)
	}

	// the offer left the open marketplace
	if err := json.Unmarshal(custA.must(http.MethodGet, "/v1/offers", nil, http.StatusOK), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing) != 0 {
		t.Fatalf("expected empty marketplace, got %#v", listing)
	}

	// review gate: only completed offers can be reviewed
	custA.must(http.MethodPost, "/v1/reviews", map[string]any{"offer_id": offer.ID, "rating": 5}, http.StatusUnprocessableEntity)

	var completed models.Offer
	if err := json.Unmarshal(craftsman.must(http.MethodPost, offerPath+"/complete", nil, http.StatusOK), &completed); err != nil {
		t.Fatalf("decode completed: %v", err)
	}
	if completed.Status != models.OfferCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}
	craftsman.must(http.MethodPost, offerPath+"/complete", nil, http.StatusUnprocessableEntity)

	// reviews: rating bounds, then exactly one per offer
	custA.must(http.MethodPost, "/v1/reviews", map[string]any{"offer_id": offer.ID, "rating": 6}, http.StatusBadRequest)
	var review models.Review
	if err := json.Unmarshal(custA.must(http.MethodPost, "/v1/reviews", map[string]any{"offer_id": offer.ID, "rating": 5, "comment": "great"}, http.StatusCreated), &review); err != nil {
		t.Fatalf("decode review: %v", err)
	}
	custA.must(http.MethodPost, "/v1/reviews", map[string]any{"offer_id": offer.ID, "rating": 4}, http.StatusConflict)

	var summary models.RatingSummary
	if err := json.Unmarshal(custA.must(http.MethodGet, fmt.Sprintf("/v1/craftsmen/%d/rating", craftID), nil, http.StatusOK), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Count != 1 || summary.Average == nil || *summary.Average != 5 {
		t.Fatalf("unexpected summary: %#v", summary)
	}

	// dashboards
	var dash map[string]any
	if err := json.Unmarshal(craftsman.must(http.MethodGet, "/v1/dashboard", nil, http.StatusOK), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	counts, _ := dash["craftsman_dashboard"].(map[string]any)
	if counts["completed_offers"] != float64(1) {
		t.Fatalf("unexpected craftsman dashboard: %#v", dash)
	}
	if err := json.Unmarshal(custA.must(http.MethodGet, "/v1/dashboard", nil, http.StatusOK), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	counts, _ = dash["customer_dashboard"].(map[string]any)
	if counts["accepted_inquiries"] != float64(1) {
		t.Fatalf("unexpected customer dashboard: %#v", dash)
	}

	// notifications fan out asynchronously: 2x inquiry_created + 1x
	// review_created to the craftsman, accepted + completed to customer A,
	// rejected to customer B
	waitNotifications := func(c *client, want int) []models.Notification {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for {
			var list []models.Notification
			if err := json.Unmarshal(c.must(http.MethodGet, "/v1/notifications", nil, http.StatusOK), &list); err != nil {
				t.Fatalf("decode notifications: %v", err)
			}
			if len(list) == want {
				return list
			}
			if time.Now().After(deadline) {
				t.Fatalf("expected %d notifications, got %#v", want, list)
			}
			time.Sleep(50 * time.Millisecond)
		}
	}

	waitNotifications(craftsman, 3)
	forA := waitNotifications(custA, 2)
	forB := waitNotifications(custB, 1)
	if forB[0].Kind != notify.EventInquiryRejected {
		t.Fatalf("expected rejection notice, got %#v", forB[0])
	}
	kinds := map[string]bool{}
	for _, n := range forA {
		kinds[n.Kind] = true
	}
	if !kinds[notify.EventInquiryAccepted] || !kinds[notify.EventOfferCompleted] {
		t.Fatalf("unexpected notifications for customer A: %#v", forA)
	}

	// read state handling
	custB.must(http.MethodPost, fmt.Sprintf("/v1/notifications/%d/read", forB[0].ID), nil, http.StatusNoContent)
	custA.must(http.MethodPost, fmt.Sprintf("/v1/notifications/%d/read", forB[0].ID), nil, http.StatusNotFound)
	custA.must(http.MethodPost, "/v1/notifications/read-all", nil, http.StatusNoContent)
	var unread []models.Notification
	if err := json.Unmarshal(custA.must(http.MethodGet, "/v1/notifications?unread=true", nil, http.StatusOK), &unread); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("expected no unread notifications, got %#v", unread)
	}
}

func TestVerifyCraftsmanEndpoint(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()

	craftsman := signup(t, srv.URL, "craft@example.com", "CRAFTSMAN")
	customer := signup(t, srv.URL, "cust@example.com", "CUSTOMER")
	craftID := craftsman.accountID()

	// admins are never self-registered; create one directly
	adminID, err := repo.CreateAccount(ctx, &models.Account{Email: "admin@example.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("CreateAccount error: %v", err)
	}
	admin := &client{t: t, base: srv.URL, token: signToken(t, testSecret, jwt.MapClaims{
		"account_id": adminID,
		"role":       string(models.RoleAdmin),
		"exp":        time.Now().Add(time.Hour).Unix(),
	})}

	verifyPath := fmt.Sprintf("/v1/craftsmen/%d/verify", craftID)
	customer.must(http.MethodPost, verifyPath, nil, http.StatusForbidden)
	craftsman.must(http.MethodPost, verifyPath, nil, http.StatusForbidden)

	var profile models.CraftsmanProfile
	if err := json.Unmarshal(admin.must(http.MethodPost, verifyPath, nil, http.StatusOK), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if !profile.IsVerified {
		t.Fatalf("expected verified profile, got %#v", profile)
	}

	// explicit body can clear the flag again
	if err := json.Unmarshal(admin.must(http.MethodPost, verifyPath, map[string]bool{"verified": false}, http.StatusOK), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.IsVerified {
		t.Fatalf("expected unverified profile, got %#v", profile)
	}

	admin.must(http.MethodPost, "/v1/craftsmen/99999/verify", nil, http.StatusNotFound)
}

func TestOpenEndpoints(t *testing.T) {
	srv, _ := setupServer(t)

	anon := &client{t: t, base: srv.URL}
	anon.must(http.MethodGet, "/health", nil, http.StatusOK)
	anon.must(http.MethodGet, "/version", nil, http.StatusOK)

	// protected routes reject anonymous callers
	status, _ := anon.do(http.MethodGet, "/v1/offers", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", status)
	}

	body := anon.must(http.MethodGet, "/metrics", nil, http.StatusOK)
	if !strings.Contains(string(body), "handwerk_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}
