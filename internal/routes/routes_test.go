package routes

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsvphub/rsvp-api/internal/config"
	"github.com/rsvphub/rsvp-api/internal/middleware"
	"github.com/rsvphub/rsvp-api/internal/models"
	"github.com/rsvphub/rsvp-api/internal/storage"
)

// newTestApp wires the full route surface over an in-memory store
func newTestApp(t *testing.T) (*fiber.App, *storage.Store) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "rsvp-api"
	cfg.JWT.TokenTTL = 2 * time.Hour
	cfg.Database.Path = ":memory:"
	cfg.RateLimit.Enabled = false
	cfg.Metrics.Path = "/metrics"
	cfg.Log.Level = "warn"

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	store, err := storage.Open(&cfg.Database, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	app := fiber.New()
	Setup(app, cfg, logger, middleware.NewManager(cfg, logger), store)

	return app, store
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// loginToken seeds an admin credential and logs in through the API
func loginToken(t *testing.T, app *fiber.App, store *storage.Store) string {
	t.Helper()

	require.NoError(t, store.SeedAdmin(context.Background(), "organizer", "pw"))

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/login", models.LoginRequest{
		Username: "organizer",
		Password: "pw",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login models.LoginResponse
	decodeBody(t, resp, &login)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestSubmitRSVP_Success(t *testing.T) {
	app, store := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/rsvp", models.SubmitRequest{
		FirstName: "  John ",
		LastName:  " Smith ",
		Response:  "yes",
		Note:      "  see you there ",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.SubmitResponse
	decodeBody(t, resp, &result)
	assert.True(t, result.Success)
	require.NotZero(t, result.ID)

	rec, err := store.GetResponse(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", rec.FirstName)
	assert.Equal(t, "Smith", rec.LastName)
	require.NotNil(t, rec.Note)
	assert.Equal(t, "see you there", *rec.Note)
}

func TestSubmitRSVP_MissingName(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/rsvp", models.SubmitRequest{
		FirstName: "John",
		LastName:  "   ",
		Response:  "yes",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitRSVP_InvalidCategory(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/rsvp", models.SubmitRequest{
		FirstName: "John",
		LastName:  "Smith",
		Response:  "definitely",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitRSVP_GuestPairValidation(t *testing.T) {
	app, store := newTestApp(t)

	// A half-filled slot is rejected naming the slot
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/rsvp", models.SubmitRequest{
		FirstName:   "John",
		LastName:    "Smith",
		Response:    "yes",
		Guest2First: "Ann",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "Guest 2")

	// A full pair is joined, empty pairs stay absent
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/rsvp", models.SubmitRequest{
		FirstName:   "John",
		LastName:    "Smith",
		Response:    "yes",
		Guest2First: " Ann ",
		Guest2Last:  " Lee ",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.SubmitResponse
	decodeBody(t, resp, &result)

	rec, err := store.GetResponse(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Nil(t, rec.Guest1)
	require.NotNil(t, rec.Guest2)
	assert.Equal(t, "Ann Lee", *rec.Guest2)
	assert.Nil(t, rec.Guest3)
	assert.Nil(t, rec.Guest4)
}

func TestSubmitRSVP_DuplicateConflict(t *testing.T) {
	app, _ := newTestApp(t)

	first := jsonRequest(http.MethodPost, "/api/rsvp", models.SubmitRequest{
		FirstName: "John", LastName: "Smith", Response: "yes",
	})
	resp, err := app.Test(first, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Same pair under different casing is a conflict
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/rsvp", models.SubmitRequest{
		FirstName: "JOHN", LastName: "smith", Response: "no",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "has already submitted an RSVP")
}

func TestAdminLogin_IdenticalFailures(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.SeedAdmin(context.Background(), "organizer", "pw"))

	wrongPassword, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/login", models.LoginRequest{
		Username: "organizer", Password: "nope",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	wrongBody, _ := io.ReadAll(wrongPassword.Body)
	wrongPassword.Body.Close()

	unknownUser, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/login", models.LoginRequest{
		Username: "nobody", Password: "pw",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.StatusCode)
	unknownBody, _ := io.ReadAll(unknownUser.Body)
	unknownUser.Body.Close()

	// The response must not leak which field was wrong
	assert.Equal(t, string(wrongBody), string(unknownBody))
}

func TestAdminRoutes_RequireAuth(t *testing.T) {
	app, _ := newTestApp(t)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil),
		httptest.NewRequest(http.MethodGet, "/api/admin/responses", nil),
		jsonRequest(http.MethodPost, "/api/admin/responses", models.UpsertRequest{}),
		jsonRequest(http.MethodPut, "/api/admin/responses/1", models.UpsertRequest{}),
		httptest.NewRequest(http.MethodDelete, "/api/admin/responses/1", nil),
	}

	for _, req := range requests {
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", req.Method, req.URL.Path)
	}
}

func TestAdminStats(t *testing.T) {
	app, store := newTestApp(t)
	token := loginToken(t, app, store)

	ctx := context.Background()
	two := "Guest Two"
	one := "Guest One"
	fixtures := []*models.Response{
		{FirstName: "A", LastName: "One", Response: models.ResponseYes, Guest1: &one, Guest2: &two},
		{FirstName: "B", LastName: "Two", Response: models.ResponseYes},
		{FirstName: "C", LastName: "Three", Response: models.ResponseNo},
		{FirstName: "D", LastName: "Four", Response: models.ResponseMaybe},
	}
	for _, rec := range fixtures {
		_, err := store.CreateResponse(ctx, rec)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats models.Stats
	decodeBody(t, resp, &stats)
	assert.Equal(t, models.Stats{Yes: 2, No: 1, Maybe: 1, Guests: 2, TotalAttending: 4}, stats)
}

func TestAdminUpdateAndDelete(t *testing.T) {
	app, store := newTestApp(t)
	token := loginToken(t, app, store)

	id, err := store.CreateResponse(context.Background(), &models.Response{
		FirstName: "John", LastName: "Smith", Response: models.ResponseMaybe,
	})
	require.NoError(t, err)

	update := jsonRequest(http.MethodPut, fmt.Sprintf("/api/admin/responses/%d", id), models.UpsertRequest{
		FirstName: "John", LastName: "Smith", Response: "yes", Guest1: "Ann Smith",
	})
	update.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(update, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.UpdateResponse
	decodeBody(t, resp, &updated)
	assert.True(t, updated.Success)
	assert.Equal(t, int64(1), updated.Changes)

	// Update of a missing id still reports success with zero changes
	missing := jsonRequest(http.MethodPut, "/api/admin/responses/9999", models.UpsertRequest{
		FirstName: "No", LastName: "Body", Response: "no",
	})
	missing.Header.Set("Authorization", "Bearer "+token)

	resp, err = app.Test(missing, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &updated)
	assert.Equal(t, int64(0), updated.Changes)

	// Delete succeeds once, then reports 404
	del := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/responses/%d", id), nil)
	del.Header.Set("Authorization", "Bearer "+token)

	resp, err = app.Test(del, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	del = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/responses/%d", id), nil)
	del.Header.Set("Authorization", "Bearer "+token)

	resp, err = app.Test(del, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminCreate_TrustsInput(t *testing.T) {
	app, store := newTestApp(t)
	token := loginToken(t, app, store)

	create := func() *http.Response {
		req := jsonRequest(http.MethodPost, "/api/admin/responses", models.UpsertRequest{
			FirstName: "John", LastName: "Smith", Response: "yes",
			Guest1: "Ann Lee", Guest2: "  ",
		})
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := create()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.SubmitResponse
	decodeBody(t, resp, &result)

	rec, err := store.GetResponse(context.Background(), result.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.Guest1)
	assert.Equal(t, "Ann Lee", *rec.Guest1)
	assert.Nil(t, rec.Guest2) // blank fields are coerced to absent

	// No duplicate guard on the manual path
	resp = create()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestExportCSV(t *testing.T) {
	app, store := newTestApp(t)

	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	note := `likes "fancy" food, and commas`
	fixtures := []*models.Response{
		{FirstName: "First", LastName: "Guest", Response: models.ResponseYes,
			Note: &note, CreatedAt: base},
		{FirstName: "Second", LastName: "Guest", Response: models.ResponseNo,
			CreatedAt: base.Add(time.Minute)},
	}
	for _, rec := range fixtures {
		_, err := store.CreateResponse(ctx, rec)
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/export-csv", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "rsvps.csv")

	rows, err := csv.NewReader(resp.Body).ReadAll()
	resp.Body.Close()
	require.NoError(t, err)

	// Header plus one row per record, newest first
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Second", rows[1][1])
	assert.Equal(t, "First", rows[2][1])
	assert.Equal(t, note, rows[2][8])
}

func TestNotFoundRoute(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
