package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admitly/internal/application"
	"admitly/internal/blob"
	"admitly/internal/document"
	"admitly/internal/notification"
	"admitly/internal/profile"
	id "admitly/pkg/domain"
	"admitly/pkg/testutil"
)

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(context.Context, notification.Event) {}

type env struct {
	router   chi.Router
	profiles *profile.Service
	docs     *document.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	profileStore := profile.NewInMemoryStore()
	profiles := profile.NewService(profileStore, 80, logger)

	blobs, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	signer := blob.NewHMACSigner("test-secret", "https://admitly.test/files", time.Hour)

	appStore := application.NewInMemoryStore()
	docs := document.NewService(document.NewInMemoryStore(), appStore, blobs, signer, nil, 1<<20, logger)
	apps := application.NewService(appStore, profiles, docs, nopDispatcher{}, nil, 80, logger)

	r := chi.NewRouter()
	New(apps, docs, logger).Register(r)
	return &env{router: r, profiles: profiles, docs: docs}
}

func (e *env) completeProfileFor(t *testing.T, caller id.Caller) {
	t.Helper()
	_, err := e.profiles.Upsert(context.Background(), caller, profile.UpsertInput{
		DateOfBirth:        "2001-04-12",
		Nationality:        "Kazakh",
		Address:            "12 Abay Ave",
		EducationLevel:     "Bachelor",
		CurrentInstitution: "KBTU",
		Major:              "Computer Science",
		GPA:                "3.6",
		EnglishLevel:       "C1",
	})
	require.NoError(t, err)
}

func (e *env) createApplication(t *testing.T, caller id.Caller) ApplicationResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/applications", map[string]string{
		"course_id": id.NewCourseID().String(),
	})
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))
	require.Equal(t, http.StatusCreated, rec.Code)
	return testutil.DecodeJSON[ApplicationResponse](t, rec)
}

func (e *env) fillDraft(t *testing.T, caller id.Caller, appID string) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPatch, "/applications/"+appID, map[string]string{
		"personal_statement": "I want to study systems.",
		"date_of_birth":      "2001-04-12",
		"nationality":        "Kazakh",
	})
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))
	require.Equal(t, http.StatusOK, rec.Code)
}

func student() id.Caller {
	return id.Caller{ID: id.NewUserID(), Role: id.RoleStudent}
}

func counsellor() id.Caller {
	return id.Caller{ID: id.NewUserID(), Role: id.RoleCounsellor}
}

type errorEnvelope struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func TestCreateApplication(t *testing.T) {
	e := newEnv(t)
	caller := student()

	resp := e.createApplication(t, caller)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, caller.ID.String(), resp.OwnerID)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/applications", map[string]string{
		"course_id": resp.CourseID,
	})
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_application", testutil.DecodeJSON[errorEnvelope](t, rec).Error)
}

func TestCreateApplicationValidation(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	req := testutil.JSONRequest(t, http.MethodPost, "/applications", map[string]string{
		"course_id": "not-a-uuid",
	})
	e.router.ServeHTTP(rec, testutil.WithCaller(req, student()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitBlockedByIncompleteProfile(t *testing.T) {
	e := newEnv(t)
	caller := student()
	app := e.createApplication(t, caller)
	e.fillDraft(t, caller, app.ID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications/"+app.ID+"/submit", nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envlp := testutil.DecodeJSON[errorEnvelope](t, rec)
	assert.Equal(t, "profile_incomplete", envlp.Error)
	assert.NotEmpty(t, envlp.Details["missing_fields"])
	assert.Equal(t, []any{"PROFILE_INCOMPLETE"}, envlp.Details["blocking_reasons"])
}

func TestSubmitLifecycle(t *testing.T) {
	e := newEnv(t)
	caller := student()
	e.completeProfileFor(t, caller)
	app := e.createApplication(t, caller)
	e.fillDraft(t, caller, app.ID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications/"+app.ID+"/submit", nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))

	require.Equal(t, http.StatusOK, rec.Code)
	submitted := testutil.DecodeJSON[ApplicationResponse](t, rec)
	assert.Equal(t, "SUBMITTED", submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	// Second submit is a conflict, not a silent success.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/applications/"+app.ID+"/submit", nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_submitted", testutil.DecodeJSON[errorEnvelope](t, rec).Error)
}

func TestReview(t *testing.T) {
	e := newEnv(t)
	owner := student()
	e.completeProfileFor(t, owner)
	app := e.createApplication(t, owner)
	e.fillDraft(t, owner, app.ID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications/"+app.ID+"/submit", nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, owner))
	require.Equal(t, http.StatusOK, rec.Code)

	// Students cannot review, not even their own application.
	rec = httptest.NewRecorder()
	req = testutil.JSONRequest(t, http.MethodPatch, "/applications/"+app.ID+"/status", map[string]string{
		"status": "ACCEPTED",
	})
	e.router.ServeHTTP(rec, testutil.WithCaller(req, owner))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	reviewer := counsellor()
	rec = httptest.NewRecorder()
	req = testutil.JSONRequest(t, http.MethodPatch, "/applications/"+app.ID+"/status", map[string]string{
		"status":      "ACCEPTED",
		"admin_notes": "strong application",
	})
	e.router.ServeHTTP(rec, testutil.WithCaller(req, reviewer))

	require.Equal(t, http.StatusOK, rec.Code)
	reviewed := testutil.DecodeJSON[ApplicationResponse](t, rec)
	assert.Equal(t, "ACCEPTED", reviewed.Status)
	assert.Equal(t, reviewer.ID.String(), reviewed.ReviewedByID)
	assert.Equal(t, "strong application", reviewed.AdminNotes)
	assert.NotNil(t, reviewed.ReviewedAt)
}

func TestGetWithDocuments(t *testing.T) {
	e := newEnv(t)
	caller := student()
	app := e.createApplication(t, caller)

	appID, err := id.ParseApplicationID(app.ID)
	require.NoError(t, err)
	_, err = e.docs.Attach(context.Background(), caller, appID,
		document.FileMeta{FileName: "essay.txt", FileType: "text/plain"},
		strings.NewReader("my essay"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/applications/"+app.ID, nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))

	require.Equal(t, http.StatusOK, rec.Code)
	got := testutil.DecodeJSON[ApplicationResponse](t, rec)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, "essay.txt", got.Documents[0].FileName)
	assert.NotEmpty(t, got.Documents[0].URL)
}

func TestGetAccess(t *testing.T) {
	e := newEnv(t)
	app := e.createApplication(t, student())

	// Another student cannot see it, and cannot learn that it exists.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/applications/"+app.ID, nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, student()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Staff can.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/applications/"+app.ID, nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, counsellor()))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListByRole(t *testing.T) {
	e := newEnv(t)
	first := student()
	e.createApplication(t, first)
	e.createApplication(t, student())

	type listResponse struct {
		Applications []ApplicationResponse `json:"applications"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/applications", nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, first))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.DecodeJSON[listResponse](t, rec).Applications, 1)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/applications?limit=10", nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, counsellor()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.DecodeJSON[listResponse](t, rec).Applications, 2)
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	caller := student()
	app := e.createApplication(t, caller)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/applications/"+app.ID, nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/applications/"+app.ID, nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, caller))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownApplicationID(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/applications/not-a-uuid", nil)
	e.router.ServeHTTP(rec, testutil.WithCaller(req, student()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
