package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/dal"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/models"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/service"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/store"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/config"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/storage"
)

type nopMailer struct{}

func (nopMailer) Send(context.Context, string, string, string) error { return nil }

type apiFixture struct {
	router *gin.Engine
	dal    *dal.DAL
	store  *store.MemoryStore
	auth   *service.AuthService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	d := dal.New(st, nil, nil, "")
	authService := service.NewAuthService(st, nil, nil, nopMailer{},
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "colegio-api"},
		config.AuthConfig{RegistrationCode: "codigo"},
	)
	backupService := service.NewBackupService(d, st, nil)
	localStorage, err := storage.NewLocalStorage(t.TempDir(), "/uploads", "http://localhost:8080")
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r, "/api/v1", Handlers{
		Subjects:     NewSubjectHandler(d),
		Resources:    NewResourceHandler(d, nil),
		Publications: NewPublicationHandler(d),
		School:       NewSchoolHandler(d),
		Auth:         NewAuthHandler(authService),
		Backup:       NewBackupHandler(backupService),
		Uploads:      NewUploadHandler(localStorage, 1024*1024),
		Events:       NewEventsHandler(d, nil),
	}, authService)

	return &apiFixture{router: r, dal: d, store: st, auth: authService}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) login(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreta1"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.store.Add(context.Background(), store.CollectionAdmin, store.Document{
		"email":        "admin@colegio.edu",
		"passwordHash": string(hash),
	})
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{
		Email:    "admin@colegio.edu",
		Password: "secreta1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return envelope.Data.AccessToken
}

func TestPublicReadsNeedNoToken(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{
		"/api/v1/subjects",
		"/api/v1/resources",
		"/api/v1/publications",
		"/api/v1/school",
		"/api/v1/theme",
		"/api/v1/stats",
	} {
		w := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestWritesRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/subjects", "", dal.CreateSubjectRequest{Name: "Historia"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/subjects", "token-falso", dal.CreateSubjectRequest{Name: "Historia"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubjectLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	w := f.do(t, http.MethodPost, "/api/v1/subjects", token, dal.CreateSubjectRequest{Name: "Historia", Order: 1})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Subject `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)

	w = f.do(t, http.MethodPatch, "/api/v1/subjects/"+created.Data.ID, token, map[string]string{"name": "Historia Universal"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/subjects", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Historia Universal")

	w = f.do(t, http.MethodDelete, "/api/v1/subjects/"+created.Data.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteSubjectBlockedByResource(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)
	ctx := context.Background()

	subject, err := f.dal.AddSubject(ctx, dal.CreateSubjectRequest{Name: "Biología"})
	require.NoError(t, err)
	_, err = f.dal.AddResource(ctx, dal.CreateResourceRequest{
		SubjectID: subject.ID,
		Title:     "Guía",
		URL:       "https://files.example.com/guia.pdf",
	})
	require.NoError(t, err)

	w := f.do(t, http.MethodDelete, "/api/v1/subjects/"+subject.ID, token, nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Contains(t, w.Body.String(), "SUBJECT_IN_USE")
}

func TestDownloadRedirectsAndCounts(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	resource, err := f.dal.AddResource(ctx, dal.CreateResourceRequest{
		SubjectID: "subj-1",
		Title:     "Apuntes",
		URL:       "https://files.example.com/apuntes.pdf",
	})
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/api/v1/resources/"+resource.ID+"/download", "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://files.example.com/apuntes.pdf", w.Header().Get("Location"))

	got, err := f.dal.GetResource(ctx, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Downloads)
}

func TestPublicationEngagementIsPublic(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	pub, err := f.dal.AddPublication(ctx, dal.CreatePublicationRequest{Title: "Feria", Content: "..."})
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/publications/"+pub.ID+"/like", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/publications/"+pub.ID+"/comments", "", dal.AddCommentRequest{
		Author: "Ana",
		Text:   "¡Excelente!",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana")
}

func TestBackupImportRejectsInvalidFile(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", bytes.NewReader([]byte(`{"subjects":[]}`)))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_BACKUP")
}

func TestBackupExportSetsDownloadHeaders(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	w := f.do(t, http.MethodGet, "/api/v1/backup/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), `"version":"2.0"`)
}

func TestMeReportsAdminStatus(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	w := f.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.UserInfo        `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "admin@colegio.edu", envelope.Data.Email)
	assert.Equal(t, true, envelope.Meta["isAdmin"])
}
