package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/storage"
)

// minimal valid PNG signature plus padding so content sniffing sees an image
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func newUploadFixture(t *testing.T, maxSize int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := storage.NewLocalStorage(t.TempDir(), "/uploads", "http://localhost:8080")
	require.NoError(t, err)
	h := NewUploadHandler(st, maxSize)

	r := gin.New()
	r.POST("/uploads", h.Upload)
	r.DELETE("/uploads", h.Delete)
	return r
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestUploadAcceptsImage(t *testing.T) {
	r := newUploadFixture(t, 1024*1024)

	body, contentType := multipartBody(t, "foto.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "/uploads/images/")
	assert.Contains(t, w.Body.String(), "foto.png")
}

func TestUploadRejectsNonImage(t *testing.T) {
	r := newUploadFixture(t, 1024*1024)

	body, contentType := multipartBody(t, "nota.txt", []byte("texto plano, no una imagen"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	r := newUploadFixture(t, 16)

	body, contentType := multipartBody(t, "foto.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejectsTraversalFolder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := t.TempDir()
	st, err := storage.NewLocalStorage(filepath.Join(base, "uploads"), "/uploads", "http://localhost:8080")
	require.NoError(t, err)
	r := gin.New()
	r.POST("/uploads", NewUploadHandler(st, 1024*1024).Upload)

	for _, folder := range []string{"../escaped", "a/b", ".."} {
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		part, err := writer.CreateFormFile("file", "x.png")
		require.NoError(t, err)
		_, err = part.Write(pngBytes)
		require.NoError(t, err)
		require.NoError(t, writer.WriteField("folder", folder))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/uploads", buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, folder)
	}

	// nothing escaped next to the uploads directory
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "uploads", entries[0].Name())
}

func TestDeleteRejectsEncodedTraversalURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := t.TempDir()
	st, err := storage.NewLocalStorage(filepath.Join(base, "uploads"), "/uploads", "http://localhost:8080")
	require.NoError(t, err)
	r := gin.New()
	r.DELETE("/uploads", NewUploadHandler(st, 1024*1024).Delete)

	secret := filepath.Join(base, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("s"), 0o644))

	for _, target := range []string{
		"http://localhost:8080/uploads/%2e%2e/secret.txt",
		"http://localhost:8080/uploads/%252e%252e/secret.txt",
	} {
		q := url.Values{"url": {target}}
		req := httptest.NewRequest(http.MethodDelete, "/uploads?"+q.Encode(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}

	_, err = os.Stat(secret)
	require.NoError(t, err)
}

func TestDeleteRequiresURLWithinUploads(t *testing.T) {
	r := newUploadFixture(t, 1024*1024)

	req := httptest.NewRequest(http.MethodDelete, "/uploads?url=http://localhost:8080/otra/cosa.png", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
