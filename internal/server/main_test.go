package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialhub/internal/config"
	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	store *testutil.MediaStore
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Env:              "test",
		JWTSecret:        "test-secret-test-secret-test-secret",
		JWTTTLHours:      1,
		FeatureFlags:     "media_purge_on_delete=on,realtime_chat=on",
		AllowedOrigins:   "http://localhost:5173",
		MediaMaxFiles:    10,
		MediaMaxUploadMB: 1,
		StoryTTLHours:    24,
	}
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	db := testutil.NewTestDB(t)
	_, rdb := testutil.NewRedis(t)
	store := &testutil.MediaStore{}

	srv, err := NewServer(cfg, db, rdb, store)
	require.NoError(t, err)
	return &testServer{srv: srv, app: srv.App(), db: db, store: store}
}

func (ts *testServer) user(t *testing.T) (*models.User, string) {
	t.Helper()
	u := testutil.CreateUser(t, ts.db)
	token, _, err := ts.srv.tokens.Issue(u.ID, u.Username)
	require.NoError(t, err)
	return u, token
}

func (ts *testServer) do(t *testing.T, req *http.Request, token string) *http.Response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ts *testServer) sendJSON(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req, token)
}

type upload struct {
	field    string
	filename string
	content  []byte
}

func (ts *testServer) multipart(t *testing.T, method, path string, fields map[string]string, files []upload, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ts.do(t, req, token)
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func images(t *testing.T, field string, names ...string) []upload {
	data := pngBytes(t)
	out := make([]upload, 0, len(names))
	for _, name := range names {
		out = append(out, upload{field: field, filename: name, content: data})
	}
	return out
}
