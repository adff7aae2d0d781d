package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"media-library/internal/browse"
	"media-library/internal/fileops"
	"media-library/internal/library"
	"media-library/internal/preview"
	"media-library/internal/streaming"

	"github.com/gorilla/mux"
)

type testEnv struct {
	handlers *Handlers
	router   *mux.Router
	root     string
}

func newTestEnv(t *testing.T, previews *preview.Service) *testEnv {
	t.Helper()

	root := t.TempDir()

	mustWrite := func(rel string, data []byte) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("movie.mp4", bytes.Repeat([]byte("m"), 2000))
	mustWrite("movie.srt", []byte("1\n00:00:01,000 --> 00:00:02,000\nHello\n"))
	mustWrite("clip.mkv", []byte("not a real video"))
	mustWrite("series/episode.mp4", []byte("episode"))

	registry, err := library.NewRegistry([]library.Definition{
		{Name: "Movies", Path: root, Icon: "film"},
	})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	resolver := library.NewResolver(registry)
	env := &testEnv{
		handlers: New(registry, resolver, streaming.NewEngine(resolver),
			browse.NewScanner(resolver), fileops.NewManager(resolver, 1<<20), previews),
		router: mux.NewRouter(),
		root:   root,
	}
	env.handlers.RegisterRoutes(env.router)
	return env
}

func (env *testEnv) do(t *testing.T, method, target string, body *bytes.Buffer, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, body)
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for k, vs := range header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	return w
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewBuffer(data)
}

func TestListLibraries(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/libraries", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var libs []LibraryInfo
	if err := json.Unmarshal(w.Body.Bytes(), &libs); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(libs) != 1 || libs[0].Name != "Movies" || libs[0].Icon != "film" {
		t.Errorf("libraries = %+v", libs)
	}
}

func TestBrowse(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/browse/Movies", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var listing browse.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if listing.Library != "Movies" {
		t.Errorf("library = %q", listing.Library)
	}
	// series folder first, then the three files.
	if len(listing.Items) != 4 {
		t.Fatalf("items = %d: %+v", len(listing.Items), listing.Items)
	}
	if listing.Items[0].Name != "series" || listing.Items[0].Type != "folder" {
		t.Errorf("first item = %+v, want folders first", listing.Items[0])
	}
}

func TestBrowseSubdirectory(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/browse/Movies/series", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var listing browse.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if len(listing.Items) != 1 || listing.Items[0].Name != "episode.mp4" {
		t.Errorf("items = %+v", listing.Items)
	}
}

func TestBrowseErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/browse/Nope", http.StatusNotFound},
		{"/api/browse/Movies/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := env.do(t, http.MethodGet, tt.target, nil, nil)
		if w.Code != tt.want {
			t.Errorf("%s = %d, want %d", tt.target, w.Code, tt.want)
		}
		if !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
			t.Errorf("%s Content-Type = %q", tt.target, w.Header().Get("Content-Type"))
		}
	}
}

func TestStreamThroughRouter(t *testing.T) {
	env := newTestEnv(t, nil)

	header := http.Header{}
	header.Set("Range", "bytes=0-99")
	w := env.do(t, http.MethodGet, "/api/stream/Movies/movie.mp4", nil, header)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 0-99/2000" {
		t.Errorf("Content-Range = %q", got)
	}
	if w.Body.Len() != 100 {
		t.Errorf("body = %d bytes", w.Body.Len())
	}
}

func TestDownloadDisposition(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/download/Movies/movie.mp4", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="movie.mp4"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestArchive(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/archive/Movies/series", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/zip" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="series.zip"` {
		t.Errorf("Content-Disposition = %q", got)
	}

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("opening zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "episode.mp4" {
		names := make([]string, 0, len(zr.File))
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		t.Errorf("zip entries = %v", names)
	}
}

func TestArchiveErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	if w := env.do(t, http.MethodGet, "/api/archive/Movies/missing", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("missing dir = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/archive/Movies/movie.mp4", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("file target = %d", w.Code)
	}
}

func TestCreateFolder(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/folders/Movies/incoming", nil, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	info, err := os.Stat(filepath.Join(env.root, "incoming"))
	if err != nil || !info.IsDir() {
		t.Fatalf("folder not created: %v", err)
	}

	// Second attempt conflicts.
	if w := env.do(t, http.MethodPost, "/api/folders/Movies/incoming", nil, nil); w.Code != http.StatusConflict {
		t.Errorf("conflict = %d", w.Code)
	}
}

func TestDeleteFile(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodDelete, "/api/files/Movies/clip.mkv", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(env.root, "clip.mkv")); !os.IsNotExist(err) {
		t.Error("file still exists")
	}
}

func TestRename(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/rename/Movies/clip.mkv",
		jsonBody(t, renameRequest{NewName: "renamed.mkv"}), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(env.root, "renamed.mkv")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestRenameValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body *bytes.Buffer
		want int
	}{
		{"missing name", jsonBody(t, renameRequest{}), http.StatusBadRequest},
		{"traversal name", jsonBody(t, renameRequest{NewName: "../escape"}), http.StatusBadRequest},
		{"garbage body", bytes.NewBufferString("{not json"), http.StatusBadRequest},
		{"existing target", jsonBody(t, renameRequest{NewName: "movie.mp4"}), http.StatusConflict},
	}
	for _, tt := range tests {
		w := env.do(t, http.MethodPost, "/api/rename/Movies/clip.mkv", tt.body, nil)
		if w.Code != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, w.Code, tt.want)
		}
	}
}

func TestMoveAndCopy(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/copy/Movies/movie.mp4",
		jsonBody(t, transferRequest{Destination: "series"}), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("copy = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(env.root, "series", "movie.mp4")); err != nil {
		t.Errorf("copy target missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.root, "movie.mp4")); err != nil {
		t.Errorf("copy source removed: %v", err)
	}

	w = env.do(t, http.MethodPost, "/api/move/Movies/clip.mkv",
		jsonBody(t, transferRequest{Destination: "series"}), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("move = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(env.root, "clip.mkv")); !os.IsNotExist(err) {
		t.Error("move source still exists")
	}
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "uploaded.mp4")
	if err != nil {
		t.Fatal(err)
	}
	content := bytes.Repeat([]byte("u"), 500)
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	header := http.Header{}
	header.Set("Content-Type", mw.FormDataContentType())
	w := env.do(t, http.MethodPost, "/api/upload/Movies/series", &buf, header)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Name != "uploaded.mp4" || resp.Size != 500 {
		t.Errorf("response = %+v", resp)
	}

	data, err := os.ReadFile(filepath.Join(env.root, "series", "uploaded.mp4"))
	if err != nil {
		t.Fatalf("uploaded file: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("uploaded content mismatch")
	}
}

func TestUploadErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	// Not multipart at all.
	w := env.do(t, http.MethodPost, "/api/upload/Movies", bytes.NewBufferString("raw"), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-multipart = %d", w.Code)
	}

	// Multipart without a file part.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "hello")
	mw.Close()

	header := http.Header{}
	header.Set("Content-Type", mw.FormDataContentType())
	w = env.do(t, http.MethodPost, "/api/upload/Movies", &buf, header)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file part = %d", w.Code)
	}

	// Existing target is never overwritten.
	buf.Reset()
	mw = multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "movie.mp4")
	fw.Write([]byte("overwrite attempt"))
	mw.Close()

	header.Set("Content-Type", mw.FormDataContentType())
	w = env.do(t, http.MethodPost, "/api/upload/Movies", &buf, header)
	if w.Code != http.StatusConflict {
		t.Errorf("overwrite = %d, body %s", w.Code, w.Body.String())
	}
}

func TestSubtitles(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/subtitles/Movies/movie.mp4", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "text/vtt" {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.HasPrefix(w.Body.String(), "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHello\n") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestSubtitlesMissing(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/subtitles/Movies/clip.mkv", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSubtitlesSymlinkEscape(t *testing.T) {
	env := newTestEnv(t, nil)

	outside := filepath.Join(filepath.Dir(env.root), "outside.srt")
	if err := os.WriteFile(outside, []byte("1\n00:00:01,000 --> 00:00:02,000\nSecret\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(env.root, "clip.srt")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/subtitles/Movies/clip.mkv", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if strings.Contains(w.Body.String(), "Secret") {
		t.Error("response leaked the symlink target's contents")
	}
}

func TestSubtitlesSymlinkInsideRoot(t *testing.T) {
	env := newTestEnv(t, nil)

	if err := os.Symlink(filepath.Join(env.root, "movie.srt"), filepath.Join(env.root, "clip.srt")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/subtitles/Movies/clip.mkv", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Body.String(), "WEBVTT") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestPreviewDisabled(t *testing.T) {
	env := newTestEnv(t, nil)

	if w := env.do(t, http.MethodGet, "/api/preview/Movies/movie.mp4", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("preview = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/poster/Movies/movie.mp4", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("poster = %d", w.Code)
	}
}

func TestPreviewEndToEnd(t *testing.T) {
	service, err := preview.NewService(preview.Config{
		CacheDir: t.TempDir(),
	}, nil)
	if err != nil {
		t.Fatalf("building preview service: %v", err)
	}

	env := newTestEnv(t, service)

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.root, "photo.png"), pngBuf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/api/preview/Movies/photo.png?w=32&h=32", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "max-age=86400" {
		t.Errorf("Cache-Control = %q", got)
	}
	if w.Body.Len() == 0 {
		t.Error("empty thumbnail body")
	}

	// Oversized and garbage dimensions are clamped by the service, not
	// rejected.
	w = env.do(t, http.MethodGet, "/api/preview/Movies/photo.png?w=999999&h=bogus", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("oversized dimensions = %d, body %s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, target := range []string{"/health", "/healthz", "/livez", "/readyz"} {
		w := env.do(t, http.MethodGet, target, nil, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s = %d, body %s", target, w.Code, w.Body.String())
		}
	}

	w := env.do(t, http.MethodGet, "/health", nil, nil)
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != statusHealthy || resp.Libraries != 1 {
		t.Errorf("health = %+v", resp)
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/version", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var info map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info["version"] == "" {
		t.Error("version missing")
	}
	if info["goVersion"] == "" {
		t.Error("goVersion missing")
	}
}
