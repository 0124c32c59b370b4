// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

package staticsite

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildDir creates a minimal frontend build for tests.
func buildDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":      "<html>app shell</html>",
		"styles.css":      "body { margin: 0 }",
		"app.js":          "console.log('hi')",
		"about.html":      "<html>about</html>",
		"assets/logo.png": "not-really-a-png",
		"data.bin":        "\x00\x01",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
	return recorder
}

func TestExistingFileServedWithContentType(t *testing.T) {
	handler := Handler(buildDir(t), discardLogger())

	response := get(t, handler, "/styles.css")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d", response.Code)
	}
	if got := response.Header().Get("Content-Type"); got != "text/css; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if response.Body.String() != "body { margin: 0 }" {
		t.Errorf("body = %q", response.Body.String())
	}
}

func TestRootServesIndex(t *testing.T) {
	handler := Handler(buildDir(t), discardLogger())

	response := get(t, handler, "/")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d", response.Code)
	}
	if response.Body.String() != "<html>app shell</html>" {
		t.Errorf("body = %q", response.Body.String())
	}
}

func TestExtensionlessPathTriesHTMLFile(t *testing.T) {
	handler := Handler(buildDir(t), discardLogger())

	response := get(t, handler, "/about")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d", response.Code)
	}
	if response.Body.String() != "<html>about</html>" {
		t.Errorf("body = %q, want about.html contents", response.Body.String())
	}
}

func TestUnknownRouteFallsBackToAppShell(t *testing.T) {
	handler := Handler(buildDir(t), discardLogger())

	response := get(t, handler, "/dashboard")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 SPA fallback", response.Code)
	}
	if response.Body.String() != "<html>app shell</html>" {
		t.Errorf("body = %q, want app shell", response.Body.String())
	}
	if got := response.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestQueryStringIsIgnored(t *testing.T) {
	handler := Handler(buildDir(t), discardLogger())

	response := get(t, handler, "/styles.css?v=123")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d", response.Code)
	}
	if response.Body.String() != "body { margin: 0 }" {
		t.Errorf("body = %q", response.Body.String())
	}
}

func TestUnknownExtensionServedAsOctetStream(t *testing.T) {
	handler := Handler(buildDir(t), discardLogger())

	response := get(t, handler, "/data.bin")
	if got := response.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestTraversalOutsideRootServesAppShell(t *testing.T) {
	handler := Handler(buildDir(t), discardLogger())

	response := get(t, handler, "/../../../etc/passwd.txt")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d", response.Code)
	}
	if response.Body.String() != "<html>app shell</html>" {
		t.Errorf("body = %q, want app shell", response.Body.String())
	}
}

func TestListenRejectsMissingBuildDirectory(t *testing.T) {
	_, err := Listen(filepath.Join(t.TempDir(), "absent"), 0, discardLogger())
	if !errors.Is(err, ErrAssetsMissing) {
		t.Fatalf("error = %v, want ErrAssetsMissing", err)
	}
}

func TestListenRejectsDirectoryWithoutIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "styles.css"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Listen(dir, 0, discardLogger())
	if !errors.Is(err, ErrAssetsMissing) {
		t.Fatalf("error = %v, want ErrAssetsMissing", err)
	}
}

func TestListenServesOverHTTPAndCloses(t *testing.T) {
	server, err := Listen(buildDir(t), 0, discardLogger())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	response, err := http.Get(serverURL(server, "/dashboard"))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusOK || string(body) != "<html>app shell</html>" {
		t.Errorf("status %d body %q", response.StatusCode, body)
	}

	if err := server.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := server.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := http.Get(serverURL(server, "/")); err == nil {
		t.Error("server still answering after Close")
	}
}

func TestListenFailsWhenPortTaken(t *testing.T) {
	dir := buildDir(t)
	first, err := Listen(dir, 0, discardLogger())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer first.Close()

	if _, err := Listen(dir, first.Port(), discardLogger()); err == nil {
		t.Fatal("expected bind failure on taken port")
	}
}

func serverURL(s *Server, path string) string {
	return "http://" + s.listener.Addr().String() + path
}
