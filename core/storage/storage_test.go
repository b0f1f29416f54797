package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dispatch-console/config"
	"dispatch-console/core/utils"
)

func TestClassifyByExtension(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"photo.JPG", KindImage},
		{"clip.mp4", KindVideo},
		{"statement.m4a", KindAudio},
		{"notes.pdf", KindDocument},
		{"data.xyz", KindFile},
		{"noext", KindFile},
		{"reports/2024/scene.PNG", KindImage},
	}
	for _, c := range cases {
		if got := Classify(c.path); got != c.want {
			t.Fatalf("Classify(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("reports/2024/scene.png"); got != "scene.png" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName("https://cdn.example.com/x/evidence.mp4?sig=abc"); got != "evidence.mp4" {
		t.Fatalf("FileName with query = %q", got)
	}
}

type staticResolver struct {
	prefix string
	err    error
}

func (s staticResolver) SignedURL(_ context.Context, p string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.prefix + p, nil
}

func TestResolveSignsRelativePaths(t *testing.T) {
	svc := NewService(staticResolver{prefix: "https://store.local/"}, utils.NewLogger())
	got := svc.Resolve(context.Background(), []string{"a.png", "https://cdn.example.com/b.mp4"})
	if len(got) != 2 {
		t.Fatalf("resolved %d attachments", len(got))
	}
	if got[0].URL != "https://store.local/a.png" || got[0].Kind != KindImage {
		t.Fatalf("first attachment = %+v", got[0])
	}
	// absolute URLs pass through unsigned
	if got[1].URL != "https://cdn.example.com/b.mp4" || got[1].Kind != KindVideo {
		t.Fatalf("second attachment = %+v", got[1])
	}
	if got[0].Index != 0 || got[1].Index != 1 {
		t.Fatalf("indexes not preserved: %+v", got)
	}
}

func TestThumbnailsSignImagesOnly(t *testing.T) {
	svc := NewService(staticResolver{prefix: "https://store.local/"}, utils.NewLogger())
	got := svc.Thumbnails(context.Background(), []string{"a.png", "clip.mp4", "b.JPG"})
	if len(got) != 2 {
		t.Fatalf("thumbnails = %+v", got)
	}
	if got[0] != "https://store.local/a.png" || got[2] != "https://store.local/b.JPG" {
		t.Fatalf("thumbnails = %+v", got)
	}
}

func TestThumbnailsFallBackToStoredPath(t *testing.T) {
	svc := NewService(staticResolver{err: os.ErrPermission}, utils.NewLogger())
	got := svc.Thumbnails(context.Background(), []string{"a.png"})
	if got[0] != "a.png" {
		t.Fatalf("thumbnail URL = %q, want raw path", got[0])
	}
}

func TestResolveFallsBackToRawPath(t *testing.T) {
	svc := NewService(staticResolver{err: os.ErrPermission}, utils.NewLogger())
	got := svc.Resolve(context.Background(), []string{"a.png"})
	if got[0].URL != "a.png" {
		t.Fatalf("fallback URL = %q, want raw path", got[0].URL)
	}
}

func localConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		Storage: config.StorageConfig{
			LocalDir:      filepath.Join(t.TempDir(), "att"),
			LinkSecret:    "test-secret",
			PublicBaseURL: "http://console.local",
		},
		Reports: config.ReportsConfig{SignedURLTTL: time.Hour},
	}
}

func TestLocalResolverRoundTrip(t *testing.T) {
	l, err := NewLocalResolver(localConfig(t))
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, "scene.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	u, err := l.SignedURL(context.Background(), "scene.png")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !strings.HasPrefix(u, "http://console.local/api/files?token=") {
		t.Fatalf("signed url = %q", u)
	}
	token := strings.TrimPrefix(u, "http://console.local/api/files?token=")
	full, err := l.Open(token)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if filepath.Base(full) != "scene.png" {
		t.Fatalf("opened path = %q", full)
	}
}

func TestLocalResolverRejectsTamperedToken(t *testing.T) {
	l, err := NewLocalResolver(localConfig(t))
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	if _, err := l.Open("not-a-token"); err == nil {
		t.Fatalf("garbage token must be rejected")
	}
	other := &LocalResolver{dir: l.dir, secret: []byte("other-secret"), ttl: time.Hour}
	u, _ := other.SignedURL(context.Background(), "scene.png")
	token := u[strings.Index(u, "token=")+len("token="):]
	if _, err := l.Open(token); err == nil {
		t.Fatalf("token signed with a different secret must be rejected")
	}
}

func TestLocalResolverConfinesPaths(t *testing.T) {
	l, err := NewLocalResolver(localConfig(t))
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	u, err := l.SignedURL(context.Background(), "../../etc/passwd")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	token := u[strings.Index(u, "token=")+len("token="):]
	if _, err := l.Open(token); err == nil {
		t.Fatalf("traversal path must be rejected")
	}
}

func TestDownloaderStreamsWithProgress(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 100_000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100000")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	d := NewDownloader(8192, utils.NewLogger())
	var buf bytes.Buffer
	var updates []int
	n, err := d.Fetch(context.Background(), srv.URL, &buf, func(pct int) {
		updates = append(updates, pct)
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n != int64(len(payload)) || buf.Len() != len(payload) {
		t.Fatalf("fetched %d bytes, want %d", n, len(payload))
	}
	if len(updates) == 0 || updates[len(updates)-1] != 100 {
		t.Fatalf("progress updates = %v, want final 100", updates)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i] < updates[i-1] {
			t.Fatalf("progress went backwards: %v", updates)
		}
	}
}

func TestDownloaderUnknownLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush() // drop Content-Length, chunked transfer
		_, _ = w.Write([]byte("partial data stream"))
	}))
	defer srv.Close()

	d := NewDownloader(4, utils.NewLogger())
	var buf bytes.Buffer
	sawUnknown := false
	_, err := d.Fetch(context.Background(), srv.URL, &buf, func(pct int) {
		if pct == -1 {
			sawUnknown = true
		}
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !sawUnknown {
		t.Fatalf("expected -1 progress for unknown length")
	}
}

func TestFetchAttachmentFallsBackToDirectURL(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("direct-bytes"))
	}))
	defer direct.Close()
	signed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "signature expired", http.StatusForbidden)
	}))
	defer signed.Close()

	a := Attachment{Path: direct.URL, URL: signed.URL, Name: "evidence.bin", Kind: KindFile}
	d := NewDownloader(0, utils.NewLogger())
	var buf bytes.Buffer
	n, err := d.FetchAttachment(context.Background(), a, &buf, nil)
	if err != nil {
		t.Fatalf("fetch attachment: %v", err)
	}
	if n == 0 || buf.String() != "direct-bytes" {
		t.Fatalf("fallback fetch got %q", buf.String())
	}
}

func TestFetchAttachmentDoesNotRetryMidStream(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer direct.Close()
	signed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// promise ten bytes, deliver four, then drop the connection
		w.Header().Set("Content-Length", "10")
		_, _ = w.Write([]byte("0123"))
	}))
	defer signed.Close()

	a := Attachment{Path: direct.URL, URL: signed.URL, Name: "evidence.bin", Kind: KindFile}
	d := NewDownloader(0, utils.NewLogger())
	var buf bytes.Buffer
	n, err := d.FetchAttachment(context.Background(), a, &buf, nil)
	if err == nil {
		t.Fatalf("mid-stream failure should surface an error")
	}
	if n != 4 || buf.String() != "0123" {
		t.Fatalf("wrote %d bytes %q, want only the partial first attempt", n, buf.String())
	}
}

func TestDownloaderRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()
	d := NewDownloader(0, nil)
	var buf bytes.Buffer
	if _, err := d.Fetch(context.Background(), srv.URL, &buf, nil); err == nil {
		t.Fatalf("expected error for 404 response")
	}
}
