package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dispatch-console/config"
)

// LocalResolver serves attachments from a directory on disk. Links carry a
// short-lived HS256 token so the file route stays unauthenticated for the
// browser while remaining unguessable.
type LocalResolver struct {
	dir     string
	baseURL string
	secret  []byte
	ttl     time.Duration
}

func NewLocalResolver(cfg *config.AppConfig) (*LocalResolver, error) {
	sc := cfg.Storage
	if sc.LinkSecret == "" {
		return nil, fmt.Errorf("storage link_secret not configured")
	}
	ttl := cfg.Reports.SignedURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	dir := sc.LocalDir
	if dir == "" {
		dir = "data/attachments"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("attachment dir: %w", err)
	}
	return &LocalResolver{
		dir:     dir,
		baseURL: strings.TrimRight(sc.PublicBaseURL, "/"),
		secret:  []byte(sc.LinkSecret),
		ttl:     ttl,
	}, nil
}

func (l *LocalResolver) SignedURL(ctx context.Context, objectPath string) (string, error) {
	claims := jwt.MapClaims{
		"path": objectPath,
		"exp":  time.Now().Add(l.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", err
	}
	return l.baseURL + "/api/files?token=" + url.QueryEscape(token), nil
}

// Open verifies a link token and returns the filesystem path it grants
// access to. Paths are confined to the attachment directory.
func (l *LocalResolver) Open(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return l.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid link token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid link claims")
	}
	rel, _ := claims["path"].(string)
	if rel == "" {
		return "", fmt.Errorf("link token has no path")
	}
	full := filepath.Join(l.dir, filepath.Clean("/"+rel))
	if !strings.HasPrefix(full, filepath.Clean(l.dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes attachment dir")
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("attachment missing: %w", err)
	}
	return full, nil
}
