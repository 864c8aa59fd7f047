package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound reports that a photo reference points at nothing. It is an
// expected outcome, not a failure worth surfacing.
var ErrNotFound = errors.New("photo not found")

const (
	defaultUserAgent = "rolodex/0.1"
	requestTimeout   = 10 * time.Second
	maxPhotoBytes    = 16 << 20
)

// Source produces raw image bytes for a photo reference.
type Source interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Ensure Fetcher implements Source at compile time.
var _ Source = (*Fetcher)(nil)

// Fetcher reads photo bytes from local files and HTTP(S) URLs.
type Fetcher struct {
	http      *http.Client
	userAgent string
	maxBytes  int64
}

// NewFetcher builds a Fetcher with the default timeout and size limit.
func NewFetcher() *Fetcher {
	return &Fetcher{
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		maxBytes:  maxPhotoBytes,
	}
}

// Fetch returns the bytes behind ref. Bare paths, file:// and http(s)://
// references are supported. A missing file or a 404 is ErrNotFound.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("fetcher is nil")
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scheme, _, found := strings.Cut(ref, "://")
	if !found {
		return f.readFile(ref)
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
		return f.get(ctx, ref)
	case "file":
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("parse photo ref %q: %w", ref, err)
		}
		return f.readFile(u.Path)
	default:
		return nil, fmt.Errorf("unsupported photo ref scheme %q", scheme)
	}
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, resolved)
		}
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer func() { _ = file.Close() }()
	return f.readAll(file)
}

func (f *Fetcher) get(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("photo %s returned status %d", ref, resp.StatusCode)
	}
	return f.readAll(resp.Body)
}

func (f *Fetcher) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", f.maxBytes)
	}
	return data, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", ErrNotFound
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
