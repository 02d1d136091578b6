package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher retrieves a model file and returns its local path.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL, destDir string) (string, error)
}

// Option configures the HTTP fetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// HTTPFetcher downloads models over HTTP(S).
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher constructs a fetcher with the given request timeout and size
// cap. A non-positive cap disables size enforcement.
func NewHTTPFetcher(timeoutSeconds, maxSizeMiB int, opts ...Option) *HTTPFetcher {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	fetcher := &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: int64(maxSizeMiB) * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher
}

// Fetch downloads sourceURL into destDir and returns the stored file path.
func (f *HTTPFetcher) Fetch(ctx context.Context, sourceURL, destDir string) (string, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return "", errors.New("source url required")
	}
	if destDir == "" {
		return "", errors.New("destination directory required")
	}

	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("parse source url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", "Spool-Go/0.1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); isHTMLContent(contentType) {
		return "", fmt.Errorf("server returned %s instead of a model file", contentType)
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return "", fmt.Errorf("model is %d bytes, exceeds limit of %d", resp.ContentLength, f.maxBytes)
	}

	name := fileNameFromResponse(resp, parsed)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	target := filepath.Join(destDir, name)

	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create model file: %w", err)
	}
	defer file.Close()

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	written, err := io.Copy(file, reader)
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write model file: %w", err)
	}
	if f.maxBytes > 0 && written > f.maxBytes {
		_ = os.Remove(target)
		return "", fmt.Errorf("model exceeds limit of %d bytes", f.maxBytes)
	}
	if written == 0 {
		_ = os.Remove(target)
		return "", errors.New("download produced an empty file")
	}

	return target, nil
}

func isHTMLContent(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func fileNameFromResponse(resp *http.Response, parsed *url.URL) string {
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := sanitizeFileName(params["filename"]); name != "" {
				return name
			}
		}
	}
	if name := sanitizeFileName(path.Base(parsed.Path)); name != "" && name != "." && name != "/" {
		return name
	}
	return "model.3mf"
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(path.Base(name))
	if name == "" || name == "." || name == "/" {
		return ""
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "-", "?", "", "\"", "", "<", "", ">", "", "|", "")
	return strings.TrimSpace(replacer.Replace(name))
}
