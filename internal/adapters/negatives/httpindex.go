package negatives

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"datasplit/internal/ports"
)

// HTTPIndex implements ports.NegativeSource against an index endpoint that
// lists image URLs, one per line, for images outside a concept
type HTTPIndex struct {
	indexURL string
	client   *http.Client
	logger   *slog.Logger
}

// Ensure HTTPIndex implements NegativeSource
var _ ports.NegativeSource = (*HTTPIndex)(nil)

// HTTPOption configures an HTTPIndex
type HTTPOption func(*HTTPIndex)

// WithHTTPClient sets the client used for the index and downloads
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPIndex) {
		if c != nil {
			h.client = c
		}
	}
}

// WithLogger sets the logger for skipped downloads
func WithLogger(l *slog.Logger) HTTPOption {
	return func(h *HTTPIndex) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHTTPIndex creates a source for the given index URL
func NewHTTPIndex(indexURL string, opts ...HTTPOption) (*HTTPIndex, error) {
	if _, err := url.ParseRequestURI(indexURL); err != nil {
		return nil, fmt.Errorf("invalid index URL %q: %w", indexURL, err)
	}
	h := &HTTPIndex{
		indexURL: indexURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *HTTPIndex) Name() string {
	return "http"
}

// FetchNegatives downloads listed images until count are stored. A URL that
// fails to download is skipped.
func (h *HTTPIndex) FetchNegatives(ctx context.Context, concept string, count int, destDir string) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	urls, err := h.listURLs(ctx, concept)
	if err != nil {
		return 0, err
	}

	fetched := 0
	for _, u := range urls {
		if fetched == count {
			break
		}
		if err := ctx.Err(); err != nil {
			return fetched, err
		}

		dst := filepath.Join(destDir, fileNameFor(u))
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := h.download(ctx, u, dst); err != nil {
			h.logger.Debug("skipping negative image", "url", u, "error", err)
			continue
		}
		fetched++
	}
	return fetched, nil
}

// listURLs fetches the index with the concept excluded
func (h *HTTPIndex) listURLs(ctx context.Context, concept string) ([]string, error) {
	u, err := url.Parse(h.indexURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("exclude", concept)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned %s", resp.Status)
	}

	var urls []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return urls, nil
}

// download streams one image into a .part file and renames it into place
func (h *HTTPIndex) download(ctx context.Context, rawURL, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("unexpected content type %s", ct)
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".part")
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// fileNameFor names a download by a hash of its URL, keeping the extension
func fileNameFor(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e == ".jpg" || e == ".jpeg" || e == ".png" {
			ext = e
		}
	}
	return hex.EncodeToString(sum[:8]) + ext
}
