// Package source reads the inventory and price documents from disk or over
// HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// MaxDocumentSize caps the size of a document read from any location.
const MaxDocumentSize = 64 << 20

var (
	// ErrUnsupported is returned for locations with an unknown URL scheme.
	ErrUnsupported = errors.New("source: unsupported location")
	// ErrTooLarge is returned when a document exceeds MaxDocumentSize.
	ErrTooLarge = errors.New("source: document too large")
)

var maxDocumentSize int64 = MaxDocumentSize

// StatusError reports a non-2xx response from a remote document.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source: GET %s: status %d", e.URL, e.Code)
}

// Fetch returns the raw bytes stored at loc, which is a file path, a file://
// URL or an http(s) URL. client may be nil, in which case
// http.DefaultClient is used.
func Fetch(ctx context.Context, client *http.Client, loc string) ([]byte, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil, fmt.Errorf("source: empty location: %w", ErrUnsupported)
	}
	u, err := url.Parse(loc)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return readFile(loc)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = "//" + u.Host + u.Path
		}
		return readFile(path)
	case "http", "https":
		return fetchHTTP(ctx, client, u.String())
	}
	return nil, fmt.Errorf("source: %q: %w", u.Scheme, ErrUnsupported)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	defer f.Close()
	b, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	return b, nil
}

// readLimited reads r fully, failing with ErrTooLarge instead of
// truncating when r holds more than maxDocumentSize bytes.
func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > maxDocumentSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, maxDocumentSize)
	}
	return b, nil
}

func fetchHTTP(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	b, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source: read body %s: %w", rawURL, err)
	}
	return b, nil
}
