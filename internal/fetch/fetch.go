// Package fetch opens asset locations: local paths, file:// URLs and
// http(s) URLs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const userAgent = "obj-gl-renderer/1.0"

// Client is used for http and https locations.
var Client = &http.Client{Timeout: 60 * time.Second}

// IsURL reports whether location names a remote http(s) resource.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Open returns a reader for location. The caller closes it.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if IsURL(location) {
		return openHTTP(ctx, location)
	}
	path := location
	if strings.HasPrefix(strings.ToLower(location), "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("fetch: %s: %w", location, err)
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return f, nil
}

// ReadAll reads the whole resource at location.
func ReadAll(ctx context.Context, location string) ([]byte, error) {
	rc, err := Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetch: read %s: %w", location, err)
	}
	return data, nil
}

func openHTTP(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch: %s: HTTP %d", location, resp.StatusCode)
	}
	return resp.Body, nil
}
