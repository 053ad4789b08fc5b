package fs

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Cache downloads files into a local directory and reuses them while
// they are fresh.
type Cache struct {
	// Dir is the cache directory, created on demand.
	Dir string
	// TTL is how long a cached file is considered fresh.
	TTL time.Duration
	// HTTP is the client used for downloads.
	HTTP *http.Client
}

// NewCache returns a cache over dir with a 24 hour TTL.
func NewCache(dir string) *Cache {
	if dir == "" {
		dir = DefaultCacheDirectory
	}
	return &Cache{
		Dir:  dir,
		TTL:  24 * time.Hour,
		HTTP: http.DefaultClient,
	}
}

// Path returns the cache location for a named artifact.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.Dir, name)
}

// Download fetches url into the cache under name and returns the local
// path. A fresh cached copy short-circuits the download. A url of the
// form "https+zip://host/file.zip:member" downloads a zip archive and
// extracts the named member instead.
func (c *Cache) Download(ctx context.Context, url, name string) (string, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}
	dst := c.Path(name)

	if info, err := os.Stat(dst); err == nil && time.Since(info.ModTime()) < c.TTL {
		return dst, nil
	}

	var zipMember string
	if scheme, rest, ok := strings.Cut(url, "://"); ok && strings.HasSuffix(scheme, "+zip") {
		stripped, member, ok := cutZipURL(strings.TrimSuffix(scheme, "+zip") + "://" + rest)
		if !ok {
			return "", fmt.Errorf("zip url %q has no member path", url)
		}
		url, zipMember = stripped, member
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}

	if zipMember != "" {
		if err := extractZipMember(body, zipMember, dst); err != nil {
			return "", err
		}
		return dst, nil
	}

	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

// cutZipURL splits "https://host/file.zip:member" at the last colon so
// the scheme's own colon survives.
func cutZipURL(url string) (string, string, bool) {
	schemeEnd := strings.Index(url, "://")
	idx := strings.LastIndex(url, ":")
	if schemeEnd < 0 || idx <= schemeEnd {
		return url, "", false
	}
	return url[:idx], url[idx+1:], true
}

func extractZipMember(content []byte, member, dst string) error {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	for _, f := range r.File {
		matched, err := path.Match(member, f.Name)
		if err != nil {
			return fmt.Errorf("bad zip member pattern %q: %w", member, err)
		}
		if !matched {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open zip member %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read zip member %s: %w", f.Name, err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
		return nil
	}

	return fmt.Errorf("no member matching %q in zip", member)
}
