// Package fwfetch locates and downloads the latest uf2 bootloader and
// CircuitPython builds for a device. Bootloaders come from the
// adafruit/uf2-samdx1 GitHub releases; CircuitPython builds come from
// Adafruit's S3 bucket listing.
package fwfetch

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/wntrblm/wintertools/pkg/fs"
)

const (
	defaultBootloaderReleasesURL = "https://api.github.com/repos/adafruit/uf2-samdx1/releases/latest"
	defaultCircuitPythonBaseURL  = "https://adafruit-circuit-python.s3.amazonaws.com/"
)

// Fetcher finds and downloads firmware artifacts.
type Fetcher struct {
	HTTP  *http.Client
	Cache *fs.Cache

	// Overridable for tests.
	BootloaderReleasesURL string
	CircuitPythonBaseURL  string
}

// New returns a Fetcher that downloads through cache.
func New(cache *fs.Cache) *Fetcher {
	return &Fetcher{
		HTTP:                  http.DefaultClient,
		Cache:                 cache,
		BootloaderReleasesURL: defaultBootloaderReleasesURL,
		CircuitPythonBaseURL:  defaultCircuitPythonBaseURL,
	}
}

// FindLatestBootloader returns the download URL of the newest
// bootloader .bin for the device.
func (f *Fetcher) FindLatestBootloader(ctx context.Context, deviceName string) (string, error) {
	var release struct {
		Assets []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := f.getJSON(ctx, f.BootloaderReleasesURL, &release); err != nil {
		return "", err
	}

	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, deviceName) && strings.HasSuffix(asset.Name, ".bin") {
			return asset.BrowserDownloadURL, nil
		}
	}
	return "", fmt.Errorf("could not find bootloader for %s", deviceName)
}

// FindLatestCircuitPython returns the download URL of the newest
// stable CircuitPython build for the device.
func (f *Fetcher) FindLatestCircuitPython(ctx context.Context, deviceName string) (string, error) {
	url := fmt.Sprintf("%s?list-type=2&prefix=bin/%s/en_US/", f.CircuitPythonBaseURL, deviceName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("list CircuitPython releases: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list CircuitPython releases: unexpected status %s", resp.Status)
	}

	var listing struct {
		Contents []struct {
			Key          string `xml:"Key"`
			LastModified string `xml:"LastModified"`
		} `xml:"Contents"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return "", fmt.Errorf("decode bucket listing: %w", err)
	}

	// Newest first. LastModified is RFC 3339, which sorts
	// lexicographically.
	sort.SliceStable(listing.Contents, func(i, j int) bool {
		return listing.Contents[i].LastModified > listing.Contents[j].LastModified
	})

	for _, file := range listing.Contents {
		// The language also appears as a path segment, so split at
		// the last occurrence to isolate the version suffix.
		idx := strings.LastIndex(file.Key, "en_US")
		if idx < 0 || idx+len("en_US")+1 >= len(file.Key) {
			continue
		}
		release := file.Key[idx+len("en_US")+1:]

		// A "-" marks alpha/beta/rc/hash builds.
		if strings.Contains(release, "-") {
			continue
		}
		if strings.Contains(file.Key, "OLD") {
			continue
		}

		return f.CircuitPythonBaseURL + file.Key, nil
	}
	return "", fmt.Errorf("could not find CircuitPython release for %s", deviceName)
}

// LatestBootloader downloads the newest bootloader into the cache and
// returns the local path.
func (f *Fetcher) LatestBootloader(ctx context.Context, deviceName string) (string, error) {
	url, err := f.FindLatestBootloader(ctx, deviceName)
	if err != nil {
		return "", err
	}
	return f.download(ctx, url, fmt.Sprintf("bootloader.%s.bin", deviceName))
}

// LatestCircuitPython downloads the newest CircuitPython build into
// the cache and returns the local path.
func (f *Fetcher) LatestCircuitPython(ctx context.Context, deviceName string) (string, error) {
	url, err := f.FindLatestCircuitPython(ctx, deviceName)
	if err != nil {
		return "", err
	}
	return f.download(ctx, url, fmt.Sprintf("circuitpython.%s.uf2", deviceName))
}

func (f *Fetcher) download(ctx context.Context, url, name string) (string, error) {
	cache := f.Cache
	if cache == nil {
		cache = fs.NewCache("")
	}
	cache.HTTP = f.HTTP
	return cache.Download(ctx, url, name)
}

func (f *Fetcher) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
