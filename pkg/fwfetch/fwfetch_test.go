package fwfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wntrblm/wintertools/pkg/fs"
)

func TestFindLatestBootloader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"assets": [
				{"name": "update-bootloader-feather_m4-v3.15.0.uf2", "browser_download_url": "https://example.com/feather.uf2"},
				{"name": "bootloader-winterbloom_castor-v3.15.0.bin", "browser_download_url": "https://example.com/castor.bin"},
				{"name": "bootloader-other-v3.15.0.bin", "browser_download_url": "https://example.com/other.bin"}
			]
		}`)
	}))
	defer srv.Close()

	f := New(nil)
	f.HTTP = srv.Client()
	f.BootloaderReleasesURL = srv.URL

	url, err := f.FindLatestBootloader(context.Background(), "winterbloom_castor")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/castor.bin", url)

	_, err = f.FindLatestBootloader(context.Background(), "nonexistent_device")
	require.ErrorContains(t, err, "could not find bootloader")
}

func TestFindLatestCircuitPython(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "list-type=2&prefix=bin/winterbloom_sol/en_US/", r.URL.RawQuery)
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult>
  <Contents>
    <Key>bin/winterbloom_sol/en_US/</Key>
    <LastModified>2021-10-06T00:00:00.000Z</LastModified>
  </Contents>
  <Contents>
    <Key>bin/winterbloom_sol/en_US/adafruit-circuitpython-winterbloom_sol-en_US-7.0.0-rc.1.uf2</Key>
    <LastModified>2021-10-05T00:00:00.000Z</LastModified>
  </Contents>
  <Contents>
    <Key>bin/winterbloom_sol/en_US/adafruit-circuitpython-winterbloom_sol-en_US-7.0.0.uf2</Key>
    <LastModified>2021-10-04T00:00:00.000Z</LastModified>
  </Contents>
  <Contents>
    <Key>bin/winterbloom_sol/en_US/adafruit-circuitpython-winterbloom_sol-en_US-6.3.0.uf2</Key>
    <LastModified>2021-06-01T00:00:00.000Z</LastModified>
  </Contents>
</ListBucketResult>`)
	}))
	defer srv.Close()

	f := New(nil)
	f.HTTP = srv.Client()
	f.CircuitPythonBaseURL = srv.URL + "/"

	// The directory marker has no version and the rc build is newer
	// but unstable, so 7.0.0 wins.
	url, err := f.FindLatestCircuitPython(context.Background(), "winterbloom_sol")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/bin/winterbloom_sol/en_US/adafruit-circuitpython-winterbloom_sol-en_US-7.0.0.uf2", url)
}

func TestLatestBootloaderDownloadsToCache(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"assets": [{"name": "bootloader-sol-v3.bin", "browser_download_url": "%s/sol.bin"}]}`, srv.URL)
	})
	mux.HandleFunc("/sol.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bootloader bytes"))
	})

	cacheDir := filepath.Join(t.TempDir(), "cache")
	f := New(fs.NewCache(cacheDir))
	f.HTTP = srv.Client()
	f.BootloaderReleasesURL = srv.URL + "/releases"

	path, err := f.LatestBootloader(context.Background(), "sol")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cacheDir, "bootloader.sol.bin"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "bootloader bytes", string(got))
}
