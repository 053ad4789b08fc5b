package release

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTagName(t *testing.T) {
	ts := time.Date(2021, time.October, 2, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2021.10.2", TagName(ts))
}

func TestReleaseName(t *testing.T) {
	cases := []struct {
		day  int
		want string
	}{
		{1, "October 1st, 2021"},
		{2, "October 2nd, 2021"},
		{3, "October 3rd, 2021"},
		{4, "October 4th, 2021"},
		{11, "October 11th, 2021"},
		{21, "October 21st, 2021"},
		{22, "October 22nd, 2021"},
		{23, "October 23rd, 2021"},
		{31, "October 31st, 2021"},
	}
	for _, c := range cases {
		ts := time.Date(2021, time.October, c.day, 0, 0, 0, 0, time.UTC)
		require.Equal(t, c.want, ReleaseName(ts))
	}
}

func TestCategorizeChanges(t *testing.T) {
	changes := []string{
		"fix: handle empty input",
		"fix: clamp bar segments",
		"docs: describe config keys",
		"bump version",
	}

	got := CategorizeChanges(changes)

	require.Equal(t, map[string][]string{
		"Fix":   {"handle empty input", "clamp bar segments"},
		"Docs":  {"describe config keys"},
		"Other": {"bump version"},
	}, got)
}

func TestDescribeChanges(t *testing.T) {
	got := DescribeChanges(map[string][]string{
		"Fix":   {"one", "two"},
		"Other": {"three"},
	})
	require.Equal(t, "## Fix\n\n- one\n- two\n\n## Other\n\n- three\n\n", got)
}

func TestArtifacts(t *testing.T) {
	src := filepath.Join(t.TempDir(), "firmware.uf2")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	arts, err := NewArtifacts()
	require.NoError(t, err)
	defer arts.Close()

	require.NoError(t, arts.Add(src, "castor-2021.10.2.uf2"))

	items := arts.Items()
	require.Len(t, items, 1)
	require.Equal(t, "castor-2021.10.2.uf2", items[0].Name)

	data, err := os.ReadFile(items[0].Path)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	require.NoError(t, arts.Close())
	require.NoDirExists(t, arts.dir)
}

func TestCreateRelease(t *testing.T) {
	var uploadURL string

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/wntrblm/castor/releases", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "2021.10.2", body["tag_name"])
		require.Equal(t, "October 2nd, 2021", body["name"])
		require.Equal(t, true, body["draft"])
		require.Equal(t, "main", body["target_commitish"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":         1,
			"html_url":   "https://example.com/releases/1",
			"upload_url": uploadURL + "{?name,label}",
		})
	})
	mux.HandleFunc("/uploads/1/assets", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "firmware.bin", r.URL.Query().Get("name"))
		require.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, []byte("payload"), data)

		w.WriteHeader(http.StatusCreated)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	uploadURL = srv.URL + "/uploads/1/assets"

	c := &Client{HTTP: srv.Client(), APIURL: srv.URL}

	rel, err := c.CreateRelease(context.Background(), "wntrblm/castor", "2021.10.2", "October 2nd, 2021", "## Fix\n\n- one\n")
	require.NoError(t, err)
	require.Equal(t, int64(1), rel.ID)

	src := filepath.Join(t.TempDir(), "firmware.bin")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	err = c.UploadArtifact(context.Background(), rel, Artifact{Name: "firmware.bin", Path: src})
	require.NoError(t, err)
}

func TestCreateReleaseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Validation Failed"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), APIURL: srv.URL}
	_, err := c.CreateRelease(context.Background(), "wntrblm/castor", "x", "y", "")
	require.ErrorContains(t, err, "create failed")
}
