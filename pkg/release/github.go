package release

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

const defaultAPIURL = "https://api.github.com"

// Client talks to the GitHub releases API.
type Client struct {
	HTTP   *http.Client
	APIURL string
}

// NewClient returns a Client authenticated with a personal access
// token.
func NewClient(ctx context.Context, token string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		HTTP:   oauth2.NewClient(ctx, src),
		APIURL: defaultAPIURL,
	}
}

// Release is the subset of the GitHub release object we use.
type Release struct {
	ID        int64  `json:"id"`
	HTMLURL   string `json:"html_url"`
	UploadURL string `json:"upload_url"`
}

// CreateRelease creates a draft release for tag in repo
// ("owner/name"). The draft must be published manually after review.
func (c *Client) CreateRelease(ctx context.Context, repo, tag, name, description string) (*Release, error) {
	body, err := json.Marshal(map[string]interface{}{
		"tag_name":         tag,
		"target_commitish": "main",
		"name":             name,
		"body":             description,
		"draft":            true,
	})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/repos/%s/releases", c.APIURL, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("release: create failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// UploadArtifact attaches a staged artifact to a release. The content
// type is guessed from the file extension.
func (c *Client) UploadArtifact(ctx context.Context, rel *Release, art Artifact) error {
	f, err := os.Open(art.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	// The upload_url is a URI template; strip the {?name,label} part.
	uploadURL, _, _ := strings.Cut(rel.UploadURL, "{")
	u := uploadURL + "?name=" + url.QueryEscape(art.Name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, f)
	if err != nil {
		return err
	}
	req.ContentLength = fi.Size()
	req.Header.Set("Content-Type", contentType(art.Name))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("release: upload %s failed: %s: %s", art.Name, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
