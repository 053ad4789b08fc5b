// Package gitutil shells out to git for the handful of operations the
// release workflow needs. It deliberately wraps the git binary instead
// of reimplementing it; these commands run on developer machines where
// git is always present.
package gitutil

import (
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"os/exec"
	"strings"
)

// Repo runs git commands in Dir. An empty Dir means the current
// working directory.
type Repo struct {
	Dir string
}

func (r Repo) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Root returns the repository's top-level directory.
func (r Repo) Root() (string, error) {
	out, err := r.run("rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RepoName returns the "owner/name" slug of a remote.
func (r Repo) RepoName(remote string) (string, error) {
	out, err := r.run("config", "--get", fmt.Sprintf("remote.%s.url", remote))
	if err != nil {
		return "", err
	}
	return parseRepoName(strings.TrimSpace(out))
}

func parseRepoName(url string) (string, error) {
	trimmed := strings.TrimSuffix(url, ".git")
	switch {
	case strings.Contains(trimmed, "://"):
		u, err := neturl.Parse(trimmed)
		if err != nil {
			return "", fmt.Errorf("parse remote url %q: %w", url, err)
		}
		return strings.TrimPrefix(u.Path, "/"), nil
	case strings.Contains(trimmed, ":"):
		// scp-like syntax: git@github.com:owner/name
		_, path, _ := strings.Cut(trimmed, ":")
		return path, nil
	default:
		return "", fmt.Errorf("unrecognized remote url %q", url)
	}
}

// FetchTags fetches all tags from the default remote.
func (r Repo) FetchTags() error {
	_, err := r.run("fetch", "--tags")
	return err
}

// Tags lists tags, newest first.
func (r Repo) Tags() ([]string, error) {
	out, err := r.run("tag", "--list", "--sort=-creatordate")
	if err != nil {
		return nil, err
	}
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	return tags, nil
}

// LatestTag returns the most recently created tag.
func (r Repo) LatestTag() (string, error) {
	tags, err := r.Tags()
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "", errors.New("gitutil: repository has no tags")
	}
	return tags[0], nil
}

// ChangeSummary returns the subject lines of all commits in start..end.
func (r Repo) ChangeSummary(start, end string) ([]string, error) {
	out, err := r.run("log", "--format=%s", fmt.Sprintf("%s..%s", start, end))
	if err != nil {
		return nil, err
	}
	var changes []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			changes = append(changes, line)
		}
	}
	return changes, nil
}

// Tag creates a tag and, if push is set, pushes it to origin.
func (r Repo) Tag(name string, push bool) error {
	if _, err := r.run("tag", name); err != nil {
		return err
	}
	if push {
		if _, err := r.run("push", "origin", name); err != nil {
			return err
		}
	}
	return nil
}

// OpenEditor opens the user's configured git editor on content and
// returns whatever they saved.
func (r Repo) OpenEditor(content string) (string, error) {
	out, err := r.run("config", "--get", "core.editor")
	if err != nil {
		return "", err
	}
	editor := strings.Fields(strings.TrimSpace(out))
	if len(editor) == 0 {
		return "", errors.New("gitutil: core.editor is not configured")
	}

	tmp, err := os.CreateTemp("", "release-*.md")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	cmd := exec.Command(editor[0], append(editor[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %q: %w", editor[0], err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(edited), nil
}
