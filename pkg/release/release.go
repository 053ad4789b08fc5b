// Package release automates tagging and publishing firmware releases
// on GitHub. Releases are named by calendar date: the tag is
// "2021.10.2" and the display name is "October 2nd, 2021".
package release

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wntrblm/wintertools/pkg/gitutil"
)

// GitInfo is everything about the repository state needed to cut a
// release.
type GitInfo struct {
	Root        string
	Repo        string
	LastRelease string
	Tag         string
	Name        string
	Changes     map[string][]string
}

// TagName formats the CalVer-style tag for a release date.
func TagName(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d", t.Year(), int(t.Month()), t.Day())
}

// ReleaseName formats the human-readable release name, e.g.
// "October 2nd, 2021".
func ReleaseName(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), dayOrdinal(t.Day()), t.Year())
}

func dayOrdinal(day int) string {
	if (day >= 4 && day <= 20) || (day >= 24 && day <= 30) {
		return "th"
	}
	return [...]string{"st", "nd", "rd"}[day%10-1]
}

// CategorizeChanges arranges commit subjects by their "category: "
// prefix. Subjects without a prefix land under "Other".
func CategorizeChanges(changes []string) map[string][]string {
	categorized := map[string][]string{}
	for _, change := range changes {
		category := "Other"
		if before, after, found := strings.Cut(change, ": "); found {
			category = capitalize(before)
			change = after
		}
		categorized[category] = append(categorized[category], change)
	}
	return categorized
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// CollectGitInfo gathers repository info and generates the tag and
// name for a release cut at now.
func CollectGitInfo(repo gitutil.Repo, now time.Time) (*GitInfo, error) {
	info := &GitInfo{
		Tag:  TagName(now),
		Name: ReleaseName(now),
	}

	var err error
	if info.Root, err = repo.Root(); err != nil {
		return nil, err
	}
	if info.Repo, err = repo.RepoName("origin"); err != nil {
		return nil, err
	}
	if err := repo.FetchTags(); err != nil {
		return nil, err
	}
	if info.LastRelease, err = repo.LatestTag(); err != nil {
		return nil, err
	}

	changes, err := repo.ChangeSummary(info.LastRelease, "HEAD")
	if err != nil {
		return nil, err
	}
	info.Changes = CategorizeChanges(changes)

	return info, nil
}

// DescribeChanges renders the categorized changes as markdown, the
// starting point for the release description the user edits.
func DescribeChanges(changes map[string][]string) string {
	categories := make([]string, 0, len(changes))
	for category := range changes {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var sb strings.Builder
	for _, category := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, change := range changes[category] {
			fmt.Fprintf(&sb, "- %s\n", change)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
