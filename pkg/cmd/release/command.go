package release

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
	"github.com/wntrblm/wintertools/pkg/gitutil"
	"github.com/wntrblm/wintertools/pkg/release"
)

// NewCommand returns the "wt release" command.
func NewCommand(a *app.App) *cobra.Command {
	var (
		dryRun   bool
		noEditor bool
	)

	cmd := &cobra.Command{
		Use:   "release [ARTIFACT...]",
		Short: "Tag and publish a draft GitHub release",
		Long:  "Create a calendar-versioned release for the current repository: collect the changes since the last tag, open the description in your editor, push the tag, and create a draft release on GitHub with the given artifact files attached. The GitHub token is read from the github.token config key and prompted for if unset.",
		Example: `  wt release build/castor.uf2
  wt release --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := gitutil.Repo{}

			info, err := release.CollectGitInfo(repo, time.Now())
			if err != nil {
				return err
			}
			a.Log.Info().
				Str("repo", info.Repo).
				Str("tag", info.Tag).
				Str("last", info.LastRelease).
				Msg("collected release info")

			description := release.DescribeChanges(info.Changes)
			if !noEditor {
				if description, err = repo.OpenEditor(description); err != nil {
					return err
				}
			}

			if dryRun {
				fmt.Fprintf(a.OutWriter, "%s (%s)\n\n%s", info.Name, info.Tag, description)
				return nil
			}

			token, err := a.Cfg.GetOrPrompt("github.token")
			if err != nil {
				return err
			}

			arts, err := release.NewArtifacts()
			if err != nil {
				return err
			}
			defer arts.Close()
			for _, src := range args {
				base := filepath.Base(src)
				ext := filepath.Ext(base)
				name := fmt.Sprintf("%s-%s%s", strings.TrimSuffix(base, ext), info.Tag, ext)
				if err := arts.Add(src, name); err != nil {
					return err
				}
			}

			if err := repo.Tag(info.Tag, true); err != nil {
				return err
			}

			client := release.NewClient(ctx, token)
			rel, err := client.CreateRelease(ctx, info.Repo, info.Tag, info.Name, description)
			if err != nil {
				return err
			}

			for _, art := range arts.Items() {
				a.Log.Info().Str("name", art.Name).Msg("uploading artifact")
				if err := client.UploadArtifact(ctx, rel, art); err != nil {
					return err
				}
			}

			fmt.Fprintln(a.OutWriter, rel.HTMLURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the release info without tagging or publishing")
	cmd.Flags().BoolVar(&noEditor, "no-editor", false, "Use the generated description without opening an editor")

	return cmd
}
