package buildgen

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
	"github.com/wntrblm/wintertools/pkg/buildgen"
)

// minGCCVersion is the oldest arm-none-eabi-gcc known to build the
// firmware correctly.
const minGCCVersion = "10.2.0"

// NewCommand returns the "wt buildgen" command.
func NewCommand(a *app.App) *cobra.Command {
	var (
		manifest   string
		output     string
		skipChecks bool
	)

	cmd := &cobra.Command{
		Use:   "buildgen",
		Short: "Generate a ninja build file from the project manifest",
		Long:  "Read the project manifest, expand its source globs, and write a build.ninja that compiles, links, and packs the firmware for the project's MCU.",
		Example: `  wt buildgen
  wt buildgen --manifest firmware/wintertools.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildgen.LoadProject(manifest)
			if err != nil {
				return err
			}

			mcu, err := buildgen.MCUByName(p.MCU)
			if err != nil {
				return err
			}
			if !skipChecks && mcu.CC == buildgen.GCC {
				if err := buildgen.CheckGCC(minGCCVersion); err != nil {
					return err
				}
			}

			if output == "" {
				output = filepath.Join(p.Dir(), "build.ninja")
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := buildgen.Generate(f, p); err != nil {
				return err
			}

			a.Log.Info().
				Str("project", p.Name).
				Str("mcu", p.MCU).
				Str("file", output).
				Msg("generated build file")
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", buildgen.DefaultManifest, "Path to the project manifest")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default build.ninja next to the manifest)")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip the toolchain version check")

	return cmd
}
