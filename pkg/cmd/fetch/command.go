package fetch

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
	"github.com/wntrblm/wintertools/pkg/fs"
	"github.com/wntrblm/wintertools/pkg/fwfetch"
)

// NewCommand returns the "wt fetch" command with subcommands.
func NewCommand(a *app.App) *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the latest firmware artifacts for a device",
	}

	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", fs.DefaultCacheDirectory, "Directory for downloaded artifacts")

	cmd.AddCommand(
		newBootloaderCommand(a, &cacheDir),
		newCircuitPythonCommand(a, &cacheDir),
	)

	return cmd
}

func newBootloaderCommand(a *app.App, cacheDir *string) *cobra.Command {
	var drive string

	cmd := &cobra.Command{
		Use:   "bootloader DEVICE",
		Short: "Download the latest UF2 bootloader build for a device",
		Example: `  wt fetch bootloader winterbloom_sol
  wt fetch bootloader winterbloom_big_honking_button --drive SOLBOOT`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := fwfetch.New(fs.NewCache(*cacheDir))
			path, err := f.LatestBootloader(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.Log.Info().Str("file", path).Msg("downloaded bootloader")
			fmt.Fprintln(a.OutWriter, path)
			return copyToDrive(a, cmd, path, drive)
		},
	}

	cmd.Flags().StringVar(&drive, "drive", "", "Wait for the named bootloader drive and copy the file to it")

	return cmd
}

func newCircuitPythonCommand(a *app.App, cacheDir *string) *cobra.Command {
	var drive string

	cmd := &cobra.Command{
		Use:     "circuitpython DEVICE",
		Short:   "Download the latest stable CircuitPython build for a device",
		Example: `  wt fetch circuitpython winterbloom_sol --drive SOLBOOT`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := fwfetch.New(fs.NewCache(*cacheDir))
			path, err := f.LatestCircuitPython(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.Log.Info().Str("file", path).Msg("downloaded circuitpython")
			fmt.Fprintln(a.OutWriter, path)
			return copyToDrive(a, cmd, path, drive)
		},
	}

	cmd.Flags().StringVar(&drive, "drive", "", "Wait for the named bootloader drive and copy the file to it")

	return cmd
}

func copyToDrive(a *app.App, cmd *cobra.Command, path, drive string) error {
	if drive == "" {
		return nil
	}

	a.Log.Info().Str("drive", drive).Msg("waiting for drive")
	mount, err := fs.WaitForDrive(cmd.Context(), drive)
	if err != nil {
		return err
	}

	dst := filepath.Join(mount, filepath.Base(path))
	if err := fs.CopyFile(path, dst); err != nil {
		return err
	}
	a.Log.Info().Str("file", dst).Msg("copied to drive")
	return nil
}
