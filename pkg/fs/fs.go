// Package fs has filesystem helpers for firmware workflows: a local
// download cache for release artifacts, durable file copies for
// bootloader mass-storage drives, and removable drive discovery.
package fs

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"time"
)

// DefaultCacheDirectory is the cache location relative to the working
// directory, matching where the build scripts expect artifacts.
const DefaultCacheDirectory = ".cache"

// CopyFile copies src to dst byte for byte and fsyncs the destination
// before returning, so the data is actually on the drive when the
// bootloader gets ejected.
func CopyFile(src, dst string) error {
	contents, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := out.Write(contents); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync %s: %w", dst, err)
	}
	return out.Close()
}

// FindDrive locates a mounted removable drive by its volume name.
func FindDrive(name string) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		drive := filepath.Join("/Volumes", name)
		if _, err := os.Stat(drive); err == nil {
			return drive, nil
		}
		return "", fmt.Errorf("no drive %q found, expected at /Volumes/%s", name, name)
	case "linux":
		u, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("determine current user: %w", err)
		}
		drive := filepath.Join("/media", u.Username, name)
		if _, err := os.Stat(drive); err == nil {
			return drive, nil
		}
		return "", fmt.Errorf("no drive %q found, expected at %s", name, drive)
	default:
		return "", fmt.Errorf("don't know how to find drives on %s", runtime.GOOS)
	}
}

// WaitForDrive polls for a drive to show up, typically right after a
// device resets into its bootloader. It waits a beat after first
// sighting since the drive may not be fully mounted yet.
func WaitForDrive(ctx context.Context, name string) (string, error) {
	attempt := 0
	for {
		path, err := FindDrive(name)
		if err == nil {
			if attempt > 1 {
				time.Sleep(time.Second)
			}
			return path, nil
		}
		attempt++

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("drive %q never showed up: %w", name, ctx.Err())
		case <-time.After(time.Second):
		}
	}
}
