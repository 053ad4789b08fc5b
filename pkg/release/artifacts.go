package release

import (
	"os"
	"path/filepath"

	"github.com/wntrblm/wintertools/pkg/fs"
)

// Artifact is a single file staged for upload.
type Artifact struct {
	Name string
	Path string
}

// Artifacts stages release files in a temporary directory so they can
// be renamed on the way in and uploaded as a batch.
type Artifacts struct {
	dir   string
	items []Artifact
}

func NewArtifacts() (*Artifacts, error) {
	dir, err := os.MkdirTemp("", "wintertools-release-")
	if err != nil {
		return nil, err
	}
	return &Artifacts{dir: dir}, nil
}

// Add copies src into the staging directory under name.
func (a *Artifacts) Add(src, name string) error {
	dst := filepath.Join(a.dir, name)
	if err := fs.CopyFile(src, dst); err != nil {
		return err
	}
	a.items = append(a.items, Artifact{Name: name, Path: dst})
	return nil
}

func (a *Artifacts) Items() []Artifact {
	return a.items
}

// Close removes the staging directory and everything in it.
func (a *Artifacts) Close() error {
	return os.RemoveAll(a.dir)
}
