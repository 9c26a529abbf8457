// Package storage keeps uploaded task attachments on a filesystem.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Files stores attachment blobs under a root directory. Paths handed out are
// relative to that root.
type Files struct {
	fs afero.Fs
}

// NewDisk returns Files rooted at dir on the host filesystem.
func NewDisk(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

func New(fs afero.Fs) *Files {
	return &Files{fs: fs}
}

// Save writes r as a new file for the task and returns the stored name and
// its relative path. The original name only contributes its extension.
func (f *Files) Save(taskID uuid.UUID, originalName string, r io.Reader) (string, string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	dir := path.Join("tasks", taskID.String())
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	rel := path.Join(dir, name)
	out, err := f.fs.Create(rel)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = f.fs.Remove(rel)
		return "", "", err
	}
	if err := out.Close(); err != nil {
		_ = f.fs.Remove(rel)
		return "", "", err
	}
	return name, rel, nil
}

// Delete removes a stored file. A missing file is not an error.
func (f *Files) Delete(rel string) error {
	err := f.fs.Remove(rel)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open returns the stored file for reading.
func (f *Files) Open(rel string) (afero.File, error) {
	return f.fs.Open(rel)
}
