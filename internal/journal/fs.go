package journal

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/okrtrack/internal/checksum"
	"github.com/starford/okrtrack/internal/models"
)

const tmpPattern = ".okrtrack-tmp-*"

// FS implements Provider on the local file system.
type FS struct {
	root string // absolute journal directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a provider rooted at dir, which must already exist.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("journal: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("journal: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("journal: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute journal directory.
func (f *FS) Root() string { return f.root }

// resolve maps rel onto the journal root, rejecting absolute paths and
// anything that would escape the root.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("journal: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if abs != f.root && !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("journal: path escapes root: %s", rel)
	}
	return abs, nil
}

// List walks dir and returns metadata for every .md file, with slash-separated
// paths relative to the root.
func (f *FS) List(dir string) ([]models.JournalFile, error) {
	base, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []models.JournalFile
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.JournalFile{
			Path:      filepath.ToSlash(rel),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a journal file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path atomically via temp file, fsync and rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("journal: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("journal: create temp: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("journal: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("journal: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("journal: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("journal: rename: %w", err)
	}
	committed = true
	return nil
}

// Delete removes a journal file.
func (f *FS) Delete(path string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("journal: delete %s: %w", path, err)
	}
	return nil
}
