// Package journal stores weekly reflections as Markdown files on disk.
package journal

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/okrtrack/internal/models"
)

// Provider is the interface for reflection file operations. Paths are
// relative to the journal root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.JournalFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}

// ReflectionPath returns the canonical journal path of a period's weekly
// reflection, e.g. "3f2c.../week-05.md".
func ReflectionPath(periodID string, week int) string {
	return fmt.Sprintf("%s/week-%02d.md", periodID, week)
}

// SplitReflectionPath is the inverse of ReflectionPath. ok is false for paths
// that do not follow the "<period>/week-NN.md" layout.
func SplitReflectionPath(p string) (periodID string, week int, ok bool) {
	dir, file := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || strings.Contains(dir, "/") {
		return "", 0, false
	}
	if _, err := fmt.Sscanf(file, "week-%d.md", &week); err != nil || week < 1 {
		return "", 0, false
	}
	return dir, week, true
}
