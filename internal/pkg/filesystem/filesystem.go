// Package filesystem provides an abstraction of a filesystem
// with local and in-memory implementations, see the aferofs package.
// nolint: forbidigo
package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// Fs is the filesystem abstraction used by the export/import pipeline.
// All paths use slash separators, relative to the base path.
type Fs interface {
	Name() string // name of the implementation, for example local, memory
	BasePath() string
	Walk(root string, walkFn filepath.WalkFunc) error
	ReadDir(path string) ([]os.FileInfo, error)
	Mkdir(path string) error
	Exists(path string) bool
	IsFile(path string) bool
	IsDir(path string) bool
	Create(name string) (afero.File, error)
	Open(name string) (afero.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (afero.File, error)
	Remove(path string) error
	ReadFile(path, desc string) (*RawFile, error)
	ReadJSONFile(path, desc string) (*JSONFile, error)
	ReadJSONFileTo(path, desc string, target any) error
	WriteFile(file *RawFile) error
	WriteJSONFile(file *JSONFile) error
}

// Rel returns relative path.
func Rel(base, path string) string {
	relPath, err := filepath.Rel(base, path)
	if err != nil {
		panic(errors.Errorf(`cannot get relative path, base="%s", path="%s"`, base, path))
	}
	return ToSlash(relPath)
}

// Join joins any number of path elements into a single path.
func Join(elem ...string) string {
	return ToSlash(filepath.Join(elem...))
}

// Dir returns all but the last element of path, typically the path's directory.
func Dir(path string) string {
	return ToSlash(filepath.Dir(path))
}

// Base returns the last element of path.
func Base(path string) string {
	return filepath.Base(path)
}

// ToSlash returns the internal representation of the path.
func ToSlash(path string) string {
	return strings.ReplaceAll(path, string(os.PathSeparator), "/")
}

// FromSlash returns the OS representation of the path.
func FromSlash(path string) string {
	return strings.ReplaceAll(path, "/", string(os.PathSeparator))
}
