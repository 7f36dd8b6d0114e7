// Package aferofs implements the filesystem.Fs interface
// on top of the afero library.
// nolint: forbidigo
package aferofs

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/forgeport/forgeport/internal/pkg/encoding/json"
	"github.com/forgeport/forgeport/internal/pkg/filesystem"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// Fs implements the filesystem.Fs interface, backend is an afero filesystem.
type Fs struct {
	backend  afero.Fs
	utils    *afero.Afero
	name     string
	basePath string
}

func New(backend afero.Fs, name, basePath string) *Fs {
	return &Fs{
		backend:  backend,
		utils:    &afero.Afero{Fs: backend},
		name:     name,
		basePath: basePath,
	}
}

// NewLocalFs creates a filesystem rooted at the basePath.
func NewLocalFs(basePath string) (*Fs, error) {
	if !filepath.IsAbs(basePath) {
		return nil, errors.Errorf(`base path "%s" must be absolute`, basePath)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), basePath), "local", basePath), nil
}

// NewMemoryFs creates an in-memory filesystem, used in tests.
func NewMemoryFs() *Fs {
	return New(afero.NewMemMapFs(), "memory", "__memory__")
}

// Backend returns the underlying afero filesystem.
func (fs *Fs) Backend() afero.Fs {
	return fs.backend
}

func (fs *Fs) Name() string {
	return fs.name
}

func (fs *Fs) BasePath() string {
	return fs.basePath
}

func (fs *Fs) Walk(root string, walkFn filepath.WalkFunc) error {
	return fs.utils.Walk(filesystem.FromSlash(root), walkFn)
}

func (fs *Fs) ReadDir(path string) ([]os.FileInfo, error) {
	return fs.utils.ReadDir(filesystem.FromSlash(path))
}

func (fs *Fs) Mkdir(path string) error {
	if err := fs.utils.MkdirAll(filesystem.FromSlash(path), 0o755); err != nil {
		return errors.Errorf(`cannot create directory "%s": %w`, path, err)
	}
	return nil
}

func (fs *Fs) Exists(path string) bool {
	if _, err := fs.utils.Stat(filesystem.FromSlash(path)); err == nil {
		return true
	}
	return false
}

func (fs *Fs) IsFile(path string) bool {
	if s, err := fs.utils.Stat(filesystem.FromSlash(path)); err == nil {
		return !s.IsDir()
	}
	return false
}

func (fs *Fs) IsDir(path string) bool {
	if s, err := fs.utils.Stat(filesystem.FromSlash(path)); err == nil {
		return s.IsDir()
	}
	return false
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return fs.utils.Create(filesystem.FromSlash(name))
}

func (fs *Fs) Open(name string) (afero.File, error) {
	return fs.utils.Open(filesystem.FromSlash(name))
}

func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return fs.utils.OpenFile(filesystem.FromSlash(name), flag, perm)
}

func (fs *Fs) Remove(path string) error {
	return fs.utils.RemoveAll(filesystem.FromSlash(path))
}

func (fs *Fs) ReadFile(path, desc string) (*filesystem.RawFile, error) {
	content, err := fs.utils.ReadFile(filesystem.FromSlash(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf(`missing %s file "%s"`, desc, path)
		}
		return nil, errors.Errorf(`cannot read %s file "%s": %w`, desc, path, err)
	}

	file := filesystem.NewRawFile(path, string(content))
	file.SetDescription(desc)
	return file, nil
}

func (fs *Fs) ReadJSONFile(path, desc string) (*filesystem.JSONFile, error) {
	file, err := fs.ReadFile(path, desc)
	if err != nil {
		return nil, err
	}
	return file.ToJSONFile()
}

func (fs *Fs) ReadJSONFileTo(path, desc string, target any) error {
	file, err := fs.ReadFile(path, desc)
	if err != nil {
		return err
	}
	if err := json.DecodeString(file.Content, target); err != nil {
		return errors.PrefixErrorf(err, `%s file "%s" is invalid`, desc, path)
	}
	return nil
}

func (fs *Fs) WriteFile(file *filesystem.RawFile) error {
	// Create the parent directories
	if dir := filesystem.Dir(file.Path()); dir != "." {
		if err := fs.Mkdir(dir); err != nil {
			return err
		}
	}

	if err := fs.utils.WriteFile(filesystem.FromSlash(file.Path()), []byte(file.Content), 0o644); err != nil {
		return errors.Errorf(`cannot write %s file "%s": %w`, file.Description(), file.Path(), err)
	}
	return nil
}

func (fs *Fs) WriteJSONFile(file *filesystem.JSONFile) error {
	rawFile, err := file.ToRawFile()
	if err != nil {
		return err
	}
	return fs.WriteFile(rawFile)
}
