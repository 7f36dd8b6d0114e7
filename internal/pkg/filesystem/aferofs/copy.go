package aferofs

import (
	"github.com/spf13/afero"
	"go.nhat.io/aferocopy/v2"

	"github.com/forgeport/forgeport/internal/pkg/filesystem"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

const CopyBufferSize uint = 512 * 1024 // 512 kB

// CopyFs2Fs copies a directory tree between two filesystems,
// an existing destination directory is replaced.
func CopyFs2Fs(srcFs filesystem.Fs, srcPath string, dstFs filesystem.Fs, dstPath string) error {
	aferoSrc, err := backendOf(srcFs, "src")
	if err != nil {
		return err
	}
	aferoDst, err := backendOf(dstFs, "dst")
	if err != nil {
		return err
	}

	// nolint: forbidigo
	return aferocopy.Copy(filesystem.FromSlash(srcPath), filesystem.FromSlash(dstPath), aferocopy.Options{
		SrcFs:          aferoSrc,
		DestFs:         aferoDst,
		Sync:           false,
		CopyBufferSize: CopyBufferSize,
		OnDirExists: func(srcFs afero.Fs, src string, destFs afero.Fs, dest string) aferocopy.DirExistsAction {
			return aferocopy.Merge
		},
	})
}

func backendOf(fs filesystem.Fs, side string) (afero.Fs, error) {
	if fs == nil {
		// If nil, use OS filesystem
		return &afero.Afero{Fs: afero.NewOsFs()}, nil
	}
	if v, ok := fs.(*Fs); ok {
		return v.Backend(), nil
	}
	return nil, errors.Errorf(`unexpected type of %s filesystem "%T"`, side, fs)
}
