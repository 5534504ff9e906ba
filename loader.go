package jinjaspan

import (
	"os"
	"path/filepath"
)

// FilesystemLoader resolves template names relative to a base directory,
// grounded on the teacher's LocalFilesystemLoader (template_loader.go):
// same base-dir-wins resolution rule, generalized to the Loader interface
// (source text in, not an io.Reader) spec §6 defines.
type FilesystemLoader struct {
	baseDir string
}

// NewFilesystemLoader resolves baseDir to an absolute path and verifies it
// is a directory before returning.
func NewFilesystemLoader(baseDir string) (*FilesystemLoader, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, &Error{Sender: "FilesystemLoader", OrigErr: errNotADirectory(abs)}
	}
	return &FilesystemLoader{baseDir: abs}, nil
}

func (l *FilesystemLoader) Load(name string) (string, bool) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

type notADirectoryError string

func (e notADirectoryError) Error() string { return string(e) + " is not a directory" }

func errNotADirectory(path string) error { return notADirectoryError(path) }
