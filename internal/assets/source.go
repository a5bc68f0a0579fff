package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/md5kit/pkg/pk4"
)

// source is one search location of the manager.
type source interface {
	Read(path string) ([]byte, error)
	Contains(path string) bool
	List() []string
	Close() error
	String() string
}

// dirSource serves files from a directory tree on disk.
type dirSource struct {
	root string
}

func (d *dirSource) resolve(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}

func (d *dirSource) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(d.resolve(path))
	if err == nil {
		return data, nil
	}
	// Fall back to the normalized spelling
	return os.ReadFile(d.resolve(pk4.NormalizePath(path)))
}

func (d *dirSource) Contains(path string) bool {
	for _, p := range []string{path, pk4.NormalizePath(path)} {
		if info, err := os.Stat(d.resolve(p)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func (d *dirSource) List() []string {
	var files []string
	_ = filepath.WalkDir(d.root, func(path string, e fs.DirEntry, err error) error {
		if err != nil || e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return nil
		}
		files = append(files, pk4.NormalizePath(filepath.ToSlash(rel)))
		return nil
	})
	sort.Strings(files)
	return files
}

// relative returns the VFS path of an absolute file under the root.
func (d *dirSource) relative(abs string) (string, bool) {
	rel, err := filepath.Rel(d.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return pk4.NormalizePath(filepath.ToSlash(rel)), true
}

func (d *dirSource) Close() error {
	return nil
}

func (d *dirSource) String() string {
	return d.root
}

// archiveSource serves files from a .pk4 archive.
type archiveSource struct {
	*pk4.Archive
}

func (a archiveSource) String() string {
	return a.Path()
}
