// Package pk4 provides reading functionality for idTech4 .pk4 archives.
//
// A .pk4 file is a plain zip archive. Paths inside it are matched case
// insensitively with forward slashes, the way the engine's file system does.
package pk4

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
)

// ErrNotFound is returned by Read for paths not present in the archive.
var ErrNotFound = errors.New("file not found in archive")

// Archive represents an opened .pk4 archive.
type Archive struct {
	path     string
	zr       *zip.ReadCloser
	fileList map[string]*zip.File
}

// Open opens a .pk4 archive for reading.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	archive := &Archive{
		path:     path,
		zr:       zr,
		fileList: make(map[string]*zip.File, len(zr.File)),
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Later entries with the same name win, as in the engine
		archive.fileList[normalizePath(f.Name)] = f
	}

	return archive, nil
}

// Path returns the file system path the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.zr != nil {
		return a.zr.Close()
	}
	return nil
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.fileList[normalizePath(path)]
	return ok
}

// Stat returns information about a file in the archive.
func (a *Archive) Stat(path string) (fs.FileInfo, error) {
	f, ok := a.fileList[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return f.FileInfo(), nil
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	f, ok := a.fileList[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// NormalizePath converts path to the form used as archive keys.
func NormalizePath(path string) string {
	return normalizePath(path)
}

func normalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "/")
	return strings.ToLower(path)
}
