package pk4

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTestArchive creates a .pk4 in dir holding files.
func writeTestArchive(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, "pak000.pk4")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("adding %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	path := writeTestArchive(t, t.TempDir(), map[string]string{
		"models/md5/Imp/imp.md5mesh":  "MD5Version 10",
		"models/md5/imp/idle.md5anim": "MD5Version 10",
	})

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	files := archive.List()
	want := []string{"models/md5/imp/idle.md5anim", "models/md5/imp/imp.md5mesh"}
	if len(files) != len(want) {
		t.Fatalf("List() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, files[i], want[i])
		}
	}
	if archive.Path() != path {
		t.Errorf("Path() = %q", archive.Path())
	}
}

func TestRead(t *testing.T) {
	path := writeTestArchive(t, t.TempDir(), map[string]string{
		"models/md5/imp/imp.md5mesh": "mesh data",
	})

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	tests := []struct {
		path string
		ok   bool
	}{
		{"models/md5/imp/imp.md5mesh", true},
		{"MODELS/MD5/IMP/IMP.MD5MESH", true},
		{"models\\md5\\imp\\imp.md5mesh", true},
		{"/models/md5/imp/imp.md5mesh", true},
		{"models/md5/imp/missing.md5mesh", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := archive.Contains(tt.path); got != tt.ok {
				t.Errorf("Contains(%q) = %v, want %v", tt.path, got, tt.ok)
			}

			data, err := archive.Read(tt.path)
			if !tt.ok {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if string(data) != "mesh data" {
				t.Errorf("Read() = %q", data)
			}
		})
	}

	info, err := archive.Stat("models/md5/imp/imp.md5mesh")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != int64(len("mesh data")) {
		t.Errorf("Size() = %d", info.Size())
	}
}

func TestOpenInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pk4")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error opening a non-zip file")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Models\\MD5\\Imp.md5mesh", "models/md5/imp.md5mesh"},
		{"/def/imp.def", "def/imp.def"},
		{"already/fine", "already/fine"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
