package assets

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/md5kit/internal/engine/model"
	"github.com/Faultbox/md5kit/pkg/parser"
)

const triMesh = `MD5Version 10
commandline ""

numJoints 1
numMeshes 1

joints {
	"origin"	-1 ( 0 0 0 ) ( 0 0 0 )
}

mesh {
	shader "models/test/tri"

	numverts 3
	vert 0 ( 0 0 ) 0 1
	vert 1 ( 1 0 ) 1 1
	vert 2 ( 0 1 ) 2 1

	numtris 1
	tri 0 0 1 2

	numweights 3
	weight 0 0 1 ( 0 0 0 )
	weight 1 0 1 ( 1 0 0 )
	weight 2 0 1 ( 0 1 0 )
}
`

const stillAnim = `MD5Version 10
commandline ""

numFrames 1
numJoints 1
frameRate 24
numAnimatedComponents 0

hierarchy {
	"origin"	-1 0 0
}

bounds {
	( 0 0 0 ) ( 1 1 0 )
}

baseframe {
	( 0 0 0 ) ( 0 0 0 )
}

frame 0 {
}
`

func writeFile(t *testing.T, root, name, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func writeArchive(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "pak000.pk4")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestManager_LoadFromDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/md5/tri.md5mesh", triMesh)

	m := NewManager()
	defer m.Close()
	require.NoError(t, m.AddArchive(root))

	data, err := m.Load("models/md5/tri.md5mesh")
	require.NoError(t, err)
	assert.Equal(t, triMesh, string(data))

	// Backslashes and a leading slash resolve to the same file
	_, err = m.Load(`\models\md5\tri.md5mesh`)
	require.NoError(t, err)

	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.True(t, m.Contains("models/md5/tri.md5mesh"))
	assert.False(t, m.Contains("models/md5/missing.md5mesh"))
}

func TestManager_NotFound(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddArchive(t.TempDir()))

	_, err := m.Load("models/nothing.md5mesh")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = m.LoadMesh("models/nothing.md5mesh")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestManager_AddArchiveErrors(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.AddArchive(filepath.Join(t.TempDir(), "missing")))

	bogus := filepath.Join(t.TempDir(), "bogus.pk4")
	require.NoError(t, os.WriteFile(bogus, []byte("not a zip"), 0o644))
	assert.Error(t, m.AddArchive(bogus))
	assert.Empty(t, m.Sources())
}

func TestManager_LastSourceWins(t *testing.T) {
	tmp := t.TempDir()
	pak := writeArchive(t, tmp, map[string]string{
		"models/md5/tri.md5mesh": "from archive",
		"models/md5/only.txt":    "archive only",
	})
	root := filepath.Join(tmp, "base")
	writeFile(t, root, "models/md5/tri.md5mesh", "from directory")

	m := NewManager()
	defer m.Close()
	require.NoError(t, m.AddArchive(pak))
	require.NoError(t, m.AddArchive(root))

	assert.Equal(t, []string{root, pak}, m.Sources())

	data, err := m.Load("models/md5/tri.md5mesh")
	require.NoError(t, err)
	assert.Equal(t, "from directory", string(data))

	data, err = m.Load("MODELS/MD5/ONLY.TXT")
	require.NoError(t, err)
	assert.Equal(t, "archive only", string(data))
}

func TestManager_List(t *testing.T) {
	tmp := t.TempDir()
	pak := writeArchive(t, tmp, map[string]string{
		"models/md5/a.md5mesh": triMesh,
		"models/md5/a.md5anim": stillAnim,
	})
	root := filepath.Join(tmp, "base")
	writeFile(t, root, "models/md5/a.md5mesh", triMesh)
	writeFile(t, root, "models/md5/b.md5mesh", triMesh)

	m := NewManager()
	defer m.Close()
	require.NoError(t, m.AddArchive(pak))
	require.NoError(t, m.AddArchive(root))

	assert.ElementsMatch(t, []string{"models/md5/a.md5mesh", "models/md5/b.md5mesh"}, m.List(".md5mesh"))
	assert.Len(t, m.List(""), 3)
}

func TestManager_LoadMeshShared(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/md5/tri.md5mesh", triMesh)

	m := NewManager()
	require.NoError(t, m.AddArchive(root))

	first, err := m.LoadMesh("models/md5/tri.md5mesh")
	require.NoError(t, err)
	second, err := m.LoadMesh("Models/MD5/tri.md5mesh")
	require.NoError(t, err)
	assert.Same(t, first, second)

	a, err := m.LoadModel("models/md5/tri.md5mesh", model.Options{})
	require.NoError(t, err)
	b, err := m.LoadModel("models/md5/tri.md5mesh", model.Options{})
	require.NoError(t, err)

	assert.Equal(t, "tri.md5mesh", a.Filename())
	assert.Equal(t, "models/md5/tri.md5mesh", a.ModelPath())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 3, a.VertexCount())
}

func TestManager_ParseFailureNotCached(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/md5/tri.md5mesh", "MD5Version 9")

	m := NewManager()
	require.NoError(t, m.AddArchive(root))

	_, err := m.LoadMesh("models/md5/tri.md5mesh")
	require.Error(t, err)
	var perr *parser.ParseError
	assert.True(t, errors.As(err, &perr))

	// Fix the file on disk; the raw bytes are still cached until invalidated
	writeFile(t, root, "models/md5/tri.md5mesh", triMesh)
	assert.True(t, m.Invalidate("models/md5/tri.md5mesh"))

	mesh, err := m.LoadMesh("models/md5/tri.md5mesh")
	require.NoError(t, err)
	assert.Len(t, mesh.Meshes, 1)
}

func TestManager_LoadAnim(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/md5/still.md5anim", stillAnim)

	m := NewManager()
	require.NoError(t, m.AddArchive(root))

	anim, err := m.LoadAnim("models/md5/still.md5anim")
	require.NoError(t, err)
	assert.Equal(t, 1, anim.NumFrames())
	assert.Equal(t, 24, anim.FrameRate)

	again, err := m.LoadAnim("models/md5/still.md5anim")
	require.NoError(t, err)
	assert.Same(t, anim, again)

	assert.True(t, m.Invalidate("models/md5/still.md5anim"))
	assert.False(t, m.Invalidate("models/md5/still.md5anim"))
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/md5/tri.md5mesh", triMesh)

	m := NewManager()
	defer m.Close()
	require.NoError(t, m.AddArchive(root))

	first, err := m.LoadMesh("models/md5/tri.md5mesh")
	require.NoError(t, err)

	w, err := NewWatcher(m)
	require.NoError(t, err)

	changed := make(chan string, 16)
	w.OnChange = func(path string) {
		select {
		case changed <- path:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Replace the file atomically so a reload never sees a partial write
	staging := t.TempDir()
	writeFile(t, staging, "tri.md5mesh", triMesh+"\n")
	require.NoError(t, os.Rename(filepath.Join(staging, "tri.md5mesh"), filepath.Join(root, "models", "md5", "tri.md5mesh")))

	timeout := time.After(5 * time.Second)
	for seen := false; !seen; {
		select {
		case path := <-changed:
			seen = path == "models/md5/tri.md5mesh"
		case <-timeout:
			t.Fatal("no change event received")
		}
	}

	second, err := m.LoadMesh("models/md5/tri.md5mesh")
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
