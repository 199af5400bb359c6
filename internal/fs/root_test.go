package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.tsx"), []byte("x"), 0o644))

	fsys, err := Open(dir)
	require.NoError(t, err)

	data, err := util.ReadFile(fsys, "page.tsx")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Open(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestExistsAndIsDir(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "a/b.tsx", []byte("b"), 0o644))

	ok, err := Exists(fsys, "a/b.tsx")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(fsys, "a/none")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, IsDir(fsys, "a"))
	assert.False(t, IsDir(fsys, "a/b.tsx"))
	assert.False(t, IsDir(fsys, "zzz"))
}

func TestHasExt(t *testing.T) {
	assert.True(t, HasExt("page.tsx", []string{".tsx"}))
	assert.True(t, HasExt("PAGE.TSX", []string{".tsx"}))
	assert.False(t, HasExt("page.ts", []string{".tsx"}))
	assert.True(t, HasExt("anything", nil))
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("admin/occupants", "admin/occupants"))
	assert.True(t, Within("admin/occupants/list/page.tsx", "admin/occupants"))
	assert.False(t, Within("admin/occupants-old", "admin/occupants"))
	assert.False(t, Within("admin", "admin/occupants"))
}

func TestFiles(t *testing.T) {
	fsys := memfs.New()
	for _, p := range []string{
		"mod/page.tsx",
		"mod/b/page.tsx",
		"mod/b/style.css",
		"mod/skip/page.tsx",
	} {
		require.NoError(t, util.WriteFile(fsys, p, []byte(p), 0o644))
	}

	files, err := Files(fsys, "mod", []string{".tsx"}, func(p string) bool {
		return Within(p, filepath.Join("mod", "skip"))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("mod", "b", "page.tsx"),
		filepath.Join("mod", "page.tsx"),
	}, files)
}

func TestSnapshot(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "r/x/page.tsx", []byte("hello"), 0o644))

	snap, err := Snapshot(fsys, "r")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"r/":           "",
		"r/x/":         "",
		"r/x/page.tsx": "hello",
	}, snap)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, filepath.Join("src", "app", "(app)", "officer", "cleaning"),
		Display(filepath.Join("src", "app", "(app)"), "officer/cleaning"))
}
