package dirsync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	rfs "github.com/agentic-research/roleroute/internal/fs"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, fsys billy.Filesystem, files map[string]string) {
	t.Helper()
	for p, content := range files {
		require.NoError(t, util.WriteFile(fsys, p, []byte(content), 0o644))
	}
}

func read(t *testing.T, fsys billy.Filesystem, p string) string {
	t.Helper()
	data, err := util.ReadFile(fsys, p)
	require.NoError(t, err)
	return string(data)
}

// relSnapshot returns a snapshot of dir with keys made relative to dir.
func relSnapshot(t *testing.T, fsys billy.Filesystem, dir string) map[string]string {
	t.Helper()
	snap, err := rfs.Snapshot(fsys, dir)
	require.NoError(t, err)
	out := make(map[string]string, len(snap))
	prefix := filepath.ToSlash(dir) + "/"
	for k, v := range snap {
		out[strings.TrimPrefix(k, prefix)] = v
	}
	return out
}

func TestSync_CopiesTree(t *testing.T) {
	fsys := memfs.New()
	seed(t, fsys, map[string]string{
		"occupant/cleaning/page.tsx":         `<Link href="/occupant/cleaning/request">`,
		"occupant/cleaning/request/page.tsx": "request",
		"occupant/cleaning/README.md":        "notes",
	})

	require.NoError(t, Sync(fsys, "occupant/cleaning", "officer/cleaning", Options{}))

	assert.Equal(t, `<Link href="/occupant/cleaning/request">`, read(t, fsys, "officer/cleaning/page.tsx"))
	assert.Equal(t, "request", read(t, fsys, "officer/cleaning/request/page.tsx"))
	assert.Equal(t, "notes", read(t, fsys, "officer/cleaning/README.md"))

	// source untouched
	assert.Equal(t, "request", read(t, fsys, "occupant/cleaning/request/page.tsx"))
}

func TestSync_ReplacesExistingDirectory(t *testing.T) {
	fsys := memfs.New()
	seed(t, fsys, map[string]string{
		"occupant/events/page.tsx":      "real",
		"officer/events/page.tsx":       "alias",
		"officer/events/stale/page.tsx": "stale",
		"officer/unrelated/page.tsx":    "keep",
	})

	require.NoError(t, Sync(fsys, "occupant/events", "officer/events", Options{}))

	assert.Equal(t, "real", read(t, fsys, "officer/events/page.tsx"))
	ok, err := rfs.Exists(fsys, "officer/events/stale")
	require.NoError(t, err)
	assert.False(t, ok, "copy must replace, not merge")
	assert.Equal(t, "keep", read(t, fsys, "officer/unrelated/page.tsx"))
}

func TestSync_ReplacesFileTarget(t *testing.T) {
	fsys := memfs.New()
	seed(t, fsys, map[string]string{
		"occupant/payments/page.tsx": "real",
		"admin/payments":             "a file where a directory belongs",
	})

	var conflicts []*TargetConflictError
	err := Sync(fsys, "occupant/payments", "admin/payments", Options{
		OnConflict: func(e *TargetConflictError) { conflicts = append(conflicts, e) },
	})
	require.NoError(t, err)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "admin/payments", conflicts[0].Target)
	assert.Contains(t, conflicts[0].Error(), "not a directory")
	assert.Equal(t, "real", read(t, fsys, "admin/payments/page.tsx"))
}

func TestSync_MissingSource(t *testing.T) {
	fsys := memfs.New()
	seed(t, fsys, map[string]string{"officer/x/page.tsx": "keep"})

	err := Sync(fsys, "occupant/nope", "officer/x", Options{})
	require.Error(t, err)

	var missing *MissingSourceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "occupant/nope", missing.Source)

	// a skipped job leaves the target alone
	assert.Equal(t, "keep", read(t, fsys, "officer/x/page.tsx"))
}

func TestSync_SourceIsFile(t *testing.T) {
	fsys := memfs.New()
	seed(t, fsys, map[string]string{"occupant/page.tsx": "x"})

	err := Sync(fsys, "occupant/page.tsx", "officer/page", Options{})
	require.Error(t, err)
	var missing *MissingSourceError
	assert.False(t, strings.Contains(err.Error(), "not found"))
	assert.NotErrorAs(t, err, &missing)
}

func TestSync_Idempotent(t *testing.T) {
	fsys := memfs.New()
	seed(t, fsys, map[string]string{
		"admin/finance/page.tsx":          "finance",
		"admin/finance/expenses/page.tsx": "expenses",
	})

	require.NoError(t, Sync(fsys, "admin/finance", "treasurer/finance", Options{}))
	first := relSnapshot(t, fsys, "treasurer/finance")

	require.NoError(t, Sync(fsys, "admin/finance", "treasurer/finance", Options{}))
	second := relSnapshot(t, fsys, "treasurer/finance")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second sync differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, relSnapshot(t, fsys, "admin/finance"), first)
}

func TestSync_Staged(t *testing.T) {
	dir := t.TempDir()
	fsys := osfs.New(dir)
	seed(t, fsys, map[string]string{
		"occupant/cleaning/page.tsx":    "real",
		"officer/cleaning/old/page.tsx": "old",
	})

	require.NoError(t, Sync(fsys, "occupant/cleaning", "officer/cleaning", Options{Staged: true}))

	assert.Equal(t, "real", read(t, fsys, "officer/cleaning/page.tsx"))
	_, err := os.Stat(filepath.Join(dir, "officer", "cleaning", "old"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(filepath.Join(dir, "officer"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), stagePrefix), "stage directory left behind: %s", e.Name())
	}
}

func TestSync_StagedNewTarget(t *testing.T) {
	fsys := osfs.New(t.TempDir())
	seed(t, fsys, map[string]string{"reporting/page.tsx": "report"})

	require.NoError(t, Sync(fsys, "reporting", "adviser/reporting", Options{Staged: true}))
	assert.Equal(t, "report", read(t, fsys, "adviser/reporting/page.tsx"))
}

func TestSync_PreservesMode(t *testing.T) {
	dir := t.TempDir()
	fsys := osfs.New(dir)
	seed(t, fsys, map[string]string{"ai/page.tsx": "ai"})
	require.NoError(t, os.Chmod(filepath.Join(dir, "ai", "page.tsx"), 0o600))

	require.NoError(t, Sync(fsys, "ai", "admin/ai", Options{}))

	info, err := os.Stat(filepath.Join(dir, "admin", "ai", "page.tsx"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "source occupant/x not found", (&MissingSourceError{Source: "occupant/x"}).Error())
}
