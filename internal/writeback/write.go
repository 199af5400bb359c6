package writeback

import (
	"bytes"
	"fmt"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Replace overwrites path with content.
// The write is atomic: content is written to a temp file first, then renamed.
func Replace(fsys billy.Filesystem, path string, content []byte) error {
	info, statErr := fsys.Stat(path)

	tmp, err := util.TempFile(fsys, filepath.Dir(path), ".roleroute-write-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Preserve original file permissions
	if ch, ok := fsys.(billy.Change); ok && statErr == nil {
		_ = ch.Chmod(tmpName, info.Mode().Perm()) // best-effort permission sync
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}

// Transform reads the whole file, passes it through fn and writes the result
// back with Replace. Nothing is written when fn returns the content unchanged.
func Transform(fsys billy.Filesystem, path string, fn func([]byte) []byte) (changed bool, err error) {
	src, err := util.ReadFile(fsys, path)
	if err != nil {
		return false, fmt.Errorf("read source %s: %w", path, err)
	}
	out := fn(src)
	if bytes.Equal(src, out) {
		return false, nil
	}
	if err := Replace(fsys, path, out); err != nil {
		return false, err
	}
	return true, nil
}
