// Package fs is the filesystem layer shared by every stage of a run. All
// paths handed to it are relative to the application root, which is the root
// of the billy.Filesystem.
package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Open returns a filesystem rooted at dir on the host.
func Open(dir string) (billy.Filesystem, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open root: %s is not a directory", dir)
	}
	return osfs.New(dir), nil
}

// Display joins a root-relative path onto the root for console output.
func Display(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// Exists reports whether p exists. Symlinks are not followed.
func Exists(fsys billy.Filesystem, p string) (bool, error) {
	_, err := fsys.Lstat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether p exists and is a directory.
func IsDir(fsys billy.Filesystem, p string) bool {
	info, err := fsys.Stat(p)
	return err == nil && info.IsDir()
}

// HasExt reports whether name ends in one of exts. An empty filter matches everything.
func HasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Within reports whether p is base or lies below it.
func Within(p, base string) bool {
	p, base = filepath.Clean(p), filepath.Clean(base)
	return p == base || strings.HasPrefix(p, base+string(filepath.Separator))
}

// Files lists regular files under dir whose extension passes exts, in
// lexical order. Subtrees for which skip returns true are not entered.
func Files(fsys billy.Filesystem, dir string, exts []string, skip func(string) bool) ([]string, error) {
	var out []string
	err := util.Walk(fsys, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if skip != nil && skip(p) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() && HasExt(p, exts) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}

// Snapshot maps every regular file under dir to its content, and every
// directory to the empty string with a trailing separator on its key.
func Snapshot(fsys billy.Filesystem, dir string) (map[string]string, error) {
	snap := make(map[string]string)
	err := util.Walk(fsys, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		key := filepath.ToSlash(p)
		if info.IsDir() {
			snap[key+"/"] = ""
			return nil
		}
		data, err := util.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		snap[key] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", dir, err)
	}
	return snap, nil
}
