// Package dirsync materializes one directory subtree at another location by
// removing the target and copying the source in full.
package dirsync

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
)

// MissingSourceError means the module to copy does not exist. Callers skip
// the job and continue.
type MissingSourceError struct {
	Source string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("source %s not found", e.Source)
}

// TargetConflictError describes a target that existed as a file where a
// directory was expected. Sync resolves it by removal; it is only reported
// through Options.OnConflict.
type TargetConflictError struct {
	Target string
	Mode   os.FileMode
}

func (e *TargetConflictError) Error() string {
	return fmt.Sprintf("target %s exists as %s, not a directory", e.Target, e.Mode.Type())
}

// Options tune a Sync.
type Options struct {
	// Staged copies into a sibling directory and renames it over the target
	// only after the copy completes.
	Staged bool
	// OnConflict, if set, observes targets that had to be replaced because
	// they were not directories.
	OnConflict func(*TargetConflictError)
}

// stagePrefix names in-progress staged copies.
const stagePrefix = ".roleroute-stage-"

// Sync replaces dst with a full recursive copy of src. Any existing dst, file
// or directory, is removed first.
func Sync(fsys billy.Filesystem, src, dst string, opts Options) error {
	info, err := fsys.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &MissingSourceError{Source: src}
		}
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	if opts.Staged {
		return syncStaged(fsys, src, dst, opts)
	}

	if err := removeTarget(fsys, dst, opts); err != nil {
		return err
	}
	return copyTree(fsys, src, dst)
}

func syncStaged(fsys billy.Filesystem, src, dst string, opts Options) error {
	parent := filepath.Dir(dst)
	if err := fsys.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", parent, err)
	}
	stage := filepath.Join(parent, stagePrefix+uuid.NewString())

	if err := copyTree(fsys, src, stage); err != nil {
		_ = util.RemoveAll(fsys, stage) // best-effort cleanup
		return err
	}
	if err := removeTarget(fsys, dst, opts); err != nil {
		_ = util.RemoveAll(fsys, stage) // best-effort cleanup
		return err
	}
	if err := fsys.Rename(stage, dst); err != nil {
		_ = util.RemoveAll(fsys, stage) // best-effort cleanup
		return fmt.Errorf("rename stage to %s: %w", dst, err)
	}
	return nil
}

// removeTarget deletes dst whatever it is.
func removeTarget(fsys billy.Filesystem, dst string, opts Options) error {
	info, err := fsys.Lstat(dst)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", dst, err)
	}
	if !info.IsDir() && opts.OnConflict != nil {
		opts.OnConflict(&TargetConflictError{Target: dst, Mode: info.Mode()})
	}
	if err := util.RemoveAll(fsys, dst); err != nil {
		return fmt.Errorf("remove %s: %w", dst, err)
	}
	return nil
}

func copyTree(fsys billy.Filesystem, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if err := fsys.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("mkdir %s: %w", dst, err)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", src, err)
	}
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())

		// Symlinks are followed: the copy holds content, not links.
		fi, err := fsys.Stat(from)
		if err != nil {
			return fmt.Errorf("stat %s: %w", from, err)
		}
		if fi.IsDir() {
			if err := copyTree(fsys, from, to); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(fsys, from, to, fi.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fsys billy.Filesystem, from, to string, perm os.FileMode) error {
	in, err := fsys.Open(from)
	if err != nil {
		return fmt.Errorf("open %s: %w", from, err)
	}
	defer func() { _ = in.Close() }()

	out, err := fsys.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", to, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", from, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", to, err)
	}
	return nil
}
