// Package cleanup removes directories and pages that replication has made
// redundant.
package cleanup

import (
	"fmt"
	"path"

	"github.com/agentic-research/roleroute/api"
	rfs "github.com/agentic-research/roleroute/internal/fs"
	"github.com/agentic-research/roleroute/internal/linter"
	"github.com/agentic-research/roleroute/internal/rules"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// PageFile is the route entry file checked for aliasing.
const PageFile = "page.tsx"

// Cleaner performs the cleanup block of a pass.
type Cleaner struct {
	FS        billy.Filesystem
	Root      string // display prefix for log lines
	Plan      *api.Plan
	AliasMode linter.Mode
	Log       *zap.Logger
}

// Result lists what was removed.
type Result struct {
	LegacyRoots []string
	Aliases     []string
	Purged      []string
	Kept        []string // purge roots kept because a consumer lacks its copy
}

// Run executes legacy root removal, the alias sweep and the guarded purge, in
// that order.
func (c *Cleaner) Run(spec *api.Cleanup) (*Result, error) {
	res := &Result{}
	if spec == nil {
		return res, nil
	}
	if err := c.removeLegacy(spec.LegacyRoots, res); err != nil {
		return res, err
	}
	if err := c.sweepAliases(spec.AliasDirs, res); err != nil {
		return res, err
	}
	if err := c.purge(spec.PurgeRoots, res); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Cleaner) removeLegacy(roots []string, res *Result) error {
	for _, r := range roots {
		ok, err := rfs.Exists(c.FS, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := util.RemoveAll(c.FS, r); err != nil {
			return fmt.Errorf("remove legacy root %s: %w", r, err)
		}
		res.LegacyRoots = append(res.LegacyRoots, r)
		c.log().Sugar().Infof("Deleted legacy global root: %s", rfs.Display(c.Root, r))
	}
	return nil
}

// sweepAliases checks the listed directories that no replication writes to.
// Replication targets are swept by the sequencer just before their copy
// lands, so a copied page is never mistaken for an alias here.
func (c *Cleaner) sweepAliases(dirs []string, res *Result) error {
	for _, dir := range dirs {
		if c.isTarget(dir) {
			c.log().Debug("alias dir is a replication target, swept before copy", zap.String("dir", dir))
			continue
		}
		page, err := c.SweepAlias(dir)
		if err != nil {
			return err
		}
		if page != "" {
			res.Aliases = append(res.Aliases, page)
		}
	}
	return nil
}

// SweepAlias deletes dir's page.tsx when it is an alias page and returns its
// path, or "" when nothing was removed.
func (c *Cleaner) SweepAlias(dir string) (string, error) {
	page := path.Join(dir, PageFile)
	ok, err := rfs.Exists(c.FS, page)
	if err != nil || !ok {
		return "", err
	}
	content, err := util.ReadFile(c.FS, page)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", page, err)
	}
	alias, err := linter.IsAlias(content, c.AliasMode)
	if err != nil {
		return "", fmt.Errorf("inspect %s: %w", page, err)
	}
	if !alias {
		return "", nil
	}
	if err := c.FS.Remove(page); err != nil {
		return "", fmt.Errorf("remove alias %s: %w", page, err)
	}
	c.log().Sugar().Infof("Removed shallow alias: %s", rfs.Display(c.Root, page))
	return page, nil
}

// isTarget reports whether some replication of the plan writes into dir.
func (c *Cleaner) isTarget(dir string) bool {
	if c.Plan == nil {
		return false
	}
	dir = path.Clean(dir)
	for _, pass := range c.Plan.Passes {
		for _, rep := range pass.Replicate {
			for _, role := range rep.Targets {
				if rules.SelfTarget(c.Plan, rep.Source, role) {
					continue
				}
				if rules.TargetDir(c.Plan, rep.Source, role) == dir {
					return true
				}
			}
		}
	}
	return false
}

// purge deletes shared roots whose every replication target already exists.
func (c *Cleaner) purge(roots []string, res *Result) error {
	for _, r := range roots {
		ok, err := rfs.Exists(c.FS, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		missing := c.missingCopies(r)
		if len(missing) > 0 {
			res.Kept = append(res.Kept, r)
			c.log().Warn("keeping shared root: not every consumer has a copy",
				zap.String("root", rfs.Display(c.Root, r)),
				zap.Strings("missing", missing))
			continue
		}
		if err := util.RemoveAll(c.FS, r); err != nil {
			return fmt.Errorf("remove global root %s: %w", r, err)
		}
		res.Purged = append(res.Purged, r)
		c.log().Sugar().Infof("Removed original global root: %s", rfs.Display(c.Root, r))
	}
	return nil
}

// missingCopies lists replication targets of root that do not exist yet.
func (c *Cleaner) missingCopies(root string) []string {
	if c.Plan == nil {
		return nil
	}
	var missing []string
	for _, pass := range c.Plan.Passes {
		for _, rep := range pass.Replicate {
			if path.Clean(rep.Source) != path.Clean(root) {
				continue
			}
			for _, role := range rep.Targets {
				if rules.SelfTarget(c.Plan, rep.Source, role) {
					continue
				}
				dst := rules.TargetDir(c.Plan, rep.Source, role)
				if !rfs.IsDir(c.FS, dst) {
					missing = append(missing, dst)
				}
			}
		}
	}
	return missing
}

func (c *Cleaner) log() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}
