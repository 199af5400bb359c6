// Package sequencer runs a replication plan pass by pass: replicate modules
// into namespaces, rewrite their links, then clean up what became redundant.
//
// Jobs run strictly in plan order on a single goroutine. A missing source
// skips only its own job; any other filesystem error aborts the run.
package sequencer

import (
	"errors"
	"fmt"
	"path"

	"github.com/agentic-research/roleroute/api"
	"github.com/agentic-research/roleroute/internal/cleanup"
	"github.com/agentic-research/roleroute/internal/dirsync"
	rfs "github.com/agentic-research/roleroute/internal/fs"
	"github.com/agentic-research/roleroute/internal/imports"
	"github.com/agentic-research/roleroute/internal/linter"
	"github.com/agentic-research/roleroute/internal/rewrite"
	"github.com/agentic-research/roleroute/internal/rules"
	billy "github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// Options tune a run.
type Options struct {
	// Root is the display prefix for log lines (the application root path).
	Root string
	// Staged replicates through a temporary sibling directory.
	Staged bool
	// DryRun logs the jobs without touching the filesystem.
	DryRun bool
	// Validate warns when a link rewrite breaks a page's syntax.
	Validate bool
}

// Sequencer executes a plan against a filesystem rooted at the application root.
type Sequencer struct {
	fs   billy.Filesystem
	plan *api.Plan
	opts Options
	log  *zap.Logger

	mode      linter.Mode
	protected []string
}

// Report summarises a run.
type Report struct {
	Passes         int      `json:"passes"`
	Copied         []string `json:"copied"`
	Skipped        []string `json:"skipped"`
	Rewritten      []string `json:"rewritten"`
	Aliases        []string `json:"aliases"`
	RemovedRoots   []string `json:"removed_roots"`
	KeptRoots      []string `json:"kept_roots"`
	ImportsFixed   []string `json:"imports_fixed"`
	PlannedActions []string `json:"planned_actions,omitempty"`
}

// New validates the plan and prepares a Sequencer.
func New(fsys billy.Filesystem, plan *api.Plan, log *zap.Logger, opts Options) (*Sequencer, error) {
	if err := rules.Validate(plan); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	mode, err := linter.ParseMode(plan.AliasMode)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sequencer{
		fs:        fsys,
		plan:      plan,
		opts:      opts,
		log:       log,
		mode:      mode,
		protected: sources(plan),
	}, nil
}

// sources lists every replication source. They are read-only: link rewrites
// never touch them, so re-running a plan copies the same bytes again.
func sources(p *api.Plan) []string {
	var out []string
	seen := make(map[string]bool)
	for _, pass := range p.Passes {
		for _, rep := range pass.Replicate {
			s := path.Clean(rep.Source)
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Run executes every pass in order.
func (s *Sequencer) Run() (*Report, error) {
	rep := &Report{}
	for _, pass := range s.plan.Passes {
		s.log.Debug("pass start", zap.String("pass", pass.Name))
		if err := s.runPass(pass, rep); err != nil {
			return rep, fmt.Errorf("pass %s: %w", pass.Name, err)
		}
		rep.Passes++
	}
	return rep, nil
}

func (s *Sequencer) runPass(pass api.Pass, rep *Report) error {
	for _, r := range pass.Replicate {
		if err := s.replicate(r, rep); err != nil {
			return err
		}
	}
	for _, job := range pass.Rewrite {
		if err := s.rewrite(job, rep); err != nil {
			return err
		}
	}
	if pass.Cleanup != nil {
		if err := s.cleanup(pass.Cleanup, rep); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequencer) replicate(r api.Replication, rep *Report) error {
	sugar := s.log.Sugar()
	src := path.Clean(r.Source)

	ok, err := rfs.Exists(s.fs, src)
	if err != nil {
		return err
	}
	if !ok {
		sugar.Warnf("Warning: Source %s not found!", rfs.Display(s.opts.Root, src))
		rep.Skipped = append(rep.Skipped, src)
		return nil
	}

	for _, role := range r.Targets {
		if rules.SelfTarget(s.plan, src, role) {
			continue
		}
		dst := rules.TargetDir(s.plan, src, role)

		if s.opts.DryRun {
			rep.PlannedActions = append(rep.PlannedActions,
				"check alias "+path.Join(dst, cleanup.PageFile),
				fmt.Sprintf("copy %s -> %s", src, dst))
			continue
		}

		// the alias goes first; the copy then becomes the module's only page
		alias, err := s.cleaner().SweepAlias(dst)
		if err != nil {
			return err
		}
		if alias != "" {
			rep.Aliases = append(rep.Aliases, alias)
		}

		err = dirsync.Sync(s.fs, src, dst, dirsync.Options{
			Staged: s.opts.Staged,
			OnConflict: func(e *dirsync.TargetConflictError) {
				s.log.Debug("replacing non-directory target", zap.String("target", e.Target), zap.Stringer("mode", e.Mode))
			},
		})
		var missing *dirsync.MissingSourceError
		if errors.As(err, &missing) {
			sugar.Warnf("Warning: Source %s not found!", rfs.Display(s.opts.Root, src))
			rep.Skipped = append(rep.Skipped, src)
			return nil
		}
		if err != nil {
			return err
		}
		rep.Copied = append(rep.Copied, dst)
		sugar.Infof("Deep copied: %s -> %s", rfs.Display(s.opts.Root, src), rfs.Display(s.opts.Root, dst))
	}
	return nil
}

func (s *Sequencer) rewrite(job api.RewriteJob, rep *Report) error {
	rs := s.plan.RuleSet(job.RuleSet)
	rw := &rewrite.Rewriter{
		FS:         s.fs,
		Root:       s.opts.Root,
		Extensions: s.plan.Extensions,
		Protected:  s.protected,
		Validate:   s.opts.Validate,
		Log:        s.log,
	}

	for _, role := range job.Roles {
		for _, module := range job.Modules {
			dir := path.Join(role, module)
			if !rfs.IsDir(s.fs, dir) {
				continue
			}
			if s.opts.DryRun {
				rep.PlannedActions = append(rep.PlannedActions, fmt.Sprintf("rewrite %s with %s", dir, job.RuleSet))
				continue
			}
			res, err := rw.RewriteTree(dir, rs.Rules, rules.Vars{Role: role, Module: module})
			if err != nil {
				return err
			}
			rep.Rewritten = append(rep.Rewritten, res.Rewritten...)
		}
	}
	return nil
}

func (s *Sequencer) cleanup(spec *api.Cleanup, rep *Report) error {
	if s.opts.DryRun {
		for _, r := range spec.LegacyRoots {
			rep.PlannedActions = append(rep.PlannedActions, "delete legacy root "+r)
		}
		for _, d := range spec.AliasDirs {
			rep.PlannedActions = append(rep.PlannedActions, "check alias "+path.Join(d, cleanup.PageFile))
		}
		for _, r := range spec.PurgeRoots {
			rep.PlannedActions = append(rep.PlannedActions, "purge shared root "+r)
		}
		for _, fx := range spec.Imports {
			for _, f := range fx.Files {
				rep.PlannedActions = append(rep.PlannedActions, fmt.Sprintf("drop import %s from %s", fx.Symbol, f))
			}
		}
		return nil
	}

	res, err := s.cleaner().Run(spec)
	if err != nil {
		return err
	}
	rep.Aliases = append(rep.Aliases, res.Aliases...)
	rep.RemovedRoots = append(rep.RemovedRoots, res.LegacyRoots...)
	rep.RemovedRoots = append(rep.RemovedRoots, res.Purged...)
	rep.KeptRoots = append(rep.KeptRoots, res.Kept...)

	for _, fx := range spec.Imports {
		fixed, err := FixImports(s.fs, s.opts.Root, fx, s.log)
		if err != nil {
			return err
		}
		rep.ImportsFixed = append(rep.ImportsFixed, fixed...)
	}
	return nil
}

func (s *Sequencer) cleaner() *cleanup.Cleaner {
	return &cleanup.Cleaner{
		FS:        s.fs,
		Root:      s.opts.Root,
		Plan:      s.plan,
		AliasMode: s.mode,
		Log:       s.log,
	}
}

// FixImports runs one import fixup over its explicit file list and returns
// the files it changed.
func FixImports(fsys billy.Filesystem, root string, fx api.ImportFixup, log *zap.Logger) ([]string, error) {
	f, err := imports.New(fx.Symbol, fx.Module)
	if err != nil {
		return nil, err
	}
	var fixed []string
	for _, file := range fx.Files {
		changed, err := f.FixFile(fsys, file)
		if err != nil {
			return fixed, err
		}
		if !changed {
			continue
		}
		fixed = append(fixed, file)
		log.Sugar().Infof("Fixed unused %s import in %s", fx.Symbol, rfs.Display(root, file))
	}
	return fixed, nil
}
