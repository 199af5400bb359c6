// Package rewrite applies ordered link substitution rules to the page
// sources of a replicated module.
package rewrite

import (
	"errors"
	"strings"

	"github.com/agentic-research/roleroute/api"
	rfs "github.com/agentic-research/roleroute/internal/fs"
	"github.com/agentic-research/roleroute/internal/rules"
	"github.com/agentic-research/roleroute/internal/writeback"
	billy "github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// Apply runs rules over content strictly in order. Each rule replaces every
// occurrence of its match, so later rules see earlier rules' output.
func Apply(content string, rs []api.Rule) string {
	for _, r := range rs {
		if r.Match == "" {
			continue
		}
		content = strings.ReplaceAll(content, r.Match, r.Replace)
	}
	return content
}

// Rewriter rewrites files of a namespace subtree in place.
type Rewriter struct {
	FS         billy.Filesystem
	Root       string   // display prefix for log lines
	Extensions []string // empty means every file
	// Protected subtrees are never rewritten; replication sources live here.
	Protected []string
	// Validate reports rewrites that turn a parseable page into an
	// unparseable one.
	Validate bool
	Log      *zap.Logger
}

// Result counts the files a RewriteTree visited and changed.
type Result struct {
	Scanned   int
	Rewritten []string
}

// RewriteTree applies rs to every matching file under dir with {role} and
// {module} bound from vars.
func (rw *Rewriter) RewriteTree(dir string, rs []api.Rule, vars rules.Vars) (*Result, error) {
	expanded := rules.Expand(rs, vars)

	files, err := rfs.Files(rw.FS, dir, rw.Extensions, rw.protected)
	if err != nil {
		return nil, err
	}

	res := &Result{Scanned: len(files)}
	for _, f := range files {
		var before, after []byte
		changed, err := writeback.Transform(rw.FS, f, func(src []byte) []byte {
			before = src
			after = []byte(Apply(string(src), expanded))
			return after
		})
		if err != nil {
			return res, err
		}
		if !changed {
			rw.log().Debug("links already consistent", zap.String("file", f), zap.String("role", vars.Role))
			continue
		}
		res.Rewritten = append(res.Rewritten, f)
		rw.log().Sugar().Infof("Fixed internal links in: %s", rfs.Display(rw.Root, f))

		if rw.Validate {
			rw.checkSyntax(f, before, after)
		}
	}
	return res, nil
}

func (rw *Rewriter) protected(p string) bool {
	for _, base := range rw.Protected {
		if rfs.Within(p, base) {
			return true
		}
	}
	return false
}

// checkSyntax warns when the rewritten file no longer parses although the
// original did. The file is written either way.
func (rw *Rewriter) checkSyntax(path string, before, after []byte) {
	if writeback.Validate(before, path) != nil {
		return
	}
	err := writeback.Validate(after, path)
	if err == nil {
		return
	}
	var ve *writeback.ValidationError
	if errors.As(err, &ve) {
		rw.log().Warn("rewrite produced a syntax error",
			zap.String("file", rfs.Display(rw.Root, path)),
			zap.Uint32("line", ve.Line+1),
			zap.Uint32("column", ve.Column+1))
		return
	}
	rw.log().Warn("rewrite validation failed", zap.String("file", path), zap.Error(err))
}

func (rw *Rewriter) log() *zap.Logger {
	if rw.Log == nil {
		return zap.NewNop()
	}
	return rw.Log
}
