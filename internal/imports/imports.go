// Package imports drops a single no-longer-used symbol from import lines of
// an explicit list of files.
package imports

import (
	"fmt"
	"regexp"
	"strings"

	rfs "github.com/agentic-research/roleroute/internal/fs"
	"github.com/agentic-research/roleroute/internal/writeback"
	billy "github.com/go-git/go-billy/v5"
)

// Fixup removes Symbol from `import { ... } from "Module"` lines.
type Fixup struct {
	Symbol string
	Module string

	alone    *regexp.Regexp
	trailing *regexp.Regexp
	leading  *regexp.Regexp
	from     *regexp.Regexp
	word     *regexp.Regexp
}

var (
	bareImport = regexp.MustCompile(`^\s*import\s*\{\s*\}`)
	emptyNamed = regexp.MustCompile(`,\s*\{\s*\}`)
)

// New compiles a Fixup for symbol imported from module.
func New(symbol, module string) (*Fixup, error) {
	if symbol == "" || module == "" {
		return nil, fmt.Errorf("import fixup needs a symbol and a module")
	}
	s := regexp.QuoteMeta(symbol)
	m := regexp.QuoteMeta(module)
	return &Fixup{
		Symbol:   symbol,
		Module:   module,
		alone:    regexp.MustCompile(`\{\s*` + s + `\s*\}`),
		trailing: regexp.MustCompile(`,\s*\b` + s + `\b`),
		leading:  regexp.MustCompile(`\b` + s + `\b\s*,\s*`),
		from:     regexp.MustCompile(`from\s*["']` + m + `["']`),
		word:     regexp.MustCompile(`\b` + s + `\b`),
	}, nil
}

// Line rewrites one source line. keep is false when the line must be dropped.
// The symbol is removed from the braces first; a statement left importing
// nothing is dropped whatever follows it on the line.
func (f *Fixup) Line(line string) (out string, keep bool) {
	if !f.from.MatchString(line) || !f.word.MatchString(line) {
		return line, true
	}
	if loc := f.alone.FindStringIndex(line); loc != nil {
		line = line[:loc[0]] + "{}" + line[loc[1]:]
	} else if loc := f.trailing.FindStringIndex(line); loc != nil {
		line = line[:loc[0]] + line[loc[1]:]
	} else if loc := f.leading.FindStringIndex(line); loc != nil {
		line = line[:loc[0]] + line[loc[1]:]
	}
	if bareImport.MatchString(line) {
		return "", false
	}
	// import Nav, {} from "..." keeps its default binding
	return emptyNamed.ReplaceAllString(line, ""), true
}

// Source applies Line to every line of src.
func (f *Fixup) Source(src []byte) []byte {
	lines := strings.Split(string(src), "\n")
	out := lines[:0]
	for _, l := range lines {
		if nl, keep := f.Line(l); keep {
			out = append(out, nl)
		}
	}
	return []byte(strings.Join(out, "\n"))
}

// FixFile rewrites path in place. Missing files are skipped (changed=false).
func (f *Fixup) FixFile(fsys billy.Filesystem, path string) (changed bool, err error) {
	ok, err := rfs.Exists(fsys, path)
	if err != nil || !ok {
		return false, err
	}
	return writeback.Transform(fsys, path, f.Source)
}
