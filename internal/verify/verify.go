// Package verify checks a replicated tree for the properties a completed run
// guarantees: namespace closure, alias elimination and global root removal.
package verify

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/agentic-research/roleroute/api"
	"github.com/agentic-research/roleroute/internal/cleanup"
	rfs "github.com/agentic-research/roleroute/internal/fs"
	"github.com/agentic-research/roleroute/internal/linter"
	"github.com/agentic-research/roleroute/internal/rules"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Kind classifies a violation.
type Kind string

const (
	ForeignLink  Kind = "foreign-link"
	AliasLeft    Kind = "alias-left"
	RootLeft     Kind = "root-left"
	DanglingLink Kind = "dangling-link"
)

// Violation is one broken property.
type Violation struct {
	Kind   Kind   `json:"kind"`
	Path   string `json:"path"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Kind, v.Path, v.Detail)
}

// hrefOpeners are the two syntactic shapes links are written in.
var hrefOpeners = []string{`href="`, "href={`"}

// Check inspects every replicated target of p and returns violations sorted
// by path.
func Check(fsys billy.Filesystem, p *api.Plan) ([]Violation, error) {
	mode, err := linter.ParseMode(p.AliasMode)
	if err != nil {
		return nil, err
	}

	var out []Violation
	seen := make(map[string]bool)
	purged := make(map[string]bool)

	for _, pass := range p.Passes {
		if pass.Cleanup != nil {
			for _, r := range pass.Cleanup.PurgeRoots {
				purged[path.Clean(r)] = true
			}
		}
		for _, rep := range pass.Replicate {
			for _, role := range rep.Targets {
				if rules.SelfTarget(p, rep.Source, role) {
					continue
				}
				dst := rules.TargetDir(p, rep.Source, role)
				if seen[dst] || !rfs.IsDir(fsys, dst) {
					continue
				}
				seen[dst] = true

				vs, err := checkTarget(fsys, p, rep.Source, role, dst, mode)
				if err != nil {
					return nil, err
				}
				out = append(out, vs...)
			}
		}
	}

	var gone []string
	for r := range purged {
		ok, err := rfs.Exists(fsys, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Violation{Kind: RootLeft, Path: r, Detail: "shared root still present"})
			continue
		}
		gone = append(gone, r)
	}
	sort.Strings(gone)

	vs, err := checkSources(fsys, p, gone)
	if err != nil {
		return nil, err
	}
	out = append(out, vs...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Detail < out[j].Detail
	})
	return out, nil
}

func checkTarget(fsys billy.Filesystem, p *api.Plan, source, role, dst string, mode linter.Mode) ([]Violation, error) {
	owner, module := rules.Split(p, source)
	foreign := "/" + owner + "/"
	if owner == "" {
		foreign = "/" + strings.SplitN(module, "/", 2)[0]
	}
	pins := pinned(p, role)

	// a target page that trips the alias check just like its source's page
	// is the replicated module itself
	copied, err := aliasSource(fsys, source, mode)
	if err != nil {
		return nil, err
	}

	files, err := rfs.Files(fsys, dst, p.Extensions, nil)
	if err != nil {
		return nil, err
	}

	var out []Violation
	for _, f := range files {
		data, err := util.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		content := string(data)

		for _, opener := range hrefOpeners {
			needle := opener + foreign
			for i := 0; ; {
				j := strings.Index(content[i:], needle)
				if j < 0 {
					break
				}
				at := i + j
				if !isPinned(content[at:], pins) {
					out = append(out, Violation{
						Kind:   ForeignLink,
						Path:   f,
						Detail: fmt.Sprintf("line %d references %s", lineOf(content, at), strings.TrimPrefix(needle, opener)),
					})
				}
				i = at + len(needle)
			}
		}

		if f == path.Join(dst, cleanup.PageFile) {
			alias, err := linter.IsAlias(data, mode)
			if err != nil {
				return nil, err
			}
			if alias && !copied {
				out = append(out, Violation{Kind: AliasLeft, Path: f, Detail: "page only re-exports another page"})
			}
		}
	}
	return out, nil
}

func aliasSource(fsys billy.Filesystem, source string, mode linter.Mode) (bool, error) {
	page := path.Join(source, cleanup.PageFile)
	ok, err := rfs.Exists(fsys, page)
	if err != nil || !ok {
		return false, err
	}
	data, err := util.ReadFile(fsys, page)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", page, err)
	}
	return linter.IsAlias(data, mode)
}

// checkSources reports links in replication sources that still point at a
// removed shared root. Sources are never rewritten, so nothing else fixes them.
func checkSources(fsys billy.Filesystem, p *api.Plan, gone []string) ([]Violation, error) {
	if len(gone) == 0 {
		return nil, nil
	}
	var out []Violation
	seen := make(map[string]bool)
	for _, pass := range p.Passes {
		for _, rep := range pass.Replicate {
			src := path.Clean(rep.Source)
			if seen[src] || !rfs.IsDir(fsys, src) {
				continue
			}
			seen[src] = true

			files, err := rfs.Files(fsys, src, p.Extensions, nil)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				data, err := util.ReadFile(fsys, f)
				if err != nil {
					return nil, fmt.Errorf("read %s: %w", f, err)
				}
				content := string(data)
				for _, root := range gone {
					for _, at := range rootLinks(content, root) {
						out = append(out, Violation{
							Kind:   DanglingLink,
							Path:   f,
							Detail: fmt.Sprintf("line %d references removed root /%s", lineOf(content, at), root),
						})
					}
				}
			}
		}
	}
	return out, nil
}

// rootLinks returns the offsets of hrefs whose path is /root or lies below it.
func rootLinks(content, root string) []int {
	var out []int
	for _, opener := range hrefOpeners {
		needle := opener + "/" + root
		for i := 0; ; {
			j := strings.Index(content[i:], needle)
			if j < 0 {
				break
			}
			at := i + j
			end := at + len(needle)
			if end == len(content) || strings.ContainsRune("\"/?#`$", rune(content[end])) {
				out = append(out, at)
			}
			i = end
		}
	}
	sort.Ints(out)
	return out
}

// pinned returns the texts pin rules restore for role. A link starting with
// one of them is an intentional cross-namespace reference.
func pinned(p *api.Plan, role string) []string {
	var out []string
	for _, rs := range p.RuleSets {
		for _, r := range rules.Expand(rs.Rules, rules.Vars{Role: role}) {
			if r.Kind == api.RulePin && r.Replace != "" {
				out = append(out, r.Replace)
			}
		}
	}
	return out
}

func isPinned(at string, pins []string) bool {
	for _, pin := range pins {
		if strings.HasPrefix(at, pin) {
			return true
		}
	}
	return false
}

func lineOf(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}
