package rules

import (
	"path"
	"strings"

	"github.com/agentic-research/roleroute/api"
)

// Vars are the placeholder values substituted into rule templates.
type Vars struct {
	Role   string // {role}
	Module string // {module}
}

func (v Vars) replacer() *strings.Replacer {
	return strings.NewReplacer("{role}", v.Role, "{module}", v.Module)
}

// Expand returns the rules with {role} and {module} substituted. Order is kept.
func Expand(rules []api.Rule, v Vars) []api.Rule {
	r := v.replacer()
	out := make([]api.Rule, len(rules))
	for i, rule := range rules {
		rule.Match = r.Replace(rule.Match)
		rule.Replace = r.Replace(rule.Replace)
		out[i] = rule
	}
	return out
}

// Split separates a source module path into its owning namespace and the
// module path below it. Global modules (first segment not a role) have no owner.
//
//	occupant/cleaning        -> "occupant", "cleaning"
//	admin/finance/events     -> "admin", "finance/events"
//	reporting                -> "", "reporting"
func Split(p *api.Plan, source string) (owner, module string) {
	source = path.Clean(source)
	first, rest, ok := strings.Cut(source, "/")
	if ok && p.IsRole(first) {
		return first, rest
	}
	return "", source
}

// TargetDir is the directory a source replicates to under role.
func TargetDir(p *api.Plan, source, role string) string {
	_, module := Split(p, source)
	return path.Join(role, module)
}

// SelfTarget reports whether replicating source into role would copy the
// module onto itself.
func SelfTarget(p *api.Plan, source, role string) bool {
	owner, _ := Split(p, source)
	return owner == role
}
