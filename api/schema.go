package api

// Plan is the root configuration of a replication run.
// It maps shared route modules onto role namespaces and declares how links
// inside the copies are rewritten.
type Plan struct {
	// Root is the application route directory, relative to the working directory.
	Root string `json:"root,omitempty" hcl:"root,optional"`
	// Roles lists every namespace known to the application.
	Roles []string `json:"roles" hcl:"roles"`
	// Extensions filters which files the link rewriter touches (e.g. ".tsx").
	Extensions []string `json:"extensions,omitempty" hcl:"extensions,optional"`
	// AliasMode selects alias page detection: "markers", "structural" or "both".
	AliasMode string `json:"alias_mode,omitempty" hcl:"alias_mode,optional"`
	// RuleSets are named, ordered rewrite rule lists referenced by passes.
	RuleSets []RuleSet `json:"rule_sets" hcl:"rule_set,block"`
	// Passes run in declaration order.
	Passes []Pass `json:"passes" hcl:"pass,block"`
}

// RuleSet is an ordered list of rewrite rules. Order is significant.
type RuleSet struct {
	Name  string `json:"name" hcl:"name,label"`
	Rules []Rule `json:"rules" hcl:"rule,block"`
}

// Rule kinds.
const (
	RuleRewrite = "rewrite" // generic prefix rewrite
	RulePin     = "pin"     // restores a reference a generic rule must not move
	RuleRepair  = "repair"  // fixes a reference that was broken in the source
)

// Rule is a literal substitution. Match and Replace may contain the
// placeholders {role} and {module}.
type Rule struct {
	Name      string `json:"name" hcl:"name,label"`
	Match     string `json:"match" hcl:"match"`
	Replace   string `json:"replace" hcl:"replace"`
	Kind      string `json:"kind,omitempty" hcl:"kind,optional"`
	Rationale string `json:"rationale,omitempty" hcl:"rationale,optional"`
}

// Pass is one ordered batch: replications, then rewrites, then cleanup.
type Pass struct {
	Name      string        `json:"name" hcl:"name,label"`
	Replicate []Replication `json:"replicate,omitempty" hcl:"replicate,block"`
	Rewrite   []RewriteJob  `json:"rewrite,omitempty" hcl:"rewrite,block"`
	Cleanup   *Cleanup      `json:"cleanup,omitempty" hcl:"cleanup,block"`
}

// Replication copies Source (relative to the root) into each target role.
type Replication struct {
	Source  string   `json:"source" hcl:"source"`
	Targets []string `json:"targets" hcl:"targets"`
}

// RewriteJob applies RuleSet to <role>/<module> for every role × module pair.
type RewriteJob struct {
	RuleSet string   `json:"rule_set" hcl:"rule_set"`
	Roles   []string `json:"roles" hcl:"roles"`
	Modules []string `json:"modules" hcl:"modules"`
}

// Cleanup removes what replication made redundant.
type Cleanup struct {
	// LegacyRoots are superseded directories deleted unconditionally.
	LegacyRoots []string `json:"legacy_roots,omitempty" hcl:"legacy_roots,optional"`
	// AliasDirs are <role>/<module> directories whose page file is checked for aliasing.
	AliasDirs []string `json:"alias_dirs,omitempty" hcl:"alias_dirs,optional"`
	// PurgeRoots are shared roots deleted once every consumer holds a copy.
	PurgeRoots []string `json:"purge_roots,omitempty" hcl:"purge_roots,optional"`
	// Imports lists explicit per-file import fixups.
	Imports []ImportFixup `json:"imports,omitempty" hcl:"imports,block"`
}

// ImportFixup removes Symbol from imports of Module in each listed file.
type ImportFixup struct {
	Symbol string   `json:"symbol" hcl:"symbol"`
	Module string   `json:"module" hcl:"module"`
	Files  []string `json:"files" hcl:"files"`
}

// RuleSet returns the rule set with the given name, or nil.
func (p *Plan) RuleSet(name string) *RuleSet {
	for i := range p.RuleSets {
		if p.RuleSets[i].Name == name {
			return &p.RuleSets[i]
		}
	}
	return nil
}

// IsRole reports whether name is one of the plan's namespaces.
func (p *Plan) IsRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}
