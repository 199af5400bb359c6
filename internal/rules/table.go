// Package rules holds the path rule table: which modules replicate into which
// namespaces, and the ordered link rewrite rules applied to the copies.
package rules

import (
	"github.com/agentic-research/roleroute/api"
)

// DefaultRoot is the route directory of the application, relative to the repo.
const DefaultRoot = "src/app/(app)"

// Rule set names used by the built-in table.
const (
	SetDeep   = "deep"
	SetModule = "module"
	SetGlobal = "global"
)

// Alias detection modes.
const (
	AliasMarkers    = "markers"
	AliasStructural = "structural"
	AliasBoth       = "both"
)

var (
	allRoles = []string{"admin", "student_assistant", "officer", "treasurer", "adviser", "occupant"}
	subRoles = []string{"student_assistant", "officer", "treasurer", "adviser"}
)

// Default returns the built-in plan. Each call returns a fresh copy.
func Default() *api.Plan {
	withAdmin := append(clone(subRoles), "admin")

	return &api.Plan{
		Root:       DefaultRoot,
		Roles:      clone(allRoles),
		Extensions: []string{".tsx"},
		AliasMode:  AliasMarkers,
		RuleSets:   []api.RuleSet{deepRules(), moduleRules(), globalRules()},
		Passes: []api.Pass{
			{
				Name: "deep-modules",
				Replicate: []api.Replication{
					{Source: "occupant/cleaning", Targets: clone(withAdmin)},
					{Source: "occupant/evaluation", Targets: clone(subRoles)},
					{Source: "occupant/events", Targets: clone(withAdmin)},
					{Source: "occupant/payments", Targets: clone(withAdmin)},
					{Source: "admin/fines", Targets: []string{"student_assistant"}},
					{Source: "admin/finance/maintenance", Targets: []string{"student_assistant", "adviser"}},
					{Source: "admin/finance/events", Targets: []string{"treasurer"}},
					{Source: "admin/finance/expenses", Targets: []string{"officer"}},
				},
			},
			{
				Name: "global-modules",
				Replicate: []api.Replication{
					{Source: "reporting", Targets: clone(allRoles)},
					{Source: "profile", Targets: clone(allRoles)},
					{Source: "settings", Targets: clone(allRoles)},
					{Source: "ai", Targets: []string{"admin", "student_assistant", "officer", "treasurer", "adviser"}},
					{Source: "admin/occupants", Targets: []string{"student_assistant", "adviser"}},
					{Source: "admin/rooms", Targets: []string{"student_assistant", "adviser"}},
				},
				Cleanup: &api.Cleanup{
					PurgeRoots: []string{"reporting", "profile", "settings", "ai"},
				},
			},
			{
				Name: "shared-modules",
				Replicate: []api.Replication{
					{Source: "occupant/committees", Targets: []string{"admin"}},
					{Source: "admin/fines", Targets: []string{"student_assistant"}},
					{Source: "admin/finance", Targets: []string{"treasurer", "officer", "student_assistant", "adviser"}},
				},
			},
			{
				Name: "scoped-link-fix",
				Rewrite: []api.RewriteJob{
					{
						RuleSet: SetDeep,
						Roles:   clone(subRoles),
						Modules: []string{"cleaning", "evaluation", "events", "payments", "fines", "finance"},
					},
					{
						RuleSet: SetModule,
						Roles:   []string{"admin"},
						Modules: []string{"cleaning", "events", "payments", "committees"},
					},
				},
			},
			{
				Name: "global-link-fix",
				Rewrite: []api.RewriteJob{
					{
						RuleSet: SetGlobal,
						Roles:   clone(allRoles),
						Modules: []string{"reporting", "profile", "settings", "ai", "occupants", "rooms"},
					},
				},
			},
			{
				Name: "legacy-cleanup",
				Cleanup: &api.Cleanup{
					LegacyRoots: []string{"occupants"},
					PurgeRoots:  []string{"reporting", "profile", "settings", "ai"},
					Imports: []api.ImportFixup{
						{
							Symbol: "redirect",
							Module: "next/navigation",
							Files: []string{
								"adviser/payments/page.tsx",
								"occupant/payments/page.tsx",
								"officer/payments/page.tsx",
								"student_assistant/payments/page.tsx",
								"treasurer/payments/page.tsx",
							},
						},
					},
				},
			},
		},
	}
}

func deepRules() api.RuleSet {
	return api.RuleSet{
		Name: SetDeep,
		Rules: []api.Rule{
			{
				Name:      "occupant-literal",
				Match:     `href="/occupant/`,
				Replace:   `href="/{role}/`,
				Kind:      api.RuleRewrite,
				Rationale: "pages copied from the occupant namespace link into their own copy",
			},
			{
				Name:      "occupant-template",
				Match:     "href={`/occupant/",
				Replace:   "href={`/{role}/",
				Kind:      api.RuleRewrite,
				Rationale: "template form of occupant-literal",
			},
			{
				Name:      "admin-literal",
				Match:     `href="/admin/`,
				Replace:   `href="/{role}/`,
				Kind:      api.RuleRewrite,
				Rationale: "pages borrowed from admin link into the borrowing namespace",
			},
			{
				Name:      "admin-template",
				Match:     "href={`/admin/",
				Replace:   "href={`/{role}/",
				Kind:      api.RuleRewrite,
				Rationale: "template form of admin-literal",
			},
			{
				Name:      "evaluation-repair",
				Match:     "href={`/evaluation/",
				Replace:   "href={`/{role}/evaluation/",
				Kind:      api.RuleRepair,
				Rationale: "the shared evaluation page linked without any namespace prefix",
			},
			{
				Name:      "admin-occupants-pin",
				Match:     `href="/{role}/occupants`,
				Replace:   `href="/admin/occupants`,
				Kind:      api.RulePin,
				Rationale: "occupant records stay owned by admin; undoes admin-literal",
			},
		},
	}
}

func moduleRules() api.RuleSet {
	return api.RuleSet{
		Name: SetModule,
		Rules: []api.Rule{
			{
				Name:      "module-literal",
				Match:     `href="/occupant/{module}`,
				Replace:   `href="/{role}/{module}`,
				Kind:      api.RuleRewrite,
				Rationale: "only links into the copied module move; other occupant links stay",
			},
		},
	}
}

func globalRules() api.RuleSet {
	rules := make([]api.Rule, 0, 7)
	for _, root := range []string{"reporting", "profile", "settings", "ai"} {
		rules = append(rules, api.Rule{
			Name:      root + "-root",
			Match:     `href="/` + root,
			Replace:   `href="/{role}/` + root,
			Kind:      api.RuleRewrite,
			Rationale: "the shared /" + root + " root no longer exists",
		})
	}
	rules = append(rules,
		api.Rule{
			Name:      "admin-occupants-literal",
			Match:     `href="/admin/occupants`,
			Replace:   `href="/{role}/occupants`,
			Kind:      api.RuleRewrite,
			Rationale: "borrowed occupants pages are replicated per namespace",
		},
		api.Rule{
			Name:      "admin-occupants-template",
			Match:     "href={`/admin/occupants/",
			Replace:   "href={`/{role}/occupants/",
			Kind:      api.RuleRewrite,
			Rationale: "template form of admin-occupants-literal",
		},
		api.Rule{
			Name:      "admin-rooms-literal",
			Match:     `href="/admin/rooms`,
			Replace:   `href="/{role}/rooms`,
			Kind:      api.RuleRewrite,
			Rationale: "borrowed rooms pages are replicated per namespace",
		},
	)
	return api.RuleSet{Name: SetGlobal, Rules: rules}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
