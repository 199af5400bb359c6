package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/roleroute/api"
)

// RewriteAmbiguityError reports a pin rule declared before a generic rule
// whose output can re-produce the text the pin restores. The pin would run
// first and the generic rule would then undo it.
type RewriteAmbiguityError struct {
	RuleSet string
	Pin     string
	Generic string
	Role    string
}

func (e *RewriteAmbiguityError) Error() string {
	return fmt.Sprintf("rule set %q: pin rule %q runs before %q, which can re-produce its match for role %q",
		e.RuleSet, e.Pin, e.Generic, e.Role)
}

// Validate checks a plan for structural mistakes and rule mis-ordering.
// All problems are returned joined.
func Validate(p *api.Plan) error {
	var errs []error

	if len(p.Roles) == 0 {
		errs = append(errs, errors.New("plan declares no roles"))
	}
	switch p.AliasMode {
	case "", AliasMarkers, AliasStructural, AliasBoth:
	default:
		errs = append(errs, fmt.Errorf("unknown alias mode %q", p.AliasMode))
	}

	seen := make(map[string]bool)
	for _, rs := range p.RuleSets {
		if seen[rs.Name] {
			errs = append(errs, fmt.Errorf("duplicate rule set %q", rs.Name))
		}
		seen[rs.Name] = true
		errs = append(errs, validateRuleSet(p, rs)...)
	}

	for _, pass := range p.Passes {
		for _, rep := range pass.Replicate {
			if strings.TrimSpace(rep.Source) == "" {
				errs = append(errs, fmt.Errorf("pass %q: replication with empty source", pass.Name))
			}
			for _, t := range rep.Targets {
				if !p.IsRole(t) {
					errs = append(errs, fmt.Errorf("pass %q: %s targets unknown role %q", pass.Name, rep.Source, t))
				}
			}
		}
		for _, job := range pass.Rewrite {
			if p.RuleSet(job.RuleSet) == nil {
				errs = append(errs, fmt.Errorf("pass %q: unknown rule set %q", pass.Name, job.RuleSet))
			}
			for _, r := range job.Roles {
				if !p.IsRole(r) {
					errs = append(errs, fmt.Errorf("pass %q: rewrite names unknown role %q", pass.Name, r))
				}
			}
		}
	}

	return errors.Join(errs...)
}

func validateRuleSet(p *api.Plan, rs api.RuleSet) []error {
	var errs []error
	for _, r := range rs.Rules {
		if r.Match == "" {
			errs = append(errs, fmt.Errorf("rule set %q: rule %q has an empty match", rs.Name, r.Name))
		}
		switch r.Kind {
		case "", api.RuleRewrite, api.RulePin, api.RuleRepair:
		default:
			errs = append(errs, fmt.Errorf("rule set %q: rule %q has unknown kind %q", rs.Name, r.Name, r.Kind))
		}
	}

	for _, role := range p.Roles {
		rules := Expand(rs.Rules, Vars{Role: role, Module: "module"})
		if err := checkOrder(rs.Name, role, rules); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return errs
}

func checkOrder(set, role string, rules []api.Rule) error {
	for i, pin := range rules {
		if pin.Kind != api.RulePin {
			continue
		}
		for _, later := range rules[i+1:] {
			if later.Kind == api.RulePin {
				continue
			}
			if produces(later.Replace, pin.Match) {
				return &RewriteAmbiguityError{RuleSet: set, Pin: pin.Name, Generic: later.Name, Role: role}
			}
		}
	}
	return nil
}

// produces reports whether text written as rep can contain m, either inside
// the replacement itself or starting with it and continuing into the
// untouched remainder.
func produces(rep, m string) bool {
	if rep == "" || m == "" {
		return false
	}
	return strings.Contains(rep, m) || strings.HasPrefix(m, rep)
}
