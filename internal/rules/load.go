package rules

import (
	"fmt"

	"github.com/agentic-research/roleroute/api"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// LoadFile reads an HCL (or HCL-JSON, by extension) plan file.
// Unset optional fields fall back to the built-in defaults.
func LoadFile(path string) (*api.Plan, error) {
	var p api.Plan
	if err := hclsimple.DecodeFile(path, nil, &p); err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}
	applyDefaults(&p)
	return &p, nil
}

// Decode parses plan source held in memory. filename selects the syntax
// (".hcl" or ".json") and is used in diagnostics.
func Decode(filename string, src []byte) (*api.Plan, error) {
	var p api.Plan
	if err := hclsimple.Decode(filename, src, nil, &p); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", filename, err)
	}
	applyDefaults(&p)
	return &p, nil
}

func applyDefaults(p *api.Plan) {
	if p.Root == "" {
		p.Root = DefaultRoot
	}
	if len(p.Extensions) == 0 {
		p.Extensions = []string{".tsx"}
	}
	if p.AliasMode == "" {
		p.AliasMode = AliasMarkers
	}
}
