// Package linter inspects route page sources. It answers one question for
// the cleanup stage: is this page only an alias of another page?
package linter

import (
	"bytes"
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Markers that identify a shallow alias page in the textual heuristic.
var (
	markerDefaultExport = []byte("export default")
	markerPageImport    = []byte("Page from")
)

// Mode selects how alias pages are recognised.
type Mode string

const (
	// Markers matches the two textual markers. Cheap, and can misfire on a
	// real page that happens to contain both.
	Markers Mode = "markers"
	// Structural parses the page and requires that it contains nothing but
	// imports and a single re-export.
	Structural Mode = "structural"
	// Both requires the markers and the structural shape.
	Both Mode = "both"
)

// ParseMode converts a plan setting into a Mode. Empty means Markers.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", Markers:
		return Markers, nil
	case Structural, Both:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown alias mode %q", s)
	}
}

// HasAliasMarkers reports whether content contains both alias markers.
func HasAliasMarkers(content []byte) bool {
	return bytes.Contains(content, markerDefaultExport) && bytes.Contains(content, markerPageImport)
}

// IsAlias reports whether content is an alias page under mode.
func IsAlias(content []byte, mode Mode) (bool, error) {
	switch mode {
	case Markers, "":
		return HasAliasMarkers(content), nil
	case Structural:
		return IsReexport(content)
	case Both:
		if !HasAliasMarkers(content) {
			return false, nil
		}
		return IsReexport(content)
	default:
		return false, fmt.Errorf("unknown alias mode %q", mode)
	}
}

// IsReexport parses content as TSX and reports whether the module body is
// only imports plus exactly one export that forwards another module's page:
//
//	import Page from "../../occupant/cleaning/page";
//	export default Page;
//
// or
//
//	export { default } from "../../occupant/cleaning/page";
func IsReexport(content []byte) (bool, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsx.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return false, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return false, nil
	}

	imported := make(map[string]bool)
	var exports []*sitter.Node

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "comment":
		case "import_statement":
			collectBindings(child, content, imported)
		case "export_statement":
			exports = append(exports, child)
		default:
			return false, nil
		}
	}

	if len(exports) != 1 {
		return false, nil
	}
	exp := exports[0]

	// export { default } from "..." / export * from "..."
	if exp.ChildByFieldName("source") != nil {
		return true, nil
	}

	// export default Page;
	value := exp.ChildByFieldName("value")
	if value == nil || value.Type() != "identifier" {
		return false, nil
	}
	return imported[value.Content(content)], nil
}

// collectBindings records every local name an import statement introduces.
func collectBindings(n *sitter.Node, src []byte, into map[string]bool) {
	clause := n.NamedChild(0)
	if clause == nil || clause.Type() != "import_clause" {
		return
	}
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		switch node.Type() {
		case "identifier":
			into[node.Content(src)] = true
			return
		case "import_specifier":
			// import { a as b } binds b; import { a } binds a.
			if alias := node.ChildByFieldName("alias"); alias != nil {
				into[alias.Content(src)] = true
			} else if name := node.ChildByFieldName("name"); name != nil {
				into[name.Content(src)] = true
			}
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	walk(clause)
}
