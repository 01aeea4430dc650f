// Package check runs the two post-parse AST walks over every parsed
// node -- type resolution/implicit-cast insertion, then access-control
// and unused-result diagnostics -- plus the end-of-pipeline sweep over
// the Type Registry's still-pending forward references. Most of the
// per-node logic lives on ast.Node's TypeCheck/SemanticCheck methods;
// this package only supplies the outer driver and the registry sweep.
// The walks are separate because access control needs fully resolved
// types to know which class owns a member.
package check

import (
	"fmt"

	"viper/ast"
	"viper/diag"
	"viper/types"
)

// Run type-checks and semantic-checks every top-level node, then reports
// an unknown-type error for every Type Registry placeholder that never
// resolved to a concrete struct declaration. file is the path those
// unknown-type diagnostics are reported against.
func Run(reg *types.Registry, file string, nodes []ast.Node) {
	for _, n := range nodes {
		n.TypeCheck()
	}

	for _, n := range nodes {
		n.SemanticCheck(true)
	}

	reportUnknownTypes(reg, file)
}

// reportUnknownTypes flags every PendingType the registry never resolved
// to a *types.StructType, demoting each to an IncompleteType so callers
// downstream (irgen) still see a sized, if bogus, type rather than a
// nil.
func reportUnknownTypes(reg *types.Registry, file string) {
	pending := append([]*types.PendingType{}, reg.Pending()...)
	for _, p := range pending {
		span := p.Span
		name := p.TypeName
		if len(p.Namespaces) > 0 {
			name = fmt.Sprintf("%s::%s", joinNamespaces(p.Namespaces), name)
		}
		diag.ReportCompilerError(file, &span, diag.KindUnknownType, fmt.Sprintf("unknown type '%s'", name))
		p.InitIncomplete(reg)
	}
}

func joinNamespaces(ns []string) string {
	out := ns[0]
	for _, n := range ns[1:] {
		out += "::" + n
	}
	return out
}
