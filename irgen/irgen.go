// Package irgen drives per-program IR emission: it finds every function
// symbol in a type-checked program, pre-declares each one's LLVM
// signature (ir.Builder.DeclareFunction) before any node's Emit runs,
// and then walks the program's top-level nodes calling Emit on each.
// Declaring every signature first means a call site never has to care
// whether its callee's body has been lowered yet.
package irgen

import (
	"viper/ast"
	"viper/ir"
	"viper/scope"
	"viper/types"
)

// Emit lowers an entire program (every file's top-level nodes, already
// merged by the driver) into one *ir.Builder's module, named moduleName.
// Un-instantiated generic declarations are dropped first -- their
// signatures still carry a raw types.TemplateType -- and every template
// instantiation the program's call sites produced (cached on each generic
// symbol's TemplateSymbol, either by explicit specialization or by
// CallExpression's call-time clone) is spliced in alongside the ordinary
// declarations, deduplicated against nodes actually parsed.
func Emit(moduleName string, nodes []ast.Node) *ir.Builder {
	b := ir.NewBuilder(moduleName)

	present := markPresent(nodes)
	declared := stripGenerics(nodes)
	declared = append(declared, instantiationNodes(nodes, present)...)

	var fns []*ast.Function
	collectFunctions(declared, &fns)

	for _, fn := range fns {
		sym := fn.Symbol()
		fnType, ok := types.Resolve(sym.Type).(*types.FuncType)
		if !ok {
			continue
		}
		mangled := types.MangleFunctionName(fn.Scope().Namespaces(), fn.Name, fnType.Params)
		b.DeclareFunction(sym, mangled)
	}

	for _, n := range declared {
		n.Emit(b)
	}

	return b
}

// collectFunctions gathers every Function node reachable from the
// program's top level, descending into namespaces and class bodies
// (methods) but not into a function's own body, which never declares
// another top-level function.
func collectFunctions(nodes []ast.Node, out *[]*ast.Function) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *ast.Function:
			*out = append(*out, v)
		case *ast.ClassDeclaration:
			for _, m := range v.Methods {
				*out = append(*out, m.Fn)
			}
		case *ast.Namespace:
			collectFunctions(v.Body, out)
		}
	}
}

// markPresent builds an identity set of every Function node already
// reachable from nodes, so instantiationNodes can tell an explicit
// specialization (already one of nodes, just like any other declaration)
// apart from a call-time clone (which isn't).
func markPresent(nodes []ast.Node) map[ast.Node]bool {
	var fns []*ast.Function
	collectFunctions(nodes, &fns)
	present := make(map[ast.Node]bool, len(fns))
	for _, fn := range fns {
		present[fn] = true
	}
	return present
}

// isGenericDeclaration reports whether n is an un-instantiated template's
// own declaration -- one whose signature or fields still carry a raw
// types.TemplateType, which must never reach Emit (the mangler's "stray
// TemplateType in program" sentinel exists precisely to catch this if it
// ever did).
func isGenericDeclaration(n ast.Node) bool {
	sym := n.Symbol()
	return sym != nil && sym.Template != nil
}

// stripGenerics drops every generic declaration from nodes, recursing into
// namespace bodies so a template nested inside one is caught too --
// Namespace.Emit walks its whole Body unconditionally, so filtering has to
// happen before Emit ever sees it.
func stripGenerics(nodes []ast.Node) []ast.Node {
	var out []ast.Node
	for _, n := range nodes {
		if isGenericDeclaration(n) {
			continue
		}
		if ns, ok := n.(*ast.Namespace); ok {
			n = ast.NewNamespaceAttached(false, ns.Name, stripGenerics(ns.Body), ns.Scope(), ns.OwnScope, ns.Span())
		}
		out = append(out, n)
	}
	return out
}

// templatedSymbols gathers every generic function/class symbol reachable
// from nodes' top level, namespaces, and class bodies.
func templatedSymbols(nodes []ast.Node) []*scope.Symbol {
	var out []*scope.Symbol
	for _, n := range nodes {
		switch v := n.(type) {
		case *ast.Function:
			if sym := v.Symbol(); sym != nil && sym.Template != nil {
				out = append(out, sym)
			}
		case *ast.ClassDeclaration:
			if sym := v.Symbol(); sym != nil && sym.Template != nil {
				out = append(out, sym)
			}
			for _, m := range v.Methods {
				if sym := m.Fn.Symbol(); sym != nil && sym.Template != nil {
					out = append(out, sym)
				}
			}
		case *ast.Namespace:
			out = append(out, templatedSymbols(v.Body)...)
		}
	}
	return out
}

// instantiationNodes discovers every template instantiation cached on a
// generic symbol that isn't already one of nodes -- an explicit
// specialization's body already is (it's parsed as an ordinary
// declaration, just pre-seeded into the cache), a call-time clone isn't.
func instantiationNodes(nodes []ast.Node, present map[ast.Node]bool) []ast.Node {
	var extra []ast.Node
	for _, sym := range templatedSymbols(nodes) {
		for _, inst := range sym.Template.Instantiations {
			body, ok := inst.Body.(ast.Node)
			if !ok || present[body] {
				continue
			}
			present[body] = true
			extra = append(extra, body)
		}
	}
	return extra
}
