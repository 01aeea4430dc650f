// Package ast defines the typed syntax tree the parser builds and the
// check/irgen passes walk. Nodes are polymorphic over a small capability
// interface rather than arranged in a class hierarchy: each concrete
// node embeds `base` for the fields and no-op defaults every node
// shares, and overrides only the methods that differ for it.
package ast

import (
	"viper/scope"
	"viper/token"
	"viper/types"
)

// Node is the capability interface every AST node implements.
type Node interface {
	// Span is this node's "error token" span, used to anchor diagnostics.
	Span() token.Span

	// Scope is the scope this node was parsed into.
	Scope() *scope.Scope

	// Type is the node's resolved type, valid only after TypeCheck runs
	// (expression nodes). Declarations carry their declared type (a
	// function's FuncType, a class's StructType, an enum's EnumType, a
	// variable's declared or inferred type); return/if statements and
	// namespaces return void.
	Type() types.Type

	// TypeCheck resolves identifiers, inserts implicit casts, and
	// computes this node's Type. Diagnostics are reported through the
	// package-global diag logger (see diag.ReportCompilerError), the same
	// convention the rest of the front end uses.
	TypeCheck()

	// SemanticCheck runs after TypeCheck: unused-statement/unused-pure-call
	// warnings and access-control checks. `statement` is true when this
	// node appears directly in statement position (so an unused
	// non-pure-call expression is not flagged, but a bare pure call is).
	SemanticCheck(statement bool)

	// TriviallyImplicitCast reports whether this node can be losslessly
	// reinterpreted as dest without an explicit conversion instruction
	// (e.g. an integer literal small enough to fit any integer width).
	TriviallyImplicitCast(dest types.Type) bool

	// Clone deep-copies this node (and its owned children) into a new
	// scope, used when instantiating a template body.
	Clone(into *scope.Scope) Node

	// Contained returns this node's direct child nodes, used by the
	// template-substitution walk (SetTemplateType) and by generic
	// tree-wide passes.
	Contained() []Node

	// Symbol returns the symbol this node declares, if any (Function,
	// ClassDeclaration, EnumDeclaration, VariableDeclaration all declare
	// one). A VariableExpression returns the symbol it resolved to during
	// TypeCheck; other expressions return nil.
	Symbol() *scope.Symbol

	// SetTemplateType substitutes every occurrence of the template
	// parameter type `formal` with the concrete `actual` type throughout
	// this node's own fields -- not its children; the instantiation pass
	// walks Contained() itself.
	SetTemplateType(formal, actual types.Type)

	// Emit lowers this node to IR via the injected builder, returning the
	// SSA value it produces (a Function returns its function value; return/
	// if statements and class, enum and namespace declarations return nil).
	Emit(b Builder) interface{}
}

// Builder is the capability set irgen exposes to AST nodes during
// emission: blocks and the insertion point, memory and call
// instructions, constants, and the symbol-value bindings. It is a
// package-local interface so ast has no import-time dependency on the
// concrete ir package.
type Builder interface {
	CurrentBlock() interface{}
	SetInsertPoint(block interface{})
	NewBlock(name string) interface{}

	Alloca(t types.Type) interface{}
	Load(ptr interface{}, t types.Type) interface{}
	Store(ptr, val interface{})
	GEP(base interface{}, indices []int, t types.Type) interface{}
	PtrCast(val interface{}, t types.Type) interface{}

	Call(callee interface{}, args []interface{}) interface{}
	Ret(val interface{})

	BinOp(op string, lhs, rhs interface{}, t types.Type) interface{}
	UnOp(op string, operand interface{}, t types.Type) interface{}
	Cmp(op string, lhs, rhs interface{}) interface{}
	Br(cond interface{}, then, els interface{})
	Jump(target interface{})

	ConstInt(v int64, t types.Type) interface{}
	ConstString(s string) interface{}
	ConstBool(v bool) interface{}

	ResolveSymbolValue(sym *scope.Symbol) interface{}
	BindSymbolValue(sym *scope.Symbol, val interface{})
}

// base supplies the fields and default (usually no-op) method bodies
// every node variant shares; concrete node types embed it by value.
type base struct {
	span  token.Span
	scope *scope.Scope
	typ   types.Type
}

func (b *base) Span() token.Span     { return b.span }
func (b *base) Scope() *scope.Scope  { return b.scope }
func (b *base) Type() types.Type     { return b.typ }
func (b *base) Contained() []Node    { return nil }
func (b *base) Symbol() *scope.Symbol { return nil }
func (b *base) SetTemplateType(formal, actual types.Type) {}

func (b *base) TriviallyImplicitCast(dest types.Type) bool { return false }

// substituteIfTemplate is the shared helper every node's SetTemplateType
// override calls on its own field(s): replace typ with actual if it's the
// formal template placeholder. Placeholders are matched by parameter name
// rather than pointer identity -- the two parser passes and the
// instantiation walk each mint their own *types.TemplateType values for
// the same formal.
func substituteIfTemplate(typ, formal, actual types.Type) types.Type {
	switch v := typ.(type) {
	case nil:
		return nil
	case *types.TemplateType:
		if ft, ok := formal.(*types.TemplateType); ok && v.Param == ft.Param {
			return actual
		}
	case *types.PointerType:
		if base := substituteIfTemplate(v.Base, formal, actual); base != v.Base {
			return &types.PointerType{Base: base}
		}
	case *types.ArrayType:
		if base := substituteIfTemplate(v.Base, formal, actual); base != v.Base {
			return &types.ArrayType{Base: base, Count: v.Count}
		}
	case *types.FuncType:
		changed := false
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = substituteIfTemplate(p, formal, actual)
			changed = changed || params[i] != p
		}
		ret := substituteIfTemplate(v.Return, formal, actual)
		if changed || ret != v.Return {
			return &types.FuncType{Params: params, Return: ret, Variadic: v.Variadic}
		}
	}
	return typ
}
