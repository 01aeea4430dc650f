package ast

import (
	"viper/diag"
	"viper/scope"
	"viper/token"
	"viper/types"
)

// ReturnStatement returns Value (nil for a bare `return;`) from the
// enclosing function.
type ReturnStatement struct {
	base
	Value Node
}

func NewReturnStatement(sc *scope.Scope, value Node, span token.Span) *ReturnStatement {
	return &ReturnStatement{base: base{span: span, scope: sc, typ: types.Builtin(types.Void)}, Value: value}
}

func (r *ReturnStatement) Contained() []Node {
	if r.Value == nil {
		return nil
	}
	return []Node{r.Value}
}

func (r *ReturnStatement) Clone(into *scope.Scope) Node {
	var v Node
	if r.Value != nil {
		v = r.Value.Clone(into)
	}
	return NewReturnStatement(into, v, r.span)
}

func (r *ReturnStatement) TypeCheck() {
	if r.Value == nil {
		return
	}
	r.Value.TypeCheck()

	want := r.scope.ReturnType
	if want != nil && !types.Equal(r.Value.Type(), want) {
		if r.Value.TriviallyImplicitCast(want) || r.Value.Type().CastRankTo(want) >= types.ImplicitWarning {
			r.Value = &CastExpression{base: base{span: r.Value.Span(), scope: r.scope, typ: want}, Value: r.Value, Explicit: false}
		} else {
			diag.ReportCompilerError(r.span.Start.File, &r.span, diag.KindType,
				"value of type '"+r.Value.Type().Name()+"' is not compatible with the function's return type '"+want.Name()+"'")
		}
	}
}

func (r *ReturnStatement) SemanticCheck(statement bool) {
	if r.Value != nil {
		r.Value.SemanticCheck(false)
	}
	if !statement {
		diag.ReportCompilerError(r.span.Start.File, &r.span, diag.KindParse, "'return' statement used as an expression")
	}
}

func (r *ReturnStatement) Emit(b Builder) interface{} {
	if r.Value == nil {
		b.Ret(nil)
		return nil
	}
	b.Ret(r.Value.Emit(b))
	return nil
}

// VariableDeclaration is a `let name[: type] [= init];` local. When Type
// is nil at construction, TypeCheck infers it from Init and back-fills
// the symbol -- the "unknown type" path only triggers when both are
// absent.
type VariableDeclaration struct {
	base
	Name string
	Init Node

	sym *scope.Symbol
}

func NewVariableDeclaration(sc *scope.Scope, name string, declType types.Type, init Node, span token.Span) *VariableDeclaration {
	sym := scope.NewSymbol(name, declType, sc)
	sc.AddSymbol(sym)
	return &VariableDeclaration{base: base{span: span, scope: sc, typ: declType}, Name: name, Init: init, sym: sym}
}

func (v *VariableDeclaration) Symbol() *scope.Symbol { return v.sym }

// SetTemplateType substitutes an explicit `let y: T = ...` annotation fixed
// at parse time -- like CastExpression, TypeCheck never recomputes v.typ
// from scratch once it's non-nil, so a post-clone TypeCheck rerun alone
// wouldn't pick up the substitution.
func (v *VariableDeclaration) SetTemplateType(formal, actual types.Type) {
	v.typ = substituteIfTemplate(v.typ, formal, actual)
	if v.sym != nil {
		v.sym.Type = v.typ
	}
}

func (v *VariableDeclaration) Contained() []Node {
	if v.Init == nil {
		return nil
	}
	return []Node{v.Init}
}

func (v *VariableDeclaration) Clone(into *scope.Scope) Node {
	var init Node
	if v.Init != nil {
		init = v.Init.Clone(into)
	}
	return NewVariableDeclaration(into, v.Name, v.typ, init, v.span)
}

func (v *VariableDeclaration) TypeCheck() {
	if v.typ == nil {
		if v.Init == nil {
			diag.ReportCompilerError(v.span.Start.File, &v.span, diag.KindType, "object '"+v.Name+"' has unknown type")
			v.typ = types.Builtin(types.ErrorType)
			return
		}

		v.Init.TypeCheck()
		v.typ = v.Init.Type()
		v.sym.Type = v.typ
	}

	if !v.typ.IsObject() {
		diag.ReportCompilerError(v.span.Start.File, &v.span, diag.KindType, "may not create object of type '"+v.typ.Name()+"'")
		v.typ = types.Builtin(types.ErrorType)
		return
	}

	if v.Init == nil {
		return
	}

	v.Init.TypeCheck()
	if !types.Equal(v.Init.Type(), v.typ) {
		if v.Init.TriviallyImplicitCast(v.typ) || v.Init.Type().CastRankTo(v.typ) >= types.ImplicitWarning {
			v.Init = &CastExpression{base: base{span: v.Init.Span(), scope: v.scope, typ: v.typ}, Value: v.Init, Explicit: false}
		} else {
			diag.ReportCompilerError(v.Init.Span().Start.File, ptrSpan(v.Init.Span()), diag.KindType,
				"value of type '"+v.Init.Type().Name()+"' is not compatible with variable of type '"+v.typ.Name()+"'")
		}
	}
}

func (v *VariableDeclaration) SemanticCheck(statement bool) {
	if v.Init != nil {
		v.Init.SemanticCheck(false)
	}
	if !statement {
		diag.ReportCompilerError(v.span.Start.File, &v.span, diag.KindParse, "'let' statement used as an expression")
	}
}

func (v *VariableDeclaration) Emit(b Builder) interface{} {
	if v.typ.IsStruct() {
		ptr := b.Alloca(v.typ)
		v.sym.Bind(b.CurrentBlock(), ptr)
		return ptr
	}

	if v.Init != nil {
		val := v.Init.Emit(b)
		v.sym.Bind(b.CurrentBlock(), val)
		return val
	}

	return nil
}

// IfStatement is `if (cond) { then } [else { els }]`.
type IfStatement struct {
	base
	Cond Node
	Then []Node
	Else []Node
}

func NewIfStatement(sc *scope.Scope, cond Node, then, els []Node, span token.Span) *IfStatement {
	return &IfStatement{base: base{span: span, scope: sc, typ: types.Builtin(types.Void)}, Cond: cond, Then: then, Else: els}
}

func (i *IfStatement) Contained() []Node {
	nodes := append([]Node{i.Cond}, i.Then...)
	return append(nodes, i.Else...)
}

func (i *IfStatement) Clone(into *scope.Scope) Node {
	then := make([]Node, len(i.Then))
	for idx, n := range i.Then {
		then[idx] = n.Clone(into)
	}
	els := make([]Node, len(i.Else))
	for idx, n := range i.Else {
		els[idx] = n.Clone(into)
	}
	return NewIfStatement(into, i.Cond.Clone(into), then, els, i.span)
}

func (i *IfStatement) TypeCheck() {
	i.Cond.TypeCheck()
	boolType := types.Builtin(types.Bool)
	if !types.Equal(i.Cond.Type(), boolType) {
		if i.Cond.Type().CastRankTo(boolType) >= types.ImplicitWarning {
			i.Cond = &CastExpression{base: base{span: i.Cond.Span(), scope: i.scope, typ: boolType}, Value: i.Cond, Explicit: false}
		} else {
			diag.ReportCompilerError(i.Cond.Span().Start.File, ptrSpan(i.Cond.Span()), diag.KindType, "condition of 'if' statement must be of type 'bool'")
		}
	}
	for _, n := range i.Then {
		n.TypeCheck()
	}
	for _, n := range i.Else {
		n.TypeCheck()
	}
}

func (i *IfStatement) SemanticCheck(statement bool) {
	i.Cond.SemanticCheck(false)
	for _, n := range i.Then {
		n.SemanticCheck(true)
	}
	for _, n := range i.Else {
		n.SemanticCheck(true)
	}
}

func (i *IfStatement) Emit(b Builder) interface{} {
	cond := i.Cond.Emit(b)
	thenBlock := b.NewBlock("if.then")
	elseBlock := b.NewBlock("if.else")
	mergeBlock := b.NewBlock("if.merge")

	b.Br(cond, thenBlock, elseBlock)

	b.SetInsertPoint(thenBlock)
	for _, n := range i.Then {
		n.Emit(b)
	}
	b.Jump(mergeBlock)

	b.SetInsertPoint(elseBlock)
	for _, n := range i.Else {
		n.Emit(b)
	}
	b.Jump(mergeBlock)

	b.SetInsertPoint(mergeBlock)
	return nil
}

func ptrSpan(s token.Span) *token.Span { return &s }
