package ast

import (
	"viper/diag"
	"viper/scope"
	"viper/token"
	"viper/types"
)

// IntegerLiteral is a bare integer constant, typed i32 when built. Where
// context (an assignment, a call argument, a return) needs another
// integer type, TriviallyImplicitCast accepts the conversion whenever the
// value fits the destination width, and the checker wraps the literal in
// an implicit cast.
type IntegerLiteral struct {
	base
	Value int64
}

func NewIntegerLiteral(sc *scope.Scope, value int64, span token.Span) *IntegerLiteral {
	return &IntegerLiteral{base: base{span: span, scope: sc, typ: types.Builtin(types.I32)}, Value: value}
}

func (l *IntegerLiteral) Clone(into *scope.Scope) Node { return NewIntegerLiteral(into, l.Value, l.span) }
func (l *IntegerLiteral) TypeCheck()                   {}
func (l *IntegerLiteral) SemanticCheck(statement bool) {
	if statement {
		diag.ReportCompilerWarning(l.span.Start.File, &l.span, diag.KindUnusedStatement, "expression result unused")
	}
}

func (l *IntegerLiteral) TriviallyImplicitCast(dest types.Type) bool {
	b, ok := types.Resolve(dest).(*types.BuiltinType)
	if !ok {
		return false
	}
	switch b.Kind {
	case types.I8, types.I16, types.I32, types.I64:
		return fitsWidth(l.Value, b.Size())
	case types.U8, types.U16, types.U32, types.U64:
		bits := uint(b.Size() * 8)
		return l.Value >= 0 && (bits >= 64 || l.Value < int64(1)<<bits)
	}
	return false
}

func fitsWidth(v int64, bytes int) bool {
	bits := uint(bytes * 8)
	if bits >= 64 {
		return true
	}
	limit := int64(1) << (bits - 1)
	return v >= -limit && v < limit
}

func (l *IntegerLiteral) Emit(b Builder) interface{} { return b.ConstInt(l.Value, l.typ) }

// StringLiteral is a `"..."` literal.
type StringLiteral struct {
	base
	Value string
}

func NewStringLiteral(sc *scope.Scope, value string, span token.Span) *StringLiteral {
	return &StringLiteral{base: base{span: span, scope: sc, typ: &types.PointerType{Base: types.Builtin(types.I8)}}, Value: value}
}

func (l *StringLiteral) Clone(into *scope.Scope) Node { return NewStringLiteral(into, l.Value, l.span) }
func (l *StringLiteral) TypeCheck()                   {}
func (l *StringLiteral) SemanticCheck(statement bool) {
	if statement {
		diag.ReportCompilerWarning(l.span.Start.File, &l.span, diag.KindUnusedStatement, "expression result unused")
	}
}
func (l *StringLiteral) Emit(b Builder) interface{} { return b.ConstString(l.Value) }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	base
	Value bool
}

func NewBooleanLiteral(sc *scope.Scope, value bool, span token.Span) *BooleanLiteral {
	return &BooleanLiteral{base: base{span: span, scope: sc, typ: types.Builtin(types.Bool)}, Value: value}
}

func (l *BooleanLiteral) Clone(into *scope.Scope) Node { return NewBooleanLiteral(into, l.Value, l.span) }
func (l *BooleanLiteral) TypeCheck()                   {}
func (l *BooleanLiteral) SemanticCheck(statement bool) {
	if statement {
		diag.ReportCompilerWarning(l.span.Start.File, &l.span, diag.KindUnusedStatement, "expression result unused")
	}
}
func (l *BooleanLiteral) Emit(b Builder) interface{} { return b.ConstBool(l.Value) }

// VariableExpression is an identifier reference, possibly namespace
// qualified (`A::B::name`) or an implicit `this.field`/`this.method()`
// reference resolved by falling back to the enclosing class body.
type VariableExpression struct {
	base
	Names              []string
	TemplateParameters []types.Type

	isImplicitMember bool
	sym              *scope.Symbol
}

func NewVariableExpression(sc *scope.Scope, names []string, span token.Span) *VariableExpression {
	return &VariableExpression{base: base{span: span, scope: sc}, Names: names}
}

func (v *VariableExpression) Name() string      { return v.Names[len(v.Names)-1] }
func (v *VariableExpression) IsQualified() bool { return len(v.Names) > 1 }
func (v *VariableExpression) IsImplicitMember() bool { return v.isImplicitMember }
func (v *VariableExpression) Symbol() *scope.Symbol  { return v.sym }

func (v *VariableExpression) Clone(into *scope.Scope) Node {
	return NewVariableExpression(into, v.Names, v.span)
}

func reconstructNames(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += "::"
		}
		s += n
	}
	return s
}

func (v *VariableExpression) TypeCheck() {
	// Locals and parameters declared inside the enclosing function body
	// shadow implicit members. The walk stops at the first global scope
	// (the class body or a namespace), so a class field never loses to a
	// same-named global.
	if !v.IsQualified() {
		for cur := v.scope; cur != nil && !cur.IsGlobal; cur = cur.Parent {
			if sym := cur.LookupLocal(v.Name()); sym != nil {
				v.sym = sym
				v.typ = sym.Type
				return
			}
		}
	}

	if owner := v.scope.FindOwner(); owner != nil {
		if field, ok := owner.Field(v.Name()); ok {
			v.typ = field.Type
			v.isImplicitMember = true
			return
		}
		if method, ok := owner.Method(v.Name()); ok {
			v.typ = method.Func.Return
			v.isImplicitMember = true
			return
		}
	}

	var sym *scope.Symbol
	if v.IsQualified() {
		sym = v.scope.ResolveQualifiedSymbol(v.Names)
	} else {
		sym = v.scope.ResolveSymbol(v.Name())
	}

	if sym == nil {
		diag.ReportCompilerError(v.span.Start.File, &v.span, diag.KindName, "undeclared identifier '"+reconstructNames(v.Names)+"'")
		v.typ = types.Builtin(types.ErrorType)
		return
	}

	v.sym = sym
	v.typ = sym.Type
}

func (v *VariableExpression) SemanticCheck(statement bool) {}

func (v *VariableExpression) Emit(b Builder) interface{} {
	if v.isImplicitMember {
		self := v.scope.ResolveSymbol("this")
		selfVal := b.ResolveSymbolValue(self)
		owner := v.scope.FindOwner()
		field, _ := owner.Field(v.Name())
		gep := b.GEP(selfVal, []int{field.Offset}, field.Type)
		return b.Load(gep, field.Type)
	}

	return b.ResolveSymbolValue(v.sym)
}

// MemberAccess is `struct.field`/`struct.method()` or, through a
// pointer, `ptr->field`/`ptr->method()`.
type MemberAccess struct {
	base
	Struct       Node
	Field        string
	ThroughPtr   bool
	OperatorSpan token.Span

	structType *types.StructType
}

func NewMemberAccess(sc *scope.Scope, structNode Node, field string, throughPtr bool, opSpan, fieldSpan token.Span) *MemberAccess {
	return &MemberAccess{base: base{span: fieldSpan, scope: sc}, Struct: structNode, Field: field, ThroughPtr: throughPtr, OperatorSpan: opSpan}
}

func (m *MemberAccess) Contained() []Node { return []Node{m.Struct} }

func (m *MemberAccess) Clone(into *scope.Scope) Node {
	return NewMemberAccess(into, m.Struct.Clone(into), m.Field, m.ThroughPtr, m.OperatorSpan, m.span)
}

func (m *MemberAccess) TypeCheck() {
	m.Struct.TypeCheck()

	if m.ThroughPtr {
		ptr, ok := types.Resolve(m.Struct.Type()).(*types.PointerType)
		if !ok {
			diag.ReportCompilerError(m.OperatorSpan.Start.File, &m.OperatorSpan, diag.KindType, "'operator->' used on non-pointer value")
			m.typ = types.Builtin(types.ErrorType)
			return
		}
		st, ok := types.Resolve(ptr.Base).(*types.StructType)
		if !ok {
			diag.ReportCompilerError(m.OperatorSpan.Start.File, &m.OperatorSpan, diag.KindType, "'operator->' used on non-pointer-to-struct value")
			m.typ = types.Builtin(types.ErrorType)
			return
		}
		m.structType = st
	} else {
		st, ok := types.Resolve(m.Struct.Type()).(*types.StructType)
		if !ok {
			diag.ReportCompilerError(m.OperatorSpan.Start.File, &m.OperatorSpan, diag.KindType, "'operator.' used on non-struct value")
			m.typ = types.Builtin(types.ErrorType)
			return
		}
		m.structType = st
	}

	field, ok := m.structType.Field(m.Field)
	if !ok {
		diag.ReportCompilerError(m.span.Start.File, &m.span, diag.KindType,
			"class "+m.structType.Name()+" has no member named '"+m.Field+"'")
		m.typ = types.Builtin(types.ErrorType)
		return
	}

	if !field.Public && m.scope.FindOwner() != m.structType {
		reportPrivateAccess(m.span, m.Field, m.structType.Name())
		m.typ = types.Builtin(types.ErrorType)
		return
	}

	m.typ = field.Type
}

func (m *MemberAccess) SemanticCheck(statement bool) {
	m.Struct.SemanticCheck(statement)
	if statement {
		diag.ReportCompilerWarning(m.span.Start.File, &m.span, diag.KindUnusedStatement, "expression result unused")
	}
}

// Emit addresses the field off the receiver's pointer. A by-value struct
// local is already bound to its alloca slot, so `.` and `->` both start
// from a pointer value here.
func (m *MemberAccess) Emit(b Builder) interface{} {
	base := m.Struct.Emit(b)
	field, _ := m.structType.Field(m.Field)
	gep := b.GEP(base, []int{field.Offset}, field.Type)
	return b.Load(gep, field.Type)
}

// CallExpression is `callee(args...)`. Overload resolution against the
// candidate set found for `callee`'s name(s) happens during TypeCheck
// (scope.ResolveOverload, then scope.BestViable), and the winning symbol
// is cached on the node for Emit to use.
type CallExpression struct {
	base
	Callee     Node
	Parameters []Node

	isMemberFunction bool
	receiverType     types.Type
	best             *scope.Symbol
}

func NewCallExpression(sc *scope.Scope, callee Node, parameters []Node) *CallExpression {
	return &CallExpression{base: base{span: callee.Span(), scope: sc}, Callee: callee, Parameters: parameters}
}

func (c *CallExpression) Contained() []Node {
	return append([]Node{c.Callee}, c.Parameters...)
}

func (c *CallExpression) Clone(into *scope.Scope) Node {
	params := make([]Node, len(c.Parameters))
	for i, p := range c.Parameters {
		params[i] = p.Clone(into)
	}
	return NewCallExpression(into, c.Callee.Clone(into), params)
}

func (c *CallExpression) TypeCheck() {
	c.Callee.TypeCheck()
	for _, p := range c.Parameters {
		p.TypeCheck()
	}

	if ve, ok := c.Callee.(*VariableExpression); ok && len(ve.TemplateParameters) > 0 {
		c.typeCheckTemplateCall(ve)
		return
	}

	var candidates []*scope.Symbol
	errName := ""

	switch callee := c.Callee.(type) {
	case *VariableExpression:
		errName = callee.Name()
		if callee.IsImplicitMember() {
			owner := c.scope.FindOwner()
			names := append(append([]string{}, ownerNames(owner)...), callee.Name())
			candidates = c.scope.CandidateFunctions(names)
			errName = owner.Name() + "::" + callee.Name()
			c.isMemberFunction = true
			c.receiverType = c.scope.ResolveSymbol("this").Type
		} else if callee.IsQualified() {
			candidates = c.scope.CandidateFunctions(callee.Names)
		} else {
			candidates = c.scope.CandidateFunctions([]string{callee.Name()})
		}
	case *MemberAccess:
		names := append(append([]string{}, ownerNames(callee.structType)...), callee.Field)
		candidates = c.scope.CandidateFunctions(names)
		errName = callee.structType.Name() + "::" + callee.Field
		c.isMemberFunction = true
		c.receiverType = &types.PointerType{Base: callee.structType}
	default:
		diag.ReportCompilerError(c.span.Start.File, &c.span, diag.KindName,
			"'"+c.Callee.Type().Name()+"' cannot be used as a function")
		c.typ = types.Builtin(types.ErrorType)
		return
	}

	offset := 0
	if c.isMemberFunction {
		offset = 1
	}

	argTypes := make([]types.Type, len(c.Parameters)+offset)
	for i, p := range c.Parameters {
		argTypes[i+offset] = p.Type()
	}
	if c.isMemberFunction {
		argTypes[0] = c.receiverType
	}

	viable := scope.ResolveOverload(candidates, argTypes, offset)
	best, ambiguous := scope.BestViable(viable)

	if ambiguous {
		diag.ReportCompilerError(c.span.Start.File, &c.span, diag.KindName, "call to '"+errName+"()' is ambiguous")
		c.typ = types.Builtin(types.ErrorType)
		return
	}
	if best == nil {
		diag.ReportCompilerError(c.span.Start.File, &c.span, diag.KindName, "no matching function for call to '"+errName+"()'")
		c.typ = types.Builtin(types.ErrorType)
		return
	}

	c.best = best
	fn := types.Resolve(best.Type).(*types.FuncType)
	c.typ = fn.Return

	for i := range c.Parameters {
		want := fn.Params[i+offset]
		if !types.Equal(c.Parameters[i].Type(), want) {
			if c.Parameters[i].TriviallyImplicitCast(want) || c.Parameters[i].Type().CastRankTo(want) >= types.ImplicitWarning {
				c.Parameters[i] = &CastExpression{base: base{span: c.Parameters[i].Span(), scope: c.scope, typ: want}, Value: c.Parameters[i], Explicit: false}
			} else {
				diag.ReportCompilerError(c.span.Start.File, &c.span, diag.KindType, "no matching function for call to '"+errName+"()'")
				c.typ = types.Builtin(types.ErrorType)
			}
		}
	}
}

// typeCheckTemplateCall handles `callee<T1,...>(args)`: consult the
// generic's cache by exact actual-parameter equality, instantiate on a
// miss via ast.Instantiator, then dispatch exactly like an ordinary
// resolved call against the (now concrete) instantiation's symbol,
// with the same implicit-cast insertion the non-template path
// performs.
func (c *CallExpression) typeCheckTemplateCall(ve *VariableExpression) {
	genSym := ve.Symbol()
	if genSym == nil || genSym.Template == nil {
		diag.ReportCompilerError(c.span.Start.File, &c.span, diag.KindType,
			"could not find templated function "+ve.Name()+" in scope")
		c.typ = types.Builtin(types.ErrorType)
		return
	}

	if len(ve.TemplateParameters) != len(genSym.Template.Parameters) {
		diag.ReportCompilerError(c.span.Start.File, &c.span, diag.KindType, "template argument list mismatch")
		c.typ = types.Builtin(types.ErrorType)
		return
	}

	inst, ok := genSym.Template.FindInstantiation(ve.TemplateParameters)
	if !ok {
		if Instantiator == nil {
			c.typ = types.Builtin(types.ErrorType)
			return
		}
		inst = Instantiator(genSym, ve.TemplateParameters, c.span, c.span.Start.File)
	}
	if inst == nil {
		c.typ = types.Builtin(types.ErrorType)
		return
	}

	fnNode, ok := inst.Body.(*Function)
	if !ok || fnNode.Symbol() == nil {
		c.typ = types.Builtin(types.ErrorType)
		return
	}

	c.best = fnNode.Symbol()
	fn := types.Resolve(c.best.Type).(*types.FuncType)
	c.typ = fn.Return

	for i := range c.Parameters {
		if i >= len(fn.Params) {
			break
		}
		want := fn.Params[i]
		if !types.Equal(c.Parameters[i].Type(), want) {
			if c.Parameters[i].TriviallyImplicitCast(want) || c.Parameters[i].Type().CastRankTo(want) >= types.ImplicitWarning {
				c.Parameters[i] = &CastExpression{base: base{span: c.Parameters[i].Span(), scope: c.scope, typ: want}, Value: c.Parameters[i], Explicit: false}
			} else {
				diag.ReportCompilerError(c.span.Start.File, &c.span, diag.KindType, "no matching function for call to '"+ve.Name()+"()'")
				c.typ = types.Builtin(types.ErrorType)
			}
		}
	}
}

func ownerNames(st *types.StructType) []string {
	if st == nil {
		return nil
	}
	return append(append([]string{}, st.Namespaces...), st.TypeName)
}

func (c *CallExpression) SemanticCheck(statement bool) {
	c.Callee.SemanticCheck(false)
	for _, p := range c.Parameters {
		p.SemanticCheck(false)
	}
	if statement && c.best != nil && c.best.Pure {
		diag.ReportCompilerWarning(c.span.Start.File, &c.span, diag.KindUnusedPureCall, "statement has no effect")
	}
}

func (c *CallExpression) Emit(b Builder) interface{} {
	callee := b.ResolveSymbolValue(c.best)

	var args []interface{}
	if c.isMemberFunction {
		if v, ok := c.Callee.(*VariableExpression); ok {
			args = append(args, b.ResolveSymbolValue(v.scope.ResolveSymbol("this")))
		} else if m, ok := c.Callee.(*MemberAccess); ok {
			args = append(args, m.Struct.Emit(b))
		}
	}
	for _, p := range c.Parameters {
		args = append(args, p.Emit(b))
	}

	return b.Call(callee, args)
}

// CastExpression is either an explicit `cast<T>(value)` the parser
// produced, or an implicit cast the type checker inserted when a value's
// type didn't exactly match a required destination type but converts to
// it losslessly (Implicit) or with a warning (ImplicitWarning).
type CastExpression struct {
	base
	Value    Node
	Explicit bool
}

func NewCastExpression(sc *scope.Scope, value Node, dest types.Type, span token.Span) *CastExpression {
	return &CastExpression{base: base{span: span, scope: sc, typ: dest}, Value: value, Explicit: true}
}

func (c *CastExpression) Contained() []Node { return []Node{c.Value} }

// SetTemplateType substitutes an explicit `cast<T>(...)` destination type
// fixed at parse time -- TypeCheck never recomputes c.typ from scratch when
// it's already non-nil, unlike most expression nodes, so it needs its own
// override rather than relying on a post-substitution TypeCheck rerun.
func (c *CastExpression) SetTemplateType(formal, actual types.Type) {
	c.typ = substituteIfTemplate(c.typ, formal, actual)
}

func (c *CastExpression) Clone(into *scope.Scope) Node {
	return &CastExpression{base: base{span: c.span, scope: into, typ: c.typ}, Value: c.Value.Clone(into), Explicit: c.Explicit}
}

func (c *CastExpression) TypeCheck() {
	c.Value.TypeCheck()
	if c.Explicit {
		rank := c.Value.Type().CastRankTo(c.typ)
		if rank == types.Disallowed {
			diag.ReportCompilerError(c.span.Start.File, &c.span, diag.KindType,
				"cannot cast value of type '"+c.Value.Type().Name()+"' to '"+c.typ.Name()+"'")
		}
	}
}

func (c *CastExpression) SemanticCheck(statement bool) {
	c.Value.SemanticCheck(false)
}

func (c *CastExpression) Emit(b Builder) interface{} {
	val := c.Value.Emit(b)
	if _, ok := c.typ.(*types.PointerType); ok {
		return b.PtrCast(val, c.typ)
	}
	return b.UnOp("cast", val, c.typ)
}

// BinaryOperator enumerates the binary operators.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAssign
)

var binaryOpText = map[BinaryOperator]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpEqual: "==", OpNotEqual: "!=",
	OpLess: "<", OpLessEqual: "<=", OpGreater: ">", OpGreaterEqual: ">=",
	OpAssign: "=",
}

func (op BinaryOperator) isComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// BinaryExpression is `lhs op rhs`.
type BinaryExpression struct {
	base
	Lhs, Rhs Node
	Op       BinaryOperator
}

func NewBinaryExpression(sc *scope.Scope, lhs Node, op BinaryOperator, rhs Node, span token.Span) *BinaryExpression {
	return &BinaryExpression{base: base{span: span, scope: sc}, Lhs: lhs, Rhs: rhs, Op: op}
}

func (be *BinaryExpression) Contained() []Node { return []Node{be.Lhs, be.Rhs} }

func (be *BinaryExpression) Clone(into *scope.Scope) Node {
	return NewBinaryExpression(into, be.Lhs.Clone(into), be.Op, be.Rhs.Clone(into), be.span)
}

func (be *BinaryExpression) TypeCheck() {
	be.Lhs.TypeCheck()
	be.Rhs.TypeCheck()

	if be.Op == OpAssign {
		be.typ = be.Lhs.Type()
		if !types.Equal(be.Rhs.Type(), be.typ) {
			if be.Rhs.TriviallyImplicitCast(be.typ) || be.Rhs.Type().CastRankTo(be.typ) >= types.ImplicitWarning {
				be.Rhs = &CastExpression{base: base{span: be.Rhs.Span(), scope: be.scope, typ: be.typ}, Value: be.Rhs, Explicit: false}
			} else {
				diag.ReportCompilerError(be.span.Start.File, &be.span, diag.KindType,
					"value of type '"+be.Rhs.Type().Name()+"' is not compatible with variable of type '"+be.typ.Name()+"'")
			}
		}
		return
	}

	if be.Op.isComparison() {
		be.typ = types.Builtin(types.Bool)
		return
	}

	// arithmetic: widen to whichever side's type the other converts to
	// implicitly; equal types need no conversion.
	if types.Equal(be.Lhs.Type(), be.Rhs.Type()) {
		be.typ = be.Lhs.Type()
		return
	}

	if be.Rhs.Type().CastRankTo(be.Lhs.Type()) >= types.ImplicitWarning {
		be.Rhs = &CastExpression{base: base{span: be.Rhs.Span(), scope: be.scope, typ: be.Lhs.Type()}, Value: be.Rhs, Explicit: false}
		be.typ = be.Lhs.Type()
	} else if be.Lhs.Type().CastRankTo(be.Rhs.Type()) >= types.ImplicitWarning {
		be.Lhs = &CastExpression{base: base{span: be.Lhs.Span(), scope: be.scope, typ: be.Rhs.Type()}, Value: be.Lhs, Explicit: false}
		be.typ = be.Rhs.Type()
	} else {
		diag.ReportCompilerError(be.span.Start.File, &be.span, diag.KindType,
			"no operator '"+binaryOpText[be.Op]+"' matches operand types '"+be.Lhs.Type().Name()+"' and '"+be.Rhs.Type().Name()+"'")
		be.typ = types.Builtin(types.ErrorType)
	}
}

func (be *BinaryExpression) SemanticCheck(statement bool) {
	be.Lhs.SemanticCheck(false)
	be.Rhs.SemanticCheck(false)
	if statement && be.Op != OpAssign {
		diag.ReportCompilerWarning(be.span.Start.File, &be.span, diag.KindUnusedStatement, "expression result unused")
	}
}

func (be *BinaryExpression) Emit(b Builder) interface{} {
	if be.Op == OpAssign {
		rhs := be.Rhs.Emit(b)
		switch lhs := be.Lhs.(type) {
		case *VariableExpression:
			if lhs.IsImplicitMember() {
				self := b.ResolveSymbolValue(lhs.scope.ResolveSymbol("this"))
				field, _ := lhs.scope.FindOwner().Field(lhs.Name())
				b.Store(b.GEP(self, []int{field.Offset}, field.Type), rhs)
			} else if lhs.Symbol() != nil {
				b.BindSymbolValue(lhs.Symbol(), rhs)
			}
		case *MemberAccess:
			base := lhs.Struct.Emit(b)
			field, _ := lhs.structType.Field(lhs.Field)
			b.Store(b.GEP(base, []int{field.Offset}, field.Type), rhs)
		case *UnaryExpression:
			if lhs.Op == OpDeref {
				b.Store(lhs.Operand.Emit(b), rhs)
			}
		}
		return rhs
	}

	lhs := be.Lhs.Emit(b)
	rhs := be.Rhs.Emit(b)
	if be.Op.isComparison() {
		return b.Cmp(binaryOpText[be.Op], lhs, rhs)
	}
	return b.BinOp(binaryOpText[be.Op], lhs, rhs, be.typ)
}

// UnaryOperator enumerates the prefix unary operators.
type UnaryOperator int

const (
	OpNegate UnaryOperator = iota
	OpAddressOf
	OpDeref
	OpNot
)

// UnaryExpression is a prefix `-x`, `&x`, `*x`, or `!x`.
type UnaryExpression struct {
	base
	Operand Node
	Op      UnaryOperator
}

func NewUnaryExpression(sc *scope.Scope, op UnaryOperator, operand Node, span token.Span) *UnaryExpression {
	return &UnaryExpression{base: base{span: span, scope: sc}, Operand: operand, Op: op}
}

func (u *UnaryExpression) Contained() []Node { return []Node{u.Operand} }

func (u *UnaryExpression) Clone(into *scope.Scope) Node {
	return NewUnaryExpression(into, u.Op, u.Operand.Clone(into), u.span)
}

func (u *UnaryExpression) TypeCheck() {
	u.Operand.TypeCheck()

	switch u.Op {
	case OpAddressOf:
		u.typ = &types.PointerType{Base: u.Operand.Type()}
	case OpDeref:
		p, ok := types.Resolve(u.Operand.Type()).(*types.PointerType)
		if !ok {
			diag.ReportCompilerError(u.span.Start.File, &u.span, diag.KindType, "'operator*' used on non-pointer value")
			u.typ = types.Builtin(types.ErrorType)
			return
		}
		u.typ = p.Base
	case OpNot:
		u.typ = types.Builtin(types.Bool)
	default:
		u.typ = u.Operand.Type()
	}
}

func (u *UnaryExpression) SemanticCheck(statement bool) {
	u.Operand.SemanticCheck(false)
	if statement {
		diag.ReportCompilerWarning(u.span.Start.File, &u.span, diag.KindUnusedStatement, "expression result unused")
	}
}

var unaryOpText = map[UnaryOperator]string{
	OpNegate: "-", OpAddressOf: "&", OpDeref: "*", OpNot: "!",
}

func (u *UnaryExpression) Emit(b Builder) interface{} {
	operand := u.Operand.Emit(b)
	return b.UnOp(unaryOpText[u.Op], operand, u.typ)
}
