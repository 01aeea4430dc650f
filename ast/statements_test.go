package ast

import (
	"testing"

	"viper/diag"
	"viper/scope"
	"viper/token"
	"viper/types"
)

func TestReturnStatementInsertsWideningCastToFunctionReturnType(t *testing.T) {
	root := scope.NewGlobalScope()
	body := scope.NewScope(root, "", false)
	body.ReturnType = types.Builtin(types.I64)

	value := NewIntegerLiteral(body, 1, token.Span{})
	value.typ = types.Builtin(types.I32)

	ret := NewReturnStatement(body, value, token.Span{})
	ret.TypeCheck()

	if _, ok := ret.Value.(*CastExpression); !ok {
		t.Fatalf("expected a narrower return value to be wrapped in an implicit cast to the function's return type, got %T", ret.Value)
	}
}

func TestReturnStatementAsExpressionReportsError(t *testing.T) {
	diag.Init("silent")
	root := scope.NewGlobalScope()
	ret := NewReturnStatement(root, nil, token.Span{})

	ret.SemanticCheck(false)

	if diag.ShouldProceed() {
		t.Fatalf("expected using 'return' in expression position to report a fatal diagnostic")
	}
}

func TestVariableDeclarationInfersTypeFromInit(t *testing.T) {
	root := scope.NewGlobalScope()
	init := NewIntegerLiteral(root, 1, token.Span{})

	decl := NewVariableDeclaration(root, "x", nil, init, token.Span{})
	decl.TypeCheck()

	if !types.Equal(decl.Type(), types.Builtin(types.I32)) {
		t.Fatalf("expected the declaration's type to be inferred from its initializer, got %v", decl.Type())
	}
	if !types.Equal(decl.Symbol().Type, types.Builtin(types.I32)) {
		t.Fatalf("expected the backing symbol's type to be back-filled from the initializer too, got %v", decl.Symbol().Type)
	}
}

func TestVariableDeclarationWithNoTypeAndNoInitReportsUnknownType(t *testing.T) {
	diag.Init("silent")
	root := scope.NewGlobalScope()
	decl := NewVariableDeclaration(root, "x", nil, nil, token.Span{})

	decl.TypeCheck()

	if diag.ShouldProceed() {
		t.Fatalf("expected a declaration with neither an explicit type nor an initializer to report a fatal diagnostic")
	}
	bt, ok := decl.Type().(*types.BuiltinType)
	if !ok || bt.Kind != types.ErrorType {
		t.Fatalf("expected the declaration to type-check to the error type, got %v", decl.Type())
	}
}

func TestVariableDeclarationEmitBindsScalarToInitializerValue(t *testing.T) {
	root := scope.NewGlobalScope()
	scalarDecl := NewVariableDeclaration(root, "n", types.Builtin(types.I32), NewIntegerLiteral(root, 3, token.Span{}), token.Span{})
	scalarDecl.TypeCheck()

	b := &recordingBuilder{}
	val := scalarDecl.Emit(b)

	if val == nil {
		t.Fatalf("expected a scalar declaration's Emit to return its initializer's emitted value")
	}
	if scalarDecl.Symbol().LatestValue() != val {
		t.Fatalf("expected Emit to bind the symbol to its initializer's value")
	}
}

func TestIfStatementNonBoolConditionReportsError(t *testing.T) {
	diag.Init("silent")
	root := scope.NewGlobalScope()
	cond := NewIntegerLiteral(root, 0, token.Span{})
	// An arbitrary struct-typed "condition" never implicitly converts to
	// bool, forcing the error branch rather than the widening-cast one.
	cond.typ = &types.StructType{TypeName: "S"}

	ifs := NewIfStatement(root, cond, nil, nil, token.Span{})
	ifs.TypeCheck()

	if diag.ShouldProceed() {
		t.Fatalf("expected a non-bool, non-convertible 'if' condition to report a fatal diagnostic")
	}
}

func TestIfStatementSemanticCheckRecursesIntoBothBranches(t *testing.T) {
	root := scope.NewGlobalScope()
	cond := NewBooleanLiteral(root, true, token.Span{})
	thenNode := &fakeCountingNode{}
	elseNode := &fakeCountingNode{}

	ifs := NewIfStatement(root, cond, []Node{thenNode}, []Node{elseNode}, token.Span{})
	ifs.SemanticCheck(true)

	if !thenNode.semanticChecked || !elseNode.semanticChecked {
		t.Fatalf("expected If.SemanticCheck to recurse into both branches")
	}
}

// recordingBuilder is a minimal Builder stand-in: just enough to drive
// the handful of Emit paths exercised here without depending on the
// concrete ir package.
type recordingBuilder struct {
	block interface{}
}

func (r *recordingBuilder) CurrentBlock() interface{}          { return r.block }
func (r *recordingBuilder) SetInsertPoint(block interface{})   { r.block = block }
func (r *recordingBuilder) NewBlock(name string) interface{}   { return name }
func (r *recordingBuilder) Alloca(t types.Type) interface{}    { return "alloca" }
func (r *recordingBuilder) Load(ptr interface{}, t types.Type) interface{} { return ptr }
func (r *recordingBuilder) Store(ptr, val interface{})         {}
func (r *recordingBuilder) GEP(base interface{}, indices []int, t types.Type) interface{} {
	return base
}
func (r *recordingBuilder) PtrCast(val interface{}, t types.Type) interface{} { return val }
func (r *recordingBuilder) Call(callee interface{}, args []interface{}) interface{} {
	return "call"
}
func (r *recordingBuilder) Ret(val interface{}) {}
func (r *recordingBuilder) BinOp(op string, lhs, rhs interface{}, t types.Type) interface{} {
	return lhs
}
func (r *recordingBuilder) UnOp(op string, operand interface{}, t types.Type) interface{} {
	return operand
}
func (r *recordingBuilder) Cmp(op string, lhs, rhs interface{}) interface{} { return true }
func (r *recordingBuilder) Br(cond interface{}, then, els interface{})     {}
func (r *recordingBuilder) Jump(target interface{})                        {}
func (r *recordingBuilder) ConstInt(v int64, t types.Type) interface{}     { return v }
func (r *recordingBuilder) ConstString(s string) interface{}               { return s }
func (r *recordingBuilder) ConstBool(v bool) interface{}                   { return v }
func (r *recordingBuilder) ResolveSymbolValue(sym *scope.Symbol) interface{} {
	return sym.LatestValue()
}
func (r *recordingBuilder) BindSymbolValue(sym *scope.Symbol, val interface{}) {
	sym.Bind(r.block, val)
}
