package ast

import (
	"testing"

	"viper/diag"
	"viper/scope"
	"viper/token"
	"viper/types"
)

func init() {
	// VariableExpression/MemberAccess/CastExpression's error paths report
	// through the global diag logger; keep it quiet for the whole package.
	diag.Init("silent")
}

func TestIntegerLiteralTriviallyImplicitCastRespectsWidth(t *testing.T) {
	sc := scope.NewGlobalScope()
	lit := NewIntegerLiteral(sc, 200, token.Span{})

	if !lit.TriviallyImplicitCast(types.Builtin(types.I32)) {
		t.Fatalf("expected 200 to fit an i32 destination")
	}
	if lit.TriviallyImplicitCast(types.Builtin(types.I8)) {
		t.Fatalf("expected 200 not to fit a signed i8 destination (max 127)")
	}
	if !lit.TriviallyImplicitCast(types.Builtin(types.U8)) {
		t.Fatalf("expected 200 to fit an unsigned u8 destination")
	}
}

func TestIntegerLiteralTriviallyImplicitCastRejectsNonIntegerDest(t *testing.T) {
	sc := scope.NewGlobalScope()
	lit := NewIntegerLiteral(sc, 1, token.Span{})

	if lit.TriviallyImplicitCast(types.Builtin(types.Bool)) {
		t.Fatalf("expected an integer literal never to trivially cast to bool")
	}
}

func TestVariableExpressionResolvesDeclaredSymbol(t *testing.T) {
	sc := scope.NewGlobalScope()
	sym := scope.NewSymbol("x", types.Builtin(types.I32), sc)
	sc.AddSymbol(sym)

	v := NewVariableExpression(sc, []string{"x"}, token.Span{})
	v.TypeCheck()

	if v.Symbol() != sym {
		t.Fatalf("expected TypeCheck to resolve and cache the declared symbol")
	}
	if !types.Equal(v.Type(), types.Builtin(types.I32)) {
		t.Fatalf("expected the variable's type to be the symbol's type, got %v", v.Type())
	}
}

func TestVariableExpressionUndeclaredReportsErrorType(t *testing.T) {
	sc := scope.NewGlobalScope()
	v := NewVariableExpression(sc, []string{"missing"}, token.Span{})
	v.TypeCheck()

	bt, ok := v.Type().(*types.BuiltinType)
	if !ok || bt.Kind != types.ErrorType {
		t.Fatalf("expected an undeclared identifier to type-check to the sentinel error type, got %v", v.Type())
	}
}

func TestVariableExpressionResolvesImplicitFieldViaOwner(t *testing.T) {
	st := &types.StructType{
		TypeName: "C",
		Fields:   []types.StructField{{Name: "v", Type: types.Builtin(types.I32), Offset: 0, Public: true}},
	}
	root := scope.NewGlobalScope()
	methodScope := scope.NewScope(root, "", false)
	methodScope.Owner = st

	v := NewVariableExpression(methodScope, []string{"v"}, token.Span{})
	v.TypeCheck()

	if !v.IsImplicitMember() {
		t.Fatalf("expected a bare field name inside a method body to resolve as an implicit 'this.field' reference")
	}
	if !types.Equal(v.Type(), types.Builtin(types.I32)) {
		t.Fatalf("expected the implicit member's type to be the field's type, got %v", v.Type())
	}
}

func TestMemberAccessPrivateFieldFromOutsideIsRejected(t *testing.T) {
	st := &types.StructType{
		TypeName: "C",
		Fields:   []types.StructField{{Name: "secret", Type: types.Builtin(types.I32), Offset: 0, Public: false}},
	}
	root := scope.NewGlobalScope()
	sym := scope.NewSymbol("c", st, root)
	root.AddSymbol(sym)
	receiver := NewVariableExpression(root, []string{"c"}, token.Span{})
	receiver.TypeCheck()

	access := NewMemberAccess(root, receiver, "secret", false, token.Span{}, token.Span{})
	access.TypeCheck()

	bt, ok := access.Type().(*types.BuiltinType)
	if !ok || bt.Kind != types.ErrorType {
		t.Fatalf("expected accessing a private field from outside the class to type-check to the error type, got %v", access.Type())
	}
}

func TestMemberAccessPublicFieldFromOutsideResolves(t *testing.T) {
	st := &types.StructType{
		TypeName: "C",
		Fields:   []types.StructField{{Name: "v", Type: types.Builtin(types.I32), Offset: 0, Public: true}},
	}
	root := scope.NewGlobalScope()
	sym := scope.NewSymbol("c", st, root)
	root.AddSymbol(sym)
	receiver := NewVariableExpression(root, []string{"c"}, token.Span{})
	receiver.TypeCheck()

	access := NewMemberAccess(root, receiver, "v", false, token.Span{}, token.Span{})
	access.TypeCheck()

	if !types.Equal(access.Type(), types.Builtin(types.I32)) {
		t.Fatalf("expected a public field access to resolve to the field's type, got %v", access.Type())
	}
}

func TestMemberAccessPrivateFieldFromInsideOwnerIsAllowed(t *testing.T) {
	st := &types.StructType{
		TypeName: "C",
		Fields:   []types.StructField{{Name: "secret", Type: types.Builtin(types.I32), Offset: 0, Public: false}},
	}
	root := scope.NewGlobalScope()
	sym := scope.NewSymbol("c", st, root)
	root.AddSymbol(sym)

	methodScope := scope.NewScope(root, "", false)
	methodScope.Owner = st
	receiver := NewVariableExpression(methodScope, []string{"c"}, token.Span{})
	receiver.TypeCheck()

	access := NewMemberAccess(methodScope, receiver, "secret", false, token.Span{}, token.Span{})
	access.TypeCheck()

	if !types.Equal(access.Type(), types.Builtin(types.I32)) {
		t.Fatalf("expected a private field access from within the owning class's own method to be allowed, got %v", access.Type())
	}
}

func TestBinaryExpressionArithmeticInsertsWideningCastOnNarrowerSide(t *testing.T) {
	sc := scope.NewGlobalScope()
	lhs := NewIntegerLiteral(sc, 1, token.Span{})
	lhs.typ = types.Builtin(types.I64)
	rhs := NewIntegerLiteral(sc, 2, token.Span{})
	rhs.typ = types.Builtin(types.I32)

	be := NewBinaryExpression(sc, lhs, OpAdd, rhs, token.Span{})
	be.TypeCheck()

	if !types.Equal(be.Type(), types.Builtin(types.I64)) {
		t.Fatalf("expected the wider i64 side to win the arithmetic result type, got %v", be.Type())
	}
	if _, ok := be.Rhs.(*CastExpression); !ok {
		t.Fatalf("expected the narrower i32 rhs to be wrapped in an implicit CastExpression, got %T", be.Rhs)
	}
}

func TestBinaryExpressionComparisonAlwaysProducesBool(t *testing.T) {
	sc := scope.NewGlobalScope()
	lhs := NewIntegerLiteral(sc, 1, token.Span{})
	rhs := NewIntegerLiteral(sc, 2, token.Span{})

	be := NewBinaryExpression(sc, lhs, OpLess, rhs, token.Span{})
	be.TypeCheck()

	if !types.Equal(be.Type(), types.Builtin(types.Bool)) {
		t.Fatalf("expected a comparison operator to always produce bool, got %v", be.Type())
	}
}

func TestBinaryExpressionIncompatibleOperandsReportsErrorType(t *testing.T) {
	sc := scope.NewGlobalScope()
	lhs := NewStringLiteral(sc, "s", token.Span{})
	rhs := NewBooleanLiteral(sc, true, token.Span{})

	be := NewBinaryExpression(sc, lhs, OpAdd, rhs, token.Span{})
	be.TypeCheck()

	bt, ok := be.Type().(*types.BuiltinType)
	if !ok || bt.Kind != types.ErrorType {
		t.Fatalf("expected incompatible operand types to type-check to the error type, got %v", be.Type())
	}
}

func TestCastExpressionDisallowedCastReportsError(t *testing.T) {
	diag.Init("silent")
	sc := scope.NewGlobalScope()
	st := &types.StructType{TypeName: "C"}
	sym := scope.NewSymbol("c", st, sc)
	sc.AddSymbol(sym)
	v := NewVariableExpression(sc, []string{"c"}, token.Span{})
	v.TypeCheck()

	cast := NewCastExpression(sc, v, types.Builtin(types.I32), token.Span{})
	cast.TypeCheck()

	if diag.ShouldProceed() {
		t.Fatalf("expected casting a struct to an integer to report a fatal diagnostic")
	}
}

func TestUnaryExpressionAddressOfWrapsInPointer(t *testing.T) {
	sc := scope.NewGlobalScope()
	lit := NewIntegerLiteral(sc, 1, token.Span{})

	u := NewUnaryExpression(sc, OpAddressOf, lit, token.Span{})
	u.TypeCheck()

	pt, ok := u.Type().(*types.PointerType)
	if !ok || !types.Equal(pt.Base, types.Builtin(types.I32)) {
		t.Fatalf("expected &x to produce a pointer to x's type, got %v", u.Type())
	}
}

func TestUnaryExpressionDerefOnNonPointerReportsErrorType(t *testing.T) {
	sc := scope.NewGlobalScope()
	lit := NewIntegerLiteral(sc, 1, token.Span{})

	u := NewUnaryExpression(sc, OpDeref, lit, token.Span{})
	u.TypeCheck()

	bt, ok := u.Type().(*types.BuiltinType)
	if !ok || bt.Kind != types.ErrorType {
		t.Fatalf("expected dereferencing a non-pointer to type-check to the error type, got %v", u.Type())
	}
}
