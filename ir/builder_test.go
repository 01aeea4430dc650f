package ir

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	irtypes "github.com/llir/llvm/ir/types"

	"viper/scope"
	"viper/types"
)

func newTestSymbol(t types.Type) *scope.Symbol {
	return scope.NewSymbol("f", t, scope.NewGlobalScope())
}

// Every lowered-type comparison here goes through reflect.DeepEqual against a value
// built with the exact same irtypes constructors builder.go itself uses
// (NewPointer, NewArray, the I8/I32/... package vars) rather than
// asserting on any concrete struct's field names, since this module
// never independently verifies github.com/llir/llvm/ir/types's layout.

func TestLowerTypeBuiltinsMapToLLVMIntWidths(t *testing.T) {
	b := NewBuilder("t")

	cases := []struct {
		kind types.BuiltinKind
		want irtypes.Type
	}{
		{types.I8, irtypes.I8},
		{types.U8, irtypes.I8},
		{types.I16, irtypes.I16},
		{types.I32, irtypes.I32},
		{types.U32, irtypes.I32},
		{types.I64, irtypes.I64},
		{types.Bool, irtypes.I1},
		{types.Void, irtypes.Void},
	}
	for _, c := range cases {
		got := b.lowerType(types.Builtin(c.kind))
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("kind %v: expected lowered type %v, got %v", c.kind, c.want, got)
		}
	}
}

func TestLowerTypeStringIsI8Pointer(t *testing.T) {
	b := NewBuilder("t")
	got := b.lowerType(types.Builtin(types.StringKind))
	want := irtypes.NewPointer(irtypes.I8)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected string to lower to i8*, got %v", got)
	}
}

func TestLowerTypeStructFlattensToByteArray(t *testing.T) {
	b := NewBuilder("t")
	st := &types.StructType{
		TypeName: "Point",
		Fields: []types.StructField{
			{Name: "x", Type: types.Builtin(types.I32), Offset: 0},
			{Name: "y", Type: types.Builtin(types.I32), Offset: 4},
		},
	}

	got := b.lowerType(st)
	want := irtypes.NewArray(8, irtypes.I8)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected two i32 fields to flatten to [8 x i8], got %v", got)
	}
}

func TestLowerTypePointerToVoidFallsBackToI8(t *testing.T) {
	b := NewBuilder("t")
	pt := &types.PointerType{Base: types.Builtin(types.Void)}

	got := b.lowerType(pt)
	want := irtypes.NewPointer(irtypes.I8)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected *void to lower to i8* rather than an LLVM void pointer, got %v", got)
	}
}

func TestLowerTypeArrayCarriesCount(t *testing.T) {
	b := NewBuilder("t")
	at := &types.ArrayType{Base: types.Builtin(types.I32), Count: 4}

	got := b.lowerType(at)
	want := irtypes.NewArray(4, irtypes.I32)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected [4 x i32], got %v", got)
	}
}

func TestLowerTypeEnumLowersToBackingType(t *testing.T) {
	b := NewBuilder("t")
	et := &types.EnumType{Backing: types.Builtin(types.I64)}

	got := b.lowerType(et)
	if !reflect.DeepEqual(got, irtypes.I64) {
		t.Fatalf("expected an enum to lower to its backing integer type, got %v", got)
	}
}

func TestIsUnsignedOnlyTrueForUnsignedBuiltinKinds(t *testing.T) {
	unsigned := []types.BuiltinKind{types.U8, types.U16, types.U32, types.U64}
	for _, k := range unsigned {
		if !isUnsigned(types.Builtin(k)) {
			t.Fatalf("expected kind %v to be unsigned", k)
		}
	}

	signed := []types.BuiltinKind{types.I8, types.I16, types.I32, types.I64, types.Bool}
	for _, k := range signed {
		if isUnsigned(types.Builtin(k)) {
			t.Fatalf("expected kind %v not to be unsigned", k)
		}
	}
}

func TestIsUnsignedFalseForNonBuiltinType(t *testing.T) {
	pt := &types.PointerType{Base: types.Builtin(types.I32)}
	if isUnsigned(pt) {
		t.Fatalf("expected a non-builtin type to never be treated as unsigned")
	}
}

func TestDeclareFunctionBindsSymbolToItsLLVMFunc(t *testing.T) {
	b := NewBuilder("t")
	fnType := &types.FuncType{
		Params: []types.Type{types.Builtin(types.I32)},
		Return: types.Builtin(types.I32),
	}
	s := newTestSymbol(fnType)
	f := b.DeclareFunction(s, "add")
	if f == nil {
		t.Fatalf("expected DeclareFunction to return a non-nil *ir.Func for a FuncType symbol")
	}
	if s.LatestValue() != f {
		t.Fatalf("expected DeclareFunction to bind the symbol's value to the declared function")
	}
	if len(f.Params) != 1 {
		t.Fatalf("expected one lowered parameter, got %d", len(f.Params))
	}
}

func TestDeclareFunctionOnNonFuncTypeReturnsNil(t *testing.T) {
	b := NewBuilder("t")
	s := newTestSymbol(types.Builtin(types.I32))

	if f := b.DeclareFunction(s, "notAFunc"); f != nil {
		t.Fatalf("expected DeclareFunction to decline a symbol whose type isn't a FuncType")
	}
}

func TestConstIntFallsBackToI32ForNonIntegerType(t *testing.T) {
	b := NewBuilder("t")
	c := b.ConstInt(5, types.Builtin(types.Void))
	if c == nil {
		t.Fatalf("expected ConstInt to still produce a constant when the destination type isn't an integer")
	}
}

func TestWriteIRProducesOutputFile(t *testing.T) {
	b := NewBuilder("t")
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ll")

	if err := b.WriteIR(path); err != nil {
		t.Fatalf("unexpected error writing IR: %s", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected WriteIR to create %s: %s", path, err)
	}
}
