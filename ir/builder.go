// Package ir wraps github.com/llir/llvm into the concrete implementation
// of ast.Builder: one *ir.Module per compilation run, one *ir.Func per
// declared function, raw-pointer GEP/bitcast sequences for field access
// rather than named LLVM struct types.
//
// Every struct is lowered flat to `[N x i8]` rather than a named LLVM
// aggregate: types.StructField's byte Offset (computed once in
// parser/pass1.go, not re-derived here) already gives Emit everything
// it needs to address a field by raw pointer arithmetic, so GEP never
// needs struct field indices -- only a flat byte count plus a bitcast
// to the field's own type at the end. Flat lowering also sidesteps the
// recursive layout query a self-referential struct would otherwise
// trigger.
package ir

import (
	"os"
	"strconv"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"viper/scope"
	"viper/types"
)

// Builder lowers one compilation unit's AST into a single *ir.Module. It
// is the concrete type behind ast.Builder; every method here satisfies
// that interface's `interface{}` signatures by storing/retrieving llir
// concrete types (*ir.Func, *ir.Block, value.Value) through them.
type Builder struct {
	Module *ir.Module

	curFunc  *ir.Func
	curBlock *ir.Block

	strCounter int
}

// NewBuilder allocates an empty module named after its compilation
// unit.
func NewBuilder(name string) *Builder {
	m := ir.NewModule()
	m.SourceFilename = name
	return &Builder{Module: m}
}

// WriteIR renders the module as LLVM IR text to path.
func (b *Builder) WriteIR(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = b.Module.WriteTo(f)
	return err
}

// DeclareFunction pre-registers sym's LLVM signature and binds it as
// sym's value, before any Emit walk runs. irgen calls this over every
// function symbol in the program up front so that Function.Emit's
// `ResolveSymbolValue(f.sym)` path (ast/declarations.go) always finds an
// already-declared *ir.Func -- the `NewBlock("@function:...")` fallback
// in that same Emit only exists for a symbol this pre-pass missed.
func (b *Builder) DeclareFunction(sym *scope.Symbol, mangledName string) *ir.Func {
	fn, ok := types.Resolve(sym.Type).(*types.FuncType)
	if !ok {
		return nil
	}

	params := make([]*ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ir.NewParam("", b.lowerType(p))
	}

	f := b.Module.NewFunc(mangledName, b.lowerType(fn.Return), params...)
	sym.Bind(nil, f)
	return f
}

func (b *Builder) CurrentBlock() interface{} { return b.curBlock }

// SetInsertPoint moves emission to a block, or -- handed an *ir.Func --
// makes that function current so subsequent NewBlock calls create its
// blocks (ast/declarations.go's Function.Emit does this before creating
// the entry block).
func (b *Builder) SetInsertPoint(block interface{}) {
	if f, ok := block.(*ir.Func); ok {
		b.curFunc = f
		b.curBlock = nil
		return
	}
	blk, _ := block.(*ir.Block)
	b.curBlock = blk
}

// NewBlock creates either a basic block in the function currently being
// emitted, or -- for the one "@function:" sentinel name
// ast/declarations.go's Function.Emit uses when a symbol wasn't
// pre-declared -- a zero-argument fallback *ir.Func.
func (b *Builder) NewBlock(name string) interface{} {
	if strings.HasPrefix(name, "@function:") {
		f := b.Module.NewFunc(strings.TrimPrefix(name, "@function:"), irtypes.Void)
		b.curFunc = f
		return f
	}

	if b.curFunc == nil {
		return nil
	}
	return b.curFunc.NewBlock(name)
}

func (b *Builder) Alloca(t types.Type) interface{} {
	return b.curBlock.NewAlloca(b.lowerType(t))
}

func (b *Builder) Load(ptr interface{}, t types.Type) interface{} {
	return b.curBlock.NewLoad(b.lowerType(t), ptr.(value.Value))
}

func (b *Builder) Store(ptr, val interface{}) {
	b.curBlock.NewStore(val.(value.Value), ptr.(value.Value))
}

// GEP walks indices (a chain of byte offsets -- just one, in every caller
// ast emits today) off base via an `i8*` bitcast + single-element
// getelementptr, then bitcasts the result to a pointer to t so the
// caller gets back a properly-typed field pointer.
func (b *Builder) GEP(base interface{}, indices []int, t types.Type) interface{} {
	offset := 0
	for _, idx := range indices {
		offset += idx
	}

	i8ptr := b.curBlock.NewBitCast(base.(value.Value), irtypes.NewPointer(irtypes.I8))
	raw := b.curBlock.NewGetElementPtr(irtypes.I8, i8ptr, constant.NewInt(irtypes.I32, int64(offset)))
	return b.curBlock.NewBitCast(raw, irtypes.NewPointer(b.lowerType(t)))
}

func (b *Builder) PtrCast(val interface{}, t types.Type) interface{} {
	return b.curBlock.NewBitCast(val.(value.Value), b.lowerType(t))
}

func (b *Builder) Call(callee interface{}, args []interface{}) interface{} {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		vals[i] = a.(value.Value)
	}
	return b.curBlock.NewCall(callee.(value.Value), vals...)
}

func (b *Builder) Ret(val interface{}) {
	if val == nil {
		b.curBlock.NewRet(nil)
		return
	}
	b.curBlock.NewRet(val.(value.Value))
}

func (b *Builder) BinOp(op string, lhs, rhs interface{}, t types.Type) interface{} {
	l, r := lhs.(value.Value), rhs.(value.Value)
	switch op {
	case "+":
		return b.curBlock.NewAdd(l, r)
	case "-":
		return b.curBlock.NewSub(l, r)
	case "*":
		return b.curBlock.NewMul(l, r)
	case "/":
		if isUnsigned(t) {
			return b.curBlock.NewUDiv(l, r)
		}
		return b.curBlock.NewSDiv(l, r)
	default:
		return l
	}
}

// UnOp covers both the prefix unary operators (`-`, `&`, `*`, `!`) and
// the "cast" pseudo-op CastExpression.Emit uses for every non-pointer
// conversion, since ast.Builder folds both into one method.
func (b *Builder) UnOp(op string, operand interface{}, t types.Type) interface{} {
	v := operand.(value.Value)
	switch op {
	case "-":
		intT, ok := v.Type().(*irtypes.IntType)
		if !ok {
			return v
		}
		return b.curBlock.NewSub(constant.NewInt(intT, 0), v)
	case "!":
		return b.curBlock.NewXor(v, constant.NewBool(true))
	case "*":
		return b.curBlock.NewLoad(b.lowerType(t), v)
	case "&":
		// Scalar locals are bound to their SSA value rather than a stable
		// alloca slot (see ast/statements.go's VariableDeclaration.Emit),
		// so address-of is only meaningful for struct locals, which are
		// already bound to their alloca pointer -- nothing to do there.
		return v
	case "cast":
		return b.castInt(v, t)
	default:
		return v
	}
}

func (b *Builder) castInt(v value.Value, t types.Type) interface{} {
	dst := b.lowerType(t)
	dstInt, dstIsInt := dst.(*irtypes.IntType)
	srcInt, srcIsInt := v.Type().(*irtypes.IntType)
	if !dstIsInt || !srcIsInt {
		return b.curBlock.NewBitCast(v, dst)
	}

	if dstInt.BitSize == srcInt.BitSize {
		return v
	}
	if dstInt.BitSize > srcInt.BitSize {
		if isUnsigned(t) {
			return b.curBlock.NewZExt(v, dst)
		}
		return b.curBlock.NewSExt(v, dst)
	}
	return b.curBlock.NewTrunc(v, dst)
}

// Cmp always lowers to a signed integer predicate; Viper's unsigned
// kinds still compare `==`/`!=` correctly (the only predicates that
// don't depend on sign) and the front end never mixes signed/unsigned
// operands in a single comparison without an inserted cast first
// (BinaryExpression.TypeCheck unifies both operands' types before Emit
// ever runs).
func (b *Builder) Cmp(op string, lhs, rhs interface{}) interface{} {
	l, r := lhs.(value.Value), rhs.(value.Value)
	pred, ok := cmpPredicates[op]
	if !ok {
		pred = enum.IPredEQ
	}
	return b.curBlock.NewICmp(pred, l, r)
}

var cmpPredicates = map[string]enum.IPred{
	"==": enum.IPredEQ, "!=": enum.IPredNE,
	"<": enum.IPredSLT, "<=": enum.IPredSLE,
	">": enum.IPredSGT, ">=": enum.IPredSGE,
}

func (b *Builder) Br(cond interface{}, then, els interface{}) {
	b.curBlock.NewCondBr(cond.(value.Value), then.(*ir.Block), els.(*ir.Block))
}

func (b *Builder) Jump(target interface{}) {
	b.curBlock.NewBr(target.(*ir.Block))
}

func (b *Builder) ConstInt(v int64, t types.Type) interface{} {
	it, ok := b.lowerType(t).(*irtypes.IntType)
	if !ok {
		it = irtypes.I32
	}
	return constant.NewInt(it, v)
}

// ConstString allocates a file-scope `[N x i8]` global holding s plus a
// trailing NUL and returns a pointer to its first byte.
func (b *Builder) ConstString(s string) interface{} {
	data := constant.NewCharArrayFromString(s + "\x00")
	name := ".str." + strconv.Itoa(b.strCounter)
	b.strCounter++

	global := b.Module.NewGlobalDef(name, data)
	zero := constant.NewInt(irtypes.I32, 0)
	return constant.NewGetElementPtr(data.Typ, global, zero, zero)
}

func (b *Builder) ConstBool(v bool) interface{} {
	return constant.NewBool(v)
}

// ResolveSymbolValue returns a symbol's bound llir value. A bound `int`
// is the one exception: ast/declarations.go's Function.Emit binds each
// parameter symbol to its declaration index rather than a value (it has
// no way to reach the concrete *ir.Param from the ast package), so this
// resolves that index against the function currently being emitted.
func (b *Builder) ResolveSymbolValue(sym *scope.Symbol) interface{} {
	if sym == nil {
		return nil
	}
	v := sym.LatestValue()
	if idx, ok := v.(int); ok {
		if b.curFunc == nil || idx >= len(b.curFunc.Params) {
			return nil
		}
		return b.curFunc.Params[idx]
	}
	return v
}

func (b *Builder) BindSymbolValue(sym *scope.Symbol, val interface{}) {
	sym.Bind(b.curBlock, val)
}

// lowerType maps a Viper type onto its LLVM representation. Structs
// lower to a flat `[Size x i8]` rather than a named aggregate -- see the
// package doc for why GEP never needs a field index.
func (b *Builder) lowerType(t types.Type) irtypes.Type {
	t = types.Resolve(t)

	switch v := t.(type) {
	case *types.BuiltinType:
		return lowerBuiltin(v)
	case *types.PointerType:
		base := b.lowerType(v.Base)
		if _, ok := base.(*irtypes.VoidType); ok {
			base = irtypes.I8
		}
		return irtypes.NewPointer(base)
	case *types.ArrayType:
		return irtypes.NewArray(uint64(v.Count), b.lowerType(v.Base))
	case *types.StructType:
		return irtypes.NewArray(uint64(v.Size()), irtypes.I8)
	case *types.FuncType:
		params := make([]irtypes.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = b.lowerType(p)
		}
		return irtypes.NewFunc(b.lowerType(v.Return), params...)
	case *types.EnumType:
		return b.lowerType(v.Backing)
	default:
		return irtypes.I8
	}
}

func lowerBuiltin(v *types.BuiltinType) irtypes.Type {
	switch v.Kind {
	case types.I8, types.U8:
		return irtypes.I8
	case types.I16, types.U16:
		return irtypes.I16
	case types.I32, types.U32:
		return irtypes.I32
	case types.I64, types.U64:
		return irtypes.I64
	case types.Bool:
		return irtypes.I1
	case types.StringKind:
		return irtypes.NewPointer(irtypes.I8)
	case types.Void:
		return irtypes.Void
	default:
		return irtypes.I8
	}
}

func isUnsigned(t types.Type) bool {
	bt, ok := types.Resolve(t).(*types.BuiltinType)
	if !ok {
		return false
	}
	switch bt.Kind {
	case types.U8, types.U16, types.U32, types.U64:
		return true
	}
	return false
}
