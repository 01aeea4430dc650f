package types

// BuiltinKind enumerates the builtin primitive types.
type BuiltinKind int

const (
	I8 BuiltinKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	Bool
	StringKind
	Void
	ErrorType
)

var builtinNames = map[BuiltinKind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	Bool: "bool", StringKind: "string", Void: "void", ErrorType: "<error>",
}

var builtinSizes = map[BuiltinKind]int{
	I8: 1, I16: 2, I32: 4, I64: 8,
	U8: 1, U16: 2, U32: 4, U64: 8,
	Bool: 1, StringKind: 8, Void: 0, ErrorType: 0,
}

// BuiltinType is a builtin integral, boolean, string, void, or the
// sentinel error-type.
type BuiltinType struct {
	base
	Kind BuiltinKind
}

// builtinTable is the set of builtin types pre-populated in every
// Registry, keyed by kind so callers never construct duplicates.
var builtinTable = map[BuiltinKind]*BuiltinType{}

func init() {
	for k := range builtinNames {
		builtinTable[k] = &BuiltinType{Kind: k}
	}
}

// Builtin returns the shared instance for a builtin kind.
func Builtin(kind BuiltinKind) *BuiltinType {
	return builtinTable[kind]
}

func (b *BuiltinType) Name() string     { return builtinNames[b.Kind] }
func (b *BuiltinType) MangleID() string { return mangleBuiltin[b.Kind] }
func (b *BuiltinType) Size() int        { return builtinSizes[b.Kind] }
func (b *BuiltinType) IsVoid() bool     { return b.Kind == Void }
func (b *BuiltinType) IsObject() bool   { return b.Kind != Void && b.Kind != ErrorType }

func (b *BuiltinType) isInteger() bool {
	switch b.Kind {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	}
	return false
}

func (b *BuiltinType) isUnsigned() bool {
	switch b.Kind {
	case U8, U16, U32, U64:
		return true
	}
	return false
}

var mangleBuiltin = map[BuiltinKind]string{
	I8: "c", I16: "s", I32: "i", I64: "l",
	U8: "Uc", U16: "Us", U32: "Ui", U64: "Ul",
	Bool: "b", StringKind: "Ps", Void: "v", ErrorType: "E",
}

// CastRankTo implements the cast ranking for builtin types: exact match
// is handled by the caller (Equal short-circuits it), same-signedness
// widening is Implicit, cross-signedness or narrowing integer
// conversions warn, and integer<->bool conversions are Explicit only.
// Strings and the error sentinel never convert.
func (b *BuiltinType) CastRankTo(dest Type) CastRank {
	dest = Resolve(dest)
	o, ok := dest.(*BuiltinType)
	if !ok {
		return Disallowed
	}

	if b.Kind == o.Kind {
		return Implicit
	}

	if b.isInteger() && o.isInteger() {
		if b.isUnsigned() == o.isUnsigned() {
			if o.Size() >= b.Size() {
				return Implicit
			}
			return ImplicitWarning
		}
		return ImplicitWarning
	}

	if (b.isInteger() || b.Kind == Bool) && (o.isInteger() || o.Kind == Bool) {
		return Explicit
	}

	if b.Kind == StringKind || o.Kind == StringKind {
		return Disallowed
	}

	return Disallowed
}
