package types

import "strings"

// StructField is one field of a struct: its name, declared type, byte
// offset within the struct's layout, and public/private visibility.
type StructField struct {
	Name   string
	Type   Type
	Offset int
	Public bool
}

// Method is a bound function hung off a struct by name.
type Method struct {
	Name string
	Func *FuncType
}

// StructType is a complete, laid-out struct/class type. Namespaces holds
// the chain of enclosing namespace names (empty for a type declared at
// the global scope); TypeName is just the struct's own identifier.
type StructType struct {
	base
	Namespaces []string
	TypeName   string
	Fields     []StructField
	Methods    []Method
}

func (s *StructType) Name() string {
	if len(s.Namespaces) == 0 {
		return s.TypeName
	}
	return strings.Join(s.Namespaces, "::") + "::" + s.TypeName
}

func (s *StructType) MangleID() string {
	return MangleStructName(s.Namespaces, s.TypeName)
}

func (s *StructType) IsStruct() bool { return true }
func (s *StructType) IsObject() bool { return true }

func (s *StructType) Size() int {
	size := 0
	for _, f := range s.Fields {
		size += f.Type.Size()
	}
	return size
}

func (s *StructType) Field(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

func (s *StructType) Method(name string) (Method, bool) {
	for _, m := range s.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// CastRankTo: structs never implicitly or explicitly convert to one
// another; the only cast-compatible path is through a pointer to the
// struct, handled by PointerType.
func (s *StructType) CastRankTo(dest Type) CastRank {
	return Disallowed
}

// selfReferential reports whether field's type is a pointer back to s
// itself. The IR generator does not special-case such a field: every
// struct lowers flat to a `[Size x i8]` array (see package ir), so a
// pointer back to s lowers to a pointer to that array with no recursive
// layout query.
func (s *StructType) selfReferential(f StructField) bool {
	p, ok := f.Type.(*PointerType)
	if !ok {
		return false
	}
	return Resolve(p.Base) == Type(s)
}

// SelfReferentialFields returns the indices of fields whose type is a
// pointer back to the struct itself.
func (s *StructType) SelfReferentialFields() []int {
	var idxs []int
	for i, f := range s.Fields {
		if s.selfReferential(f) {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
