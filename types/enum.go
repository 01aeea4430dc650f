package types

import (
	"strings"
)

// EnumCase is one named, ordinal-numbered member of an enum.
type EnumCase struct {
	Name  string
	Value int
}

// EnumType is a complete enum type: a fixed, ordered set of named integer
// cases backed by an underlying integer representation.
type EnumType struct {
	base
	Namespaces []string
	TypeName   string
	Cases      []EnumCase
	Backing    *BuiltinType
}

func (e *EnumType) Name() string {
	if len(e.Namespaces) == 0 {
		return e.TypeName
	}
	return strings.Join(e.Namespaces, "::") + "::" + e.TypeName
}

func (e *EnumType) MangleID() string {
	return MangleEnumName(e.Namespaces, e.TypeName)
}

func (e *EnumType) Size() int      { return e.Backing.Size() }
func (e *EnumType) IsEnum() bool   { return true }
func (e *EnumType) IsObject() bool { return true }

func (e *EnumType) Case(name string) (EnumCase, bool) {
	for _, c := range e.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return EnumCase{}, false
}

func (e *EnumType) CastRankTo(dest Type) CastRank {
	dest = Resolve(dest)
	if o, ok := dest.(*EnumType); ok && o.TypeName == e.TypeName {
		return Implicit
	}
	// an enum value may be explicitly cast down to its backing integer
	// type (and no further).
	if b, ok := dest.(*BuiltinType); ok && b.Kind == e.Backing.Kind {
		return Explicit
	}
	return Disallowed
}
