package types

// IncompleteType stands in for a struct/enum whose layout could not be
// resolved by the end of Pass 2 (a forward reference that was never
// completed). It still reports a size so dependent layouts can be
// computed, but carries no fields, methods, or cases.
type IncompleteType struct {
	base
	TypeName string
	size     int
}

func (i *IncompleteType) Name() string     { return i.TypeName }
func (i *IncompleteType) MangleID() string { return "Stray error-type in program" }
func (i *IncompleteType) Size() int        { return i.size }
func (i *IncompleteType) IsObject() bool   { return false }

func (i *IncompleteType) CastRankTo(dest Type) CastRank {
	return Disallowed
}
