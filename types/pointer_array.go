package types

import "strconv"

// PointerType is `*base`.
type PointerType struct {
	base
	Base Type
}

func (p *PointerType) Name() string     { return "*" + p.Base.Name() }
func (p *PointerType) MangleID() string { return "P" + p.Base.MangleID() }
func (p *PointerType) Size() int        { return 8 }
func (p *PointerType) IsPointer() bool  { return true }
func (p *PointerType) IsObject() bool   { return true }

func (p *PointerType) CastRankTo(dest Type) CastRank {
	dest = Resolve(dest)
	o, ok := dest.(*PointerType)
	if !ok {
		return Disallowed
	}

	if Equal(p.Base, o.Base) {
		return Implicit
	}

	// pointer-to-pointer reinterpretation is always at least explicit.
	return Explicit
}

// ArrayType is `base[count]`.
type ArrayType struct {
	base
	Base  Type
	Count int
}

func (a *ArrayType) Name() string     { return a.Base.Name() + "[" + strconv.Itoa(a.Count) + "]" }
func (a *ArrayType) MangleID() string { return "A" + strconv.Itoa(a.Count) + a.Base.MangleID() }
func (a *ArrayType) Size() int        { return a.Base.Size() * a.Count }
func (a *ArrayType) IsArray() bool    { return true }
func (a *ArrayType) IsObject() bool   { return true }

func (a *ArrayType) CastRankTo(dest Type) CastRank {
	dest = Resolve(dest)
	o, ok := dest.(*ArrayType)
	if !ok {
		return Disallowed
	}

	if a.Count == o.Count && Equal(a.Base, o.Base) {
		return Implicit
	}

	return Disallowed
}
