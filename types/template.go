package types

// TemplateType is an erased stand-in for a template's formal parameter
// (e.g. `T` in `template<T: typename> func id(x: T) -> T`). It is
// substituted for a concrete actual type on every AST subtree during
// instantiation (see check.InstantiateTemplate); a TemplateType that
// survives into mangling indicates a bug in the instantiation pass, so
// its mangle id is a loud sentinel of its own, like the one unresolved
// pending and incomplete placeholders use.
type TemplateType struct {
	base
	Param string
}

func (t *TemplateType) Name() string     { return t.Param }
func (t *TemplateType) MangleID() string { return "STRAY TEMPLATETYPE IN PROGRAM" }
func (t *TemplateType) Size() int        { return 0 }
func (t *TemplateType) IsTemplate() bool { return true }

func (t *TemplateType) CastRankTo(dest Type) CastRank {
	return Disallowed
}
