// Package scope implements the symbol/scope resolution engine:
// namespace-qualified lookup, overload candidate gathering, and the
// template instantiation cache. Scopes and symbols form a DAG with
// upward back-references (a symbol knows its owning scope). Both are
// individually allocated and referenced by Go pointer: a Scope holds
// []*Symbol and []*Scope, and there is no arena or index-based handle.
// Symbol ids are a per-DAG counter, not indices into any slice.
package scope

import "viper/types"

// ValueBinding is one (basic_block, ir_value) pair in a symbol's SSA-like
// value tracker. Block/Value are stored as interface{} rather than
// concrete irgen types so this package has no dependency on the IR
// builder; the ir package's Builder stores *ir.Block/value.Value here and
// type-asserts on read.
type ValueBinding struct {
	Block interface{}
	Value interface{}
}

// TemplateParameter is one formal parameter of a template declaration,
// e.g. `T` in `template<T: typename>`.
type TemplateParameter struct {
	Name       string
	Constraint types.Type
}

// TemplateInstantiation is a single cached specialization of a generic
// symbol: the cloned, type-checked AST body plus the actual type
// arguments it was instantiated with.
type TemplateInstantiation struct {
	Body             interface{}
	ActualParameters []types.Type
}

// TemplateSymbol is attached to a Symbol that represents a generic
// (un-instantiated) function or type. It owns the original AST body so
// new instantiations can clone from it, plus the formal parameter list
// and a cache of prior instantiations keyed by the actual-parameter list.
type TemplateSymbol struct {
	Parameters     []TemplateParameter
	Body           interface{}
	Instantiations []TemplateInstantiation
}

// FindInstantiation consults the cache by exact parameter-type
// equality; any difference in any position is a miss.
func (ts *TemplateSymbol) FindInstantiation(actual []types.Type) (*TemplateInstantiation, bool) {
	for i := range ts.Instantiations {
		inst := &ts.Instantiations[i]
		if sameTypeList(inst.ActualParameters, actual) {
			return inst, true
		}
	}
	return nil, false
}

func sameTypeList(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !types.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Symbol is a named, typed entity declared in some Scope: a function,
// variable, parameter, struct, or enum. A symbol is never copied after
// creation -- its owning Scope's Symbols slice holds the *Symbol, and
// every lookup returns that same pointer.
type Symbol struct {
	Name     string
	Type     types.Type
	Owner    *Scope
	ID       uint64
	Pure     bool
	Exported bool
	Removed  bool
	Values   []ValueBinding
	Template *TemplateSymbol
}

// NewSymbol allocates a symbol with the next monotone id drawn from
// owner's scope DAG (shared by every scope in that DAG via Root -- see
// Scope.nextSymbolID). It is not inserted into any scope; callers
// append it to a Scope's Symbols slice themselves, since declaration
// and registration don't always happen at the same site.
func NewSymbol(name string, t types.Type, owner *Scope) *Symbol {
	id := *owner.nextSymbolID
	*owner.nextSymbolID++
	return &Symbol{Name: name, Type: t, Owner: owner, ID: id}
}

// LatestValue returns the most recently appended IR value bound to this
// symbol, or nil if it has none. It takes no block argument: the block
// recorded with each binding is not consulted, and no predecessor walk
// is done.
func (s *Symbol) LatestValue() interface{} {
	if len(s.Values) == 0 {
		return nil
	}
	return s.Values[len(s.Values)-1].Value
}

// Bind appends a new (block, value) pair, recording a fresh definition of
// the symbol.
func (s *Symbol) Bind(block, value interface{}) {
	s.Values = append(s.Values, ValueBinding{Block: block, Value: value})
}

// Clone duplicates a symbol into scope `into`, used when a template body
// is cloned for instantiation: the clone keeps its own identity (a fresh
// id) while carrying over the export/purity flags and, if this symbol is
// itself generic, a fresh TemplateSymbol sharing the same formal
// parameters over the cloned body.
func (s *Symbol) Clone(into *Scope, clonedBody interface{}) *Symbol {
	clone := NewSymbol(s.Name, s.Type, into)
	clone.Exported = s.Exported
	clone.Pure = s.Pure
	if s.Template != nil {
		clone.Template = &TemplateSymbol{
			Parameters: s.Template.Parameters,
			Body:       clonedBody,
		}
	}
	return clone
}
