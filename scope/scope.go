package scope

import "viper/types"

// Scope is one node of the scope DAG: function bodies, namespaces,
// classes, and the single global scope each get one. Children are only
// tracked for global (namespace-like) scopes -- the ones a qualified
// lookup or candidate search needs to walk down into; a function body's
// local block scopes are chained purely through Parent.
//
// Root and the shared symbol-id counter are threaded from the DAG's root
// scope rather than held in package-level state, so a driver.Context can
// own an entirely independent scope DAG per compilation run -- two runs
// in one process never share symbol ids or a scope tree.
type Scope struct {
	Parent    *Scope
	Namespace string
	IsGlobal  bool
	IsPure    bool

	// ReturnType is the enclosing function's declared return type, nil
	// outside of a function body.
	ReturnType types.Type

	// Owner is the struct this scope is a method/field body of, nil
	// everywhere else. findOwner walks Parent chains through it.
	Owner *types.StructType

	Symbols  []*Symbol
	Children []*Scope

	// Root is the DAG's global scope (itself, for the root). Down-searches
	// (resolveSymbolDown, CandidateFunctions) start here rather than at a
	// package-level singleton.
	Root *Scope

	nextSymbolID *uint64
}

// NewGlobalScope allocates a fresh root scope with its own symbol-id
// counter -- one per driver.Context, never shared across compilation
// runs.
func NewGlobalScope() *Scope {
	return NewScope(nil, "", true)
}

// NewScope creates a child scope. Only global (namespace-like) scopes
// are registered on the parent's Children list -- down-searches never
// need to enter a function body, so local block scopes stay reachable
// only through their own Parent pointers. A nil parent creates a new
// root scope with its own id counter; pass one explicitly only to build
// a fresh, independent scope DAG (normally via NewGlobalScope).
func NewScope(parent *Scope, namespace string, isGlobal bool) *Scope {
	s := &Scope{Parent: parent, Namespace: namespace, IsGlobal: isGlobal}
	if parent != nil {
		s.ReturnType = parent.ReturnType
		s.Owner = parent.Owner
		s.Root = parent.Root
		s.nextSymbolID = parent.nextSymbolID
	} else {
		s.Root = s
		s.nextSymbolID = new(uint64)
	}
	if parent != nil && isGlobal {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Clone duplicates a scope's namespace/flags/owner into a new parent,
// used when a template body is cloned for instantiation.
func (s *Scope) Clone(into *Scope) *Scope {
	clone := NewScope(into, s.Namespace, s.IsGlobal)
	clone.IsPure = s.IsPure
	clone.Owner = s.Owner
	clone.ReturnType = s.ReturnType
	return clone
}

// Namespaces returns the ordered chain of non-empty namespace names from
// the global scope down to this one. Anonymous scopes (function bodies,
// spliced import file scopes, the root itself) contribute nothing to the
// chain.
func (s *Scope) Namespaces() []string {
	var names []string
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Namespace != "" {
			names = append(names, cur.Namespace)
		}
	}
	// reverse
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// FindOwner walks up the parent chain looking for the nearest enclosing
// struct/class body, used to resolve implicit `this.field` member access.
func (s *Scope) FindOwner() *types.StructType {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Owner != nil {
			return cur.Owner
		}
	}
	return nil
}

// AddSymbol appends a new symbol to this scope's symbol list.
func (s *Scope) AddSymbol(sym *Symbol) {
	s.Symbols = append(s.Symbols, sym)
}

// Symbol returns the symbol with the given id, searching only this
// scope's own symbol list.
func (s *Scope) Symbol(id uint64) *Symbol {
	for _, sym := range s.Symbols {
		if sym.ID == id {
			return sym
		}
	}
	return nil
}

func (s *Scope) findLocal(name string) *Symbol {
	for _, sym := range s.Symbols {
		if sym.Name == name && !sym.Removed {
			return sym
		}
	}
	return nil
}

// LookupLocal is findLocal exported for callers outside the package that
// need to reattach to an already-declared symbol without a full
// ResolveSymbol walk -- Pass2 uses it to find the signature Pass1 already
// registered in this exact scope, by name, rather than re-declaring it.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.findLocal(name)
}

// LookupLocalNth returns the (0-indexed) nth symbol named name declared
// directly in this scope, in declaration order. Pass2 re-walks the same
// token stream Pass1 built this scope's symbols from, so the Nth
// same-named declaration it encounters textually is always the Nth
// same-named symbol Pass1 appended -- this is how two overloads sharing a
// name in one scope get reattached to their own signature rather than
// both landing on the first one findLocal would return.
func (s *Scope) LookupLocalNth(name string, n int) *Symbol {
	count := 0
	for _, sym := range s.Symbols {
		if sym.Name == name && !sym.Removed {
			if count == n {
				return sym
			}
			count++
		}
	}
	return nil
}

// ResolveSymbol performs unqualified lookup: walk up through enclosing
// scopes first (so a local shadows an outer declaration), and if nothing
// is found, fall back to a DFS from the root (resolveSymbolDown) over the
// global scopes whose namespace chain is empty, such as spliced import
// file scopes, so top-level declarations of the (already-imported)
// program are visible without qualification. Named namespaces are not
// entered by this fallback; their members need a qualified lookup.
func (s *Scope) ResolveSymbol(name string) *Symbol {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym := cur.findLocal(name); sym != nil {
			return sym
		}
	}

	return s.Root.resolveSymbolDown(name)
}

func (s *Scope) resolveSymbolDown(name string) *Symbol {
	if len(s.Namespaces()) != 0 {
		return nil
	}

	if sym := s.findLocal(name); sym != nil {
		return sym
	}

	for _, child := range s.Children {
		if sym := child.resolveSymbolDown(name); sym != nil {
			return sym
		}
	}

	return nil
}

// ResolveQualifiedSymbol performs qualified lookup for `given[0]::given[1]::...`.
// Each attempt prepends a prefix of the ambient namespace chain, longest
// prefix first, so `f` inside `namespace X { namespace Y { ... } }`
// resolves `X::Y::f`, then `X::f`, then `::f`, in that order -- and
// `Y::Z` written inside `namespace X` means `X::Y::Z` before it means a
// global `Y::Z`.
func (s *Scope) ResolveQualifiedSymbol(given []string) *Symbol {
	active := s.Namespaces()

	for i := len(active); i >= 0; i-- {
		names := append(append([]string{}, active[:i]...), given...)
		if sym := s.Root.resolveSymbolDownQualified(names); sym != nil {
			return sym
		}
	}

	return nil
}

func (s *Scope) resolveSymbolDownQualified(names []string) *Symbol {
	namespaces := s.Namespaces()
	if sameNamespacePrefix(namespaces, names) {
		if sym := s.findLocal(names[len(names)-1]); sym != nil {
			return sym
		}
	}

	for _, child := range s.Children {
		if sym := child.resolveSymbolDownQualified(names); sym != nil {
			return sym
		}
	}

	return nil
}

func sameNamespacePrefix(namespaces, names []string) bool {
	if len(names) == 0 || len(namespaces) != len(names)-1 {
		return false
	}
	for i, n := range namespaces {
		if n != names[i] {
			return false
		}
	}
	return true
}

// CandidateFunctions gathers every symbol matching `given` across the
// whole program for overload resolution, trying the same ambient-prefix
// chains ResolveQualifiedSymbol does, except it collects every match at
// every level rather than returning on the first hit -- an unqualified
// call can be viable against overloads declared at more than one
// enclosing namespace.
func (s *Scope) CandidateFunctions(given []string) []*Symbol {
	active := s.Namespaces()

	var candidates []*Symbol
	for i := len(active); i >= 0; i-- {
		names := append(append([]string{}, active[:i]...), given...)
		candidates = append(candidates, s.Root.candidateFunctionsDownQualified(names)...)
	}

	return candidates
}

func (s *Scope) candidateFunctionsDownQualified(names []string) []*Symbol {
	var candidates []*Symbol

	namespaces := s.Namespaces()
	if sameNamespacePrefix(namespaces, names) {
		last := names[len(names)-1]
		for _, sym := range s.Symbols {
			if sym.Name == last && !sym.Removed {
				candidates = append(candidates, sym)
			}
		}
	}

	for _, child := range s.Children {
		candidates = append(candidates, child.candidateFunctionsDownQualified(names)...)
	}

	return candidates
}
