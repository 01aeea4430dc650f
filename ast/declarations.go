package ast

import (
	"viper/diag"
	"viper/scope"
	"viper/token"
	"viper/types"
)

// FunctionArgument is one declared parameter of a Function.
type FunctionArgument struct {
	Type types.Type
	Name string
}

// Function is a top-level or member function/method declaration. Its
// symbol lives in the enclosing scope; its parameters and body live in
// OwnScope, a child scope pushed for the duration of the body.
type Function struct {
	base

	Pure      bool
	Name      string
	Arguments []FunctionArgument
	Body      []Node
	OwnScope  *scope.Scope

	sym *scope.Symbol
}

// NewFunction registers the function's symbol in `enclosing` and its
// arguments in `own`. The symbol is allocated before the argument
// symbols so the function's id always precedes its parameters'.
func NewFunction(exported, pure bool, name string, fnType *types.FuncType, arguments []FunctionArgument, body []Node, enclosing, own *scope.Scope, span token.Span) *Function {
	sym := scope.NewSymbol(name, fnType, enclosing)
	sym.Pure = pure
	sym.Exported = exported
	enclosing.AddSymbol(sym)

	for _, arg := range arguments {
		own.AddSymbol(scope.NewSymbol(arg.Name, arg.Type, own))
	}
	own.IsPure = pure

	return &Function{
		base:      base{span: span, scope: enclosing, typ: fnType},
		Pure:      pure,
		Name:      name,
		Arguments: arguments,
		Body:      body,
		OwnScope:  own,
		sym:       sym,
	}
}

// AttachFunction builds a Function node around a symbol Pass1 already
// declared (and registered in `enclosing`), instead of declaring a fresh
// one -- Pass2 uses this for every function/method signature it
// re-parses, so the symbol table built during Pass1 (which is what
// forward references and overload candidate gathering consult) is
// reused rather than duplicated.
func AttachFunction(sym *scope.Symbol, pure bool, name string, arguments []FunctionArgument, body []Node, enclosing, own *scope.Scope, span token.Span) *Function {
	for _, arg := range arguments {
		own.AddSymbol(scope.NewSymbol(arg.Name, arg.Type, own))
	}
	own.IsPure = pure

	return &Function{
		base:      base{span: span, scope: enclosing, typ: sym.Type},
		Pure:      pure,
		Name:      name,
		Arguments: arguments,
		Body:      body,
		OwnScope:  own,
		sym:       sym,
	}
}

func (f *Function) Symbol() *scope.Symbol { return f.sym }

func (f *Function) Contained() []Node { return f.Body }

func (f *Function) Clone(into *scope.Scope) Node {
	own := f.OwnScope.Clone(into)
	body := make([]Node, len(f.Body))
	for i, n := range f.Body {
		body[i] = n.Clone(own)
	}
	args := append([]FunctionArgument{}, f.Arguments...)
	return NewFunction(false, f.Pure, f.Name, f.typ.(*types.FuncType), args, body, into, own, f.span)
}

// SetTemplateType substitutes `formal` for `actual` across the argument
// list and return type, re-deriving the function's FuncType and updating
// the symbol and own-scope parameter symbols in place.
func (f *Function) SetTemplateType(formal, actual types.Type) {
	fn := f.typ.(*types.FuncType)
	newParams := make([]types.Type, len(f.Arguments))
	for i, arg := range f.Arguments {
		f.Arguments[i].Type = substituteIfTemplate(arg.Type, formal, actual)
		newParams[i] = f.Arguments[i].Type
		if sym := f.OwnScope.ResolveSymbol(arg.Name); sym != nil {
			sym.Type = f.Arguments[i].Type
		}
	}

	newReturn := substituteIfTemplate(fn.Return, formal, actual)
	f.typ = &types.FuncType{Params: newParams, Return: newReturn, Variadic: fn.Variadic}
	f.sym.Type = f.typ
	f.OwnScope.ReturnType = newReturn
}

func (f *Function) TypeCheck() {
	for _, n := range f.Body {
		n.TypeCheck()
	}
}

func (f *Function) SemanticCheck(statement bool) {
	for _, n := range f.Body {
		n.SemanticCheck(true)
	}
}

func (f *Function) Emit(b Builder) interface{} {
	fnType := f.typ.(*types.FuncType)
	mangled := types.MangleFunctionName(f.scope.Namespaces(), f.Name, fnType.Params)

	fnVal := b.ResolveSymbolValue(f.sym)
	if fnVal == nil {
		fnVal = b.NewBlock("@function:" + mangled)
		b.BindSymbolValue(f.sym, fnVal)
	}

	if len(f.Body) == 0 {
		return fnVal
	}

	b.SetInsertPoint(fnVal)
	entry := b.NewBlock("entry")
	b.SetInsertPoint(entry)

	for i, arg := range f.Arguments {
		if sym := f.OwnScope.ResolveSymbol(arg.Name); sym != nil {
			sym.Bind(entry, i)
		}
	}

	for _, n := range f.Body {
		n.Emit(b)
	}

	return fnVal
}

// ClassField is one field of a ClassDeclaration: its visibility, declared
// type, and name.
type ClassField struct {
	Public bool
	Type   types.Type
	Name   string
}

// ClassMethodDecl pairs a method's Function node with its own visibility.
type ClassMethodDecl struct {
	Public bool
	Fn     *Function
}

// ClassDeclaration declares a struct/class type: its fields (each with a
// private/public flag), its methods, and the completed StructType symbol
// it registers.
type ClassDeclaration struct {
	base

	Name    string
	Fields  []ClassField
	Methods []ClassMethodDecl

	sym *scope.Symbol
}

func NewClassDeclaration(exported bool, name string, fields []ClassField, methods []ClassMethodDecl, structType *types.StructType, enclosing *scope.Scope, span token.Span) *ClassDeclaration {
	sym := scope.NewSymbol(name, structType, enclosing)
	sym.Exported = exported
	enclosing.AddSymbol(sym)

	return &ClassDeclaration{
		base:    base{span: span, scope: enclosing, typ: structType},
		Name:    name,
		Fields:  fields,
		Methods: methods,
		sym:     sym,
	}
}

// AttachClassDeclaration builds a ClassDeclaration around the symbol
// Pass1 already registered for this class, reusing it the same way
// AttachFunction does.
func AttachClassDeclaration(sym *scope.Symbol, name string, fields []ClassField, methods []ClassMethodDecl, enclosing *scope.Scope, span token.Span) *ClassDeclaration {
	return &ClassDeclaration{
		base:    base{span: span, scope: enclosing, typ: sym.Type},
		Name:    name,
		Fields:  fields,
		Methods: methods,
		sym:     sym,
	}
}

func (c *ClassDeclaration) Symbol() *scope.Symbol { return c.sym }

func (c *ClassDeclaration) Contained() []Node {
	nodes := make([]Node, len(c.Methods))
	for i, m := range c.Methods {
		nodes[i] = m.Fn
	}
	return nodes
}

func (c *ClassDeclaration) Clone(into *scope.Scope) Node {
	methods := make([]ClassMethodDecl, len(c.Methods))
	for i, m := range c.Methods {
		methods[i] = ClassMethodDecl{Public: m.Public, Fn: m.Fn.Clone(into).(*Function)}
	}
	return NewClassDeclaration(c.sym.Exported, c.Name, c.Fields, methods, c.typ.(*types.StructType), into, c.span)
}

func (c *ClassDeclaration) TypeCheck() {
	for _, m := range c.Methods {
		m.Fn.TypeCheck()
	}
}

func (c *ClassDeclaration) SemanticCheck(statement bool) {
	for _, m := range c.Methods {
		m.Fn.SemanticCheck(true)
	}
}

// FindField looks up a field by name, reporting whether it exists and
// whether it may be accessed from outside the class body.
func (c *ClassDeclaration) FindField(name string) (ClassField, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ClassField{}, false
}

func (c *ClassDeclaration) Emit(b Builder) interface{} {
	for _, m := range c.Methods {
		m.Fn.Emit(b)
	}
	return nil
}

// EnumDeclaration declares an enum type and its ordered set of cases.
type EnumDeclaration struct {
	base

	Name string

	sym *scope.Symbol
}

func NewEnumDeclaration(exported bool, name string, enumType *types.EnumType, enclosing *scope.Scope, span token.Span) *EnumDeclaration {
	sym := scope.NewSymbol(name, enumType, enclosing)
	sym.Exported = exported
	enclosing.AddSymbol(sym)

	return &EnumDeclaration{
		base: base{span: span, scope: enclosing, typ: enumType},
		Name: name,
		sym:  sym,
	}
}

func (e *EnumDeclaration) Symbol() *scope.Symbol           { return e.sym }
func (e *EnumDeclaration) Clone(into *scope.Scope) Node    { return e }
func (e *EnumDeclaration) TypeCheck()                      {}
func (e *EnumDeclaration) SemanticCheck(statement bool)    {}
func (e *EnumDeclaration) Emit(b Builder) interface{}      { return nil }

// Namespace groups a body of declarations under a named scope, e.g.
// `namespace X { ... }`. It has no symbol of its own -- the names of its
// contained declarations get namespace-qualified through their own
// enclosing (child) scope's Namespace field.
type Namespace struct {
	base

	Name     string
	Body     []Node
	OwnScope *scope.Scope
}

func NewNamespace(exported bool, name string, body []Node, enclosing *scope.Scope, span token.Span) *Namespace {
	own := scope.NewScope(enclosing, name, true)
	return &Namespace{
		base:     base{span: span, scope: enclosing, typ: types.Builtin(types.Void)},
		Name:     name,
		Body:     body,
		OwnScope: own,
	}
}

// NewNamespaceAttached builds a Namespace around an own-scope the caller
// already created and populated (Pass1/Pass2 both need to recurse into a
// namespace's own scope before the Namespace node itself can be built).
func NewNamespaceAttached(exported bool, name string, body []Node, enclosing, own *scope.Scope, span token.Span) *Namespace {
	return &Namespace{
		base:     base{span: span, scope: enclosing, typ: types.Builtin(types.Void)},
		Name:     name,
		Body:     body,
		OwnScope: own,
	}
}

func (n *Namespace) Contained() []Node { return n.Body }

func (n *Namespace) Clone(into *scope.Scope) Node {
	own := n.OwnScope.Clone(into)
	body := make([]Node, len(n.Body))
	for i, c := range n.Body {
		body[i] = c.Clone(own)
	}
	return &Namespace{base: base{span: n.span, scope: into, typ: n.typ}, Name: n.Name, Body: body, OwnScope: own}
}

func (n *Namespace) TypeCheck() {
	for _, c := range n.Body {
		c.TypeCheck()
	}
}

func (n *Namespace) SemanticCheck(statement bool) {
	for _, c := range n.Body {
		c.SemanticCheck(true)
	}
}

func (n *Namespace) Emit(b Builder) interface{} {
	for _, c := range n.Body {
		c.Emit(b)
	}
	return nil
}

// reportPrivateAccess reports the "'x' is a private member of class Y"
// diagnostic; MemberAccess.TypeCheck is its caller.
func reportPrivateAccess(span token.Span, field, class string) {
	diag.ReportCompilerError(span.Start.File, &span, diag.KindAccess, "'"+field+"' is a private member of class "+class)
}
