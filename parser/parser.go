// Package parser turns a lexed token stream into the typed AST scope
// resolves and irgen emits: a hand-written recursive descent parser
// with precedence climbing for expressions, run as two explicit passes
// over the same token stream. Pass 1 registers every signature and
// skips balanced bodies; Pass 2 re-walks the stream parsing full
// bodies and reattaching them to the symbols Pass 1 declared. Both
// passes share one token-cursor/expression engine, exposed as two
// entry points on a single Parser type.
package parser

import (
	"strconv"

	"viper/ast"
	"viper/diag"
	"viper/imports"
	"viper/lexer"
	"viper/scope"
	"viper/token"
	"viper/types"
)

// Lex runs a file's full token stream to completion, appending the
// terminal EndOfFile token both passes and the header pre-parse rely on.
func Lex(file, src string) []token.Token {
	l := lexer.New(file, src)
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EndOfFile {
			return toks
		}
	}
}

// Parser is a single-file recursive descent parser. One instance is used
// per pass (a fresh Parser is constructed for Pass2 over the same token
// stream, so its attach and child-scope counters start from zero;
// ParsePass2 itself resets pos to the start).
type Parser struct {
	toks []token.Token
	pos  int
	file string

	Registry *types.Registry
	Imports  *imports.Manager

	scope       *scope.Scope
	exportBlock bool

	// TemplateSymbols accumulates every generic function/class Pass1
	// registers, for diagnostics/tooling that want to enumerate every
	// template in a file without walking the whole scope DAG.
	TemplateSymbols []*scope.Symbol

	// templateParams makes a template declaration's own formal parameters
	// resolvable by parseType as it walks the signature/body that follows
	// -- e.g. `T` in `template<T: typename> func id(x: T) -> T`. Non-nil
	// only for the duration of that one declaration; see
	// withTemplateParams.
	templateParams map[string]*types.TemplateType

	// ImportedNodes accumulates the fully-parsed (Pass1+Pass2 already run)
	// top-level nodes of every file pulled in by an `import` statement,
	// collected during this Parser's own Pass2 walk -- see parseImport.
	// The driver appends these to its own Pass2 result to build the final
	// program tree, matching Parser::parseImport's `mInsertNodeFn(node)`.
	ImportedNodes []ast.Node

	// attachCounts tracks, per (scope, name), how many same-named
	// declarations Pass2 has already reattached in that scope -- see
	// scope.Scope.LookupLocalNth.
	attachCounts map[*scope.Scope]map[string]int

	// childCounts tracks, per parent scope, how many namespace/class child
	// scopes Pass2 has already navigated back into -- see nextChildScope.
	childCounts map[*scope.Scope]int
}

// nextAttach returns the symbol Pass1 declared for the nth (in textual
// order) declaration named name in sc, advancing the counter so a
// following overload of the same name in the same scope attaches to its
// own signature instead.
func (p *Parser) nextAttach(sc *scope.Scope, name string) *scope.Symbol {
	if p.attachCounts == nil {
		p.attachCounts = make(map[*scope.Scope]map[string]int)
	}
	counts, ok := p.attachCounts[sc]
	if !ok {
		counts = make(map[string]int)
		p.attachCounts[sc] = counts
	}
	n := counts[name]
	counts[name]++
	return sc.LookupLocalNth(name, n)
}

// New constructs a Parser over toks, rooted at sc.
func New(toks []token.Token, file string, reg *types.Registry, mgr *imports.Manager, sc *scope.Scope) *Parser {
	return &Parser{toks: toks, file: file, Registry: reg, Imports: mgr, scope: sc}
}

func (p *Parser) current() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(offset int) token.Token {
	idx := p.pos + offset
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) consume() token.Token {
	t := p.current()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) fatal(span token.Span, message string) {
	diag.ReportCompilerError(p.file, &span, diag.KindParse, message)
}

// expect reports a fatal diagnostic quoting the expected and actual
// token names. It does not unwind: the driver checks the aggregated
// error state at the next stage boundary, so parsing continues to the
// end of the current construct on a best-effort basis.
func (p *Parser) expect(kind token.Kind, name string) {
	if p.current().Kind != kind {
		p.fatal(p.current().Span, "expected '"+name+"', found "+p.current().String())
	}
}

func (p *Parser) expectConsume(kind token.Kind, name string) token.Token {
	p.expect(kind, name)
	return p.consume()
}

// Binary operator precedence table; higher binds tighter.
func binaryPrecedence(k token.Kind) int {
	switch k {
	case token.LParen, token.Dot, token.Arrow:
		return 90
	case token.Star, token.Slash:
		return 75
	case token.Plus, token.Minus:
		return 70
	case token.Lt, token.Gt, token.Le, token.Ge:
		return 55
	case token.EqEq, token.Neq:
		return 50
	case token.Eq:
		return 20
	default:
		return 0
	}
}

func prefixPrecedence(k token.Kind) int {
	switch k {
	case token.Minus, token.Amp, token.Star:
		return 85
	default:
		return 0
	}
}

// parseType parses a type reference: a builtin keyword, a (possibly
// namespace-qualified) struct/enum name, or a function-pointer type
// `(T, T)* -> T`, each optionally followed by one or more trailing `*`
// for pointer levels. Ported from Parser::parseType.
func (p *Parser) parseType() types.Type {
	if p.current().Kind == token.LParen {
		return p.parseFunctionPointerType()
	}

	var t types.Type

	if p.current().Kind == token.Identifier {
		span := p.current().Span
		names := p.parseNameChain()
		namespaces := namespacesOf(names)
		name := lastOf(names)
		if len(names) == 1 && p.templateParams[name] != nil {
			// A bare reference to the enclosing template declaration's own
			// formal parameter, e.g. `T` in `func id(x: T) -> T` -- never
			// namespace-qualified, and never a Registry lookup (the
			// parameter isn't a declared struct/enum at all).
			t = p.templateParams[name]
		} else if got := p.lookupNamedType(namespaces, name); got != nil {
			t = got
		} else {
			// Same-file forward reference (the struct's own declaration
			// hasn't been walked yet by this Pass1 pass) or a type pulled
			// in by an `import` (imports are a no-op during Pass 1, so the
			// imported file's own declarations don't exist in the Registry
			// yet). Stand in with the same PendingType placeholder
			// parseClassSkeleton uses for a struct's self-reference, so
			// check.Run's end-of-pipeline sweep -- not this call --
			// decides whether the name was ever actually declared.
			t = p.pendingStructType(namespaces, name, span)
		}
	} else {
		p.expect(token.TypeKeyword, "type name")
		name := p.consume().Text
		if kind, ok := builtinKindByName(name); ok {
			t = types.Builtin(kind)
		} else {
			p.fatal(p.current().Span, "unknown type '"+name+"'")
			t = types.Builtin(types.ErrorType)
		}
	}

	for p.current().Kind == token.Star {
		p.consume()
		t = &types.PointerType{Base: t}
	}

	return t
}

// lookupNamedType resolves a (possibly qualified) struct/enum name against
// the Registry, trying the use site's ambient namespace chain as a
// qualifying prefix, longest prefix first -- the same fallback order
// scope.ResolveQualifiedSymbol applies to symbols, so `S` written inside
// `namespace X` finds `X::S` before a global `S`.
func (p *Parser) lookupNamedType(namespaces []string, name string) types.Type {
	ambient := p.scope.Namespaces()
	for i := len(ambient); i >= 0; i-- {
		qual := append(append([]string{}, ambient[:i]...), namespaces...)
		if t, ok := p.Registry.Get(types.MangleStructName(qual, name)); ok {
			return t
		}
		if t, ok := p.Registry.Get(types.MangleEnumName(qual, name)); ok {
			return t
		}
	}
	return nil
}

// pendingStructType returns the Registry's existing PendingType placeholder
// for the (namespaces, name) struct, creating and registering a fresh one
// if none exists yet. parseType's forward-reference path and
// parseClassSkeleton's self-reference path both go through this so a
// signature referencing a type before (or instead of importing) its
// declaration and the declaration itself end up sharing one PendingType
// instance -- the only one that ever gets InitComplete-d -- rather than
// each minting its own, which would leave the first one permanently
// unresolved.
func (p *Parser) pendingStructType(namespaces []string, name string, span token.Span) *types.PendingType {
	mangled := types.MangleStructName(namespaces, name)
	if existing, ok := p.Registry.Get(mangled); ok {
		if pending, ok := existing.(*types.PendingType); ok {
			return pending
		}
	}

	pending := types.NewPendingType(p.Registry, namespaces, name, span)
	p.Registry.Add(mangled, pending)
	return pending
}

func (p *Parser) parseFunctionPointerType() types.Type {
	p.consume() // (
	var params []types.Type
	for p.current().Kind != token.RParen {
		params = append(params, p.parseType())
		if p.current().Kind != token.RParen {
			p.expectConsume(token.Comma, ",")
		}
	}
	p.consume() // )

	pointerLevels := 0
	p.expect(token.Star, "*")
	for p.current().Kind == token.Star {
		pointerLevels++
		p.consume()
	}

	p.expectConsume(token.Arrow, "->")
	ret := p.parseType()

	var t types.Type = &types.FuncType{Params: params, Return: ret}
	for pointerLevels > 0 {
		t = &types.PointerType{Base: t}
		pointerLevels--
	}
	return t
}

// parseNameChain parses `A::B::C` and returns the component list.
func (p *Parser) parseNameChain() []string {
	names := []string{p.expectConsume(token.Identifier, "identifier").Text}
	for p.current().Kind == token.ColonColon {
		p.consume()
		names = append(names, p.expectConsume(token.Identifier, "identifier").Text)
	}
	return names
}

func namespacesOf(names []string) []string {
	if len(names) <= 1 {
		return nil
	}
	return names[:len(names)-1]
}

func lastOf(names []string) string { return names[len(names)-1] }

func builtinKindByName(name string) (types.BuiltinKind, bool) {
	switch name {
	case "i8":
		return types.I8, true
	case "i16":
		return types.I16, true
	case "i32":
		return types.I32, true
	case "i64":
		return types.I64, true
	case "u8":
		return types.U8, true
	case "u16":
		return types.U16, true
	case "u32":
		return types.U32, true
	case "u64":
		return types.U64, true
	case "bool":
		return types.Bool, true
	case "string":
		return types.StringKind, true
	case "void":
		return types.Void, true
	}
	return 0, false
}

func parseIntText(text string) int64 {
	v, _ := strconv.ParseInt(text, 0, 64)
	return v
}

// parseTemplateParams parses a template declaration's `<T: typename, ...>`
// formal parameter list, the `template` keyword already consumed by the
// caller. `typename` is the only constraint kind the language has, so
// it's required rather than one of several keywords to dispatch on.
func (p *Parser) parseTemplateParams() []scope.TemplateParameter {
	p.expectConsume(token.Lt, "<")
	var params []scope.TemplateParameter
	for p.current().Kind != token.Gt {
		name := p.expectConsume(token.Identifier, "identifier").Text
		p.expectConsume(token.Colon, ":")
		p.expectConsume(token.KwTypename, "typename")
		params = append(params, scope.TemplateParameter{Name: name})
		if p.current().Kind != token.Gt {
			p.expectConsume(token.Comma, ",")
		}
	}
	p.consume() // >
	return params
}

// withTemplateParams makes each of params resolvable by parseType via
// p.templateParams for the duration of fn, restoring whatever set (nil,
// for every caller so far -- template declarations don't nest) was active
// beforehand.
func (p *Parser) withTemplateParams(params []scope.TemplateParameter, fn func()) {
	prev := p.templateParams
	p.templateParams = make(map[string]*types.TemplateType, len(params))
	for _, tp := range params {
		p.templateParams[tp.Name] = &types.TemplateType{Param: tp.Name}
	}
	fn()
	p.templateParams = prev
}
