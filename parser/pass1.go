package parser

import (
	"viper/ast"
	"viper/scope"
	"viper/token"
	"viper/types"
)

// ParsePass1 walks the whole file registering every top-level signature
// (function/method types, struct/enum layouts) into the real, persistent
// scope tree and Registry, skipping every function/method body
// token-by-token rather than parsing it. Pass2 later re-walks the same
// token stream and reattaches full bodies to the symbols declared here,
// so nothing here is thrown away: the skeleton pass doubles as the
// front end's forward-declaration pass, rather than building a
// throwaway AST the way a pure lookahead pre-parse would.
func (p *Parser) ParsePass1() []ast.Node {
	var nodes []ast.Node
	for p.current().Kind != token.EndOfFile {
		nodes = append(nodes, p.parseGlobalSkeleton(false)...)
	}
	return nodes
}

// parseGlobalSkeleton returns a slice rather than a single Node because an
// `export { ... }` block splices every declaration it contains into the
// caller's list -- it isn't itself a node.
func (p *Parser) parseGlobalSkeleton(exported bool) []ast.Node {
	switch p.current().Kind {
	case token.KwExport:
		p.consume()
		if p.current().Kind == token.LBrace {
			p.consume()
			p.exportBlock = true
			var nodes []ast.Node
			for p.current().Kind != token.RBrace {
				nodes = append(nodes, p.parseGlobalSkeleton(true)...)
			}
			p.consume()
			p.exportBlock = false
			return nodes
		}
		return p.parseGlobalSkeleton(true)

	case token.KwImport:
		// Plain imports are a no-op at Pass 1 and only actually resolved
		// -- scope splice, export filtering -- at Pass 2, in
		// parseGlobalFull; resolving them here too would make Pass 2 see
		// every imported symbol twice. Pass 1 only needs to keep its
		// cursor past the statement.
		p.skipImportSkeleton()
		return nil

	case token.KwPure:
		p.consume()
		p.expect(token.KwFunc, "func")
		return []ast.Node{p.parseFunctionSkeleton(true, exported || p.exportBlock)}
	case token.KwFunc:
		return []ast.Node{p.parseFunctionSkeleton(false, exported || p.exportBlock)}

	case token.KwClass:
		return []ast.Node{p.parseClassSkeleton(exported || p.exportBlock)}

	case token.KwNamespace:
		return []ast.Node{p.parseNamespaceSkeleton(exported || p.exportBlock)}

	case token.KwEnum:
		return []ast.Node{p.parseEnumSkeleton(exported || p.exportBlock)}

	case token.KwTemplate:
		return p.parseTemplateSkeleton(exported || p.exportBlock)

	default:
		p.fatal(p.current().Span, "expected global declaration, found "+p.current().String())
		return nil
	}
}

// skipBalanced consumes a `{ ... }` body (the opening brace must be
// current) without interpreting its contents, tracking nesting depth so
// an inner `{`/`}` pair (e.g. an `if` body) doesn't terminate the skip
// early.
func (p *Parser) skipBalanced() {
	p.expect(token.LBrace, "{")
	depth := 0
	for {
		switch p.current().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				p.consume()
				return
			}
		case token.EndOfFile:
			p.fatal(p.current().Span, "unexpected end of file in body")
			return
		}
		p.consume()
	}
}

// parseFunctionSignature parses `func name(args) -> ret`, or, when name
// is immediately followed by `<...>`, the explicit-specialization form
// `func name<T1, T2>(args) -> ret` -- specialization is non-nil only for
// the latter, and its element list is what
// registerExplicitSpecialization matches against a generic's formal
// parameter count to find the template it specializes.
func (p *Parser) parseFunctionSignature() (name string, args []ast.FunctionArgument, fnType *types.FuncType, specialization []types.Type, span token.Span) {
	tok := p.consume() // func
	span = tok.Span

	name = p.expectConsume(token.Identifier, "identifier").Text

	if p.current().Kind == token.Lt {
		p.consume()
		for p.current().Kind != token.Gt {
			specialization = append(specialization, p.parseType())
			if p.current().Kind != token.Gt {
				p.expectConsume(token.Comma, ",")
			}
		}
		p.consume() // >
	}

	p.expectConsume(token.LParen, "(")
	var paramTypes []types.Type
	for p.current().Kind != token.RParen {
		argName := p.expectConsume(token.Identifier, "identifier").Text
		p.expectConsume(token.Colon, ":")
		argType := p.parseType()
		args = append(args, ast.FunctionArgument{Type: argType, Name: argName})
		paramTypes = append(paramTypes, argType)
		if p.current().Kind != token.RParen {
			p.expectConsume(token.Comma, ",")
		}
	}
	p.consume() // )

	p.expectConsume(token.Arrow, "->")
	ret := p.parseType()

	fnType = &types.FuncType{Params: paramTypes, Return: ret}
	return
}

func (p *Parser) parseFunctionSkeleton(pure, exported bool) ast.Node {
	return p.parseFunctionSkeletonWithReceiver(pure, exported, nil)
}

// parseFunctionSkeletonWithReceiver parses a function/method signature and
// body-skip identically to parseFunctionSkeleton, except when thisType is
// non-nil: a synthetic `this` parameter of that (pointer-to-class) type is
// prepended to the argument list and own-scope symbols, so a method body's
// implicit member references (`ast.VariableExpression.TypeCheck`'s
// `scope.ResolveSymbol("this")` path) always find a receiver.
func (p *Parser) parseFunctionSkeletonWithReceiver(pure, exported bool, thisType types.Type) ast.Node {
	// Pass 1 treats every specialization as an ordinary declaration and
	// leaves matching it to its generic to Pass 2's registerExplicitSpecialization
	// -- that lookup needs the generic's symbol to already exist in
	// Symbols, which is only guaranteed once both passes' textual walks
	// are complete.
	name, args, fnType, _, span := p.parseFunctionSignature()

	if thisType != nil {
		args = append([]ast.FunctionArgument{{Type: thisType, Name: "this"}}, args...)
		fnType = &types.FuncType{Params: append([]types.Type{thisType}, fnType.Params...), Return: fnType.Return}
	}

	own := scope.NewScope(p.scope, "", false)
	own.ReturnType = fnType.Return

	if p.current().Kind == token.Semicolon {
		p.consume()
		return ast.NewFunction(exported, pure, name, fnType, args, nil, p.scope, own, span)
	}

	p.skipBalanced()
	return ast.NewFunction(exported, pure, name, fnType, args, nil, p.scope, own, span)
}

func (p *Parser) parseClassSkeleton(exported bool) ast.Node {
	tok := p.consume() // class
	name := p.expectConsume(token.Identifier, "identifier").Text

	pending := p.pendingStructType(p.scope.Namespaces(), name, tok.Span)
	thisType := &types.PointerType{Base: pending}

	p.expectConsume(token.LBrace, "{")

	classScope := scope.NewScope(p.scope, name, true)
	classScope.Owner = nil // set below once the StructType exists
	prevScope := p.scope
	p.scope = classScope

	var fields []ast.ClassField
	var methods []ast.ClassMethodDecl
	for p.current().Kind != token.RBrace {
		public := false
		if p.current().Kind == token.KwPublic {
			p.consume()
			public = true
		}

		if p.current().Kind == token.KwPure || p.current().Kind == token.KwFunc {
			pure := false
			if p.current().Kind == token.KwPure {
				p.consume()
				p.expect(token.KwFunc, "func")
				pure = true
			}
			fn := p.parseFunctionSkeletonWithReceiver(pure, public, thisType).(*ast.Function)
			methods = append(methods, ast.ClassMethodDecl{Public: public, Fn: fn})
			continue
		}

		fieldName := p.expectConsume(token.Identifier, "identifier").Text
		p.expectConsume(token.Colon, ":")
		fieldType := p.parseType()
		fields = append(fields, ast.ClassField{Public: public, Type: fieldType, Name: fieldName})

		if p.current().Kind != token.RBrace {
			p.expectConsume(token.Semicolon, ";")
		}
	}
	p.consume() // }

	p.scope = prevScope

	structFields := make([]types.StructField, len(fields))
	off := 0
	for i, f := range fields {
		structFields[i] = types.StructField{Name: f.Name, Type: f.Type, Offset: off, Public: f.Public}
		off += f.Type.Size()
	}
	structMethods := make([]types.Method, len(methods))
	for i, m := range methods {
		structMethods[i] = types.Method{Name: m.Fn.Name, Func: m.Fn.Type().(*types.FuncType)}
	}

	pending.Set(structFields, structMethods)
	st := pending.InitComplete(p.Registry)
	p.Registry.Add(st.MangleID(), st)
	classScope.Owner = st

	return ast.NewClassDeclaration(exported, name, fields, methods, st, prevScope, tok.Span)
}

func (p *Parser) parseNamespaceSkeleton(exported bool) ast.Node {
	p.consume() // namespace
	tok := p.consume()
	name := tok.Text

	p.expectConsume(token.LBrace, "{")

	nsScope := scope.NewScope(p.scope, name, true)
	prevScope := p.scope
	p.scope = nsScope

	var body []ast.Node
	for p.current().Kind != token.RBrace {
		body = append(body, p.parseGlobalSkeleton(exported)...)
	}
	p.consume()

	p.scope = prevScope

	return ast.NewNamespaceAttached(exported, name, body, prevScope, nsScope, tok.Span)
}

func (p *Parser) parseEnumSkeleton(exported bool) ast.Node {
	tok := p.consume() // enum
	name := p.expectConsume(token.Identifier, "identifier").Text

	backing := types.Builtin(types.I32)
	if p.current().Kind == token.Colon {
		p.consume()
		if bt, ok := p.parseType().(*types.BuiltinType); ok {
			backing = bt
		}
	}

	p.expectConsume(token.LBrace, "{")

	var cases []types.EnumCase
	next := 0
	for p.current().Kind != token.RBrace {
		caseName := p.expectConsume(token.Identifier, "identifier").Text
		value := next
		if p.current().Kind == token.Eq {
			p.consume()
			value = int(parseIntText(p.expectConsume(token.IntegerLiteral, "integer literal").Text))
		}
		cases = append(cases, types.EnumCase{Name: caseName, Value: value})
		next = value + 1

		if p.current().Kind != token.RBrace {
			p.expectConsume(token.Comma, ",")
		}
	}
	p.consume()

	et := &types.EnumType{Namespaces: p.scope.Namespaces(), TypeName: name, Cases: cases, Backing: backing}
	p.Registry.Add(et.MangleID(), et)

	return ast.NewEnumDeclaration(exported, name, et, p.scope, tok.Span)
}

func (p *Parser) skipImportSkeleton() {
	p.consume() // import
	for p.current().Kind != token.Semicolon {
		p.consume()
	}
	p.consume()
}

// parseTemplateSkeleton parses a generic declaration's `template<...>`
// parameter list, then its wrapped func/class skeleton exactly as an
// ordinary (non-generic) one -- with the formal parameters resolvable as
// types for the duration via withTemplateParams -- and attaches the
// resulting TemplateSymbol to the symbol it declared. The instantiation
// cache lives on that TemplateSymbol from here on.
func (p *Parser) parseTemplateSkeleton(exported bool) []ast.Node {
	p.consume() // template
	params := p.parseTemplateParams()

	var node ast.Node
	p.withTemplateParams(params, func() {
		switch p.current().Kind {
		case token.KwPure:
			p.consume()
			p.expect(token.KwFunc, "func")
			node = p.parseFunctionSkeleton(true, exported)
		case token.KwFunc:
			node = p.parseFunctionSkeleton(false, exported)
		case token.KwClass:
			node = p.parseClassSkeleton(exported)
		default:
			p.fatal(p.current().Span, "expected 'func' or 'class' after template parameter list, found "+p.current().String())
		}
	})

	if node == nil {
		return nil
	}

	if sym := node.Symbol(); sym != nil {
		sym.Template = &scope.TemplateSymbol{Parameters: params, Body: node}
		p.TemplateSymbols = append(p.TemplateSymbols, sym)
	}

	return []ast.Node{node}
}
