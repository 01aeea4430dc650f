package parser

import (
	"viper/ast"
	"viper/scope"
	"viper/token"
	"viper/types"
)

// ParsePass2 re-walks the same token stream ParsePass1 already consumed,
// this time parsing full statement/expression bodies and reattaching them
// to the symbols Pass1 declared, via nextAttach/nextChildScope. p.scope
// must be the exact same scope this Parser's Pass1 counterpart started
// from (and p.Registry the same *types.Registry) so the symbols and child
// scopes line up one-for-one -- callers construct two Parser instances
// over the same token slice, sharing both.
func (p *Parser) ParsePass2() []ast.Node {
	p.pos = 0
	var nodes []ast.Node
	for p.current().Kind != token.EndOfFile {
		nodes = append(nodes, p.parseGlobalFull(false)...)
	}
	return nodes
}

func (p *Parser) parseGlobalFull(exported bool) []ast.Node {
	switch p.current().Kind {
	case token.KwExport:
		p.consume()
		if p.current().Kind == token.LBrace {
			p.consume()
			p.exportBlock = true
			var nodes []ast.Node
			for p.current().Kind != token.RBrace {
				nodes = append(nodes, p.parseGlobalFull(true)...)
			}
			p.consume()
			p.exportBlock = false
			return nodes
		}
		return p.parseGlobalFull(true)

	case token.KwImport:
		p.parseImport(exported || p.exportBlock)
		return nil

	case token.KwPure:
		p.consume()
		p.expect(token.KwFunc, "func")
		return []ast.Node{p.parseFunctionFull(true, nil)}
	case token.KwFunc:
		return []ast.Node{p.parseFunctionFull(false, nil)}

	case token.KwClass:
		return []ast.Node{p.parseClassFull()}

	case token.KwNamespace:
		return []ast.Node{p.parseNamespaceFull()}

	case token.KwEnum:
		// Fully resolved during Pass1 (no body to reattach); re-skip the
		// declaration's tokens to keep the cursor in sync.
		p.skipEnumFull()
		return nil

	case token.KwTemplate:
		return p.parseTemplateFull()

	default:
		p.fatal(p.current().Span, "expected global declaration, found "+p.current().String())
		return nil
	}
}

// parseFunctionFull re-parses a function/method signature and its full
// body, reattaching to the symbol Pass1 registered for it. thisType is
// non-nil only when parsing a class method, matching
// parseFunctionSkeletonWithReceiver's Pass1 counterpart exactly so the
// argument lists line up.
func (p *Parser) parseFunctionFull(pure bool, thisType types.Type) *ast.Function {
	enclosing := p.scope
	name, args, _, specialization, span := p.parseFunctionSignature()

	if thisType != nil {
		args = append([]ast.FunctionArgument{{Type: thisType, Name: "this"}}, args...)
	}

	sym := p.nextAttach(enclosing, name)

	own := scope.NewScope(enclosing, "", false)
	if fn, ok := types.Resolve(sym.Type).(*types.FuncType); ok {
		own.ReturnType = fn.Return
	}
	own.IsPure = pure
	if thisType != nil {
		own.Owner = ownerOf(thisType)
	}

	var body []ast.Node
	if p.current().Kind == token.Semicolon {
		p.consume()
	} else {
		prevScope := p.scope
		p.scope = own
		body = p.parseBlock()
		p.scope = prevScope
	}

	fn := ast.AttachFunction(sym, pure, name, args, body, enclosing, own, span)

	if specialization != nil {
		p.registerExplicitSpecialization(enclosing, name, specialization, fn, span)
	}

	return fn
}

// registerExplicitSpecialization handles specialization at parse time:
// once an explicit `func name<T1,...>(...)` specialization's full body
// is parsed, find the generic it specializes -- the same name, Template
// already attached by Pass 1's parseTemplateSkeleton -- among
// enclosing's own symbols, and pre-seed its instantiation cache with
// this specialization directly, so a later call naming the same actual
// types is a cache hit with no clone step. Relies on the specialization
// appearing textually after its generic, the same scope sharing
// LookupLocalNth already assumes.
func (p *Parser) registerExplicitSpecialization(enclosing *scope.Scope, name string, specialization []types.Type, fn *ast.Function, span token.Span) {
	var genSym *scope.Symbol
	for _, sym := range enclosing.Symbols {
		if sym.Name == name && sym.Template != nil {
			genSym = sym
			break
		}
	}
	if genSym == nil {
		p.fatal(span, "could not find templated function "+name+" in scope")
		return
	}
	if len(specialization) != len(genSym.Template.Parameters) {
		p.fatal(span, "template argument list mismatch")
		return
	}

	genSym.Template.Instantiations = append(genSym.Template.Instantiations, scope.TemplateInstantiation{
		Body:             fn,
		ActualParameters: specialization,
	})
}

// parseTemplateFull re-parses a template declaration's full body,
// reattaching to the same generic symbol parseTemplateSkeleton built in
// Pass 1 -- nextAttach/LookupLocalNth thread through that exact
// *scope.Symbol -- and replacing its TemplateSymbol's Body, since the
// Pass 1 skeleton's Body had no statements for a later instantiation to
// clone from.
func (p *Parser) parseTemplateFull() []ast.Node {
	p.consume() // template
	params := p.parseTemplateParams()

	var node ast.Node
	p.withTemplateParams(params, func() {
		switch p.current().Kind {
		case token.KwPure:
			p.consume()
			p.expect(token.KwFunc, "func")
			node = p.parseFunctionFull(true, nil)
		case token.KwFunc:
			node = p.parseFunctionFull(false, nil)
		case token.KwClass:
			node = p.parseClassFull()
		default:
			p.fatal(p.current().Span, "expected 'func' or 'class' after template parameter list, found "+p.current().String())
		}
	})

	if node == nil {
		return nil
	}
	if sym := node.Symbol(); sym != nil && sym.Template != nil {
		sym.Template.Body = node
	}
	return []ast.Node{node}
}

func ownerOf(thisType types.Type) *types.StructType {
	ptr, ok := types.Resolve(thisType).(*types.PointerType)
	if !ok {
		return nil
	}
	st, _ := types.Resolve(ptr.Base).(*types.StructType)
	return st
}

func (p *Parser) parseClassFull() *ast.ClassDeclaration {
	enclosing := p.scope
	p.consume() // class
	nameTok := p.expectConsume(token.Identifier, "identifier")
	name := nameTok.Text

	sym := p.nextAttach(enclosing, name)
	st, _ := sym.Type.(*types.StructType)
	thisType := &types.PointerType{Base: st}

	p.expectConsume(token.LBrace, "{")

	classScope := p.nextChildScope(enclosing)
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
			fn := p.parseFunctionFull(pure, thisType)
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

	return ast.AttachClassDeclaration(sym, name, fields, methods, prevScope, nameTok.Span)
}

func (p *Parser) parseNamespaceFull() *ast.Namespace {
	tok := p.consume() // namespace
	nameTok := p.consume()
	name := nameTok.Text

	p.expectConsume(token.LBrace, "{")

	nsScope := p.nextChildScope(p.scope)
	prevScope := p.scope
	p.scope = nsScope

	var body []ast.Node
	for p.current().Kind != token.RBrace {
		body = append(body, p.parseGlobalFull(p.exportBlock)...)
	}
	p.consume()

	p.scope = prevScope

	return ast.NewNamespaceAttached(false, name, body, prevScope, nsScope, tok.Span)
}

// skipEnumFull re-skips an enum declaration's tokens without re-registering
// anything (Pass1 already fully resolved it into the Registry).
func (p *Parser) skipEnumFull() {
	p.consume() // enum
	p.expectConsume(token.Identifier, "identifier")
	if p.current().Kind == token.Colon {
		p.consume()
		p.parseType()
	}
	p.expectConsume(token.LBrace, "{")
	for p.current().Kind != token.RBrace {
		p.consume()
	}
	p.consume()
}

// ---- statements ----

func (p *Parser) parseBlock() []ast.Node {
	p.expectConsume(token.LBrace, "{")
	var stmts []ast.Node
	for p.current().Kind != token.RBrace {
		stmts = append(stmts, p.parseStatement())
	}
	p.consume()
	return stmts
}

func (p *Parser) parseStatement() ast.Node {
	switch p.current().Kind {
	case token.KwReturn:
		return p.parseReturnStatement()
	case token.KwLet:
		return p.parseVariableDeclaration()
	case token.KwIf:
		return p.parseIfStatement()
	default:
		expr := p.parseExpression(0)
		p.expectConsume(token.Semicolon, ";")
		return expr
	}
}

func (p *Parser) parseReturnStatement() ast.Node {
	tok := p.consume() // return
	if p.current().Kind == token.Semicolon {
		p.consume()
		return ast.NewReturnStatement(p.scope, nil, tok.Span)
	}
	value := p.parseExpression(0)
	span := spanBetween(tok.Span, value.Span())
	p.expectConsume(token.Semicolon, ";")
	return ast.NewReturnStatement(p.scope, value, span)
}

func (p *Parser) parseVariableDeclaration() ast.Node {
	tok := p.consume() // let
	name := p.expectConsume(token.Identifier, "identifier").Text

	var declType types.Type
	if p.current().Kind == token.Colon {
		p.consume()
		declType = p.parseType()
	}

	var init ast.Node
	if p.current().Kind == token.Eq {
		p.consume()
		init = p.parseExpression(0)
	}

	p.expectConsume(token.Semicolon, ";")
	return ast.NewVariableDeclaration(p.scope, name, declType, init, tok.Span)
}

func (p *Parser) parseIfStatement() ast.Node {
	tok := p.consume() // if
	p.expectConsume(token.LParen, "(")
	cond := p.parseExpression(0)
	p.expectConsume(token.RParen, ")")

	then := p.parseBlock()

	var els []ast.Node
	if p.current().Kind == token.KwElse {
		p.consume()
		if p.current().Kind == token.KwIf {
			els = []ast.Node{p.parseIfStatement()}
		} else {
			els = p.parseBlock()
		}
	}

	return ast.NewIfStatement(p.scope, cond, then, els, tok.Span)
}

// ---- expressions (precedence-climbing over binaryPrecedence/prefixPrecedence) ----

func (p *Parser) parseExpression(minPrec int) ast.Node {
	left := p.parsePrefix()
	for {
		prec := binaryPrecedence(p.current().Kind)
		if prec == 0 || prec < minPrec {
			break
		}
		left = p.parseInfixTail(left, prec)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Node {
	switch p.current().Kind {
	case token.Minus:
		tok := p.consume()
		operand := p.parseExpression(prefixPrecedence(token.Minus))
		return ast.NewUnaryExpression(p.scope, ast.OpNegate, operand, spanBetween(tok.Span, operand.Span()))
	case token.Amp:
		tok := p.consume()
		operand := p.parseExpression(prefixPrecedence(token.Amp))
		return ast.NewUnaryExpression(p.scope, ast.OpAddressOf, operand, spanBetween(tok.Span, operand.Span()))
	case token.Star:
		tok := p.consume()
		operand := p.parseExpression(prefixPrecedence(token.Star))
		return ast.NewUnaryExpression(p.scope, ast.OpDeref, operand, spanBetween(tok.Span, operand.Span()))
	case token.Bang:
		tok := p.consume()
		operand := p.parseExpression(85)
		return ast.NewUnaryExpression(p.scope, ast.OpNot, operand, spanBetween(tok.Span, operand.Span()))
	case token.KwCast:
		return p.parseCastExpression()
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parseInfixTail(left ast.Node, prec int) ast.Node {
	opTok := p.consume()

	switch opTok.Kind {
	case token.LParen:
		return p.finishCall(left)
	case token.Dot, token.Arrow:
		fieldTok := p.expectConsume(token.Identifier, "identifier")
		return ast.NewMemberAccess(p.scope, left, fieldTok.Text, opTok.Kind == token.Arrow, opTok.Span, fieldTok.Span)
	case token.Eq:
		right := p.parseExpression(prec) // right-associative
		return ast.NewBinaryExpression(p.scope, left, ast.OpAssign, right, spanBetween(left.Span(), right.Span()))
	default:
		right := p.parseExpression(prec + 1)
		return ast.NewBinaryExpression(p.scope, left, binOpFor(opTok.Kind), right, spanBetween(left.Span(), right.Span()))
	}
}

func (p *Parser) finishCall(callee ast.Node) ast.Node {
	var args []ast.Node
	for p.current().Kind != token.RParen {
		args = append(args, p.parseExpression(0))
		if p.current().Kind != token.RParen {
			p.expectConsume(token.Comma, ",")
		}
	}
	p.consume() // )
	return ast.NewCallExpression(p.scope, callee, args)
}

func (p *Parser) parsePrimary() ast.Node {
	tok := p.current()
	switch tok.Kind {
	case token.IntegerLiteral:
		p.consume()
		return ast.NewIntegerLiteral(p.scope, parseIntText(tok.Text), tok.Span)
	case token.StringLiteral:
		p.consume()
		return ast.NewStringLiteral(p.scope, tok.Text, tok.Span)
	case token.KwTrue:
		p.consume()
		return ast.NewBooleanLiteral(p.scope, true, tok.Span)
	case token.KwFalse:
		p.consume()
		return ast.NewBooleanLiteral(p.scope, false, tok.Span)
	case token.LParen:
		p.consume()
		inner := p.parseExpression(0)
		p.expectConsume(token.RParen, ")")
		return inner
	case token.Identifier:
		names := p.parseNameChain()

		var templateArgs []types.Type
		if p.looksLikeTemplateArgs() {
			p.consume() // <
			for p.current().Kind != token.Gt {
				templateArgs = append(templateArgs, p.parseType())
				if p.current().Kind != token.Gt {
					p.expectConsume(token.Comma, ",")
				}
			}
			p.consume() // >
		}

		span := spanBetween(tok.Span, p.toks[p.pos-1].Span)
		ve := ast.NewVariableExpression(p.scope, names, span)
		ve.TemplateParameters = templateArgs
		return ve
	default:
		p.fatal(tok.Span, "expected expression, found "+tok.String())
		p.consume()
		return ast.NewIntegerLiteral(p.scope, 0, tok.Span)
	}
}

// looksLikeTemplateArgs reports whether the '<' currently under the cursor
// plausibly opens an explicit-specialization argument list
// (`id<T1, T2>(...)`) rather than the less-than operator, scanning purely
// on token kind rather than attempting a real parseType: a failed
// speculative type parse would leave a stray diagnostic behind that diag
// has no way to retract.
func (p *Parser) looksLikeTemplateArgs() bool {
	if p.current().Kind != token.Lt {
		return false
	}
	depth := 0
	for i := 0; i < 64; i++ {
		switch p.peek(i).Kind {
		case token.Lt:
			depth++
		case token.Gt:
			depth--
			if depth == 0 {
				return p.peek(i+1).Kind == token.LParen
			}
		case token.Identifier, token.TypeKeyword, token.ColonColon, token.Star, token.Comma:
			// plausible type-list token; keep scanning
		default:
			return false
		}
	}
	return false
}

func (p *Parser) parseCastExpression() ast.Node {
	tok := p.consume() // cast
	p.expectConsume(token.Lt, "<")
	dest := p.parseType()
	p.expectConsume(token.Gt, ">")
	p.expectConsume(token.LParen, "(")
	value := p.parseExpression(0)
	p.expectConsume(token.RParen, ")")
	return ast.NewCastExpression(p.scope, value, dest, spanBetween(tok.Span, value.Span()))
}

func binOpFor(k token.Kind) ast.BinaryOperator {
	switch k {
	case token.Plus:
		return ast.OpAdd
	case token.Minus:
		return ast.OpSub
	case token.Star:
		return ast.OpMul
	case token.Slash:
		return ast.OpDiv
	case token.EqEq:
		return ast.OpEqual
	case token.Neq:
		return ast.OpNotEqual
	case token.Lt:
		return ast.OpLess
	case token.Le:
		return ast.OpLessEqual
	case token.Gt:
		return ast.OpGreater
	case token.Ge:
		return ast.OpGreaterEqual
	default:
		return ast.OpAdd
	}
}

func spanBetween(a, b token.Span) token.Span {
	return token.Span{Start: a.Start, End: b.End}
}

// nextChildScope returns the parent's nth (in Pass1 creation order)
// namespace/class child scope, advancing the counter. See
// Parser.nextAttach for the same trick applied to symbols.
func (p *Parser) nextChildScope(parent *scope.Scope) *scope.Scope {
	if p.childCounts == nil {
		p.childCounts = make(map[*scope.Scope]int)
	}
	idx := p.childCounts[parent]
	p.childCounts[parent] = idx + 1
	if idx < len(parent.Children) {
		return parent.Children[idx]
	}
	return nil
}
