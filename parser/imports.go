package parser

import (
	"strings"

	"viper/ast"
	"viper/imports"
	"viper/scope"
	"viper/token"
	"viper/types"
)

// FindImports implements imports.FindImportsFunc: a lex-only scan for
// `import a.b.c;` / `export import a.b.c;` directives, each dot-chain
// joined into a single filesystem-style path, one segment per
// identifier.
func FindImports(text, path string) []imports.ImportRef {
	toks := Lex(path, text)

	var found []imports.ImportRef
	for i := 0; i < len(toks); i++ {
		if toks[i].Kind != token.KwImport {
			continue
		}
		exported := i > 0 && toks[i-1].Kind == token.KwExport
		i++
		var segs []string
		for i < len(toks) && toks[i].Kind != token.Semicolon && toks[i].Kind != token.EndOfFile {
			if toks[i].Kind == token.Identifier {
				segs = append(segs, toks[i].Text)
			}
			i++
		}
		if len(segs) > 0 {
			found = append(found, imports.ImportRef{Path: strings.Join(segs, "/"), Export: exported})
		}
	}
	return found
}

// NewParseFileFunc closes over the shared Registry and Manager a
// driver.Context owns, returning an imports.ParseFileFunc that runs the
// normal two-pass pipeline over an imported file's text. Closing over
// these rather than taking them as ParseFileFunc arguments is what keeps
// the imports package itself free of any parser import (see
// imports/manager.go's package doc).
func NewParseFileFunc(reg *types.Registry, mgr *imports.Manager) imports.ParseFileFunc {
	return func(text, path string, sc *scope.Scope, imported bool) []interface{} {
		toks := Lex(path, text)

		p1 := New(toks, path, reg, mgr, sc)
		p1.ParsePass1()

		p2 := New(toks, path, reg, mgr, sc)
		nodes := p2.ParsePass2()
		nodes = append(nodes, p2.ImportedNodes...)

		ret := make([]interface{}, len(nodes))
		for i, n := range nodes {
			ret[i] = n
		}
		return ret
	}
}

// parseImport resolves one import directive: the path is a dot-separated
// identifier chain (not a string literal), resolved through the shared
// Manager into the full transitive import closure, with each newly-seen
// file spliced into the active scope as a child and filtered down to the
// symbols actually reachable from this file via the export chain. A file
// already spliced by an earlier import (a diamond graph's shared leaf) is
// not re-parsed, only re-filtered against this closure's edges. Only
// called from Pass 2 (parseGlobalFull); plain imports are a no-op during
// Pass 1 and are resolved here instead. `exported` is set when the
// directive itself was an `export import`, which types the closure's
// first edge for the visibility chain-walk.
func (p *Parser) parseImport(exported bool) {
	tok := p.consume() // import

	var segs []string
	for p.current().Kind != token.Semicolon {
		segs = append(segs, p.expectConsume(token.Identifier, "identifier").Text)
		if p.current().Kind != token.Semicolon {
			p.expectConsume(token.Dot, ".")
		}
	}
	p.consume() // ;

	importPath := strings.Join(segs, "/")

	var allImports []imports.Import
	if err := p.Imports.CollectAllImports(importPath, p.file, exported, &allImports); err != nil {
		p.fatal(tok.Span, err.Error())
		return
	}

	seen := map[string]bool{}
	for _, im := range allImports {
		if im.From == p.file || seen[im.From] {
			continue
		}
		seen[im.From] = true

		if !p.Imports.AlreadyImported(im.From) {
			fileScope := scope.NewScope(p.scope, "", true)

			nodes, err := p.Imports.ResolveImports(im.From, im.To, fileScope, im.IsExport)
			if err != nil {
				p.fatal(tok.Span, err.Error())
				continue
			}
			for _, n := range nodes {
				if node, ok := n.(ast.Node); ok {
					p.ImportedNodes = append(p.ImportedNodes, node)
				}
			}
		}

		for _, exp := range p.Imports.Exports {
			if exp.From != im.From || exp.Symbol == nil {
				continue
			}
			if !imports.WasExportedTo(p.file, allImports, exp) {
				exp.Symbol.Removed = true
			}
		}
	}
}
