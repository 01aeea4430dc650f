package parser

import (
	"os"
	"path/filepath"
	"testing"

	"viper/ast"
	"viper/diag"
	"viper/imports"
	"viper/scope"
	"viper/token"
	"viper/types"
)

func init() {
	diag.Init("silent")
}

func TestPass1RegistersFunctionSignatureWithoutParsingBody(t *testing.T) {
	src := `func add(a: i32, b: i32) -> i32 { return a + b; }`
	toks := Lex("t.vpr", src)

	reg := types.NewRegistry()
	root := scope.NewGlobalScope()
	p := New(toks, "t.vpr", reg, nil, root)

	p.ParsePass1()

	sym := root.LookupLocal("add")
	if sym == nil {
		t.Fatalf("expected Pass1 to register a symbol for 'add' in the global scope")
	}
	fn, ok := sym.Type.(*types.FuncType)
	if !ok || len(fn.Params) != 2 {
		t.Fatalf("expected 'add' to have a two-parameter FuncType, got %+v", sym.Type)
	}
}

func TestPass1SkipsFunctionBodyEntirelyLeavingCursorAtEOF(t *testing.T) {
	src := `func f() -> void { let x: i32 = 1; if x == 1 { return; } }`
	toks := Lex("t.vpr", src)

	reg := types.NewRegistry()
	root := scope.NewGlobalScope()
	p := New(toks, "t.vpr", reg, nil, root)

	p.ParsePass1()

	if p.current().Kind != token.EndOfFile {
		t.Fatalf("expected Pass1 to consume through EndOfFile after skipping the body")
	}
}

func TestPass2ReattachesBodyToThePass1Symbol(t *testing.T) {
	src := `func add(a: i32, b: i32) -> i32 { return a + b; }`
	toks := Lex("t.vpr", src)

	reg := types.NewRegistry()
	root := scope.NewGlobalScope()

	p1 := New(toks, "t.vpr", reg, nil, root)
	p1.ParsePass1()
	pass1Sym := root.LookupLocal("add")

	p2 := New(toks, "t.vpr", reg, nil, root)
	nodes := p2.ParsePass2()

	if len(nodes) != 1 {
		t.Fatalf("expected exactly one top-level node from Pass2, got %d", len(nodes))
	}
	fn, ok := nodes[0].(interface{ Symbol() *scope.Symbol })
	if !ok {
		t.Fatalf("expected the parsed node to expose Symbol()")
	}
	if fn.Symbol() != pass1Sym {
		t.Fatalf("expected Pass2 to reattach to the exact symbol Pass1 declared, not a new one")
	}
}

// TestTemplateSkeletonAttachesTemplateSymbolToItsGeneric exercises
// parseTemplateSkeleton directly: a `template<T: typename> func id(x: T)
// -> T` declaration's symbol should carry a TemplateSymbol with one
// formal parameter named T.
func TestTemplateSkeletonAttachesTemplateSymbolToItsGeneric(t *testing.T) {
	src := `template<T: typename> func id(x: T) -> T { return x; }`
	toks := Lex("t.vpr", src)

	reg := types.NewRegistry()
	root := scope.NewGlobalScope()
	p := New(toks, "t.vpr", reg, nil, root)
	p.ParsePass1()

	sym := root.LookupLocal("id")
	if sym == nil || sym.Template == nil {
		t.Fatalf("expected a generic 'id' symbol with an attached TemplateSymbol")
	}
	if len(sym.Template.Parameters) != 1 || sym.Template.Parameters[0].Name != "T" {
		t.Fatalf("expected exactly one formal parameter named T, got %+v", sym.Template.Parameters)
	}
}

// TestPass2RegistersExplicitSpecializationIntoTheGenericsCache covers
// specialization at parse time: an explicit `func id<i32>(x: i32) -> i32`
// specialization, parsed after its generic, should be pre-seeded into
// the generic's instantiation cache without any call ever triggering a
// clone.
func TestPass2RegistersExplicitSpecializationIntoTheGenericsCache(t *testing.T) {
	src := "template<T: typename> func id(x: T) -> T { return x; }\n" +
		"func id<i32>(x: i32) -> i32 { return x; }\n"
	toks := Lex("t.vpr", src)

	reg := types.NewRegistry()
	root := scope.NewGlobalScope()

	p1 := New(toks, "t.vpr", reg, nil, root)
	p1.ParsePass1()

	p2 := New(toks, "t.vpr", reg, nil, root)
	p2.ParsePass2()

	sym := root.LookupLocal("id")
	if sym == nil || sym.Template == nil {
		t.Fatalf("expected a generic 'id' symbol with an attached TemplateSymbol")
	}
	if len(sym.Template.Instantiations) != 1 {
		t.Fatalf("expected exactly one pre-seeded instantiation from the explicit specialization, got %d", len(sym.Template.Instantiations))
	}
	i32 := types.Builtin(types.I32)
	if !types.Equal(sym.Template.Instantiations[0].ActualParameters[0], i32) {
		t.Fatalf("expected the specialization's actual parameter to be i32, got %v", sym.Template.Instantiations[0].ActualParameters[0])
	}
}

// TestLooksLikeTemplateArgsDistinguishesCallFromLessThan guards against
// parsePrimary misreading an ordinary `a < b` comparison as a
// specialization-argument call.
func TestLooksLikeTemplateArgsDistinguishesCallFromLessThan(t *testing.T) {
	src := `func f() -> bool { return a < b; }`
	toks := Lex("t.vpr", src)

	reg := types.NewRegistry()
	root := scope.NewGlobalScope()
	root.AddSymbol(scope.NewSymbol("a", types.Builtin(types.I32), root))
	root.AddSymbol(scope.NewSymbol("b", types.Builtin(types.I32), root))

	p1 := New(toks, "t.vpr", reg, nil, root)
	p1.ParsePass1()

	p2 := New(toks, "t.vpr", reg, nil, root)
	nodes := p2.ParsePass2()

	fn, ok := nodes[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected a *ast.Function, got %T", nodes[0])
	}
	ret, ok := fn.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected a return statement, got %T", fn.Body[0])
	}
	be, ok := ret.Value.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected 'a < b' to parse as a binary comparison, not a template-specialization call, got %T", ret.Value)
	}
	if be.Op != ast.OpLess {
		t.Fatalf("expected the '<' operator to parse as OpLess, got %v", be.Op)
	}
}

// TestParseAndCheckLeaveTokenVectorUntouched: running both parser
// passes and the check passes over a unit never mutates the token
// vector -- tokens are immutable after lexing.
func TestParseAndCheckLeaveTokenVectorUntouched(t *testing.T) {
	src := "namespace X { func f(a: i32) -> i32 { return a; } }\n" +
		"func main() -> i32 { return X::f(3); }"
	toks := Lex("t.vpr", src)
	copied := append([]token.Token{}, toks...)

	reg := types.NewRegistry()
	root := scope.NewGlobalScope()

	p1 := New(toks, "t.vpr", reg, nil, root)
	p1.ParsePass1()
	p2 := New(toks, "t.vpr", reg, nil, root)
	nodes := p2.ParsePass2()

	for _, n := range nodes {
		n.TypeCheck()
	}
	for _, n := range nodes {
		n.SemanticCheck(true)
	}

	if len(toks) != len(copied) {
		t.Fatalf("expected the token vector's length to survive parsing unchanged, got %d vs %d", len(toks), len(copied))
	}
	for i := range toks {
		if toks[i] != copied[i] {
			t.Fatalf("expected token %d to survive parsing unchanged, got %+v vs %+v", i, toks[i], copied[i])
		}
	}
}

// TestPlainImportIsNoOpAtPass1ButResolvedAtPass2: a plain `import` only
// splices the imported scope and filters non-exported symbols during
// Pass 2, never Pass 1.
func TestPlainImportIsNoOpAtPass1ButResolvedAtPass2(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.vpr")
	if err := os.WriteFile(aPath, []byte(`export class K { public v: i32 }`), 0644); err != nil {
		t.Fatalf("failed to write fixture: %s", err)
	}
	bSrc := "import a;\nfunc main() -> i32 { let k: K; return k.v; }"
	bPath := filepath.Join(dir, "b.vpr")
	if err := os.WriteFile(bPath, []byte(bSrc), 0644); err != nil {
		t.Fatalf("failed to write fixture: %s", err)
	}

	reg := types.NewRegistry()
	root := scope.NewGlobalScope()

	mgr := imports.NewManager(FindImports, nil)
	mgr.ParseFile = NewParseFileFunc(reg, mgr)
	mgr.AddSearchPath(dir)

	toks := Lex(bPath, bSrc)

	p1 := New(toks, bPath, reg, mgr, root)
	p1.ParsePass1()

	if _, ok := reg.Get(types.MangleStructName(nil, "K")); ok {
		t.Fatalf("expected K to be entirely unknown after Pass1 -- main's body (where K is referenced) is skipped whole, and the import statement itself is a no-op at Pass1")
	}
	if len(root.Children) != 0 {
		t.Fatalf("expected Pass1 to leave the global scope with no spliced import children, got %d", len(root.Children))
	}

	p2 := New(toks, bPath, reg, mgr, root)
	nodes := p2.ParsePass2()
	nodes = append(nodes, p2.ImportedNodes...)

	if len(p2.ImportedNodes) == 0 {
		t.Fatalf("expected Pass2 to have collected imported top-level nodes from a.vpr")
	}
	if len(root.Children) == 0 {
		t.Fatalf("expected Pass2's parseImport to splice a.vpr's scope in as a child of the global scope")
	}

	got, ok := reg.Get(types.MangleStructName(nil, "K"))
	if !ok {
		t.Fatalf("expected K to still be registered after Pass2")
	}
	if _, isPending := got.(*types.PendingType); isPending {
		t.Fatalf("expected K to have been completed to a real StructType by Pass2, not remain a PendingType")
	}
	if len(nodes) == 0 {
		t.Fatalf("expected at least one combined top-level node (main, plus anything spliced from the import)")
	}
}
