package driver

import (
	"os"
	"path/filepath"
	"testing"

	"viper/config"
	"viper/diag"
)

func init() {
	diag.Init("silent")
}

func writeVpr(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %s", name, err)
	}
	return path
}

// TestPipelineRunSucceedsOnExportedClassImportScenario runs a
// cross-unit import end to end: a.vpr exports class K, b.vpr plainly
// imports a and references K with no diagnostics expected, and the
// pipeline should write an IR module for b with no errors.
func TestPipelineRunSucceedsOnExportedClassImportScenario(t *testing.T) {
	diag.Init("silent")
	dir := t.TempDir()
	writeVpr(t, dir, "a.vpr", "export class K { public v: i32 }")
	b := writeVpr(t, dir, "b.vpr", "import a;\nfunc main() -> i32 { let k: K; return k.v; }")

	ctx := NewContext(dir)
	pipeline := NewPipeline(ctx)

	out := filepath.Join(dir, "b.ll")
	ok := pipeline.Run(b, out)

	if !ok {
		t.Fatalf("expected the pipeline to succeed on a plain direct-import scenario")
	}
	if !diag.ShouldProceed() {
		t.Fatalf("expected no fatal diagnostics to have been reported")
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected the pipeline to write an IR module to %s: %s", out, err)
	}
}

// TestPipelineRunFailsOnUndeclaredIdentifier exercises the pipeline's
// short-circuit behavior: a type-check failure should stop before IR
// emission and report ShouldProceed()==false without ever writing a
// module.
func TestPipelineRunFailsOnUndeclaredIdentifier(t *testing.T) {
	diag.Init("silent")
	dir := t.TempDir()
	root := writeVpr(t, dir, "bad.vpr", "func main() -> i32 { return missing; }")

	ctx := NewContext(dir)
	pipeline := NewPipeline(ctx)

	out := filepath.Join(dir, "bad.ll")
	ok := pipeline.Run(root, out)

	if ok {
		t.Fatalf("expected the pipeline to fail on an undeclared identifier")
	}
	if diag.ShouldProceed() {
		t.Fatalf("expected a fatal diagnostic to have been reported")
	}
	if _, err := os.Stat(out); err == nil {
		t.Fatalf("expected the pipeline not to write an IR module after a type-check failure")
	}
}

// TestPipelineRunRejectsPrivateFieldAccessFromOutsideClass exercises
// the private-member-access diagnostic through the full pipeline.
func TestPipelineRunRejectsPrivateFieldAccessFromOutsideClass(t *testing.T) {
	diag.Init("silent")
	dir := t.TempDir()
	root := writeVpr(t, dir, "priv.vpr", "class C { v: i32 }\nfunc main() -> i32 { let c: C; return c.v; }")

	ctx := NewContext(dir)
	pipeline := NewPipeline(ctx)

	ok := pipeline.Run(root, filepath.Join(dir, "priv.ll"))

	if ok {
		t.Fatalf("expected the pipeline to reject a private field access from outside its class")
	}
}

// TestPipelineRunSucceedsOnTemplateFunctionExplicitSpecializationScenario
// runs explicit specialization end to end: a template function's `i32`
// specialization is called by name, and the call should resolve to that
// specialization with no diagnostics and no fresh clone.
func TestPipelineRunSucceedsOnTemplateFunctionExplicitSpecializationScenario(t *testing.T) {
	diag.Init("silent")
	dir := t.TempDir()
	root := writeVpr(t, dir, "tmpl.vpr", "template<T: typename> func id(x: T) -> T { return x; }\n"+
		"func id<i32>(x: i32) -> i32 { return x; }\n"+
		"func main() -> i32 { return id<i32>(5); }")

	ctx := NewContext(dir)
	pipeline := NewPipeline(ctx)

	out := filepath.Join(dir, "tmpl.ll")
	ok := pipeline.Run(root, out)

	if !ok {
		t.Fatalf("expected the pipeline to succeed on an explicit template specialization call")
	}
	if !diag.ShouldProceed() {
		t.Fatalf("expected no fatal diagnostics to have been reported")
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected the pipeline to write an IR module to %s: %s", out, err)
	}

	genSym := ctx.Root.LookupLocal("id")
	if genSym == nil || genSym.Template == nil {
		t.Fatalf("expected a generic 'id' symbol with an attached TemplateSymbol to remain in scope")
	}
	if len(genSym.Template.Instantiations) != 1 {
		t.Fatalf("expected exactly one cached instantiation (the explicit specialization, with no call-time clone), got %d", len(genSym.Template.Instantiations))
	}
}

// TestPipelineRunSucceedsOnNamespaceQualifiedCallScenario runs a
// namespace-qualified call end to end: X::f(3) resolves through
// qualified lookup with no diagnostics.
func TestPipelineRunSucceedsOnNamespaceQualifiedCallScenario(t *testing.T) {
	diag.Init("silent")
	dir := t.TempDir()
	root := writeVpr(t, dir, "ns.vpr", "namespace X { func f(a: i32) -> i32 { return a; } }\n"+
		"func main() -> i32 { return X::f(3); }")

	ctx := NewContext(dir)
	pipeline := NewPipeline(ctx)

	out := filepath.Join(dir, "ns.ll")
	if !pipeline.Run(root, out) {
		t.Fatalf("expected the pipeline to succeed on a namespace-qualified call")
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected the pipeline to write an IR module to %s: %s", out, err)
	}
}

// TestPipelineRunResolvesOverloadByArity: two same-named overloads
// differ in parameter count, so the call resolves unambiguously by
// arity.
func TestPipelineRunResolvesOverloadByArity(t *testing.T) {
	diag.Init("silent")
	dir := t.TempDir()
	root := writeVpr(t, dir, "ovl.vpr", "func g(a: i32) -> i32 { return a; }\n"+
		"func g(a: i32, b: i32) -> i32 { return a + b; }\n"+
		"func main() -> i32 { return g(1); }")

	ctx := NewContext(dir)
	pipeline := NewPipeline(ctx)

	if !pipeline.Run(root, filepath.Join(dir, "ovl.ll")) {
		t.Fatalf("expected overload resolution to pick the one-parameter g by arity with no diagnostics")
	}
}

func TestResolveOutputPathPrefersExplicitThenConfigThenDefault(t *testing.T) {
	cfg := &config.Config{OutputPath: "fromconfig.ll"}

	if got := resolveOutputPath("root.vpr", "explicit.ll", cfg); got != "explicit.ll" {
		t.Fatalf("expected an explicit output path to win, got %q", got)
	}
	if got := resolveOutputPath("root.vpr", "", cfg); got != "fromconfig.ll" {
		t.Fatalf("expected the config's output path to win when none is given explicitly, got %q", got)
	}
	if got := resolveOutputPath("root.vpr", "", &config.Config{}); got != "root.vpr.ll" {
		t.Fatalf("expected the default '<rootFile>.ll' fallback, got %q", got)
	}
}
