// Package driver orchestrates the six pipeline stages over a single
// root compilation unit: import resolution, the two parser passes,
// type-check, semantic-check, and IR emission. The whole front end is
// single-threaded and synchronous -- the stages form a fixed order and
// each one reloads nothing, so there is no scheduling to do beyond
// running them in sequence and stopping at the first stage that
// reports a fatal diagnostic.
package driver

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"viper/check"
	"viper/config"
	"viper/diag"
	"viper/imports"
	"viper/irgen"
	"viper/parser"
	"viper/scope"
	"viper/types"
)

// Context owns the three pieces of state shared across the whole
// pipeline: the Type Registry, the scope DAG (which itself owns the
// symbol-id counter), and the pending-type work list (reachable through
// Registry.Pending). Threading these explicitly, rather than as package
// globals, keeps a Context reentrant: a caller embedding the front end
// (an editor integration, a test) can run several independent
// compilations in one process.
type Context struct {
	Registry *types.Registry
	Root     *scope.Scope
	Imports  *imports.Manager
	Config   *config.Config
}

// NewContext builds a fresh, independent Context rooted at dir (the
// directory config.Load searches for viper.toml).
func NewContext(dir string) *Context {
	reg := types.NewRegistry()
	root := scope.NewGlobalScope()

	// NewParseFileFunc's closure needs the very Manager it is about to
	// be installed into (to recurse into nested imports), so the Manager
	// is constructed first with a nil ParseFile and patched in place --
	// ParseFile is a plain exported field for exactly this reason.
	mgr := imports.NewManager(parser.FindImports, nil)
	mgr.ParseFile = parser.NewParseFileFunc(reg, mgr)

	cfg := config.Load(dir)
	for _, p := range cfg.SearchPaths {
		mgr.AddSearchPath(p)
	}

	ctx := &Context{Registry: reg, Root: root, Imports: mgr, Config: cfg}
	return ctx
}

// Pipeline runs the six ordered stages against one root input file,
// short-circuiting as soon as diag reports a fatal diagnostic
// (ShouldProceed turns false). Pipeline is deliberately stateless aside
// from its Context -- a fresh Pipeline per compile run is cheap and
// avoids any need for a reset method.
type Pipeline struct {
	Ctx *Context
}

// NewPipeline constructs a Pipeline over ctx.
func NewPipeline(ctx *Context) *Pipeline {
	return &Pipeline{Ctx: ctx}
}

// Run compiles rootFile, writing the emitted IR module to outputPath (or
// Ctx.Config.OutputPath, or "<rootFile>.ll" if neither is set). It
// returns whether compilation succeeded (ShouldProceed()).
func (p *Pipeline) Run(rootFile, outputPath string) bool {
	diag.ReportCompileHeader(rootFile)

	text, err := ioutil.ReadFile(rootFile)
	if err != nil {
		diag.ReportConfigError("Input", fmt.Sprintf("unable to read %s: %s", rootFile, err.Error()))
		return false
	}

	// Stage 1: Import Graph Resolver. CollectAllImports/ResolveImports
	// are driven lazily from inside Pass 2 (parser.parseImport) per
	// import statement rather than as one upfront graph walk -- plain
	// imports are Pass-1 no-ops -- so this stage's only job here is
	// priming the manager with the root file's own directory as a
	// search path.
	diag.BeginPhase("Resolving imports")
	p.Ctx.Imports.AddSearchPath(filepath.Dir(rootFile))
	diag.EndPhase()
	if !diag.ShouldProceed() {
		return false
	}

	toks := parser.Lex(rootFile, string(text))

	// Stage 2: Symbol Parser (Pass 1).
	diag.BeginPhase("Parsing signatures")
	p1 := parser.New(toks, rootFile, p.Ctx.Registry, p.Ctx.Imports, p.Ctx.Root)
	p1.ParsePass1()
	diag.EndPhase()
	if !diag.ShouldProceed() {
		return false
	}

	// Stage 3: Semantic Parser (Pass 2).
	diag.BeginPhase("Parsing bodies")
	p2 := parser.New(toks, rootFile, p.Ctx.Registry, p.Ctx.Imports, p.Ctx.Root)
	nodes := p2.ParsePass2()
	nodes = append(nodes, p2.ImportedNodes...)
	diag.EndPhase()
	if !diag.ShouldProceed() {
		return false
	}

	// Stages 4-5: Type-Check / Semantic-Check, plus the end-of-pipeline
	// unknown-type sweep.
	diag.BeginPhase("Type-checking")
	check.Run(p.Ctx.Registry, rootFile, nodes)
	diag.EndPhase()
	if !diag.ShouldProceed() {
		return false
	}

	// Stage 6: IR Emission.
	diag.BeginPhase("Emitting IR")
	b := irgen.Emit(moduleNameFor(rootFile), nodes)
	out := resolveOutputPath(rootFile, outputPath, p.Ctx.Config)
	if err := b.WriteIR(out); err != nil {
		diag.ReportFatal("failed to write IR module: " + err.Error())
		return false
	}
	diag.EndPhase()

	diag.ReportCompilationFinished(out)
	return diag.ShouldProceed()
}

func moduleNameFor(rootFile string) string {
	return filepath.Base(rootFile)
}

func resolveOutputPath(rootFile, outputPath string, cfg *config.Config) string {
	if outputPath != "" {
		return outputPath
	}
	if cfg != nil && cfg.OutputPath != "" {
		return cfg.OutputPath
	}
	return rootFile + ".ll"
}

