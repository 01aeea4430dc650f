// Package imports implements the import graph resolver: discovering every
// transitively-referenced compilation unit, splicing its exported symbols
// into the importing scope, and tracking which declarations are visible
// at the program root via the export chain.
//
// The parser is the one component that actually knows how to turn source
// text into tokens, a symbol skeleton, and (on the exported path) a full
// AST -- so rather than importing the parser package directly (which
// would create parser <-> imports <-> parser cycle, since the parser
// calls back into the Manager whenever it hits an `import` statement),
// the Manager is handed the parsing operations it needs as callbacks by
// whoever constructs it (the driver).
package imports

import (
	"os"
	"path/filepath"

	"viper/common"
	"viper/scope"
)

// Import records one edge of the import graph: the file at `From` was
// imported by the file at `To`. IsExport marks an `export import` edge --
// `To` re-exports everything in `From` to its own importers -- which is
// the only edge kind the visibility chain-walk may traverse through an
// intermediate file (the final hop into the chain's root may be plain).
type Import struct {
	From     string
	To       string
	IsExport bool
}

// Export records a symbol made visible outside its declaring file: `From`
// is the compilation unit the symbol was collected from, `ExportedFrom`
// is the path the visibility chain-walk starts from (the declaring file
// itself for a symbol export; the importing file for the bare record an
// `export import` edge leaves behind). Symbol is nil for a bare edge
// record that carries no symbol of its own.
type Export struct {
	From         string
	Symbol       *scope.Symbol
	ExportedFrom string
}

// ImportRef is one import directive found in a unit's header: the
// (unresolved) path it names and whether the directive was an
// `export import`.
type ImportRef struct {
	Path   string
	Export bool
}

// FindImportsFunc discovers the import directives a compilation unit's
// header names, without building a full AST -- the Pass 1 "header-only
// pre-parse".
type FindImportsFunc func(text, path string) []ImportRef

// ParseFileFunc fully parses a compilation unit's text into top-level AST
// nodes (as interface{}, since this package does not depend on the ast
// package's concrete Node type) within the given scope.
type ParseFileFunc func(text, path string, sc *scope.Scope, imported bool) []interface{}

// Manager is the process-wide import resolver. One Manager is
// constructed per compilation run and threaded through driver.Context.
type Manager struct {
	SearchPaths   []string
	ImportedFiles []string

	Exports                []Export
	PendingStructTypeNames [][]string

	FindImports FindImportsFunc
	ParseFile   ParseFileFunc
}

// NewManager builds a Manager whose default search path is the current
// working directory.
func NewManager(findImports FindImportsFunc, parseFile ParseFileFunc) *Manager {
	cwd, _ := os.Getwd()
	return &Manager{
		SearchPaths: []string{cwd},
		FindImports: findImports,
		ParseFile:   parseFile,
	}
}

// AddSearchPath appends a directory to the ordered list consulted when an
// import path isn't found relative to the importing file.
func (m *Manager) AddSearchPath(dir string) {
	m.SearchPaths = append(m.SearchPaths, dir)
}

// AddPendingStructType records that `names` (a namespace-qualified type
// path) was referenced but not yet resolved. The end-of-pipeline "unknown
// type" sweep (check.Run) reads the Type Registry's pending list, not
// this one.
func (m *Manager) AddPendingStructType(names []string) {
	m.PendingStructTypeNames = append(m.PendingStructTypeNames, names)
}

// ClearExports resets the accumulated export/pending-type lists so one
// Manager can serve another independent compilation run.
func (m *Manager) ClearExports() {
	m.Exports = nil
	m.PendingStructTypeNames = nil
}

// resolvePath finds the file backing an import path: first relative to
// the importing file's directory, then each configured search path, in
// order. Returns "" if nothing matches.
func (m *Manager) resolvePath(path, relativeTo string) string {
	withExt := path + common.SrcFileExtension

	candidate := filepath.Join(filepath.Dir(relativeTo), withExt)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	for _, sp := range m.SearchPaths {
		candidate = filepath.Join(sp, withExt)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// CollectAllImports discovers the full transitive import closure starting
// from `path` (imported by `relativeTo`, via an `export import` when
// isExport is set), appending an Import edge for every reference found --
// including repeats, so a diamond graph gets one edge per importing file
// -- but only recursing into a given file's own imports the first time
// it's seen, which keeps the traversal linear regardless of fan-out and
// makes an import cycle a dedup rather than an error.
func (m *Manager) CollectAllImports(path, relativeTo string, isExport bool, imports *[]Import) error {
	found := m.resolvePath(path, relativeTo)
	if found == "" {
		return &NotFoundError{Path: path, RelativeTo: relativeTo}
	}

	alreadySeen := false
	for _, im := range *imports {
		if im.From == found {
			alreadySeen = true
			break
		}
	}

	*imports = append(*imports, Import{From: found, To: relativeTo, IsExport: isExport})

	if alreadySeen {
		return nil
	}

	text, err := os.ReadFile(found)
	if err != nil {
		return err
	}

	for _, imp := range m.FindImports(string(text), found) {
		if err := m.CollectAllImports(imp.Path, found, imp.Export, imports); err != nil {
			return err
		}
	}

	return nil
}

// AlreadyImported reports whether ResolveImports has parsed the file at
// path during this compilation run, so a diamond import graph splices a
// shared file's scope exactly once.
func (m *Manager) AlreadyImported(path string) bool {
	for _, f := range m.ImportedFiles {
		if f == path {
			return true
		}
	}
	return false
}

// ResolveImports fully parses the file at `path` (imported by
// `relativeTo`) into `sc`, records an Export edge for the import itself
// when `exported` is set (an `export import`), and walks the resulting
// scope tree collecting one Export per declared symbol so importers three
// levels up the chain can still find it via WasExportedTo.
func (m *Manager) ResolveImports(path, relativeTo string, sc *scope.Scope, exported bool) ([]interface{}, error) {
	m.ImportedFiles = append(m.ImportedFiles, path)

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	nodes := m.ParseFile(string(text), path, sc, true)

	if exported {
		m.Exports = append(m.Exports, Export{From: path, ExportedFrom: relativeTo})
	}

	m.Exports = append(m.Exports, collectScopeExports(sc, path)...)

	return nodes, nil
}

// collectScopeExports records one Export per symbol declared anywhere in
// the spliced scope tree. The chain walk starts at the symbol's own
// declaring file, so ExportedFrom is always `path` here.
func collectScopeExports(sc *scope.Scope, path string) []Export {
	var ret []Export
	for _, sym := range sc.Symbols {
		ret = append(ret, Export{From: path, Symbol: sym, ExportedFrom: path})
	}
	for _, child := range sc.Children {
		ret = append(ret, collectScopeExports(child, path)...)
	}
	return ret
}

// WasExportedTo reports whether the symbol behind `exp` is visible at
// `root`: there must be a chain of Import edges from the symbol's
// declaring file to root in which every intermediate hop is an
// `export import` edge. The final hop into root itself may be a plain
// import -- a directly-imported exported symbol is always visible at its
// importer. A symbol not marked Exported is never visible regardless of
// the chain.
func WasExportedTo(root string, edges []Import, exp Export) bool {
	if exp.Symbol != nil && !exp.Symbol.Exported {
		return false
	}
	return reachesRoot(root, edges, exp.ExportedFrom, make(map[string]bool))
}

func reachesRoot(root string, edges []Import, path string, seen map[string]bool) bool {
	if path == root {
		return true
	}
	if seen[path] {
		return false
	}
	seen[path] = true

	for _, e := range edges {
		if e.From != path {
			continue
		}
		if e.To == root {
			return true
		}
		if e.IsExport && reachesRoot(root, edges, e.To, seen) {
			return true
		}
	}

	return false
}

// NotFoundError reports that an import path could not be resolved
// against any search path.
type NotFoundError struct {
	Path       string
	RelativeTo string
}

func (e *NotFoundError) Error() string {
	return "cannot find imported module '" + e.Path + "' (imported by " + e.RelativeTo + ")"
}
