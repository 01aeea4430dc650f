package ast

import (
	"viper/scope"
	"viper/token"
	"viper/types"
)

// Instantiator is set by check's init to InstantiateTemplate. ast can't
// import check directly (check already imports ast to walk the tree), so
// CallExpression goes through this package-level hook instead -- the same
// function-variable inversion parser/imports.go uses for
// imports.ParseFileFunc.
var Instantiator func(genSym *scope.Symbol, actual []types.Type, span token.Span, file string) *scope.TemplateInstantiation
