package check

import (
	"viper/ast"
	"viper/diag"
	"viper/scope"
	"viper/token"
	"viper/types"
)

// InstantiateTemplate services a call to `name<T1,...>` whose actual
// types have no cached specialization yet: clone the generic symbol's
// template body, substitute every formal parameter for the actual type
// the call site named, type-check and semantic-check the fresh clone,
// then cache it on the generic's TemplateSymbol so a later call naming
// the same actual types is a cache hit with no clone step. Wired in as
// ast.Instantiator below.
func InstantiateTemplate(genSym *scope.Symbol, actual []types.Type, span token.Span, file string) *scope.TemplateInstantiation {
	ts := genSym.Template
	if ts == nil {
		return nil
	}

	body, ok := ts.Body.(ast.Node)
	if !ok {
		diag.ReportCompilerError(file, &span, diag.KindType, "could not find templated function "+genSym.Name+" in scope")
		return nil
	}

	if len(actual) != len(ts.Parameters) {
		diag.ReportCompilerError(file, &span, diag.KindType, "template argument list mismatch")
		return nil
	}

	clone := body.Clone(genSym.Owner)
	for i, param := range ts.Parameters {
		substituteTemplateType(clone, &types.TemplateType{Param: param.Name}, actual[i])
	}

	clone.TypeCheck()
	clone.SemanticCheck(true)

	ts.Instantiations = append(ts.Instantiations, scope.TemplateInstantiation{
		Body:             clone,
		ActualParameters: append([]types.Type{}, actual...),
	})
	return &ts.Instantiations[len(ts.Instantiations)-1]
}

// substituteTemplateType applies SetTemplateType across n and every node it
// transitively contains -- SetTemplateType itself only ever touches its
// receiver's own fields, per ast.Node's doc comment, so the tree walk lives
// here instead.
func substituteTemplateType(n ast.Node, formal, actual types.Type) {
	n.SetTemplateType(formal, actual)
	for _, c := range n.Contained() {
		substituteTemplateType(c, formal, actual)
	}
}

func init() {
	ast.Instantiator = InstantiateTemplate
}
