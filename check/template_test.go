package check

import (
	"testing"

	"viper/ast"
	"viper/diag"
	"viper/scope"
	"viper/token"
	"viper/types"
)

func init() {
	diag.Init("silent")
}

// buildGenericIdentity builds the AST for
// `template<T: typename> func id(x: T) -> T { return x; }` directly
// (bypassing the parser), mirroring what parseTemplateSkeleton/Full
// produce, so InstantiateTemplate can be exercised in isolation from
// parsing.
func buildGenericIdentity(root *scope.Scope) *scope.Symbol {
	tp := &types.TemplateType{Param: "T"}
	fnType := &types.FuncType{Params: []types.Type{tp}, Return: tp}

	own := scope.NewScope(root, "", false)
	own.ReturnType = tp
	arg := ast.FunctionArgument{Type: tp, Name: "x"}

	fn := ast.NewFunction(false, false, "id", fnType, []ast.FunctionArgument{arg}, nil, root, own, token.Span{})
	ret := ast.NewReturnStatement(own, ast.NewVariableExpression(own, []string{"x"}, token.Span{}), token.Span{})
	fn.Body = []ast.Node{ret}

	sym := fn.Symbol()
	sym.Template = &scope.TemplateSymbol{
		Parameters: []scope.TemplateParameter{{Name: "T"}},
		Body:       fn,
	}
	return sym
}

// TestInstantiateTemplateClonesAndSubstitutesTheActualType exercises
// the call-time instantiation path in isolation: cloning `id`'s body
// with T substituted for i32 produces a function whose argument and
// return type are both i32, with the generic's own declaration left
// untouched.
func TestInstantiateTemplateClonesAndSubstitutesTheActualType(t *testing.T) {
	root := scope.NewGlobalScope()
	genSym := buildGenericIdentity(root)
	i32 := types.Builtin(types.I32)

	inst := InstantiateTemplate(genSym, []types.Type{i32}, token.Span{}, "t.vpr")
	if inst == nil {
		t.Fatalf("expected a non-nil instantiation")
	}

	clone, ok := inst.Body.(*ast.Function)
	if !ok {
		t.Fatalf("expected the instantiation's body to be a *ast.Function, got %T", inst.Body)
	}
	if !types.Equal(clone.Arguments[0].Type, i32) {
		t.Fatalf("expected the cloned argument's type to be substituted to i32, got %v", clone.Arguments[0].Type)
	}
	cloneFnType, ok := clone.Type().(*types.FuncType)
	if !ok || !types.Equal(cloneFnType.Return, i32) {
		t.Fatalf("expected the cloned function's return type to be substituted to i32, got %v", clone.Type())
	}

	genFn := genSym.Template.Body.(*ast.Function)
	if _, isTemplate := genFn.Arguments[0].Type.(*types.TemplateType); !isTemplate {
		t.Fatalf("expected the original generic declaration's argument type to remain a TemplateType, got %T", genFn.Arguments[0].Type)
	}
}

// TestInstantiateTemplateCachesSoASecondCallWithTheSameActualIsAHit is
// the no-re-clone guarantee: once an instantiation is cached on the
// generic symbol, FindInstantiation must report a hit for the same
// actual-parameter list without another clone.
func TestInstantiateTemplateCachesSoASecondCallWithTheSameActualIsAHit(t *testing.T) {
	root := scope.NewGlobalScope()
	genSym := buildGenericIdentity(root)
	i32 := types.Builtin(types.I32)

	first := InstantiateTemplate(genSym, []types.Type{i32}, token.Span{}, "t.vpr")
	if len(genSym.Template.Instantiations) != 1 {
		t.Fatalf("expected exactly one cached instantiation after the first call, got %d", len(genSym.Template.Instantiations))
	}

	hit, ok := genSym.Template.FindInstantiation([]types.Type{i32})
	if !ok {
		t.Fatalf("expected a cache hit for the same actual-parameter list")
	}
	if hit.Body != first.Body {
		t.Fatalf("expected the cache hit to return the exact same cloned body, not a fresh clone")
	}
}
