package scope

import (
	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/config"
)

// InitPrelude defines the built-in entities into a root context: the ground
// types, the container datatypes with their constructors, the core traits,
// and the impls the ground types carry.
func InitPrelude(root *Context) error {
	repo := root.repo

	ground := []string{
		config.IntTypeName,
		config.FloatTypeName,
		config.CharTypeName,
		config.StringTypeName,
	}
	for _, name := range ground {
		if err := root.Define(ast.NewData(repo, name, nil, nil)); err != nil {
			return err
		}
	}

	boolData := ast.NewData(repo, config.BoolTypeName, nil, []*ast.Constructor{
		ast.NewConstructor(repo, config.TrueCtorName, nil),
		ast.NewConstructor(repo, config.FalseCtorName, nil),
	})
	if err := root.Define(boolData); err != nil {
		return err
	}

	// data List T = Nil | Cons T (List T)
	listParam := ast.NewParam(repo, "T", nil, nil)
	listData := ast.NewData(repo, config.ListTypeName, []*ast.Param{listParam}, []*ast.Constructor{
		ast.NewConstructor(repo, config.NilCtorName, nil),
		ast.NewConstructor(repo, config.ConsCtorName, []ast.Type{
			ast.NewTypeName(repo, "T"),
			ast.NewApply(repo, ast.NewTypeName(repo, config.ListTypeName), []ast.Type{ast.NewTypeName(repo, "T")}),
		}),
	})
	if err := root.Define(listData); err != nil {
		return err
	}

	// data Option T = Zero | Some T
	optionParam := ast.NewParam(repo, "T", nil, nil)
	optionData := ast.NewData(repo, config.OptionTypeName, []*ast.Param{optionParam}, []*ast.Constructor{
		ast.NewConstructor(repo, config.ZeroCtorName, nil),
		ast.NewConstructor(repo, config.SomeCtorName, []ast.Type{ast.NewTypeName(repo, "T")}),
	})
	if err := root.Define(optionData); err != nil {
		return err
	}

	// data Result T E = Ok T | Fail E
	resultParams := []*ast.Param{
		ast.NewParam(repo, "T", nil, nil),
		ast.NewParam(repo, "E", nil, nil),
	}
	resultData := ast.NewData(repo, config.ResultTypeName, resultParams, []*ast.Constructor{
		ast.NewConstructor(repo, config.OkCtorName, []ast.Type{ast.NewTypeName(repo, "T")}),
		ast.NewConstructor(repo, config.FailCtorName, []ast.Type{ast.NewTypeName(repo, "E")}),
	})
	if err := root.Define(resultData); err != nil {
		return err
	}

	// data Map K V (abstract)
	mapParams := []*ast.Param{
		ast.NewParam(repo, "K", nil, nil),
		ast.NewParam(repo, "V", nil, nil),
	}
	if err := root.Define(ast.NewData(repo, config.MapTypeName, mapParams, nil)); err != nil {
		return err
	}

	if err := defineCoreTraits(root); err != nil {
		return err
	}
	return defineCoreImpls(root)
}

func defineCoreTraits(root *Context) error {
	repo := root.repo

	// trait Show S { show : (fn (S) String) }
	show := ast.NewTrait(repo, config.ShowTraitName, nil,
		[]*ast.Param{ast.NewParam(repo, "S", nil, nil)}, nil,
		[]*ast.Method{
			ast.NewMethod(repo, "show", ast.NewFunType(repo, nil,
				[]ast.Type{ast.NewTypeName(repo, "S")},
				ast.NewTypeName(repo, config.StringTypeName))),
		})
	if err := root.Define(show); err != nil {
		return err
	}

	// trait Eq A { eq : (fn (A A) Bool) }
	eq := ast.NewTrait(repo, config.EqTraitName, nil,
		[]*ast.Param{ast.NewParam(repo, "A", nil, nil)}, nil,
		[]*ast.Method{
			ast.NewMethod(repo, "eq", ast.NewFunType(repo, nil,
				[]ast.Type{ast.NewTypeName(repo, "A"), ast.NewTypeName(repo, "A")},
				ast.NewTypeName(repo, config.BoolTypeName))),
		})
	if err := root.Define(eq); err != nil {
		return err
	}

	// trait Ord A (super Eq) { cmp : (fn (A A) Int) }
	ord := ast.NewTrait(repo, config.OrdTraitName,
		[]*ast.TypeName{ast.NewTypeName(repo, config.EqTraitName)},
		[]*ast.Param{ast.NewParam(repo, "A", nil, nil)}, nil,
		[]*ast.Method{
			ast.NewMethod(repo, "cmp", ast.NewFunType(repo, nil,
				[]ast.Type{ast.NewTypeName(repo, "A"), ast.NewTypeName(repo, "A")},
				ast.NewTypeName(repo, config.IntTypeName))),
		})
	return root.Define(ord)
}

func defineCoreImpls(root *Context) error {
	repo := root.repo
	pairs := [][2]string{
		{config.ShowTraitName, config.IntTypeName},
		{config.ShowTraitName, config.StringTypeName},
		{config.ShowTraitName, config.BoolTypeName},
		{config.EqTraitName, config.IntTypeName},
		{config.EqTraitName, config.StringTypeName},
		{config.OrdTraitName, config.IntTypeName},
	}
	for _, pair := range pairs {
		impl := ast.NewImpl(repo,
			ast.NewTypeName(repo, pair[0]), nil,
			ast.NewTypeName(repo, pair[1]))
		if err := root.DefineImpl(impl); err != nil {
			return err
		}
	}
	return nil
}
