package scenario

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Filter selects scenarios with a CEL expression over the variables name,
// suite, tags and tier, for example
//
//	"vendor" in tags && !("exploratory" in tags)
//	suite == "settings" && name.startsWith("general")
type Filter struct {
	expr string
	prog cel.Program
}

var filterEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		cel.Variable("name", cel.StringType),
		cel.Variable("suite", cel.StringType),
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Variable("tier", cel.StringType),
	)
})

// CompileFilter parses and type-checks expr, which must yield a bool. An
// empty expression selects everything and returns a nil filter.
func CompileFilter(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil //nolint:nilnil // a nil filter matches everything
	}
	env, err := filterEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create filter environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if err = issues.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile filter: %w", err)
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter expression must return bool but got %s", out.String())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter: %w", err)
	}
	return &Filter{expr: expr, prog: prog}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return "true"
	}
	return f.expr
}

// Match evaluates the filter for one scenario. A nil filter matches.
func (f *Filter) Match(suite, name string, tags []Tag, tier string) (bool, error) {
	if f == nil {
		return true, nil
	}
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = string(tag)
	}
	out, _, err := f.prog.Eval(map[string]any{
		"name":  name,
		"suite": suite,
		"tags":  names,
		"tier":  tier,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter on %s/%s: %w", suite, name, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("filter did not evaluate to a bool")
	}
	return matched, nil
}
