package xlgraph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExpressionEvaluator evaluates search predicates. IsConditionTrue wraps
// ErrInput when a condition yields something other than a bool; any other
// error means the condition does not apply to that cell.
type ExpressionEvaluator interface {
	Compile(expression string) error
	Evaluate(expression string, env map[string]any) (any, error)
	IsConditionTrue(condition string, env map[string]any) (bool, error)
}

// exprEvaluator implements ExpressionEvaluator using expr-lang/expr.
type exprEvaluator struct {
	cache sync.Map // expression string → compiled *vm.Program
}

// NewExpressionEvaluator creates an evaluator backed by expr-lang/expr.
func NewExpressionEvaluator() ExpressionEvaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) Compile(expression string) error {
	_, err := e.compile(expression)
	return err
}

func (e *exprEvaluator) Evaluate(expression string, env map[string]any) (any, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := e.compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", expression, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluate expression %q: %w", expression, err)
	}
	return result, nil
}

func (e *exprEvaluator) IsConditionTrue(condition string, env map[string]any) (bool, error) {
	result, err := e.Evaluate(condition, env)
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, nil
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: condition %q evaluated to %T, expected bool", ErrInput, condition, result)
	}
	return b, nil
}

// compile caches programs by source text. Cell values change type from
// cell to cell, so programs are compiled without a typed environment.
func (e *exprEvaluator) compile(expression string) (*vm.Program, error) {
	if cached, ok := e.cache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.cache.Store(expression, program)
	return program, nil
}

// cellEnv returns the variables a predicate sees for one cell.
func cellEnv(c *Cell) map[string]any {
	value, typ := c.doc.cellValue(c.el)
	return map[string]any{
		"value":   value,
		"text":    c.doc.cellDisplayText(c.el),
		"row":     int(c.ref.row),
		"column":  int(c.ref.column),
		"address": c.ref.address,
		"kind":    typ.String(),
		"formula": c.Formula(),
		"style":   int(c.StyleIndex()),
	}
}

// Find returns the stored cells of the range for which expression is true.
// The expression sees value, text, row, column, address, kind, formula
// and style, e.g. `kind == "number" && value > 100`. A cell whose value
// cannot be compared the way the expression asks does not match.
func (r *CellRange) Find(expression string) ([]*Cell, error) {
	ev := r.ws.doc.opts.evaluator
	if err := ev.Compile(expression); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	var (
		found []*Cell
		fail  error
	)
	r.ws.existingCells(r.ref, func(_ uint32, _ uint16, c *Cell) bool {
		ok, err := ev.IsConditionTrue(expression, cellEnv(c))
		switch {
		case errors.Is(err, ErrInput):
			fail = err
			return false
		case err != nil:
			return true
		case ok:
			found = append(found, c)
		}
		return true
	})
	if fail != nil {
		return nil, fail
	}
	return found, nil
}

// FindFirst returns the first cell for which expression is true, or nil.
func (r *CellRange) FindFirst(expression string) (*Cell, error) {
	cells, err := r.Find(expression)
	if err != nil || len(cells) == 0 {
		return nil, err
	}
	return cells[0], nil
}
