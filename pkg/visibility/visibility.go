// Package visibility evaluates the equality predicates that show or hide
// field blocks.
package visibility

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Evaluator decides whether a rule holds for the live value of its source
// field.
type Evaluator interface {
	Eval(rule schema.Rule, live any) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(rule schema.Rule, live any) bool

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(rule schema.Rule, live any) bool {
	return fn(rule, live)
}

// Equality is the default evaluator. A list value matches when it contains the
// expected value; anything else matches on string equality.
var Equality Evaluator = EvaluatorFunc(func(rule schema.Rule, live any) bool {
	return Match(live, rule.Value)
})

// Match reports whether live satisfies expected. Nil compares as "".
func Match(live, expected any) bool {
	want := stringify(expected)
	if items, ok := asList(live); ok {
		for _, item := range items {
			if stringify(item) == want {
				return true
			}
		}
		return false
	}
	return stringify(live) == want
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	return schema.NormalizeID(value)
}

// Describe renders a rule for log output.
func Describe(rule schema.Rule) string {
	return fmt.Sprintf("%s == %v", rule.Field, rule.Value)
}
