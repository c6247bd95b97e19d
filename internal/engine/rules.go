package engine

import (
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"blog-backend/internal/metadata"
)

// Validator checks request payloads against the rules declared per payload.
type Validator struct {
	rules map[string][]*metadata.Rule
}

// NewValidator compiles every expression rule up front so that a broken
// expression fails startup instead of a request.
func NewValidator(rules map[string][]*metadata.Rule) (*Validator, error) {
	for payload, list := range rules {
		for _, r := range list {
			if r.Type != "expression" {
				continue
			}
			prog, err := CompileExpression(r.Definition.Expression)
			if err != nil {
				return nil, fmt.Errorf("payload %s: %w", payload, err)
			}
			r.Compiled = prog
		}
	}
	return &Validator{rules: rules}, nil
}

// Validate runs the field rules and then the expression rules of payload
// against record. Only the first failing field rule is reported per field.
func (v *Validator) Validate(payload string, record map[string]any) []ErrorDetail {
	rules := v.rules[payload]
	var errs []ErrorDetail

	failed := make(map[string]bool)
	for _, r := range rules {
		if r.Type != "field" || failed[r.Definition.Field] {
			continue
		}
		if detail := EvaluateFieldRule(r, record); detail != nil {
			errs = append(errs, *detail)
			failed[r.Definition.Field] = true
			if r.Definition.StopOnFail {
				return errs
			}
		}
	}

	env := map[string]any{"record": record}
	for _, r := range rules {
		if r.Type != "expression" {
			continue
		}
		if detail := EvaluateExpressionRule(r, env); detail != nil {
			errs = append(errs, *detail)
			if r.Definition.StopOnFail {
				return errs
			}
		}
	}
	return errs
}

// EvaluateFieldRule evaluates a single field rule against a record.
// Returns nil if the rule passes, or an ErrorDetail if it fails.
func EvaluateFieldRule(rule *metadata.Rule, record map[string]any) *ErrorDetail {
	fieldName := rule.Definition.Field
	op := rule.Definition.Operator
	val, exists := record[fieldName]

	fail := func(defaultMsg string) *ErrorDetail {
		msg := rule.Definition.Message
		if msg == "" {
			msg = defaultMsg
		}
		return &ErrorDetail{Field: fieldName, Rule: op, Message: msg}
	}

	if op == "required" {
		if !exists || val == nil {
			return fail(fmt.Sprintf("%s is required", fieldName))
		}
		return nil
	}
	if !exists || val == nil {
		return nil // absent fields are only checked by "required"
	}

	switch op {
	case "string":
		if _, ok := val.(string); !ok {
			return fail(fmt.Sprintf("%s must be a string", fieldName))
		}

	case "bool":
		if _, ok := val.(bool); !ok {
			return fail(fmt.Sprintf("%s must be a boolean", fieldName))
		}

	case "id_list":
		items, ok := val.([]any)
		if !ok {
			return fail(fmt.Sprintf("%s must be an array of numbers", fieldName))
		}
		for _, it := range items {
			n, ok := toFloat64(it)
			if !ok || n != math.Trunc(n) || n < 1 {
				return fail(fmt.Sprintf("%s must be an array of numbers", fieldName))
			}
		}

	case "min_items":
		items, ok := val.([]any)
		if !ok {
			return nil
		}
		threshold, ok := toFloat64(rule.Definition.Value)
		if !ok {
			return nil
		}
		if len(items) < int(threshold) {
			return fail(fmt.Sprintf("%s must contain at least %d item(s)", fieldName, int(threshold)))
		}

	case "min_length":
		s, ok := val.(string)
		if !ok {
			return nil
		}
		threshold, ok := toFloat64(rule.Definition.Value)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(s) < int(threshold) {
			return fail(fmt.Sprintf("%s must contain at least %d character(s)", fieldName, int(threshold)))
		}

	case "max_length":
		s, ok := val.(string)
		if !ok {
			return nil
		}
		threshold, ok := toFloat64(rule.Definition.Value)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(s) > int(threshold) {
			return fail(fmt.Sprintf("%s must contain at most %d character(s)", fieldName, int(threshold)))
		}

	case "pattern":
		s, ok := val.(string)
		if !ok {
			return nil
		}
		pattern, ok := rule.Definition.Value.(string)
		if !ok {
			return nil
		}
		matched, err := regexp.MatchString(pattern, s)
		if err != nil || !matched {
			return fail(fmt.Sprintf("%s has an invalid format", fieldName))
		}
	}

	return nil
}

// CompileExpression compiles an expression string into an expr-lang program.
func CompileExpression(expression string) (*vm.Program, error) {
	prog, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	return prog, nil
}

// EvaluateExpressionRule evaluates a compiled expression rule against an environment.
// Returns nil if the rule passes (expression is false), or an ErrorDetail if violated (expression is true).
func EvaluateExpressionRule(rule *metadata.Rule, env map[string]any) *ErrorDetail {
	prog, ok := rule.Compiled.(*vm.Program)
	if !ok || prog == nil {
		compiled, err := CompileExpression(rule.Definition.Expression)
		if err != nil {
			return &ErrorDetail{Rule: "expression", Message: fmt.Sprintf("compile error: %v", err)}
		}
		rule.Compiled = compiled
		prog = compiled
	}

	result, err := expr.Run(prog, env)
	if err != nil {
		return &ErrorDetail{Rule: "expression", Message: fmt.Sprintf("rule evaluation error: %v", err)}
	}

	violated, ok := result.(bool)
	if !ok || !violated {
		return nil
	}

	msg := rule.Definition.Message
	if msg == "" {
		msg = "Expression rule violated"
	}
	return &ErrorDetail{Rule: "expression", Message: msg}
}

// toFloat64 converts numeric types to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
