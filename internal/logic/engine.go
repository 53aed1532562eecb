/*-------------------------------------------------------------------------
 *
 * engine.go
 *    Conditional logic engine for FormGen
 *
 * Evaluates visibility/required rules against submitted values. The
 * engine is a single linear pass over the rule list: later rules
 * overwrite earlier ones for the same target, and rules do not chain
 * transitively within one pass. If rule A hides field X and X triggers
 * rule B, rule B still evaluates against X's raw response value. The UI
 * evaluator mirrors these semantics, so they must not change.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/logic/engine.go
 *
 *-------------------------------------------------------------------------
 */

package logic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/formgen/server/internal/forms"
)

/* Result is the outcome of evaluating a rule list */
type Result struct {
	VisibleFields  []string `json:"visibleFields"`
	RequiredFields []string `json:"requiredFields"`
	HiddenFields   []string `json:"hiddenFields"`
}

/* VisibleSet returns visibility membership as a lookup map */
func (r Result) VisibleSet() map[string]bool {
	return toSet(r.VisibleFields)
}

/* RequiredSet returns rule-required membership as a lookup map */
func (r Result) RequiredSet() map[string]bool {
	return toSet(r.RequiredFields)
}

/* HiddenSet returns hidden-field membership as a lookup map */
func (r Result) HiddenSet() map[string]bool {
	return toSet(r.HiddenFields)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

/* Evaluate applies rules in list order against the current responses.
 * All fields start visible and none rule-required. Rules whose condition
 * is false are skipped; there is no "else" behavior. */
func Evaluate(rules []forms.ConditionalRule, responses map[string]interface{}, allFieldIDs []string) Result {
	visible := newOrderedSet(allFieldIDs)
	required := newOrderedSet(nil)
	hidden := newOrderedSet(nil)

	for _, rule := range rules {
		trigger := responses[rule.FieldID]
		if !CheckCondition(rule.Condition, trigger, rule.Value) {
			continue
		}

		switch rule.Action {
		case forms.ActionShow:
			for _, id := range rule.TargetFieldIDs {
				visible.add(id)
				hidden.remove(id)
			}
		case forms.ActionHide:
			for _, id := range rule.TargetFieldIDs {
				visible.remove(id)
				hidden.add(id)
				/* A hidden field cannot be required */
				required.remove(id)
			}
		case forms.ActionRequire:
			for _, id := range rule.TargetFieldIDs {
				/* Requiring a hidden field is a no-op */
				if visible.contains(id) {
					required.add(id)
				}
			}
		case forms.ActionUnrequire:
			for _, id := range rule.TargetFieldIDs {
				required.remove(id)
			}
		}
	}

	return Result{
		VisibleFields:  visible.values(),
		RequiredFields: required.values(),
		HiddenFields:   hidden.values(),
	}
}

/* CheckCondition reports whether the trigger value satisfies the rule
 * condition. A nil trigger satisfies only notEquals (and only when the
 * comparison operand itself is non-null). */
func CheckCondition(cond forms.Condition, actual interface{}, expected forms.RuleValue) bool {
	if actual == nil {
		return cond == forms.CondNotEquals && !expected.IsNull()
	}

	switch cond {
	case forms.CondEquals:
		return compareValues(actual, expected) == 0
	case forms.CondNotEquals:
		return compareValues(actual, expected) != 0
	case forms.CondContains:
		switch v := actual.(type) {
		case string:
			return strings.Contains(strings.ToLower(v), strings.ToLower(expected.String()))
		case []interface{}:
			/* Array membership is strict: no coercion, case-sensitive */
			for _, elem := range v {
				if strictEquals(elem, expected) {
					return true
				}
			}
			return false
		case []string:
			for _, elem := range v {
				if strictEquals(elem, expected) {
					return true
				}
			}
			return false
		default:
			return false
		}
	case forms.CondGreaterThan:
		return compareValues(actual, expected) > 0
	case forms.CondLessThan:
		return compareValues(actual, expected) < 0
	default:
		return false
	}
}

/* strictEquals matches an array element against the operand with no
 * type coercion, mirroring exact membership checks */
func strictEquals(elem interface{}, expected forms.RuleValue) bool {
	switch v := elem.(type) {
	case string:
		return expected.Kind == forms.KindString && v == expected.Str
	case float64:
		return expected.Kind == forms.KindNumber && v == expected.Num
	case bool:
		return expected.Kind == forms.KindBool && v == expected.Bool
	default:
		return false
	}
}

/* compareValues tries numeric coercion first; when either side does not
 * parse as a number it falls back to case-insensitive string comparison. */
func compareValues(actual interface{}, expected forms.RuleValue) int {
	numA, okA := toNumber(actual)
	numB, okB := expected.Number()
	if okA && okB {
		switch {
		case numA < numB:
			return -1
		case numA > numB:
			return 1
		default:
			return 0
		}
	}

	strA := strings.ToLower(toString(actual))
	strB := strings.ToLower(expected.String())
	switch {
	case strA == strB:
		return 0
	case strA > strB:
		return 1
	default:
		return -1
	}
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		/* Empty strings coerce to zero, matching the UI evaluator */
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case []string:
		return strings.Join(s, ",")
	case []interface{}:
		parts := make([]string, len(s))
		for i, elem := range s {
			parts[i] = toString(elem)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

/* ValidateRules runs DFS cycle detection over the trigger->target
 * dependency graph. This is an advisory check: Evaluate never recurses,
 * so cycles cannot loop at evaluation time, but they usually indicate a
 * misconfigured form and are surfaced as a save-time warning. */
func ValidateRules(rules []forms.ConditionalRule) error {
	edges := make(map[string][]string)
	var order []string
	for _, rule := range rules {
		if _, ok := edges[rule.FieldID]; !ok {
			order = append(order, rule.FieldID)
		}
		edges[rule.FieldID] = append(edges[rule.FieldID], rule.TargetFieldIDs...)
	}

	visited := make(map[string]bool)
	inStack := make(map[string]bool)

	var visit func(node string) bool
	visit = func(node string) bool {
		visited[node] = true
		inStack[node] = true
		for _, next := range edges[node] {
			if !visited[next] {
				if visit(next) {
					return true
				}
			} else if inStack[next] {
				return true
			}
		}
		inStack[node] = false
		return false
	}

	for _, node := range order {
		if !visited[node] && visit(node) {
			return fmt.Errorf("circular dependency detected in conditional rules")
		}
	}
	return nil
}
