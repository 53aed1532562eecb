/*-------------------------------------------------------------------------
 *
 * engine_test.go
 *    Tests for the conditional logic engine
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/logic/engine_test.go
 *
 *-------------------------------------------------------------------------
 */

package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgen/server/internal/forms"
)

func rule(fieldID string, cond forms.Condition, value forms.RuleValue, action forms.Action, targets ...string) forms.ConditionalRule {
	return forms.ConditionalRule{
		ID:             "rule-" + fieldID + "-" + string(action),
		FieldID:        fieldID,
		Condition:      cond,
		Value:          value,
		Action:         action,
		TargetFieldIDs: targets,
	}
}

func TestEvaluateAllVisibleByDefault(t *testing.T) {
	result := Evaluate(nil, map[string]interface{}{}, []string{"a", "b", "c"})

	assert.Equal(t, []string{"a", "b", "c"}, result.VisibleFields)
	assert.Empty(t, result.RequiredFields)
	assert.Empty(t, result.HiddenFields)
}

func TestEvaluateShowHide(t *testing.T) {
	rules := []forms.ConditionalRule{
		rule("employment", forms.CondEquals, forms.StringValue("employed"), forms.ActionShow, "employer"),
		rule("employment", forms.CondEquals, forms.StringValue("unemployed"), forms.ActionHide, "employer"),
	}
	fields := []string{"employment", "employer"}

	result := Evaluate(rules, map[string]interface{}{"employment": "unemployed"}, fields)
	assert.Equal(t, []string{"employment"}, result.VisibleFields)
	assert.Equal(t, []string{"employer"}, result.HiddenFields)

	result = Evaluate(rules, map[string]interface{}{"employment": "employed"}, fields)
	assert.Equal(t, []string{"employment", "employer"}, result.VisibleFields)
	assert.Empty(t, result.HiddenFields)
}

/* Rules are order-dependent: the last matching rule for a target wins */
func TestEvaluateOrderDependence(t *testing.T) {
	responses := map[string]interface{}{"trigger": "yes"}
	fields := []string{"trigger", "target"}

	hideThenShow := []forms.ConditionalRule{
		rule("trigger", forms.CondEquals, forms.StringValue("yes"), forms.ActionHide, "target"),
		rule("trigger", forms.CondEquals, forms.StringValue("yes"), forms.ActionShow, "target"),
	}
	result := Evaluate(hideThenShow, responses, fields)
	assert.True(t, result.VisibleSet()["target"])
	assert.False(t, result.HiddenSet()["target"])

	showThenHide := []forms.ConditionalRule{
		rule("trigger", forms.CondEquals, forms.StringValue("yes"), forms.ActionShow, "target"),
		rule("trigger", forms.CondEquals, forms.StringValue("yes"), forms.ActionHide, "target"),
	}
	result = Evaluate(showThenHide, responses, fields)
	assert.False(t, result.VisibleSet()["target"])
	assert.True(t, result.HiddenSet()["target"])
}

/* Hiding a field strips any required status it had accumulated */
func TestEvaluateHideRemovesRequired(t *testing.T) {
	rules := []forms.ConditionalRule{
		rule("trigger", forms.CondEquals, forms.StringValue("yes"), forms.ActionRequire, "target"),
		rule("trigger", forms.CondEquals, forms.StringValue("yes"), forms.ActionHide, "target"),
	}
	result := Evaluate(rules, map[string]interface{}{"trigger": "yes"}, []string{"trigger", "target"})

	assert.Empty(t, result.RequiredFields)
	assert.Equal(t, []string{"target"}, result.HiddenFields)
}

/* Requiring an already-hidden field is a no-op */
func TestEvaluateRequireHiddenIsNoop(t *testing.T) {
	rules := []forms.ConditionalRule{
		rule("trigger", forms.CondEquals, forms.StringValue("yes"), forms.ActionHide, "target"),
		rule("trigger", forms.CondEquals, forms.StringValue("yes"), forms.ActionRequire, "target"),
	}
	result := Evaluate(rules, map[string]interface{}{"trigger": "yes"}, []string{"trigger", "target"})

	assert.Empty(t, result.RequiredFields)
}

/* Rules do not chain transitively within a single pass: a rule hiding
 * the trigger of a later rule does not suppress that rule */
func TestEvaluateNoTransitiveChaining(t *testing.T) {
	rules := []forms.ConditionalRule{
		rule("a", forms.CondEquals, forms.StringValue("x"), forms.ActionHide, "b"),
		rule("b", forms.CondEquals, forms.StringValue("y"), forms.ActionHide, "c"),
	}
	responses := map[string]interface{}{"a": "x", "b": "y"}
	result := Evaluate(rules, responses, []string{"a", "b", "c"})

	/* b is hidden, but its raw response still drives the second rule */
	assert.True(t, result.HiddenSet()["b"])
	assert.True(t, result.HiddenSet()["c"])
}

func TestCheckConditionNumericCoercion(t *testing.T) {
	/* '5' == 5 under numeric-first comparison */
	assert.True(t, CheckCondition(forms.CondEquals, "5", forms.NumberValue(5)))
	assert.True(t, CheckCondition(forms.CondEquals, 5.0, forms.StringValue("5")))
	assert.True(t, CheckCondition(forms.CondGreaterThan, "10", forms.NumberValue(9)))
	assert.True(t, CheckCondition(forms.CondLessThan, 3, forms.NumberValue(4)))

	/* Lexicographically '10' < '9', numerically 10 > 9 */
	assert.False(t, CheckCondition(forms.CondLessThan, "10", forms.NumberValue(9)))
}

func TestCheckConditionCaseInsensitiveStrings(t *testing.T) {
	assert.True(t, CheckCondition(forms.CondEquals, "Five", forms.StringValue("five")))
	assert.True(t, CheckCondition(forms.CondEquals, "YES", forms.StringValue("yes")))
	assert.False(t, CheckCondition(forms.CondEquals, "five", forms.StringValue("six")))
}

func TestCheckConditionBooleanAndEmptyCoercion(t *testing.T) {
	/* Booleans coerce to 1/0, empty strings to 0 */
	assert.True(t, CheckCondition(forms.CondEquals, true, forms.NumberValue(1)))
	assert.True(t, CheckCondition(forms.CondEquals, false, forms.NumberValue(0)))
	assert.True(t, CheckCondition(forms.CondEquals, "", forms.NumberValue(0)))
}

func TestCheckConditionNilTrigger(t *testing.T) {
	/* A missing response satisfies only notEquals, and only when the
	 * operand is non-null */
	assert.True(t, CheckCondition(forms.CondNotEquals, nil, forms.StringValue("x")))
	assert.False(t, CheckCondition(forms.CondNotEquals, nil, forms.RuleValue{}))
	assert.False(t, CheckCondition(forms.CondEquals, nil, forms.StringValue("x")))
	assert.False(t, CheckCondition(forms.CondGreaterThan, nil, forms.NumberValue(0)))
	assert.False(t, CheckCondition(forms.CondContains, nil, forms.StringValue("x")))
}

func TestCheckConditionContains(t *testing.T) {
	assert.True(t, CheckCondition(forms.CondContains, "Hello World", forms.StringValue("world")))
	assert.False(t, CheckCondition(forms.CondContains, "Hello", forms.StringValue("world")))

	list := []interface{}{"red", "green"}
	assert.True(t, CheckCondition(forms.CondContains, list, forms.StringValue("green")))
	assert.False(t, CheckCondition(forms.CondContains, list, forms.StringValue("blue")))

	assert.False(t, CheckCondition(forms.CondContains, 42.0, forms.StringValue("4")))
}

/* Array membership is exact, unlike scalar comparison */
func TestCheckConditionContainsStrictMembership(t *testing.T) {
	assert.False(t, CheckCondition(forms.CondContains, []interface{}{"Apple"}, forms.StringValue("apple")))
	assert.True(t, CheckCondition(forms.CondContains, []interface{}{"apple"}, forms.StringValue("apple")))
	assert.False(t, CheckCondition(forms.CondContains, []string{"Apple"}, forms.StringValue("apple")))

	/* No cross-type coercion inside arrays */
	assert.False(t, CheckCondition(forms.CondContains, []interface{}{"5"}, forms.NumberValue(5)))
	assert.True(t, CheckCondition(forms.CondContains, []interface{}{5.0}, forms.NumberValue(5)))
	assert.True(t, CheckCondition(forms.CondContains, []interface{}{true}, forms.BoolValue(true)))
	assert.False(t, CheckCondition(forms.CondContains, []interface{}{true}, forms.NumberValue(1)))
}

func TestValidateRulesDetectsCycle(t *testing.T) {
	cyclic := []forms.ConditionalRule{
		rule("a", forms.CondEquals, forms.StringValue("x"), forms.ActionHide, "b"),
		rule("b", forms.CondEquals, forms.StringValue("y"), forms.ActionHide, "a"),
	}
	err := ValidateRules(cyclic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestValidateRulesAcceptsAcyclic(t *testing.T) {
	acyclic := []forms.ConditionalRule{
		rule("a", forms.CondEquals, forms.StringValue("x"), forms.ActionHide, "b"),
		rule("b", forms.CondEquals, forms.StringValue("y"), forms.ActionHide, "c"),
	}
	require.NoError(t, ValidateRules(acyclic))
	require.NoError(t, ValidateRules(nil))
}

/* A self-referencing rule is a one-node cycle */
func TestValidateRulesSelfReference(t *testing.T) {
	selfRef := []forms.ConditionalRule{
		rule("a", forms.CondEquals, forms.StringValue("x"), forms.ActionHide, "a"),
	}
	require.Error(t, ValidateRules(selfRef))
}
