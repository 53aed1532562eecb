/*-------------------------------------------------------------------------
 *
 * rule_value_test.go
 *    Tests for the conditional rule operand union
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/forms/rule_value_test.go
 *
 *-------------------------------------------------------------------------
 */

package forms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleValueUnmarshalDispatch(t *testing.T) {
	cases := []struct {
		name string
		json string
		want RuleValue
	}{
		{"null", `null`, RuleValue{Kind: KindNull}},
		{"string", `"yes"`, StringValue("yes")},
		{"number", `42.5`, NumberValue(42.5)},
		{"negative number", `-3`, NumberValue(-3)},
		{"true", `true`, BoolValue(true)},
		{"false", `false`, BoolValue(false)},
		{"string list", `["a","b"]`, ListValue("a", "b")},
		{"empty list", `[]`, RuleValue{Kind: KindStringList, List: []string{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v RuleValue
			require.NoError(t, json.Unmarshal([]byte(tc.json), &v))
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestRuleValueUnmarshalRejectsMixedArray(t *testing.T) {
	var v RuleValue
	err := json.Unmarshal([]byte(`["a", 1]`), &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only strings")
}

func TestRuleValueMarshalRoundTrip(t *testing.T) {
	values := []RuleValue{
		{Kind: KindNull},
		StringValue("hello"),
		NumberValue(7),
		BoolValue(true),
		ListValue("x", "y"),
	}
	for _, v := range values {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		var back RuleValue
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, v, back)
	}
}

func TestRuleValueMarshalNilList(t *testing.T) {
	data, err := json.Marshal(RuleValue{Kind: KindStringList})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestRuleValueString(t *testing.T) {
	assert.Equal(t, "yes", StringValue("yes").String())
	assert.Equal(t, "5", NumberValue(5).String())
	assert.Equal(t, "5.25", NumberValue(5.25).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "a,b", ListValue("a", "b").String())
	assert.Equal(t, "", RuleValue{Kind: KindNull}.String())
}

func TestRuleValueNumber(t *testing.T) {
	n, ok := NumberValue(3.5).Number()
	require.True(t, ok)
	assert.Equal(t, 3.5, n)

	n, ok = StringValue("10").Number()
	require.True(t, ok)
	assert.Equal(t, 10.0, n)

	/* Empty string coerces to zero, like the empty form response */
	n, ok = StringValue("").Number()
	require.True(t, ok)
	assert.Equal(t, 0.0, n)

	n, ok = BoolValue(true).Number()
	require.True(t, ok)
	assert.Equal(t, 1.0, n)

	n, ok = BoolValue(false).Number()
	require.True(t, ok)
	assert.Equal(t, 0.0, n)

	_, ok = StringValue("abc").Number()
	assert.False(t, ok)

	_, ok = ListValue("1").Number()
	assert.False(t, ok)
}

func TestRuleValueIsNull(t *testing.T) {
	assert.True(t, RuleValue{}.IsNull())
	assert.False(t, StringValue("").IsNull())
}
