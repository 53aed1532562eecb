/*-------------------------------------------------------------------------
 *
 * rule_value.go
 *    Tagged union for conditional rule comparison operands
 *
 * A rule's comparison value may be a string, number, boolean, or list of
 * strings (or JSON null). The tagged union keeps the coercion rules of
 * the logic engine explicit instead of relying on interface{} blobs.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/forms/rule_value.go
 *
 *-------------------------------------------------------------------------
 */

package forms

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

/* ValueKind tags the runtime type of a RuleValue */
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindStringList
)

/* RuleValue is the comparison operand of a conditional rule */
type RuleValue struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	List []string
}

/* StringValue builds a string-kinded RuleValue */
func StringValue(s string) RuleValue { return RuleValue{Kind: KindString, Str: s} }

/* NumberValue builds a number-kinded RuleValue */
func NumberValue(n float64) RuleValue { return RuleValue{Kind: KindNumber, Num: n} }

/* BoolValue builds a bool-kinded RuleValue */
func BoolValue(b bool) RuleValue { return RuleValue{Kind: KindBool, Bool: b} }

/* ListValue builds a string-list-kinded RuleValue */
func ListValue(items ...string) RuleValue { return RuleValue{Kind: KindStringList, List: items} }

/* IsNull reports whether the operand is JSON null */
func (v RuleValue) IsNull() bool { return v.Kind == KindNull }

/* String renders the operand the way the logic engine compares it:
 * numbers without trailing zeros, booleans as true/false, lists joined
 * with commas. */
func (v RuleValue) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindStringList:
		return strings.Join(v.List, ",")
	default:
		return ""
	}
}

/* Number returns the numeric coercion of the operand, if one exists */
func (v RuleValue) Number() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

/* MarshalJSON writes the operand back in its original JSON shape */
func (v RuleValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindStringList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	default:
		return nil, fmt.Errorf("rule value marshal failed: unknown kind %d", v.Kind)
	}
}

/* UnmarshalJSON accepts null, string, number, boolean, or string array */
func (v *RuleValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = RuleValue{Kind: KindNull}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("rule value parse failed: expected string, error=%w", err)
		}
		*v = StringValue(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("rule value parse failed: expected boolean, error=%w", err)
		}
		*v = BoolValue(b)
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("rule value parse failed: arrays must contain only strings, error=%w", err)
		}
		*v = RuleValue{Kind: KindStringList, List: list}
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("rule value parse failed: unsupported JSON value %q", trimmed)
		}
		*v = NumberValue(n)
		return nil
	}
}
