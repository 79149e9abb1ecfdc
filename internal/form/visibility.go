package form

import (
	"strings"
)

// IsVisible decides whether a question is currently shown given the answer
// set. The question list is needed to resolve a condition's field through a
// key alias when no answer is stored under it directly. A condition whose
// field matches nothing resolves to nil, which every mode except not_equals
// treats as hidden.
func IsVisible(q Question, answers Answers, questions []Question) bool {
	if q.ShowIf == nil {
		return true
	}
	cond := q.ShowIf

	value := resolveAnswer(cond.Field, answers, questions)

	switch {
	case cond.Truthy:
		return isTruthy(value)
	case len(cond.In) > 0:
		return matchesAny(value, cond.In)
	case cond.Equals != nil:
		return looseEquals(value, cond.Equals)
	case cond.NotEquals != nil:
		return !looseEquals(value, cond.NotEquals)
	default:
		return isTruthy(value)
	}
}

// VisibleQuestions filters the question list by IsVisible, preserving order.
func VisibleQuestions(questions []Question, answers Answers) []Question {
	visible := make([]Question, 0, len(questions))
	for _, q := range questions {
		if IsVisible(q, answers, questions) {
			visible = append(visible, q)
		}
	}
	return visible
}

// resolveAnswer looks the field up in the answer map directly, then retries
// through a question whose key aliases the field. Answers are keyed by
// question ID only.
func resolveAnswer(field string, answers Answers, questions []Question) any {
	if v, ok := answers[field]; ok {
		return v
	}
	for _, q := range questions {
		if q.Key == field && q.Key != q.ID {
			if v, ok := answers[q.ID]; ok {
				return v
			}
			return nil
		}
	}
	return nil
}

// matchesAny implements the "in" mode: an array answer matches when any of
// its elements loosely equals any target; a scalar answer matches when it
// loosely equals any target.
func matchesAny(value any, targets []any) bool {
	if items, ok := asSlice(value); ok {
		for _, item := range items {
			for _, target := range targets {
				if looseEquals(item, target) {
					return true
				}
			}
		}
		return false
	}
	for _, target := range targets {
		if looseEquals(value, target) {
			return true
		}
	}
	return false
}

// looseEquals compares two scalar values leniently: strings are trimmed and
// lower-cased, numbers compare by value against numeric strings, and booleans
// form their own domain where the literals yes/no/y/n/true/false bridge from
// strings.
func looseEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if ab, ok := a.(bool); ok {
		return boolMatches(ab, b)
	}
	if bb, ok := b.(bool); ok {
		return boolMatches(bb, a)
	}

	return canonical(a) == canonical(b)
}

func boolMatches(b bool, other any) bool {
	switch v := other.(type) {
	case bool:
		return b == v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "y", "true":
			return b
		case "no", "n", "false":
			return !b
		}
		return false
	case float64:
		return b == (v != 0)
	}
	return false
}

func canonical(v any) string {
	switch t := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	case float64:
		return formatNumber(t)
	case int:
		return formatNumber(float64(t))
	default:
		return ""
	}
}

// isTruthy follows script-style truthiness: empty strings,
// zero numbers, false, nil and empty arrays are falsy; everything else,
// including non-empty arrays and objects, is truthy.
func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case map[string]any:
		return true
	default:
		if items, ok := asSlice(v); ok {
			return len(items) > 0
		}
		return true
	}
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return items, true
	case []FileMeta:
		items := make([]any, len(t))
		for i, f := range t {
			items[i] = f
		}
		return items, true
	}
	return nil, false
}
