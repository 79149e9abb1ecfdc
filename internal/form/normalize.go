package form

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Wrapper keys tried, in order, when the raw schema is an object instead of
// an array. "form" is unwrapped one level further via its "schema" key.
var wrapperKeys = []string{"schema", "raf_schema", "questions", "fields"}

// Normalize converts a raw schema of any supported shape into a flat ordered
// question list. Supported shapes: a JSON string (parsed then normalized), an
// array of sections with "fields", a flat heterogeneous array with inline
// {"type":"section"} markers, or a wrapper object. Anything else, including
// invalid JSON, yields an empty list. Normalize never fails: malformed
// sub-structures are skipped or coerced to defaults, and output order and
// synthesized ids are stable for a given input.
func Normalize(raw any) []Question {
	switch v := raw.(type) {
	case nil:
		return []Question{}
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return []Question{}
		}
		return Normalize(parsed)
	case []byte:
		return Normalize(string(v))
	case []any:
		return normalizeList(v)
	case map[string]any:
		return normalizeWrapper(v)
	default:
		return []Question{}
	}
}

func normalizeWrapper(m map[string]any) []Question {
	for _, key := range wrapperKeys {
		if inner, ok := m[key]; ok && inner != nil {
			return Normalize(inner)
		}
	}
	if f, ok := m["form"].(map[string]any); ok {
		if inner, ok := f["schema"]; ok && inner != nil {
			return Normalize(inner)
		}
	}
	return []Question{}
}

// sectionCursor is the accumulator state threaded through the flat-array
// fold: the section assigned to elements until the next section marker.
type sectionCursor struct {
	key   string
	title string
}

func normalizeList(items []any) []Question {
	questions := make([]Question, 0, len(items))
	cursor := sectionCursor{}

	for _, item := range items {
		el, ok := item.(map[string]any)
		if !ok {
			continue
		}

		if strings.EqualFold(firstString(el, "type"), "section") {
			cursor.key, cursor.title = deriveSection(el)
			continue
		}

		if fields, ok := el["fields"].([]any); ok {
			secKey, secTitle := deriveSection(el)
			for _, f := range fields {
				fm, ok := f.(map[string]any)
				if !ok {
					continue
				}
				q := buildQuestion(fm, len(questions))
				if q.SectionKey == "" {
					q.SectionKey, q.SectionTitle = secKey, secTitle
				}
				questions = append(questions, q)
			}
			continue
		}

		q := buildQuestion(el, len(questions))
		if q.SectionKey == "" {
			q.SectionKey, q.SectionTitle = cursor.key, cursor.title
		}
		questions = append(questions, q)
	}

	return questions
}

// deriveSection extracts a section's key and title from a section marker or
// a section-with-fields element. Title falls back to "Section"; key falls
// back to a slug of the title.
func deriveSection(el map[string]any) (key, title string) {
	title = firstString(el, "label", "title", "name")
	if title == "" {
		title = "Section"
	}
	key = firstString(el, "key")
	if key == "" {
		key = Slug(title)
	}
	return key, title
}

func buildQuestion(el map[string]any, index int) Question {
	q := Question{
		ID:          firstString(el, "id", "key", "name"),
		Key:         firstString(el, "key"),
		Label:       firstString(el, "label", "title", "text", "question"),
		HelpText:    firstString(el, "help_text", "helpText", "description", "hint"),
		Placeholder: firstString(el, "placeholder"),
		Accept:      firstString(el, "accept"),
		Multiple:    truthyField(el, "multiple"),
		Required:    truthyField(el, "required"),
	}

	if q.ID == "" {
		q.ID = fmt.Sprintf("q_%d", index)
	}
	if q.Label == "" {
		q.Label = fmt.Sprintf("Question %d", index+1)
	}

	q.Type = mapType(firstString(el, "type"), q.Multiple)

	if q.Type == TypeNumber {
		q.Min = firstNumber(el, "min")
		q.Max = firstNumber(el, "max")
	}

	switch q.Type {
	case TypeSelect, TypeMultiSelect, TypeRadio:
		q.Options = extractOptions(el)
	case TypeStaticText:
		q.ContentHTML = firstDataString(el, "content", "html", "text")
	case TypeImage:
		q.ImageURL = firstDataString(el, "url", "src")
	}

	if q.Type.IsLayout() {
		q.Required = false
	}

	if sec := firstString(el, "section"); sec != "" {
		q.SectionKey = Slug(sec)
		q.SectionTitle = sec
	}

	q.ShowIf = extractCondition(el)

	return q
}

// mapType folds the raw type aliases the backend emits into the canonical
// set. Unrecognized types degrade to plain text inputs.
func mapType(raw string, multiple bool) QuestionType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text", "string", "input", "short_text":
		return TypeText
	case "textarea", "text_area", "long_text":
		return TypeTextarea
	case "number", "numeric":
		return TypeNumber
	case "boolean", "yesno", "yes_no":
		return TypeBoolean
	case "select", "dropdown", "single_select":
		if multiple {
			return TypeMultiSelect
		}
		return TypeSelect
	case "radio":
		if multiple {
			return TypeMultiSelect
		}
		return TypeRadio
	case "multi_select", "multiselect", "checkboxes", "checkbox_group":
		return TypeMultiSelect
	case "date", "datepicker":
		return TypeDate
	case "file", "file_upload", "upload":
		return TypeFile
	case "divider", "separator":
		return TypeDivider
	case "text_block", "content", "html", "richtext", "static_text":
		return TypeStaticText
	case "image":
		return TypeImage
	case "page_break", "pagebreak":
		return TypePageBreak
	default:
		return TypeText
	}
}

// extractOptions reads choices from "options" or "data.options". Elements
// may be bare strings or objects with value/label (id/name accepted as
// fallbacks). Anything unusable is skipped.
func extractOptions(el map[string]any) []Option {
	raw, ok := el["options"].([]any)
	if !ok {
		if data, dok := el["data"].(map[string]any); dok {
			raw, ok = data["options"].([]any)
		}
	}
	if !ok {
		return nil
	}

	options := make([]Option, 0, len(raw))
	for _, item := range raw {
		switch o := item.(type) {
		case string:
			options = append(options, Option{Value: o, Label: o})
		case float64:
			s := formatNumber(o)
			options = append(options, Option{Value: s, Label: s})
		case map[string]any:
			value := firstString(o, "value", "id")
			label := firstString(o, "label", "name", "text")
			if value == "" {
				value = label
			}
			if label == "" {
				label = value
			}
			if value == "" {
				continue
			}
			options = append(options, Option{Value: value, Label: label})
		}
	}
	return options
}

func extractCondition(el map[string]any) *Condition {
	raw, ok := el["showIf"].(map[string]any)
	if !ok {
		if raw, ok = el["show_if"].(map[string]any); !ok {
			if raw, ok = el["visible_if"].(map[string]any); !ok {
				return nil
			}
		}
	}

	field := firstString(raw, "field", "question", "key")
	if field == "" {
		return nil
	}

	cond := &Condition{
		Field:  field,
		Truthy: truthyField(raw, "truthy"),
	}
	if eq, ok := raw["equals"]; ok {
		cond.Equals = eq
	} else if eq, ok := raw["value"]; ok {
		cond.Equals = eq
	}
	if ne, ok := raw["not_equals"]; ok {
		cond.NotEquals = ne
	} else if ne, ok := raw["notEquals"]; ok {
		cond.NotEquals = ne
	}
	if in, ok := raw["in"].([]any); ok {
		cond.In = in
	}
	return cond
}

// ===== DUCK-TYPED FIELD ACCESSORS =====
//
// The backend spells the same logical field several ways. Each accessor
// documents its candidate keys once, tried in order.

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return formatNumber(v)
		}
	}
	return ""
}

// firstDataString reads string candidates from the element's nested "data"
// object, falling back to the element itself.
func firstDataString(m map[string]any, keys ...string) string {
	if data, ok := m["data"].(map[string]any); ok {
		if s := firstString(data, keys...); s != "" {
			return s
		}
	}
	return firstString(m, keys...)
}

func firstNumber(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			n := v
			return &n
		case string:
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

func truthyField(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "yes" || s == "y" || s == "1"
	case float64:
		return v != 0
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Slug lower-cases a title and collapses non-alphanumeric runs to single
// underscores, for use as a derived section key.
func Slug(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
