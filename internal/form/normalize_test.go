package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"invalid json string", "{not json"},
		{"number", 42},
		{"object without wrapper key", map[string]any{"foo": "bar"}},
		{"empty array", []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Normalize(tt.raw))
			assert.NotPanics(t, func() { Normalize(tt.raw) })
		})
	}
}

func TestNormalize_JSONString(t *testing.T) {
	questions := Normalize(`[{"id":"q1","type":"text","label":"Name"}]`)

	require.Len(t, questions, 1)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, TypeText, questions[0].Type)
	assert.Equal(t, "Name", questions[0].Label)
}

func TestNormalize_WrapperObject(t *testing.T) {
	raw := map[string]any{
		"schema": []any{
			map[string]any{"id": "q1", "type": "boolean", "required": true},
		},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, TypeBoolean, questions[0].Type)
	assert.True(t, questions[0].Required)
}

func TestNormalize_NestedFormWrapper(t *testing.T) {
	raw := map[string]any{
		"form": map[string]any{
			"schema": []any{map[string]any{"id": "q1", "type": "date"}},
		},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, TypeDate, questions[0].Type)
}

func TestNormalize_SectionMarkers(t *testing.T) {
	raw := []any{
		map[string]any{"type": "section", "label": "A"},
		map[string]any{"id": "q1", "type": "text"},
		map[string]any{"type": "section", "label": "B"},
		map[string]any{"id": "q2", "type": "number"},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 2)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, "a", questions[0].SectionKey)
	assert.Equal(t, "A", questions[0].SectionTitle)
	assert.Equal(t, "q2", questions[1].ID)
	assert.Equal(t, "b", questions[1].SectionKey)
	assert.Equal(t, "B", questions[1].SectionTitle)
}

func TestNormalize_SectionsWithFields(t *testing.T) {
	raw := []any{
		map[string]any{
			"title": "Your Health",
			"fields": []any{
				map[string]any{"id": "q1", "type": "boolean"},
				map[string]any{"id": "q2", "type": "textarea"},
			},
		},
		map[string]any{
			"key":   "meds",
			"label": "Medication",
			"fields": []any{
				map[string]any{"id": "q3", "type": "multiselect"},
			},
		},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 3)
	assert.Equal(t, "your_health", questions[0].SectionKey)
	assert.Equal(t, "Your Health", questions[0].SectionTitle)
	assert.Equal(t, "your_health", questions[1].SectionKey)
	assert.Equal(t, "meds", questions[2].SectionKey)
	assert.Equal(t, "Medication", questions[2].SectionTitle)
}

func TestNormalize_ExplicitSectionFieldWins(t *testing.T) {
	raw := []any{
		map[string]any{"type": "section", "label": "Running"},
		map[string]any{"id": "q1", "type": "text", "section": "Pinned"},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, "pinned", questions[0].SectionKey)
	assert.Equal(t, "Pinned", questions[0].SectionTitle)
}

func TestNormalize_SyntheticDefaults(t *testing.T) {
	raw := []any{
		map[string]any{"type": "text"},
		map[string]any{"type": "text"},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 2)
	assert.Equal(t, "q_0", questions[0].ID)
	assert.Equal(t, "Question 1", questions[0].Label)
	assert.Equal(t, "q_1", questions[1].ID)
	assert.Equal(t, "Question 2", questions[1].Label)
}

func TestNormalize_TypeMapping(t *testing.T) {
	tests := []struct {
		raw      string
		multiple bool
		want     QuestionType
	}{
		{"TEXT", false, TypeText},
		{"textarea", false, TypeTextarea},
		{"text_area", false, TypeTextarea},
		{"numeric", false, TypeNumber},
		{"yesno", false, TypeBoolean},
		{"radio", false, TypeRadio},
		{"radio", true, TypeMultiSelect},
		{"checkboxes", false, TypeMultiSelect},
		{"checkbox_group", false, TypeMultiSelect},
		{"multi_select", false, TypeMultiSelect},
		{"datepicker", false, TypeDate},
		{"file_upload", false, TypeFile},
		{"divider", false, TypeDivider},
		{"text_block", false, TypeStaticText},
		{"richtext", false, TypeStaticText},
		{"page_break", false, TypePageBreak},
		{"image", false, TypeImage},
		{"something_new", false, TypeText},
		{"", false, TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, mapType(tt.raw, tt.multiple))
		})
	}
}

func TestNormalize_Options(t *testing.T) {
	raw := []any{
		map[string]any{
			"id":   "q1",
			"type": "select",
			"options": []any{
				"Plain",
				map[string]any{"value": "v1", "label": "Label One"},
				map[string]any{"id": "v2", "name": "Label Two"},
				map[string]any{"label": "Only Label"},
				map[string]any{},
			},
		},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 1)
	require.Len(t, questions[0].Options, 4)
	assert.Equal(t, Option{Value: "Plain", Label: "Plain"}, questions[0].Options[0])
	assert.Equal(t, Option{Value: "v1", Label: "Label One"}, questions[0].Options[1])
	assert.Equal(t, Option{Value: "v2", Label: "Label Two"}, questions[0].Options[2])
	assert.Equal(t, Option{Value: "Only Label", Label: "Only Label"}, questions[0].Options[3])
}

func TestNormalize_OptionsFromData(t *testing.T) {
	raw := []any{
		map[string]any{
			"id":   "q1",
			"type": "radio",
			"data": map[string]any{"options": []any{"a", "b"}},
		},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 1)
	require.Len(t, questions[0].Options, 2)
}

func TestNormalize_NumberConstraints(t *testing.T) {
	raw := []any{
		map[string]any{"id": "q1", "type": "number", "min": float64(18), "max": "120"},
		map[string]any{"id": "q2", "type": "text", "min": float64(1)},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 2)
	require.NotNil(t, questions[0].Min)
	require.NotNil(t, questions[0].Max)
	assert.Equal(t, 18.0, *questions[0].Min)
	assert.Equal(t, 120.0, *questions[0].Max)
	assert.Nil(t, questions[1].Min, "min applies to number questions only")
}

func TestNormalize_LayoutTypesNeverRequired(t *testing.T) {
	raw := []any{
		map[string]any{"id": "d1", "type": "divider", "required": true},
		map[string]any{"id": "c1", "type": "content", "required": true, "data": map[string]any{"html": "<p>hi</p>"}},
		map[string]any{"id": "i1", "type": "image", "required": true, "data": map[string]any{"url": "https://cdn/x.png"}},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.False(t, q.Required, "layout type %s must not be required", q.Type)
		assert.True(t, q.Type.IsLayout())
	}
	assert.Equal(t, "<p>hi</p>", questions[1].ContentHTML)
	assert.Equal(t, "https://cdn/x.png", questions[2].ImageURL)
}

func TestNormalize_ShowIf(t *testing.T) {
	raw := []any{
		map[string]any{"id": "q1", "type": "boolean"},
		map[string]any{
			"id":     "q2",
			"type":   "textarea",
			"showIf": map[string]any{"field": "q1", "equals": "yes"},
		},
		map[string]any{
			"id":      "q3",
			"type":    "text",
			"show_if": map[string]any{"field": "q1", "in": []any{"a", "b"}},
		},
		map[string]any{
			"id":     "q4",
			"type":   "text",
			"showIf": map[string]any{"equals": "orphaned"},
		},
	}

	questions := Normalize(raw)

	require.Len(t, questions, 4)
	require.NotNil(t, questions[1].ShowIf)
	assert.Equal(t, "q1", questions[1].ShowIf.Field)
	assert.Equal(t, "yes", questions[1].ShowIf.Equals)
	require.NotNil(t, questions[2].ShowIf)
	assert.Len(t, questions[2].ShowIf.In, 2)
	assert.Nil(t, questions[3].ShowIf, "condition without a field is dropped")
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := `{"raf_schema":[
		{"type":"section","label":"Intro"},
		{"type":"text","label":"Full name","required":true},
		{"key":"allergy","type":"yesno"},
		{"type":"checkbox_group","options":["a","b"]}
	]}`

	first := Normalize(raw)
	second := Normalize(raw)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "q_0", first[0].ID)
	assert.Equal(t, "allergy", first[1].ID)
	assert.Equal(t, "intro", first[2].SectionKey)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Your Health", "your_health"},
		{"  A  ", "a"},
		{"Meds & Allergies!", "meds_allergies"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in))
	}
}
