// Package form implements the dynamic intake form engine: it normalizes
// backend-supplied question schemas of varying shape into a uniform question
// list, evaluates per-question visibility against the current answer set, and
// derives section grouping and completion progress. Every function in this
// package is pure and total: malformed input degrades to empty or partial
// results, never to an error or panic.
package form

// QuestionType is the closed set of question kinds the engine understands.
type QuestionType string

const (
	TypeText        QuestionType = "text"
	TypeTextarea    QuestionType = "textarea"
	TypeNumber      QuestionType = "number"
	TypeBoolean     QuestionType = "boolean"
	TypeSelect      QuestionType = "select"
	TypeMultiSelect QuestionType = "multiselect"
	TypeRadio       QuestionType = "radio"
	TypeDate        QuestionType = "date"
	TypeFile        QuestionType = "file"

	// Layout-only types render chrome, never collect answers.
	TypeDivider    QuestionType = "divider"
	TypeStaticText QuestionType = "statictext"
	TypeImage      QuestionType = "image"
	TypePageBreak  QuestionType = "pagebreak"
)

// IsLayout reports whether the type is layout-only. Layout questions are
// never required and are excluded from completion counts.
func (t QuestionType) IsLayout() bool {
	switch t {
	case TypeDivider, TypeStaticText, TypeImage, TypePageBreak:
		return true
	}
	return false
}

// IsAnswerable is the complement of IsLayout.
func (t QuestionType) IsAnswerable() bool {
	return !t.IsLayout()
}

// Option is one selectable choice of a select, multiselect or radio question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Condition makes a question's visibility depend on another question's
// answer. Field references the other question's ID or Key. When several
// predicate modes are present, evaluation precedence is truthy, in, equals,
// not_equals, then fallback truthy.
type Condition struct {
	Field     string `json:"field"`
	Equals    any    `json:"equals,omitempty"`
	In        []any  `json:"in,omitempty"`
	NotEquals any    `json:"not_equals,omitempty"`
	Truthy    bool   `json:"truthy,omitempty"`
}

// Question is a single normalized unit of an intake form, either answerable
// or layout-only depending on Type.
type Question struct {
	ID          string       `json:"id"`
	Key         string       `json:"key,omitempty"`
	Label       string       `json:"label"`
	HelpText    string       `json:"help_text,omitempty"`
	Type        QuestionType `json:"type"`
	Required    bool         `json:"required"`
	Options     []Option     `json:"options,omitempty"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Accept      string       `json:"accept,omitempty"`
	Multiple    bool         `json:"multiple,omitempty"`

	SectionKey   string `json:"section_key,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`

	ShowIf *Condition `json:"show_if,omitempty"`

	// Layout-only payloads.
	ContentHTML string `json:"content_html,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// RefKey returns the identifier other questions use to reference this one in
// visibility conditions: the Key when set, otherwise the ID.
func (q Question) RefKey() string {
	if q.Key != "" {
		return q.Key
	}
	return q.ID
}

// Answers maps question IDs to in-progress answer values. Values are plain
// JSON-shaped data: string, float64, bool, []any or file metadata lists.
type Answers map[string]any

// FileMeta is the opaque upload metadata stored as a file question's answer.
// Upload execution belongs to an external service.
type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
}

// Section is a named, ordered grouping of questions for paged presentation.
// Sections are derived from visible questions on every pass, never stored.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}
