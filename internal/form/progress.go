package form

import (
	"math"
	"strings"
)

// DefaultSectionKey groups questions that carry no explicit section.
const DefaultSectionKey = "general"

// DefaultSectionTitle is the display title of the implicit section.
const DefaultSectionTitle = "General"

// Progress is the derived read model over a question list and the current
// answers: visible questions, their section partition, completion counts and
// a clamped section index. It is recomputed from scratch on every answer
// change and carries no state of its own.
type Progress struct {
	Visible            []Question `json:"visible_questions"`
	Sections           []Section  `json:"sections"`
	SectionIdx         int        `json:"section_idx"`
	RequiredUnanswered []string   `json:"required_unanswered"`
	PercentComplete    int        `json:"percent_complete"`

	bySection map[string][]Question
	answers   Answers
}

// Derive computes the progress read model. sectionIdx is the caller's
// current section; when an answer change removed enough sections that the
// index no longer exists, it resets to 0. Malformed or empty input degrades
// to empty lists and a 100 percent completion.
func Derive(questions []Question, answers Answers, sectionIdx int) Progress {
	p := Progress{
		Visible:            VisibleQuestions(questions, answers),
		RequiredUnanswered: []string{},
		bySection:          make(map[string][]Question),
		answers:            answers,
	}

	seen := make(map[string]bool)
	for _, q := range p.Visible {
		key, title := q.SectionKey, q.SectionTitle
		if key == "" {
			key, title = DefaultSectionKey, DefaultSectionTitle
		}
		if !seen[key] {
			seen[key] = true
			if title == "" {
				title = key
			}
			p.Sections = append(p.Sections, Section{Key: key, Title: title})
		}
		p.bySection[key] = append(p.bySection[key], q)
	}

	totalRequired, answeredRequired := 0, 0
	for _, q := range p.Visible {
		if q.Type.IsLayout() || !q.Required {
			continue
		}
		totalRequired++
		if AnswerEmpty(answers[q.ID]) {
			p.RequiredUnanswered = append(p.RequiredUnanswered, q.ID)
		} else {
			answeredRequired++
		}
	}

	if totalRequired == 0 {
		p.PercentComplete = 100
	} else {
		p.PercentComplete = int(math.Round(100 * float64(answeredRequired) / float64(totalRequired)))
	}

	p.SectionIdx = sectionIdx
	if p.SectionIdx < 0 || p.SectionIdx >= len(p.Sections) {
		p.SectionIdx = 0
	}

	return p
}

// QuestionsInSection returns the visible questions of sections[idx], or nil
// when the index is out of range.
func (p Progress) QuestionsInSection(idx int) []Question {
	if idx < 0 || idx >= len(p.Sections) {
		return nil
	}
	return p.bySection[p.Sections[idx].Key]
}

// RequiredUnansweredInSection lists the IDs of visible required questions in
// sections[idx] that are still empty.
func (p Progress) RequiredUnansweredInSection(idx int) []string {
	ids := []string{}
	for _, q := range p.QuestionsInSection(idx) {
		if q.Type.IsAnswerable() && q.Required && AnswerEmpty(p.answers[q.ID]) {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// CanAdvance reports whether the current section is complete, gating the
// "next section" transition.
func (p Progress) CanAdvance() bool {
	return len(p.RequiredUnansweredInSection(p.SectionIdx)) == 0
}

// CanSubmit reports whether every visible required question across all
// sections has an answer, gating the terminal submit action.
func (p Progress) CanSubmit() bool {
	return len(p.RequiredUnanswered) == 0
}

// NextIndex returns the section index after a "next" transition: one step
// forward when the current section is complete and a later section exists,
// otherwise the current index.
func (p Progress) NextIndex() int {
	if !p.CanAdvance() {
		return p.SectionIdx
	}
	if p.SectionIdx+1 < len(p.Sections) {
		return p.SectionIdx + 1
	}
	return p.SectionIdx
}

// PrevIndex returns the section index after a "previous" transition, which
// is always allowed down to 0.
func (p Progress) PrevIndex() int {
	if p.SectionIdx > 0 {
		return p.SectionIdx - 1
	}
	return 0
}

// AnswerEmpty reports whether a stored answer counts as missing: nil, a
// blank string, or an empty array. Zero and false are real answers.
func AnswerEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		if items, ok := asSlice(v); ok {
			return len(items) == 0
		}
		return false
	}
}
