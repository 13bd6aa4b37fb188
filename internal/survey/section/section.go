// Package section derives the navigable page structure of a survey from its
// flat question list. Partitioning is a pure function of the question list and
// the survey template, recomputed freely; nothing here touches storage.
package section

import (
	"gleamform/survey-backend/internal/survey/question"
)

// Template selects the rendering and pagination strategy of a survey. Only
// the sectional template (and page-by-page, which paginates one question at a
// time) changes how questions are grouped; the rest render one linear section.
type Template string

const (
	TemplateSingleColumn Template = "single-column"
	TemplatePageByPage   Template = "page-by-page"
	TemplateMinimalist   Template = "minimalist"
	TemplateSectional    Template = "sectional"
)

func (t Template) Valid() bool {
	switch t {
	case TemplateSingleColumn, TemplatePageByPage, TemplateMinimalist, TemplateSectional:
		return true
	}
	return false
}

// DefaultTitle names the implicit leading section when questions appear
// before the first section header, and the single section of non-sectional
// surveys.
const DefaultTitle = "Start"

// Section is one contiguous run of questions grouped under a title. Derived,
// never persisted.
type Section struct {
	Title     string
	Questions []question.Question
}

// Partition splits questions into ordered sections.
//
// For the sectional template, section_header questions act as strict
// boundaries: each header opens a new section titled with the header text and
// the headers themselves are consumed. Questions before the first header fall
// into an implicit section titled DefaultTitle; a header as the very first
// element produces no empty leading section.
//
// For every other template the result is a single section keeping ALL
// questions, headers included, in their original order - headers render as
// inert rows on the linear path so the author's visual breaks survive.
//
// The result is never empty: a survey with no questions (or, under sectional,
// no non-header questions) yields exactly one section with an empty question
// list.
func Partition(questions []question.Question, template Template) []Section {
	if template != TemplateSectional {
		copied := make([]question.Question, len(questions))
		copy(copied, questions)
		return []Section{{Title: DefaultTitle, Questions: copied}}
	}

	var sections []Section
	title := DefaultTitle
	var current []question.Question

	flush := func() {
		if len(current) == 0 {
			return
		}
		sections = append(sections, Section{Title: title, Questions: current})
		current = nil
	}

	for _, q := range questions {
		if q.Type == question.TypeSectionHeader {
			flush()
			title = q.Text
			continue
		}
		current = append(current, q)
	}
	flush()

	if len(sections) == 0 {
		return []Section{{Title: DefaultTitle, Questions: []question.Question{}}}
	}

	return sections
}

// Pages derives one section per non-header question for the page-by-page
// template, titled by position. Headers are dropped on this path; a one
// question page has no room for an inert header row.
func Pages(questions []question.Question) []Section {
	var pages []Section
	for _, q := range questions {
		if q.Type == question.TypeSectionHeader {
			continue
		}
		pages = append(pages, Section{Title: q.Text, Questions: []question.Question{q}})
	}

	if len(pages) == 0 {
		return []Section{{Title: DefaultTitle, Questions: []question.Question{}}}
	}

	return pages
}
