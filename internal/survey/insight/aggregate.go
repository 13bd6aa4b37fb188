package insight

import (
	"math"
	"strings"

	"gleamform/survey-backend/internal/survey/question"
	"gleamform/survey-backend/internal/survey/response"
)

// TextSampleCap bounds how many raw answers an open question carries into a
// report. Full text dumps belong in the export, not the summary.
const TextSampleCap = 5

type OptionStat struct {
	Option     string `json:"option"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// QuestionStat is the aggregated tally for one question across a batch of
// responses. Closed questions carry Options in declared order with zero-count
// entries included; open questions carry a bounded TextSamples list instead.
type QuestionStat struct {
	QuestionID   string        `json:"questionId"`
	QuestionText string        `json:"questionText"`
	Type         question.Type `json:"type"`
	TotalAnswers int           `json:"totalAnswers"`
	Options      []OptionStat  `json:"options,omitempty"`
	TextSamples  []string      `json:"textSamples,omitempty"`
}

// Aggregate computes per-question statistics over a batch of answer maps.
// Section headers are skipped. Unmatched answers to closed questions are
// dropped from the tally rather than errored, since a survey edited after
// collection may no longer declare the options old responses reference.
func Aggregate(questions []question.Question, responses []response.AnswerMap) []QuestionStat {
	stats := make([]QuestionStat, 0, len(questions))
	for _, q := range questions {
		if q.Type == question.TypeSectionHeader {
			continue
		}
		stats = append(stats, aggregateQuestion(q, responses))
	}
	return stats
}

func aggregateQuestion(q question.Question, responses []response.AnswerMap) QuestionStat {
	stat := QuestionStat{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		Type:         q.Type,
	}

	options := declaredOptions(q)
	if options == nil {
		return aggregateOpen(stat, q, responses)
	}
	return aggregateClosed(stat, q, options, responses)
}

// declaredOptions returns the option domain for a closed question, or nil for
// free-text types. Rating questions tally over the fixed 1-5 buckets.
func declaredOptions(q question.Question) []string {
	switch q.Type {
	case question.TypeMultipleChoice, question.TypeCheckboxes, question.TypeDropdown:
		return q.Options
	case question.TypeYesNo:
		return question.YesNoOptions
	case question.TypeRating:
		return question.RatingBuckets
	default:
		return nil
	}
}

func aggregateClosed(stat QuestionStat, q question.Question, options []string, responses []response.AnswerMap) QuestionStat {
	counts := make(map[string]int, len(options))
	for _, option := range options {
		counts[option] = 0
	}

	total := 0
	for _, answers := range responses {
		value, ok := answers[q.ID]
		if !ok || !question.IsAnswered(value) {
			continue
		}
		total++

		for _, selection := range selections(q, value) {
			if _, declared := counts[selection]; declared {
				counts[selection]++
			}
		}
	}

	stat.TotalAnswers = total
	stat.Options = make([]OptionStat, 0, len(options))
	for _, option := range options {
		stat.Options = append(stat.Options, OptionStat{
			Option:     option,
			Count:      counts[option],
			Percentage: percentage(counts[option], total),
		})
	}
	return stat
}

func aggregateOpen(stat QuestionStat, q question.Question, responses []response.AnswerMap) QuestionStat {
	samples := make([]string, 0, TextSampleCap)
	total := 0
	for _, answers := range responses {
		value, ok := answers[q.ID]
		if !ok || !question.IsAnswered(value) {
			continue
		}
		total++
		if len(samples) < TextSampleCap {
			samples = append(samples, value)
		}
	}

	stat.TotalAnswers = total
	stat.TextSamples = samples
	return stat
}

// selections splits a stored answer into the individual option selections it
// represents. Checkbox answers are delimiter-joined sets; everything else is
// a single selection. Values are trimmed before matching, never case-folded.
func selections(q question.Question, value string) []string {
	if q.Type != question.TypeCheckboxes {
		return []string{strings.TrimSpace(value)}
	}

	parts := strings.Split(value, question.CheckboxDelimiter)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
