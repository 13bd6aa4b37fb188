package question

import (
	"strconv"
)

const (
	RatingMin = 1
	RatingMax = 5
)

// RatingBuckets is the fixed answer domain ratings are tallied over, in
// declared order.
var RatingBuckets = []string{"1", "2", "3", "4", "5"}

// Rating accepts an integer between RatingMin and RatingMax, stored as its
// decimal string. The presentation style (number row or stars) carries no
// answer semantics.
type Rating struct {
	question Question
}

func (r Rating) Question() Question {
	return r.question
}

func (r Rating) Validate(value string) error {
	if !IsAnswered(value) {
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < RatingMin || n > RatingMax {
		return ErrInvalidRatingValue{
			QuestionID: r.question.ID,
			RawValue:   value,
		}
	}

	return nil
}

func (r Rating) DisplayValue(value string) string {
	if r.question.RatingStyle == RatingStyleStar {
		n, err := strconv.Atoi(value)
		if err == nil && n >= RatingMin && n <= RatingMax {
			stars := ""
			for i := 0; i < n; i++ {
				stars += "★"
			}
			return stars
		}
	}
	return value
}
