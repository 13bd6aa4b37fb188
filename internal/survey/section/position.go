package section

import (
	"fmt"

	"gleamform/survey-backend/internal"
)

type ErrOutOfRange struct {
	Index int
	Count int
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("section index %d out of range [0, %d)", e.Index, e.Count)
}

func (e ErrOutOfRange) Unwrap() error {
	return internal.ErrValidationFailed
}

// Position tracks a respondent's place in a partitioned survey. Moves outside
// [0, count) are refused, not clamped, so a caller walking off either end gets
// an error it has to handle instead of a silently pinned index.
type Position struct {
	index int
	count int
}

// NewPosition starts at the first of count sections. Count must be at least 1;
// Partition never returns an empty slice so every survey has somewhere to stand.
func NewPosition(count int) (Position, error) {
	if count < 1 {
		return Position{}, ErrOutOfRange{Index: 0, Count: count}
	}
	return Position{index: 0, count: count}, nil
}

func (p Position) Index() int {
	return p.index
}

func (p Position) IsFirst() bool {
	return p.index == 0
}

func (p Position) IsLast() bool {
	return p.index == p.count-1
}

func (p Position) Next() (Position, error) {
	return p.GoTo(p.index + 1)
}

func (p Position) Prev() (Position, error) {
	return p.GoTo(p.index - 1)
}

func (p Position) GoTo(index int) (Position, error) {
	if index < 0 || index >= p.count {
		return p, ErrOutOfRange{Index: index, Count: p.count}
	}
	return Position{index: index, count: p.count}, nil
}
