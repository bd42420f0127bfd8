package session

import "errors"

// ErrIndexOutOfRange is returned by GoTo for an index outside the question
// list.
var ErrIndexOutOfRange = errors.New("question index out of range")

// Navigator tracks which question of a fixed ordered list is displayed.
// Movement is clamped to [0, count−1]; there is no wraparound.
type Navigator struct {
	index int
	count int
}

// NewNavigator creates a navigator over count questions, starting at index 0.
func NewNavigator(count int) *Navigator {
	return &Navigator{count: count}
}

// Current returns the index of the displayed question.
func (n *Navigator) Current() int {
	return n.index
}

// Next advances by one. At the last index it is a silent no-op.
func (n *Navigator) Next() {
	if n.index < n.count-1 {
		n.index++
	}
}

// Previous moves back by one. At index 0 it is a silent no-op.
func (n *Navigator) Previous() {
	if n.index > 0 {
		n.index--
	}
}

// GoTo jumps to an explicit index. Unlike Next/Previous, an out-of-range
// index is an error rather than a clamp: it can only come from a bad request.
func (n *Navigator) GoTo(index int) error {
	if index < 0 || index >= n.count {
		return ErrIndexOutOfRange
	}
	n.index = index
	return nil
}
