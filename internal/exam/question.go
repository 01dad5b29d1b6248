package exam

import (
	"slices"
	"time"
)

// Question is one multiple-choice question as drawn into a variant.
// Correct holds the 0-based indices of the correct options and is never
// sent over the wire.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Correct []int    `json:"-"`
}

// Answer is the set of option indices a test-taker selected for one
// question. It is stored deduplicated and in ascending order; selection
// order carries no meaning.
type Answer []int

// NormalizeAnswer sorts the selected indices and drops duplicates.
func NormalizeAnswer(selected []int) Answer {
	if len(selected) == 0 {
		return Answer{}
	}
	out := slices.Clone(selected)
	slices.Sort(out)
	return Answer(slices.Compact(out))
}

// Contains reports whether idx is part of the answer.
func (a Answer) Contains(idx int) bool {
	_, found := slices.BinarySearch(a, idx)
	return found
}

// TestSettings is the per-test policy returned by the AccessPolicy
// collaborator. Attempts == 0 means unlimited attempts.
type TestSettings struct {
	Banner              string
	QuestionsPerVariant int
	Duration            time.Duration
	Attempts            int
	ShowResults         bool
}
