package exam

import "time"

// Variant is one user's open attempt at a test: the questions drawn for
// this attempt and the answers collected so far. Answers is a parallel
// array of Questions, one entry per answered question, so len(Answers)
// is always the index of the next unanswered question.
//
// StartedAt stays nil until the first question is actually issued; a
// variant that never served a question has no running clock and cannot
// be expired by the sweep.
type Variant struct {
	User      string
	Test      string
	Questions []Question
	Answers   []Answer
	StartedAt *time.Time
}

// NextIndex is the index of the next unanswered question.
func (v *Variant) NextIndex() int {
	return len(v.Answers)
}

// Complete reports whether every drawn question has been answered.
func (v *Variant) Complete() bool {
	return len(v.Answers) == len(v.Questions)
}

// Expired reports whether the variant's time limit has elapsed.
// A variant whose clock never started cannot expire.
func (v *Variant) Expired(now time.Time, limit time.Duration) bool {
	if v.StartedAt == nil {
		return false
	}
	return now.Sub(*v.StartedAt) > limit
}
