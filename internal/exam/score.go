package exam

// scoreQuestion computes the partial-credit score for one question.
// Each correct selection earns 1/n where n is the number of correct
// options; each wrong selection cancels one correct selection. The
// result is clamped to [0, 1], so an empty or garbage submission
// scores 0 rather than negative.
func scoreQuestion(submitted Answer, correct []int) float64 {
	if len(correct) == 0 {
		return 0
	}

	d := 1.0 / float64(len(correct))
	hits := 0
	for _, idx := range correct {
		if submitted.Contains(idx) {
			hits++
		}
	}
	mark := d * float64(2*hits-len(submitted))

	if mark < 0 {
		return 0
	}
	if mark > 1 {
		return 1
	}
	return mark
}

// scoreVariant sums the per-question scores over every answered
// question. Unanswered questions (time ran out) contribute nothing.
func scoreVariant(v *Variant) float64 {
	total := 0.0
	for i := range v.Answers {
		total += scoreQuestion(v.Answers[i], v.Questions[i].Correct)
	}
	return total
}
