package exam

// MarksState tells the client how to present a user's recorded marks
// for a test.
type MarksState string

const (
	// MarksEmpty: no finished attempts yet.
	MarksEmpty MarksState = "empty"
	// MarksShown: finished attempts exist and the test exposes scores.
	MarksShown MarksState = "shown"
	// MarksHidden: finished attempts exist but scores are not shown.
	MarksHidden MarksState = "hidden"
)

// Marks is the displayable result history for one (user, test) pair.
// Values is populated only in the MarksShown state.
type Marks struct {
	State  MarksState `json:"state"`
	Values []float64  `json:"values,omitempty"`
}

// Response is one of the engine's reply shapes. The transport layer
// maps these to wire payloads.
type Response interface{ isResponse() }

// TestSummary pairs an accessible test with the user's result history.
type TestSummary struct {
	Name  string `json:"name"`
	Marks Marks  `json:"marks"`
}

// TestList answers ListAvailableTests.
type TestList struct {
	Tests []TestSummary `json:"tests"`
}

// Banner is returned when a question request opens a fresh variant.
type Banner struct {
	Text string `json:"text"`
}

// NextQuestion carries the next unanswered question of an open variant.
type NextQuestion struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Ack confirms an accepted answer when the variant is not yet complete.
type Ack struct{}

// End reports a finished (or unavailable) attempt together with the
// user's result history for the test.
type End struct {
	Marks Marks `json:"marks"`
}

func (TestList) isResponse()     {}
func (Banner) isResponse()       {}
func (NextQuestion) isResponse() {}
func (Ack) isResponse()          {}
func (End) isResponse()          {}
