package bank

import (
	"strings"
	"testing"
)

const sampleFile = `Linux basics.
Read every question carefully.

# Which command lists files?
+ ls
- rm
* cd

# Which of these are shells?
Pick every one that applies.
+ bash
+ zsh
- vim

# What does the following print?
    echo hello
+ hello
- nothing
`

func TestParseQuestions(t *testing.T) {
	banner, questions, err := parseQuestions(strings.NewReader(sampleFile))
	if err != nil {
		t.Fatalf("parseQuestions: %v", err)
	}

	if want := "Linux basics.\nRead every question carefully."; banner != want {
		t.Errorf("banner = %q, want %q", banner, want)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}

	q := questions[0]
	if q.Text != "Which command lists files?" {
		t.Errorf("q1 text = %q", q.Text)
	}
	if len(q.Options) != 3 || q.Options[0] != "ls" {
		t.Errorf("q1 options = %v", q.Options)
	}
	if len(q.Correct) != 1 || q.Correct[0] != 0 {
		t.Errorf("q1 correct = %v, want [0]", q.Correct)
	}

	q = questions[1]
	if !strings.Contains(q.Text, "Pick every one that applies.") {
		t.Errorf("q2 continuation lost: %q", q.Text)
	}
	if len(q.Correct) != 2 || q.Correct[0] != 0 || q.Correct[1] != 1 {
		t.Errorf("q2 correct = %v, want [0 1]", q.Correct)
	}

	q = questions[2]
	if !strings.Contains(q.Text, "echo hello") {
		t.Errorf("q3 indented continuation lost: %q", q.Text)
	}
}

func TestParseQuestionsNoBanner(t *testing.T) {
	banner, questions, err := parseQuestions(strings.NewReader("# Only question?\n+ yes\n- no\n"))
	if err != nil {
		t.Fatalf("parseQuestions: %v", err)
	}
	if banner != "" {
		t.Errorf("banner = %q, want empty", banner)
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(questions))
	}
}

func TestParseQuestionsOptionContinuation(t *testing.T) {
	src := "# Pick the couplet.\n+ roses are red\nviolets are blue\n- prose\n"
	_, questions, err := parseQuestions(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parseQuestions: %v", err)
	}
	if got := questions[0].Options[0]; got != "roses are red\nviolets are blue" {
		t.Errorf("option continuation = %q", got)
	}
}

func TestParseQuestionsRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no options", "# Lonely question?\n"},
		{"no correct option", "# Any right answer?\n- no\n* also no\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseQuestions(strings.NewReader(tc.src)); err == nil {
				t.Fatal("want an error for a malformed question file")
			}
		})
	}
}
