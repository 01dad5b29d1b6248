package bank

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dovydenkovas/learned-cat/internal/exam"
)

// Question file format:
//
//	free text before the first '#' is the test banner
//	# starts a question; following lines extend its text
//	+ adds a correct option, - or * adds a wrong one
//	indented or bare lines after an option continue that option
//
// parseQuestions reads the whole file and returns the banner and the
// question pool.
func parseQuestions(r io.Reader) (string, []exam.Question, error) {
	var (
		banner    strings.Builder
		questions []exam.Question
		current   *exam.Question
		inOptions bool
	)

	flush := func() {
		if current != nil && current.Text != "" {
			questions = append(questions, *current)
		}
		current = nil
		inOptions = false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "#"):
			flush()
			current = &exam.Question{Text: strings.TrimSpace(strings.TrimLeft(line, "#"))}

		case current == nil:
			if line != "" || banner.Len() > 0 {
				banner.WriteString(line)
				banner.WriteString("\n")
			}

		case strings.HasPrefix(line, "+"):
			current.Correct = append(current.Correct, len(current.Options))
			current.Options = append(current.Options, strings.TrimSpace(line[1:]))
			inOptions = true

		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*"):
			current.Options = append(current.Options, strings.TrimSpace(line[1:]))
			inOptions = true

		case line == "":
			// blank lines separate nothing in particular

		case inOptions:
			// continuation of the previous option
			last := len(current.Options) - 1
			current.Options[last] += "\n" + line

		default:
			// continuation of the question text
			current.Text += "\n" + line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("read questions: %w", err)
	}
	flush()

	for i, q := range questions {
		if len(q.Options) == 0 {
			return "", nil, fmt.Errorf("question %d (%.40q) has no options", i+1, q.Text)
		}
		if len(q.Correct) == 0 {
			return "", nil, fmt.Errorf("question %d (%.40q) has no correct option", i+1, q.Text)
		}
	}

	return strings.TrimSpace(banner.String()), questions, nil
}
