// The terminal exam client: lists available tests and runs one test
// interactively against the daemon.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/user"
	"path"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dovydenkovas/learned-cat/internal/exam"
	"github.com/dovydenkovas/learned-cat/internal/transport"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).PaddingLeft(2)
	optionStyle = lipgloss.NewStyle().PaddingLeft(4)
	markStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

func main() {
	server := flag.String("server", "127.0.0.1:65001", "daemon address")
	username := flag.String("user", "", "override the current username")
	list := flag.Bool("list", false, "show available tests")
	flag.Parse()

	if *username == "" {
		u, err := user.Current()
		if err != nil {
			fatal(fmt.Errorf("determine user: %w", err))
		}
		*username = u.Username
	}

	client := transport.NewClient(*server)

	switch {
	case *list:
		showTests(client, *username)
	case flag.NArg() == 1:
		runTest(client, *username, flag.Arg(0))
	default:
		fmt.Printf("USAGE: %s [-list] <test name>\n", path.Base(os.Args[0]))
		os.Exit(2)
	}
}

func showTests(client *transport.Client, username string) {
	resp, err := client.ListTests(username)
	if err != nil {
		fatal(err)
	}
	if resp.Kind == transport.KindError {
		fatalWire(resp.Error)
	}

	fmt.Println(titleStyle.Render("Available tests"))
	if len(resp.Tests) == 0 {
		fmt.Println(faintStyle.Render("  none"))
		return
	}
	for _, t := range resp.Tests {
		fmt.Printf("  %-20s %s\n", t.Name, renderMarks(t.Marks))
	}
}

func runTest(client *transport.Client, username, testname string) {
	stdin := bufio.NewReader(os.Stdin)

	for {
		resp, err := client.RequestQuestion(username, testname)
		if err != nil {
			fatal(err)
		}

		switch resp.Kind {
		case transport.KindBanner:
			fmt.Println(titleStyle.Render(testname))
			if resp.Banner != "" {
				fmt.Println(bannerStyle.Render(resp.Banner))
			}
			fmt.Println(faintStyle.Render("Press Enter to begin..."))
			stdin.ReadString('\n')

		case transport.KindQuestion:
			answer := askQuestion(stdin, resp.Question)
			sub, err := client.SubmitAnswer(username, testname, answer)
			if err != nil {
				fatal(err)
			}
			switch sub.Kind {
			case transport.KindAck:
				// next question on the following iteration
			case transport.KindEnd:
				printEnd(sub.Marks)
				return
			case transport.KindError:
				fatalWire(sub.Error)
			}

		case transport.KindEnd:
			printEnd(resp.Marks)
			return

		case transport.KindError:
			fatalWire(resp.Error)
		}
	}
}

// askQuestion renders the question and reads option numbers, e.g. "1 3".
func askQuestion(stdin *bufio.Reader, q *transport.QuestionPayload) []int {
	fmt.Println()
	fmt.Println(titleStyle.Render(q.Text))
	for i, opt := range q.Options {
		fmt.Println(optionStyle.Render(fmt.Sprintf("%d. %s", i+1, opt)))
	}

	for {
		fmt.Print(faintStyle.Render("Answer (numbers separated by spaces): "))
		line, err := stdin.ReadString('\n')
		if err != nil {
			fatal(err)
		}

		var selected []int
		valid := true
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil || n < 1 || n > len(q.Options) {
				valid = false
				break
			}
			selected = append(selected, n-1)
		}
		if valid {
			return selected
		}
		fmt.Println(errStyle.Render(fmt.Sprintf("Enter numbers between 1 and %d.", len(q.Options))))
	}
}

func printEnd(marks *exam.Marks) {
	fmt.Println()
	fmt.Println(titleStyle.Render("Test finished."))
	if marks != nil {
		fmt.Println("  " + renderMarks(*marks))
	}
}

func renderMarks(m exam.Marks) string {
	switch m.State {
	case exam.MarksShown:
		parts := make([]string, len(m.Values))
		for i, v := range m.Values {
			parts[i] = strconv.FormatFloat(v, 'f', 2, 64)
		}
		return markStyle.Render(strings.Join(parts, ", "))
	case exam.MarksHidden:
		return faintStyle.Render("completed")
	default:
		return faintStyle.Render("not taken")
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
	os.Exit(1)
}

func fatalWire(e *transport.ErrorPayload) {
	if e == nil {
		fatal(fmt.Errorf("server error"))
	}
	fatal(fmt.Errorf("%s: %s", e.Code, e.Message))
}
