// Package bank loads the test manifest and question files from disk and
// serves as both the access policy and the question source for the exam
// engine. Everything is read once at startup and immutable afterwards.
package bank

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/dovydenkovas/learned-cat/internal/exam"
)

// ManifestName is the bank directory's entry point.
const ManifestName = "tests.yaml"

// TestConfig is one test entry of the manifest.
type TestConfig struct {
	Caption string `yaml:"caption" validate:"required"`
	// File is the question file, relative to the bank directory.
	// Defaults to "<caption>.md".
	File                string   `yaml:"file"`
	QuestionsPerVariant int      `yaml:"questions_per_variant" validate:"min=1"`
	DurationMinutes     int      `yaml:"duration_minutes" validate:"min=1"`
	Attempts            int      `yaml:"attempts" validate:"min=0"`
	ShowResults         bool     `yaml:"show_results"`
	AllowedUsers        []string `yaml:"allowed_users" validate:"required,min=1"`
}

// Manifest is the tests.yaml document.
type Manifest struct {
	Tests []TestConfig `yaml:"tests" validate:"required,min=1,dive"`
}

type loadedTest struct {
	config    TestConfig
	banner    string
	questions []exam.Question
}

// Bank implements exam.AccessPolicy and exam.QuestionSource.
type Bank struct {
	tests map[string]*loadedTest
	users map[string]map[string]struct{}
}

// Load reads tests.yaml and every referenced question file under dir.
func Load(dir string, log zerolog.Logger) (*Bank, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validator.New().Struct(&manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	b := &Bank{
		tests: make(map[string]*loadedTest, len(manifest.Tests)),
		users: make(map[string]map[string]struct{}),
	}

	for _, tc := range manifest.Tests {
		if _, dup := b.tests[tc.Caption]; dup {
			return nil, fmt.Errorf("duplicate test %q in manifest", tc.Caption)
		}
		file := tc.File
		if file == "" {
			file = tc.Caption + ".md"
		}

		f, err := os.Open(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("open questions for %q: %w", tc.Caption, err)
		}
		banner, questions, err := parseQuestions(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("test %q: %w", tc.Caption, err)
		}
		if len(questions) == 0 {
			return nil, fmt.Errorf("test %q has no questions", tc.Caption)
		}

		b.tests[tc.Caption] = &loadedTest{config: tc, banner: banner, questions: questions}
		for _, user := range tc.AllowedUsers {
			if b.users[user] == nil {
				b.users[user] = make(map[string]struct{})
			}
			b.users[user][tc.Caption] = struct{}{}
		}

		log.Info().Str("test", tc.Caption).Int("questions", len(questions)).
			Int("per_variant", tc.QuestionsPerVariant).Msg("Test loaded")
	}

	return b, nil
}

// UserExists reports whether any test allow-lists the user.
func (b *Bank) UserExists(user string) bool {
	_, ok := b.users[user]
	return ok
}

// TestExists reports whether the test is in the bank.
func (b *Bank) TestExists(test string) bool {
	_, ok := b.tests[test]
	return ok
}

// SettingsFor returns the test's policy settings.
func (b *Bank) SettingsFor(test string) (exam.TestSettings, error) {
	t, ok := b.tests[test]
	if !ok {
		return exam.TestSettings{}, exam.ErrTestUnknown
	}
	return exam.TestSettings{
		Banner:              t.banner,
		QuestionsPerVariant: t.config.QuestionsPerVariant,
		Duration:            time.Duration(t.config.DurationMinutes) * time.Minute,
		Attempts:            t.config.Attempts,
		ShowResults:         t.config.ShowResults,
	}, nil
}

// HasAccess reports whether the user is allow-listed for the test.
func (b *Bank) HasAccess(user, test string) bool {
	tests, ok := b.users[user]
	if !ok {
		return false
	}
	_, ok = tests[test]
	return ok
}

// TestsFor returns the user's accessible tests in stable order.
func (b *Bank) TestsFor(user string) []string {
	names := make([]string, 0, len(b.users[user]))
	for name := range b.users[user] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// QuestionCount returns the size of the test's question pool.
func (b *Bank) QuestionCount(test string) (int, error) {
	t, ok := b.tests[test]
	if !ok {
		return 0, exam.ErrTestUnknown
	}
	return len(t.questions), nil
}

// QuestionAt returns the question at idx in the test's pool.
func (b *Bank) QuestionAt(test string, idx int) (exam.Question, error) {
	t, ok := b.tests[test]
	if !ok {
		return exam.Question{}, exam.ErrTestUnknown
	}
	if idx < 0 || idx >= len(t.questions) {
		return exam.Question{}, fmt.Errorf("question %d out of range for %q", idx, test)
	}
	return t.questions[idx], nil
}
