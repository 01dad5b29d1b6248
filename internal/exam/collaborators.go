package exam

import (
	"context"
	"time"
)

// AccessPolicy answers who exists, which tests they may take, and how
// each test is configured. Backed by the loaded question bank.
type AccessPolicy interface {
	UserExists(user string) bool
	TestExists(test string) bool
	SettingsFor(test string) (TestSettings, error)
	HasAccess(user, test string) bool
	TestsFor(user string) []string
}

// QuestionSource hands out questions by index from a test's pool.
type QuestionSource interface {
	QuestionCount(test string) (int, error)
	QuestionAt(test string, idx int) (Question, error)
}

// ResultStore persists finished attempts and answers attempt history.
// The engine is its only caller inside the daemon, so the store needs
// no locking on the engine side.
type ResultStore interface {
	AttemptsUsed(ctx context.Context, user, test string) (int, error)
	PriorMarks(ctx context.Context, user, test string) ([]float64, error)
	RecordAttempt(ctx context.Context, user, test string, mark float64, startedAt, finishedAt time.Time) error
}
