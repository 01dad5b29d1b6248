package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "marks.db")
	s, err := Open(context.Background(), DriverSQLite, dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndCountAttempts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	n, err := s.AttemptsUsed(ctx, "sasha", "linux")
	if err != nil {
		t.Fatalf("AttemptsUsed: %v", err)
	}
	if n != 0 {
		t.Fatalf("fresh store reports %d attempts", n)
	}

	for i, mark := range []float64{1.5, 0.5, 2.0} {
		started := base.Add(time.Duration(i) * time.Hour)
		if err := s.RecordAttempt(ctx, "sasha", "linux", mark, started, started.Add(5*time.Minute)); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}
	if err := s.RecordAttempt(ctx, "zhenya", "linux", 1.0, base, base.Add(time.Minute)); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	if n, _ = s.AttemptsUsed(ctx, "sasha", "linux"); n != 3 {
		t.Errorf("AttemptsUsed(sasha) = %d, want 3", n)
	}
	if n, _ = s.AttemptsUsed(ctx, "sasha", "algebra"); n != 0 {
		t.Errorf("AttemptsUsed(sasha, algebra) = %d, want 0", n)
	}

	marks, err := s.PriorMarks(ctx, "sasha", "linux")
	if err != nil {
		t.Fatalf("PriorMarks: %v", err)
	}
	want := []float64{1.5, 0.5, 2.0}
	if len(marks) != len(want) {
		t.Fatalf("PriorMarks = %v, want %v", marks, want)
	}
	for i := range want {
		if marks[i] != want[i] {
			t.Fatalf("PriorMarks = %v, want %v (oldest first)", marks, want)
		}
	}
}

func TestUsersAndResults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, a := range []struct {
		user, test string
		mark       float64
		offset     time.Duration
	}{
		{"zhenya", "linux", 1.0, 0},
		{"sasha", "linux", 2.0, time.Hour},
		{"sasha", "algebra", 0.5, 2 * time.Hour},
	} {
		started := base.Add(a.offset)
		if err := s.RecordAttempt(ctx, a.user, a.test, a.mark, started, started.Add(time.Minute)); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 || users[0] != "sasha" || users[1] != "zhenya" {
		t.Errorf("Users = %v, want sorted [sasha zhenya]", users)
	}

	results, err := s.ResultsFor(ctx, "sasha")
	if err != nil {
		t.Fatalf("ResultsFor: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("ResultsFor(sasha) returned %d records, want 2", len(results))
	}
	if results[0].Testname != "linux" || results[1].Testname != "algebra" {
		t.Errorf("ResultsFor order = %v, want oldest first", results)
	}
	if !results[0].StartedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("StartedAt roundtrip = %v, want %v", results[0].StartedAt, base.Add(time.Hour))
	}

	all, err := s.AllResults(ctx)
	if err != nil {
		t.Fatalf("AllResults: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("AllResults returned %d records, want 3", len(all))
	}
	if all[0].Username != "sasha" || all[2].Username != "zhenya" {
		t.Errorf("AllResults grouping = %v, want users in order", all)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "marks.db")
	ctx := context.Background()

	s, err := Open(ctx, DriverSQLite, dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := s.RecordAttempt(ctx, "sasha", "linux", 1.0, time.Now(), time.Now()); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	s.Close()

	// Reopening must apply no migrations and keep the data.
	s, err = Open(ctx, DriverSQLite, dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s.Close()
	if n, _ := s.AttemptsUsed(ctx, "sasha", "linux"); n != 1 {
		t.Fatalf("data lost across reopen, AttemptsUsed = %d", n)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect(context.Background(), Driver("oracle"), "", zerolog.Nop()); err == nil {
		t.Fatal("want an error for an unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	got := pg.rebind(`INSERT INTO attempts (a, b) VALUES (?, ?)`)
	if got != `INSERT INTO attempts (a, b) VALUES ($1, $2)` {
		t.Errorf("rebind = %q", got)
	}

	lite := &Store{driver: DriverSQLite}
	q := `SELECT 1 WHERE a = ?`
	if lite.rebind(q) != q {
		t.Errorf("sqlite rebind must be a no-op, got %q", lite.rebind(q))
	}
}
