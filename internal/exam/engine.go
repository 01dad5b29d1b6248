package exam

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Engine owns all mutable exam state. It is written with
// single-threaded semantics: every method must be called from the
// coordinator loop, never concurrently. The variants map is the
// authoritative session table and is touched by nothing else.
type Engine struct {
	policy AccessPolicy
	source QuestionSource
	store  ResultStore
	log    zerolog.Logger

	// user -> at most one open variant
	variants map[string]*Variant

	now func() time.Time
}

// NewEngine wires the engine to its collaborators.
func NewEngine(policy AccessPolicy, source QuestionSource, store ResultStore, log zerolog.Logger) *Engine {
	return &Engine{
		policy:   policy,
		source:   source,
		store:    store,
		log:      log.With().Str("component", "engine").Logger(),
		variants: make(map[string]*Variant),
		now:      time.Now,
	}
}

// ListAvailableTests returns every test the user may take, each paired
// with the user's displayable result history.
func (e *Engine) ListAvailableTests(ctx context.Context, user string) (Response, error) {
	if !e.policy.UserExists(user) {
		e.log.Debug().Str("user", user).Msg("test list requested by unknown user")
		return nil, ErrUserUnknown
	}

	names := e.policy.TestsFor(user)
	tests := make([]TestSummary, 0, len(names))
	for _, name := range names {
		marks, err := e.marksFor(ctx, user, name)
		if err != nil {
			return nil, err
		}
		tests = append(tests, TestSummary{Name: name, Marks: marks})
	}
	return TestList{Tests: tests}, nil
}

// RequestQuestion is both "start" and "continue": with no open variant
// it draws a fresh one and returns the banner; with an open variant it
// returns the next unanswered question, finalizing first if the time
// limit has elapsed or every question is answered.
func (e *Engine) RequestQuestion(ctx context.Context, user, test string) (Response, error) {
	settings, err := e.checkAccess(user, test)
	if err != nil {
		return nil, err
	}

	v := e.variants[user]
	if v != nil && v.Test != test {
		e.log.Debug().Str("user", user).Str("test", test).Str("open", v.Test).
			Msg("question requested while another test is open")
		return nil, ErrTestIsOpen
	}

	if v == nil {
		ok, err := e.hasAttempt(ctx, user, test, settings)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.log.Debug().Str("user", user).Str("test", test).Msg("attempts exhausted")
			return e.endResponse(ctx, user, test)
		}
		if err := e.openVariant(ctx, user, test, settings); err != nil {
			return nil, err
		}
		e.log.Info().Str("user", user).Str("test", test).Msg("variant opened")
		return Banner{Text: settings.Banner}, nil
	}

	if v.Expired(e.now(), settings.Duration) {
		e.log.Info().Str("user", user).Str("test", test).Msg("time limit elapsed")
		return e.finalize(ctx, v)
	}

	if v.StartedAt == nil {
		// The clock starts when the first question goes out.
		started := e.now()
		v.StartedAt = &started
	}

	if v.Complete() {
		return e.finalize(ctx, v)
	}

	q := v.Questions[v.NextIndex()]
	return NextQuestion{Text: q.Text, Options: q.Options}, nil
}

// SubmitAnswer records the answer to the current question and advances
// the variant, finalizing it when the last question is answered.
func (e *Engine) SubmitAnswer(ctx context.Context, user, test string, selected []int) (Response, error) {
	settings, err := e.checkAccess(user, test)
	if err != nil {
		return nil, err
	}

	v := e.variants[user]
	if v == nil || v.Test != test {
		ok, err := e.hasAttempt(ctx, user, test, settings)
		if err != nil {
			return nil, err
		}
		if !ok {
			return e.endResponse(ctx, user, test)
		}
		e.log.Warn().Str("user", user).Str("test", test).Msg("answer without an open variant")
		return nil, ErrNoOpenVariant
	}
	if v.StartedAt == nil {
		// Banner was issued but no question went out yet.
		return nil, ErrNoOpenVariant
	}
	if v.Complete() {
		// Every question is already answered; the variant is still here
		// because a finalize failed. Re-drive it instead of appending.
		return e.finalize(ctx, v)
	}

	v.Answers = append(v.Answers, NormalizeAnswer(selected))
	if v.Complete() {
		return e.finalize(ctx, v)
	}
	return Ack{}, nil
}

// Sweep finalizes every open variant whose time limit has elapsed.
// It reclaims sessions whose owner never reconnects; no client is
// waiting on the result.
func (e *Engine) Sweep(ctx context.Context) {
	var expired []*Variant
	for _, v := range e.variants {
		settings, err := e.policy.SettingsFor(v.Test)
		if err != nil {
			e.log.Error().Err(err).Str("test", v.Test).Msg("sweep: settings lookup failed")
			continue
		}
		if v.Expired(e.now(), settings.Duration) {
			expired = append(expired, v)
		}
	}

	for _, v := range expired {
		e.log.Info().Str("user", v.User).Str("test", v.Test).Msg("sweeping expired variant")
		if _, err := e.finalize(ctx, v); err != nil {
			// The variant stays in the table; the next sweep retries.
			e.log.Error().Err(err).Str("user", v.User).Str("test", v.Test).
				Msg("sweep: finalize failed")
		}
	}
}

// checkAccess validates (user, test) against the policy and returns the
// test settings.
func (e *Engine) checkAccess(user, test string) (TestSettings, error) {
	if !e.policy.HasAccess(user, test) {
		e.log.Debug().Str("user", user).Str("test", test).Msg("access denied")
		return TestSettings{}, ErrAccessDenied
	}
	settings, err := e.policy.SettingsFor(test)
	if err != nil {
		return TestSettings{}, err
	}
	return settings, nil
}

// hasAttempt reports whether the user may open one more variant.
// Only persisted attempts count; the open variant, if any, does not.
func (e *Engine) hasAttempt(ctx context.Context, user, test string, settings TestSettings) (bool, error) {
	if settings.Attempts <= 0 {
		return true, nil
	}
	used, err := e.store.AttemptsUsed(ctx, user, test)
	if err != nil {
		return false, collabErr("count attempts", err)
	}
	return used < settings.Attempts, nil
}

// openVariant draws a fresh variant and installs it in the session table.
func (e *Engine) openVariant(ctx context.Context, user, test string, settings TestSettings) error {
	count, err := e.source.QuestionCount(test)
	if err != nil {
		return collabErr("count questions", err)
	}
	indices, err := sampleIndices(count, settings.QuestionsPerVariant)
	if err != nil {
		return collabErr("draw variant", err)
	}

	questions := make([]Question, 0, len(indices))
	for _, idx := range indices {
		q, err := e.source.QuestionAt(test, idx)
		if err != nil {
			return collabErr("fetch question", err)
		}
		questions = append(questions, q)
	}

	e.variants[user] = &Variant{User: user, Test: test, Questions: questions}
	return nil
}

// finalize scores the variant, persists the attempt, and removes the
// variant from the session table. On a store failure the variant is
// kept so a later sweep or client retry can finish the job.
func (e *Engine) finalize(ctx context.Context, v *Variant) (Response, error) {
	mark := scoreVariant(v)
	finished := e.now()
	started := finished
	if v.StartedAt != nil {
		started = *v.StartedAt
	}

	if err := e.store.RecordAttempt(ctx, v.User, v.Test, mark, started, finished); err != nil {
		return nil, collabErr("record attempt", err)
	}
	delete(e.variants, v.User)

	e.log.Info().Str("user", v.User).Str("test", v.Test).Float64("mark", mark).
		Msg("variant finalized")
	return e.endResponse(ctx, v.User, v.Test)
}

// endResponse builds the End reply with the user's result history.
func (e *Engine) endResponse(ctx context.Context, user, test string) (Response, error) {
	marks, err := e.marksFor(ctx, user, test)
	if err != nil {
		return nil, err
	}
	return End{Marks: marks}, nil
}

// marksFor translates the stored score history into its displayable form.
func (e *Engine) marksFor(ctx context.Context, user, test string) (Marks, error) {
	values, err := e.store.PriorMarks(ctx, user, test)
	if err != nil {
		return Marks{}, collabErr("load marks", err)
	}
	if len(values) == 0 {
		return Marks{State: MarksEmpty}, nil
	}

	settings, err := e.policy.SettingsFor(test)
	if err != nil {
		return Marks{}, err
	}
	if !settings.ShowResults {
		return Marks{State: MarksHidden}, nil
	}
	return Marks{State: MarksShown, Values: values}, nil
}
