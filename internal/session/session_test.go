package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// stubGen returns "n + 0" questions with answers 1, 2, 3, ...
type stubGen struct {
	n    int64
	sets int
}

func (g *stubGen) Generate(op problemgen.Operation, digits int) problemgen.Question {
	g.n++
	return problemgen.Question{Operation: op, Digits: digits, Text: fmt.Sprintf("%d + 0", g.n), Answer: g.n}
}

func (g *stubGen) GenerateSet(op problemgen.Operation, digits, n int) []problemgen.Question {
	g.sets++
	var qs []problemgen.Question
	for range n {
		qs = append(qs, g.Generate(op, digits))
	}
	return qs
}

type memRecorder struct {
	next int64
	err  error
	got  []attempt.Attempt
}

func (r *memRecorder) Record(_ context.Context, q problemgen.Question, v float64, taken time.Duration, now time.Time) (attempt.Attempt, error) {
	if r.err != nil {
		return attempt.Attempt{}, r.err
	}
	r.next++
	a := attempt.New(r.next, q, v, taken, now)
	r.got = append(r.got, a)
	return a, nil
}

var t0 = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func answer(c *Controller, correct bool) string {
	v := c.Question().Answer
	if !correct {
		v += 100
	}
	return fmt.Sprint(v)
}

func startPractice(t *testing.T, count int) (*Controller, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	c := New(&stubGen{}, rec)
	require.NoError(t, c.Configure(PracticeConfig(problemgen.OpAddition, 2, count)))
	require.Equal(t, PhaseConfiguring, c.Phase())
	require.NoError(t, c.Start(t0))
	require.Equal(t, PhaseAwaitingAnswer, c.Phase())
	return c, rec
}

func TestPracticeSessionSummary(t *testing.T) {
	c, rec := startPractice(t, 3)
	ctx := context.Background()
	now := t0

	for i, correct := range []bool{true, false, true} {
		now = now.Add(2 * time.Second)
		fb, err := c.Submit(ctx, answer(c, correct), now)
		require.NoError(t, err)
		assert.Equal(t, correct, fb.Correct)
		assert.Equal(t, i == 2, fb.Last)
		require.True(t, c.CountdownFired(fb.Token, now.Add(fb.Delay)))
		now = now.Add(fb.Delay)
	}

	require.Equal(t, PhaseComplete, c.Phase())
	s := c.Summary(now)
	assert.Equal(t, 3, s.Questions)
	assert.Equal(t, 2, s.Correct)
	assert.Equal(t, 67, s.Accuracy)
	assert.Equal(t, 6*time.Second, s.TotalTime)
	assert.Equal(t, 1, s.BestStreak)
	assert.Nil(t, s.Level)
	assert.Len(t, rec.got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{rec.got[0].ID, rec.got[1].ID, rec.got[2].ID})
}

func TestSubmitNonNumericKeepsState(t *testing.T) {
	c, rec := startPractice(t, 2)
	q := c.Question()

	for _, raw := range []string{"", "abc", "1e5", "--3"} {
		_, err := c.Submit(context.Background(), raw, t0.Add(time.Second))
		assert.ErrorIs(t, err, ErrNotNumeric, "input %q", raw)
	}
	assert.Equal(t, PhaseAwaitingAnswer, c.Phase())
	assert.Equal(t, q, c.Question())
	answered, _ := c.Progress()
	assert.Zero(t, answered)
	assert.Empty(t, rec.got)
}

func TestFeedbackDelays(t *testing.T) {
	c, _ := startPractice(t, 5)
	ctx := context.Background()

	fb, err := c.Submit(ctx, answer(c, true), t0)
	require.NoError(t, err)
	assert.Equal(t, DefaultFeedbackCorrect, fb.Delay)
	require.True(t, c.Skip(t0))

	fb, err = c.Submit(ctx, answer(c, false), t0)
	require.NoError(t, err)
	assert.Equal(t, DefaultFeedbackIncorrect, fb.Delay)
	assert.Equal(t, c.Question().AnswerValue(), fb.CorrectAnswer)
}

func TestSkipAndStaleTokens(t *testing.T) {
	c, _ := startPractice(t, 3)
	ctx := context.Background()

	fb, err := c.Submit(ctx, answer(c, true), t0.Add(time.Second))
	require.NoError(t, err)
	first := c.Question()

	require.True(t, c.Skip(t0.Add(2*time.Second)))
	assert.Equal(t, PhaseAwaitingAnswer, c.Phase())
	assert.NotEqual(t, first, c.Question())

	// The countdown that was skipped must not advance again.
	assert.False(t, c.CountdownFired(fb.Token, t0.Add(3*time.Second)))
	assert.False(t, c.Skip(t0.Add(3*time.Second)))
	answered, _ := c.Progress()
	assert.Equal(t, 1, answered)

	fb2, err := c.Submit(ctx, answer(c, true), t0.Add(4*time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, fb.Token, fb2.Token)
	assert.False(t, c.CountdownFired(fb.Token, t0.Add(5*time.Second)))
	assert.True(t, c.CountdownFired(fb2.Token, t0.Add(5*time.Second)))
}

func TestStopMakesTokensStale(t *testing.T) {
	c, _ := startPractice(t, 3)
	fb, err := c.Submit(context.Background(), answer(c, true), t0)
	require.NoError(t, err)

	c.Stop()
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.False(t, c.CountdownFired(fb.Token, t0.Add(time.Second)))

	// A new run does not reuse the torn-down token.
	require.NoError(t, c.Configure(PracticeConfig(problemgen.OpAddition, 1, 2)))
	require.NoError(t, c.Start(t0))
	fb2, err := c.Submit(context.Background(), answer(c, true), t0)
	require.NoError(t, err)
	assert.NotEqual(t, fb.Token, fb2.Token)
	assert.False(t, c.CountdownFired(fb.Token, t0))
}

func TestInvalidTransitions(t *testing.T) {
	c := New(&stubGen{}, &memRecorder{})

	assert.ErrorIs(t, c.Start(t0), ErrInvalidTransition)
	_, err := c.Submit(context.Background(), "1", t0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, c.Skip(t0))

	require.NoError(t, c.Configure(PracticeConfig(problemgen.OpAddition, 1, 2)))
	require.NoError(t, c.Start(t0))
	assert.ErrorIs(t, c.Configure(PracticeConfig(problemgen.OpAddition, 1, 2)), ErrInvalidTransition)
	assert.ErrorIs(t, c.Start(t0), ErrInvalidTransition)
}

func TestConfigureRejectsBadConfig(t *testing.T) {
	c := New(&stubGen{}, &memRecorder{})
	assert.Error(t, c.Configure(PracticeConfig("modulo", 2, 5)))
	assert.Error(t, c.Configure(Config{Mode: ModeLevel}))
	assert.Equal(t, PhaseIdle, c.Phase())
}

func TestConfigNormalize(t *testing.T) {
	cfg, err := PracticeConfig(problemgen.OpDivision, 0, 500).normalize()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Digits)
	assert.Equal(t, MaxQuestions, cfg.Count)
	assert.Equal(t, DefaultFeedbackCorrect, cfg.FeedbackCorrect)

	cfg, err = PracticeConfig(problemgen.OpDivision, 3, 0).normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultQuestions, cfg.Count)
}

func TestRecordFailureDoesNotBlock(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	c := New(&stubGen{}, rec)
	require.NoError(t, c.Configure(PracticeConfig(problemgen.OpAddition, 1, 1)))
	require.NoError(t, c.Start(t0))

	fb, err := c.Submit(context.Background(), answer(c, true), t0.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, 1, c.Correct())
	require.True(t, c.Skip(t0))
	assert.Equal(t, PhaseComplete, c.Phase())
}

func testLevel(timeLimit int) level.Level {
	return level.Level{
		ID:        4,
		Name:      "Quick Sums",
		Operation: problemgen.OpAddition,
		Digits:    2,
		Requirements: level.Requirements{
			TotalQuestions: 4,
			MinCorrect:     3,
			TimeLimit:      timeLimit,
		},
		Rewards: level.Rewards{UnlocksLevel: 5},
	}
}

func playLevel(t *testing.T, c *Controller, outcomes []bool, step time.Duration) time.Time {
	t.Helper()
	now := t0
	for _, ok := range outcomes {
		now = now.Add(step)
		_, err := c.Submit(context.Background(), answer(c, ok), now)
		require.NoError(t, err)
		require.True(t, c.Skip(now))
	}
	return now
}

func TestLevelRun(t *testing.T) {
	gen := &stubGen{}
	c := New(gen, &memRecorder{})
	require.NoError(t, c.Configure(LevelConfig(testLevel(0))))
	require.NoError(t, c.Start(t0))
	assert.Equal(t, 1, gen.sets, "level questions are pre-generated")
	_, timed := c.Remaining(t0)
	assert.False(t, timed)

	now := playLevel(t, c, []bool{true, true, true, true}, 3*time.Second)
	require.Equal(t, PhaseComplete, c.Phase())

	run := c.Run()
	assert.Equal(t, level.Run{LevelID: 4, CorrectAnswers: 4, TotalQuestions: 4, TimeTaken: 12}, run)

	s := c.Summary(now)
	require.NotNil(t, s.Level)
	assert.True(t, s.Level.Success)
	assert.Equal(t, 3, s.Level.StarsEarned)
	assert.Equal(t, 5, s.Level.NextLevelID)
	assert.Equal(t, 4, s.BestStreak)
}

func TestLevelRunFails(t *testing.T) {
	c := New(&stubGen{}, &memRecorder{})
	require.NoError(t, c.Configure(LevelConfig(testLevel(0))))
	require.NoError(t, c.Start(t0))
	now := playLevel(t, c, []bool{true, false, false, true}, time.Second)

	s := c.Summary(now)
	require.NotNil(t, s.Level)
	assert.False(t, s.Level.Success)
	assert.Equal(t, 3, s.Level.Required)
}

func TestLevelTimeExpired(t *testing.T) {
	c := New(&stubGen{}, &memRecorder{})
	require.NoError(t, c.Configure(LevelConfig(testLevel(10))))
	require.NoError(t, c.Start(t0))

	left, timed := c.Remaining(t0.Add(4 * time.Second))
	require.True(t, timed)
	assert.Equal(t, 6*time.Second, left)

	_, err := c.Submit(context.Background(), answer(c, true), t0.Add(2*time.Second))
	require.NoError(t, err)

	assert.False(t, c.TimeExpired(t0.Add(9*time.Second)))
	assert.True(t, c.TimeExpired(t0.Add(10*time.Second)))
	assert.Equal(t, PhaseComplete, c.Phase())
	assert.False(t, c.Skip(t0.Add(11*time.Second)))

	s := c.Summary(t0.Add(10 * time.Second))
	assert.True(t, s.TimedOut)
	assert.Equal(t, 1, s.Questions)
	require.NotNil(t, s.Level)
	assert.False(t, s.Level.Success)
}

func TestTimeExpiredIgnoredWhenUntimed(t *testing.T) {
	c, _ := startPractice(t, 3)
	assert.False(t, c.TimeExpired(t0.Add(24*time.Hour)))
	assert.Equal(t, PhaseAwaitingAnswer, c.Phase())
}

func TestAdaptiveSuggestion(t *testing.T) {
	tests := []struct {
		digits, accuracy, want int
	}{
		{2, 90, 3},
		{2, 100, 3},
		{2, 89, 0},
		{2, 50, 0},
		{2, 49, 1},
		{1, 10, 0},
		{problemgen.MaxDigits, 100, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestDigits(tt.digits, tt.accuracy), "digits=%d accuracy=%d", tt.digits, tt.accuracy)
	}

	rec := &memRecorder{}
	c := New(&stubGen{}, rec)
	cfg := PracticeConfig(problemgen.OpAddition, 2, 1)
	cfg.Adaptive = true
	require.NoError(t, c.Configure(cfg))
	require.NoError(t, c.Start(t0))
	_, err := c.Submit(context.Background(), answer(c, true), t0)
	require.NoError(t, err)
	c.Skip(t0)
	assert.Equal(t, 3, c.Summary(t0).SuggestedDigits)
}

func TestReadyToAutoSubmit(t *testing.T) {
	rec := &memRecorder{}
	c := New(&stubGen{n: 41}, rec) // first answer is 42
	require.NoError(t, c.Configure(PracticeConfig(problemgen.OpAddition, 2, 2)))
	require.NoError(t, c.Start(t0))

	assert.False(t, c.ReadyToAutoSubmit(""))
	assert.False(t, c.ReadyToAutoSubmit("4"))
	assert.True(t, c.ReadyToAutoSubmit("42"))
	assert.True(t, c.ReadyToAutoSubmit("17"))
	assert.False(t, c.ReadyToAutoSubmit("4x"))
}

func TestStopwatch(t *testing.T) {
	c, _ := startPractice(t, 2)
	assert.Equal(t, 3*time.Second, c.QuestionElapsed(t0.Add(3*time.Second)))
	assert.NotEmpty(t, c.ID())

	fb, err := c.Submit(context.Background(), answer(c, true), t0.Add(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, fb.TimeTaken)
	assert.Zero(t, c.QuestionElapsed(t0.Add(5*time.Second)))
	assert.Equal(t, 100, c.RunningAccuracy())
	assert.Equal(t, 1, c.Streak())
}
