package attempt

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// memRepo is an in-memory Repo.
type memRepo struct {
	last     int64
	attempts []Attempt
}

func (r *memRepo) Append(_ context.Context, a Attempt) error {
	r.attempts = append(r.attempts, a)
	return nil
}

func (r *memRepo) All(context.Context) ([]Attempt, error) {
	return slices.Clone(r.attempts), nil
}

func (r *memRepo) ByOperation(_ context.Context, op problemgen.Operation) ([]Attempt, error) {
	var out []Attempt
	for _, a := range r.attempts {
		if a.Operation == op {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) Recent(_ context.Context, n int) ([]Attempt, error) {
	out := slices.Clone(r.attempts)
	slices.Reverse(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *memRepo) NextID(context.Context) (int64, error) {
	r.last++
	return r.last, nil
}

func (r *memRepo) LastID(context.Context) (int64, error) { return r.last, nil }

func (r *memRepo) Clear(context.Context) error {
	r.attempts = nil
	r.last = 0
	return nil
}

func (r *memRepo) Replace(_ context.Context, c Collection) error {
	r.attempts = slices.Clone(c.Attempts)
	r.last = c.LastID
	return nil
}

func (r *memRepo) ReplaceIfEmpty(ctx context.Context, c Collection) (bool, error) {
	if r.last > 0 || len(r.attempts) > 0 {
		return false, nil
	}
	return true, r.Replace(ctx, c)
}

func (r *memRepo) Merge(_ context.Context, attempts []Attempt) ([]Attempt, error) {
	out := slices.Clone(attempts)
	for i := range out {
		out[i].ID = r.last + int64(i) + 1
	}
	r.attempts = append(r.attempts, out...)
	r.last += int64(len(out))
	return out, nil
}

type fakeMirror struct {
	saved   []Collection
	clears  int
	failErr error
}

func (m *fakeMirror) SaveAttempts(_ context.Context, c Collection) error {
	m.saved = append(m.saved, c)
	return m.failErr
}

func (m *fakeMirror) ClearAttempts(context.Context) error {
	m.clears++
	return m.failErr
}

var testNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func addQuestion(a, b int64) problemgen.Question {
	return problemgen.Question{Operation: problemgen.OpAddition, Digits: 1, Text: "x", Answer: a + b}
}

func TestStore_RecordAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&memRepo{}, nil, nil)

	a1, err := s.Record(ctx, addQuestion(1, 2), 3, time.Second, testNow)
	require.NoError(t, err)
	a2, err := s.Record(ctx, addQuestion(2, 2), 5, time.Second, testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a1.ID)
	assert.Equal(t, int64(2), a2.ID)
	assert.True(t, a1.IsCorrect)
	assert.False(t, a2.IsCorrect)

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	last, err := s.LastID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)
}

func TestStore_AppendRejectsInvalid(t *testing.T) {
	repo := &memRepo{}
	s := NewStore(repo, nil, nil)
	err := s.Append(context.Background(), Attempt{ID: 0, Operation: problemgen.OpAddition, Digits: 1})
	require.Error(t, err)
	assert.Empty(t, repo.attempts)
}

func TestStore_MirrorsEveryMutation(t *testing.T) {
	ctx := context.Background()
	m := &fakeMirror{}
	s := NewStore(&memRepo{}, m, nil)

	_, err := s.Record(ctx, addQuestion(1, 1), 2, time.Second, testNow)
	require.NoError(t, err)
	require.Len(t, m.saved, 1)
	assert.Equal(t, int64(1), m.saved[0].LastID)
	assert.Len(t, m.saved[0].Attempts, 1)

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 1, m.clears)
}

func TestStore_MirrorFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	m := &fakeMirror{failErr: errors.New("host gone")}
	s := NewStore(&memRepo{}, m, nil)

	_, err := s.Record(ctx, addQuestion(1, 1), 2, time.Second, testNow)
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))
}

func TestStore_ClearResetsLastID(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&memRepo{}, nil, nil)
	for range 3 {
		_, err := s.Record(ctx, addQuestion(1, 1), 2, time.Second, testNow)
		require.NoError(t, err)
	}

	require.NoError(t, s.Clear(ctx))
	last, err := s.LastID(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)

	a, err := s.Record(ctx, addQuestion(1, 1), 2, time.Second, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
}

func TestStore_ExportEmpty(t *testing.T) {
	c, err := NewStore(&memRepo{}, nil, nil).Export(context.Background())
	require.NoError(t, err)
	assert.Zero(t, c.LastID)
	assert.NotNil(t, c.Attempts)
	assert.Empty(t, c.Attempts)
}

func TestStore_ImportMergeRenumbers(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&memRepo{}, nil, nil)
	_, err := s.Record(ctx, addQuestion(1, 1), 2, time.Second, testNow)
	require.NoError(t, err)

	incoming := Collection{LastID: 9, Attempts: []Attempt{
		{ID: 1, Operation: problemgen.OpSubtraction, Digits: 2, Question: "50 - 8"},
		{ID: 9, Operation: problemgen.OpDivision, Digits: 1, Question: "8 ÷ 2"},
	}}
	n, err := s.Import(ctx, incoming, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "50 - 8", all[1].Question)
	assert.Equal(t, "8 ÷ 2", all[2].Question)
}

func TestStore_ImportMergeIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := &fakeMirror{}
	s := NewStore(&memRepo{}, m, nil)
	_, err := s.Record(ctx, addQuestion(1, 1), 2, time.Second, testNow)
	require.NoError(t, err)
	saves := len(m.saved)

	incoming := Collection{LastID: 3, Attempts: []Attempt{
		{ID: 1, Operation: problemgen.OpAddition, Digits: 1, Question: "1 + 1"},
		{ID: 2, Operation: problemgen.OpSubtraction, Digits: 1, Question: "5 - 1"},
		{ID: 3, Operation: problemgen.Operation("mixed"), Digits: 1, Question: "?"},
	}}
	n, err := s.Import(ctx, incoming, false)
	require.Error(t, err)
	assert.Zero(t, n)

	c, err := s.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.LastID, "no ids are reserved for a rejected import")
	assert.Len(t, c.Attempts, 1)
	assert.Len(t, m.saved, saves, "nothing mirrored for a rejected import")
}

func TestStore_ImportMergeMirrorsOnce(t *testing.T) {
	ctx := context.Background()
	m := &fakeMirror{}
	s := NewStore(&memRepo{}, m, nil)

	incoming := Collection{LastID: 3, Attempts: []Attempt{
		{ID: 1, Operation: problemgen.OpAddition, Digits: 1},
		{ID: 2, Operation: problemgen.OpComplex, Digits: 2},
		{ID: 3, Operation: problemgen.OpDivision, Digits: 1},
	}}
	n, err := s.Import(ctx, incoming, false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, m.saved, 1)
	assert.Equal(t, int64(3), m.saved[0].LastID)
}

func TestStore_ImportReplace(t *testing.T) {
	ctx := context.Background()
	m := &fakeMirror{}
	s := NewStore(&memRepo{}, m, nil)
	_, err := s.Record(ctx, addQuestion(1, 1), 2, time.Second, testNow)
	require.NoError(t, err)

	incoming := Collection{LastID: 40, Attempts: []Attempt{
		{ID: 39, Operation: problemgen.OpMultiplication, Digits: 1, Question: "3 × 3"},
	}}
	_, err = s.Import(ctx, incoming, true)
	require.NoError(t, err)

	c, err := s.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40), c.LastID)
	require.Len(t, c.Attempts, 1)
	assert.Equal(t, int64(39), c.Attempts[0].ID)
	assert.Equal(t, int64(40), m.saved[len(m.saved)-1].LastID)
}

func TestStore_ImportReplaceRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&memRepo{}, nil, nil)
	bad := Collection{LastID: 1, Attempts: []Attempt{
		{ID: 2, Operation: problemgen.OpAddition, Digits: 1},
	}}
	_, err := s.Import(ctx, bad, true)
	require.Error(t, err)
}

func TestStore_RecentAndByOperation(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&memRepo{}, nil, nil)
	ops := []problemgen.Operation{problemgen.OpAddition, problemgen.OpDivision, problemgen.OpAddition}
	for _, op := range ops {
		q := problemgen.Question{Operation: op, Digits: 1, Text: "q", Answer: 1}
		_, err := s.Record(ctx, q, 1, time.Second, testNow)
		require.NoError(t, err)
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(3), recent[0].ID)
	assert.Equal(t, int64(2), recent[1].ID)

	adds, err := s.ByOperation(ctx, problemgen.OpAddition)
	require.NoError(t, err)
	assert.Len(t, adds, 2)
}

type fakeSource struct {
	c   Collection
	err error
}

func (f fakeSource) LoadAttempts(context.Context) (Collection, error) { return f.c, f.err }

// slowSource records a local attempt while the host request is in flight.
type slowSource struct {
	c      Collection
	during func()
}

func (f slowSource) LoadAttempts(context.Context) (Collection, error) {
	f.during()
	return f.c, nil
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()
	host := Collection{LastID: 12, Attempts: []Attempt{
		New(11, addQuestion(1, 1), 2, time.Second, testNow),
		New(12, addQuestion(2, 2), 4, time.Second, testNow),
	}}

	t.Run("empty local history", func(t *testing.T) {
		m := &fakeMirror{}
		s := NewStore(&memRepo{}, m, nil)
		n, err := s.Restore(ctx, fakeSource{c: host})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		last, err := s.LastID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(12), last)
		assert.Empty(t, m.saved, "restored data is not echoed back")
	})

	t.Run("local history wins", func(t *testing.T) {
		s := NewStore(&memRepo{}, nil, nil)
		_, err := s.Record(ctx, addQuestion(1, 1), 2, time.Second, testNow)
		require.NoError(t, err)
		n, err := s.Restore(ctx, fakeSource{c: host})
		require.NoError(t, err)
		assert.Zero(t, n)
		all, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("answer recorded during host load", func(t *testing.T) {
		s := NewStore(&memRepo{}, nil, nil)
		src := slowSource{c: host, during: func() {
			_, err := s.Record(ctx, addQuestion(3, 3), 6, time.Second, testNow)
			require.NoError(t, err)
		}}
		n, err := s.Restore(ctx, src)
		require.NoError(t, err)
		assert.Zero(t, n)

		all, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, int64(1), all[0].ID)
		assert.InDelta(t, 6.0, all[0].CorrectAnswer, 1e-9)
	})

	t.Run("host error", func(t *testing.T) {
		s := NewStore(&memRepo{}, nil, nil)
		_, err := s.Restore(ctx, fakeSource{err: errors.New("offline")})
		assert.Error(t, err)
	})
}
