package attempt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agampodige/MathDrill/internal/problemgen"
)

func TestNew(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	q := problemgen.Question{Operation: problemgen.OpDivision, Digits: 2, Text: "84 ÷ 7", Answer: 12}

	t.Run("correct within tolerance", func(t *testing.T) {
		a := New(5, q, 12.005, 3*time.Second, now)
		assert.Equal(t, int64(5), a.ID)
		assert.Equal(t, problemgen.OpDivision, a.Operation)
		assert.Equal(t, "84 ÷ 7", a.Question)
		assert.Equal(t, 12.0, a.CorrectAnswer)
		assert.True(t, a.IsCorrect)
		assert.Equal(t, 3.0, a.TimeTaken)
		assert.True(t, a.Timestamp.Equal(now))
	})

	t.Run("incorrect", func(t *testing.T) {
		a := New(6, q, 13, time.Second, now)
		assert.False(t, a.IsCorrect)
	})

	t.Run("negative duration clamps to zero", func(t *testing.T) {
		a := New(7, q, 12, -time.Second, now)
		assert.Zero(t, a.TimeTaken)
	})
}

func TestAttemptJSON_ProblemAlias(t *testing.T) {
	raw := `{"id":3,"operation":"addition","digits":1,"problem":"2 + 2","userAnswer":4,
		"correctAnswer":4,"isCorrect":true,"timeTaken":1.5,"timestamp":"2025-01-02T03:04:05Z"}`

	var a Attempt
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "2 + 2", a.Question)
	assert.Equal(t, int64(3), a.ID)
	assert.Equal(t, 1.5, a.TimeTaken)
	assert.True(t, a.Timestamp.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestAttemptJSON_QuestionWinsOverAlias(t *testing.T) {
	raw := `{"id":1,"operation":"addition","digits":1,"question":"1 + 1","problem":"9 + 9","timestamp":0}`
	var a Attempt
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "1 + 1", a.Question)
}

func TestAttemptJSON_WritesQuestionAndRFC3339(t *testing.T) {
	a := Attempt{
		ID: 1, Operation: problemgen.OpAddition, Digits: 1, Question: "1 + 2",
		UserAnswer: 3, CorrectAnswer: 3, IsCorrect: true, TimeTaken: 2,
		Timestamp: Timestamp{time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	data, err := json.Marshal(a)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "1 + 2", m["question"])
	assert.NotContains(t, m, "problem")
	assert.Equal(t, "2025-06-01T12:00:00Z", m["timestamp"])
}

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2025-01-02T03:04:05Z"`, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"fractional iso", `"2025-01-02T03:04:05.250+00:00"`, time.Date(2025, 1, 2, 3, 4, 5, 250_000_000, time.UTC)},
		{"local iso", `"2025-01-02T03:04:05"`, time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)},
		{"epoch seconds", `1735787045`, time.Unix(1735787045, 0)},
		{"fractional epoch", `1735787045.5`, time.Unix(1735787045, 500_000_000)},
		{"epoch millis", `1735787045000`, time.Unix(1735787045, 0)},
		{"null", `null`, time.Time{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &ts))
			assert.True(t, ts.Equal(tc.want), "got %v want %v", ts.Time, tc.want)
		})
	}
}

func TestTimestampUnmarshal_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`true`), &ts))
}

func TestAttemptValidate(t *testing.T) {
	good := Attempt{ID: 1, Operation: problemgen.OpAddition, Digits: 1}
	assert.NoError(t, good.Validate())

	bad := Attempt{ID: 0, Operation: "pow", Digits: 0, TimeTaken: -1}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
	assert.Contains(t, err.Error(), "unknown operation")
	assert.Contains(t, err.Error(), "negative timeTaken")
}

func TestCollectionValidate(t *testing.T) {
	mk := func(id int64) Attempt {
		return Attempt{ID: id, Operation: problemgen.OpAddition, Digits: 1}
	}

	tests := []struct {
		name    string
		c       Collection
		wantErr bool
	}{
		{"empty", Collection{}, false},
		{"ordered", Collection{LastID: 3, Attempts: []Attempt{mk(1), mk(3)}}, false},
		{"lastId ahead of attempts", Collection{LastID: 10, Attempts: []Attempt{mk(1)}}, false},
		{"duplicate ids", Collection{LastID: 2, Attempts: []Attempt{mk(2), mk(2)}}, true},
		{"decreasing ids", Collection{LastID: 2, Attempts: []Attempt{mk(2), mk(1)}}, true},
		{"lastId behind", Collection{LastID: 1, Attempts: []Attempt{mk(1), mk(2)}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
