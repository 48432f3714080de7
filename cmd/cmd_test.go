package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/stats"
)

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
		"yes":   true,
	}
	for in, want := range cases {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(in), &out, "? ")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
		assert.Equal(t, "? ", out.String())
	}
}

func sampleSummary(now time.Time) stats.Summary {
	add := problemgen.Question{Operation: problemgen.OpAddition, Digits: 1, Text: "2 + 3", Answer: 5}
	var all []attempt.Attempt
	for i, ans := range []float64{5, 5, 5, 4} {
		all = append(all, attempt.New(int64(i+1), add, ans, 2*time.Second, now.Add(-time.Hour)))
	}
	return stats.Aggregate(all, now)
}

func TestWriteStats(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 0, 0, 0, time.Local)

	var buf bytes.Buffer
	writeStats(&buf, sampleSummary(now), false, now)
	out := buf.String()
	for _, want := range []string{"local history", "Answers        4", "3 (75%)", "2.0s", "1 hour ago", "Addition"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	writeStats(&buf, stats.Aggregate(nil, now), false, now)
	assert.Contains(t, buf.String(), "No answers recorded yet")
}

func TestWriteStatsJSON(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 0, 0, 0, time.Local)

	var buf bytes.Buffer
	require.NoError(t, writeStatsJSON(&buf, sampleSummary(now), true))

	var got statsJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "host", got.Source)
	assert.Equal(t, 4, got.TotalAttempts)
	assert.Equal(t, 75, got.Accuracy)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 4, got.ByOperation["addition"].Count)
	require.NotNil(t, got.LastPracticed)
}
