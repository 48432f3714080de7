package stats

import (
	"errors"
	"math"

	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// HostOperation is one entry of a host statistics byOperation map.
type HostOperation struct {
	Count    int     `json:"count"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
	AvgTime  float64 `json:"avgTime"`
}

// HostStatistics is the payload of a statistics_response from the host.
// Accuracy is a percentage that may carry decimals.
type HostStatistics struct {
	TotalAttempts int                      `json:"totalAttempts"`
	CorrectCount  int                      `json:"correctCount"`
	Accuracy      float64                  `json:"accuracy"`
	AvgTime       float64                  `json:"avgTime"`
	ByOperation   map[string]HostOperation `json:"byOperation"`
	Error         string                   `json:"error,omitempty"`
}

// Err returns the error the host embedded in the payload, if any.
func (h HostStatistics) Err() error {
	if h.Error == "" {
		return nil
	}
	return errors.New(h.Error)
}

func hostTotals(count, correct int, accuracy, avg float64) Totals {
	return Totals{
		Count:     count,
		Correct:   correct,
		Accuracy:  int(math.Round(accuracy)),
		AvgTime:   avg,
		TotalTime: avg * float64(count),
	}
}

// Overall converts the host totals into the local shape.
func (h HostStatistics) Overall() Totals {
	return hostTotals(h.TotalAttempts, h.CorrectCount, h.Accuracy, h.AvgTime)
}

// Operations converts the host per-operation map into the local shape.
func (h HostStatistics) Operations() map[problemgen.Operation]Totals {
	out := make(map[problemgen.Operation]Totals, len(h.ByOperation))
	for op, o := range h.ByOperation {
		out[problemgen.Operation(op)] = hostTotals(o.Count, o.Correct, o.Accuracy, o.AvgTime)
	}
	return out
}

// WithHost replaces the overall and per-operation totals of s with the
// host's figures and recomputes insights. Streaks and the heatmap stay
// local since the host does not report them.
func (s Summary) WithHost(h HostStatistics) Summary {
	s.Overall = h.Overall()
	s.ByOperation = h.Operations()
	s.Insights = computeInsights(s.ByOperation)
	return s
}
