package stats

import "github.com/Agampodige/MathDrill/internal/problemgen"

// Minimum sample sizes for an operation to qualify as an insight.
const (
	TopMinAttempts   = 5
	FocusMinAttempts = 3
)

// Undetermined marks an insight with no qualifying operation.
const Undetermined problemgen.Operation = ""

// Insights names the strongest and weakest operations.
type Insights struct {
	Top   problemgen.Operation
	Focus problemgen.Operation
}

// HasTop reports whether a top operation was determined.
func (i Insights) HasTop() bool { return i.Top != Undetermined }

// HasFocus reports whether a focus area was determined.
func (i Insights) HasFocus() bool { return i.Focus != Undetermined }

func computeInsights(byOp map[problemgen.Operation]Totals) Insights {
	ins := Insights{Top: Undetermined, Focus: Undetermined}
	var topRatio, focusRatio float64
	// Strict comparisons keep the earlier operation on ties.
	for _, op := range Operations(byOp) {
		t := byOp[op]
		r := t.ratio()
		if t.Count >= TopMinAttempts && (ins.Top == Undetermined || r > topRatio) {
			ins.Top, topRatio = op, r
		}
		if t.Count >= FocusMinAttempts && (ins.Focus == Undetermined || r < focusRatio) {
			ins.Focus, focusRatio = op, r
		}
	}
	return ins
}
