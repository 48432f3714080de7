package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Agampodige/MathDrill/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics",
	Long: `Print accuracy, timing and streaks over all recorded answers. When a host
is configured and reachable its totals replace the local ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()
		env.preferHost(cmd.Context())

		ctx := cmd.Context()
		all, err := env.svc.Attempts.LoadAll(ctx)
		if err != nil {
			return err
		}
		now := env.svc.Clock()
		sum := stats.Aggregate(all, now)

		fromHost := false
		if env.svc.HostReady() {
			h, err := env.svc.HostStats(ctx)
			if err == nil {
				err = h.Err()
			}
			if err != nil {
				env.logger.Warn("host statistics, using local", "err", err)
			} else {
				sum = sum.WithHost(h)
				fromHost = true
			}
		}

		if asJSON {
			return writeStatsJSON(cmd.OutOrStdout(), sum, fromHost)
		}
		writeStats(cmd.OutOrStdout(), sum, fromHost, now)
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the summary as JSON")
}

type opStatsJSON struct {
	Count    int     `json:"count"`
	Correct  int     `json:"correct"`
	Accuracy int     `json:"accuracy"`
	AvgTime  float64 `json:"avgTime"`
}

type statsJSON struct {
	Source        string                 `json:"source"`
	TotalAttempts int                    `json:"totalAttempts"`
	CorrectCount  int                    `json:"correctCount"`
	Accuracy      int                    `json:"accuracy"`
	AvgTime       float64                `json:"avgTime"`
	ByOperation   map[string]opStatsJSON `json:"byOperation"`
	CurrentStreak int                    `json:"currentStreak"`
	BestStreak    int                    `json:"bestStreak"`
	ActiveDays    int                    `json:"activeDays"`
	TopOperation  string                 `json:"topOperation,omitempty"`
	FocusArea     string                 `json:"focusArea,omitempty"`
	LastPracticed *time.Time             `json:"lastPracticed,omitempty"`
}

func writeStatsJSON(w io.Writer, sum stats.Summary, fromHost bool) error {
	out := statsJSON{
		Source:        "local",
		TotalAttempts: sum.Overall.Count,
		CorrectCount:  sum.Overall.Correct,
		Accuracy:      sum.Overall.Accuracy,
		AvgTime:       sum.Overall.AvgTime,
		ByOperation:   make(map[string]opStatsJSON, len(sum.ByOperation)),
		CurrentStreak: sum.Streak.Current,
		BestStreak:    sum.Streak.Best,
		ActiveDays:    sum.Streak.ActiveDays,
		TopOperation:  string(sum.Insights.Top),
		FocusArea:     string(sum.Insights.Focus),
	}
	if fromHost {
		out.Source = "host"
	}
	for op, t := range sum.ByOperation {
		out.ByOperation[string(op)] = opStatsJSON{Count: t.Count, Correct: t.Correct, Accuracy: t.Accuracy, AvgTime: t.AvgTime}
	}
	if !sum.LastPracticed.IsZero() {
		out.LastPracticed = &sum.LastPracticed
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeStats(w io.Writer, sum stats.Summary, fromHost bool, now time.Time) {
	if sum.Overall.Count == 0 {
		fmt.Fprintln(w, "No answers recorded yet. Run `mathdrill play` to start.")
		return
	}

	source := "local history"
	if fromHost {
		source = "host"
	}
	fmt.Fprintf(w, "Statistics (%s)\n\n", source)
	fmt.Fprintf(w, "  Answers        %s\n", humanize.Comma(int64(sum.Overall.Count)))
	fmt.Fprintf(w, "  Correct        %s (%d%%)\n", humanize.Comma(int64(sum.Overall.Correct)), sum.Overall.Accuracy)
	fmt.Fprintf(w, "  Average time   %.1fs\n", sum.Overall.AvgTime)
	fmt.Fprintf(w, "  Streak         %d days (best %d)\n", sum.Streak.Current, sum.Streak.Best)
	fmt.Fprintf(w, "  Active days    %d\n", sum.Streak.ActiveDays)
	if !sum.LastPracticed.IsZero() {
		fmt.Fprintf(w, "  Last practiced %s\n", humanize.RelTime(sum.LastPracticed, now, "ago", "from now"))
	}

	fmt.Fprintf(w, "\n  %-15s  %7s  %8s  %8s\n", "Operation", "Answers", "Accuracy", "Avg time")
	for _, op := range stats.Operations(sum.ByOperation) {
		t := sum.ByOperation[op]
		fmt.Fprintf(w, "  %-15s  %7d  %7d%%  %7.1fs\n", op.DisplayName(), t.Count, t.Accuracy, t.AvgTime)
	}

	if sum.Insights.HasTop() || sum.Insights.HasFocus() {
		fmt.Fprintln(w)
	}
	if sum.Insights.HasTop() {
		fmt.Fprintf(w, "  Strongest      %s\n", sum.Insights.Top.DisplayName())
	}
	if sum.Insights.HasFocus() {
		fmt.Fprintf(w, "  Needs practice %s\n", sum.Insights.Focus.DisplayName())
	}
}
