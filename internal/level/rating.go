package level

import "time"

// Thresholds are the accuracy percentages that earn two and three stars.
type Thresholds struct {
	ThreeStars float64
	TwoStars   float64
}

// DefaultThresholds returns the stock rating: 98% for three stars, 93% for two.
func DefaultThresholds() Thresholds {
	return Thresholds{ThreeStars: 98, TwoStars: 93}
}

// Stars rates a passing run. Exceeding a nonzero time limit costs one star,
// never dropping below one.
func (t Thresholds) Stars(accuracy, timeTaken float64, timeLimit int) int {
	stars := 1
	switch {
	case accuracy >= t.ThreeStars:
		stars = 3
	case accuracy >= t.TwoStars:
		stars = 2
	}
	if timeLimit > 0 && timeTaken > float64(timeLimit) {
		stars = max(1, stars-1)
	}
	return stars
}

// Rate scores run against lvl. prev is the stored completion, nil when the
// level was never completed. The returned completion is the record to
// store, or nil when the run did not pass. A stored record never loses
// stars: a weaker replay keeps the earlier star count and best figures.
func Rate(lvl Level, run Run, prev *Completion, t Thresholds, now time.Time) (Result, *Completion) {
	req := lvl.Requirements
	if run.CorrectAnswers < req.MinCorrect {
		return Result{
			Success:        false,
			Error:          "Not enough correct answers",
			CorrectAnswers: run.CorrectAnswers,
			Required:       req.MinCorrect,
			TimeTaken:      run.TimeTaken,
			LevelName:      lvl.Name,
		}, nil
	}

	var accuracy float64
	if run.TotalQuestions > 0 {
		accuracy = float64(run.CorrectAnswers) / float64(run.TotalQuestions) * 100
	}
	stars := t.Stars(accuracy, run.TimeTaken, req.TimeLimit)
	newRecord := prev == nil || stars > prev.StarsEarned

	comp := &Completion{
		LevelID:        lvl.ID,
		StarsEarned:    stars,
		CorrectAnswers: run.CorrectAnswers,
		TotalQuestions: run.TotalQuestions,
		BestAccuracy:   accuracy,
		BestTime:       run.TimeTaken,
		IsNewRecord:    newRecord,
	}
	comp.CompletedAt.Time = now
	if prev != nil {
		comp.StarsEarned = max(prev.StarsEarned, stars)
		comp.BestAccuracy = max(prev.BestAccuracy, accuracy)
		if prev.BestTime > 0 {
			comp.BestTime = min(prev.BestTime, run.TimeTaken)
		}
	}

	return Result{
		Success:        true,
		StarsEarned:    stars,
		Accuracy:       accuracy,
		TimeTaken:      run.TimeTaken,
		IsNewRecord:    newRecord,
		LevelName:      lvl.Name,
		NextLevelID:    lvl.Rewards.UnlocksLevel,
		CorrectAnswers: run.CorrectAnswers,
	}, comp
}
