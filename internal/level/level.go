// Package level defines the leveled-practice catalog, the unlock rules
// between levels, and star rating for a completed run.
package level

import (
	"encoding/json"
	"errors"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// ErrNotFound is returned when a level id is not in the catalog.
var ErrNotFound = errors.New("level not found")

// MaxStars is the best rating a level run can earn.
const MaxStars = 3

// Requirements are the pass conditions of a level.
type Requirements struct {
	TotalQuestions int `json:"totalQuestions"`
	MinCorrect     int `json:"minCorrect"`

	// TimeLimit is the wall-clock budget in seconds. Zero means untimed.
	TimeLimit int `json:"timeLimit,omitempty"`
}

// Rewards are granted by completing a level.
type Rewards struct {
	UnlocksLevel int `json:"unlocksLevel,omitempty"`
}

// Level is a catalog definition plus the learner's state for it.
type Level struct {
	ID              int                  `json:"id"`
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	DescriptionLong string               `json:"description_long,omitempty"`
	Operation       problemgen.Operation `json:"operation"`
	Digits          int                  `json:"digits"`
	Requirements    Requirements         `json:"requirements"`
	Rewards         Rewards              `json:"rewards"`
	UnlockCondition string               `json:"unlockCondition"`

	IsLocked     bool    `json:"isLocked"`
	IsCompleted  bool    `json:"isCompleted"`
	StarsEarned  int     `json:"starsEarned"`
	BestTime     float64 `json:"bestTime"`
	BestAccuracy float64 `json:"bestAccuracy"`
}

// UnlockNone is the condition of a level that is always open.
const UnlockNone = "none"

// UnmarshalJSON decodes a level, defaulting a missing unlockCondition to
// UnlockNone. A present but empty value is kept as is and stays locked.
func (l *Level) UnmarshalJSON(data []byte) error {
	type plain Level
	aux := struct {
		*plain
		UnlockCondition *string `json:"unlockCondition"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.UnlockCondition = UnlockNone
	if aux.UnlockCondition != nil {
		l.UnlockCondition = *aux.UnlockCondition
	}
	return nil
}

// Timed reports whether the level runs a wall-clock countdown.
func (l Level) Timed() bool {
	return l.Requirements.TimeLimit > 0
}

// Completion is the stored record of a level's best run.
type Completion struct {
	LevelID        int               `json:"levelId"`
	StarsEarned    int               `json:"starsEarned"`
	CorrectAnswers int               `json:"correctAnswers"`
	TotalQuestions int               `json:"totalQuestions"`
	BestAccuracy   float64           `json:"bestAccuracy"`
	BestTime       float64           `json:"bestTime"`
	CompletedAt    attempt.Timestamp `json:"completionDate"`
	IsNewRecord    bool              `json:"isNewRecord"`
}

// Completions indexes completion records by level id.
type Completions map[int]Completion

// Stars returns the stars held for id, 0 when never completed.
func (c Completions) Stars(id int) int {
	return c[id].StarsEarned
}

// TotalStars sums the stars over every completion.
func (c Completions) TotalStars() int {
	total := 0
	for _, comp := range c {
		total += comp.StarsEarned
	}
	return total
}

// Result is the outcome of submitting a finished level run.
type Result struct {
	Success        bool    `json:"success"`
	Error          string  `json:"error,omitempty"`
	StarsEarned    int     `json:"starsEarned"`
	Accuracy       float64 `json:"accuracy"`
	TimeTaken      float64 `json:"timeTaken"`
	IsNewRecord    bool    `json:"isNewRecord"`
	LevelName      string  `json:"levelName,omitempty"`
	NextLevelID    int     `json:"nextLevelId,omitempty"`
	CorrectAnswers int     `json:"correctAnswers"`
	Required       int     `json:"required,omitempty"`
}

// Run is a finished level run as submitted for rating.
type Run struct {
	LevelID        int     `json:"levelId"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	TimeTaken      float64 `json:"timeTaken"`
}

// Progression summarizes how far through the catalog the learner is.
type Progression struct {
	TotalLevels        int     `json:"totalLevels"`
	CompletedLevels    int     `json:"completedLevels"`
	TotalStars         int     `json:"totalStars"`
	MaxPossibleStars   int     `json:"maxPossibleStars"`
	ProgressPercentage float64 `json:"progressPercentage"`
}
