// Package settings holds the user preferences, their defaults and
// normalization rules, and a service that loads and saves them.
package settings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Difficulty values.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Bounds for problemsPerSession.
const (
	MinProblems = 5
	MaxProblems = 50
)

// Settings is the full preference set. JSON names match the host's keys.
type Settings struct {
	Theme                string `json:"theme"`
	SoundEnabled         bool   `json:"soundEnabled"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	ProblemsPerSession   int    `json:"problemsPerSession"`
	DifficultyLevel      string `json:"difficultyLevel"`
	ShowTimer            bool   `json:"showTimer"`
	ShowAccuracy         bool   `json:"showAccuracy"`
	AutoCheckAnswers     bool   `json:"autoCheckAnswers"`
	AdaptiveDifficulty   bool   `json:"adaptiveDifficulty"`
}

// Defaults returns the stock settings.
func Defaults() Settings {
	return Settings{
		Theme:                ThemeAuto,
		SoundEnabled:         true,
		NotificationsEnabled: true,
		ProblemsPerSession:   10,
		DifficultyLevel:      DifficultyMedium,
		ShowTimer:            true,
		ShowAccuracy:         true,
		AutoCheckAnswers:     false,
		AdaptiveDifficulty:   false,
	}
}

// Normalize clamps problemsPerSession and replaces unknown enum values
// with their defaults.
func (s Settings) Normalize() Settings {
	d := Defaults()
	if !slices.Contains([]string{ThemeAuto, ThemeLight, ThemeDark}, s.Theme) {
		s.Theme = d.Theme
	}
	if !slices.Contains([]string{DifficultyEasy, DifficultyMedium, DifficultyHard}, s.DifficultyLevel) {
		s.DifficultyLevel = d.DifficultyLevel
	}
	s.ProblemsPerSession = min(max(s.ProblemsPerSession, MinProblems), MaxProblems)
	return s
}

// Digits returns the free drill digit count for the difficulty level.
func (s Settings) Digits() int {
	switch s.DifficultyLevel {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

// ProblemChoices returns the offered session lengths: MinProblems, then
// steps of five up to MaxProblems, plus current when it is in range.
func ProblemChoices(current int) []int {
	out := []int{MinProblems}
	for n := 10; n <= MaxProblems; n += 5 {
		out = append(out, n)
	}
	if current >= MinProblems && current <= MaxProblems && !slices.Contains(out, current) {
		out = append(out, current)
		slices.Sort(out)
	}
	return out
}

// Keys lists every setting key in display order.
var Keys = []string{
	"theme",
	"soundEnabled",
	"notificationsEnabled",
	"problemsPerSession",
	"difficultyLevel",
	"showTimer",
	"showAccuracy",
	"autoCheckAnswers",
	"adaptiveDifficulty",
}

// Get returns the string form of one setting.
func (s Settings) Get(key string) (string, error) {
	switch key {
	case "theme":
		return s.Theme, nil
	case "soundEnabled":
		return strconv.FormatBool(s.SoundEnabled), nil
	case "notificationsEnabled":
		return strconv.FormatBool(s.NotificationsEnabled), nil
	case "problemsPerSession":
		return strconv.Itoa(s.ProblemsPerSession), nil
	case "difficultyLevel":
		return s.DifficultyLevel, nil
	case "showTimer":
		return strconv.FormatBool(s.ShowTimer), nil
	case "showAccuracy":
		return strconv.FormatBool(s.ShowAccuracy), nil
	case "autoCheckAnswers":
		return strconv.FormatBool(s.AutoCheckAnswers), nil
	case "adaptiveDifficulty":
		return strconv.FormatBool(s.AdaptiveDifficulty), nil
	default:
		return "", fmt.Errorf("unknown setting %q", key)
	}
}

// Set parses value into the named setting. The result is not normalized.
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	boolField := func(dst *bool) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setting %s: %q is not a boolean", key, value)
		}
		*dst = b
		return nil
	}
	switch key {
	case "theme":
		s.Theme = strings.ToLower(value)
	case "soundEnabled":
		return boolField(&s.SoundEnabled)
	case "notificationsEnabled":
		return boolField(&s.NotificationsEnabled)
	case "problemsPerSession":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("setting %s: %q is not an integer", key, value)
		}
		s.ProblemsPerSession = n
	case "difficultyLevel":
		s.DifficultyLevel = strings.ToLower(value)
	case "showTimer":
		return boolField(&s.ShowTimer)
	case "showAccuracy":
		return boolField(&s.ShowAccuracy)
	case "autoCheckAnswers":
		return boolField(&s.AutoCheckAnswers)
	case "adaptiveDifficulty":
		return boolField(&s.AdaptiveDifficulty)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// Values flattens s into a string map for key/value storage.
func (s Settings) Values() map[string]string {
	out := make(map[string]string, len(Keys))
	for _, k := range Keys {
		v, _ := s.Get(k)
		out[k] = v
	}
	return out
}

// FromValues overlays stored values onto the defaults. Unknown keys and
// unparseable values are skipped.
func FromValues(values map[string]string) Settings {
	s := Defaults()
	for _, k := range Keys {
		if v, ok := values[k]; ok {
			_ = s.Set(k, v)
		}
	}
	return s.Normalize()
}
