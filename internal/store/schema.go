package store

import (
	"fmt"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/entc/gen"
	"entgo.io/ent/entc/load"

	entities "github.com/Agampodige/MathDrill/ent/schema"
)

// Table and column names. They match the entity declarations in ent/schema.
const (
	attemptsTable    = "attempts"
	sequenceTable    = "attempt_sequence"
	settingsTable    = "settings"
	completionsTable = "level_completions"

	colID             = "id"
	colOperation      = "operation"
	colDigits         = "digits"
	colQuestion       = "question"
	colUserAnswer     = "user_answer"
	colCorrectAnswer  = "correct_answer"
	colIsCorrect      = "is_correct"
	colTimeTaken      = "time_taken"
	colCreatedAt      = "created_at"
	colLastID         = "last_id"
	colKey            = "key"
	colValue          = "value"
	colUpdatedAt      = "updated_at"
	colLevelID        = "level_id"
	colStarsEarned    = "stars_earned"
	colCorrectAnswers = "correct_answers"
	colTotalQuestions = "total_questions"
	colBestAccuracy   = "best_accuracy"
	colBestTime       = "best_time"
	colCompletedAt    = "completed_at"
	colIsNewRecord    = "is_new_record"
)

var attemptColumns = []string{
	colID, colOperation, colDigits, colQuestion, colUserAnswer,
	colCorrectAnswer, colIsCorrect, colTimeTaken, colCreatedAt,
}

var completionColumns = []string{
	colLevelID, colStarsEarned, colCorrectAnswers, colTotalQuestions,
	colBestAccuracy, colBestTime, colCompletedAt, colIsNewRecord,
}

// entitySchemas lists every persisted entity in migration order.
var entitySchemas = []ent.Interface{
	entities.Attempt{},
	entities.AttemptSequence{},
	entities.Setting{},
	entities.LevelCompletion{},
}

// tables returns fresh migration definitions, built by the same graph
// entc uses for the generated migrate package. The migrator links
// columns to indexes in place, so every Open gets its own copy.
func tables() ([]*schema.Table, error) {
	specs := make([]*load.Schema, 0, len(entitySchemas))
	for _, e := range entitySchemas {
		b, err := load.MarshalSchema(e)
		if err != nil {
			return nil, fmt.Errorf("marshal %T: %w", e, err)
		}
		spec, err := load.UnmarshalSchema(b)
		if err != nil {
			return nil, fmt.Errorf("load %T: %w", e, err)
		}
		specs = append(specs, spec)
	}
	g, err := gen.NewGraph(&gen.Config{}, specs...)
	if err != nil {
		return nil, fmt.Errorf("build schema graph: %w", err)
	}
	return g.Tables()
}
