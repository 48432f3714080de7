package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	entschema "entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// LevelCompletion is the best run recorded for a level.
type LevelCompletion struct {
	ent.Schema
}

func (LevelCompletion) Annotations() []entschema.Annotation {
	return []entschema.Annotation{entsql.Annotation{Table: "level_completions"}}
}

func (LevelCompletion) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			StorageKey("level_id").
			Positive(),
		field.Int("stars_earned").
			Range(0, 3),
		field.Int("correct_answers"),
		field.Int("total_questions"),
		field.Float("best_accuracy"),
		field.Float("best_time").
			Comment("Seconds"),
		field.Time("completed_at"),
		field.Bool("is_new_record").
			Default(false),
	}
}
