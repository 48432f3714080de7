// Package schema declares the persisted entities. The store builds its
// SQLite tables from these declarations with ent's generator graph. Each
// entity's id field is its primary key; StorageKey names natural keys.
package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	entschema "entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Attempt is one answered question.
type Attempt struct {
	ent.Schema
}

func (Attempt) Annotations() []entschema.Annotation {
	return []entschema.Annotation{entsql.Annotation{Table: "attempts"}}
}

func (Attempt) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			Positive().
			Immutable().
			Comment("Monotonic attempt id, never reused"),
		field.String("operation").
			MaxLen(32).
			NotEmpty(),
		field.Int("digits").
			Positive(),
		field.String("question").
			Comment("Expression as shown to the learner"),
		field.Float("user_answer"),
		field.Float("correct_answer"),
		field.Bool("is_correct"),
		field.Float("time_taken").
			Min(0).
			Comment("Seconds"),
		field.Time("created_at").
			Immutable(),
	}
}

func (Attempt) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("operation"),
		index.Fields("created_at"),
	}
}
