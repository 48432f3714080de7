package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	entschema "entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// AttemptSequence is a single-row counter holding the last issued attempt id.
// It survives clearing the history.
type AttemptSequence struct {
	ent.Schema
}

func (AttemptSequence) Annotations() []entschema.Annotation {
	return []entschema.Annotation{entsql.Annotation{Table: "attempt_sequence"}}
}

func (AttemptSequence) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.Int64("last_id").
			Default(0),
	}
}
