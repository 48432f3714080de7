package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	entschema "entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// Setting is one preference stored as a string.
type Setting struct {
	ent.Schema
}

func (Setting) Annotations() []entschema.Annotation {
	return []entschema.Annotation{entsql.Annotation{Table: "settings"}}
}

func (Setting) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("key").
			MaxLen(64).
			NotEmpty(),
		field.String("value"),
		field.Time("updated_at"),
	}
}
