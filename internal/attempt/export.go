package attempt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Agampodige/MathDrill/internal/validate"
)

//go:embed collection.schema.json
var collectionSchemaJSON []byte

var collectionSchema = &validate.Schema{Name: "attempt-collection", Definition: collectionSchemaJSON}

// ParseCollection checks raw against the export file schema and decodes
// it. A missing lastId is taken from the highest attempt id.
func ParseCollection(raw []byte) (Collection, error) {
	if _, err := validate.JSON(collectionSchema, raw); err != nil {
		return Collection{}, err
	}
	var c Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return Collection{}, fmt.Errorf("decode attempts: %w", err)
	}
	for _, a := range c.Attempts {
		c.LastID = max(c.LastID, a.ID)
	}
	return c, nil
}

// WriteCollection writes c as indented JSON.
func WriteCollection(w io.Writer, c Collection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
