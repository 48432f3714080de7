// Package bridge connects MathDrill to a host application over a local
// websocket carrying JSON request/response envelopes.
package bridge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Agampodige/MathDrill/internal/validate"
)

// Outbound request types.
const (
	TypeHello            = "hello"
	TypeGetStatistics    = "get_statistics"
	TypeClearAttempts    = "clear_attempts"
	TypeGetLevel         = "get_level"
	TypeCompleteLevel    = "complete_level"
	TypeLoadLevels       = "load_levels"
	TypeGetLevelProgress = "get_level_progress"
	TypeSaveAttempts     = "save_attempts"
	TypeLoadAttempts     = "load_attempts"
	TypeSaveSettings     = "save_settings"
	TypeLoadSettings     = "load_settings"
	TypeExportData       = "export_data"
	TypeImportData       = "import_data"
)

// Inbound types that do not follow the <request>_response pattern.
const (
	TypeStatisticsResponse = "statistics_response"
	TypeError              = "error"
)

// ResponseType returns the envelope type the host answers reqType with.
func ResponseType(reqType string) string {
	if reqType == TypeGetStatistics {
		return TypeStatisticsResponse
	}
	return reqType + "_response"
}

// Envelope is one message frame in either direction.
type Envelope struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return fmt.Errorf("%s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%s: decode payload: %w", e.Type, err)
	}
	return nil
}

// hostErr returns the host error carried by e, or nil. Error envelopes
// and payloads with status "error" both count.
func (e Envelope) hostErr(reqType string) error {
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &body)
	}
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	switch {
	case e.Type == TypeError:
		return &HostError{Request: reqType, Message: msg}
	case strings.EqualFold(body.Status, "error"):
		return &HostError{Request: reqType, Message: msg}
	}
	return nil
}

//go:embed envelope.schema.json
var envelopeSchemaJSON []byte

var envelopeSchema = &validate.Schema{Name: "bridge-envelope", Definition: envelopeSchemaJSON}

// ParseEnvelope validates a raw inbound frame and decodes it.
func ParseEnvelope(raw []byte) (Envelope, error) {
	if _, err := validate.JSON(envelopeSchema, raw); err != nil {
		return Envelope{}, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// newEnvelope builds an outbound envelope with payload marshaled to JSON.
// A nil payload is sent as an empty object, which older hosts expect.
func newEnvelope(id, typ string, payload any) (Envelope, error) {
	raw := json.RawMessage(`{}`)
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		raw = b
	}
	return Envelope{ID: id, Type: typ, Payload: raw}, nil
}
