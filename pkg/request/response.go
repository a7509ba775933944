package request

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is the uniform envelope every backend endpoint answers with.
// Body keeps the full payload, envelope fields included.
type Response struct {
	Status   int
	Message  string
	Location string
	Body     json.RawMessage

	// HasStatus is false when the body carried no integer status
	HasStatus bool
}

type envelope struct {
	Status   *int    `json:"status"`
	Message  *string `json:"message"`
	Location *string `json:"location"`
}

// parseEnvelope decodes a response body. ok is false when the body is not
// a JSON object at all; a JSON object without a usable status still parses.
func parseEnvelope(data []byte) (*Response, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, false
	}

	resp := &Response{Body: json.RawMessage(trimmed)}

	// Field-by-field so one wrongly typed field does not hide the others
	var env envelope
	if v, ok := raw["status"]; ok && json.Unmarshal(v, &env.Status) == nil && env.Status != nil {
		resp.Status = *env.Status
		resp.HasStatus = true
	}
	if v, ok := raw["message"]; ok && json.Unmarshal(v, &env.Message) == nil && env.Message != nil {
		resp.Message = *env.Message
	}
	if v, ok := raw["location"]; ok && json.Unmarshal(v, &env.Location) == nil && env.Location != nil {
		resp.Location = *env.Location
	}
	return resp, true
}

// Decode unmarshals the full payload into v
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Map returns the payload as a generic map
func (r *Response) Map() (map[string]any, error) {
	m := make(map[string]any)
	if err := r.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
