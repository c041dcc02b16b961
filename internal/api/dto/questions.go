package dto

import (
	"bytes"
	"encoding/json"

	"github.com/hugh/rally/internal/validation"
)

// Input is a request field that remembers whether the client sent it.
// Numbers are kept in their JSON text form so rules like "integer" can judge
// them; any other non-string value is kept verbatim and fails those rules.
type Input struct {
	Value string
	Set   bool
}

func (in *Input) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*in = Input{}
		return nil
	}
	in.Set = true
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &in.Value)
	}
	in.Value = string(data)
	return nil
}

// Ptr returns the value when it was sent, nil otherwise.
func (in Input) Ptr() *string {
	if !in.Set {
		return nil
	}
	v := in.Value
	return &v
}

// Uint parses the value as an id the way the "integer" rule reads it. Zero
// means absent or not a positive integer.
func (in Input) Uint() uint {
	if !in.Set {
		return 0
	}
	n, err := validation.ParseInteger(in.Value)
	if err != nil || n <= 0 {
		return 0
	}
	return uint(n)
}

type QuestionRequest struct {
	Title   Input `json:"title"`
	Body    Input `json:"body"`
	Channel Input `json:"channel"`
}

// Fields returns the sent fields keyed by name, the shape the validator reads.
func (r QuestionRequest) Fields() map[string]string {
	return fields(map[string]Input{
		"title":   r.Title,
		"body":    r.Body,
		"channel": r.Channel,
	})
}

type AnswerRequest struct {
	Body Input `json:"body"`
}

func (r AnswerRequest) Fields() map[string]string {
	return fields(map[string]Input{"body": r.Body})
}

func fields(in map[string]Input) map[string]string {
	out := make(map[string]string, len(in))
	for name, v := range in {
		if v.Set {
			out[name] = v.Value
		}
	}
	return out
}
