package ecommerce

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EnvelopeKind tells how a response body was shaped
type EnvelopeKind int

const (
	// EnvelopeFlat is a bare resource document
	EnvelopeFlat EnvelopeKind = iota
	// EnvelopeWrapped is a {"response": resource} document
	EnvelopeWrapped
)

// String returns the string representation of EnvelopeKind
func (k EnvelopeKind) String() string {
	if k == EnvelopeWrapped {
		return "wrapped"
	}
	return "flat"
}

// Envelope is a decoded response body: either Flat(T) or Wrapped({response: T}).
// The shape is resolved once here so no caller has to probe both.
type Envelope[T any] struct {
	Kind  EnvelopeKind
	Value T
}

// DecodeEnvelope decodes body into T, unwrapping a "response" envelope when
// it is the only top-level key.
func DecodeEnvelope[T any](body []byte) (Envelope[T], error) {
	var env Envelope[T]
	payload := bytes.TrimSpace(body)

	if len(payload) > 0 && payload[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(payload, &probe); err != nil {
			return env, fmt.Errorf("decode response: %w", err)
		}
		if inner, ok := probe["response"]; ok && len(probe) == 1 {
			env.Kind = EnvelopeWrapped
			payload = inner
		}
	}

	if err := json.Unmarshal(payload, &env.Value); err != nil {
		return env, fmt.Errorf("decode %s response: %w", env.Kind, err)
	}
	return env, nil
}
