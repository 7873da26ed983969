package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// Envelope is the versioned response wrapper every endpoint shares.
// Clients switch on success before touching data.
type Envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// envelopeVersion bumps when the wrapper shape changes.
const envelopeVersion = 1

// EnvelopeTransformer wraps every response body in the shared envelope.
// Registered on the huma config; error bodies keep their code and
// details under the error key.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr,
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
