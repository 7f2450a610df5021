package response

import (
	"encoding/json"
	"fmt"
)

// APIResponse is the success envelope: the fields of Data are merged next to
// "success": true. Data must marshal to a JSON object (or null).
type APIResponse[T any] struct {
	Data T
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKT returns a successful response carrying data's fields.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Data: data}
}

// ErrorT returns an error envelope with msg.
func ErrorT(msg string) *ErrorResponse {
	return &ErrorResponse{Error: msg}
}

func (r *APIResponse[T]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if string(raw) != "null" {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("response data is not an object: %w", err)
		}
	}
	fields["success"] = json.RawMessage("true")
	return json.Marshal(fields)
}
