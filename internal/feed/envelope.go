package feed

import "time"

// Envelope is the JSON body of every feed endpoint.
type Envelope[T any] struct {
	Success   bool      `json:"success"`
	Data      []T       `json:"data"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
	Fallback  bool      `json:"fallback,omitempty"`
	Message   string    `json:"message,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// NewEnvelope wraps a result. The upstream error text is only exposed as
// Details when withDetails is set.
func NewEnvelope[T any](r Result[T], withDetails bool) Envelope[T] {
	data := r.Items
	if data == nil {
		data = []T{}
	}

	env := Envelope[T]{
		Success:   true,
		Data:      data,
		Count:     len(data),
		Timestamp: time.Now().UTC(),
		Fallback:  r.Fallback,
		Message:   r.Message,
	}
	if withDetails && r.Err != nil {
		env.Details = r.Err.Error()
	}
	return env
}
