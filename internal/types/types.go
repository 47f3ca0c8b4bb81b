package types

import (
	"encoding/json"
)

type Optional[T any] struct {
	Value   *T
	Defined bool
}

// UnmarshalJSON is implemented by deferring to the wrapped type (T).
// It will be called only if the value is defined in the JSON payload, an explicit null included.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Defined = true
	return json.Unmarshal(data, &o.Value)
}

// Present in the payload as a literal null
func (o Optional[T]) IsNull() bool {
	return o.Defined && o.Value == nil
}

func NewFromVal[T any](v T) Optional[T] {
	return Optional[T]{Defined: true, Value: &v}
}

// Milliseconds since the unix epoch
type UnixMilli int64
