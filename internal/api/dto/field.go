package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"stop-sequencing-service/internal/domain"
)

// Field is a JSON member that records whether it was present and whether it
// was null, so PATCH bodies can tell "leave alone" from "clear".
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// Optional returns the value when present. A null counts as the zero value.
func (f Field[T]) Optional() domain.Optional[T] {
	if !f.Set {
		return domain.None[T]()
	}
	return domain.Some(f.Value)
}

// required is like Optional but rejects an explicit null.
func required[T any](name string, f Field[T]) (domain.Optional[T], error) {
	if f.Null {
		return domain.None[T](), fmt.Errorf("%w: %s must not be null", domain.ErrMalformedInput, name)
	}
	return f.Optional(), nil
}
