package domain

// Optional carries a value together with an explicit presence flag, so that
// "not provided" is never confused with a zero value.
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

func (o Optional[T]) IsSet() bool { return o.set }

// OrElse returns the value when present, otherwise def.
func (o Optional[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}
