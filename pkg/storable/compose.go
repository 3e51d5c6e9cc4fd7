package storable

// Composer combines a host's existing implementation of an operation with
// the controller's. A nil original yields fn unchanged.
type Composer[T any] func(original, fn func(T) bool) func(T) bool

// Intercept runs fn first. If fn returns false the original is skipped and
// the composition returns false; otherwise it returns the original's result.
func Intercept[T any](original, fn func(T) bool) func(T) bool {
	if original == nil {
		return fn
	}
	return func(v T) bool {
		if !fn(v) {
			return false
		}
		return original(v)
	}
}

// Sequence runs the original first, then fn, and returns the original's
// result.
func Sequence[T any](original, fn func(T) bool) func(T) bool {
	if original == nil {
		return fn
	}
	return func(v T) bool {
		ret := original(v)
		fn(v)
		return ret
	}
}
