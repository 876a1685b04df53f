package core

// Attempt carries the outcome of a best-effort lookup: a value or the error
// that prevented it. Making the error branch part of the value keeps
// degradation visible in signatures instead of hiding it behind
// catch-and-ignore at call sites.
type Attempt[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the attempt succeeded.
func (a Attempt[T]) Ok() bool { return a.Err == nil }

// OrZero returns the value on success and T's zero value otherwise.
func (a Attempt[T]) OrZero() T {
	if a.Err != nil {
		var zero T
		return zero
	}
	return a.Value
}

// Succeed wraps a value in a successful Attempt.
func Succeed[T any](v T) Attempt[T] { return Attempt[T]{Value: v} }

// Fail wraps an error in a failed Attempt.
func Fail[T any](err error) Attempt[T] { return Attempt[T]{Err: err} }
