package signal

import "fmt"

// AsyncStatus is the phase of an AsyncState.
type AsyncStatus uint8

const (
	StatusLoading AsyncStatus = iota
	StatusReady
	StatusError
)

func (s AsyncStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// AsyncState is the result of an asynchronous computation: Loading, then
// exactly one of Ready(value) or Error(err). The zero value is Loading.
type AsyncState[T any] struct {
	status AsyncStatus
	value  T
	err    error
}

// Loading returns the Loading state.
func Loading[T any]() AsyncState[T] {
	return AsyncState[T]{}
}

// Ready returns a Ready state holding value.
func Ready[T any](value T) AsyncState[T] {
	return AsyncState[T]{status: StatusReady, value: value}
}

// Errored returns an Error state holding err.
func Errored[T any](err error) AsyncState[T] {
	return AsyncState[T]{status: StatusError, err: err}
}

// Status returns the phase.
func (s AsyncState[T]) Status() AsyncStatus { return s.status }

// IsLoading reports whether the computation is still running.
func (s AsyncState[T]) IsLoading() bool { return s.status == StatusLoading }

// IsReady reports whether the computation produced a value.
func (s AsyncState[T]) IsReady() bool { return s.status == StatusReady }

// IsError reports whether the computation failed.
func (s AsyncState[T]) IsError() bool { return s.status == StatusError }

// Value returns the value and whether the state is Ready.
func (s AsyncState[T]) Value() (T, bool) {
	return s.value, s.status == StatusReady
}

// Err returns the failure, or nil unless the state is Error.
func (s AsyncState[T]) Err() error {
	return s.err
}

// Unwrap returns the value and panics unless the state is Ready.
func (s AsyncState[T]) Unwrap() T {
	if s.status != StatusReady {
		panic(fmt.Sprintf("signal: AsyncState is %s, not ready", s.status))
	}
	return s.value
}

func (s AsyncState[T]) String() string {
	switch s.status {
	case StatusReady:
		return fmt.Sprintf("Ready(%v)", s.value)
	case StatusError:
		return fmt.Sprintf("Error(%v)", s.err)
	default:
		return "Loading"
	}
}
