package model

// Outcome is the uniform result of every gateway call. The gateway never lets
// a transport or parse error escape as a Go error: callers branch on Success
// and show Error as-is.
type Outcome[T any] struct {
	Success bool
	Data    T
	Error   string
}

// Ok wraps data in a successful outcome.
func Ok[T any](data T) Outcome[T] {
	return Outcome[T]{Success: true, Data: data}
}

// Fail builds a failed outcome carrying a user-facing message.
func Fail[T any](msg string) Outcome[T] {
	return Outcome[T]{Error: msg}
}
