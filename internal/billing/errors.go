package billing

import "fmt"

type Kind int

const (
	NotFound Kind = iota + 1
	InvalidArgument
	Conflict
	Internal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidArgument:
		return "invalid_argument"
	case Conflict:
		return "conflict"
	case Internal:
		return "internal"
	}
	return "unknown"
}

// Error carries a user-facing message; Internal errors never leak
// storage details.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}
