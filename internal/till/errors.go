package till

import (
	"context"
	"errors"

	"github.com/MrJamesThe3rd/caixa/internal/session"
)

// Messenger is implemented by errors that carry an operator-facing message
// provided by the backend.
type Messenger interface {
	UserMessage() string
}

// Message returns the text shown to the operator for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var m Messenger
	if errors.As(err, &m) {
		return m.UserMessage()
	}

	switch {
	case errors.Is(err, session.ErrNoOperator):
		return "No operator signed in. Use change operator first."
	case errors.Is(err, session.ErrExpired):
		return "Operator session expired. Use change operator to sign in again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The till server did not answer in time."
	}

	return err.Error()
}
