package simplegeo

import (
	"errors"

	"github.com/mohammed-shakir/simplegeo-client/internal/core/transport"
)

var ErrNoConnection = errors.New("simplegeo: no connection established")

type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "simplegeo: invalid record: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StatusError is returned by the transport for non-2xx responses.
type StatusError = transport.StatusError

// ErrDecode is wrapped when a response body is not valid JSON.
var ErrDecode = transport.ErrDecode
