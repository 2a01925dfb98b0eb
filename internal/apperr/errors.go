package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies upstream failures.
type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindTimeout   Kind = "timeout"
	KindDecode    Kind = "decode"
	KindRemote    Kind = "remote"
)

// Error describes a failed call to a remote service.
type Error struct {
	Kind     Kind
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case msg == "" && e.Err != nil:
		msg = e.Err.Error()
	case msg != "" && e.Err != nil:
		msg = msg + ": " + e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s (status %d): %s", e.Endpoint, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Endpoint, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport wraps a network level failure, promoting deadlines and net
// timeouts to KindTimeout.
func Transport(endpoint string, err error) *Error {
	kind := KindTransport
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Endpoint: endpoint, Err: err}
}

// Status reports a non-2xx response.
func Status(endpoint string, code int, body string) *Error {
	return &Error{Kind: KindStatus, Endpoint: endpoint, Status: code, Message: body}
}

// Decode reports an unreadable or unexpected response body.
func Decode(endpoint string, err error) *Error {
	return &Error{Kind: KindDecode, Endpoint: endpoint, Err: err}
}

// Remote reports an error the service itself signalled in its payload.
func Remote(endpoint, message string) *Error {
	return &Error{Kind: KindRemote, Endpoint: endpoint, Message: message}
}

// Timeout reports a timeout signalled by the service.
func Timeout(endpoint, message string) *Error {
	return &Error{Kind: KindTimeout, Endpoint: endpoint, Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	if KindOf(err) == KindTimeout {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
