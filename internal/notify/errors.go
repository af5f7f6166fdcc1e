package notify

import (
	"errors"
	"fmt"
)

// TransportError is returned by the store client when the notification
// service answers with a non-2xx status. Partial results accompanying a
// TransportError must not be used.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("notification store returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("notification store returned status %d: %s", e.StatusCode, e.Message)
}

// IsTransportError reports whether err (or any error in its chain) is a
// TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// DecodeError is returned when a store response body or an inbound frame
// payload cannot be decoded. A DecodeError on a single frame is isolated;
// it never terminates the connection.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err (or any error in its chain) is a
// DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// ConnectionError is reported when the streaming transport closes or the
// handshake fails for a recoverable reason. The channel reconnects on
// its own after one.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("notification channel: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// AuthRejectedError indicates the notification service refused the
// handshake outright. It is unrecoverable: the channel moves to
// StateFailed and stays there until Connect is called again.
type AuthRejectedError struct {
	Reason string
}

func (e *AuthRejectedError) Error() string {
	return fmt.Sprintf("notification channel: handshake rejected: %s", e.Reason)
}

// IsAuthRejected reports whether err (or any error in its chain) is an
// AuthRejectedError.
func IsAuthRejected(err error) bool {
	var ar *AuthRejectedError
	return errors.As(err, &ar)
}
