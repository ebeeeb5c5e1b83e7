package obsws

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Send after the client has been closed or the
// connection has dropped.
var ErrClosed = errors.New("obsws: connection closed")

// ConnectError is returned by Dial when the connection or the handshake
// fails. Reason is short and human readable, suitable for showing to an
// operator next to a reconnect prompt.
type ConnectError struct {
	Address string
	Reason  string
	Err     error
}

func (e *ConnectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("obsws: connect %s: %s: %v", e.Address, e.Reason, e.Err)
	}
	return fmt.Sprintf("obsws: connect %s: %s", e.Address, e.Reason)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// RequestError reports a request that obs-websocket answered with a failed
// requestStatus. Use errors.As to inspect it:
//
//	var reqErr *RequestError
//	if errors.As(err, &reqErr) && reqErr.Code == 600 { ... }
type RequestError struct {
	RequestType string
	Code        int
	Comment     string
}

func (e *RequestError) Error() string {
	if e.Comment == "" {
		return fmt.Sprintf("obsws: %s failed with status %d", e.RequestType, e.Code)
	}
	return fmt.Sprintf("obsws: %s failed with status %d: %s", e.RequestType, e.Code, e.Comment)
}

// IsRequestError checks whether err is a *RequestError with the given status code.
func IsRequestError(err error, code int) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Code == code
	}
	return false
}

// closeReason maps a websocket close error to a readable reason.
func closeReason(code int, text string) string {
	reason, ok := closeReasons[code]
	if !ok {
		reason = fmt.Sprintf("closed with code %d", code)
	}
	if text != "" {
		return reason + ": " + text
	}
	return reason
}
