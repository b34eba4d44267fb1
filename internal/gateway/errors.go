package gateway

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by trading operations before Connect has
// completed or after Close.
var ErrNotConnected = errors.New("gateway not connected")

// ConnectReason classifies why connection bootstrap failed.
type ConnectReason string

const (
	TransportFailure ConnectReason = "transport_failure"
	AuthFailure      ConnectReason = "auth_failure"
)

// ConnectError reports a failed bootstrap. After a ConnectError no sockets
// remain open.
type ConnectError struct {
	Reason ConnectReason
	Stage  string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect failed at %s (%s): %v", e.Stage, e.Reason, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// SessionReason classifies listen key session faults.
type SessionReason string

const (
	RenewalFailed SessionReason = "renewal_failed"
	Expired       SessionReason = "expired"
)

// SessionError reports a listen key session fault. Session faults are not
// fatal: the gateway keeps running in a degraded state.
type SessionError struct {
	Reason SessionReason
	Err    error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Reason, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// RequestReason classifies why a trading request failed.
type RequestReason string

const (
	Rejected RequestReason = "rejected"
	Timeout  RequestReason = "timeout"
)

// RequestError reports a failed order operation. Code and Message carry the
// exchange rejection when Reason is Rejected.
type RequestError struct {
	Reason  RequestReason
	Code    int
	Message string
}

func (e *RequestError) Error() string {
	if e.Reason == Rejected {
		return fmt.Sprintf("request rejected: code=%d msg=%s", e.Code, e.Message)
	}
	return fmt.Sprintf("request %s", e.Reason)
}
