package binance

import "fmt"

// APIError is an error response from the exchange, carried verbatim.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance error %d: %s", e.Code, e.Message)
}

// Known error codes used for classification.
const (
	codeUnauthorized     = -2015 // invalid API key, IP, or permissions
	codeInvalidSignature = -1022
	codeTooManyRequests  = -1003
	codeTimestampDrift   = -1021
)

// IsAuthError reports whether the error code indicates rejected credentials.
func (e *APIError) IsAuthError() bool {
	switch e.Code {
	case codeUnauthorized, codeInvalidSignature:
		return true
	default:
		return false
	}
}

// IsRateLimited reports whether the error code indicates request throttling.
func (e *APIError) IsRateLimited() bool {
	return e.Code == codeTooManyRequests
}

// DecodeError reports a stream frame the decoder could not make sense of.
// It never escalates past the dispatcher: malformed frames are logged and
// dropped.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed message: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed message: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }
