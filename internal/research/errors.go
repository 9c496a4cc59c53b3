package research

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmitInProgress is returned by Submit while a previous attempt is still
// waiting on the report service. The call has no other effect.
var ErrSubmitInProgress = errors.New("research: submit already in progress")

// ValidationError reports which form fields were blank after trimming.
// It never reaches the network.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("research: missing %s", strings.Join(e.Fields, " and "))
}

// TransportError covers network failures, non-2xx statuses and malformed
// response bodies from the report service.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("report-service %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("report-service %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransport reports whether err is (or wraps) a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
