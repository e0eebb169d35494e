package semantic

import (
	"fmt"

	"httpkit/application/http/semantic/status"
)

// StatusError reports a completed response whose status is not successful.
// It carries the whole response so callers can inspect its headers and content.
type StatusError struct {
	Response *Response
}

func NewStatusError(res *Response) *StatusError {
	return &StatusError{Response: res}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Class(), e.Response.StatusLine())
}

func (e *StatusError) Class() status.Class { return e.Response.Class() }

func (e *StatusError) Code() uint { return e.Response.Status.Code }

// Is matches the class sentinels of package status, e.g. [status.ErrClientError].
func (e *StatusError) Is(target error) bool {
	return target == e.Class().Err()
}
