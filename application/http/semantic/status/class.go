package status

import "github.com/pkg/errors"

// Class is the first digit of a status code.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15-4
type Class uint

const (
	ClassUnknown Class = iota
	ClassInformational
	ClassSuccessful
	ClassRedirection
	ClassClientError
	ClassServerError
)

// ClassOf classifies code by half-open ranges: [100,200) is informational, [200,300) successful,
// and so on up to [500,600). Anything else is [ClassUnknown].
func ClassOf(code uint) Class {
	switch {
	case code >= 100 && code < 200:
		return ClassInformational
	case code >= 200 && code < 300:
		return ClassSuccessful
	case code >= 300 && code < 400:
		return ClassRedirection
	case code >= 400 && code < 500:
		return ClassClientError
	case code >= 500 && code < 600:
		return ClassServerError
	}
	return ClassUnknown
}

func (c Class) String() string {
	switch c {
	case ClassInformational:
		return "informational"
	case ClassSuccessful:
		return "successful"
	case ClassRedirection:
		return "redirection"
	case ClassClientError:
		return "client error"
	case ClassServerError:
		return "server error"
	}
	return "unknown"
}

// Sentinels keyed by class. Errors carrying a status should match one of these with errors.Is.
var (
	ErrInformational = errors.New("informational status")
	ErrRedirection   = errors.New("redirection status")
	ErrClientError   = errors.New("client error status")
	ErrServerError   = errors.New("server error status")
	ErrUnknown       = errors.New("unknown status")
)

// Err returns the sentinel for class c. Successful statuses have none.
func (c Class) Err() error {
	switch c {
	case ClassInformational:
		return ErrInformational
	case ClassSuccessful:
		return nil
	case ClassRedirection:
		return ErrRedirection
	case ClassClientError:
		return ErrClientError
	case ClassServerError:
		return ErrServerError
	}
	return ErrUnknown
}
