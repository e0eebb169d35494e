package semantic

import (
	"slices"
	"time"
)

// Request is an HTTP request: a method, a target URL, headers and an optional content body.
// Content can also be assembled from parts, see [Request.BuildMultipart].
type Request struct {
	Method  Method
	URL     URL
	Content []byte

	headers *Headers
	parts   []Part
}

// NewRequest creates a request. When headers is nil, the request gets its own empty headers.
// The request takes ownership of headers.
func NewRequest(method Method, target URL, headers *Headers, content []byte) *Request {
	if headers == nil {
		headers = NewHeaders()
	}

	return &Request{
		Method:  method,
		URL:     target,
		Content: content,
		headers: headers,
	}
}

// Headers returns the request's headers. A Request built without [NewRequest] gets an empty
// collection on first use.
func (r *Request) Headers() *Headers {
	if r.headers == nil {
		r.headers = NewHeaders()
	}
	return r.headers
}

func (r *Request) Header(name string) (string, bool) { return r.Headers().Get(name) }

// AppendHeader adds a field without replacing existing ones with the same name.
// Use [Headers.Set] through [Request.Headers] for replacing writes.
func (r *Request) AppendHeader(name, value string) { r.Headers().Add(name, value) }

func (r *Request) IfModifiedSince() (time.Time, bool, error) {
	return r.Headers().IfModifiedSince()
}

func (r *Request) SetIfModifiedSince(in DateInput) error {
	return r.Headers().SetIfModifiedSince(in)
}

func (r *Request) IfUnmodifiedSince() (time.Time, bool, error) {
	return r.Headers().IfUnmodifiedSince()
}

func (r *Request) SetIfUnmodifiedSince(in DateInput) error {
	return r.Headers().SetIfUnmodifiedSince(in)
}

func (r *Request) AddPart(p Part) { r.parts = append(r.parts, p) }

func (r *Request) Parts() []Part { return slices.Clone(r.parts) }
