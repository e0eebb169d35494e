package semantic

import (
	"strconv"
	"time"

	"httpkit/application/http/semantic/status"
)

// Response is an HTTP response. Only its content and headers change after creation.
type Response struct {
	Status status.Status

	headers *Headers
	content []byte
	request *Request
}

// NewResponse creates a response. message is the reason phrase; request, if any, is the
// request that produced it and is only referenced.
func NewResponse(code uint, headers *Headers, content []byte, message string, request *Request) *Response {
	if headers == nil {
		headers = NewHeaders()
	}

	return &Response{
		Status:  status.Status{Code: code, ReasonPhrase: message},
		headers: headers,
		content: content,
		request: request,
	}
}

func (r *Response) Code() uint { return r.Status.Code }

func (r *Response) Message() string { return r.Status.ReasonPhrase }

func (r *Response) Class() status.Class { return r.Status.Class() }

func (r *Response) IsInfo() bool        { return r.Class() == status.ClassInformational }
func (r *Response) IsSuccess() bool     { return r.Class() == status.ClassSuccessful }
func (r *Response) IsRedirect() bool    { return r.Class() == status.ClassRedirection }
func (r *Response) IsClientError() bool { return r.Class() == status.ClassClientError }
func (r *Response) IsServerError() bool { return r.Class() == status.ClassServerError }
func (r *Response) IsError() bool       { return r.IsClientError() || r.IsServerError() }

// StatusLine renders "<code> <message>".
func (r *Response) StatusLine() string {
	return strconv.FormatUint(uint64(r.Status.Code), 10) + " " + r.Status.ReasonPhrase
}

// Base returns the base URI of the response. Content-Base wins over Content-Location,
// which wins over the URL of the originating request.
func (r *Response) Base() (URL, bool) {
	candidates := []string{}
	if v, ok := r.Headers().Get("Content-Base"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := r.Headers().Get("Content-Location"); ok {
		candidates = append(candidates, v)
	}
	if r.request != nil {
		candidates = append(candidates, r.request.URL.String())
	}

	for _, c := range candidates {
		if c != "" {
			return NewURL(c), true
		}
	}

	return URL{}, false
}

func (r *Response) Request() *Request { return r.request }

func (r *Response) Content() []byte { return r.content }

// SetContent replaces the content, e.g. with a decoded body.
func (r *Response) SetContent(content []byte) { r.content = content }

// Headers returns the response's headers, creating an empty collection for a zero Response.
func (r *Response) Headers() *Headers {
	if r.headers == nil {
		r.headers = NewHeaders()
	}
	return r.headers
}

func (r *Response) Header(name string) (string, bool) { return r.Headers().Get(name) }

func (r *Response) LastModified() (time.Time, bool, error) { return r.Headers().LastModified() }
func (r *Response) Date() (time.Time, bool, error)         { return r.Headers().Date() }
func (r *Response) Expires() (time.Time, bool, error)      { return r.Headers().Expires() }
func (r *Response) ContentLength() (*uint, error)          { return r.Headers().ContentLength() }
func (r *Response) ContentType() (string, bool)            { return r.Headers().ContentType() }
func (r *Response) ContentIsText() bool                    { return r.Headers().ContentIsText() }
func (r *Response) ContentIsXML() bool                     { return r.Headers().ContentIsXML() }
func (r *Response) ContentIsXHTML() bool                   { return r.Headers().ContentIsXHTML() }
