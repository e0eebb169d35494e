package http

import (
	"bufio"
	"bytes"
	"io"

	"httpkit/application/http/semantic/status"

	"github.com/pkg/errors"
)

type DecodeOptions struct {
	// AllowSoleLF specifies whether a single LF character should be recognized as a valid line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	AllowSoleLF bool

	// MaxFieldLineLength sets the limit of field line length on headers.
	MaxFieldLineLength uint

	// MaxRequestLineLength sets the limit of request line length.
	// Recommended: >= 8000
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-5
	MaxRequestLineLength uint

	// MaxStatusLineLength sets the limit of status line length.
	MaxStatusLineLength uint
}

var DefaultDecodeOptions = DecodeOptions{}

type MessageDecoder struct {
	br   *bufio.Reader
	opts DecodeOptions
}

var (
	errLineTooLong       = errors.New("line length exceeds limit")
	ErrMissingCRBeforeLF = errors.New("missing CR before LF")
)

// readLine reads up to LF. With a non-zero limit, it stops buffering once the line
// (terminator included) grows past limit.
func (md *MessageDecoder) readLine(limit uint) ([]byte, error) {
	var b []byte
	for {
		chunk, err := md.br.ReadSlice(LF)
		if limit > 0 && uint(len(b)+len(chunk)) > limit {
			return nil, errLineTooLong
		}
		b = append(b, chunk...)

		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	b = b[:len(b)-1] // Remove LF.

	if !md.opts.AllowSoleLF {
		if len(b) == 0 || b[len(b)-1] != CR {
			return nil, ErrMissingCRBeforeLF
		}
	}
	b = bytes.TrimSuffix(b, []byte{CR})

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-4
	b = bytes.ReplaceAll(b, []byte{CR}, []byte{SP})

	return b, nil
}

var (
	ErrFieldLineTooLong   = errors.New("field line length exceeds limit")
	ErrMalformedFieldLine = errors.New("field line is malformed")
)

func (md *MessageDecoder) decodeHeaders(headers *[]Field) error {
	tmpHeaders := make([]Field, 0)
	for {
		fieldLine, err := md.readLine(md.opts.MaxFieldLineLength)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				return ErrFieldLineTooLong
			}
			return errors.Wrap(err, "reading line")
		}

		if len(fieldLine) == 0 {
			// An empty line. This means that there are no more headers.
			break
		}

		field, err := ParseField(fieldLine)
		if err != nil {
			return ErrMalformedFieldLine
		}

		tmpHeaders = append(tmpHeaders, field)
	}

	*headers = tmpHeaders

	return nil
}

// readStartLine skips empty lines received before the message.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
func (md *MessageDecoder) readStartLine(limit uint) ([]byte, error) {
	for {
		b, err := md.readLine(limit)
		if err != nil {
			return nil, err
		}
		if len(b) > 0 {
			return b, nil
		}
	}
}

var (
	ErrRequestLineTooLong   = errors.New("request line length exceeds limit")
	ErrMalformedRequestLine = errors.New("request line is malformed")
)

type RequestDecoder struct{ MessageDecoder }

func NewRequestDecoder(r io.Reader, opts DecodeOptions) *RequestDecoder {
	return &RequestDecoder{
		MessageDecoder{br: bufio.NewReader(r), opts: opts},
	}
}

// r MUST be a non-nil pointer
func (rd *RequestDecoder) Decode(r *Request) error {
	line, err := rd.readStartLine(rd.opts.MaxRequestLineLength)
	if err != nil {
		if errors.Is(err, errLineTooLong) {
			return ErrRequestLineTooLong
		}
		return errors.Wrap(err, "reading request line")
	}

	if r.RequestLine, err = parseRequestLine(line); err != nil {
		return ErrMalformedRequestLine
	}

	if err := rd.decodeHeaders(&r.Headers); err != nil {
		return errors.Wrap(err, "parsing headers")
	}

	r.Body = rd.br

	return nil
}

func parseRequestLine(line []byte) (RequestLine, error) {
	parts := bytes.Split(line, []byte{SP})
	if len(parts) != 3 {
		return RequestLine{}, errors.New("request line is malformed")
	}

	method := string(parts[0])
	if !IsValidToken(method) {
		return RequestLine{}, errors.New("method is not a valid token")
	}

	target := string(parts[1])
	if len(target) == 0 {
		return RequestLine{}, errors.New("request target should not be empty")
	}

	ver, err := ParseVersion(parts[2])
	if err != nil {
		return RequestLine{}, errors.Wrap(err, "parsing version")
	}

	return RequestLine{Method: method, Target: target, Version: ver}, nil
}

var (
	ErrStatusLineTooLong   = errors.New("status line length exceeds limit")
	ErrMalformedStatusLine = errors.New("status line is malformed")
)

type ResponseDecoder struct{ MessageDecoder }

func NewResponseDecoder(r io.Reader, opts DecodeOptions) *ResponseDecoder {
	return &ResponseDecoder{
		MessageDecoder{br: bufio.NewReader(r), opts: opts},
	}
}

// r MUST be a non-nil pointer.
// After Decode, r.Body reads whatever follows the header block.
func (rd *ResponseDecoder) Decode(r *Response) error {
	line, err := rd.readStartLine(rd.opts.MaxStatusLineLength)
	if err != nil {
		if errors.Is(err, errLineTooLong) {
			return ErrStatusLineTooLong
		}
		return errors.Wrap(err, "reading status line")
	}

	if r.StatusLine, err = parseStatusLine(line); err != nil {
		return ErrMalformedStatusLine
	}

	if err := rd.decodeHeaders(&r.Headers); err != nil {
		return errors.Wrap(err, "parsing headers")
	}

	r.Body = rd.br

	return nil
}

func parseStatusLine(line []byte) (StatusLine, error) {
	parts := bytes.SplitN(line, []byte{SP}, 3)
	if len(parts) < 2 {
		return StatusLine{}, errors.New("status line is malformed")
	}

	ver, err := ParseVersion(parts[0])
	if err != nil {
		return StatusLine{}, errors.Wrap(err, "parsing version")
	}

	statusCodeStr := string(parts[1])
	statusCode, err := status.ParseCode(statusCodeStr)
	if err != nil || len(statusCodeStr) != 3 {
		return StatusLine{}, errors.Errorf("status code is malformed: %q", statusCodeStr)
	}

	// reason-phrase is optional.
	reasonPhrase := ""
	if len(parts) == 3 {
		reasonPhrase = string(parts[2])
	}

	return StatusLine{Version: ver, StatusCode: statusCode, ReasonPhrase: reasonPhrase}, nil
}
