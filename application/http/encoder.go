package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

type EncodeOptions struct {
	// UseSoleLF specifies whether a single LF character should be used as a line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool
}

var DefaultEncodeOptions = EncodeOptions{
	UseSoleLF: false,
}

type MessageEncoder struct {
	bw   *bufio.Writer
	opts EncodeOptions
}

func (me *MessageEncoder) writeLine(line []byte) error {
	if _, err := me.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	term := CRLF
	if me.opts.UseSoleLF {
		term = term[1:]
	}

	if _, err := me.bw.Write(term); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (me *MessageEncoder) encodeHeaders(headers []Field) error {
	for _, field := range headers {
		if !IsValidToken(string(field.Name)) {
			return errors.Errorf("field name is not a valid token: %q", field.Name)
		}
		if bytes.ContainsAny(field.Value, "\r\n") {
			return errors.Errorf("field value of %q contains line terminator", field.Name)
		}
		if err := me.writeLine(field.Text()); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write an empty line as all the headers are written.
	if err := me.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (me *MessageEncoder) encodeBody(body io.Reader) error {
	if body != nil {
		if _, err := me.bw.ReadFrom(body); err != nil {
			return errors.Wrap(err, "writing body")
		}
	}

	if err := me.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing body")
	}

	return nil
}

type RequestEncoder struct{ MessageEncoder }

func NewRequestEncoder(w io.Writer, opts EncodeOptions) *RequestEncoder {
	return &RequestEncoder{
		MessageEncoder{
			bw:   bufio.NewWriter(w),
			opts: opts,
		},
	}
}

func (re *RequestEncoder) Encode(request Request) error {
	if err := re.encodeRequestLine(request.RequestLine); err != nil {
		return errors.Wrap(err, "encoding request line")
	}

	if err := re.encodeHeaders(request.Headers); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	return re.encodeBody(request.Body)
}

func (re *RequestEncoder) encodeRequestLine(reqLine RequestLine) error {
	if !IsValidToken(reqLine.Method) {
		return errors.Errorf("method is not a valid token: %q", reqLine.Method)
	}

	buf := bytes.NewBuffer(nil)

	buf.WriteString(reqLine.Method)
	buf.WriteByte(SP)
	buf.WriteString(reqLine.Target)
	buf.WriteByte(SP)
	buf.Write(reqLine.Version.Text())

	return re.writeLine(buf.Bytes())
}

type ResponseEncoder struct{ MessageEncoder }

func NewResponseEncoder(w io.Writer, opts EncodeOptions) *ResponseEncoder {
	return &ResponseEncoder{
		MessageEncoder{
			bw:   bufio.NewWriter(w),
			opts: opts,
		},
	}
}

func (re *ResponseEncoder) Encode(response Response) error {
	if err := re.encodeStatusLine(response.StatusLine); err != nil {
		return errors.Wrap(err, "encoding status line")
	}

	if err := re.encodeHeaders(response.Headers); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	return re.encodeBody(response.Body)
}

func (re *ResponseEncoder) encodeStatusLine(statLine StatusLine) error {
	buf := bytes.NewBuffer(nil)

	buf.Write(statLine.Version.Text())
	buf.WriteByte(SP)
	buf.WriteString(strconv.FormatUint(uint64(statLine.StatusCode), 10))
	buf.WriteByte(SP)
	buf.WriteString(statLine.ReasonPhrase)

	return re.writeLine(buf.Bytes())
}
