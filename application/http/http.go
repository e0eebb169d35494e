package http

import (
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

type RequestLine struct {
	Method  string
	Target  string
	Version Version
}

type Request struct {
	RequestLine
	Headers []Field

	Body io.Reader
}

type StatusLine struct {
	Version      Version
	StatusCode   uint
	ReasonPhrase string
}

type Response struct {
	StatusLine
	Headers []Field

	Body io.Reader
}

// [Major, Minor]
type Version [2]uint

var Version11 = Version{1, 1}

// ParseVersion parses http version text(e.g. "HTTP/1.1") into [Version].
func ParseVersion(b []byte) (Version, error) {
	prefix := []byte("HTTP/")
	if !bytes.HasPrefix(b, prefix) {
		return Version{}, errors.Errorf("http version prefix not found: %s", b)
	}

	// Get major and minor version.
	first, second, found := bytes.Cut(b[len(prefix):], []byte{'.'})
	if !found {
		return Version{}, errors.Errorf("dot separator not found on version: %s", b)
	}

	major, err1 := strconv.ParseUint(string(first), 10, 64)
	minor, err2 := strconv.ParseUint(string(second), 10, 64)
	if err1 != nil || err2 != nil {
		return Version{}, errors.Errorf("http version is not convertible to int: %s", b)
	}

	return Version{uint(major), uint(minor)}, nil
}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString("HTTP/")
	buf.WriteString(strconv.FormatUint(uint64(ver[0]), 10))
	buf.WriteByte('.')
	buf.WriteString(strconv.FormatUint(uint64(ver[1]), 10))
	return buf.Bytes()
}

func (ver Version) String() string { return string(ver.Text()) }

// Field is a single field line as it appears on the wire.
type Field struct{ Name, Value []byte }

func ParseField(fieldLine []byte) (Field, error) {
	name, value, found := bytes.Cut(fieldLine, []byte{':'})
	if !found {
		return Field{}, errors.Errorf("colon separator not found on header: %q", string(fieldLine))
	}

	// No whitespace is allowed between field name and colon.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-2
	for _, c := range OWS {
		if bytes.HasSuffix(name, []byte{c}) {
			return Field{}, errors.New("field name has trailing whitespace")
		}
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-3
	value = bytes.Trim(value, string(OWS))

	return Field{Name: name, Value: value}, nil
}

// Text renders the field as "Name: Value", without line terminator.
func (f *Field) Text() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(f.Name)+len(f.Value)+2))
	buf.Write(f.Name)
	buf.WriteString(": ")
	buf.Write(f.Value)
	return buf.Bytes()
}
