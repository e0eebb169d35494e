package semantic

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"io"

	"httpkit/application/http"

	"github.com/pkg/errors"
)

// Part is one body part of a multipart message.
type Part struct {
	Headers *Headers
	Body    []byte
}

// NewPart creates a part. A nil headers gets an empty header block.
func NewPart(headers *Headers, body []byte) Part {
	if headers == nil {
		headers = NewHeaders()
	}
	return Part{Headers: headers, Body: body}
}

// Bytes renders the part as its header block followed by the body.
func (p Part) Bytes() []byte {
	buf := bytes.NewBuffer(nil)
	if p.Headers != nil {
		buf.WriteString(p.Headers.String())
	} else {
		buf.Write(http.CRLF)
	}
	buf.Write(p.Body)
	return buf.Bytes()
}

var (
	ErrInvalidBoundaryStrength = errors.New("boundary strength must be at least 1")
	ErrBoundaryCollision       = errors.New("boundary occurs in part content")
	ErrNoParts                 = errors.New("multipart body needs at least one part")
	ErrEmptyBoundary           = errors.New("boundary is empty")
)

// BoundaryGenerator produces random boundary tokens.
type BoundaryGenerator struct {
	reader io.Reader
}

func NewBoundaryGenerator() *BoundaryGenerator {
	return &BoundaryGenerator{reader: rand.Reader}
}

// NewBoundaryGeneratorFrom creates a generator reading randomness from r.
func NewBoundaryGeneratorFrom(r io.Reader) *BoundaryGenerator {
	return &BoundaryGenerator{reader: r}
}

// Generate reads strength*3-1 random bytes, base64-encodes them and keeps only the
// alphanumeric characters.
func (g *BoundaryGenerator) Generate(strength int) (string, error) {
	if strength < 1 {
		return "", ErrInvalidBoundaryStrength
	}

	raw := make([]byte, strength*3-1)
	if _, err := io.ReadFull(g.reader, raw); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}

	encoded := base64.StdEncoding.EncodeToString(raw)

	b := make([]byte, 0, len(encoded))
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			b = append(b, c)
		}
	}

	return string(b), nil
}

// NewBoundary generates a boundary from crypto/rand.
func NewBoundary(strength int) (string, error) {
	return NewBoundaryGenerator().Generate(strength)
}

// AssembleMultipart frames parts with boundary:
//
//	--B CRLF part1 CRLF --B CRLF part2 CRLF --B-- CRLF
//
// Reference: https://datatracker.ietf.org/doc/html/rfc2046#section-5.1.1
func AssembleMultipart(parts []Part, boundary string) ([]byte, error) {
	if boundary == "" {
		return nil, ErrEmptyBoundary
	}
	if len(parts) == 0 {
		return nil, ErrNoParts
	}

	rendered := make([][]byte, len(parts))
	for idx, p := range parts {
		rendered[idx] = p.Bytes()
		if bytes.Contains(rendered[idx], []byte(boundary)) {
			return nil, errors.Wrapf(ErrBoundaryCollision, "part %d", idx)
		}
	}

	delim := []byte("--" + boundary)

	buf := bytes.NewBuffer(nil)
	for _, p := range rendered {
		buf.Write(delim)
		buf.Write(http.CRLF)
		buf.Write(p)
		buf.Write(http.CRLF)
	}
	buf.Write(delim)
	buf.WriteString("--")
	buf.Write(http.CRLF)

	return buf.Bytes(), nil
}

type MultipartOptions struct {
	// Subtype of the multipart media type. Defaults to "mixed".
	Subtype string
	// Strength passed to the boundary generator. Defaults to 8.
	Strength int
	// MaxAttempts bounds boundary regeneration on collision. Defaults to 10.
	MaxAttempts int

	// Generator defaults to one reading crypto/rand.
	Generator *BoundaryGenerator
}

var DefaultMultipartOptions = MultipartOptions{
	Subtype:     "mixed",
	Strength:    8,
	MaxAttempts: 10,
}

// BuildMultipart assembles the request's parts into its content and sets Content-Type
// to multipart/<subtype> with the chosen boundary. On error the request is left unchanged.
func (r *Request) BuildMultipart(opts MultipartOptions) error {
	if opts.Subtype == "" {
		opts.Subtype = DefaultMultipartOptions.Subtype
	}
	if opts.Strength == 0 {
		opts.Strength = DefaultMultipartOptions.Strength
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMultipartOptions.MaxAttempts
	}
	if opts.Generator == nil {
		opts.Generator = NewBoundaryGenerator()
	}

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		boundary, err := opts.Generator.Generate(opts.Strength)
		if err != nil {
			return errors.Wrap(err, "generating boundary")
		}

		content, err := AssembleMultipart(r.parts, boundary)
		if errors.Is(err, ErrBoundaryCollision) || errors.Is(err, ErrEmptyBoundary) {
			continue
		}
		if err != nil {
			return err
		}

		r.Content = content
		r.Headers().SetContentType("multipart/" + opts.Subtype + "; boundary=" + boundary)
		return nil
	}

	return errors.Wrapf(ErrBoundaryCollision, "no usable boundary after %d attempts", opts.MaxAttempts)
}
