package semantic

import (
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"httpkit/application/http"

	"github.com/pkg/errors"
)

// Field is a single header name/value pair.
type Field struct{ Name, Value string }

// Headers is an ordered, multi-valued collection of header fields.
// Names are matched case-insensitively, but stored with the casing they were given.
// The same name may appear any number of times.
//
// A Headers is owned by a single [Request] or [Response] and is not safe for concurrent use.
type Headers struct{ fields []Field }

// NewHeaders creates headers holding fields in the given order.
func NewHeaders(fields ...Field) *Headers {
	return &Headers{fields: slices.Clone(fields)}
}

// HeadersFromMap creates headers from a map.
// Map iteration order carries no meaning, so fields are sorted by name to keep the result stable.
func HeadersFromMap(m map[string]string) *Headers {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)

	h := &Headers{fields: make([]Field, 0, len(m))}
	for _, name := range names {
		h.fields = append(h.fields, Field{Name: name, Value: m[name]})
	}

	return h
}

// HeadersFrom creates headers from raw wire fields, keeping their order and duplicates.
func HeadersFrom(raw []http.Field) *Headers {
	h := &Headers{fields: make([]Field, 0, len(raw))}
	for _, f := range raw {
		h.fields = append(h.fields, Field{Name: string(f.Name), Value: string(f.Value)})
	}

	return h
}

func sameName(a, b string) bool { return strings.EqualFold(a, b) }

func (h *Headers) Len() int { return len(h.fields) }

// Get returns the value of the first field named name.
func (h *Headers) Get(name string) (value string, ok bool) {
	for _, f := range h.fields {
		if sameName(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every value of name in insertion order.
// It never returns nil.
func (h *Headers) Values(name string) []string {
	values := make([]string, 0)
	for _, f := range h.fields {
		if sameName(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values
}

// Add appends one field per value. Existing fields are never merged or replaced.
func (h *Headers) Add(name string, values ...string) {
	for _, v := range values {
		h.fields = append(h.fields, Field{Name: name, Value: v})
	}
}

// Set replaces the first field named name in place, taking the new name casing.
// Later fields with the same name are left as they are.
// When there is no such field, it is appended.
func (h *Headers) Set(name, value string) {
	for idx, f := range h.fields {
		if sameName(f.Name, name) {
			h.fields[idx] = Field{Name: name, Value: value}
			return
		}
	}

	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Del removes every field named name.
func (h *Headers) Del(name string) {
	h.fields = slices.DeleteFunc(h.fields, func(f Field) bool {
		return sameName(f.Name, name)
	})
}

// Fields returns a copy of all the fields in insertion order.
func (h *Headers) Fields() []Field {
	return slices.Clone(h.fields)
}

func (h *Headers) ToRawFields() []http.Field {
	raw := make([]http.Field, 0, len(h.fields))
	for _, f := range h.fields {
		raw = append(raw, http.Field{Name: []byte(f.Name), Value: []byte(f.Value)})
	}
	return raw
}

func (h *Headers) Clone() *Headers {
	return &Headers{fields: slices.Clone(h.fields)}
}

// String renders the header block: one "Name: Value" line per field, each ending with CRLF,
// then an empty CRLF line.
func (h *Headers) String() string {
	b := new(strings.Builder)
	for _, f := range h.fields {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.Write(http.CRLF)
	}
	b.Write(http.CRLF)

	return b.String()
}

func (h *Headers) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, h.String())
	return int64(n), err
}

func (h *Headers) ContentType() (string, bool) { return h.Get("Content-Type") }

func (h *Headers) SetContentType(v string) { h.Set("Content-Type", v) }

// ContentLength returns nil when the field is absent.
func (h *Headers) ContentLength() (*uint, error) {
	v, ok := h.Get("Content-Length")
	if !ok {
		return nil, nil
	}

	// Any value greater than or equal to 0 is valid.
	// But let's restrict it to 64bit uint.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.6-10
	len64, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse Content-Length")
	}

	l := uint(len64)
	return &l, nil
}

func (h *Headers) SetContentLength(n uint) {
	h.Set("Content-Length", strconv.FormatUint(uint64(n), 10))
}

// ContentIsText reports whether Content-Type is a text/* type.
func (h *Headers) ContentIsText() bool {
	ct, ok := h.ContentType()
	return ok && strings.HasPrefix(ct, "text/")
}

func (h *Headers) ContentIsXHTML() bool {
	ct, ok := h.ContentType()
	if !ok {
		return false
	}
	return ct == "application/xhtml+xml" || ct == "application/vnd.wap.xhtml+xml"
}

func (h *Headers) ContentIsXML() bool {
	ct, ok := h.ContentType()
	if !ok {
		return false
	}
	return ct == "text/xml" || ct == "application/xml" || strings.HasSuffix(ct, "+xml")
}

func (h *Headers) dateField(name string) (time.Time, bool, error) {
	v, ok := h.Get(name)
	if !ok {
		return time.Time{}, false, nil
	}

	t, err := ParseDate(v)
	if err != nil {
		return time.Time{}, true, errors.Wrapf(err, "parsing %s", name)
	}

	return t, true, nil
}

// setDateField leaves the headers untouched when in cannot be converted.
func (h *Headers) setDateField(name string, in DateInput) error {
	v, err := in.Format()
	if err != nil {
		return errors.Wrapf(err, "setting %s", name)
	}

	h.Set(name, v)
	return nil
}

func (h *Headers) LastModified() (time.Time, bool, error) { return h.dateField("Last-Modified") }

func (h *Headers) SetLastModified(in DateInput) error { return h.setDateField("Last-Modified", in) }

func (h *Headers) Date() (time.Time, bool, error) { return h.dateField("Date") }

func (h *Headers) SetDate(in DateInput) error { return h.setDateField("Date", in) }

func (h *Headers) Expires() (time.Time, bool, error) { return h.dateField("Expires") }

func (h *Headers) SetExpires(in DateInput) error { return h.setDateField("Expires", in) }

func (h *Headers) IfModifiedSince() (time.Time, bool, error) {
	return h.dateField("If-Modified-Since")
}

func (h *Headers) SetIfModifiedSince(in DateInput) error {
	return h.setDateField("If-Modified-Since", in)
}

func (h *Headers) IfUnmodifiedSince() (time.Time, bool, error) {
	return h.dateField("If-Unmodified-Since")
}

func (h *Headers) SetIfUnmodifiedSince(in DateInput) error {
	return h.setDateField("If-Unmodified-Since", in)
}
