package client

import (
	"time"

	"httpkit/application/http"
	"httpkit/application/http/semantic"
)

// MergePolicy decides how client default headers and request headers are combined.
type MergePolicy uint8

const (
	// MergeDefaultsFirst puts every default field before the request's fields.
	// Both are sent, but a lookup by name sees the default value first.
	MergeDefaultsFirst MergePolicy = iota
	// MergeRequestFirst puts the request's fields first and drops defaults the request
	// already names, so request headers override defaults.
	MergeRequestFirst
)

func (p MergePolicy) String() string {
	switch p {
	case MergeDefaultsFirst:
		return "defaults-first"
	case MergeRequestFirst:
		return "request-first"
	}
	return "unknown"
}

const (
	DefaultUserAgent = "httpkit"
	DefaultTimeout   = 60 * time.Second
)

type Options struct {
	// UserAgent is added to the default headers unless they already carry one.
	UserAgent string
	// Timeout is handed to the transport with every request.
	Timeout time.Duration
	// DefaultHeaders are merged into every request. Nil means "Connection: keep-alive".
	DefaultHeaders *semantic.Headers
	Merge          MergePolicy

	// UseReceivedReasonPhrase uses reason phrase from response.
	// If false, the reason phrase will instead be filled with default value for the status code.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4-9
	UseReceivedReasonPhrase bool
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}

	if o.DefaultHeaders == nil {
		o.DefaultHeaders = semantic.NewHeaders(semantic.Field{Name: "Connection", Value: "keep-alive"})
	} else {
		o.DefaultHeaders = o.DefaultHeaders.Clone()
	}
	if _, ok := o.DefaultHeaders.Get("User-Agent"); !ok {
		o.DefaultHeaders.Add("User-Agent", o.UserAgent)
	}

	return o
}

type WireOptions struct {
	Encode http.EncodeOptions
	Decode http.DecodeOptions

	// MaxBodySize bounds response bodies. Zero means no limit.
	MaxBodySize uint
}

// DefaultWireOptions bounds every line and body a server can send.
var DefaultWireOptions = WireOptions{
	Encode: http.DefaultEncodeOptions,
	Decode: http.DecodeOptions{
		MaxFieldLineLength:  8000,
		MaxStatusLineLength: 8000,
	},
	MaxBodySize: 10 << 20,
}
