// Package http implements the wire level of Hypertext Transfer Protocol (HTTP/1.x) messages:
// request and status lines, field lines and the header block that ends with an empty line.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
