package semantic

type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodPatch   Method = "PATCH"
)

func (m Method) String() string { return string(m) }

// URL is an opaque request target. It is stored and compared, never parsed.
type URL struct{ raw string }

func NewURL(raw string) URL { return URL{raw: raw} }

func (u URL) String() string { return u.raw }

func (u URL) IsZero() bool { return u.raw == "" }
