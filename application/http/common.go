package http

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	VT   byte = 0x0B
	FF   byte = 0x0C
)

var (
	OWS         = []byte{SP, HTAB}
	CRLF        = []byte{CR, LF}
	Whitespaces = []byte{SP, HTAB, VT, FF, CR}
)

func IsWhitespace(r rune) bool {
	for _, ws := range Whitespaces {
		if r == rune(ws) {
			return true
		}
	}
	return false
}

// IsValidToken reports whether s is a non-empty token.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		// ALPHA
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			continue
		}
		// DIGIT
		if '0' <= c && c <= '9' {
			continue
		}

		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+',
			'-', '.', '^', '_', '`', '|', '~':
			continue
		}

		return false
	}

	return true
}
