package proto

// Proto is a protocol version known by its major and minor digits.
type Proto uint8

const (
	Unknown Proto = 0
	HTTP10  Proto = 1 << iota
	HTTP11
	HTTP2

	HTTP1 = HTTP10 | HTTP11
)

func (p Proto) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	default:
		return ""
	}
}

// Parse maps the version digits, as reported by the parser, to a known protocol. The
// parser itself accepts any single digit pair, so e.g. HTTP/1.2 yields Unknown here.
func Parse(major, minor uint8) Proto {
	switch {
	case major == 1 && minor == 0:
		return HTTP10
	case major == 1 && minor == 1:
		return HTTP11
	case major == 2 && minor == 0:
		return HTTP2
	default:
		return Unknown
	}
}
