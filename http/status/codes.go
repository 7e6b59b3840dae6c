package status

// Code is a response status code as it appears on the status line.
type Code uint16

// Codes the parser treats specially, plus a few common ones for convenience.
// See: https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	Continue           Code = 100 // RFC 9110, 15.2.1
	SwitchingProtocols Code = 101 // RFC 9110, 15.2.2
	Processing         Code = 102 // RFC 2518, 10.1
	EarlyHints         Code = 103 // RFC 8297

	OK        Code = 200 // RFC 9110, 15.3.1
	NoContent Code = 204 // RFC 9110, 15.3.5

	MovedPermanently Code = 301 // RFC 9110, 15.4.2
	Found            Code = 302 // RFC 9110, 15.4.3
	NotModified      Code = 304 // RFC 9110, 15.4.5

	BadRequest Code = 400 // RFC 9110, 15.5.1
	NotFound   Code = 404 // RFC 9110, 15.5.5

	InternalServerError Code = 500 // RFC 9110, 15.6.1
)

// Max is the greatest value three digits can hold.
const Max Code = 999

// Informational reports whether the code is 1xx.
func (c Code) Informational() bool {
	return c >= 100 && c < 200
}

// Bodyless reports whether a response with this code never carries content,
// no matter what its framing headers say (RFC 9112, 6.3).
func (c Code) Bodyless() bool {
	return c.Informational() || c == NoContent || c == NotModified
}
