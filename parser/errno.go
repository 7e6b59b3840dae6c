package parser

// Errno is the kind of failure which stopped the parser. Every value implements
// error, so it can be matched with errors.Is against the error returned from
// Execute.
type Errno uint8

const (
	OK Errno = iota

	// callback-initiated aborts
	ErrCBMessageBegin
	ErrCBURL
	ErrCBHeaderField
	ErrCBHeaderValue
	ErrCBHeadersComplete
	ErrCBBody
	ErrCBMessageComplete
	ErrCBStatus
	ErrCBChunkHeader
	ErrCBChunkComplete

	// parsing errors
	ErrInvalidEOFState
	ErrHeaderOverflow
	ErrHeaderLineOverflow
	ErrTooManyHeaders
	ErrClosedConnection
	ErrInvalidVersion
	ErrInvalidStatus
	ErrInvalidMethod
	ErrInvalidURL
	ErrLFExpected
	ErrInvalidHeaderToken
	ErrInvalidContentLength
	ErrUnexpectedContentLength
	ErrInvalidTransferEncoding
	ErrInvalidChunkSize
	ErrInvalidConstant
	ErrStrict
	ErrPaused

	errnoCount
)

var errnoNames = [errnoCount]string{
	OK:                         "HPE_OK",
	ErrCBMessageBegin:          "HPE_CB_message_begin",
	ErrCBURL:                   "HPE_CB_url",
	ErrCBHeaderField:           "HPE_CB_header_field",
	ErrCBHeaderValue:           "HPE_CB_header_value",
	ErrCBHeadersComplete:       "HPE_CB_headers_complete",
	ErrCBBody:                  "HPE_CB_body",
	ErrCBMessageComplete:       "HPE_CB_message_complete",
	ErrCBStatus:                "HPE_CB_status",
	ErrCBChunkHeader:           "HPE_CB_chunk_header",
	ErrCBChunkComplete:         "HPE_CB_chunk_complete",
	ErrInvalidEOFState:         "HPE_INVALID_EOF_STATE",
	ErrHeaderOverflow:          "HPE_HEADER_OVERFLOW",
	ErrHeaderLineOverflow:      "HPE_HEADER_LINE_OVERFLOW",
	ErrTooManyHeaders:          "HPE_TOO_MANY_HEADERS",
	ErrClosedConnection:        "HPE_CLOSED_CONNECTION",
	ErrInvalidVersion:          "HPE_INVALID_VERSION",
	ErrInvalidStatus:           "HPE_INVALID_STATUS",
	ErrInvalidMethod:           "HPE_INVALID_METHOD",
	ErrInvalidURL:              "HPE_INVALID_URL",
	ErrLFExpected:              "HPE_LF_EXPECTED",
	ErrInvalidHeaderToken:      "HPE_INVALID_HEADER_TOKEN",
	ErrInvalidContentLength:    "HPE_INVALID_CONTENT_LENGTH",
	ErrUnexpectedContentLength: "HPE_UNEXPECTED_CONTENT_LENGTH",
	ErrInvalidTransferEncoding: "HPE_INVALID_TRANSFER_ENCODING",
	ErrInvalidChunkSize:        "HPE_INVALID_CHUNK_SIZE",
	ErrInvalidConstant:         "HPE_INVALID_CONSTANT",
	ErrStrict:                  "HPE_STRICT",
	ErrPaused:                  "HPE_PAUSED",
}

var errnoDescriptions = [errnoCount]string{
	OK:                         "success",
	ErrCBMessageBegin:          "the on_message_begin callback failed",
	ErrCBURL:                   "the on_url callback failed",
	ErrCBHeaderField:           "the on_header_field callback failed",
	ErrCBHeaderValue:           "the on_header_value callback failed",
	ErrCBHeadersComplete:       "the on_headers_complete callback failed",
	ErrCBBody:                  "the on_body callback failed",
	ErrCBMessageComplete:       "the on_message_complete callback failed",
	ErrCBStatus:                "the on_status callback failed",
	ErrCBChunkHeader:           "the on_chunk_header callback failed",
	ErrCBChunkComplete:         "the on_chunk_complete callback failed",
	ErrInvalidEOFState:         "stream ended at an unexpected time",
	ErrHeaderOverflow:          "too many header bytes seen; overflow detected",
	ErrHeaderLineOverflow:      "a single line of the message head is too long",
	ErrTooManyHeaders:          "too many header fields in a single section",
	ErrClosedConnection:        "data received after completed connection: close message",
	ErrInvalidVersion:          "invalid HTTP version",
	ErrInvalidStatus:           "invalid HTTP status code",
	ErrInvalidMethod:           "invalid HTTP method",
	ErrInvalidURL:              "invalid URL",
	ErrLFExpected:              "LF character expected",
	ErrInvalidHeaderToken:      "invalid character in header",
	ErrInvalidContentLength:    "invalid character in content-length header",
	ErrUnexpectedContentLength: "unexpected content-length header",
	ErrInvalidTransferEncoding: "request has invalid transfer-encoding",
	ErrInvalidChunkSize:        "invalid character in chunk size header",
	ErrInvalidConstant:         "invalid constant string",
	ErrStrict:                  "strict mode assertion failed",
	ErrPaused:                  "parser is paused",
}

// Name returns the symbolic name of the error, e.g. HPE_INVALID_METHOD.
func (e Errno) Name() string {
	if e >= errnoCount {
		return "HPE_UNKNOWN"
	}

	return errnoNames[e]
}

// Description returns a human-readable explanation of the error.
func (e Errno) Description() string {
	if e >= errnoCount {
		return "an unknown error occurred"
	}

	return errnoDescriptions[e]
}

func (e Errno) Error() string {
	return e.Name() + ": " + e.Description()
}

// CallbackError is returned when a callback aborted parsing. Errno tells which
// callback it was, Err is what the callback returned.
type CallbackError struct {
	Errno Errno
	Err   error
}

func (c *CallbackError) Error() string {
	return c.Errno.Name() + ": " + c.Err.Error()
}

func (c *CallbackError) Unwrap() []error {
	return []error{c.Errno, c.Err}
}
