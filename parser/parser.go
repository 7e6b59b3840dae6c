// Package parser implements a streaming, incremental HTTP/1.x message parser. Bytes
// are fed in arbitrary fragments and the structure of the message is reported to a
// Handler through callbacks as soon as it's recognized, without buffering the message.
package parser

import (
	"errors"

	"github.com/indigo-web/httpparser/config"
	"github.com/indigo-web/httpparser/http/method"
	"github.com/indigo-web/httpparser/http/proto"
	"github.com/indigo-web/httpparser/http/status"
)

// Mode selects which kind of messages the parser expects.
type Mode uint8

const (
	Request Mode = iota
	Response
	// Both autodetects the kind of the first message and sticks with it.
	Both
)

func (m Mode) String() string {
	switch m {
	case Request:
		return "request"
	case Response:
		return "response"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

const (
	// maxNameLen is the longest field name the parser tries to recognize.
	maxNameLen = len("transfer-encoding")
	// maxTokenLen is the longest list element recognized in Connection and
	// Transfer-Encoding values.
	maxTokenLen = 16
	// maxChunkSizeDigits is 64 bits written in hex.
	maxChunkSizeDigits = 16
)

// Parser is a resumable HTTP/1.x state machine. It holds no reference to the data
// once Execute returns. It isn't safe for concurrent use, see Guard for that.
type Parser struct {
	cfg     *config.Config
	handler Handler
	status  StatusHandler
	chunks  ChunkHandler

	mode  Mode
	kind  Mode
	state parserState
	flags flags

	errno  Errno
	err    error
	cause  error
	paused bool

	method        method.Method
	statusCode    status.Code
	major, minor  uint8
	contentLength uint64
	chunkDigits   uint8

	nread   int
	lineLen int
	fields  int
	index   int

	methodBuf [method.MaxLength]byte
	methodLen uint8

	hstate  headerState
	name    [maxNameLen]byte
	nameLen uint8
	// nameOverflow means the name is longer than any recognized one
	nameOverflow bool

	lenState lengthState

	token    [maxTokenLen]byte
	tokenLen uint8
	tokState tokenState

	// withheld is the whitespace seen at the end of a value, which may be trailing
	withheld   []uint64
	wsLen      int
	wsReleased int
	wsScratch  [64]byte

	valueEmitted bool
}

// New returns a parser in its initial state for the given mode. Passing nil cfg uses
// config.Default(). If h implements StatusHandler or ChunkHandler, those callbacks are
// invoked as well.
func New(h Handler, mode Mode, cfg *config.Config) *Parser {
	if cfg == nil {
		cfg = config.Default()
	}

	p := &Parser{
		cfg:     cfg,
		handler: h,
	}
	p.status, _ = h.(StatusHandler)
	p.chunks, _ = h.(ChunkHandler)
	p.Init(mode)

	return p
}

// Init resets the parser to the initial state of the mode, forgetting everything about
// the previous stream, including errors and the paused flag. The handler and the config
// are kept.
func (p *Parser) Init(mode Mode) {
	*p = Parser{
		cfg:     p.cfg,
		handler: p.handler,
		status:  p.status,
		chunks:  p.chunks,
		// the bitset memory is kept, it's overwritten before being read
		withheld: p.withheld[:0],
		mode:     mode,
		kind:     mode,
	}
	p.state = p.startState()
}

func (p *Parser) startState() parserState {
	switch p.kind {
	case Request:
		return eStartReq
	case Response:
		return eStartRes
	default:
		return eStartReqOrRes
	}
}

// Pause stops the parser. When called from inside a callback, Execute returns right
// after the callback with ErrPaused, reporting the bytes consumed so far. Until Resume
// is called, every Execute call consumes nothing and returns ErrPaused.
func (p *Parser) Pause() {
	p.paused = true
}

// Resume lifts the pause. Parsing continues from where it stopped with the next
// Execute call, which must be given the bytes that weren't consumed.
func (p *Parser) Resume() {
	p.paused = false
}

func (p *Parser) Paused() bool {
	return p.paused
}

// Mode returns the mode the parser was initialized with.
func (p *Parser) Mode() Mode {
	return p.mode
}

// Kind returns the kind of messages being parsed. In Both mode it stays Both until
// the first message is recognized.
func (p *Parser) Kind() Mode {
	return p.kind
}

// Major returns the major protocol version of the current message.
func (p *Parser) Major() uint8 {
	return p.major
}

// Minor returns the minor protocol version of the current message.
func (p *Parser) Minor() uint8 {
	return p.minor
}

// Proto returns the protocol of the current message.
func (p *Parser) Proto() proto.Proto {
	return proto.Parse(p.major, p.minor)
}

// Method returns the method of the current request. Unknown for responses.
func (p *Parser) Method() method.Method {
	return p.method
}

// StatusCode returns the status code of the current response. Zero for requests.
func (p *Parser) StatusCode() status.Code {
	return p.statusCode
}

// Upgrade reports whether the current message switched the connection to another
// protocol. Once it completes, the parser stops consuming and the bytes following the
// message belong to the new protocol.
func (p *Parser) Upgrade() bool {
	if p.flags&fForceUpgrade != 0 {
		return true
	}

	if p.kind == Request && p.method == method.CONNECT {
		return true
	}

	return p.flags&fUpgrade != 0 && p.flags&fConnUpgrade != 0 &&
		(p.kind == Request || p.statusCode == status.SwitchingProtocols)
}

// Chunked reports whether the body of the current message uses the chunked coding.
func (p *Parser) Chunked() bool {
	return p.flags&fChunked != 0
}

// ContentLength returns the amount of body bytes still expected by the current
// message. It's meaningful only when HasContentLength is true.
func (p *Parser) ContentLength() uint64 {
	return p.contentLength
}

// HasContentLength reports whether the current message carries a Content-Length.
func (p *Parser) HasContentLength() bool {
	return p.flags&fContentLength != 0
}

// BodyIsFinal reports, while inside OnBody, whether the span is the last one of the
// body.
func (p *Parser) BodyIsFinal() bool {
	return p.state == eMessageDone
}

// ShouldKeepAlive reports whether the connection may be reused after the current
// message. Meaningful from OnHeadersComplete on.
func (p *Parser) ShouldKeepAlive() bool {
	if p.major > 1 || (p.major == 1 && p.minor >= 1) {
		if p.flags&fConnClose != 0 {
			return false
		}
	} else if p.flags&fConnKeepAlive == 0 {
		return false
	}

	return !p.needsEOF()
}

// needsEOF reports whether the body of the current message is terminated by the
// end of the stream.
func (p *Parser) needsEOF() bool {
	if p.kind == Request {
		return false
	}

	if p.statusCode.Bodyless() || p.flags&fSkipBody != 0 {
		return false
	}

	if p.flags&fChunked != 0 {
		return false
	}

	if p.flags&fUnknownCoding != 0 {
		return true
	}

	return p.flags&fContentLength == 0
}

// Errno returns the kind of the error the parser failed with, ErrPaused while paused
// and OK otherwise.
func (p *Parser) Errno() Errno {
	if p.errno == OK && p.paused {
		return ErrPaused
	}

	return p.errno
}

// ErrorName returns the symbolic name of the current Errno, e.g. HPE_OK.
func (p *Parser) ErrorName() string {
	return p.Errno().Name()
}

// Err returns the error the parser failed with, or nil.
func (p *Parser) Err() error {
	return p.err
}

// Finish signals the end of the stream. A body delimited by the connection close is
// completed, a stream ending between messages is fine. Any other position means the
// stream was cut, which is reported with ErrInvalidEOFState.
func (p *Parser) Finish() error {
	if p.errno != OK {
		return p.err
	}

	if p.paused {
		return ErrPaused
	}

	if e := p.settle(); e != OK {
		return p.stopErr(e)
	}

	switch p.state {
	case eBodyIdentityEOF:
		p.state = eMessageDone
		if e := p.settle(); e != OK {
			return p.stopErr(e)
		}

		return nil
	case eStartReq, eStartRes, eStartReqOrRes, eClosed, eUpgraded:
		return nil
	default:
		return p.fail(ErrInvalidEOFState)
	}
}

// settle drives the parser through pseudo-states which don't consume bytes.
func (p *Parser) settle() Errno {
	for {
		var e Errno

		switch p.state {
		case eHeadersDone:
			e = p.headersDone()
		case eMessageDone:
			e = p.messageDone()
		default:
			return OK
		}

		if e != OK {
			return e
		}
	}
}

// checkFraming validates the framing headers once the head is complete.
func (p *Parser) checkFraming() Errno {
	if p.flags&fChunked != 0 && p.flags&fContentLength != 0 {
		return ErrUnexpectedContentLength
	}

	if p.kind == Request && p.flags&fUnknownCoding != 0 && p.flags&fChunked == 0 {
		return ErrInvalidTransferEncoding
	}

	return OK
}

func (p *Parser) headersDone() Errno {
	err := p.handler.OnHeadersComplete()
	switch {
	case err == nil:
	case errors.Is(err, ErrSkipBody):
		p.flags |= fSkipBody
	case errors.Is(err, ErrSkipBodyUpgrade):
		p.flags |= fSkipBody | fForceUpgrade
	default:
		p.cause = err
		return ErrCBHeadersComplete
	}

	p.nread = 0
	p.state = p.bodyState()
	if p.paused {
		return ErrPaused
	}

	return OK
}

// bodyState selects how the body of the current message is delimited.
func (p *Parser) bodyState() parserState {
	switch {
	case p.flags&fSkipBody != 0:
		return eMessageDone
	case p.kind == Request && p.method == method.CONNECT:
		return eMessageDone
	case p.kind == Response && p.statusCode.Bodyless():
		return eMessageDone
	case p.flags&fChunked != 0:
		return eChunkSizeStart
	case p.kind == Response && p.flags&fUnknownCoding != 0:
		return eBodyIdentityEOF
	case p.flags&fContentLength != 0:
		if p.contentLength == 0 {
			return eMessageDone
		}

		return eBodyIdentity
	case p.Upgrade():
		return eMessageDone
	case p.needsEOF():
		return eBodyIdentityEOF
	default:
		return eMessageDone
	}
}

func (p *Parser) messageDone() Errno {
	switch {
	case p.Upgrade():
		p.state = eUpgraded
	case !p.ShouldKeepAlive():
		p.state = eClosed
	default:
		p.state = p.startState()
	}

	return p.cb(ErrCBMessageComplete, p.handler.OnMessageComplete())
}

// beginMessage resets everything describing the previous message.
func (p *Parser) beginMessage() {
	p.flags = 0
	p.method = method.Unknown
	p.statusCode = 0
	p.major, p.minor = 0, 0
	p.contentLength = 0
	p.nread, p.lineLen = 1, 1
	p.fields = 0
	p.index = 0
	p.methodLen = 0
	p.hstate = hGeneral
	p.cause = nil
}

// cb turns the outcome of a callback into an Errno.
func (p *Parser) cb(errno Errno, err error) Errno {
	if err != nil {
		p.cause = err
		return errno
	}

	if p.paused {
		return ErrPaused
	}

	return OK
}

// stop ends the Execute call, having consumed n bytes.
func (p *Parser) stop(n int, e Errno) (int, error) {
	return n, p.stopErr(e)
}

func (p *Parser) stopErr(e Errno) error {
	if e == ErrPaused {
		return ErrPaused
	}

	return p.fail(e)
}

func (p *Parser) fail(e Errno) error {
	p.errno = e
	p.state = eDead
	if p.cause != nil {
		p.err = &CallbackError{Errno: e, Err: p.cause}
	} else {
		p.err = e
	}

	return p.err
}
