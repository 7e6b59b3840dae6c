package parser

import "errors"

var (
	// ErrSkipBody may be returned from OnHeadersComplete. The message is then treated
	// as one without a body, regardless of its framing headers. This is how a response
	// to a HEAD request is handled.
	ErrSkipBody = errors.New("skip body")
	// ErrSkipBodyUpgrade is ErrSkipBody which additionally marks the message as an
	// upgrade, so the parser stops right after it.
	ErrSkipBodyUpgrade = errors.New("skip body and upgrade")
)

// Handler receives the events of the parsed stream. Spans handed to OnURL,
// OnHeaderField, OnHeaderValue and OnBody alias the buffer passed to Execute and
// are only valid until the callback returns: a consumer that needs them later must
// copy. A single logical element may be delivered in several consecutive spans, so
// consumers concatenate them.
//
// Returning a non-nil error aborts the parsing. The parser then stays in the failed
// state, reporting a *CallbackError carrying the returned error.
type Handler interface {
	OnMessageBegin() error
	OnURL(span []byte) error
	OnHeaderField(span []byte) error
	OnHeaderValue(span []byte) error
	OnHeadersComplete() error
	OnBody(span []byte) error
	OnMessageComplete() error
}

// StatusHandler is an optional extension of Handler, receiving the reason phrase of
// a response status line.
type StatusHandler interface {
	OnStatus(span []byte) error
}

// ChunkHandler is an optional extension of Handler, notified about the boundaries
// of chunks of a chunked body. The last chunk is reported with size 0 and completes
// after the trailer section.
type ChunkHandler interface {
	OnChunkHeader(size uint64) error
	OnChunkComplete() error
}

// NopHandler ignores every event. It's meant to be embedded into handlers which are
// interested only in a subset of them.
type NopHandler struct{}

func (NopHandler) OnMessageBegin() error      { return nil }
func (NopHandler) OnURL([]byte) error         { return nil }
func (NopHandler) OnHeaderField([]byte) error { return nil }
func (NopHandler) OnHeaderValue([]byte) error { return nil }
func (NopHandler) OnHeadersComplete() error   { return nil }
func (NopHandler) OnBody([]byte) error        { return nil }
func (NopHandler) OnMessageComplete() error   { return nil }
