// Package events records the callbacks of a parser as a flat list of events.
package events

import (
	"github.com/indigo-web/httpparser/config"
	"github.com/indigo-web/httpparser/parser"
)

type Kind uint8

const (
	MessageBegin Kind = iota
	URL
	Status
	HeaderField
	HeaderValue
	HeadersComplete
	Body
	ChunkHeader
	ChunkComplete
	MessageComplete
)

var kindNames = [...]string{
	MessageBegin:    "message_begin",
	URL:             "url",
	Status:          "status",
	HeaderField:     "header_field",
	HeaderValue:     "header_value",
	HeadersComplete: "headers_complete",
	Body:            "body",
	ChunkHeader:     "chunk_header",
	ChunkComplete:   "chunk_complete",
	MessageComplete: "message_complete",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Spans tells whether the events of the kind carry data which may arrive in several
// consecutive runs.
func (k Kind) Spans() bool {
	switch k {
	case URL, Status, HeaderField, HeaderValue, Body:
		return true
	default:
		return false
	}
}

type Event struct {
	Kind Kind   `json:"kind"`
	Data string `json:"data,omitempty"`
	Size uint64 `json:"size,omitempty"`
}

// Recorder is a parser.Handler which copies every event it's given.
type Recorder struct {
	Events []Event
	// Parser is paused after every event PauseOn returns true for.
	Parser  *parser.Parser
	PauseOn func(Event) bool
	// Returns maps a kind to the error its callback returns.
	Returns map[Kind]error
	// OnEvent, if set, is called for every recorded event.
	OnEvent func(Event)
}

// New returns a recorder attached to a new parser.
func New(mode parser.Mode, cfg *config.Config) (*Recorder, *parser.Parser) {
	r := new(Recorder)
	r.Parser = parser.New(r, mode, cfg)

	return r, r.Parser
}

func (r *Recorder) record(ev Event) error {
	r.Events = append(r.Events, ev)
	if r.OnEvent != nil {
		r.OnEvent(ev)
	}

	if r.PauseOn != nil && r.Parser != nil && r.PauseOn(ev) {
		r.Parser.Pause()
	}

	return r.Returns[ev.Kind]
}

func (r *Recorder) span(kind Kind, data []byte) error {
	return r.record(Event{Kind: kind, Data: string(data)})
}

func (r *Recorder) OnMessageBegin() error        { return r.record(Event{Kind: MessageBegin}) }
func (r *Recorder) OnURL(b []byte) error         { return r.span(URL, b) }
func (r *Recorder) OnStatus(b []byte) error      { return r.span(Status, b) }
func (r *Recorder) OnHeaderField(b []byte) error { return r.span(HeaderField, b) }
func (r *Recorder) OnHeaderValue(b []byte) error { return r.span(HeaderValue, b) }
func (r *Recorder) OnHeadersComplete() error     { return r.record(Event{Kind: HeadersComplete}) }
func (r *Recorder) OnBody(b []byte) error        { return r.span(Body, b) }
func (r *Recorder) OnChunkComplete() error       { return r.record(Event{Kind: ChunkComplete}) }
func (r *Recorder) OnMessageComplete() error     { return r.record(Event{Kind: MessageComplete}) }
func (r *Recorder) OnChunkHeader(size uint64) error {
	return r.record(Event{Kind: ChunkHeader, Size: size})
}

// Reset forgets the recorded events.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}

// Merge concatenates consecutive runs of the same kind, producing a view which doesn't
// depend on how the input was fragmented.
func Merge(events []Event) []Event {
	merged := make([]Event, 0, len(events))

	for _, ev := range events {
		if n := len(merged); n > 0 && ev.Kind.Spans() && merged[n-1].Kind == ev.Kind {
			merged[n-1].Data += ev.Data
			continue
		}

		merged = append(merged, ev)
	}

	return merged
}

// Split cuts the data into parts of n bytes. The last one may be shorter.
func Split(data []byte, n int) (parts [][]byte) {
	if n <= 0 {
		n = len(data)
	}

	for len(data) > n {
		parts = append(parts, data[:n])
		data = data[n:]
	}

	if len(data) > 0 {
		parts = append(parts, data)
	}

	return parts
}
