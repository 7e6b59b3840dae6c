// Package message rebuilds whole messages out of the events of the streaming parser.
package message

import (
	"bytes"
	"strings"

	"github.com/indigo-web/httpparser/http/method"
	"github.com/indigo-web/httpparser/http/proto"
	"github.com/indigo-web/httpparser/http/status"
	"github.com/indigo-web/httpparser/kv"
	"github.com/indigo-web/httpparser/parser"
)

// Message is a parsed request or response. Strings and the body point into the memory
// of the Collector, so a Message is valid only until the callback it was passed to
// returns. Use Clone to keep it.
type Message struct {
	// Kind is either parser.Request or parser.Response.
	Kind   parser.Mode
	Method method.Method
	URL    string
	Status status.Code
	// Reason is the reason phrase of a response.
	Reason       string
	Proto        proto.Proto
	Major, Minor uint8
	Headers      *kv.Storage
	// Trailers are fields which followed a chunked body.
	Trailers  *kv.Storage
	Body      []byte
	KeepAlive bool
	Upgrade   bool
	Chunked   bool
}

// newMessage returns a message with room for n header fields.
func newMessage(n int) Message {
	return Message{
		Headers:  kv.NewPrealloc(n),
		Trailers: kv.New(),
	}
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	clone := *m
	clone.URL = strings.Clone(m.URL)
	clone.Reason = strings.Clone(m.Reason)
	clone.Headers = m.Headers.Clone()
	clone.Trailers = m.Trailers.Clone()
	clone.Body = bytes.Clone(m.Body)

	return &clone
}

// reset prepares the message for reuse, keeping allocated storages.
func (m *Message) reset() {
	headers, trailers := m.Headers.Clear(), m.Trailers.Clear()
	*m = Message{
		Headers:  headers,
		Trailers: trailers,
	}
}
