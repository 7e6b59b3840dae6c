package events

import (
	"errors"
	"testing"

	"github.com/indigo-web/httpparser/parser"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	merged := Merge([]Event{
		{Kind: MessageBegin},
		{Kind: URL, Data: "/fav"},
		{Kind: URL, Data: "icon.ico"},
		{Kind: HeaderField, Data: "Ho"},
		{Kind: HeaderField, Data: "st"},
		{Kind: HeaderValue, Data: "a"},
		{Kind: HeaderField, Data: "Accept"},
		{Kind: HeaderValue, Data: ""},
		{Kind: HeadersComplete},
		{Kind: ChunkHeader, Size: 1},
		{Kind: ChunkHeader, Size: 2},
	})

	require.Equal(t, []Event{
		{Kind: MessageBegin},
		{Kind: URL, Data: "/favicon.ico"},
		{Kind: HeaderField, Data: "Host"},
		{Kind: HeaderValue, Data: "a"},
		{Kind: HeaderField, Data: "Accept"},
		{Kind: HeaderValue, Data: ""},
		{Kind: HeadersComplete},
		{Kind: ChunkHeader, Size: 1},
		{Kind: ChunkHeader, Size: 2},
	}, merged)
}

func TestSplit(t *testing.T) {
	require.Equal(t, [][]byte{[]byte("abc"), []byte("def"), []byte("g")}, Split([]byte("abcdefg"), 3))
	require.Equal(t, [][]byte{[]byte("abc")}, Split([]byte("abc"), 0))
	require.Empty(t, Split(nil, 3))
}

func TestRecorder(t *testing.T) {
	errStop := errors.New("stop")
	rec, p := New(parser.Request, nil)
	rec.PauseOn = func(e Event) bool {
		return e.Kind == URL
	}
	rec.Returns = map[Kind]error{HeaderField: errStop}

	data := []byte("GET / HTTP/1.1\r\nHost: a\r\n\r\n")
	n, err := p.Execute(data)
	require.ErrorIs(t, err, parser.ErrPaused)
	require.Equal(t, []Event{{Kind: MessageBegin}, {Kind: URL, Data: "/"}}, rec.Events)

	p.Resume()
	_, err = p.Execute(data[n:])
	require.ErrorIs(t, err, errStop)
	require.Equal(t, Event{Kind: HeaderField, Data: "Host"}, rec.Events[len(rec.Events)-1])

	rec.Reset()
	require.Empty(t, rec.Events)
}

func TestKind(t *testing.T) {
	text, err := HeaderValue.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "header_value", string(text))
	require.Equal(t, "unknown", Kind(200).String())
	require.True(t, Body.Spans())
	require.False(t, ChunkHeader.Spans())
}
