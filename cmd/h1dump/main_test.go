package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/indigo-web/httpparser/config"
	"github.com/indigo-web/httpparser/internal/events"
	"github.com/indigo-web/httpparser/parser"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decode(t *testing.T, out string) (evs []events.Event) {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var ev struct {
			Kind string `json:"kind"`
			Data string `json:"data"`
		}
		require.NoError(t, jsoniter.UnmarshalFromString(line, &ev))
		evs = append(evs, events.Event{Kind: kindOf(t, ev.Kind), Data: ev.Data})
	}

	return evs
}

func kindOf(t *testing.T, name string) events.Kind {
	for k := events.MessageBegin; k <= events.MessageComplete; k++ {
		if k.String() == name {
			return k
		}
	}

	require.Failf(t, "unknown event kind", "%q", name)
	return 0
}

func TestDump(t *testing.T) {
	const request = "GET /hello HTTP/1.1\r\nHost: localhost\r\nContent-Length: 4\r\n\r\nbody"

	t.Run("request", func(t *testing.T) {
		for _, chunk := range []int{1, 5, 4096} {
			var out bytes.Buffer
			err := dump(zap.NewNop(), strings.NewReader(request), &out, parser.Request, config.Default(), chunk)
			require.NoError(t, err)

			evs := events.Merge(decode(t, out.String()))
			require.Equal(t, []events.Event{
				{Kind: events.MessageBegin},
				{Kind: events.URL, Data: "/hello"},
				{Kind: events.HeaderField, Data: "Host"},
				{Kind: events.HeaderValue, Data: "localhost"},
				{Kind: events.HeaderField, Data: "Content-Length"},
				{Kind: events.HeaderValue, Data: "4"},
				{Kind: events.HeadersComplete},
				{Kind: events.Body, Data: "body"},
				{Kind: events.MessageComplete},
			}, evs, "chunk of %d", chunk)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		var out bytes.Buffer
		err := dump(zap.NewNop(), strings.NewReader("GET / HTTP/1.1\r\nHost\r\n\r\n"), &out, parser.Request, config.Default(), 16)
		require.ErrorIs(t, err, parser.ErrInvalidHeaderToken)
	})

	t.Run("truncated", func(t *testing.T) {
		var out bytes.Buffer
		err := dump(zap.NewNop(), strings.NewReader(request[:len(request)-1]), &out, parser.Request, config.Default(), 16)
		require.ErrorIs(t, err, parser.ErrInvalidEOFState)
	})

	t.Run("upgrade", func(t *testing.T) {
		var out bytes.Buffer
		data := "CONNECT example.com:443 HTTP/1.1\r\n\r\n\x16\x03\x01"
		err := dump(zap.NewNop(), strings.NewReader(data), &out, parser.Request, config.Default(), 7)
		require.NoError(t, err)
		evs := decode(t, out.String())
		require.Equal(t, events.MessageComplete, evs[len(evs)-1].Kind)
	})
}

func TestParseMode(t *testing.T) {
	for input, want := range map[string]parser.Mode{
		"request": parser.Request,
		"resp":    parser.Response,
		"both":    parser.Both,
	} {
		mode, err := parseMode(input)
		require.NoError(t, err)
		require.Equal(t, want, mode)
	}

	_, err := parseMode("duplex")
	require.Error(t, err)
}
