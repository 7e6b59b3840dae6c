package message

import (
	"errors"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/httpparser/config"
	"github.com/indigo-web/httpparser/http/method"
	"github.com/indigo-web/httpparser/http/proto"
	"github.com/indigo-web/httpparser/http/status"
	"github.com/indigo-web/httpparser/parser"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	simpleGET = "GET /favicon.ico HTTP/1.1\r\n" +
		"Host: 0.0.0.0=5000\r\n" +
		"Accept: */*\r\n" +
		"Accept: text/html\r\n" +
		"Content-Length: 9\r\n" +
		"\r\n" +
		"some body"

	chunkedPOST = "POST /upload?x=1 HTTP/1.1\r\n" +
		"Host: localhost\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"5\r\nhello\r\n" +
		"6\r\n world\r\n" +
		"0\r\n" +
		"X-Checksum: abc\r\n" +
		"\r\n"
)

func feedPartially(c *Collector, data []byte, n int) error {
	for len(data) > 0 {
		end := min(n, len(data))
		consumed, err := c.Feed(data[:end])
		if err != nil {
			return err
		}

		data = data[consumed:]
	}

	return nil
}

func TestCollect(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		msgs, err := Collect(parser.Request, []byte(simpleGET))
		require.NoError(t, err)
		require.Len(t, msgs, 1)

		msg := msgs[0]
		require.Equal(t, parser.Request, msg.Kind)
		require.Equal(t, method.GET, msg.Method)
		require.Equal(t, "/favicon.ico", msg.URL)
		require.Equal(t, proto.HTTP11, msg.Proto)
		require.Equal(t, "0.0.0.0=5000", msg.Headers.Value("host"))
		require.Equal(t, []string{"*/*", "text/html"}, msg.Headers.Values("Accept"))
		require.Equal(t, "some body", string(msg.Body))
		require.True(t, msg.KeepAlive)
		require.False(t, msg.Upgrade)
		require.True(t, msg.Trailers.Empty())
	})

	t.Run("pipelined with trailers", func(t *testing.T) {
		msgs, err := Collect(parser.Request, []byte(chunkedPOST+simpleGET))
		require.NoError(t, err)
		require.Len(t, msgs, 2)

		require.Equal(t, "/upload?x=1", msgs[0].URL)
		require.True(t, msgs[0].Chunked)
		require.Equal(t, "hello world", string(msgs[0].Body))
		require.Equal(t, "abc", msgs[0].Trailers.Value("x-checksum"))
		require.False(t, msgs[0].Headers.Has("X-Checksum"))

		require.Equal(t, "/favicon.ico", msgs[1].URL)
		require.True(t, msgs[1].Trailers.Empty())
	})

	t.Run("response until EOF", func(t *testing.T) {
		msgs, err := Collect(parser.Response, []byte("HTTP/1.0 200 OK\r\nServer: test\r\n\r\nbody until close"))
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		require.Equal(t, status.OK, msgs[0].Status)
		require.Equal(t, "OK", msgs[0].Reason)
		require.Equal(t, proto.HTTP10, msgs[0].Proto)
		require.Equal(t, "body until close", string(msgs[0].Body))
		require.False(t, msgs[0].KeepAlive)
	})

	t.Run("malformed", func(t *testing.T) {
		msgs, err := Collect(parser.Request, []byte(simpleGET+"BREW /pot HTTP/1.1\r\n\r\n"))
		require.ErrorIs(t, err, parser.ErrInvalidMethod)
		require.Len(t, msgs, 1)
	})
}

func TestCollector(t *testing.T) {
	t.Run("fragmented", func(t *testing.T) {
		data := []byte(chunkedPOST + simpleGET)
		want, err := Collect(parser.Request, data)
		require.NoError(t, err)

		for _, n := range []int{1, 2, 3, 7, 13} {
			var got []*Message
			c := NewCollector(parser.Request, nil, OnMessage(func(m *Message) error {
				got = append(got, m.Clone())
				return nil
			}))

			require.NoError(t, feedPartially(c, data, n))
			require.Equal(t, want, got, "parts of %d bytes", n)
		}
	})

	t.Run("random headers", func(t *testing.T) {
		var raw strings.Builder
		raw.WriteString("GET / HTTP/1.1\r\n")
		want := make(map[string]string)
		for i := 0; i < 20; i++ {
			key, value := uniuri.NewLen(16), uniuri.New()
			want[key] = value
			raw.WriteString(key + ": " + value + "\r\n")
		}
		raw.WriteString("\r\n")

		c := NewCollector(parser.Request, nil, OnMessage(func(m *Message) error {
			require.Equal(t, len(want), m.Headers.Len())
			for key, value := range m.Headers.Iter() {
				require.Equal(t, want[key], value)
			}

			return nil
		}))
		require.NoError(t, feedPartially(c, []byte(raw.String()), 5))
	})

	t.Run("message is reused", func(t *testing.T) {
		var kept, cloned []*Message
		c := NewCollector(parser.Request, nil, OnMessage(func(m *Message) error {
			kept = append(kept, m)
			cloned = append(cloned, m.Clone())
			return nil
		}))

		_, err := c.Feed([]byte(chunkedPOST + simpleGET))
		require.NoError(t, err)
		require.Same(t, kept[0], kept[1])
		require.Equal(t, "/upload?x=1", cloned[0].URL)
		require.Equal(t, "hello world", string(cloned[0].Body))
	})

	t.Run("skip body", func(t *testing.T) {
		var msgs []*Message
		c := NewCollector(parser.Response, nil,
			OnHeaders(func(m *Message) error {
				require.Empty(t, m.Body)
				return parser.ErrSkipBody
			}),
			OnMessage(func(m *Message) error {
				msgs = append(msgs, m.Clone())
				return nil
			}),
		)

		data := "HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\nHTTP/1.1 404 Not Found\r\nContent-Length: 5\r\n\r\n"
		n, err := c.Feed([]byte(data))
		require.NoError(t, err)
		require.Equal(t, len(data), n)
		require.Len(t, msgs, 2)
		require.Equal(t, status.NotFound, msgs[1].Status)
		require.Equal(t, "Not Found", msgs[1].Reason)
	})

	t.Run("skip body and upgrade", func(t *testing.T) {
		var upgraded bool
		c := NewCollector(parser.Response, nil,
			OnHeaders(func(*Message) error {
				return parser.ErrSkipBodyUpgrade
			}),
			OnMessage(func(m *Message) error {
				upgraded = m.Upgrade
				return nil
			}),
		)

		head := "HTTP/1.1 200 Connection established\r\n\r\n"
		n, err := c.Feed([]byte(head + "tunnel"))
		require.NoError(t, err)
		require.Equal(t, len(head), n)
		require.True(t, upgraded)
		require.True(t, c.Parser().Upgrade())
	})
}

func TestLimits(t *testing.T) {
	t.Run("body", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxSize = 4
		core, logs := observer.New(zapcore.DebugLevel)
		c := NewCollector(parser.Request, cfg, WithLogger(zap.New(core)))

		_, err := c.Feed([]byte(simpleGET))
		require.ErrorIs(t, err, ErrBodyTooLarge)
		require.ErrorIs(t, err, parser.ErrCBBody)
		var cbErr *parser.CallbackError
		require.True(t, errors.As(err, &cbErr))

		require.Equal(t, 1, logs.FilterMessage("body exceeds the limit").Len())
		entries := logs.FilterMessage("failed to parse the message").All()
		require.Len(t, entries, 1)
		require.Equal(t, "HPE_CB_body", entries[0].ContextMap()["errno"])
	})

	t.Run("url", func(t *testing.T) {
		cfg := config.Default()
		cfg.URI.RequestLineSize.Maximal = 8
		c := NewCollector(parser.Request, cfg)
		_, err := c.Feed([]byte("GET /a/very/long/path HTTP/1.1\r\n\r\n"))
		require.ErrorIs(t, err, ErrURLTooLong)
		require.ErrorIs(t, err, parser.ErrCBURL)
	})

	t.Run("headers", func(t *testing.T) {
		cfg := config.Default()
		cfg.Headers.Space.Maximal = 40
		c := NewCollector(parser.Request, cfg)
		err := feedPartially(c, []byte("GET / HTTP/1.1\r\nX-Header: "+strings.Repeat("a", 39)+"\r\n\r\n"), 8)
		require.Error(t, err)
	})

	t.Run("stream cut", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		c := NewCollector(parser.Request, nil, WithLogger(zap.New(core)))
		_, err := c.Feed([]byte("GET / HTTP/1.1\r\nHost: a"))
		require.NoError(t, err)
		require.ErrorIs(t, c.Finish(), parser.ErrInvalidEOFState)
		require.Equal(t, 1, logs.FilterMessage("stream ended unexpectedly").Len())
	})
}

func TestClone(t *testing.T) {
	msg := newMessage(4)
	require.Zero(t, msg.Headers.Len())
	line := []byte("/path")
	msg.URL = string(line)
	msg.Headers.Add("Host", "example.com")
	msg.Body = []byte("body")

	clone := msg.Clone()
	msg.Body[0] = 'B'
	msg.Headers.Clear()

	require.Equal(t, "body", string(clone.Body))
	require.Equal(t, "example.com", clone.Headers.Value("host"))
	require.Equal(t, "/path", clone.URL)
}
