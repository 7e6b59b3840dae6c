package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	require.Equal(t, HTTP10, Parse(1, 0))
	require.Equal(t, HTTP11, Parse(1, 1))
	require.Equal(t, HTTP2, Parse(2, 0))
	require.Equal(t, Unknown, Parse(0, 9))
	require.Equal(t, Unknown, Parse(1, 2))
	require.Equal(t, Unknown, Parse(12, 0))
	require.NotZero(t, Parse(1, 1)&HTTP1)
}

func TestString(t *testing.T) {
	require.Equal(t, "HTTP/1.1", HTTP11.String())
	require.Equal(t, "HTTP/1.0", Parse(1, 0).String())
	require.Empty(t, Unknown.String())
}
