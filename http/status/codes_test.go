package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBodyless(t *testing.T) {
	for _, code := range []Code{Continue, SwitchingProtocols, EarlyHints, 199, NoContent, NotModified} {
		require.True(t, code.Bodyless(), int(code))
	}

	for _, code := range []Code{OK, 205, MovedPermanently, NotFound, InternalServerError, 99} {
		require.False(t, code.Bodyless(), int(code))
	}
}
