package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrno(t *testing.T) {
	t.Run("names", func(t *testing.T) {
		require.Equal(t, "HPE_OK", OK.Name())
		require.Equal(t, "HPE_INVALID_METHOD", ErrInvalidMethod.Name())
		require.Equal(t, "HPE_CB_headers_complete", ErrCBHeadersComplete.Name())
		require.Equal(t, "HPE_PAUSED", ErrPaused.Name())
		require.Equal(t, "HPE_UNKNOWN", Errno(255).Name())
	})

	t.Run("every kind is described", func(t *testing.T) {
		for e := OK; e < errnoCount; e++ {
			require.NotEmpty(t, e.Name(), "errno %d", e)
			require.NotEmpty(t, e.Description(), "errno %d", e)
		}
	})

	t.Run("error string", func(t *testing.T) {
		require.EqualError(t, ErrLFExpected, "HPE_LF_EXPECTED: LF character expected")
	})
}

func TestCallbackError(t *testing.T) {
	cause := errors.New("client went away")
	var err error = &CallbackError{Errno: ErrCBBody, Err: cause}

	require.ErrorIs(t, err, ErrCBBody)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrCBURL)
	require.EqualError(t, err, "HPE_CB_body: client went away")
}

func TestMode(t *testing.T) {
	require.Equal(t, "request", Request.String())
	require.Equal(t, "response", Response.String())
	require.Equal(t, "both", Both.String())
}

func TestNew(t *testing.T) {
	p := New(NopHandler{}, Response, nil)
	require.NotNil(t, p.cfg)
	require.Equal(t, eStartRes, p.state)
	require.Nil(t, p.status)
	require.Nil(t, p.chunks)

	p.Init(Both)
	require.Equal(t, eStartReqOrRes, p.state)
	require.Equal(t, Both, p.Kind())
}
