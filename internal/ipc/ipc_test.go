package ipc

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppName = "pawlock-ipc-test"

func TestSecondListenFails(t *testing.T) {
	server, err := Listen(testAppName, Callbacks{}, nil)
	require.NoError(t, err)
	defer server.Close()

	_, err = Listen(testAppName, Callbacks{}, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestStatusRoundTrip(t *testing.T) {
	server, err := Listen(testAppName, Callbacks{
		OnStatus: func() (string, time.Duration) {
			return "active", 90 * time.Second
		},
	}, nil)
	require.NoError(t, err)
	defer server.Close()

	state, remaining, err := Status(testAppName)
	require.NoError(t, err)
	assert.Equal(t, "active", state)
	assert.Equal(t, 90*time.Second, remaining)
}

func TestStopInvokesCallback(t *testing.T) {
	var stops atomic.Int32
	server, err := Listen(testAppName, Callbacks{
		OnStop: func() { stops.Add(1) },
	}, nil)
	require.NoError(t, err)
	defer server.Close()

	require.NoError(t, Stop(testAppName))
	assert.Equal(t, int32(1), stops.Load())
}

func TestSendWithoutInstance(t *testing.T) {
	_, err := Send("pawlock-ipc-test-nobody-listening", "status")
	assert.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	server, err := Listen(testAppName, Callbacks{}, nil)
	require.NoError(t, err)
	defer server.Close()

	reply, err := Send(testAppName, "bogus")
	require.NoError(t, err)
	assert.Equal(t, "unknown command", reply)
}
