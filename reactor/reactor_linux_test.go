//go:build linux

package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fetch/api"
	"github.com/momentics/hioload-fetch/reactor"
)

func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	return fds[0], fds[1]
}

func TestReactorLifecycle(t *testing.T) {
	r, err := reactor.New(8)
	require.NoError(t, err)
	defer r.Shutdown()

	a, b := socketPair(t)
	defer unix.Close(b)

	require.NoError(t, r.Register(a, api.InterestWrite, "task-0"))
	assert.Equal(t, 1, r.Len())
	assert.ErrorIs(t, r.Register(a, api.InterestRead, "task-0"), api.ErrAlreadyRegistered)

	events, err := r.Select()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, api.Event{Fd: a, Tag: "task-0", Interest: api.InterestWrite}, events[0])

	// The mask is replaced: a writable socket must no longer report WRITE.
	require.NoError(t, r.Modify(a, api.InterestRead, "task-0"))
	_, err = unix.Write(b, []byte("ping"))
	require.NoError(t, err)

	events, err = r.Select()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, api.InterestRead, events[0].Interest)
	assert.Equal(t, "task-0", events[0].Tag)

	require.NoError(t, r.UnregisterAndClose(a))
	assert.ErrorIs(t, r.UnregisterAndClose(a), api.ErrNotRegistered)
	assert.Equal(t, 0, r.Len())

	_, err = r.Select()
	assert.ErrorIs(t, err, api.ErrNoRegistrations)
}

func TestReactorModifyUnknown(t *testing.T) {
	r, err := reactor.New(0)
	require.NoError(t, err)
	defer r.Shutdown()

	assert.ErrorIs(t, r.Modify(12345, api.InterestRead, "x"), api.ErrNotRegistered)
}

func TestReactorHangupReportsRegisteredInterest(t *testing.T) {
	r, err := reactor.New(8)
	require.NoError(t, err)
	defer r.Shutdown()

	a, b := socketPair(t)
	require.NoError(t, r.Register(a, api.InterestRead, "task-1"))
	require.NoError(t, unix.Close(b))

	events, err := r.Select()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, api.InterestRead, events[0].Interest)
	require.NoError(t, r.UnregisterAndClose(a))
}

func TestReactorShutdown(t *testing.T) {
	r, err := reactor.New(8)
	require.NoError(t, err)

	require.NoError(t, r.Shutdown())
	require.NoError(t, r.Shutdown())

	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)
	assert.ErrorIs(t, r.Register(a, api.InterestRead, "t"), api.ErrReactorClosed)
	_, err = r.Select()
	assert.ErrorIs(t, err, api.ErrReactorClosed)
}
