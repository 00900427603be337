package receiver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freeAddr returns a loopback address whose port was free a moment ago.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a := ln.Addr().String()
	require.NoError(t, ln.Close())
	return a
}

func runControl(ctx context.Context, a string, coord *Coordinator) <-chan error {
	errc := make(chan error, 1)
	go func() {
		errc <- RunControl(ctx, a, coord, nil)
	}()
	return errc
}

func waitErr(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(waitFor):
		t.Fatal("control channel did not return")
		return nil
	}
}

func TestRunControlStopsGroup(t *testing.T) {
	coord := NewCoordinator(CoordinatorConfig{})
	a := freeAddr(t)
	errc := runControl(context.Background(), a, coord)

	var conn net.Conn
	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", a)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, waitFor, tick)
	_, err := conn.Write([]byte(StopCommand + "\n"))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.NoError(t, waitErr(t, errc))
	assert.True(t, coord.Stopped())
}

func TestRunControlReturnsWhenGroupStops(t *testing.T) {
	coord := NewCoordinator(CoordinatorConfig{})
	coord.RequestStop()

	errc := runControl(context.Background(), freeAddr(t), coord)
	require.NoError(t, waitErr(t, errc))
}

func TestRunControlContextCancel(t *testing.T) {
	coord := NewCoordinator(CoordinatorConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	errc := runControl(ctx, freeAddr(t), coord)
	cancel()

	require.NoError(t, waitErr(t, errc))
	assert.False(t, coord.Stopped())
}

func TestRunControlBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = RunControl(context.Background(), ln.Addr().String(), NewCoordinator(CoordinatorConfig{}), nil)
	require.ErrorIs(t, err, ErrConnectionFailure)
}
