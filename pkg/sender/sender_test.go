package sender

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/vcshare/pkg/wire"
)

type frame struct {
	name    string
	payload []byte
}

// startSink accepts connections and decodes one frame from each.
func startSink(t *testing.T) (string, <-chan frame) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	frames := make(chan frame, 16)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			h, payload, err := wire.ReadFrame(conn)
			conn.Close()
			if err == nil {
				frames <- frame{name: h.Name, payload: payload}
			}
		}
	}()
	return ln.Addr().String(), frames
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func receive(t *testing.T, frames <-chan frame) frame {
	t.Helper()
	select {
	case f := <-frames:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame")
		return frame{}
	}
}

func TestSendFile(t *testing.T) {
	addr, frames := startSink(t)
	path := writeFile(t, t.TempDir(), "share_1.png", []byte("pixels"))

	require.NoError(t, SendFile(context.Background(), path, addr, time.Second))

	f := receive(t, frames)
	assert.Equal(t, "share_1.png", f.name)
	assert.Equal(t, []byte("pixels"), f.payload)
}

func TestSendFile_Empty(t *testing.T) {
	addr, frames := startSink(t)
	path := writeFile(t, t.TempDir(), "empty.bin", nil)

	require.NoError(t, New().SendFile(context.Background(), path, addr))
	f := receive(t, frames)
	assert.Equal(t, "empty.bin", f.name)
	assert.Empty(t, f.payload)
}

func TestSendFile_MissingFile(t *testing.T) {
	err := New().SendFile(context.Background(), filepath.Join(t.TempDir(), "nope"), "127.0.0.1:1")
	require.ErrorIs(t, err, ErrIOFailure)
}

func TestSendFile_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	path := writeFile(t, t.TempDir(), "a.png", []byte("x"))
	err = New(WithTimeout(time.Second)).SendFile(context.Background(), path, addr)
	require.ErrorIs(t, err, ErrConnectionFailure)
}

func TestParseTargets(t *testing.T) {
	tests := []struct {
		raw  string
		want []Target
	}{
		{"", []Target{}},
		{"hostA", []Target{{Host: "hostA"}}},
		{"hostA:9000;hostB", []Target{{Host: "hostA", Port: 9000}, {Host: "hostB"}}},
		{" a:1 , b:x ;; c", []Target{{Host: "a", Port: 1}, {Host: "b"}, {Host: "c"}}},
		{"[::1]:8001,::1", []Target{{Host: "::1", Port: 8001}, {Host: "::1"}}},
		{"h:70000", []Target{{Host: "h"}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTargets(tt.raw))
		})
	}
}

func TestAssignTargets(t *testing.T) {
	addrs, err := AssignTargets(4, []Target{{Host: "a"}, {Host: "b", Port: 9000}}, 8000)
	require.NoError(t, err)
	assert.Equal(t, []string{"a:8000", "b:9000", "a:8002", "b:9000"}, addrs)

	_, err = AssignTargets(2, nil, 8000)
	require.ErrorIs(t, err, ErrNoTargets)

	_, err = AssignTargets(3, []Target{{Host: "a"}}, 65534)
	require.Error(t, err)
}

func TestSendShares(t *testing.T) {
	addr, frames := startSink(t)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "s_1.png", []byte("one")),
		writeFile(t, dir, "s_2.png", []byte("two")),
	}
	targets := ParseTargets(host + ":" + portStr)

	results, err := New().SendShares(context.Background(), paths, targets, 1)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.OK(), "send %s: %v", r.Path, r.Err)
		assert.Equal(t, addr, r.Addr)
	}

	got := map[string]string{}
	for i := 0; i < 2; i++ {
		f := receive(t, frames)
		got[f.name] = string(f.payload)
	}
	assert.Equal(t, map[string]string{"s_1.png": "one", "s_2.png": "two"}, got)
}
