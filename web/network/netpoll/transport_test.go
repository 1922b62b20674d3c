package netpoll

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/caiflower/tiny-httpd/web/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetpollServe(t *testing.T) {
	trans := NewTransporter(&Options{
		Options: network.Options{Addr: "127.0.0.1:0", Network: "tcp"},
	})
	require.NoError(t, trans.Listen())
	go func() {
		_ = trans.Serve(func(ctx context.Context, conn net.Conn) {
			defer conn.Close()
			buf := make([]byte, 64)
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			_, _ = conn.Write(buf[:n])
		})
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = trans.Shutdown(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	conn, err := net.DialTimeout("tcp", trans.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))

	_, err = conn.Write([]byte("abcdef"))
	require.NoError(t, err)
	got, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(got))
}

func TestNetpollServeBeforeListen(t *testing.T) {
	trans := NewTransporter(&Options{Options: network.Options{Addr: "127.0.0.1:0"}})
	assert.Error(t, trans.Serve(func(ctx context.Context, conn net.Conn) {}))
	assert.NoError(t, trans.Shutdown(context.Background()))
}
