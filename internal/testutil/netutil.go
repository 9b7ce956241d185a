package testutil

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"
)

// ContextWithTimeout возвращает context, отменяемый по таймауту или в конце теста.
func ContextWithTimeout(t testing.TB, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

// PipeConn returns both ends of an in-memory connection, closed at test end.
// The server end reports "pipe" as its remote address.
func PipeConn(t testing.TB) (client, server net.Conn) {
	t.Helper()
	server, client = net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return client, server
}

// FakeAddr is a net.Addr with a fixed string form.
type FakeAddr struct {
	NetworkName string
	AddrString  string
}

func (f FakeAddr) Network() string { return f.NetworkName }
func (f FakeAddr) String() string  { return f.AddrString }

// TCPAddr returns a FakeAddr on the tcp network.
func TCPAddr(addr string) FakeAddr {
	return FakeAddr{NetworkName: "tcp", AddrString: addr}
}

// ListenTCP opens a loopback listener on a random port for the duration of the test.
func ListenTCP(t testing.TB) (net.Listener, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	return ln, ln.Addr().String()
}

// WaitForTCPReady опрашивает addr, пока сервер не начнёт принимать соединения.
func WaitForTCPReady(addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s not ready: %w", addr, ctx.Err())
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
			if err == nil {
				_ = conn.Close()
				return nil
			}
		}
	}
}
