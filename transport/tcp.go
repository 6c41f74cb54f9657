// Package transport provides the default Transport implementation: a
// net.Conn/tls.Conn backed byte-stream transport that dials, runs a
// single background read loop, and translates connection lifecycle into
// the websocket.TransportDelegate callbacks the engine depends on.
package transport

import (
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/coregx/wsclient/internal/wslog"
	"github.com/coregx/wsclient/websocket"
)

// readChunkSize is the buffer size for each blocking net.Conn.Read call in
// the background read loop.
const readChunkSize = 4096

// TCP is a websocket.Transport over a TCP socket, optionally upgraded to
// TLS. Exactly one background goroutine performs blocking reads once
// Connect succeeds, so no two chunks are ever delivered to the delegate
// concurrently.
type TCP struct {
	logger   *wslog.Logger
	delegate websocket.TransportDelegate

	mu        sync.Mutex
	conn      net.Conn
	cancelled bool
}

// New returns a TCP transport that reports lifecycle and data events to
// delegate. delegate may be nil and supplied later via SetDelegate, since
// the delegate (typically a *websocket.Client) is often constructed with
// this transport as one of its own arguments. logger may be nil.
func New(delegate websocket.TransportDelegate, logger *wslog.Logger) *TCP {
	return &TCP{delegate: delegate, logger: logger}
}

// SetDelegate assigns the transport's delegate. It must be called before
// Connect if New was given a nil delegate.
func (t *TCP) SetDelegate(delegate websocket.TransportDelegate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delegate = delegate
}

// Connect implements websocket.Transport. It dials host:port under ctx's
// deadline, wraps the connection in TLS when tlsConfig is non-nil, and
// starts the background read loop on success.
func (t *TCP) Connect(ctx context.Context, host, port string, tlsConfig *tls.Config) error {
	t.report(websocket.TransportState{Kind: websocket.TransportPreparing})

	addr := net.JoinHostPort(host, port)
	dialer := &net.Dialer{}

	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		t.logger.Warn("dial failed", wslog.Err(err))
		t.report(websocket.TransportState{Kind: websocket.TransportFailed, Err: err})
		return err
	}

	conn := net.Conn(rawConn)
	if tlsConfig != nil {
		tlsConn := tls.Client(rawConn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			t.logger.Warn("tls handshake failed", wslog.Err(err))
			_ = rawConn.Close()
			t.report(websocket.TransportState{Kind: websocket.TransportFailed, Err: err})
			return err
		}
		conn = tlsConn
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	t.report(websocket.TransportState{Kind: websocket.TransportReady})
	t.delegateOf().OnViabilityChanged(true)
	// The TCP layer has no multipath concept; report it once so a caller
	// exercising the hook (rather than only documenting it) sees the
	// expected false value.
	t.delegateOf().OnBetterPathAvailable(false)

	go t.readLoop(conn)

	return nil
}

func (t *TCP) readLoop(conn net.Conn) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.delegateOf().OnDataReceived(chunk)
		}
		if err != nil {
			t.mu.Lock()
			cancelled := t.cancelled
			t.mu.Unlock()
			if cancelled {
				// Cancel already reported TransportCancelled; a read
				// unblocking because we closed the socket ourselves is
				// not a transport failure. No further OnDataReceived or
				// OnStateChanged(Failed) fires once Cancel has returned.
				return
			}
			t.logger.Debug("read loop exiting", wslog.Err(err))
			t.report(websocket.TransportState{Kind: websocket.TransportFailed, Err: err})
			return
		}
	}
}

// Send implements websocket.Transport. The write happens synchronously on
// the caller's goroutine (the write lane) but completion is always
// reported through the callback rather than the return value, matching
// the interface's async contract.
func (t *TCP) Send(data []byte, completion func(error)) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		if completion != nil {
			completion(net.ErrClosed)
		}
		return
	}

	_, err := conn.Write(data)
	if completion != nil {
		completion(err)
	}
}

// Cancel implements websocket.Transport: it closes the socket, which
// unblocks the read loop, and reports TransportCancelled.
func (t *TCP) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	t.report(websocket.TransportState{Kind: websocket.TransportCancelled})
}

func (t *TCP) report(s websocket.TransportState) {
	t.delegateOf().OnTransportStateChanged(s)
}

func (t *TCP) delegateOf() websocket.TransportDelegate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delegate
}
