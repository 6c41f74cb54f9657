package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/coregx/wsclient/internal/wslog"
	"github.com/coregx/wsclient/websocket"
)

type recordingDelegate struct {
	states chan websocket.TransportState
	data   chan []byte
}

func newRecordingDelegate() *recordingDelegate {
	return &recordingDelegate{states: make(chan websocket.TransportState, 32), data: make(chan []byte, 32)}
}

func (d *recordingDelegate) OnTransportStateChanged(s websocket.TransportState) { d.states <- s }
func (d *recordingDelegate) OnViabilityChanged(viable bool)                    {}
func (d *recordingDelegate) OnBetterPathAvailable(available bool)              {}
func (d *recordingDelegate) OnDataReceived(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	d.data <- cp
}

func (d *recordingDelegate) nextState(t *testing.T) websocket.TransportState {
	t.Helper()
	select {
	case s := <-d.states:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a transport state change")
		return websocket.TransportState{}
	}
}

// TestTCP_ConnectSendReceive exercises Connect, Send, and the background
// read loop against a real loopback listener.
func TestTCP_ConnectSendReceive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	delegate := newRecordingDelegate()
	tr := New(delegate, wslog.Discard())

	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("failed to split listener address: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := tr.Connect(ctx, host, port, nil); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if s := delegate.nextState(t); s.Kind != websocket.TransportPreparing {
		t.Fatalf("expected TransportPreparing, got %v", s)
	}
	if s := delegate.nextState(t); s.Kind != websocket.TransportReady {
		t.Fatalf("expected TransportReady, got %v", s)
	}

	var server net.Conn
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the server side to accept")
	}
	defer server.Close()

	tr.Send([]byte("hello"), func(err error) {
		if err != nil {
			t.Errorf("Send failed: %v", err)
		}
	})

	buf := make([]byte, 5)
	if _, err := server.Read(buf); err != nil {
		t.Fatalf("server read failed: %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("expected %q, got %q", "hello", buf)
	}

	if _, err := server.Write([]byte("world")); err != nil {
		t.Fatalf("server write failed: %v", err)
	}

	select {
	case data := <-delegate.data:
		if string(data) != "world" {
			t.Errorf("expected %q, got %q", "world", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnDataReceived")
	}

	tr.Cancel()
	if s := delegate.nextState(t); s.Kind != websocket.TransportCancelled {
		t.Fatalf("expected TransportCancelled, got %v", s)
	}
}

// TestTCP_CancelSuppressesSpuriousFailure covers P9: closing the socket
// via Cancel must not produce a TransportFailed report from the read loop
// racing to notice the closed connection.
func TestTCP_CancelSuppressesSpuriousFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			<-make(chan struct{}) // hold the connection open until the test ends
		}
	}()

	delegate := newRecordingDelegate()
	tr := New(delegate, wslog.Discard())

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := tr.Connect(ctx, host, port, nil); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	delegate.nextState(t) // TransportPreparing
	delegate.nextState(t) // TransportReady

	tr.Cancel()

	s := delegate.nextState(t)
	if s.Kind != websocket.TransportCancelled {
		t.Fatalf("expected TransportCancelled, got %v", s)
	}

	select {
	case s := <-delegate.states:
		t.Fatalf("expected no further state reports after Cancel, got %v", s)
	case <-time.After(200 * time.Millisecond):
	}
}

// TestTCP_CancelIsIdempotent checks calling Cancel twice does not panic or
// block.
func TestTCP_CancelIsIdempotent(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	delegate := newRecordingDelegate()
	tr := New(delegate, wslog.Discard())
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := tr.Connect(ctx, host, port, nil); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	delegate.nextState(t) // TransportPreparing
	delegate.nextState(t) // TransportReady

	tr.Cancel()
	delegate.nextState(t) // TransportCancelled
	tr.Cancel()
}
