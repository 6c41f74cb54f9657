// Command wsclient-demo connects to a WebSocket endpoint, logs every
// delegate callback, sends one text message, and exits on the first
// Disconnected state. It exists to exercise Client end to end, the way
// coregx-stream's examples/websocket/ping-pong ships one runnable
// example alongside the library it demonstrates.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/coregx/wsclient/internal/wslog"
	"github.com/coregx/wsclient/transport"
	"github.com/coregx/wsclient/websocket"
)

type logDelegate struct {
	client *websocket.Client
	done   chan struct{}
}

func (d *logDelegate) OnStateChanged(s websocket.ConnectionState) {
	log.Printf("state changed: %s", s)
	switch s.Kind {
	case websocket.StateConnected:
		d.client.WriteText("hello from wsclient-demo", func(err error) {
			if err != nil {
				log.Printf("write failed: %v", err)
			}
		})
	case websocket.StateDisconnected:
		close(d.done)
	}
}

func (d *logDelegate) OnViabilityChanged(viable bool) {
	log.Printf("viability changed: %v", viable)
}

func (d *logDelegate) OnBetterPathAvailable(available bool) {
	log.Printf("better path available: %v", available)
}

func (d *logDelegate) OnMessageReceived(m websocket.Message) {
	switch v := m.(type) {
	case websocket.TextMessage:
		log.Printf("text message: %s", string(v))
	case websocket.BinaryMessage:
		log.Printf("binary message: %d bytes", len(v))
	case websocket.PingMessage:
		log.Printf("ping: %d bytes", len(v))
	case websocket.PongMessage:
		log.Printf("pong: %d bytes", len(v))
	}
}

func main() {
	host := flag.String("host", "localhost:8080", "host:port to dial")
	path := flag.String("path", "/ws", "request path")
	flag.Parse()

	logger := wslog.Default()

	delegate := &logDelegate{done: make(chan struct{})}
	tp := transport.New(nil, logger)
	client := websocket.NewClient(tp, delegate, websocket.DialOptions{
		Host:           *host,
		Path:           *path,
		ConnectTimeout: 10 * time.Second,
		Logger:         logger,
	})
	delegate.client = client
	tp.SetDelegate(client)

	if err := client.Connect(); err != nil {
		log.Fatalf("connect: %v", err)
	}

	<-delegate.done
	client.Close()
}
