package websocket

import (
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/coregx/wsclient/internal/lane"
	"github.com/coregx/wsclient/internal/wslog"
)

// laneCapacity bounds how many pending tasks each of the read, write, and
// user-notification lanes will buffer before Post blocks the caller. It
// is generous enough that a burst of writes or a burst of decoded frames
// does not stall the producing goroutine under ordinary use.
const laneCapacity = 256

// Client is the connection orchestrator: it owns the connection state
// machine, wires the transport to the decoder and reassembler, and
// serializes writes. All of Client's mutable state is owned by this
// single instance; the reassembler is created with it, mutated only on
// the read path, and reset at message boundaries and on protocol errors.
type Client struct {
	transport Transport
	delegate  Delegate
	opts      DialOptions
	logger    *wslog.Logger

	readLane   *lane.Lane
	writeLane  *lane.Lane
	notifyLane *lane.Lane

	mu    sync.Mutex
	state ConnectionState

	reassembler *Reassembler
	decodeOpts  DecodeOptions
	decodeBuf   []byte

	handshakeKey  string
	handshakeDone bool
	respBuf       []byte
}

// NewClient returns a Client ready to Connect. transport is the
// collaborator that owns the actual socket; the default one satisfying
// Transport lives in package transport.
func NewClient(transport Transport, delegate Delegate, opts DialOptions) *Client {
	opts = opts.withDefaults()
	c := &Client{
		transport:  transport,
		delegate:   delegate,
		opts:       opts,
		logger:     opts.Logger,
		readLane:   lane.New(laneCapacity),
		writeLane:  lane.New(laneCapacity),
		notifyLane: lane.New(laneCapacity),
		state:      Disconnected(CloseUnset, ""),
		decodeOpts: DecodeOptions{MaxPayload: opts.MaxMessagePayload, AllowMaskedPong: opts.AllowMaskedPong},
	}
	c.reassembler = NewReassembler(opts.MaxMessagePayload)
	return c
}

// Connect initiates the transport dial. It is a no-op unless the current
// state is Disconnected.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.state.Kind != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	key, err := GenerateKey()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.handshakeKey = key
	c.handshakeDone = false
	c.respBuf = nil
	c.decodeBuf = nil
	c.mu.Unlock()

	c.setState(Connecting())

	host, port, err := net.SplitHostPort(c.opts.Host)
	if err != nil {
		host, port = c.opts.Host, defaultPortFor(c.opts.TLSConfig)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.ConnectTimeout)
		defer cancel()
		if err := c.transport.Connect(ctx, host, port, c.opts.TLSConfig); err != nil {
			c.logger.Warn("transport connect failed", wslog.Err(err))
			c.setState(Disconnected(CloseAbnormalClosure, err.Error()))
		}
	}()

	return nil
}

func defaultPortFor(tlsConfig *tls.Config) string {
	if tlsConfig != nil {
		return "443"
	}
	return "80"
}

// Disconnect starts a clean close: a best-effort close frame carrying
// code/reason, then transport cancellation. It is safe to call regardless
// of state: the close frame is attempted only when Connected, while the
// transition to Disconnected and the transport cancellation happen in any
// state.
func (c *Client) Disconnect(code CloseCode, reason string) {
	c.mu.Lock()
	connected := c.state.Kind == StateConnected
	c.mu.Unlock()

	if connected {
		c.sendCloseFrame(code, reason)
	}

	c.setState(Disconnected(code, reason))
	c.transport.Cancel()
}

// ForceDisconnect tears the transport down immediately, without
// attempting a close frame, unlike Disconnect which attempts one
// best-effort close frame first when Connected.
func (c *Client) ForceDisconnect() {
	c.setState(Disconnected(CloseAbnormalClosure, ErrForceDisconnected.Error()))
	c.transport.Cancel()
}

// Close releases the lanes' goroutines. Call after the connection has
// torn down; Client is not reusable afterward.
func (c *Client) Close() {
	c.readLane.Close()
	c.writeLane.Close()
	c.notifyLane.Close()
}

// State returns the current ConnectionState.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// WriteText enqueues a text message. completion, if non-nil, is invoked on
// the user-notification lane once the write reaches the transport (or
// fails to).
func (c *Client) WriteText(text string, completion func(WriteResult)) {
	c.write(OpcodeText, []byte(text), completion)
}

// WriteBinary enqueues a binary message.
func (c *Client) WriteBinary(data []byte, completion func(WriteResult)) {
	c.write(OpcodeBinary, data, completion)
}

// WritePing enqueues a ping frame.
func (c *Client) WritePing(data []byte, completion func(WriteResult)) {
	c.write(OpcodePing, data, completion)
}

// WritePong enqueues a pong frame.
func (c *Client) WritePong(data []byte, completion func(WriteResult)) {
	c.write(OpcodePong, data, completion)
}

func (c *Client) write(opcode Opcode, payload []byte, completion func(WriteResult)) {
	c.mu.Lock()
	connected := c.state.Kind == StateConnected
	c.mu.Unlock()

	if !connected {
		c.completeWrite(completion, ErrNotConnected)
		return
	}

	err := c.writeLane.Post(func() {
		frame, err := Encode(opcode, payload)
		if err != nil {
			c.completeWrite(completion, err)
			return
		}
		c.transport.Send(frame, func(sendErr error) {
			c.completeWrite(completion, sendErr)
		})
	})
	if err != nil {
		c.completeWrite(completion, ErrLaneClosed)
	}
}

func (c *Client) completeWrite(completion func(WriteResult), result WriteResult) {
	if completion == nil {
		return
	}
	_ = c.notifyLane.Post(func() { completion(result) })
}

// sendCloseFrame makes a best-effort attempt to write a close frame; its
// own write failures are logged, not propagated, since the caller is
// already on the way to tearing the connection down.
// CloseNoStatusReceived and CloseUnset are never put on the wire: a close
// frame for either carries an empty body.
func (c *Client) sendCloseFrame(code CloseCode, reason string) {
	var payload []byte
	if code != CloseNoStatusReceived && code != CloseUnset {
		payload = make([]byte, 2+len(reason))
		writeU16BE(payload, 0, uint16(code))
		copy(payload[2:], reason)
	}

	_ = c.writeLane.Post(func() {
		frame, err := Encode(OpcodeClose, payload)
		if err != nil {
			c.logger.Warn("encode close frame failed", wslog.Err(err))
			return
		}
		c.transport.Send(frame, func(sendErr error) {
			if sendErr != nil {
				c.logger.Warn("send close frame failed", wslog.Err(sendErr))
			}
		})
	})
}

// setState applies a state transition if it actually changes the
// structural value, and if so posts exactly one notification: a
// transition that leaves the state unchanged is silently absorbed rather
// than re-announced.
func (c *Client) setState(next ConnectionState) {
	c.mu.Lock()
	if c.state.Equal(next) {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.mu.Unlock()

	c.logger.Debug("state changed", wslog.State(next))

	if c.delegate == nil {
		return
	}
	_ = c.notifyLane.Post(func() { c.delegate.OnStateChanged(next) })
}

// --- TransportDelegate ---

// OnTransportStateChanged implements TransportDelegate. It is called on
// whatever goroutine the transport uses. It maps the transport state to a
// Client-level state transition, except on TransportReady, where it sends
// the upgrade request.
func (c *Client) OnTransportStateChanged(s TransportState) {
	switch s.Kind {
	case TransportPreparing:
		c.setState(Connecting())
	case TransportWaiting:
		c.setState(Waiting(s.Err))
	case TransportReady:
		c.onTransportReady()
	case TransportFailed:
		reason := "transport failed"
		if s.Err != nil {
			reason = s.Err.Error()
		}
		c.setState(Disconnected(CloseAbnormalClosure, reason))
	case TransportCancelled, TransportSetup:
		// No Client-level transition: Cancelled follows a transition this
		// package already made (Disconnect/ForceDisconnect), and Setup
		// precedes Connecting.
	}
}

// OnViabilityChanged implements TransportDelegate: forwarded verbatim.
func (c *Client) OnViabilityChanged(viable bool) {
	if c.delegate == nil {
		return
	}
	_ = c.notifyLane.Post(func() { c.delegate.OnViabilityChanged(viable) })
}

// OnBetterPathAvailable implements TransportDelegate: forwarded verbatim.
func (c *Client) OnBetterPathAvailable(available bool) {
	if c.delegate == nil {
		return
	}
	_ = c.notifyLane.Post(func() { c.delegate.OnBetterPathAvailable(available) })
}

// OnDataReceived implements TransportDelegate. All decoding happens on
// the read lane so no two chunks are ever processed concurrently, and
// frames reach the reassembler in wire order.
func (c *Client) OnDataReceived(data []byte) {
	_ = c.readLane.Post(func() { c.handleInbound(data) })
}

func (c *Client) onTransportReady() {
	c.mu.Lock()
	key := c.handshakeKey
	c.mu.Unlock()

	req := BuildUpgradeRequest(c.opts.Host, c.opts.Path, key, c.opts)
	raw, err := MarshalUpgradeRequest(req)
	if err != nil {
		c.setState(Disconnected(CloseAbnormalClosure, err.Error()))
		c.transport.Cancel()
		return
	}
	_ = c.writeLane.Post(func() {
		c.transport.Send(raw, func(sendErr error) {
			if sendErr != nil {
				c.logger.Warn("send upgrade request failed", wslog.Err(sendErr))
				c.setState(Disconnected(CloseAbnormalClosure, sendErr.Error()))
				c.transport.Cancel()
			}
		})
	})
}

// handleInbound runs on the read lane. Before the handshake completes it
// accumulates bytes looking for the end of the HTTP header block; once
// upgraded, every byte is frame data.
func (c *Client) handleInbound(data []byte) {
	c.mu.Lock()
	done := c.handshakeDone
	key := c.handshakeKey
	c.mu.Unlock()

	if !done {
		c.respBuf = append(c.respBuf, data...)
		headerLen, found := SplitUpgradeResponse(c.respBuf)
		if !found {
			return
		}

		resp, err := ParseUpgradeResponse(c.respBuf[:headerLen])
		if err != nil {
			c.failHandshake(err)
			return
		}
		result, err := ValidateAccept(resp, key)
		if err != nil {
			c.failHandshake(err)
			return
		}

		c.mu.Lock()
		c.handshakeDone = true
		c.mu.Unlock()

		c.setState(Connected(result.Headers, result.Subprotocol))

		trailing := c.respBuf[headerLen:]
		c.respBuf = nil
		if len(trailing) > 0 {
			c.decodeInbound(trailing)
		}
		return
	}

	c.decodeInbound(data)
}

func (c *Client) failHandshake(err error) {
	c.logger.Warn("handshake failed", wslog.Err(err))
	c.setState(Disconnected(CloseAbnormalClosure, err.Error()))
	c.transport.Cancel()
}

// decodeInbound feeds newly-arrived bytes through Decode in a loop until
// NeedsMore, dispatching each resulting frame to the reassembler.
// Splitting an inbound byte stream at an arbitrary point and feeding it
// through this loop produces the same events as feeding it whole, since
// decodeBuf simply accumulates whatever Decode could not yet consume.
func (c *Client) decodeInbound(data []byte) {
	c.decodeBuf = append(c.decodeBuf, data...)

	for {
		outcome := Decode(c.decodeBuf, c.decodeOpts)
		switch outcome.Kind {
		case DecodeNeedsMore:
			return
		case DecodeFailed:
			c.decodeBuf = nil
			c.logger.Warn("protocol error", wslog.Code(outcome.CloseCode), wslog.Err(outcome.Err))
			c.failProtocol(outcome.CloseCode, outcome.Reason)
			return
		case DecodeFrame:
			c.decodeBuf = c.decodeBuf[outcome.Consumed:]
			if !c.handleFrame(outcome.Frame) {
				return
			}
		}
	}
}

// handleFrame dispatches one decoded frame to the reassembler and acts on
// the resulting events. It returns false when the connection is tearing
// down and the caller must stop decoding further frames from the buffer.
func (c *Client) handleFrame(f Frame) bool {
	for _, ev := range c.reassembler.Consume(f) {
		switch ev.Kind {
		case EventText:
			c.dispatchMessage(TextMessage(ev.Text))
		case EventBinary:
			c.dispatchMessage(BinaryMessage(ev.Binary))
		case EventPing:
			c.logger.Debug("ping received")
			// The pong's write-lane submission happens before this
			// function returns control to decodeInbound's loop, i.e.
			// before the next inbound frame is processed — every Ping
			// gets exactly one Pong reply before any later frame does.
			c.WritePong(ev.Control, nil)
			c.dispatchMessage(PingMessage(ev.Control))
		case EventPong:
			c.logger.Debug("pong received")
			c.dispatchMessage(PongMessage(ev.Control))
		case EventClosed:
			c.logger.Debug("close received", wslog.Code(ev.CloseCode))
			c.sendCloseFrame(ev.CloseCode, "")
			c.setState(Disconnected(ev.CloseCode, ev.Reason))
			c.transport.Cancel()
			return false
		case EventError:
			c.logger.Warn("reassembler error", wslog.Code(ev.CloseCode), wslog.Err(ev.Err))
			c.failProtocol(ev.CloseCode, ev.Reason)
			return false
		}
	}
	return true
}

func (c *Client) failProtocol(code CloseCode, reason string) {
	c.sendCloseFrame(code, reason)
	c.setState(Disconnected(code, reason))
	c.transport.Cancel()
}

func (c *Client) dispatchMessage(m Message) {
	if c.delegate == nil {
		return
	}
	_ = c.notifyLane.Post(func() { c.delegate.OnMessageReceived(m) })
}
