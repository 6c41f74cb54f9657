package websocket

import "errors"

// Protocol error sentinels (RFC 6455 Section 7.4.1, close code 1002 unless
// noted otherwise). Decode and the reassembler return these either bare or
// wrapped with context via fmt.Errorf's %w, so errors.Is works on either.
var (
	// ErrUnknownOpcode is returned for a frame whose opcode nibble is not
	// one of the six RFC 6455 defines.
	ErrUnknownOpcode = errors.New("websocket: unknown opcode")

	// ErrReservedBits is returned when RSV1/RSV2/RSV3 is set; this engine
	// never negotiates extensions, so RSV must always be zero.
	ErrReservedBits = errors.New("websocket: reserved bits set")

	// ErrServerMustNotMask is returned when an inbound frame has MASK=1.
	// A compliant server never masks; the client unmasks only a Pong, and
	// only when DecodeOptions.AllowMaskedPong is set.
	ErrServerMustNotMask = errors.New("websocket: server must not mask")

	// ErrFragmentedControl is returned for a control frame with FIN=0.
	ErrFragmentedControl = errors.New("websocket: fragmented control frame")

	// ErrControlTooLong is returned for a control frame payload > 125 bytes.
	ErrControlTooLong = errors.New("websocket: control frame too long")

	// ErrMalformedClose is returned for a close frame whose body is exactly
	// one byte (too short to carry a close code, too long to be absent).
	ErrMalformedClose = errors.New("websocket: malformed close frame")

	// ErrLengthHighBitSet is returned when a 64-bit extended length has its
	// most significant bit set, which RFC 6455 Section 5.2 forbids.
	ErrLengthHighBitSet = errors.New("websocket: 64-bit length has high bit set")

	// ErrFirstFrameContinuation is returned when the reassembler is idle
	// and receives a Continuation frame.
	ErrFirstFrameContinuation = errors.New("websocket: first frame cannot be continuation")

	// ErrInterleavedData is returned when a Text or Binary frame arrives
	// while the reassembler is mid-message.
	ErrInterleavedData = errors.New("websocket: interleaved data frame")

	// ErrInvalidUTF8 (close code 1007) is returned for a text message, or a
	// close frame reason, that is not strictly valid UTF-8.
	ErrInvalidUTF8 = errors.New("websocket: invalid UTF-8")

	// ErrMessageTooBig (close code 1009) is returned when a frame's declared
	// length, or a fragmented message's accumulated length, exceeds the
	// configured maximum payload.
	ErrMessageTooBig = errors.New("websocket: message too big")

	// ErrHandshakeFailed is an engine-local error: the upgrade response was
	// missing or carried an incorrect Sec-WebSocket-Accept.
	ErrHandshakeFailed = errors.New("websocket: handshake failed")

	// ErrNotConnected is returned by Client.Write* when the connection is
	// not in the Connected state.
	ErrNotConnected = errors.New("websocket: not connected")

	// ErrLaneClosed is returned to a pending write's completion callback
	// when its lane was closed (connection torn down) before the write
	// reached the transport.
	ErrLaneClosed = errors.New("websocket: lane closed")

	// ErrForceDisconnected is the reason recorded on Disconnected when
	// ForceDisconnect tore the connection down without a close handshake.
	ErrForceDisconnected = errors.New("websocket: forced disconnect")
)
