package websocket

// Message is the sealed union of values Delegate.OnMessageReceived can
// carry: a TextMessage, BinaryMessage, PingMessage, or PongMessage. The
// private marker method closes the union against outside implementers,
// matching the "closed sum over open interface{}" preference in this
// codebase's other event types (Event, DecodeOutcome).
type Message interface {
	messageMarker()
}

// TextMessage is a complete, UTF-8-validated text message.
type TextMessage string

func (TextMessage) messageMarker() {}

// BinaryMessage is a complete binary message.
type BinaryMessage []byte

func (BinaryMessage) messageMarker() {}

// PingMessage is an inbound ping's application data (possibly empty).
type PingMessage []byte

func (PingMessage) messageMarker() {}

// PongMessage is an inbound pong's application data (possibly empty).
type PongMessage []byte

func (PongMessage) messageMarker() {}
