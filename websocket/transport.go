package websocket

import (
	"context"
	"crypto/tls"
)

// TransportStateKind discriminates TransportState, mirroring the
// Network.framework-shaped lifecycle this engine's inbound transport
// interface is modeled on: setup, preparing, waiting, ready, failed,
// cancelled.
type TransportStateKind int

const (
	TransportSetup TransportStateKind = iota
	TransportPreparing
	TransportWaiting
	TransportReady
	TransportFailed
	TransportCancelled
)

// TransportState is the value carried by TransportDelegate.OnTransportStateChanged.
type TransportState struct {
	Kind TransportStateKind
	Err  error // populated for TransportWaiting and TransportFailed
}

// String renders a TransportStateKind for logging.
func (k TransportStateKind) String() string {
	switch k {
	case TransportSetup:
		return "Setup"
	case TransportPreparing:
		return "Preparing"
	case TransportWaiting:
		return "Waiting"
	case TransportReady:
		return "Ready"
	case TransportFailed:
		return "Failed"
	case TransportCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// String renders a TransportState for logging.
func (s TransportState) String() string {
	if s.Err != nil {
		return s.Kind.String() + "(" + s.Err.Error() + ")"
	}
	return s.Kind.String()
}

// Transport is the external collaborator the connection orchestrator
// drives. The engine's correctness contract does not depend on any
// particular Transport implementation; transport/tcp.go ships one
// concrete implementation over net.Conn/tls.Conn.
type Transport interface {
	// Connect dials host:port, optionally under TLS, honoring ctx's
	// deadline as the connect timeout. Connect itself returning an error
	// is equivalent to reporting TransportFailed; most implementations do
	// both in the same call.
	Connect(ctx context.Context, host, port string, tlsConfig *tls.Config) error

	// Send delivers data in submission order and reports the outcome via
	// the completion callback. The callback may run before Send returns:
	// the default transport writes synchronously and calls it inline.
	Send(data []byte, completion func(error))

	// Cancel tears the transport down. Any in-flight Send's completion
	// fires with an error; any in-flight read exits. The default
	// transport reports TransportCancelled from within Cancel.
	Cancel()
}

// TransportDelegate is how a Transport reports its lifecycle and inbound
// bytes back to whoever is driving it (Client, in this package).
type TransportDelegate interface {
	OnTransportStateChanged(TransportState)
	OnViabilityChanged(viable bool)
	OnBetterPathAvailable(available bool)
	OnDataReceived(data []byte)
}
