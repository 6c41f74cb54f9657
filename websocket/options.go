package websocket

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/coregx/wsclient/internal/wslog"
)

// defaultConnectTimeout is the transport connect timeout used when
// DialOptions.ConnectTimeout is left unset.
const defaultConnectTimeout = 10 * time.Second

// DialOptions configures how Client.Connect dials and upgrades.
type DialOptions struct {
	Host string
	Path string

	TLSConfig      *tls.Config
	ConnectTimeout time.Duration

	Header       http.Header
	Subprotocols []string
	Origin       string

	// AllowMaskedPong opts into accepting a masked Pong frame from a
	// misbehaving server instead of failing the connection. Off by
	// default, since RFC 6455 forbids a server from masking anything.
	AllowMaskedPong bool

	// MaxMessagePayload caps both a single frame's declared length and a
	// fragmented message's accumulated length. 0 means unlimited aside
	// from the 63-bit wire ceiling.
	MaxMessagePayload uint64

	// Logger receives structured diagnostics from Client. When nil,
	// wslog.Default() is used. Client does not pass it to the transport;
	// the default transport takes its own logger through transport.New.
	Logger *wslog.Logger
}

// withDefaults returns a copy of o with zero-value fields replaced by
// their documented defaults.
func (o DialOptions) withDefaults() DialOptions {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.Logger == nil {
		o.Logger = wslog.Default()
	}
	return o
}

// WriteResult is the value passed to write completion callbacks. There is
// no success payload beyond "written", so a plain error (nil on success)
// stays idiomatic instead of a boxed Result[T].
type WriteResult = error

// Delegate receives Client's lifecycle and message notifications, always
// on the user-notification lane and always in the order the read and
// write lanes produced them.
type Delegate interface {
	OnStateChanged(ConnectionState)
	OnViabilityChanged(viable bool)
	OnBetterPathAvailable(available bool)
	OnMessageReceived(Message)
}
