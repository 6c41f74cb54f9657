package websocket

import "net/http"

// ConnectionStateKind discriminates the sealed ConnectionState union.
type ConnectionStateKind int

const (
	StateDisconnected ConnectionStateKind = iota
	StateConnecting
	StateWaiting
	StateConnected
)

// String names a ConnectionStateKind for logging.
func (k ConnectionStateKind) String() string {
	switch k {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateWaiting:
		return "Waiting"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// ConnectionState is the client's externally observable state. Equality
// is structural: two States with the same Kind and payload
// compare equal, which Client.setState relies on to emit at most one
// delegate notification per distinct state.
type ConnectionState struct {
	Kind ConnectionStateKind

	// Populated when Kind == StateDisconnected.
	Code   CloseCode
	Reason string

	// Populated when Kind == StateWaiting.
	Err error

	// Populated when Kind == StateConnected.
	Headers     http.Header
	Subprotocol string
}

// Equal reports structural equality between two ConnectionState values.
func (s ConnectionState) Equal(other ConnectionState) bool {
	if s.Kind != other.Kind {
		return false
	}
	switch s.Kind {
	case StateDisconnected:
		return s.Code == other.Code && s.Reason == other.Reason
	case StateWaiting:
		return errorsEqual(s.Err, other.Err)
	case StateConnected:
		return s.Subprotocol == other.Subprotocol && headersEqual(s.Headers, other.Headers)
	default:
		return true
	}
}

func errorsEqual(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Error() == b.Error()
}

func headersEqual(a, b http.Header) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i] != vb[i] {
				return false
			}
		}
	}
	return true
}

// String renders a ConnectionState for logging.
func (s ConnectionState) String() string {
	switch s.Kind {
	case StateDisconnected:
		return "Disconnected(" + s.Code.String() + ", " + s.Reason + ")"
	case StateWaiting:
		if s.Err != nil {
			return "Waiting(" + s.Err.Error() + ")"
		}
		return "Waiting"
	case StateConnected:
		return "Connected(" + s.Subprotocol + ")"
	default:
		return s.Kind.String()
	}
}

// Disconnected builds a StateDisconnected ConnectionState.
func Disconnected(code CloseCode, reason string) ConnectionState {
	return ConnectionState{Kind: StateDisconnected, Code: code, Reason: reason}
}

// Connecting builds a StateConnecting ConnectionState.
func Connecting() ConnectionState {
	return ConnectionState{Kind: StateConnecting}
}

// Waiting builds a StateWaiting ConnectionState.
func Waiting(err error) ConnectionState {
	return ConnectionState{Kind: StateWaiting, Err: err}
}

// Connected builds a StateConnected ConnectionState.
func Connected(headers http.Header, subprotocol string) ConnectionState {
	return ConnectionState{Kind: StateConnected, Headers: headers, Subprotocol: subprotocol}
}
