package websocket

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // SHA-1 is mandated by RFC 6455 Section 1.3, not used for secrecy.
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// websocketGUID is the magic value RFC 6455 Section 1.3 appends to the
// client's key before hashing to produce Sec-WebSocket-Accept.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// GenerateKey returns a fresh base64-encoded 16-byte nonce suitable for
// the Sec-WebSocket-Key request header.
func GenerateKey() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("websocket: generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ExpectedAccept computes the value a compliant server must return in
// Sec-WebSocket-Accept for the given request key (RFC 6455 Section 1.3):
// base64(SHA-1(key ++ GUID)).
func ExpectedAccept(key string) string {
	//nolint:gosec // SHA-1 is mandated by RFC 6455 Section 1.3, not used for secrecy.
	h := sha1.New()
	h.Write([]byte(key))
	h.Write([]byte(websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// HandshakeResult is what ValidateAccept extracts from a successful
// upgrade response: the full header set (surfaced on
// ConnectionState.Connected) and the negotiated subprotocol, if any.
type HandshakeResult struct {
	Headers     http.Header
	Subprotocol string
}

// ValidateAccept checks that resp carries a Sec-WebSocket-Accept matching
// ExpectedAccept(key). A server that omits the header, or computes it
// incorrectly, does not implement the upgrade and is rejected with
// ErrHandshakeFailed.
func ValidateAccept(resp *http.Response, key string) (HandshakeResult, error) {
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return HandshakeResult{}, fmt.Errorf("%w: status %d", ErrHandshakeFailed, resp.StatusCode)
	}

	accept := resp.Header.Get("Sec-WebSocket-Accept")
	if accept == "" {
		return HandshakeResult{}, fmt.Errorf("%w: missing Sec-WebSocket-Accept", ErrHandshakeFailed)
	}
	if accept != ExpectedAccept(key) {
		return HandshakeResult{}, fmt.Errorf("%w: Sec-WebSocket-Accept mismatch", ErrHandshakeFailed)
	}

	return HandshakeResult{
		Headers:     resp.Header,
		Subprotocol: resp.Header.Get("Sec-WebSocket-Protocol"),
	}, nil
}

// BuildUpgradeRequest assembles the HTTP/1.1 GET that starts the opening
// handshake (RFC 6455 Section 4.1), including Upgrade/Connection/
// Sec-WebSocket-Version/Key/Host plus optional subprotocol and
// caller-supplied extra headers. host is the "host:port" dial target;
// path defaults to "/".
func BuildUpgradeRequest(host, path, key string, opts DialOptions) *http.Request {
	if path == "" {
		path = "/"
	}

	req := &http.Request{
		Method:     http.MethodGet,
		URL:        &url.URL{Path: path},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header, len(opts.Header)+6),
		Host:       host,
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	req.Header.Set("Host", host)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", key)

	if len(opts.Subprotocols) > 0 {
		req.Header.Set("Sec-WebSocket-Protocol", strings.Join(opts.Subprotocols, ", "))
	}

	origin := opts.Origin
	if origin == "" {
		scheme := "http"
		if opts.TLSConfig != nil {
			scheme = "https"
		}
		origin = scheme + "://" + host
	}
	req.Header.Set("Origin", origin)

	return req
}

// MarshalUpgradeRequest serializes req as the raw bytes to hand to
// Transport.Send, since the engine speaks to a raw byte-stream transport
// rather than through net/http's own client.
func MarshalUpgradeRequest(req *http.Request) ([]byte, error) {
	var buf bytes.Buffer
	if err := req.Write(&buf); err != nil {
		return nil, fmt.Errorf("websocket: marshal upgrade request: %w", err)
	}
	return buf.Bytes(), nil
}

// headerBlockTerminator is the blank line that ends an HTTP/1.1 header
// block (RFC 7230 Section 3).
var headerBlockTerminator = []byte("\r\n\r\n")

// SplitUpgradeResponse scans buf for a complete HTTP header block. It
// returns found=false when buf does not yet contain one (the caller
// should wait for more transport bytes, mirroring Decode's NeedsMore).
// When found, headerLen is the number of bytes the header block occupies,
// including the terminating blank line; any bytes after headerLen in buf
// are frame bytes that arrived in the same transport chunk and belong to
// the reassembler, not the handshake.
func SplitUpgradeResponse(buf []byte) (headerLen int, found bool) {
	idx := bytes.Index(buf, headerBlockTerminator)
	if idx < 0 {
		return 0, false
	}
	return idx + len(headerBlockTerminator), true
}

// ParseUpgradeResponse parses the header block identified by
// SplitUpgradeResponse into an *http.Response. It never reads a body: an
// upgrade response's "body" is the start of the WebSocket byte stream,
// which the caller routes to the reassembler separately.
func ParseUpgradeResponse(headerBlock []byte) (*http.Response, error) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(headerBlock)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	return resp, nil
}
