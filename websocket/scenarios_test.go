package websocket

import (
	"bytes"
	"errors"
	"testing"
)

// TestScenario1_SingleTextFrame is scenario 1: one unmasked text frame.
func TestScenario1_SingleTextFrame(t *testing.T) {
	data := []byte{0x81, 0x05, 0x48, 0x65, 0x6c, 0x6c, 0x6f}
	out := Decode(data, DecodeOptions{})
	if out.Kind != DecodeFrame {
		t.Fatalf("expected DecodeFrame, got %v", out.Kind)
	}
	r := NewReassembler(0)
	events := r.Consume(out.Frame)
	if len(events) != 1 || events[0].Kind != EventText || events[0].Text != "Hello" {
		t.Fatalf("expected Text(%q), got %+v", "Hello", events)
	}
}

// TestScenario2_ExtendedLengthBinary is scenario 2: a 16-bit extended
// length binary frame carrying 256 bytes of 0xAB.
func TestScenario2_ExtendedLengthBinary(t *testing.T) {
	data := []byte{0x82, 0x7E, 0x01, 0x00}
	data = append(data, bytes.Repeat([]byte{0xAB}, 256)...)

	out := Decode(data, DecodeOptions{})
	if out.Kind != DecodeFrame {
		t.Fatalf("expected DecodeFrame, got %v", out.Kind)
	}
	r := NewReassembler(0)
	events := r.Consume(out.Frame)
	if len(events) != 1 || events[0].Kind != EventBinary {
		t.Fatalf("expected EventBinary, got %+v", events)
	}
	if len(events[0].Binary) != 256 {
		t.Fatalf("expected 256 bytes, got %d", len(events[0].Binary))
	}
	for _, b := range events[0].Binary {
		if b != 0xAB {
			t.Fatalf("expected every byte to be 0xAB, got %#x", b)
		}
	}
}

// TestScenario3_FragmentedTextTwoFrames is scenario 3: a FIN=0 start
// frame followed by a FIN=1 continuation.
func TestScenario3_FragmentedTextTwoFrames(t *testing.T) {
	r := NewReassembler(0)

	first := []byte{0x01, 0x03, 0x48, 0x65, 0x6c}
	out := Decode(first, DecodeOptions{})
	if out.Kind != DecodeFrame {
		t.Fatalf("expected DecodeFrame, got %v", out.Kind)
	}
	if events := r.Consume(out.Frame); events != nil {
		t.Fatalf("expected no event before FIN, got %+v", events)
	}

	second := []byte{0x80, 0x02, 0x6c, 0x6f}
	out = Decode(second, DecodeOptions{})
	if out.Kind != DecodeFrame {
		t.Fatalf("expected DecodeFrame, got %v", out.Kind)
	}
	events := r.Consume(out.Frame)
	if len(events) != 1 || events[0].Kind != EventText || events[0].Text != "Hello" {
		t.Fatalf("expected Text(%q), got %+v", "Hello", events)
	}
}

// TestScenario4_PingInterleavedDuringFragmentation is scenario 4: a Ping
// arrives between two fragments of a text message and is delivered
// separately, without perturbing the final payload.
func TestScenario4_PingInterleavedDuringFragmentation(t *testing.T) {
	r := NewReassembler(0)

	first := Decode([]byte{0x01, 0x03, 0x48, 0x65, 0x6c}, DecodeOptions{})
	_ = r.Consume(first.Frame)

	ping := []byte{0x89, 0x00}
	out := Decode(ping, DecodeOptions{})
	if out.Kind != DecodeFrame {
		t.Fatalf("expected DecodeFrame, got %v", out.Kind)
	}
	events := r.Consume(out.Frame)
	if len(events) != 1 || events[0].Kind != EventPing {
		t.Fatalf("expected EventPing, got %+v", events)
	}

	final := []byte{0x80, 0x02, 0x6c, 0x6f}
	out = Decode(final, DecodeOptions{})
	events = r.Consume(out.Frame)
	if len(events) != 1 || events[0].Kind != EventText || events[0].Text != "Hello" {
		t.Fatalf("expected Text(%q), got %+v", "Hello", events)
	}
}

// TestScenario5_CloseNormal is scenario 5: a normal-closure close frame.
func TestScenario5_CloseNormal(t *testing.T) {
	data := []byte{0x88, 0x02, 0x03, 0xE8}
	out := Decode(data, DecodeOptions{})
	if out.Kind != DecodeFrame {
		t.Fatalf("expected DecodeFrame, got %v", out.Kind)
	}
	r := NewReassembler(0)
	events := r.Consume(out.Frame)
	if len(events) != 1 || events[0].Kind != EventClosed {
		t.Fatalf("expected EventClosed, got %+v", events)
	}
	if events[0].CloseCode != CloseNormalClosure || events[0].Reason != "" {
		t.Fatalf("expected (1000, \"\"), got (%v, %q)", events[0].CloseCode, events[0].Reason)
	}
}

// TestScenario6_InvalidUTF8TextFrame is scenario 6: a single-frame text
// message whose payload is not valid UTF-8.
func TestScenario6_InvalidUTF8TextFrame(t *testing.T) {
	data := []byte{0x81, 0x02, 0xC3, 0x28}
	out := Decode(data, DecodeOptions{})
	if out.Kind != DecodeFrame {
		t.Fatalf("expected DecodeFrame, got %v", out.Kind)
	}
	r := NewReassembler(0)
	events := r.Consume(out.Frame)
	if len(events) != 1 || events[0].Kind != EventError {
		t.Fatalf("expected EventError, got %+v", events)
	}
	if !errors.Is(events[0].Err, ErrInvalidUTF8) || events[0].CloseCode != CloseInvalidFramePayload {
		t.Fatalf("expected ErrInvalidUTF8/1007, got %v/%v", events[0].Err, events[0].CloseCode)
	}
}

// TestScenario7_ContinuationWithoutPriorData is scenario 7: a lone
// continuation frame with no preceding data frame.
func TestScenario7_ContinuationWithoutPriorData(t *testing.T) {
	data := []byte{0x00, 0x01, 0x41}
	out := Decode(data, DecodeOptions{})
	if out.Kind != DecodeFrame {
		t.Fatalf("expected DecodeFrame, got %v", out.Kind)
	}
	r := NewReassembler(0)
	events := r.Consume(out.Frame)
	if len(events) != 1 || events[0].Kind != EventError {
		t.Fatalf("expected EventError, got %+v", events)
	}
	if !errors.Is(events[0].Err, ErrFirstFrameContinuation) {
		t.Fatalf("expected ErrFirstFrameContinuation, got %v", events[0].Err)
	}
}

// TestScenario8_EncodeTextHi is scenario 8: Encode(Text, "Hi") must
// produce an 8-byte masked frame.
func TestScenario8_EncodeTextHi(t *testing.T) {
	raw, err := Encode(OpcodeText, []byte("Hi"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(raw) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(raw))
	}
	if raw[0] != 0x81 {
		t.Errorf("expected byte 0 = 0x81, got %#x", raw[0])
	}
	if raw[1] != 0x82 {
		t.Errorf("expected byte 1 = 0x82 (MASK=1, len=2), got %#x", raw[1])
	}

	mask := raw[2:6]
	got := []byte{raw[6] ^ mask[0], raw[7] ^ mask[1]}
	if string(got) != "Hi" {
		t.Errorf("expected unmasked payload %q, got %q", "Hi", got)
	}
}
