package websocket

import "encoding/binary"

// readU16BE reads a big-endian uint16 at offset. The caller guarantees
// len(buf) >= offset+2.
func readU16BE(buf []byte, offset int) uint16 {
	return binary.BigEndian.Uint16(buf[offset : offset+2])
}

// readU64BE reads a big-endian uint64 at offset. The caller guarantees
// len(buf) >= offset+8.
func readU64BE(buf []byte, offset int) uint64 {
	return binary.BigEndian.Uint64(buf[offset : offset+8])
}

// writeU16BE writes v as big-endian at offset. The caller guarantees
// len(buf) >= offset+2.
func writeU16BE(buf []byte, offset int, v uint16) {
	binary.BigEndian.PutUint16(buf[offset:offset+2], v)
}

// writeU32BE writes v as big-endian at offset. The caller guarantees
// len(buf) >= offset+4.
func writeU32BE(buf []byte, offset int, v uint32) {
	binary.BigEndian.PutUint32(buf[offset:offset+4], v)
}

// writeU64BE writes v as big-endian at offset. The caller guarantees
// len(buf) >= offset+8.
func writeU64BE(buf []byte, offset int, v uint64) {
	binary.BigEndian.PutUint64(buf[offset:offset+8], v)
}

// xorMask writes dest[i] = src[i] ^ key[(startIndex+i)%4] for every i,
// which is RFC 6455 Section 5.3's masking algorithm generalized to let a
// caller mask a sub-slice of a larger logical payload without re-deriving
// the mask key's phase at the slice boundary. dest and src may alias (a
// single call with dest == src masks or unmasks in place).
func xorMask(dest, src []byte, key [4]byte, startIndex int) {
	for i := range src {
		dest[i] = src[i] ^ key[(startIndex+i)%4]
	}
}
