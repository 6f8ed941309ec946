package aincodec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jaferr"
)

// reader is a small byte-slice cursor for the fixed-width, little-endian
// primitives every .ain section uses. It accumulates a sticky error so
// callers can chain reads and check once, mirroring the assembler's own
// sticky-error threading style (grounded on lang/compiler/asm.go's `a.err`
// field).
type reader struct {
	buf []byte
	off int
	tag string
	err error
}

func newReader(tag string, buf []byte) *reader { return &reader{buf: buf, tag: tag} }

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = jaferr.New(jaferr.InvalidInput, format, args...)
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.buf) {
		r.fail("section %q: truncated at offset %d (need %d more bytes)", r.tag, r.off, n)
		return false
	}
	return true
}

func (r *reader) i32() int32 {
	if !r.need(4) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *reader) cstring() string {
	if r.err != nil {
		return ""
	}
	idx := bytes.IndexByte(r.buf[r.off:], 0)
	if idx < 0 {
		r.fail("section %q: unterminated string at offset %d", r.tag, r.off)
		return ""
	}
	s := string(r.buf[r.off : r.off+idx])
	r.off += idx + 1
	return s
}

// msg1String reads an MSG1-obfuscated string of the given length: each of
// the length bytes is de-obfuscated by subtracting (0x60 + its index within
// the string), per §4.1's "+0x60+index" rule. The entry has no NUL
// terminator after those bytes.
func (r *reader) msg1String(length int) string {
	if !r.need(length) {
		return ""
	}
	raw := make([]byte, length)
	copy(raw, r.buf[r.off:r.off+length])
	r.off += length
	for i := range raw {
		raw[i] -= byte(0x60 + i)
	}
	return string(bytes.TrimRight(raw, "\x00"))
}

// typeTag reads a single-byte AinType tag, used for pre-v11 array element
// types and pre-v14 HLL parameter types (§4.1).
func (r *reader) typeTag() aintype.Tag {
	return aintype.Tag(r.u8())
}
