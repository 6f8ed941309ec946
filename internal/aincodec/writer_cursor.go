package aincodec

import (
	"encoding/binary"
	"math"
)

// writer is the write-side counterpart of reader: an append-only byte
// buffer for the fixed-width little-endian primitives every section uses.
type writer struct {
	buf []byte
}

func (w *writer) i32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }

func (w *writer) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *writer) cstring(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// msg1String writes s obfuscated per §4.1's "+0x60+index" rule. Unlike a
// regular cstring it has no NUL terminator: the length word written
// before it covers the whole entry.
func (w *writer) msg1String(s string) {
	raw := []byte(s)
	for i := range raw {
		raw[i] += byte(0x60 + i)
	}
	w.buf = append(w.buf, raw...)
}
