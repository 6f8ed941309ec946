package jamasm

import (
	"encoding/binary"
	"math"
)

// encodeInsn appends one instruction to code: a 2-byte little-endian opcode
// followed by each argument word as a 4-byte little-endian int, per §4.2's
// fixed-width encoding rule (grounded on asm_write_opcode/asm_write_argument
// in the original source; adapted from lang/compiler/compiler.go's
// encodeInsn, which pads a variable-width argument instead).
func encodeInsn(code []byte, op Opcode, args []int32) []byte {
	var opBuf [2]byte
	binary.LittleEndian.PutUint16(opBuf[:], uint16(op))
	code = append(code, opBuf[:]...)
	for _, a := range args {
		var argBuf [4]byte
		binary.LittleEndian.PutUint32(argBuf[:], uint32(a))
		code = append(code, argBuf[:]...)
	}
	return code
}

func float32bits(f float32) uint32 { return math.Float32bits(f) }

func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func put32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
