// Package aincodec is the binary reader/writer for .ain containers
// (§4.1): container detection and decompression/decryption, followed by
// a version-dependent section codec that populates or serializes an
// ainfile.AinFile.
package aincodec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"

	"github.com/mna/ain-tools/internal/jaferr"
)

const (
	magicA = "AI2\x00" // variant A: length-prefixed zlib-compressed payload
	magicB = "AI2 "    // variant B: permuted XOR stream (legacy, major <= 5)
)

// xorKey is the fixed 256-byte permutation table variant-B containers are
// encrypted/decrypted with, applied cyclically over the payload. Its
// values are a process-wide constant shared by reader and writer, per the
// specification's note that "the permutation key is a fixed 256-byte
// table... the writer and reader must use the identical table".
var xorKey = func() [256]byte {
	var k [256]byte
	for i := range k {
		k[i] = byte(i*167 + 13)
	}
	return k
}()

func xorCrypt(buf []byte) {
	for i := range buf {
		buf[i] ^= xorKey[i%len(xorKey)]
	}
}

// detect identifies which container variant raw begins with, returning
// the payload to decode (decompressed for variant A, decrypted in place
// for variant B) or an InvalidInput error.
func detect(raw []byte) (payload []byte, err error) {
	switch {
	case bytes.HasPrefix(raw, []byte(magicA)):
		if len(raw) < 8 {
			return nil, jaferr.New(jaferr.InvalidInput, "truncated container header")
		}
		size := binary.LittleEndian.Uint32(raw[4:8])
		zr, err := zlib.NewReader(bytes.NewReader(raw[8:]))
		if err != nil {
			return nil, jaferr.New(jaferr.InvalidInput, "bad zlib stream: %v", err).WithCause(err)
		}
		defer zr.Close()
		buf := make([]byte, size)
		if _, err := io.ReadFull(zr, buf); err != nil {
			return nil, jaferr.New(jaferr.InvalidInput, "truncated compressed payload: %v", err).WithCause(err)
		}
		return buf, nil

	case bytes.HasPrefix(raw, []byte(magicB)):
		buf := append([]byte(nil), raw[4:]...)
		xorCrypt(buf)
		return buf, nil

	default:
		return nil, jaferr.New(jaferr.InvalidInput, "unrecognized container magic %q", safePrefix(raw))
	}
}

func safePrefix(b []byte) []byte {
	if len(b) > 4 {
		return b[:4]
	}
	return b
}

// encodeContainer reverses detect: compress+frame for v6+ (variant A),
// XOR-encrypt for <= v5 (variant B), per §4.1's encoding rule.
func encodeContainer(payload []byte, major int) ([]byte, error) {
	if major <= 5 {
		buf := append([]byte(nil), payload...)
		xorCrypt(buf)
		out := make([]byte, 0, len(buf)+4)
		out = append(out, magicB...)
		out = append(out, buf...)
		return out, nil
	}

	var zbuf bytes.Buffer
	zw := zlib.NewWriter(&zbuf)
	if _, err := zw.Write(payload); err != nil {
		return nil, jaferr.New(jaferr.InternalError, "zlib compression failed: %v", err).WithCause(err)
	}
	if err := zw.Close(); err != nil {
		return nil, jaferr.New(jaferr.InternalError, "zlib compression failed: %v", err).WithCause(err)
	}

	out := make([]byte, 0, len(zbuf.Bytes())+8)
	out = append(out, magicA...)
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(payload)))
	out = append(out, sizeBuf[:]...)
	out = append(out, zbuf.Bytes()...)
	return out, nil
}
