package vm

import (
	"encoding/binary"
	"math"

	"github.com/rhelmot/objectively/object"
)

// decoder is a cursor over a bytecode block, mirroring
// original_source/src/interpreter.rs's Cursor<&[u8]> plus its
// next_opcode/next_unsigned/next_signed/next_float/next_bytes helpers.
type decoder struct {
	code []byte
	pos  int
}

func (d *decoder) atEnd() bool { return d.pos >= len(d.code) }

func (d *decoder) nextByte() (byte, *object.Object) {
	if d.pos >= len(d.code) {
		return 0, object.NewRuntimeError("End of bytecode")
	}
	b := d.code[d.pos]
	d.pos++
	return b, nil
}

// nextOpcode reads the next instruction byte. An empty stream is
// End-of-bytecode (§4.6 "Bytecode-end detection"); the byte itself is
// validated against the known opcode set by the dispatch switch, not
// here, matching the original's separate TryFromPrimitive failure.
func (d *decoder) nextOpcode() (Op, *object.Object) {
	if d.atEnd() {
		return 0, object.NewRuntimeError("End of bytecode")
	}
	b, exc := d.nextByte()
	if exc != nil {
		return 0, exc
	}
	return Op(b), nil
}

// nextUnsigned decodes an unsigned LEB128 integer (§6).
func (d *decoder) nextUnsigned() (uint64, *object.Object) {
	var result uint64
	var shift uint
	for {
		b, exc := d.nextByte()
		if exc != nil {
			return 0, object.NewRuntimeError("End of bytecode")
		}
		if shift >= 64 {
			return 0, object.NewOverflowError("Literal integer too large")
		}
		chunk := uint64(b & 0x7f)
		if shift == 63 && chunk > 1 {
			return 0, object.NewOverflowError("Literal integer too large")
		}
		result |= chunk << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// nextSigned decodes a signed (two's-complement, sign-extended) LEB128
// integer (§6), used both for LIT_INT and for pc-relative jump offsets.
func (d *decoder) nextSigned() (int64, *object.Object) {
	var result int64
	var shift uint
	var b byte
	for {
		var exc *object.Object
		if shift >= 64 {
			return 0, object.NewOverflowError("Literal integer too large")
		}
		b, exc = d.nextByte()
		if exc != nil {
			return 0, object.NewRuntimeError("End of bytecode")
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, nil
}

// nextFloat decodes 8 bytes of little-endian IEEE-754 (§6).
func (d *decoder) nextFloat() (float64, *object.Object) {
	if d.pos+8 > len(d.code) {
		return 0, object.NewRuntimeError("End of bytecode")
	}
	bits := binary.LittleEndian.Uint64(d.code[d.pos : d.pos+8])
	d.pos += 8
	return math.Float64frombits(bits), nil
}

// nextBytes decodes a length-prefixed byte literal: an unsigned LEB128
// length followed by that many raw bytes (§6).
func (d *decoder) nextBytes() ([]byte, *object.Object) {
	n, exc := d.nextUnsigned()
	if exc != nil {
		return nil, exc
	}
	if uint64(d.pos)+n > uint64(len(d.code)) {
		return nil, object.NewRuntimeError("End of bytecode")
	}
	buf := make([]byte, n)
	copy(buf, d.code[d.pos:d.pos+int(n)])
	d.pos += int(n)
	return buf, nil
}
