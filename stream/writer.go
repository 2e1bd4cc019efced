package stream

import (
	"io"
	"math"
)

// Writer serializes byte-aligned and bit-packed values to an
// underlying io.Writer at a fixed endianness. Once it enters the error
// state (any underlying write fails, or a caller passes an invalid bit
// count) it stays there: every subsequent method becomes a no-op that
// returns the same sticky error.
type Writer struct {
	w       io.Writer
	endian  Endianness
	state   State
	err     error
	carry   byte
	carryNB uint // number of valid low bits already placed in carry
}

// NewWriter returns an open Writer that emits to w using endian for
// multi-byte values.
func NewWriter(w io.Writer, endian Endianness) *Writer {
	return &Writer{w: w, endian: endian, state: StateOpen}
}

func (s *Writer) Endianness() Endianness { return s.endian }
func (s *Writer) State() State           { return s.state }
func (s *Writer) Err() error             { return s.err }

func (s *Writer) fail(err error) error {
	s.state = StateError
	s.err = err

	return err
}

// ready reports whether the stream can accept more writes, returning
// the sticky error otherwise.
func (s *Writer) ready() error {
	switch s.state {
	case StateClosed:
		return ErrStreamClosed
	case StateError:
		return s.err
	default:
		return nil
	}
}

func (s *Writer) writeRaw(p []byte) error {
	if err := s.ready(); err != nil {
		return err
	}

	n, err := s.w.Write(p)
	if err != nil {
		return s.fail(err)
	}

	if n != len(p) {
		return s.fail(ErrShortWrite)
	}

	return nil
}

// Write_uint8 writes a single byte. The carry buffer must be empty;
// callers mixing bit writes with byte writes must AlignToByteBoundary
// first.
func (s *Writer) Write_uint8(v uint8) error {
	return s.writeRaw([]byte{v})
}

func (s *Writer) Write_int8(v int8) error { return s.Write_uint8(uint8(v)) }

func (s *Writer) putUint16(v uint16) []byte {
	b := make([]byte, 2)
	if s.endian == BigEndian {
		b[0], b[1] = byte(v>>8), byte(v)
	} else {
		b[0], b[1] = byte(v), byte(v>>8)
	}

	return b
}

func (s *Writer) Write_uint16(v uint16) error { return s.writeRaw(s.putUint16(v)) }
func (s *Writer) Write_int16(v int16) error   { return s.Write_uint16(uint16(v)) }

// Write_uint24 writes the low 24 bits of v.
func (s *Writer) Write_uint24(v uint32) error {
	b := make([]byte, 3)
	if s.endian == BigEndian {
		b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
	} else {
		b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
	}

	return s.writeRaw(b)
}

func (s *Writer) putUint32(v uint32) []byte {
	b := make([]byte, 4)
	if s.endian == BigEndian {
		b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
	} else {
		b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	}

	return b
}

func (s *Writer) Write_uint32(v uint32) error { return s.writeRaw(s.putUint32(v)) }
func (s *Writer) Write_int32(v int32) error   { return s.Write_uint32(uint32(v)) }

// Write_uint40/48/56 write the low N bits of v.
func (s *Writer) Write_uint40(v uint64) error { return s.writeUintN(v, 5) }
func (s *Writer) Write_uint48(v uint64) error { return s.writeUintN(v, 6) }
func (s *Writer) Write_uint56(v uint64) error { return s.writeUintN(v, 7) }

func (s *Writer) writeUintN(v uint64, n int) error {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		if s.endian == BigEndian {
			b[n-1-i] = byte(v >> (8 * i))
		} else {
			b[i] = byte(v >> (8 * i))
		}
	}

	return s.writeRaw(b)
}

func (s *Writer) putUint64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		if s.endian == BigEndian {
			b[7-i] = byte(v >> (8 * i))
		} else {
			b[i] = byte(v >> (8 * i))
		}
	}

	return b
}

func (s *Writer) Write_uint64(v uint64) error { return s.writeRaw(s.putUint64(v)) }
func (s *Writer) Write_int64(v int64) error   { return s.Write_uint64(uint64(v)) }

// Write_float32 writes v using its bit-exact IEEE-754 representation.
func (s *Writer) Write_float32(v float32) error {
	return s.Write_uint32(math.Float32bits(v))
}

// Write_float64 writes v using its bit-exact IEEE-754 representation.
func (s *Writer) Write_float64(v float64) error {
	return s.Write_uint64(math.Float64bits(v))
}

// WriteBits packs the low nBits of v into the carry buffer LSB-first,
// flushing full bytes to the underlying writer as they fill. Bit
// packing order is independent of Endianness, which only governs
// multi-byte word layout.
func (s *Writer) WriteBits(v uint64, nBits uint) error {
	if err := s.ready(); err != nil {
		return err
	}

	if nBits > 64 {
		return s.fail(ErrInvalidBitCount)
	}

	for i := uint(0); i < nBits; i++ {
		bit := byte((v >> i) & 1)
		s.carry |= bit << s.carryNB
		s.carryNB++

		if s.carryNB == 8 {
			if err := s.writeRaw([]byte{s.carry}); err != nil {
				return err
			}

			s.carry = 0
			s.carryNB = 0
		}
	}

	return nil
}

// FillBits writes nBits copies of a single bit value (0 unless set is
// true). Used to pad gap subindices and write-only fields during
// complete-access reads, where the wire value is defined to be zero
// regardless of the underlying native data.
func (s *Writer) FillBits(nBits uint, set bool) error {
	for nBits > 0 {
		chunk := nBits
		if chunk > 64 {
			chunk = 64
		}

		var pattern uint64
		if set {
			pattern = ^uint64(0) >> (64 - chunk)
		}

		if err := s.WriteBits(pattern, chunk); err != nil {
			return err
		}

		nBits -= chunk
	}

	return nil
}

// FillBytes writes nBytes copies of value at byte granularity; the
// caller must already be at a byte boundary.
func (s *Writer) FillBytes(nBytes uint32, value uint8) error {
	for i := uint32(0); i < nBytes; i++ {
		if err := s.Write_uint8(value); err != nil {
			return err
		}
	}

	return nil
}

// Write_bool emits exactly one bit.
func (s *Writer) Write_bool(v bool) error {
	var b uint64
	if v {
		b = 1
	}

	return s.WriteBits(b, 1)
}

// AlignToByteBoundary pads the carry buffer up to the next byte
// boundary, filling padding bits with ones if fillWithOnes is true
// (zero otherwise), and flushes the resulting byte. It returns the
// number of padding bits inserted (0 if the buffer was already
// aligned).
func (s *Writer) AlignToByteBoundary(fillWithOnes bool) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	if s.carryNB == 0 {
		return 0, nil
	}

	padding := 8 - int(s.carryNB)

	fillBit := uint64(0)
	if fillWithOnes {
		fillBit = 1
	}

	for s.carryNB != 0 {
		if err := s.WriteBits(fillBit, 1); err != nil {
			return 0, err
		}
	}

	return padding, nil
}

// Write_string emits s followed by a terminating zero byte.
func (s *Writer) Write_string(str string) error {
	if err := s.writeRaw([]byte(str)); err != nil {
		return err
	}

	return s.Write_uint8(0)
}

// Write_line emits s followed by '\n', with no terminating zero byte.
func (s *Writer) Write_line(str string) error {
	return s.writeRaw(append([]byte(str), '\n'))
}

// Close aligns any pending partial byte with zero padding and closes
// the stream. Close on an already-closed or errored stream is a no-op
// returning the prior state's error, if any.
func (s *Writer) Close() error {
	if s.state != StateOpen {
		return s.err
	}

	if _, err := s.AlignToByteBoundary(false); err != nil {
		return err
	}

	s.state = StateClosed

	return nil
}
