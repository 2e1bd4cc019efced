package cood

import (
	"github.com/gpcc-project/gpcc/stream"
)

// Native memory is assumed to be laid out little-endian, matching the
// embedded targets this library is built for; integer and float
// encoding is therefore a straight byte copy of the low
// BitLengthInStream(t)/8 bytes of each native element, never a
// byte-swap. RECORD's stuffed Boolean subindices share a native byte
// with neighboring fields; RECORD extracts each one with readBits into
// a single byte of its own before passing it through here (and stores
// decoded ones back with writeBits). ARRAY's Boolean elements do come
// through here, one full native byte per element (never stuffed, since
// an array has no neighboring subindices to share a byte with), bit
// packed nElements-wide on the wire.

// nativeElemSize returns the per-element native storage size in bytes
// for non-string, non-bit-based types.
func nativeElemSize(t DataType) int {
	return int(BitLengthInMemory(t)) / 8
}

// streamElemSize returns the per-element on-wire size in bytes for
// byte-based (non-bit-based) types.
func streamElemSize(t DataType) int {
	return int(BitLengthInStream(t)) / 8
}

// EncodeNativeToStream writes nElements of t from native (laid out
// back-to-back at native width) to w in CANopen wire form.
// completeAccess affects only string handling: under complete access a
// visible string is written as a fixed-length field (zero-padded, no
// early stop at the terminator); under simple access it is truncated at
// the first zero byte and then zero-padded to nElements.
func EncodeNativeToStream(w *stream.Writer, t DataType, nElements int, completeAccess bool, native []byte) error {
	switch t {
	case Boolean:
		return encodeBooleans(w, nElements, native)

	case VisibleString, OctetString, Domain:
		// Only a visible string has a terminator; the other byte-like
		// types are always written in full.
		return encodeBytesLike(w, nElements, completeAccess || t != VisibleString, native)

	case UnicodeString:
		return encodeUnicodeLike(w, nElements, native)

	default:
		return encodeFixedWidth(w, t, nElements, native)
	}
}

// encodeBooleans writes nElements bits, one per native byte (each either
// zero or nonzero), packing them LSB-first into the stream.
func encodeBooleans(w *stream.Writer, nElements int, native []byte) error {
	for e := 0; e < nElements; e++ {
		if err := w.Write_bool(native[e] != 0); err != nil {
			return err
		}
	}

	return nil
}

func encodeFixedWidth(w *stream.Writer, t DataType, nElements int, native []byte) error {
	nSize := nativeElemSize(t)
	sSize := streamElemSize(t)

	for e := 0; e < nElements; e++ {
		off := e * nSize
		chunk := native[off : off+sSize]

		for _, b := range chunk {
			if err := w.Write_uint8(b); err != nil {
				return err
			}
		}
	}

	return nil
}

func encodeBytesLike(w *stream.Writer, nElements int, completeAccess bool, native []byte) error {
	n := nElements
	if !completeAccess {
		for i, b := range native[:nElements] {
			if b == 0 {
				n = i
				break
			}
		}
	}

	for i := 0; i < n; i++ {
		if err := w.Write_uint8(native[i]); err != nil {
			return err
		}
	}

	for i := n; i < nElements; i++ {
		if err := w.Write_uint8(0); err != nil {
			return err
		}
	}

	return nil
}

func encodeUnicodeLike(w *stream.Writer, nElements int, native []byte) error {
	for e := 0; e < nElements; e++ {
		if err := w.Write_uint8(native[2*e]); err != nil {
			return err
		}

		if err := w.Write_uint8(native[2*e+1]); err != nil {
			return err
		}
	}

	return nil
}

// DecodeStreamToNative reads nElements of t from r in CANopen wire
// form into native (which must already be sized for nElements native
// elements). For the string types, nElements bytes/chars are always
// consumed and copied into native as they are; no terminator handling
// takes place.
func DecodeStreamToNative(r *stream.Reader, t DataType, nElements int, native []byte) error {
	switch t {
	case Boolean:
		return decodeBooleans(r, nElements, native)

	case VisibleString, OctetString, Domain:
		return decodeBytesLike(r, nElements, native)

	case UnicodeString:
		return decodeUnicodeLike(r, nElements, native)

	default:
		return decodeFixedWidth(r, t, nElements, native)
	}
}

// decodeBooleans reads nElements bits, one per native byte (0x00 or
// 0x01).
func decodeBooleans(r *stream.Reader, nElements int, native []byte) error {
	for e := 0; e < nElements; e++ {
		v, err := r.Read_bool()
		if err != nil {
			return err
		}

		native[e] = 0
		if v {
			native[e] = 1
		}
	}

	return nil
}

func decodeFixedWidth(r *stream.Reader, t DataType, nElements int, native []byte) error {
	nSize := nativeElemSize(t)
	sSize := streamElemSize(t)

	for e := 0; e < nElements; e++ {
		off := e * nSize

		for i := 0; i < sSize; i++ {
			b, err := r.Read_uint8()
			if err != nil {
				return err
			}

			native[off+i] = b
		}

		for i := sSize; i < nSize; i++ {
			native[off+i] = 0
		}
	}

	return nil
}

func decodeBytesLike(r *stream.Reader, nElements int, native []byte) error {
	for i := 0; i < nElements; i++ {
		b, err := r.Read_uint8()
		if err != nil {
			return err
		}

		native[i] = b
	}

	return nil
}

func decodeUnicodeLike(r *stream.Reader, nElements int, native []byte) error {
	for e := 0; e < nElements; e++ {
		lo, err := r.Read_uint8()
		if err != nil {
			return err
		}

		hi, err := r.Read_uint8()
		if err != nil {
			return err
		}

		native[2*e] = lo
		native[2*e+1] = hi
	}

	return nil
}

// DetermineSizeOfCANopenEncodedData returns the bit size of the data in
// nElements of t stored at native. For a visible string only the
// characters before the first zero byte are counted, so the result can
// be smaller than what EncodeNativeToStream writes, which always pads
// to nElements bytes.
func DetermineSizeOfCANopenEncodedData(t DataType, nElements int, native []byte) int {
	if t == VisibleString {
		n := nElements
		for i, b := range native[:nElements] {
			if b == 0 {
				n = i
				break
			}
		}

		return n * 8
	}

	return int(BitLengthInStream(t)) * nElements
}
