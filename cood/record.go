package cood

import (
	"errors"
	"fmt"

	"github.com/gpcc-project/gpcc/osal"
	"github.com/gpcc-project/gpcc/stream"
)

// SubIdxDescr describes one subindex of a RECORD object.
//
// A subindex with Type == Null and NElements == 0 is an empty subindex:
// it is reported as nonexistent and occupies no stream bits. A
// subindex with Type == Null and NElements > 0 is a gap: it reads back
// as NElements zero bits, ignores whatever is written to it, and
// consumes NElements stream bits during complete access. Every other
// subindex is a normal, typed field at ByteOffset/BitOffset into the
// record's native struct.
type SubIdxDescr struct {
	Name       string
	Type       DataType
	NElements  int
	Attributes Attr
	ByteOffset uint32
	BitOffset  uint8
}

// Record is a CANopen RECORD object: a heterogeneous, fixed layout of
// subindices mapped onto a caller-owned native struct.
type Record struct {
	name          string
	si0           uint8
	native        []byte
	structSize    uint32
	mu            *osal.Mutex
	subs          []SubIdxDescr
	notifiable    Notifiable
	streamSizeBit uint32
}

// NewRecord validates descriptions and the native struct size, then
// returns a ready-to-use Record. native must hold at least structSize
// bytes of backing storage; every subindex's offset/width must fit
// inside it.
func NewRecord(name string, native []byte, structSize uint32, mu *osal.Mutex, subs []SubIdxDescr, notifiable Notifiable) (*Record, error) {
	if len(subs) > 255 {
		return nil, errors.New("cood.NewRecord: too many subindices (max 255)")
	}

	if uint32(len(native)) < structSize {
		return nil, fmt.Errorf("cood.NewRecord: native buffer too small: have %d, need %d", len(native), structSize)
	}

	var streamSizeBit uint32
	anyWriteable := false
	prevSIwasGap := false

	for i := range subs {
		sd := &subs[i]

		if sd.Type == Null {
			if sd.NElements == 0 {
				if sd.Name != "" || sd.Attributes != 0 || sd.ByteOffset != 0 || sd.BitOffset != 0 {
					return nil, fmt.Errorf("cood.NewRecord: subindex %d: invalid description of empty subindex", i+1)
				}

				prevSIwasGap = false

				continue
			}

			if sd.Name == "" || sd.Attributes&AttrAccessRW == 0 || sd.ByteOffset != 0 || sd.BitOffset != 0 {
				return nil, fmt.Errorf("cood.NewRecord: subindex %d: invalid description of gap subindex", i+1)
			}

			if prevSIwasGap {
				return nil, fmt.Errorf("cood.NewRecord: subindex %d: adjacent gap subindices", i+1)
			}

			prevSIwasGap = true
			streamSizeBit += uint32(sd.NElements)

			continue
		}

		if sd.Name == "" {
			return nil, fmt.Errorf("cood.NewRecord: subindex %d: no name", i+1)
		}

		bitLength := BitLengthInStream(sd.Type)
		nativeBitLength := BitLengthInMemory(sd.Type)

		if bitLength == 0 || nativeBitLength == 0 {
			return nil, &DataTypeNotSupportedError{Type: sd.Type}
		}

		if sd.Attributes&AttrAccessRW == 0 {
			return nil, fmt.Errorf("cood.NewRecord: subindex %d: no read- or write-permission set", i+1)
		}

		if IsStringType(sd.Type) {
			if sd.NElements == 0 || sd.NElements > int(0xFFFE/bitLength) {
				return nil, fmt.Errorf("cood.NewRecord: subindex %d: nElements out of range", i+1)
			}
		} else if sd.NElements != 1 {
			return nil, fmt.Errorf("cood.NewRecord: subindex %d: nElements must be 1", i+1)
		}

		if IsNativeDataStuffed(sd.Type) {
			if sd.BitOffset > 7 {
				return nil, fmt.Errorf("cood.NewRecord: subindex %d: invalid bitOffset", i+1)
			}

			if sd.ByteOffset+uint32(uint16(sd.BitOffset)+bitLength+7)/8 > structSize {
				return nil, fmt.Errorf("cood.NewRecord: subindex %d: refers to data outside the native structure", i+1)
			}
		} else {
			if sd.BitOffset != 0 {
				return nil, fmt.Errorf("cood.NewRecord: subindex %d: invalid bitOffset", i+1)
			}

			if sd.ByteOffset+(uint32(nativeBitLength)*uint32(sd.NElements))/8 > structSize {
				return nil, fmt.Errorf("cood.NewRecord: subindex %d: refers to data outside the native structure", i+1)
			}
		}

		if sd.Attributes&AttrAccessWR != 0 {
			anyWriteable = true
		}

		if IsDataTypeBitBased(sd.Type) {
			streamSizeBit += uint32(bitLength)
		} else {
			requiredPadding := (8 - streamSizeBit%8) % 8

			if requiredPadding != 0 {
				if prevSIwasGap {
					return nil, fmt.Errorf("cood.NewRecord: subindex %d: gap did not establish byte alignment", i+1)
				}

				streamSizeBit += requiredPadding
			}

			streamSizeBit += uint32(bitLength) * uint32(sd.NElements)
		}

		prevSIwasGap = false
	}

	if anyWriteable && mu == nil {
		return nil, errors.New("cood.NewRecord: at least one subindex is writeable, but no mutex was supplied")
	}

	if notifiable == nil {
		notifiable = NopNotifiable{}
	}

	return &Record{
		name:          name,
		si0:           uint8(len(subs)),
		native:        native,
		structSize:    structSize,
		mu:            mu,
		subs:          subs,
		notifiable:    notifiable,
		streamSizeBit: streamSizeBit,
	}, nil
}

func (r *Record) GetObjectCode() ObjectCode    { return ObjectCodeRecord }
func (r *Record) GetObjectDataType() DataType  { return Domain }
func (r *Record) GetObjectName() string        { return r.name }
func (r *Record) GetNbOfSubIndices() uint16    { return uint16(r.si0) + 1 }
func (r *Record) GetMaxNbOfSubindices() uint16 { return uint16(r.si0) + 1 }

func (r *Record) IsSubIndexEmpty(subIdx uint8) bool {
	if subIdx == 0 {
		return false
	}

	if subIdx > r.si0 {
		return true
	}

	return r.subs[subIdx-1].NElements == 0
}

func (r *Record) GetSubIdxDataType(subIdx uint8) (DataType, error) {
	if subIdx == 0 {
		return Unsigned8, nil
	}

	sd, err := r.describe(subIdx)
	if err != nil {
		return 0, err
	}

	return sd.Type, nil
}

func (r *Record) GetSubIdxAttributes(subIdx uint8) (Attr, error) {
	if subIdx == 0 {
		return AttrAccessRD, nil
	}

	sd, err := r.describe(subIdx)
	if err != nil {
		return 0, err
	}

	return sd.Attributes, nil
}

func (r *Record) GetSubIdxMaxSize(subIdx uint8) (uint64, error) {
	if subIdx == 0 {
		return 8, nil
	}

	sd, err := r.describe(subIdx)
	if err != nil {
		return 0, err
	}

	return uint64(BitLengthInStream(sd.Type)) * uint64(sd.NElements), nil
}

func (r *Record) GetSubIdxName(subIdx uint8) (string, error) {
	if subIdx == 0 {
		return "Number of subindices", nil
	}

	sd, err := r.describe(subIdx)
	if err != nil {
		return "", err
	}

	return sd.Name, nil
}

func (r *Record) GetObjectStreamSize(si016Bits bool) uint64 {
	if si016Bits {
		return uint64(r.streamSizeBit) + 16
	}

	return uint64(r.streamSizeBit) + 8
}

func (r *Record) GetSubIdxActualSize(subIdx uint8) (uint64, error) {
	if subIdx == 0 {
		return 8, nil
	}

	sd, err := r.describe(subIdx)
	if err != nil {
		return 0, err
	}

	if sd.Type == VisibleString {
		if code := r.notifiable.OnBeforeRead(r, subIdx, false, true); code != OK {
			return 0, fmt.Errorf("cood.Record.GetSubIdxActualSize: before-read-callback: %s", code)
		}
	}

	native := r.native[sd.ByteOffset:]

	return uint64(DetermineSizeOfCANopenEncodedData(sd.Type, sd.NElements, native)), nil
}

func (r *Record) Lock() func() {
	if r.mu == nil {
		return func() {}
	}

	r.mu.Lock()

	return r.mu.Unlock
}

// describe looks up a non-SI0, non-empty subindex, returning the
// not-existing error for an out-of-range index or an empty subindex.
func (r *Record) describe(subIdx uint8) (*SubIdxDescr, error) {
	if subIdx > r.si0 {
		return nil, &SubindexNotExistingError{SubIdx: subIdx}
	}

	sd := &r.subs[subIdx-1]
	if sd.NElements == 0 {
		return nil, &SubindexNotExistingError{SubIdx: subIdx}
	}

	return sd, nil
}

// readBits extracts a stuffed bit-based native field, LSB-aligned, from
// native at sd's byte/bit offset. Unused upper bits are zero.
func readBits(native []byte, sd *SubIdxDescr) uint8 {
	off := sd.ByteOffset
	nBits := BitLengthInStream(sd.Type)

	bits := uint16(native[off])
	if uint16(sd.BitOffset)+nBits > 8 {
		bits |= uint16(native[off+1]) << 8
	}

	bits >>= sd.BitOffset

	return uint8(bits & (uint16(1)<<nBits - 1))
}

// writeBits stores newBits (LSB-aligned, upper bits don't care) into a
// stuffed bit-based native field at sd's byte/bit offset, leaving
// neighboring bits in the shared byte(s) untouched.
func writeBits(native []byte, sd *SubIdxDescr, newBits uint8) {
	off := sd.ByteOffset
	nBits := BitLengthInStream(sd.Type)
	mask := uint16(1)<<nBits - 1

	curr := uint16(native[off])
	if uint16(sd.BitOffset)+nBits > 8 {
		curr |= uint16(native[off+1]) << 8
	}

	curr &^= mask << sd.BitOffset
	curr |= uint16(newBits) & mask << sd.BitOffset

	native[off] = uint8(curr)
	if uint16(sd.BitOffset)+nBits > 8 {
		native[off+1] = uint8(curr >> 8)
	}
}

func (r *Record) Read(subIdx uint8, permissions Attr, w *stream.Writer) SDOAbortCode {
	if subIdx > r.si0 {
		return SubindexDoesNotExist
	}

	if subIdx == 0 {
		if permissions&AttrAccessRD == 0 {
			return AttemptToReadWrOnlyObject
		}

		if code := r.notifiable.OnBeforeRead(r, 0, false, false); code != OK {
			return code
		}

		_ = w.Write_uint8(r.si0)

		return OK
	}

	sd := &r.subs[subIdx-1]
	if sd.NElements == 0 {
		return SubindexDoesNotExist
	}

	if sd.Attributes&AttrAccessRD&permissions == 0 {
		return AttemptToReadWrOnlyObject
	}

	if sd.Type == Null {
		if err := w.FillBits(uint(sd.NElements), false); err != nil {
			return GeneralError
		}

		return OK
	}

	if code := r.notifiable.OnBeforeRead(r, subIdx, false, false); code != OK {
		return code
	}

	if IsNativeDataStuffed(sd.Type) {
		bits := readBits(r.native, sd)
		if err := EncodeNativeToStream(w, sd.Type, 1, false, []byte{bits}); err != nil {
			return GeneralError
		}

		return OK
	}

	if err := EncodeNativeToStream(w, sd.Type, sd.NElements, false, r.native[sd.ByteOffset:]); err != nil {
		return GeneralError
	}

	return OK
}

func (r *Record) Write(subIdx uint8, permissions Attr, reader *stream.Reader) SDOAbortCode {
	if subIdx > r.si0 {
		return SubindexDoesNotExist
	}

	if subIdx == 0 {
		return AttemptToWriteRdOnlyObject
	}

	sd := &r.subs[subIdx-1]
	if sd.NElements == 0 {
		return SubindexDoesNotExist
	}

	if sd.Attributes&AttrAccessWR&permissions == 0 {
		return AttemptToWriteRdOnlyObject
	}

	if sd.Type == Null {
		if err := reader.Skip(uint(sd.NElements)); err != nil {
			return DataTypeMismatchTooSmall
		}

		if err := reader.EnsureAllDataConsumed(stream.ExpectSevenOrLessBits); err != nil {
			return DataTypeMismatchTooLong
		}

		return OK
	}

	nativeSize := (int(BitLengthInMemory(sd.Type)) / 8) * sd.NElements
	if IsNativeDataStuffed(sd.Type) {
		nativeSize = 1
	}

	tmp := make([]byte, nativeSize)

	if err := DecodeStreamToNative(reader, sd.Type, sd.NElements, tmp); err != nil {
		return DataTypeMismatchTooSmall
	}

	if err := reader.EnsureAllDataConsumed(stream.ExpectSevenOrLessBits); err != nil {
		return DataTypeMismatchTooLong
	}

	if code := r.notifiable.OnBeforeWrite(r, subIdx, false, 0, tmp); code != OK {
		return code
	}

	if IsNativeDataStuffed(sd.Type) {
		writeBits(r.native, sd, tmp[0])
	} else {
		copy(r.native[sd.ByteOffset:int(sd.ByteOffset)+nativeSize], tmp)
	}

	if err := r.notifiable.OnAfterWrite(r, subIdx, false); err != nil {
		osal.Panic("cood.Record.Write: after-write-callback failed: %v", err)
	}

	return OK
}

func (r *Record) CompleteRead(inclSI0 bool, si016Bits bool, permissions Attr, w *stream.Writer) SDOAbortCode {
	if inclSI0 && permissions&AttrAccessRD == 0 {
		return AttemptToReadWrOnlyObject
	}

	for i := range r.subs {
		sd := &r.subs[i]
		if sd.NElements == 0 {
			continue
		}

		if sd.Attributes&AttrAccessRD != 0 && sd.Attributes&AttrAccessRD&permissions == 0 {
			return AttemptToReadWrOnlyObject
		}
	}

	startSubIdx := uint8(1)
	if inclSI0 {
		startSubIdx = 0
	}

	if code := r.notifiable.OnBeforeRead(r, startSubIdx, true, false); code != OK {
		return code
	}

	if inclSI0 {
		if si016Bits {
			_ = w.Write_uint16(uint16(r.si0))
		} else {
			_ = w.Write_uint8(r.si0)
		}
	}

	for i := range r.subs {
		sd := &r.subs[i]
		if sd.NElements == 0 {
			continue
		}

		if sd.Type == Null {
			if err := w.FillBits(uint(sd.NElements), false); err != nil {
				return GeneralError
			}

			continue
		}

		if !IsDataTypeBitBased(sd.Type) {
			if _, err := w.AlignToByteBoundary(false); err != nil {
				return GeneralError
			}
		}

		if sd.Attributes&AttrAccessRD == 0 || sd.Type == Null {
			nBits := uint(BitLengthInStream(sd.Type)) * uint(sd.NElements)

			if IsDataTypeBitBased(sd.Type) {
				if err := w.FillBits(nBits, false); err != nil {
					return GeneralError
				}
			} else if err := w.FillBytes(uint32(nBits/8), 0); err != nil {
				return GeneralError
			}

			continue
		}

		if IsNativeDataStuffed(sd.Type) {
			bits := readBits(r.native, sd)
			if err := EncodeNativeToStream(w, sd.Type, 1, true, []byte{bits}); err != nil {
				return GeneralError
			}

			continue
		}

		if err := EncodeNativeToStream(w, sd.Type, sd.NElements, true, r.native[sd.ByteOffset:]); err != nil {
			return GeneralError
		}
	}

	return OK
}

func (r *Record) CompleteWrite(inclSI0 bool, si016Bits bool, permissions Attr, reader *stream.Reader, policy stream.ExhaustionPolicy) SDOAbortCode {
	anySubIdxPureRO := false

	for i := range r.subs {
		sd := &r.subs[i]
		if sd.NElements == 0 {
			continue
		}

		if sd.Attributes&AttrAccessWR == 0 {
			if sd.Type != Null {
				anySubIdxPureRO = true
			}

			continue
		}

		if sd.Attributes&AttrAccessWR&permissions == 0 {
			return AttemptToWriteRdOnlyObject
		}
	}

	if inclSI0 {
		var provided uint64

		if si016Bits {
			v, err := reader.Read_uint16()
			if err != nil {
				return DataTypeMismatchTooSmall
			}

			provided = uint64(v)
		} else {
			v, err := reader.Read_uint8()
			if err != nil {
				return DataTypeMismatchTooSmall
			}

			provided = uint64(v)
		}

		if provided != uint64(r.si0) {
			return UnsupportedAccessToObject
		}
	}

	scratch := make([]byte, r.structSize)

	for i := range r.subs {
		sd := &r.subs[i]
		if sd.NElements == 0 {
			continue
		}

		if sd.Type != Null && !IsDataTypeBitBased(sd.Type) {
			reader.AlignToByteBoundary()
		}

		switch {
		case sd.Type == Null:
			if err := reader.Skip(uint(sd.NElements)); err != nil {
				return abortFromSkip(err)
			}

		case sd.Attributes&AttrAccessWR == 0:
			nBits := uint(BitLengthInStream(sd.Type)) * uint(sd.NElements)

			var err error
			if IsDataTypeBitBased(sd.Type) {
				err = reader.Skip(nBits)
			} else {
				if _, err = reader.Read_uint8(); err == nil {
					err = reader.Skip(nBits - 8)
				}
			}

			if err != nil {
				return abortFromSkip(err)
			}

		case IsNativeDataStuffed(sd.Type):
			tmp := []byte{0}
			if err := DecodeStreamToNative(reader, sd.Type, 1, tmp); err != nil {
				return abortFromSkip(err)
			}

			writeBits(scratch, sd, tmp[0])

		default:
			nativeSize := (int(BitLengthInMemory(sd.Type)) / 8) * sd.NElements
			dest := scratch[sd.ByteOffset : int(sd.ByteOffset)+nativeSize]

			if err := DecodeStreamToNative(reader, sd.Type, sd.NElements, dest); err != nil {
				return abortFromSkip(err)
			}
		}
	}

	if err := reader.EnsureAllDataConsumed(policy); err != nil {
		return DataTypeMismatchTooLong
	}

	startSubIdx := uint8(1)
	var si0 uint8
	if inclSI0 {
		startSubIdx = 0
		si0 = r.si0
	}

	if code := r.notifiable.OnBeforeWrite(r, startSubIdx, true, si0, scratch); code != OK {
		return code
	}

	if !anySubIdxPureRO {
		copy(r.native, scratch)
	} else {
		for i := range r.subs {
			sd := &r.subs[i]
			if sd.Type == Null || sd.Attributes&AttrAccessWR == 0 {
				continue
			}

			if IsNativeDataStuffed(sd.Type) {
				writeBits(r.native, sd, readBits(scratch, sd))

				continue
			}

			n := (int(BitLengthInMemory(sd.Type)) / 8) * sd.NElements
			off := int(sd.ByteOffset)
			copy(r.native[off:off+n], scratch[off:off+n])
		}
	}

	if err := r.notifiable.OnAfterWrite(r, startSubIdx, true); err != nil {
		osal.Panic("cood.Record.CompleteWrite: after-write-callback failed: %v", err)
	}

	return OK
}

// abortFromSkip maps a stream read/skip failure during CompleteWrite's
// fill loop to an abort code. The underlying reader only distinguishes
// "ran out of data" from other faults via its sticky error state, so
// every such failure is reported as data being too small.
func abortFromSkip(error) SDOAbortCode {
	return DataTypeMismatchTooSmall
}
