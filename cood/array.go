package cood

import (
	"errors"
	"fmt"

	"github.com/gpcc-project/gpcc/osal"
	"github.com/gpcc-project/gpcc/stream"
)

// Array is a CANopen ARRAY object: a homogeneous set of subindices
// SI1..SIn sharing one data type, with SI0 reporting (and, if writable,
// setting) the current count n. n can never exceed the number of
// elements the native buffer was sized for at construction.
type Array struct {
	name       string
	dataType   DataType
	maxElem    int // ceiling on SI0, == capacity of native
	nElements  int // current SI0
	elemSize   int // native bytes per element
	native     []byte
	attributes Attr // shared by every SI1..SIn
	si0Writ    bool // whether SI0 itself accepts writes
	mu         *osal.Mutex
	notifiable Notifiable
}

// NewArray validates the description and returns a ready-to-use Array.
// native must be sized for maxElem elements of dataType. si0Writable
// allows the array to shrink/grow via a write to subindex 0.
func NewArray(name string, dataType DataType, maxElem int, nElements int, native []byte, attributes Attr, si0Writable bool, mu *osal.Mutex, notifiable Notifiable) (*Array, error) {
	if name == "" {
		return nil, errors.New("cood.NewArray: name is empty")
	}

	if !IsSupported(dataType) || dataType == Null {
		return nil, &DataTypeNotSupportedError{Type: dataType}
	}

	if IsStringType(dataType) {
		return nil, fmt.Errorf("cood.NewArray: %s subindices cannot themselves be string-typed arrays", dataType)
	}

	if attributes&AttrAccessRW == 0 {
		return nil, errors.New("cood.NewArray: no read or write permission set")
	}

	if maxElem <= 0 || maxElem > 254 {
		return nil, fmt.Errorf("cood.NewArray: maxElem %d out of range [1,254]", maxElem)
	}

	if nElements < 0 || nElements > maxElem {
		return nil, fmt.Errorf("cood.NewArray: nElements %d out of range [0,%d]", nElements, maxElem)
	}

	elemSize := nativeElemSize(dataType)
	if dataType == Boolean {
		elemSize = 1
	}

	if len(native) < maxElem*elemSize {
		return nil, fmt.Errorf("cood.NewArray: native buffer too small: have %d, need %d", len(native), maxElem*elemSize)
	}

	if (attributes&AttrAccessWR != 0 || si0Writable) && mu == nil {
		return nil, errors.New("cood.NewArray: write-permitted object requires a mutex")
	}

	if notifiable == nil {
		notifiable = NopNotifiable{}
	}

	return &Array{
		name:       name,
		dataType:   dataType,
		maxElem:    maxElem,
		nElements:  nElements,
		elemSize:   elemSize,
		native:     native,
		attributes: attributes,
		si0Writ:    si0Writable,
		mu:         mu,
		notifiable: notifiable,
	}, nil
}

func (a *Array) GetObjectCode() ObjectCode    { return ObjectCodeArray }
func (a *Array) GetObjectDataType() DataType  { return a.dataType }
func (a *Array) GetObjectName() string        { return a.name }
func (a *Array) GetNbOfSubIndices() uint16    { return uint16(a.nElements) + 1 }
func (a *Array) GetMaxNbOfSubindices() uint16 { return uint16(a.maxElem) + 1 }

func (a *Array) IsSubIndexEmpty(subIdx uint8) bool {
	if subIdx == 0 {
		return false
	}

	return int(subIdx) > a.nElements
}

func (a *Array) GetSubIdxDataType(subIdx uint8) (DataType, error) {
	if err := a.checkExists(subIdx); err != nil {
		return 0, err
	}

	if subIdx == 0 {
		return Unsigned8, nil
	}

	return a.dataType, nil
}

func (a *Array) GetSubIdxAttributes(subIdx uint8) (Attr, error) {
	if err := a.checkExists(subIdx); err != nil {
		return 0, err
	}

	if subIdx == 0 {
		if a.si0Writ {
			return AttrAccessRD | AttrAccessWR, nil
		}

		return AttrAccessRD, nil
	}

	return a.attributes, nil
}

func (a *Array) GetSubIdxMaxSize(subIdx uint8) (uint64, error) {
	if err := a.checkExists(subIdx); err != nil {
		return 0, err
	}

	if subIdx == 0 {
		return 8, nil
	}

	return uint64(BitLengthInStream(a.dataType)), nil
}

func (a *Array) GetSubIdxActualSize(subIdx uint8) (uint64, error) {
	return a.GetSubIdxMaxSize(subIdx)
}

func (a *Array) GetSubIdxName(subIdx uint8) (string, error) {
	if err := a.checkExists(subIdx); err != nil {
		return "", err
	}

	if subIdx == 0 {
		return "Number of subindices", nil
	}

	return fmt.Sprintf("%s[%d]", a.name, subIdx), nil
}

func (a *Array) GetObjectStreamSize(si016Bits bool) uint64 {
	bits := uint64(BitLengthInStream(a.dataType)) * uint64(a.nElements)
	if si016Bits {
		return bits + 16
	}

	return bits + 8
}

func (a *Array) Lock() func() {
	if a.mu == nil {
		return func() {}
	}

	a.mu.Lock()

	return a.mu.Unlock
}

func (a *Array) checkExists(subIdx uint8) error {
	if subIdx == 0 {
		return nil
	}

	if int(subIdx) > a.maxElem {
		return &SubindexNotExistingError{SubIdx: subIdx}
	}

	return nil
}

func (a *Array) elemOffset(subIdx uint8) int {
	return (int(subIdx) - 1) * a.elemSize
}

func (a *Array) Read(subIdx uint8, permissions Attr, w *stream.Writer) SDOAbortCode {
	if int(subIdx) > a.maxElem {
		return SubindexDoesNotExist
	}

	if subIdx == 0 {
		if permissions&AttrAccessRD == 0 {
			return AttemptToReadWrOnlyObject
		}

		if code := a.notifiable.OnBeforeRead(a, 0, false, false); code != OK {
			return code
		}

		if err := w.Write_uint8(uint8(a.nElements)); err != nil {
			return GeneralError
		}

		return OK
	}

	if int(subIdx) > a.nElements {
		return SubindexDoesNotExist
	}

	if a.attributes&AttrAccessRD&permissions == 0 {
		return AttemptToReadWrOnlyObject
	}

	if code := a.notifiable.OnBeforeRead(a, subIdx, false, false); code != OK {
		return code
	}

	off := a.elemOffset(subIdx)
	if err := EncodeNativeToStream(w, a.dataType, 1, false, a.native[off:off+a.elemSize]); err != nil {
		return GeneralError
	}

	return OK
}

func (a *Array) Write(subIdx uint8, permissions Attr, r *stream.Reader) SDOAbortCode {
	if int(subIdx) > a.maxElem {
		return SubindexDoesNotExist
	}

	if subIdx == 0 {
		if !a.si0Writ {
			return AttemptToWriteRdOnlyObject
		}

		n, err := r.Read_uint8()
		if err != nil {
			return DataTypeMismatchTooSmall
		}

		if err := r.EnsureAllDataConsumed(stream.ExpectSevenOrLessBits); err != nil {
			return DataTypeMismatchTooLong
		}

		if int(n) > a.maxElem {
			return UnsupportedAccessToObject
		}

		if code := a.notifiable.OnBeforeWrite(a, 0, false, n, nil); code != OK {
			return code
		}

		a.nElements = int(n)

		if err := a.notifiable.OnAfterWrite(a, 0, false); err != nil {
			osal.Panic("cood.Array.Write: after-write-callback failed: %v", err)
		}

		return OK
	}

	if int(subIdx) > a.nElements {
		return SubindexDoesNotExist
	}

	if a.attributes&AttrAccessWR&permissions == 0 {
		return AttemptToWriteRdOnlyObject
	}

	tmp := make([]byte, a.elemSize)

	if err := DecodeStreamToNative(r, a.dataType, 1, tmp); err != nil {
		return DataTypeMismatchTooSmall
	}

	if err := r.EnsureAllDataConsumed(stream.ExpectSevenOrLessBits); err != nil {
		return DataTypeMismatchTooLong
	}

	if code := a.notifiable.OnBeforeWrite(a, subIdx, false, 0, tmp); code != OK {
		return code
	}

	off := a.elemOffset(subIdx)
	copy(a.native[off:off+a.elemSize], tmp)

	if err := a.notifiable.OnAfterWrite(a, subIdx, false); err != nil {
		osal.Panic("cood.Array.Write: after-write-callback failed: %v", err)
	}

	return OK
}

func (a *Array) CompleteRead(inclSI0 bool, si016Bits bool, permissions Attr, w *stream.Writer) SDOAbortCode {
	if a.attributes&AttrAccessRD&permissions == 0 {
		return AttemptToReadWrOnlyObject
	}

	startSubIdx := uint8(1)
	if inclSI0 {
		startSubIdx = 0
	}

	if code := a.notifiable.OnBeforeRead(a, startSubIdx, true, false); code != OK {
		return code
	}

	if inclSI0 {
		if si016Bits {
			if err := w.Write_uint16(uint16(a.nElements)); err != nil {
				return GeneralError
			}
		} else if err := w.Write_uint8(uint8(a.nElements)); err != nil {
			return GeneralError
		}
	}

	if err := EncodeNativeToStream(w, a.dataType, a.nElements, true, a.native); err != nil {
		return GeneralError
	}

	return OK
}

func (a *Array) CompleteWrite(inclSI0 bool, si016Bits bool, permissions Attr, r *stream.Reader, policy stream.ExhaustionPolicy) SDOAbortCode {
	if a.attributes&AttrAccessWR&permissions == 0 {
		return AttemptToWriteRdOnlyObject
	}

	n := a.nElements

	if inclSI0 {
		var v uint64
		var err error

		if si016Bits {
			var v16 uint16
			v16, err = r.Read_uint16()
			v = uint64(v16)
		} else {
			var v8 uint8
			v8, err = r.Read_uint8()
			v = uint64(v8)
		}

		if err != nil {
			return DataTypeMismatchTooSmall
		}

		if int(v) > a.maxElem {
			return UnsupportedAccessToObject
		}

		n = int(v)
	}

	tmp := make([]byte, n*a.elemSize)

	if err := DecodeStreamToNative(r, a.dataType, n, tmp); err != nil {
		return DataTypeMismatchTooSmall
	}

	if err := r.EnsureAllDataConsumed(policy); err != nil {
		return DataTypeMismatchTooLong
	}

	startSubIdx := uint8(1)
	var si0 uint8
	if inclSI0 {
		startSubIdx = 0
		si0 = uint8(n)
	}

	if code := a.notifiable.OnBeforeWrite(a, startSubIdx, true, si0, tmp); code != OK {
		return code
	}

	copy(a.native, tmp)

	if inclSI0 {
		a.nElements = n
	}

	if err := a.notifiable.OnAfterWrite(a, startSubIdx, true); err != nil {
		osal.Panic("cood.Array.CompleteWrite: after-write-callback failed: %v", err)
	}

	return OK
}
