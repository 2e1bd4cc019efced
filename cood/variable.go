package cood

import (
	"errors"
	"fmt"

	"github.com/gpcc-project/gpcc/osal"
	"github.com/gpcc-project/gpcc/stream"
)

// Variable is a CANopen VARIABLE object: a single typed value, or a
// fixed-length typed array for the string-like types. There is exactly
// one subindex besides SI0; for a VARIABLE, SI0 is a read-only
// UNSIGNED8 that always reads 1.
type Variable struct {
	name        string
	dataType    DataType
	nElements   int
	native      []byte // backing storage, nElements native-sized elements
	attributes  Attr
	mu          *osal.Mutex
	notifiable  Notifiable
}

// NewVariable validates the description and returns a ready-to-use
// Variable. A mutex is required whenever the attributes include any
// write permission.
func NewVariable(name string, dataType DataType, nElements int, native []byte, attributes Attr, mu *osal.Mutex, notifiable Notifiable) (*Variable, error) {
	if name == "" {
		return nil, errors.New("cood.NewVariable: name is empty")
	}

	if !IsSupported(dataType) || dataType == Null {
		return nil, &DataTypeNotSupportedError{Type: dataType}
	}

	if attributes&AttrAccessRW == 0 {
		return nil, errors.New("cood.NewVariable: no read or write permission set")
	}

	if IsStringType(dataType) {
		if nElements <= 0 || nElements > 65534 {
			return nil, fmt.Errorf("cood.NewVariable: nElements %d out of range for %s", nElements, dataType)
		}
	} else if nElements != 1 {
		return nil, fmt.Errorf("cood.NewVariable: nElements must be 1 for %s", dataType)
	}

	wantLen := nElements * nativeElemSize(dataType)
	if dataType == Boolean {
		wantLen = nElements // one whole byte per bit-based element, stuffing is RECORD-only
	}

	if len(native) < wantLen {
		return nil, fmt.Errorf("cood.NewVariable: native buffer too small: have %d, need %d", len(native), wantLen)
	}

	if attributes&AttrAccessWR != 0 && mu == nil {
		return nil, errors.New("cood.NewVariable: write-permitted object requires a mutex")
	}

	if notifiable == nil {
		notifiable = NopNotifiable{}
	}

	return &Variable{
		name:       name,
		dataType:   dataType,
		nElements:  nElements,
		native:     native,
		attributes: attributes,
		mu:         mu,
		notifiable: notifiable,
	}, nil
}

func (v *Variable) GetObjectCode() ObjectCode     { return ObjectCodeVariable }
func (v *Variable) GetObjectDataType() DataType   { return v.dataType }
func (v *Variable) GetObjectName() string         { return v.name }
func (v *Variable) GetNbOfSubIndices() uint16     { return 2 }
func (v *Variable) GetMaxNbOfSubindices() uint16  { return 2 }

func (v *Variable) IsSubIndexEmpty(subIdx uint8) bool { return false }

func (v *Variable) GetSubIdxDataType(subIdx uint8) (DataType, error) {
	if err := v.checkSubIdx(subIdx); err != nil {
		return 0, err
	}

	if subIdx == 0 {
		return Unsigned8, nil
	}

	return v.dataType, nil
}

func (v *Variable) GetSubIdxAttributes(subIdx uint8) (Attr, error) {
	if err := v.checkSubIdx(subIdx); err != nil {
		return 0, err
	}

	if subIdx == 0 {
		return AttrAccessRD, nil
	}

	return v.attributes, nil
}

func (v *Variable) GetSubIdxMaxSize(subIdx uint8) (uint64, error) {
	if err := v.checkSubIdx(subIdx); err != nil {
		return 0, err
	}

	if subIdx == 0 {
		return 8, nil
	}

	return uint64(BitLengthInStream(v.dataType)) * uint64(v.nElements), nil
}

func (v *Variable) GetSubIdxActualSize(subIdx uint8) (uint64, error) {
	if err := v.checkSubIdx(subIdx); err != nil {
		return 0, err
	}

	if subIdx == 0 {
		return 8, nil
	}

	if v.dataType == VisibleString {
		if code := v.notifiable.OnBeforeRead(v, subIdx, false, true); code != OK {
			return 0, fmt.Errorf("cood.Variable.GetSubIdxActualSize: before-read-callback: %s", code)
		}
	}

	return uint64(DetermineSizeOfCANopenEncodedData(v.dataType, v.nElements, v.native)), nil
}

func (v *Variable) GetSubIdxName(subIdx uint8) (string, error) {
	if err := v.checkSubIdx(subIdx); err != nil {
		return "", err
	}

	if subIdx == 0 {
		return "Number of subindices", nil
	}

	return v.name, nil
}

func (v *Variable) GetObjectStreamSize(si016Bits bool) uint64 {
	bits := uint64(BitLengthInStream(v.dataType)) * uint64(v.nElements)
	if si016Bits {
		return bits + 16
	}

	return bits + 8
}

func (v *Variable) Lock() func() {
	if v.mu == nil {
		return func() {}
	}

	v.mu.Lock()

	return v.mu.Unlock
}

func (v *Variable) checkSubIdx(subIdx uint8) error {
	if subIdx > 1 {
		return &SubindexNotExistingError{SubIdx: subIdx}
	}

	return nil
}

func (v *Variable) Read(subIdx uint8, permissions Attr, w *stream.Writer) SDOAbortCode {
	if subIdx > 1 {
		return SubindexDoesNotExist
	}

	if subIdx == 0 {
		if permissions&AttrAccessRD == 0 {
			return AttemptToReadWrOnlyObject
		}

		if code := v.notifiable.OnBeforeRead(v, 0, false, false); code != OK {
			return code
		}

		_ = w.Write_uint8(1)

		return OK
	}

	if v.attributes&AttrAccessRD&permissions == 0 {
		return AttemptToReadWrOnlyObject
	}

	if code := v.notifiable.OnBeforeRead(v, 1, false, false); code != OK {
		return code
	}

	if err := EncodeNativeToStream(w, v.dataType, v.nElements, false, v.native); err != nil {
		return GeneralError
	}

	return OK
}

func (v *Variable) Write(subIdx uint8, permissions Attr, r *stream.Reader) SDOAbortCode {
	if subIdx > 1 {
		return SubindexDoesNotExist
	}

	if subIdx == 0 {
		return AttemptToWriteRdOnlyObject
	}

	if v.attributes&AttrAccessWR&permissions == 0 {
		return AttemptToWriteRdOnlyObject
	}

	tmp := make([]byte, len(v.native))

	if err := DecodeStreamToNative(r, v.dataType, v.nElements, tmp); err != nil {
		return DataTypeMismatchTooSmall
	}

	if err := r.EnsureAllDataConsumed(stream.ExpectSevenOrLessBits); err != nil {
		return DataTypeMismatchTooLong
	}

	if code := v.notifiable.OnBeforeWrite(v, 1, false, 0, tmp); code != OK {
		return code
	}

	copy(v.native, tmp)

	if err := v.notifiable.OnAfterWrite(v, 1, false); err != nil {
		osal.Panic("cood.Variable.Write: after-write-callback failed: %v", err)
	}

	return OK
}

func (v *Variable) CompleteRead(inclSI0 bool, si016Bits bool, permissions Attr, w *stream.Writer) SDOAbortCode {
	if inclSI0 && permissions&AttrAccessRD == 0 {
		return AttemptToReadWrOnlyObject
	}

	if v.attributes&AttrAccessRD != 0 && v.attributes&AttrAccessRD&permissions == 0 {
		return AttemptToReadWrOnlyObject
	}

	startSubIdx := uint8(1)
	if inclSI0 {
		startSubIdx = 0
	}

	if code := v.notifiable.OnBeforeRead(v, startSubIdx, true, false); code != OK {
		return code
	}

	if inclSI0 {
		if si016Bits {
			_ = w.Write_uint16(1)
		} else {
			_ = w.Write_uint8(1)
		}
	}

	if v.attributes&AttrAccessRD == 0 {
		if err := w.FillBits(uint(BitLengthInStream(v.dataType))*uint(v.nElements), false); err != nil {
			return GeneralError
		}

		return OK
	}

	if err := EncodeNativeToStream(w, v.dataType, v.nElements, true, v.native); err != nil {
		return GeneralError
	}

	return OK
}

func (v *Variable) CompleteWrite(inclSI0 bool, si016Bits bool, permissions Attr, r *stream.Reader, policy stream.ExhaustionPolicy) SDOAbortCode {
	if v.attributes&AttrAccessWR != 0 && v.attributes&AttrAccessWR&permissions == 0 {
		return AttemptToWriteRdOnlyObject
	}

	if inclSI0 {
		var providedSI0 uint64
		var err error

		if si016Bits {
			var v16 uint16
			v16, err = r.Read_uint16()
			providedSI0 = uint64(v16)
		} else {
			var v8 uint8
			v8, err = r.Read_uint8()
			providedSI0 = uint64(v8)
		}

		if err != nil {
			return DataTypeMismatchTooSmall
		}

		if providedSI0 != 1 {
			return UnsupportedAccessToObject
		}
	}

	tmp := make([]byte, len(v.native))

	var err error
	if v.attributes&AttrAccessWR == 0 {
		err = r.Skip(uint(BitLengthInStream(v.dataType)) * uint(v.nElements))
	} else {
		err = DecodeStreamToNative(r, v.dataType, v.nElements, tmp)
	}

	if err != nil {
		return DataTypeMismatchTooSmall
	}

	if err := r.EnsureAllDataConsumed(policy); err != nil {
		return DataTypeMismatchTooLong
	}

	startSubIdx := uint8(1)
	if inclSI0 {
		startSubIdx = 0
	}

	if v.attributes&AttrAccessWR == 0 {
		return OK
	}

	if code := v.notifiable.OnBeforeWrite(v, startSubIdx, true, 0, tmp); code != OK {
		return code
	}

	copy(v.native, tmp)

	if err := v.notifiable.OnAfterWrite(v, startSubIdx, true); err != nil {
		osal.Panic("cood.Variable.CompleteWrite: after-write-callback failed: %v", err)
	}

	return OK
}
