package cood

import (
	"github.com/gpcc-project/gpcc/stream"
)

// Notifiable delivers before/after callbacks to the owner of an object.
// OnBeforeRead/OnBeforeWrite may reject the operation by returning an
// abort code other than OK; a before-write rejection rolls the write
// back atomically (native data is untouched). OnAfterWrite has no
// reject path — by the time it runs the write has already landed in
// native memory, so a panic is the only way to report an inconsistency
// from within it, and that is what the caller does if it returns an
// error.
type Notifiable interface {
	// OnBeforeRead is invoked before a read. subIdx is the first
	// subindex affected; completeAccess distinguishes CompleteRead.
	// queryActualSizeOnly is set for GetSubIdxActualSize's string-size
	// probe, where no data is actually transferred.
	OnBeforeRead(obj Object, subIdx uint8, completeAccess bool, queryActualSizeOnly bool) SDOAbortCode

	// OnBeforeWrite is invoked before a write lands in native memory.
	// data is the value(s) about to be written (for complete access,
	// the whole scratch buffer; for simple access, just the one
	// subindex's new value; nil for a simple write of ARRAY's SI0).
	// si0 is the new SI0 value for an SI0-inclusive complete write of
	// an ARRAY/RECORD or a simple write of ARRAY's SI0, 0 otherwise.
	OnBeforeWrite(obj Object, subIdx uint8, completeAccess bool, si0 uint8, data []byte) SDOAbortCode

	// OnAfterWrite runs after a write has committed. Returning a
	// non-nil error here is always a logic error in caller code (the
	// data is already written); callers convert it into a panic.
	OnAfterWrite(obj Object, subIdx uint8, completeAccess bool) error
}

// NopNotifiable implements Notifiable with no-op callbacks that always
// accept the operation. Embed it to get default behavior for callbacks
// an object owner doesn't care about.
type NopNotifiable struct{}

func (NopNotifiable) OnBeforeRead(Object, uint8, bool, bool) SDOAbortCode         { return OK }
func (NopNotifiable) OnBeforeWrite(Object, uint8, bool, uint8, []byte) SDOAbortCode { return OK }
func (NopNotifiable) OnAfterWrite(Object, uint8, bool) error                        { return nil }

// Object is the shared contract for VARIABLE, ARRAY, and RECORD
// objects. Every subindex-scoped method treats subIdx 0 specially: it
// always reports as unsigned8 and existing, holding either a fixed value
// (VARIABLE) or the object's current element count (ARRAY/RECORD). It
// is read-only, except for an ARRAY constructed with a writable SI0.
type Object interface {
	GetObjectCode() ObjectCode
	GetObjectDataType() DataType
	GetObjectName() string

	// GetNbOfSubIndices returns SI0+1, the current number of valid
	// subindices including SI0 itself.
	GetNbOfSubIndices() uint16

	// GetMaxNbOfSubindices returns the largest value GetNbOfSubIndices
	// can ever report for this object (ARRAY's SI0 is mutable up to a
	// fixed ceiling; VARIABLE and RECORD never change).
	GetMaxNbOfSubindices() uint16

	IsSubIndexEmpty(subIdx uint8) bool
	GetSubIdxDataType(subIdx uint8) (DataType, error)
	GetSubIdxAttributes(subIdx uint8) (Attr, error)
	GetSubIdxMaxSize(subIdx uint8) (uint64, error)
	GetSubIdxActualSize(subIdx uint8) (uint64, error)
	GetSubIdxName(subIdx uint8) (string, error)

	// GetObjectStreamSize returns the total bit size of a complete-access
	// image, with SI0 encoded at 8 or 16 bits as si016Bits selects.
	GetObjectStreamSize(si016Bits bool) uint64

	// Lock acquires the object's data mutex; the returned func releases
	// it. Callers must hold it across any Read/Write/CompleteRead/
	// CompleteWrite call (the object does not lock itself, matching
	// the "internal mutex held by the caller for the duration of the
	// operation" contract items like SharedString rely on elsewhere).
	Lock() func()

	Read(subIdx uint8, permissions Attr, w *stream.Writer) SDOAbortCode
	Write(subIdx uint8, permissions Attr, r *stream.Reader) SDOAbortCode
	CompleteRead(inclSI0 bool, si016Bits bool, permissions Attr, w *stream.Writer) SDOAbortCode
	CompleteWrite(inclSI0 bool, si016Bits bool, permissions Attr, r *stream.Reader, policy stream.ExhaustionPolicy) SDOAbortCode
}
