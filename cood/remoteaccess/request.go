package remoteaccess

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gpcc-project/gpcc/cood"
)

// RequestBase is the header and return stack shared by every concrete
// request type. Concrete types embed it and add their own
// type-specific payload between the header and the return stack.
type RequestBase struct {
	reqType         RequestType
	maxResponseSize uint32
	stack           returnStack
}

func newRequestBase(reqType RequestType, maxResponseSize uint32) (RequestBase, error) {
	if maxResponseSize < minimumUsefulResponseSize || maxResponseSize > maxResponseSizeBound {
		return RequestBase{}, fmt.Errorf("remoteaccess: maxResponseSize %d out of range [%d,%d]", maxResponseSize, minimumUsefulResponseSize, maxResponseSizeBound)
	}

	return RequestBase{reqType: reqType, maxResponseSize: maxResponseSize}, nil
}

// GetType returns the request's type tag.
func (b *RequestBase) GetType() RequestType { return b.reqType }

// GetMaxResponseSize returns the effective response-size budget,
// including whatever return stack items have been pushed.
func (b *RequestBase) GetMaxResponseSize() uint32 { return b.maxResponseSize }

// GetReturnStackSize returns the on-wire size, in bytes, of the
// currently held return stack.
func (b *RequestBase) GetReturnStackSize() uint32 { return b.stack.binarySize() }

// Push records one more hop on the return stack, growing
// maxResponseSize by the item's wire size. It fails without modifying
// the request if that would exceed 255 stack items or the
// maxResponseSize bound.
func (b *RequestBase) Push(item ReturnStackItem) error {
	next, err := b.stack.push(item, b.maxResponseSize, maxResponseSizeBound)
	if err != nil {
		return err
	}

	b.maxResponseSize = next

	return nil
}

// ExtractReturnStack transfers ownership of the return stack to the
// caller, emptying it and shrinking maxResponseSize back down by the
// extracted items' total wire size.
func (b *RequestBase) ExtractReturnStack() []ReturnStackItem {
	items, shrink := b.stack.extract()
	b.maxResponseSize -= shrink

	return items
}

func (b *RequestBase) encodeHeader() []byte {
	buf := make([]byte, 6)
	buf[0] = envelopeVersion
	buf[1] = uint8(b.reqType)
	binary.LittleEndian.PutUint32(buf[2:6], b.maxResponseSize)

	return buf
}

// Request is the common contract of every concrete request type:
// serialize its own payload and append the shared header/return
// stack around it.
type Request interface {
	GetType() RequestType
	GetMaxResponseSize() uint32
	GetReturnStackSize() uint32
	Push(item ReturnStackItem) error
	ExtractReturnStack() []ReturnStackItem

	// ToBinary serializes the full envelope: header, type-specific
	// payload, and return stack, in that order.
	ToBinary() []byte
}

func decodeHeader(data []byte) (RequestType, uint32, []byte, error) {
	if len(data) < 6 {
		return 0, 0, nil, errors.New("remoteaccess: request too short for header")
	}

	if data[0] != envelopeVersion {
		return 0, 0, nil, fmt.Errorf("remoteaccess: unknown envelope version %d", data[0])
	}

	reqType := RequestType(data[1])
	maxResponseSize := binary.LittleEndian.Uint32(data[2:6])

	if maxResponseSize < minimumUsefulRequestSize || maxResponseSize > maxRequestSize {
		return 0, 0, nil, fmt.Errorf("remoteaccess: maxResponseSize %d out of range [%d,%d]", maxResponseSize, minimumUsefulRequestSize, maxRequestSize)
	}

	return reqType, maxResponseSize, data[6:], nil
}

// DecodeRequest parses a complete request envelope, dispatching on its
// type byte to the matching concrete type.
func DecodeRequest(data []byte) (Request, error) {
	reqType, maxResponseSize, rest, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	base := RequestBase{reqType: reqType, maxResponseSize: maxResponseSize}

	switch reqType {
	case RequestWrite:
		return decodeWriteRequest(base, rest)
	case RequestRead:
		return decodeReadRequest(base, rest)
	case RequestPing:
		return decodePingRequest(base, rest)
	default:
		return nil, fmt.Errorf("remoteaccess: unknown request type %d", reqType)
	}
}

// WriteRequest asks the responder to write data into one subindex (or,
// under complete access, the whole object).
type WriteRequest struct {
	RequestBase
	Access      AccessType
	Index       uint16
	Subindex    uint8
	Permissions cood.Attr
	Data        []byte
}

// NewWriteRequest validates and returns a ready-to-serialize write
// request.
func NewWriteRequest(access AccessType, index uint16, subindex uint8, permissions cood.Attr, data []byte, maxResponseSize uint32) (*WriteRequest, error) {
	base, err := newRequestBase(RequestWrite, maxResponseSize)
	if err != nil {
		return nil, err
	}

	return &WriteRequest{
		RequestBase: base,
		Access:      access,
		Index:       index,
		Subindex:    subindex,
		Permissions: permissions,
		Data:        data,
	}, nil
}

func (r *WriteRequest) ToBinary() []byte {
	payload := make([]byte, 1+2+1+2+4)
	payload[0] = uint8(r.Access)
	binary.LittleEndian.PutUint16(payload[1:3], r.Index)
	payload[3] = r.Subindex
	binary.LittleEndian.PutUint16(payload[4:6], uint16(r.Permissions))
	binary.LittleEndian.PutUint32(payload[6:10], uint32(len(r.Data)))
	payload = append(payload, r.Data...)

	out := r.encodeHeader()
	out = append(out, payload...)
	out = append(out, r.stack.encode()...)

	return out
}

func decodeWriteRequest(base RequestBase, data []byte) (*WriteRequest, error) {
	if len(data) < 10 {
		return nil, errors.New("remoteaccess: write request payload truncated")
	}

	access := AccessType(data[0])
	index := binary.LittleEndian.Uint16(data[1:3])
	subindex := data[3]
	permissions := cood.Attr(binary.LittleEndian.Uint16(data[4:6]))
	n := binary.LittleEndian.Uint32(data[6:10])
	data = data[10:]

	if uint32(len(data)) < n {
		return nil, fmt.Errorf("remoteaccess: write request declares %d data bytes, only %d remain", n, len(data))
	}

	value := append([]byte(nil), data[:n]...)
	data = data[n:]

	stack, rest, err := decodeReturnStack(data)
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, errors.New("remoteaccess: trailing bytes after return stack")
	}

	base.stack = *stack

	return &WriteRequest{
		RequestBase: base,
		Access:      access,
		Index:       index,
		Subindex:    subindex,
		Permissions: permissions,
		Data:        value,
	}, nil
}

// ReadRequest asks the responder to read one subindex (or, under
// complete access, the whole object).
type ReadRequest struct {
	RequestBase
	Access      AccessType
	Index       uint16
	Subindex    uint8
	Permissions cood.Attr
}

// NewReadRequest validates and returns a ready-to-serialize read
// request.
func NewReadRequest(access AccessType, index uint16, subindex uint8, permissions cood.Attr, maxResponseSize uint32) (*ReadRequest, error) {
	base, err := newRequestBase(RequestRead, maxResponseSize)
	if err != nil {
		return nil, err
	}

	return &ReadRequest{
		RequestBase: base,
		Access:      access,
		Index:       index,
		Subindex:    subindex,
		Permissions: permissions,
	}, nil
}

func (r *ReadRequest) ToBinary() []byte {
	payload := make([]byte, 1+2+1+2)
	payload[0] = uint8(r.Access)
	binary.LittleEndian.PutUint16(payload[1:3], r.Index)
	payload[3] = r.Subindex
	binary.LittleEndian.PutUint16(payload[4:6], uint16(r.Permissions))

	out := r.encodeHeader()
	out = append(out, payload...)
	out = append(out, r.stack.encode()...)

	return out
}

func decodeReadRequest(base RequestBase, data []byte) (*ReadRequest, error) {
	if len(data) < 6 {
		return nil, errors.New("remoteaccess: read request payload truncated")
	}

	access := AccessType(data[0])
	index := binary.LittleEndian.Uint16(data[1:3])
	subindex := data[3]
	permissions := cood.Attr(binary.LittleEndian.Uint16(data[4:6]))
	data = data[6:]

	stack, rest, err := decodeReturnStack(data)
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, errors.New("remoteaccess: trailing bytes after return stack")
	}

	base.stack = *stack

	return &ReadRequest{
		RequestBase: base,
		Access:      access,
		Index:       index,
		Subindex:    subindex,
		Permissions: permissions,
	}, nil
}

// PingRequest carries no payload; it round-trips a return stack to
// verify a relay chain is alive.
type PingRequest struct {
	RequestBase
}

// NewPingRequest validates and returns a ready-to-serialize ping
// request.
func NewPingRequest(maxResponseSize uint32) (*PingRequest, error) {
	base, err := newRequestBase(RequestPing, maxResponseSize)
	if err != nil {
		return nil, err
	}

	return &PingRequest{RequestBase: base}, nil
}

func (r *PingRequest) ToBinary() []byte {
	out := r.encodeHeader()
	out = append(out, r.stack.encode()...)

	return out
}

func decodePingRequest(base RequestBase, data []byte) (*PingRequest, error) {
	stack, rest, err := decodeReturnStack(data)
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, errors.New("remoteaccess: trailing bytes after return stack")
	}

	base.stack = *stack

	return &PingRequest{RequestBase: base}, nil
}
