package remoteaccess

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gpcc-project/gpcc/cood"
)

// ResponseBase is the header and return stack shared by every concrete
// response type. A response carries no maxResponseSize of its own —
// that budget belonged to the request it answers — but it carries the
// same return stack back out so each relay can pop its own entry.
type ResponseBase struct {
	respType ResponseType
	stack    returnStack
}

func newResponseBase(respType ResponseType) ResponseBase {
	return ResponseBase{respType: respType}
}

func (b *ResponseBase) GetType() ResponseType { return b.respType }

func (b *ResponseBase) GetReturnStackSize() uint32 { return b.stack.binarySize() }

// Push appends item to the response's return stack. Unlike a request,
// a response has no maxResponseSize budget to grow, so the only limit
// is the 255-item stack depth.
func (b *ResponseBase) Push(item ReturnStackItem) error {
	_, err := b.stack.push(item, 0, maxResponseSizeBound)

	return err
}

// ExtractReturnStack transfers ownership of the return stack to the
// caller, emptying it.
func (b *ResponseBase) ExtractReturnStack() []ReturnStackItem {
	items, _ := b.stack.extract()

	return items
}

func (b *ResponseBase) encodeHeader() []byte {
	return []byte{envelopeVersion, uint8(b.respType)}
}

// Response is the common contract of every concrete response type.
type Response interface {
	GetType() ResponseType
	GetReturnStackSize() uint32
	Push(item ReturnStackItem) error
	ExtractReturnStack() []ReturnStackItem
	ToBinary() []byte
}

func decodeResponseHeader(data []byte) (ResponseType, []byte, error) {
	if len(data) < 2 {
		return 0, nil, errors.New("remoteaccess: response too short for header")
	}

	if data[0] != envelopeVersion {
		return 0, nil, fmt.Errorf("remoteaccess: unknown envelope version %d", data[0])
	}

	return ResponseType(data[1]), data[2:], nil
}

// DecodeResponse parses a complete response envelope, dispatching on
// its type byte to the matching concrete type.
func DecodeResponse(data []byte) (Response, error) {
	respType, rest, err := decodeResponseHeader(data)
	if err != nil {
		return nil, err
	}

	base := newResponseBase(respType)

	switch respType {
	case ResponseWrite:
		return decodeWriteResponse(base, rest)
	case ResponseRead:
		return decodeReadResponse(base, rest)
	case ResponsePing:
		return decodePingResponse(base, rest)
	default:
		return nil, fmt.Errorf("remoteaccess: unknown response type %d", respType)
	}
}

// WriteResponse answers a WriteRequest with the outcome of the write.
type WriteResponse struct {
	ResponseBase
	Abort cood.SDOAbortCode
}

func NewWriteResponse(abort cood.SDOAbortCode) *WriteResponse {
	return &WriteResponse{ResponseBase: newResponseBase(ResponseWrite), Abort: abort}
}

func (r *WriteResponse) ToBinary() []byte {
	out := r.encodeHeader()

	abortBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(abortBuf, uint32(r.Abort))
	out = append(out, abortBuf...)
	out = append(out, r.stack.encode()...)

	return out
}

func decodeWriteResponse(base ResponseBase, data []byte) (*WriteResponse, error) {
	if len(data) < 4 {
		return nil, errors.New("remoteaccess: write response payload truncated")
	}

	abort := cood.SDOAbortCode(binary.LittleEndian.Uint32(data[0:4]))

	stack, rest, err := decodeReturnStack(data[4:])
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, errors.New("remoteaccess: trailing bytes after return stack")
	}

	base.stack = *stack

	return &WriteResponse{ResponseBase: base, Abort: abort}, nil
}

// ReadResponse answers a ReadRequest with either the read data or an
// abort code.
type ReadResponse struct {
	ResponseBase
	Abort cood.SDOAbortCode
	Data  []byte
}

func NewReadResponse(abort cood.SDOAbortCode, data []byte) *ReadResponse {
	return &ReadResponse{ResponseBase: newResponseBase(ResponseRead), Abort: abort, Data: data}
}

func (r *ReadResponse) ToBinary() []byte {
	out := r.encodeHeader()

	payload := make([]byte, 4+4)
	binary.LittleEndian.PutUint32(payload[0:4], uint32(r.Abort))
	binary.LittleEndian.PutUint32(payload[4:8], uint32(len(r.Data)))
	out = append(out, payload...)
	out = append(out, r.Data...)
	out = append(out, r.stack.encode()...)

	return out
}

func decodeReadResponse(base ResponseBase, data []byte) (*ReadResponse, error) {
	if len(data) < 8 {
		return nil, errors.New("remoteaccess: read response payload truncated")
	}

	abort := cood.SDOAbortCode(binary.LittleEndian.Uint32(data[0:4]))
	n := binary.LittleEndian.Uint32(data[4:8])
	data = data[8:]

	if uint32(len(data)) < n {
		return nil, fmt.Errorf("remoteaccess: read response declares %d data bytes, only %d remain", n, len(data))
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

	return &ReadResponse{ResponseBase: base, Abort: abort, Data: value}, nil
}

// PingResponse answers a PingRequest; its mere arrival is the payload.
type PingResponse struct {
	ResponseBase
}

func NewPingResponse() *PingResponse {
	return &PingResponse{ResponseBase: newResponseBase(ResponsePing)}
}

func (r *PingResponse) ToBinary() []byte {
	out := r.encodeHeader()
	out = append(out, r.stack.encode()...)

	return out
}

func decodePingResponse(base ResponseBase, data []byte) (*PingResponse, error) {
	stack, rest, err := decodeReturnStack(data)
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, errors.New("remoteaccess: trailing bytes after return stack")
	}

	base.stack = *stack

	return &PingResponse{ResponseBase: base}, nil
}
