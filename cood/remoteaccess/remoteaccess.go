// Package remoteaccess implements the versioned binary envelope objects
// are addressed through remotely: a request carries an access
// description and a bounded return stack recording the chain of relays
// it passed through, so a response can be routed back the same way
// without the object dictionary itself knowing about transport.
package remoteaccess

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Envelope header/footer bounds. maxResponseSize travels inside every
// request so an intermediate relay can size its reply buffer without
// consulting the final responder.
const (
	envelopeVersion = 1

	minimumUsefulRequestSize  = 8
	maxRequestSize            = 1 << 16
	minimumUsefulResponseSize = 4
	maxResponseSizeBound      = 1 << 16

	maxReturnStackItems = 255
)

// RequestType identifies the shape of a request's type-specific
// payload. Response types reuse the high bit so a stray dispatch on
// the wrong table is caught as an unknown-type error rather than
// silently misparsed.
type RequestType uint8

const (
	RequestWrite RequestType = 1 + iota
	RequestRead
	RequestWriteComplete
	RequestReadComplete
	RequestPing
)

type ResponseType uint8

const (
	ResponseWrite ResponseType = 0x81 + iota
	ResponseRead
	ResponseWriteComplete
	ResponseReadComplete
	ResponsePing
)

// AccessType distinguishes a single-subindex access from a
// complete-access (all subindices at once) one.
type AccessType uint8

const (
	AccessSingleSubindex AccessType = iota
	AccessComplete
)

// ReturnStackItem records one hop a request passed through on its way
// to the responder: an identifier for that hop and an opaque info word
// it attached, both handed back unexamined in the response.
type ReturnStackItem struct {
	ID   uint32
	Info uint32
}

// BinarySize is the on-wire size of one ReturnStackItem.
const BinarySize = 8

func (i ReturnStackItem) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], i.ID)
	binary.LittleEndian.PutUint32(buf[4:8], i.Info)
}

func decodeReturnStackItem(buf []byte) ReturnStackItem {
	return ReturnStackItem{
		ID:   binary.LittleEndian.Uint32(buf[0:4]),
		Info: binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// returnStack is the bounded LIFO of ReturnStackItems carried by a
// request. Push grows both the stack and the request's effective
// maxResponseSize budget in lockstep; ExtractReturnStack hands the
// whole thing to the caller and shrinks the budget back down.
type returnStack struct {
	items []ReturnStackItem
}

func (s *returnStack) size() int { return len(s.items) }

func (s *returnStack) binarySize() uint32 { return uint32(len(s.items)) * BinarySize }

// push appends item, provided doing so would not exceed 255 stack
// entries or push the request's effective maxResponseSize past limit.
func (s *returnStack) push(item ReturnStackItem, maxResponseSize uint32, limit uint32) (uint32, error) {
	if len(s.items) >= maxReturnStackItems {
		return 0, fmt.Errorf("remoteaccess: return stack already holds the maximum of %d items", maxReturnStackItems)
	}

	next := maxResponseSize + BinarySize
	if next > limit {
		return 0, fmt.Errorf("remoteaccess: pushing would grow maxResponseSize to %d, exceeding the %d bound", next, limit)
	}

	s.items = append(s.items, item)

	return next, nil
}

// extract transfers ownership of the stack to the caller, clearing it,
// and returns the maxResponseSize reduction the caller must apply.
func (s *returnStack) extract() ([]ReturnStackItem, uint32) {
	out := s.items
	shrink := s.binarySize()
	s.items = nil

	return out, shrink
}

func (s *returnStack) encode() []byte {
	buf := make([]byte, 1+int(s.binarySize()))
	buf[0] = uint8(len(s.items))

	for i, item := range s.items {
		item.encode(buf[1+i*BinarySize:])
	}

	return buf
}

func decodeReturnStack(data []byte) (*returnStack, []byte, error) {
	if len(data) < 1 {
		return nil, nil, errors.New("remoteaccess: truncated return stack count")
	}

	n := int(data[0])
	data = data[1:]

	need := n * BinarySize
	if len(data) < need {
		return nil, nil, fmt.Errorf("remoteaccess: truncated return stack: need %d bytes, have %d", need, len(data))
	}

	s := &returnStack{items: make([]ReturnStackItem, n)}
	for i := 0; i < n; i++ {
		s.items[i] = decodeReturnStackItem(data[i*BinarySize : (i+1)*BinarySize])
	}

	return s, data[need:], nil
}
