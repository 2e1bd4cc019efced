package container

import "errors"

var (
	ErrRAMBlockOutOfRange = errors.New("container: address/size out of range")
)

// RAMBlock is a fixed-size byte buffer that backs a random-access
// storage contract. Every successful Write sets the dirty flag; it is
// cleared only by an explicit acknowledgment (ClearDirtyFlag, or the
// combined read-and-clear accessors).
type RAMBlock struct {
	data  []byte
	dirty bool
}

// NewRAMBlock returns a RAMBlock of size bytes, all zeroed, not dirty.
func NewRAMBlock(size uint64) *RAMBlock {
	return &RAMBlock{data: make([]byte, size)}
}

// NewRAMBlockFromBytes returns a RAMBlock that copies initial as its
// backing storage. The new block starts out not dirty.
func NewRAMBlockFromBytes(initial []byte) *RAMBlock {
	data := make([]byte, len(initial))
	copy(data, initial)

	return &RAMBlock{data: data}
}

// GetSize returns the number of bytes in the block.
func (b *RAMBlock) GetSize() uint64 { return uint64(len(b.data)) }

func (b *RAMBlock) checkRange(address, n uint64) error {
	if address+n < address || address+n > uint64(len(b.data)) {
		return ErrRAMBlockOutOfRange
	}

	return nil
}

// Read copies n bytes starting at address into dst.
func (b *RAMBlock) Read(address, n uint64, dst []byte) error {
	if err := b.checkRange(address, n); err != nil {
		return err
	}

	if uint64(len(dst)) < n {
		return ErrRAMBlockOutOfRange
	}

	copy(dst[:n], b.data[address:address+n])

	return nil
}

// Write copies n bytes from src into the block starting at address and
// sets the dirty flag.
func (b *RAMBlock) Write(address, n uint64, src []byte) error {
	if err := b.checkRange(address, n); err != nil {
		return err
	}

	if uint64(len(src)) < n {
		return ErrRAMBlockOutOfRange
	}

	copy(b.data[address:address+n], src[:n])
	b.dirty = true

	return nil
}

// IsDirty reports whether the block has unacknowledged writes.
func (b *RAMBlock) IsDirty() bool { return b.dirty }

// SetDirtyFlag unconditionally marks the block dirty.
func (b *RAMBlock) SetDirtyFlag() { b.dirty = true }

// ClearDirtyFlag acknowledges all writes so far.
func (b *RAMBlock) ClearDirtyFlag() { b.dirty = false }

// GetDataAndClearDirtyFlag returns a copy of the entire backing buffer
// and clears the dirty flag in one step, so callers implementing a
// snapshot-on-write-boundary policy cannot race a write arriving
// between reading the data and acknowledging it.
func (b *RAMBlock) GetDataAndClearDirtyFlag() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	b.dirty = false

	return out
}
