package xstring

import (
	"strconv"
	"strings"
)

// Composer is a fluent byte/number-to-string formatter for diagnostic
// text. It never fails;
// formatting errors are impossible by construction since every Append*
// method operates on a type with a total string representation.
type Composer struct {
	b strings.Builder
}

// NewComposer returns a ready-to-use Composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Str appends s verbatim.
func (c *Composer) Str(s string) *Composer {
	c.b.WriteString(s)

	return c
}

// Uint8Hex appends v in lowercase hex with a "0x" prefix and no zero
// padding, e.g. "0xc" for 12.
func (c *Composer) Uint8Hex(v uint8) *Composer {
	c.b.WriteString("0x")
	c.b.WriteString(strconv.FormatUint(uint64(v), 16))

	return c
}

// Uint32Hex appends v as a zero-padded eight-digit hex word.
func (c *Composer) Uint32Hex(v uint32) *Composer {
	s := strconv.FormatUint(uint64(v), 16)
	for len(s) < 8 {
		s = "0" + s
	}

	c.b.WriteString("0x")
	c.b.WriteString(s)

	return c
}

// Int appends v in base 10.
func (c *Composer) Int(v int64) *Composer {
	c.b.WriteString(strconv.FormatInt(v, 10))

	return c
}

// Bytes appends data as a space-separated list of two-digit hex pairs.
func (c *Composer) Bytes(data []byte) *Composer {
	for i, b := range data {
		if i > 0 {
			c.b.WriteByte(' ')
		}

		s := strconv.FormatUint(uint64(b), 16)
		if len(s) == 1 {
			c.b.WriteByte('0')
		}

		c.b.WriteString(s)
	}

	return c
}

// String returns the composed string.
func (c *Composer) String() string {
	return c.b.String()
}
