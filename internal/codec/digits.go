// Package codec implements the wire-level numeric and blob encodings used
// by the PTD save protocol: a 10-letter digit-substitution alphabet and the
// length-prefixed integer/string forms built on top of it.
package codec

import "strconv"

// alphabet maps decimal digit i to its wire letter, position 0-9.
const alphabet = "mywcqapreo"

var letterToDigit = func() [256]int8 {
	var m [256]int8
	for i := range m {
		m[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		m[alphabet[i]] = int8(i)
	}
	return m
}()

// EncodeInt renders n (n >= 0) as its bare digit-substituted string.
// EncodeInt(0) returns a single letter, the digit-0 letter.
func EncodeInt(n int) string {
	if n == 0 {
		return string(alphabet[0])
	}
	digits := strconv.Itoa(n)
	out := make([]byte, len(digits))
	for i := 0; i < len(digits); i++ {
		out[i] = alphabet[digits[i]-'0']
	}
	return string(out)
}

// EncodeSingle renders the single length-prefixed form L||E, where
// E = EncodeInt(n) and L is the one-letter encoded length of E.
func EncodeSingle(n int) string {
	e := EncodeInt(n)
	return EncodeInt(len(e)) + e
}

// EncodeDouble renders the double length-prefixed form L2||L1||E, used
// for values whose encoded length may itself exceed one digit.
func EncodeDouble(n int) string {
	e := EncodeInt(n)
	l1 := EncodeInt(len(e))
	l2 := EncodeInt(len(l1))
	return l2 + l1 + e
}

// EncodeString renders the length-prefixed string form: one letter giving
// the character count, followed by the raw (not recoded) characters. The
// count letter is a bare single digit, so s is truncated to 9 characters.
func EncodeString(s string) string {
	if len(s) > 9 {
		s = s[:9]
	}
	return EncodeInt(len(s)) + s
}

// Cursor walks an encoded string, fail-soft: once a read runs past the end
// of the data or hits a letter outside the 10-letter alphabet, it marks
// itself invalid, leaves the read position where it was, and every further
// read returns zero (or empty string) without advancing.
type Cursor struct {
	data  string
	pos   int
	valid bool
}

// NewCursor creates a Cursor positioned at the start of s.
func NewCursor(s string) *Cursor {
	return &Cursor{data: s, valid: true}
}

// Valid reports whether every read so far has succeeded.
func (c *Cursor) Valid() bool { return c.valid }

// Pos returns the current byte offset into the underlying string.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Done reports whether the cursor has reached the end of the data (or
// gone invalid — both are "nothing left to usefully read").
func (c *Cursor) Done() bool {
	return !c.valid || c.pos >= len(c.data)
}

// decodeValue decodes exactly n letters at the current position as a
// digit-substituted integer. On any failure the cursor is marked invalid
// and the position is left unchanged.
func (c *Cursor) decodeValue(n int) int {
	if !c.valid || n <= 0 || c.pos+n > len(c.data) {
		c.valid = false
		return 0
	}
	val := 0
	for i := 0; i < n; i++ {
		d := letterToDigit[c.data[c.pos+i]]
		if d < 0 {
			c.valid = false
			return 0
		}
		val = val*10 + int(d)
	}
	c.pos += n
	return val
}

// readRaw reads n raw (non-decoded) bytes. Same fail-soft contract as
// decodeValue.
func (c *Cursor) readRaw(n int) string {
	if !c.valid || n < 0 || c.pos+n > len(c.data) {
		c.valid = false
		return ""
	}
	s := c.data[c.pos : c.pos+n]
	c.pos += n
	return s
}

// ReadBare decodes a bare encoded integer of exactly n letters.
func (c *Cursor) ReadBare(n int) int { return c.decodeValue(n) }

// ReadSingle reads the single length-prefixed integer form L||E.
func (c *Cursor) ReadSingle() int {
	l := c.decodeValue(1)
	if !c.valid {
		return 0
	}
	return c.decodeValue(l)
}

// ReadDouble reads the double length-prefixed integer form L2||L1||E.
func (c *Cursor) ReadDouble() int {
	l2 := c.decodeValue(1)
	if !c.valid {
		return 0
	}
	l1 := c.decodeValue(l2)
	if !c.valid {
		return 0
	}
	return c.decodeValue(l1)
}

// ReadString reads the length-prefixed string form.
func (c *Cursor) ReadString() string {
	n := c.decodeValue(1)
	if !c.valid {
		return ""
	}
	return c.readRaw(n)
}

// Invalidate marks the cursor as failed without moving the read position.
// Used when a caller recognizes the data is malformed in a way the cursor
// itself can't detect (e.g. an out-of-range tag value in a higher-level
// stream), so the rest of the stream is abandoned the same way a truncated
// read would be.
func (c *Cursor) Invalidate() { c.valid = false }

// SkipEnvelopeHeader consumes the H_len||H prefix of a blob envelope
// without trusting its decoded value for anything — callers that only
// need the body (the delta parser) call this and then parse the body
// directly off the same cursor.
func (c *Cursor) SkipEnvelopeHeader() {
	hLen := c.decodeValue(1)
	if !c.valid {
		return
	}
	c.decodeValue(hLen)
}
