package codec

import "testing"

func TestEncodeDecodeBareRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 42, 333, 99999, 123456789} {
		e := EncodeInt(n)
		c := NewCursor(e)
		got := c.ReadBare(len(e))
		if !c.Valid() || got != n {
			t.Fatalf("EncodeInt(%d)=%q decoded back to %d (valid=%v)", n, e, got, c.Valid())
		}
	}
}

func TestEncodeZeroIsOneLetter(t *testing.T) {
	if e := EncodeInt(0); len(e) != 1 {
		t.Fatalf("EncodeInt(0) = %q, want length 1", e)
	}
}

func TestSingleRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 9, 123, 999999} {
		e := EncodeSingle(n)
		c := NewCursor(e)
		got := c.ReadSingle()
		if !c.Valid() || got != n {
			t.Fatalf("EncodeSingle(%d)=%q decoded to %d (valid=%v)", n, e, got, c.Valid())
		}
		if c.Pos() != len(e) {
			t.Fatalf("cursor did not advance past exactly the written bytes: pos=%d len=%d", c.Pos(), len(e))
		}
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	for _, n := range []int{0, 5, 4294967, 123456789} {
		e := EncodeDouble(n)
		c := NewCursor(e)
		got := c.ReadDouble()
		if !c.Valid() || got != n {
			t.Fatalf("EncodeDouble(%d)=%q decoded to %d (valid=%v)", n, e, got, c.Valid())
		}
		if c.Pos() != len(e) {
			t.Fatalf("cursor did not advance past exactly the written bytes: pos=%d len=%d", c.Pos(), len(e))
		}
	}
}

func TestEncodeStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "Bulba", "123456789"} {
		e := EncodeString(s)
		c := NewCursor(e)
		got := c.ReadString()
		if !c.Valid() || got != s {
			t.Fatalf("EncodeString(%q)=%q decoded to %q (valid=%v)", s, e, got, c.Valid())
		}
	}
}

func TestEncodeStringTruncatesOverNineChars(t *testing.T) {
	e := EncodeString("0123456789")
	c := NewCursor(e)
	got := c.ReadString()
	if got != "012345678" {
		t.Fatalf("expected truncation to 9 chars, got %q", got)
	}
}

func TestCursorFailSoftOnTruncatedInput(t *testing.T) {
	c := NewCursor("y") // claims a 1-char-length value follows, but nothing does
	got := c.ReadSingle()
	if got != 0 {
		t.Fatalf("expected 0 on truncated input, got %d", got)
	}
	if c.Valid() {
		t.Fatal("expected cursor to be invalid after truncated read")
	}
	if c.Pos() != 0 {
		t.Fatalf("expected cursor position unchanged on failed read, got %d", c.Pos())
	}
}

func TestCursorFailSoftOnInvalidLetter(t *testing.T) {
	c := NewCursor("y" + "z") // length says 1, next letter 'z' is outside the alphabet
	got := c.ReadSingle()
	if got != 0 || c.Valid() {
		t.Fatalf("expected fail-soft zero+invalid, got %d valid=%v", got, c.Valid())
	}
}

func TestCursorStaysInvalidAfterFirstFailure(t *testing.T) {
	c := NewCursor("")
	c.ReadSingle()
	if c.Valid() {
		t.Fatal("expected invalid cursor on empty input")
	}
	if got := c.ReadDouble(); got != 0 {
		t.Fatalf("expected further reads on an invalid cursor to return 0, got %d", got)
	}
}
