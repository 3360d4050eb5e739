package codec

import "testing"

func TestEmptyKVBlobIsLiteralPlaceholder(t *testing.T) {
	got := EncodeKV(map[int]int{})
	if got != KVEmptyPlaceholder {
		t.Fatalf("EncodeKV(empty) = %q, want %q", got, KVEmptyPlaceholder)
	}
}

func TestEmptySnapshotIsLiteralPlaceholder(t *testing.T) {
	got := EncodeSnapshot(nil)
	if got != KVEmptyPlaceholder {
		t.Fatalf("EncodeSnapshot(nil) = %q, want %q", got, KVEmptyPlaceholder)
	}
}

func TestKVRoundTrip(t *testing.T) {
	m := map[int]int{1: 10, 2: 9999999, 40308: 500}
	enc := EncodeKV(m)
	got, ok := DecodeKV(enc)
	if !ok {
		t.Fatalf("DecodeKV(%q) reported invalid", enc)
	}
	if len(got) != len(m) {
		t.Fatalf("got %d pairs, want %d", len(got), len(m))
	}
	for k, v := range m {
		if got[k] != v {
			t.Fatalf("key %d: got %d, want %d", k, got[k], v)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	elems := []SnapshotElement{
		{Species: 1, Experience: 0, Level: 5, Move1: 33, MoveSelected: 1, TargetType: 1, MyID: 1, Position: 1, ExtraRarity: 0, Tag: "Bulba"},
		{Species: 150, Experience: 16777215, Level: 100, Move2: 7, MoveSelected: 2, TargetType: 1, MyID: 2, Position: 2, ExtraRarity: 1, Tag: ""},
	}
	enc := EncodeSnapshot(elems)
	got, ok := DecodeSnapshot(enc)
	if !ok {
		t.Fatalf("DecodeSnapshot(%q) reported invalid", enc)
	}
	if len(got) != len(elems) {
		t.Fatalf("got %d elements, want %d", len(got), len(elems))
	}
	for i := range elems {
		if got[i] != elems[i] {
			t.Fatalf("element %d: got %+v, want %+v", i, got[i], elems[i])
		}
	}
}

func TestDecodeKVTruncatedIsFailSoft(t *testing.T) {
	// A well-formed header claiming 2 pairs but only data for one.
	enc := EncodeEnvelope(EncodeSingle(2) + EncodeSingle(1) + EncodeSingle(2))
	got, ok := DecodeKV(enc)
	if ok {
		t.Fatal("expected truncated KV blob to report invalid")
	}
	if got[1] != 2 {
		t.Fatalf("expected the one complete pair to survive, got %v", got)
	}
}
