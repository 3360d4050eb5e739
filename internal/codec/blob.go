package codec

// EncodeEnvelope wraps body in the common H_len||H||body header used by
// every blob in the protocol. H encodes the length of the entire encoded
// blob (header included), not just the body — the smallest H_len/H pair
// that is self-consistent with that total is chosen, same as the
// single-digit case always seen in practice (an empty blob's header is
// exactly "yq", giving the required "yqym" placeholder for a zero-count
// body of "ym").
func EncodeEnvelope(body string) string {
	bodyLen := len(body)
	for hDigits := 1; hDigits <= 9; hDigits++ {
		total := 1 + hDigits + bodyLen // H_len (1 char) + H (hDigits chars) + body
		h := EncodeInt(total)
		if len(h) == hDigits {
			hLen := EncodeInt(len(h))
			return hLen + h + body
		}
	}
	// Unreachable for any realistic blob size; fall back to the plain
	// body-length header rather than panic on a pathological input.
	h := EncodeInt(bodyLen)
	return EncodeInt(len(h)) + h + body
}

// KVEmptyPlaceholder is the literal four-character encoding of an empty
// key/value blob, required verbatim for unused slots in the load response.
const KVEmptyPlaceholder = "yqym"

// EncodeKV renders a key/value map as a blob: envelope(single-prefixed
// count || count * (single-prefixed key, single-prefixed value)).
// Keys are visited in ascending order so the encoding is deterministic —
// the protocol treats the map's contents as opaque, but a stable byte
// sequence makes persistence and tests reproducible.
func EncodeKV(m map[int]int) string {
	keys := sortedKeys(m)
	body := EncodeSingle(len(keys))
	for _, k := range keys {
		body += EncodeSingle(k)
		body += EncodeSingle(m[k])
	}
	return EncodeEnvelope(body)
}

// DecodeKV parses a key/value blob produced by EncodeKV (or by the
// client). ok is false if the cursor ran out of data partway through —
// the map returned still holds every pair successfully decoded before
// that point.
func DecodeKV(s string) (m map[int]int, ok bool) {
	c := NewCursor(s)
	c.SkipEnvelopeHeader()
	count := c.ReadSingle()
	m = make(map[int]int, count)
	for i := 0; i < count && c.Valid(); i++ {
		k := c.ReadSingle()
		v := c.ReadSingle()
		if !c.Valid() {
			break
		}
		m[k] = v
	}
	return m, c.Valid()
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Small maps in practice (inventory/achievement/extraInfo); insertion
	// sort keeps this allocation-free without pulling in sort for one use.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// SnapshotElement is the wire-level shape of one roster entry inside a
// snapshot blob (§4.2). ExtraRarity is the raw obfuscated projection of
// rarity, not yet interpreted — see package save for that.
type SnapshotElement struct {
	Species      int
	Experience   int
	Level        int
	Move1        int
	Move2        int
	Move3        int
	Move4        int
	MoveSelected int
	TargetType   int
	MyID         int
	Position     int
	ExtraRarity  int
	Tag          string
}

// EncodeSnapshot renders a full roster as a snapshot blob.
func EncodeSnapshot(elems []SnapshotElement) string {
	body := EncodeSingle(len(elems))
	for _, e := range elems {
		body += EncodeSingle(e.Species)
		body += EncodeDouble(e.Experience)
		body += EncodeSingle(e.Level)
		body += EncodeSingle(e.Move1)
		body += EncodeSingle(e.Move2)
		body += EncodeSingle(e.Move3)
		body += EncodeSingle(e.Move4)
		body += EncodeSingle(e.MoveSelected)
		body += EncodeSingle(e.TargetType)
		body += EncodeDouble(e.MyID)
		body += EncodeSingle(e.Position)
		body += EncodeSingle(e.ExtraRarity)
		body += EncodeString(e.Tag)
	}
	return EncodeEnvelope(body)
}

// DecodeSnapshot parses a snapshot blob. As with DecodeKV, ok is false if
// the stream ran out mid-record; elems holds every complete record
// decoded up to that point.
func DecodeSnapshot(s string) (elems []SnapshotElement, ok bool) {
	c := NewCursor(s)
	c.SkipEnvelopeHeader()
	count := c.ReadSingle()
	elems = make([]SnapshotElement, 0, count)
	for i := 0; i < count && c.Valid(); i++ {
		e := SnapshotElement{
			Species:      c.ReadSingle(),
			Experience:   c.ReadDouble(),
			Level:        c.ReadSingle(),
			Move1:        c.ReadSingle(),
			Move2:        c.ReadSingle(),
			Move3:        c.ReadSingle(),
			Move4:        c.ReadSingle(),
			MoveSelected: c.ReadSingle(),
			TargetType:   c.ReadSingle(),
			MyID:         c.ReadDouble(),
			Position:     c.ReadSingle(),
			ExtraRarity:  c.ReadSingle(),
			Tag:          c.ReadString(),
		}
		if !c.Valid() {
			break
		}
		elems = append(elems, e)
	}
	return elems, c.Valid()
}
