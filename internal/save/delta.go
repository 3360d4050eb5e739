package save

import (
	"sort"

	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/codec"
)

// Change types, §4.3.
const (
	changeNeedCaptured     = 1
	changeNeedLevel        = 2
	changeNeedExp          = 3
	changeNeedMoves        = 4
	changeNeedMoveSelected = 5
	changeNeedEvolve       = 6
	changeNeedTarget       = 7
	changePosChange        = 8
	changeNeedTag          = 9
	changeNeedTrade        = 10
)

// change is the mechanically-decoded payload of one delta change record.
// Which fields are meaningful depends on Type; readChangePayload always
// fills exactly the fields §4.3's table lists for that type, so a change
// can be both applied and skipped by the same decoding path.
type change struct {
	Type         int
	Species      int
	Experience   int
	Level        int
	Move1        int
	Move2        int
	Move3        int
	Move4        int
	MoveSelected int
	TargetType   int
	Position     int
	ExtraRarity  int
	Tag          string
}

// readChangePayload decodes the payload for changeType off c, per the
// shapes in §4.3's change-type table. An unrecognized type invalidates the
// cursor — there is no way to know how many bytes to skip for a payload
// shape we don't recognize, so the stream is abandoned cleanly rather than
// misparsed.
func readChangePayload(c *codec.Cursor, changeType int) change {
	ch := change{Type: changeType}
	switch changeType {
	case changeNeedCaptured:
		ch.Species = c.ReadSingle()
		ch.Experience = c.ReadDouble()
		ch.Level = c.ReadSingle()
		ch.Move1, ch.Move2, ch.Move3, ch.Move4 = c.ReadSingle(), c.ReadSingle(), c.ReadSingle(), c.ReadSingle()
		ch.MoveSelected = c.ReadSingle()
		ch.TargetType = c.ReadSingle()
		ch.Position = c.ReadSingle()
		ch.ExtraRarity = c.ReadSingle()
		ch.Tag = c.ReadString()
	case changeNeedLevel:
		ch.Level = c.ReadSingle()
	case changeNeedExp:
		ch.Experience = c.ReadDouble()
	case changeNeedMoves:
		ch.Move1, ch.Move2, ch.Move3, ch.Move4 = c.ReadSingle(), c.ReadSingle(), c.ReadSingle(), c.ReadSingle()
	case changeNeedMoveSelected:
		ch.MoveSelected = c.ReadSingle()
	case changeNeedEvolve:
		ch.Species = c.ReadSingle()
	case changeNeedTarget:
		ch.TargetType = c.ReadSingle()
	case changePosChange:
		ch.Position = c.ReadSingle()
	case changeNeedTag:
		ch.Tag = c.ReadString()
	case changeNeedTrade:
		ch.Species = c.ReadSingle()
		ch.Experience = c.ReadDouble()
		ch.Level = c.ReadSingle()
		ch.Move1, ch.Move2, ch.Move3, ch.Move4 = c.ReadSingle(), c.ReadSingle(), c.ReadSingle(), c.ReadSingle()
		ch.MoveSelected = c.ReadSingle()
		ch.TargetType = c.ReadSingle()
		ch.Position = c.ReadSingle()
	default:
		c.Invalidate()
	}
	return ch
}

// apply mutates rec according to ch, per the "Effect" column of §4.3's table.
func apply(rec *PokemonRecord, ch change) {
	switch ch.Type {
	case changeNeedCaptured:
		rec.Species = ch.Species
		rec.Experience = ch.Experience
		rec.Level = ch.Level
		rec.Move1, rec.Move2, rec.Move3, rec.Move4 = ch.Move1, ch.Move2, ch.Move3, ch.Move4
		rec.MoveSelected = ch.MoveSelected
		rec.TargetType = ch.TargetType
		rec.Position = ch.Position
		rec.Rarity = DeriveRarity(ch.ExtraRarity, ch.Species)
		rec.Tag = ch.Tag
	case changeNeedLevel:
		rec.Level = ch.Level
	case changeNeedExp:
		rec.Experience = ch.Experience
	case changeNeedMoves:
		rec.Move1, rec.Move2, rec.Move3, rec.Move4 = ch.Move1, ch.Move2, ch.Move3, ch.Move4
	case changeNeedMoveSelected:
		rec.MoveSelected = ch.MoveSelected
	case changeNeedEvolve:
		rec.Species = ch.Species
	case changeNeedTarget:
		rec.TargetType = ch.TargetType
	case changePosChange:
		rec.Position = ch.Position
	case changeNeedTag:
		rec.Tag = ch.Tag
	case changeNeedTrade:
		rec.Species = ch.Species
		rec.Experience = ch.Experience
		rec.Level = ch.Level
		rec.Move1, rec.Move2, rec.Move3, rec.Move4 = ch.Move1, ch.Move2, ch.Move3, ch.Move4
		rec.MoveSelected = ch.MoveSelected
		rec.TargetType = ch.TargetType
		rec.Position = ch.Position
	}
}

// ApplyDelta consumes the extra delta stream (§4.3) against the current
// roster and returns the resulting roster, sorted by position (ties
// broken by myID). ok is false if the stream ran out of data mid-entry —
// a genuine decode error rather than a clean end of stream — in which
// case the caller must keep the pre-delta roster (§4.3.3, §7 DecodeError).
func ApplyDelta(extra string, roster []PokemonRecord) (result []PokemonRecord, ok bool) {
	byID := make(map[int]*PokemonRecord, len(roster))
	nextID := 1
	for _, r := range roster {
		rec := r
		byID[rec.MyID] = &rec
		if rec.MyID >= nextID {
			nextID = rec.MyID + 1
		}
	}

	c := codec.NewCursor(extra)
	c.SkipEnvelopeHeader()
	if !c.Done() {
		c.ReadSingle() // total roster count, informational only — not trusted for bounds
	}

	for !c.Done() {
		changeCount := c.ReadSingle()
		if !c.Valid() {
			break
		}
		if changeCount == 0 {
			continue
		}

		myID := c.ReadDouble()
		if !c.Valid() {
			break
		}

		firstType := c.ReadSingle()
		if !c.Valid() {
			break
		}
		first := readChangePayload(c, firstType)
		if !c.Valid() {
			break
		}

		target, accept := resolveTarget(byID, &nextID, myID, firstType, first)

		if accept {
			apply(target, first)
		}

		for i := 1; i < changeCount; i++ {
			t := c.ReadSingle()
			if !c.Valid() {
				break
			}
			ch := readChangePayload(c, t)
			if !c.Valid() {
				break
			}
			if accept {
				apply(target, ch)
			}
		}
	}

	out := make([]PokemonRecord, 0, len(byID))
	for _, r := range byID {
		if r.MyID == 0 {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].MyID < out[j].MyID
	})
	return out, c.Valid()
}

// resolveTarget implements the dispatch table in §4.3.2: given the parsed
// myID and the already-decoded first change, decide which record (if any)
// this entry's changes apply to.
func resolveTarget(byID map[int]*PokemonRecord, nextID *int, myID, firstType int, first change) (target *PokemonRecord, accept bool) {
	switch {
	case myID == 0 && firstType == changeNeedCaptured:
		rec := PokemonRecord{MyID: *nextID}
		*nextID++
		byID[rec.MyID] = &rec
		return &rec, true

	case myID == 0:
		return nil, false

	case byID[myID] != nil:
		return byID[myID], true

	case firstType == changeNeedCaptured:
		rec := PokemonRecord{MyID: myID}
		byID[myID] = &rec
		return &rec, true

	case firstType == changePosChange:
		newPos := first.Position
		for _, r := range byID {
			if r.Position == newPos || r.MyID == newPos {
				delete(byID, r.MyID)
				r.MyID = myID
				byID[myID] = r
				return r, true
			}
		}
		return nil, false

	default:
		return nil, false
	}
}
