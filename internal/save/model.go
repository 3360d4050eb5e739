// Package save implements the account/roster data model (§3), the delta
// application engine (C3), and the profile-ID recurrence (C4) that the PTD
// save protocol is built from. Pure functions over their inputs — no I/O.
package save

import "github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/codec"

// Rarity values, per §3/§4.3.1.
const (
	RarityNormal = 0
	RarityShiny  = 1
	RarityShadow = 2
)

// PokemonRecord is one entry in a roster (§3).
type PokemonRecord struct {
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
	Rarity       int
	Tag          string
}

// Roster is an ordered sequence of PokemonRecord, as persisted for one slot.
type Roster = []PokemonRecord

// Slot holds the scalar progression fields for one of an account's three
// save slots.
type Slot struct {
	Nickname   string
	Avatar     string
	Badges     int
	Money      int
	Version    int
	Advanced   int
	AdvancedA  int
	Classic    int
	Challenge  int
}

// Account is the per-email record (§3). Slots is always keyed "1", "2", "3".
type Account struct {
	TrainerID    int
	CurrentSave  string
	Password     string
	Slots        map[string]Slot
	Pokedex      string
	Inventory    map[int]int
	Achievements map[int]int
	ExtraInfo    map[int]int
}

// SlotKeys lists the three valid slot identifiers in order.
var SlotKeys = [3]string{"1", "2", "3"}

// NewPokedex returns the initial 151-digit all-unseen pokedex string.
func NewPokedex() string {
	b := make([]byte, 151)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

// DefaultSlot returns the scalar defaults a freshly created slot starts with.
func DefaultSlot() Slot {
	return Slot{Nickname: "Satoshi", Avatar: "none", Money: 50}
}

// ProjectRarity renders a normalized rarity back into the obfuscated
// extraRarity projection the wire format expects on re-encode (§4.2): the
// raw value sent by the client is never round-tripped, only regenerated.
func ProjectRarity(rarity int) int {
	switch rarity {
	case RarityShiny:
		return 1
	case RarityShadow:
		return 180
	default:
		return 0
	}
}

// shinyExtraRarities and shadowExtraRarities are the sets of obfuscated
// values the client is known to send on capture (§4.3.1).
var shinyExtraRarities = map[int]bool{
	1: true, 2: true, 3: true, 4: true, 5: true, 6: true,
	151: true, 153: true, 168: true, 182: true, 854: true,
}

var shadowExtraRarities = map[int]bool{
	180: true, 555: true, 855: true,
}

// DeriveRarity normalizes a client-sent extraRarity value into a Rarity,
// per the ordered rules in §4.3.1.
func DeriveRarity(extraRarity, species int) int {
	switch {
	case shinyExtraRarities[extraRarity]:
		return RarityShiny
	case shadowExtraRarities[extraRarity]:
		return RarityShadow
	case extraRarity == species:
		return RarityShiny
	default:
		return RarityNormal
	}
}

// EncodeRoster renders a roster as a snapshot blob (§4.2), projecting each
// record's Rarity back into the wire's extraRarity field.
func EncodeRoster(roster []PokemonRecord) string {
	elems := make([]codec.SnapshotElement, len(roster))
	for i, p := range roster {
		elems[i] = codec.SnapshotElement{
			Species:      p.Species,
			Experience:   p.Experience,
			Level:        p.Level,
			Move1:        p.Move1,
			Move2:        p.Move2,
			Move3:        p.Move3,
			Move4:        p.Move4,
			MoveSelected: p.MoveSelected,
			TargetType:   p.TargetType,
			MyID:         p.MyID,
			Position:     p.Position,
			ExtraRarity:  ProjectRarity(p.Rarity),
			Tag:          p.Tag,
		}
	}
	return codec.EncodeSnapshot(elems)
}

// DecodeRoster parses a snapshot blob into a roster, deriving each record's
// Rarity from its wire extraRarity value the same way a capture would.
func DecodeRoster(s string) (roster []PokemonRecord, ok bool) {
	elems, ok := codec.DecodeSnapshot(s)
	roster = make([]PokemonRecord, len(elems))
	for i, e := range elems {
		roster[i] = PokemonRecord{
			Species:      e.Species,
			Experience:   e.Experience,
			Level:        e.Level,
			Move1:        e.Move1,
			Move2:        e.Move2,
			Move3:        e.Move3,
			Move4:        e.Move4,
			MoveSelected: e.MoveSelected,
			TargetType:   e.TargetType,
			MyID:         e.MyID,
			Position:     e.Position,
			Rarity:       DeriveRarity(e.ExtraRarity, e.Species),
			Tag:          e.Tag,
		}
	}
	return roster, ok
}
