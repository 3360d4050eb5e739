package save

import (
	"testing"

	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/codec"
)

func captureChange(species, exp, level, m1, m2, m3, m4, moveSel, target, pos, extraRarity int, tag string) string {
	payload := codec.EncodeSingle(species) + codec.EncodeDouble(exp) + codec.EncodeSingle(level) +
		codec.EncodeSingle(m1) + codec.EncodeSingle(m2) + codec.EncodeSingle(m3) + codec.EncodeSingle(m4) +
		codec.EncodeSingle(moveSel) + codec.EncodeSingle(target) + codec.EncodeSingle(pos) +
		codec.EncodeSingle(extraRarity) + codec.EncodeString(tag)
	return codec.EncodeSingle(changeNeedCaptured) + payload
}

func tradeChange(species, exp, level, m1, m2, m3, m4, moveSel, target, pos int) string {
	payload := codec.EncodeSingle(species) + codec.EncodeDouble(exp) + codec.EncodeSingle(level) +
		codec.EncodeSingle(m1) + codec.EncodeSingle(m2) + codec.EncodeSingle(m3) + codec.EncodeSingle(m4) +
		codec.EncodeSingle(moveSel) + codec.EncodeSingle(target) + codec.EncodeSingle(pos)
	return codec.EncodeSingle(changeNeedTrade) + payload
}

func levelChange(level int) string {
	return codec.EncodeSingle(changeNeedLevel) + codec.EncodeSingle(level)
}

func evolveChange(species int) string {
	return codec.EncodeSingle(changeNeedEvolve) + codec.EncodeSingle(species)
}

func posChange(pos int) string {
	return codec.EncodeSingle(changePosChange) + codec.EncodeSingle(pos)
}

// entry builds one change-record entry: change_count, myID, then the changes.
func entry(myID int, changes ...string) string {
	s := codec.EncodeSingle(len(changes)) + codec.EncodeDouble(myID)
	for _, ch := range changes {
		s += ch
	}
	return s
}

func deltaStream(totalCount int, entries ...string) string {
	body := codec.EncodeSingle(totalCount)
	for _, e := range entries {
		body += e
	}
	return codec.EncodeEnvelope(body)
}

func TestDeltaFirstCaptureAllocatesMyIDOne(t *testing.T) {
	stream := deltaStream(1, entry(0, captureChange(1, 0, 5, 33, 0, 0, 0, 1, 1, 1, 0, "Bulba")))
	roster, ok := ApplyDelta(stream, nil)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(roster) != 1 {
		t.Fatalf("got %d records, want 1", len(roster))
	}
	r := roster[0]
	if r.MyID != 1 {
		t.Fatalf("MyID = %d, want 1", r.MyID)
	}
	if r.Species != 1 || r.Level != 5 || r.Tag != "Bulba" || r.Rarity != RarityNormal {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestDeltaEvolution(t *testing.T) {
	roster := []PokemonRecord{{Species: 1, MyID: 1, Level: 5, Position: 1}}
	stream := deltaStream(1, entry(1, evolveChange(2)))
	got, ok := ApplyDelta(stream, roster)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(got) != 1 || got[0].Species != 2 || got[0].Level != 5 {
		t.Fatalf("unexpected roster: %+v", got)
	}
}

func TestDeltaShadowCaptureEncoding(t *testing.T) {
	stream := deltaStream(1, entry(0, captureChange(249, 0, 1, 0, 0, 0, 0, 1, 1, 1, 180, "")))
	roster, ok := ApplyDelta(stream, nil)
	if !ok || len(roster) != 1 {
		t.Fatalf("unexpected result: roster=%+v ok=%v", roster, ok)
	}
	if roster[0].Rarity != RarityShadow {
		t.Fatalf("Rarity = %d, want shadow", roster[0].Rarity)
	}
	enc := EncodeRoster(roster)
	decoded, ok := DecodeRoster(enc)
	if !ok || len(decoded) != 1 {
		t.Fatalf("re-decode failed: %+v ok=%v", decoded, ok)
	}
	elems, _ := codec.DecodeSnapshot(enc)
	if elems[0].ExtraRarity != 180 {
		t.Fatalf("re-encoded ExtraRarity = %d, want 180", elems[0].ExtraRarity)
	}
}

func TestDeltaInvalidEntrySkippedThenValidCaptureApplies(t *testing.T) {
	invalid := entry(0, levelChange(50))
	valid := entry(0, captureChange(1, 0, 5, 0, 0, 0, 0, 1, 1, 1, 0, "x"))
	stream := deltaStream(1, invalid, valid)
	roster, ok := ApplyDelta(stream, nil)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(roster) != 1 {
		t.Fatalf("got %d records, want 1 (invalid entry must be skipped)", len(roster))
	}
	if roster[0].MyID != 1 {
		t.Fatalf("MyID = %d, want 1 (allocation must not be consumed by the skipped entry)", roster[0].MyID)
	}
}

func TestDeltaNoopOnUnknownMyIDNonCapture(t *testing.T) {
	stream := deltaStream(1, entry(7, levelChange(50)))
	roster, ok := ApplyDelta(stream, nil)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(roster) != 0 {
		t.Fatalf("expected no-op, got %+v", roster)
	}
}

func TestDeltaIdempotenceOnEmptyRosterCaptures(t *testing.T) {
	stream := deltaStream(1, entry(0, captureChange(1, 0, 5, 0, 0, 0, 0, 1, 1, 1, 0, "a")))
	first, ok := ApplyDelta(stream, nil)
	if !ok || len(first) != 1 {
		t.Fatalf("first application: %+v ok=%v", first, ok)
	}
	second, ok := ApplyDelta(stream, first)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(second) != 2 {
		t.Fatalf("got %d records after second application, want 2", len(second))
	}
	ids := map[int]bool{}
	for _, r := range second {
		ids[r.MyID] = true
	}
	if len(ids) != 2 {
		t.Fatalf("expected two distinct myIDs, got %+v", second)
	}
}

func TestDeltaPosChangeRenamesByPosition(t *testing.T) {
	roster := []PokemonRecord{{Species: 1, MyID: 3, Position: 2, Level: 1}}
	stream := deltaStream(1, entry(9, posChange(2)))
	got, ok := ApplyDelta(stream, roster)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].MyID != 9 {
		t.Fatalf("MyID = %d, want 9 (rekeyed)", got[0].MyID)
	}
	if got[0].Position != 2 {
		t.Fatalf("Position = %d, want 2", got[0].Position)
	}
}

func TestDeltaPosChangeDropsWhenNoMatch(t *testing.T) {
	roster := []PokemonRecord{{Species: 1, MyID: 3, Position: 2, Level: 1}}
	stream := deltaStream(1, entry(9, posChange(99)))
	got, ok := ApplyDelta(stream, roster)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(got) != 1 || got[0].MyID != 3 {
		t.Fatalf("expected original record untouched, got %+v", got)
	}
}

func TestDeltaTradeDoesNotTouchRarityOrTag(t *testing.T) {
	roster := []PokemonRecord{{Species: 1, MyID: 1, Level: 5, Rarity: RarityShiny, Tag: "keep"}}
	stream := deltaStream(1, entry(1, tradeChange(2, 100, 10, 1, 2, 3, 4, 1, 1, 5)))
	got, ok := ApplyDelta(stream, roster)
	if !ok || len(got) != 1 {
		t.Fatalf("unexpected result: %+v ok=%v", got, ok)
	}
	if got[0].Species != 2 || got[0].Level != 10 || got[0].Position != 5 {
		t.Fatalf("stat fields not overwritten: %+v", got[0])
	}
	if got[0].Rarity != RarityShiny || got[0].Tag != "keep" {
		t.Fatalf("trade must not touch rarity/tag: %+v", got[0])
	}
}

func TestDeltaZeroChangeCountEntryIsSkippedCleanly(t *testing.T) {
	empty := codec.EncodeSingle(0)
	valid := entry(0, captureChange(1, 0, 5, 0, 0, 0, 0, 1, 1, 1, 0, "a"))
	stream := deltaStream(1, empty, valid)
	roster, ok := ApplyDelta(stream, nil)
	if !ok || len(roster) != 1 {
		t.Fatalf("unexpected result: %+v ok=%v", roster, ok)
	}
}

func TestDeltaShortStringIsValidEmptyDelta(t *testing.T) {
	roster := []PokemonRecord{{Species: 1, MyID: 1, Position: 1}}
	got, ok := ApplyDelta("ym", roster)
	if !ok {
		t.Fatal("expected a short/empty extra string to be a valid no-op delta")
	}
	if len(got) != 1 || got[0].MyID != 1 {
		t.Fatalf("expected roster unchanged, got %+v", got)
	}
}

func TestDeltaTruncatedStreamReturnsFalseAndPartialRoster(t *testing.T) {
	full := entry(0, captureChange(1, 0, 5, 0, 0, 0, 0, 1, 1, 1, 0, "a"))
	truncated := full[:len(full)-3]
	stream := deltaStream(1, truncated)
	_, ok := ApplyDelta(stream, nil)
	if ok {
		t.Fatal("expected ok=false for a truncated mid-entry stream")
	}
}

func TestDeltaSortedByPositionThenMyID(t *testing.T) {
	roster := []PokemonRecord{
		{Species: 1, MyID: 5, Position: 3},
		{Species: 2, MyID: 2, Position: 1},
		{Species: 3, MyID: 1, Position: 1},
	}
	got, ok := ApplyDelta("ym", roster)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	if got[0].MyID != 1 || got[1].MyID != 2 || got[2].MyID != 5 {
		t.Fatalf("wrong sort order: %+v", got)
	}
}
