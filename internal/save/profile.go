package save

import (
	"strconv"
	"strings"
)

const profileLetters = "abcdefghijklmnopqrstuvwxyz"

// charValue implements the per-character weighting of §4.4 step 1:
// a..i -> 1..9, digits 1..9 -> 1..9, j..z -> 10..26, anything else -> 0
// (this includes the digit '0', which carries no weight).
func charValue(c byte) int {
	switch {
	case c >= 'a' && c <= 'i':
		return int(c-'a') + 1
	case c >= '1' && c <= '9':
		return int(c-'1') + 1
	case c >= 'j' && c <= 'z':
		return int(c-'j') + 10
	default:
		return 0
	}
}

// ProfileID derives the client-validated identity token from a 14-character
// currentSave string and a trainerId (§4.4). ok is false when the inputs
// fall into one of the rejection conditions — the caller must omit
// ProfileID from the load response in that case rather than send a bogus
// value the client will refuse.
func ProfileID(currentSave string, trainerID int) (profileID string, ok bool) {
	sum := 0
	for i := 0; i < len(currentSave); i++ {
		sum += charValue(currentSave[i])
	}
	if sum == 0 || trainerID < 333 || trainerID > 99999 {
		return "", false
	}

	r := int64(trainerID) * int64(sum) * 14
	digits := strconv.FormatInt(r, 10)
	d0 := int(digits[0] - '0')

	var out strings.Builder
	for i := 0; i < len(digits); i++ {
		di := int(digits[i] - '0')
		idx := di + d0
		if idx >= 26 {
			continue // dropped, not wrapped
		}
		out.WriteByte(profileLetters[idx])
	}
	return out.String(), true
}
