// Package persist implements the account state manager (C5): load/store
// of the account record and its three rosters, addressed by email, with
// create-on-first-contact defaults and atomic persistence. Two backends
// share the Store interface — a file-based one (the spec's "Persisted
// state layout", §6) and an optional Postgres-backed one.
package persist

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/save"
)

// Store is the account state manager's contract (C5). Implementations
// must make SaveAccount atomic per (email, slot): a crash mid-write must
// never leave a half-written record or roster on disk.
type Store interface {
	// LoadAccount returns the account record and its three rosters keyed
	// by save.SlotKeys. found is false if no account exists for email.
	LoadAccount(ctx context.Context, email string) (acct *save.Account, rosters map[string]save.Roster, found bool, err error)

	// SaveAccount atomically replaces the account record and the named
	// slot's roster.
	SaveAccount(ctx context.Context, email string, acct *save.Account, roster save.Roster, slot string) error

	Close() error
}

const saveTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewAccount builds the defaults a freshly created account starts with
// (§4.5): a random trainerId in [1000, 99999], a random 14-character
// currentSave, three empty default slots, an unseen pokedex, and empty
// KV maps.
func NewAccount() (*save.Account, error) {
	trainerID, err := randInt(1000, 99999)
	if err != nil {
		return nil, err
	}
	token, err := randomSaveToken(14)
	if err != nil {
		return nil, err
	}
	slots := make(map[string]save.Slot, len(save.SlotKeys))
	for _, k := range save.SlotKeys {
		slots[k] = save.DefaultSlot()
	}
	return &save.Account{
		TrainerID:    trainerID,
		CurrentSave:  token,
		Slots:        slots,
		Pokedex:      save.NewPokedex(),
		Inventory:    map[int]int{},
		Achievements: map[int]int{},
		ExtraInfo:    map[int]int{},
	}, nil
}

func randInt(lo, hi int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return 0, err
	}
	return lo + int(n.Int64()), nil
}

func randomSaveToken(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(saveTokenAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = saveTokenAlphabet[idx.Int64()]
	}
	return string(b), nil
}
