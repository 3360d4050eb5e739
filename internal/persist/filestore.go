package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/save"
)

// FileStore is the file-based Store (§6 "Persisted state layout"): one
// record file per account, one roster file per (account, slot), and a
// raw save dump per account kept for forensics.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Close() error { return nil }

type accountRecord struct {
	TrainerID    int                 `json:"trainerId"`
	CurrentSave  string              `json:"currentSave"`
	Password     string              `json:"password"`
	Slots        map[string]save.Slot `json:"slots"`
	Pokedex      string              `json:"pokedex"`
	Inventory    map[int]int         `json:"inventory"`
	Achievements map[int]int         `json:"achievements"`
	ExtraInfo    map[int]int         `json:"extraInfo"`
}

func toRecord(a *save.Account) accountRecord {
	return accountRecord{
		TrainerID:    a.TrainerID,
		CurrentSave:  a.CurrentSave,
		Password:     a.Password,
		Slots:        a.Slots,
		Pokedex:      a.Pokedex,
		Inventory:    a.Inventory,
		Achievements: a.Achievements,
		ExtraInfo:    a.ExtraInfo,
	}
}

func fromRecord(r accountRecord) *save.Account {
	return &save.Account{
		TrainerID:    r.TrainerID,
		CurrentSave:  r.CurrentSave,
		Password:     r.Password,
		Slots:        r.Slots,
		Pokedex:      r.Pokedex,
		Inventory:    r.Inventory,
		Achievements: r.Achievements,
		ExtraInfo:    r.ExtraInfo,
	}
}

// accountKey turns an email into a filesystem-safe directory name.
func accountKey(email string) string {
	key := strings.ToLower(email)
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (f *FileStore) accountDir(email string) string {
	return filepath.Join(f.dir, accountKey(email))
}

func (f *FileStore) recordPath(email string) string {
	return filepath.Join(f.accountDir(email), "account.json")
}

func (f *FileStore) rosterPath(email, slot string) string {
	return filepath.Join(f.accountDir(email), "roster_"+slot+".json")
}

func (f *FileStore) rawDumpPath(email string) string {
	return filepath.Join(f.accountDir(email), "raw_save.json")
}

func (f *FileStore) LoadAccount(ctx context.Context, email string) (*save.Account, map[string]save.Roster, bool, error) {
	data, err := os.ReadFile(f.recordPath(email))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("read account record: %w", err)
	}
	var rec accountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, false, fmt.Errorf("parse account record: %w", err)
	}

	rosters := make(map[string]save.Roster, len(save.SlotKeys))
	for _, slot := range save.SlotKeys {
		roster, err := f.readRoster(email, slot)
		if err != nil {
			return nil, nil, false, err
		}
		rosters[slot] = roster
	}
	return fromRecord(rec), rosters, true, nil
}

func (f *FileStore) readRoster(email, slot string) (save.Roster, error) {
	data, err := os.ReadFile(f.rosterPath(email, slot))
	if errors.Is(err, os.ErrNotExist) {
		return save.Roster{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roster %s/%s: %w", email, slot, err)
	}
	var roster save.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster %s/%s: %w", email, slot, err)
	}
	return roster, nil
}

func (f *FileStore) SaveAccount(ctx context.Context, email string, acct *save.Account, roster save.Roster, slot string) error {
	if err := os.MkdirAll(f.accountDir(email), 0o755); err != nil {
		return fmt.Errorf("create account dir: %w", err)
	}
	recData, err := json.MarshalIndent(toRecord(acct), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal account record: %w", err)
	}
	if err := writeAtomic(f.recordPath(email), recData); err != nil {
		return fmt.Errorf("write account record: %w", err)
	}

	rosterData, err := json.MarshalIndent(roster, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}
	if err := writeAtomic(f.rosterPath(email, slot), rosterData); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}

	// Forensic raw dump — best-effort, not load-bearing for correctness.
	dump, err := json.MarshalIndent(map[string]any{
		"account": toRecord(acct),
		"slot":    slot,
		"roster":  roster,
	}, "", "  ")
	if err == nil {
		_ = writeAtomic(f.rawDumpPath(email), dump)
	}
	return nil
}

// writeAtomic writes data to a temp file in the same directory as path,
// then renames it into place, so a crash mid-write never leaves a
// half-written file at path (§5).
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
