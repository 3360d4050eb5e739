// Package dispatch implements the request dispatcher (C6): parsing
// incoming form parameters, invoking the load or save flow against the
// account state manager, and assembling the response (§6). No error
// escapes Handle — every failure is rendered as a response value (§7).
package dispatch

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/codec"
	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/config"
	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/persist"
	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/save"
)

// Params is the name->value view of an incoming request, supplied by
// the transport (form-encoded or the saveString fallback path, §6).
type Params map[string]string

func (p Params) get(key string) string { return p[key] }

func (p Params) getInt(key string, def int) int {
	v, ok := p[key]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Dispatcher holds the collaborators C6 is wired to: the account state
// manager (C5) and the per-account lock map (§5).
type Dispatcher struct {
	store  persist.Store
	locks  *persist.AccountLocks
	policy config.PolicyConfig
	log    *zap.Logger
}

func New(store persist.Store, locks *persist.AccountLocks, policy config.PolicyConfig, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: store, locks: locks, policy: policy, log: log}
}

// response accumulates ordered key=value pairs, joined with "&" on
// String(). Order is not contractual but kept stable for readability
// and for tests that assert on exact response bodies.
type response struct {
	pairs []string
}

func (r *response) set(key, value string) {
	r.pairs = append(r.pairs, key+"="+value)
}

func (r *response) setInt(key string, value int) {
	r.set(key, strconv.Itoa(value))
}

func (r *response) String() string {
	return strings.Join(r.pairs, "&")
}

// Handle dispatches one request and returns the response body (§6).
// useHex controls whether the caller should hex-encode it on the wire —
// Handle itself always returns plain text; EncodeResponse applies the
// hex transform the transport is configured for.
func (d *Dispatcher) Handle(ctx context.Context, p Params) string {
	switch p.get("Action") {
	case "loadAccount", "createAccount":
		return d.handleLoad(ctx, p)
	case "saveAccount":
		return d.handleSave(ctx, p)
	default:
		var r response
		r.set("Result", "Failure")
		r.set("Reason", "UnknownAction")
		return r.String()
	}
}

func (d *Dispatcher) handleLoad(ctx context.Context, p Params) string {
	email := p.get("Email")
	unlock := d.locks.Lock(email)
	defer unlock()

	var r response

	acct, rosters, found, err := d.store.LoadAccount(ctx, email)
	if err != nil {
		d.log.Error("load account", zap.String("email", email), zap.Error(err))
		r.set("Result", "Failure")
		r.set("Reason", "UnknownAction")
		return r.String()
	}

	if !found {
		shouldCreate := p.get("Action") == "createAccount" || d.policy.AutoCreateAccount
		if !shouldCreate {
			r.set("Result", "Failure")
			r.set("Reason", "NotFound")
			return r.String()
		}
		acct, err = persist.NewAccount()
		if err != nil {
			d.log.Error("create account defaults", zap.Error(err))
			r.set("Result", "Failure")
			r.set("Reason", "UnknownAction")
			return r.String()
		}
		rosters = map[string]save.Roster{}
		for _, slot := range save.SlotKeys {
			rosters[slot] = save.Roster{}
		}
		if err := d.store.SaveAccount(ctx, email, acct, save.Roster{}, save.SlotKeys[0]); err != nil {
			d.log.Error("persist new account", zap.String("email", email), zap.Error(err))
			r.set("Result", "Failure")
			r.set("Reason", "UnknownAction")
			return r.String()
		}
	}

	if d.policy.ValidatePassword && acct.Password != "" && acct.Password != p.get("Pass") {
		r.set("Result", "Failure")
		r.set("Reason", "WrongPass")
		return r.String()
	}

	r.set("Result", "Success")
	r.set("CurrentSave", acct.CurrentSave)
	r.set("newSave", acct.CurrentSave)
	r.setInt("TrainerID", acct.TrainerID)
	if profileID, ok := save.ProfileID(acct.CurrentSave, acct.TrainerID); ok {
		r.set("ProfileID", profileID)
	}
	r.set("pokedex", acct.Pokedex)

	for _, slot := range save.SlotKeys {
		s := acct.Slots[slot]
		r.set("nickname"+slot, s.Nickname)
		r.set("avatar"+slot, s.Avatar)
		r.setInt("advanced"+slot, s.Advanced)
		r.setInt("advanced_a"+slot, s.AdvancedA)
		r.setInt("classic"+slot, s.Classic)
		r.setInt("challenge"+slot, s.Challenge)
		r.setInt("badges"+slot, s.Badges)
		r.setInt("money"+slot, s.Money)
		r.setInt("version"+slot, s.Version)

		roster := rosters[slot]
		r.setInt("PC"+slot, len(roster))
		r.set("p"+slot+"extra", save.EncodeRoster(roster))
		r.set("p"+slot+"extra2", codec.EncodeKV(acct.Inventory))
		r.set("p"+slot+"extra3", codec.EncodeKV(acct.Achievements))
		r.set("p"+slot+"extra4", codec.EncodeKV(acct.ExtraInfo))

		for i, rec := range roster {
			tag := rec.Tag
			if tag == "" {
				tag = "Pokemon" + strconv.Itoa(i+1)
			}
			r.set("p"+slot+"PN"+strconv.Itoa(i+1), tag)
		}
	}

	return r.String()
}

func (d *Dispatcher) handleSave(ctx context.Context, p Params) string {
	email := p.get("Email")
	unlock := d.locks.Lock(email)
	defer unlock()

	slot := p.get("num")
	if slot == "" {
		slot = "1"
	}

	var r response

	acct, rosters, found, err := d.store.LoadAccount(ctx, email)
	if err != nil {
		d.log.Error("load account", zap.String("email", email), zap.Error(err))
		r.set("Result", "Failure")
		r.set("Reason", "UnknownAction")
		return r.String()
	}
	if !found {
		acct, err = persist.NewAccount()
		if err != nil {
			d.log.Error("create account defaults", zap.Error(err))
			r.set("Result", "Failure")
			r.set("Reason", "UnknownAction")
			return r.String()
		}
		rosters = map[string]save.Roster{}
	}

	if d.policy.ValidatePassword && acct.Password != "" && acct.Password != p.get("Pass") {
		r.set("Result", "Failure")
		r.set("Reason", "WrongPass")
		return r.String()
	}

	currentRoster := rosters[slot]
	if p.get("newGame") == "yes" {
		currentRoster = save.Roster{}
	}

	s := acct.Slots[slot]
	s.Nickname = p.get("nickname")
	s.Avatar = p.get("avatar")
	s.Badges = p.getInt("badges", s.Badges)
	s.Money = p.getInt("money", s.Money)
	s.Version = p.getInt("version", s.Version)
	s.Advanced = p.getInt("advanced", s.Advanced)
	s.AdvancedA = p.getInt("advanced_a", s.AdvancedA)
	s.Classic = p.getInt("classic", s.Classic)
	s.Challenge = p.getInt("challenge", s.Challenge)
	if acct.Slots == nil {
		acct.Slots = map[string]save.Slot{}
	}
	acct.Slots[slot] = s

	if pokedex := p.get("pokedex"); pokedex != "" {
		acct.Pokedex = pokedex
	}
	if extra2 := p.get("extra2"); extra2 != "" {
		if m, ok := codec.DecodeKV(extra2); ok {
			acct.Inventory = m
		}
	}
	if extra3 := p.get("extra3"); extra3 != "" {
		if m, ok := codec.DecodeKV(extra3); ok {
			acct.Achievements = m
		}
	}
	if extra4 := p.get("extra4"); extra4 != "" {
		if m, ok := codec.DecodeKV(extra4); ok {
			acct.ExtraInfo = m
		}
	}

	finalRoster := currentRoster
	if extra := p.get("extra"); extra != "" {
		applied, ok := save.ApplyDelta(extra, currentRoster)
		if !ok {
			d.log.Warn("delta decode failed, retaining pre-delta roster",
				zap.String("email", email), zap.String("slot", slot))
		} else {
			finalRoster = applied
		}
	}

	if err := d.store.SaveAccount(ctx, email, acct, finalRoster, slot); err != nil {
		d.log.Error("persist account", zap.String("email", email), zap.Error(err))
		r.set("Result", "Failure")
		r.set("Reason", "UnknownAction")
		return r.String()
	}

	r.set("Result", "Success")
	r.set("newSave", acct.CurrentSave)
	for _, rec := range finalRoster {
		r.setInt("newPokePos_"+strconv.Itoa(rec.Position), rec.MyID)
	}
	return r.String()
}

// EncodeResponse renders body as the wire bytes the transport writes:
// raw UTF-8, or two-lowercase-hex-characters-per-byte when useHex is
// set (§6).
func EncodeResponse(body string, useHex bool) string {
	if !useHex {
		return body
	}
	return hex.EncodeToString([]byte(body))
}
