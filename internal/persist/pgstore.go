package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/save"
)

// PgStore is the optional Postgres-backed Store, for deployments that
// want the account/roster data queryable rather than sitting in flat
// files. It implements the same contract as FileStore, atomicity
// provided by a single transaction per SaveAccount call rather than
// write-temp-then-rename.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(ctx context.Context, dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) (*PgStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(maxOpenConns)
	poolCfg.MinConns = int32(maxIdleConns)
	poolCfg.MaxConnLifetime = connMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PgStore{pool: pool}, nil
}

func (p *PgStore) Close() error {
	p.pool.Close()
	return nil
}

func (p *PgStore) LoadAccount(ctx context.Context, email string) (*save.Account, map[string]save.Roster, bool, error) {
	var rec accountRecord
	var slotsJSON, inventoryJSON, achievementsJSON, extraInfoJSON []byte

	err := p.pool.QueryRow(ctx,
		`SELECT trainer_id, current_save, password, slots, pokedex, inventory, achievements, extra_info
		 FROM accounts WHERE email = $1`, email,
	).Scan(&rec.TrainerID, &rec.CurrentSave, &rec.Password, &slotsJSON, &rec.Pokedex, &inventoryJSON, &achievementsJSON, &extraInfoJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("load account: %w", err)
	}
	if err := json.Unmarshal(slotsJSON, &rec.Slots); err != nil {
		return nil, nil, false, fmt.Errorf("decode slots: %w", err)
	}
	if err := json.Unmarshal(inventoryJSON, &rec.Inventory); err != nil {
		return nil, nil, false, fmt.Errorf("decode inventory: %w", err)
	}
	if err := json.Unmarshal(achievementsJSON, &rec.Achievements); err != nil {
		return nil, nil, false, fmt.Errorf("decode achievements: %w", err)
	}
	if err := json.Unmarshal(extraInfoJSON, &rec.ExtraInfo); err != nil {
		return nil, nil, false, fmt.Errorf("decode extraInfo: %w", err)
	}

	rosters := make(map[string]save.Roster, len(save.SlotKeys))
	rows, err := p.pool.Query(ctx, `SELECT slot, roster FROM rosters WHERE email = $1`, email)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load rosters: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var slot string
		var rosterJSON []byte
		if err := rows.Scan(&slot, &rosterJSON); err != nil {
			return nil, nil, false, fmt.Errorf("scan roster row: %w", err)
		}
		var roster save.Roster
		if err := json.Unmarshal(rosterJSON, &roster); err != nil {
			return nil, nil, false, fmt.Errorf("decode roster %s: %w", slot, err)
		}
		rosters[slot] = roster
	}
	for _, slot := range save.SlotKeys {
		if _, ok := rosters[slot]; !ok {
			rosters[slot] = save.Roster{}
		}
	}

	return fromRecord(rec), rosters, true, nil
}

func (p *PgStore) SaveAccount(ctx context.Context, email string, acct *save.Account, roster save.Roster, slot string) error {
	slotsJSON, err := json.Marshal(acct.Slots)
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}
	inventoryJSON, err := json.Marshal(acct.Inventory)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	achievementsJSON, err := json.Marshal(acct.Achievements)
	if err != nil {
		return fmt.Errorf("encode achievements: %w", err)
	}
	extraInfoJSON, err := json.Marshal(acct.ExtraInfo)
	if err != nil {
		return fmt.Errorf("encode extraInfo: %w", err)
	}
	rosterJSON, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO accounts (email, trainer_id, current_save, password, slots, pokedex, inventory, achievements, extra_info)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (email) DO UPDATE SET
		   trainer_id = EXCLUDED.trainer_id,
		   current_save = EXCLUDED.current_save,
		   password = EXCLUDED.password,
		   slots = EXCLUDED.slots,
		   pokedex = EXCLUDED.pokedex,
		   inventory = EXCLUDED.inventory,
		   achievements = EXCLUDED.achievements,
		   extra_info = EXCLUDED.extra_info`,
		email, acct.TrainerID, acct.CurrentSave, acct.Password, slotsJSON, acct.Pokedex, inventoryJSON, achievementsJSON, extraInfoJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO rosters (email, slot, roster) VALUES ($1, $2, $3)
		 ON CONFLICT (email, slot) DO UPDATE SET roster = EXCLUDED.roster`,
		email, slot, rosterJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert roster: %w", err)
	}

	return tx.Commit(ctx)
}
