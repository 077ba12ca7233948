package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// ErrFighterNotFound is returned when a fighter lookup yields no results.
var ErrFighterNotFound = errors.New("fighter not found")

// FighterRepository stores fighters keyed by name.
type FighterRepository struct {
	db *pgxpool.Pool
}

// NewFighterRepository creates a FighterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewFighterRepository(db *pgxpool.Pool) *FighterRepository {
	return &FighterRepository{db: db}
}

const upsertFighterSQL = `
	INSERT INTO fighters (name, health, attack, defense, speed, accuracy, dodge, conviction)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	ON CONFLICT (name) DO UPDATE SET
		health = EXCLUDED.health, attack = EXCLUDED.attack, defense = EXCLUDED.defense,
		speed = EXCLUDED.speed, accuracy = EXCLUDED.accuracy, dodge = EXCLUDED.dodge,
		conviction = EXCLUDED.conviction, updated_at = NOW()`

func upsertArgs(f *fighter.Fighter) []any {
	p := f.AllPoints()
	return []any{
		f.Name(),
		p[stats.Health], p[stats.Attack], p[stats.Defense], p[stats.Speed],
		p[stats.Accuracy], p[stats.Dodge], p[stats.Conviction],
	}
}

// Upsert inserts f, or replaces the stored points of the fighter with the same name.
//
// Precondition: f must be non-nil and already validated.
func (r *FighterRepository) Upsert(ctx context.Context, f *fighter.Fighter) error {
	if _, err := r.db.Exec(ctx, upsertFighterSQL, upsertArgs(f)...); err != nil {
		return fmt.Errorf("upserting fighter %q: %w", f.Name(), err)
	}
	return nil
}

// UpsertAll stores every fighter in one transaction.
//
// Postcondition: either every fighter is stored or none is.
func (r *FighterRepository) UpsertAll(ctx context.Context, fighters []*fighter.Fighter) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, f := range fighters {
			batch.Queue(upsertFighterSQL, upsertArgs(f)...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upserting %d fighters: %w", len(fighters), err)
		}
		return nil
	})
}

func scanFighter(row pgx.Row) (*fighter.Fighter, error) {
	var (
		name string
		p    stats.Points
	)
	if err := row.Scan(
		&name,
		&p[stats.Health], &p[stats.Attack], &p[stats.Defense], &p[stats.Speed],
		&p[stats.Accuracy], &p[stats.Dodge], &p[stats.Conviction],
	); err != nil {
		return nil, err
	}
	return fighter.Unchecked(name, p), nil
}

// Get retrieves a fighter by name. The point-buy is not re-checked; callers
// loading under different rules validate with fighter.New.
//
// Postcondition: Returns the Fighter or ErrFighterNotFound.
func (r *FighterRepository) Get(ctx context.Context, name string) (*fighter.Fighter, error) {
	f, err := scanFighter(r.db.QueryRow(ctx, `
		SELECT name, health, attack, defense, speed, accuracy, dodge, conviction
		FROM fighters WHERE name = $1`,
		name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFighterNotFound
		}
		return nil, fmt.Errorf("querying fighter: %w", err)
	}
	return f, nil
}

// List returns every stored fighter ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *FighterRepository) List(ctx context.Context) ([]*fighter.Fighter, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, health, attack, defense, speed, accuracy, dodge, conviction
		FROM fighters ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing fighters: %w", err)
	}
	defer rows.Close()

	fighters := make([]*fighter.Fighter, 0)
	for rows.Next() {
		f, err := scanFighter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fighter row: %w", err)
		}
		fighters = append(fighters, f)
	}
	return fighters, rows.Err()
}

// Delete removes the fighter with the given name.
//
// Postcondition: Returns nil on success, ErrFighterNotFound if no row was deleted.
func (r *FighterRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fighters WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting fighter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFighterNotFound
	}
	return nil
}
