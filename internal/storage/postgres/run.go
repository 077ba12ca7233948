package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fightsim/internal/sim"
)

// ErrRunNotFound is returned when a simulation run lookup yields no results.
var ErrRunNotFound = errors.New("simulation run not found")

// ErrRunExists is returned when saving a run whose ID is already stored.
var ErrRunExists = errors.New("simulation run already stored")

// RunRepository stores simulation reports and their standings.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Save stores rep and its standings in one transaction. Standings are
// stored with their 1-based rank in report order. The seed is stored as the
// signed reinterpretation of its bits.
//
// Postcondition: Returns nil, ErrRunExists, or a wrapped database error.
func (r *RunRepository) Save(ctx context.Context, rep *sim.Report) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sim_runs (id, seed, repeats, matches, started_at, finished_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			rep.RunID, int64(rep.Seed), rep.Repeats, rep.Matches, rep.Started, rep.Finished,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return ErrRunExists
			}
			return fmt.Errorf("inserting run: %w", err)
		}

		rows := make([][]any, len(rep.Standings))
		for i, s := range rep.Standings {
			rows[i] = []any{rep.RunID, i + 1, s.Name, s.Wins, s.Losses, s.Draws}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"sim_standings"},
			[]string{"run_id", "rank", "fighter_name", "wins", "losses", "draws"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copying standings: %w", err)
		}
		return nil
	})
}

// Get retrieves a run and its standings in rank order.
//
// Postcondition: Returns the Report or ErrRunNotFound.
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (*sim.Report, error) {
	rep := &sim.Report{RunID: id}
	var seed int64
	err := r.db.QueryRow(ctx, `
		SELECT seed, repeats, matches, started_at, finished_at
		FROM sim_runs WHERE id = $1`,
		id,
	).Scan(&seed, &rep.Repeats, &rep.Matches, &rep.Started, &rep.Finished)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	rep.Seed = uint64(seed)

	rows, err := r.db.Query(ctx, `
		SELECT fighter_name, wins, losses, draws
		FROM sim_standings WHERE run_id = $1 ORDER BY rank ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	rep.Standings, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (sim.Standing, error) {
		var s sim.Standing
		err := row.Scan(&s.Name, &s.Wins, &s.Losses, &s.Draws)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning standings: %w", err)
	}
	return rep, nil
}

// History returns the standings of one fighter across stored runs, newest first.
func (r *RunRepository) History(ctx context.Context, fighterName string, limit int) ([]sim.Standing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.fighter_name, s.wins, s.losses, s.draws
		FROM sim_standings s JOIN sim_runs r ON r.id = s.run_id
		WHERE s.fighter_name = $1
		ORDER BY r.finished_at DESC
		LIMIT $2`,
		fighterName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	standings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (sim.Standing, error) {
		var s sim.Standing
		err := row.Scan(&s.Name, &s.Wins, &s.Losses, &s.Draws)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning history: %w", err)
	}
	return standings, nil
}
