package pipeline

import (
	"context"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

type PipelineRepository interface {
	ListEntries(ctx context.Context, startupID int64) ([]Entry, error)
	CreateEntry(ctx context.Context, startupID int64, roundID *int64, in EntryInput) (Entry, error)
	DeleteEntries(ctx context.Context, startupID int64) (int64, error)
	ListRounds(ctx context.Context, startupID int64) ([]Round, error)
	CreateRound(ctx context.Context, startupID int64, in RoundInput) (Round, error)
}

type postgresPipelineRepository struct {
	db db.DBTX
}

func NewPostgresPipelineRepository(conn db.DBTX) PipelineRepository {
	return &postgresPipelineRepository{db: conn}
}

const entryColumns = `id, startup_id, round_id, investor_name, investor_email, stage, ticket_size, notes, next_action_date, created_at`

const roundColumns = `id, startup_id, name, target_amount, raised_amount, is_open, start_date, end_date, notes, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.StartupID, &e.RoundID, &e.InvestorName, &e.InvestorEmail,
		&e.Stage, &e.TicketSize, &e.Notes, &e.NextActionDate, &e.CreatedAt)
	return e, err
}

func scanRound(row scanner) (Round, error) {
	var r Round
	err := row.Scan(&r.ID, &r.StartupID, &r.Name, &r.TargetAmount, &r.RaisedAmount, &r.IsOpen,
		&r.StartDate, &r.EndDate, &r.Notes, &r.CreatedAt)
	return r, err
}

func (r *postgresPipelineRepository) ListEntries(ctx context.Context, startupID int64) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM investor_pipeline
		WHERE startup_id = $1 ORDER BY created_at DESC, id DESC`, startupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *postgresPipelineRepository) CreateEntry(ctx context.Context, startupID int64, roundID *int64, in EntryInput) (Entry, error) {
	query := `INSERT INTO investor_pipeline (startup_id, round_id, investor_name, investor_email, stage, ticket_size, notes, next_action_date)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING ` + entryColumns

	return scanEntry(r.db.QueryRow(ctx, query, startupID, roundID, in.InvestorName, in.InvestorEmail,
		in.Stage, in.TicketSize, in.Notes, in.NextActionDate))
}

func (r *postgresPipelineRepository) DeleteEntries(ctx context.Context, startupID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM investor_pipeline WHERE startup_id = $1`, startupID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// ListRounds returns the startup's rounds, newest first, each with the
// pipeline entries linked to it.
func (r *postgresPipelineRepository) ListRounds(ctx context.Context, startupID int64) ([]Round, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roundColumns+` FROM rounds
		WHERE startup_id = $1 ORDER BY created_at DESC, id DESC`, startupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Round{}
	index := make(map[int64]int)
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		round.Investors = []Entry{}
		index[round.ID] = len(list)
		list = append(list, round)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	entries, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM investor_pipeline
		WHERE startup_id = $1 AND round_id IS NOT NULL ORDER BY id`, startupID)
	if err != nil {
		return nil, err
	}
	defer entries.Close()

	for entries.Next() {
		e, err := scanEntry(entries)
		if err != nil {
			return nil, err
		}
		if i, ok := index[*e.RoundID]; ok {
			list[i].Investors = append(list[i].Investors, e)
		}
	}
	return list, entries.Err()
}

func (r *postgresPipelineRepository) CreateRound(ctx context.Context, startupID int64, in RoundInput) (Round, error) {
	query := `INSERT INTO rounds (startup_id, name, target_amount, raised_amount, is_open, start_date, end_date, notes)
              VALUES ($1, $2, $3, COALESCE($4, 0), COALESCE($5, true), $6, $7, $8)
              RETURNING ` + roundColumns

	round, err := scanRound(r.db.QueryRow(ctx, query, startupID, in.Name, in.TargetAmount, in.RaisedAmount,
		in.IsOpen, in.StartDate, in.EndDate, in.Notes))
	if err != nil {
		return Round{}, err
	}
	round.Investors = []Entry{}
	return round, nil
}
