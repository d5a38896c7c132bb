package readiness

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
)

// LevelStore is the part of the startup store a level recompute writes.
type LevelStore interface {
	LockForUpdate(ctx context.Context, id int64) error
	UpdateLevels(ctx context.Context, id int64, trl, crl int) error
}

// TxStores are the repositories a review writes through.
type TxStores struct {
	Readiness ReadinessRepository
	Startups  LevelStore
}

// StoreTx runs fn with stores bound to a single transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(TxStores) error) error
}

type postgresStoreTx struct {
	pool db.TxBeginner
}

func NewPostgresStoreTx(pool db.TxBeginner) StoreTx {
	return &postgresStoreTx{pool: pool}
}

func (t *postgresStoreTx) RunInTx(ctx context.Context, fn func(TxStores) error) error {
	return db.WithTx(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(TxStores{
			Readiness: NewPostgresReadinessRepository(tx),
			Startups:  startups.NewPostgresStartupRepository(tx),
		})
	})
}
