package pipeline

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
)

// TxStores are the repositories a round creation writes through.
type TxStores struct {
	Pipeline   PipelineRepository
	Incubators IncubatorStore
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
			Pipeline:   NewPostgresPipelineRepository(tx),
			Incubators: incubators.NewPostgresIncubatorRepository(tx),
		})
	})
}
