package campaigns

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

// StoreTx runs fn with a campaign repository bound to a single transaction,
// so a nested write lands completely or not at all.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(CampaignRepository) error) error
}

type postgresStoreTx struct {
	pool db.TxBeginner
}

func NewPostgresStoreTx(pool db.TxBeginner) StoreTx {
	return &postgresStoreTx{pool: pool}
}

func (t *postgresStoreTx) RunInTx(ctx context.Context, fn func(CampaignRepository) error) error {
	return db.WithTx(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(NewPostgresCampaignRepository(tx))
	})
}
