package onboarding

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
	"github.com/aquilesbailo123/Raven-backend/pkg/financials"
	"github.com/aquilesbailo123/Raven-backend/pkg/pipeline"
	"github.com/aquilesbailo123/Raven-backend/pkg/readiness"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
)

// TxStores are the repositories the wizard replaces data through.
type TxStores struct {
	Startups   StartupWriter
	Evidences  EvidenceWriter
	Financials FinancialWriter
	Investors  InvestorWriter
}

type StartupWriter interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (startups.Startup, bool, error)
	MarkOnboarded(ctx context.Context, id int64, companyName, industry string) (startups.Startup, error)
}

type EvidenceWriter interface {
	DeleteEvidences(ctx context.Context, startupID int64) (int64, error)
	CreateEvidence(ctx context.Context, startupID int64, in readiness.NewEvidence) (readiness.Evidence, error)
}

type FinancialWriter interface {
	DeleteByStartup(ctx context.Context, startupID int64) (int64, error)
	Create(ctx context.Context, startupID int64, p financials.Period) (financials.FinancialInput, error)
}

type InvestorWriter interface {
	DeleteEntries(ctx context.Context, startupID int64) (int64, error)
	CreateEntry(ctx context.Context, startupID int64, roundID *int64, in pipeline.EntryInput) (pipeline.Entry, error)
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
			Startups:   startups.NewPostgresStartupRepository(tx),
			Evidences:  readiness.NewPostgresReadinessRepository(tx),
			Financials: financials.NewPostgresFinancialRepository(tx),
			Investors:  pipeline.NewPostgresPipelineRepository(tx),
		})
	})
}
