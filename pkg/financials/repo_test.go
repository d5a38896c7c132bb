package financials

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aquilesbailo123/Raven-backend/pkg/dates"
	"github.com/aquilesbailo123/Raven-backend/pkg/testhelpers"
)

func TestPostgresFinancialRepository(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresFinancialRepository(pool)
	ctx := context.Background()
	_, startupID := testhelpers.CreateTestStartup(t, pool, "Acme")

	jan := dates.New(2024, time.January, 31)
	feb := dates.New(2024, time.February, 29)

	created, err := repo.Create(ctx, startupID, Period{PeriodDate: &jan, Revenue: decimal.NewFromInt(5000), Costs: decimal.NewFromInt(8000)})
	require.NoError(t, err)
	require.Equal(t, "-3000", created.NetCashFlow.String())

	_, err = repo.Create(ctx, startupID, Period{PeriodDate: &feb, Revenue: decimal.NewFromInt(7000)})
	require.NoError(t, err)

	_, err = repo.Create(ctx, startupID, Period{PeriodDate: &jan})
	require.ErrorIs(t, err, ErrDuplicatePeriod)

	list, err := repo.ListByStartup(ctx, startupID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.True(t, list[0].PeriodDate.Equal(feb))

	n, err := repo.DeleteByStartup(ctx, startupID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}
