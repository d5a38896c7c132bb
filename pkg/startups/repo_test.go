package startups

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
	"github.com/aquilesbailo123/Raven-backend/pkg/testhelpers"
)

func TestPostgresStartupRepository_GetOrCreate(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresStartupRepository(pool)
	ctx := context.Background()
	userID := testhelpers.CreateTestUser(t, pool, "startup")

	_, err := repo.GetStartupByUserID(ctx, userID)
	require.ErrorIs(t, err, ErrStartupNotFound)

	first, created, err := repo.GetOrCreateByUserID(ctx, userID)
	require.NoError(t, err)
	require.True(t, created)
	require.True(t, first.IsMockData)
	require.Equal(t, 1, first.TRLLevel)
	require.Nil(t, first.CompanyName)

	second, created, err := repo.GetOrCreateByUserID(ctx, userID)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
}

func TestPostgresStartupRepository_ProfileAndLevels(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresStartupRepository(pool)
	ctx := context.Background()
	_, id := testhelpers.CreateTestStartup(t, pool, "Old Name")

	logo := "https://cdn.raven.test/a.png"
	st, err := repo.UpdateProfile(ctx, id, "New Name", "fintech", &logo)
	require.NoError(t, err)
	require.Equal(t, "New Name", st.Name())
	require.Equal(t, logo, *st.LogoURL)

	st, err = repo.UpdateProfile(ctx, id, "New Name", "fintech", nil)
	require.NoError(t, err)
	require.Equal(t, logo, *st.LogoURL)

	st, err = repo.MarkOnboarded(ctx, id, "Final", "saas")
	require.NoError(t, err)
	require.True(t, st.OnboardingCompleted)
	require.False(t, st.IsMockData)

	require.NoError(t, repo.UpdateLevels(ctx, id, 4, 2))
	st, err = repo.GetStartupByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 4, st.TRLLevel)
	require.Equal(t, 2, st.CRLLevel)

	require.ErrorIs(t, repo.UpdateLevels(ctx, id+1000, 1, 1), ErrStartupNotFound)

	require.NoError(t, db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return NewPostgresStartupRepository(tx).LockForUpdate(ctx, id)
	}))
	require.ErrorIs(t, repo.LockForUpdate(ctx, id+1000), ErrStartupNotFound)
}

func TestPostgresStartupRepository_ListByIncubator(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresStartupRepository(pool)
	ctx := context.Background()
	_, a := testhelpers.CreateTestStartup(t, pool, "Alpha")
	_, b := testhelpers.CreateTestStartup(t, pool, "Beta")
	testhelpers.CreateTestStartup(t, pool, "Unlinked")
	_, inc := testhelpers.CreateTestIncubator(t, pool, "TechStars")
	testhelpers.Associate(t, pool, a, inc)
	testhelpers.Associate(t, pool, b, inc)

	list, err := repo.ListByIncubator(ctx, inc)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Alpha", list[0].Name())
	require.Equal(t, "Beta", list[1].Name())
}
