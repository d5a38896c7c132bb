package incubators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aquilesbailo123/Raven-backend/pkg/testhelpers"
)

func TestPostgresIncubatorRepository_GetOrCreateAndProfile(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresIncubatorRepository(pool)
	ctx := context.Background()
	userID := testhelpers.CreateTestUser(t, pool, "incubator")

	inc, created, err := repo.GetOrCreateByUserID(ctx, userID)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "", inc.Name)
	require.False(t, inc.ProfileComplete)

	again, created, err := repo.GetOrCreateByUserID(ctx, userID)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, inc.ID, again.ID)

	desc := "Accelerator"
	inc, err = repo.UpdateProfile(ctx, inc.ID, ProfileInput{Name: "Y Combinator", Description: &desc}, true)
	require.NoError(t, err)
	require.True(t, inc.ProfileComplete)
	require.Equal(t, desc, *inc.Description)

	inc, err = repo.UpdateProfile(ctx, inc.ID, ProfileInput{Name: "YC"}, false)
	require.NoError(t, err)
	require.True(t, inc.ProfileComplete)
	require.Equal(t, desc, *inc.Description)

	_, err = repo.GetIncubatorByID(ctx, inc.ID+1000)
	require.ErrorIs(t, err, ErrIncubatorNotFound)
}

func TestPostgresIncubatorRepository_Members(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresIncubatorRepository(pool)
	ctx := context.Background()
	_, incID := testhelpers.CreateTestIncubator(t, pool, "TechStars")
	_, otherID := testhelpers.CreateTestIncubator(t, pool, "500startups")

	m, err := repo.CreateMember(ctx, incID, MemberInput{FullName: "Ada", Email: "ada@raven.test"})
	require.NoError(t, err)
	require.Equal(t, RoleMentor, m.Role)

	_, err = repo.GetMember(ctx, otherID, m.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)

	m, err = repo.UpdateMember(ctx, incID, m.ID, MemberInput{FullName: "Ada L", Email: "ada@raven.test", Role: RoleInvestor})
	require.NoError(t, err)
	require.Equal(t, RoleInvestor, m.Role)

	members, err := repo.ListMembers(ctx, incID)
	require.NoError(t, err)
	require.Len(t, members, 1)

	require.ErrorIs(t, repo.DeleteMember(ctx, otherID, m.ID), ErrMemberNotFound)
	require.NoError(t, repo.DeleteMember(ctx, incID, m.ID))
}

func TestPostgresIncubatorRepository_Associations(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresIncubatorRepository(pool)
	ctx := context.Background()
	_, startupID := testhelpers.CreateTestStartup(t, pool, "Acme")
	_, a := testhelpers.CreateTestIncubator(t, pool, "A")
	_, b := testhelpers.CreateTestIncubator(t, pool, "B")
	_, c := testhelpers.CreateTestIncubator(t, pool, "C")

	require.NoError(t, repo.ReplaceAssociations(ctx, startupID, []int64{a, b}))
	list, err := repo.ListForStartup(ctx, startupID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, repo.ReplaceAssociations(ctx, startupID, []int64{c}))
	list, err = repo.ListForStartup(ctx, startupID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, c, list[0].ID)

	require.NoError(t, repo.AddAssociations(ctx, startupID, []int64{a, 999999}))
	ok, err := repo.IsAssociated(ctx, startupID, a)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.IsAssociated(ctx, startupID, b)
	require.NoError(t, err)
	require.False(t, ok)

	available, err := repo.ListIncubatorsExcludingStartup(ctx, startupID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, b, available[0].ID)

	existing, err := repo.ExistingIDs(ctx, []int64{a, 999999})
	require.NoError(t, err)
	require.Equal(t, []int64{a}, existing)

	require.NoError(t, repo.ReplaceAssociations(ctx, startupID, []int64{}))
	list, err = repo.ListForStartup(ctx, startupID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPostgresIncubatorRepository_PortfolioSummary(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresIncubatorRepository(pool)
	ctx := context.Background()
	_, incID := testhelpers.CreateTestIncubator(t, pool, "TechStars")

	sum, err := repo.PortfolioSummary(ctx, incID)
	require.NoError(t, err)
	require.True(t, sum.TotalPortfolioTarget.IsZero())
	require.Zero(t, sum.AverageTRL)

	_, s1 := testhelpers.CreateTestStartup(t, pool, "One")
	_, s2 := testhelpers.CreateTestStartup(t, pool, "Two")
	testhelpers.Associate(t, pool, s1, incID)
	testhelpers.Associate(t, pool, s2, incID)

	_, err = pool.Exec(ctx, `UPDATE startups SET trl_level = 4 WHERE id = $1`, s2)
	require.NoError(t, err)

	var campaignID, roundID int64
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO campaigns (startup_id) VALUES ($1) RETURNING id`, s1).Scan(&campaignID))
	_, err = pool.Exec(ctx, `INSERT INTO campaign_financials (campaign_id, funding_goal) VALUES ($1, 50000)`, campaignID)
	require.NoError(t, err)
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO investment_rounds (campaign_id, name, target_amount) VALUES ($1, 'Seed', 50000) RETURNING id`, campaignID).Scan(&roundID))
	_, err = pool.Exec(ctx, `INSERT INTO investors (round_id, incubator_id, status, amount) VALUES
		($1, $2, 'COMMITTED', 1000), ($1, $2, 'COMMITTED', 500), ($1, $2, 'CONTACTED', 9999)`, roundID, incID)
	require.NoError(t, err)

	sum, err = repo.PortfolioSummary(ctx, incID)
	require.NoError(t, err)
	require.Equal(t, "50000", sum.TotalPortfolioTarget.String())
	require.Equal(t, "1500", sum.TotalPortfolioCommitted.String())
	require.Equal(t, 2.5, sum.AverageTRL)
}
