package readiness

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
	"github.com/aquilesbailo123/Raven-backend/pkg/metrics"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/testhelpers"
)

func strPtr(s string) *string { return &s }

func TestPostgresReadinessRepository_Evidences(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresReadinessRepository(pool)
	ctx := context.Background()
	_, startupID := testhelpers.CreateTestStartup(t, pool, "Acme")
	_, incID := testhelpers.CreateTestIncubator(t, pool, "TechStars")

	first, err := repo.CreateEvidence(ctx, startupID, NewEvidence{Level: 1, FileURL: strPtr("https://files.raven.test/1.pdf")})
	require.NoError(t, err)
	require.Equal(t, TypeTRL, first.Type)
	require.Equal(t, StatusPending, first.Status)

	second, err := repo.CreateEvidence(ctx, startupID, NewEvidence{Type: TypeCRL, Level: 2, FileURL: strPtr("https://files.raven.test/2.pdf")})
	require.NoError(t, err)

	list, err := repo.ListEvidences(ctx, startupID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)

	_, err = repo.GetPortfolioEvidence(ctx, incID, first.ID)
	require.ErrorIs(t, err, ErrEvidenceNotFound)

	testhelpers.Associate(t, pool, startupID, incID)
	pe, err := repo.GetPortfolioEvidence(ctx, incID, first.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", *pe.StartupName)

	require.NoError(t, repo.UpdateReview(ctx, first.ID, StatusApproved, strPtr("ok")))
	approved, err := repo.ApprovedLevels(ctx, startupID, TypeTRL)
	require.NoError(t, err)
	require.Equal(t, []int{1}, approved)

	approved, err = repo.ApprovedLevels(ctx, startupID, TypeCRL)
	require.NoError(t, err)
	require.Empty(t, approved)

	n, err := repo.DeleteEvidences(ctx, startupID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.ErrorIs(t, repo.UpdateReview(ctx, first.ID, StatusRejected, nil), ErrEvidenceNotFound)
}

func TestPostgresReadinessRepository_Levels(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresReadinessRepository(pool)
	ctx := context.Background()
	_, startupID := testhelpers.CreateTestStartup(t, pool, "Acme")
	_, otherID := testhelpers.CreateTestStartup(t, pool, "Other")

	crl, err := repo.CreateLevel(ctx, startupID, LevelInput{Type: TypeCRL, Level: 1, Title: "Problem"})
	require.NoError(t, err)
	trl, err := repo.CreateLevel(ctx, startupID, LevelInput{Type: TypeTRL, Level: 1, Title: "Basic principles"})
	require.NoError(t, err)

	_, err = repo.CreateLevel(ctx, startupID, LevelInput{Type: TypeTRL, Level: 1, Title: "Again"})
	require.ErrorIs(t, err, ErrDuplicateLevel)

	list, err := repo.ListLevels(ctx, startupID)
	require.NoError(t, err)
	require.Equal(t, []int64{crl.ID, trl.ID}, []int64{list[0].ID, list[1].ID})

	_, err = repo.GetLevel(ctx, otherID, trl.ID)
	require.ErrorIs(t, err, ErrLevelNotFound)

	updated, err := repo.UpdateLevel(ctx, startupID, trl.ID, LevelInput{Type: TypeTRL, Level: 2, Title: "Concept"})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Level)

	require.ErrorIs(t, repo.DeleteLevel(ctx, otherID, trl.ID), ErrLevelNotFound)
	require.NoError(t, repo.DeleteLevel(ctx, startupID, trl.ID))
}

func TestReadinessService_ConcurrentReviewsKeepConsecutiveLevel(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	ctx := context.Background()
	repo := NewPostgresReadinessRepository(pool)
	startupRepo := startups.NewPostgresStartupRepository(pool)
	_, startupID := testhelpers.CreateTestStartup(t, pool, "Acme")
	incUserID, incID := testhelpers.CreateTestIncubator(t, pool, "TechStars")
	testhelpers.Associate(t, pool, startupID, incID)

	svc := NewReadinessService(repo, startupRepo, incubators.NewPostgresIncubatorRepository(pool),
		NewPostgresStoreTx(pool), &recordingNotifier{}, metrics.New(), zap.NewNop())
	reviewer := auth.Principal{UserID: incUserID, UserType: auth.UserTypeIncubator}

	const levels = 9
	ids := make([]int64, 0, levels)
	for level := 1; level <= levels; level++ {
		ev, err := repo.CreateEvidence(ctx, startupID, NewEvidence{
			Type:    TypeTRL,
			Level:   level,
			FileURL: strPtr(fmt.Sprintf("https://files.raven.test/%d.pdf", level)),
		})
		require.NoError(t, err)
		ids = append(ids, ev.ID)
	}

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			_, err := svc.Review(ctx, reviewer, id, ReviewInput{Status: StatusApproved})
			return err
		})
	}
	require.NoError(t, g.Wait())

	st, err := startupRepo.GetStartupByID(ctx, startupID)
	require.NoError(t, err)
	require.Equal(t, levels, st.TRLLevel)
	require.Equal(t, 1, st.CRLLevel)
}
