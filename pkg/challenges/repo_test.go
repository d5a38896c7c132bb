package challenges

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aquilesbailo123/Raven-backend/pkg/dates"
	"github.com/aquilesbailo123/Raven-backend/pkg/testhelpers"
)

func TestPostgresChallengeRepository_ScopesAndCounts(t *testing.T) {
	pool := testhelpers.NewTestPool(t)
	repo := NewPostgresChallengeRepository(pool)
	ctx := context.Background()
	_, incubatorID := testhelpers.CreateTestIncubator(t, pool, "Techstars")
	_, otherID := testhelpers.CreateTestIncubator(t, pool, "YC")
	_, startupID := testhelpers.CreateTestStartup(t, pool, "Acme")

	budget := decimal.NewFromInt(25000)
	open, err := repo.CreateChallenge(ctx, incubatorID, ChallengeInput{
		Title: "Green", Description: "d", RequiredTechnologies: "IoT", Status: StatusOpen,
		Budget: &budget, Deadline: dates.Ptr(dates.New(2026, 12, 31)),
	})
	require.NoError(t, err)
	require.Equal(t, "25000", open.Budget.String())
	require.Equal(t, "2026-12-31", open.Deadline.String())

	closed, err := repo.CreateChallenge(ctx, otherID, ChallengeInput{
		Title: "Old", Description: "d", RequiredTechnologies: "Go", Status: StatusOpen,
	})
	require.NoError(t, err)
	require.NoError(t, repo.SetStatus(ctx, closed.ID, StatusConcluded))

	visible, err := repo.ListChallenges(ctx, Scope{OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, open.ID, visible[0].ID)

	_, err = repo.GetChallenge(ctx, Scope{IncubatorID: incubatorID}, closed.ID)
	require.ErrorIs(t, err, ErrChallengeNotFound)

	app, err := repo.CreateApplication(ctx, startupID, ApplicationInput{ChallengeID: open.ID, TextSolution: "Routes"})
	require.NoError(t, err)
	require.Equal(t, "Acme", *app.StartupName)

	_, err = repo.CreateApplication(ctx, startupID, ApplicationInput{ChallengeID: open.ID, TextSolution: "Again"})
	require.ErrorIs(t, err, ErrAlreadyApplied)

	got, err := repo.GetChallenge(ctx, Scope{IncubatorID: incubatorID}, open.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.ApplicantCount)

	received, err := repo.ListApplications(ctx, Scope{IncubatorID: incubatorID})
	require.NoError(t, err)
	require.Len(t, received, 1)
	none, err := repo.ListApplications(ctx, Scope{IncubatorID: otherID})
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = repo.GetApplication(ctx, Scope{StartupID: startupID + 1}, app.ID)
	require.ErrorIs(t, err, ErrApplicationNotFound)

	require.NoError(t, repo.DeleteChallenge(ctx, open.ID))
	_, err = repo.GetApplication(ctx, Scope{}, app.ID)
	require.ErrorIs(t, err, ErrApplicationNotFound)
}
