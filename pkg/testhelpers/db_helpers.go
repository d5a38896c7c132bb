package testhelpers

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var uniqueCounter int64

func nextSuffix() int64 {
	return atomic.AddInt64(&uniqueCounter, 1)
}

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// tables are truncated between tests, children first.
const truncateSQL = `TRUNCATE TABLE
	notifications, financial_sheets, investors, investment_rounds,
	campaign_legal, campaign_tractions, campaign_financials, campaign_team_members, campaigns,
	investor_pipeline, rounds, financial_inputs, evidences, readiness_levels,
	challenge_applications, challenges, incubator_members, startup_incubators,
	incubators, startups, otps, login_history, users
	RESTART IDENTITY CASCADE`

// NewTestPool returns a pool on a clean schema. It uses DATABASE_URL_FOR_TEST
// when set, otherwise a shared throwaway PostgreSQL container. Skipped with
// -short or when neither is available.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in -short mode")
	}

	dsn := os.Getenv("DATABASE_URL_FOR_TEST")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		containerOnce.Do(startContainer)
		if containerErr != nil {
			t.Skipf("postgres container unavailable: %v", containerErr)
		}
		dsn = containerDSN
	}

	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))
	t.Cleanup(pool.Close)

	require.NoError(t, db.ApplySchema(ctx, pool, "", zap.NewNop()))
	_, err = pool.Exec(ctx, truncateSQL)
	require.NoError(t, err)

	return pool
}

// The container is reaped by Ryuk when the test binary exits.
func startContainer() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("raven_test"),
		tcpostgres.WithUsername("raven"),
		tcpostgres.WithPassword("raven"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		containerErr = err
		return
	}
	containerDSN, containerErr = ctr.ConnectionString(ctx, "sslmode=disable")
}

// CreateTestUser inserts a user of the given type and returns its ID.
func CreateTestUser(t *testing.T, conn db.DBTX, userType string) int64 {
	t.Helper()

	suffix := nextSuffix()
	email := fmt.Sprintf("test-user-%d@raven.test", suffix)

	var id int64
	err := conn.QueryRow(context.Background(),
		"INSERT INTO users (uuid, email, password_hash, user_type) VALUES ($1, $2, 'hash', $3) RETURNING id",
		fmt.Sprintf("00000000-0000-4000-8000-%012d", suffix), email, userType,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestStartup inserts a startup user plus its startup and returns
// (userID, startupID).
func CreateTestStartup(t *testing.T, conn db.DBTX, companyName string) (int64, int64) {
	t.Helper()

	userID := CreateTestUser(t, conn, "startup")
	var id int64
	err := conn.QueryRow(context.Background(),
		"INSERT INTO startups (user_id, company_name, industry) VALUES ($1, $2, 'technology') RETURNING id",
		userID, companyName,
	).Scan(&id)
	require.NoError(t, err)
	return userID, id
}

// CreateTestIncubator inserts an incubator user plus its incubator and
// returns (userID, incubatorID).
func CreateTestIncubator(t *testing.T, conn db.DBTX, name string) (int64, int64) {
	t.Helper()

	userID := CreateTestUser(t, conn, "incubator")
	var id int64
	err := conn.QueryRow(context.Background(),
		"INSERT INTO incubators (user_id, name, profile_complete) VALUES ($1, $2, true) RETURNING id",
		userID, name,
	).Scan(&id)
	require.NoError(t, err)
	return userID, id
}

// Associate links a startup to an incubator.
func Associate(t *testing.T, conn db.DBTX, startupID, incubatorID int64) {
	t.Helper()

	_, err := conn.Exec(context.Background(),
		"INSERT INTO startup_incubators (startup_id, incubator_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		startupID, incubatorID,
	)
	require.NoError(t, err)
}
