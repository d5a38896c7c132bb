package startups

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var ErrStartupNotFound = errors.New("startup not found")

type StartupRepository interface {
	GetStartupByID(ctx context.Context, id int64) (Startup, error)
	GetStartupByUserID(ctx context.Context, userID int64) (Startup, error)
	// GetOrCreateByUserID returns the user's startup, creating an empty one
	// on first use.
	GetOrCreateByUserID(ctx context.Context, userID int64) (Startup, bool, error)
	UpdateProfile(ctx context.Context, id int64, companyName, industry string, logoURL *string) (Startup, error)
	MarkOnboarded(ctx context.Context, id int64, companyName, industry string) (Startup, error)
	UpdateLevels(ctx context.Context, id int64, trl, crl int) error
	// LockForUpdate holds the startup row until the surrounding transaction ends.
	LockForUpdate(ctx context.Context, id int64) error
	ListByIncubator(ctx context.Context, incubatorID int64) ([]Startup, error)
}

type postgresStartupRepository struct {
	db db.DBTX
}

func NewPostgresStartupRepository(conn db.DBTX) StartupRepository {
	return &postgresStartupRepository{db: conn}
}

const startupColumns = `id, user_id, company_name, industry, logo_url, onboarding_completed, is_mock_data, trl_level, crl_level, created_at, updated_at`

func scanStartup(row pgx.Row) (Startup, error) {
	var s Startup
	err := row.Scan(&s.ID, &s.UserID, &s.CompanyName, &s.Industry, &s.LogoURL,
		&s.OnboardingCompleted, &s.IsMockData, &s.TRLLevel, &s.CRLLevel, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Startup{}, ErrStartupNotFound
		}
		return Startup{}, err
	}
	return s, nil
}

func (r *postgresStartupRepository) GetStartupByID(ctx context.Context, id int64) (Startup, error) {
	return scanStartup(r.db.QueryRow(ctx, `SELECT `+startupColumns+` FROM startups WHERE id = $1`, id))
}

func (r *postgresStartupRepository) GetStartupByUserID(ctx context.Context, userID int64) (Startup, error) {
	return scanStartup(r.db.QueryRow(ctx, `SELECT `+startupColumns+` FROM startups WHERE user_id = $1`, userID))
}

func (r *postgresStartupRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (Startup, bool, error) {
	s, err := scanStartup(r.db.QueryRow(ctx, `
		INSERT INTO startups (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING `+startupColumns, userID))
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, ErrStartupNotFound) {
		return Startup{}, false, err
	}
	s, err = r.GetStartupByUserID(ctx, userID)
	return s, false, err
}

func (r *postgresStartupRepository) UpdateProfile(ctx context.Context, id int64, companyName, industry string, logoURL *string) (Startup, error) {
	query := `UPDATE startups
              SET company_name = $1, industry = $2, logo_url = COALESCE($3, logo_url), updated_at = NOW()
              WHERE id = $4
              RETURNING ` + startupColumns
	return scanStartup(r.db.QueryRow(ctx, query, companyName, industry, logoURL, id))
}

func (r *postgresStartupRepository) MarkOnboarded(ctx context.Context, id int64, companyName, industry string) (Startup, error) {
	query := `UPDATE startups
              SET company_name = $1, industry = $2, is_mock_data = false, onboarding_completed = true, updated_at = NOW()
              WHERE id = $3
              RETURNING ` + startupColumns
	return scanStartup(r.db.QueryRow(ctx, query, companyName, industry, id))
}

func (r *postgresStartupRepository) UpdateLevels(ctx context.Context, id int64, trl, crl int) error {
	cmd, err := r.db.Exec(ctx, `UPDATE startups SET trl_level = $1, crl_level = $2, updated_at = NOW() WHERE id = $3`, trl, crl, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStartupNotFound
	}
	return nil
}

func (r *postgresStartupRepository) LockForUpdate(ctx context.Context, id int64) error {
	var locked int64
	err := r.db.QueryRow(ctx, `SELECT id FROM startups WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStartupNotFound
	}
	return err
}

func (r *postgresStartupRepository) ListByIncubator(ctx context.Context, incubatorID int64) ([]Startup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+qualified("s", startupColumns)+`
		FROM startups s
		JOIN startup_incubators si ON si.startup_id = s.id
		WHERE si.incubator_id = $1
		ORDER BY s.id`, incubatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Startup{}
	for rows.Next() {
		s, err := scanStartup(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// qualified prefixes every column in a comma separated list with alias.
func qualified(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
