package incubators

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var (
	ErrIncubatorNotFound = errors.New("incubator not found")
	ErrMemberNotFound    = errors.New("member not found")
)

type IncubatorRepository interface {
	GetIncubatorByID(ctx context.Context, id int64) (Incubator, error)
	GetIncubatorByUserID(ctx context.Context, userID int64) (Incubator, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (Incubator, bool, error)
	ListIncubators(ctx context.Context) ([]Incubator, error)
	ListIncubatorsExcludingStartup(ctx context.Context, startupID int64) ([]Incubator, error)
	UpdateProfile(ctx context.Context, id int64, in ProfileInput, markComplete bool) (Incubator, error)

	ListMembers(ctx context.Context, incubatorID int64) ([]Member, error)
	GetMember(ctx context.Context, incubatorID, id int64) (Member, error)
	CreateMember(ctx context.Context, incubatorID int64, in MemberInput) (Member, error)
	UpdateMember(ctx context.Context, incubatorID, id int64, in MemberInput) (Member, error)
	DeleteMember(ctx context.Context, incubatorID, id int64) error

	ListAssociatedStartups(ctx context.Context, incubatorID int64) ([]AssociatedStartup, error)
	PortfolioSummary(ctx context.Context, incubatorID int64) (PortfolioSummary, error)

	ListForStartup(ctx context.Context, startupID int64) ([]Incubator, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	ReplaceAssociations(ctx context.Context, startupID int64, incubatorIDs []int64) error
	AddAssociations(ctx context.Context, startupID int64, incubatorIDs []int64) error
	IsAssociated(ctx context.Context, startupID, incubatorID int64) (bool, error)
	OwnerEmails(ctx context.Context, ids []int64) (map[int64]string, error)
	OwnerUserIDsForStartup(ctx context.Context, startupID int64) ([]int64, error)
}

type postgresIncubatorRepository struct {
	db db.DBTX
}

func NewPostgresIncubatorRepository(conn db.DBTX) IncubatorRepository {
	return &postgresIncubatorRepository{db: conn}
}

const incubatorColumns = `i.id, i.user_id, i.name, i.description, i.logo_url, i.profile_complete, i.created_at, i.updated_at`

func scanIncubator(row pgx.Row) (Incubator, error) {
	var inc Incubator
	err := row.Scan(&inc.ID, &inc.UserID, &inc.Name, &inc.Description, &inc.LogoURL,
		&inc.ProfileComplete, &inc.CreatedAt, &inc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Incubator{}, ErrIncubatorNotFound
		}
		return Incubator{}, err
	}
	return inc, nil
}

func (r *postgresIncubatorRepository) queryIncubators(ctx context.Context, query string, args ...any) ([]Incubator, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Incubator{}
	for rows.Next() {
		inc, err := scanIncubator(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, inc)
	}
	return list, rows.Err()
}

func (r *postgresIncubatorRepository) GetIncubatorByID(ctx context.Context, id int64) (Incubator, error) {
	return scanIncubator(r.db.QueryRow(ctx, `SELECT `+incubatorColumns+` FROM incubators i WHERE i.id = $1`, id))
}

func (r *postgresIncubatorRepository) GetIncubatorByUserID(ctx context.Context, userID int64) (Incubator, error) {
	return scanIncubator(r.db.QueryRow(ctx, `SELECT `+incubatorColumns+` FROM incubators i WHERE i.user_id = $1`, userID))
}

func (r *postgresIncubatorRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (Incubator, bool, error) {
	inc, err := scanIncubator(r.db.QueryRow(ctx, `
		INSERT INTO incubators AS i (user_id, name) VALUES ($1, '')
		ON CONFLICT (user_id) DO NOTHING
		RETURNING `+incubatorColumns, userID))
	if err == nil {
		return inc, true, nil
	}
	if !errors.Is(err, ErrIncubatorNotFound) {
		return Incubator{}, false, err
	}
	inc, err = r.GetIncubatorByUserID(ctx, userID)
	return inc, false, err
}

func (r *postgresIncubatorRepository) ListIncubators(ctx context.Context) ([]Incubator, error) {
	return r.queryIncubators(ctx, `SELECT `+incubatorColumns+` FROM incubators i ORDER BY i.id`)
}

func (r *postgresIncubatorRepository) ListIncubatorsExcludingStartup(ctx context.Context, startupID int64) ([]Incubator, error) {
	return r.queryIncubators(ctx, `
		SELECT `+incubatorColumns+`
		FROM incubators i
		WHERE NOT EXISTS (
			SELECT 1 FROM startup_incubators si WHERE si.incubator_id = i.id AND si.startup_id = $1
		)
		ORDER BY i.id`, startupID)
}

func (r *postgresIncubatorRepository) UpdateProfile(ctx context.Context, id int64, in ProfileInput, markComplete bool) (Incubator, error) {
	query := `UPDATE incubators AS i
              SET name = $1,
                  description = COALESCE($2, i.description),
                  logo_url = COALESCE($3, i.logo_url),
                  profile_complete = i.profile_complete OR $4,
                  updated_at = NOW()
              WHERE i.id = $5
              RETURNING ` + incubatorColumns
	return scanIncubator(r.db.QueryRow(ctx, query, in.Name, in.Description, in.LogoURL, markComplete, id))
}

const memberColumns = `id, incubator_id, full_name, email, phone, role, created_at, updated_at`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.IncubatorID, &m.FullName, &m.Email, &m.Phone, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, err
	}
	return m, nil
}

func (r *postgresIncubatorRepository) ListMembers(ctx context.Context, incubatorID int64) ([]Member, error) {
	rows, err := r.db.Query(ctx, `SELECT `+memberColumns+` FROM incubator_members WHERE incubator_id = $1 ORDER BY id`, incubatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *postgresIncubatorRepository) GetMember(ctx context.Context, incubatorID, id int64) (Member, error) {
	return scanMember(r.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM incubator_members WHERE id = $1 AND incubator_id = $2`, id, incubatorID))
}

func (r *postgresIncubatorRepository) CreateMember(ctx context.Context, incubatorID int64, in MemberInput) (Member, error) {
	query := `INSERT INTO incubator_members (incubator_id, full_name, email, phone, role)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING ` + memberColumns
	return scanMember(r.db.QueryRow(ctx, query, incubatorID, in.FullName, in.Email, in.Phone, roleOrDefault(in.Role)))
}

func (r *postgresIncubatorRepository) UpdateMember(ctx context.Context, incubatorID, id int64, in MemberInput) (Member, error) {
	query := `UPDATE incubator_members
              SET full_name = $1, email = $2, phone = $3, role = $4, updated_at = NOW()
              WHERE id = $5 AND incubator_id = $6
              RETURNING ` + memberColumns
	return scanMember(r.db.QueryRow(ctx, query, in.FullName, in.Email, in.Phone, roleOrDefault(in.Role), id, incubatorID))
}

func (r *postgresIncubatorRepository) DeleteMember(ctx context.Context, incubatorID, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM incubator_members WHERE id = $1 AND incubator_id = $2`, id, incubatorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func roleOrDefault(role string) string {
	if role == "" {
		return RoleMentor
	}
	return role
}

func (r *postgresIncubatorRepository) ListAssociatedStartups(ctx context.Context, incubatorID int64) ([]AssociatedStartup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.company_name, s.logo_url, s.industry
		FROM startups s
		JOIN startup_incubators si ON si.startup_id = s.id
		WHERE si.incubator_id = $1
		ORDER BY s.id`, incubatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []AssociatedStartup{}
	for rows.Next() {
		var s AssociatedStartup
		if err := rows.Scan(&s.ID, &s.CompanyName, &s.LogoURL, &s.Industry); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// PortfolioSummary aggregates campaign goals, committed investment and the
// mean TRL over the incubator's associated startups.
func (r *postgresIncubatorRepository) PortfolioSummary(ctx context.Context, incubatorID int64) (PortfolioSummary, error) {
	query := `
		SELECT
			COALESCE((
				SELECT SUM(cf.funding_goal)
				FROM startup_incubators si
				JOIN campaigns c ON c.startup_id = si.startup_id
				JOIN campaign_financials cf ON cf.campaign_id = c.id
				WHERE si.incubator_id = $1
			), 0),
			COALESCE((
				SELECT SUM(inv.amount)
				FROM startup_incubators si
				JOIN campaigns c ON c.startup_id = si.startup_id
				JOIN investment_rounds ir ON ir.campaign_id = c.id
				JOIN investors inv ON inv.round_id = ir.id
				WHERE si.incubator_id = $1 AND inv.status = 'COMMITTED'
			), 0),
			COALESCE((
				SELECT ROUND(AVG(s.trl_level), 2)::float8
				FROM startup_incubators si
				JOIN startups s ON s.id = si.startup_id
				WHERE si.incubator_id = $1
			), 0)`

	var sum PortfolioSummary
	err := r.db.QueryRow(ctx, query, incubatorID).Scan(&sum.TotalPortfolioTarget, &sum.TotalPortfolioCommitted, &sum.AverageTRL)
	return sum, err
}

func (r *postgresIncubatorRepository) ListForStartup(ctx context.Context, startupID int64) ([]Incubator, error) {
	return r.queryIncubators(ctx, `
		SELECT `+incubatorColumns+`
		FROM incubators i
		JOIN startup_incubators si ON si.incubator_id = i.id
		WHERE si.startup_id = $1
		ORDER BY i.id`, startupID)
}

func (r *postgresIncubatorRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT id FROM incubators WHERE id = ANY($1) ORDER BY id`, ids)
}

// ReplaceAssociations sets the startup's incubators to exactly incubatorIDs
// in a single statement.
func (r *postgresIncubatorRepository) ReplaceAssociations(ctx context.Context, startupID int64, incubatorIDs []int64) error {
	_, err := r.db.Exec(ctx, `
		WITH removed AS (
			DELETE FROM startup_incubators
			WHERE startup_id = $1 AND NOT (incubator_id = ANY($2))
		)
		INSERT INTO startup_incubators (startup_id, incubator_id)
		SELECT $1, id FROM incubators WHERE id = ANY($2)
		ON CONFLICT DO NOTHING`, startupID, incubatorIDs)
	return err
}

// AddAssociations links the startup to the existing incubators among
// incubatorIDs and keeps current links.
func (r *postgresIncubatorRepository) AddAssociations(ctx context.Context, startupID int64, incubatorIDs []int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO startup_incubators (startup_id, incubator_id)
		SELECT $1, id FROM incubators WHERE id = ANY($2)
		ON CONFLICT DO NOTHING`, startupID, incubatorIDs)
	return err
}

func (r *postgresIncubatorRepository) IsAssociated(ctx context.Context, startupID, incubatorID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM startup_incubators WHERE startup_id = $1 AND incubator_id = $2)`,
		startupID, incubatorID).Scan(&ok)
	return ok, err
}

func (r *postgresIncubatorRepository) OwnerEmails(ctx context.Context, ids []int64) (map[int64]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.id, u.email FROM incubators i JOIN users u ON u.id = i.user_id WHERE i.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make(map[int64]string)
	for rows.Next() {
		var id int64
		var email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, err
		}
		emails[id] = email
	}
	return emails, rows.Err()
}

func (r *postgresIncubatorRepository) OwnerUserIDsForStartup(ctx context.Context, startupID int64) ([]int64, error) {
	return r.queryIDs(ctx, `
		SELECT i.user_id FROM incubators i
		JOIN startup_incubators si ON si.incubator_id = i.id
		WHERE si.startup_id = $1
		ORDER BY i.user_id`, startupID)
}

func (r *postgresIncubatorRepository) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
