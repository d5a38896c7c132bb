package readiness

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var (
	ErrEvidenceNotFound = errors.New("evidence not found")
	ErrLevelNotFound    = errors.New("readiness level not found")
	ErrDuplicateLevel   = errors.New("readiness level already exists")
)

type ReadinessRepository interface {
	ListEvidences(ctx context.Context, startupID int64) ([]Evidence, error)
	CreateEvidence(ctx context.Context, startupID int64, in NewEvidence) (Evidence, error)
	DeleteEvidences(ctx context.Context, startupID int64) (int64, error)
	GetPortfolioEvidenceByID(ctx context.Context, id int64) (PortfolioEvidence, error)
	ListPortfolioEvidences(ctx context.Context, incubatorID int64) ([]PortfolioEvidence, error)
	GetPortfolioEvidence(ctx context.Context, incubatorID, id int64) (PortfolioEvidence, error)
	UpdateReview(ctx context.Context, id int64, status string, notes *string) error
	ApprovedLevels(ctx context.Context, startupID int64, kind string) ([]int, error)

	ListLevels(ctx context.Context, startupID int64) ([]Level, error)
	GetLevel(ctx context.Context, startupID, id int64) (Level, error)
	CreateLevel(ctx context.Context, startupID int64, in LevelInput) (Level, error)
	UpdateLevel(ctx context.Context, startupID, id int64, in LevelInput) (Level, error)
	DeleteLevel(ctx context.Context, startupID, id int64) error
	ListPortfolioLevels(ctx context.Context, incubatorID int64) ([]PortfolioLevel, error)
}

type postgresReadinessRepository struct {
	db db.DBTX
}

func NewPostgresReadinessRepository(conn db.DBTX) ReadinessRepository {
	return &postgresReadinessRepository{db: conn}
}

const evidenceColumns = `e.id, e.startup_id, e.readiness_level_id, e.type, e.level, e.description, e.file_url, e.status, e.reviewer_notes, e.created_at, e.updated_at`

func evidenceDest(e *Evidence) []any {
	return []any{&e.ID, &e.StartupID, &e.ReadinessLevelID, &e.Type, &e.Level, &e.Description,
		&e.FileURL, &e.Status, &e.ReviewerNotes, &e.CreatedAt, &e.UpdatedAt}
}

func scanEvidence(row pgx.Row) (Evidence, error) {
	var e Evidence
	if err := row.Scan(evidenceDest(&e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Evidence{}, ErrEvidenceNotFound
		}
		return Evidence{}, err
	}
	return e, nil
}

func scanPortfolioEvidence(row pgx.Row) (PortfolioEvidence, error) {
	var pe PortfolioEvidence
	dest := append(evidenceDest(&pe.Evidence), &pe.StartupName, &pe.StartupLogo)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PortfolioEvidence{}, ErrEvidenceNotFound
		}
		return PortfolioEvidence{}, err
	}
	return pe, nil
}

func (r *postgresReadinessRepository) ListEvidences(ctx context.Context, startupID int64) ([]Evidence, error) {
	rows, err := r.db.Query(ctx, `SELECT `+evidenceColumns+` FROM evidences e
		WHERE e.startup_id = $1 ORDER BY e.created_at DESC, e.id DESC`, startupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Evidence{}
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *postgresReadinessRepository) CreateEvidence(ctx context.Context, startupID int64, in NewEvidence) (Evidence, error) {
	kind := in.Type
	if kind == "" {
		kind = TypeTRL
	}
	query := `INSERT INTO evidences AS e (startup_id, readiness_level_id, type, level, description, file_url, status)
              VALUES ($1, $2, $3, $4, $5, $6, 'PENDING')
              RETURNING ` + evidenceColumns
	return scanEvidence(r.db.QueryRow(ctx, query, startupID, in.ReadinessLevelID, kind, in.Level, in.Description, in.FileURL))
}

func (r *postgresReadinessRepository) DeleteEvidences(ctx context.Context, startupID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM evidences WHERE startup_id = $1`, startupID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

const portfolioEvidenceSelect = `SELECT ` + evidenceColumns + `, s.company_name, s.logo_url
	FROM evidences e
	JOIN startups s ON s.id = e.startup_id`

func (r *postgresReadinessRepository) GetPortfolioEvidenceByID(ctx context.Context, id int64) (PortfolioEvidence, error) {
	return scanPortfolioEvidence(r.db.QueryRow(ctx, portfolioEvidenceSelect+` WHERE e.id = $1`, id))
}

func (r *postgresReadinessRepository) ListPortfolioEvidences(ctx context.Context, incubatorID int64) ([]PortfolioEvidence, error) {
	rows, err := r.db.Query(ctx, portfolioEvidenceSelect+`
		JOIN startup_incubators si ON si.startup_id = e.startup_id
		WHERE si.incubator_id = $1
		ORDER BY e.created_at DESC, e.id DESC`, incubatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []PortfolioEvidence{}
	for rows.Next() {
		pe, err := scanPortfolioEvidence(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, pe)
	}
	return list, rows.Err()
}

func (r *postgresReadinessRepository) GetPortfolioEvidence(ctx context.Context, incubatorID, id int64) (PortfolioEvidence, error) {
	return scanPortfolioEvidence(r.db.QueryRow(ctx, portfolioEvidenceSelect+`
		JOIN startup_incubators si ON si.startup_id = e.startup_id
		WHERE si.incubator_id = $1 AND e.id = $2`, incubatorID, id))
}

func (r *postgresReadinessRepository) UpdateReview(ctx context.Context, id int64, status string, notes *string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE evidences SET status = $1, reviewer_notes = $2, updated_at = NOW() WHERE id = $3`,
		status, notes, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEvidenceNotFound
	}
	return nil
}

func (r *postgresReadinessRepository) ApprovedLevels(ctx context.Context, startupID int64, kind string) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT level FROM evidences
		WHERE startup_id = $1 AND type = $2 AND status = 'APPROVED' ORDER BY level`, startupID, kind)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

const levelColumns = `l.id, l.startup_id, l.type, l.level, l.title, l.subtitle, l.created_at, l.updated_at`

func levelDest(l *Level) []any {
	return []any{&l.ID, &l.StartupID, &l.Type, &l.Level, &l.Title, &l.Subtitle, &l.CreatedAt, &l.UpdatedAt}
}

func scanLevel(row pgx.Row) (Level, error) {
	var l Level
	if err := row.Scan(levelDest(&l)...); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Level{}, ErrLevelNotFound
		case db.IsUniqueViolation(err):
			return Level{}, ErrDuplicateLevel
		}
		return Level{}, err
	}
	return l, nil
}

func (r *postgresReadinessRepository) ListLevels(ctx context.Context, startupID int64) ([]Level, error) {
	rows, err := r.db.Query(ctx, `SELECT `+levelColumns+` FROM readiness_levels l
		WHERE l.startup_id = $1 ORDER BY l.type, l.level`, startupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Level{}
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *postgresReadinessRepository) GetLevel(ctx context.Context, startupID, id int64) (Level, error) {
	return scanLevel(r.db.QueryRow(ctx, `SELECT `+levelColumns+` FROM readiness_levels l
		WHERE l.id = $1 AND l.startup_id = $2`, id, startupID))
}

func (r *postgresReadinessRepository) CreateLevel(ctx context.Context, startupID int64, in LevelInput) (Level, error) {
	query := `INSERT INTO readiness_levels AS l (startup_id, type, level, title, subtitle)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING ` + levelColumns
	return scanLevel(r.db.QueryRow(ctx, query, startupID, in.Type, in.Level, in.Title, in.Subtitle))
}

func (r *postgresReadinessRepository) UpdateLevel(ctx context.Context, startupID, id int64, in LevelInput) (Level, error) {
	query := `UPDATE readiness_levels AS l
              SET type = $1, level = $2, title = $3, subtitle = $4, updated_at = NOW()
              WHERE l.id = $5 AND l.startup_id = $6
              RETURNING ` + levelColumns
	return scanLevel(r.db.QueryRow(ctx, query, in.Type, in.Level, in.Title, in.Subtitle, id, startupID))
}

func (r *postgresReadinessRepository) DeleteLevel(ctx context.Context, startupID, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM readiness_levels WHERE id = $1 AND startup_id = $2`, id, startupID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLevelNotFound
	}
	return nil
}

func (r *postgresReadinessRepository) ListPortfolioLevels(ctx context.Context, incubatorID int64) ([]PortfolioLevel, error) {
	rows, err := r.db.Query(ctx, `SELECT `+levelColumns+`, s.company_name
		FROM readiness_levels l
		JOIN startups s ON s.id = l.startup_id
		JOIN startup_incubators si ON si.startup_id = l.startup_id
		WHERE si.incubator_id = $1
		ORDER BY l.startup_id, l.type, l.level`, incubatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []PortfolioLevel{}
	for rows.Next() {
		var pl PortfolioLevel
		if err := rows.Scan(append(levelDest(&pl.Level), &pl.StartupName)...); err != nil {
			return nil, err
		}
		pl.StartupID = pl.Level.StartupID
		pl.Evidences = []PortfolioEvidence{}
		list = append(list, pl)
	}
	return list, rows.Err()
}
