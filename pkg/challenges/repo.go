package challenges

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var (
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("already applied to challenge")
)

type ChallengeRepository interface {
	ListChallenges(ctx context.Context, scope Scope) ([]Challenge, error)
	GetChallenge(ctx context.Context, scope Scope, id int64) (Challenge, error)
	CreateChallenge(ctx context.Context, incubatorID int64, in ChallengeInput) (Challenge, error)
	UpdateChallenge(ctx context.Context, id int64, in ChallengeInput) (Challenge, error)
	SetStatus(ctx context.Context, id int64, status string) error
	DeleteChallenge(ctx context.Context, id int64) error

	ListApplications(ctx context.Context, scope Scope) ([]Application, error)
	GetApplication(ctx context.Context, scope Scope, id int64) (Application, error)
	CreateApplication(ctx context.Context, startupID int64, in ApplicationInput) (Application, error)
	DeleteApplication(ctx context.Context, id int64) error
}

type postgresChallengeRepository struct {
	db db.DBTX
}

func NewPostgresChallengeRepository(conn db.DBTX) ChallengeRepository {
	return &postgresChallengeRepository{db: conn}
}

const challengeSelect = `
	SELECT c.id, c.incubator_id, c.title, c.subtitle, c.description, c.budget, c.deadline,
	       c.required_technologies, c.status,
	       (SELECT COUNT(*) FROM challenge_applications a WHERE a.challenge_id = c.id),
	       c.created_at, c.updated_at
	FROM challenges c`

func scanChallenge(row pgx.Row) (Challenge, error) {
	var ch Challenge
	err := row.Scan(&ch.ID, &ch.IncubatorID, &ch.Title, &ch.Subtitle, &ch.Description, &ch.Budget, &ch.Deadline,
		&ch.RequiredTechnologies, &ch.Status, &ch.ApplicantCount, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Challenge{}, ErrChallengeNotFound
		}
		return Challenge{}, err
	}
	return ch, nil
}

// challengeWhere renders scope as a WHERE clause, numbering placeholders
// from len(args)+1.
func challengeWhere(scope Scope, args []any) (string, []any) {
	var conds []string
	if scope.IncubatorID != 0 {
		args = append(args, scope.IncubatorID)
		conds = append(conds, fmt.Sprintf("c.incubator_id = $%d", len(args)))
	}
	if scope.OpenOnly {
		args = append(args, StatusOpen)
		conds = append(conds, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " AND " + strings.Join(conds, " AND "), args
}

func (r *postgresChallengeRepository) ListChallenges(ctx context.Context, scope Scope) ([]Challenge, error) {
	where, args := challengeWhere(scope, nil)
	rows, err := r.db.Query(ctx, challengeSelect+` WHERE TRUE`+where+` ORDER BY c.created_at DESC, c.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Challenge{}
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, ch)
	}
	return list, rows.Err()
}

func (r *postgresChallengeRepository) GetChallenge(ctx context.Context, scope Scope, id int64) (Challenge, error) {
	where, args := challengeWhere(scope, []any{id})
	return scanChallenge(r.db.QueryRow(ctx, challengeSelect+` WHERE c.id = $1`+where, args...))
}

func (r *postgresChallengeRepository) CreateChallenge(ctx context.Context, incubatorID int64, in ChallengeInput) (Challenge, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO challenges (incubator_id, title, subtitle, description, budget, deadline, required_technologies, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		incubatorID, in.Title, in.Subtitle, in.Description, in.Budget, in.Deadline, in.RequiredTechnologies, in.Status,
	).Scan(&id)
	if err != nil {
		return Challenge{}, err
	}
	return r.GetChallenge(ctx, Scope{}, id)
}

func (r *postgresChallengeRepository) UpdateChallenge(ctx context.Context, id int64, in ChallengeInput) (Challenge, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE challenges
		SET title = $1, subtitle = $2, description = $3, budget = $4, deadline = $5,
		    required_technologies = $6, status = $7, updated_at = NOW()
		WHERE id = $8`,
		in.Title, in.Subtitle, in.Description, in.Budget, in.Deadline, in.RequiredTechnologies, in.Status, id)
	if err != nil {
		return Challenge{}, err
	}
	if cmd.RowsAffected() == 0 {
		return Challenge{}, ErrChallengeNotFound
	}
	return r.GetChallenge(ctx, Scope{}, id)
}

func (r *postgresChallengeRepository) SetStatus(ctx context.Context, id int64, status string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE challenges SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrChallengeNotFound
	}
	return nil
}

func (r *postgresChallengeRepository) DeleteChallenge(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrChallengeNotFound
	}
	return nil
}

const applicationSelect = `
	SELECT a.id, a.challenge_id, a.startup_id, s.company_name, a.text_solution, a.created_at, a.updated_at
	FROM challenge_applications a
	JOIN startups s ON s.id = a.startup_id
	JOIN challenges c ON c.id = a.challenge_id`

func scanApplication(row pgx.Row) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.ChallengeID, &a.StartupID, &a.StartupName, &a.TextSolution, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrApplicationNotFound
		}
		return Application{}, err
	}
	return a, nil
}

func applicationWhere(scope Scope, args []any) (string, []any) {
	where, args := challengeWhere(Scope{IncubatorID: scope.IncubatorID}, args)
	if scope.StartupID != 0 {
		args = append(args, scope.StartupID)
		where += fmt.Sprintf(" AND a.startup_id = $%d", len(args))
	}
	return where, args
}

func (r *postgresChallengeRepository) ListApplications(ctx context.Context, scope Scope) ([]Application, error) {
	where, args := applicationWhere(scope, nil)
	rows, err := r.db.Query(ctx, applicationSelect+` WHERE TRUE`+where+` ORDER BY a.created_at DESC, a.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *postgresChallengeRepository) GetApplication(ctx context.Context, scope Scope, id int64) (Application, error) {
	where, args := applicationWhere(scope, []any{id})
	return scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`+where, args...))
}

func (r *postgresChallengeRepository) CreateApplication(ctx context.Context, startupID int64, in ApplicationInput) (Application, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO challenge_applications (challenge_id, startup_id, text_solution)
		VALUES ($1, $2, $3)
		RETURNING id`, in.ChallengeID, startupID, in.TextSolution).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Application{}, ErrAlreadyApplied
		}
		return Application{}, err
	}
	return r.GetApplication(ctx, Scope{}, id)
}

func (r *postgresChallengeRepository) DeleteApplication(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM challenge_applications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
