// Package seed creates demo data for local environments.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/db"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
	"github.com/aquilesbailo123/Raven-backend/pkg/users"
)

const DemoPassword = "password123"

type DemoMember struct {
	Name string
	Role string
}

type DemoIncubator struct {
	Name        string
	EmailPrefix string
	Members     []DemoMember
}

var DemoIncubators = []DemoIncubator{
	{
		Name:        "TechStars",
		EmailPrefix: "techstars",
		Members: []DemoMember{
			{"David Cohen", incubators.RoleInvestor},
			{"Brad Feld", incubators.RoleMentor},
			{"Nicole Glaros", incubators.RoleBoth},
		},
	},
	{
		Name:        "Y Combinator",
		EmailPrefix: "ycombinator",
		Members: []DemoMember{
			{"Paul Graham", incubators.RoleInvestor},
			{"Jessica Livingston", incubators.RoleMentor},
			{"Sam Altman", incubators.RoleInvestor},
		},
	},
	{
		Name:        "500startups",
		EmailPrefix: "500startups",
	},
}

// Report counts what a run created; a second run reports zeros.
type Report struct {
	Users      int
	Incubators int
	Members    int
}

func (d DemoIncubator) OwnerEmail() string {
	return "admin@" + d.EmailPrefix + ".com"
}

func (m DemoMember) Email(prefix string) string {
	return strings.ToLower(strings.ReplaceAll(m.Name, " ", ".")) + "@" + prefix + ".com"
}

// Incubators creates the demo incubator accounts and their members. Existing
// records are left as they are, so running it twice is harmless.
func Incubators(ctx context.Context, pool db.TxBeginner, log *zap.Logger) (Report, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return Report{}, fmt.Errorf("hash demo password: %w", err)
	}

	var report Report
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		userRepo := users.NewPostgresUserRepository(tx)
		incubatorRepo := incubators.NewPostgresIncubatorRepository(tx)

		for _, demo := range DemoIncubators {
			if err := seedIncubator(ctx, userRepo, incubatorRepo, demo, string(hash), &report, log); err != nil {
				return fmt.Errorf("seed %s: %w", demo.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

func seedIncubator(ctx context.Context, userRepo users.UserRepository, incubatorRepo incubators.IncubatorRepository,
	demo DemoIncubator, hash string, report *Report, log *zap.Logger) error {
	email := demo.OwnerEmail()

	u, err := userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		u, err = userRepo.CreateUser(ctx, uuid.NewString(), email, hash, auth.UserTypeIncubator)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := userRepo.UpdateVerifiedAtByEmail(ctx, email, time.Now()); err != nil {
			return fmt.Errorf("verify user: %w", err)
		}
		report.Users++
		log.Info("demo user created", zap.String("email", email))
	case err != nil:
		return fmt.Errorf("get user: %w", err)
	case u.UserType != auth.UserTypeIncubator:
		return fmt.Errorf("%s is already registered as a %s account", email, u.UserType)
	default:
		log.Info("demo user already exists", zap.String("email", email))
	}

	inc, created, err := incubatorRepo.GetOrCreateByUserID(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("get or create incubator: %w", err)
	}
	if created {
		report.Incubators++
	}
	if inc.Name != demo.Name {
		if _, err := incubatorRepo.UpdateProfile(ctx, inc.ID, incubators.ProfileInput{Name: demo.Name}, true); err != nil {
			return fmt.Errorf("name incubator: %w", err)
		}
	}

	existing, err := incubatorRepo.ListMembers(ctx, inc.ID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		known[strings.ToLower(m.Email)] = true
	}

	for _, m := range demo.Members {
		memberEmail := m.Email(demo.EmailPrefix)
		if known[memberEmail] {
			continue
		}
		phone := fmt.Sprintf("+1-555-%d", 1000+rand.IntN(9000))
		_, err := incubatorRepo.CreateMember(ctx, inc.ID, incubators.MemberInput{
			FullName: m.Name,
			Email:    memberEmail,
			Phone:    &phone,
			Role:     m.Role,
		})
		if err != nil {
			return fmt.Errorf("create member %s: %w", m.Name, err)
		}
		report.Members++
	}
	log.Info("demo incubator ready", zap.String("name", demo.Name), zap.Int64("incubator_id", inc.ID))
	return nil
}
