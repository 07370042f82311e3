// Command seed loads catalog fixtures and the first admin account into the
// database. Running it again skips rows that already exist.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/01moynul/inkframe-golang/internal/auth"
	"github.com/01moynul/inkframe-golang/internal/config"
	"github.com/01moynul/inkframe-golang/internal/database"
	"github.com/01moynul/inkframe-golang/internal/logger"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Fixtures struct {
	Admin           *AdminFixture    `yaml:"admin"`
	Products        []ProductFixture `yaml:"products"`
	Services        []ServiceFixture `yaml:"services"`
	Team            []TeamFixture    `yaml:"team"`
	PaymentSettings []PaymentFixture `yaml:"paymentSettings"`
}

type AdminFixture struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"fullName"`
	Password string `yaml:"password"`
}

type ProductFixture struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	ImageURL    string `yaml:"imageUrl"`
	Featured    bool   `yaml:"featured"`
}

type ServiceFixture struct {
	Name            string `yaml:"name"`
	Category        string `yaml:"category"`
	Description     string `yaml:"description"`
	PriceFrom       string `yaml:"priceFrom"`
	DurationMinutes int    `yaml:"durationMinutes"`
	Featured        bool   `yaml:"featured"`
}

type TeamFixture struct {
	Name     string `yaml:"name"`
	Position string `yaml:"position"`
	Bio      string `yaml:"bio"`
}

type PaymentFixture struct {
	Method       string `yaml:"method"`
	DisplayName  string `yaml:"displayName"`
	Instructions string `yaml:"instructions"`
}

// Summary counts what a run inserted and skipped.
type Summary struct {
	Inserted int
	Skipped  int
}

func (s *Summary) record(created bool) {
	if created {
		s.Inserted++
	} else {
		s.Skipped++
	}
}

func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// createOnce inserts item unless exists reports a match; a unique-key
// conflict also counts as already present.
func createOnce(exists func() (bool, error), create func() error) (bool, error) {
	found, err := exists()
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}
	if err := create(); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func Seed(ctx context.Context, st *store.Store, f *Fixtures) (Summary, error) {
	var sum Summary

	for _, p := range f.Products {
		price, err := models.NewMoney(p.Price)
		if err != nil {
			return sum, fmt.Errorf("product %q: %w", p.Name, err)
		}
		item := &models.Product{
			Name: p.Name, Category: p.Category, Description: p.Description, Price: price,
			ImageURL: optional(p.ImageURL), IsActive: true, IsFeatured: p.Featured,
		}
		item.Prepare()
		created, err := createOnce(func() (bool, error) {
			rows, err := st.Products().ListWhere(ctx, "slug = ?", []any{item.Slug})
			return len(rows) > 0, err
		}, func() error { return st.Products().Create(ctx, item) })
		if err != nil {
			return sum, fmt.Errorf("product %q: %w", p.Name, err)
		}
		sum.record(created)
	}

	for _, s := range f.Services {
		price, err := models.NewMoney(s.PriceFrom)
		if err != nil {
			return sum, fmt.Errorf("service %q: %w", s.Name, err)
		}
		item := &models.Service{
			Name: s.Name, Category: s.Category, Description: s.Description, PriceFrom: price,
			IsActive: true, IsFeatured: s.Featured,
		}
		if s.DurationMinutes > 0 {
			item.DurationMinutes = &s.DurationMinutes
		}
		item.Prepare()
		created, err := createOnce(func() (bool, error) {
			rows, err := st.Services().ListWhere(ctx, "slug = ?", []any{item.Slug})
			return len(rows) > 0, err
		}, func() error { return st.Services().Create(ctx, item) })
		if err != nil {
			return sum, fmt.Errorf("service %q: %w", s.Name, err)
		}
		sum.record(created)
	}

	for i, m := range f.Team {
		item := &models.TeamMember{Name: m.Name, Position: m.Position, Bio: m.Bio, SortOrder: i, IsActive: true}
		created, err := createOnce(func() (bool, error) {
			rows, err := st.Team().ListWhere(ctx, "name = ?", []any{item.Name})
			return len(rows) > 0, err
		}, func() error { return st.Team().Create(ctx, item) })
		if err != nil {
			return sum, fmt.Errorf("team member %q: %w", m.Name, err)
		}
		sum.record(created)
	}

	for i, p := range f.PaymentSettings {
		item := &models.PaymentSetting{
			Method: p.Method, DisplayName: p.DisplayName, Instructions: optional(p.Instructions),
			IsActive: true, SortOrder: i,
		}
		created, err := createOnce(func() (bool, error) {
			rows, err := st.PaymentSettings().ListWhere(ctx, "method = ?", []any{item.Method})
			return len(rows) > 0, err
		}, func() error { return st.PaymentSettings().Create(ctx, item) })
		if err != nil {
			return sum, fmt.Errorf("payment setting %q: %w", p.Method, err)
		}
		sum.record(created)
	}

	if f.Admin != nil && f.Admin.Email != "" {
		created, err := seedAdmin(ctx, st, f.Admin)
		if err != nil {
			return sum, err
		}
		sum.record(created)
	}
	return sum, nil
}

// seedAdmin creates the admin account. SEED_ADMIN_PASSWORD overrides the
// fixture so real passwords stay out of the file.
func seedAdmin(ctx context.Context, st *store.Store, a *AdminFixture) (bool, error) {
	password := a.Password
	if env := os.Getenv("SEED_ADMIN_PASSWORD"); env != "" {
		password = env
	}
	if len(password) < 8 {
		return false, errors.New("admin password must be at least 8 characters")
	}

	return createOnce(func() (bool, error) {
		_, err := st.GetUserByEmail(ctx, a.Email)
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}, func() error {
		var pw auth.Password
		if err := pw.Set(password); err != nil {
			return err
		}
		return st.CreateUser(ctx, &models.User{
			Role:         models.RoleAdmin,
			Email:        a.Email,
			FullName:     a.FullName,
			PasswordHash: &pw.Hash,
		})
	})
}

func main() {
	path := flag.String("fixtures", "cmd/seed/fixtures.yaml", "path to the YAML fixture file")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.AppEnv)

	fixtures, err := LoadFixtures(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load fixtures")
	}

	ctx := context.Background()
	db, err := database.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	sum, err := Seed(ctx, store.New(db), fixtures)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("inserted", sum.Inserted).Int("skipped", sum.Skipped).Msg("seed complete")
}
