// Command seed loads a sample catalog into the pokemart database. Run with
// -destroy to wipe orders, reviews, products and users instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/martinmiralles/mar-pokemart/internal/config"
	"github.com/martinmiralles/mar-pokemart/internal/domain"
	"github.com/martinmiralles/mar-pokemart/internal/repository/postgres"
	"github.com/martinmiralles/mar-pokemart/migrations"
	"github.com/martinmiralles/mar-pokemart/pkg/database"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
	"github.com/martinmiralles/mar-pokemart/pkg/logger"
	"github.com/martinmiralles/mar-pokemart/pkg/slug"
)

func main() {
	destroy := flag.Bool("destroy", false, "delete all seeded and user data instead of importing")
	password := flag.String("password", envOr("SEED_PASSWORD", "pokemart123"), "password for every seeded account")
	flag.Parse()

	if err := run(*destroy, *password); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(destroy bool, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Options{Service: "pokemart-seed", Level: cfg.LogLevel, Format: logger.FormatPretty})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{URL: cfg.DatabaseURL}, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if destroy {
		if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, product_reviews, products, users`); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		log.Info("data destroyed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	now := time.Now().UTC()

	var created, skipped int
	for i, u := range users {
		if _, err := userRepo.GetByEmail(ctx, u.email); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("look up user %s: %w", u.email, err)
		}

		err := userRepo.Create(ctx, &domain.User{
			ID:           seedID("user", i),
			Name:         u.name,
			Email:        u.email,
			PasswordHash: string(hash),
			IsAdmin:      u.isAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		created++
	}
	log.Info("users seeded", slog.Int("created", created), slog.Int("skipped", skipped))

	// Every product belongs to the first admin.
	owner := seedID("user", 0)
	created, skipped = 0, 0
	for i, p := range products {
		id := seedID("product", i)
		if _, err := productRepo.GetByID(ctx, id); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("look up product %s: %w", p.name, err)
		}

		err := productRepo.Create(ctx, &domain.Product{
			ID:           id,
			UserID:       owner,
			Name:         p.name,
			Slug:         slug.Generate(p.name),
			Image:        "/images/" + slug.Generate(p.name) + ".png",
			Brand:        p.brand,
			Category:     p.category,
			Description:  p.description,
			Price:        p.price,
			CountInStock: p.stock,
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create product %s: %w", p.name, err)
		}
		created++
	}
	log.Info("products seeded", slog.Int("created", created), slog.Int("skipped", skipped))

	return nil
}
