package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/config"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/utils"

	_ "github.com/lib/pq"
)

type Repository struct {
	DB     *sql.DB
	Review PrescriptionReviewRepository
}

func New(cfg *config.Config) (*Repository, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	ctx, cancel := utils.WithDBTimeout(context.Background())
	defer cancel()

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := NewWithDB(db)

	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func NewWithDB(db *sql.DB) *Repository {
	return &Repository{
		DB:     db,
		Review: NewPrescriptionReviewRepo(db),
	}
}

func (p *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, reviewSchema); err != nil {
		return fmt.Errorf("failed to create prescription_reviews table: %w", err)
	}

	return nil
}

func (p *Repository) Close() error {
	return p.DB.Close()
}
