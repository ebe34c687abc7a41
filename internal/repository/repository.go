package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"partsrfq/internal/config"
	"partsrfq/internal/models"

	postgres "partsrfq/internal/repository/db"
)

type Repository struct {
	db  *sql.DB
	cfg *config.PostgresConfig
}

func NewRepository(db *sql.DB, cfg *config.PostgresConfig) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  db,
		cfg: cfg,
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = postgres.NewPostgresDB(repo.cfg)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open postgres db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp == "true" {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (repo *Repository) MigrateUp() error {
	err := postgres.MigrateUp(repo.db, repo.cfg.MigrationsURL)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	err := postgres.MigrateDown(repo.db, repo.cfg.MigrationsURL)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown == "true" {
		migErr = repo.MigrateDown()
	}

	err := repo.db.Close()
	return errors.Join(migErr, err)
}

// BeginTx starts the transaction that multi-row engine operations run under.
func (repo *Repository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.BeginTx: %w", err)
	}
	return tx, nil
}

//// Users

func (repo *Repository) UserByUsername(ctx context.Context, username string) (models.User, bool, error) {
	var user models.User
	query := `
	SELECT
		id,
		username,
		first_name,
		last_name,
		created_at,
		updated_at
	FROM employee
	WHERE username = $1
	LIMIT 1
	`
	row := repo.db.QueryRowContext(ctx, query, username)
	err := row.Scan(&user.Id, &user.Username, &user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user, false, nil
	} else if err != nil {
		return user, false, fmt.Errorf("repository.Repository.UserByUsername: %w", err)
	}

	return user, true, nil
}

func (repo *Repository) AddUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
	INSERT INTO employee (username, first_name, last_name)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`
	row := repo.db.QueryRowContext(ctx, query, user.Username, user.FirstName, user.LastName)
	err := row.Scan(&user.Id, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return user, fmt.Errorf("repository.Repository.AddUser: %w", err)
	}
	return user, nil
}

//// Service

// querier is satisfied by both *sql.DB and *sql.Tx; repository methods that
// may run inside a caller's transaction pick their executor through q.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (repo *Repository) q(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return repo.db
}

func wrapRollbackErr(tx *sql.Tx, err error) error {
	rollerr := tx.Rollback()
	if rollerr == nil {
		return err
	}
	return fmt.Errorf("failed to rollback transaction after previous error: %w, %w", rollerr, err)
}

func sliceToSQLList[T ~string](t []T) string {
	parts := make([]string, 0, len(t))
	for _, v := range t {
		parts = append(parts, string(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

//// Test utils

func (repo *Repository) TestGetDB() *sql.DB {
	return repo.db
}
