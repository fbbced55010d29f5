// Package db wires the Postgres connection, runs embedded migrations, and
// hands out repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/chatline/authd/internal/migrations"
	"github.com/chatline/authd/internal/repositories/users"
)

type Manager struct {
	db    *sql.DB
	users users.Repository
}

func (m *Manager) Conn() *sql.DB {
	return m.db
}

func (m *Manager) Users() users.Repository {
	return m.users
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func (m *Manager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresManager(ctx context.Context, dsn string) (*Manager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &Manager{
		db:    db,
		users: users.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
