package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresDatastore struct {
	db   execer
	pool *pgxpool.Pool
}

func NewPostgresDatastore(ctx context.Context, databaseURL string) (*PostgresDatastore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("[persistence] failed to parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("[persistence] failed to create connection pool: %w", err)
	}
	return &PostgresDatastore{db: pool, pool: pool}, nil
}

func (p *PostgresDatastore) Update(ctx context.Context, table string, match Match, fields Fields) error {
	query, args, err := buildUpdate(table, match, fields)
	if err != nil {
		return err
	}
	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("[persistence] failed to update %s: %w", table, err)
	}
	return nil
}

func (p *PostgresDatastore) Insert(ctx context.Context, table string, fields Fields) error {
	query, args, err := buildInsert(table, fields)
	if err != nil {
		return err
	}
	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("[persistence] failed to insert into %s: %w", table, err)
	}
	return nil
}

func (p *PostgresDatastore) Ping(ctx context.Context) error {
	if p.pool == nil {
		return nil
	}
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("[persistence] failed to ping database: %w", err)
	}
	return nil
}

func (p *PostgresDatastore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func buildUpdate(table string, match Match, fields Fields) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("[persistence] %s: %w", table, ErrEmptyUpdate)
	}
	columns := fields.sortedColumns()
	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", pgx.Identifier{column}.Sanitize(), i+1))
		args = append(args, fields[column])
	}
	args = append(args, match.Value)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(assignments, ", "),
		pgx.Identifier{match.Column}.Sanitize(),
		len(args),
	)
	return query, args, nil
}

func buildInsert(table string, fields Fields) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("[persistence] %s: %w", table, ErrEmptyUpdate)
	}
	columns := fields.sortedColumns()
	quoted := make([]string, 0, len(columns))
	placeholders := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for i, column := range columns {
		quoted = append(quoted, pgx.Identifier{column}.Sanitize())
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, fields[column])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args, nil
}
