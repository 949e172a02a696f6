package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hubs-api/hubs-api/internal/config"
	"github.com/hubs-api/hubs-api/internal/hubs"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS hubs (
	id BIGSERIAL PRIMARY KEY,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore 基于 pgxpool。fields 以 text 形式读写，避免依赖 jsonb 的二进制编码。
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// OpenPostgres 建立连接池并确保 hubs 表存在。
func OpenPostgres(ctx context.Context, cfg config.StoreConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime.DurationValue()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create hubs table: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// Close 释放连接池。
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Find(ctx context.Context) ([]hubs.Hub, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, fields::text, created_at, updated_at FROM hubs ORDER BY id`)
	if err != nil {
		return nil, hubs.WrapError("find", err)
	}
	defer rows.Close()

	result := make([]hubs.Hub, 0)
	for rows.Next() {
		hub, err := scanPostgresHub(rows)
		if err != nil {
			return nil, hubs.WrapError("find", err)
		}
		result = append(result, *hub)
	}
	if err := rows.Err(); err != nil {
		return nil, hubs.WrapError("find", err)
	}
	return result, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, rawID string) (*hubs.Hub, error) {
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx, `SELECT id, fields::text, created_at, updated_at FROM hubs WHERE id = $1`, id)
	hub, err := scanPostgresHub(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, hubs.WrapError("findById", err)
	}
	return hub, nil
}

func (s *PostgresStore) Add(ctx context.Context, fields hubs.Fields) (*hubs.Hub, error) {
	hub := hubs.New(0, fields, s.now().Truncate(time.Microsecond))
	encoded, err := encodeFields(hub.Fields)
	if err != nil {
		return nil, hubs.WrapError("add", err)
	}

	query := `insert into hubs(fields, created_at, updated_at) values ($1::jsonb, $2, $3) returning id`
	if err := s.pool.QueryRow(ctx, query, encoded, hub.CreatedAt, hub.UpdatedAt).Scan(&hub.ID); err != nil {
		return nil, hubs.WrapError("add", err)
	}
	return &hub, nil
}

func (s *PostgresStore) Update(ctx context.Context, rawID string, fields hubs.Fields) (*hubs.Hub, error) {
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, hubs.WrapError("update", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT id, fields::text, created_at, updated_at FROM hubs WHERE id = $1 FOR UPDATE`, id)
	hub, err := scanPostgresHub(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, hubs.WrapError("update", err)
	}

	hub.Fields = hubs.Merge(hub.Fields, fields)
	hub.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)
	encoded, err := encodeFields(hub.Fields)
	if err != nil {
		return nil, hubs.WrapError("update", err)
	}
	if _, err := tx.Exec(ctx, `update hubs set fields = $1::jsonb, updated_at = $2 where id = $3`, encoded, hub.UpdatedAt, id); err != nil {
		return nil, hubs.WrapError("update", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, hubs.WrapError("update", err)
	}
	return hub, nil
}

func (s *PostgresStore) Remove(ctx context.Context, rawID string) (bool, error) {
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return false, nil
	}
	var tag pgconn.CommandTag
	tag, err := s.pool.Exec(ctx, `delete from hubs where id = $1`, id)
	if err != nil {
		return false, hubs.WrapError("remove", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPostgresHub(row pgx.Row) (*hubs.Hub, error) {
	var (
		hub hubs.Hub
		raw string
	)
	if err := row.Scan(&hub.ID, &raw, &hub.CreatedAt, &hub.UpdatedAt); err != nil {
		return nil, err
	}
	fields, err := decodeFields([]byte(raw))
	if err != nil {
		return nil, err
	}
	hub.Fields = fields
	hub.CreatedAt = hub.CreatedAt.UTC()
	hub.UpdatedAt = hub.UpdatedAt.UTC()
	return &hub, nil
}

var _ hubs.Database = (*PostgresStore)(nil)
