package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/hubs-api/hubs-api/internal/config"
	"github.com/hubs-api/hubs-api/internal/hubs"
)

const mysqlSchema = `CREATE TABLE IF NOT EXISTS hubs (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	fields JSON NOT NULL,
	created_at DATETIME(3) NOT NULL,
	updated_at DATETIME(3) NOT NULL
)`

// MySQLStore 基于 database/sql 与 go-sql-driver/mysql。
type MySQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// mysqlConfig 解析 DSN 并强制 parseTime/UTC，保证时间列可直接扫描为 time.Time。
func mysqlConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg, nil
}

// OpenMySQL 建立连接池、探活并确保 hubs 表存在。
func OpenMySQL(ctx context.Context, cfg config.StoreConfig) (*MySQLStore, error) {
	mcfg, err := mysqlConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime.DurationValue())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create hubs table: %w", err)
	}
	return &MySQLStore{db: db, now: time.Now}, nil
}

// Close 释放连接池。
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) Find(ctx context.Context) ([]hubs.Hub, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, fields, created_at, updated_at FROM hubs ORDER BY id`)
	if err != nil {
		return nil, hubs.WrapError("find", err)
	}
	defer rows.Close()

	result := make([]hubs.Hub, 0)
	for rows.Next() {
		hub, err := scanMySQLHub(rows)
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

func (s *MySQLStore) FindByID(ctx context.Context, rawID string) (*hubs.Hub, error) {
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, fields, created_at, updated_at FROM hubs WHERE id = ?`, id)
	hub, err := scanMySQLHub(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, hubs.WrapError("findById", err)
	}
	return hub, nil
}

func (s *MySQLStore) Add(ctx context.Context, fields hubs.Fields) (*hubs.Hub, error) {
	hub := hubs.New(0, fields, s.now().Truncate(time.Millisecond))
	encoded, err := encodeFields(hub.Fields)
	if err != nil {
		return nil, hubs.WrapError("add", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO hubs (fields, created_at, updated_at) VALUES (?, ?, ?)`,
		encoded, hub.CreatedAt, hub.UpdatedAt)
	if err != nil {
		return nil, hubs.WrapError("add", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, hubs.WrapError("add", err)
	}
	hub.ID = id
	return &hub, nil
}

func (s *MySQLStore) Update(ctx context.Context, rawID string, fields hubs.Fields) (*hubs.Hub, error) {
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, hubs.WrapError("update", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT id, fields, created_at, updated_at FROM hubs WHERE id = ? FOR UPDATE`, id)
	hub, err := scanMySQLHub(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, hubs.WrapError("update", err)
	}

	hub.Fields = hubs.Merge(hub.Fields, fields)
	hub.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	encoded, err := encodeFields(hub.Fields)
	if err != nil {
		return nil, hubs.WrapError("update", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE hubs SET fields = ?, updated_at = ? WHERE id = ?`, encoded, hub.UpdatedAt, id); err != nil {
		return nil, hubs.WrapError("update", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, hubs.WrapError("update", err)
	}
	return hub, nil
}

func (s *MySQLStore) Remove(ctx context.Context, rawID string) (bool, error) {
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM hubs WHERE id = ?`, id)
	if err != nil {
		return false, hubs.WrapError("remove", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, hubs.WrapError("remove", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLHub(row rowScanner) (*hubs.Hub, error) {
	var (
		hub hubs.Hub
		raw []byte
	)
	if err := row.Scan(&hub.ID, &raw, &hub.CreatedAt, &hub.UpdatedAt); err != nil {
		return nil, err
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	hub.Fields = fields
	hub.CreatedAt = hub.CreatedAt.UTC()
	hub.UpdatedAt = hub.UpdatedAt.UTC()
	return &hub, nil
}

var _ hubs.Database = (*MySQLStore)(nil)
