package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/paklijst/internal/db"
	"github.com/erazemk/paklijst/internal/model"
)

const itemColumns = `id, name, category, packed, deleted, notes, packed_at, history`

// SQLBackend stores items in a relational items table keyed by owner.
type SQLBackend struct {
	DB     *sql.DB
	Driver string
}

// NewSQLBackend wraps an open database. The schema must already exist.
func NewSQLBackend(database *sql.DB, driver string) *SQLBackend {
	return &SQLBackend{DB: database, Driver: driver}
}

// Items returns all items of an owner, deleted ones included.
func (b *SQLBackend) Items(ctx context.Context, owner string) ([]model.Item, error) {
	rows, err := b.DB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner = ? ORDER BY id`, owner,
	)
	if err != nil {
		return nil, ioError("listing items", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, ioError("scanning item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, ioError("listing items", err)
	}
	return items, nil
}

// Item returns a single item by id.
func (b *SQLBackend) Item(ctx context.Context, owner string, id int64) (*model.Item, error) {
	item, err := scanItem(b.DB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner = ? AND id = ?`, owner, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, ioError("getting item", err)
	}
	return item, nil
}

// Insert creates a new item.
func (b *SQLBackend) Insert(ctx context.Context, owner string, item model.Item) (*model.Item, error) {
	result, err := b.DB.ExecContext(ctx,
		`INSERT INTO items (owner, name, category, packed, deleted, notes, packed_at, history)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		owner, item.Name, item.Category, item.Packed, item.Deleted, item.Notes, nullTime(item.PackedAt), item.History,
	)
	if err != nil {
		return nil, ioError("creating item", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, ioError("getting item id", err)
	}

	return b.Item(ctx, owner, id)
}

// Update reads, modifies and writes an item inside one transaction.
func (b *SQLBackend) Update(ctx context.Context, owner string, id int64, fn func(*model.Item)) (*model.Item, error) {
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, ioError("beginning transaction", err)
	}
	defer tx.Rollback()

	item, err := scanItem(tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner = ? AND id = ?`+b.forUpdate(), owner, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, ioError("getting item", err)
	}

	fn(item)

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, packed = ?, deleted = ?, notes = ?, packed_at = ?, history = ?
		 WHERE owner = ? AND id = ?`,
		item.Name, item.Category, item.Packed, item.Deleted, item.Notes, nullTime(item.PackedAt), item.History,
		owner, id,
	)
	if err != nil {
		return nil, ioError("updating item", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, ioError("committing item update", err)
	}
	return item, nil
}

// UnpackAll clears the packed flag of every live item in one transaction.
func (b *SQLBackend) UnpackAll(ctx context.Context, owner string, at time.Time) (int, error) {
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, ioError("beginning transaction", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, history FROM items WHERE owner = ? AND packed = ? AND deleted = ?`+b.forUpdate(),
		owner, true, false,
	)
	if err != nil {
		return 0, ioError("listing packed items", err)
	}

	type packed struct {
		id      int64
		name    string
		history string
	}
	var items []packed
	for rows.Next() {
		var p packed
		if err := rows.Scan(&p.id, &p.name, &p.history); err != nil {
			rows.Close()
			return 0, ioError("scanning packed item", err)
		}
		items = append(items, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, ioError("listing packed items", err)
	}

	for _, p := range items {
		_, err := tx.ExecContext(ctx,
			`UPDATE items SET packed = ?, packed_at = NULL, history = ? WHERE owner = ? AND id = ?`,
			false, p.history+model.HistoryLine(at, false, p.name), owner, p.id,
		)
		if err != nil {
			return 0, ioError("unpacking item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, ioError("committing unpack", err)
	}
	return len(items), nil
}

// Replace deletes the owner's items and inserts the new set in a single
// transaction, so a failure leaves the previous list untouched.
func (b *SQLBackend) Replace(ctx context.Context, owner string, items []model.Item) error {
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return ioError("beginning transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE owner = ?`, owner); err != nil {
		return ioError("clearing items", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO items (owner, name, category, packed, deleted, notes, packed_at, history)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return ioError("preparing insert", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx,
			owner, item.Name, item.Category, item.Packed, item.Deleted, item.Notes, nullTime(item.PackedAt), item.History,
		)
		if err != nil {
			return ioError("inserting item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ioError("committing replace", err)
	}
	return nil
}

// Close closes the database.
func (b *SQLBackend) Close() error {
	return b.DB.Close()
}

// forUpdate returns the row locking clause, which SQLite does not support
// (its transactions already lock the whole database).
func (b *SQLBackend) forUpdate() string {
	if b.Driver == db.DriverMySQL {
		return ` FOR UPDATE`
	}
	return ""
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var packedAt sql.NullTime
	var notes, history sql.NullString
	if err := s.Scan(&item.ID, &item.Name, &item.Category, &item.Packed, &item.Deleted, &notes, &packedAt, &history); err != nil {
		return nil, err
	}
	item.Notes = notes.String
	item.History = history.String
	if packedAt.Valid {
		t := packedAt.Time
		item.PackedAt = &t
	}
	return item, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
