package gadget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Repository defines the interface for gadget persistence.
type Repository interface {
	Create(ctx context.Context, g *Gadget) error
	Get(ctx context.Context, id int64) (*Gadget, error)
	List(ctx context.Context, filter *Status) ([]Gadget, error)
	Update(ctx context.Context, id int64, u Update) (*Gadget, error)
	Retire(ctx context.Context, id int64, at time.Time) (*Gadget, error)
	SetStatus(ctx context.Context, id int64, status Status) (*Gadget, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed gadget repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const gadgetColumns = "id, name, status, decommissioned_at"

// Create inserts g and fills in its ID. A zero DecommissionedAt defaults to now.
func (r *SQLiteRepository) Create(ctx context.Context, g *Gadget) error {
	if g.DecommissionedAt.IsZero() {
		g.DecommissionedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO gadgets (name, status, decommissioned_at) VALUES (?, ?, ?)`,
		g.Name, string(g.Status), g.DecommissionedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting gadget: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading gadget id: %w", err)
	}
	g.ID = id
	return nil
}

// Get retrieves a gadget by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Gadget, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+gadgetColumns+" FROM gadgets WHERE id = ?", id)
	g, err := scanGadget(row)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// List returns gadgets ordered by ID, optionally restricted to one status.
func (r *SQLiteRepository) List(ctx context.Context, filter *Status) ([]Gadget, error) {
	query := "SELECT " + gadgetColumns + " FROM gadgets"
	var args []any
	if filter != nil {
		query += " WHERE status = ?"
		args = append(args, string(*filter))
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying gadgets: %w", err)
	}
	defer rows.Close()

	gadgets := []Gadget{}
	for rows.Next() {
		g, err := scanGadget(rows)
		if err != nil {
			return nil, err
		}
		gadgets = append(gadgets, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gadgets: %w", err)
	}
	return gadgets, nil
}

// Update applies the non-nil fields of u and returns the stored row.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, u Update) (*Gadget, error) {
	if u.IsEmpty() {
		return r.Get(ctx, id)
	}

	var sets []string
	var args []any
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*u.Status))
	}
	args = append(args, id)

	query := "UPDATE gadgets SET " + strings.Join(sets, ", ") + " WHERE id = ?" //nolint:gosec // column names are fixed
	if err := r.exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("updating gadget: %w", err)
	}
	return r.Get(ctx, id)
}

// Retire marks the gadget Decommissioned and stamps decommissioned_at.
// The stored timestamp never moves backwards.
func (r *SQLiteRepository) Retire(ctx context.Context, id int64, at time.Time) (*Gadget, error) {
	err := r.exec(ctx,
		`UPDATE gadgets SET status = ?, decommissioned_at = MAX(decommissioned_at, ?) WHERE id = ?`,
		string(StatusDecommissioned), at.UTC().Format(timeFormat), id,
	)
	if err != nil {
		return nil, fmt.Errorf("retiring gadget: %w", err)
	}
	return r.Get(ctx, id)
}

// SetStatus overwrites the status of a gadget.
func (r *SQLiteRepository) SetStatus(ctx context.Context, id int64, status Status) (*Gadget, error) {
	if err := r.exec(ctx, `UPDATE gadgets SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return nil, fmt.Errorf("setting gadget status: %w", err)
	}
	return r.Get(ctx, id)
}

// exec runs a single-row UPDATE and maps zero affected rows to ErrGadgetNotFound.
func (r *SQLiteRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrGadgetNotFound
	}
	return nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanGadget(s scanner) (*Gadget, error) {
	var g Gadget
	var status, decommissionedAt string

	if err := s.Scan(&g.ID, &g.Name, &status, &decommissionedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGadgetNotFound
		}
		return nil, fmt.Errorf("scanning gadget: %w", err)
	}

	g.Status = Status(status)
	t, err := time.Parse(timeFormat, decommissionedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing decommissioned_at %q: %w", decommissionedAt, err)
	}
	g.DecommissionedAt = t.UTC()
	return &g, nil
}
