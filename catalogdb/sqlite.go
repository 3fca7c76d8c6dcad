// Package catalogdb stores a unit catalog in SQLite so deployments can ship
// their own categories and factors without rebuilding.
package catalogdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"unitconv"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing handle and makes sure the schema exists.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			key TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT,
			icon TEXT,
			note TEXT,
			kind TEXT NOT NULL,
			rule TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS units (
			category_key TEXT NOT NULL,
			key TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT,
			to_base REAL,
			PRIMARY KEY (category_key, key)
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the stored catalog with cat.
func (s *Store) Save(ctx context.Context, cat *unitconv.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM units`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return err
	}
	for pos, key := range cat.Categories() {
		c, err := cat.Category(key)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO categories (key, position, name, icon, note, kind, rule) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.Key, pos, c.Name, c.Icon, c.Note, c.Kind().String(), c.RuleName())
		if err != nil {
			return fmt.Errorf("save category %s: %w", c.Key, err)
		}
		for upos, u := range c.Units {
			_, err := tx.ExecContext(ctx, `INSERT INTO units (category_key, key, position, name, to_base) VALUES (?, ?, ?, ?, ?)`,
				c.Key, u.Key, upos, u.Name, u.ToBase)
			if err != nil {
				return fmt.Errorf("save unit %s.%s: %w", c.Key, u.Key, err)
			}
		}
	}
	return tx.Commit()
}

type categoryRow struct {
	key, name, icon, note, kind, rule string
}

// Load reads the stored catalog and validates it.
func (s *Store) Load(ctx context.Context) (*unitconv.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, name, icon, note, kind, rule FROM categories ORDER BY position`)
	if err != nil {
		return nil, err
	}
	var heads []categoryRow
	for rows.Next() {
		var r categoryRow
		var name, icon, note, rule sql.NullString
		if err := rows.Scan(&r.key, &name, &icon, &note, &r.kind, &rule); err != nil {
			rows.Close()
			return nil, err
		}
		r.name, r.icon, r.note, r.rule = name.String, icon.String, note.String, rule.String
		heads = append(heads, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	cats := make([]unitconv.Category, 0, len(heads))
	for _, h := range heads {
		units, err := s.loadUnits(ctx, h.key)
		if err != nil {
			return nil, err
		}
		c, err := buildCategory(h, units)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return unitconv.NewCatalog(cats...)
}

func (s *Store) loadUnits(ctx context.Context, category string) ([]unitconv.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, name, to_base FROM units WHERE category_key = ? ORDER BY position`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []unitconv.Unit
	for rows.Next() {
		var u unitconv.Unit
		var name sql.NullString
		var toBase sql.NullFloat64
		if err := rows.Scan(&u.Key, &name, &toBase); err != nil {
			return nil, err
		}
		u.Name = name.String
		u.ToBase = toBase.Float64
		units = append(units, u)
	}
	return units, rows.Err()
}

func buildCategory(h categoryRow, units []unitconv.Unit) (unitconv.Category, error) {
	var c unitconv.Category
	switch h.kind {
	case unitconv.KindLinear.String():
		c = unitconv.Linear(h.key, h.name, units...)
	case unitconv.KindCustom.String():
		rule, err := unitconv.LookupRule(h.rule)
		if err != nil {
			return unitconv.Category{}, fmt.Errorf("category %s: %w", h.key, err)
		}
		c = unitconv.Custom(h.key, h.name, h.rule, rule, units...)
	default:
		return unitconv.Category{}, fmt.Errorf("%w: category %s has kind %q", unitconv.ErrInvalidCatalog, h.key, h.kind)
	}
	c.Icon = h.icon
	c.Note = h.note
	return c, nil
}
