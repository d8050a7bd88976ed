package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS appliances (
	id             TEXT PRIMARY KEY,
	position       INTEGER NOT NULL,
	reference      TEXT NOT NULL,
	commercial_ref TEXT NOT NULL DEFAULT '',
	brand          TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT '',
	date_added     TEXT NOT NULL DEFAULT '',
	last_updated   TEXT
);
CREATE INDEX IF NOT EXISTS idx_appliances_reference ON appliances(reference);

CREATE TABLE IF NOT EXISTS associations (
	id              TEXT PRIMARY KEY,
	position        INTEGER NOT NULL,
	appliance_id    TEXT NOT NULL,
	part_reference  TEXT NOT NULL,
	date_associated TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_associations_appliance ON associations(appliance_id);

CREATE TABLE IF NOT EXISTS part_references (
	ref      TEXT PRIMARY KEY,
	position INTEGER NOT NULL
);
`

// Store: хранилище инвентаря в SQLite. Save* заменяют коллекцию целиком
// в одной транзакции (семантика key-value: ключ = коллекция).
type Store struct {
	conn *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open открывает (или создаёт) базу и инициализирует схему.
// ":memory:": база в памяти, удобно для тестов.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// один писатель; для ":memory:" ещё и единственная база на соединение
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) LoadAppliances(ctx context.Context) ([]model.Appliance, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, reference, commercial_ref, brand, type, date_added, last_updated
		FROM appliances ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query appliances: %w", err)
	}
	defer rows.Close()

	out := make([]model.Appliance, 0)
	for rows.Next() {
		var a model.Appliance
		var lastUpdated sql.NullString
		if err := rows.Scan(&a.ID, &a.Reference, &a.CommercialRef, &a.Brand, &a.Type, &a.DateAdded, &lastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan appliance: %w", err)
		}
		if lastUpdated.Valid && lastUpdated.String != "" {
			ts, err := time.Parse(time.RFC3339Nano, lastUpdated.String)
			if err != nil {
				return nil, fmt.Errorf("appliance %s: bad last_updated: %w", a.ID, err)
			}
			a.LastUpdated = &ts
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SaveAppliances(ctx context.Context, items []model.Appliance) error {
	return s.replace(ctx, "appliances", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO appliances (id, position, reference, commercial_ref, brand, type, date_added, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, a := range items {
			var lastUpdated any
			if a.LastUpdated != nil {
				lastUpdated = a.LastUpdated.UTC().Format(time.RFC3339Nano)
			}
			if _, err := stmt.ExecContext(ctx, a.ID, i, a.Reference, a.CommercialRef, a.Brand, a.Type, a.DateAdded, lastUpdated); err != nil {
				return fmt.Errorf("insert appliance %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteAppliance(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM appliances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appliance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ClearAll(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM associations; DELETE FROM appliances; DELETE FROM part_references;`)
	if err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	return nil
}

func (s *Store) LoadAssociations(ctx context.Context) ([]model.AppliancePartAssociation, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, appliance_id, part_reference, date_associated
		FROM associations ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query associations: %w", err)
	}
	defer rows.Close()

	out := make([]model.AppliancePartAssociation, 0)
	for rows.Next() {
		var a model.AppliancePartAssociation
		var ts string
		if err := rows.Scan(&a.ID, &a.ApplianceID, &a.PartReference, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan association: %w", err)
		}
		if a.DateAssociated, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("association %s: bad date_associated: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SaveAssociations(ctx context.Context, items []model.AppliancePartAssociation) error {
	return s.replace(ctx, "associations", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO associations (id, position, appliance_id, part_reference, date_associated)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, a := range items {
			if _, err := stmt.ExecContext(ctx, a.ID, i, a.ApplianceID, a.PartReference, a.DateAssociated.UTC().Format(time.RFC3339Nano)); err != nil {
				return fmt.Errorf("insert association %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) LoadPartReferences(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT ref FROM part_references ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query part references: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan part reference: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *Store) SavePartReferences(ctx context.Context, refs []string) error {
	return s.replace(ctx, "part_references", func(tx *sql.Tx) error {
		for i, r := range refs {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO part_references (ref, position) VALUES (?, ?)`, r, i); err != nil {
				return fmt.Errorf("insert part reference %q: %w", r, err)
			}
		}
		return nil
	})
}

// replace: очистить таблицу и записать заново в одной транзакции.
func (s *Store) replace(ctx context.Context, table string, fill func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}
