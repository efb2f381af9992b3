// Package mockapi is a development backend for the Other Master endpoints.
package mockapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Ruturaj2003/r-L-Tech/internal/othermaster"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("a master with this type and name already exists")
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS master_types (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS other_masters (
		m_trans_no INTEGER PRIMARY KEY AUTOINCREMENT,
		subsc_id INTEGER NOT NULL,
		master_type TEXT NOT NULL,
		master_name TEXT NOT NULL,
		lock_status TEXT NOT NULL DEFAULT 'N',
		created_by INTEGER NOT NULL,
		created_on TEXT NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		delete_reason TEXT,
		deleted_by INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_other_masters_scope ON other_masters(subsc_id, deleted)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS master_types (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS other_masters (
		m_trans_no SERIAL PRIMARY KEY,
		subsc_id INTEGER NOT NULL,
		master_type TEXT NOT NULL,
		master_name TEXT NOT NULL,
		lock_status TEXT NOT NULL DEFAULT 'N',
		created_by INTEGER NOT NULL,
		created_on TEXT NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		delete_reason TEXT,
		deleted_by INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_other_masters_scope ON other_masters(subsc_id, deleted)`,
}

// Store keeps masters in SQLite or PostgreSQL. Deletes are soft: the row
// keeps the reason and the deleting user.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to dsn with driver. An in-memory SQLite database is limited
// to one connection so every query sees the same data.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return NewStore(db, driver), nil
}

func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver, now: time.Now}
}

func (s *Store) Close() error { return s.db.Close() }

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if s.driver == DriverPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Seed fills an empty scope with sample data.
func (s *Store) Seed(ctx context.Context, scopeID, userID int) error {
	var n int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM other_masters WHERE subsc_id = ?`), scopeID).Scan(&n); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, name := range []string{"Logistics", "Finance", "Inventory", othermaster.DeleteReasonType} {
		if err := s.AddMasterType(ctx, name); err != nil {
			return err
		}
	}
	samples := []struct{ typ, name, lock string }{
		{"Logistics", "Freight", "Y"},
		{"Logistics", "Courier", "Y"},
		{"Finance", "Tax Code", "Y"},
		{"Finance", "Task Group", "N"},
		{"Inventory", "Warehouse", "Y"},
		{othermaster.DeleteReasonType, "Duplicate entry", "Y"},
		{othermaster.DeleteReasonType, "Created by mistake", "Y"},
		{othermaster.DeleteReasonType, "No longer used", "Y"},
	}
	for _, sm := range samples {
		_, err := s.Save(ctx, othermaster.UpsertRequest{
			MasterType: sm.typ,
			MasterName: sm.name,
			LockStatus: sm.lock,
			CreatedBy:  userID,
			SubscID:    scopeID,
			Status:     "Insert",
		})
		if err != nil {
			return fmt.Errorf("seed %s/%s: %w", sm.typ, sm.name, err)
		}
	}
	return nil
}

func (s *Store) AddMasterType(ctx context.Context, name string) error {
	q := `INSERT INTO master_types (name) VALUES (?) ON CONFLICT (name) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, s.rebind(q), name); err != nil {
		return fmt.Errorf("add master type: %w", err)
	}
	return nil
}

func (s *Store) MasterTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM master_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("master types: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

const selectMaster = `SELECT m_trans_no, master_type, master_name, lock_status FROM other_masters`

func (s *Store) List(ctx context.Context, scopeID int) ([]othermaster.Master, error) {
	return s.query(ctx, selectMaster+` WHERE subsc_id = ? AND deleted = 0 ORDER BY m_trans_no`, scopeID)
}

// Load lists the masters of one type in a scope.
func (s *Store) Load(ctx context.Context, masterType string, scopeID int) ([]othermaster.Master, error) {
	return s.query(ctx, selectMaster+` WHERE master_type = ? AND subsc_id = ? AND deleted = 0 ORDER BY m_trans_no`, masterType, scopeID)
}

func (s *Store) Get(ctx context.Context, id int) (othermaster.Master, error) {
	rows, err := s.query(ctx, selectMaster+` WHERE m_trans_no = ? AND deleted = 0`, id)
	if err != nil {
		return othermaster.Master{}, err
	}
	if len(rows) == 0 {
		return othermaster.Master{}, ErrNotFound
	}
	return rows[0], nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]othermaster.Master, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query masters: %w", err)
	}
	defer rows.Close()
	out := []othermaster.Master{}
	for rows.Next() {
		var m othermaster.Master
		if err := rows.Scan(&m.TransNo, &m.MasterType, &m.MasterName, &m.Status); err != nil {
			return nil, fmt.Errorf("scan master: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Save inserts or updates according to req.Status and returns the row id.
func (s *Store) Save(ctx context.Context, req othermaster.UpsertRequest) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var clash int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM other_masters
		WHERE subsc_id = ? AND master_type = ? AND LOWER(master_name) = LOWER(?) AND deleted = 0 AND m_trans_no <> ?`),
		req.SubscID, req.MasterType, req.MasterName, req.TransNo).Scan(&clash)
	if err != nil {
		return 0, fmt.Errorf("check duplicate: %w", err)
	}
	if clash > 0 {
		return 0, ErrDuplicate
	}

	createdOn := req.CreatedOn
	if createdOn == "" {
		createdOn = s.now().UTC().Format(time.RFC3339)
	}

	var id int
	switch req.Status {
	case "Insert":
		err = tx.QueryRowContext(ctx, s.rebind(`INSERT INTO other_masters
			(subsc_id, master_type, master_name, lock_status, created_by, created_on)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING m_trans_no`),
			req.SubscID, req.MasterType, req.MasterName, req.LockStatus, req.CreatedBy, createdOn).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert master: %w", err)
		}
	case "Update":
		res, err := tx.ExecContext(ctx, s.rebind(`UPDATE other_masters
			SET master_type = ?, master_name = ?, lock_status = ?
			WHERE m_trans_no = ? AND subsc_id = ? AND deleted = 0`),
			req.MasterType, req.MasterName, req.LockStatus, req.TransNo, req.SubscID)
		if err != nil {
			return 0, fmt.Errorf("update master: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, ErrNotFound
		}
		id = req.TransNo
	default:
		return 0, fmt.Errorf("unknown save status %q", req.Status)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, id, userNo int, reason string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE other_masters
		SET deleted = 1, delete_reason = ?, deleted_by = ?
		WHERE m_trans_no = ? AND deleted = 0`), reason, userNo, id)
	if err != nil {
		return fmt.Errorf("delete master: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
