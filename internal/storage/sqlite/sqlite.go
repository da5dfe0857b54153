// Package sqlite implements the storage.Storage interface using SQLite.
//
// go-sqlite3 is a CGo driver that registers itself with database/sql as
// "sqlite3". sqlx wraps the *sql.DB so rows scan straight into structs,
// and squirrel builds the parameterised statements.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/types"
)

const usersTable = "users"

var userColumns = []string{"id", "name", "email", "age"}

// defaultUsers are inserted by Seed when the table is empty.
var defaultUsers = []types.User{
	{Name: "John Doe", Email: "john@example.com", Age: 30},
	{Name: "Jane Smith", Email: "jane@example.com", Age: 25},
	{Name: "Alice Johnson", Email: "alice@example.com", Age: 28},
	{Name: "Bob Brown", Email: "bob@example.com", Age: 35},
}

// SQLite holds the process-wide database handle.
//
// *sqlx.DB is a pool, not a single connection: every method below checks
// a connection out for the duration of one call (or one transaction) and
// returns it on every exit path.
type SQLite struct {
	Db *sqlx.DB
}

// compile-time check that *SQLite satisfies storage.Storage.
var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite file named by cfg.StoragePath and makes sure the
// users table exists.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows a single writer; one pooled connection serialises all
	// statements in-process instead of surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	s := &SQLite{Db: db}

	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// EnsureSchema creates the users table if it does not exist yet.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	_, err := s.Db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT    NOT NULL,
			email TEXT    NOT NULL UNIQUE,
			age   INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("EnsureSchema: create table: %w", err)
	}
	return nil
}

// Seed inserts the default users if, and only if, the table holds no rows.
// It returns how many rows it inserted.
func (s *SQLite) Seed(ctx context.Context) (int, error) {
	tx, err := s.Db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("Seed: begin: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Select("COUNT(*)").From(usersTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("Seed: build count: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("Seed: count: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	insert := sq.Insert(usersTable).Columns("name", "email", "age")
	for _, u := range defaultUsers {
		insert = insert.Values(u.Name, u.Email, u.Age)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("Seed: build insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("Seed: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("Seed: commit: %w", err)
	}

	return len(defaultUsers), nil
}

// EnsureSchemaAndSeed is the startup initializer: schema first, then the
// default rows when the table is empty. Safe to run on every start.
func (s *SQLite) EnsureSchemaAndSeed(ctx context.Context) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err := s.Seed(ctx)
	return err
}

func (s *SQLite) CreateUser(ctx context.Context, name, email string, age int) (int64, error) {
	query, args, err := sq.Insert(usersTable).
		Columns("name", "email", "age").
		Values(name, email, age).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("CreateUser: build: %w", err)
	}

	result, err := s.Db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("CreateUser: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateUser: last insert id: %w", err)
	}

	return lastID, nil
}

func (s *SQLite) GetUserByID(ctx context.Context, id int64) (types.User, error) {
	query, args, err := sq.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.User{}, fmt.Errorf("GetUserByID: build: %w", err)
	}

	var user types.User
	if err := s.Db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, storage.ErrNotFound
		}
		return types.User{}, fmt.Errorf("GetUserByID: get: %w", err)
	}

	return user, nil
}

// GetUsers applies no ORDER BY; rows come back in SQLite's natural order,
// which for this table is insertion order.
func (s *SQLite) GetUsers(ctx context.Context) ([]types.User, error) {
	query, args, err := sq.Select(userColumns...).From(usersTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("GetUsers: build: %w", err)
	}

	// Non-nil so an empty table encodes as [] rather than null.
	users := make([]types.User, 0)
	if err := s.Db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("GetUsers: select: %w", err)
	}

	return users, nil
}

// UpdateUserByID probes for the row, then issues one single-column UPDATE
// per non-zero field of upd. Probe and writes share a transaction, so a
// concurrent delete cannot land between them.
//
// Zero values are skipped on purpose: a request carrying "age": 0 leaves
// age untouched, exactly like a request that omits it.
func (s *SQLite) UpdateUserByID(ctx context.Context, id int64, upd types.UpdateUserRequest) error {
	tx, err := s.Db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("UpdateUserByID: begin: %w", err)
	}
	defer tx.Rollback()

	if err := probe(ctx, tx, id); err != nil {
		return err
	}

	var sets []map[string]any
	if upd.Name != "" {
		sets = append(sets, map[string]any{"name": upd.Name})
	}
	if upd.Email != "" {
		sets = append(sets, map[string]any{"email": upd.Email})
	}
	if upd.Age != 0 {
		sets = append(sets, map[string]any{"age": upd.Age})
	}

	for _, set := range sets {
		query, args, err := sq.Update(usersTable).
			SetMap(set).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("UpdateUserByID: build: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateEmail
			}
			return fmt.Errorf("UpdateUserByID: exec: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UpdateUserByID: commit: %w", err)
	}

	return nil
}

func (s *SQLite) DeleteUserByID(ctx context.Context, id int64) error {
	tx, err := s.Db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeleteUserByID: begin: %w", err)
	}
	defer tx.Rollback()

	if err := probe(ctx, tx, id); err != nil {
		return err
	}

	query, args, err := sq.Delete(usersTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("DeleteUserByID: build: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("DeleteUserByID: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("DeleteUserByID: commit: %w", err)
	}

	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}

// probe returns storage.ErrNotFound unless a user with id exists.
func probe(ctx context.Context, tx *sqlx.Tx, id int64) error {
	query, args, err := sq.Select("id").
		From(usersTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("probe: build: %w", err)
	}

	var found int64
	if err := tx.GetContext(ctx, &found, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("probe: get: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite rejecting a write on a
// UNIQUE column.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
