package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/storage/sqlite"
	"github.com/aanand-mishra/users-api/internal/types"
)

var seedUsers = []types.User{
	{ID: 1, Name: "John Doe", Email: "john@example.com", Age: 30},
	{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Age: 25},
	{ID: 3, Name: "Alice Johnson", Email: "alice@example.com", Age: 28},
	{ID: 4, Name: "Bob Brown", Email: "bob@example.com", Age: 35},
}

func newTestDB(t *testing.T, path string) *sqlite.SQLite {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "test.db")
	}
	db, err := sqlite.New(&config.Config{StoragePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEnsureSchemaAndSeed_EmptyStore(t *testing.T) {
	db := newTestDB(t, "")
	ctx := context.Background()

	require.NoError(t, db.EnsureSchemaAndSeed(ctx))

	users, err := db.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, seedUsers, users)
}

func TestEnsureSchemaAndSeed_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	first := newTestDB(t, path)
	require.NoError(t, first.EnsureSchemaAndSeed(ctx))
	require.NoError(t, first.EnsureSchemaAndSeed(ctx))
	require.NoError(t, first.Close())

	// A fresh handle on the same file behaves like a process restart.
	second := newTestDB(t, path)
	require.NoError(t, second.EnsureSchemaAndSeed(ctx))

	users, err := second.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, seedUsers, users)
}

func TestSeed_SkipsNonEmptyTable(t *testing.T) {
	db := newTestDB(t, "")
	ctx := context.Background()

	n, err := db.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	// Delete down to one leftover row; seeding is keyed on emptiness,
	// not on whether it ever ran.
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, db.DeleteUserByID(ctx, id))
	}

	n, err = db.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	users, err := db.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.User{seedUsers[3]}, users)
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t, "")
	ctx := context.Background()

	id, err := db.CreateUser(ctx, "Rakesh", "rakesh@test.com", 35)
	require.NoError(t, err)
	require.NotZero(t, id)

	user, err := db.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.User{ID: id, Name: "Rakesh", Email: "rakesh@test.com", Age: 35}, user)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t, "")
	ctx := context.Background()

	_, err := db.CreateUser(ctx, "User 1", "dup@example.com", 20)
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, "User 2", "dup@example.com", 21)
	require.ErrorIs(t, err, storage.ErrDuplicateEmail)

	users, err := db.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t, "")

	_, err := db.GetUserByID(context.Background(), 999999)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetUsers_Empty(t *testing.T) {
	db := newTestDB(t, "")

	users, err := db.GetUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUpdateUserByID(t *testing.T) {
	db := newTestDB(t, "")
	ctx := context.Background()

	id, err := db.CreateUser(ctx, "Jane", "jane@test.com", 25)
	require.NoError(t, err)

	tests := []struct {
		name string
		upd  types.UpdateUserRequest
		want types.User
	}{
		{
			name: "age only",
			upd:  types.UpdateUserRequest{Age: 40},
			want: types.User{ID: id, Name: "Jane", Email: "jane@test.com", Age: 40},
		},
		{
			name: "zero age is skipped",
			upd:  types.UpdateUserRequest{Age: 0},
			want: types.User{ID: id, Name: "Jane", Email: "jane@test.com", Age: 40},
		},
		{
			name: "empty strings are skipped",
			upd:  types.UpdateUserRequest{Name: "", Email: ""},
			want: types.User{ID: id, Name: "Jane", Email: "jane@test.com", Age: 40},
		},
		{
			name: "all fields",
			upd:  types.UpdateUserRequest{Name: "Janet", Email: "janet@test.com", Age: 41},
			want: types.User{ID: id, Name: "Janet", Email: "janet@test.com", Age: 41},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, db.UpdateUserByID(ctx, id, tt.upd))

			got, err := db.GetUserByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateUserByID_NotFound(t *testing.T) {
	db := newTestDB(t, "")

	err := db.UpdateUserByID(context.Background(), 999999, types.UpdateUserRequest{Age: 40})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateUserByID_DuplicateEmailRollsBack(t *testing.T) {
	db := newTestDB(t, "")
	ctx := context.Background()

	_, err := db.CreateUser(ctx, "First", "first@test.com", 20)
	require.NoError(t, err)
	id, err := db.CreateUser(ctx, "Second", "second@test.com", 30)
	require.NoError(t, err)

	// name is written before email; the failed email write must undo it.
	err = db.UpdateUserByID(ctx, id, types.UpdateUserRequest{Name: "Renamed", Email: "first@test.com"})
	require.ErrorIs(t, err, storage.ErrDuplicateEmail)

	got, err := db.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.User{ID: id, Name: "Second", Email: "second@test.com", Age: 30}, got)
}

func TestDeleteUserByID(t *testing.T) {
	db := newTestDB(t, "")
	ctx := context.Background()

	id, err := db.CreateUser(ctx, "Gone", "gone@test.com", 50)
	require.NoError(t, err)

	require.NoError(t, db.DeleteUserByID(ctx, id))

	_, err = db.GetUserByID(ctx, id)
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = db.DeleteUserByID(ctx, id)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateUser_IDsNotReused(t *testing.T) {
	db := newTestDB(t, "")
	ctx := context.Background()

	first, err := db.CreateUser(ctx, "A", "a@test.com", 1)
	require.NoError(t, err)
	require.NoError(t, db.DeleteUserByID(ctx, first))

	second, err := db.CreateUser(ctx, "B", "b@test.com", 2)
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestPing(t *testing.T) {
	db := newTestDB(t, "")
	require.NoError(t, db.Ping(context.Background()))
}
