package mockapi

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruturaj2003/r-L-Tech/internal/othermaster"
)

func newMemoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func insert(typ, name string) othermaster.UpsertRequest {
	return othermaster.UpsertRequest{MasterType: typ, MasterName: name, LockStatus: "Y", CreatedBy: 1, SubscID: 3, Status: "Insert"}
}

func TestStoreSaveListDelete(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, insert("Logistics", "Freight"))
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = s.Save(ctx, insert("Logistics", "freight"))
	assert.ErrorIs(t, err, ErrDuplicate)

	upd := insert("Logistics", "Freight Type")
	upd.TransNo = id
	upd.Status = "Update"
	upd.LockStatus = "N"
	got, err := s.Save(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	m, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, othermaster.Master{TransNo: id, MasterType: "Logistics", MasterName: "Freight Type", Status: "N"}, m)

	rows, err := s.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	rows, err = s.List(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.Delete(ctx, id, 9, "Duplicate"))
	assert.ErrorIs(t, s.Delete(ctx, id, 9, "Duplicate"), ErrNotFound)
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	var reason string
	var by int
	require.NoError(t, s.db.QueryRow(`SELECT delete_reason, deleted_by FROM other_masters WHERE m_trans_no = ?`, id).Scan(&reason, &by))
	assert.Equal(t, "Duplicate", reason)
	assert.Equal(t, 9, by)
}

func TestStoreUpdateMissing(t *testing.T) {
	s := newMemoryStore(t)
	upd := insert("Logistics", "Ghost")
	upd.TransNo = 42
	upd.Status = "Update"
	_, err := s.Save(context.Background(), upd)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSeedIsIdempotent(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, 3, 1))
	require.NoError(t, s.Seed(ctx, 3, 1))

	types, err := s.MasterTypes(ctx)
	require.NoError(t, err)
	assert.Contains(t, types, othermaster.DeleteReasonType)

	reasons, err := s.Load(ctx, othermaster.DeleteReasonType, 3)
	require.NoError(t, err)
	assert.Len(t, reasons, 3)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	assert.Error(t, err)
}

func TestPostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewStore(db, DriverPostgres)

	mock.ExpectExec(regexp.QuoteMeta(`SET deleted = 1, delete_reason = $1, deleted_by = $2`)).
		WithArgs("Obsolete", 11, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Delete(context.Background(), 7, 11, "Obsolete"))

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE subsc_id = $1 AND deleted = 0`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"m_trans_no", "master_type", "master_name", "lock_status"}).
			AddRow(7, "Logistics", "Freight", "Y"))
	rows, err := s.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []othermaster.Master{{TransNo: 7, MasterType: "Logistics", MasterName: "Freight", Status: "Y"}}, rows)

	mock.ExpectExec(regexp.QuoteMeta(`WHERE m_trans_no = $3`)).
		WithArgs("Obsolete", 11, 8).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Delete(context.Background(), 8, 11, "Obsolete"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "a = ? AND b = ?", NewStore(nil, DriverSQLite).rebind("a = ? AND b = ?"))
	assert.Equal(t, "a = $1 AND b = $2", NewStore(nil, DriverPostgres).rebind("a = ? AND b = ?"))
}
