package othermaster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruturaj2003/r-L-Tech/internal/crud"
	"github.com/Ruturaj2003/r-L-Tech/internal/datatable"
)

func TestDefaults(t *testing.T) {
	row := &Master{TransNo: 7, MasterType: "Logistics", MasterName: "Freight", Status: "Y"}

	assert.Equal(t, EmptyDefaults(), Defaults(crud.Create, row))
	assert.Equal(t, EmptyDefaults(), Defaults(crud.Edit, nil))
	assert.Equal(t, crud.Values{
		FieldMasterType:   "Logistics",
		FieldMasterName:   "Freight",
		FieldLockStatus:   "Y",
		FieldDeleteReason: "",
	}, Defaults(crud.View, row))
	assert.Equal(t, "N", EmptyDefaults()[FieldLockStatus])
}

func TestColumnsFactory(t *testing.T) {
	var viewed, edited, deleted []int
	cols := Columns(RowActions{
		OnView:   func(m Master) { viewed = append(viewed, m.TransNo) },
		OnEdit:   func(m Master) { edited = append(edited, m.TransNo) },
		OnDelete: func(m Master) { deleted = append(deleted, m.TransNo) },
	})
	e, err := datatable.New(cols)
	require.NoError(t, err)
	e.SetRows([]Master{
		{TransNo: 30, MasterType: "Finance", MasterName: "Tax", Status: "Y"},
		{TransNo: 10, MasterType: "Logistics", MasterName: "Freight", Status: "N"},
	})

	view := e.View()
	require.Len(t, view.Rows, 2)
	assert.Equal(t, []string{"1", "Finance", "Tax", "Active", "[v] View [e] Edit [d] Delete"}, view.Rows[0].Cells)
	assert.Equal(t, "Inactive", view.Rows[1].Cells[3])

	require.True(t, e.Activate(1, "e"))
	require.True(t, e.Activate(0, "d"))
	assert.Empty(t, viewed)
	assert.Equal(t, []int{10}, edited)
	assert.Equal(t, []int{30}, deleted)

	assert.True(t, Columns(RowActions{})[4].Actions[0].Invoke != nil)
	Columns(RowActions{})[4].Actions[0].Invoke(Master{})
}

func TestGlobalSearchCoversTypeAndName(t *testing.T) {
	e, err := datatable.New(Columns(RowActions{}))
	require.NoError(t, err)
	e.SetRows([]Master{
		{TransNo: 1, MasterType: "Finance", MasterName: "Tax", Status: "Y"},
		{TransNo: 2, MasterType: "Logistics", MasterName: "Freight", Status: "Y"},
	})
	e.SetGlobalFilter("logi")
	require.Len(t, e.Filtered(), 1)
	assert.Equal(t, 2, e.Filtered()[0].Row.TransNo)

	assert.ErrorIs(t, e.SetColumnFilter(ColumnType, "x"), datatable.ErrNotFilterable)
}

func TestCreateScenario(t *testing.T) {
	b := routedBackend()
	s := newTestService(b)
	o := crud.New(crud.Config[Master]{
		Form:         Form,
		ActingUserID: testSession.UserID,
		OnSubmit: func(ctx context.Context, req crud.Request[Master]) error {
			return s.Submit(ctx, testSession, req)
		},
	})

	o.Open(crud.Create, nil, Defaults(crud.Create, nil))
	_, err := o.SubmitAndWait(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Master Name is required", o.FieldError(FieldMasterName))
	assert.Empty(t, b.callsTo("POST"))

	require.NoError(t, o.SetField(FieldMasterName, "Freight Type"))
	require.NoError(t, o.SetField(FieldMasterType, "Logistics"))
	notice, err := o.SubmitAndWait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Master created successfully", notice.Title)

	posts := b.callsTo("POST")
	require.Len(t, posts, 1)
	payload := posts[0].Body.(UpsertRequest)
	assert.Equal(t, "Insert", payload.Status)
	assert.Equal(t, 0, payload.TransNo)
}

func TestDeleteScenario(t *testing.T) {
	b := routedBackend()
	s := newTestService(b)
	ctx := context.Background()
	_, err := s.List(ctx, testSession)
	require.NoError(t, err)
	reasons, err := s.DeleteReasons(ctx, testSession)
	require.NoError(t, err)

	o := crud.New(crud.Config[Master]{
		Form:         Form,
		ActingUserID: testSession.UserID,
		OnSubmit: func(ctx context.Context, req crud.Request[Master]) error {
			return s.Submit(ctx, testSession, req)
		},
	})
	o.SetOptions(FieldDeleteReason, reasons)

	row := &Master{TransNo: 7, MasterType: "Logistics", MasterName: "Freight", Status: "Y"}
	o.Open(crud.Delete, row, Defaults(crud.Delete, row))
	_, ok, err := o.Submit()
	require.NoError(t, err)
	require.False(t, ok)

	assert.False(t, o.CanConfirmDelete())
	_, err = o.ConfirmDelete()
	assert.ErrorIs(t, err, crud.ErrReasonRequired)
	assert.Equal(t, "Delete reason is required", o.FieldError(FieldDeleteReason))
	assert.Empty(t, b.callsTo("DELETE"))

	require.NoError(t, o.SetField(FieldDeleteReason, "Duplicate"))
	notice, err := o.SubmitAndWait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Master deleted successfully", notice.Title)

	dels := b.callsTo("DELETE")
	require.Len(t, dels, 1)
	assert.Equal(t, "/api/OtherMasters/api/DeleteData/7", dels[0].Path)
	assert.Equal(t, "Duplicate", dels[0].Query.Get("reason"))
	assert.Equal(t, "11", dels[0].Query.Get("userNo"))
	assert.True(t, s.Cache().Stale(KeyList(testSession.ScopeID)))
}
