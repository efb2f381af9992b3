package othermaster

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ruturaj2003/r-L-Tech/internal/crud"
	"github.com/Ruturaj2003/r-L-Tech/internal/session"
)

const (
	FieldMasterType   = "masterType"
	FieldMasterName   = "masterName"
	FieldLockStatus   = "lockStatus"
	FieldDeleteReason = "deleteReason"

	defaultSystemIP = "0"
)

var Form = crud.Form{
	Noun: "Master",
	Fields: []crud.Field{
		{Name: FieldMasterType, Label: "Master Type", Kind: crud.Select, Required: true},
		{Name: FieldMasterName, Label: "Master Name", Kind: crud.Text, Required: true, MaxLength: 50},
		{Name: FieldLockStatus, Label: "Lock Status", Kind: crud.Select, Enum: []string{StatusActive, StatusInactive}},
		{Name: FieldDeleteReason, Label: "Delete Reason", Kind: crud.Select, RequiredMessage: "Delete reason is required", Constrained: true},
	},
	ReasonField: FieldDeleteReason,
}

// LockStatusOptions are the fixed choices of the lock status select.
var LockStatusOptions = []crud.Option{
	{Label: "Yes", Value: StatusActive},
	{Label: "No", Value: StatusInactive},
}

func EmptyDefaults() crud.Values {
	return crud.Values{
		FieldMasterType:   "",
		FieldMasterName:   "",
		FieldLockStatus:   StatusInactive,
		FieldDeleteReason: "",
	}
}

// Defaults maps a row onto form defaults. Create, or a missing row, yields
// the empty defaults.
func Defaults(mode crud.Mode, row *Master) crud.Values {
	if mode == crud.Create || row == nil {
		return EmptyDefaults()
	}
	return crud.Values{
		FieldMasterType:   row.MasterType,
		FieldMasterName:   row.MasterName,
		FieldLockStatus:   row.Status,
		FieldDeleteReason: "",
	}
}

// BuildUpsert maps a Create or Edit submit onto the SaveData payload. The
// discriminator and the identifier follow the request's mode: Create always
// sends identifier 0.
func BuildUpsert(req crud.Request[Master], sess session.Session, now time.Time) (UpsertRequest, error) {
	out := UpsertRequest{
		Count:      0,
		MasterType: strings.TrimSpace(req.Values[FieldMasterType]),
		MasterName: strings.TrimSpace(req.Values[FieldMasterName]),
		SystemIP:   defaultSystemIP,
		LockStatus: req.Values[FieldLockStatus],
		CreatedBy:  sess.UserID,
		CreatedOn:  timestamp(now),
		SubscID:    sess.ScopeID,
	}
	switch req.Mode {
	case crud.Create:
		out.TransNo = 0
		out.Status = crud.ActionInsert.String()
	case crud.Edit:
		if req.Target == nil {
			return UpsertRequest{}, crud.ErrNoSelection
		}
		out.TransNo = req.Target.TransNo
		out.Status = crud.ActionUpdate.String()
	default:
		return UpsertRequest{}, fmt.Errorf("mode %s does not save", req.Mode)
	}
	if out.LockStatus == "" {
		out.LockStatus = StatusInactive
	}
	return out, nil
}

// BuildDelete maps a confirmed Delete submit onto the DeleteData call.
func BuildDelete(req crud.Request[Master], sess session.Session) (DeleteRequest, error) {
	if req.Mode != crud.Delete {
		return DeleteRequest{}, fmt.Errorf("mode %s does not delete", req.Mode)
	}
	if req.Target == nil {
		return DeleteRequest{}, crud.ErrNoSelection
	}
	userNo := req.ActingUserID
	if userNo == 0 {
		userNo = sess.UserID
	}
	return DeleteRequest{
		TransNo: req.Target.TransNo,
		UserNo:  userNo,
		Reason:  strings.TrimSpace(req.Reason),
	}, nil
}
