package othermaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Ruturaj2003/r-L-Tech/internal/api"
	"github.com/Ruturaj2003/r-L-Tech/internal/crud"
	"github.com/Ruturaj2003/r-L-Tech/internal/querycache"
	"github.com/Ruturaj2003/r-L-Tech/internal/session"
)

const (
	basePath = "/api/OtherMasters/api"

	ListStaleTime = 5 * time.Minute
)

var (
	ErrQueryDisabled     = errors.New("query disabled: scope id must be positive")
	ErrInvalidUpsertResp = errors.New("Invalid upsert response from server")
)

func KeyAll() querycache.Key { return querycache.Key{"otherMaster"} }

func KeyList(scopeID int) querycache.Key {
	return querycache.Key{"otherMaster", "list", strconv.Itoa(scopeID)}
}

func KeyDetail(transNo int) querycache.Key {
	return querycache.Key{"otherMaster", "detail", strconv.Itoa(transNo)}
}

func KeyMasterTypes() querycache.Key { return querycache.Key{"otherMaster", "masterTypes"} }

func KeyDeleteReasons(scopeID int) querycache.Key {
	return querycache.Key{"otherMaster", "deleteReasons", strconv.Itoa(scopeID)}
}

// Backend is the HTTP surface the service needs.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
	Delete(ctx context.Context, path string, query url.Values) ([]byte, error)
}

type Service struct {
	backend Backend
	cache   *querycache.Cache
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(backend Backend, cache *querycache.Cache, logger *slog.Logger) *Service {
	if cache == nil {
		cache = querycache.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend: backend,
		cache:   cache,
		logger:  logger.With("component", "othermaster"),
		now:     time.Now,
	}
}

func (s *Service) Cache() *querycache.Cache { return s.cache }

// List returns the rows of a scope, served from cache while fresh.
func (s *Service) List(ctx context.Context, sess session.Session) ([]Master, error) {
	if sess.ScopeID <= 0 {
		return nil, ErrQueryDisabled
	}
	return querycache.Fetch(ctx, s.cache, KeyList(sess.ScopeID), ListStaleTime, func(ctx context.Context) ([]Master, error) {
		body, err := s.backend.Get(ctx, basePath+"/GetData/list", url.Values{"SubscID": {sess.Scope()}})
		if err != nil {
			return nil, err
		}
		rows, err := api.DecodeList(body, Master.Validate)
		if err != nil {
			return nil, api.Normalize(fmt.Errorf("list: %w", err))
		}
		return rows, nil
	})
}

func (s *Service) Get(ctx context.Context, transNo int) (Master, error) {
	return querycache.Fetch(ctx, s.cache, KeyDetail(transNo), ListStaleTime, func(ctx context.Context) (Master, error) {
		body, err := s.backend.Get(ctx, fmt.Sprintf("%s/GetData/%d", basePath, transNo), nil)
		if err != nil {
			return Master{}, err
		}
		rows, err := api.DecodeList(wrapObject(body), Master.Validate)
		if err != nil {
			return Master{}, api.Normalize(fmt.Errorf("detail: %w", err))
		}
		if len(rows) == 0 {
			return Master{}, &api.Error{Status: 404, Code: "NOT_FOUND", Message: "No record selected"}
		}
		return rows[0], nil
	})
}

// MasterTypes returns the master type lookup. It never goes stale.
func (s *Service) MasterTypes(ctx context.Context) ([]crud.Option, error) {
	return querycache.Fetch(ctx, s.cache, KeyMasterTypes(), querycache.Forever, func(ctx context.Context) ([]crud.Option, error) {
		body, err := s.backend.Get(ctx, basePath+"/GetMasterType", nil)
		if err != nil {
			return nil, err
		}
		items, err := api.DecodeList[MasterTypeOption](body, nil)
		if err != nil {
			return nil, api.Normalize(fmt.Errorf("master types: %w", err))
		}
		return MasterTypeOptions(items), nil
	})
}

// DeleteReasons returns the delete reason lookup of a scope. It never goes
// stale.
func (s *Service) DeleteReasons(ctx context.Context, sess session.Session) ([]crud.Option, error) {
	if sess.ScopeID <= 0 {
		return nil, ErrQueryDisabled
	}
	return querycache.Fetch(ctx, s.cache, KeyDeleteReasons(sess.ScopeID), querycache.Forever, func(ctx context.Context) ([]crud.Option, error) {
		body, err := s.backend.Get(ctx, basePath+"/GetData/Load", url.Values{
			"MasterType": {DeleteReasonType},
			"SubscID":    {sess.Scope()},
		})
		if err != nil {
			return nil, err
		}
		items, err := api.DecodeList[DeleteReasonOption](body, nil)
		if err != nil {
			return nil, api.Normalize(fmt.Errorf("delete reasons: %w", err))
		}
		return DeleteReasonOptions(items), nil
	})
}

// Reference is the lookup data the form needs before it can open.
type Reference struct {
	MasterTypes   []crud.Option
	DeleteReasons []crud.Option
}

// Page is everything the screen loads up front.
type Page struct {
	Rows []Master
	Reference
}

// LoadPage fetches the rows and both lookups concurrently. The first error
// cancels the rest.
func (s *Service) LoadPage(ctx context.Context, sess session.Session) (Page, error) {
	var page Page
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		rows, err := s.List(ctx, sess)
		page.Rows = rows
		return err
	})
	p.Go(func(ctx context.Context) error {
		opts, err := s.MasterTypes(ctx)
		page.MasterTypes = opts
		return err
	})
	p.Go(func(ctx context.Context) error {
		opts, err := s.DeleteReasons(ctx, sess)
		page.DeleteReasons = opts
		return err
	})
	if err := p.Wait(); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Upsert validates and sends a SaveData payload and returns the server's
// acknowledgement.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	body, err := s.backend.Post(ctx, basePath+"/SaveData", req)
	if err != nil {
		return "", err
	}
	ack, ok := api.DecodeString(body)
	if !ok {
		return "", api.Normalize(ErrInvalidUpsertResp)
	}
	return ack, nil
}

func (s *Service) Delete(ctx context.Context, req DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := s.backend.Delete(ctx, fmt.Sprintf("%s/DeleteData/%d", basePath, req.TransNo), url.Values{
		"userNo": {strconv.Itoa(req.UserNo)},
		"reason": {req.Reason},
	})
	return err
}

// Submit executes a form request and, on success, invalidates the cached
// list of the session's scope and the affected detail entry.
func (s *Service) Submit(ctx context.Context, sess session.Session, req crud.Request[Master]) error {
	switch req.Action {
	case crud.ActionInsert, crud.ActionUpdate:
		payload, err := BuildUpsert(req, sess, s.now())
		if err != nil {
			return err
		}
		ack, err := s.Upsert(ctx, payload)
		if err != nil {
			s.logger.Warn("save failed", "status", payload.Status, "id", payload.TransNo, "err", err)
			return err
		}
		s.logger.Info("saved", "status", payload.Status, "id", payload.TransNo, "ack", ack)
		s.invalidate(sess, payload.TransNo)
	case crud.ActionDelete:
		payload, err := BuildDelete(req, sess)
		if err != nil {
			return err
		}
		if err := s.Delete(ctx, payload); err != nil {
			s.logger.Warn("delete failed", "id", payload.TransNo, "err", err)
			return err
		}
		s.logger.Info("deleted", "id", payload.TransNo, "reason", payload.Reason)
		s.invalidate(sess, payload.TransNo)
	default:
		return fmt.Errorf("action %q has no backend call", req.Action)
	}
	return nil
}

func (s *Service) invalidate(sess session.Session, transNo int) {
	s.cache.Invalidate(KeyList(sess.ScopeID))
	if transNo > 0 {
		s.cache.Invalidate(KeyDetail(transNo))
	}
}

// wrapObject lets a single-object body go through the list decoder.
func wrapObject(body []byte) []byte {
	out := make([]byte, 0, len(body)+2)
	out = append(out, '[')
	out = append(out, body...)
	return append(out, ']')
}
