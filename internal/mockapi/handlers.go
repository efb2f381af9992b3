package mockapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ruturaj2003/r-L-Tech/internal/othermaster"
	"github.com/Ruturaj2003/r-L-Tech/internal/validation"
)

type Handler struct {
	store    *Store
	logger   *slog.Logger
	envelope bool
}

// NewHandler serves store. With envelope set, list bodies are wrapped as
// {"data":[...]}.
func NewHandler(store *Store, logger *slog.Logger, envelope bool) *Handler {
	return &Handler{store: store, logger: logger, envelope: envelope}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		abort(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
	case errors.Is(err, ErrDuplicate):
		abort(c, http.StatusConflict, "DUPLICATE", "Master already exists")
	case validation.IsValidationError(err):
		abort(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "err", err)
		abort(c, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func (h *Handler) list(c *gin.Context, body any) {
	if h.envelope {
		c.JSON(http.StatusOK, gin.H{"data": body})
		return
	}
	c.JSON(http.StatusOK, body)
}

func intQuery(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		abort(c, http.StatusBadRequest, "BAD_REQUEST", name+" must be a number")
		return 0, false
	}
	return n, true
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := intQuery(c, "SubscID")
	if !ok {
		return
	}
	rows, err := h.store.List(c.Request.Context(), scope)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, rows)
}

func (h *Handler) Load(c *gin.Context) {
	scope, ok := intQuery(c, "SubscID")
	if !ok {
		return
	}
	masterType := strings.TrimSpace(c.Query("MasterType"))
	if masterType == "" {
		abort(c, http.StatusBadRequest, "BAD_REQUEST", "MasterType is required")
		return
	}
	rows, err := h.store.Load(c.Request.Context(), masterType, scope)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, rows)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abort(c, http.StatusBadRequest, "BAD_REQUEST", "id must be a number")
		return
	}
	m, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) MasterTypes(c *gin.Context) {
	names, err := h.store.MasterTypes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]othermaster.MasterTypeOption, 0, len(names))
	for _, n := range names {
		out = append(out, othermaster.MasterTypeOption{MasterType: n})
	}
	h.list(c, out)
}

func (h *Handler) Save(c *gin.Context) {
	var req othermaster.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(c, err)
		return
	}
	id, err := h.store.Save(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("master saved", "status", req.Status, "id", id, "by", req.CreatedBy)
	c.JSON(http.StatusOK, strconv.Itoa(id))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abort(c, http.StatusBadRequest, "BAD_REQUEST", "id must be a number")
		return
	}
	userNo, ok := intQuery(c, "userNo")
	if !ok {
		return
	}
	req := othermaster.DeleteRequest{TransNo: id, UserNo: userNo, Reason: c.Query("reason")}
	if err := req.Validate(); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.Delete(c.Request.Context(), id, userNo, req.Reason); err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("master deleted", "id", id, "by", userNo, "reason", req.Reason)
	c.JSON(http.StatusOK, "Deleted")
}
