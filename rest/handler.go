// Package rest serves the query API over echo.
package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"permanode/domain"
	"permanode/logger"
	"permanode/usecase"
	apperrors "permanode/utils/errors"
)

// QueryService is the read side the handlers call. Implemented by
// usecase.QueryUsecase.
type QueryService interface {
	GetMessage(ctx context.Context, keyspace, messageID string) (*domain.Message, error)
	GetMetadata(ctx context.Context, keyspace, messageID string) (*domain.MessageMetadata, error)
	GetChildren(ctx context.Context, keyspace, messageID string, pageSize int, state string) (*usecase.ChildrenResult, error)
	GetByIndex(ctx context.Context, keyspace, index string, pageSize int, state string) (*usecase.IndexResult, error)
	GetMilestone(ctx context.Context, keyspace, index string) (*domain.Milestone, error)
	SyncSummary(ctx context.Context, keyspace string) (*domain.SyncSummary, error)
}

// DataResponse is the envelope of every successful API response.
type DataResponse struct {
	Data any `json:"data"`
}

// MilestoneResponse renders a milestone with a unix timestamp.
type MilestoneResponse struct {
	MilestoneIndex uint32           `json:"milestoneIndex"`
	MessageID      domain.MessageID `json:"messageId"`
	Timestamp      int64            `json:"timestamp"`
}

type Handler struct {
	query QueryService
}

func NewHandler(query QueryService) *Handler {
	return &Handler{query: query}
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, DataResponse{Data: data})
}

// requestContext adds the keyspace and message id of the route to the
// request context, so the request logger and error handler log them too.
func requestContext(c echo.Context) context.Context {
	ctx := logger.WithKeyspace(c.Request().Context(), c.Param("keyspace"))
	if id := c.Param("message_id"); id != "" {
		ctx = logger.WithMessageID(ctx, id)
	}
	c.SetRequest(c.Request().WithContext(ctx))
	return ctx
}

// pageSize returns 0 when page_size is absent, so the default applies.
// Explicit values below 1 are raised to 1; the upper clamp is the usecase's.
func pageSize(c echo.Context) (int, error) {
	raw := c.QueryParam("page_size")
	if raw == "" {
		return 0, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationContextError("page_size must be an integer", "rest", "Handler", "pageSize",
			map[string]interface{}{"page_size": raw})
	}
	return max(size, 1), nil
}

// GetMessage handles GET /api/:keyspace/messages/:message_id.
func (h *Handler) GetMessage(c echo.Context) error {
	msg, err := h.query.GetMessage(requestContext(c), c.Param("keyspace"), c.Param("message_id"))
	if err != nil {
		return err
	}
	return ok(c, msg)
}

// GetMetadata handles GET /api/:keyspace/messages/:message_id/metadata.
func (h *Handler) GetMetadata(c echo.Context) error {
	meta, err := h.query.GetMetadata(requestContext(c), c.Param("keyspace"), c.Param("message_id"))
	if err != nil {
		return err
	}
	return ok(c, meta)
}

// GetChildren handles GET /api/:keyspace/messages/:message_id/children.
func (h *Handler) GetChildren(c echo.Context) error {
	size, err := pageSize(c)
	if err != nil {
		return err
	}
	res, err := h.query.GetChildren(requestContext(c), c.Param("keyspace"), c.Param("message_id"), size, c.QueryParam("state"))
	if err != nil {
		return err
	}
	return ok(c, res)
}

// FindMessages handles GET /api/:keyspace/messages?index=.
func (h *Handler) FindMessages(c echo.Context) error {
	size, err := pageSize(c)
	if err != nil {
		return err
	}
	res, err := h.query.GetByIndex(requestContext(c), c.Param("keyspace"), c.QueryParam("index"), size, c.QueryParam("state"))
	if err != nil {
		return err
	}
	return ok(c, res)
}

// GetMilestone handles GET /api/:keyspace/milestones/:index.
func (h *Handler) GetMilestone(c echo.Context) error {
	ms, err := h.query.GetMilestone(requestContext(c), c.Param("keyspace"), c.Param("index"))
	if err != nil {
		return err
	}
	return ok(c, MilestoneResponse{
		MilestoneIndex: ms.Index,
		MessageID:      ms.MessageID,
		Timestamp:      ms.Timestamp.Unix(),
	})
}

// GetSync handles GET /api/:keyspace/sync.
func (h *Handler) GetSync(c echo.Context) error {
	summary, err := h.query.SyncSummary(requestContext(c), c.Param("keyspace"))
	if err != nil {
		return err
	}
	return ok(c, summary)
}
