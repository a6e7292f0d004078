package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

// AuditHandler serves the audit trail of user mutations.
type AuditHandler struct {
	service ports.AuditService
}

// NewAuditHandler creates an AuditHandler backed by the given service.
func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

type auditHistoryQuery struct {
	Limit int `json:"limit" validate:"gte=0,lte=200"`
}

type auditHistoryResponse struct {
	Message string              `json:"message"`
	Events  []domain.AuditEvent `json:"events"`
	Count   int                 `json:"count"`
}

// History handles GET /api/users/:id/audit. Deleted users keep their history.
//
// @Summary      Audit history of a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int  true   "User ID"
// @Param        limit  query     int  false  "Maximum number of events (default 50, max 200)"
// @Success      200    {object}  auditHistoryResponse
// @Failure      400    {object}  api.ErrorResponse
// @Failure      401    {object}  api.ErrorResponse
// @Failure      403    {object}  api.ErrorResponse
// @Router       /api/users/{id}/audit [get]
func (h *AuditHandler) History(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var q auditHistoryQuery
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return &domain.ValidationError{Details: []string{"limit: must be an integer"}}
		}
		q.Limit = n
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	events, err := h.service.History(c.Request().Context(), id, q.Limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}

	return c.JSON(http.StatusOK, auditHistoryResponse{
		Message: "Successfully retrieved audit history.",
		Events:  events,
		Count:   len(events),
	})
}
