package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tenant-platform/internal/tenant"
	"tenant-platform/pkg/logger"
	"tenant-platform/prometheus"
)

// TenantHandler serves the public signup intake and the admin tenant
// management surface.
type TenantHandler struct {
	svc *tenant.Service
}

// NewTenantHandler creates a tenant handler.
func NewTenantHandler(svc *tenant.Service) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// SubmitRequest takes a public tenant signup and queues it for approval.
func (h *TenantHandler) SubmitRequest(c echo.Context) error {
	log := logger.FromEcho(c)

	var req tenant.SubmitInput
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	created, err := h.svc.SubmitRequest(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrMissingField):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Tenant name and Domain name are required!"})
		case errors.Is(err, tenant.ErrDuplicateDomain):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This domain name is already taken!"})
		}
		log.Error("Failed to submit tenant request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to submit tenant request"})
	}

	log.Info("Tenant request submitted",
		zap.String("tenant_name", created.TenantName),
		zap.String("domain", created.DesiredDomain))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tenant request for \"" + created.TenantName + "\" submitted successfully! Awaiting admin approval.",
		"request": created,
	})
}

// ListRequests returns signup requests, optionally filtered by status.
func (h *TenantHandler) ListRequests(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("list")

	requests, err := h.svc.ListRequests(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		log.Error("Failed to list tenant requests", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list requests"})
	}

	return c.JSON(http.StatusOK, echo.Map{"requests": requests})
}

// ApproveRequests provisions the given Pending requests. Requests are
// processed in order; the first failure aborts the remaining batch while
// earlier requests stay committed.
func (h *TenantHandler) ApproveRequests(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("approve")

	var req struct {
		RequestIDs []uint `json:"request_ids"`
	}
	if err := c.Bind(&req); err != nil || len(req.RequestIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "request_ids is required"})
	}

	approved, err := h.svc.Approve(c.Request().Context(), req.RequestIDs)
	if err != nil {
		log.Error("Tenant approval batch aborted",
			zap.Int("approved", approved),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":    "Error approving tenants: " + err.Error(),
			"approved": approved,
		})
	}

	log.Info("Tenants approved", zap.Int("approved", approved))
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Tenants approved and schemas created successfully.",
		"approved": approved,
	})
}

// RejectRequests marks the given Pending requests as Rejected.
func (h *TenantHandler) RejectRequests(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		RequestIDs []uint `json:"request_ids"`
	}
	if err := c.Bind(&req); err != nil || len(req.RequestIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "request_ids is required"})
	}

	rejected, err := h.svc.Reject(c.Request().Context(), req.RequestIDs)
	if err != nil {
		log.Error("Failed to reject tenant requests", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject requests"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Tenant requests rejected.",
		"rejected": rejected,
	})
}

// ListTenants returns all provisioned tenants with their usage summary.
func (h *TenantHandler) ListTenants(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("list")

	clients, err := h.svc.ListClients(c.Request().Context())
	if err != nil {
		log.Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list tenants"})
	}

	return c.JSON(http.StatusOK, echo.Map{"tenants": clients})
}

// SuspendTenants suspends the given tenants. Status only; no schema or
// data side effects.
func (h *TenantHandler) SuspendTenants(c echo.Context) error {
	return h.updateStatus(c, h.svc.Suspend, "suspended and access disabled")
}

// ActivateTenants reactivates the given tenants.
func (h *TenantHandler) ActivateTenants(c echo.Context) error {
	return h.updateStatus(c, h.svc.Activate, "activated")
}

func (h *TenantHandler) updateStatus(c echo.Context,
	op func(ctx context.Context, ids []uint) (int64, error), verb string) error {
	log := logger.FromEcho(c)

	var req struct {
		ClientIDs []uint `json:"client_ids"`
	}
	if err := c.Bind(&req); err != nil || len(req.ClientIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_ids is required"})
	}

	updated, err := op(c.Request().Context(), req.ClientIDs)
	if err != nil {
		log.Error("Failed to update tenant status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update tenants"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": strconv.FormatInt(updated, 10) + " tenant(s) successfully " + verb + ".",
		"updated": updated,
	})
}

// TenantOrders returns a tenant's subscription orders.
func (h *TenantHandler) TenantOrders(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	orders, err := h.svc.TenantOrders(c.Request().Context(), uint(id))
	if err != nil {
		log.Error("Failed to list tenant orders", zap.Uint64("tenant_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list orders"})
	}

	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}
