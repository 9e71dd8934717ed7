// Package api wires the HTTP surface: routes, middleware, and the mapping
// from service errors to status codes.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quicktrack-app/server/internal/apperror"
	"github.com/quicktrack-app/server/internal/models"
	"github.com/quicktrack-app/server/internal/service"
	"github.com/quicktrack-app/server/internal/store"
)

// Handler holds the dependencies of the HTTP handlers
type Handler struct {
	svc   service.Service
	store store.Store
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, st store.Store) *Handler {
	return &Handler{svc: svc, store: st}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine, botToken string) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		errorResponse(c, apperror.MethodNotAllowed("Method not allowed"))
	})

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	groups := router.Group("/groups")
	groups.Use(AuthMiddleware(botToken))
	{
		groups.GET("", h.ListGroups)
		groups.POST("", h.CreateGroup)
		groups.GET("/:id", h.GetGroup)
		groups.DELETE("/:id", h.DeleteGroup)
		groups.POST("/:id/join", h.JoinGroup)

		groups.GET("/:id/expenses", h.ListExpenses)
		groups.POST("/:id/expenses", h.AddExpense)
		groups.PUT("/:id/expenses/:eid", h.UpdateExpense)
		groups.DELETE("/:id/expenses/:eid", h.DeleteExpense)
	}
}

// Health handles GET /healthz
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListGroups handles GET /groups
func (h *Handler) ListGroups(c *gin.Context) {
	resp, err := h.svc.ListGroups(c.Request.Context(), identityFromContext(c))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateGroup handles POST /groups
func (h *Handler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, apperror.Validation("Group name is required"))
		return
	}

	resp, err := h.svc.CreateGroup(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetGroup handles GET /groups/:id
func (h *Handler) GetGroup(c *gin.Context) {
	resp, err := h.svc.GetGroup(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteGroup handles DELETE /groups/:id
func (h *Handler) DeleteGroup(c *gin.Context) {
	if err := h.svc.DeleteGroup(c.Request.Context(), identityFromContext(c), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AckResponse{OK: true})
}

// JoinGroup handles POST /groups/:id/join?invite={code}
func (h *Handler) JoinGroup(c *gin.Context) {
	inviteCode := c.Query("invite")
	if inviteCode == "" {
		errorResponse(c, apperror.Validation("Missing group ID or invite code"))
		return
	}

	resp, err := h.svc.JoinGroup(c.Request.Context(), identityFromContext(c), c.Param("id"), inviteCode)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListExpenses handles GET /groups/:id/expenses
func (h *Handler) ListExpenses(c *gin.Context) {
	resp, err := h.svc.ListExpenses(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddExpense handles POST /groups/:id/expenses
func (h *Handler) AddExpense(c *gin.Context) {
	var req models.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, apperror.Validation("Valid amount is required"))
		return
	}

	resp, err := h.svc.AddExpense(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateExpense handles PUT /groups/:id/expenses/:eid
func (h *Handler) UpdateExpense(c *gin.Context) {
	var req models.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, apperror.Validation("Invalid request body"))
		return
	}

	resp, err := h.svc.UpdateExpense(c.Request.Context(), identityFromContext(c), c.Param("id"), c.Param("eid"), req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteExpense handles DELETE /groups/:id/expenses/:eid
func (h *Handler) DeleteExpense(c *gin.Context) {
	if err := h.svc.DeleteExpense(c.Request.Context(), identityFromContext(c), c.Param("id"), c.Param("eid")); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AckResponse{OK: true})
}
