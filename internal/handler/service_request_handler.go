package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ServiceRequestHandler struct {
	uc *usecase.ServiceRequestUsecase
}

func NewServiceRequestHandler(uc *usecase.ServiceRequestUsecase) *ServiceRequestHandler {
	return &ServiceRequestHandler{uc: uc}
}

type ServiceRequestCreateRequest struct {
	Subject string `json:"subject"`
	Details string `json:"details"`
}

type ServiceRequestUpdateRequest struct {
	Status       string `json:"status"`
	AdminComment string `json:"admin_comment"`
}

func (h *ServiceRequestHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/api/service-requests")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("", h.create)
	g.GET("", h.list)

	//進行管理は管理者だけ
	g.PUT("/:id", h.update, middleware.AdminRoleGuard())
}

func (h *ServiceRequestHandler) create(c echo.Context) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ServiceRequestCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), caller, req.Subject, req.Details)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ServiceRequestHandler) list(c echo.Context) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.List(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ServiceRequestHandler) update(c echo.Context) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ServiceRequestUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.Update(c.Request().Context(), caller, c.Param("id"), req.Status, req.AdminComment); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
