package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/coralpress/notifications/internal/application"
	"github.com/coralpress/notifications/internal/domain"
	"github.com/coralpress/notifications/internal/transport/mw"
)

// Handler holds all HTTP handler methods.
type Handler struct {
	svc         *application.Service
	storeDriver string
}

// NewHandler creates a new Handler.
func NewHandler(svc *application.Service, storeDriver string) *Handler {
	return &Handler{svc: svc, storeDriver: storeDriver}
}

// --- Requests ---

type createRequest struct {
	Title           string  `json:"title" validate:"required"`
	Message         string  `json:"message" validate:"required"`
	Role            string  `json:"role" validate:"required,oneof=admin editor user all"`
	UserID          *string `json:"userId"`
	CurrentUserRole string  `json:"currentUserRole"`
}

type dismissRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type createUserRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required"`
	Role            string `json:"role" validate:"required,oneof=admin editor user"`
	CurrentUserRole string `json:"currentUserRole"`
}

// --- Handlers ---

// List GET /notifications?userId=&role=
// Viewer identity comes from the query string, or from the bearer token when
// the host app sends one instead.
func (h *Handler) List(c echo.Context) error {
	userID := c.QueryParam("userId")
	role := c.QueryParam("role")

	if userID == "" || role == "" {
		if v, ok := mw.ViewerFrom(c); ok {
			if userID == "" {
				userID = v.UserID
			}
			if role == "" {
				role = v.Role
			}
		}
	}
	if userID == "" || role == "" {
		return errorResponse(c, fmt.Errorf("%w: userId and role query parameters are required", domain.ErrInvalidInput))
	}

	notifications, err := h.svc.ListVisible(c.Request().Context(), userID, domain.Role(role))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// Create POST /notifications
func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput))
	}

	// The admin gate outranks field validation: a non-admin caller gets 403
	// no matter what else is missing.
	if domain.Role(req.CurrentUserRole) != domain.RoleAdmin {
		return errorResponse(c, fmt.Errorf("%w: only admins can create notifications", domain.ErrForbidden))
	}
	if err := c.Validate(&req); err != nil {
		return errorResponse(c, err)
	}

	n, err := h.svc.Create(c.Request().Context(), application.CreateInput{
		Title:          req.Title,
		Message:        req.Message,
		Role:           domain.Role(req.Role),
		UserID:         req.UserID,
		RequestingRole: domain.Role(req.CurrentUserRole),
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"success":      true,
		"notification": n,
	})
}

// Dismiss POST /notifications/:id/dismiss
func (h *Handler) Dismiss(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fmt.Errorf("%w: malformed notification id", domain.ErrInvalidInput))
	}

	var req dismissRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput))
	}
	if err := c.Validate(&req); err != nil {
		return errorResponse(c, err)
	}

	n, already, err := h.svc.Dismiss(c.Request().Context(), id, req.UserID)
	if err != nil {
		return errorResponse(c, err)
	}

	resp := map[string]any{
		"success":      true,
		"notification": n,
	}
	if already {
		resp["message"] = "already dismissed"
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateUser POST /users
func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput))
	}
	if domain.Role(req.CurrentUserRole) != domain.RoleAdmin {
		return errorResponse(c, fmt.Errorf("%w: only admins can register users", domain.ErrForbidden))
	}
	if err := c.Validate(&req); err != nil {
		return errorResponse(c, err)
	}

	u, err := h.svc.RegisterUser(c.Request().Context(), application.RegisterUserInput{
		Email:          req.Email,
		Name:           req.Name,
		Role:           domain.Role(req.Role),
		RequestingRole: domain.Role(req.CurrentUserRole),
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"user":    u,
	})
}

// GetUser GET /users/:id
func (h *Handler) GetUser(c echo.Context) error {
	u, err := h.svc.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"store":  h.storeDriver,
	})
}

// --- Error mapping ---

// errorResponse maps the domain error taxonomy onto HTTP statuses. Storage
// failures surface only a diagnostic string, never a stack trace.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorBody("invalid input", err))
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorBody("forbidden", err))
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody("not found", err))
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed on storage")
		return c.JSON(http.StatusInternalServerError, errorBody("storage failure", err))
	}
}

func errorBody(kind string, err error) map[string]string {
	body := map[string]string{"error": kind}
	if msg := err.Error(); msg != kind {
		body["details"] = msg
	}
	return body
}
