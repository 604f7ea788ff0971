// Package handler implements the storefront and back-office HTTP endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/logger"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
	"github.com/statyba/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	// DefaultLocale is used when the locale middleware did not run
	DefaultLocale string
}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// locale returns the negotiated request locale
func (h *BaseHandler) locale(c *gin.Context) string {
	fallback := h.DefaultLocale
	if fallback == "" {
		fallback = "en"
	}
	return middleware.GetLocale(c, fallback)
}

// customerID returns the authenticated customer or writes a 401
func (h *BaseHandler) customerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetCustomerID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// optionalCustomerID returns the authenticated customer, if any
func optionalCustomerID(c *gin.Context) *uuid.UUID {
	id, ok := middleware.GetCustomerID(c)
	if !ok {
		return nil
	}
	return &id
}

// uuidParam parses a UUID path parameter or writes a 400
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body or writes a validation error
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters or writes a validation error
func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// page writes a paginated result as items plus meta
func page[T any](h *BaseHandler, c *gin.Context, p shared.Paginated[T]) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	h.SuccessWithMeta(c, items, p.Total, p.Page, p.PageSize)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their code; anything else is logged and reported as a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if domainErr, ok := shared.AsDomainError(err); ok {
		status := dto.StatusForDomainCode(domainErr.Code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(dto.NormalizeErrorCode(domainErr.Code), domainErr.Message, getRequestID(c)))
		return
	}

	if ctxErr := c.Request.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeTimeout, "Request timed out")
		return
	}

	logger.L(c.Request.Context()).Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	h.InternalError(c, "An unexpected error occurred")
}
