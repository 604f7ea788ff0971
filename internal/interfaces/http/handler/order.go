package handler

import (
	"context"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/statyba/storefront/internal/application/order"
	"github.com/statyba/storefront/internal/domain/shared"
)

// OrderService is the order history and fulfilment use-case surface
type OrderService interface {
	ListForCustomer(ctx context.Context, customerID uuid.UUID, query orderapp.ListQuery) (shared.Paginated[orderapp.SummaryResponse], error)
	GetForCustomer(ctx context.Context, customerID uuid.UUID, number string) (*orderapp.Response, error)
	List(ctx context.Context, query orderapp.ListQuery) (shared.Paginated[orderapp.SummaryResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*orderapp.Response, error)
	Transition(ctx context.Context, id uuid.UUID, req orderapp.TransitionRequest, actorID *uuid.UUID) (*orderapp.Response, error)
	Invoice(ctx context.Context, id uuid.UUID, locale string) (*orderapp.InvoiceResult, error)
}

// OrderHandler handles order endpoints for customers and staff
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// InvoiceLinkResponse points at an archived invoice
type InvoiceLinkResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// MyOrders lists the signed-in customer's orders, newest first.
// @Summary      List my orders
// @Tags         account
// @Produce      json
// @Param        status query string false "Order status" Enums(pending, confirmed, processing, shipped, delivered, cancelled, refunded)
// @Param        from query string false "Placed on or after" format(date)
// @Param        to query string false "Placed on or before" format(date)
// @Param        search query string false "Order number or email"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]orderapp.SummaryResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account/orders [get]
func (h *OrderHandler) MyOrders(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var query orderapp.ListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	result, err := h.orders.ListForCustomer(c.Request.Context(), customerID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// MyOrder returns one of the customer's orders by number.
// @Summary      Get one of my orders
// @Tags         account
// @Produce      json
// @Param        number path string true "Order number"
// @Success      200 {object} dto.Response{data=orderapp.Response}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account/orders/{number} [get]
func (h *OrderHandler) MyOrder(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetForCustomer(c.Request.Context(), customerID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// MyInvoice renders the invoice of one of the customer's orders.
// @Summary      Download my invoice
// @Description  Streams the PDF, or returns an archive link when invoices are stored
// @Tags         account
// @Produce      application/pdf,json
// @Param        number path string true "Order number"
// @Param        locale query string false "Invoice locale"
// @Success      200 {file} binary
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/account/orders/{number}/invoice [get]
func (h *OrderHandler) MyInvoice(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetForCustomer(c.Request.Context(), customerID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.invoice(c, order.ID)
}

// List returns orders across all customers.
// @Summary      List orders
// @Tags         admin-orders
// @Produce      json
// @Param        status query string false "Order status" Enums(pending, confirmed, processing, shipped, delivered, cancelled, refunded)
// @Param        from query string false "Placed on or after" format(date)
// @Param        to query string false "Placed on or before" format(date)
// @Param        search query string false "Order number or email"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]orderapp.SummaryResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var query orderapp.ListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	result, err := h.orders.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(&h.BaseHandler, c, result)
}

// Get returns one order by ID.
// @Summary      Get an order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.Response}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Transition moves an order through its lifecycle.
// @Summary      Change order status
// @Description  Cancelling or refunding releases or restocks reserved stock
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body orderapp.TransitionRequest true "Target status and reason"
// @Success      200 {object} dto.Response{data=orderapp.Response}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req orderapp.TransitionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Transition(c.Request.Context(), id, req, optionalCustomerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Invoice renders an order invoice for staff.
// @Summary      Download an invoice
// @Tags         admin-orders
// @Produce      application/pdf,json
// @Param        id path string true "Record ID" format(uuid)
// @Param        locale query string false "Invoice locale"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	h.invoice(c, id)
}

// invoice streams the PDF, or answers with the archive link when the
// invoicer stored the document instead of returning it
func (h *OrderHandler) invoice(c *gin.Context, id uuid.UUID) {
	result, err := h.orders.Invoice(c.Request.Context(), id, c.Query("locale"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(result.PDF) == 0 {
		h.Success(c, InvoiceLinkResponse{Filename: result.Filename, URL: result.URL})
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}
