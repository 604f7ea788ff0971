package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	orderapp "github.com/statyba/storefront/internal/application/order"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, query orderapp.ListQuery) (shared.Paginated[orderapp.SummaryResponse], error) {
	return pageResult[orderapp.SummaryResponse](m.Called(ctx, customerID, query))
}

func (m *mockOrderService) GetForCustomer(ctx context.Context, customerID uuid.UUID, number string) (*orderapp.Response, error) {
	return ptrResult[orderapp.Response](m.Called(ctx, customerID, number))
}

func (m *mockOrderService) List(ctx context.Context, query orderapp.ListQuery) (shared.Paginated[orderapp.SummaryResponse], error) {
	return pageResult[orderapp.SummaryResponse](m.Called(ctx, query))
}

func (m *mockOrderService) Get(ctx context.Context, id uuid.UUID) (*orderapp.Response, error) {
	return ptrResult[orderapp.Response](m.Called(ctx, id))
}

func (m *mockOrderService) Transition(ctx context.Context, id uuid.UUID, req orderapp.TransitionRequest, actorID *uuid.UUID) (*orderapp.Response, error) {
	return ptrResult[orderapp.Response](m.Called(ctx, id, req, actorID))
}

func (m *mockOrderService) Invoice(ctx context.Context, id uuid.UUID, locale string) (*orderapp.InvoiceResult, error) {
	return ptrResult[orderapp.InvoiceResult](m.Called(ctx, id, locale))
}

func setupOrderRouter(svc *mockOrderService, customerID *uuid.UUID) http.Handler {
	h := NewOrderHandler(svc)
	r := newTestRouter(customerID)
	r.GET("/account/orders", h.MyOrders)
	r.GET("/account/orders/:number", h.MyOrder)
	r.GET("/account/orders/:number/invoice", h.MyInvoice)
	r.GET("/admin/orders", h.List)
	r.GET("/admin/orders/:id", h.Get)
	r.POST("/admin/orders/:id/transition", h.Transition)
	r.GET("/admin/orders/:id/invoice", h.Invoice)
	return r
}

func TestOrderHandler_MyOrders(t *testing.T) {
	customerID := uuid.New()

	t.Run("binds date filters", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("ListForCustomer", mock.Anything, customerID, mock.MatchedBy(func(q orderapp.ListQuery) bool {
			return q.Status == "shipped" && q.From != nil &&
				q.From.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) && q.To == nil
		})).Return(shared.Paginated[orderapp.SummaryResponse]{
			Items: []orderapp.SummaryResponse{{Number: "SO-20260902-0003", Status: "shipped"}}, Total: 1, Page: 1, PageSize: 20,
		}, nil)

		w := perform(setupOrderRouter(svc, &customerID), http.MethodGet, "/account/orders?status=shipped&from=2026-09-01", nil)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decodeData[[]orderapp.SummaryResponse](t, w), 1)
		svc.AssertExpectations(t)
	})

	t.Run("requires a signed-in customer", func(t *testing.T) {
		svc := new(mockOrderService)
		w := perform(setupOrderRouter(svc, nil), http.MethodGet, "/account/orders", nil)
		assertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})

	t.Run("another customer's order is not found", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("GetForCustomer", mock.Anything, customerID, "SO-1").Return(nil, shared.ErrNotFound)

		w := perform(setupOrderRouter(svc, &customerID), http.MethodGet, "/account/orders/SO-1", nil)

		assertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestOrderHandler_Transition(t *testing.T) {
	id, actor := uuid.New(), uuid.New()
	path := "/admin/orders/" + id.String() + "/transition"

	svc := new(mockOrderService)
	svc.On("Transition", mock.Anything, id, orderapp.TransitionRequest{Status: "shipped"}, &actor).
		Return(&orderapp.Response{ID: id, Status: "shipped"}, nil)
	svc.On("Transition", mock.Anything, id, orderapp.TransitionRequest{Status: "refunded", Reason: "Damaged"}, &actor).
		Return(nil, shared.NewDomainError("INVALID_STATE", "Cannot move order from pending to refunded"))

	r := setupOrderRouter(svc, &actor)

	w := perform(r, http.MethodPost, path, `{"status":"shipped"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "shipped", decodeData[orderapp.Response](t, w).Status)

	w = perform(r, http.MethodPost, path, `{"status":"pending"}`)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = perform(r, http.MethodPost, path, `{"status":"refunded","reason":"Damaged"}`)
	assertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
}

func TestOrderHandler_Invoice(t *testing.T) {
	id := uuid.New()

	t.Run("streams the pdf", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("Invoice", mock.Anything, id, "lt").
			Return(&orderapp.InvoiceResult{Filename: "SO-20261014-0001.pdf", PDF: []byte("%PDF-1.7")}, nil)

		w := perform(setupOrderRouter(svc, nil), http.MethodGet, "/admin/orders/"+id.String()+"/invoice?locale=lt", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename=SO-20261014-0001.pdf`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.7", w.Body.String())
	})

	t.Run("archived invoice returns its link", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("Invoice", mock.Anything, id, "").
			Return(&orderapp.InvoiceResult{Filename: "SO-1.pdf", URL: "https://files.example.com/invoices/SO-1.pdf"}, nil)

		w := perform(setupOrderRouter(svc, nil), http.MethodGet, "/admin/orders/"+id.String()+"/invoice", nil)

		got := decodeData[InvoiceLinkResponse](t, w)
		assert.Equal(t, "https://files.example.com/invoices/SO-1.pdf", got.URL)
	})

	t.Run("invoices disabled", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("Invoice", mock.Anything, id, "").
			Return(nil, shared.NewDomainError("INVOICES_DISABLED", "Invoice rendering is not configured"))

		w := perform(setupOrderRouter(svc, nil), http.MethodGet, "/admin/orders/"+id.String()+"/invoice", nil)

		assertErrorCode(t, w, http.StatusServiceUnavailable, dto.ErrCodeUnavailable)
	})

	t.Run("customer invoice resolves the order by number", func(t *testing.T) {
		customerID := uuid.New()
		svc := new(mockOrderService)
		svc.On("GetForCustomer", mock.Anything, customerID, "SO-7").Return(&orderapp.Response{ID: id, Number: "SO-7"}, nil)
		svc.On("Invoice", mock.Anything, id, "").Return(&orderapp.InvoiceResult{Filename: "SO-7.pdf", PDF: []byte("%PDF")}, nil)

		w := perform(setupOrderRouter(svc, &customerID), http.MethodGet, "/account/orders/SO-7/invoice", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}
