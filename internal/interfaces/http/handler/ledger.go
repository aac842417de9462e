package handler

import (
	ledgerapp "github.com/fiado/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// LedgerHandler handles sales, payments and balance endpoints
type LedgerHandler struct {
	BaseHandler
	service *ledgerapp.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service *ledgerapp.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// HistoryQuery selects the history view
type HistoryQuery struct {
	View string `form:"view" binding:"omitempty,oneof=summary detailed"`
}

// RecordSale godoc
// @ID           recordSale
// @Summary      Record a sale
// @Description  Record a sale on credit and recalculate the client balance
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id      path string true "Client ID"
// @Param        request body ledgerapp.RecordSaleRequest true "Sale"
// @Success      201 {object} APIResponse[ledgerapp.MutationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /clients/{id}/sales [post]
func (h *LedgerHandler) RecordSale(c *gin.Context) {
	var req ledgerapp.RecordSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RecordSale(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordPayment godoc
// @ID           recordPayment
// @Summary      Record a payment
// @Description  Record a payment; any excess over the debt becomes favor balance
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id      path string true "Client ID"
// @Param        request body ledgerapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[ledgerapp.MutationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /clients/{id}/payments [post]
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	var req ledgerapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateSale godoc
// @ID           updateSale
// @Summary      Edit a sale
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id      path string true "Client ID"
// @Param        eventId path string true "Sale ID"
// @Param        request body ledgerapp.RecordSaleRequest true "Sale"
// @Success      200 {object} APIResponse[ledgerapp.MutationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /clients/{id}/sales/{eventId} [put]
func (h *LedgerHandler) UpdateSale(c *gin.Context) {
	var req ledgerapp.RecordSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateSale(c.Request.Context(), c.Param("id"), c.Param("eventId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdatePayment godoc
// @ID           updatePayment
// @Summary      Edit a payment
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id      path string true "Client ID"
// @Param        eventId path string true "Payment ID"
// @Param        request body ledgerapp.RecordPaymentRequest true "Payment"
// @Success      200 {object} APIResponse[ledgerapp.MutationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /clients/{id}/payments/{eventId} [put]
func (h *LedgerHandler) UpdatePayment(c *gin.Context) {
	var req ledgerapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdatePayment(c.Request.Context(), c.Param("id"), c.Param("eventId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteEvent godoc
// @ID           deleteEvent
// @Summary      Delete a sale or payment
// @Description  Soft-delete an event; it stays stored but no longer counts
// @Tags         ledger
// @Produce      json
// @Param        id      path string true "Client ID"
// @Param        eventId path string true "Event ID"
// @Success      200 {object} APIResponse[ledgerapp.MutationResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /clients/{id}/events/{eventId} [delete]
func (h *LedgerHandler) DeleteEvent(c *gin.Context) {
	resp, err := h.service.DeleteEvent(c.Request.Context(), c.Param("id"), c.Param("eventId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetDebt godoc
// @ID           getClientDebt
// @Summary      Calculate a client's balance
// @Description  Calculate the balance from the stored events without writing it
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[ledgerapp.DebtResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id}/debt [get]
func (h *LedgerHandler) GetDebt(c *gin.Context) {
	resp, err := h.service.GetDebt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Recalculate godoc
// @ID           recalculateClient
// @Summary      Recalculate and store a client's balance
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[ledgerapp.DebtResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /clients/{id}/recalculate [post]
func (h *LedgerHandler) Recalculate(c *gin.Context) {
	resp, err := h.service.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetHistory godoc
// @ID           getClientHistory
// @Summary      Render a client's history
// @Description  Newest first; summary groups payments, detailed shows each split
// @Tags         ledger
// @Produce      json
// @Param        id   path  string true  "Client ID"
// @Param        view query string false "summary or detailed"
// @Success      200 {object} APIResponse[ledgerapp.HistoryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id}/history [get]
func (h *LedgerHandler) GetHistory(c *gin.Context) {
	var query HistoryQuery
	if !h.bindQuery(c, &query) {
		return
	}

	resp, err := h.service.GetHistory(c.Request.Context(), c.Param("id"), ledgerapp.HistoryView(query.View))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CheckConsistency godoc
// @ID           checkClientConsistency
// @Summary      Check a client's events for inconsistencies
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[ledgerapp.ConsistencyResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id}/consistency [get]
func (h *LedgerHandler) CheckConsistency(c *gin.Context) {
	resp, err := h.service.CheckConsistency(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Preview godoc
// @ID           previewLedger
// @Summary      Calculate over supplied records
// @Description  Balance, history and consistency of raw records, nothing is stored
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.PreviewRequest true "Raw records"
// @Success      200 {object} APIResponse[ledgerapp.PreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /ledger/preview [post]
func (h *LedgerHandler) Preview(c *gin.Context) {
	var req ledgerapp.PreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Split godoc
// @ID           splitPayment
// @Summary      Split a payment against a debt
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.SplitRequest true "Debt and payment"
// @Success      200 {object} APIResponse[ledgerapp.SplitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /ledger/split [post]
func (h *LedgerHandler) Split(c *gin.Context) {
	var req ledgerapp.SplitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Split(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
