package handler

import (
	ledgerapp "github.com/fiado/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client API endpoints
type ClientHandler struct {
	BaseHandler
	service *ledgerapp.Service
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(service *ledgerapp.Service) *ClientHandler {
	return &ClientHandler{service: service}
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Description  Create a client with a zero balance
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateClientRequest true "Client data"
// @Success      201 {object} APIResponse[ledgerapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.service.CreateClient(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Description  Page through clients with their stored balances
// @Tags         clients
// @Produce      json
// @Param        search    query string false "Name substring"
// @Param        order_by  query string false "name, deudaActual, ultimaTransaccion or created_at"
// @Param        order_dir query string false "asc or desc"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ledgerapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var req ledgerapp.ListClientsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	list, err := h.service.ListClients(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list.Items, list.Total, list.Page, list.PageSize)
}

// Get godoc
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[ledgerapp.ClientResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.service.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client's contact data
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path string true "Client ID"
// @Param        request body ledgerapp.UpdateClientRequest true "Client data"
// @Success      200 {object} APIResponse[ledgerapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	var req ledgerapp.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.service.UpdateClient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}
