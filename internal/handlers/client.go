package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/consultant-ledger/internal/dto"
	apierrors "github.com/yukikurage/consultant-ledger/internal/errors"
	"github.com/yukikurage/consultant-ledger/internal/middleware"
	"github.com/yukikurage/consultant-ledger/internal/services"
)

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// ListClients returns every client ordered by name
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": dto.ToClientDTOs(clients),
	})
}

// CreateClient creates a new client
func (h *ClientHandler) CreateClient(c *gin.Context) {
	type CreateClientRequest struct {
		Name    string `json:"name" binding:"required"`
		Color   string `json:"color"`
		Address string `json:"address"`
		Logo    string `json:"logo"`
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clients.Create(c.Request.Context(), services.CreateClientInput{
		Name:    req.Name,
		Color:   req.Color,
		Address: req.Address,
		Logo:    req.Logo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToClientDTO(*client))
}

// GetOverview returns task counts, revenue and hours per client
func (h *ClientHandler) GetOverview(c *gin.Context) {
	overviews, err := h.clients.Overviews(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": dto.ToClientOverviewDTOs(overviews),
	})
}

// GetMonths returns the tasks of a client grouped by start month
func (h *ClientHandler) GetMonths(c *gin.Context) {
	client, ok := middleware.GetClient(c)
	if !ok {
		apierrors.InternalError(c, "Client not found in context")
		return
	}

	months, err := h.clients.Months(c.Request.Context(), client.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client": dto.ToClientDTO(client),
		"months": dto.ToClientMonthDTOs(months),
	})
}

// DeleteClient deletes a client with all of its tasks
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	client, ok := middleware.GetClient(c)
	if !ok {
		apierrors.InternalError(c, "Client not found in context")
		return
	}

	pruning, err := h.clients.Delete(c.Request.Context(), client.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Client deleted successfully",
		"pruned":  pruning,
	})
}
