package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/consultant-ledger/internal/dto"
	"github.com/yukikurage/consultant-ledger/internal/services"
)

type WorkspaceHandler struct {
	workspace *services.WorkspaceService
}

func NewWorkspaceHandler(workspace *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspace: workspace}
}

// GetWorkspace returns clients, rolled-up tasks and the profile in one
// response. It fails as a whole if any part cannot be loaded.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	ws, err := h.workspace.Load(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(ws.Clients, ws.Tasks, ws.Profile))
}
