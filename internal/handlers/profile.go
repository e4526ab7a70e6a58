package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/consultant-ledger/internal/errors"
	"github.com/yukikurage/consultant-ledger/internal/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile saves the profile. Initials default to those of the name.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	type UpdateProfileRequest struct {
		Name     string `json:"name" binding:"required"`
		Role     string `json:"role"`
		Initials string `json:"initials"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), services.UpdateProfileInput{
		Name:     req.Name,
		Role:     req.Role,
		Initials: req.Initials,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
