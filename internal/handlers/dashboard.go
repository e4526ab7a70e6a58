package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/consultant-ledger/internal/constants"
	"github.com/yukikurage/consultant-ledger/internal/dto"
	apierrors "github.com/yukikurage/consultant-ledger/internal/errors"
	"github.com/yukikurage/consultant-ledger/internal/services"
	"github.com/yukikurage/consultant-ledger/internal/summary"
)

// DashboardHandler serves period analytics. The selected view mode and
// cursor are kept in the session so navigation survives reloads.
type DashboardHandler struct {
	dashboard *services.DashboardService
	now       func() time.Time
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		now:       time.Now,
	}
}

// GetDashboard returns the metrics of the selected period
// mode and cursor query parameters override and replace the session values
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	h.navigate(c, 0)
}

// PreviousPeriod moves the cursor back one period
func (h *DashboardHandler) PreviousPeriod(c *gin.Context) {
	h.navigate(c, -1)
}

// NextPeriod moves the cursor forward one period
func (h *DashboardHandler) NextPeriod(c *gin.Context) {
	h.navigate(c, 1)
}

func (h *DashboardHandler) navigate(c *gin.Context, step int) {
	session := sessions.Default(c)

	mode, err := summary.ParseViewMode(firstNonEmpty(c.Query("mode"), sessionString(session, constants.SessionKeyViewMode), string(summary.ViewMonth)))
	if err != nil {
		apierrors.InvalidFormat(c, err.Error())
		return
	}

	cursor, err := parseDate("cursor", firstNonEmpty(c.Query("cursor"), sessionString(session, constants.SessionKeyViewCursor)))
	if err != nil {
		apierrors.InvalidFormat(c, err.Error())
		return
	}
	if cursor.IsZero() {
		now := h.now()
		cursor = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	cursor = summary.Shift(mode, cursor, step)

	session.Set(constants.SessionKeyViewMode, string(mode))
	session.Set(constants.SessionKeyViewCursor, cursor.Format(constants.DateLayout))
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	analysis, err := h.dashboard.Analyze(c.Request.Context(), mode, cursor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAnalysisDTO(*analysis))
}

func sessionString(session sessions.Session, key string) string {
	v, _ := session.Get(key).(string)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
