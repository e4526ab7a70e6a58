package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/consultant-ledger/internal/dto"
	apierrors "github.com/yukikurage/consultant-ledger/internal/errors"
	"github.com/yukikurage/consultant-ledger/internal/services"
	"github.com/yukikurage/consultant-ledger/internal/utils"
)

type TimeLogHandler struct {
	logs *services.TimeLogService
}

func NewTimeLogHandler(logs *services.TimeLogService) *TimeLogHandler {
	return &TimeLogHandler{logs: logs}
}

// ListTimeLogs returns logs newest first
// Can filter by task_id, from and to; paginated when page or limit is given
func (h *TimeLogHandler) ListTimeLogs(c *gin.Context) {
	from, err := parseDate("from", c.Query("from"))
	if err != nil {
		apierrors.InvalidFormat(c, err.Error())
		return
	}
	to, err := parseDate("to", c.Query("to"))
	if err != nil {
		apierrors.InvalidFormat(c, err.Error())
		return
	}

	input := services.ListTimeLogsInput{
		TaskID: c.Query("task_id"),
		From:   from,
		To:     to,
	}

	params, paginated := utils.GetPaginationParams(c)
	if paginated {
		input.Offset = params.Offset
		input.Limit = params.Limit
	}

	logs, total, err := h.logs.List(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var page *utils.PaginationParams
	if paginated {
		page = &params
	}
	c.JSON(http.StatusOK, dto.ToTimeLogListResponse(logs, total, page))
}

// CreateTimeLog records time against a task
func (h *TimeLogHandler) CreateTimeLog(c *gin.Context) {
	type CreateTimeLogRequest struct {
		TaskID    string  `json:"task_id" binding:"required"`
		SubtaskID *string `json:"subtask_id"`
		Date      string  `json:"date"`
		Hours     float64 `json:"hours"`
		Notes     string  `json:"notes"`
	}

	var req CreateTimeLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	log, err := h.logs.Create(c.Request.Context(), services.CreateTimeLogInput{
		TaskID:    req.TaskID,
		SubtaskID: req.SubtaskID,
		Date:      date,
		Hours:     req.Hours,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeLogDTO(*log))
}

// GetTimesheet returns logged time grouped by client and month
func (h *TimeLogHandler) GetTimesheet(c *gin.Context) {
	sheet, err := h.logs.Timesheet(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*sheet))
}
