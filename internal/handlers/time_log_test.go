package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/consultant-ledger/internal/dto"
	"github.com/yukikurage/consultant-ledger/internal/models"
)

type TimeLogHandlerTestSuite struct {
	suite.Suite
	env     *testEnv
	handler *TimeLogHandler
	task    models.Task
}

func (suite *TimeLogHandlerTestSuite) SetupTest() {
	suite.env = newTestEnv(suite.T(), nil)
	suite.handler = NewTimeLogHandler(suite.env.logs)
	client := suite.env.createTestClient(suite.T(), "Acme")
	suite.task = suite.env.createTestTask(suite.T(), client.ID, "Audit")
}

func (suite *TimeLogHandlerTestSuite) TestCreateTimeLog_Success() {
	sub := suite.env.createTestSubtask(suite.T(), suite.task.ID, "Draft")

	c, w := newContext("POST", "/api/logs", map[string]any{
		"task_id":    suite.task.ID,
		"subtask_id": sub.ID,
		"date":       "2024-03-04",
		"hours":      1.5,
		"notes":      "kickoff call",
	})
	suite.handler.CreateTimeLog(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TimeLogDTO
	decode(suite.T(), w, &response)
	assert.Equal(suite.T(), "2024-03-04", response.Date)
	assert.Equal(suite.T(), 1.5, response.Hours)
	suite.Require().NotNil(response.SubtaskID)
	assert.Equal(suite.T(), sub.ID, *response.SubtaskID)
}

func (suite *TimeLogHandlerTestSuite) TestCreateTimeLog_Rejected() {
	other := suite.env.createTestTask(suite.T(), suite.task.ClientID, "Other")
	foreign := suite.env.createTestSubtask(suite.T(), other.ID, "Elsewhere")

	tests := []struct {
		name   string
		body   map[string]any
		status int
		field  string
	}{
		{"zero hours", map[string]any{"task_id": suite.task.ID, "hours": 0}, http.StatusBadRequest, "hours"},
		{"too many hours", map[string]any{"task_id": suite.task.ID, "hours": 25}, http.StatusBadRequest, "hours"},
		{"foreign subtask", map[string]any{"task_id": suite.task.ID, "hours": 1, "subtask_id": foreign.ID}, http.StatusBadRequest, "subtask_id"},
		{"unknown task", map[string]any{"task_id": "missing", "hours": 1}, http.StatusNotFound, ""},
		{"bad date", map[string]any{"task_id": suite.task.ID, "hours": 1, "date": "yesterday"}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			c, w := newContext("POST", "/api/logs", tt.body)
			suite.handler.CreateTimeLog(c)

			assert.Equal(suite.T(), tt.status, w.Code)
			if tt.field != "" {
				var response apiErrorBody
				decode(suite.T(), w, &response)
				assert.Equal(suite.T(), tt.field, response.Details["field"])
			}
		})
	}
}

func (suite *TimeLogHandlerTestSuite) TestListTimeLogs_Paginated() {
	suite.env.createTestLog(suite.T(), suite.task.ID, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 1)
	suite.env.createTestLog(suite.T(), suite.task.ID, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), 2)

	c, w := newContext("GET", "/api/logs?page=1&limit=1", nil)
	suite.handler.ListTimeLogs(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TimeLogListResponse
	decode(suite.T(), w, &response)
	suite.Require().Len(response.TimeLogs, 1)
	assert.Equal(suite.T(), "2024-03-09", response.TimeLogs[0].Date, "newest first")
	assert.Equal(suite.T(), int64(2), response.Total)
	suite.Require().NotNil(response.Pagination)
	assert.Equal(suite.T(), 1, response.Pagination.Limit)
}

func (suite *TimeLogHandlerTestSuite) TestListTimeLogs_DateRange() {
	suite.env.createTestLog(suite.T(), suite.task.ID, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 1)
	suite.env.createTestLog(suite.T(), suite.task.ID, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 2)

	c, w := newContext("GET", "/api/logs?from=2024-03-01&to=2024-03-31&task_id="+suite.task.ID, nil)
	suite.handler.ListTimeLogs(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TimeLogListResponse
	decode(suite.T(), w, &response)
	suite.Require().Len(response.TimeLogs, 1)
	assert.Equal(suite.T(), "2024-03-31", response.TimeLogs[0].Date)
	assert.Nil(suite.T(), response.Pagination)
}

func (suite *TimeLogHandlerTestSuite) TestListTimeLogs_InvalidRange() {
	c, w := newContext("GET", "/api/logs?from=March", nil)
	suite.handler.ListTimeLogs(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	c, w = newContext("GET", "/api/logs?from=2024-03-10&to=2024-03-01", nil)
	suite.handler.ListTimeLogs(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TimeLogHandlerTestSuite) TestGetTimesheet() {
	suite.env.createTestLog(suite.T(), suite.task.ID, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 1)
	suite.env.createTestLog(suite.T(), suite.task.ID, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 2)

	c, w := newContext("GET", "/api/timesheet?month=2024-03", nil)
	suite.handler.GetTimesheet(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TimesheetDTO
	decode(suite.T(), w, &response)
	assert.Equal(suite.T(), "2024-03", response.Month)
	assert.Equal(suite.T(), []string{"2024-03", "2024-02"}, response.AvailableMonths)
	assert.Equal(suite.T(), 200.0, response.TotalBillable)
	suite.Require().Len(response.Clients, 1)
	assert.Equal(suite.T(), "Acme", response.Clients[0].Name)
	assert.Equal(suite.T(), "Audit", response.Clients[0].Months[0].Entries[0].TaskTitle)
}

func (suite *TimeLogHandlerTestSuite) TestGetTimesheet_InvalidMonth() {
	c, w := newContext("GET", "/api/timesheet?month=2024-13", nil)
	suite.handler.GetTimesheet(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func TestTimeLogHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TimeLogHandlerTestSuite))
}
