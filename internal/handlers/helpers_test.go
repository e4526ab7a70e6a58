package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/consultant-ledger/internal/database"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"github.com/yukikurage/consultant-ledger/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db *gorm.DB

	clientRepo  repository.ClientRepository
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubtaskRepository
	logRepo     repository.TimeLogRepository
	profileRepo repository.ProfileRepository

	clients   *services.ClientService
	tasks     *services.TaskService
	subtasks  *services.SubtaskService
	logs      *services.TimeLogService
	profiles  *services.ProfileService
	workspace *services.WorkspaceService
	dashboard *services.DashboardService
}

func newTestEnv(t *testing.T, assistant services.Assistant) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: opens a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))

	env := &testEnv{
		db:          db,
		clientRepo:  repository.NewClientRepository(db),
		taskRepo:    repository.NewTaskRepository(db),
		subtaskRepo: repository.NewSubtaskRepository(db),
		logRepo:     repository.NewTimeLogRepository(db),
		profileRepo: repository.NewProfileRepository(db),
	}
	env.tasks = services.NewTaskService(env.taskRepo, env.clientRepo, env.subtaskRepo, env.logRepo)
	env.clients = services.NewClientService(env.clientRepo, env.tasks)
	env.subtasks = services.NewSubtaskService(env.taskRepo, env.subtaskRepo, assistant)
	env.logs = services.NewTimeLogService(env.logRepo, env.taskRepo, env.subtaskRepo, env.clientRepo, assistant)
	env.profiles = services.NewProfileService(env.profileRepo)
	env.workspace = services.NewWorkspaceService(env.clientRepo, env.taskRepo, env.subtaskRepo, env.logRepo, env.profileRepo)
	env.dashboard = services.NewDashboardService(env.workspace)
	return env
}

func (e *testEnv) createTestClient(t *testing.T, name string) models.Client {
	t.Helper()
	client, err := e.clients.Create(context.Background(), services.CreateClientInput{Name: name})
	require.NoError(t, err)
	return *client
}

func (e *testEnv) createTestTask(t *testing.T, clientID, title string) models.Task {
	t.Helper()
	due := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		ClientID:       clientID,
		Title:          title,
		StartDate:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:        &due,
		Status:         models.TaskStatusInProgress,
		EstimatedHours: 10,
		HourlyRate:     100,
		IsBillable:     true,
	}
	require.NoError(t, e.taskRepo.Create(context.Background(), &task))
	return task
}

func (e *testEnv) createTestSubtask(t *testing.T, taskID, title string) models.Subtask {
	t.Helper()
	sub := models.Subtask{ParentID: taskID, Title: title, Priority: models.PriorityMedium, Status: models.TaskStatusNotStarted}
	require.NoError(t, e.subtaskRepo.Create(context.Background(), &sub))
	return sub
}

func (e *testEnv) createTestLog(t *testing.T, taskID string, day time.Time, hours float64) models.TimeLog {
	t.Helper()
	log := models.TimeLog{TaskID: taskID, Date: day, Hours: hours}
	require.NoError(t, e.logRepo.Create(context.Background(), &log))
	return log
}

// newContext builds a test context with an optional JSON body
func newContext(method, url string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := newRequest(method, url, body)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	return c, w
}

func newRequest(method, url string, body any) *http.Request {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, url, nil)
	case []byte:
		req = httptest.NewRequest(method, url, bytes.NewReader(b))
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, url, bytes.NewReader(encoded))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type apiErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type stubAssistant struct {
	suggestions []services.SubtaskSuggestion
	invoice     string
	err         error
}

func (a *stubAssistant) SuggestSubtasks(ctx context.Context, task models.Task, notes string) ([]services.SubtaskSuggestion, error) {
	return a.suggestions, a.err
}

func (a *stubAssistant) SummarizeForInvoice(ctx context.Context, task models.Task, logs []models.TimeLog) (string, error) {
	return a.invoice, a.err
}

type failingDeleteRepo struct {
	repository.SubtaskRepository
	failID string
}

func (r *failingDeleteRepo) Delete(ctx context.Context, id string) error {
	if id == r.failID {
		return errors.New("disk full")
	}
	return r.SubtaskRepository.Delete(ctx, id)
}
