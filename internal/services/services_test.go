package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/consultant-ledger/internal/database"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"github.com/yukikurage/consultant-ledger/internal/summary"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubAssistant struct {
	suggestions []SubtaskSuggestion
	invoice     string
	err         error
	calls       int
}

func (a *stubAssistant) SuggestSubtasks(ctx context.Context, task models.Task, notes string) ([]SubtaskSuggestion, error) {
	a.calls++
	return a.suggestions, a.err
}

func (a *stubAssistant) SummarizeForInvoice(ctx context.Context, task models.Task, logs []models.TimeLog) (string, error) {
	a.calls++
	return a.invoice, a.err
}

// flakySubtaskRepo fails chosen operations and delegates the rest.
type flakySubtaskRepo struct {
	repository.SubtaskRepository
	failDelete map[string]error
	failUpdate map[string]error
}

func (r *flakySubtaskRepo) Delete(ctx context.Context, id string) error {
	if err, ok := r.failDelete[id]; ok {
		return err
	}
	return r.SubtaskRepository.Delete(ctx, id)
}

func (r *flakySubtaskRepo) Update(ctx context.Context, id string, fields map[string]any) (*models.Subtask, error) {
	if err, ok := r.failUpdate[id]; ok {
		return nil, err
	}
	return r.SubtaskRepository.Update(ctx, id, fields)
}

type failingClientRepo struct {
	repository.ClientRepository
}

func (failingClientRepo) List(ctx context.Context) ([]models.Client, error) {
	return nil, errors.New("connection refused")
}

type ServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context

	clientRepo  repository.ClientRepository
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubtaskRepository
	logRepo     repository.TimeLogRepository
	profileRepo repository.ProfileRepository

	assistant *stubAssistant
	tasks     *TaskService
	clients   *ClientService
	subtasks  *SubtaskService
	logs      *TimeLogService
	profiles  *ProfileService
	workspace *WorkspaceService
	dashboard *DashboardService
}

func (suite *ServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	// Every connection to :memory: opens a separate database.
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(database.AutoMigrate(suite.db))

	suite.ctx = context.Background()
	suite.clientRepo = repository.NewClientRepository(suite.db)
	suite.taskRepo = repository.NewTaskRepository(suite.db)
	suite.subtaskRepo = repository.NewSubtaskRepository(suite.db)
	suite.logRepo = repository.NewTimeLogRepository(suite.db)
	suite.profileRepo = repository.NewProfileRepository(suite.db)

	suite.assistant = &stubAssistant{}
	suite.tasks = NewTaskService(suite.taskRepo, suite.clientRepo, suite.subtaskRepo, suite.logRepo)
	suite.clients = NewClientService(suite.clientRepo, suite.tasks)
	suite.subtasks = NewSubtaskService(suite.taskRepo, suite.subtaskRepo, suite.assistant)
	suite.logs = NewTimeLogService(suite.logRepo, suite.taskRepo, suite.subtaskRepo, suite.clientRepo, suite.assistant)
	suite.profiles = NewProfileService(suite.profileRepo)
	suite.workspace = NewWorkspaceService(suite.clientRepo, suite.taskRepo, suite.subtaskRepo, suite.logRepo, suite.profileRepo)
	suite.dashboard = NewDashboardService(suite.workspace)
}

func (suite *ServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (suite *ServiceTestSuite) createClient(name string) *models.Client {
	client, err := suite.clients.Create(suite.ctx, CreateClientInput{Name: name})
	suite.Require().NoError(err)
	return client
}

func (suite *ServiceTestSuite) createTask(clientID string) *summary.TaskSummary {
	due := date(2024, time.March, 31)
	task, err := suite.tasks.Create(suite.ctx, CreateTaskInput{
		ClientID:       clientID,
		Title:          "Market study",
		StartDate:      date(2024, time.March, 1),
		DueDate:        &due,
		Status:         models.TaskStatusInProgress,
		EstimatedHours: 10,
		HourlyRate:     100,
		IsBillable:     true,
	})
	suite.Require().NoError(err)
	return task
}

func (suite *ServiceTestSuite) createSubtask(taskID, title string) models.Subtask {
	sub := models.Subtask{ParentID: taskID, Title: title, Priority: models.PriorityMedium, Status: models.TaskStatusNotStarted}
	suite.Require().NoError(suite.subtaskRepo.Create(suite.ctx, &sub))
	return sub
}

func (suite *ServiceTestSuite) logTime(taskID string, day time.Time, hours float64) *models.TimeLog {
	log, err := suite.logs.Create(suite.ctx, CreateTimeLogInput{TaskID: taskID, Date: day, Hours: hours})
	suite.Require().NoError(err)
	return log
}

func (suite *ServiceTestSuite) TestCreateClient() {
	first := suite.createClient("  Acme  ")
	second := suite.createClient("Globex")

	suite.Equal("Acme", first.Name)
	suite.Equal(models.ClientColors[0], first.Color)
	suite.Equal(models.ClientColors[1], second.Color)

	_, err := suite.clients.Create(suite.ctx, CreateClientInput{Name: " "})
	var vErr *ValidationError
	suite.ErrorAs(err, &vErr)
	suite.Equal("name", vErr.Field)
}

func (suite *ServiceTestSuite) TestCreateTask_Validation() {
	client := suite.createClient("Acme")

	_, err := suite.tasks.Create(suite.ctx, CreateTaskInput{ClientID: client.ID, Title: ""})
	var vErr *ValidationError
	suite.ErrorAs(err, &vErr)

	_, err = suite.tasks.Create(suite.ctx, CreateTaskInput{ClientID: client.ID, Title: "x", Status: "Done"})
	suite.ErrorAs(err, &vErr)

	_, err = suite.tasks.Create(suite.ctx, CreateTaskInput{ClientID: "missing", Title: "x"})
	suite.ErrorIs(err, ErrClientNotFound)
}

func (suite *ServiceTestSuite) TestCreateTask_Defaults() {
	client := suite.createClient("Acme")
	suite.tasks.now = func() time.Time { return time.Date(2024, 5, 6, 15, 4, 5, 0, time.UTC) }

	task, err := suite.tasks.Create(suite.ctx, CreateTaskInput{ClientID: client.ID, Title: "Kickoff"})
	suite.Require().NoError(err)

	suite.Len(task.ID, 36)
	suite.Equal(models.TaskStatusNotStarted, task.Status)
	suite.Equal(date(2024, time.May, 6), task.StartDate)
	suite.Equal(summary.BudgetOnTrack, task.BudgetStatus)
}

func (suite *ServiceTestSuite) TestUpdateTask_Partial() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)

	blocked := models.TaskStatusBlocked
	updated, err := suite.tasks.Update(suite.ctx, task.ID, UpdateTaskInput{Status: &blocked, ClearDueDate: true})
	suite.Require().NoError(err)

	suite.Equal(models.TaskStatusBlocked, updated.Status)
	suite.Nil(updated.DueDate)
	suite.Equal("Market study", updated.Title)
	suite.Equal(100.0, updated.HourlyRate)

	_, err = suite.tasks.Update(suite.ctx, "missing", UpdateTaskInput{Status: &blocked})
	suite.ErrorIs(err, ErrTaskNotFound)

	early := date(2024, time.February, 1)
	_, err = suite.tasks.Update(suite.ctx, task.ID, UpdateTaskInput{DueDate: &early})
	var vErr *ValidationError
	suite.ErrorAs(err, &vErr)
}

func (suite *ServiceTestSuite) TestGetTask_RecomputesFromSubtasks() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	sub := suite.createSubtask(task.ID, "Interviews")
	_, err := suite.subtaskRepo.Update(suite.ctx, sub.ID, map[string]any{
		"estimated_hours":  4.0,
		"percent_complete": 100,
		"status":           models.TaskStatusComplete,
	})
	suite.Require().NoError(err)

	got, err := suite.tasks.Get(suite.ctx, task.ID)
	suite.Require().NoError(err)

	suite.Equal(models.TaskStatusComplete, got.Status)
	suite.Equal(4.0, got.EstimatedHours)
	suite.Equal(100.0, got.CalculatedProgress)
}

func (suite *ServiceTestSuite) TestDeleteTask_ReturnsPruning() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	sub := suite.createSubtask(task.ID, "Interviews")
	log := suite.logTime(task.ID, date(2024, time.March, 4), 2)

	pruning, err := suite.tasks.Delete(suite.ctx, task.ID)
	suite.Require().NoError(err)

	suite.Equal([]string{task.ID}, pruning.TaskIDs)
	suite.Equal([]string{sub.ID}, pruning.SubtaskIDs)
	suite.Equal([]string{log.ID}, pruning.TimeLogIDs)

	_, err = suite.tasks.Delete(suite.ctx, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestDeleteClient_Cascades() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	suite.logTime(task.ID, date(2024, time.March, 4), 2)

	pruning, err := suite.clients.Delete(suite.ctx, client.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{task.ID}, pruning.TaskIDs)
	suite.Len(pruning.TimeLogIDs, 1)

	ws, err := suite.workspace.Load(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(ws.Clients)
	suite.Empty(ws.Tasks)
	suite.Empty(ws.Logs)
}

func (suite *ServiceTestSuite) TestClientOverviewsAndMonths() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	suite.logTime(task.ID, date(2024, time.March, 4), 3)

	overviews, err := suite.clients.Overviews(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(overviews, 1)
	suite.Equal(1, overviews[0].ActiveTasks)
	suite.Equal("300", overviews[0].Revenue.String())

	months, err := suite.clients.Months(suite.ctx, client.ID)
	suite.Require().NoError(err)
	suite.Require().Len(months, 1)
	suite.Equal("2024-03", months[0].Month)
	suite.Equal(7.0, months[0].TotalPending)

	_, err = suite.clients.Months(suite.ctx, "missing")
	suite.ErrorIs(err, ErrClientNotFound)
}

func (suite *ServiceTestSuite) TestSync_AppliesPlan() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	kept := suite.createSubtask(task.ID, "Draft")
	dropped := suite.createSubtask(task.ID, "Review")

	result, err := suite.subtasks.Sync(suite.ctx, task.ID, []models.Subtask{
		{ID: kept.ID, Title: "Draft v2", PercentComplete: 50, EstimatedHours: 2, Status: models.TaskStatusInProgress},
		{ID: "k3j9x2", Title: "Ship", EstimatedHours: 1},
	})
	suite.Require().NoError(err)

	suite.Require().Len(result, 2)
	suite.Equal(kept.ID, result[0].ID)
	suite.Equal("Draft v2", result[0].Title)
	suite.Equal(50, result[0].PercentComplete)
	suite.Equal("Ship", result[1].Title)
	suite.Len(result[1].ID, 36)
	suite.Equal(models.PriorityMedium, result[1].Priority)
	for _, s := range result {
		suite.NotEqual(dropped.ID, s.ID)
	}
}

func (suite *ServiceTestSuite) TestSync_RejectsInvalidInputBeforeWriting() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	existing := suite.createSubtask(task.ID, "Draft")

	_, err := suite.subtasks.Sync(suite.ctx, task.ID, []models.Subtask{{Title: "Too much", PercentComplete: 150}})
	var vErr *ValidationError
	suite.Require().ErrorAs(err, &vErr)
	suite.Equal("percent_complete", vErr.Field)

	stored, err := suite.subtaskRepo.ListByTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(stored, 1)
	suite.Equal(existing.ID, stored[0].ID)

	_, err = suite.subtasks.Sync(suite.ctx, "missing", nil)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestSync_PartialFailure() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	kept := suite.createSubtask(task.ID, "Draft")
	stuck := suite.createSubtask(task.ID, "Review")

	flaky := &flakySubtaskRepo{
		SubtaskRepository: suite.subtaskRepo,
		failDelete:        map[string]error{stuck.ID: errors.New("disk full")},
	}
	svc := NewSubtaskService(suite.taskRepo, flaky, nil)

	result, err := svc.Sync(suite.ctx, task.ID, []models.Subtask{
		{ID: kept.ID, Title: "Draft v2"},
		{ID: "tmp1", Title: "Ship"},
	})

	var batch *PartialBatchError
	suite.Require().ErrorAs(err, &batch)
	suite.Require().Len(batch.Failed, 1)
	suite.Equal(summary.ChangeDelete, batch.Failed[0].Change.Kind)
	suite.Len(batch.Succeeded, 2)
	suite.Equal("1 of 3 subtask operations failed", batch.Error())

	suite.Len(result, 3, "applied operations are kept")
}

func (suite *ServiceTestSuite) TestSync_VanishedUpdateTarget() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	gone := suite.createSubtask(task.ID, "Draft")

	flaky := &flakySubtaskRepo{
		SubtaskRepository: suite.subtaskRepo,
		failUpdate:        map[string]error{gone.ID: gorm.ErrRecordNotFound},
	}
	svc := NewSubtaskService(suite.taskRepo, flaky, nil)

	_, err := svc.Sync(suite.ctx, task.ID, []models.Subtask{{ID: gone.ID, Title: "Draft v2"}})

	suite.ErrorIs(err, ErrSubtaskNotFound)
}

func (suite *ServiceTestSuite) TestSuggest() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)

	suite.assistant.suggestions = []SubtaskSuggestion{
		{Title: "Interview stakeholders", EstimatedHours: 3, Priority: models.PriorityHigh},
		{Title: "  ", EstimatedHours: 1, Priority: models.PriorityLow},
		{Title: "Write report", EstimatedHours: -2, Priority: "Urgent"},
	}

	suggested, err := suite.subtasks.Suggest(suite.ctx, task.ID, "")
	suite.Require().NoError(err)
	suite.Require().Len(suggested, 2)

	first := suggested[0]
	suite.False(summary.IsPersistedIdentifier(first.ID))
	suite.Equal(task.ID, first.ParentID)
	suite.Equal(models.TaskStatusNotStarted, first.Status)
	suite.Zero(first.PercentComplete)
	suite.Equal("Me", first.AssignedTo)
	suite.Equal(models.PriorityMedium, suggested[1].Priority)
	suite.Zero(suggested[1].EstimatedHours)

	// Suggestions become real subtasks once synced.
	stored, err := suite.subtasks.Sync(suite.ctx, task.ID, suggested)
	suite.Require().NoError(err)
	suite.Len(stored, 2)
}

func (suite *ServiceTestSuite) TestSuggest_DegradesToEmpty() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)

	suite.assistant.err = errors.New("rate limited")
	suggested, err := suite.subtasks.Suggest(suite.ctx, task.ID, "notes")
	suite.Require().NoError(err)
	suite.Empty(suggested)
	suite.NotNil(suggested)

	noAssistant := NewSubtaskService(suite.taskRepo, suite.subtaskRepo, nil)
	suggested, err = noAssistant.Suggest(suite.ctx, task.ID, "notes")
	suite.Require().NoError(err)
	suite.Empty(suggested)

	_, err = suite.subtasks.Suggest(suite.ctx, "missing", "")
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestCreateTimeLog_Validation() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	other := suite.createTask(client.ID)
	foreign := suite.createSubtask(other.ID, "Elsewhere")

	var vErr *ValidationError
	_, err := suite.logs.Create(suite.ctx, CreateTimeLogInput{TaskID: task.ID, Hours: 0})
	suite.ErrorAs(err, &vErr)

	_, err = suite.logs.Create(suite.ctx, CreateTimeLogInput{TaskID: task.ID, Hours: 1, SubtaskID: &foreign.ID})
	suite.ErrorAs(err, &vErr)
	suite.Equal("subtask_id", vErr.Field)

	_, err = suite.logs.Create(suite.ctx, CreateTimeLogInput{TaskID: "missing", Hours: 1})
	suite.ErrorIs(err, ErrTaskNotFound)

	own := suite.createSubtask(task.ID, "Here")
	log, err := suite.logs.Create(suite.ctx, CreateTimeLogInput{TaskID: task.ID, Hours: 1.5, SubtaskID: &own.ID, Notes: " call "})
	suite.Require().NoError(err)
	suite.Equal("call", log.Notes)
}

func (suite *ServiceTestSuite) TestTimesheet() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	suite.logTime(task.ID, date(2024, time.February, 10), 1)
	suite.logTime(task.ID, date(2024, time.March, 4), 2)

	sheet, err := suite.logs.Timesheet(suite.ctx, "2024-03")
	suite.Require().NoError(err)
	suite.Equal(2.0, sheet.TotalHours)
	suite.Equal([]string{"2024-03", "2024-02"}, sheet.AvailableMonths)
	suite.Equal("200", sheet.TotalBillable.String())

	all, err := suite.logs.Timesheet(suite.ctx, "all")
	suite.Require().NoError(err)
	suite.Equal(3.0, all.TotalHours)

	_, err = suite.logs.Timesheet(suite.ctx, "March")
	var vErr *ValidationError
	suite.ErrorAs(err, &vErr)
}

func (suite *ServiceTestSuite) TestInvoiceSummary() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)

	text, err := suite.logs.InvoiceSummary(suite.ctx, task.ID, "")
	suite.Require().NoError(err)
	suite.Empty(text)
	suite.Zero(suite.assistant.calls, "nothing logged, assistant not asked")

	suite.logTime(task.ID, date(2024, time.March, 4), 2)
	suite.assistant.invoice = "Conducted market interviews."
	text, err = suite.logs.InvoiceSummary(suite.ctx, task.ID, "2024-03")
	suite.Require().NoError(err)
	suite.Equal("Conducted market interviews.", text)

	suite.assistant.err = errors.New("timeout")
	text, err = suite.logs.InvoiceSummary(suite.ctx, task.ID, "")
	suite.Require().NoError(err)
	suite.Empty(text)
}

func (suite *ServiceTestSuite) TestProfile() {
	profile, err := suite.profiles.Get(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("ME", profile.Initials)

	saved, err := suite.profiles.Update(suite.ctx, UpdateProfileInput{Name: "ada lovelace", Role: "Advisor"})
	suite.Require().NoError(err)
	suite.Equal("AL", saved.Initials)

	profile, err = suite.profiles.Get(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("ada lovelace", profile.Name)

	_, err = suite.profiles.Update(suite.ctx, UpdateProfileInput{Name: ""})
	var vErr *ValidationError
	suite.ErrorAs(err, &vErr)
}

func (suite *ServiceTestSuite) TestWorkspaceLoad_FailsAsAWhole() {
	svc := NewWorkspaceService(failingClientRepo{}, suite.taskRepo, suite.subtaskRepo, suite.logRepo, suite.profileRepo)

	ws, err := svc.Load(suite.ctx)

	suite.Nil(ws)
	suite.ErrorContains(err, "failed to list clients")
}

func (suite *ServiceTestSuite) TestDashboard_EndToEnd() {
	client := suite.createClient("Acme")
	task := suite.createTask(client.ID)
	suite.logTime(task.ID, date(2024, time.March, 5), 3)
	suite.logTime(task.ID, date(2024, time.March, 20), 2)
	suite.dashboard.now = func() time.Time { return date(2024, time.March, 15) }

	analysis, err := suite.dashboard.Analyze(suite.ctx, summary.ViewMonth, date(2024, time.March, 15))
	suite.Require().NoError(err)

	suite.Equal("500", analysis.Totals.Revenue.String())
	suite.Equal(5.0, analysis.Totals.Hours)
	suite.Equal(1, analysis.Totals.DeadlinesCount)
	suite.Require().Len(analysis.ClientDistribution, 1)
	suite.Equal("Acme", analysis.ClientDistribution[0].Name)
	suite.Require().Len(analysis.ActiveTasks, 1)
	suite.Equal(summary.BudgetOnTrack, analysis.ActiveTasks[0].BudgetStatus)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
