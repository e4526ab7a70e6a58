package services

import (
	"context"
	"time"

	"github.com/yukikurage/consultant-ledger/internal/summary"
)

// DashboardService computes period analytics over the workspace
type DashboardService struct {
	workspace *WorkspaceService
	now       func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(workspace *WorkspaceService) *DashboardService {
	return &DashboardService{workspace: workspace, now: time.Now}
}

// Analyze loads the workspace and computes the metrics of the period that
// mode and cursor select, with client names resolved.
func (s *DashboardService) Analyze(ctx context.Context, mode summary.ViewMode, cursor time.Time) (*summary.Analysis, error) {
	ws, err := s.workspace.Load(ctx)
	if err != nil {
		return nil, err
	}

	analysis := summary.AnalyzeAt(ws.Tasks, mode, cursor, s.now())
	analysis.ClientDistribution = summary.LabelClients(analysis.ClientDistribution, ws.Clients)
	return &analysis, nil
}
