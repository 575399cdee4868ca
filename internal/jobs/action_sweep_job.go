package jobs

import (
	"context"
	"time"

	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/realtime"
	"go.uber.org/zap"
)

// ActionSweepJobName is the name of the overdue action sweep job
const ActionSweepJobName = "action_sweep"

// OverdueLister reports planned actions that slipped past their day. The
// interface keeps the job decoupled from the repository package.
type OverdueLister interface {
	ListOverdue(ctx context.Context, assignedTo string, dayStart time.Time) ([]domain.Action, error)
}

// Broadcaster pushes events to connected dashboard clients.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// ActionSweepJob periodically finds overdue follow-up actions and nudges
// each manager's dashboard with a reminder event.
type ActionSweepJob struct {
	actions OverdueLister
	hub     Broadcaster
	loc     *time.Location
	logger  *zap.Logger
	timeout time.Duration
}

// NewActionSweepJob creates the sweep job. loc is the office timezone used
// for the day boundary.
func NewActionSweepJob(actions OverdueLister, hub Broadcaster, loc *time.Location, logger *zap.Logger, timeout time.Duration) *ActionSweepJob {
	return &ActionSweepJob{
		actions: actions,
		hub:     hub,
		loc:     loc,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one sweep. Called by the scheduler.
func (j *ActionSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	now := time.Now().In(j.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.loc)

	overdue, err := j.actions.ListOverdue(ctx, "", dayStart.UTC())
	if err != nil {
		j.logger.Error("overdue action sweep failed", zap.Error(err))
		return
	}
	if len(overdue) == 0 {
		j.logger.Info("no overdue follow-up actions")
		return
	}

	byManager := make(map[string]int)
	for _, a := range overdue {
		byManager[a.AssignedTo]++
	}

	// One reminder event per manager so dashboards can filter on their login
	for manager, count := range byManager {
		j.hub.Broadcast(realtime.Event{
			Type:   "overdue_reminder",
			Entity: "action",
			Payload: map[string]interface{}{
				"assignedTo": manager,
				"count":      count,
			},
		})
	}

	j.logger.Warn("overdue follow-up actions pending",
		zap.Int("total", len(overdue)),
		zap.Int("managers", len(byManager)),
		zap.Time("day_start", dayStart))
}
