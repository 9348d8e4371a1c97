package listeners

import (
	"context"

	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/events"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/services"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/eventbus"
)

// SupervisorListener notifies the supervisors of the receiving
// department when a work order is transferred to them.
type SupervisorListener struct {
	notificationService services.NotificationServiceInterface
	userRepo            repositories.UserRepositoryInterface
	logger              *zap.Logger
}

func NewSupervisorListener(
	notificationService services.NotificationServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) *SupervisorListener {
	return &SupervisorListener{
		notificationService: notificationService,
		userRepo:            userRepo,
		logger:              logger,
	}
}

func (l *SupervisorListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.WorkOrderTransferred{}.Name(), l.handleTransfer)
	l.logger.Info("supervisor listener subscribed", zap.String("event", events.WorkOrderTransferred{}.Name()))
}

func (l *SupervisorListener) handleTransfer(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.WorkOrderTransferred)
	if !ok || e.ToDepartment == nil {
		return nil
	}

	supervisors, err := l.userRepo.FindSupervisorsByDepartment(ctx, e.ToDepartment.ID)
	if err != nil {
		return err
	}
	if len(supervisors) == 0 {
		l.logger.Debug("no supervisors to notify",
			zap.Uint64("departmentId", e.ToDepartment.ID))
		return nil
	}

	for _, supervisor := range supervisors {
		if err := l.notificationService.NotifyTransfer(ctx, supervisor, e.WorkOrder, *e.ToDepartment); err != nil {
			l.logger.Error("failed to notify supervisor",
				zap.Uint64("userId", supervisor.ID),
				zap.Error(err))
		}
	}
	return nil
}
