package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
)

// NotificationServiceInterface delivers transfer notices to department
// supervisors. Delivery is best-effort; production sites plug their own
// channel in here.
type NotificationServiceInterface interface {
	NotifyTransfer(ctx context.Context, supervisor entities.User, workOrder entities.WorkOrder, department entities.Department) error
}

// LogNotificationService writes notices to the application log. It is
// the default sink until a real channel (mail, plant displays) is
// configured.
type LogNotificationService struct {
	logger *zap.Logger
}

func NewLogNotificationService(logger *zap.Logger) NotificationServiceInterface {
	return &LogNotificationService{logger: logger}
}

func (s *LogNotificationService) NotifyTransfer(ctx context.Context, supervisor entities.User, workOrder entities.WorkOrder, department entities.Department) error {
	s.logger.Info("supervisor notification",
		zap.String("supervisor", supervisor.FullName),
		zap.String("email", supervisor.Email),
		zap.String("orderNumber", workOrder.OrderNumber),
		zap.String("department", department.Name),
		zap.String("status", workOrder.Status))
	return nil
}
