package listeners

import (
	"context"

	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/events"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/services"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/eventbus"
)

// TimeMetricsListener feeds recorded production events into the timing
// records. It runs after the event committed; a failure here is logged
// by the bus and never affects the recorded event.
type TimeMetricsListener struct {
	metricsService services.TimeMetricsServiceInterface
	logger         *zap.Logger
}

func NewTimeMetricsListener(metricsService services.TimeMetricsServiceInterface, logger *zap.Logger) *TimeMetricsListener {
	return &TimeMetricsListener{metricsService: metricsService, logger: logger}
}

func (l *TimeMetricsListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.ProductionEventRecorded{}.Name(), l.handleProductionEvent)
	l.logger.Info("time metrics listener subscribed", zap.String("event", events.ProductionEventRecorded{}.Name()))
}

func (l *TimeMetricsListener) handleProductionEvent(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ProductionEventRecorded)
	if !ok {
		return nil
	}
	return l.metricsService.ProcessEvent(ctx, e.Event)
}
