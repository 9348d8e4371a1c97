package services

import (
	"context"
	"errors"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/dto"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

type TimeMetricsServiceInterface interface {
	// ProcessEvent folds one recorded production event into the timing
	// records. Runs as a bus listener after the event committed, so it
	// must tolerate being behind: a malformed sequence degrades to a
	// logged warning, never to an error that would imply a retry.
	ProcessEvent(ctx context.Context, e entities.ProductionEvent) error
	GetWorkOrderMetrics(ctx context.Context, workOrderID, departmentID uint64) (*dto.TimeMetricDTO, error)
	GetPartStatistics(ctx context.Context) ([]dto.PartTimeStatisticDTO, error)
	GetPartStatisticsForPart(ctx context.Context, partID uint64) ([]dto.PartTimeStatisticDTO, error)
}

type TimeMetricsService struct {
	workOrderRepo  repositories.WorkOrderRepositoryInterface
	eventRepo      repositories.ProductionEventRepositoryInterface
	timeMetricRepo repositories.TimeMetricRepositoryInterface
	partStatRepo   repositories.PartStatisticRepositoryInterface
	logger         *zap.Logger
}

func NewTimeMetricsService(
	workOrderRepo repositories.WorkOrderRepositoryInterface,
	eventRepo repositories.ProductionEventRepositoryInterface,
	timeMetricRepo repositories.TimeMetricRepositoryInterface,
	partStatRepo repositories.PartStatisticRepositoryInterface,
	logger *zap.Logger,
) TimeMetricsServiceInterface {
	return &TimeMetricsService{
		workOrderRepo:  workOrderRepo,
		eventRepo:      eventRepo,
		timeMetricRepo: timeMetricRepo,
		partStatRepo:   partStatRepo,
		logger:         logger,
	}
}

func (s *TimeMetricsService) ProcessEvent(ctx context.Context, e entities.ProductionEvent) error {
	switch e.EventType {
	case constants.EventEntry:
		return s.processEntry(ctx, e)
	case constants.EventExit:
		return s.processExit(ctx, e)
	case constants.EventResume:
		return s.processResume(ctx, e)
	default:
		// PAUSE is accounted for when the matching RESUME arrives;
		// ASSIGNED and NOTE carry no timing information.
		return nil
	}
}

// processEntry opens the timing record. Waiting time is measured from
// the last EXIT anywhere else; the first department of a lot has no
// predecessor and records no waiting time at all.
func (s *TimeMetricsService) processEntry(ctx context.Context, e entities.ProductionEvent) error {
	metric := entities.TimeMetric{
		WorkOrderID:  e.WorkOrderID,
		DepartmentID: e.DepartmentID,
		EntryAt:      e.CreatedAt,
	}

	lastExit, err := s.eventRepo.LastExitOutsideDepartment(ctx, e.WorkOrderID, e.DepartmentID)
	switch {
	case err == nil:
		metric.WaitingMinutes = null.Int64From(utils.MinutesBetween(lastExit.CreatedAt, e.CreatedAt))
	case errors.Is(err, apperrors.ErrNotFound):
		// first department, nothing to wait on
	default:
		return err
	}

	_, err = s.timeMetricRepo.UpsertEntry(ctx, metric)
	return err
}

// processExit closes the timing record and feeds the completed visit
// into the per-(part, department) aggregate. An EXIT without a matching
// record (timing enabled mid-production) is skipped with a warning.
func (s *TimeMetricsService) processExit(ctx context.Context, e entities.ProductionEvent) error {
	metric, err := s.timeMetricRepo.FindMetric(ctx, e.WorkOrderID, e.DepartmentID)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("exit without a timing record, skipping",
			zap.Uint64("workOrderId", e.WorkOrderID),
			zap.Uint64("departmentId", e.DepartmentID))
		return nil
	}
	if err != nil {
		return err
	}
	if metric.Completed {
		// Already closed: a manual EXIT and the automatic EXIT of the
		// same hand-off both land here, and the visit must count once.
		return nil
	}

	advancement := utils.MinutesBetween(metric.EntryAt, e.CreatedAt)
	working := advancement - metric.PauseMinutes
	if working < 0 {
		working = 0
	}

	metric.ExitAt = null.TimeFrom(e.CreatedAt)
	metric.AdvancementMinutes = null.Int64From(advancement)
	metric.WorkingMinutes = null.Int64From(working)
	completed, err := s.timeMetricRepo.CompleteMetric(ctx, *metric)
	if errors.Is(err, apperrors.ErrNotFound) {
		// A concurrent exit processor closed the record first.
		return nil
	}
	if err != nil {
		return err
	}

	wo, err := s.workOrderRepo.FindWorkOrder(ctx, e.WorkOrderID)
	if err != nil {
		return err
	}
	if err := s.partStatRepo.Increment(ctx, wo.PartID, e.DepartmentID, advancement, working, completed.WaitingMinutes); err != nil {
		return err
	}

	s.logger.Info("department visit completed",
		zap.Uint64("workOrderId", e.WorkOrderID),
		zap.Uint64("departmentId", e.DepartmentID),
		zap.Int64("advancementMinutes", advancement),
		zap.Int64("workingMinutes", working),
		zap.Int64("pauseMinutes", metric.PauseMinutes))
	return nil
}

// processResume charges the closed pause interval to the timing record.
func (s *TimeMetricsService) processResume(ctx context.Context, e entities.ProductionEvent) error {
	pause, err := s.eventRepo.LastPauseInDepartment(ctx, e.WorkOrderID, e.DepartmentID, e.CreatedAt)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("resume without a preceding pause, skipping",
			zap.Uint64("workOrderId", e.WorkOrderID),
			zap.Uint64("departmentId", e.DepartmentID))
		return nil
	}
	if err != nil {
		return err
	}

	minutes := utils.MinutesBetween(pause.CreatedAt, e.CreatedAt)
	if minutes == 0 {
		return nil
	}
	err = s.timeMetricRepo.AddPauseMinutes(ctx, e.WorkOrderID, e.DepartmentID, minutes)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("resume without a timing record, skipping",
			zap.Uint64("workOrderId", e.WorkOrderID),
			zap.Uint64("departmentId", e.DepartmentID))
		return nil
	}
	return err
}

func (s *TimeMetricsService) GetWorkOrderMetrics(ctx context.Context, workOrderID, departmentID uint64) (*dto.TimeMetricDTO, error) {
	metric, err := s.timeMetricRepo.FindMetric(ctx, workOrderID, departmentID)
	if err != nil {
		return nil, err
	}
	return timeMetricDTO(metric), nil
}

func (s *TimeMetricsService) GetPartStatistics(ctx context.Context) ([]dto.PartTimeStatisticDTO, error) {
	stats, err := s.partStatRepo.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}
	return partStatisticDTOs(stats), nil
}

func (s *TimeMetricsService) GetPartStatisticsForPart(ctx context.Context, partID uint64) ([]dto.PartTimeStatisticDTO, error) {
	stats, err := s.partStatRepo.GetStatisticsForPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	return partStatisticDTOs(stats), nil
}

func timeMetricDTO(m *entities.TimeMetric) *dto.TimeMetricDTO {
	out := &dto.TimeMetricDTO{
		WorkOrderID:  m.WorkOrderID,
		DepartmentID: m.DepartmentID,
		EntryAt:      m.EntryAt.Format(time.RFC3339),
		PauseMinutes: m.PauseMinutes,
		Completed:    m.Completed,
	}
	if m.ExitAt.Valid {
		out.ExitAt = m.ExitAt.Time.Format(time.RFC3339)
	}
	if m.AdvancementMinutes.Valid {
		v := m.AdvancementMinutes.Int64
		out.AdvancementMinutes = &v
	}
	if m.WorkingMinutes.Valid {
		v := m.WorkingMinutes.Int64
		out.WorkingMinutes = &v
	}
	if m.WaitingMinutes.Valid {
		v := m.WaitingMinutes.Int64
		out.WaitingMinutes = &v
	}
	return out
}

func partStatisticDTOs(stats []entities.PartTimeStatistic) []dto.PartTimeStatisticDTO {
	out := make([]dto.PartTimeStatisticDTO, 0, len(stats))
	for _, s := range stats {
		out = append(out, dto.PartTimeStatisticDTO{
			PartNumber:            s.PartNumber,
			DepartmentCode:        s.DepartmentCode,
			CompletedCount:        s.CompletedCount,
			AvgAdvancementMinutes: s.AvgAdvancementMinutes,
			AvgWorkingMinutes:     s.AvgWorkingMinutes,
			AvgWaitingMinutes:     s.AvgWaitingMinutes,
		})
	}
	return out
}
