package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/dto"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/events"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/config"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/eventbus"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

type TrackingServiceInterface interface {
	CreateProductionEvent(ctx context.Context, payload dto.CreateProductionEventDTO) (*dto.ProductionEventDTO, error)
	CreateAssignmentEvent(ctx context.Context, payload dto.CreateAssignmentEventDTO) (*dto.ProductionEventDTO, error)
	GetWorkOrderTrackingStatus(ctx context.Context, workOrderID uint64) (*dto.TrackingStatusDTO, error)
	GetWorkOrderEvents(ctx context.Context, workOrderID uint64) ([]dto.EventSummaryDTO, error)
	ListProductionEvents(ctx context.Context, filter repositories.EventFilter) ([]dto.EventSummaryDTO, uint64, error)
	GetDepartmentWorkOrderList(ctx context.Context, departmentID uint64) (*dto.DepartmentBoardDTO, error)
}

type TrackingService struct {
	txManager       repositories.TxManagerInterface
	workOrderRepo   repositories.WorkOrderRepositoryInterface
	departmentRepo  repositories.DepartmentRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	eventRepo       repositories.ProductionEventRepositoryInterface
	timeMetricRepo  repositories.TimeMetricRepositoryInterface
	cacheRepo       repositories.CacheRepositoryInterface
	workflowService WorkflowServiceInterface
	bus             *eventbus.Bus
	cacheCfg        config.CacheConfig
	logger          *zap.Logger
	now             func() time.Time
}

func NewTrackingService(
	txManager repositories.TxManagerInterface,
	workOrderRepo repositories.WorkOrderRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	eventRepo repositories.ProductionEventRepositoryInterface,
	timeMetricRepo repositories.TimeMetricRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	workflowService WorkflowServiceInterface,
	bus *eventbus.Bus,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) TrackingServiceInterface {
	return &TrackingService{
		txManager:       txManager,
		workOrderRepo:   workOrderRepo,
		departmentRepo:  departmentRepo,
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		timeMetricRepo:  timeMetricRepo,
		cacheRepo:       cacheRepo,
		workflowService: workflowService,
		bus:             bus,
		cacheCfg:        cacheCfg,
		logger:          logger,
		now:             time.Now,
	}
}

// CreateProductionEvent validates and appends one production event,
// updating the cached ODL status in the same transaction when the event
// type derives one. An accepted EXIT additionally triggers the
// automatic transfer to the next department; its outcome is annotated
// on the response and never fails the recorded event.
func (s *TrackingService) CreateProductionEvent(ctx context.Context, payload dto.CreateProductionEventDTO) (*dto.ProductionEventDTO, error) {
	eventType := constants.EventType(payload.EventType)
	if !constants.IsValidEventType(eventType) {
		return nil, apperrors.NewInvalidInputError("unknown event type %q", payload.EventType)
	}

	wo, err := s.workOrderRepo.FindWorkOrder(ctx, payload.WorkOrderID)
	if err != nil {
		return nil, err
	}
	dept, err := s.departmentRepo.FindDepartment(ctx, payload.DepartmentID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindUserByID(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	if err := s.checkEventLegality(ctx, wo, dept, eventType); err != nil {
		return nil, err
	}

	event := entities.ProductionEvent{
		WorkOrderID:  wo.ID,
		DepartmentID: dept.ID,
		EventType:    eventType,
		UserID:       user.ID,
		Notes:        null.NewString(payload.Notes, payload.Notes != ""),
		DurationMs:   null.NewInt64(payload.DurationMs, payload.DurationMs > 0),
	}

	newStatus, statusChanges := constants.DeriveStatus(dept.Type, eventType)
	var created *entities.ProductionEvent
	err = s.txManager.RunSerializable(ctx, func(tx pgx.Tx) error {
		if statusChanges && newStatus != wo.Status {
			if err := s.workOrderRepo.UpdateStatusIfInTx(ctx, tx, wo.ID, wo.Version, newStatus); err != nil {
				return err
			}
		}
		var txErr error
		created, txErr = s.eventRepo.CreateEventInTx(ctx, tx, event)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("production event recorded",
		zap.Uint64("workOrderId", wo.ID),
		zap.Uint64("departmentId", dept.ID),
		zap.String("eventType", string(eventType)),
		zap.Uint64("userId", user.ID))

	s.bus.Publish(ctx, events.ProductionEventRecorded{Event: *created})
	s.invalidateBoard(ctx, dept.ID)

	response := s.buildEventDTO(created, wo, dept, user)
	if statusChanges {
		response.WorkOrder.Status = newStatus
	}

	if eventType == constants.EventExit {
		transfer, terr := s.workflowService.ExecuteAutoTransfer(ctx, wo.ID, dept.ID, user.ID, "")
		if terr != nil {
			s.logger.Error("auto-transfer after exit failed",
				zap.Uint64("workOrderId", wo.ID),
				zap.Uint64("departmentId", dept.ID),
				zap.Error(terr))
			transfer = &dto.AutoTransferResultDTO{Success: false, Message: terr.Error()}
		}
		response.AutoTransfer = transfer
		if transfer.Success {
			response.WorkOrder.Status = transfer.NewStatus
			if transfer.NextDepartment != nil {
				s.invalidateBoard(ctx, transfer.NextDepartment.ID)
			}
		}
	}

	return response, nil
}

// CreateAssignmentEvent is the supervisor-facing shortcut: record an
// ASSIGNED event in the target department.
func (s *TrackingService) CreateAssignmentEvent(ctx context.Context, payload dto.CreateAssignmentEventDTO) (*dto.ProductionEventDTO, error) {
	return s.CreateProductionEvent(ctx, dto.CreateProductionEventDTO{
		WorkOrderID:  payload.WorkOrderID,
		DepartmentID: payload.DepartmentID,
		EventType:    string(constants.EventAssigned),
		UserID:       payload.UserID,
		Notes:        payload.Notes,
	})
}

// checkEventLegality enforces the transition rules against the cached
// status and, where a status alone is not enough (PAUSE/RESUME/EXIT
// ordering), against the last event in the department.
func (s *TrackingService) checkEventLegality(ctx context.Context, wo *entities.WorkOrder, dept *entities.Department, eventType constants.EventType) error {
	if eventType == constants.EventNote {
		return nil
	}
	if constants.IsFinalStatus(wo.Status) || wo.Status == constants.StatusOnHold {
		return &apperrors.IllegalTransitionError{
			EventType:      string(eventType),
			DepartmentType: string(dept.Type),
			CurrentStatus:  wo.Status,
			ExpectedStatus: "a non-final, non-held status",
		}
	}

	illegal := func(expected string) error {
		return &apperrors.IllegalTransitionError{
			EventType:      string(eventType),
			DepartmentType: string(dept.Type),
			CurrentStatus:  wo.Status,
			ExpectedStatus: expected,
		}
	}

	switch eventType {
	case constants.EventAssigned:
		if wo.Status != constants.StatusCreated {
			return illegal(constants.StatusCreated)
		}
	case constants.EventEntry:
		if !constants.CanEnter(wo.Status, dept.Type) {
			return illegal(constants.RequiredEntryStatus(dept.Type))
		}
	case constants.EventExit:
		if !constants.CanExit(wo.Status, dept.Type) {
			return illegal(constants.StatusIn(dept.Type))
		}
		return s.requireLastEventIn(ctx, wo, dept, eventType,
			constants.EventEntry, constants.EventResume)
	case constants.EventPause:
		if wo.Status != constants.StatusIn(dept.Type) {
			return illegal(constants.StatusIn(dept.Type))
		}
		return s.requireLastEventIn(ctx, wo, dept, eventType,
			constants.EventEntry, constants.EventResume)
	case constants.EventResume:
		if wo.Status != constants.StatusIn(dept.Type) {
			return illegal(constants.StatusIn(dept.Type))
		}
		return s.requireLastEventIn(ctx, wo, dept, eventType,
			constants.EventPause)
	}
	return nil
}

// requireLastEventIn checks that the most recent non-NOTE event in the
// department is one of the allowed types.
func (s *TrackingService) requireLastEventIn(ctx context.Context, wo *entities.WorkOrder, dept *entities.Department, eventType constants.EventType, allowed ...constants.EventType) error {
	last, err := s.lastOperationalEvent(ctx, wo.ID, dept.ID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	lastType := constants.EventType("")
	if last != nil {
		lastType = last.EventType
	}
	for _, a := range allowed {
		if lastType == a {
			return nil
		}
	}

	expected := ""
	for i, a := range allowed {
		if i > 0 {
			expected += " or "
		}
		expected += "last event " + string(a)
	}
	return &apperrors.IllegalTransitionError{
		EventType:      string(eventType),
		DepartmentType: string(dept.Type),
		CurrentStatus:  fmt.Sprintf("%s (last event %s)", wo.Status, orNone(string(lastType))),
		ExpectedStatus: expected,
	}
}

// lastOperationalEvent skips NOTE entries, which never affect the
// pause/resume/exit ordering.
func (s *TrackingService) lastOperationalEvent(ctx context.Context, workOrderID, departmentID uint64) (*entities.ProductionEvent, error) {
	last, err := s.eventRepo.LastEventInDepartment(ctx, workOrderID, departmentID)
	if err != nil {
		return nil, err
	}
	if last.EventType != constants.EventNote {
		return last, nil
	}
	all, err := s.eventRepo.GetEventsForWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		e := all[i]
		if e.DepartmentID == departmentID && e.EventType != constants.EventNote {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *TrackingService) GetWorkOrderTrackingStatus(ctx context.Context, workOrderID uint64) (*dto.TrackingStatusDTO, error) {
	wo, err := s.workOrderRepo.FindWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	status := &dto.TrackingStatusDTO{
		WorkOrderID: wo.ID,
		OrderNumber: wo.OrderNumber,
		Status:      wo.Status,
	}

	last, err := s.eventRepo.LastEventForWorkOrder(ctx, workOrderID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, err
	}
	status.LastEvent = &dto.EventSummaryDTO{
		EventType:    string(last.EventType),
		DepartmentID: last.DepartmentID,
		IsAutomatic:  last.IsAutomatic,
		CreatedAt:    last.CreatedAt.Format(time.RFC3339),
	}

	total, err := s.timeMetricRepo.TotalAdvancementMinutes(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	status.TotalProductionMinutes = total

	// The current department only exists while the ODL physically sits
	// inside one.
	t, ok := constants.StatusDepartmentType(wo.Status)
	if !ok || wo.Status != constants.StatusIn(t) {
		return status, nil
	}
	dept, err := s.departmentRepo.FindActiveByType(ctx, t)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return status, nil
		}
		return nil, err
	}
	summary := departmentSummary(dept)
	status.CurrentDepartment = &summary

	if metric, err := s.timeMetricRepo.FindMetric(ctx, workOrderID, dept.ID); err == nil {
		status.MinutesInCurrentDepartment = utils.MinutesBetween(metric.EntryAt, s.now())
	}
	if lastInDept, err := s.lastOperationalEvent(ctx, workOrderID, dept.ID); err == nil {
		status.Paused = lastInDept.EventType == constants.EventPause
	}
	return status, nil
}

func (s *TrackingService) GetWorkOrderEvents(ctx context.Context, workOrderID uint64) ([]dto.EventSummaryDTO, error) {
	if _, err := s.workOrderRepo.FindWorkOrder(ctx, workOrderID); err != nil {
		return nil, err
	}
	history, err := s.eventRepo.GetEventsForWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.EventSummaryDTO, 0, len(history))
	for _, e := range history {
		summaries = append(summaries, dto.EventSummaryDTO{
			EventType:    string(e.EventType),
			DepartmentID: e.DepartmentID,
			IsAutomatic:  e.IsAutomatic,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		})
	}
	return summaries, nil
}

// ListProductionEvents pages through the event log for audit views.
func (s *TrackingService) ListProductionEvents(ctx context.Context, filter repositories.EventFilter) ([]dto.EventSummaryDTO, uint64, error) {
	items, total, err := s.eventRepo.ListEvents(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	summaries := make([]dto.EventSummaryDTO, 0, len(items))
	for _, e := range items {
		summaries = append(summaries, dto.EventSummaryDTO{
			EventType:    string(e.EventType),
			DepartmentID: e.DepartmentID,
			IsAutomatic:  e.IsAutomatic,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		})
	}
	return summaries, total, nil
}

// GetDepartmentWorkOrderList builds the department board: every ODL
// relevant to the department partitioned into incoming, in-preparation,
// in-production and completed, plus the derived stats. The assembled
// board is cached briefly; any accepted event for the department drops
// the cache.
func (s *TrackingService) GetDepartmentWorkOrderList(ctx context.Context, departmentID uint64) (*dto.DepartmentBoardDTO, error) {
	cacheKey := boardCacheKey(departmentID)
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil && cached != "" {
		var board dto.DepartmentBoardDTO
		if err := json.Unmarshal([]byte(cached), &board); err == nil {
			return &board, nil
		}
	}

	dept, err := s.departmentRepo.FindDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	statuses := []string{
		constants.StatusAssignedTo(dept.Type),
		constants.StatusIn(dept.Type),
		constants.StatusDeptCompleted(dept.Type),
	}
	if prev, ok := constants.PreviousDepartmentType(dept.Type); ok {
		statuses = append(statuses, constants.StatusIn(prev))
	}
	if constants.IsWorkflowExcluded(dept.Type) || constants.SequenceIndex(dept.Type) == 0 {
		statuses = append(statuses, constants.StatusCreated)
	}

	candidates, err := s.workOrderRepo.ListByStatuses(ctx, statuses)
	if err != nil {
		return nil, err
	}
	lastEvents, err := s.eventRepo.LastEventsByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	board := &dto.DepartmentBoardDTO{
		Department:    departmentSummary(dept),
		Incoming:      []dto.BoardItemDTO{},
		InPreparation: []dto.BoardItemDTO{},
		InProduction:  []dto.BoardItemDTO{},
		Completed:     []dto.BoardItemDTO{},
	}

	var completedCandidates []entities.WorkOrder
	for _, wo := range candidates {
		category := constants.ClassifyStatus(wo.Status, dept.Type)
		bucket := bucketFor(category, lastEvents[wo.ID])
		switch bucket {
		case bucketIncoming:
			board.Incoming = append(board.Incoming, boardItem(wo))
		case bucketPreparation:
			board.InPreparation = append(board.InPreparation, boardItem(wo))
		case bucketProduction:
			board.InProduction = append(board.InProduction, boardItem(wo))
		case bucketCompleted:
			completedCandidates = append(completedCandidates, wo)
		}
	}

	// An ODL that already entered a later department belongs to that
	// board, not to this one's completed column.
	if len(completedCandidates) > 0 {
		ids := make([]uint64, 0, len(completedCandidates))
		for _, wo := range completedCandidates {
			ids = append(ids, wo.ID)
		}
		movedOn, err := s.eventRepo.WorkOrdersWithEntryInTypes(ctx, ids, constants.LaterDepartmentTypes(dept.Type))
		if err != nil {
			return nil, err
		}
		for _, wo := range completedCandidates {
			if !movedOn[wo.ID] {
				board.Completed = append(board.Completed, boardItem(wo))
			}
		}
	}

	if err := s.attachTimes(ctx, departmentID, board); err != nil {
		return nil, err
	}
	board.Stats = boardStats(board)

	if raw, err := json.Marshal(board); err == nil {
		if err := s.cacheRepo.Set(ctx, cacheKey, string(raw), s.cacheCfg.BoardTTL); err != nil {
			s.logger.Debug("failed to cache department board", zap.Error(err))
		}
	}
	return board, nil
}

type boardBucket int

const (
	bucketIncoming boardBucket = iota
	bucketPreparation
	bucketProduction
	bucketCompleted
)

// bucketFor resolves a board bucket from the status category, letting
// the department's own event log override the cached status where the
// two disagree (the log is the source of truth).
func bucketFor(category constants.StatusCategory, lastEvent entities.ProductionEvent) boardBucket {
	switch lastEvent.EventType {
	case constants.EventEntry, constants.EventResume, constants.EventPause:
		return bucketProduction
	case constants.EventExit:
		return bucketCompleted
	case constants.EventAssigned:
		return bucketPreparation
	}

	switch category {
	case constants.CategoryCreated, constants.CategoryInPrevious:
		return bucketIncoming
	case constants.CategoryAssigned:
		return bucketPreparation
	case constants.CategoryInDepartment:
		return bucketProduction
	default:
		return bucketCompleted
	}
}

// attachTimes fills TimeInDepartmentMinutes for the production and
// completed columns from the timing records.
func (s *TrackingService) attachTimes(ctx context.Context, departmentID uint64, board *dto.DepartmentBoardDTO) error {
	ids := make([]uint64, 0, len(board.InProduction)+len(board.Completed))
	for _, item := range board.InProduction {
		ids = append(ids, item.WorkOrderID)
	}
	for _, item := range board.Completed {
		ids = append(ids, item.WorkOrderID)
	}
	metrics, err := s.timeMetricRepo.MetricsByDepartment(ctx, departmentID, ids)
	if err != nil {
		return err
	}

	now := s.now()
	for i := range board.InProduction {
		if m, ok := metrics[board.InProduction[i].WorkOrderID]; ok {
			minutes := utils.MinutesBetween(m.EntryAt, now)
			board.InProduction[i].TimeInDepartmentMinutes = &minutes
		}
	}
	for i := range board.Completed {
		if m, ok := metrics[board.Completed[i].WorkOrderID]; ok && m.AdvancementMinutes.Valid {
			minutes := m.AdvancementMinutes.Int64
			board.Completed[i].TimeInDepartmentMinutes = &minutes
		}
	}
	return nil
}

func boardStats(board *dto.DepartmentBoardDTO) dto.BoardStatsDTO {
	stats := dto.BoardStatsDTO{
		IncomingCount:  len(board.Incoming),
		ActiveCount:    len(board.InPreparation) + len(board.InProduction),
		CompletedCount: len(board.Completed),
	}

	var total, counted int64
	for _, item := range board.Completed {
		if item.TimeInDepartmentMinutes != nil {
			total += *item.TimeInDepartmentMinutes
			counted++
		}
	}
	if counted > 0 {
		stats.AvgCycleTimeMinutes = float64(total) / float64(counted)
	}

	switch {
	case stats.ActiveCount > 0:
		// Rounded to the nearest percent before clamping.
		pct := (stats.CompletedCount*100 + stats.ActiveCount/2) / stats.ActiveCount
		if pct > 100 {
			pct = 100
		}
		stats.EfficiencyPercent = pct
	case stats.CompletedCount > 0:
		stats.EfficiencyPercent = 100
	}
	return stats
}

func boardItem(wo entities.WorkOrder) dto.BoardItemDTO {
	return dto.BoardItemDTO{
		WorkOrderID: wo.ID,
		OrderNumber: wo.OrderNumber,
		PartNumber:  wo.PartNumber,
		Quantity:    wo.Quantity,
		Priority:    wo.Priority,
		Status:      wo.Status,
	}
}

func boardCacheKey(departmentID uint64) string {
	return fmt.Sprintf("board:%d", departmentID)
}

func (s *TrackingService) invalidateBoard(ctx context.Context, departmentID uint64) {
	if err := s.cacheRepo.Del(ctx, boardCacheKey(departmentID)); err != nil {
		s.logger.Debug("failed to invalidate board cache",
			zap.Uint64("departmentId", departmentID),
			zap.Error(err))
	}
}

func (s *TrackingService) buildEventDTO(e *entities.ProductionEvent, wo *entities.WorkOrder, dept *entities.Department, user *entities.User) *dto.ProductionEventDTO {
	out := &dto.ProductionEventDTO{
		ID:          e.ID,
		EventType:   string(e.EventType),
		Notes:       e.Notes.String,
		IsAutomatic: e.IsAutomatic,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		WorkOrder: dto.WorkOrderSummaryDTO{
			ID:          wo.ID,
			OrderNumber: wo.OrderNumber,
			PartNumber:  wo.PartNumber,
			Status:      wo.Status,
		},
		Department: departmentSummary(dept),
		User: dto.UserSummaryDTO{
			ID:       user.ID,
			FullName: user.FullName,
		},
	}
	if e.DurationMs.Valid {
		v := e.DurationMs.Int64
		out.DurationMs = &v
	}
	return out
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
