package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/dto"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/events"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/config"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/eventbus"
)

// errPreconditionLost stops the retry loop when a re-read shows the ODL
// status no longer satisfies the transfer precondition: another actor
// already moved it.
var errPreconditionLost = errors.New("transfer precondition no longer satisfied")

type TransferOptions struct {
	ForceTransfer     bool
	CheckDependencies bool
}

type WorkflowServiceInterface interface {
	GetNextDepartment(ctx context.Context, t constants.DepartmentType) (*entities.Department, error)
	ValidateTransfer(ctx context.Context, workOrderID, currentDepartmentID uint64, opts TransferOptions) (*dto.TransferValidationDTO, error)
	ExecuteAutoTransfer(ctx context.Context, workOrderID, currentDepartmentID, userID uint64, notes string) (*dto.AutoTransferResultDTO, error)
	RollbackTransfer(ctx context.Context, payload dto.RollbackTransferDTO) error
}

type WorkflowService struct {
	txManager      repositories.TxManagerInterface
	workOrderRepo  repositories.WorkOrderRepositoryInterface
	departmentRepo repositories.DepartmentRepositoryInterface
	eventRepo      repositories.ProductionEventRepositoryInterface
	cureBatchRepo  repositories.CureBatchRepositoryInterface
	cacheRepo      repositories.CacheRepositoryInterface
	bus            *eventbus.Bus
	cfg            config.WorkflowConfig
	cacheCfg       config.CacheConfig
	logger         *zap.Logger
}

func NewWorkflowService(
	txManager repositories.TxManagerInterface,
	workOrderRepo repositories.WorkOrderRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	eventRepo repositories.ProductionEventRepositoryInterface,
	cureBatchRepo repositories.CureBatchRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	cfg config.WorkflowConfig,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) WorkflowServiceInterface {
	return &WorkflowService{
		txManager:      txManager,
		workOrderRepo:  workOrderRepo,
		departmentRepo: departmentRepo,
		eventRepo:      eventRepo,
		cureBatchRepo:  cureBatchRepo,
		cacheRepo:      cacheRepo,
		bus:            bus,
		cfg:            cfg,
		cacheCfg:       cacheCfg,
		logger:         logger,
	}
}

// GetNextDepartment resolves the active department that follows t in
// the workflow sequence. Returns (nil, nil) when t is terminal or
// workflow-excluded. The lookup goes through the short-TTL cache; a
// cache miss or error falls back to the repository.
func (s *WorkflowService) GetNextDepartment(ctx context.Context, t constants.DepartmentType) (*entities.Department, error) {
	nextType, ok := constants.NextDepartmentType(t)
	if !ok {
		return nil, nil
	}

	cacheKey := "workflow:nextdept:" + string(nextType)
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil && cached != "" {
		var d entities.Department
		if err := json.Unmarshal([]byte(cached), &d); err == nil {
			return &d, nil
		}
	}

	d, err := s.departmentRepo.FindActiveByType(ctx, nextType)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(d); err == nil {
		if err := s.cacheRepo.Set(ctx, cacheKey, string(raw), s.cacheCfg.NextDeptTTL); err != nil {
			s.logger.Debug("failed to cache next department", zap.Error(err))
		}
	}
	return d, nil
}

// ValidateTransfer checks, in order: entity existence, next-department
// availability, the required pre-status (bypassable with
// ForceTransfer), and department-specific dependencies. It never
// mutates anything.
func (s *WorkflowService) ValidateTransfer(ctx context.Context, workOrderID, currentDepartmentID uint64, opts TransferOptions) (*dto.TransferValidationDTO, error) {
	wo, err := s.workOrderRepo.FindWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	dept, err := s.departmentRepo.FindDepartment(ctx, currentDepartmentID)
	if err != nil {
		return nil, err
	}

	report := &dto.TransferValidationDTO{CurrentStatus: wo.Status}

	tr, ok := constants.TransitionFrom(dept.Type)
	if !ok {
		report.Reason = fmt.Sprintf("department type %s is outside the automatic workflow", dept.Type)
		report.RequiredActions = []string{"advance the work order manually"}
		return report, nil
	}
	report.RequiredStatus = tr.RequiredStatus
	report.TargetStatus = tr.TargetStatus

	var nextDept *entities.Department
	if tr.To != "" {
		nextDept, err = s.GetNextDepartment(ctx, dept.Type)
		if errors.Is(err, apperrors.ErrNotFound) {
			report.Reason = fmt.Sprintf("no active department of type %s available", tr.To)
			report.RequiredActions = []string{fmt.Sprintf("activate a department of type %s", tr.To)}
			return report, nil
		}
		if err != nil {
			return nil, err
		}
		summary := departmentSummary(nextDept)
		report.NextDepartment = &summary
	}

	if wo.Status != tr.RequiredStatus && !opts.ForceTransfer {
		report.Reason = fmt.Sprintf("work order status is %s, transfer requires %s", wo.Status, tr.RequiredStatus)
		report.RequiredActions = []string{fmt.Sprintf("complete the %s phase first", dept.Type)}
		return report, nil
	}

	if opts.CheckDependencies {
		if dept.Type == constants.DeptAutoclave {
			active, err := s.cureBatchRepo.HasActiveBatchForWorkOrder(ctx, workOrderID)
			if err != nil {
				return nil, err
			}
			if active {
				report.Reason = "work order is attached to an active curing batch"
				report.RequiredActions = []string{"complete the curing cycle", "unload the work order from the batch"}
				return report, nil
			}
		}
	}

	report.Allowed = true
	return report, nil
}

// ExecuteAutoTransfer atomically moves the ODL to the next department:
// optimistic status update plus automatic EXIT and ENTRY events in one
// serializable transaction. Concurrency conflicts are retried with
// exponential backoff and jitter up to the configured bound; on every
// retry the precondition is re-checked so a transfer that already
// happened elsewhere is reported as no longer possible instead of being
// duplicated.
func (s *WorkflowService) ExecuteAutoTransfer(ctx context.Context, workOrderID, currentDepartmentID, userID uint64, notes string) (*dto.AutoTransferResultDTO, error) {
	validation, err := s.ValidateTransfer(ctx, workOrderID, currentDepartmentID, TransferOptions{CheckDependencies: true})
	if err != nil {
		return nil, err
	}
	if !validation.Allowed {
		return &dto.AutoTransferResultDTO{Success: false, Message: validation.Reason}, nil
	}

	wo, err := s.workOrderRepo.FindWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	fromStatus := wo.Status
	fromVersion := wo.Version
	targetStatus := validation.TargetStatus

	var nextDept *entities.Department
	if validation.NextDepartment != nil {
		nextDept, err = s.departmentRepo.FindDepartment(ctx, validation.NextDepartment.ID)
		if err != nil {
			return nil, err
		}
	}

	backoff := retry.WithJitter(s.cfg.TransferBackoffBase/2,
		retry.WithMaxRetries(s.cfg.TransferMaxAttempts-1,
			retry.NewExponential(s.cfg.TransferBackoffBase)))

	var recorded []entities.ProductionEvent
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			// The precondition may have been consumed by whoever won
			// the previous round.
			current, ferr := s.workOrderRepo.FindWorkOrder(ctx, workOrderID)
			if ferr != nil {
				return ferr
			}
			if current.Status != fromStatus {
				return errPreconditionLost
			}
			// Same status, possibly rewritten in the meantime: the
			// transfer is still valid, race against the newest version.
			fromVersion = current.Version
		}

		txErr := s.txManager.RunSerializable(ctx, func(tx pgx.Tx) error {
			recorded = recorded[:0]
			if err := s.workOrderRepo.UpdateStatusIfInTx(ctx, tx, workOrderID, fromVersion, targetStatus); err != nil {
				return err
			}
			exit := entities.ProductionEvent{
				WorkOrderID:  workOrderID,
				DepartmentID: currentDepartmentID,
				EventType:    constants.EventExit,
				UserID:       userID,
				Notes:        null.NewString(notes, notes != ""),
				IsAutomatic:  true,
			}
			stored, err := s.eventRepo.CreateEventInTx(ctx, tx, exit)
			if err != nil {
				return err
			}
			recorded = append(recorded, *stored)
			if nextDept != nil {
				entry := entities.ProductionEvent{
					WorkOrderID:  workOrderID,
					DepartmentID: nextDept.ID,
					EventType:    constants.EventEntry,
					UserID:       userID,
					IsAutomatic:  true,
				}
				stored, err = s.eventRepo.CreateEventInTx(ctx, tx, entry)
				if err != nil {
					return err
				}
				recorded = append(recorded, *stored)
			}
			return nil
		})
		if errors.Is(txErr, apperrors.ErrConflict) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})

	if errors.Is(err, errPreconditionLost) {
		current, ferr := s.workOrderRepo.FindWorkOrder(ctx, workOrderID)
		message := "transfer not possible: work order status changed concurrently"
		if ferr == nil {
			message = fmt.Sprintf("transfer not possible: work order status is now %s", current.Status)
		}
		return &dto.AutoTransferResultDTO{Success: false, Message: message}, nil
	}
	if err != nil {
		s.logger.Error("auto-transfer failed",
			zap.Uint64("workOrderId", workOrderID),
			zap.Uint64("departmentId", currentDepartmentID),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return nil, err
	}

	result := &dto.AutoTransferResultDTO{
		Success:        true,
		PreviousStatus: fromStatus,
		NewStatus:      targetStatus,
	}
	if nextDept != nil {
		summary := departmentSummary(nextDept)
		result.NextDepartment = &summary
		result.Message = fmt.Sprintf("work order transferred to %s", nextDept.Name)
	} else {
		result.Message = "work order completed the production cycle"
	}

	s.logger.Info("auto-transfer executed",
		zap.Uint64("workOrderId", workOrderID),
		zap.String("fromStatus", fromStatus),
		zap.String("newStatus", targetStatus),
		zap.Int("attempts", attempt))

	// The automatic events go through the same post-commit pipeline as
	// manual ones, so the timing records follow the ODL into the next
	// department.
	for _, e := range recorded {
		s.bus.Publish(ctx, events.ProductionEventRecorded{Event: e})
	}

	// Best-effort supervisor notification; listeners log their own
	// failures.
	if wo, ferr := s.workOrderRepo.FindWorkOrder(ctx, workOrderID); ferr == nil {
		if from, derr := s.departmentRepo.FindDepartment(ctx, currentDepartmentID); derr == nil {
			s.bus.Publish(ctx, events.WorkOrderTransferred{
				WorkOrder:      *wo,
				FromDepartment: *from,
				ToDepartment:   nextDept,
				NewStatus:      targetStatus,
			})
		}
	}

	return result, nil
}

// RollbackTransfer restores a previous status and records an audit NOTE
// event. Manual recovery only; nothing invokes this automatically.
func (s *WorkflowService) RollbackTransfer(ctx context.Context, payload dto.RollbackTransferDTO) error {
	if !constants.IsValidStatus(payload.PreviousStatus) {
		return apperrors.NewInvalidInputError("unknown status %q", payload.PreviousStatus)
	}
	wo, err := s.workOrderRepo.FindWorkOrder(ctx, payload.WorkOrderID)
	if err != nil {
		return err
	}

	// The audit note lands in the department the restored status
	// refers to, falling back to the last event's department.
	var departmentID uint64
	if t, ok := constants.StatusDepartmentType(payload.PreviousStatus); ok {
		if d, err := s.departmentRepo.FindActiveByType(ctx, t); err == nil {
			departmentID = d.ID
		}
	}
	if departmentID == 0 {
		last, err := s.eventRepo.LastEventForWorkOrder(ctx, payload.WorkOrderID)
		if err != nil {
			return fmt.Errorf("cannot resolve department for rollback note: %w", err)
		}
		departmentID = last.DepartmentID
	}

	fromStatus := wo.Status
	err = s.txManager.RunSerializable(ctx, func(tx pgx.Tx) error {
		current, err := s.workOrderRepo.FindWorkOrderInTx(ctx, tx, payload.WorkOrderID)
		if err != nil {
			return err
		}
		fromStatus = current.Status
		if err := s.workOrderRepo.UpdateStatusInTx(ctx, tx, payload.WorkOrderID, payload.PreviousStatus); err != nil {
			return err
		}
		note := fmt.Sprintf("transfer rollback: %s -> %s (%s)", fromStatus, payload.PreviousStatus, payload.Reason)
		audit := entities.ProductionEvent{
			WorkOrderID:  payload.WorkOrderID,
			DepartmentID: departmentID,
			EventType:    constants.EventNote,
			UserID:       payload.UserID,
			Notes:        null.StringFrom(note),
		}
		_, err = s.eventRepo.CreateEventInTx(ctx, tx, audit)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Warn("transfer rolled back",
		zap.Uint64("workOrderId", payload.WorkOrderID),
		zap.String("fromStatus", fromStatus),
		zap.String("restoredStatus", payload.PreviousStatus),
		zap.String("reason", payload.Reason))
	return nil
}

func departmentSummary(d *entities.Department) dto.DepartmentSummaryDTO {
	return dto.DepartmentSummaryDTO{
		ID:   d.ID,
		Code: d.Code,
		Name: d.Name,
		Type: string(d.Type),
	}
}
