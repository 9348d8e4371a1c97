package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/dto"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/config"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/eventbus"
)

type fixture struct {
	txManager   *fakeTxManager
	workOrders  *fakeWorkOrderRepo
	departments *fakeDepartmentRepo
	users       *fakeUserRepo
	events      *fakeEventRepo
	metrics     *fakeTimeMetricRepo
	partStats   *fakePartStatRepo
	cureBatches *fakeCureBatchRepo
	cache       *fakeCacheRepo
	bus         *eventbus.Bus

	workflow    WorkflowServiceInterface
	tracking    *TrackingService
	timeMetrics TimeMetricsServiceInterface
}

// newFixture wires the services over in-memory fakes with the standard
// plant layout: departments 1..7 follow the workflow sequence, 8 is the
// honeycomb shop, user 1 is an active operator, user 2 is deactivated.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		txManager:   &fakeTxManager{},
		workOrders:  newFakeWorkOrderRepo(),
		departments: newFakeDepartmentRepo(),
		users:       newFakeUserRepo(),
		metrics:     newFakeTimeMetricRepo(),
		partStats:   &fakePartStatRepo{},
		cureBatches: &fakeCureBatchRepo{active: make(map[uint64]bool)},
		cache:       newFakeCacheRepo(),
	}

	deptTypes := make(map[uint64]constants.DepartmentType)
	for i, dt := range constants.WorkflowSequence {
		id := uint64(i + 1)
		deptTypes[id] = dt
		f.departments.put(entities.Department{
			ID: id, Code: string(dt), Name: string(dt), Type: dt, IsActive: true,
		})
	}
	deptTypes[8] = constants.DeptHoneycomb
	f.departments.put(entities.Department{
		ID: 8, Code: "HC-1", Name: "Honeycomb Shop", Type: constants.DeptHoneycomb, IsActive: true,
	})
	f.events = newFakeEventRepo(deptTypes)

	f.users.put(entities.User{ID: 1, FullName: "Paolo Ricci", IsActive: true})
	f.users.put(entities.User{ID: 2, FullName: "Former Employee", IsActive: false})

	logger := zap.NewNop()
	bus := eventbus.New(logger)
	f.bus = bus
	workflowCfg := config.WorkflowConfig{TransferMaxAttempts: 3, TransferBackoffBase: time.Millisecond}
	cacheCfg := config.CacheConfig{BoardTTL: time.Minute, NextDeptTTL: time.Minute}

	f.workflow = NewWorkflowService(
		f.txManager, f.workOrders, f.departments, f.events, f.cureBatches,
		f.cache, bus, workflowCfg, cacheCfg, logger,
	)
	f.tracking = NewTrackingService(
		f.txManager, f.workOrders, f.departments, f.users, f.events,
		f.metrics, f.cache, f.workflow, bus, cacheCfg, logger,
	).(*TrackingService)
	f.timeMetrics = NewTimeMetricsService(
		f.workOrders, f.events, f.metrics, f.partStats, logger,
	)
	return f
}

func (f *fixture) addWorkOrder(id uint64, status string) {
	f.workOrders.put(entities.WorkOrder{
		ID:          id,
		OrderNumber: "ODL-TEST",
		PartID:      10,
		PartNumber:  "8G5350-001",
		Quantity:    1,
		Priority:    constants.PriorityNormal,
		Status:      status,
	})
}

func TestExecuteAutoTransferMovesToNextDepartment(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusDeptCompleted(constants.DeptCleanroom))

	res, err := f.workflow.ExecuteAutoTransfer(context.Background(), 1, 1, 1, "")
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, constants.StatusDeptCompleted(constants.DeptCleanroom), res.PreviousStatus)
	assert.Equal(t, constants.StatusIn(constants.DeptAutoclave), res.NewStatus)
	require.NotNil(t, res.NextDepartment)
	assert.Equal(t, uint64(2), res.NextDepartment.ID)
	assert.Equal(t, constants.StatusIn(constants.DeptAutoclave), f.workOrders.status(1))

	history, err := f.events.GetEventsForWorkOrder(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, constants.EventExit, history[0].EventType)
	assert.Equal(t, uint64(1), history[0].DepartmentID)
	assert.True(t, history[0].IsAutomatic)
	assert.Equal(t, constants.EventEntry, history[1].EventType)
	assert.Equal(t, uint64(2), history[1].DepartmentID)
	assert.True(t, history[1].IsAutomatic)
}

func TestExecuteAutoTransferRejectsWrongStatus(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusIn(constants.DeptCleanroom))

	res, err := f.workflow.ExecuteAutoTransfer(context.Background(), 1, 1, 1, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, constants.StatusDeptCompleted(constants.DeptCleanroom))

	assert.Equal(t, constants.StatusIn(constants.DeptCleanroom), f.workOrders.status(1))
	history, _ := f.events.GetEventsForWorkOrder(context.Background(), 1)
	assert.Empty(t, history, "a rejected transfer must not touch the event log")
}

func TestExecuteAutoTransferFromFinalQualityControl(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusDeptCompleted(constants.DeptControlloQualita))

	res, err := f.workflow.ExecuteAutoTransfer(context.Background(), 1, 7, 1, "")
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, constants.StatusCompleted, res.NewStatus)
	assert.Nil(t, res.NextDepartment)
	assert.Equal(t, constants.StatusCompleted, f.workOrders.status(1))

	history, _ := f.events.GetEventsForWorkOrder(context.Background(), 1)
	require.Len(t, history, 1, "closing the order records the exit only, there is no department to enter")
	assert.Equal(t, constants.EventExit, history[0].EventType)
}

func TestExecuteAutoTransferBlockedByActiveCureBatch(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusDeptCompleted(constants.DeptAutoclave))
	f.cureBatches.active[1] = true

	res, err := f.workflow.ExecuteAutoTransfer(context.Background(), 1, 2, 1, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "curing batch")
	assert.Equal(t, constants.StatusDeptCompleted(constants.DeptAutoclave), f.workOrders.status(1))
}

func TestExecuteAutoTransferRetriesOnConflict(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusDeptCompleted(constants.DeptCleanroom))
	f.workOrders.conflictsLeft = 1

	res, err := f.workflow.ExecuteAutoTransfer(context.Background(), 1, 1, 1, "")
	require.NoError(t, err)
	require.True(t, res.Success, "a transient conflict must be retried, not surfaced")

	assert.Equal(t, 2, f.workOrders.updateCalls)
	assert.Equal(t, constants.StatusIn(constants.DeptAutoclave), f.workOrders.status(1))
}

func TestExecuteAutoTransferLosesRaceCleanly(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusDeptCompleted(constants.DeptCleanroom))
	// The concurrent winner commits the transfer during our first
	// attempt: the retry must notice the consumed precondition and give
	// up without duplicating the move.
	f.workOrders.conflictsLeft = 1
	f.workOrders.conflictStatus = constants.StatusIn(constants.DeptAutoclave)

	res, err := f.workflow.ExecuteAutoTransfer(context.Background(), 1, 1, 1, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "transfer not possible")

	history, _ := f.events.GetEventsForWorkOrder(context.Background(), 1)
	assert.Empty(t, history, "the loser must not append its own exit/entry pair")
}

func TestExecuteAutoTransferExhaustsRetries(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusDeptCompleted(constants.DeptCleanroom))
	f.workOrders.conflictsLeft = 10

	_, err := f.workflow.ExecuteAutoTransfer(context.Background(), 1, 1, 1, "")
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 3, f.workOrders.updateCalls, "attempts are bounded by configuration")
}

func TestValidateTransferForceBypassesStatusCheck(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusIn(constants.DeptCleanroom))

	report, err := f.workflow.ValidateTransfer(context.Background(), 1, 1, TransferOptions{})
	require.NoError(t, err)
	assert.False(t, report.Allowed)

	report, err = f.workflow.ValidateTransfer(context.Background(), 1, 1, TransferOptions{ForceTransfer: true})
	require.NoError(t, err)
	assert.True(t, report.Allowed)
}

func TestValidateTransferOutsideWorkflow(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusIn(constants.DeptHoneycomb))

	report, err := f.workflow.ValidateTransfer(context.Background(), 1, 8, TransferOptions{})
	require.NoError(t, err)
	assert.False(t, report.Allowed)
	assert.Contains(t, report.Reason, "outside the automatic workflow")
}

func TestGetNextDepartment(t *testing.T) {
	f := newFixture(t)

	next, err := f.workflow.GetNextDepartment(context.Background(), constants.DeptCleanroom)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, constants.DeptAutoclave, next.Type)

	// Terminal and excluded types resolve to nothing.
	next, err = f.workflow.GetNextDepartment(context.Background(), constants.DeptControlloQualita)
	require.NoError(t, err)
	assert.Nil(t, next)
	next, err = f.workflow.GetNextDepartment(context.Background(), constants.DeptMotori)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRollbackTransferRestoresStatusAndAudits(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusIn(constants.DeptAutoclave))

	err := f.workflow.RollbackTransfer(context.Background(), dto.RollbackTransferDTO{
		WorkOrderID:    1,
		PreviousStatus: constants.StatusDeptCompleted(constants.DeptCleanroom),
		UserID:         1,
		Reason:         "loaded into the wrong autoclave",
	})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusDeptCompleted(constants.DeptCleanroom), f.workOrders.status(1))

	history, _ := f.events.GetEventsForWorkOrder(context.Background(), 1)
	require.Len(t, history, 1)
	assert.Equal(t, constants.EventNote, history[0].EventType)
	assert.Equal(t, uint64(1), history[0].DepartmentID)
	assert.Contains(t, history[0].Notes.String, "rollback")
}

func TestRollbackTransferRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusIn(constants.DeptAutoclave))

	err := f.workflow.RollbackTransfer(context.Background(), dto.RollbackTransferDTO{
		WorkOrderID:    1,
		PreviousStatus: "IN_GARAGE",
		UserID:         1,
		Reason:         "typo",
	})
	var invalid *apperrors.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, constants.StatusIn(constants.DeptAutoclave), f.workOrders.status(1))
}

func TestExecuteAutoTransferKeepsNotes(t *testing.T) {
	f := newFixture(t)
	f.addWorkOrder(1, constants.StatusDeptCompleted(constants.DeptNDI))

	res, err := f.workflow.ExecuteAutoTransfer(context.Background(), 1, 4, 1, "released by inspector")
	require.NoError(t, err)
	require.True(t, res.Success)

	history, _ := f.events.GetEventsForWorkOrder(context.Background(), 1)
	require.Len(t, history, 2)
	assert.Equal(t, null.StringFrom("released by inspector"), history[0].Notes)
}
