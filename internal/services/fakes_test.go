package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
)

// The fakes below back the service tests with in-memory state. They
// ignore the pgx.Tx parameter: the fake transaction manager runs the
// unit directly.

type fakeTxManager struct {
	mu   sync.Mutex
	runs int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (f *fakeTxManager) RunSerializable(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	return fn(nil)
}

type fakeWorkOrderRepo struct {
	mu     sync.Mutex
	orders map[uint64]*entities.WorkOrder

	// conflictsLeft forces UpdateStatusIfInTx to fail with ErrConflict
	// the given number of times before behaving normally. When
	// conflictStatus is set, the forced conflict also flips the row to
	// that status (bumping its version), as if a concurrent writer had
	// committed first.
	conflictsLeft  int
	conflictStatus string
	updateCalls    int
}

func newFakeWorkOrderRepo() *fakeWorkOrderRepo {
	return &fakeWorkOrderRepo{orders: make(map[uint64]*entities.WorkOrder)}
}

func (f *fakeWorkOrderRepo) put(wo entities.WorkOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[wo.ID] = &wo
}

func (f *fakeWorkOrderRepo) status(id uint64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id].Status
}

func (f *fakeWorkOrderRepo) FindWorkOrder(ctx context.Context, id uint64) (*entities.WorkOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wo, ok := f.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *wo
	return &cp, nil
}

func (f *fakeWorkOrderRepo) FindWorkOrderInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.WorkOrder, error) {
	return f.FindWorkOrder(ctx, id)
}

func (f *fakeWorkOrderRepo) ListByStatuses(ctx context.Context, statuses []string) ([]entities.WorkOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.WorkOrder
	for _, wo := range f.orders {
		for _, s := range statuses {
			if wo.Status == s {
				out = append(out, *wo)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeWorkOrderRepo) UpdateStatusIfInTx(ctx context.Context, tx pgx.Tx, id uint64, expectedVersion uint64, newStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		if f.conflictStatus != "" {
			if wo, ok := f.orders[id]; ok {
				wo.Status = f.conflictStatus
				wo.Version++
			}
		}
		return apperrors.ErrConflict
	}
	wo, ok := f.orders[id]
	if !ok || wo.Version != expectedVersion {
		return apperrors.ErrConflict
	}
	wo.Status = newStatus
	wo.Version++
	return nil
}

func (f *fakeWorkOrderRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, newStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wo, ok := f.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	wo.Status = newStatus
	wo.Version++
	return nil
}

type fakeDepartmentRepo struct {
	departments map[uint64]entities.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: make(map[uint64]entities.Department)}
}

func (f *fakeDepartmentRepo) put(d entities.Department) {
	f.departments[d.ID] = d
}

func (f *fakeDepartmentRepo) GetDepartments(ctx context.Context) ([]entities.Department, error) {
	out := make([]entities.Department, 0, len(f.departments))
	for _, d := range f.departments {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDepartmentRepo) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDepartmentRepo) FindActiveByType(ctx context.Context, t constants.DepartmentType) (*entities.Department, error) {
	var found *entities.Department
	for id := uint64(1); id <= uint64(len(f.departments)); id++ {
		d, ok := f.departments[id]
		if ok && d.Type == t && d.IsActive {
			cp := d
			found = &cp
			break
		}
	}
	if found == nil {
		return nil, apperrors.ErrNotFound
	}
	return found, nil
}

type fakeUserRepo struct {
	users map[uint64]entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]entities.User)}
}

func (f *fakeUserRepo) put(u entities.User) {
	f.users[u.ID] = u
}

func (f *fakeUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) FindSupervisorsByDepartment(ctx context.Context, departmentID uint64) ([]entities.User, error) {
	var out []entities.User
	for _, u := range f.users {
		if u.IsSupervisor && u.IsActive && u.DepartmentID.Valid && u.DepartmentID.Uint64 == departmentID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []entities.ProductionEvent
	nextID uint64
	clock  time.Time

	// department id -> type, for the later-department lookups
	deptTypes map[uint64]constants.DepartmentType
}

func newFakeEventRepo(deptTypes map[uint64]constants.DepartmentType) *fakeEventRepo {
	return &fakeEventRepo{
		nextID:    1,
		clock:     time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		deptTypes: deptTypes,
	}
}

func (f *fakeEventRepo) appendLocked(e entities.ProductionEvent, at time.Time) entities.ProductionEvent {
	e.ID = f.nextID
	f.nextID++
	e.CreatedAt = at
	if at.After(f.clock) {
		f.clock = at
	}
	f.events = append(f.events, e)
	return e
}

// append stores an event with an explicit timestamp, for seeding
// histories.
func (f *fakeEventRepo) append(e entities.ProductionEvent, at time.Time) entities.ProductionEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appendLocked(e, at)
}

func (f *fakeEventRepo) CreateEventInTx(ctx context.Context, tx pgx.Tx, e entities.ProductionEvent) (*entities.ProductionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.appendLocked(e, f.clock.Add(time.Second))
	return &stored, nil
}

func (f *fakeEventRepo) GetEventsForWorkOrder(ctx context.Context, workOrderID uint64) ([]entities.ProductionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.ProductionEvent
	for _, e := range f.events {
		if e.WorkOrderID == workOrderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListEvents(ctx context.Context, filter repositories.EventFilter) ([]entities.ProductionEvent, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.ProductionEvent
	for i := len(f.events) - 1; i >= 0; i-- {
		e := f.events[i]
		if filter.WorkOrderID != 0 && e.WorkOrderID != filter.WorkOrderID {
			continue
		}
		if filter.DepartmentID != 0 && e.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.EventType != "" && string(e.EventType) != filter.EventType {
			continue
		}
		if filter.Automatic != nil && e.IsAutomatic != *filter.Automatic {
			continue
		}
		out = append(out, e)
	}
	total := uint64(len(out))
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return nil, total, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeEventRepo) LastEventForWorkOrder(ctx context.Context, workOrderID uint64) (*entities.ProductionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].WorkOrderID == workOrderID {
			e := f.events[i]
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeEventRepo) LastEventInDepartment(ctx context.Context, workOrderID, departmentID uint64) (*entities.ProductionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		e := f.events[i]
		if e.WorkOrderID == workOrderID && e.DepartmentID == departmentID {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeEventRepo) LastExitOutsideDepartment(ctx context.Context, workOrderID, departmentID uint64) (*entities.ProductionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		e := f.events[i]
		if e.WorkOrderID == workOrderID && e.DepartmentID != departmentID && e.EventType == constants.EventExit {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeEventRepo) LastPauseInDepartment(ctx context.Context, workOrderID, departmentID uint64, before time.Time) (*entities.ProductionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		e := f.events[i]
		if e.WorkOrderID == workOrderID && e.DepartmentID == departmentID &&
			e.EventType == constants.EventPause && !e.CreatedAt.After(before) {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeEventRepo) LastEventsByDepartment(ctx context.Context, departmentID uint64) (map[uint64]entities.ProductionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	last := make(map[uint64]entities.ProductionEvent)
	for _, e := range f.events {
		if e.DepartmentID == departmentID {
			last[e.WorkOrderID] = e
		}
	}
	return last, nil
}

func (f *fakeEventRepo) WorkOrdersWithEntryInTypes(ctx context.Context, workOrderIDs []uint64, types []constants.DepartmentType) (map[uint64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[uint64]bool, len(workOrderIDs))
	for _, id := range workOrderIDs {
		wanted[id] = true
	}
	typeSet := make(map[constants.DepartmentType]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}
	out := make(map[uint64]bool)
	for _, e := range f.events {
		if e.EventType == constants.EventEntry && wanted[e.WorkOrderID] && typeSet[f.deptTypes[e.DepartmentID]] {
			out[e.WorkOrderID] = true
		}
	}
	return out, nil
}

type metricKey struct {
	workOrderID  uint64
	departmentID uint64
}

type fakeTimeMetricRepo struct {
	mu      sync.Mutex
	metrics map[metricKey]*entities.TimeMetric
	nextID  uint64
}

func newFakeTimeMetricRepo() *fakeTimeMetricRepo {
	return &fakeTimeMetricRepo{metrics: make(map[metricKey]*entities.TimeMetric), nextID: 1}
}

func (f *fakeTimeMetricRepo) FindMetric(ctx context.Context, workOrderID, departmentID uint64) (*entities.TimeMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.metrics[metricKey{workOrderID, departmentID}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeTimeMetricRepo) UpsertEntry(ctx context.Context, m entities.TimeMetric) (*entities.TimeMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := metricKey{m.WorkOrderID, m.DepartmentID}
	existing, ok := f.metrics[key]
	if !ok {
		m.ID = f.nextID
		f.nextID++
		f.metrics[key] = &m
		cp := m
		return &cp, nil
	}
	existing.EntryAt = m.EntryAt
	existing.WaitingMinutes = m.WaitingMinutes
	existing.ExitAt = null.Time{}
	existing.AdvancementMinutes = null.Int64{}
	existing.WorkingMinutes = null.Int64{}
	existing.Completed = false
	cp := *existing
	return &cp, nil
}

func (f *fakeTimeMetricRepo) AddPauseMinutes(ctx context.Context, workOrderID, departmentID uint64, minutes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.metrics[metricKey{workOrderID, departmentID}]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.PauseMinutes += minutes
	return nil
}

func (f *fakeTimeMetricRepo) CompleteMetric(ctx context.Context, m entities.TimeMetric) (*entities.TimeMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.metrics[metricKey{m.WorkOrderID, m.DepartmentID}]
	if !ok || existing.Completed {
		return nil, apperrors.ErrNotFound
	}
	existing.ExitAt = m.ExitAt
	existing.AdvancementMinutes = m.AdvancementMinutes
	existing.WorkingMinutes = m.WorkingMinutes
	existing.Completed = true
	cp := *existing
	return &cp, nil
}

func (f *fakeTimeMetricRepo) MetricsByDepartment(ctx context.Context, departmentID uint64, workOrderIDs []uint64) (map[uint64]entities.TimeMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uint64]entities.TimeMetric)
	for _, id := range workOrderIDs {
		if m, ok := f.metrics[metricKey{id, departmentID}]; ok {
			out[id] = *m
		}
	}
	return out, nil
}

func (f *fakeTimeMetricRepo) TotalAdvancementMinutes(ctx context.Context, workOrderID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for key, m := range f.metrics {
		if key.workOrderID == workOrderID && m.Completed && m.AdvancementMinutes.Valid {
			total += m.AdvancementMinutes.Int64
		}
	}
	return total, nil
}

type statIncrement struct {
	partID       uint64
	departmentID uint64
	advancement  int64
	working      int64
	waiting      null.Int64
}

type fakePartStatRepo struct {
	mu         sync.Mutex
	increments []statIncrement
	stats      []entities.PartTimeStatistic
}

func (f *fakePartStatRepo) Increment(ctx context.Context, partID, departmentID uint64, advancement, working int64, waiting null.Int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments = append(f.increments, statIncrement{partID, departmentID, advancement, working, waiting})
	return nil
}

func (f *fakePartStatRepo) snapshot() []statIncrement {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]statIncrement, len(f.increments))
	copy(out, f.increments)
	return out
}

func (f *fakePartStatRepo) GetStatistics(ctx context.Context) ([]entities.PartTimeStatistic, error) {
	return f.stats, nil
}

func (f *fakePartStatRepo) GetStatisticsForPart(ctx context.Context, partID uint64) ([]entities.PartTimeStatistic, error) {
	var out []entities.PartTimeStatistic
	for _, s := range f.stats {
		if s.PartID == partID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeCureBatchRepo struct {
	active map[uint64]bool
}

func (f *fakeCureBatchRepo) HasActiveBatchForWorkOrder(ctx context.Context, workOrderID uint64) (bool, error) {
	return f.active[workOrderID], nil
}

var errCacheMiss = errors.New("cache miss")

type fakeCacheRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: make(map[string]string)}
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := value.(string); ok {
		f.values[key] = s
	}
	return nil
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return "", errCacheMiss
	}
	return v, nil
}

func (f *fakeCacheRepo) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}
