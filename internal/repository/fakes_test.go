package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	"github.com/allisson/casevault/internal/pagination"
)

const widgetType = "widget"

type widget struct {
	ID     int64
	Owner  int64
	Name   string
	Secret string
	Tags   []string
}

func (w *widget) GetID() int64 {
	if w == nil {
		return 0
	}
	return w.ID
}

func (w *widget) Clone() *widget {
	if w == nil {
		return nil
	}
	c := *w
	c.Tags = append([]string(nil), w.Tags...)
	return &c
}

func validateWidget(w *widget) error {
	return validation.ValidateStruct(w,
		validation.Field(&w.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&w.Owner, validation.Required),
	)
}

// memoryRepo is a thread-safe in-memory Repository[*widget] that counts calls. It stands
// in for a concrete encrypted repository; version plays the role of the ciphertext.
type memoryRepo struct {
	mu       sync.Mutex
	rows     map[int64]*widget
	versions map[int64]int
	nextID   int64
	calls    map[string]int
	// err, when set, is returned by every call.
	err error
	// delay is applied to reads so concurrent callers overlap.
	delay time.Duration
	// lastParams records the pagination params that reached the repository.
	lastParams pagination.Params
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		rows:     make(map[int64]*widget),
		versions: make(map[int64]int),
		calls:    make(map[string]int),
	}
}

func (r *memoryRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *memoryRepo) enter(op string) error {
	r.mu.Lock()
	r.calls[op]++
	err := r.err
	delay := r.delay
	r.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (r *memoryRepo) Create(_ context.Context, w *widget) (*widget, error) {
	if err := r.enter(OpCreate); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := w.Clone()
	stored.ID = r.nextID
	r.rows[stored.ID] = stored
	r.versions[stored.ID] = 1
	return stored.Clone(), nil
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (*widget, error) {
	if err := r.enter(OpFindByID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rows[id]
	if !ok {
		return nil, ErrRepositoryNotFound
	}
	return w.Clone(), nil
}

func (r *memoryRepo) list(filter func(*widget) bool, params pagination.Params) *pagination.Page[*widget] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastParams = params

	items := make([]*widget, 0)
	for _, w := range r.rows {
		if filter(w) {
			items = append(items, w.Clone())
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	if params.Limit > 0 && len(items) > params.Limit {
		items = items[:params.Limit]
	}
	return &pagination.Page[*widget]{Items: items}
}

func (r *memoryRepo) FindByOwner(
	_ context.Context,
	ownerID int64,
	params pagination.Params,
) (*pagination.Page[*widget], error) {
	if err := r.enter(OpFindByOwner); err != nil {
		return nil, err
	}
	return r.list(func(w *widget) bool { return w.Owner == ownerID }, params), nil
}

func (r *memoryRepo) FindAll(_ context.Context, params pagination.Params) (*pagination.Page[*widget], error) {
	if err := r.enter(OpFindAll); err != nil {
		return nil, err
	}
	return r.list(func(*widget) bool { return true }, params), nil
}

func (r *memoryRepo) Update(_ context.Context, w *widget) (*widget, error) {
	if err := r.enter(OpUpdate); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[w.ID]; !ok {
		return nil, ErrRepositoryNotFound
	}
	r.rows[w.ID] = w.Clone()
	r.versions[w.ID]++
	return w.Clone(), nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if err := r.enter(OpDelete); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrRepositoryNotFound
	}
	delete(r.rows, id)
	delete(r.versions, id)
	return nil
}

func (r *memoryRepo) BulkDelete(_ context.Context, ids []int64) (int64, error) {
	if err := r.enter(OpBulkDelete); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			delete(r.rows, id)
			delete(r.versions, id)
			n++
		}
	}
	return n, nil
}

// Fingerprint implements Fingerprinter on the row version.
func (r *memoryRepo) Fingerprint(_ context.Context, id int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[id]
	if !ok {
		return "", ErrRepositoryNotFound
	}
	return fmt.Sprintf("v%d", v), nil
}

// mockAuditRecorder is a testify mock for AuditRecorder.
type mockAuditRecorder struct {
	mock.Mock
}

func (m *mockAuditRecorder) Append(
	ctx context.Context,
	event auditDomain.Event,
) (*auditDomain.AuditLogEntry, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLogEntry), args.Error(1)
}

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var errBoom = errors.New("boom")
