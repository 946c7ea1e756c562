package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promdto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"usercrud/internal/domain/record"
	"usercrud/internal/infrastructure/metrics"
	"usercrud/internal/infrastructure/mq"
)

// memRepo keeps rows in memory with the same view semantics as the
// postgres repository.
type memRepo struct {
	mu    sync.Mutex
	seq   record.ID
	rows  map[record.ID]*record.Record
	clock time.Time
	err   error
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:  make(map[record.ID]*record.Record),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func cp(r *record.Record) *record.Record {
	c := *r
	return &c
}

func (m *memRepo) list(deleted bool, p record.ListParams) (record.Records, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}

	var all record.Records
	for _, r := range m.rows {
		if r.IsDeleted == deleted {
			all = append(all, cp(r))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memRepo) FetchActive(_ context.Context, p record.ListParams) (record.Records, int64, error) {
	return m.list(false, p)
}

func (m *memRepo) FetchDeleted(_ context.Context, p record.ListParams) (record.Records, int64, error) {
	return m.list(true, p)
}

func (m *memRepo) FetchActiveByID(_ context.Context, id record.ID) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[id]; ok && !r.IsDeleted {
		return cp(r), nil
	}
	return nil, m.err
}

func (m *memRepo) FetchByID(_ context.Context, id record.ID) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[id]; ok {
		return cp(r), nil
	}
	return nil, m.err
}

func (m *memRepo) FetchActiveConflicts(_ context.Context, email, phone string, excludeID record.ID) (record.Records, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out record.Records
	for _, r := range m.rows {
		if !r.IsDeleted && r.ID != excludeID && (r.Email == email || r.PhoneNumber == phone) {
			out = append(out, cp(r))
		}
	}
	return out, m.err
}

func (m *memRepo) Create(_ context.Context, r record.Record) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.seq++
	now := m.tick()
	r.ID, r.CreatedAt, r.UpdatedAt = m.seq, now, now
	m.rows[r.ID] = &r
	return cp(&r), nil
}

func (m *memRepo) Update(_ context.Context, r record.Record) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[r.ID]
	if !ok || cur.IsDeleted {
		return nil, m.err
	}
	r.CreatedAt, r.UpdatedAt = cur.CreatedAt, m.tick()
	m.rows[r.ID] = &r
	return cp(&r), nil
}

func (m *memRepo) SoftDelete(_ context.Context, id record.ID) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok || cur.IsDeleted {
		return nil, m.err
	}
	now := m.tick()
	cur.IsDeleted, cur.DeletedAt, cur.UpdatedAt = true, &now, now
	return cp(cur), nil
}

func (m *memRepo) Restore(_ context.Context, id record.ID) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok || !cur.IsDeleted {
		return nil, m.err
	}
	cur.IsDeleted, cur.DeletedAt, cur.UpdatedAt = false, nil, m.tick()
	return cp(cur), nil
}

func (m *memRepo) Delete(_ context.Context, id record.ID) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok {
		return nil, m.err
	}
	delete(m.rows, id)
	return cp(cur), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []mq.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e mq.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Action
	}
	return out
}

func counterValue(t *testing.T, c *prometheus.CounterVec, label string) float64 {
	t.Helper()
	var m promdto.Metric
	require.NoError(t, c.WithLabelValues(label).Write(&m))
	return m.GetCounter().GetValue()
}

func sp(s string) *string { return &s }

func payload(email, phone string) record.Payload {
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	return record.Payload{
		Name:        sp("Ann"),
		FatherName:  sp("Karl"),
		DateOfBirth: &dob,
		Email:       sp(email),
		PhoneNumber: sp(phone),
	}
}

type fixture struct {
	repo     *memRepo
	pub      *fakePublisher
	mCounter *prometheus.CounterVec
	svc      *RecordService
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMemRepo(),
		pub:      &fakePublisher{},
		mCounter: metrics.NewCounterWith(prometheus.NewRegistry()),
	}
	f.svc = NewRecordService(f.repo, f.pub, f.mCounter, zap.NewNop()).(*RecordService)
	return f
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *record.ValidationError
	require.ErrorAs(t, err, &vErr)
	return vErr.Fields
}

func TestRecordService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and emits", func(t *testing.T) {
		f := newFixture()
		r, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)
		assert.Equal(t, record.ID(1), r.ID)
		assert.False(t, r.IsDeleted)
		assert.Nil(t, r.DeletedAt)
		assert.Equal(t, []string{mq.ActionCreated}, f.pub.actions())
		assert.Equal(t, float64(1), counterValue(t, f.mCounter, metrics.RecordCreated))
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, record.Payload{Name: sp("Ann")})
		fields := fieldErrors(t, err)
		assert.Equal(t, record.MsgRequired, fields[record.FieldEmail])
		assert.Empty(t, f.repo.rows)
	})

	t.Run("duplicate email and phone among active rows", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		assert.Equal(t, map[string]string{
			record.FieldEmail:       record.MsgEmailTaken,
			record.FieldPhoneNumber: record.MsgPhoneTaken,
		}, fieldErrors(t, err))
		assert.Len(t, f.repo.rows, 1)
		assert.Equal(t, float64(1), counterValue(t, f.mCounter, metrics.RecordRejected))
	})

	t.Run("soft-deleted rows do not block reuse", func(t *testing.T) {
		f := newFixture()
		first, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)
		require.NoError(t, f.svc.SoftDelete(ctx, first.ID))

		second, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		f.repo.err = errors.New("db down")
		_, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.EqualError(t, err, "db down")
		assert.Empty(t, f.pub.actions())
	})

	t.Run("event publish failure does not fail the operation", func(t *testing.T) {
		f := newFixture()
		f.pub.err = mq.ErrBufferFull
		_, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)
		assert.Equal(t, float64(1), counterValue(t, f.mCounter, metrics.EventDropped))
	})
}

func TestRecordService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update merges and refreshes updated_at", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)

		updated, err := f.svc.Update(ctx, created.ID, record.Payload{Name: sp("Anna")}, true)
		require.NoError(t, err)
		assert.Equal(t, "Anna", updated.Name)
		assert.Equal(t, "ann@example.com", updated.Email)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		assert.Equal(t, []string{mq.ActionCreated, mq.ActionUpdated}, f.pub.actions())
	})

	t.Run("full update requires every field", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, created.ID, record.Payload{Name: sp("Anna")}, false)
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, record.FieldEmail)
		assert.NotContains(t, fields, record.FieldName)
	})

	t.Run("own email is not a conflict", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, created.ID, payload("ann@example.com", "+10000000001"), false)
		require.NoError(t, err)
	})

	t.Run("email of another active record", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)
		bob, err := f.svc.Create(ctx, payload("bob@example.com", "+10000000002"))
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, bob.ID, record.Payload{Email: sp("ann@example.com")}, true)
		assert.Equal(t, map[string]string{record.FieldEmail: record.MsgEmailTaken}, fieldErrors(t, err))

		stored, err := f.svc.GetActive(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", stored.Email)
	})

	t.Run("soft-deleted or missing record", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
		require.NoError(t, err)
		require.NoError(t, f.svc.SoftDelete(ctx, created.ID))

		_, err = f.svc.Update(ctx, created.ID, record.Payload{Name: sp("Anna")}, true)
		require.ErrorIs(t, err, record.ErrNotFound)

		_, err = f.svc.Update(ctx, 404, record.Payload{Name: sp("Anna")}, true)
		require.ErrorIs(t, err, record.ErrNotFound)
	})
}

func TestRecordService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
	require.NoError(t, err)

	// restore on an active record is a conflict
	_, err = f.svc.Restore(ctx, created.ID)
	require.ErrorIs(t, err, record.ErrNotDeleted)

	require.NoError(t, f.svc.SoftDelete(ctx, created.ID))
	require.ErrorIs(t, f.svc.SoftDelete(ctx, created.ID), record.ErrNotFound)

	_, err = f.svc.GetActive(ctx, created.ID)
	require.ErrorIs(t, err, record.ErrNotFound)

	deleted, err := f.svc.ListDeleted(ctx, record.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted.Count)
	require.Len(t, deleted.Records, 1)
	assert.True(t, deleted.Records[0].IsDeleted)
	assert.NotNil(t, deleted.Records[0].DeletedAt)

	active, err := f.svc.ListActive(ctx, record.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), active.Count)
	assert.Equal(t, 1, active.Page)
	assert.Equal(t, record.DefaultPageSize, active.PageSize)

	restored, err := f.svc.Restore(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, created.CreatedAt, restored.CreatedAt)

	require.NoError(t, f.svc.HardDelete(ctx, created.ID))
	require.ErrorIs(t, f.svc.HardDelete(ctx, created.ID), record.ErrNotFound)
	_, err = f.svc.Restore(ctx, created.ID)
	require.ErrorIs(t, err, record.ErrNotFound)

	assert.Equal(t, []string{
		mq.ActionCreated,
		mq.ActionSoftDeleted,
		mq.ActionRestored,
		mq.ActionHardDeleted,
	}, f.pub.actions())
}

func TestRecordService_HardDeleteSoftDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
	require.NoError(t, err)
	require.NoError(t, f.svc.SoftDelete(ctx, created.ID))

	require.NoError(t, f.svc.HardDelete(ctx, created.ID))
	assert.Empty(t, f.repo.rows)
}

func TestRecordService_RestoreBlockedByActiveDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	old, err := f.svc.Create(ctx, payload("ann@example.com", "+10000000001"))
	require.NoError(t, err)
	require.NoError(t, f.svc.SoftDelete(ctx, old.ID))
	_, err = f.svc.Create(ctx, payload("ann@example.com", "+10000000009"))
	require.NoError(t, err)

	_, err = f.svc.Restore(ctx, old.ID)
	assert.Equal(t, map[string]string{record.FieldEmail: record.MsgEmailTaken}, fieldErrors(t, err))

	still, err := f.svc.ListDeleted(ctx, record.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), still.Count)
}

func TestRecordService_ListActivePaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := f.svc.Create(ctx, payload(email, "+1000000000"+string(rune('1'+i))))
		require.NoError(t, err)
	}

	page, err := f.svc.ListActive(ctx, record.ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Records, 1)
	// newest first
	assert.Equal(t, "a@example.com", page.Records[0].Email)
}
