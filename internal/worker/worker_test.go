package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/infra"
	"github.com/Team-Techentia/veedra-sub001/internal/model"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeQueue struct {
	mu      sync.Mutex
	lists   map[string][]string
	pushErr error
	popErr  error
	pops    int
}

var _ Queue = (*fakeQueue)(nil)

func newFakeQueue() *fakeQueue { return &fakeQueue{lists: map[string][]string{}} }

func (f *fakeQueue) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return redis.NewIntResult(0, f.pushErr)
	}
	for _, v := range values {
		var s string
		switch x := v.(type) {
		case []byte:
			s = string(x)
		case string:
			s = x
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeQueue) BRPop(_ context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pops++
	if f.popErr != nil {
		return redis.NewStringSliceResult(nil, f.popErr)
	}
	for _, k := range keys {
		if l := f.lists[k]; len(l) > 0 {
			last := l[len(l)-1]
			f.lists[k] = l[:len(l)-1]
			return redis.NewStringSliceResult([]string{k, last}, nil)
		}
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (f *fakeQueue) LLen(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeQueue) jobs(t *testing.T, key string) []Job {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Job, 0, len(f.lists[key]))
	for _, raw := range f.lists[key] {
		var j Job
		require.NoError(t, json.Unmarshal([]byte(raw), &j))
		out = append(out, j)
	}
	return out
}

func (f *fakeQueue) dlq(t *testing.T, queue string) []DLQEntry {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DLQEntry, 0)
	for _, raw := range f.lists[DLQPrefix+queue] {
		var e DLQEntry
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		out = append(out, e)
	}
	return out
}

type stubBillRepo struct {
	bills      map[uuid.UUID]*model.Bill
	findErr    error
	setPathErr error
	missing    []model.Bill
}

var _ repository.BillRepository = (*stubBillRepo)(nil)

func (s *stubBillRepo) Create(_ context.Context, _ *gorm.DB, b *model.Bill) error {
	s.bills[b.ID] = b
	return nil
}
func (s *stubBillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	b, ok := s.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}
func (s *stubBillRepo) FindByNumber(_ context.Context, number string) (*model.Bill, error) {
	for _, b := range s.bills {
		if b.BillNumber == number {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubBillRepo) SetReceiptPath(_ context.Context, id uuid.UUID, path string) error {
	if s.setPathErr != nil {
		return s.setPathErr
	}
	s.bills[id].ReceiptPath = &path
	return nil
}
func (s *stubBillRepo) ListMissingReceipts(_ context.Context, _ time.Time, _ int) ([]model.Bill, error) {
	out := make([]model.Bill, 0, len(s.missing))
	for _, b := range s.missing {
		if b.ReceiptSweeps < repository.MaxReceiptSweeps {
			out = append(out, b)
		}
	}
	return out, nil
}
func (s *stubBillRepo) MarkReceiptSwept(_ context.Context, id uuid.UUID) error {
	for i := range s.missing {
		if s.missing[i].ID == id {
			s.missing[i].ReceiptSweeps++
		}
	}
	return nil
}
func (s *stubBillRepo) DB() *gorm.DB { return nil }

type stubMailer struct {
	sent []string
	err  error
}

func (m *stubMailer) SendReceipt(msg infra.ReceiptMail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg.To+"|"+msg.PDFPath)
	return nil
}

func testBill() *model.Bill {
	return &model.Bill{
		ID:           uuid.New(),
		BillNumber:   "BILL2610140007",
		FinalAmount:  decimal.NewFromInt(1050),
		ComboSavings: decimal.NewFromInt(100),
		IsComboSale:  true,
	}
}

func noWait(int) time.Duration { return 0 }

// ── Dispatcher / Pool ────────────────────────────────────────────────────────

func TestDispatcher_EnqueueReceiptEnvelope(t *testing.T) {
	q := newFakeQueue()
	d := NewDispatcher(q)
	require.NoError(t, d.EnqueueReceipt(context.Background(), ReceiptJobPayload{BillID: "abc"}))

	jobs := q.jobs(t, QueueReceipt)
	require.Len(t, jobs, 1)
	assert.Equal(t, "receipt", jobs[0].Type)
	assert.Zero(t, jobs[0].Attempts)
	assert.JSONEq(t, `{"bill_id":"abc"}`, string(jobs[0].Payload))
}

func TestPool_SuccessConsumesJob(t *testing.T) {
	q := newFakeQueue()
	calls := 0
	p := NewPool(q, map[string]Handler{QueueReceipt: func(context.Context, json.RawMessage) error { calls++; return nil }})
	p.retryDelay = noWait

	p.process(context.Background(), QueueReceipt, `{"type":"receipt","payload":{}}`)
	assert.Equal(t, 1, calls)
	assert.Empty(t, q.jobs(t, QueueReceipt))
	assert.Empty(t, q.dlq(t, QueueReceipt))
}

func TestPool_FailureRequeuesWithAttempt(t *testing.T) {
	q := newFakeQueue()
	p := NewPool(q, map[string]Handler{QueueEmail: func(context.Context, json.RawMessage) error { return errors.New("smtp down") }})
	p.retryDelay = noWait

	p.process(context.Background(), QueueEmail, `{"type":"email","payload":{"to_email":"a@b.c"}}`)
	jobs := q.jobs(t, QueueEmail)
	require.Len(t, jobs, 1)
	assert.Equal(t, 1, jobs[0].Attempts)
	assert.Empty(t, q.dlq(t, QueueEmail))
}

func TestPool_ExhaustedJobGoesToDLQ(t *testing.T) {
	q := newFakeQueue()
	p := NewPool(q, map[string]Handler{QueueEmail: func(context.Context, json.RawMessage) error { return errors.New("smtp down") }})
	p.retryDelay = noWait

	raw := `{"type":"email","payload":{"to_email":"a@b.c"},"attempts":2}`
	p.process(context.Background(), QueueEmail, raw)

	assert.Empty(t, q.jobs(t, QueueEmail))
	entries := q.dlq(t, QueueEmail)
	require.Len(t, entries, 1)
	assert.Equal(t, MaxJobAttempts, entries[0].Attempts)
	assert.Equal(t, "smtp down", entries[0].Reason)
	assert.Equal(t, QueueEmail, entries[0].OriginalQueue)

	n, err := DLQLength(context.Background(), q, QueueEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPool_RetriesUntilDLQ(t *testing.T) {
	q := newFakeQueue()
	calls := 0
	p := NewPool(q, map[string]Handler{QueueReceipt: func(context.Context, json.RawMessage) error { calls++; return errors.New("db down") }})
	p.retryDelay = noWait

	require.NoError(t, NewDispatcher(q).EnqueueReceipt(context.Background(), ReceiptJobPayload{BillID: "x"}))
	for i := 0; i < 5; i++ {
		res, err := q.BRPop(context.Background(), 0, QueueReceipt).Result()
		if err != nil {
			break
		}
		p.process(context.Background(), res[0], res[1])
	}
	assert.Equal(t, MaxJobAttempts, calls)
	assert.Len(t, q.dlq(t, QueueReceipt), 1)
}

func TestPool_MalformedEnvelopeGoesToDLQ(t *testing.T) {
	q := newFakeQueue()
	p := NewPool(q, map[string]Handler{QueueReceipt: func(context.Context, json.RawMessage) error { return nil }})
	p.process(context.Background(), QueueReceipt, `not json`)
	entries := q.dlq(t, QueueReceipt)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Reason, "malformed envelope")
}

func TestBackoffDoubles(t *testing.T) {
	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, 2*time.Second, backoff(2))
	assert.Equal(t, 4*time.Second, backoff(3))
}

// ── ReceiptWorker ────────────────────────────────────────────────────────────

func newReceiptWorker(repo *stubBillRepo, q *fakeQueue) (*ReceiptWorker, *int) {
	renders := 0
	w := NewReceiptWorker(repo, NewDispatcher(q), "Veedra", "/tmp/unused")
	w.render = func(b *model.Bill, _, dir string) (string, error) {
		renders++
		return dir + "/receipt_" + b.BillNumber + ".pdf", nil
	}
	return w, &renders
}

func receiptPayload(t *testing.T, p ReceiptJobPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func TestReceiptWorker_RendersAndEmails(t *testing.T) {
	bill := testBill()
	repo := &stubBillRepo{bills: map[uuid.UUID]*model.Bill{bill.ID: bill}}
	q := newFakeQueue()
	w, renders := newReceiptWorker(repo, q)

	email := "ana@example.com"
	err := w.Process(context.Background(), receiptPayload(t, ReceiptJobPayload{BillID: bill.ID.String(), CustomerEmail: &email}))
	require.NoError(t, err)

	assert.Equal(t, 1, *renders)
	require.NotNil(t, bill.ReceiptPath)
	assert.Equal(t, "/tmp/unused/receipt_BILL2610140007.pdf", *bill.ReceiptPath)

	jobs := q.jobs(t, QueueEmail)
	require.Len(t, jobs, 1)
	var ej EmailJobPayload
	require.NoError(t, json.Unmarshal(jobs[0].Payload, &ej))
	assert.Equal(t, email, ej.ToEmail)
	assert.Equal(t, *bill.ReceiptPath, ej.PDFPath)
	assert.Contains(t, ej.Body, "1050.00")
	assert.Contains(t, ej.Body, "Combo savings: 100.00")
}

func TestReceiptWorker_ExistingReceiptNotRerendered(t *testing.T) {
	bill := testBill()
	existing := "/data/receipt.pdf"
	bill.ReceiptPath = &existing
	repo := &stubBillRepo{bills: map[uuid.UUID]*model.Bill{bill.ID: bill}}
	q := newFakeQueue()
	w, renders := newReceiptWorker(repo, q)

	require.NoError(t, w.Process(context.Background(), receiptPayload(t, ReceiptJobPayload{BillID: bill.ID.String()})))
	assert.Zero(t, *renders)
	assert.Empty(t, q.jobs(t, QueueEmail), "no email without an address")
}

func TestReceiptWorker_StorageErrorsAreRetried(t *testing.T) {
	bill := testBill()
	repo := &stubBillRepo{bills: map[uuid.UUID]*model.Bill{bill.ID: bill}, setPathErr: errors.New("conn reset")}
	w, _ := newReceiptWorker(repo, newFakeQueue())
	assert.Error(t, w.Process(context.Background(), receiptPayload(t, ReceiptJobPayload{BillID: bill.ID.String()})))

	repo = &stubBillRepo{bills: map[uuid.UUID]*model.Bill{}, findErr: errors.New("conn reset")}
	w, _ = newReceiptWorker(repo, newFakeQueue())
	assert.Error(t, w.Process(context.Background(), receiptPayload(t, ReceiptJobPayload{BillID: bill.ID.String()})))
}

func TestReceiptWorker_BadPayloadDropped(t *testing.T) {
	w, renders := newReceiptWorker(&stubBillRepo{bills: map[uuid.UUID]*model.Bill{}}, newFakeQueue())
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"bill_id":"nope"}`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`[`)))
	assert.Zero(t, *renders)
}

// ── EmailWorker ──────────────────────────────────────────────────────────────

func TestEmailWorker(t *testing.T) {
	m := &stubMailer{}
	w := NewEmailWorker(m)

	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "ana@example.com", PDFPath: "/r.pdf"})
	require.NoError(t, w.Process(context.Background(), raw))
	assert.Equal(t, []string{"ana@example.com|/r.pdf"}, m.sent)

	empty, _ := json.Marshal(EmailJobPayload{})
	require.NoError(t, w.Process(context.Background(), empty))
	assert.Len(t, m.sent, 1)

	m.err = errors.New("550")
	assert.Error(t, w.Process(context.Background(), raw))
}

func TestRunWorker_BacksOffWhenRedisIsDown(t *testing.T) {
	q := newFakeQueue()
	q.popErr = errors.New("dial tcp: connection refused")
	p := NewPool(q, map[string]Handler{QueueReceipt: func(context.Context, json.RawMessage) error { return nil }})
	p.popErrDelay = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	p.runWorker(ctx, 0, []string{QueueReceipt})

	q.mu.Lock()
	defer q.mu.Unlock()
	assert.LessOrEqual(t, q.pops, 4, "dequeue errors pause instead of spinning")
	assert.GreaterOrEqual(t, q.pops, 2)
}

func TestRunWorker_ProcessesQueuedJob(t *testing.T) {
	q := newFakeQueue()
	require.NoError(t, NewDispatcher(q).EnqueueReceipt(context.Background(), ReceiptJobPayload{BillID: "x"}))
	done := make(chan struct{}, 1)
	p := NewPool(q, map[string]Handler{QueueReceipt: func(context.Context, json.RawMessage) error {
		done <- struct{}{}
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	go p.runWorker(ctx, 0, []string{QueueReceipt})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
	cancel()
}

// ── Sweep ────────────────────────────────────────────────────────────────────

func TestSweepOnce_EnqueuesMissingReceipts(t *testing.T) {
	a, b := testBill(), testBill()
	repo := &stubBillRepo{missing: []model.Bill{*a, *b}}
	q := newFakeQueue()
	cfg := ReceiptSweepConfig{Bills: repo, Dispatcher: NewDispatcher(q), Grace: time.Minute}

	assert.Equal(t, 2, sweepOnce(context.Background(), cfg, time.Now()))
	assert.Len(t, q.jobs(t, QueueReceipt), 2)

	q.pushErr = errors.New("redis down")
	assert.Zero(t, sweepOnce(context.Background(), cfg, time.Now()))
}

func TestSweepOnce_GivesUpAfterMaxSweeps(t *testing.T) {
	repo := &stubBillRepo{missing: []model.Bill{*testBill()}}
	q := newFakeQueue()
	cfg := ReceiptSweepConfig{Bills: repo, Dispatcher: NewDispatcher(q), Grace: time.Minute}

	for i := 0; i < repository.MaxReceiptSweeps; i++ {
		assert.Equal(t, 1, sweepOnce(context.Background(), cfg, time.Now()), "sweep %d", i+1)
	}
	assert.Zero(t, sweepOnce(context.Background(), cfg, time.Now()), "a failing bill is not re-enqueued forever")
	assert.Len(t, q.jobs(t, QueueReceipt), repository.MaxReceiptSweeps)
	assert.Equal(t, repository.MaxReceiptSweeps, repo.missing[0].ReceiptSweeps)
}
