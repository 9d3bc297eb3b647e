package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingKV struct {
	getErr error
	setErr error
}

func (f failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.getErr }
func (f failingKV) Set(context.Context, string, []byte) error         { return f.setErr }
func (f failingKV) Close() error                                      { return nil }

type countingRecorder struct {
	failures map[string]int
}

func (c *countingRecorder) RecordMutation(string) {}
func (c *countingRecorder) RecordPersistenceFailure(op string) {
	if c.failures == nil {
		c.failures = map[string]int{}
	}
	c.failures[op]++
}
func (c *countingRecorder) SetCollectionSizes(int, int) {}

func sample(id string, cents int64) core.Expense {
	return core.Expense{
		ID:       core.ExpenseID(id),
		Amount:   core.Money{Cents: cents},
		Category: core.Food,
		Date:     core.NewDate(2026, time.October, 1),
		Note:     "lunch",
	}
}

func TestAdapterLoadEmptyStore(t *testing.T) {
	a := NewAdapter(memory.New())
	active, trash := a.Load(context.Background())
	assert.NotNil(t, active)
	assert.NotNil(t, trash)
	assert.Empty(t, active)
	assert.Empty(t, trash)
}

func TestAdapterSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	a := NewAdapter(kv)

	active := []core.Expense{sample("2", 500), sample("1", 250)}
	trash := []core.Expense{sample("0", 100)}
	require.NoError(t, a.Save(ctx, active, trash))

	raw, found, err := kv.Get(ctx, KeyDeletedExpenses)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":"0","amount":1,"category":"Food","date":"2026-10-01","note":"lunch"}]`, string(raw))

	gotActive, gotTrash := a.Load(ctx)
	assert.Equal(t, active, gotActive)
	assert.Equal(t, trash, gotTrash)
}

func TestAdapterCorruptDataResetsBothLists(t *testing.T) {
	rec := &countingRecorder{}
	kv := memory.NewWithData(map[string]string{
		KeyExpenses:        `[{"id":"1","amount":5,"category":"Food","date":"2026-10-01"}]`,
		KeyDeletedExpenses: `{not json`,
	})
	a := NewAdapter(kv, WithMetrics(rec))

	active, trash := a.Load(context.Background())
	assert.Empty(t, active)
	assert.Empty(t, trash)
	assert.Equal(t, 1, rec.failures["load"])
}

func TestAdapterReadFailureResets(t *testing.T) {
	a := NewAdapter(failingKV{getErr: errors.New("disk gone")})
	active, trash := a.Load(context.Background())
	assert.Empty(t, active)
	assert.Empty(t, trash)
}

func TestAdapterSaveFailureIsReported(t *testing.T) {
	rec := &countingRecorder{}
	boom := errors.New("quota exceeded")
	a := NewAdapter(failingKV{setErr: boom}, WithMetrics(rec))

	err := a.Save(context.Background(), []core.Expense{sample("1", 1)}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, rec.failures["save"])
}

func TestAdapterLoadsLegacyRecords(t *testing.T) {
	kv := memory.NewWithData(map[string]string{
		KeyExpenses: `[{"id":1728900000000,"amount":12.5,"category":"Bills","note":"power","date":"2026-10-14T08:00:00.000Z"}]`,
	})
	active, trash := NewAdapter(kv).Load(context.Background())
	require.Len(t, active, 1)
	assert.Empty(t, trash)
	assert.Equal(t, core.ExpenseID("1728900000000"), active[0].ID)
	assert.Equal(t, int64(1250), active[0].Amount.Cents)
	assert.Equal(t, core.Bills, active[0].Category)
}
