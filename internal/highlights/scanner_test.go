package highlights

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store. Writes to ids in failOn always fail.
type memStore struct {
	mu      sync.Mutex
	values  map[string]string
	failOn  map[string]bool
	writes  []string
	listErr error
	// block, when set, is waited on inside ListEncoded.
	block chan struct{}
	ready chan struct{}
}

func newMemStore(values map[string]string) *memStore {
	return &memStore{values: values, failOn: map[string]bool{}}
}

func (m *memStore) ListEncoded(_ context.Context) ([]Record, error) {
	if m.ready != nil {
		close(m.ready)
	}
	if m.block != nil {
		<-m.block
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]Record, 0, len(m.values))
	for id, raw := range m.values {
		records = append(records, Record{ID: id, Raw: raw})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (m *memStore) UpdateEncoded(_ context.Context, id, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, id)
	if m.failOn[id] {
		return errors.New("write rejected")
	}
	m.values[id] = value
	return nil
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingRecorder) ObserveRepair(_ string, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

func TestRepairAll_RewritesOnlyNonCanonical(t *testing.T) {
	store := newMemStore(map[string]string{
		"exp-1": `["Led project A","Improved performance"]`,
		"exp-2": `["Item one", "Item two`,
		"exp-3": "Legacy line one\nLegacy line two",
		"exp-4": `[ "spaced" , "but valid" ]`,
		"exp-5": "",
	})
	rec := &countingRecorder{}
	r := NewRepairer("experience-highlights", store, WithRecorder(rec))

	report, err := r.RepairAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "experience-highlights", report.Collection)
	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 3, report.Repaired)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, []string{"exp-2", "exp-3", "exp-5"}, store.writes)

	assert.Equal(t, `["Item one","Item two"]`, store.values["exp-2"])
	assert.Equal(t, `["Legacy line one","Legacy line two"]`, store.values["exp-3"])
	assert.Equal(t, EmptyList, store.values["exp-5"])
	assert.Equal(t, `[ "spaced" , "but valid" ]`, store.values["exp-4"], "canonical values are not rewritten")

	require.Len(t, report.Details, 3)
	assert.Equal(t, Change{ID: "exp-2", Before: `["Item one", "Item two`, After: `["Item one","Item two"]`}, report.Details[0])

	assert.Equal(t, 2, rec.outcomes["canonical"])
	assert.Equal(t, 3, rec.outcomes["repaired"])
}

func TestRepairAll_SecondRunIsNoop(t *testing.T) {
	store := newMemStore(map[string]string{
		"a": `["ok"]`,
		"b": `broken "value`,
		"c": "x\ny",
		"d": "garbage",
	})
	r := NewRepairer("experience-highlights", store)

	first, err := r.RepairAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Repaired)

	store.writes = nil
	second, err := r.RepairAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, second.Scanned)
	assert.Equal(t, 0, second.Repaired)
	assert.Empty(t, second.Details)
	assert.Empty(t, store.writes)
}

func TestRepairAll_NonListJSONBecomesEmpty(t *testing.T) {
	store := newMemStore(map[string]string{
		"num":    "42",
		"bool":   "true",
		"str":    `"Led the team"`,
		"double": `"[\"a\",\"b\"]"`,
		"obj":    `{"role":"lead"}`,
	})
	r := NewRepairer("experience-highlights", store)

	report, err := r.RepairAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Repaired)
	for id, value := range store.values {
		assert.Equal(t, EmptyList, value, id)
	}
}

func TestRepairAll_FailedWriteDoesNotAbortScan(t *testing.T) {
	store := newMemStore(map[string]string{
		"1": "first\nrecord",
		"2": "second\nrecord",
		"3": "third\nrecord",
	})
	store.failOn["2"] = true
	r := NewRepairer("experience-highlights", store)

	report, err := r.RepairAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, store.writes, "every record is attempted")
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Repaired)
	assert.Equal(t, 1, report.Failed)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "2", report.Failures[0].ID)
	assert.Equal(t, "second\nrecord", report.Failures[0].Before)
	assert.Contains(t, report.Failures[0].Error, "write rejected")

	ids := []string{report.Details[0].ID, report.Details[1].ID}
	assert.Equal(t, []string{"1", "3"}, ids)
	assert.Equal(t, "second\nrecord", store.values["2"], "failed record keeps its value")
}

func TestPlan_DoesNotWrite(t *testing.T) {
	store := newMemStore(map[string]string{
		"a": `["ok"]`,
		"b": "one\ntwo",
	})
	r := NewRepairer("experience-highlights", store)

	report, err := r.Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Repaired)
	assert.Equal(t, `["one","two"]`, report.Details[0].After)
	assert.Empty(t, store.writes)
	assert.Equal(t, "one\ntwo", store.values["b"])
}

func TestRepairAll_Cancelled(t *testing.T) {
	store := newMemStore(map[string]string{
		"a": "one\ntwo",
		"b": "three\nfour",
	})
	r := NewRepairer("experience-highlights", store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.RepairAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Scanned)
	assert.Empty(t, store.writes)
}

func TestRepairAll_ListError(t *testing.T) {
	store := newMemStore(nil)
	store.listErr = errors.New("connection refused")
	r := NewRepairer("project-tags", store)

	report, err := r.RepairAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "project-tags")
}

func TestRepairAll_RejectsOverlappingScan(t *testing.T) {
	store := newMemStore(map[string]string{"a": "x\ny"})
	store.block = make(chan struct{})
	store.ready = make(chan struct{})
	r := NewRepairer("experience-highlights", store)

	done := make(chan error, 1)
	go func() {
		_, err := r.RepairAll(context.Background())
		done <- err
	}()

	<-store.ready
	_, err := r.RepairAll(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(store.block)
	require.NoError(t, <-done)

	// the guard is released once the first scan finishes
	store.ready = nil
	store.block = nil
	_, err = r.RepairAll(context.Background())
	assert.NoError(t, err)
}
